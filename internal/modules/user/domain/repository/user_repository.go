package repository

import (
	"context"

	"ChatEduca/internal/modules/user/domain/entity"
)

// UserRepository returns gorm.ErrRecordNotFound when a lookup misses.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByUuid(ctx context.Context, uuid string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, offset, limit int) ([]entity.User, int64, error)
	Update(ctx context.Context, user *entity.User) error
	// Delete removes the user, detaching its sessions, messages and logs.
	Delete(ctx context.Context, uuid string) error
	CountActivity(ctx context.Context, uuid string) (messages int64, sessions int64, err error)
}

type ParentStudentRepository interface {
	Create(ctx context.Context, link *entity.ParentStudent) error
	Exists(ctx context.Context, parentId, studentId string) (bool, error)
	ListStudents(ctx context.Context, parentId string) ([]entity.User, error)
}
