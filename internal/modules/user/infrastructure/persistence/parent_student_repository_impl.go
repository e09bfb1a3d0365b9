package persistence

import (
	"context"

	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/internal/modules/user/domain/repository"

	"gorm.io/gorm"
)

type parentStudentRepositoryImpl struct {
	db *gorm.DB
}

func NewParentStudentRepository(db *gorm.DB) repository.ParentStudentRepository {
	return &parentStudentRepositoryImpl{db: db}
}

func (r *parentStudentRepositoryImpl) Create(ctx context.Context, link *entity.ParentStudent) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *parentStudentRepositoryImpl) Exists(ctx context.Context, parentId, studentId string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.ParentStudent{}).
		Where("parent_id = ? AND student_id = ?", parentId, studentId).
		Count(&n).Error
	return n > 0, err
}

func (r *parentStudentRepositoryImpl) ListStudents(ctx context.Context, parentId string) ([]entity.User, error) {
	var students []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN parent_students ps ON ps.student_id = users.uuid").
		Where("ps.parent_id = ?", parentId).
		Order("ps.created_at ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
