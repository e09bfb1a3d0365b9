package persistence

import (
	"context"

	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/internal/modules/user/domain/repository"

	"gorm.io/gorm"
)

type userRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepositoryImpl) GetByUuid(ctx context.Context, uuid string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepositoryImpl) List(ctx context.Context, offset, limit int) ([]entity.User, int64, error) {
	var (
		users []entity.User
		total int64
	)
	db := r.db.WithContext(ctx).Model(&entity.User{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepositoryImpl) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// The dependent tables belong to other modules, so they are addressed by name.
func (r *userRepositoryImpl) Delete(ctx context.Context, uuid string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"messages", "logs", "sessions"} {
			if err := tx.Table(table).Where("user_id = ?", uuid).Update("user_id", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("parent_id = ? OR student_id = ?", uuid, uuid).Delete(&entity.ParentStudent{}).Error; err != nil {
			return err
		}
		res := tx.Where("uuid = ?", uuid).Delete(&entity.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepositoryImpl) CountActivity(ctx context.Context, uuid string) (int64, int64, error) {
	var messages, sessions int64
	db := r.db.WithContext(ctx)
	if err := db.Table("messages").Where("user_id = ?", uuid).Count(&messages).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Table("sessions").Where("user_id = ?", uuid).Count(&sessions).Error; err != nil {
		return 0, 0, err
	}
	return messages, sessions, nil
}
