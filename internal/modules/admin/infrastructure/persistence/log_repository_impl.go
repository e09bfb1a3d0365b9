package persistence

import (
	"context"

	"ChatEduca/internal/modules/admin/domain/entity"
	"ChatEduca/internal/modules/admin/domain/repository"

	"gorm.io/gorm"
)

type logRepositoryImpl struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) repository.LogRepository {
	return &logRepositoryImpl{db: db}
}

func (r *logRepositoryImpl) Create(ctx context.Context, log *entity.Log) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *logRepositoryImpl) List(ctx context.Context, level string, offset, limit int) ([]repository.LogWithUser, int64, error) {
	var (
		rows  []repository.LogWithUser
		total int64
	)
	db := r.db.WithContext(ctx).Model(&entity.Log{})
	if level != "" {
		db = db.Where("logs.level = ?", level)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Select("logs.*, users.name AS user_name, users.email AS user_email").
		Joins("LEFT JOIN users ON users.uuid = logs.user_id").
		Order("logs.created_at DESC").Order("logs.id DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
