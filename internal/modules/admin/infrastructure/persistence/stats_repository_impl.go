package persistence

import (
	"context"
	"fmt"
	"time"

	"ChatEduca/internal/modules/admin/domain/repository"

	"gorm.io/gorm"
)

var countableTables = map[string]bool{"users": true, "sessions": true, "messages": true, "logs": true}

type statsRepositoryImpl struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) repository.StatsRepository {
	return &statsRepositoryImpl{db: db}
}

func (r *statsRepositoryImpl) CountTable(ctx context.Context, table string) (int64, error) {
	if !countableTables[table] {
		return 0, fmt.Errorf("table %q is not countable", table)
	}
	var n int64
	err := r.db.WithContext(ctx).Table(table).Count(&n).Error
	return n, err
}

func (r *statsRepositoryImpl) CountCreatedSince(ctx context.Context, table string, since time.Time) (int64, error) {
	if !countableTables[table] {
		return 0, fmt.Errorf("table %q is not countable", table)
	}
	var n int64
	err := r.db.WithContext(ctx).Table(table).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *statsRepositoryImpl) CountLogsByLevel(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Level string
		Total int64
	}
	err := r.db.WithContext(ctx).Table("logs").
		Select("level, COUNT(*) AS total").
		Group("level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Level] = row.Total
	}
	return out, nil
}

func (r *statsRepositoryImpl) MostActiveUsers(ctx context.Context, limit int) ([]repository.ActiveUser, error) {
	var users []repository.ActiveUser
	err := r.db.WithContext(ctx).Table("users").
		Select("users.uuid AS id, users.name, users.email, COUNT(messages.id) AS message_count").
		Joins("LEFT JOIN messages ON messages.user_id = users.uuid").
		Group("users.uuid, users.name, users.email").
		Order("message_count DESC").
		Limit(limit).
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
