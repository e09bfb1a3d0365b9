package repository

import (
	"context"
	"time"

	"ChatEduca/internal/modules/admin/domain/entity"
)

type LogRepository interface {
	Create(ctx context.Context, log *entity.Log) error
	// List returns newest first; an empty level matches every level.
	List(ctx context.Context, level string, offset, limit int) ([]LogWithUser, int64, error)
}

// LogWithUser is a log row joined with its author, if any.
type LogWithUser struct {
	entity.Log
	UserName  *string
	UserEmail *string
}

type ActiveUser struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MessageCount int64  `json:"messageCount"`
}

// StatsRepository aggregates across the tables of every module.
type StatsRepository interface {
	CountTable(ctx context.Context, table string) (int64, error)
	CountCreatedSince(ctx context.Context, table string, since time.Time) (int64, error)
	CountLogsByLevel(ctx context.Context) (map[string]int64, error)
	MostActiveUsers(ctx context.Context, limit int) ([]ActiveUser, error)
}
