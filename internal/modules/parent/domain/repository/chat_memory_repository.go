package repository

import (
	"context"

	"ChatEduca/internal/modules/parent/domain/entity"
)

type ChatMemoryRepository interface {
	// ListByKeyPrefix returns rows whose key starts with prefix, newest first.
	// limit <= 0 means no limit.
	ListByKeyPrefix(ctx context.Context, prefix string, limit int) ([]entity.ChatMemory, error)
	Create(ctx context.Context, rows ...*entity.ChatMemory) error
}
