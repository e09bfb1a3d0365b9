package persistence

import (
	"context"
	"strings"

	"ChatEduca/internal/modules/parent/domain/entity"
	"ChatEduca/internal/modules/parent/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type chatMemoryRepositoryImpl struct {
	db *gorm.DB
}

func NewChatMemoryRepository(db *gorm.DB) repository.ChatMemoryRepository {
	return &chatMemoryRepositoryImpl{db: db}
}

// ListByKeyPrefix uses LIKE to narrow the scan. "_" and "%" in student names
// are LIKE wildcards, so the exact prefix test happens here.
func (r *chatMemoryRepositoryImpl) ListByKeyPrefix(ctx context.Context, prefix string, limit int) ([]entity.ChatMemory, error) {
	var rows []entity.ChatMemory
	err := r.db.WithContext(ctx).
		Where(clause.Like{Column: clause.Column{Name: "key"}, Value: prefix + "%"}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, row := range rows {
		if !strings.HasPrefix(row.Key, prefix) {
			continue
		}
		out = append(out, row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *chatMemoryRepositoryImpl) Create(ctx context.Context, rows ...*entity.ChatMemory) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rows).Error
}
