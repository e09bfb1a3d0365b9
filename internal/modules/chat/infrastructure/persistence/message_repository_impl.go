package persistence

import (
	"context"
	"errors"
	"time"

	chatEntity "ChatEduca/internal/modules/chat/domain/entity"
	chatRepository "ChatEduca/internal/modules/chat/domain/repository"

	"gorm.io/gorm"
)

type messageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) chatRepository.MessageRepository {
	return &messageRepositoryImpl{db: db}
}

func (r *messageRepositoryImpl) Create(ctx context.Context, message *chatEntity.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepositoryImpl) ListBySession(ctx context.Context, sessionId string, offset, limit int) ([]chatEntity.Message, int64, error) {
	var (
		messages []chatEntity.Message
		total    int64
	)
	db := r.db.WithContext(ctx).Model(&chatEntity.Message{}).Where("session_id = ?", sessionId)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at ASC").Order("id ASC").Offset(offset).Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *messageRepositoryImpl) LastCreatedAt(ctx context.Context, sessionId string) (time.Time, error) {
	var last chatEntity.Message
	err := r.db.WithContext(ctx).
		Select("created_at").
		Where("session_id = ?", sessionId).
		Order("created_at DESC").Order("id DESC").
		Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return last.CreatedAt, nil
}
