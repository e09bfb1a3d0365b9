package repository

import (
	"context"
	"time"

	"ChatEduca/internal/modules/chat/domain/entity"
)

// SessionSummary is a session with its message count.
type SessionSummary struct {
	entity.Session
	MessageCount int64
}

type SessionRepository interface {
	// GetBySessionId returns gorm.ErrRecordNotFound when missing.
	GetBySessionId(ctx context.Context, sessionId string) (*entity.Session, error)
	Create(ctx context.Context, session *entity.Session) error
	Touch(ctx context.Context, sessionId string, at time.Time) error
	// UpdateMetadata replaces the metadata column without bumping updated_at.
	UpdateMetadata(ctx context.Context, sessionId string, metadata map[string]interface{}) error
	ListByUser(ctx context.Context, userId string, offset, limit int) ([]SessionSummary, int64, error)
	// Delete removes the session and its messages.
	Delete(ctx context.Context, sessionId string) error
}
