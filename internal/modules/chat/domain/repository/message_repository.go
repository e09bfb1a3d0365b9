package repository

import (
	"context"
	"time"

	"ChatEduca/internal/modules/chat/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListBySession is ordered by created_at then id.
	ListBySession(ctx context.Context, sessionId string, offset, limit int) ([]entity.Message, int64, error)
	// LastCreatedAt returns the zero time for an empty session.
	LastCreatedAt(ctx context.Context, sessionId string) (time.Time, error)
}
