package persistence

import (
	"context"
	"time"

	chatEntity "ChatEduca/internal/modules/chat/domain/entity"
	chatRepository "ChatEduca/internal/modules/chat/domain/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type sessionRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) chatRepository.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

func (r *sessionRepositoryImpl) GetBySessionId(ctx context.Context, sessionId string) (*chatEntity.Session, error) {
	var sess chatEntity.Session
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionId).First(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *sessionRepositoryImpl) Create(ctx context.Context, session *chatEntity.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepositoryImpl) Touch(ctx context.Context, sessionId string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&chatEntity.Session{}).
		Where("session_id = ?", sessionId).
		UpdateColumn("updated_at", at).Error
}

func (r *sessionRepositoryImpl) UpdateMetadata(ctx context.Context, sessionId string, metadata map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&chatEntity.Session{}).
		Where("session_id = ?", sessionId).
		UpdateColumn("metadata", datatypes.JSONMap(metadata)).Error
}

func (r *sessionRepositoryImpl) ListByUser(ctx context.Context, userId string, offset, limit int) ([]chatRepository.SessionSummary, int64, error) {
	var (
		rows  []chatRepository.SessionSummary
		total int64
	)
	db := r.db.WithContext(ctx).Model(&chatEntity.Session{}).Where("sessions.user_id = ?", userId)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Select("sessions.*, (SELECT COUNT(*) FROM messages WHERE messages.session_id = sessions.session_id) AS message_count").
		Order("sessions.updated_at DESC").Order("sessions.id DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *sessionRepositoryImpl) Delete(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionId).Delete(&chatEntity.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ?", sessionId).Delete(&chatEntity.Session{}).Error
	})
}
