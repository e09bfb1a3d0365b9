package service

import (
	"context"
	"time"

	"ChatEduca/internal/modules/admin/domain/entity"
	"ChatEduca/internal/modules/admin/domain/repository"
	"ChatEduca/pkg/util"
	"ChatEduca/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const recordTimeout = 5 * time.Second

// LogService writes the persisted audit log. Record never fails the caller:
// a write error is only reported through zlog.
type LogService struct {
	repo repository.LogRepository
}

func NewLogService(repo repository.LogRepository) *LogService {
	return &LogService{repo: repo}
}

func (s *LogService) Record(ctx context.Context, level, message, userID string, metadata map[string]interface{}) {
	if !entity.ValidLevel(level) {
		level = entity.LevelInfo
	}
	row := &entity.Log{
		Level:    level,
		Message:  message,
		Metadata: datatypes.JSONMap(metadata),
	}
	if userID != "" {
		row.UserId = &userID
	}
	if rid := util.RequestIDFrom(ctx); rid != "" {
		row.RequestId = &rid
	}

	// the request may already be gone when the audit row is written
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, row); err != nil {
		zlog.Warn("persist audit log failed", zap.String("message", message), zap.Error(err))
	}
}
