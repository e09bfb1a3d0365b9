package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ChatEduca/internal/modules/admin/application/dto/respond"
	"ChatEduca/internal/modules/admin/domain/entity"
	"ChatEduca/internal/modules/admin/domain/repository"
	"ChatEduca/pkg/back"
	"ChatEduca/pkg/xerr"
)

const activeUsersLimit = 10

type AdminService interface {
	Stats(ctx context.Context) (*respond.StatsRespond, error)
	Logs(ctx context.Context, level string, page, limit int) (*respond.LogListRespond, error)
}

type adminServiceImpl struct {
	stats repository.StatsRepository
	logs  repository.LogRepository
	now   func() time.Time
}

func NewAdminService(stats repository.StatsRepository, logs repository.LogRepository) AdminService {
	return &adminServiceImpl{stats: stats, logs: logs, now: time.Now}
}

func (s *adminServiceImpl) Stats(ctx context.Context) (*respond.StatsRespond, error) {
	out := &respond.StatsRespond{}
	totals := []struct {
		table string
		dst   *int64
	}{
		{"users", &out.Totals.Users},
		{"sessions", &out.Totals.Sessions},
		{"messages", &out.Totals.Messages},
		{"logs", &out.Totals.Logs},
	}
	for _, t := range totals {
		n, err := s.stats.CountTable(ctx, t.table)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", t.table, err)
		}
		*t.dst = n
	}

	now := s.now()
	var err error
	if out.Recent.UsersLast7Days, err = s.stats.CountCreatedSince(ctx, "users", now.Add(-7*24*time.Hour)); err != nil {
		return nil, fmt.Errorf("count recent users: %w", err)
	}
	if out.Recent.SessionsLast24Hours, err = s.stats.CountCreatedSince(ctx, "sessions", now.Add(-24*time.Hour)); err != nil {
		return nil, fmt.Errorf("count recent sessions: %w", err)
	}
	if out.Logs.ByLevel, err = s.stats.CountLogsByLevel(ctx); err != nil {
		return nil, fmt.Errorf("count logs by level: %w", err)
	}
	if out.ActiveUsers, err = s.stats.MostActiveUsers(ctx, activeUsersLimit); err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	if out.ActiveUsers == nil {
		out.ActiveUsers = []repository.ActiveUser{}
	}
	return out, nil
}

func (s *adminServiceImpl) Logs(ctx context.Context, level string, page, limit int) (*respond.LogListRespond, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level != "" && !entity.ValidLevel(level) {
		return nil, xerr.Validation("Nível de log inválido")
	}
	rows, total, err := s.logs.List(ctx, level, back.Offset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	items := make([]respond.LogItem, 0, len(rows))
	for _, row := range rows {
		item := respond.LogItem{
			Id:        row.Id,
			Level:     row.Level,
			Message:   row.Message,
			UserId:    row.UserId,
			RequestId: row.RequestId,
			Metadata:  row.Metadata,
			CreatedAt: row.CreatedAt,
		}
		if row.UserName != nil {
			item.User = &respond.LogUser{Name: *row.UserName}
			if row.UserEmail != nil {
				item.User.Email = *row.UserEmail
			}
		}
		items = append(items, item)
	}
	return &respond.LogListRespond{Logs: items, Pagination: back.NewPagination(page, limit, total)}, nil
}
