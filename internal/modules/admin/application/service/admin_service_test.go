package service

import (
	"context"
	"testing"

	"ChatEduca/internal/modules/admin/domain/entity"
	"ChatEduca/internal/modules/admin/infrastructure/persistence"
	userEntity "ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/internal/testutil"
	"ChatEduca/pkg/util"
	"ChatEduca/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndListLogs(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&userEntity.User{Uuid: "u-1", Email: "a@b.com", Name: "Ana", Password: "x", Role: userEntity.RoleStudent}).Error)

	logRepo := persistence.NewLogRepository(db)
	logs := NewLogService(logRepo)
	admin := NewAdminService(persistence.NewStatsRepository(db), logRepo)

	reqCtx, cancel := context.WithCancel(util.WithRequestID(ctx, "req-1"))
	cancel()
	logs.Record(reqCtx, "warn", "Falha de login", "u-1", map[string]interface{}{"email": "a@b.com"})
	logs.Record(ctx, "bogus", "anon", "", nil)

	out, err := admin.Logs(ctx, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, out.Logs, 2)
	assert.Equal(t, int64(2), out.Pagination.Total)

	var warn, info = out.Logs[0], out.Logs[1]
	if warn.Level != entity.LevelWarn {
		warn, info = info, warn
	}
	assert.Equal(t, "Falha de login", warn.Message)
	require.NotNil(t, warn.RequestId)
	assert.Equal(t, "req-1", *warn.RequestId)
	require.NotNil(t, warn.User)
	assert.Equal(t, "Ana", warn.User.Name)
	assert.Equal(t, "a@b.com", warn.Metadata["email"])

	assert.Equal(t, entity.LevelInfo, info.Level)
	assert.Nil(t, info.User)

	filtered, err := admin.Logs(ctx, "WARN", 1, 10)
	require.NoError(t, err)
	assert.Len(t, filtered.Logs, 1)

	_, err = admin.Logs(ctx, "fatal", 1, 10)
	assert.True(t, xerr.Is(err, xerr.CodeValidation))
}

func TestStats(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&userEntity.User{Uuid: "u-1", Email: "a@b.com", Name: "Ana", Password: "x", Role: userEntity.RoleStudent}).Error)
	require.NoError(t, db.Create(&userEntity.User{Uuid: "u-2", Email: "c@d.com", Name: "Bia", Password: "x", Role: userEntity.RoleParent}).Error)
	require.NoError(t, db.Exec("INSERT INTO messages (session_id, user_id, role, content, created_at) VALUES ('s', 'u-2', 'user', 'oi', CURRENT_TIMESTAMP)").Error)

	logRepo := persistence.NewLogRepository(db)
	NewLogService(logRepo).Record(ctx, "error", "boom", "", nil)

	stats, err := NewAdminService(persistence.NewStatsRepository(db), logRepo).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Totals.Users)
	assert.Equal(t, int64(1), stats.Totals.Messages)
	assert.Equal(t, int64(1), stats.Totals.Logs)
	assert.Equal(t, int64(2), stats.Recent.UsersLast7Days)
	assert.Equal(t, map[string]int64{"error": 1}, stats.Logs.ByLevel)
	require.Len(t, stats.ActiveUsers, 2)
	assert.Equal(t, "u-2", stats.ActiveUsers[0].Id)
	assert.Equal(t, int64(1), stats.ActiveUsers[0].MessageCount)
}
