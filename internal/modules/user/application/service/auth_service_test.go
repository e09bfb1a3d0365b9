package service_test

import (
	"context"
	"sync"
	"testing"

	"ChatEduca/internal/modules/user/application/dto/request"
	"ChatEduca/internal/modules/user/application/service"
	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/internal/modules/user/infrastructure/persistence"
	"ChatEduca/internal/testutil"
	"ChatEduca/pkg/util/myjwt"
	"ChatEduca/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type auditRow struct {
	level, message, userID string
}

type memAudit struct {
	mu   sync.Mutex
	rows []auditRow
}

func (a *memAudit) Record(_ context.Context, level, message, userID string, _ map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = append(a.rows, auditRow{level, message, userID})
}

func newAuth(t *testing.T) (service.AuthService, *gorm.DB, *memAudit) {
	t.Helper()
	db := testutil.NewDB(t)
	tokens, err := myjwt.NewManager("test-secret", "ChatEduca", "7d")
	require.NoError(t, err)
	audit := &memAudit{}
	return service.NewAuthService(persistence.NewUserRepository(db), tokens, audit), db, audit
}

func TestRegister(t *testing.T) {
	svc, db, audit := newAuth(t)
	ctx := context.Background()

	out, err := svc.Register(ctx, request.RegisterRequest{Email: " Pai@Demo.com ", Password: "secret", Name: "Carlos", UserType: "parent"})
	require.NoError(t, err)
	assert.Equal(t, "pai@demo.com", out.User.Email)
	assert.Equal(t, "parent", out.User.Role)
	assert.Equal(t, "Usuário criado com sucesso", out.Message)

	var stored entity.User
	require.NoError(t, db.Where("email = ?", "pai@demo.com").First(&stored).Error)
	assert.NotEqual(t, "secret", stored.Password)

	_, err = svc.Register(ctx, request.RegisterRequest{Email: "pai@demo.com", Password: "x", Name: "Outro"})
	assert.True(t, xerr.Is(err, xerr.CodeConflict))

	_, err = svc.Register(ctx, request.RegisterRequest{Email: "a@b.com", Password: "x"})
	assert.True(t, xerr.Is(err, xerr.CodeValidation))

	out, err = svc.Register(ctx, request.RegisterRequest{Email: "adm@demo.com", Password: "x", Name: "Adm", UserType: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "student", out.User.Role)

	require.NotEmpty(t, audit.rows)
	assert.Equal(t, "info", audit.rows[0].level)
}

func TestLoginVerifyRefresh(t *testing.T) {
	svc, _, audit := newAuth(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, request.RegisterRequest{Email: "aluno@demo.com", Password: "user123", Name: "João"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, request.LoginRequest{Email: "aluno@demo.com", Password: "wrong"})
	assert.Equal(t, xerr.ErrInvalidLogin, err)
	_, err = svc.Login(ctx, request.LoginRequest{Email: "ninguem@demo.com", Password: "user123"})
	assert.Equal(t, xerr.ErrInvalidLogin, err)
	assert.Equal(t, "warn", audit.rows[len(audit.rows)-1].level)

	login, err := svc.Login(ctx, request.LoginRequest{Email: "ALUNO@demo.com", Password: "user123"})
	require.NoError(t, err)
	assert.Equal(t, "7d", login.ExpiresIn)

	claims, err := svc.VerifyToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.Id, claims.UserId)
	assert.Equal(t, "student", claims.Role)

	_, err = svc.VerifyToken(login.Token + "x")
	assert.True(t, xerr.Is(err, xerr.CodeAuthentication))

	refreshed, err := svc.RefreshToken(ctx, reg.User.Id)
	require.NoError(t, err)
	_, err = svc.VerifyToken(refreshed.Token)
	assert.NoError(t, err)

	me, err := svc.Me(ctx, reg.User.Id)
	require.NoError(t, err)
	assert.Equal(t, "João", me.Name)

	_, err = svc.Me(ctx, "missing")
	assert.True(t, xerr.Is(err, xerr.CodeAuthentication))
}
