package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/pkg/util/myjwt"
	"ChatEduca/pkg/xerr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type managerVerifier struct{ m *myjwt.Manager }

func (v managerVerifier) VerifyToken(token string) (*myjwt.CustomClaims, error) {
	claims, err := v.m.ParseToken(token)
	if err != nil {
		return nil, xerr.ErrInvalidToken
	}
	return claims, nil
}

func newEngine(t *testing.T) (*gin.Engine, *myjwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := myjwt.NewManager("test-secret-test-secret-test-secret", "test", "1h")
	require.NoError(t, err)

	r := gin.New()
	authed := r.Group("/", Auth(managerVerifier{m}))
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c), "role": string(CurrentRole(c))})
	})
	authed.GET("/admin", RequireRoles(entity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, m
}

func do(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRejectsMissingAndMalformedHeaders(t *testing.T) {
	r, _ := newEngine(t)

	w := do(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), xerr.CodeAuthentication)

	w = do(r, "/me", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/me", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthNormalizesLegacyRole(t *testing.T) {
	r, m := newEngine(t)
	token, err := m.GenerateToken("u-1", "a@b.com", "responsavel")
	require.NoError(t, err)

	w := do(r, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u-1","role":"parent"}`, w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	r, m := newEngine(t)

	student, err := m.GenerateToken("u-1", "a@b.com", "student")
	require.NoError(t, err)
	w := do(r, "/admin", "Bearer "+student)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), xerr.CodeAuthorization)

	admin, err := m.GenerateToken("u-2", "root@b.com", "admin")
	require.NoError(t, err)
	w = do(r, "/admin", "Bearer "+admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
