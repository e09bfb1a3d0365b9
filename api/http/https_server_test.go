package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ChatEduca/internal/config"
	"ChatEduca/internal/modules/user/application/service"
	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/internal/testutil"
	"ChatEduca/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type app struct {
	t  *testing.T
	h  http.Handler
	db *gorm.DB
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/streaming":
			w.Header().Set("Content-Type", "text/event-stream")
			for _, f := range []string{`{"type":"chunk","content":"Olá"}`, `{"type":"sources","sources":["a.pdf"]}`, `{"type":"done"}`} {
				fmt.Fprintf(w, "data: %s\n\n", f)
			}
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	conf := &config.Config{}
	conf.Environment = "test"
	conf.JwtConfig = config.JwtConfig{Key: "test-secret", Issuer: "ChatEduca", ExpiresIn: "1h"}
	conf.RagConfig = config.RagConfig{BaseURL: upstream.URL, TimeoutSeconds: 5}
	conf.RateLimitConfig = config.RateLimitConfig{WindowMs: 60000, MaxRequests: 1000}
	conf.Origins = []string{"http://localhost:3000"}
	conf.TurnTopic = "turns"

	db := testutil.NewDB(t)
	router, err := NewRouter(Deps{Config: conf, DB: db, Metrics: metrics.New("test")})
	require.NoError(t, err)
	return &app{t: t, h: router, db: db}
}

func (a *app) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *app) login(email, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode(a.t, w)["token"].(string)
}

func (a *app) createUser(email, name string, role entity.Role) *entity.User {
	a.t.Helper()
	hash, err := service.HashPassword("secret123")
	require.NoError(a.t, err)
	u := &entity.User{Uuid: uuid.NewString(), Email: email, Name: name, Password: hash, Role: role}
	require.NoError(a.t, a.db.Create(u).Error)
	return u
}

func TestRegisterLoginMe(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "Aluno@Demo.com", "password": "secret123", "name": "João Silva",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "aluno@demo.com", user["email"])
	assert.Equal(t, "student", user["role"])
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "aluno@demo.com", "password": "x", "name": "Outro",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "aluno@demo.com", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "AUTHENTICATION_ERROR", body["error"].(map[string]interface{})["code"])

	token := a.login("aluno@demo.com", "secret123")
	w = a.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "João Silva", decode(t, w)["name"])

	w = a.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = a.do(http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamingTurn(t *testing.T) {
	a := newApp(t)
	a.createUser("aluno@demo.com", "João Silva", entity.RoleStudent)
	token := a.login("aluno@demo.com", "secret123")

	w := a.do(http.MethodPost, "/api/chat/streaming", token, map[string]string{"message": "  ", "session_id": "s-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = a.do(http.MethodPost, "/api/chat/streaming", token, map[string]string{"message": "Oi", "session_id": strings.Repeat("x", 101)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["error"].(map[string]interface{})["code"])

	w = a.do(http.MethodPost, "/api/chat/streaming", token, map[string]string{"message": "Oi", "session_id": "s-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	frames := strings.Split(strings.TrimSpace(w.Body.String()), "\n\n")
	assert.Equal(t, []string{
		`data: {"type":"token","content":"Olá"}`,
		`data: {"type":"sources","content":["a.pdf"]}`,
		`data: {"type":"complete","content":"done"}`,
		`data: [DONE]`,
	}, frames)

	w = a.do(http.MethodGet, "/api/chat/history?session_id=s-1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	msgs := data["messages"].([]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "Olá", msgs[1].(map[string]interface{})["content"])

	a.createUser("outro@demo.com", "Outro", entity.RoleStudent)
	other := a.login("outro@demo.com", "secret123")
	w = a.do(http.MethodPost, "/api/chat/streaming", other, map[string]string{"message": "Oi", "session_id": "s-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoleGuards(t *testing.T) {
	a := newApp(t)
	a.createUser("admin@demo.com", "Admin", entity.RoleAdmin)
	parent := a.createUser("mae@demo.com", "Maria Santos", entity.RoleParent)
	student := a.createUser("aluno@demo.com", "João Silva", entity.RoleStudent)

	studentToken := a.login("aluno@demo.com", "secret123")
	adminToken := a.login("admin@demo.com", "secret123")
	parentToken := a.login("mae@demo.com", "secret123")

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/admin/stats", studentToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/users", studentToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/parent/students", studentToken, nil).Code)

	w := a.do(http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(3), decode(t, w)["totals"].(map[string]interface{})["users"])

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/parent/stats/"+student.Uuid, parentToken, nil).Code)

	w = a.do(http.MethodPost, "/api/admin/links", adminToken, map[string]string{"parentId": parent.Uuid, "studentId": student.Uuid})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/parent/students", parentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var students []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &students))
	require.Len(t, students, 1)
	assert.Equal(t, student.Uuid, students[0]["id"])

	w = a.do(http.MethodGet, "/api/parent/stats/"+student.Uuid, parentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["totalMessages"])

	w = a.do(http.MethodPost, "/api/parent/report/"+student.Uuid, parentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["prompt"], "aluno João Silva")
}

func TestPublicEndpoints(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = a.do(http.MethodGet, "/api/system/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])

	w = a.do(http.MethodGet, "/api/chat/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")

	w = a.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
