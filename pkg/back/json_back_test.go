package back

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ChatEduca/pkg/xerr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failWith(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	Fail(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body["error"].(map[string]interface{})
}

func TestBackendCauseOnlyInDevelopment(t *testing.T) {
	defer func(prev bool) { Development = prev }(Development)
	cause := errors.New("dial tcp 10.0.0.7:8000: connection refused")

	Development = false
	code, body := failWith(t, xerr.Backend("Erro ao comunicar com o backend", cause))
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, xerr.CodeBackend, body["code"])
	assert.NotContains(t, body, "details")

	Development = true
	_, body = failWith(t, xerr.Backend("Erro ao comunicar com o backend", cause))
	assert.Equal(t, cause.Error(), body["details"].(map[string]interface{})["cause"])
}

func TestUnknownErrorBecomesInternal(t *testing.T) {
	defer func(prev bool) { Development = prev }(Development)
	Development = false

	code, body := failWith(t, errors.New("sql: connection is already closed"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, xerr.CodeInternal, body["code"])
	assert.NotContains(t, body, "details")
}

func TestValidationDetailsAreKept(t *testing.T) {
	_, body := failWith(t, xerr.Validation("Dados inválidos").WithDetails(map[string]interface{}{"field": "email"}))
	assert.Equal(t, "email", body["details"].(map[string]interface{})["field"])
}
