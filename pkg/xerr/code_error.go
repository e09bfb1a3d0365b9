package xerr

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeError is a business error carrying the HTTP status and a stable code.
type CodeError struct {
	Status  int                    `json:"-"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements error.
func (e *CodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails returns a copy carrying the given details.
func (e *CodeError) WithDetails(details map[string]interface{}) *CodeError {
	cp := *e
	cp.Details = details
	return &cp
}

// New creates a CodeError.
func New(status int, code, msg string) *CodeError {
	return &CodeError{Status: status, Code: code, Message: msg}
}

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT_ERROR"
	CodeBackend        = "BACKEND_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

func Validation(msg string) *CodeError {
	return New(http.StatusBadRequest, CodeValidation, msg)
}

func Authentication(msg string) *CodeError {
	if msg == "" {
		msg = "Não autenticado"
	}
	return New(http.StatusUnauthorized, CodeAuthentication, msg)
}

func Authorization(msg string) *CodeError {
	if msg == "" {
		msg = "Sem permissão"
	}
	return New(http.StatusForbidden, CodeAuthorization, msg)
}

// NotFound takes the resource name, e.g. NotFound("Usuário").
func NotFound(resource string) *CodeError {
	return New(http.StatusNotFound, CodeNotFound, resource+" não encontrado")
}

func Conflict(msg string) *CodeError {
	return New(http.StatusConflict, CodeConflict, msg)
}

func Backend(msg string, cause error) *CodeError {
	e := New(http.StatusBadGateway, CodeBackend, msg)
	if cause != nil {
		e.Details = map[string]interface{}{"cause": cause.Error()}
	}
	return e
}

func Internal() *CodeError {
	return New(http.StatusInternalServerError, CodeInternal, "Erro interno do servidor")
}

// As extracts the first CodeError in err's chain.
func As(err error) (*CodeError, bool) {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Is reports whether err carries a CodeError with the given code.
func Is(err error, code string) bool {
	ce, ok := As(err)
	return ok && ce.Code == code
}

// Common errors.
var (
	ErrParam        = Validation("Parâmetros inválidos")
	ErrInvalidLogin = Authentication("Email ou senha inválidos")
	ErrInvalidToken = Authentication("Token inválido ou expirado")
)
