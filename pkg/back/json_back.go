package back

import (
	"net/http"
	"time"

	"ChatEduca/pkg/xerr"
	"ChatEduca/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope used by the chat/system routes and by every error.
type Response struct {
	Success   bool            `json:"success"`
	Data      interface{}     `json:"data,omitempty"`
	Error     *xerr.CodeError `json:"error,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// Development toggles leaking the original error text of unknown failures.
var Development bool

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Result writes data in the envelope, or the error if err != nil.
func Result(c *gin.Context, data interface{}, err error) {
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, data)
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

// JSON writes data as is, for routes whose clients expect bare objects.
func JSON(c *gin.Context, status int, data interface{}, err error) {
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(status, data)
}

// Fail translates err to the error envelope and aborts the chain.
func Fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(StatusOf(err), ErrorBody(c, err))
}

// StatusOf returns the HTTP status err maps to.
func StatusOf(err error) int {
	if ce, ok := xerr.As(err); ok && ce.Status != 0 {
		return ce.Status
	}
	return http.StatusInternalServerError
}

// ErrorBody builds the error envelope, logging unknown errors.
func ErrorBody(c *gin.Context, err error) Response {
	ce, ok := xerr.As(err)
	if ok {
		zlog.Warn(ce.Code+": "+ce.Message, zap.String("path", requestPath(c)), zap.Any("details", ce.Details))
		// upstream causes carry internal addresses
		if ce.Code == xerr.CodeBackend && !Development {
			ce = ce.WithDetails(nil)
		}
		return Response{Success: false, Error: ce, Timestamp: now()}
	}

	zlog.Error("unhandled error", zap.Error(err), zap.String("path", requestPath(c)))
	internal := xerr.Internal()
	if Development {
		internal = internal.WithDetails(map[string]interface{}{"original": err.Error()})
	}
	return Response{Success: false, Error: internal, Timestamp: now()}
}

func requestPath(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	return c.Request.URL.Path
}
