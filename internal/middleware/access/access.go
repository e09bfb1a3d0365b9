package access

import (
	"strconv"
	"strings"
	"time"

	"ChatEduca/pkg/metrics"
	"ChatEduca/pkg/util"
	"ChatEduca/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// Log tags every request with an id, stores it on the request context for
// the audit log, then writes one access line and records metrics.
func Log(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(util.WithRequestID(c.Request.Context(), id))

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("ip", c.ClientIP()),
		}
		if uid := c.GetString("userId"); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		switch {
		case status >= 500:
			zlog.Error("request", fields...)
		case status >= 400:
			zlog.Warn("request", fields...)
		default:
			zlog.Info("request", fields...)
		}

		m.ObserveHTTP(c.FullPath(), c.Request.Method, strconv.Itoa(status), elapsed.Seconds())
	}
}
