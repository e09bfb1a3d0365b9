package back

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ChatEduca/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const doneFrame = "data: [DONE]\n\n"

// Stream writes every event as a "data: <json>" frame and ends with
// "data: [DONE]" unless isError matched one of them. The channel is always
// drained, even after the client went away, so the producer can finish.
func Stream[T any](c *gin.Context, events <-chan T, isError func(T) bool) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	failed, gone := false, false
	for ev := range events {
		if isError != nil && isError(ev) {
			failed = true
		}
		if gone {
			continue
		}
		raw, err := json.Marshal(ev)
		if err != nil {
			zlog.Error("marshal stream event", zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", raw); err != nil {
			gone = true
			continue
		}
		c.Writer.Flush()
	}

	if !failed && !gone {
		_, _ = fmt.Fprint(c.Writer, doneFrame)
		c.Writer.Flush()
	}
}
