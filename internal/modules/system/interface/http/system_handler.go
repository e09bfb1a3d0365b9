package handler

import (
	"net/http"
	"time"

	"ChatEduca/internal/modules/system/application/service"
	"ChatEduca/pkg/back"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	svc service.SystemService
}

func NewSystemHandler(svc service.SystemService) *SystemHandler {
	return &SystemHandler{svc: svc}
}

func (h *SystemHandler) Status(c *gin.Context) {
	back.Success(c, h.svc.Status(c.Request.Context()))
}

func (h *SystemHandler) Config(c *gin.Context) {
	back.Success(c, h.svc.Config())
}

// Liveness answers GET /health without touching any dependency.
func (h *SystemHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339Nano)})
}
