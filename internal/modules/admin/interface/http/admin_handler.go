package handler

import (
	"net/http"

	"ChatEduca/internal/modules/admin/application/service"
	"ChatEduca/pkg/back"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	svc service.AdminService
}

func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	data, err := h.svc.Stats(c.Request.Context())
	back.JSON(c, http.StatusOK, data, err)
}

func (h *AdminHandler) Logs(c *gin.Context) {
	page, limit := back.PageQuery(c, 50)
	data, err := h.svc.Logs(c.Request.Context(), c.Query("level"), page, limit)
	back.JSON(c, http.StatusOK, data, err)
}
