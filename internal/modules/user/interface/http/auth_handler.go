package handler

import (
	"net/http"

	jwtMiddleware "ChatEduca/internal/middleware/jwt"
	"ChatEduca/internal/modules/user/application/dto/request"
	"ChatEduca/internal/modules/user/application/service"
	"ChatEduca/pkg/back"
	"ChatEduca/pkg/xerr"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Fail(c, xerr.ErrParam)
		return
	}
	data, err := h.svc.Register(c.Request.Context(), req)
	back.JSON(c, http.StatusCreated, data, err)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Fail(c, xerr.ErrParam)
		return
	}
	data, err := h.svc.Login(c.Request.Context(), req)
	back.JSON(c, http.StatusOK, data, err)
}

func (h *AuthHandler) Me(c *gin.Context) {
	data, err := h.svc.Me(c.Request.Context(), jwtMiddleware.CurrentUserID(c))
	back.JSON(c, http.StatusOK, data, err)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	data, err := h.svc.RefreshToken(c.Request.Context(), jwtMiddleware.CurrentUserID(c))
	back.JSON(c, http.StatusOK, data, err)
}
