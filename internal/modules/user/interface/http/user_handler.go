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

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func actor(c *gin.Context) service.Actor {
	return service.Actor{UserID: jwtMiddleware.CurrentUserID(c), Role: jwtMiddleware.CurrentRole(c)}
}

func (h *UserHandler) List(c *gin.Context) {
	page, limit := back.PageQuery(c, 10)
	data, err := h.svc.List(c.Request.Context(), actor(c), page, limit)
	back.JSON(c, http.StatusOK, data, err)
}

func (h *UserHandler) Get(c *gin.Context) {
	data, err := h.svc.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		back.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": data})
}

func (h *UserHandler) Update(c *gin.Context) {
	var req request.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Fail(c, xerr.ErrParam)
		return
	}
	data, err := h.svc.Update(c.Request.Context(), actor(c), c.Param("id"), req)
	back.JSON(c, http.StatusOK, data, err)
}

func (h *UserHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), actor(c), c.Param("id"))
	back.JSON(c, http.StatusOK, gin.H{"message": "Usuário excluído com sucesso"}, err)
}
