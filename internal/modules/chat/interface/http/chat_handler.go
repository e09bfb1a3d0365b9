package handler

import (
	"strings"

	jwtMiddleware "ChatEduca/internal/middleware/jwt"
	"ChatEduca/internal/modules/chat/application/dto/request"
	"ChatEduca/internal/modules/chat/application/dto/respond"
	"ChatEduca/internal/modules/chat/application/service"
	"ChatEduca/pkg/back"
	"ChatEduca/pkg/util"
	"ChatEduca/pkg/xerr"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	svc service.ChatService
}

func NewChatHandler(svc service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

func bindChat(c *gin.Context) (service.StreamRequest, bool) {
	var req request.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Fail(c, xerr.Validation("Mensagem não pode estar vazia"))
		return service.StreamRequest{}, false
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = util.GenerateSessionID()
	}
	return service.StreamRequest{
		Message:   req.Message,
		SessionID: sessionID,
		UserID:    jwtMiddleware.CurrentUserID(c),
	}, true
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	req, ok := bindChat(c)
	if !ok {
		return
	}
	data, err := h.svc.Chat(c.Request.Context(), req)
	back.Result(c, data, err)
}

// Stream relays the answer as SSE. Errors found before the first byte are
// plain JSON responses; afterwards only a single error frame is written.
//
// Route: POST /chat/streaming
func (h *ChatHandler) Stream(c *gin.Context) {
	req, ok := bindChat(c)
	if !ok {
		return
	}

	events, err := h.svc.ChatStream(c.Request.Context(), req)
	if err != nil {
		back.Fail(c, err)
		return
	}

	c.Header("X-Session-ID", req.SessionID)
	back.Stream(c, events, func(ev respond.StreamEvent) bool { return ev.Type == respond.EventError })
}

// History handles GET /chat/history?session_id&page&limit
func (h *ChatHandler) History(c *gin.Context) {
	page, limit := back.PageQuery(c, 50)
	data, err := h.svc.History(c.Request.Context(), jwtMiddleware.CurrentUserID(c), strings.TrimSpace(c.Query("session_id")), page, limit)
	back.Result(c, data, err)
}

// Clear handles DELETE /chat/clear
func (h *ChatHandler) Clear(c *gin.Context) {
	var req request.ClearRequest
	_ = c.ShouldBindJSON(&req)
	if req.SessionID == "" {
		req.SessionID = c.Query("session_id")
	}
	data, err := h.svc.Clear(c.Request.Context(), jwtMiddleware.CurrentUserID(c), req.SessionID)
	back.Result(c, data, err)
}

// Health handles GET /chat/health
func (h *ChatHandler) Health(c *gin.Context) {
	data, err := h.svc.Health(c.Request.Context())
	back.Result(c, data, err)
}
