package handler

import (
	"fmt"
	"net/http"
	"time"

	jwtMiddleware "ChatEduca/internal/middleware/jwt"
	chatRespond "ChatEduca/internal/modules/chat/application/dto/respond"
	chatService "ChatEduca/internal/modules/chat/application/service"
	"ChatEduca/internal/modules/parent/application/dto/request"
	"ChatEduca/internal/modules/parent/application/dto/respond"
	"ChatEduca/internal/modules/parent/application/service"
	"ChatEduca/pkg/back"
	"ChatEduca/pkg/xerr"

	"github.com/gin-gonic/gin"
)

type ParentHandler struct {
	svc  service.ParentService
	chat chatService.ChatService
}

// NewParentHandler takes the chat service used to stream generated reports.
func NewParentHandler(svc service.ParentService, chat chatService.ChatService) *ParentHandler {
	return &ParentHandler{svc: svc, chat: chat}
}

func (h *ParentHandler) Students(c *gin.Context) {
	data, err := h.svc.GetLinkedStudents(c.Request.Context(), jwtMiddleware.CurrentUserID(c))
	back.JSON(c, http.StatusOK, data, err)
}

func (h *ParentHandler) Stats(c *gin.Context) {
	data, err := h.svc.GetStudentStats(c.Request.Context(), jwtMiddleware.CurrentUserID(c), c.Param("studentId"))
	back.JSON(c, http.StatusOK, data, err)
}

func (h *ParentHandler) History(c *gin.Context) {
	data, err := h.svc.GetStudentHistory(c.Request.Context(), jwtMiddleware.CurrentUserID(c), c.Param("studentId"))
	back.JSON(c, http.StatusOK, data, err)
}

// Report returns {prompt, context}. With ?stream=true the prompt is sent to the
// chat backend and the answer streamed back in a report session of the parent.
func (h *ParentHandler) Report(c *gin.Context) {
	parentID := jwtMiddleware.CurrentUserID(c)
	studentID := c.Param("studentId")

	rc, err := h.svc.GenerateReportContext(c.Request.Context(), parentID, studentID)
	if err != nil {
		back.Fail(c, err)
		return
	}
	prompt := service.BuildReportPrompt(rc)

	if c.Query("stream") != "true" || h.chat == nil {
		c.JSON(http.StatusOK, respond.ReportRespond{Prompt: prompt, Context: rc})
		return
	}

	sessionID := fmt.Sprintf("report-%s-%d", studentID, time.Now().UnixMilli())
	events, err := h.chat.ChatStream(c.Request.Context(), chatService.StreamRequest{
		Message:   prompt,
		SessionID: sessionID,
		UserID:    parentID,
	})
	if err != nil {
		back.Fail(c, err)
		return
	}
	c.Header("X-Session-ID", sessionID)
	back.Stream(c, events, func(ev chatRespond.StreamEvent) bool { return ev.Type == chatRespond.EventError })
}

// Link handles POST /admin/links.
func (h *ParentHandler) Link(c *gin.Context) {
	var req request.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		back.Fail(c, xerr.Validation("parentId e studentId são obrigatórios"))
		return
	}
	data, err := h.svc.LinkStudent(c.Request.Context(), req.ParentId, req.StudentId)
	back.JSON(c, http.StatusCreated, data, err)
}
