package respond

import (
	"time"

	"ChatEduca/internal/modules/chat/domain/entity"
	"ChatEduca/pkg/back"
)

type ChatRespond struct {
	Response  string   `json:"response"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
}

type MessageItem struct {
	Id        int64     `json:"id"`
	SessionId string    `json:"sessionId"`
	UserId    *string   `json:"userId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Sources   []string  `json:"sources"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromMessage(m *entity.Message) MessageItem {
	sources := []string(m.Sources)
	if sources == nil {
		sources = []string{}
	}
	return MessageItem{
		Id:        m.Id,
		SessionId: m.SessionId,
		UserId:    m.UserId,
		Role:      m.Role,
		Content:   m.Content,
		Sources:   sources,
		CreatedAt: m.CreatedAt,
	}
}

type SessionItem struct {
	SessionId    string                 `json:"sessionId"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
	MessageCount int64                  `json:"messageCount"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Preview      []MessageItem          `json:"preview"`
}

type MessageHistoryRespond struct {
	Messages   []MessageItem   `json:"messages"`
	Pagination back.Pagination `json:"pagination"`
}

type SessionHistoryRespond struct {
	Sessions   []SessionItem   `json:"sessions"`
	Pagination back.Pagination `json:"pagination"`
}
