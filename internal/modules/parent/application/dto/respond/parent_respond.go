package respond

import "time"

type StudentItem struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type SubjectCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type RecentActivity struct {
	Date  string `json:"date"`
	Topic string `json:"topic"`
}

type StudentStatsRespond struct {
	TotalSessions  int              `json:"totalSessions"`
	TotalMessages  int              `json:"totalMessages"`
	Subjects       []SubjectCount   `json:"subjects"`
	RecentActivity []RecentActivity `json:"recentActivity"`
}

type HistoryMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type HistorySession struct {
	SessionId    string           `json:"sessionId"`
	Date         time.Time        `json:"date"`
	MessageCount int              `json:"messageCount"`
	Messages     []HistoryMessage `json:"messages"`
}

type ReportMessage struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

type ReportContext struct {
	StudentName       string          `json:"studentName"`
	TotalMessages     int             `json:"totalMessages"`
	AssistantMessages int             `json:"assistantMessages"`
	MessagesAnalyzed  int             `json:"messagesAnalyzed"`
	Messages          []ReportMessage `json:"messages"`
}

type ReportRespond struct {
	Prompt  string         `json:"prompt"`
	Context *ReportContext `json:"context"`
}

type LinkRespond struct {
	ParentId  string    `json:"parentId"`
	StudentId string    `json:"studentId"`
	CreatedAt time.Time `json:"createdAt"`
	Message   string    `json:"message"`
}
