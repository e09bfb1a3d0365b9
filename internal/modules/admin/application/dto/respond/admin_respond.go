package respond

import (
	"time"

	"ChatEduca/internal/modules/admin/domain/repository"
	"ChatEduca/pkg/back"
)

type Totals struct {
	Users    int64 `json:"users"`
	Sessions int64 `json:"sessions"`
	Messages int64 `json:"messages"`
	Logs     int64 `json:"logs"`
}

type Recent struct {
	UsersLast7Days      int64 `json:"usersLast7Days"`
	SessionsLast24Hours int64 `json:"sessionsLast24Hours"`
}

type LogLevels struct {
	ByLevel map[string]int64 `json:"byLevel"`
}

type StatsRespond struct {
	Totals      Totals                  `json:"totals"`
	Recent      Recent                  `json:"recent"`
	Logs        LogLevels               `json:"logs"`
	ActiveUsers []repository.ActiveUser `json:"activeUsers"`
}

type LogUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LogItem struct {
	Id        int64                  `json:"id"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	UserId    *string                `json:"userId"`
	RequestId *string                `json:"requestId"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"createdAt"`
	User      *LogUser               `json:"user"`
}

type LogListRespond struct {
	Logs       []LogItem       `json:"logs"`
	Pagination back.Pagination `json:"pagination"`
}
