package entity

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is immutable once written. Id breaks created_at ties.
type Message struct {
	Id        int64                       `gorm:"column:id;primaryKey;autoIncrement;comment:auto increment id"`
	SessionId string                      `gorm:"column:session_id;type:varchar(100);index:idx_session_created,priority:1;not null;comment:session id"`
	UserId    *string                     `gorm:"column:user_id;type:char(36);index;comment:author uuid"`
	Role      string                      `gorm:"column:role;type:varchar(20);not null;comment:user or assistant"`
	Content   string                      `gorm:"column:content;type:text;not null;comment:message text"`
	Sources   datatypes.JSONSlice[string] `gorm:"column:sources;comment:retrieval sources"`
	CreatedAt time.Time                   `gorm:"column:created_at;index:idx_session_created,priority:2;not null;comment:created at"`
}

func (Message) TableName() string {
	return "messages"
}
