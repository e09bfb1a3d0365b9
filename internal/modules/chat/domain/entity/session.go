package entity

import (
	"time"

	"gorm.io/datatypes"
)

// SessionIDMaxLength matches the session_id column width.
const SessionIDMaxLength = 100

// Session groups the messages of one conversation. UserId is nil once the
// owner account has been deleted.
type Session struct {
	Id        int64             `gorm:"column:id;primaryKey;autoIncrement;comment:auto increment id"`
	SessionId string            `gorm:"column:session_id;type:varchar(100);uniqueIndex;not null;comment:public session id"`
	UserId    *string           `gorm:"column:user_id;type:char(36);index;comment:owner uuid"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata;comment:free form metadata"`
	CreatedAt time.Time         `gorm:"column:created_at;not null;comment:created at"`
	UpdatedAt time.Time         `gorm:"column:updated_at;not null;index;comment:bumped on every message"`
}

func (Session) TableName() string {
	return "sessions"
}

// OwnedBy reports whether userID may use the session. Orphaned sessions are
// owned by nobody.
func (s *Session) OwnedBy(userID string) bool {
	return s.UserId != nil && *s.UserId == userID
}
