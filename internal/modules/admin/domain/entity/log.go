package entity

import (
	"time"

	"gorm.io/datatypes"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Log is an append-only audit row.
type Log struct {
	Id        int64             `gorm:"column:id;primaryKey;autoIncrement;comment:auto increment id" json:"id"`
	Level     string            `gorm:"column:level;type:varchar(10);index;not null;comment:debug info warn error" json:"level"`
	Message   string            `gorm:"column:message;type:text;not null;comment:message" json:"message"`
	UserId    *string           `gorm:"column:user_id;type:char(36);index;comment:acting user uuid" json:"userId"`
	RequestId *string           `gorm:"column:request_id;type:varchar(64);comment:request id" json:"requestId"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata;comment:structured context" json:"metadata"`
	CreatedAt time.Time         `gorm:"column:created_at;index;not null;comment:created at" json:"createdAt"`
}

func (Log) TableName() string {
	return "logs"
}

func ValidLevel(level string) bool {
	switch level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}
