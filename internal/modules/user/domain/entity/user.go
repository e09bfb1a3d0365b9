package entity

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles. Legacy spellings found in older
// rows are folded into it when the column is scanned.
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
)

// ParseRole normalizes a stored or client supplied role name. Unknown names
// become RoleUser.
func ParseRole(s string) Role {
	if r, ok := LookupRole(s); ok {
		return r
	}
	return RoleUser
}

// LookupRole is ParseRole without the fallback.
func LookupRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "aluno":
		return RoleStudent, true
	case "parent", "responsavel", "responsável", "guardian":
		return RoleParent, true
	case "admin":
		return RoleAdmin, true
	case "user":
		return RoleUser, true
	}
	return "", false
}

// Scan implements sql.Scanner.
func (r *Role) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = RoleUser
	case string:
		*r = ParseRole(v)
	case []byte:
		*r = ParseRole(string(v))
	default:
		return fmt.Errorf("unsupported role column type %T", value)
	}
	return nil
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	if r == "" {
		return string(RoleStudent), nil
	}
	return string(r), nil
}

// User is an account row.
type User struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement;comment:auto increment id"`
	Uuid      string    `gorm:"column:uuid;type:char(36);uniqueIndex;not null;comment:public user id"`
	Email     string    `gorm:"column:email;type:varchar(191);uniqueIndex;not null;comment:login email"`
	Name      string    `gorm:"column:name;type:varchar(100);not null;comment:display name"`
	Password  string    `gorm:"column:password;type:varchar(100);not null;comment:bcrypt hash"`
	Role      Role      `gorm:"column:role;type:varchar(20);not null;default:student;comment:role"`
	CreatedAt time.Time `gorm:"column:created_at;not null;comment:created at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;comment:updated at"`
}

func (User) TableName() string {
	return "users"
}

// ParentStudent links a parent account to a student account.
type ParentStudent struct {
	ParentId  string    `gorm:"column:parent_id;type:char(36);primaryKey;comment:parent uuid"`
	StudentId string    `gorm:"column:student_id;type:char(36);primaryKey;index;comment:student uuid"`
	CreatedAt time.Time `gorm:"column:created_at;not null;comment:created at"`
}

func (ParentStudent) TableName() string {
	return "parent_students"
}
