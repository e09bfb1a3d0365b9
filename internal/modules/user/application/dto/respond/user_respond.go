package respond

import (
	"time"

	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/pkg/back"
)

// UserRespond is the public view of a user; the password hash never leaves the service.
type UserRespond struct {
	Id        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromUser(u *entity.User) UserRespond {
	return UserRespond{
		Id:        u.Uuid,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type ActivityCount struct {
	Messages int64 `json:"messages"`
	Sessions int64 `json:"sessions"`
}

type UserDetailRespond struct {
	UserRespond
	Count ActivityCount `json:"_count"`
}

type UserListRespond struct {
	Users      []UserRespond   `json:"users"`
	Pagination back.Pagination `json:"pagination"`
}

type UpdateUserRespond struct {
	User    UserRespond `json:"user"`
	Message string      `json:"message"`
}
