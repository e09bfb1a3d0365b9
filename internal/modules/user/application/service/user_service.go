package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ChatEduca/internal/modules/user/application/dto/request"
	"ChatEduca/internal/modules/user/application/dto/respond"
	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/internal/modules/user/domain/repository"
	"ChatEduca/pkg/back"
	"ChatEduca/pkg/xerr"

	"gorm.io/gorm"
)

// Actor is the authenticated caller as read from the token.
type Actor struct {
	UserID string
	Role   entity.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

func (a Actor) canAccess(userID string) bool {
	return a.IsAdmin() || a.UserID == userID
}

type UserService interface {
	List(ctx context.Context, actor Actor, page, limit int) (*respond.UserListRespond, error)
	Get(ctx context.Context, actor Actor, id string) (*respond.UserDetailRespond, error)
	Update(ctx context.Context, actor Actor, id string, req request.UpdateUserRequest) (*respond.UpdateUserRespond, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type userServiceImpl struct {
	users repository.UserRepository
	audit AuditLogger
}

func NewUserService(users repository.UserRepository, audit AuditLogger) UserService {
	return &userServiceImpl{users: users, audit: auditOrNop(audit)}
}

func (s *userServiceImpl) List(ctx context.Context, actor Actor, page, limit int) (*respond.UserListRespond, error) {
	if !actor.IsAdmin() {
		return nil, xerr.Authorization("Acesso negado. Apenas administradores podem listar usuários.")
	}
	users, total, err := s.users.List(ctx, back.Offset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]respond.UserRespond, 0, len(users))
	for i := range users {
		out = append(out, respond.FromUser(&users[i]))
	}
	return &respond.UserListRespond{Users: out, Pagination: back.NewPagination(page, limit, total)}, nil
}

func (s *userServiceImpl) Get(ctx context.Context, actor Actor, id string) (*respond.UserDetailRespond, error) {
	if !actor.canAccess(id) {
		return nil, xerr.Authorization("Acesso negado")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	messages, sessions, err := s.users.CountActivity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}
	return &respond.UserDetailRespond{
		UserRespond: respond.FromUser(user),
		Count:       respond.ActivityCount{Messages: messages, Sessions: sessions},
	}, nil
}

func (s *userServiceImpl) Update(ctx context.Context, actor Actor, id string, req request.UpdateUserRequest) (*respond.UpdateUserRespond, error) {
	if !actor.canAccess(id) {
		return nil, xerr.Authorization("Acesso negado")
	}
	if req.Role != "" && !actor.IsAdmin() {
		return nil, xerr.Authorization("Apenas administradores podem alterar o papel do usuário")
	}
	var role entity.Role
	if req.Role != "" {
		r, ok := entity.LookupRole(req.Role)
		if !ok {
			return nil, xerr.Validation("Papel inválido. Use: student, parent, admin ou user")
		}
		role = r
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if email := NormalizeEmail(req.Email); email != "" && email != user.Email {
		_, err := s.users.GetByEmail(ctx, email)
		if err == nil {
			return nil, xerr.Conflict("Email já está em uso")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		user.Email = email
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if role != "" {
		user.Role = role
	}
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, xerr.Conflict("Email já está em uso")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &respond.UpdateUserRespond{User: respond.FromUser(user), Message: "Usuário atualizado com sucesso"}, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return xerr.Authorization("Acesso negado. Apenas administradores podem excluir usuários.")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xerr.NotFound("Usuário")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.audit.Record(ctx, "info", "Usuário excluído", actor.UserID, map[string]interface{}{"deletedUserId": id})
	return nil
}

func (s *userServiceImpl) find(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.users.GetByUuid(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.NotFound("Usuário")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
