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
	"ChatEduca/pkg/util"
	"ChatEduca/pkg/util/myjwt"
	"ChatEduca/pkg/xerr"
	"ChatEduca/pkg/zlog"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

type AuthService interface {
	Register(ctx context.Context, req request.RegisterRequest) (*respond.RegisterRespond, error)
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	VerifyToken(token string) (*myjwt.CustomClaims, error)
	RefreshToken(ctx context.Context, userID string) (*respond.TokenRespond, error)
	Me(ctx context.Context, userID string) (*respond.UserRespond, error)
}

type authServiceImpl struct {
	users  repository.UserRepository
	tokens *myjwt.Manager
	audit  AuditLogger
}

func NewAuthService(users repository.UserRepository, tokens *myjwt.Manager, audit AuditLogger) AuthService {
	return &authServiceImpl{users: users, tokens: tokens, audit: auditOrNop(audit)}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RoleForUserType maps the registration userType; registration never grants admin.
func RoleForUserType(userType string) entity.Role {
	if strings.EqualFold(strings.TrimSpace(userType), string(entity.RoleParent)) {
		return entity.RoleParent
	}
	return entity.RoleStudent
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authServiceImpl) Register(ctx context.Context, req request.RegisterRequest) (*respond.RegisterRespond, error) {
	email := NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return nil, xerr.Validation("Email, senha e nome são obrigatórios")
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, xerr.Conflict("Email já cadastrado")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &entity.User{
		Uuid:     util.GenerateUUID(),
		Email:    email,
		Name:     name,
		Password: hash,
		Role:     RoleForUserType(req.UserType),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, xerr.Conflict("Email já cadastrado")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	zlog.Info("user registered", zap.String("user_id", user.Uuid), zap.String("role", string(user.Role)))
	s.audit.Record(ctx, "info", "Usuário registrado", user.Uuid, map[string]interface{}{"email": user.Email, "role": string(user.Role)})

	return &respond.RegisterRespond{
		User:    respond.FromUser(user),
		Message: "Usuário criado com sucesso",
	}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, xerr.Validation("Email e senha são obrigatórios")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit.Record(ctx, "warn", "Falha de login", "", map[string]interface{}{"email": email})
			return nil, xerr.ErrInvalidLogin
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		s.audit.Record(ctx, "warn", "Falha de login", user.Uuid, map[string]interface{}{"email": email})
		return nil, xerr.ErrInvalidLogin
	}

	token, err := s.tokens.GenerateToken(user.Uuid, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &respond.LoginRespond{
		Token:     token,
		User:      respond.FromUser(user),
		ExpiresIn: s.tokens.ExpiresIn(),
	}, nil
}

func (s *authServiceImpl) VerifyToken(token string) (*myjwt.CustomClaims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, xerr.ErrInvalidToken
	}
	return claims, nil
}

func (s *authServiceImpl) RefreshToken(ctx context.Context, userID string) (*respond.TokenRespond, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.GenerateToken(user.Uuid, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &respond.TokenRespond{Token: token, ExpiresIn: s.tokens.ExpiresIn()}, nil
}

func (s *authServiceImpl) Me(ctx context.Context, userID string) (*respond.UserRespond, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := respond.FromUser(user)
	return &out, nil
}

func (s *authServiceImpl) loadUser(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, xerr.Authentication("")
	}
	user, err := s.users.GetByUuid(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.Authentication("Usuário não encontrado")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
