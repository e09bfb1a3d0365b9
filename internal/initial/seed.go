package initial

import (
	"context"
	"errors"
	"fmt"

	"ChatEduca/internal/modules/user/application/service"
	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/internal/modules/user/infrastructure/persistence"
	"ChatEduca/pkg/zlog"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedUser struct {
	email    string
	name     string
	password string
	role     entity.Role
}

var seedUsers = []seedUser{
	{"admin@chateduca.com", "Administrador", "admin123", entity.RoleAdmin},
	{"aluno@demo.com", "João Silva", "user123", entity.RoleStudent},
	{"responsavel@demo.com", "Maria Santos", "user123", entity.RoleParent},
}

// Seed creates the demo accounts and links the demo parent to the demo
// student. Existing rows are left untouched, so it can run repeatedly.
func Seed(ctx context.Context, db *gorm.DB) error {
	users := persistence.NewUserRepository(db)
	links := persistence.NewParentStudentRepository(db)

	ids := make(map[string]string, len(seedUsers))
	for _, su := range seedUsers {
		existing, err := users.GetByEmail(ctx, su.email)
		if err == nil {
			ids[su.email] = existing.Uuid
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup %s: %w", su.email, err)
		}

		hash, err := service.HashPassword(su.password)
		if err != nil {
			return err
		}
		u := &entity.User{Uuid: uuid.NewString(), Email: su.email, Name: su.name, Password: hash, Role: su.role}
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("create %s: %w", su.email, err)
		}
		ids[su.email] = u.Uuid
		zlog.Info("seeded user", zap.String("email", su.email), zap.String("role", string(su.role)))
	}

	parentID, studentID := ids["responsavel@demo.com"], ids["aluno@demo.com"]
	linked, err := links.Exists(ctx, parentID, studentID)
	if err != nil {
		return fmt.Errorf("check demo link: %w", err)
	}
	if !linked {
		if err := links.Create(ctx, &entity.ParentStudent{ParentId: parentID, StudentId: studentID}); err != nil {
			return fmt.Errorf("create demo link: %w", err)
		}
	}
	return nil
}
