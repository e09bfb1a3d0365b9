package jwt

import (
	"strings"

	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/pkg/back"
	"ChatEduca/pkg/util/myjwt"
	"ChatEduca/pkg/xerr"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "userId"
	CtxEmail  = "email"
	CtxRole   = "role"
)

type TokenVerifier interface {
	VerifyToken(token string) (*myjwt.CustomClaims, error)
}

// Auth requires a valid "Bearer <token>" header and stores the claims in the context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			back.Fail(c, xerr.Authentication("Token não fornecido"))
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			back.Fail(c, xerr.Authentication("Formato de token inválido. Use: Bearer <token>"))
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := verifier.VerifyToken(tokenString)
		if err != nil {
			back.Fail(c, xerr.ErrInvalidToken)
			return
		}

		c.Set(CtxUserID, claims.UserId)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, string(entity.ParseRole(claims.Role)))
		c.Next()
	}
}

// RequireRoles must run after Auth.
func RequireRoles(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		back.Fail(c, xerr.Authorization("Acesso negado"))
	}
}

func CurrentUserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

func CurrentRole(c *gin.Context) entity.Role {
	return entity.Role(c.GetString(CtxRole))
}
