package myjwt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultExpiresIn = "7d"

type CustomClaims struct {
	UserId string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 tokens with one secret and expiry policy.
type Manager struct {
	key       []byte
	issuer    string
	expiresIn string
	ttl       time.Duration
	now       func() time.Time
}

func NewManager(key, issuer, expiresIn string) (*Manager, error) {
	if key == "" {
		return nil, errors.New("jwt key is empty")
	}
	if strings.TrimSpace(expiresIn) == "" {
		expiresIn = DefaultExpiresIn
	}
	ttl, err := ParseExpiry(expiresIn)
	if err != nil {
		return nil, err
	}
	return &Manager{
		key:       []byte(key),
		issuer:    issuer,
		expiresIn: expiresIn,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// ExpiresIn is the configured expiry as written in config, e.g. "7d".
func (m *Manager) ExpiresIn() string {
	return m.expiresIn
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) GenerateToken(userId, email, role string) (string, error) {
	now := m.now()
	claims := CustomClaims{
		UserId: userId,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

func (m *Manager) ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserId == "" {
		return nil, errors.New("token has no userId")
	}
	return claims, nil
}

// ParseExpiry accepts Go durations ("12h", "90m"), day counts ("7d") and bare seconds ("3600").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty expiry")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", s)
	}
	return d, nil
}
