package util

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxInputLength caps user-supplied chat text.
const MaxInputLength = 10000

// GenerateUUID returns a standard v4 UUID.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID returns a v4 UUID without dashes.
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

const sessionAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSessionID returns "session-<unix ms>-<7 base36 chars>".
func GenerateSessionID() string {
	b := make([]byte, 7)
	for i := range b {
		b[i] = sessionAlphabet[rand.Intn(len(sessionAlphabet))]
	}
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(), b)
}

// SanitizeInput trims, strips angle brackets and caps the text at MaxInputLength runes.
func SanitizeInput(input string) string {
	s := strings.TrimSpace(input)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	return TruncateRunes(s, MaxInputLength)
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Ellipsis cuts s to n runes and appends "..." when something was removed.
func Ellipsis(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return TruncateRunes(s, n) + "..."
}

// TotalPages is ceil(total/limit), 0 when limit is not positive.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

type requestIDKey struct{}

// WithRequestID stores the request id for code that only sees a context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
