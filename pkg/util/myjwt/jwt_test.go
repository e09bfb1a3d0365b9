package myjwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewManager("a-very-long-secret-used-only-in-tests", "ChatEduca", "7d")
	require.NoError(t, err)

	token, err := m.GenerateToken("user-1", "a@b.com", "student")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserId)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "ChatEduca", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	a, err := NewManager("secret-a", "", "1h")
	require.NoError(t, err)
	b, err := NewManager("secret-b", "", "1h")
	require.NoError(t, err)

	token, err := a.GenerateToken("user-1", "a@b.com", "student")
	require.NoError(t, err)

	_, err = b.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	m, err := NewManager("secret", "", "1h")
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateToken("user-1", "a@b.com", "student")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseToken(token)
	assert.Error(t, err)
}

func TestParseExpiry(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":   7 * 24 * time.Hour,
		"12h":  12 * time.Hour,
		"90m":  90 * time.Minute,
		"3600": time.Hour,
	}
	for in, want := range cases {
		got, err := ParseExpiry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "0", "-1d", "abc", "d"} {
		_, err := ParseExpiry(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewManagerRequiresKey(t *testing.T) {
	_, err := NewManager("", "", "7d")
	assert.Error(t, err)
}
