package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassword_Bcrypt(t *testing.T) {
	h, err := HashPassword("segredo")
	require.NoError(t, err)

	assert.True(t, CheckPassword(h, "segredo"))
	assert.False(t, CheckPassword(h, "errado"))
}

func TestCheckPassword_LegacyFormats(t *testing.T) {
	stored := "pbkdf2:sha256:1000$salt$" + legacyPBKDF2(t, "segredo", "salt", 1000)
	assert.True(t, CheckPassword(stored, "segredo"))
	assert.False(t, CheckPassword(stored, "outra"))

	stored = "scrypt:1024:8:1$abc$" + legacyScrypt(t, "segredo", "abc", 1024, 8, 1)
	assert.True(t, CheckPassword(stored, "segredo"))
	assert.False(t, CheckPassword(stored, "outra"))

	assert.False(t, CheckPassword("md5$x$y", "segredo"))
	assert.False(t, CheckPassword("garbage", "segredo"))
	assert.False(t, CheckPassword("scrypt:1024:8:1$abc$zz", "segredo"))
}

type fixedTimeout time.Duration

func (f fixedTimeout) InactivityTimeout(context.Context) (time.Duration, error) {
	return time.Duration(f), nil
}

func TestSessions_IssueAndParse(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	s := NewSessions(SessionConfig{Secret: "test-secret"}, fixedTimeout(10*time.Minute))
	s.now = func() time.Time { return now }

	cookie, err := s.Issue(context.Background(), 7, "maria")
	require.NoError(t, err)
	assert.Equal(t, "sistema_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 600, cookie.MaxAge)

	claims, err := s.Parse(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID())
	assert.Equal(t, "maria", claims.Username)

	now = now.Add(11 * time.Minute)
	_, err = s.Parse(cookie.Value)
	assert.Error(t, err)

	other := NewSessions(SessionConfig{Secret: "other"}, nil)
	_, err = other.Parse(cookie.Value)
	assert.Error(t, err)
}

func TestSessions_Clear(t *testing.T) {
	s := NewSessions(SessionConfig{Secret: "x", CookieName: "sid"}, nil)
	c := s.Clear()
	assert.Equal(t, "sid", c.Name)
	assert.Equal(t, -1, c.MaxAge)
}
