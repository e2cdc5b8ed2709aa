// Package auth issues and verifies the dashboard session cookie.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const DefaultInactivityTimeout = 30 * time.Minute

type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

func (c *Claims) UserID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// TimeoutSource reports the current inactivity timeout setting.
type TimeoutSource interface {
	InactivityTimeout(ctx context.Context) (time.Duration, error)
}

type SessionConfig struct {
	Secret     string
	CookieName string
	Secure     bool
}

// Sessions signs HS256 session tokens carried in an HttpOnly cookie. Every
// authenticated request re-issues the cookie so expiry slides with activity.
type Sessions struct {
	cfg     SessionConfig
	timeout TimeoutSource
	now     func() time.Time
}

func NewSessions(cfg SessionConfig, timeout TimeoutSource) *Sessions {
	if cfg.CookieName == "" {
		cfg.CookieName = "sistema_session"
	}
	return &Sessions{cfg: cfg, timeout: timeout, now: time.Now}
}

func (s *Sessions) CookieName() string {
	return s.cfg.CookieName
}

func (s *Sessions) inactivity(ctx context.Context) time.Duration {
	if s.timeout == nil {
		return DefaultInactivityTimeout
	}
	d, err := s.timeout.InactivityTimeout(ctx)
	if err != nil || d <= 0 {
		return DefaultInactivityTimeout
	}
	return d
}

// Issue signs a token for the user and returns the cookie carrying it.
func (s *Sessions) Issue(ctx context.Context, userID int64, username string) (*http.Cookie, error) {
	now := s.now()
	ttl := s.inactivity(ctx)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "sistema-analise",
		},
		Username: username,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign session")
	}

	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Parse validates a token and returns its claims.
func (s *Sessions) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID() == 0 {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}

// Clear returns an expired cookie that removes the session.
func (s *Sessions) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
