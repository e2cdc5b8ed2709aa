package middleware

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/auth"
	"github.com/Tonooka01/sistema-analise/internal/models"
	appctx "github.com/Tonooka01/sistema-analise/pkg/context"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
)

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Session resolves the session cookie into the request context and re-issues
// it so the inactivity window restarts. Invalid or stale cookies are dropped
// and the request continues anonymously.
func Session(sessions *auth.Sessions, users UserLookup, logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessions.CookieName())
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			claims, err := sessions.Parse(cookie.Value)
			if err != nil {
				c.SetCookie(sessions.Clear())
				return next(c)
			}

			user, err := users.GetByID(ctx, claims.UserID())
			if err != nil || user == nil || !user.Active() {
				if err != nil {
					logger.WithContext(ctx).WithError(err).Warn("failed to load session user")
				}
				c.SetCookie(sessions.Clear())
				return next(c)
			}

			ctx = appctx.SetUserID(ctx, user.ID)
			ctx = appctx.SetUsername(ctx, user.Username)
			c.SetRequest(c.Request().WithContext(ctx))

			if renewed, err := sessions.Issue(ctx, user.ID, user.Username); err == nil {
				c.SetCookie(renewed)
			}

			return next(c)
		}
	}
}

// RequireAPISession rejects anonymous requests under /api.
func RequireAPISession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, "/api") && appctx.GetUserID(c.Request().Context()) == 0 {
				return apperrors.Unauthorized()
			}
			return next(c)
		}
	}
}

// RequireAdmin allows only the configured administrator account.
func RequireAdmin(adminUsername string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if appctx.GetUserID(ctx) == 0 {
				return apperrors.Unauthorized()
			}
			if appctx.GetUsername(ctx) != adminUsername {
				return apperrors.Forbidden()
			}
			return next(c)
		}
	}
}
