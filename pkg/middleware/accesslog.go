package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	appctx "github.com/Tonooka01/sistema-analise/pkg/context"
	"github.com/Tonooka01/sistema-analise/pkg/database"
)

const AnonymousUsername = "Visitante"

type AccessEntry struct {
	Username  string
	Path      string
	Method    string
	IPAddress string
	Timestamp string
}

type AccessRecorder interface {
	Record(ctx context.Context, entry AccessEntry) error
	TouchLastSeen(ctx context.Context, userID int64, at string) error
}

// AccessLog records every request after it is served. Static assets are skipped.
// Storage failures are logged and never change the response.
func AccessLog(recorder AccessRecorder, logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/static") || strings.HasPrefix(path, "/favicon.ico") {
				return err
			}

			ctx := c.Request().Context()
			now := time.Now().Format(database.TimestampLayout)
			username := AnonymousUsername

			if userID := appctx.GetUserID(ctx); userID != 0 {
				username = appctx.GetUsername(ctx)
				if terr := recorder.TouchLastSeen(ctx, userID, now); terr != nil {
					logger.WithContext(ctx).WithError(terr).Warn("failed to update last_seen")
				}
			}

			rerr := recorder.Record(ctx, AccessEntry{
				Username:  username,
				Path:      path,
				Method:    c.Request().Method,
				IPAddress: ClientIP(c),
				Timestamp: now,
			})
			if rerr != nil {
				logger.WithContext(ctx).WithError(rerr).Warn("failed to write access log")
			}

			return err
		}
	}
}
