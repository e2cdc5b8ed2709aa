package middleware

import (
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/pkg/context"
)

const HeaderCFConnectingIP = "CF-Connecting-IP"

func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetClientIP(ctx, ClientIP(c))

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

// ClientIP prefers the Cloudflare header, then the first X-Forwarded-For hop,
// then the socket peer.
func ClientIP(c echo.Context) string {
	req := c.Request()
	if ip := req.Header.Get(HeaderCFConnectingIP); ip != "" {
		return ip
	}
	if xff := req.Header.Get(echo.HeaderXForwardedFor); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
