package middleware

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/pkg/context"
)

// Logger writes one line per request once the error handler has rendered the
// response, so the logged status is the one the client saw.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := context.Fields(req.Context())
			fields["uri"] = req.RequestURI
			fields["route"] = c.Path()
			fields["status"] = res.Status
			fields["latency"] = time.Since(start).String()
			fields["bytes"] = res.Size

			log := logger.WithContext(req.Context()).WithFields(fields)
			if res.Status >= http.StatusInternalServerError {
				log.Error("request failed")
			} else {
				log.Info("request")
			}
			return nil
		}
	}
}
