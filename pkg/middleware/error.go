package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/pkg/context"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

// ErrorResponse keeps the "error" key the dashboard reads.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Erro interno no servidor."

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}

		if httperror.IsHTTPError(err) {
			code = httperror.GetStatusCode(err)
			if msg := httperror.ToHTTPError(err).Message; msg != "" {
				message = msg
			}
		}

		log := logger.WithContext(ctx).WithError(err)
		if code >= http.StatusInternalServerError {
			log.Error("api is returning an error")
		} else {
			log.Warnf("api is returning status %d", code)
		}

		_ = c.JSON(code, ErrorResponse{
			Error:     message,
			RequestID: context.GetRequestID(ctx),
			TraceID:   tracing.GetTraceID(ctx),
		})
	}
}
