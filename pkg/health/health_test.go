package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, c *Checker, path string) (int, Response) {
	t.Helper()
	e := echo.New()
	c.RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

var (
	ok   = PingFunc(func(context.Context) error { return nil })
	down = PingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestReadiness_WaitsForStartup(t *testing.T) {
	c := NewChecker("test").Critical("database", ok)

	code, body := serve(t, c, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusStarting, body.Status)

	c.SetReady(true)
	code, body = serve(t, c, "/health/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusHealthy, body.Status)
	assert.True(t, body.Checks["database"].Critical)
}

func TestReadiness_CriticalAndAdvisory(t *testing.T) {
	c := NewChecker("test").Critical("database", ok).Advisory("snapshot", down)
	c.SetReady(true)

	code, body := serve(t, c, "/health/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusDegraded, body.Status)
	assert.Equal(t, "connection refused", body.Checks["snapshot"].Message)

	c.Critical("redis", down)
	code, body = serve(t, c, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusUnhealthy, body.Status)
	assert.Equal(t, []string{"database", "redis", "snapshot"}, c.Names())
}

func TestLiveness(t *testing.T) {
	c := NewChecker("1.2.3").Critical("database", down)
	code, body := serve(t, c, "/health/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1.2.3", body.Version)
}
