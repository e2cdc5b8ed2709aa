// Package health serves /health/live and /health/ready. Readiness runs a set of
// named checks; a failed critical check makes the service unready, while a
// failed advisory check only marks it degraded.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

const checkTimeout = 3 * time.Second

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusStarting  Status = "starting"
)

type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Message  string `json:"message,omitempty"`
	Latency  string `json:"latency,omitempty"`
}

type Response struct {
	Status     Status                 `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Uptime     string                 `json:"uptime,omitempty"`
	Checks     map[string]CheckResult `json:"checks,omitempty"`
	ReportedAt time.Time              `json:"reported_at"`
}

// Pinger is satisfied by the redis client; PingFunc adapts anything else.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type namedCheck struct {
	name     string
	pinger   Pinger
	critical bool
}

type Checker struct {
	version string
	started time.Time
	ready   atomic.Bool
	checks  []namedCheck
}

func NewChecker(version string) *Checker {
	return &Checker{version: version, started: time.Now()}
}

// Critical registers a check whose failure answers 503.
func (c *Checker) Critical(name string, p Pinger) *Checker {
	c.checks = append(c.checks, namedCheck{name: name, pinger: p, critical: true})
	return c
}

// Advisory registers a check whose failure is reported but keeps the service ready.
func (c *Checker) Advisory(name string, p Pinger) *Checker {
	c.checks = append(c.checks, namedCheck{name: name, pinger: p})
	return c
}

func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

func (c *Checker) uptime() string {
	return time.Since(c.started).Round(time.Second).String()
}

func (c *Checker) Live(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, Response{
		Status:     StatusHealthy,
		Version:    c.version,
		Uptime:     c.uptime(),
		ReportedAt: time.Now(),
	})
}

func (c *Checker) Ready(ctx echo.Context) error {
	if !c.ready.Load() {
		return ctx.JSON(http.StatusServiceUnavailable, Response{
			Status:     StatusStarting,
			Version:    c.version,
			ReportedAt: time.Now(),
		})
	}

	resp := Response{
		Status:  StatusHealthy,
		Version: c.version,
		Uptime:  c.uptime(),
		Checks:  c.Run(ctx.Request().Context()),
	}
	for _, r := range resp.Checks {
		switch {
		case r.Status != StatusUnhealthy:
		case r.Critical:
			resp.Status = StatusUnhealthy
		case resp.Status == StatusHealthy:
			resp.Status = StatusDegraded
		}
	}
	resp.ReportedAt = time.Now()

	code := http.StatusOK
	if resp.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, resp)
}

// Run executes every check in registration order.
func (c *Checker) Run(ctx context.Context) map[string]CheckResult {
	out := make(map[string]CheckResult, len(c.checks))
	for _, nc := range c.checks {
		start := time.Now()
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := nc.pinger.Ping(cctx)
		cancel()

		r := CheckResult{Status: StatusHealthy, Critical: nc.critical, Latency: time.Since(start).String()}
		if err != nil {
			r.Status, r.Message = StatusUnhealthy, err.Error()
		}
		out[nc.name] = r
	}
	return out
}

// Names lists the registered checks.
func (c *Checker) Names() []string {
	names := make([]string, 0, len(c.checks))
	for _, nc := range c.checks {
		names = append(names, nc.name)
	}
	sort.Strings(names)
	return names
}

func (c *Checker) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/health")
	g.GET("/live", c.Live)
	g.GET("/ready", c.Ready)
}
