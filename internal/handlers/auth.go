package handlers

import (
	"net/http"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/auth"
	"github.com/Tonooka01/sistema-analise/internal/models"
	"github.com/Tonooka01/sistema-analise/internal/repositories/users"
	appctx "github.com/Tonooka01/sistema-analise/pkg/context"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/metrics"
	"github.com/Tonooka01/sistema-analise/pkg/middleware"
	"github.com/Tonooka01/sistema-analise/pkg/ratelimit"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

const (
	LoginPage       = "/login"
	LoginFailedPage = "/login?error=1"
	HomePage        = "/"

	msgUserCreated = "Usuário criado com sucesso."
)

// Login attempt outcomes.
const (
	outcomeSuccess     = "success"
	outcomeInvalid     = "invalid"
	outcomeInactive    = "inactive"
	outcomeRateLimited = "rate_limited"
)

// AuthHandler logs users in and out and lets the administrator create accounts.
type AuthHandler struct {
	users    users.UserRepository
	sessions *auth.Sessions
	limiter  ratelimit.Limiter
	admin    string
	logger   ectologger.Logger
}

func NewAuthHandler(repo users.UserRepository, sessions *auth.Sessions, limiter ratelimit.Limiter, adminUsername string, logger ectologger.Logger) *AuthHandler {
	return &AuthHandler{
		users:    repo,
		sessions: sessions,
		limiter:  limiter,
		admin:    adminUsername,
		logger:   logger,
	}
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type NewUserRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

type SessionResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register mounts the routes served outside /api.
func (h *AuthHandler) Register(g *echo.Group) {
	g.POST("/login", h.Login)
	g.GET("/logout", h.Logout)
	g.POST("/logout", h.Logout)
	g.POST("/new-user", h.NewUser, middleware.RequireAdmin(h.admin))
}

// RegisterAPI mounts the session lookup on the authenticated /api group.
func (h *AuthHandler) RegisterAPI(g *echo.Group) {
	g.GET("/session", h.Session)
}

func wantsJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "AuthHandler.Login")
	defer span.End()

	jsonRequest := wantsJSON(c)
	ip := appctx.GetClientIP(ctx)
	if ip == "" {
		ip = c.RealIP()
	}

	res, err := h.limiter.Allow(ctx, "login:"+ip)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Warn("login rate limiter unavailable, allowing attempt")
	} else if !res.Allowed {
		metrics.LoginAttempts.WithLabelValues(outcomeRateLimited).Inc()
		h.logger.WithContext(ctx).WithField("ip", ip).Warn("login rate limited")
		return apperrors.TooManyRequests()
	}

	req, err := utils.BindRequest[LoginRequest](c)
	if err != nil {
		return err
	}

	user, err := h.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		metrics.LoginAttempts.WithLabelValues(outcomeInvalid).Inc()
		h.logger.WithContext(ctx).WithField("username", req.Username).Info("invalid login")
		if !jsonRequest {
			return c.Redirect(http.StatusFound, LoginFailedPage)
		}
		return apperrors.InvalidLogin()
	}
	if !user.Active() {
		metrics.LoginAttempts.WithLabelValues(outcomeInactive).Inc()
		if !jsonRequest {
			return c.Redirect(http.StatusFound, LoginFailedPage)
		}
		return apperrors.InactiveUser()
	}

	cookie, err := h.sessions.Issue(ctx, user.ID, user.Username)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	metrics.LoginAttempts.WithLabelValues(outcomeSuccess).Inc()
	h.logger.WithContext(ctx).WithField("username", user.Username).Info("user logged in")

	if !jsonRequest {
		return c.Redirect(http.StatusFound, HomePage)
	}
	return OK(c, LoginResponse{Success: true, Username: user.Username})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	if c.Request().Method == http.MethodGet {
		return c.Redirect(http.StatusFound, LoginPage)
	}
	return OK(c, MessageResponse{Success: true, Message: "Sessão encerrada."})
}

func (h *AuthHandler) Session(c echo.Context) error {
	ctx := c.Request().Context()
	username := appctx.GetUsername(ctx)
	return OK(c, SessionResponse{
		ID:       appctx.GetUserID(ctx),
		Username: username,
		IsAdmin:  username == h.admin,
	})
}

func (h *AuthHandler) NewUser(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "AuthHandler.NewUser")
	defer span.End()

	req, err := utils.BindRequest[NewUserRequest](c)
	if err != nil {
		return err
	}
	var user *models.User
	if user, err = h.users.Create(ctx, req.Username, req.Password); err != nil {
		return err
	}
	h.logger.WithContext(ctx).WithFields(map[string]any{
		"username":   user.Username,
		"created_by": appctx.GetUsername(ctx),
	}).Info("user created")
	return c.JSON(http.StatusCreated, MessageResponse{Success: true, Message: msgUserCreated})
}
