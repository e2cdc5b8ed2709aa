package handlers

import (
	"encoding/json"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories/users"
	appctx "github.com/Tonooka01/sistema-analise/pkg/context"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

const msgTimeoutSaved = "Tempo de inatividade salvo."

// AdminHandler serves the administrator panel: the inactivity setting, the
// user list and the access log.
type AdminHandler struct {
	users  users.UserRepository
	logger ectologger.Logger
}

func NewAdminHandler(repo users.UserRepository, logger ectologger.Logger) *AdminHandler {
	return &AdminHandler{users: repo, logger: logger}
}

type SettingsResponse struct {
	TimeoutMinutes string `json:"timeout_minutes"`
}

// SettingsRequest accepts the timeout as a JSON number or string.
type SettingsRequest struct {
	Timeout json.RawMessage `json:"timeout"`
}

type ToggleRequest struct {
	UserID int64 `json:"user_id" form:"user_id" validate:"required"`
}

type LogsRequest struct {
	Date string `query:"date" validate:"isodate"`
}

func (h *AdminHandler) Register(g *echo.Group) {
	g.GET("/settings", h.Settings)
	g.POST("/settings", h.SaveSettings)
	g.GET("/users", h.Users)
	g.POST("/users/toggle", h.Toggle)
	g.GET("/logs", h.Logs)
}

func (h *AdminHandler) Settings(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "AdminHandler.Settings")
	defer span.End()

	minutes, err := h.users.TimeoutMinutes(ctx)
	if err != nil {
		return err
	}
	return OK(c, SettingsResponse{TimeoutMinutes: minutes})
}

func (h *AdminHandler) SaveSettings(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "AdminHandler.SaveSettings")
	defer span.End()

	req, err := utils.BindRequest[SettingsRequest](c)
	if err != nil {
		return err
	}
	value := strings.Trim(strings.TrimSpace(string(req.Timeout)), `"`)
	if err := h.users.SetTimeoutMinutes(ctx, value); err != nil {
		return err
	}
	h.logger.WithContext(ctx).WithFields(map[string]any{
		"timeout_minutes": value,
		"admin":           appctx.GetUsername(ctx),
	}).Info("inactivity timeout updated")
	return OK(c, MessageResponse{Success: true, Message: msgTimeoutSaved})
}

func (h *AdminHandler) Users(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "AdminHandler.Users")
	defer span.End()

	list, err := h.users.List(ctx)
	if err != nil {
		return err
	}
	return OK(c, list)
}

func (h *AdminHandler) Toggle(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "AdminHandler.Toggle")
	defer span.End()

	req, err := utils.BindRequest[ToggleRequest](c)
	if err != nil {
		return err
	}
	if err := h.users.Toggle(ctx, req.UserID, appctx.GetUserID(ctx)); err != nil {
		return err
	}
	return OK(c, MessageResponse{Success: true, Message: "Status do usuário atualizado."})
}

func (h *AdminHandler) Logs(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "AdminHandler.Logs")
	defer span.End()

	req, err := utils.BindRequest[LogsRequest](c)
	if err != nil {
		return err
	}
	logs, err := h.users.Logs(ctx, req.Date)
	if err != nil {
		return err
	}
	return OK(c, logs)
}
