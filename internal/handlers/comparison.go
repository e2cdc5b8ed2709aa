package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories/comparison"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

type ComparisonHandler struct {
	repo   comparison.ComparisonRepository
	logger ectologger.Logger
}

func NewComparisonHandler(repo comparison.ComparisonRepository, logger ectologger.Logger) *ComparisonHandler {
	return &ComparisonHandler{repo: repo, logger: logger}
}

type DailyRequest struct {
	Date string `query:"date" validate:"isodate"`
}

func (h *ComparisonHandler) Register(g *echo.Group) {
	g.GET("/daily", h.Daily)
}

func (h *ComparisonHandler) Daily(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ComparisonHandler.Daily")
	defer span.End()

	req, err := utils.BindRequest[DailyRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.Daily(ctx, req.Date)
	if err != nil {
		return err
	}
	return OK(c, out)
}
