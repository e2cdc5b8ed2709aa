package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories/sales"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

type SalesHandler struct {
	repo   sales.SalesRepository
	logger ectologger.Logger
}

func NewSalesHandler(repo sales.SalesRepository, logger ectologger.Logger) *SalesHandler {
	return &SalesHandler{repo: repo, logger: logger}
}

type ActivationsRequest struct {
	DateRangeRequest
	City string `query:"city"`
}

func (h *SalesHandler) Register(g *echo.Group) {
	g.GET("/sellers", h.Sellers)
	g.GET("/activations_by_seller", h.ActivationsBySeller)
}

func (h *SalesHandler) Sellers(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SalesHandler.Sellers")
	defer span.End()

	req, err := utils.BindRequest[DateRangeRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.Sellers(ctx, req.Range())
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *SalesHandler) ActivationsBySeller(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SalesHandler.ActivationsBySeller")
	defer span.End()

	req, err := utils.BindRequest[ActivationsRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.ActivationsBySeller(ctx, sales.ActivationFilter{City: req.City, Range: req.Range()})
	if err != nil {
		return err
	}
	return OK(c, report)
}
