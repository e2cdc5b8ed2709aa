package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories/summary"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

// SummaryHandler browses the snapshot tables and serves the dropdown filters.
type SummaryHandler struct {
	repo   summary.SummaryRepository
	logger ectologger.Logger
}

func NewSummaryHandler(repo summary.SummaryRepository, logger ectologger.Logger) *SummaryHandler {
	return &SummaryHandler{repo: repo, logger: logger}
}

type TableDataRequest struct {
	PageRequest
	Table string `param:"table"`
}

type TableSummaryRequest struct {
	Table string `param:"table"`
	Year  string `query:"year"`
	Month string `query:"month"`
	City  string `query:"city"`
}

func (h *SummaryHandler) Register(g *echo.Group) {
	g.GET("/tables", h.Tables)
	g.GET("/data/:table", h.TableData)
	g.GET("/summary/:table", h.TableSummary)
	g.GET("/finance_summary/by_due_date", h.DueDayRevenue)
}

// RegisterFilters mounts the filter lookups on their own group.
func (h *SummaryHandler) RegisterFilters(g *echo.Group) {
	g.GET("/contract_statuses", h.ContractStatuses)
}

func (h *SummaryHandler) Tables(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SummaryHandler.Tables")
	defer span.End()

	tables, err := h.repo.Tables(ctx)
	if err != nil {
		return err
	}
	return OK(c, tables)
}

func (h *SummaryHandler) TableData(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SummaryHandler.TableData")
	defer span.End()

	req, err := utils.BindRequest[TableDataRequest](c)
	if err != nil {
		return err
	}
	page, err := h.repo.TableData(ctx, req.Table, req.Page(summary.DefaultLimit))
	if err != nil {
		return err
	}
	return OK(c, page)
}

func (h *SummaryHandler) TableSummary(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SummaryHandler.TableSummary")
	defer span.End()

	req, err := utils.BindRequest[TableSummaryRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.TableSummary(ctx, req.Table, summary.Filter{Year: req.Year, Month: req.Month, City: req.City})
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *SummaryHandler) DueDayRevenue(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SummaryHandler.DueDayRevenue")
	defer span.End()

	rows, err := h.repo.DueDayRevenue(ctx)
	if err != nil {
		return err
	}
	return OK(c, rows)
}

func (h *SummaryHandler) ContractStatuses(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SummaryHandler.ContractStatuses")
	defer span.End()

	out, err := h.repo.ContractStatuses(ctx)
	if err != nil {
		return err
	}
	return OK(c, out)
}
