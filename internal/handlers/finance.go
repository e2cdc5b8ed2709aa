package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories/finance"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

type FinanceHandler struct {
	repo   finance.FinanceRepository
	logger ectologger.Logger
}

func NewFinanceHandler(repo finance.FinanceRepository, logger ectologger.Logger) *FinanceHandler {
	return &FinanceHandler{repo: repo, logger: logger}
}

type ReceivablesRequest struct {
	PageRequest
	SearchTerm string `query:"search_term"`
}

type HealthRequest struct {
	PageRequest
	SearchTerm     string `query:"search_term"`
	StatusContrato string `query:"status_contrato"`
	StatusAcesso   string `query:"status_acesso"`
	Relevance      string `query:"relevance"`
}

type RevenueRequest struct {
	DateRangeRequest
	City string `query:"city"`
}

func (h *FinanceHandler) Register(g *echo.Group) {
	g.GET("/contas_a_receber", h.Receivables)
	g.GET("/financial_health", h.health(finance.GeneralDelay))
	g.GET("/financial_health_auto_block", h.health(finance.AutoBlockDelay))
	g.GET("/faturamento_por_cidade", h.Revenue)
	g.GET("/late_interest_analysis", h.LateInterest)
}

func (h *FinanceHandler) Receivables(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "FinanceHandler.Receivables")
	defer span.End()

	req, err := utils.BindRequest[ReceivablesRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.Receivables(ctx, finance.ReceivablesFilter{
		Search: req.SearchTerm,
		Page:   req.Page(DefaultAnalysisLimit),
	})
	if err != nil {
		return err
	}
	return OK(c, report)
}

// health serves both financial health reports; they differ only in the delay
// that marks the first delinquent invoice.
func (h *FinanceHandler) health(delayDays int) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracing.StartSpan(c.Request().Context(), "FinanceHandler.FinancialHealth")
		defer span.End()

		req, err := utils.BindRequest[HealthRequest](c)
		if err != nil {
			return err
		}
		report, err := h.repo.FinancialHealth(ctx, delayDays, finance.HealthFilter{
			Search:         req.SearchTerm,
			StatusContrato: filters.SplitMulti(req.StatusContrato),
			StatusAcesso:   filters.SplitMulti(req.StatusAcesso),
			Relevance:      filters.NewRelevance(req.Relevance),
			Page:           req.Page(DefaultAnalysisLimit),
		})
		if err != nil {
			return err
		}
		return OK(c, report)
	}
}

func (h *FinanceHandler) Revenue(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "FinanceHandler.Revenue")
	defer span.End()

	req, err := utils.BindRequest[RevenueRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.Revenue(ctx, finance.RevenueFilter{Start: req.StartDate, End: req.EndDate, City: req.City})
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *FinanceHandler) LateInterest(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "FinanceHandler.LateInterest")
	defer span.End()

	req, err := utils.BindRequest[DateRangeRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.LateInterest(ctx, req.Range())
	if err != nil {
		return err
	}
	return OK(c, report)
}
