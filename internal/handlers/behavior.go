package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories/behavior"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

// DefaultPredictiveStatus applies when status_contrato is absent from the query.
const DefaultPredictiveStatus = "Ativo"

type BehaviorHandler struct {
	repo   behavior.BehaviorRepository
	logger ectologger.Logger
}

func NewBehaviorHandler(repo behavior.BehaviorRepository, logger ectologger.Logger) *BehaviorHandler {
	return &BehaviorHandler{repo: repo, logger: logger}
}

type CityRequest struct {
	City string `query:"city"`
}

type PredictiveRequest struct {
	PageRequest
	StatusContrato string `query:"status_contrato"`
	StatusAcesso   string `query:"status_acesso"`
}

func (h *BehaviorHandler) Register(g *echo.Group) {
	g.GET("/complaint_patterns", h.ComplaintPatterns)
	g.GET("/predictive_churn", h.PredictiveChurn)
}

func (h *BehaviorHandler) ComplaintPatterns(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BehaviorHandler.ComplaintPatterns")
	defer span.End()

	req, err := utils.BindRequest[CityRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.ComplaintPatterns(ctx, req.City)
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *BehaviorHandler) PredictiveChurn(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "BehaviorHandler.PredictiveChurn")
	defer span.End()

	req, err := utils.BindRequest[PredictiveRequest](c)
	if err != nil {
		return err
	}
	// an explicit empty status_contrato disables the filter
	if !c.QueryParams().Has("status_contrato") {
		req.StatusContrato = DefaultPredictiveStatus
	}
	report, err := h.repo.PredictiveChurn(ctx, behavior.PredictiveFilter{
		StatusContrato: req.StatusContrato,
		StatusAcesso:   req.StatusAcesso,
		Page:           req.Page(DefaultAnalysisLimit),
	})
	if err != nil {
		return err
	}
	return OK(c, report)
}
