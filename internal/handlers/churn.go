package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories/churn"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

// ChurnHandler serves the cancellation, negativação, cohort and active
// client analyses.
type ChurnHandler struct {
	repo   churn.ChurnRepository
	logger ectologger.Logger
}

func NewChurnHandler(repo churn.ChurnRepository, logger ectologger.Logger) *ChurnHandler {
	return &ChurnHandler{repo: repo, logger: logger}
}

type ChurnListRequest struct {
	PageRequest
	DateRangeRequest
	SearchTerm  string `query:"search_term"`
	Relevance   string `query:"relevance"`
	SortOrder   string `query:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
	FilterCol   string `query:"filter_column" validate:"omitempty,oneof=motivo obs financeiro"`
	FilterValue string `query:"filter_value"`
}

func (r ChurnListRequest) Filter() churn.ListFilter {
	return churn.ListFilter{
		Search:      r.SearchTerm,
		Relevance:   filters.NewRelevance(r.Relevance),
		Range:       r.Range(),
		SortOrder:   r.SortOrder,
		DrillColumn: r.FilterCol,
		DrillValue:  r.FilterValue,
		Page:        r.Page(DefaultAnalysisLimit),
	}
}

type AreaRequest struct {
	DateRangeRequest
	City      string `query:"city"`
	Relevance string `query:"relevance"`
}

type EvolutionRequest struct {
	DateRangeRequest
	City           string `query:"city"`
	StatusContrato string `query:"status_contrato"`
	StatusAcesso   string `query:"status_acesso"`
}

func (h *ChurnHandler) Register(g *echo.Group) {
	g.GET("/cancellations", h.Cancellations)
	g.GET("/negativacao", h.Negativacao)
	g.GET("/cancellations_by_city", h.ByCity)
	g.GET("/cancellations_by_neighborhood", h.ByNeighborhood)
	g.GET("/cohort", h.Cohort)
	g.GET("/active_clients_evolution", h.ActiveClientsEvolution)
}

func (h *ChurnHandler) Cancellations(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ChurnHandler.Cancellations")
	defer span.End()

	req, err := utils.BindRequest[ChurnListRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.Cancellations(ctx, req.Filter())
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *ChurnHandler) Negativacao(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ChurnHandler.Negativacao")
	defer span.End()

	req, err := utils.BindRequest[ChurnListRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.Negativacao(ctx, req.Filter())
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *ChurnHandler) ByCity(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ChurnHandler.ByCity")
	defer span.End()

	req, err := utils.BindRequest[AreaRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.ByCity(ctx, churn.AreaFilter{Range: req.Range(), Relevance: filters.NewRelevance(req.Relevance)})
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *ChurnHandler) ByNeighborhood(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ChurnHandler.ByNeighborhood")
	defer span.End()

	req, err := utils.BindRequest[AreaRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.ByNeighborhood(ctx, churn.AreaFilter{
		City:      req.City,
		Range:     req.Range(),
		Relevance: filters.NewRelevance(req.Relevance),
	})
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *ChurnHandler) Cohort(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ChurnHandler.Cohort")
	defer span.End()

	req, err := utils.BindRequest[AreaRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.Cohort(ctx, churn.CohortFilter{City: req.City, Range: req.Range()})
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *ChurnHandler) ActiveClientsEvolution(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ChurnHandler.ActiveClientsEvolution")
	defer span.End()

	req, err := utils.BindRequest[EvolutionRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.ActiveClientsEvolution(ctx, churn.EvolutionFilter{
		Start:          req.StartDate,
		End:            req.EndDate,
		City:           req.City,
		StatusContrato: filters.SplitMulti(req.StatusContrato),
		StatusAcesso:   filters.SplitMulti(req.StatusAcesso),
	})
	if err != nil {
		return err
	}
	return OK(c, report)
}
