package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories/tech"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

type TechHandler struct {
	repo   tech.TechRepository
	logger ectologger.Logger
}

func NewTechHandler(repo tech.TechRepository, logger ectologger.Logger) *TechHandler {
	return &TechHandler{repo: repo, logger: logger}
}

type OLTRequest struct {
	City        string `query:"city"`
	Transmitter string `query:"transmissor"`
}

func (h *TechHandler) Register(g *echo.Group) {
	g.GET("/cancellations_by_equipment", h.CancellationsByEquipment)
	g.GET("/equipment_by_olt", h.EquipmentByOLT)
	g.GET("/daily_evolution_by_city", h.DailyEvolutionByCity)
}

func (h *TechHandler) CancellationsByEquipment(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "TechHandler.CancellationsByEquipment")
	defer span.End()

	req, err := utils.BindRequest[AreaRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.CancellationsByEquipment(ctx, tech.EquipmentFilter{
		City:      req.City,
		Range:     req.Range(),
		Relevance: filters.NewRelevance(req.Relevance),
	})
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *TechHandler) EquipmentByOLT(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "TechHandler.EquipmentByOLT")
	defer span.End()

	req, err := utils.BindRequest[OLTRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.EquipmentByOLT(ctx, tech.OLTFilter{City: req.City, Transmitter: req.Transmitter})
	if err != nil {
		return err
	}
	return OK(c, report)
}

func (h *TechHandler) DailyEvolutionByCity(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "TechHandler.DailyEvolutionByCity")
	defer span.End()

	req, err := utils.BindRequest[DateRangeRequest](c)
	if err != nil {
		return err
	}
	report, err := h.repo.DailyEvolutionByCity(ctx, req.Range())
	if err != nil {
		return err
	}
	return OK(c, report)
}
