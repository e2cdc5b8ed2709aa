package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Tonooka01/sistema-analise/internal/repositories/details"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/utils"
)

// DetailsHandler serves the drill-down modals. Per-contract lookups page by 15
// rows, client lists by 25.
type DetailsHandler struct {
	repo   details.DetailsRepository
	logger ectologger.Logger
}

func NewDetailsHandler(repo details.DetailsRepository, logger ectologger.Logger) *DetailsHandler {
	return &DetailsHandler{repo: repo, logger: logger}
}

type InvoiceDetailsRequest struct {
	PageRequest
	ContractID string `query:"contract_id"`
	Type       string `query:"type"`
}

type ContractRequest struct {
	PageRequest
	ContractID string `param:"contract_id"`
}

type ComplaintsRequest struct {
	PageRequest
	ClientName string `param:"client_name"`
	Type       string `query:"type"`
}

type CancellationContextRequest struct {
	ContractID string `param:"contract_id"`
	ClientName string `param:"client_name"`
}

type ClientsRequest struct {
	PageRequest
	DateRangeRequest
	SellerID     int64  `query:"seller_id"`
	City         string `query:"city"`
	Neighborhood string `query:"neighborhood"`
	Type         string `query:"type"`
	Year         string `query:"year"`
	Month        string `query:"month"`
	Relevance    string `query:"relevance"`
}

func (r ClientsRequest) Filter() details.ClientFilter {
	return details.ClientFilter{
		Type:         r.Type,
		Seller:       r.SellerID,
		City:         r.City,
		Neighborhood: r.Neighborhood,
		Year:         r.Year,
		Month:        r.Month,
		Range:        r.Range(),
		Relevance:    filters.NewRelevance(r.Relevance),
		Page:         r.Page(details.DefaultClientLimit),
	}
}

type EquipmentClientsRequest struct {
	PageRequest
	DateRangeRequest
	EquipmentName string `query:"equipment_name"`
	City          string `query:"city"`
	Relevance     string `query:"relevance"`
}

func (r EquipmentClientsRequest) Filter() details.EquipmentFilter {
	return details.EquipmentFilter{
		Name:      r.EquipmentName,
		City:      r.City,
		Range:     r.Range(),
		Relevance: filters.NewRelevance(r.Relevance),
		Page:      r.Page(details.DefaultClientLimit),
	}
}

func (h *DetailsHandler) Register(g *echo.Group) {
	g.GET("/invoice_details", h.InvoiceDetails)
	g.GET("/financial/:contract_id", h.Financial)
	g.GET("/complaints/:client_name", h.Complaints)
	g.GET("/logins/:contract_id", h.Logins)
	g.GET("/comodato/:contract_id", h.Comodato)
	g.GET("/cancellation_context/:contract_id/:client_name", h.CancellationContext)
	g.GET("/seller_clients", h.SellerClients)
	g.GET("/city_clients", h.CityClients)
	g.GET("/neighborhood_clients", h.NeighborhoodClients)
	g.GET("/equipment_clients", h.EquipmentClients)
	g.GET("/active_equipment_clients", h.ActiveEquipmentClients)
	g.GET("/seller_activations", h.SellerActivations)
}

func (h *DetailsHandler) InvoiceDetails(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.InvoiceDetails")
	defer span.End()

	req, err := utils.BindRequest[InvoiceDetailsRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.InvoiceDetails(ctx, req.ContractID, req.Type, req.Page(details.DefaultContractLimit))
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) Financial(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.Financial")
	defer span.End()

	req, err := utils.BindRequest[ContractRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.Financial(ctx, req.ContractID, req.Page(details.DefaultContractLimit))
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) Complaints(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.Complaints")
	defer span.End()

	req, err := utils.BindRequest[ComplaintsRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.Complaints(ctx, req.ClientName, req.Type, req.Page(details.DefaultContractLimit))
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) Logins(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.Logins")
	defer span.End()

	req, err := utils.BindRequest[ContractRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.Logins(ctx, req.ContractID, req.Page(details.DefaultContractLimit))
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) Comodato(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.Comodato")
	defer span.End()

	req, err := utils.BindRequest[ContractRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.Comodato(ctx, req.ContractID)
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) CancellationContext(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.CancellationContext")
	defer span.End()

	req, err := utils.BindRequest[CancellationContextRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.CancellationContext(ctx, req.ContractID, req.ClientName)
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) SellerClients(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.SellerClients")
	defer span.End()

	req, err := utils.BindRequest[ClientsRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.SellerClients(ctx, req.Filter())
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) CityClients(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.CityClients")
	defer span.End()

	req, err := utils.BindRequest[ClientsRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.CityClients(ctx, req.Filter())
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) NeighborhoodClients(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.NeighborhoodClients")
	defer span.End()

	req, err := utils.BindRequest[ClientsRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.NeighborhoodClients(ctx, req.Filter())
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) EquipmentClients(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.EquipmentClients")
	defer span.End()

	req, err := utils.BindRequest[EquipmentClientsRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.EquipmentClients(ctx, req.Filter())
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) ActiveEquipmentClients(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.ActiveEquipmentClients")
	defer span.End()

	req, err := utils.BindRequest[EquipmentClientsRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.ActiveEquipmentClients(ctx, req.Filter())
	if err != nil {
		return err
	}
	return OK(c, out)
}

func (h *DetailsHandler) SellerActivations(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "DetailsHandler.SellerActivations")
	defer span.End()

	req, err := utils.BindRequest[ClientsRequest](c)
	if err != nil {
		return err
	}
	out, err := h.repo.SellerActivations(ctx, details.ActivationFilter{
		Seller: req.SellerID,
		Type:   req.Type,
		City:   req.City,
		Year:   req.Year,
		Month:  req.Month,
		Page:   req.Page(details.DefaultClientLimit),
	})
	if err != nil {
		return err
	}
	return OK(c, out)
}
