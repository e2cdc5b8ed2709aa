// Package details serves the drill-down lookups opened from the dashboard's
// tables and charts.
package details

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

type DetailsRepository interface {
	InvoiceDetails(ctx context.Context, contractID, kind string, page repositories.Page) (*InvoiceDetails, error)
	Financial(ctx context.Context, contractID string, page repositories.Page) (*Table[Installment], error)
	Complaints(ctx context.Context, client, kind string, page repositories.Page) (any, error)
	Logins(ctx context.Context, contractID string, page repositories.Page) (*Table[Login], error)
	Comodato(ctx context.Context, contractID string) (*Table[Loan], error)
	CancellationContext(ctx context.Context, contractID, client string) (*CancellationContext, error)
	SellerClients(ctx context.Context, f ClientFilter) (*Table[ChurnedClient], error)
	CityClients(ctx context.Context, f ClientFilter) (*Table[ChurnedClient], error)
	NeighborhoodClients(ctx context.Context, f ClientFilter) (*Table[ChurnedClient], error)
	EquipmentClients(ctx context.Context, f EquipmentFilter) (*Table[EquipmentClient], error)
	ActiveEquipmentClients(ctx context.Context, f EquipmentFilter) (*Table[ActiveClient], error)
	SellerActivations(ctx context.Context, f ActivationFilter) (*Table[ActivationClient], error)
}

type Repository struct {
	*repositories.Repository
}

func NewRepository(db database.DB, schema *database.Schema, logger ectologger.Logger) *Repository {
	return &Repository{Repository: repositories.NewRepository(db, schema, logger)}
}

// contractMatch compares a column with a requested contract id by canonical key.
func contractMatch(q *database.Query, col, id string) string {
	return filters.ContractKeySQL(col) + " = " + filters.ContractKeySQL(q.Var(id))
}

// NormalizeMonth pads a month number to two digits; "" stays "".
func NormalizeMonth(month string) (string, error) {
	m, ok := filters.NormalizeMonth(month)
	if !ok {
		return "", apperrors.BadRequest(msgMonth)
	}
	return m, nil
}

// InvoiceDetails lists the late-paid or overdue invoices behind a receivables row.
func (r *Repository) InvoiceDetails(ctx context.Context, contractID, kind string, page repositories.Page) (*InvoiceDetails, error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.InvoiceDetails")
	defer span.End()

	if contractID == "" || kind == "" {
		return nil, apperrors.BadRequest(msgInvoiceParams)
	}

	q := database.NewQuery()
	preds := []string{contractMatch(q, "CAR.ID_Contrato_Recorrente", contractID)}
	switch kind {
	case LatePaid:
		preds = append(preds, "CAR.Data_pagamento > CAR.Vencimento")
	case Unpaid:
		preds = append(preds, "CAR.Status = 'A receber'", "CAR.Vencimento < DATE('now')")
	default:
		return nil, apperrors.BadRequest(msgInvoiceType)
	}
	from := "FROM Contas_a_Receber CAR" + database.Where(preds...)

	out := &InvoiceDetails{Table: Table[Invoice]{Data: []Invoice{}}, Limit: page.Limit, Offset: page.Offset}
	var err error
	if out.TotalRows, err = r.Count(ctx, "invoice_details.count", q, "SELECT COUNT(*) "+from); err != nil {
		return nil, err
	}
	text := "SELECT CAR.ID, CAR.Vencimento, CAR.Emissao, CAR.Data_pagamento, CAR.Valor, CAR.Status " + from +
		" ORDER BY CAR.Vencimento DESC LIMIT " + q.Var(page.Limit) + " OFFSET " + q.Var(page.Offset)
	if err := r.Select(ctx, "invoice_details", &out.Data, q, text); err != nil {
		return nil, err
	}
	return out, nil
}

// Financial lists every invoice of a contract.
func (r *Repository) Financial(ctx context.Context, contractID string, page repositories.Page) (*Table[Installment], error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.Financial")
	defer span.End()

	q := database.NewQuery()
	from := "FROM Contas_a_Receber WHERE " + contractMatch(q, "ID_Contrato_Recorrente", contractID)

	out := &Table[Installment]{Data: []Installment{}}
	var err error
	if out.TotalRows, err = r.Count(ctx, "financial_details.count", q, "SELECT COUNT(*) "+from); err != nil {
		return nil, err
	}
	text := "SELECT ID, Parcela_R, Emissao, Vencimento, Data_pagamento, Valor, Status " + from +
		" ORDER BY Vencimento DESC LIMIT " + q.Var(page.Limit) + " OFFSET " + q.Var(page.Offset)
	if err := r.Select(ctx, "financial_details", &out.Data, q, text); err != nil {
		return nil, err
	}
	return out, nil
}

// Complaints pages a customer's service orders (os) or attendances
// (atendimentos), newest first. The customer name is matched case-insensitively.
func (r *Repository) Complaints(ctx context.Context, client, kind string, page repositories.Page) (any, error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.Complaints")
	defer span.End()

	switch kind {
	case ComplaintOS:
		out := &Table[ServiceOrder]{Data: []ServiceOrder{}}
		err := r.complaints(ctx, &out.TotalRows, &out.Data, "OS", "ID, Abertura, Assunto, Status", "Abertura", client, page)
		if err != nil {
			return nil, err
		}
		return out, nil
	case ComplaintAtendimentos:
		out := &Table[Attendance]{Data: []Attendance{}}
		err := r.complaints(ctx, &out.TotalRows, &out.Data, "Atendimentos", "ID, Criado_em, Assunto, Novo_status", "Criado_em", client, page)
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, apperrors.BadRequest(msgComplaintType)
	}
}

func (r *Repository) complaints(ctx context.Context, total *int64, dest any, table, cols, dateCol, client string, page repositories.Page) error {
	q := database.NewQuery()
	from := "FROM " + table + " WHERE UPPER(TRIM(Cliente)) = UPPER(TRIM(" + q.Var(client) + "))"

	var err error
	if *total, err = r.Count(ctx, "complaints_details.count", q, "SELECT COUNT(*) "+from); err != nil {
		return err
	}
	text := "SELECT " + cols + " " + from + " ORDER BY " + dateCol + " DESC LIMIT " + q.Var(page.Limit) + " OFFSET " + q.Var(page.Offset)
	return r.Select(ctx, "complaints_details", dest, q, text)
}

// Logins lists a contract's PPPoE logins with the fiber signal of each.
func (r *Repository) Logins(ctx context.Context, contractID string, page repositories.Page) (*Table[Login], error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.Logins")
	defer span.End()

	q := database.NewQuery()
	from := "FROM Logins L LEFT JOIN Clientes_Fibra CF ON L.Login = CF.Login WHERE " + contractMatch(q, "L.ID_contrato", contractID)

	out := &Table[Login]{Data: []Login{}}
	var err error
	if out.TotalRows, err = r.Count(ctx, "logins_details.count", q, "SELECT COUNT(*) "+from); err != nil {
		return nil, err
	}
	text := `SELECT L.Login, L.ltima_conex_o_final AS ltima_conex_o_inicial, CF.Sinal_RX,
			L.Login AS ONU_tipo, L.IPV4, CF.Transmissor
		` + from + `
		ORDER BY L.ltima_conex_o_final DESC
		LIMIT ` + q.Var(page.Limit) + ` OFFSET ` + q.Var(page.Offset)
	if err := r.Select(ctx, "logins_details", &out.Data, q, text); err != nil {
		return nil, err
	}
	return out, nil
}

// Comodato lists the equipment loaned to a contract.
func (r *Repository) Comodato(ctx context.Context, contractID string) (*Table[Loan], error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.Comodato")
	defer span.End()

	q := database.NewQuery()
	text := "SELECT Descricao_produto, Status_comodato FROM Equipamento WHERE " + contractMatch(q, "ID_contrato", contractID)

	out := &Table[Loan]{Data: []Loan{}}
	if err := r.Select(ctx, "comodato_details", &out.Data, q, text); err != nil {
		return nil, err
	}
	out.TotalRows = int64(len(out.Data))
	return out, nil
}

// CancellationContext gathers the equipment, service orders and attendances of
// a churned customer, regardless of date.
func (r *Repository) CancellationContext(ctx context.Context, contractID, client string) (*CancellationContext, error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.CancellationContext")
	defer span.End()

	out := &CancellationContext{
		Equipamentos: []ContextEquipment{},
		OS:           []ContextOrder{},
		Atendimentos: []ContextAttendance{},
	}

	q := database.NewQuery()
	if err := r.Select(ctx, "cancellation_context.equipment", &out.Equipamentos, q,
		"SELECT Descricao_produto, Status_comodato, Data FROM Equipamento WHERE "+contractMatch(q, "ID_contrato", contractID)); err != nil {
		return nil, err
	}

	q = database.NewQuery()
	if err := r.Select(ctx, "cancellation_context.os", &out.OS, q,
		"SELECT ID, Abertura, Fechamento, SLA, Assunto, Mensagem FROM OS WHERE TRIM(Cliente) = TRIM("+q.Var(client)+") ORDER BY Abertura DESC"); err != nil {
		return nil, err
	}

	q = database.NewQuery()
	if err := r.Select(ctx, "cancellation_context.atendimentos", &out.Atendimentos, q,
		"SELECT ID, Criado_em, ltima_altera_o, Assunto, Novo_status, Descri_o FROM Atendimentos WHERE TRIM(Cliente) = TRIM("+q.Var(client)+") ORDER BY Criado_em DESC"); err != nil {
		return nil, err
	}
	return out, nil
}
