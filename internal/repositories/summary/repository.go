// Package summary browses the snapshot tables and serves the generic per-table
// summaries, the due-day revenue summary and the contract status filters.
package summary

import (
	"context"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

// DefaultLimit pages the table browser.
const DefaultLimit = 25

const noSummaryMessage = "Nenhum resumo específico definido, retornando contagem total."

// dateColumns is the primary date column of the tables with a dated summary.
var dateColumns = map[string]string{
	"Clientes":  "Data_Cadastro",
	"Contratos": "Data_cadastro_sistema",
	"Logins":    "ltima_conex_o_final",
}

// systemTables belong to the API, not to the snapshot, and are never browsable.
var systemTables = map[string]bool{
	"users":             true,
	"accesslogs":        true,
	"settings":          true,
	"filemetadata":      true,
	"schema_migrations": true,
}

type TablePage struct {
	Data      []map[string]any `json:"data"`
	TotalRows int64            `json:"total_rows"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
}

// Filter narrows a table summary. City only applies to Contratos.
type Filter struct {
	Year, Month, City string
}

// Summary is keyed by chart; which keys appear depends on the table.
type Summary map[string]any

type DueDayTotal struct {
	DueDay     int64   `db:"Due_Day" json:"Due_Day"`
	Month      string  `db:"Month" json:"Month"`
	TotalValue float64 `db:"Total_Value" json:"Total_Value"`
}

type ContractStatuses struct {
	StatusContrato []string `json:"status_contrato"`
	StatusAcesso   []string `json:"status_acesso"`
}

type SummaryRepository interface {
	Tables(ctx context.Context) ([]string, error)
	TableData(ctx context.Context, table string, page repositories.Page) (*TablePage, error)
	TableSummary(ctx context.Context, table string, f Filter) (Summary, error)
	DueDayRevenue(ctx context.Context) ([]DueDayTotal, error)
	ContractStatuses(ctx context.Context) (*ContractStatuses, error)
}

type Repository struct {
	*repositories.Repository
	now func() time.Time
}

func NewRepository(db database.DB, schema *database.Schema, logger ectologger.Logger) *Repository {
	return &Repository{Repository: repositories.NewRepository(db, schema, logger), now: time.Now}
}

// Tables lists the snapshot tables.
func (r *Repository) Tables(ctx context.Context) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "SummaryRepository.Tables")
	defer span.End()

	all, err := r.Schema().Tables(ctx)
	if err != nil {
		return nil, apperrors.Query("tables", err)
	}
	out := make([]string, 0, len(all))
	for _, name := range all {
		if !systemTables[strings.ToLower(name)] {
			out = append(out, name)
		}
	}
	return out, nil
}

// resolve maps a requested name to a browsable table or a 404.
func (r *Repository) resolve(ctx context.Context, table string) (string, error) {
	stored, ok, err := r.Schema().Resolve(ctx, table)
	if err != nil {
		return "", apperrors.Query("tables", err)
	}
	if !ok || systemTables[strings.ToLower(stored)] {
		return "", apperrors.NotFound("Tabela '%s' não encontrada.", table)
	}
	return stored, nil
}

// TableData pages through any snapshot table.
func (r *Repository) TableData(ctx context.Context, table string, page repositories.Page) (*TablePage, error) {
	ctx, span := tracing.StartSpan(ctx, "SummaryRepository.TableData")
	defer span.End()
	tracing.SetAttributes(ctx, map[string]string{"table": table})

	stored, err := r.resolve(ctx, table)
	if err != nil {
		return nil, err
	}

	out := &TablePage{Limit: page.Limit, Offset: page.Offset}
	if out.TotalRows, err = r.Count(ctx, "table_data.count", database.NewQuery(), "SELECT COUNT(*) FROM "+database.QuoteIdent(stored)); err != nil {
		return nil, err
	}

	sb := database.NewSelectBuilder()
	sb.Select("*").From(database.QuoteIdent(stored)).Limit(page.Limit).Offset(page.Offset)
	q := database.NewQuery()
	if out.Data, err = r.Maps(ctx, "table_data", q, q.Var(sb)); err != nil {
		return nil, err
	}
	return out, nil
}

// TableSummary returns the charts defined for table, or its row count.
func (r *Repository) TableSummary(ctx context.Context, table string, f Filter) (Summary, error) {
	ctx, span := tracing.StartSpan(ctx, "SummaryRepository.TableSummary")
	defer span.End()
	tracing.SetAttributes(ctx, map[string]string{"table": table})

	stored, err := r.resolve(ctx, table)
	if err != nil {
		return nil, err
	}
	month, ok := filters.NormalizeMonth(f.Month)
	if !ok {
		return nil, apperrors.BadRequest(apperrors.MsgInvalidValue)
	}
	quoted := database.QuoteIdent(stored)
	dateCol := dateColumns[stored]
	cityFilter := stored == "Contratos" && f.City != ""

	q := database.NewQuery()
	var preds []string
	if dateCol != "" {
		col := database.QuoteIdent(dateCol)
		if f.Year != "" {
			preds = append(preds, "STRFTIME('%Y', "+col+") = "+q.Var(f.Year))
		}
		if month != "" {
			preds = append(preds, "STRFTIME('%m', "+col+") = "+q.Var(month))
		}
	}
	if cityFilter {
		preds = append(preds, "Cidade = "+q.Var(f.City))
	}
	where := database.Where(preds...)

	out := Summary{}
	if dateCol != "" {
		yq := database.NewQuery()
		col := database.QuoteIdent(dateCol)
		yearPreds := []string{col + " IS NOT NULL"}
		if cityFilter {
			yearPreds = append(yearPreds, "Cidade = "+yq.Var(f.City))
		}
		years, err := r.Strings(ctx, "summary.years", yq,
			"SELECT DISTINCT STRFTIME('%Y', "+col+") AS Year FROM "+quoted+database.Where(yearPreds...)+" ORDER BY Year DESC")
		if err != nil {
			return nil, err
		}
		out["years"] = years
	}

	grouped := func(key, report, text string) error {
		rows, err := r.Maps(ctx, report, q, text)
		if err != nil {
			return err
		}
		out[key] = rows
		return nil
	}

	switch stored {
	case "Clientes":
		if err := grouped("by_city", "summary.clientes.city",
			"SELECT Cidade, COUNT(*) AS Count FROM Clientes"+where+" GROUP BY Cidade ORDER BY Count DESC, Cidade LIMIT 20"); err != nil {
			return nil, err
		}
		if err := grouped("by_neighborhood", "summary.clientes.neighborhood",
			"SELECT Bairro, COUNT(*) AS Count FROM Clientes"+where+" GROUP BY Bairro ORDER BY Count DESC, Bairro LIMIT 20"); err != nil {
			return nil, err
		}
	case "Contratos":
		if err := grouped("by_status", "summary.contratos.status",
			"SELECT Status_contrato, COUNT(*) AS Count FROM Contratos"+where+" GROUP BY Status_contrato ORDER BY Count DESC, Status_contrato"); err != nil {
			return nil, err
		}
		if err := grouped("by_access_status", "summary.contratos.access",
			"SELECT Status_acesso, COUNT(*) AS Count FROM Contratos"+where+" GROUP BY Status_acesso ORDER BY Count DESC, Status_acesso"); err != nil {
			return nil, err
		}
		cities, err := r.Strings(ctx, "summary.contratos.cities", database.NewQuery(), repositories.CitiesSQL("Contratos"))
		if err != nil {
			return nil, err
		}
		out["cities"] = cities
		out["by_status_by_city"] = []map[string]any{}
		out["by_access_status_by_city"] = []map[string]any{}
		if !cityFilter {
			if err := grouped("by_status_by_city", "summary.contratos.status_city",
				"SELECT Cidade, Status_contrato, COUNT(*) AS Count FROM Contratos"+where+" GROUP BY Cidade, Status_contrato ORDER BY Cidade, Status_contrato"); err != nil {
				return nil, err
			}
			if err := grouped("by_access_status_by_city", "summary.contratos.access_city",
				"SELECT Cidade, Status_acesso, COUNT(*) AS Count FROM Contratos"+where+" GROUP BY Cidade, Status_acesso ORDER BY Cidade, Status_acesso"); err != nil {
				return nil, err
			}
		}
	case "Logins":
		if err := grouped("by_transmitter", "summary.logins.transmitter",
			"SELECT Transmissor, COUNT(DISTINCT Login) AS Count FROM Logins"+where+" GROUP BY Transmissor ORDER BY Count DESC, Transmissor"); err != nil {
			return nil, err
		}
		if err := grouped("by_plan", "summary.logins.plan",
			"SELECT Contrato, COUNT(*) AS Count FROM Logins"+where+" GROUP BY Contrato ORDER BY Count DESC, Contrato LIMIT 20"); err != nil {
			return nil, err
		}
	default:
		n, err := r.Count(ctx, "summary.count", q, "SELECT COUNT(*) FROM "+quoted+where)
		if err != nil {
			return nil, err
		}
		out["total_rows"] = n
		out["message"] = noSummaryMessage
	}
	return out, nil
}

// DueDayRevenue totals the invoices due in the current and two previous months
// by the contract's fixed due day.
func (r *Repository) DueDayRevenue(ctx context.Context) ([]DueDayTotal, error) {
	ctx, span := tracing.StartSpan(ctx, "SummaryRepository.DueDayRevenue")
	defer span.End()

	now := r.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start, end := first.AddDate(0, -2, 0), first.AddDate(0, 1, 0)

	q := database.NewQuery()
	text := `SELECT C.Dia_fixo_do_vencimento AS Due_Day,
			STRFTIME('%Y-%m', CR.Vencimento) AS Month,
			COALESCE(SUM(CR.Valor), 0) AS Total_Value
		FROM Contas_a_Receber CR
		JOIN Contratos C ON ` + filters.ContractKeySQL("CR.ID_Contrato_Recorrente") + ` = ` + filters.ContractKeySQL("C.ID") + `
		WHERE CR.Vencimento >= ` + q.Var(start.Format("2006-01-02")) + `
			AND CR.Vencimento < ` + q.Var(end.Format("2006-01-02")) + `
			AND C.Dia_fixo_do_vencimento IS NOT NULL
		GROUP BY Due_Day, Month
		ORDER BY Due_Day, Month`

	out := []DueDayTotal{}
	if err := r.Select(ctx, "finance_summary.by_due_date", &out, q, text); err != nil {
		return nil, err
	}
	return out, nil
}

// ContractStatuses lists the distinct contract and access statuses for the
// dashboard's filter dropdowns.
func (r *Repository) ContractStatuses(ctx context.Context) (*ContractStatuses, error) {
	ctx, span := tracing.StartSpan(ctx, "SummaryRepository.ContractStatuses")
	defer span.End()

	out := &ContractStatuses{}
	var err error
	if out.StatusContrato, err = r.Strings(ctx, "contract_statuses.contrato", database.NewQuery(),
		"SELECT DISTINCT Status_contrato FROM Contratos WHERE Status_contrato IS NOT NULL AND Status_contrato != '' ORDER BY Status_contrato"); err != nil {
		return nil, err
	}
	if out.StatusAcesso, err = r.Strings(ctx, "contract_statuses.acesso", database.NewQuery(),
		"SELECT DISTINCT Status_acesso FROM Contratos WHERE Status_acesso IS NOT NULL AND Status_acesso != '' ORDER BY Status_acesso"); err != nil {
		return nil, err
	}
	return out, nil
}
