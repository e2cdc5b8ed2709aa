// Package finance serves the receivables, financial health, revenue and
// late-interest reports.
package finance

import (
	"context"
	"strconv"

	"github.com/Gobusters/ectologger"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

type FinanceRepository interface {
	Receivables(ctx context.Context, f ReceivablesFilter) (*ReceivablesReport, error)
	FinancialHealth(ctx context.Context, delayDays int, f HealthFilter) (*HealthReport, error)
	Revenue(ctx context.Context, f RevenueFilter) (*RevenueReport, error)
	LateInterest(ctx context.Context, r filters.DateRange) (*InterestReport, error)
}

type Repository struct {
	*repositories.Repository
}

func NewRepository(db database.DB, schema *database.Schema, logger ectologger.Logger) *Repository {
	return &Repository{Repository: repositories.NewRepository(db, schema, logger)}
}

// Receivables lists customers with at least one late-paid or overdue invoice.
func (r *Repository) Receivables(ctx context.Context, f ReceivablesFilter) (*ReceivablesReport, error) {
	ctx, span := tracing.StartSpan(ctx, "FinanceRepository.Receivables")
	defer span.End()

	q := database.NewQuery()
	from := `FROM Contas_a_Receber CAR
		JOIN Contratos CON ON ` + filters.ContractKeySQL("CAR.ID_Contrato_Recorrente") + ` = ` + filters.ContractKeySQL("CON.ID") + `
		JOIN Clientes C ON CON.Cliente = C.Raz_o_social
		WHERE ((CAR.Status = 'A receber' AND CAR.Vencimento < DATE('now')) OR CAR.Data_pagamento > CAR.Vencimento)`
	if f.Search != "" {
		from += " AND C.Raz_o_social LIKE " + q.Var("%"+f.Search+"%")
	}

	report := &ReceivablesReport{Data: []Receivable{}}
	var err error
	if report.TotalRows, err = r.Count(ctx, "contas_a_receber.count", q, "SELECT COUNT(DISTINCT TRIM(CON.ID)) "+from); err != nil {
		return nil, err
	}

	text := `SELECT C.Raz_o_social AS Cliente, TRIM(CON.ID) AS Contrato_ID,
			SUM(CASE WHEN CAR.Data_pagamento > CAR.Vencimento THEN 1 ELSE 0 END) AS Atrasos_Pagos,
			SUM(CASE WHEN CAR.Status = 'A receber' AND CAR.Vencimento < DATE('now') THEN 1 ELSE 0 END) AS Faturas_Nao_Pagas
		` + from + `
		GROUP BY C.Raz_o_social, TRIM(CON.ID)
		HAVING Atrasos_Pagos > 0 OR Faturas_Nao_Pagas > 0
		ORDER BY C.Raz_o_social, Contrato_ID
		LIMIT ` + q.Var(f.Page.Limit) + ` OFFSET ` + q.Var(f.Page.Offset)
	if err := r.Select(ctx, "contas_a_receber", &report.Data, q, text); err != nil {
		return nil, err
	}
	return report, nil
}

// FinancialHealth lists contracts whose first seriously late payment (more than
// delayDays after the due date) is known, with complaint and last-login context.
func (r *Repository) FinancialHealth(ctx context.Context, delayDays int, f HealthFilter) (*HealthReport, error) {
	ctx, span := tracing.StartSpan(ctx, "FinanceRepository.FinancialHealth")
	defer span.End()
	tracing.SetAttributes(ctx, map[string]string{"delay_days": strconv.Itoa(delayDays)})

	q := database.NewQuery()
	var preds []string
	if f.Search != "" {
		preds = append(preds, "C.Cliente LIKE "+q.Var("%"+f.Search+"%"))
	}
	if len(f.StatusContrato) > 0 {
		preds = append(preds, filters.In(q, "C.Status_contrato", f.StatusContrato))
	}
	if len(f.StatusAcesso) > 0 {
		preds = append(preds, filters.In(q, "C.Status_acesso", f.StatusAcesso))
	}
	tenure := filters.TenureSQL("SUBSTR(C.Data_ativa_o, 1, 10)", "SUBSTR(FLP.Primeira_Inadimplencia_Vencimento, 1, 10)")
	preds = append(preds, f.Relevance.Predicates(q, tenure)...)
	where := database.Where(preds...)

	base := `WITH ` + repositories.FirstLatePaymentCTE(q.Var(delayDays)) + `,
		` + repositories.ComplaintsCTE() + `,
		` + repositories.LastConnectionCTE()
	from := `FROM Contratos C
		JOIN FirstLatePayment FLP ON ` + filters.ContractKeySQL("C.ID") + ` = FLP.Contract_Key
		LEFT JOIN CustomerComplaints CC ON C.Cliente = CC.Cliente
		LEFT JOIN LastConnection LC ON ` + filters.ContractKeySQL("C.ID") + ` = LC.Contract_Key` + where

	report := &HealthReport{Data: []HealthRow{}}
	var err error
	if report.TotalRows, err = r.Count(ctx, "financial_health.count", q, base+" SELECT COUNT(C.ID) "+from); err != nil {
		return nil, err
	}

	text := base + `
		SELECT C.Cliente AS Razao_Social, TRIM(C.ID) AS Contrato_ID, C.Status_contrato, C.Status_acesso,
			C.Data_ativa_o, FLP.Primeira_Inadimplencia_Vencimento,
			COALESCE(CC.Possui_Reclamacoes, 'Não') AS Possui_Reclamacoes,
			LC.Ultima_Conexao
		` + from + `
		ORDER BY C.Cliente, C.ID
		LIMIT ` + q.Var(f.Page.Limit) + ` OFFSET ` + q.Var(f.Page.Offset)
	if err := r.Select(ctx, "financial_health", &report.Data, q, text); err != nil {
		return nil, err
	}
	return report, nil
}

// revenueSeries renders the received / to-receive / cancelled monthly sums over
// the given FROM clause and extra predicates.
func revenueSeries(q *database.Query, from string, f RevenueFilter, extra []string) string {
	between := func(col string) string {
		return "DATE(" + col + ") BETWEEN " + q.Var(f.Start) + " AND " + q.Var(f.End)
	}
	and := database.And(extra...)
	return `SELECT STRFTIME('%Y-%m', CR.Data_pagamento) AS Month, 'Recebido' AS Status, COALESCE(SUM(CR.Valor_recebido), 0) AS Total_Value
		` + from + ` WHERE ` + between("CR.Data_pagamento") + and + ` GROUP BY Month
		UNION ALL
		SELECT STRFTIME('%Y-%m', CR.Vencimento) AS Month, 'A receber' AS Status, COALESCE(SUM(CR.Valor), 0) AS Total_Value
		` + from + ` WHERE CR.Status = 'A receber' AND ` + between("CR.Vencimento") + and + ` GROUP BY Month
		UNION ALL
		SELECT STRFTIME('%Y-%m', CR.Vencimento) AS Month, 'Cancelado' AS Status, COALESCE(SUM(CR.Valor_cancelado), 0) AS Total_Value
		` + from + ` WHERE CR.Status = 'Cancelado' AND ` + between("CR.Vencimento") + and + ` GROUP BY Month
		ORDER BY Month, Status`
}

// Revenue builds the three invoicing series: every invoice, invoices of active
// non-blacklisted customers, and billed value by fixed due day.
func (r *Repository) Revenue(ctx context.Context, f RevenueFilter) (*RevenueReport, error) {
	ctx, span := tracing.StartSpan(ctx, "FinanceRepository.Revenue")
	defer span.End()

	if f.Start == "" || f.End == "" {
		return nil, apperrors.BadRequest(apperrors.MsgRevenueDates)
	}

	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	report := &RevenueReport{Total: []RevenuePoint{}, Active: []RevenuePoint{}, ByDay: []DueDayPoint{}}
	join := "FROM Contas_a_Receber CR JOIN Contratos C ON " + filters.ContractKeySQL("CR.ID_Contrato_Recorrente") + " = " + filters.ContractKeySQL("C.ID")

	q := database.NewQuery()
	var invoiceCity []string
	if f.City != "" {
		invoiceCity = append(invoiceCity, "CR.Cidade = "+q.Var(f.City))
	}
	if err := r.Select(ctx, "faturamento.total", &report.Total, q, revenueSeries(q, "FROM Contas_a_Receber CR", f, invoiceCity)); err != nil {
		return nil, err
	}

	q = database.NewQuery()
	active := "C.Cliente IN (SELECT DISTINCT Cliente FROM Contratos WHERE Status_contrato = 'Ativo' AND Status_acesso != 'Desativado'"
	if withNeg {
		active += " AND Cliente NOT IN (SELECT DISTINCT Cliente FROM " + repositories.Negativacao + " WHERE Cliente IS NOT NULL)"
	}
	active += ")"
	contractCity := []string{active}
	if f.City != "" {
		contractCity = append(contractCity, "C.Cidade = "+q.Var(f.City))
	}
	if err := r.Select(ctx, "faturamento.ativos", &report.Active, q, revenueSeries(q, join, f, contractCity)); err != nil {
		return nil, err
	}

	q = database.NewQuery()
	preds := []string{
		"DATE(CR.Vencimento) BETWEEN " + q.Var(f.Start) + " AND " + q.Var(f.End),
		"C.Dia_fixo_do_vencimento IS NOT NULL",
	}
	if f.City != "" {
		preds = append(preds, "C.Cidade = "+q.Var(f.City))
	}
	byDay := `SELECT C.Dia_fixo_do_vencimento AS Due_Day, STRFTIME('%Y-%m', CR.Vencimento) AS Month, COALESCE(SUM(CR.Valor), 0) AS Total_Value
		` + join + database.Where(preds...) + `
		GROUP BY Due_Day, Month
		ORDER BY Month, Due_Day`
	if err := r.Select(ctx, "faturamento.dia_vencimento", &report.ByDay, q, byDay); err != nil {
		return nil, err
	}

	if report.Cities, err = r.Strings(ctx, "faturamento.cities", database.NewQuery(), repositories.CitiesSQL("Contratos")); err != nil {
		return nil, err
	}
	return report, nil
}

const interestBucketSQL = `CASE
		WHEN Delay_Days BETWEEN 1 AND 5 THEN '1-5 dias'
		WHEN Delay_Days BETWEEN 6 AND 10 THEN '6-10 dias'
		WHEN Delay_Days BETWEEN 11 AND 15 THEN '11-15 dias'
		WHEN Delay_Days BETWEEN 16 AND 20 THEN '16-20 dias'
		WHEN Delay_Days >= 21 THEN '21+ dias'
		ELSE 'Outros'
	END`

// LateInterest buckets the interest charged on late payments by delay.
func (r *Repository) LateInterest(ctx context.Context, dates filters.DateRange) (*InterestReport, error) {
	ctx, span := tracing.StartSpan(ctx, "FinanceRepository.LateInterest")
	defer span.End()

	q := database.NewQuery()
	preds := append([]string{
		"CR.Data_pagamento IS NOT NULL",
		"CR.Vencimento IS NOT NULL",
		"CR.Data_pagamento > CR.Vencimento",
		"(CR.Valor_recebido - CR.Valor) > 0.01",
	}, dates.Predicates(q, "CR.Data_pagamento")...)
	base := `WITH LatePayments AS (
			SELECT (CR.Valor_recebido - CR.Valor) AS Interest_Amount,
				CAST(JULIANDAY(CR.Data_pagamento) - JULIANDAY(CR.Vencimento) AS INTEGER) AS Delay_Days
			FROM Contas_a_Receber CR` + database.Where(preds...) + `
		)`

	report := &InterestReport{Data: []InterestBucket{}}
	if err := r.Get(ctx, "late_interest.totals", &report.Totals, q,
		base+" SELECT COALESCE(SUM(Interest_Amount), 0) AS total_interest_amount, COUNT(*) AS total_late_payments_count FROM LatePayments"); err != nil {
		return nil, err
	}

	buckets := base + `
		SELECT ` + interestBucketSQL + ` AS Delay_Bucket, COUNT(*) AS Count, COALESCE(SUM(Interest_Amount), 0) AS Total_Interest
		FROM LatePayments
		GROUP BY Delay_Bucket
		ORDER BY CASE Delay_Bucket
			WHEN '1-5 dias' THEN 1 WHEN '6-10 dias' THEN 2 WHEN '11-15 dias' THEN 3
			WHEN '16-20 dias' THEN 4 WHEN '21+ dias' THEN 5 ELSE 6 END`
	if err := r.Select(ctx, "late_interest", &report.Data, q, buckets); err != nil {
		return nil, err
	}

	years := `SELECT DISTINCT STRFTIME('%Y', Data_pagamento) AS Year FROM Contas_a_Receber
		WHERE Data_pagamento IS NOT NULL AND Data_pagamento > Vencimento ORDER BY Year DESC`
	var err error
	if report.Years, err = r.Strings(ctx, "late_interest.years", database.NewQuery(), years); err != nil {
		return nil, err
	}
	return report, nil
}
