package repositories

import (
	"strings"

	"github.com/Gobusters/ectolinq"

	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
)

// Payment behaviour buckets over the average payment delay of a contract.
const (
	BucketOnTime   = "Em dia/Adiantado"
	BucketLate     = "Pagamento Atrasado"
	BucketDefault  = "Inadimplente (>30d)"
	BucketNoRecord = "Sem Histórico"
)

// PaymentBucketSQL classifies an average delay column.
func PaymentBucketSQL(col string) string {
	return "CASE WHEN " + col + " IS NULL THEN '" + BucketNoRecord + "'" +
		" WHEN " + col + " <= 0 THEN '" + BucketOnTime + "'" +
		" WHEN " + col + " <= 30 THEN '" + BucketLate + "'" +
		" ELSE '" + BucketDefault + "' END"
}

// PaymentBucket is the Go twin of PaymentBucketSQL.
func PaymentBucket(avgDelay *float64) string {
	switch {
	case avgDelay == nil:
		return BucketNoRecord
	case *avgDelay <= 0:
		return BucketOnTime
	case *avgDelay <= 30:
		return BucketLate
	default:
		return BucketDefault
	}
}

// PaymentBucketPredicate returns the WHERE predicate selecting one bucket, or ""
// for an unknown label. "Em dia / Adiantado" is accepted as an alias.
func PaymentBucketPredicate(col, label string) string {
	switch strings.TrimSpace(label) {
	case BucketOnTime, "Em dia / Adiantado":
		return col + " <= 0"
	case BucketLate:
		return "(" + col + " > 0 AND " + col + " <= 30)"
	case BucketDefault:
		return col + " > 30"
	case BucketNoRecord:
		return col + " IS NULL"
	}
	return ""
}

// FinancialStatsCTE aggregates invoices per canonical contract key.
func FinancialStatsCTE() string {
	key := filters.ContractKeySQL("ID_Contrato_Recorrente")
	return `FinancialStats AS (
		SELECT ` + key + ` AS Contract_Key,
			SUM(CASE WHEN Data_pagamento > Vencimento THEN 1 ELSE 0 END) AS Atrasos_Pagos,
			SUM(CASE WHEN Status = 'A receber' AND Vencimento < DATE('now') THEN 1 ELSE 0 END) AS Faturas_Nao_Pagas,
			COUNT(*) AS Total_Faturas,
			AVG(CASE WHEN Data_pagamento IS NOT NULL THEN JULIANDAY(Data_pagamento) - JULIANDAY(Vencimento) END) AS Media_Atraso
		FROM Contas_a_Receber
		GROUP BY ` + key + `
	)`
}

// RelevantTicketsCTE lists customers with a field-service ticket.
func RelevantTicketsCTE() string {
	subjects := filters.RelevantSubjectsSQL()
	return `RelevantTickets AS (
		SELECT DISTINCT Cliente FROM (
			SELECT Cliente FROM Atendimentos WHERE Assunto IN (` + subjects + `)
			UNION ALL
			SELECT Cliente FROM OS WHERE Assunto IN (` + subjects + `)
		)
	)`
}

// ComplaintsCTE flags every customer with any ticket.
func ComplaintsCTE() string {
	return `CustomerComplaints AS (
		SELECT Cliente, 'Sim' AS Possui_Reclamacoes
		FROM (
			SELECT Cliente FROM Atendimentos WHERE Cliente IS NOT NULL
			UNION
			SELECT Cliente FROM OS WHERE Cliente IS NOT NULL
		)
		GROUP BY Cliente
	)`
}

// LastConnectionCTE is the latest login per canonical contract key.
func LastConnectionCTE() string {
	key := filters.ContractKeySQL("ID_contrato")
	return `LastConnection AS (
		SELECT ` + key + ` AS Contract_Key, MAX(ltima_conex_o_final) AS Ultima_Conexao
		FROM Logins
		WHERE ltima_conex_o_final IS NOT NULL AND ID_contrato IS NOT NULL
		GROUP BY ` + key + `
	)`
}

// FirstLatePaymentCTE finds, per contract, the earliest due date of an invoice
// paid more than delayVar days late and due on or after activation.
func FirstLatePaymentCTE(delayVar string) string {
	return `FirstLatePayment AS (
		SELECT ` + filters.ContractKeySQL("P.ID_Contrato_Recorrente") + ` AS Contract_Key,
			MIN(P.Vencimento) AS Primeira_Inadimplencia_Vencimento
		FROM Contas_a_Receber P
		JOIN Contratos CI ON ` + filters.ContractKeySQL("P.ID_Contrato_Recorrente") + ` = ` + filters.ContractKeySQL("CI.ID") + `
		WHERE P.Data_pagamento IS NOT NULL
			AND JULIANDAY(P.Data_pagamento) - JULIANDAY(P.Vencimento) > ` + delayVar + `
			AND DATE(P.Vencimento) >= DATE(CI.Data_ativa_o)
		GROUP BY ` + filters.ContractKeySQL("P.ID_Contrato_Recorrente") + `
	)`
}

// Churn event kinds.
const (
	KindCancelled  = "Cancelado"
	KindNegativado = "Negativado"
)

// ChurnScope selects churn events from the three sources: cancelled contracts,
// contracts marked Negativado and the optional negativação table.
type ChurnScope struct {
	Range        filters.DateRange
	City         string
	Neighborhood string
	Seller       *int64
	// Year and Month match the event date exactly ("2024", "03").
	Year, Month string
	// RequireCity drops events without a city (and without a neighborhood when
	// RequireNeighborhood is set).
	RequireCity         bool
	RequireNeighborhood bool
	Kinds               []string
	// WithNegativacao includes the optional table; callers set it from HasNegativacao.
	WithNegativacao bool
}

func (s ChurnScope) wants(kind string) bool {
	return len(s.Kinds) == 0 || ectolinq.Contains(s.Kinds, kind)
}

func (s ChurnScope) predicates(q *database.Query, dateCol string) []string {
	var preds []string
	preds = append(preds, s.Range.Predicates(q, dateCol)...)
	if s.City != "" {
		preds = append(preds, "TRIM(Cidade) = "+q.Var(s.City))
	}
	if s.Neighborhood != "" {
		preds = append(preds, "TRIM(Bairro) = "+q.Var(s.Neighborhood))
	}
	if s.Seller != nil {
		preds = append(preds, "Vendedor = "+q.Var(*s.Seller))
	}
	if s.Year != "" {
		preds = append(preds, "STRFTIME('%Y', "+dateCol+") = "+q.Var(s.Year))
	}
	if s.Month != "" {
		preds = append(preds, "STRFTIME('%m', "+dateCol+") = "+q.Var(s.Month))
	}
	if s.RequireCity {
		preds = append(preds, "Cidade IS NOT NULL", "TRIM(Cidade) != ''")
	}
	if s.RequireNeighborhood {
		preds = append(preds, "Bairro IS NOT NULL", "TRIM(Bairro) != ''")
	}
	return preds
}

// ChurnEventsSQL returns a subquery with one row per churned contract:
// Contract_Key, ID, Cliente, Cidade, Bairro, Vendedor, Data_ativa_o, end_date,
// Tipo and permanencia_meses. A contract present in several sources is kept once,
// preferring cancellation over Contratos negativação over the negativação table.
func ChurnEventsSQL(q *database.Query, s ChurnScope) string {
	cols := func(end, kind, priority string) string {
		return filters.ContractKeySQL("ID") + " AS Contract_Key, TRIM(ID) AS ID, Cliente, TRIM(Cidade) AS Cidade, TRIM(Bairro) AS Bairro, Vendedor, Data_ativa_o, " +
			end + " AS end_date, '" + kind + "' AS Tipo, " + priority + " AS Priority"
	}

	var branches []string
	if s.wants(KindCancelled) {
		preds := append([]string{"Status_contrato = 'Inativo'", "Status_acesso = 'Desativado'"}, s.predicates(q, "Data_cancelamento")...)
		branches = append(branches, "SELECT "+cols("Data_cancelamento", KindCancelled, "1")+" FROM Contratos"+database.Where(preds...))
	}
	if s.wants(KindNegativado) {
		preds := append([]string{"Status_contrato = 'Negativado'", filters.OutOfRegionSQL("TRIM(Cidade)")}, s.predicates(q, "Data_cancelamento")...)
		branches = append(branches, "SELECT "+cols("Data_cancelamento", KindNegativado, "2")+" FROM Contratos"+database.Where(preds...))
		if s.WithNegativacao {
			preds := append([]string{filters.OutOfRegionSQL("TRIM(Cidade)")}, s.predicates(q, "Data_negativa_o")...)
			branches = append(branches, "SELECT "+cols("Data_negativa_o", KindNegativado, "3")+" FROM "+Negativacao+database.Where(preds...))
		}
	}
	if len(branches) == 0 {
		return "SELECT NULL AS Contract_Key, NULL AS ID, NULL AS Cliente, NULL AS Cidade, NULL AS Bairro, NULL AS Vendedor, NULL AS Data_ativa_o, NULL AS end_date, NULL AS Tipo, NULL AS permanencia_meses WHERE 0"
	}

	return `SELECT Contract_Key, ID, Cliente, Cidade, Bairro, Vendedor, Data_ativa_o, end_date, Tipo,
			CASE WHEN Data_ativa_o IS NOT NULL AND end_date IS NOT NULL
				THEN ` + filters.TenureSQL("Data_ativa_o", "end_date") + ` END AS permanencia_meses
		FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY Contract_Key ORDER BY Priority) AS rn
			FROM (` + strings.Join(branches, " UNION ALL ") + `)
		)
		WHERE rn = 1`
}

// YearsSQL lists distinct years of a date column, newest first.
func YearsSQL(table, col string) string {
	return "SELECT DISTINCT STRFTIME('%Y', " + col + ") AS Year FROM " + table +
		" WHERE " + col + " IS NOT NULL AND STRFTIME('%Y', " + col + ") IS NOT NULL ORDER BY Year DESC"
}

// CitiesSQL lists distinct non-blank cities of a table.
func CitiesSQL(table string) string {
	return "SELECT DISTINCT TRIM(Cidade) AS Cidade FROM " + table +
		" WHERE Cidade IS NOT NULL AND TRIM(Cidade) != '' ORDER BY Cidade"
}
