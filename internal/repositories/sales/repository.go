// Package sales serves the per-seller churn and activation reports.
package sales

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

// UnknownSeller names contracts whose seller id has no Vendedores row.
const UnknownSeller = "Não Identificado"

type SellerChurn struct {
	VendedorID   int64  `db:"Vendedor_ID" json:"Vendedor_ID"`
	VendedorNome string `db:"Vendedor_Nome" json:"Vendedor_Nome"`
	Cancelados   int64  `db:"Cancelados_Count" json:"Cancelados_Count"`
	Negativados  int64  `db:"Negativados_Count" json:"Negativados_Count"`
	Total        int64  `db:"Total" json:"Total"`
}

type SellersReport struct {
	Data             []SellerChurn `json:"data"`
	TotalRows        int           `json:"total_rows"`
	Years            []string      `json:"years"`
	TotalCancelados  int64         `json:"total_cancelados"`
	TotalNegativados int64         `json:"total_negativados"`
	GrandTotal       int64         `json:"grand_total"`
}

type ActivationFilter struct {
	City  string
	Range filters.DateRange
}

type SellerActivations struct {
	VendedorID       int64  `db:"Vendedor_ID" json:"Vendedor_ID"`
	VendedorNome     string `db:"Vendedor_Nome" json:"Vendedor_Nome"`
	TotalAtivacoes   int64  `db:"Total_Ativacoes" json:"Total_Ativacoes"`
	PermanecemAtivos int64  `db:"Permanecem_Ativos" json:"Permanecem_Ativos"`
	Cancelados       int64  `db:"Cancelados" json:"Cancelados"`
	Negativados      int64  `db:"Negativados" json:"Negativados"`
	TotalChurn       int64  `db:"Total_Churn" json:"Total_Churn"`
}

type ActivationTotals struct {
	Ativacoes        int64 `json:"total_ativacoes"`
	PermanecemAtivos int64 `json:"total_permanecem_ativos"`
	Cancelados       int64 `json:"total_cancelados"`
	Negativados      int64 `json:"total_negativados"`
	Churn            int64 `json:"total_churn"`
}

type ActivationsReport struct {
	Data   []SellerActivations `json:"data"`
	Totals ActivationTotals    `json:"totals"`
	Cities []string            `json:"cities"`
	Years  []string            `json:"years"`
}

type SalesRepository interface {
	Sellers(ctx context.Context, dates filters.DateRange) (*SellersReport, error)
	ActivationsBySeller(ctx context.Context, f ActivationFilter) (*ActivationsReport, error)
}

type Repository struct {
	*repositories.Repository
}

func NewRepository(db database.DB, schema *database.Schema, logger ectologger.Logger) *Repository {
	return &Repository{Repository: repositories.NewRepository(db, schema, logger)}
}

// Sellers counts each seller's churned contracts across the three churn sources.
func (r *Repository) Sellers(ctx context.Context, dates filters.DateRange) (*SellersReport, error) {
	ctx, span := tracing.StartSpan(ctx, "SalesRepository.Sellers")
	defer span.End()

	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	q := database.NewQuery()
	events := repositories.ChurnEventsSQL(q, repositories.ChurnScope{Range: dates, WithNegativacao: withNeg})
	text := `SELECT E.Vendedor AS Vendedor_ID,
			COALESCE(V.Vendedor, '` + UnknownSeller + `') AS Vendedor_Nome,
			SUM(CASE WHEN E.Tipo = '` + repositories.KindCancelled + `' THEN 1 ELSE 0 END) AS Cancelados_Count,
			SUM(CASE WHEN E.Tipo = '` + repositories.KindNegativado + `' THEN 1 ELSE 0 END) AS Negativados_Count,
			COUNT(*) AS Total
		FROM (` + events + `) E
		LEFT JOIN Vendedores V ON E.Vendedor = V.ID
		WHERE E.Vendedor IS NOT NULL
		GROUP BY E.Vendedor
		ORDER BY Total DESC, Vendedor_Nome`

	report := &SellersReport{Data: []SellerChurn{}}
	if err := r.Select(ctx, "sellers", &report.Data, q, text); err != nil {
		return nil, err
	}

	years := "SELECT STRFTIME('%Y', Data_cancelamento) AS Year FROM Contratos WHERE Data_cancelamento IS NOT NULL"
	if withNeg {
		years += " UNION SELECT STRFTIME('%Y', Data_negativa_o) FROM " + repositories.Negativacao + " WHERE Data_negativa_o IS NOT NULL"
	}
	if report.Years, err = r.Strings(ctx, "sellers.years", database.NewQuery(),
		"SELECT DISTINCT Year FROM ("+years+") WHERE Year IS NOT NULL ORDER BY Year DESC"); err != nil {
		return nil, err
	}

	report.TotalRows = len(report.Data)
	for _, row := range report.Data {
		report.TotalCancelados += row.Cancelados
		report.TotalNegativados += row.Negativados
	}
	report.GrandTotal = report.TotalCancelados + report.TotalNegativados
	return report, nil
}

// ActivationsBySeller follows every contract activated in the window to its
// current outcome, per seller. A contract present in both tables counts once,
// with its Contratos status.
func (r *Repository) ActivationsBySeller(ctx context.Context, f ActivationFilter) (*ActivationsReport, error) {
	ctx, span := tracing.StartSpan(ctx, "SalesRepository.ActivationsBySeller")
	defer span.End()

	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	q := database.NewQuery()
	preds := []string{"Data_ativa_o IS NOT NULL", "Vendedor IS NOT NULL"}
	if f.City != "" {
		preds = append(preds, "Cidade = "+q.Var(f.City))
	}
	preds = append(preds, f.Range.Predicates(q, "Data_ativa_o")...)
	where := database.Where(preds...)

	key := filters.ContractKeySQL("ID")
	sources := "SELECT " + key + " AS Contract_Key, Vendedor, Status_contrato, Cidade, 1 AS Priority FROM Contratos" + where
	if withNeg {
		sources += " UNION ALL SELECT " + key + ", Vendedor, 'Negativado', Cidade, 2 FROM " + repositories.Negativacao + where
	}

	text := `WITH Activations AS (
			SELECT * FROM (
				SELECT *, ROW_NUMBER() OVER (PARTITION BY Contract_Key ORDER BY Priority) AS rn FROM (` + sources + `)
			) WHERE rn = 1
		),
		PerSeller AS (
			SELECT Vendedor AS Vendedor_ID,
				COUNT(*) AS Total_Ativacoes,
				SUM(CASE WHEN Status_contrato = 'Ativo' THEN 1 ELSE 0 END) AS Permanecem_Ativos,
				SUM(CASE WHEN Status_contrato = 'Inativo' THEN 1 ELSE 0 END) AS Cancelados,
				SUM(CASE WHEN Status_contrato = 'Negativado' AND ` + filters.OutOfRegionSQL("TRIM(COALESCE(Cidade, ''))") + ` THEN 1 ELSE 0 END) AS Negativados
			FROM Activations
			GROUP BY Vendedor
		)
		SELECT P.Vendedor_ID, COALESCE(V.Vendedor, '` + UnknownSeller + `') AS Vendedor_Nome,
			P.Total_Ativacoes, P.Permanecem_Ativos, P.Cancelados, P.Negativados,
			P.Cancelados + P.Negativados AS Total_Churn
		FROM PerSeller P
		LEFT JOIN Vendedores V ON P.Vendedor_ID = V.ID
		ORDER BY P.Total_Ativacoes DESC, Vendedor_Nome`

	report := &ActivationsReport{Data: []SellerActivations{}}
	if err := r.Select(ctx, "activations_by_seller", &report.Data, q, text); err != nil {
		return nil, err
	}

	cities := "SELECT TRIM(Cidade) AS Cidade FROM Contratos WHERE Cidade IS NOT NULL AND TRIM(Cidade) != ''"
	years := "SELECT STRFTIME('%Y', Data_ativa_o) AS Year FROM Contratos WHERE Data_ativa_o IS NOT NULL"
	if withNeg {
		cities += " UNION SELECT TRIM(Cidade) FROM " + repositories.Negativacao + " WHERE Cidade IS NOT NULL AND TRIM(Cidade) != ''"
		years += " UNION SELECT STRFTIME('%Y', Data_ativa_o) FROM " + repositories.Negativacao + " WHERE Data_ativa_o IS NOT NULL"
	}
	if report.Cities, err = r.Strings(ctx, "activations_by_seller.cities", database.NewQuery(),
		"SELECT DISTINCT Cidade FROM ("+cities+") ORDER BY Cidade"); err != nil {
		return nil, err
	}
	if report.Years, err = r.Strings(ctx, "activations_by_seller.years", database.NewQuery(),
		"SELECT DISTINCT Year FROM ("+years+") WHERE Year IS NOT NULL ORDER BY Year DESC"); err != nil {
		return nil, err
	}

	for _, row := range report.Data {
		report.Totals.Ativacoes += row.TotalAtivacoes
		report.Totals.PermanecemAtivos += row.PermanecemAtivos
		report.Totals.Cancelados += row.Cancelados
		report.Totals.Negativados += row.Negativados
		report.Totals.Churn += row.TotalChurn
	}
	return report, nil
}
