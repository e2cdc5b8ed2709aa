// Package churn serves the cancellation, negativação, geography, cohort and
// active-base reports.
package churn

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

const (
	cityPresidenteDutra = "Presidente Dutra"
	cityDomPedro        = "Dom Pedro"
)

type ChurnRepository interface {
	Cancellations(ctx context.Context, f ListFilter) (*CancellationReport, error)
	Negativacao(ctx context.Context, f ListFilter) (*NegativacaoReport, error)
	ByCity(ctx context.Context, f AreaFilter) (*CityReport, error)
	ByNeighborhood(ctx context.Context, f AreaFilter) (*NeighborhoodReport, error)
	Cohort(ctx context.Context, f CohortFilter) (*CohortReport, error)
	ActiveClientsEvolution(ctx context.Context, f EvolutionFilter) (*EvolutionReport, error)
}

type Repository struct {
	*repositories.Repository
}

func NewRepository(db database.DB, schema *database.Schema, logger ectologger.Logger) *Repository {
	return &Repository{Repository: repositories.NewRepository(db, schema, logger)}
}

// generalPredicates are the search and tenure filters shared by table, count and charts.
func generalPredicates(q *database.Query, f ListFilter) []string {
	var preds []string
	if f.Search != "" {
		preds = append(preds, "Cliente LIKE "+q.Var("%"+f.Search+"%"))
	}
	return append(preds, f.Relevance.Predicates(q, "permanencia_meses")...)
}

// drillPredicate translates a clicked chart slice into a table predicate.
func drillPredicate(q *database.Query, column, value string) string {
	value = strings.TrimSpace(value)
	if column == "" || value == "" {
		return ""
	}
	switch column {
	case DrillMotivo:
		return textDrill(q, "Motivo_cancelamento", value)
	case DrillObs:
		return textDrill(q, "Obs_cancelamento", value)
	case DrillFinanceiro:
		return repositories.PaymentBucketPredicate("Media_Atraso", value)
	}
	return ""
}

func textDrill(q *database.Query, col, value string) string {
	if value == filters.NotInformed {
		return "(" + col + " IS NULL OR TRIM(" + col + ") = '" + filters.NotInformed + "')"
	}
	return "UPPER(TRIM(" + col + ")) = UPPER(TRIM(" + q.Var(value) + "))"
}

func orderBy(sortOrder string) string {
	switch sortOrder {
	case "asc":
		return " ORDER BY permanencia_meses ASC, Cliente"
	case "desc":
		return " ORDER BY permanencia_meses DESC, Cliente"
	}
	return " ORDER BY Cliente, Contrato_ID"
}

func financeChartSQL(base, where string) string {
	return base + " SELECT " + repositories.PaymentBucketSQL("Media_Atraso") + " AS Status_Pagamento, COUNT(*) AS Count FROM FinalView" +
		where + " GROUP BY Status_Pagamento ORDER BY Count DESC"
}

func finalViewCTE() string {
	return `FinalView AS (
		SELECT BaseData.*,
			COALESCE(FS.Atrasos_Pagos, 0) AS Atrasos_Pagos,
			COALESCE(FS.Faturas_Nao_Pagas, 0) AS Faturas_Nao_Pagas,
			COALESCE(FS.Total_Faturas, 0) AS Total_Faturas,
			FS.Media_Atraso
		FROM BaseData
		LEFT JOIN FinancialStats FS ON BaseData.Contract_Key = FS.Contract_Key
	)`
}

// Cancellations lists cancelled contracts with their tenure, relevant-ticket flag
// and invoice behaviour. The drill filter narrows the table and its count only.
func (r *Repository) Cancellations(ctx context.Context, f ListFilter) (*CancellationReport, error) {
	ctx, span := tracing.StartSpan(ctx, "ChurnRepository.Cancellations")
	defer span.End()

	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	q := database.NewQuery()
	status := "Status_contrato = 'Inativo' AND Status_acesso = 'Desativado'"
	branches := []string{
		`SELECT ` + filters.ContractKeySQL("ID") + ` AS Contract_Key, TRIM(ID) AS Contrato_ID, Cliente, Data_ativa_o,
			Data_cancelamento, Motivo_cancelamento, Obs_cancelamento, 1 AS Priority
		FROM Contratos WHERE ` + status + database.And(f.Range.Predicates(q, "Data_cancelamento")...),
	}
	if withNeg {
		branches = append(branches, `SELECT `+filters.ContractKeySQL("ID")+` AS Contract_Key, TRIM(ID) AS Contrato_ID, Cliente, Data_ativa_o,
			Data_negativa_o AS Data_cancelamento, Motivo_cancelamento, Obs_cancelamento, 2 AS Priority
		FROM `+repositories.Negativacao+` WHERE `+status+database.And(f.Range.Predicates(q, "Data_negativa_o")...))
	}

	base := `WITH ` + repositories.FinancialStatsCTE() + `,
		` + repositories.RelevantTicketsCTE() + `,
		AllCancellations AS (
			SELECT * FROM (
				SELECT *, ROW_NUMBER() OVER (PARTITION BY Contract_Key ORDER BY Priority) AS rn
				FROM (` + strings.Join(branches, " UNION ALL ") + `)
			) WHERE rn = 1
		),
		BaseData AS (
			SELECT AC.Contract_Key, AC.Cliente, AC.Contrato_ID,
				COALESCE(AC.Motivo_cancelamento, '` + filters.NotInformed + `') AS Motivo_cancelamento,
				COALESCE(AC.Obs_cancelamento, '` + filters.NotInformed + `') AS Obs_cancelamento,
				AC.Data_cancelamento,
				CASE WHEN RT.Cliente IS NOT NULL THEN 'Sim' ELSE 'Não' END AS Teve_Contato_Relevante,
				CASE WHEN AC.Data_ativa_o IS NOT NULL AND AC.Data_cancelamento IS NOT NULL
					THEN ` + filters.TenureSQL("AC.Data_ativa_o", "AC.Data_cancelamento") + ` END AS permanencia_meses
			FROM AllCancellations AC
			LEFT JOIN RelevantTickets RT ON AC.Cliente = RT.Cliente
		),
		` + finalViewCTE()

	general := generalPredicates(q, f)
	table := general
	if drill := drillPredicate(q, f.DrillColumn, f.DrillValue); drill != "" {
		table = append(append([]string{}, general...), drill)
	}
	whereTable := database.Where(table...)
	whereCharts := database.Where(general...)

	report := &CancellationReport{Data: []Cancellation{}}
	if report.TotalRows, err = r.Count(ctx, "cancellations.count", q, base+" SELECT COUNT(*) FROM FinalView"+whereTable); err != nil {
		return nil, err
	}

	rows := `SELECT Cliente, Contrato_ID, Motivo_cancelamento, Obs_cancelamento, Data_cancelamento, Teve_Contato_Relevante,
		permanencia_meses, Atrasos_Pagos, Faturas_Nao_Pagas, Total_Faturas, Media_Atraso FROM FinalView`
	page := " LIMIT " + q.Var(f.Page.Limit) + " OFFSET " + q.Var(f.Page.Offset)
	if err := r.Select(ctx, "cancellations", &report.Data, q, base+" "+rows+whereTable+orderBy(f.SortOrder)+page); err != nil {
		return nil, err
	}

	report.Charts = CancellationCharts{Motivo: []MotivoSlice{}, Obs: []ObsSlice{}, Financeiro: []PaymentSlice{}}
	if err := r.Select(ctx, "cancellations.motivo", &report.Charts.Motivo, q,
		base+" SELECT Motivo_cancelamento, COUNT(*) AS Count FROM FinalView"+whereCharts+" GROUP BY Motivo_cancelamento ORDER BY Count DESC"); err != nil {
		return nil, err
	}
	if err := r.Select(ctx, "cancellations.obs", &report.Charts.Obs, q,
		base+" SELECT Obs_cancelamento, COUNT(*) AS Count FROM FinalView"+whereCharts+" GROUP BY Obs_cancelamento ORDER BY Count DESC"); err != nil {
		return nil, err
	}
	if err := r.Select(ctx, "cancellations.financeiro", &report.Charts.Financeiro, q, financeChartSQL(base, whereCharts)); err != nil {
		return nil, err
	}

	return report, nil
}

// Negativacao lists blacklisted contracts of both sources outside the excluded
// cities. The negativação table is mandatory here.
func (r *Repository) Negativacao(ctx context.Context, f ListFilter) (*NegativacaoReport, error) {
	ctx, span := tracing.StartSpan(ctx, "ChurnRepository.Negativacao")
	defer span.End()

	if err := r.RequireTable(ctx, repositories.Negativacao); err != nil {
		return nil, err
	}

	q := database.NewQuery()
	events := repositories.ChurnEventsSQL(q, repositories.ChurnScope{
		Range:           f.Range,
		Kinds:           []string{repositories.KindNegativado},
		WithNegativacao: true,
	})

	base := `WITH ` + repositories.FinancialStatsCTE() + `,
		` + repositories.RelevantTicketsCTE() + `,
		BaseData AS (
			SELECT AN.Contract_Key, AN.Cliente, AN.ID AS Contrato_ID, AN.end_date,
				CASE WHEN RT.Cliente IS NOT NULL THEN 'Sim' ELSE 'Não' END AS Teve_Contato_Relevante,
				AN.permanencia_meses
			FROM (` + events + `) AN
			LEFT JOIN RelevantTickets RT ON AN.Cliente = RT.Cliente
		),
		` + finalViewCTE()

	general := generalPredicates(q, f)
	table := general
	if f.DrillColumn == DrillFinanceiro {
		if drill := drillPredicate(q, f.DrillColumn, f.DrillValue); drill != "" {
			table = append(append([]string{}, general...), drill)
		}
	}
	whereTable := database.Where(table...)

	report := &NegativacaoReport{Data: []Negativado{}, Charts: NegativacaoCharts{Financeiro: []PaymentSlice{}}}
	var err error
	if report.TotalRows, err = r.Count(ctx, "negativacao.count", q, base+" SELECT COUNT(*) FROM FinalView"+whereTable); err != nil {
		return nil, err
	}

	rows := `SELECT Cliente, Contrato_ID, end_date, Teve_Contato_Relevante, permanencia_meses,
		Atrasos_Pagos, Faturas_Nao_Pagas, Total_Faturas, Media_Atraso FROM FinalView`
	page := " LIMIT " + q.Var(f.Page.Limit) + " OFFSET " + q.Var(f.Page.Offset)
	if err := r.Select(ctx, "negativacao", &report.Data, q, base+" "+rows+whereTable+orderBy(f.SortOrder)+page); err != nil {
		return nil, err
	}
	if err := r.Select(ctx, "negativacao.financeiro", &report.Charts.Financeiro, q, financeChartSQL(base, database.Where(general...))); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Repository) churnYears(ctx context.Context, withNeg bool) ([]string, error) {
	text := "SELECT STRFTIME('%Y', Data_cancelamento) AS Year FROM Contratos WHERE Data_cancelamento IS NOT NULL"
	if withNeg {
		text += " UNION SELECT STRFTIME('%Y', Data_negativa_o) AS Year FROM " + repositories.Negativacao + " WHERE Data_negativa_o IS NOT NULL"
	}
	text = "SELECT DISTINCT Year FROM (" + text + ") WHERE Year IS NOT NULL ORDER BY Year DESC"
	return r.Strings(ctx, "churn.years", database.NewQuery(), text)
}

func (r *Repository) churnCities(ctx context.Context, withNeg bool) ([]string, error) {
	text := repositories.CitiesSQL("Contratos")
	if withNeg {
		text = "SELECT DISTINCT Cidade FROM (" +
			"SELECT TRIM(Cidade) AS Cidade FROM Contratos WHERE Cidade IS NOT NULL AND TRIM(Cidade) != ''" +
			" UNION SELECT TRIM(Cidade) AS Cidade FROM " + repositories.Negativacao + " WHERE Cidade IS NOT NULL AND TRIM(Cidade) != ''" +
			") ORDER BY Cidade"
	}
	return r.Strings(ctx, "churn.cities", database.NewQuery(), text)
}

// ByCity counts cancelled and negativized contracts per city.
func (r *Repository) ByCity(ctx context.Context, f AreaFilter) (*CityReport, error) {
	ctx, span := tracing.StartSpan(ctx, "ChurnRepository.ByCity")
	defer span.End()

	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	q := database.NewQuery()
	events := repositories.ChurnEventsSQL(q, repositories.ChurnScope{
		Range:           f.Range,
		RequireCity:     true,
		WithNegativacao: withNeg,
	})
	text := `SELECT Cidade,
			SUM(CASE WHEN Tipo = '` + repositories.KindCancelled + `' THEN 1 ELSE 0 END) AS Cancelados,
			SUM(CASE WHEN Tipo = '` + repositories.KindNegativado + `' THEN 1 ELSE 0 END) AS Negativados,
			COUNT(*) AS Total
		FROM (` + events + `)` + database.Where(f.Relevance.Predicates(q, "permanencia_meses")...) + `
		GROUP BY Cidade
		HAVING COUNT(*) > 0
		ORDER BY Total DESC, Cidade`

	report := &CityReport{Data: []CityCount{}}
	if err := r.Select(ctx, "cancellations_by_city", &report.Data, q, text); err != nil {
		return nil, err
	}
	if report.Years, err = r.churnYears(ctx, withNeg); err != nil {
		return nil, err
	}

	for _, row := range report.Data {
		report.TotalCancelados += row.Cancelados
		report.TotalNegativados += row.Negativados
		switch row.Cidade {
		case cityPresidenteDutra:
			report.TotalPresDutra = row.Total
		case cityDomPedro:
			report.TotalDomPedro = row.Total
		}
	}
	report.GrandTotal = report.TotalCancelados + report.TotalNegativados
	return report, nil
}

// ByNeighborhood breaks one city's churn down by neighborhood. Without a city
// only the filter lists are returned.
func (r *Repository) ByNeighborhood(ctx context.Context, f AreaFilter) (*NeighborhoodReport, error) {
	ctx, span := tracing.StartSpan(ctx, "ChurnRepository.ByNeighborhood")
	defer span.End()

	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	report := &NeighborhoodReport{Data: []NeighborhoodCount{}}
	if report.Cities, err = r.churnCities(ctx, withNeg); err != nil {
		return nil, err
	}
	if report.Years, err = r.churnYears(ctx, withNeg); err != nil {
		return nil, err
	}
	if f.City == "" {
		return report, nil
	}

	q := database.NewQuery()
	events := repositories.ChurnEventsSQL(q, repositories.ChurnScope{
		Range:               f.Range,
		City:                f.City,
		RequireNeighborhood: true,
		WithNegativacao:     withNeg,
	})
	text := `SELECT Bairro,
			SUM(CASE WHEN Tipo = '` + repositories.KindCancelled + `' THEN 1 ELSE 0 END) AS Cancelados,
			SUM(CASE WHEN Tipo = '` + repositories.KindNegativado + `' THEN 1 ELSE 0 END) AS Negativados,
			COUNT(*) AS Total
		FROM (` + events + `)` + database.Where(f.Relevance.Predicates(q, "permanencia_meses")...) + `
		GROUP BY Bairro
		ORDER BY Total DESC, Bairro`
	if err := r.Select(ctx, "cancellations_by_neighborhood", &report.Data, q, text); err != nil {
		return nil, err
	}

	for _, row := range report.Data {
		report.TotalCancelados += row.Cancelados
		report.TotalNegativados += row.Negativados
	}
	report.GrandTotal = report.TotalCancelados + report.TotalNegativados
	return report, nil
}

type cohortCell struct {
	CohortMonth   string `db:"CohortMonth"`
	InvoiceMonth  string `db:"InvoiceMonth"`
	ActiveClients int64  `db:"ActiveClients"`
}

// Cohort builds the retention table: for each activation month, the distinct
// contracts billed in every later month while not yet churned.
func (r *Repository) Cohort(ctx context.Context, f CohortFilter) (*CohortReport, error) {
	ctx, span := tracing.StartSpan(ctx, "ChurnRepository.Cohort")
	defer span.End()

	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	report := &CohortReport{Labels: []string{}, Datasets: []CohortDataset{}}
	if report.Cities, err = r.churnCities(ctx, withNeg); err != nil {
		return nil, err
	}
	yearsText := "SELECT DISTINCT STRFTIME('%Y', Data_ativa_o) AS Year FROM Contratos WHERE Data_ativa_o IS NOT NULL"
	if withNeg {
		yearsText += " UNION SELECT DISTINCT STRFTIME('%Y', Data_ativa_o) AS Year FROM " + repositories.Negativacao + " WHERE Data_ativa_o IS NOT NULL"
	}
	if report.Years, err = r.Strings(ctx, "cohort.years", database.NewQuery(), yearsText+" ORDER BY Year DESC"); err != nil {
		return nil, err
	}

	key := filters.ContractKeySQL("ID")
	contracts := "SELECT " + key + " AS ID_Int, DATE(Data_ativa_o) AS Data_ativa_o, TRIM(Cidade) AS Cidade FROM Contratos WHERE Data_ativa_o IS NOT NULL"
	churn := "SELECT " + key + " AS ID_Int, MIN(DATE(Data_cancelamento)) AS ChurnDate FROM Contratos WHERE Data_cancelamento IS NOT NULL GROUP BY " + key
	if withNeg {
		contracts += " UNION SELECT " + key + ", DATE(Data_ativa_o), TRIM(Cidade) FROM " + repositories.Negativacao + " WHERE Data_ativa_o IS NOT NULL"
		churn += " UNION ALL SELECT " + key + ", MIN(DATE(Data_negativa_o)) FROM " + repositories.Negativacao + " WHERE Data_negativa_o IS NOT NULL GROUP BY " + key
	}

	q := database.NewQuery()
	preds := []string{"C.Data_ativa_o IS NOT NULL", "I.Vencimento >= C.Data_ativa_o"}
	if f.City != "" {
		preds = append(preds, "C.Cidade = "+q.Var(f.City))
	}
	preds = append(preds, f.Range.Predicates(q, "C.Data_ativa_o")...)

	text := `WITH AllContracts AS (
			SELECT ID_Int, MIN(Data_ativa_o) AS Data_ativa_o, MIN(Cidade) AS Cidade
			FROM (` + contracts + `)
			GROUP BY ID_Int
		),
		AllInvoices AS (
			SELECT ` + filters.ContractKeySQL("ID_Contrato_Recorrente") + ` AS ID_Int, DATE(Vencimento) AS Vencimento
			FROM Contas_a_Receber
			WHERE Vencimento IS NOT NULL
		),
		FinalChurn AS (
			SELECT ID_Int, MIN(ChurnDate) AS ChurnDate FROM (` + churn + `) GROUP BY ID_Int
		)
		SELECT STRFTIME('%Y-%m', C.Data_ativa_o) AS CohortMonth,
			STRFTIME('%Y-%m', I.Vencimento) AS InvoiceMonth,
			COUNT(DISTINCT CASE WHEN CH.ChurnDate IS NULL OR I.Vencimento < CH.ChurnDate THEN C.ID_Int END) AS ActiveClients
		FROM AllContracts C
		JOIN AllInvoices I ON C.ID_Int = I.ID_Int
		LEFT JOIN FinalChurn CH ON C.ID_Int = CH.ID_Int` + database.Where(preds...) + `
		GROUP BY CohortMonth, InvoiceMonth
		ORDER BY CohortMonth, InvoiceMonth`

	var cells []cohortCell
	if err := r.Select(ctx, "cohort", &cells, q, text); err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return report, nil
	}

	report.Labels, report.Datasets = buildCohort(cells)
	return report, nil
}

// buildCohort lays the cells out on a contiguous month axis. Each cohort series
// is zero before its own month and zero in months with no billed contract.
func buildCohort(cells []cohortCell) ([]string, []CohortDataset) {
	first, last := cells[0].InvoiceMonth, cells[0].InvoiceMonth
	byCohort := map[string]map[string]int64{}
	var cohorts []string
	for _, c := range cells {
		if c.InvoiceMonth < first {
			first = c.InvoiceMonth
		}
		if c.InvoiceMonth > last {
			last = c.InvoiceMonth
		}
		if _, ok := byCohort[c.CohortMonth]; !ok {
			byCohort[c.CohortMonth] = map[string]int64{}
			cohorts = append(cohorts, c.CohortMonth)
		}
		byCohort[c.CohortMonth][c.InvoiceMonth] = c.ActiveClients
	}
	sort.Strings(cohorts)

	labels := monthRange(first, last)
	datasets := make([]CohortDataset, 0, len(cohorts))
	for _, cohort := range cohorts {
		data := make([]int64, len(labels))
		for i, month := range labels {
			if month >= cohort {
				data[i] = byCohort[cohort][month]
			}
		}
		datasets = append(datasets, CohortDataset{Label: cohort, Data: data, Fill: "origin"})
	}
	return labels, datasets
}

// monthRange lists YYYY-MM months from first to last inclusive.
func monthRange(first, last string) []string {
	start, err1 := time.Parse("2006-01", first)
	end, err2 := time.Parse("2006-01", last)
	if err1 != nil || err2 != nil {
		return []string{first}
	}
	var months []string
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		months = append(months, m.Format("2006-01"))
	}
	return months
}

// ActiveClientsEvolution counts, for each month between Start and End, the
// contracts active on the month's last day. The out-of-region cities are excluded.
func (r *Repository) ActiveClientsEvolution(ctx context.Context, f EvolutionFilter) (*EvolutionReport, error) {
	ctx, span := tracing.StartSpan(ctx, "ChurnRepository.ActiveClientsEvolution")
	defer span.End()

	if f.Start == "" || f.End == "" {
		return nil, apperrors.BadRequest(apperrors.MsgDateRangeMissing)
	}

	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	key := filters.ContractKeySQL("ID")
	sources := "SELECT " + key + " AS Contract_Key, ID, Data_ativa_o, Data_cancelamento AS End_Date, Status_contrato, Status_acesso, TRIM(Cidade) AS Cidade, 1 AS Priority FROM Contratos WHERE Data_ativa_o IS NOT NULL"
	if withNeg {
		sources += " UNION ALL SELECT " + key + ", ID, Data_ativa_o, Data_negativa_o, 'Negativado', 'Desativado', TRIM(Cidade), 2 FROM " +
			repositories.Negativacao + " WHERE Data_ativa_o IS NOT NULL"
	}

	q := database.NewQuery()
	preds := []string{filters.OutOfRegionSQL("Cidade")}
	if f.City != "" {
		preds = append(preds, "Cidade = "+q.Var(f.City))
	}
	if len(f.StatusContrato) > 0 {
		preds = append(preds, filters.In(q, "Status_contrato", f.StatusContrato))
	}
	if len(f.StatusAcesso) > 0 {
		preds = append(preds, filters.In(q, "Status_acesso", f.StatusAcesso))
	}

	monthEnd := "DATE(ms.month_start, 'start of month', '+1 month', '-1 day')"
	text := `WITH RECURSIVE AllContracts AS (
			SELECT * FROM (
				SELECT *, ROW_NUMBER() OVER (PARTITION BY Contract_Key ORDER BY Priority) AS rn FROM (` + sources + `)
			) WHERE rn = 1
		),
		FilteredContracts AS (
			SELECT * FROM AllContracts` + database.Where(preds...) + `
		),
		month_series(month_start) AS (
			SELECT DATE(` + q.Var(f.Start) + `, 'start of month')
			UNION ALL
			SELECT DATE(month_start, '+1 month') FROM month_series
			WHERE month_start < DATE(` + q.Var(f.End) + `, 'start of month')
		)
		SELECT STRFTIME('%Y-%m', ms.month_start) AS Month,
			(
				SELECT COUNT(C.ID) FROM FilteredContracts C
				WHERE DATE(C.Data_ativa_o) <= ` + monthEnd + `
					AND (C.End_Date IS NULL OR DATE(C.End_Date) > ` + monthEnd + `)
			) AS Active_Clients_Count
		FROM month_series ms`

	report := &EvolutionReport{Data: []MonthCount{}}
	if err := r.Select(ctx, "active_clients_evolution", &report.Data, q, text); err != nil {
		return nil, err
	}

	citiesText := "SELECT DISTINCT TRIM(Cidade) AS Cidade FROM Contratos WHERE Cidade IS NOT NULL AND TRIM(Cidade) != '' AND " +
		filters.OutOfRegionSQL("TRIM(Cidade)") + " ORDER BY Cidade"
	if report.Cities, err = r.Strings(ctx, "active_clients_evolution.cities", database.NewQuery(), citiesText); err != nil {
		return nil, err
	}
	return report, nil
}
