// Package tech serves the equipment and daily activation/churn reports.
package tech

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

const (
	// AssociatedRouter is the virtual row counted once per returned AN5506 ONU,
	// which ships with a separate router.
	AssociatedRouter = "ROTEADOR (Associado a ONU)"
	// GroupedSuffix marks a folded model bucket.
	GroupedSuffix = " (Agrupado)"

	equipmentTop = 20
	oltTop       = 30
)

// foldedModels are the product prefixes whose variants collapse into one bucket.
var foldedModels = []string{"ONU AN5506-01", "ONU AN5506-02", "ONU HG6143D"}

// routerModels ship with a router that is returned alongside the ONU.
var routerModels = []string{"ONU AN5506-01", "ONU AN5506-02"}

type EquipmentFilter struct {
	City      string
	Range     filters.DateRange
	Relevance filters.Relevance
}

type EquipmentCount struct {
	Descricao string `db:"Descricao_produto" json:"Descricao_produto"`
	Count     int64  `db:"Count" json:"Count"`
}

type EquipmentReport struct {
	Data            []EquipmentCount `json:"data"`
	Years           []string         `json:"years"`
	Cities          []string         `json:"cities"`
	TotalEquipments int64            `json:"total_equipments"`
}

type OLTFilter struct {
	City        string
	Transmitter string
}

type OLTReport struct {
	Data         []EquipmentCount `json:"data"`
	Cities       []string         `json:"cities"`
	Transmitters []string         `json:"transmitters"`
}

type DailyPoint struct {
	Date      string `json:"date"`
	Ativacoes int64  `json:"ativacoes"`
	Churn     int64  `json:"churn"`
}

type DailyTotals struct {
	Ativacoes int64 `json:"total_ativacoes"`
	Churn     int64 `json:"total_churn"`
}

type CityEvolution struct {
	DailyData []DailyPoint `json:"daily_data"`
	Totals    DailyTotals  `json:"totals"`
}

type DailyReport struct {
	Data map[string]*CityEvolution `json:"data"`
}

type TechRepository interface {
	CancellationsByEquipment(ctx context.Context, f EquipmentFilter) (*EquipmentReport, error)
	EquipmentByOLT(ctx context.Context, f OLTFilter) (*OLTReport, error)
	DailyEvolutionByCity(ctx context.Context, dates filters.DateRange) (*DailyReport, error)
}

type Repository struct {
	*repositories.Repository
}

func NewRepository(db database.DB, schema *database.Schema, logger ectologger.Logger) *Repository {
	return &Repository{Repository: repositories.NewRepository(db, schema, logger)}
}

// FoldModelSQL maps a product description column onto its folded bucket.
func FoldModelSQL(col string) string {
	text := "CASE"
	for _, m := range foldedModels {
		text += " WHEN " + col + " LIKE '" + m + "%' THEN '" + m + GroupedSuffix + "'"
	}
	return text + " ELSE " + col + " END"
}

func routerSQL(col string) string {
	text := ""
	for i, m := range routerModels {
		if i > 0 {
			text += " OR "
		}
		text += col + " LIKE '%" + m + "%'"
	}
	return "(" + text + ")"
}

// CancellationsByEquipment ranks the last equipment returned by each churned
// contract.
func (r *Repository) CancellationsByEquipment(ctx context.Context, f EquipmentFilter) (*EquipmentReport, error) {
	ctx, span := tracing.StartSpan(ctx, "TechRepository.CancellationsByEquipment")
	defer span.End()

	if err := r.RequireTable(ctx, "Equipamento"); err != nil {
		return nil, err
	}
	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	q := database.NewQuery()
	events := repositories.ChurnEventsSQL(q, repositories.ChurnScope{
		Range:           f.Range,
		City:            f.City,
		WithNegativacao: withNeg,
	})
	churned := "SELECT Contract_Key FROM (" + events + ")" + database.Where(f.Relevance.Predicates(q, "permanencia_meses")...)

	base := `WITH Churned AS (` + churned + `),
		LastReturned AS (
			SELECT Descricao_produto FROM (
				SELECT E.Descricao_produto,
					ROW_NUMBER() OVER (PARTITION BY ` + filters.ContractKeySQL("E.ID_contrato") + ` ORDER BY E.Data DESC) AS rn
				FROM Equipamento E
				JOIN Churned CH ON ` + filters.ContractKeySQL("E.ID_contrato") + ` = CH.Contract_Key
				WHERE E.Status_comodato = 'Baixa' AND E.Descricao_produto IS NOT NULL AND TRIM(E.Descricao_produto) != ''
			) WHERE rn = 1
		),
		Expanded AS (
			SELECT Descricao_produto FROM LastReturned
			UNION ALL
			SELECT '` + AssociatedRouter + `' FROM LastReturned WHERE ` + routerSQL("Descricao_produto") + `
		)`

	report := &EquipmentReport{Data: []EquipmentCount{}}
	if report.TotalEquipments, err = r.Count(ctx, "cancellations_by_equipment.total", q, base+" SELECT COUNT(*) FROM Expanded"); err != nil {
		return nil, err
	}
	text := base + `
		SELECT ` + FoldModelSQL("Descricao_produto") + ` AS Descricao_produto, COUNT(*) AS Count
		FROM Expanded
		GROUP BY 1
		ORDER BY Count DESC, Descricao_produto
		LIMIT ` + q.Var(equipmentTop)
	if err := r.Select(ctx, "cancellations_by_equipment", &report.Data, q, text); err != nil {
		return nil, err
	}

	years := "SELECT STRFTIME('%Y', Data_cancelamento) AS Year FROM Contratos WHERE Data_cancelamento IS NOT NULL"
	cities := "SELECT TRIM(Cidade) AS Cidade FROM Contratos WHERE Cidade IS NOT NULL AND TRIM(Cidade) != ''"
	if withNeg {
		years += " UNION SELECT STRFTIME('%Y', Data_negativa_o) FROM " + repositories.Negativacao + " WHERE Data_negativa_o IS NOT NULL"
		cities += " UNION SELECT TRIM(Cidade) FROM " + repositories.Negativacao + " WHERE Cidade IS NOT NULL AND TRIM(Cidade) != ''"
	}
	if report.Years, err = r.Strings(ctx, "cancellations_by_equipment.years", database.NewQuery(),
		"SELECT DISTINCT Year FROM ("+years+") WHERE Year IS NOT NULL ORDER BY Year DESC"); err != nil {
		return nil, err
	}
	if report.Cities, err = r.Strings(ctx, "cancellations_by_equipment.cities", database.NewQuery(),
		"SELECT DISTINCT Cidade FROM ("+cities+") ORDER BY Cidade"); err != nil {
		return nil, err
	}
	return report, nil
}

// EquipmentByOLT counts loaned equipment of contracts whose login reports a
// transmitter (OLT) signal.
func (r *Repository) EquipmentByOLT(ctx context.Context, f OLTFilter) (*OLTReport, error) {
	ctx, span := tracing.StartSpan(ctx, "TechRepository.EquipmentByOLT")
	defer span.End()

	if err := r.RequireTable(ctx, "Equipamento"); err != nil {
		return nil, err
	}

	q := database.NewQuery()
	preds := []string{"E.Status_comodato = 'Emprestado'", "L.Transmissor IS NOT NULL", "TRIM(L.Transmissor) != ''"}
	if f.City != "" {
		preds = append(preds, "C.Cidade = "+q.Var(f.City))
	}
	if f.Transmitter != "" {
		preds = append(preds, "L.Transmissor = "+q.Var(f.Transmitter))
	}
	text := `SELECT E.Descricao_produto, COUNT(*) AS Count
		FROM Logins L
		JOIN Contratos C ON ` + filters.ContractKeySQL("L.ID_contrato") + ` = ` + filters.ContractKeySQL("C.ID") + `
		JOIN Equipamento E ON ` + filters.ContractKeySQL("E.ID_contrato") + ` = ` + filters.ContractKeySQL("C.ID") + database.Where(preds...) + `
		GROUP BY E.Descricao_produto
		ORDER BY Count DESC, E.Descricao_produto
		LIMIT ` + q.Var(oltTop)

	report := &OLTReport{Data: []EquipmentCount{}}
	if err := r.Select(ctx, "equipment_by_olt", &report.Data, q, text); err != nil {
		return nil, err
	}

	var err error
	cities := `SELECT DISTINCT TRIM(C.Cidade) AS Cidade FROM Contratos C
		JOIN Logins L ON ` + filters.ContractKeySQL("C.ID") + ` = ` + filters.ContractKeySQL("L.ID_contrato") + `
		WHERE C.Cidade IS NOT NULL AND TRIM(C.Cidade) != '' ORDER BY Cidade`
	if report.Cities, err = r.Strings(ctx, "equipment_by_olt.cities", database.NewQuery(), cities); err != nil {
		return nil, err
	}
	transmitters := "SELECT DISTINCT TRIM(Transmissor) AS Transmissor FROM Logins WHERE Transmissor IS NOT NULL AND TRIM(Transmissor) != '' ORDER BY Transmissor"
	if report.Transmitters, err = r.Strings(ctx, "equipment_by_olt.transmitters", database.NewQuery(), transmitters); err != nil {
		return nil, err
	}
	return report, nil
}

type dailyRow struct {
	Cidade    string `db:"Cidade"`
	EventDate string `db:"event_date"`
	Ativacoes int64  `db:"ativacoes"`
	Churn     int64  `db:"churn"`
}

// DailyEvolutionByCity counts activations and churn events per city and day.
func (r *Repository) DailyEvolutionByCity(ctx context.Context, dates filters.DateRange) (*DailyReport, error) {
	ctx, span := tracing.StartSpan(ctx, "TechRepository.DailyEvolutionByCity")
	defer span.End()

	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	q := database.NewQuery()
	key := filters.ContractKeySQL("ID")
	activations := "SELECT " + key + " AS Contract_Key, TRIM(Cidade) AS Cidade, DATE(Data_ativa_o) AS event_date, 1 AS Priority FROM Contratos" +
		" WHERE Data_ativa_o IS NOT NULL AND Cidade IS NOT NULL AND TRIM(Cidade) != ''"
	if withNeg {
		activations += " UNION ALL SELECT " + key + ", TRIM(Cidade), DATE(Data_ativa_o), 2 FROM " + repositories.Negativacao +
			" WHERE Data_ativa_o IS NOT NULL AND Cidade IS NOT NULL AND TRIM(Cidade) != ''"
	}
	churn := repositories.ChurnEventsSQL(q, repositories.ChurnScope{RequireCity: true, WithNegativacao: withNeg})

	text := `WITH AllEvents AS (
			SELECT Cidade, event_date, 'ativacao' AS event_type FROM (
				SELECT *, ROW_NUMBER() OVER (PARTITION BY Contract_Key ORDER BY Priority) AS rn FROM (` + activations + `)
			) WHERE rn = 1
			UNION ALL
			SELECT Cidade, DATE(end_date), 'churn' FROM (` + churn + `) WHERE end_date IS NOT NULL
		)
		SELECT Cidade, event_date,
			SUM(CASE WHEN event_type = 'ativacao' THEN 1 ELSE 0 END) AS ativacoes,
			SUM(CASE WHEN event_type = 'churn' THEN 1 ELSE 0 END) AS churn
		FROM AllEvents` + database.Where(append([]string{"event_date IS NOT NULL"}, dates.Predicates(q, "event_date")...)...) + `
		GROUP BY Cidade, event_date
		ORDER BY Cidade, event_date`

	var rows []dailyRow
	if err := r.Select(ctx, "daily_evolution_by_city", &rows, q, text); err != nil {
		return nil, err
	}

	report := &DailyReport{Data: map[string]*CityEvolution{}}
	for _, row := range rows {
		city, ok := report.Data[row.Cidade]
		if !ok {
			city = &CityEvolution{DailyData: []DailyPoint{}}
			report.Data[row.Cidade] = city
		}
		city.DailyData = append(city.DailyData, DailyPoint{Date: row.EventDate, Ativacoes: row.Ativacoes, Churn: row.Churn})
		city.Totals.Ativacoes += row.Ativacoes
		city.Totals.Churn += row.Churn
	}
	return report, nil
}
