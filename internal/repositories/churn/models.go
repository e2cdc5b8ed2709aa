package churn

import (
	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
)

// Drill columns accepted by the cancellation and negativação tables.
const (
	DrillMotivo     = "motivo"
	DrillObs        = "obs"
	DrillFinanceiro = "financeiro"
)

// ListFilter is shared by the cancellation and negativação reports.
type ListFilter struct {
	Search    string
	Relevance filters.Relevance
	Range     filters.DateRange
	SortOrder string
	// DrillColumn/DrillValue narrow the table and its count, never the charts.
	DrillColumn string
	DrillValue  string
	Page        repositories.Page
}

type FinancialColumns struct {
	AtrasosPagos    int64    `db:"Atrasos_Pagos" json:"Atrasos_Pagos"`
	FaturasNaoPagas int64    `db:"Faturas_Nao_Pagas" json:"Faturas_Nao_Pagas"`
	TotalFaturas    int64    `db:"Total_Faturas" json:"Total_Faturas"`
	MediaAtraso     *float64 `db:"Media_Atraso" json:"Media_Atraso"`
}

type Cancellation struct {
	Cliente              database.Text `db:"Cliente" json:"Cliente"`
	ContratoID           database.Text `db:"Contrato_ID" json:"Contrato_ID"`
	MotivoCancelamento   string        `db:"Motivo_cancelamento" json:"Motivo_cancelamento"`
	ObsCancelamento      string        `db:"Obs_cancelamento" json:"Obs_cancelamento"`
	DataCancelamento     database.Text `db:"Data_cancelamento" json:"Data_cancelamento"`
	TeveContatoRelevante string        `db:"Teve_Contato_Relevante" json:"Teve_Contato_Relevante"`
	PermanenciaMeses     *int64        `db:"permanencia_meses" json:"permanencia_meses"`
	FinancialColumns
}

type MotivoSlice struct {
	Motivo string `db:"Motivo_cancelamento" json:"Motivo_cancelamento"`
	Count  int64  `db:"Count" json:"Count"`
}

type ObsSlice struct {
	Obs   string `db:"Obs_cancelamento" json:"Obs_cancelamento"`
	Count int64  `db:"Count" json:"Count"`
}

type PaymentSlice struct {
	Status string `db:"Status_Pagamento" json:"Status_Pagamento"`
	Count  int64  `db:"Count" json:"Count"`
}

type CancellationCharts struct {
	Motivo     []MotivoSlice  `json:"motivo"`
	Obs        []ObsSlice     `json:"obs"`
	Financeiro []PaymentSlice `json:"financeiro"`
}

type CancellationReport struct {
	Data      []Cancellation     `json:"data"`
	TotalRows int64              `json:"total_rows"`
	Charts    CancellationCharts `json:"charts"`
}

type Negativado struct {
	Cliente              database.Text `db:"Cliente" json:"Cliente"`
	ContratoID           database.Text `db:"Contrato_ID" json:"Contrato_ID"`
	EndDate              database.Text `db:"end_date" json:"end_date"`
	TeveContatoRelevante string        `db:"Teve_Contato_Relevante" json:"Teve_Contato_Relevante"`
	PermanenciaMeses     *int64        `db:"permanencia_meses" json:"permanencia_meses"`
	FinancialColumns
}

type NegativacaoCharts struct {
	Financeiro []PaymentSlice `json:"financeiro"`
}

type NegativacaoReport struct {
	Data      []Negativado      `json:"data"`
	TotalRows int64             `json:"total_rows"`
	Charts    NegativacaoCharts `json:"charts"`
}

// AreaFilter scopes the per-city and per-neighborhood churn counts.
type AreaFilter struct {
	City      string
	Range     filters.DateRange
	Relevance filters.Relevance
}

type CityCount struct {
	Cidade      string `db:"Cidade" json:"Cidade"`
	Cancelados  int64  `db:"Cancelados" json:"Cancelados"`
	Negativados int64  `db:"Negativados" json:"Negativados"`
	Total       int64  `db:"Total" json:"Total"`
}

type CityReport struct {
	Data             []CityCount `json:"data"`
	Years            []string    `json:"years"`
	TotalCancelados  int64       `json:"total_cancelados"`
	TotalNegativados int64       `json:"total_negativados"`
	GrandTotal       int64       `json:"grand_total"`
	TotalPresDutra   int64       `json:"total_pres_dutra"`
	TotalDomPedro    int64       `json:"total_dom_pedro"`
}

type NeighborhoodCount struct {
	Bairro      string `db:"Bairro" json:"Bairro"`
	Cancelados  int64  `db:"Cancelados" json:"Cancelados"`
	Negativados int64  `db:"Negativados" json:"Negativados"`
	Total       int64  `db:"Total" json:"Total"`
}

type NeighborhoodReport struct {
	Data             []NeighborhoodCount `json:"data"`
	Cities           []string            `json:"cities"`
	Years            []string            `json:"years"`
	TotalCancelados  int64               `json:"total_cancelados"`
	TotalNegativados int64               `json:"total_negativados"`
	GrandTotal       int64               `json:"grand_total"`
}

type CohortFilter struct {
	City  string
	Range filters.DateRange
}

type CohortDataset struct {
	Label string  `json:"label"`
	Data  []int64 `json:"data"`
	Fill  string  `json:"fill"`
}

type CohortReport struct {
	Labels   []string        `json:"labels"`
	Datasets []CohortDataset `json:"datasets"`
	Cities   []string        `json:"cities"`
	Years    []string        `json:"years"`
}

type EvolutionFilter struct {
	Start, End     string
	City           string
	StatusContrato []string
	StatusAcesso   []string
}

type MonthCount struct {
	Month string `db:"Month" json:"Month"`
	Count int64  `db:"Active_Clients_Count" json:"Active_Clients_Count"`
}

type EvolutionReport struct {
	Data   []MonthCount `json:"data"`
	Cities []string     `json:"cities"`
}
