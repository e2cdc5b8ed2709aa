package finance

import (
	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
)

// Delay thresholds, in days, of the two financial health reports.
const (
	GeneralDelay   = 10
	AutoBlockDelay = 20
)

type ReceivablesFilter struct {
	Search string
	Page   repositories.Page
}

type Receivable struct {
	Cliente         string        `db:"Cliente" json:"Cliente"`
	ContratoID      database.Text `db:"Contrato_ID" json:"Contrato_ID"`
	AtrasosPagos    int64         `db:"Atrasos_Pagos" json:"Atrasos_Pagos"`
	FaturasNaoPagas int64         `db:"Faturas_Nao_Pagas" json:"Faturas_Nao_Pagas"`
}

type ReceivablesReport struct {
	Data      []Receivable `json:"data"`
	TotalRows int64        `json:"total_rows"`
}

type HealthFilter struct {
	Search         string
	StatusContrato []string
	StatusAcesso   []string
	// Relevance bounds the tenure at the first delinquent due date.
	Relevance filters.Relevance
	Page      repositories.Page
}

type HealthRow struct {
	RazaoSocial           database.Text `db:"Razao_Social" json:"Razao_Social"`
	ContratoID            database.Text `db:"Contrato_ID" json:"Contrato_ID"`
	StatusContrato        database.Text `db:"Status_contrato" json:"Status_contrato"`
	StatusAcesso          database.Text `db:"Status_acesso" json:"Status_acesso"`
	DataAtivacao          database.Text `db:"Data_ativa_o" json:"Data_ativa_o"`
	PrimeiraInadimplencia database.Text `db:"Primeira_Inadimplencia_Vencimento" json:"Primeira_Inadimplencia_Vencimento"`
	PossuiReclamacoes     string        `db:"Possui_Reclamacoes" json:"Possui_Reclamacoes"`
	UltimaConexao         database.Text `db:"Ultima_Conexao" json:"Ultima_Conexao"`
}

type HealthReport struct {
	Data      []HealthRow `json:"data"`
	TotalRows int64       `json:"total_rows"`
}

type RevenueFilter struct {
	Start, End string
	City       string
}

type RevenuePoint struct {
	Month      string  `db:"Month" json:"Month"`
	Status     string  `db:"Status" json:"Status"`
	TotalValue float64 `db:"Total_Value" json:"Total_Value"`
}

type DueDayPoint struct {
	DueDay     int64   `db:"Due_Day" json:"Due_Day"`
	Month      string  `db:"Month" json:"Month"`
	TotalValue float64 `db:"Total_Value" json:"Total_Value"`
}

type RevenueReport struct {
	Total  []RevenuePoint `json:"faturamento_total"`
	Active []RevenuePoint `json:"faturamento_ativos"`
	ByDay  []DueDayPoint  `json:"faturamento_por_dia_vencimento"`
	Cities []string       `json:"cities"`
}

type InterestBucket struct {
	Bucket        string  `db:"Delay_Bucket" json:"Delay_Bucket"`
	Count         int64   `db:"Count" json:"Count"`
	TotalInterest float64 `db:"Total_Interest" json:"Total_Interest"`
}

type InterestTotals struct {
	Amount float64 `db:"total_interest_amount" json:"total_interest_amount"`
	Count  int64   `db:"total_late_payments_count" json:"total_late_payments_count"`
}

type InterestReport struct {
	Data   []InterestBucket `json:"data"`
	Totals InterestTotals   `json:"totals"`
	Years  []string         `json:"years"`
}
