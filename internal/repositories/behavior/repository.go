// Package behavior serves the complaint-pattern and predictive churn reports.
package behavior

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

const (
	// PredictiveDelay is the payment delay, in days, that marks a contract at risk.
	PredictiveDelay = 10
	topSubjects     = 15
)

type SubjectCount struct {
	Assunto string `db:"Assunto" json:"Assunto"`
	Count   int64  `db:"Count" json:"Count"`
}

type ComplaintReport struct {
	TopSubjects []SubjectCount `json:"top_subjects"`
	Cities      []string       `json:"cities"`
}

type PredictiveFilter struct {
	StatusContrato string
	StatusAcesso   string
	Page           repositories.Page
}

type AtRisk struct {
	RazaoSocial           database.Text `db:"Razao_Social" json:"Razao_Social"`
	ContratoID            database.Text `db:"Contrato_ID" json:"Contrato_ID"`
	StatusContrato        database.Text `db:"Status_contrato" json:"Status_contrato"`
	StatusAcesso          database.Text `db:"Status_acesso" json:"Status_acesso"`
	DataAtivacao          database.Text `db:"Data_ativa_o" json:"Data_ativa_o"`
	PrimeiraInadimplencia string        `db:"Primeira_Inadimplencia_Vencimento" json:"Primeira_Inadimplencia_Vencimento"`
	PossuiReclamacoes     string        `db:"Possui_Reclamacoes" json:"Possui_Reclamacoes"`
	UltimaConexao         database.Text `db:"Ultima_Conexao" json:"Ultima_Conexao"`
}

type PredictiveReport struct {
	Data      []AtRisk `json:"data"`
	TotalRows int64    `json:"total_rows"`
}

type BehaviorRepository interface {
	ComplaintPatterns(ctx context.Context, city string) (*ComplaintReport, error)
	PredictiveChurn(ctx context.Context, f PredictiveFilter) (*PredictiveReport, error)
}

type Repository struct {
	*repositories.Repository
}

func NewRepository(db database.DB, schema *database.Schema, logger ectologger.Logger) *Repository {
	return &Repository{Repository: repositories.NewRepository(db, schema, logger)}
}

// ComplaintPatterns ranks ticket subjects across OS and Atendimentos, located
// through the customer master.
func (r *Repository) ComplaintPatterns(ctx context.Context, city string) (*ComplaintReport, error) {
	ctx, span := tracing.StartSpan(ctx, "BehaviorRepository.ComplaintPatterns")
	defer span.End()

	q := database.NewQuery()
	var preds []string
	if city != "" {
		preds = append(preds, "Cidade = "+q.Var(city))
	}
	text := `SELECT Assunto, COUNT(*) AS Count
		FROM (
			SELECT T.Assunto, C.Cidade FROM OS T JOIN Clientes C ON T.Cliente = C.Raz_o_social
			UNION ALL
			SELECT T.Assunto, C.Cidade FROM Atendimentos T JOIN Clientes C ON T.Cliente = C.Raz_o_social
		)` + database.Where(append(preds, "Assunto IS NOT NULL")...) + `
		GROUP BY Assunto
		ORDER BY Count DESC, Assunto
		LIMIT ` + q.Var(topSubjects)

	report := &ComplaintReport{TopSubjects: []SubjectCount{}}
	if err := r.Select(ctx, "complaint_patterns", &report.TopSubjects, q, text); err != nil {
		return nil, err
	}

	cities := `SELECT DISTINCT Cidade FROM Clientes
		WHERE Cidade IS NOT NULL AND TRIM(Cidade) != ''
			AND Raz_o_social IN (
				SELECT Cliente FROM OS WHERE Cliente IS NOT NULL
				UNION
				SELECT Cliente FROM Atendimentos WHERE Cliente IS NOT NULL
			)
		ORDER BY Cidade`
	var err error
	if report.Cities, err = r.Strings(ctx, "complaint_patterns.cities", database.NewQuery(), cities); err != nil {
		return nil, err
	}
	return report, nil
}

// PredictiveChurn lists contracts that both paid an invoice seriously late and
// opened a ticket.
func (r *Repository) PredictiveChurn(ctx context.Context, f PredictiveFilter) (*PredictiveReport, error) {
	ctx, span := tracing.StartSpan(ctx, "BehaviorRepository.PredictiveChurn")
	defer span.End()

	q := database.NewQuery()
	var preds []string
	if f.StatusContrato != "" {
		preds = append(preds, "C.Status_contrato = "+q.Var(f.StatusContrato))
	}
	if f.StatusAcesso != "" {
		preds = append(preds, "C.Status_acesso = "+q.Var(f.StatusAcesso))
	}

	base := `WITH ` + repositories.FirstLatePaymentCTE(q.Var(PredictiveDelay)) + `,
		` + repositories.ComplaintsCTE() + `,
		` + repositories.LastConnectionCTE()
	from := `FROM Contratos C
		JOIN FirstLatePayment FLP ON ` + filters.ContractKeySQL("C.ID") + ` = FLP.Contract_Key
		JOIN CustomerComplaints CC ON C.Cliente = CC.Cliente
		LEFT JOIN LastConnection LC ON ` + filters.ContractKeySQL("C.ID") + ` = LC.Contract_Key` + database.Where(preds...)

	report := &PredictiveReport{Data: []AtRisk{}}
	var err error
	if report.TotalRows, err = r.Count(ctx, "predictive_churn.count", q, base+" SELECT COUNT(C.ID) "+from); err != nil {
		return nil, err
	}

	text := base + `
		SELECT C.Cliente AS Razao_Social, TRIM(C.ID) AS Contrato_ID, C.Status_contrato, C.Status_acesso, C.Data_ativa_o,
			'Sim' AS Primeira_Inadimplencia_Vencimento,
			'Sim' AS Possui_Reclamacoes,
			LC.Ultima_Conexao
		` + from + `
		ORDER BY Razao_Social, Contrato_ID
		LIMIT ` + q.Var(f.Page.Limit) + ` OFFSET ` + q.Var(f.Page.Offset)
	if err := r.Select(ctx, "predictive_churn", &report.Data, q, text); err != nil {
		return nil, err
	}
	return report, nil
}
