package details

import (
	"context"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

// SellerActivations lists a seller's activations behind one cell of the
// activations-by-seller table: every activation (ativado), those still active
// (ativo_permanece), cancelled or negativized.
func (r *Repository) SellerActivations(ctx context.Context, f ActivationFilter) (*Table[ActivationClient], error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.SellerActivations")
	defer span.End()

	if f.Seller == 0 || f.Type == "" {
		return nil, apperrors.BadRequest(msgSellerParams)
	}

	var outcome string
	churned := false
	switch f.Type {
	case TypeAtivado:
	case TypeAtivoPermanece:
		outcome = "Status_contrato = 'Ativo'"
	case TypeCancelado:
		outcome, churned = "Status_contrato = 'Inativo'", true
	case TypeNegativado:
		outcome, churned = "Status_contrato = 'Negativado' AND "+filters.OutOfRegionSQL("TRIM(COALESCE(Cidade, ''))"), true
	default:
		return nil, apperrors.BadRequest(msgClientType)
	}

	month, err := NormalizeMonth(f.Month)
	if err != nil {
		return nil, err
	}
	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	q := database.NewQuery()
	preds := []string{"Vendedor = " + q.Var(f.Seller)}
	if f.City != "" {
		preds = append(preds, "TRIM(Cidade) = "+q.Var(f.City))
	}
	if f.Year != "" {
		preds = append(preds, "STRFTIME('%Y', Data_ativa_o) = "+q.Var(f.Year))
	}
	if month != "" {
		preds = append(preds, "STRFTIME('%m', Data_ativa_o) = "+q.Var(month))
	}
	where := database.Where(preds...)

	key := filters.ContractKeySQL("ID")
	sources := "SELECT " + key + " AS Contract_Key, TRIM(ID) AS ID, Cliente, Cidade, Data_ativa_o, Status_contrato, Data_cancelamento AS end_date, 1 AS Priority FROM Contratos" + where
	if withNeg {
		sources += " UNION ALL SELECT " + key + ", TRIM(ID), Cliente, Cidade, Data_ativa_o, 'Negativado', Data_negativa_o, 2 FROM " + repositories.Negativacao + where
	}

	var outcomes []string
	if outcome != "" {
		outcomes = append(outcomes, outcome)
	}
	from := `FROM (
			SELECT * FROM (
				SELECT *, ROW_NUMBER() OVER (PARTITION BY Contract_Key ORDER BY Priority) AS rn FROM (` + sources + `)
			) WHERE rn = 1
		)` + database.Where(outcomes...)

	out := &Table[ActivationClient]{Data: []ActivationClient{}}
	if out.TotalRows, err = r.Count(ctx, "seller_activations.count", q, "SELECT COUNT(*) "+from); err != nil {
		return nil, err
	}

	endDate, tenure := "NULL", "NULL"
	if churned {
		endDate = "DATE(end_date)"
		tenure = "CASE WHEN Data_ativa_o IS NOT NULL AND end_date IS NOT NULL THEN " + filters.TenureSQL("Data_ativa_o", "end_date") + " END"
	}
	text := `SELECT Cliente, ID AS Contrato_ID, DATE(Data_ativa_o) AS Data_ativa_o, Status_contrato,
			` + endDate + ` AS end_date, ` + tenure + ` AS permanencia_meses
		` + from + `
		ORDER BY Data_ativa_o DESC, Contrato_ID
		LIMIT ` + q.Var(f.Page.Limit) + ` OFFSET ` + q.Var(f.Page.Offset)
	if err := r.Select(ctx, "seller_activations", &out.Data, q, text); err != nil {
		return nil, err
	}
	return out, nil
}
