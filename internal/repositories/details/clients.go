package details

import (
	"context"
	"strings"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/internal/repositories/tech"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

// SellerClients lists the cancelled or negativized contracts a seller activated,
// optionally narrowed to the year and month of the churn event.
func (r *Repository) SellerClients(ctx context.Context, f ClientFilter) (*Table[ChurnedClient], error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.SellerClients")
	defer span.End()

	if f.Seller == 0 || f.Type == "" {
		return nil, apperrors.BadRequest(msgSellerParams)
	}
	seller := f.Seller
	return r.churnedClients(ctx, "seller_clients", f, repositories.ChurnScope{Seller: &seller, Year: f.Year, Month: f.Month})
}

// CityClients lists the churned contracts of a city.
func (r *Repository) CityClients(ctx context.Context, f ClientFilter) (*Table[ChurnedClient], error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.CityClients")
	defer span.End()

	if f.City == "" || f.Type == "" {
		return nil, apperrors.BadRequest(msgCityParams)
	}
	return r.churnedClients(ctx, "city_clients", f, repositories.ChurnScope{City: f.City, Range: f.Range, Year: f.Year, Month: f.Month})
}

// NeighborhoodClients lists the churned contracts of a neighborhood.
func (r *Repository) NeighborhoodClients(ctx context.Context, f ClientFilter) (*Table[ChurnedClient], error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.NeighborhoodClients")
	defer span.End()

	if f.City == "" || f.Neighborhood == "" || f.Type == "" {
		return nil, apperrors.BadRequest(msgNeighborhoodParams)
	}
	return r.churnedClients(ctx, "neighborhood_clients", f, repositories.ChurnScope{
		City: f.City, Neighborhood: f.Neighborhood, Range: f.Range, Year: f.Year, Month: f.Month,
	})
}

func churnKind(t string) (string, error) {
	switch t {
	case TypeCancelado:
		return repositories.KindCancelled, nil
	case TypeNegativado:
		return repositories.KindNegativado, nil
	}
	return "", apperrors.BadRequest(msgClientType)
}

func (r *Repository) churnedClients(ctx context.Context, report string, f ClientFilter, scope repositories.ChurnScope) (*Table[ChurnedClient], error) {
	kind, err := churnKind(f.Type)
	if err != nil {
		return nil, err
	}
	if scope.Month, err = NormalizeMonth(scope.Month); err != nil {
		return nil, err
	}
	if scope.WithNegativacao, err = r.HasNegativacao(ctx); err != nil {
		return nil, err
	}
	scope.Kinds = []string{kind}

	q := database.NewQuery()
	from := "FROM (" + repositories.ChurnEventsSQL(q, scope) + ")" + database.Where(f.Relevance.Predicates(q, "permanencia_meses")...)

	out := &Table[ChurnedClient]{Data: []ChurnedClient{}}
	if out.TotalRows, err = r.Count(ctx, report+".count", q, "SELECT COUNT(*) "+from); err != nil {
		return nil, err
	}

	text := `SELECT Cliente, ID AS Contrato_ID, Data_ativa_o, end_date,
			CASE WHEN Data_ativa_o IS NOT NULL AND end_date IS NOT NULL
				THEN ` + filters.TenureDaysSQL("Data_ativa_o", "end_date") + ` END AS permanencia_dias,
			permanencia_meses
		` + from + `
		ORDER BY end_date DESC, Contrato_ID
		LIMIT ` + q.Var(f.Page.Limit) + ` OFFSET ` + q.Var(f.Page.Offset)
	if err := r.Select(ctx, report, &out.Data, q, text); err != nil {
		return nil, err
	}
	return out, nil
}

// EquipmentPattern turns a ranked equipment label into a LIKE pattern: folded
// model labels match every variant sharing the prefix.
func EquipmentPattern(name string) string {
	if base, ok := strings.CutSuffix(name, tech.GroupedSuffix); ok {
		return base + "%"
	}
	return name
}

// EquipmentClients lists churned contracts that returned equipment matching the
// ranking label, negativized first.
func (r *Repository) EquipmentClients(ctx context.Context, f EquipmentFilter) (*Table[EquipmentClient], error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.EquipmentClients")
	defer span.End()

	if f.Name == "" {
		return nil, apperrors.BadRequest(msgEquipmentName)
	}
	withNeg, err := r.HasNegativacao(ctx)
	if err != nil {
		return nil, err
	}

	q := database.NewQuery()
	scope := repositories.ChurnScope{Range: f.Range, City: f.City, WithNegativacao: withNeg}
	from := `FROM (` + repositories.ChurnEventsSQL(q, scope) + `) E
		JOIN (
			SELECT DISTINCT ` + filters.ContractKeySQL("ID_contrato") + ` AS Contract_Key
			FROM Equipamento
			WHERE Descricao_produto LIKE ` + q.Var(EquipmentPattern(f.Name)) + ` AND Status_comodato = 'Baixa'
		) R ON E.Contract_Key = R.Contract_Key` + database.Where(f.Relevance.Predicates(q, "E.permanencia_meses")...)

	out := &Table[EquipmentClient]{Data: []EquipmentClient{}}
	if out.TotalRows, err = r.Count(ctx, "equipment_clients.count", q, "SELECT COUNT(*) "+from); err != nil {
		return nil, err
	}

	text := `SELECT E.Cliente, E.ID AS Contrato_ID,
			CASE WHEN E.Tipo = '` + repositories.KindCancelled + `' THEN E.end_date END AS Data_cancelamento,
			CASE WHEN E.Tipo = '` + repositories.KindNegativado + `' THEN E.end_date END AS Data_negativacao,
			E.Cidade, E.permanencia_meses
		` + from + `
		ORDER BY Data_negativacao DESC NULLS LAST, Data_cancelamento DESC NULLS LAST, Contrato_ID
		LIMIT ` + q.Var(f.Page.Limit) + ` OFFSET ` + q.Var(f.Page.Offset)
	if err := r.Select(ctx, "equipment_clients", &out.Data, q, text); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveEquipmentClients lists contracts with a transmitter login that hold the
// named loaned equipment.
func (r *Repository) ActiveEquipmentClients(ctx context.Context, f EquipmentFilter) (*Table[ActiveClient], error) {
	ctx, span := tracing.StartSpan(ctx, "DetailsRepository.ActiveEquipmentClients")
	defer span.End()

	if f.Name == "" {
		return nil, apperrors.BadRequest(msgEquipmentName)
	}

	q := database.NewQuery()
	preds := []string{
		"E.Status_comodato = 'Emprestado'",
		"L.Transmissor IS NOT NULL",
		"TRIM(L.Transmissor) != ''",
		"E.Descricao_produto = " + q.Var(f.Name),
	}
	if f.City != "" {
		preds = append(preds, "TRIM(C.Cidade) = "+q.Var(f.City))
	}
	from := `FROM Logins L
		JOIN Contratos C ON ` + filters.ContractKeySQL("L.ID_contrato") + ` = ` + filters.ContractKeySQL("C.ID") + `
		JOIN Equipamento E ON ` + filters.ContractKeySQL("C.ID") + ` = ` + filters.ContractKeySQL("E.ID_contrato") + database.Where(preds...)

	out := &Table[ActiveClient]{Data: []ActiveClient{}}
	var err error
	if out.TotalRows, err = r.Count(ctx, "active_equipment_clients.count", q,
		"SELECT COUNT(DISTINCT "+filters.ContractKeySQL("C.ID")+") "+from); err != nil {
		return nil, err
	}

	text := `SELECT DISTINCT C.Cliente, TRIM(C.ID) AS Contrato_ID, C.Data_ativa_o, C.Cidade, C.Status_contrato
		` + from + `
		ORDER BY C.Cliente, Contrato_ID
		LIMIT ` + q.Var(f.Page.Limit) + ` OFFSET ` + q.Var(f.Page.Offset)
	if err := r.Select(ctx, "active_equipment_clients", &out.Data, q, text); err != nil {
		return nil, err
	}
	return out, nil
}
