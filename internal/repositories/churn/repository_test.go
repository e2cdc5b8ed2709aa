package churn

import (
	"context"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/internal/testdb"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
)

func newRepo(t *testing.T) (*Repository, *testdb.DB) {
	t.Helper()
	db := testdb.New(t)
	return NewRepository(db.DB, db.Schema, db.Logger), db
}

func seedCancellations(t *testing.T, db *testdb.DB) {
	db.AddContract(t, testdb.Contract{ID: "1", Cliente: "ANA", Cidade: "Presidente Dutra", Bairro: "Centro",
		Activated: "2023-01-01", Cancelled: "2024-01-01", Status: "Inativo", Access: "Desativado", Reason: "MUDANÇA"})
	db.AddContract(t, testdb.Contract{ID: "2", Cliente: "BRUNO", Cidade: "Presidente Dutra", Bairro: "Centro",
		Activated: "2023-06-01", Cancelled: "2024-02-01", Status: "Inativo", Access: "Desativado", Reason: "PREÇO"})
	db.AddContract(t, testdb.Contract{ID: "3", Cliente: "CARLA", Cidade: "Dom Pedro", Bairro: "Vila",
		Activated: "2022-01-01", Cancelled: "2024-03-01", Status: "Inativo", Access: "Desativado"})
	db.AddContract(t, testdb.Contract{ID: "4", Cliente: "DAVI", Cidade: "Dom Pedro",
		Activated: "2022-01-01", Status: "Ativo", Access: "Ativo"})

	db.AddInvoice(t, testdb.Invoice{ID: 1, ContractID: "1.0", Due: "2023-02-10", Paid: "2023-02-20", Value: 100, Received: 100, Status: "Recebido"})
	db.AddInvoice(t, testdb.Invoice{ID: 2, ContractID: "2", Due: "2023-07-10", Paid: "2023-07-05", Value: 100, Received: 100, Status: "Recebido"})
	db.Exec(t, "INSERT INTO OS (ID, Cliente, Assunto) VALUES (1, 'ANA', 'VISITA TECNICA')")
}

func TestCancellations_DrillNarrowsTableNotCharts(t *testing.T) {
	repo, db := newRepo(t)
	seedCancellations(t, db)
	ctx := context.Background()

	all, err := repo.Cancellations(ctx, ListFilter{Page: repositories.NewPage(0, 0, 50)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalRows)
	require.Len(t, all.Data, 3)
	assert.Equal(t, "ANA", all.Data[0].Cliente.String)
	assert.Equal(t, "Sim", all.Data[0].TeveContatoRelevante)
	assert.Equal(t, int64(1), all.Data[0].AtrasosPagos, "the 1.0 invoice id joins contract 1")
	require.NotNil(t, all.Data[0].PermanenciaMeses)
	assert.Equal(t, int64(12), *all.Data[0].PermanenciaMeses)
	assert.Equal(t, filters.NotInformed, all.Data[2].MotivoCancelamento)

	drilled, err := repo.Cancellations(ctx, ListFilter{
		DrillColumn: DrillMotivo,
		DrillValue:  " PREÇO ",
		Page:        repositories.NewPage(0, 0, 50),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), drilled.TotalRows)
	require.Len(t, drilled.Data, 1)
	assert.Equal(t, "BRUNO", drilled.Data[0].Cliente.String)
	assert.Equal(t, all.Charts, drilled.Charts)

	var chartTotal int64
	for _, s := range drilled.Charts.Motivo {
		chartTotal += s.Count
	}
	assert.Equal(t, int64(3), chartTotal)
}

func TestCancellations_TotalRowsIgnoresPagination(t *testing.T) {
	repo, db := newRepo(t)
	seedCancellations(t, db)

	report, err := repo.Cancellations(context.Background(), ListFilter{Page: repositories.Page{Limit: 1, Offset: 1}, SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.TotalRows)
	require.Len(t, report.Data, 1)
	assert.Equal(t, "ANA", report.Data[0].Cliente.String)
}

func TestCancellations_FinanceDrill(t *testing.T) {
	repo, db := newRepo(t)
	seedCancellations(t, db)

	report, err := repo.Cancellations(context.Background(), ListFilter{
		DrillColumn: DrillFinanceiro,
		DrillValue:  "Sem Histórico",
		Page:        repositories.NewPage(0, 0, 50),
	})
	require.NoError(t, err)
	require.Len(t, report.Data, 1)
	assert.Equal(t, "CARLA", report.Data[0].Cliente.String)
}

func TestCancellations_WithoutNegativacaoTable(t *testing.T) {
	repo, db := newRepo(t)
	seedCancellations(t, db)
	db.DropNegativacao(t)

	report, err := repo.Cancellations(context.Background(), ListFilter{Page: repositories.NewPage(0, 0, 50)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.TotalRows)
}

func TestNegativacao_RequiresTable(t *testing.T) {
	repo, db := newRepo(t)
	db.DropNegativacao(t)

	_, err := repo.Negativacao(context.Background(), ListFilter{Page: repositories.NewPage(0, 0, 50)})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))
}

func TestNegativacao_DeduplicatesAcrossSources(t *testing.T) {
	repo, db := newRepo(t)
	neg := testdb.Contract{ID: "10", Cliente: "EVA", Cidade: "Presidente Dutra", Activated: "2023-01-01",
		Cancelled: "2024-01-01", Status: "Negativado", Access: "Desativado"}
	db.AddContract(t, neg)
	neg.ID = "10.0"
	db.AddNegativado(t, neg)
	db.AddNegativado(t, testdb.Contract{ID: "11", Cliente: "FABIO", Cidade: "Jacareí", Activated: "2023-01-01",
		Cancelled: "2024-01-01", Status: "Negativado", Access: "Desativado"})

	report, err := repo.Negativacao(context.Background(), ListFilter{Page: repositories.NewPage(0, 0, 50)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalRows)
	require.Len(t, report.Data, 1)
	assert.Equal(t, "EVA", report.Data[0].Cliente.String)
}

func TestByCity(t *testing.T) {
	repo, db := newRepo(t)
	seedCancellations(t, db)
	neg := testdb.Contract{ID: "20", Cliente: "GIL", Cidade: "Dom Pedro", Activated: "2023-01-01",
		Cancelled: "2024-05-01", Status: "Negativado", Access: "Desativado"}
	db.AddContract(t, neg)
	db.AddNegativado(t, neg)

	report, err := repo.ByCity(context.Background(), AreaFilter{})
	require.NoError(t, err)
	require.Len(t, report.Data, 2)
	assert.Equal(t, int64(2), report.TotalPresDutra)
	assert.Equal(t, int64(2), report.TotalDomPedro)
	assert.Equal(t, int64(3), report.TotalCancelados)
	assert.Equal(t, int64(1), report.TotalNegativados)
	assert.Equal(t, int64(4), report.GrandTotal)
	assert.Equal(t, []string{"2024"}, report.Years)

	filtered, err := repo.ByCity(context.Background(), AreaFilter{Relevance: filters.NewRelevance("0-12")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), filtered.GrandTotal)
	assert.Equal(t, int64(2), filtered.TotalPresDutra)
}

func TestByNeighborhood(t *testing.T) {
	repo, db := newRepo(t)
	seedCancellations(t, db)

	empty, err := repo.ByNeighborhood(context.Background(), AreaFilter{})
	require.NoError(t, err)
	assert.Empty(t, empty.Data)
	assert.Equal(t, []string{"Dom Pedro", "Presidente Dutra"}, empty.Cities)

	report, err := repo.ByNeighborhood(context.Background(), AreaFilter{City: "Presidente Dutra"})
	require.NoError(t, err)
	require.Len(t, report.Data, 1)
	assert.Equal(t, "Centro", report.Data[0].Bairro)
	assert.Equal(t, int64(2), report.GrandTotal)
}

func TestCohort_ChurnedContractDropsOut(t *testing.T) {
	repo, db := newRepo(t)
	db.AddContract(t, testdb.Contract{ID: "12345", Cliente: "HELENA", Cidade: "Presidente Dutra",
		Activated: "2024-01-15", Cancelled: "2024-03-10", Status: "Inativo", Access: "Desativado"})
	db.AddInvoice(t, testdb.Invoice{ID: 1, ContractID: "12345.0", Due: "2024-01-31", Value: 100, Status: "Recebido"})
	db.AddInvoice(t, testdb.Invoice{ID: 2, ContractID: " 12345 ", Due: "2024-02-29", Value: 100, Status: "Recebido"})
	db.AddInvoice(t, testdb.Invoice{ID: 3, ContractID: "12345", Due: "2024-03-31", Value: 100, Status: "Cancelado"})

	report, err := repo.Cohort(context.Background(), CohortFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, report.Labels)
	require.Len(t, report.Datasets, 1)
	assert.Equal(t, "2024-01", report.Datasets[0].Label)
	assert.Equal(t, []int64{1, 1, 0}, report.Datasets[0].Data)
	assert.Equal(t, "origin", report.Datasets[0].Fill)
}

func TestCohort_Empty(t *testing.T) {
	repo, _ := newRepo(t)

	report, err := repo.Cohort(context.Background(), CohortFilter{City: "Nowhere"})
	require.NoError(t, err)
	assert.Empty(t, report.Labels)
	assert.Empty(t, report.Datasets)
}

func TestBuildCohort_PadsLaterCohorts(t *testing.T) {
	labels, datasets := buildCohort([]cohortCell{
		{CohortMonth: "2024-01", InvoiceMonth: "2024-01", ActiveClients: 3},
		{CohortMonth: "2024-01", InvoiceMonth: "2024-03", ActiveClients: 2},
		{CohortMonth: "2024-02", InvoiceMonth: "2024-02", ActiveClients: 5},
	})
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, labels)
	assert.Equal(t, []int64{3, 0, 2}, datasets[0].Data)
	assert.Equal(t, []int64{0, 5, 0}, datasets[1].Data)
}

func TestActiveClientsEvolution(t *testing.T) {
	repo, db := newRepo(t)
	db.AddContract(t, testdb.Contract{ID: "1", Cliente: "A", Cidade: "Presidente Dutra", Activated: "2024-01-10", Status: "Ativo", Access: "Ativo"})
	db.AddContract(t, testdb.Contract{ID: "2", Cliente: "B", Cidade: "Presidente Dutra", Activated: "2024-01-20",
		Cancelled: "2024-02-15", Status: "Inativo", Access: "Desativado"})
	db.AddContract(t, testdb.Contract{ID: "3", Cliente: "C", Cidade: "Caçapava", Activated: "2024-01-01", Status: "Ativo", Access: "Ativo"})

	_, err := repo.ActiveClientsEvolution(context.Background(), EvolutionFilter{Start: "2024-01-01"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))

	report, err := repo.ActiveClientsEvolution(context.Background(), EvolutionFilter{Start: "2024-01-05", End: "2024-03-01"})
	require.NoError(t, err)
	require.Len(t, report.Data, 3)
	assert.Equal(t, MonthCount{Month: "2024-01", Count: 2}, report.Data[0])
	assert.Equal(t, MonthCount{Month: "2024-02", Count: 1}, report.Data[1])
	assert.Equal(t, MonthCount{Month: "2024-03", Count: 1}, report.Data[2])
	assert.Equal(t, []string{"Presidente Dutra"}, report.Cities)

	active, err := repo.ActiveClientsEvolution(context.Background(), EvolutionFilter{
		Start: "2024-01-01", End: "2024-01-31", StatusContrato: []string{"Inativo"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), active.Data[0].Count)
}

func TestCancellations_KeepsNonNumericContractsApart(t *testing.T) {
	repo, db := newRepo(t)
	db.AddContract(t, testdb.Contract{ID: "A1", Cliente: "HELENA", Cidade: "Dom Pedro", Activated: "2023-01-01",
		Cancelled: "2024-01-01", Status: "Inativo", Access: "Desativado"})
	db.AddContract(t, testdb.Contract{ID: "B2", Cliente: "IGOR", Cidade: "Dom Pedro", Activated: "2023-01-01",
		Cancelled: "2024-02-01", Status: "Inativo", Access: "Desativado"})

	report, err := repo.Cancellations(context.Background(), ListFilter{Page: repositories.NewPage(0, 0, 50)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.TotalRows)
	assert.Len(t, report.Data, 2)
}

func TestNegativacao_ExcludesPaddedOutOfRegionCity(t *testing.T) {
	repo, db := newRepo(t)
	db.AddNegativado(t, testdb.Contract{ID: "30", Cliente: "JULIA", Cidade: " Jacareí ", Activated: "2023-01-01",
		Cancelled: "2024-01-01", Status: "Negativado", Access: "Desativado"})
	db.AddContract(t, testdb.Contract{ID: "31", Cliente: "KAIO", Cidade: "Caçapava ", Activated: "2023-01-01",
		Cancelled: "2024-01-01", Status: "Negativado", Access: "Desativado"})
	db.AddNegativado(t, testdb.Contract{ID: "32", Cliente: "LIA", Cidade: " Dom Pedro", Activated: "2023-01-01",
		Cancelled: "2024-01-01", Status: "Negativado", Access: "Desativado"})

	report, err := repo.Negativacao(context.Background(), ListFilter{Page: repositories.NewPage(0, 0, 50)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalRows)
	require.Len(t, report.Data, 1)
	assert.Equal(t, "LIA", report.Data[0].Cliente.String)
}
