package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/internal/testdb"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
)

func seed(t *testing.T) (*Repository, *testdb.DB) {
	t.Helper()
	db := testdb.New(t)
	db.Exec(t, "INSERT INTO Vendedores (ID, Vendedor) VALUES (1, 'JOÃO'), (2, 'MARIA')")

	db.AddContract(t, testdb.Contract{ID: "1", Cliente: "A", Cidade: "Dom Pedro", Activated: "2023-01-10", Status: "Ativo", Access: "Ativo", Seller: 1})
	db.AddContract(t, testdb.Contract{ID: "2", Cliente: "B", Cidade: "Dom Pedro", Activated: "2023-02-10",
		Cancelled: "2023-12-01", Status: "Inativo", Access: "Desativado", Seller: 1})
	neg := testdb.Contract{ID: "3", Cliente: "C", Cidade: "Dom Pedro", Activated: "2023-03-10",
		Cancelled: "2024-01-15", Status: "Negativado", Access: "Desativado", Seller: 2}
	db.AddContract(t, neg)
	neg.ID = "3.0"
	db.AddNegativado(t, neg)
	db.AddNegativado(t, testdb.Contract{ID: "4", Cliente: "D", Cidade: "Jacareí", Activated: "2023-04-10",
		Cancelled: "2024-02-01", Status: "Negativado", Access: "Desativado", Seller: 2})
	db.AddContract(t, testdb.Contract{ID: "5", Cliente: "E", Cidade: "Presidente Dutra", Activated: "2023-05-10",
		Cancelled: "2024-03-01", Status: "Inativo", Access: "Desativado", Seller: 9})

	return NewRepository(db.DB, db.Schema, db.Logger), db
}

func TestSellers(t *testing.T) {
	repo, _ := seed(t)

	report, err := repo.Sellers(context.Background(), filters.DateRange{})
	require.NoError(t, err)
	require.Len(t, report.Data, 3)
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, int64(2), report.TotalCancelados)
	assert.Equal(t, int64(1), report.TotalNegativados, "duplicate and out-of-region negativações are dropped")
	assert.Equal(t, int64(3), report.GrandTotal)
	assert.Equal(t, []string{"2024", "2023"}, report.Years)

	names := map[string]SellerChurn{}
	for _, row := range report.Data {
		names[row.VendedorNome] = row
	}
	assert.Equal(t, int64(1), names["JOÃO"].Cancelados)
	assert.Equal(t, int64(1), names["MARIA"].Negativados)
	assert.Equal(t, int64(9), names[UnknownSeller].VendedorID)

	ranged, err := repo.Sellers(context.Background(), filters.DateRange{Start: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ranged.GrandTotal)
}

func TestActivationsBySeller(t *testing.T) {
	repo, _ := seed(t)

	report, err := repo.ActivationsBySeller(context.Background(), ActivationFilter{})
	require.NoError(t, err)
	require.Len(t, report.Data, 3)

	joao := report.Data[0]
	assert.Equal(t, "JOÃO", joao.VendedorNome)
	assert.Equal(t, int64(2), joao.TotalAtivacoes)
	assert.Equal(t, int64(1), joao.PermanecemAtivos)
	assert.Equal(t, int64(1), joao.Cancelados)

	maria := report.Data[1]
	assert.Equal(t, "MARIA", maria.VendedorNome)
	assert.Equal(t, int64(2), maria.TotalAtivacoes)
	assert.Equal(t, int64(1), maria.Negativados)
	assert.Equal(t, int64(1), maria.TotalChurn)

	assert.Equal(t, ActivationTotals{Ativacoes: 5, PermanecemAtivos: 1, Cancelados: 2, Negativados: 1, Churn: 3}, report.Totals)
	assert.Equal(t, []string{"Dom Pedro", "Jacareí", "Presidente Dutra"}, report.Cities)
	assert.Equal(t, []string{"2023"}, report.Years)
}

func TestActivationsBySeller_CityAndRange(t *testing.T) {
	repo, db := seed(t)

	report, err := repo.ActivationsBySeller(context.Background(), ActivationFilter{
		City:  "Dom Pedro",
		Range: filters.DateRange{Start: "2023-02-01", End: "2023-12-31"},
	})
	require.NoError(t, err)
	require.Len(t, report.Data, 2)
	assert.Equal(t, int64(2), report.Totals.Ativacoes)

	db.DropNegativacao(t)
	fallback, err := repo.ActivationsBySeller(context.Background(), ActivationFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), fallback.Totals.Ativacoes)
}
