package tech

import (
	"context"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/internal/testdb"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
)

func newRepo(t *testing.T) (*Repository, *testdb.DB) {
	t.Helper()
	db := testdb.New(t)
	return NewRepository(db.DB, db.Schema, db.Logger), db
}

func TestFoldModelSQL(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	cases := map[string]string{
		"ONU AN5506-01-A1": "ONU AN5506-01 (Agrupado)",
		"ONU HG6143D REV2": "ONU HG6143D (Agrupado)",
		"ROTEADOR TP-LINK": "ROTEADOR TP-LINK",
		"ONU AN5506-02-B":  "ONU AN5506-02 (Agrupado)",
	}
	for in, want := range cases {
		var got string
		require.NoError(t, db.Q(ctx).GetContext(ctx, &got, "SELECT "+FoldModelSQL("d")+" FROM (SELECT ? AS d)", in))
		assert.Equal(t, want, got, in)
	}
}

func TestCancellationsByEquipment(t *testing.T) {
	repo, db := newRepo(t)
	db.AddContract(t, testdb.Contract{ID: "1", Cliente: "A", Cidade: "Dom Pedro", Activated: "2023-01-01",
		Cancelled: "2024-01-01", Status: "Inativo", Access: "Desativado"})
	db.AddContract(t, testdb.Contract{ID: "2", Cliente: "B", Cidade: "Dom Pedro", Activated: "2023-06-01",
		Cancelled: "2024-02-01", Status: "Inativo", Access: "Desativado"})
	db.AddContract(t, testdb.Contract{ID: "3", Cliente: "C", Cidade: "Dom Pedro", Activated: "2023-01-01", Status: "Ativo", Access: "Ativo"})
	db.Exec(t, `INSERT INTO Equipamento (ID_contrato, Descricao_produto, Status_comodato, Data) VALUES
		(' 1 ', 'ONU HG6143D OLD', 'Baixa', '2023-06-01'),
		('1.0', 'ONU AN5506-01-A1', 'Baixa', '2024-01-02'),
		('2', 'ONU AN5506-01-XYZ', 'Baixa', '2024-02-02'),
		('3', 'ONU AN5506-01-A1', 'Baixa', '2024-02-02'),
		('2', 'ROTEADOR TP-LINK', 'Emprestado', '2023-06-01')`)

	report, err := repo.CancellationsByEquipment(context.Background(), EquipmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.TotalEquipments)
	assert.Equal(t, []EquipmentCount{
		{Descricao: "ONU AN5506-01 (Agrupado)", Count: 2},
		{Descricao: AssociatedRouter, Count: 2},
	}, report.Data)
	assert.Equal(t, []string{"Dom Pedro"}, report.Cities)

	short, err := repo.CancellationsByEquipment(context.Background(), EquipmentFilter{Relevance: filters.NewRelevance("0-9")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), short.TotalEquipments)
}

func TestCancellationsByEquipment_RequiresTable(t *testing.T) {
	repo, db := newRepo(t)
	db.Exec(t, "DROP TABLE Equipamento")
	db.Schema.Invalidate()

	_, err := repo.CancellationsByEquipment(context.Background(), EquipmentFilter{})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))
}

func TestEquipmentByOLT(t *testing.T) {
	repo, db := newRepo(t)
	db.AddContract(t, testdb.Contract{ID: "1", Cliente: "A", Cidade: "Dom Pedro", Activated: "2023-01-01", Status: "Ativo", Access: "Ativo"})
	db.AddContract(t, testdb.Contract{ID: "2", Cliente: "B", Cidade: "Presidente Dutra", Activated: "2023-01-01", Status: "Ativo", Access: "Ativo"})
	db.Exec(t, `INSERT INTO Logins (Login, ID_contrato, Transmissor) VALUES ('a', '1.0', 'OLT-01'), ('b', '2', '')`)
	db.Exec(t, `INSERT INTO Equipamento (ID_contrato, Descricao_produto, Status_comodato) VALUES
		('1', 'ONU AN5506-01-A1', 'Emprestado'),
		('1', 'ROTEADOR', 'Devolvido'),
		('2', 'ONU AN5506-01-A1', 'Emprestado')`)

	report, err := repo.EquipmentByOLT(context.Background(), OLTFilter{})
	require.NoError(t, err)
	assert.Equal(t, []EquipmentCount{{Descricao: "ONU AN5506-01-A1", Count: 1}}, report.Data)
	assert.Equal(t, []string{"Dom Pedro", "Presidente Dutra"}, report.Cities)
	assert.Equal(t, []string{"OLT-01"}, report.Transmitters)

	other, err := repo.EquipmentByOLT(context.Background(), OLTFilter{Transmitter: "OLT-02"})
	require.NoError(t, err)
	assert.Empty(t, other.Data)
}

func TestDailyEvolutionByCity(t *testing.T) {
	repo, db := newRepo(t)
	db.AddContract(t, testdb.Contract{ID: "1", Cliente: "A", Cidade: "Dom Pedro", Activated: "2024-01-10", Status: "Ativo", Access: "Ativo"})
	neg := testdb.Contract{ID: "2", Cliente: "B", Cidade: "Dom Pedro", Activated: "2024-01-10",
		Cancelled: "2024-01-20", Status: "Negativado", Access: "Desativado"}
	db.AddContract(t, neg)
	db.AddNegativado(t, neg)

	report, err := repo.DailyEvolutionByCity(context.Background(), filters.DateRange{})
	require.NoError(t, err)
	require.Contains(t, report.Data, "Dom Pedro")
	city := report.Data["Dom Pedro"]
	assert.Equal(t, []DailyPoint{
		{Date: "2024-01-10", Ativacoes: 2},
		{Date: "2024-01-20", Churn: 1},
	}, city.DailyData)
	assert.Equal(t, DailyTotals{Ativacoes: 2, Churn: 1}, city.Totals)

	ranged, err := repo.DailyEvolutionByCity(context.Background(), filters.DateRange{Start: "2024-01-15"})
	require.NoError(t, err)
	assert.Len(t, ranged.Data["Dom Pedro"].DailyData, 1)
}
