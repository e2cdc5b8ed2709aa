package summary

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/internal/testdb"
)

func seed(t *testing.T) (*Repository, *testdb.DB) {
	t.Helper()
	db := testdb.New(t)
	db.AddContract(t, testdb.Contract{ID: "1", Cliente: "ANA", Cidade: "Dom Pedro", Activated: "2023-01-01", Status: "Ativo", Access: "Ativo", DueDay: 10})
	db.AddContract(t, testdb.Contract{ID: "2", Cliente: "BRUNO", Cidade: "Dom Pedro", Activated: "2024-02-01", Status: "Ativo", Access: "Bloqueado", DueDay: 20})
	db.AddContract(t, testdb.Contract{ID: "3", Cliente: "CARLA", Cidade: "Presidente Dutra", Activated: "2024-03-01",
		Cancelled: "2024-05-01", Status: "Inativo", Access: "Desativado", DueDay: 10})
	return NewRepository(db.DB, db.Schema, db.Logger), db
}

func TestTables(t *testing.T) {
	repo, _ := seed(t)

	tables, err := repo.Tables(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tables, "Contratos")
	assert.Contains(t, tables, "Recebimentos_Diarios")
	assert.NotContains(t, tables, "Users")
	assert.NotContains(t, tables, "Settings")
	assert.NotContains(t, tables, "schema_migrations")
}

func TestTableData(t *testing.T) {
	repo, _ := seed(t)
	ctx := context.Background()

	page, err := repo.TableData(ctx, "contratos", repositories.NewPage(2, 1, DefaultLimit))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalRows)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "BRUNO", page.Data[0]["Cliente"])

	_, err = repo.TableData(ctx, "Nada", repositories.NewPage(0, 0, DefaultLimit))
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

	_, err = repo.TableData(ctx, "Users", repositories.NewPage(0, 0, DefaultLimit))
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestTableSummary_Contratos(t *testing.T) {
	repo, _ := seed(t)
	ctx := context.Background()

	all, err := repo.TableSummary(ctx, "Contratos", Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "2023"}, all["years"])
	assert.Equal(t, []string{"Dom Pedro", "Presidente Dutra"}, all["cities"])
	byStatus := all["by_status"].([]map[string]any)
	require.Len(t, byStatus, 2)
	assert.Equal(t, "Ativo", byStatus[0]["Status_contrato"])
	assert.Equal(t, int64(2), byStatus[0]["Count"])
	assert.Len(t, all["by_status_by_city"], 2)

	city, err := repo.TableSummary(ctx, "Contratos", Filter{City: "Dom Pedro", Year: "2024"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "2023"}, city["years"])
	byAccess := city["by_access_status"].([]map[string]any)
	require.Len(t, byAccess, 1)
	assert.Equal(t, "Bloqueado", byAccess[0]["Status_acesso"])
	assert.Empty(t, city["by_status_by_city"])

	march, err := repo.TableSummary(ctx, "Contratos", Filter{Year: "2024", Month: "3"})
	require.NoError(t, err)
	assert.Len(t, march["by_status"], 1)

	_, err = repo.TableSummary(ctx, "Contratos", Filter{Month: "13"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestTableSummary_Fallbacks(t *testing.T) {
	repo, db := seed(t)
	db.Exec(t, "INSERT INTO Clientes (Raz_o_social, Cidade, Bairro, Data_Cadastro) VALUES ('ANA', 'Dom Pedro', 'Centro', '2023-05-01'), ('BRUNO', 'Dom Pedro', 'Vila', '2024-05-01')")
	db.Exec(t, "INSERT INTO Vendedores (ID, Vendedor) VALUES (1, 'JOÃO'), (2, 'MARIA')")
	ctx := context.Background()

	clients, err := repo.TableSummary(ctx, "Clientes", Filter{Year: "2024"})
	require.NoError(t, err)
	byCity := clients["by_city"].([]map[string]any)
	require.Len(t, byCity, 1)
	assert.Equal(t, int64(1), byCity[0]["Count"])
	assert.Len(t, clients["by_neighborhood"], 1)

	sellers, err := repo.TableSummary(ctx, "Vendedores", Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sellers["total_rows"])
	assert.Equal(t, noSummaryMessage, sellers["message"])
	assert.NotContains(t, sellers, "years")
}

func TestDueDayRevenue(t *testing.T) {
	repo, db := seed(t)
	repo.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	db.AddInvoice(t, testdb.Invoice{ID: 1, ContractID: "1", Due: "2024-01-10", Value: 100, Status: "Recebido"})
	db.AddInvoice(t, testdb.Invoice{ID: 2, ContractID: "3.0", Due: "2024-01-10", Value: 50, Status: "Recebido"})
	db.AddInvoice(t, testdb.Invoice{ID: 3, ContractID: "2", Due: "2024-03-20", Value: 80, Status: "A receber"})
	db.AddInvoice(t, testdb.Invoice{ID: 4, ContractID: "1", Due: "2023-12-10", Value: 100, Status: "Recebido"})
	db.AddInvoice(t, testdb.Invoice{ID: 5, ContractID: "1", Due: "2024-04-10", Value: 100, Status: "A receber"})

	rows, err := repo.DueDayRevenue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []DueDayTotal{
		{DueDay: 10, Month: "2024-01", TotalValue: 150},
		{DueDay: 20, Month: "2024-03", TotalValue: 80},
	}, rows)
}

func TestContractStatuses(t *testing.T) {
	repo, db := seed(t)
	db.AddContract(t, testdb.Contract{ID: "9", Cliente: "X", Status: "", Access: ""})

	statuses, err := repo.ContractStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ativo", "Inativo"}, statuses.StatusContrato)
	assert.Equal(t, []string{"Ativo", "Bloqueado", "Desativado"}, statuses.StatusAcesso)
}
