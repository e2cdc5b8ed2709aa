// Package testdb opens an in-memory snapshot database for repository and handler tests.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/db/migrations"
	"github.com/Tonooka01/sistema-analise/pkg/database"
)

// snapshotDDL mirrors the columns the offline loader produces. Every column is
// untyped TEXT/REAL so fixtures behave like the loader's output.
const snapshotDDL = `
CREATE TABLE Contratos (
    ID TEXT, Cliente TEXT, Cidade TEXT, Bairro TEXT, Data_ativa_o TEXT, Data_cancelamento TEXT,
    Status_contrato TEXT, Status_acesso TEXT, Vendedor INTEGER, Motivo_cancelamento TEXT,
    Obs_cancelamento TEXT, Dia_fixo_do_vencimento INTEGER, Data_cadastro_sistema TEXT
);
CREATE TABLE Contratos_Negativacao (
    ID TEXT, Cliente TEXT, Cidade TEXT, Bairro TEXT, Data_ativa_o TEXT, Data_negativa_o TEXT,
    Status_contrato TEXT, Status_acesso TEXT, Vendedor INTEGER, Motivo_cancelamento TEXT,
    Obs_cancelamento TEXT
);
CREATE TABLE Contas_a_Receber (
    ID INTEGER, ID_Contrato_Recorrente TEXT, Vencimento TEXT, Emissao TEXT, Data_pagamento TEXT,
    Data_cancelamento TEXT, Valor REAL, Valor_recebido REAL, Valor_cancelado REAL, Status TEXT,
    Parcela_R TEXT, Cidade TEXT
);
CREATE TABLE Atendimentos (
    ID INTEGER, Cliente TEXT, Assunto TEXT, Criado_em TEXT, ltima_altera_o TEXT,
    Novo_status TEXT, Descri_o TEXT
);
CREATE TABLE OS (
    ID INTEGER, Cliente TEXT, Assunto TEXT, Abertura TEXT, Fechamento TEXT, SLA TEXT,
    Mensagem TEXT, Status TEXT, Cidade TEXT
);
CREATE TABLE Equipamento (ID_contrato TEXT, Descricao_produto TEXT, Status_comodato TEXT, Data TEXT);
CREATE TABLE Logins (
    Login TEXT, ID_contrato TEXT, ltima_conex_o_final TEXT, Transmissor TEXT, IPV4 TEXT, Contrato TEXT
);
CREATE TABLE Clientes_Fibra (Login TEXT, Sinal_RX TEXT, Transmissor TEXT);
CREATE TABLE Clientes (Raz_o_social TEXT, Cidade TEXT, Bairro TEXT, Data_Cadastro TEXT);
CREATE TABLE Vendedores (ID INTEGER, Vendedor TEXT);
CREATE TABLE Recebimentos_Diarios (Data TEXT, Tipo TEXT, Valor REAL);
`

// DB bundles the handles a repository needs.
type DB struct {
	database.DB
	Schema *database.Schema
	Logger ectologger.Logger
}

// Logger discards everything.
func Logger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// New returns a migrated in-memory database with empty snapshot tables.
func New(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	logger := Logger()

	db, err := database.Open(ctx, database.Config{Path: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ms := database.NewMigrationService(logger, &database.MigrationConfig{}, migrations.FS)
	require.NoError(t, ms.Migrate(db))

	_, err = db.ExecContext(ctx, snapshotDDL)
	require.NoError(t, err)

	return &DB{
		DB:     db,
		Schema: database.NewSchema(db, logger, time.Minute),
		Logger: logger,
	}
}

// Exec runs a fixture statement.
func (d *DB) Exec(t *testing.T, query string, args ...any) {
	t.Helper()
	_, err := d.ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
}

// DropNegativacao removes the optional table and refreshes the schema cache.
func (d *DB) DropNegativacao(t *testing.T) {
	t.Helper()
	d.Exec(t, "DROP TABLE Contratos_Negativacao")
	d.Schema.Invalidate()
}

// Contract is a fixture row for Contratos.
type Contract struct {
	ID, Cliente, Cidade, Bairro string
	Activated, Cancelled        string
	Status, Access              string
	Seller                      int64
	Reason, Note                string
	DueDay                      int64
}

func (d *DB) AddContract(t *testing.T, c Contract) {
	t.Helper()
	d.Exec(t, `INSERT INTO Contratos (ID, Cliente, Cidade, Bairro, Data_ativa_o, Data_cancelamento,
		Status_contrato, Status_acesso, Vendedor, Motivo_cancelamento, Obs_cancelamento, Dia_fixo_do_vencimento, Data_cadastro_sistema)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Cliente, c.Cidade, nullable(c.Bairro), nullable(c.Activated), nullable(c.Cancelled),
		c.Status, c.Access, nullableInt(c.Seller), nullable(c.Reason), nullable(c.Note), nullableInt(c.DueDay), nullable(c.Activated))
}

// AddNegativado inserts into Contratos_Negativacao; Cancelled is used as Data_negativa_o.
func (d *DB) AddNegativado(t *testing.T, c Contract) {
	t.Helper()
	d.Exec(t, `INSERT INTO Contratos_Negativacao (ID, Cliente, Cidade, Bairro, Data_ativa_o, Data_negativa_o,
		Status_contrato, Status_acesso, Vendedor, Motivo_cancelamento, Obs_cancelamento)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Cliente, c.Cidade, nullable(c.Bairro), nullable(c.Activated), nullable(c.Cancelled),
		c.Status, c.Access, nullableInt(c.Seller), nullable(c.Reason), nullable(c.Note))
}

// Invoice is a fixture row for Contas_a_Receber.
type Invoice struct {
	ID         int64
	ContractID string
	Due, Paid  string
	Value      float64
	Received   float64
	Cancelled  float64
	Status     string
	City       string
}

func (d *DB) AddInvoice(t *testing.T, i Invoice) {
	t.Helper()
	d.Exec(t, `INSERT INTO Contas_a_Receber (ID, ID_Contrato_Recorrente, Vencimento, Emissao, Data_pagamento,
		Valor, Valor_recebido, Valor_cancelado, Status, Parcela_R, Cidade)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.ContractID, i.Due, i.Due, nullable(i.Paid), i.Value, i.Received, i.Cancelled, i.Status, "1", nullable(i.City))
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}
