package database_test

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/db/migrations"
	"github.com/Tonooka01/sistema-analise/pkg/database"
)

func openMemory(t *testing.T) database.DB {
	t.Helper()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	db, err := database.Open(context.Background(), database.Config{Path: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSchema_HasTable(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	_, err := db.ExecContext(ctx, `CREATE TABLE Contratos (ID TEXT, Cliente TEXT)`)
	require.NoError(t, err)

	schema := database.NewSchema(db, logger, 0)

	ok, err := schema.HasTable(ctx, "Contratos")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = schema.HasTable(ctx, "contratos")
	require.NoError(t, err)
	assert.True(t, ok, "lookups are case-insensitive")

	ok, err = schema.HasTable(ctx, "Contratos_Negativacao")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.ExecContext(ctx, `CREATE TABLE Contratos_Negativacao (ID TEXT)`)
	require.NoError(t, err)

	ok, err = schema.HasTable(ctx, "Contratos_Negativacao")
	require.NoError(t, err)
	assert.False(t, ok, "cached result is kept until invalidated")

	schema.Invalidate()
	ok, err = schema.HasTable(ctx, "Contratos_Negativacao")
	require.NoError(t, err)
	assert.True(t, ok)

	cols, err := schema.Columns(ctx, "Contratos")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Cliente"}, cols)
}

func TestMigrationService_CreatesSystemTables(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	svc := database.NewMigrationService(logger, &database.MigrationConfig{}, migrations.FS)
	require.NoError(t, svc.Migrate(db))
	// a second run is a no-op
	require.NoError(t, svc.Migrate(db))

	schema := database.NewSchema(db, logger, 0)
	tables, err := schema.Tables(ctx)
	require.NoError(t, err)
	assert.Subset(t, tables, []string{"AccessLogs", "FileMetadata", "Settings", "Users"})
}

func TestBuild_NestedBuildersKeepArgumentOrder(t *testing.T) {
	inner := database.NewSelectBuilder()
	inner.Select("ID").From("Contratos").Where(inner.Equal("Cidade", "Taubaté"))

	query, args := database.Build("WITH T AS ($0) SELECT COUNT(*) FROM T WHERE ID > $1", inner, 10)
	assert.Equal(t, "WITH T AS (SELECT ID FROM Contratos WHERE Cidade = ?) SELECT COUNT(*) FROM T WHERE ID > ?", query)
	assert.Equal(t, []any{"Taubaté", 10}, args)
}
