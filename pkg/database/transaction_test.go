package database_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/pkg/database"
)

func countRows(t *testing.T, db database.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM t"))
	return n
}

func TestInTx(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	_, err := db.ExecContext(ctx, "CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	err = database.InTx(ctx, db, func(ctx context.Context, tx database.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (1)")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db))

	boom := errors.New("boom")
	err = database.InTx(ctx, db, func(ctx context.Context, tx database.Tx) error {
		if _, err := db.Q(ctx).ExecContext(ctx, "INSERT INTO t (v) VALUES (2)"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, countRows(t, db))
}

func TestGetTx_JoinsOuterTransaction(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	_, err := db.ExecContext(ctx, "CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	err = database.InTx(ctx, db, func(ctx context.Context, outer database.Tx) error {
		inner, err := joinAndInsert(ctx, db)
		if err != nil {
			return err
		}
		assert.True(t, inner.IsOpen())
		assert.True(t, outer.IsOpen())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db))
}

// joinAndInsert commits its inner handle, which must leave the outer transaction open.
func joinAndInsert(ctx context.Context, db database.DB) (database.Tx, error) {
	ctx, tx, err := db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (1)"); err != nil {
		return nil, err
	}
	return tx, tx.Commit(ctx)
}
