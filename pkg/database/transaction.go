package database

import (
	"context"
	"database/sql"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type txContextKey struct{}

type Tx interface {
	Querier
	IsOpen() bool
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Transaction is a sqlx.Tx bound to a request context. A transaction joined
// from an outer scope never commits or rolls back; its owner does.
type Transaction struct {
	*sqlx.Tx
	logger ectologger.Logger
	closed bool
	nested bool
}

func (t *Transaction) IsOpen() bool { return !t.closed }

func (t *Transaction) Commit(ctx context.Context) error {
	return t.finish(ctx, "commit", t.Tx.Commit)
}

func (t *Transaction) Rollback(ctx context.Context) error {
	return t.finish(ctx, "rollback", t.Tx.Rollback)
}

func (t *Transaction) finish(ctx context.Context, op string, fn func() error) error {
	if t.closed || t.nested {
		return nil
	}
	t.closed = true
	if err := fn(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		t.logger.WithContext(ctx).WithError(err).Errorf("transaction %s failed", op)
		return errors.Wrapf(err, "transaction %s", op)
	}
	return nil
}

func txFromContext(ctx context.Context) (*Transaction, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*Transaction)
	return tx, ok && tx != nil && tx.IsOpen()
}

// GetTx joins the transaction already bound to ctx, or begins one and binds it
// to the returned context.
func GetTx(ctx context.Context, logger ectologger.Logger, db DB, opts *sql.TxOptions) (context.Context, Tx, error) {
	if outer, ok := txFromContext(ctx); ok {
		return ctx, &Transaction{Tx: outer.Tx, logger: logger, nested: true}, nil
	}

	sqlTx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("failed to begin transaction")
		return ctx, nil, errors.Wrap(err, "begin transaction")
	}
	tx := &Transaction{Tx: sqlTx, logger: logger}
	return context.WithValue(ctx, txContextKey{}, tx), tx, nil
}

// InTx runs fn inside a transaction and commits when it returns nil.
func InTx(ctx context.Context, db DB, fn func(ctx context.Context, tx Tx) error) error {
	ctx, tx, err := db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
