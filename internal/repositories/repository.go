// Package repositories holds the plumbing shared by the report repositories:
// tracing, query metrics, error mapping and optional-table lookups.
package repositories

import (
	"context"
	"time"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/metrics"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

// Negativacao is the optional table of negativized contracts.
const Negativacao = "Contratos_Negativacao"

// Page is the limit/offset pair of a paginated table.
type Page struct {
	Limit  int
	Offset int
}

// NewPage applies def when limit is not positive and clamps a negative offset.
func NewPage(limit, offset, def int) Page {
	if limit <= 0 {
		limit = def
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// Repository is embedded by every report repository.
type Repository struct {
	db     database.DB
	schema *database.Schema
	logger ectologger.Logger
}

func NewRepository(db database.DB, schema *database.Schema, logger ectologger.Logger) *Repository {
	return &Repository{db: db, schema: schema, logger: logger}
}

func (r *Repository) DB() database.DB {
	return r.db
}

func (r *Repository) Logger() ectologger.Logger {
	return r.logger
}

// Select compiles q against text and scans every row into dest.
func (r *Repository) Select(ctx context.Context, report string, dest any, q *database.Query, text string) error {
	sql, args := q.Build(text)
	return r.run(ctx, report, sql, args, func(ctx context.Context) error {
		return r.db.Q(ctx).SelectContext(ctx, dest, sql, args...)
	})
}

// Get compiles q against text and scans a single row into dest.
func (r *Repository) Get(ctx context.Context, report string, dest any, q *database.Query, text string) error {
	sql, args := q.Build(text)
	return r.run(ctx, report, sql, args, func(ctx context.Context) error {
		return r.db.Q(ctx).GetContext(ctx, dest, sql, args...)
	})
}

// Count runs a query returning a single integer.
func (r *Repository) Count(ctx context.Context, report string, q *database.Query, text string) (int64, error) {
	var n int64
	if err := r.Get(ctx, report, &n, q, text); err != nil {
		return 0, err
	}
	return n, nil
}

// Strings returns the first column of every row, skipping nulls and blanks.
func (r *Repository) Strings(ctx context.Context, report string, q *database.Query, text string) ([]string, error) {
	var rows []database.Text
	if err := r.Select(ctx, report, &rows, q, text); err != nil {
		return nil, err
	}
	rows = ectolinq.Filter(rows, func(row database.Text) bool { return row.Valid && row.String != "" })
	out := ectolinq.Map(rows, func(row database.Text) string { return row.String })
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// Maps scans rows of unknown shape into column-keyed maps with JSON-friendly values.
func (r *Repository) Maps(ctx context.Context, report string, q *database.Query, text string) ([]map[string]any, error) {
	sql, args := q.Build(text)
	out := []map[string]any{}
	err := r.run(ctx, report, sql, args, func(ctx context.Context) error {
		rows, err := r.db.Q(ctx).QueryxContext(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			row := map[string]any{}
			if err := rows.MapScan(row); err != nil {
				return err
			}
			for k, v := range row {
				row[k] = database.NormalizeValue(v)
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) run(ctx context.Context, report, sql string, args []any, fn func(context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, "Report."+report)
	defer span.End()
	defer metrics.ObserveQuery(report, time.Now())

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"report": report,
		"args":   len(args),
	}).Debugf("running report query")

	if err := fn(ctx); err != nil {
		tracing.RecordError(ctx, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"report": report,
			"sql":    sql,
		}).Error("report query failed")
		return apperrors.Query(report, err)
	}
	return nil
}

// HasNegativacao reports whether the optional negativação table is loaded.
func (r *Repository) HasNegativacao(ctx context.Context) (bool, error) {
	return r.HasTable(ctx, Negativacao)
}

func (r *Repository) HasTable(ctx context.Context, table string) (bool, error) {
	ok, err := r.schema.HasTable(ctx, table)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("schema introspection failed")
		return false, apperrors.Query("schema", err)
	}
	return ok, nil
}

// RequireTable returns the distinguished 500 when table is absent.
func (r *Repository) RequireTable(ctx context.Context, table string) error {
	ok, err := r.HasTable(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.WithContext(ctx).WithField("table", table).Warn("mandatory table missing")
		return apperrors.TableNotFound(table)
	}
	return nil
}

// Schema exposes the cached introspection for schema-agnostic browsing.
func (r *Repository) Schema() *database.Schema {
	return r.schema
}
