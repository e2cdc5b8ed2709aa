package database

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// Flavor pins every builder to SQLite placeholder and quoting rules.
var Flavor = sqlbuilder.SQLite

func Excluded(column string) any {
	return sqlbuilder.Raw(fmt.Sprintf("excluded.%s", column))
}

// NewSelectBuilder returns a SQLite-flavored select builder.
func NewSelectBuilder() *sqlbuilder.SelectBuilder {
	return Flavor.NewSelectBuilder()
}

func NewUpdateBuilder() *sqlbuilder.UpdateBuilder {
	return Flavor.NewUpdateBuilder()
}

func NewDeleteBuilder() *sqlbuilder.DeleteBuilder {
	return Flavor.NewDeleteBuilder()
}

// Build compiles a template where $0, $1... reference args and ${name} references
// sqlbuilder.Named args. Nested builders are inlined with their own arguments.
func Build(format string, args ...any) (string, []any) {
	return sqlbuilder.Build(format, args...).BuildWithFlavor(Flavor)
}

// Template is an uncompiled Build, usable as a nested builder.
func Template(format string, args ...any) sqlbuilder.Builder {
	return sqlbuilder.WithFlavor(sqlbuilder.Build(format, args...), Flavor)
}

// Compile builds any builder with the SQLite flavor.
func Compile(b sqlbuilder.Builder) (string, []any) {
	return b.BuildWithFlavor(Flavor)
}

// QuoteIdent quotes a table or column name taken from introspection.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type InsertBuilder struct {
	*sqlbuilder.InsertBuilder
}

func NewInsertBuilder() *InsertBuilder {
	return &InsertBuilder{Flavor.NewInsertBuilder()}
}

func (b *InsertBuilder) InsertInto(table string) *InsertBuilder {
	b.InsertBuilder.InsertInto(table)
	return b
}

func (b *InsertBuilder) Cols(col ...string) *InsertBuilder {
	b.InsertBuilder.Cols(col...)
	return b
}

func (b *InsertBuilder) Values(value ...any) *InsertBuilder {
	b.InsertBuilder.Values(value...)
	return b
}

// OnConflict appends an upsert clause and returns the update builder for its SET list.
func (b *InsertBuilder) OnConflict(columns ...string) *sqlbuilder.UpdateBuilder {
	ub := NewUpdateBuilder()
	b.SQL(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE %s", strings.Join(columns, ", "), b.Var(ub)))
	return ub
}

func (b *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	b.SQL("ON CONFLICT DO NOTHING")
	return b
}

type Struct struct {
	*sqlbuilder.Struct
}

func NewStruct(v any) *Struct {
	return &Struct{sqlbuilder.NewStruct(v).For(Flavor)}
}
