package database

import (
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// Query assembles one hand-written statement (typically a chain of CTEs) whose
// fragments all bind values through the same argument list. Var returns a
// placeholder reference, Build compiles the final text with the SQLite flavor.
// Nested builders passed to Var are inlined with their own arguments.
type Query struct {
	args sqlbuilder.Args
}

func NewQuery() *Query {
	return &Query{}
}

func (q *Query) Var(v any) string {
	return q.args.Add(v)
}

func (q *Query) Build(sql string) (string, []any) {
	return q.args.CompileWithFlavor(sql, Flavor)
}

// Where joins predicates into a WHERE clause, or "" when there are none.
func Where(preds ...string) string {
	if len(preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(preds, " AND ")
}

// And prefixes each predicate with AND for appending to an existing WHERE.
func And(preds ...string) string {
	if len(preds) == 0 {
		return ""
	}
	return " AND " + strings.Join(preds, " AND ")
}
