package filters

import (
	"fmt"
	"strings"

	"github.com/Gobusters/ectolinq"
)

// Cities outside the service region. Their negativações are excluded from the
// blacklist reports and from the active-client evolution.
var OutOfRegionCities = []string{"Caçapava", "Jacareí", "São José dos Campos"}

// Ticket subjects that count as a relevant technical contact before churn.
var RelevantSubjects = []string{"MANUTENÇÃO DE FIBRA", "VISITA TECNICA"}

const NotInformed = "Não Informado"

// ContractKeySQL canonicalizes a contract id column to a join key. Numeric ids
// become integers, so "12345", "12345.0" and " 12345 " compare equal; any other
// id keeps its trimmed text and only matches itself.
func ContractKeySQL(col string) string {
	return fmt.Sprintf("CASE WHEN TRIM(%[1]s) GLOB '[0-9]*' THEN CAST(TRIM(%[1]s) AS INTEGER) ELSE TRIM(%[1]s) END", col)
}

// SplitMulti splits a comma separated multi-select value, dropping blanks.
func SplitMulti(s string) []string {
	if s == "" {
		return nil
	}
	parts := ectolinq.Map(strings.Split(s, ","), strings.TrimSpace)
	return ectolinq.Filter(parts, func(part string) bool { return part != "" })
}

// In renders "col IN (?, ?...)" binding each value.
func In(b Varer, col string, values []string) string {
	placeholders := ectolinq.Map(values, func(v string) string { return b.Var(v) })
	return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", "))
}

// OutOfRegionSQL renders "col NOT IN (...)" with the excluded cities as literals.
func OutOfRegionSQL(col string) string {
	return fmt.Sprintf("%s NOT IN (%s)", col, quoteList(OutOfRegionCities))
}

// RelevantSubjectsSQL renders the relevant ticket subject list as literals.
func RelevantSubjectsSQL() string {
	return quoteList(RelevantSubjects)
}

func quoteList(values []string) string {
	quoted := ectolinq.Map(values, func(v string) string {
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	})
	return strings.Join(quoted, ", ")
}
