package filters

import (
	"fmt"
	"strconv"
)

// Varer binds a value and returns its placeholder. Every go-sqlbuilder builder
// and *sqlbuilder.Args satisfies it.
type Varer interface {
	Var(arg any) string
}

// DateRange is an optional inclusive [Start, End] window of YYYY-MM-DD strings.
type DateRange struct {
	Start string
	End   string
}

func (d DateRange) IsZero() bool {
	return d.Start == "" && d.End == ""
}

// Predicates returns DATE(col) >= ? / DATE(col) <= ? for the non-empty bounds.
func (d DateRange) Predicates(b Varer, col string) []string {
	var preds []string
	if d.Start != "" {
		preds = append(preds, fmt.Sprintf("DATE(%s) >= %s", col, b.Var(d.Start)))
	}
	if d.End != "" {
		preds = append(preds, fmt.Sprintf("DATE(%s) <= %s", col, b.Var(d.End)))
	}
	return preds
}

// NormalizeMonth pads a month number to the two digits STRFTIME('%m') yields.
// "" passes through; anything outside 1..12 is rejected.
func NormalizeMonth(month string) (string, bool) {
	if month == "" {
		return "", true
	}
	n, err := strconv.Atoi(month)
	if err != nil || n < 1 || n > 12 {
		return "", false
	}
	return fmt.Sprintf("%02d", n), true
}
