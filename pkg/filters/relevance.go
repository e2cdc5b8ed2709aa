// Package filters holds the predicate helpers shared by every analytic query:
// the relevance (tenure range) grammar, date ranges, tenure arithmetic and
// contract id canonicalization.
package filters

import (
	"strconv"
	"strings"
)

// ParseRelevance parses "<min>-<max>", "<min>+" or "" into optional month bounds.
// Any non-numeric part drops the filter entirely.
func ParseRelevance(s string) (min, max *int) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, "-")
	first := parts[0]
	if strings.Contains(first, "+") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(first, "+", "")))
		if err != nil {
			return nil, nil
		}
		return &n, nil
	}

	lo, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return nil, nil
	}
	if len(parts) == 1 {
		return &lo, nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, nil
	}
	return &lo, &hi
}

// Relevance is a parsed tenure filter.
type Relevance struct {
	Min *int
	Max *int
}

func NewRelevance(s string) Relevance {
	min, max := ParseRelevance(s)
	return Relevance{Min: min, Max: max}
}

func (r Relevance) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// Predicates renders the bounds against expr with bound parameters.
func (r Relevance) Predicates(b Varer, expr string) []string {
	var preds []string
	if r.Min != nil {
		preds = append(preds, expr+" >= "+b.Var(*r.Min))
	}
	if r.Max != nil {
		preds = append(preds, expr+" <= "+b.Var(*r.Max))
	}
	return preds
}
