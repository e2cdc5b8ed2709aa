package filters_test

import (
	"testing"

	"github.com/huandu/go-sqlbuilder"
	"github.com/stretchr/testify/assert"

	"github.com/Tonooka01/sistema-analise/pkg/filters"
)

func intPtr(i int) *int { return &i }

func TestParseRelevance(t *testing.T) {
	tests := []struct {
		in       string
		min, max *int
	}{
		{"0-6", intPtr(0), intPtr(6)},
		{"7-12", intPtr(7), intPtr(12)},
		{" 13 - 24 ", intPtr(13), intPtr(24)},
		{"37+", intPtr(37), nil},
		{"", nil, nil},
		{"abc", nil, nil},
		{"1-x", nil, nil},
		{"12", intPtr(12), nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			min, max := filters.ParseRelevance(tt.in)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
		})
	}
}

func TestRelevance_Predicates(t *testing.T) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("*").From("T")
	sb.Where(filters.NewRelevance("37+").Predicates(sb, "permanencia_meses")...)

	sql, args := sb.Build()
	assert.Equal(t, "SELECT * FROM T WHERE permanencia_meses >= ?", sql)
	assert.Equal(t, []any{37}, args)
}

func TestDateRange(t *testing.T) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("ID").From("Contratos")
	sb.Where(filters.DateRange{Start: "2024-01-01"}.Predicates(sb, "Data_ativa_o")...)
	assert.Empty(t, filters.DateRange{}.Predicates(sb, "Data_ativa_o"))

	sql, args := sb.Build()
	assert.Equal(t, "SELECT ID FROM Contratos WHERE DATE(Data_ativa_o) >= ?", sql)
	assert.Equal(t, []any{"2024-01-01"}, args)
}

func TestSplitMulti(t *testing.T) {
	assert.Equal(t, []string{"Ativo", "Suspenso"}, filters.SplitMulti("Ativo, Suspenso,,"))
	assert.Nil(t, filters.SplitMulti(""))
}

func TestOutOfRegionSQL(t *testing.T) {
	assert.Equal(t, "C.Cidade NOT IN ('Caçapava', 'Jacareí', 'São José dos Campos')", filters.OutOfRegionSQL("C.Cidade"))
}

func TestNormalizeMonth(t *testing.T) {
	for in, want := range map[string]string{"": "", "1": "01", "09": "09", "12": "12"} {
		got, ok := filters.NormalizeMonth(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"0", "13", "0a", "março"} {
		_, ok := filters.NormalizeMonth(in)
		assert.False(t, ok, in)
	}
}
