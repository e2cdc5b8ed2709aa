package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tonooka01/sistema-analise/pkg/database"
)

func TestQuery_BindsFragmentsInTextOrder(t *testing.T) {
	q := database.NewQuery()

	sub := database.NewSelectBuilder()
	sub.Select("Cliente").From("Atendimentos").Where(sub.Equal("Assunto", "VISITA TECNICA"))

	cte := "WITH T AS (SELECT Cliente FROM Contratos WHERE STRFTIME('%Y', Data_ativa_o) = " + q.Var("2024") + ")"
	sql, args := q.Build(cte + " SELECT * FROM T WHERE Cliente IN (" + q.Var(sub) + ")" +
		database.And("Cliente LIKE "+q.Var("%ana%")))

	assert.Equal(t, "WITH T AS (SELECT Cliente FROM Contratos WHERE STRFTIME('%Y', Data_ativa_o) = ?) SELECT * FROM T WHERE Cliente IN (SELECT Cliente FROM Atendimentos WHERE Assunto = ?) AND Cliente LIKE ?", sql)
	assert.Equal(t, []any{"2024", "VISITA TECNICA", "%ana%"}, args)
}

func TestWhere(t *testing.T) {
	assert.Equal(t, "", database.Where())
	assert.Equal(t, " WHERE a = 1 AND b = 2", database.Where("a = 1", "b = 2"))
	assert.Equal(t, " AND a = 1", database.And("a = 1"))
}
