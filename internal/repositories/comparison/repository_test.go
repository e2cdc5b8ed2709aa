package comparison

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/internal/testdb"
)

func seed(t *testing.T) (*Repository, *testdb.DB) {
	t.Helper()
	db := testdb.New(t)
	db.Exec(t, `INSERT INTO Recebimentos_Diarios (Data, Tipo, Valor) VALUES
		('2024-03-01', 'Liquido', 100),
		('2024-03-01', 'Liquido', 50),
		('2024-03-01', 'Baixa', 200),
		('2024-02-01', 'Liquido', 120),
		('2024-02-29', 'Baixa', 10),
		('2024-01-31', 'Liquido', 999),
		('2024-03-02', 'Outro', 5)`)
	repo := NewRepository(db.DB, db.Schema, db.Logger)
	repo.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }
	return repo, db
}

func TestDaily(t *testing.T) {
	repo, _ := seed(t)

	daily, err := repo.Daily(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, daily.Liquido, 31)
	assert.Empty(t, daily.Baixa)
	assert.Equal(t, Info{CurrLabel: "Mar/2024", PrevLabel: "Feb/2024", TodayDay: 15}, daily.Info)

	first := daily.Liquido[0]
	assert.InDelta(t, 150.0, first.LiqCurr, 0.001)
	assert.InDelta(t, 120.0, first.LiqPrev, 0.001)
	assert.InDelta(t, 30.0, first.LiqDiff, 0.001)
	assert.InDelta(t, 200.0, first.BaiCurr, 0.001)
	assert.InDelta(t, 200.0, first.BaiDiff, 0.001)

	assert.True(t, daily.Liquido[1].IsWeekend, "2024-03-02 is a Saturday")
	assert.Zero(t, daily.Liquido[1].LiqCurr)
	assert.True(t, daily.Liquido[14].IsToday)
	assert.False(t, daily.Liquido[13].IsToday)

	assert.InDelta(t, 10.0, daily.Liquido[28].BaiPrev, 0.001)
	assert.InDelta(t, -10.0, daily.Liquido[28].BaiDiff, 0.001)
	assert.Zero(t, daily.Liquido[29].BaiPrev)
	assert.Zero(t, daily.Liquido[30].LiqPrev, "January is outside the window")
}

func TestDaily_ExplicitDate(t *testing.T) {
	repo, _ := seed(t)

	daily, err := repo.Daily(context.Background(), "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, "Jan/2025", daily.Info.CurrLabel)
	assert.Equal(t, "Dec/2024", daily.Info.PrevLabel)
	assert.True(t, daily.Liquido[0].IsHoliday)
	assert.True(t, daily.Liquido[9].IsToday)

	_, err = repo.Daily(context.Background(), "10/01/2025")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestDaily_ShortMonth(t *testing.T) {
	repo, _ := seed(t)

	daily, err := repo.Daily(context.Background(), "2024-02-10")
	require.NoError(t, err)
	assert.False(t, daily.Liquido[30].IsWeekend, "February has no day 31")
	assert.InDelta(t, 10.0, daily.Liquido[28].BaiCurr, 0.001)
	assert.InDelta(t, 120.0, daily.Liquido[0].LiqCurr, 0.001)
	assert.InDelta(t, 999.0, daily.Liquido[30].LiqPrev, 0.001)
}

func TestDaily_MissingTable(t *testing.T) {
	repo, db := seed(t)
	db.Exec(t, "DROP TABLE Recebimentos_Diarios")
	db.Schema.Invalidate()

	daily, err := repo.Daily(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, daily.Liquido, 31)
	for _, day := range daily.Liquido {
		assert.Zero(t, day.LiqCurr)
		assert.Zero(t, day.LiqPrev)
	}
}

func TestCalendar(t *testing.T) {
	assert.True(t, IsHoliday(time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsHoliday(time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsWeekend(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsWeekend(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
}
