// Package comparison lines up the daily receipts of a month against the
// previous month.
package comparison

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

// ReceiptsTable is loaded from the bank statement upload and may be absent.
const ReceiptsTable = "Recebimentos_Diarios"

const (
	TypeLiquido = "Liquido"
	TypeBaixa   = "Baixa"
)

const dateLayout = "2006-01-02"

// holidays are the fixed national holidays as MM-DD.
var holidays = map[string]bool{
	"01-01": true,
	"04-21": true,
	"05-01": true,
	"09-07": true,
	"10-12": true,
	"11-02": true,
	"11-15": true,
	"12-25": true,
}

// Day carries both the net (liq) and written-off (bai) figures of one day of
// the month; the dashboard renders both tables from the same rows.
type Day struct {
	Day       int     `json:"day"`
	IsWeekend bool    `json:"is_weekend"`
	IsHoliday bool    `json:"is_holiday"`
	IsToday   bool    `json:"is_today"`
	LiqPrev   float64 `json:"liq_prev"`
	LiqCurr   float64 `json:"liq_curr"`
	LiqDiff   float64 `json:"liq_diff"`
	BaiPrev   float64 `json:"bai_prev"`
	BaiCurr   float64 `json:"bai_curr"`
	BaiDiff   float64 `json:"bai_diff"`
}

type Info struct {
	CurrLabel string `json:"curr_label"`
	PrevLabel string `json:"prev_label"`
	TodayDay  int    `json:"today_day"`
}

type Daily struct {
	Liquido []Day `json:"liquido"`
	Baixa   []Day `json:"baixa"`
	Info    Info  `json:"info"`
}

type receipt struct {
	Data  database.Text `db:"Data"`
	Tipo  database.Text `db:"Tipo"`
	Valor float64       `db:"Valor"`
}

type ComparisonRepository interface {
	Daily(ctx context.Context, date string) (*Daily, error)
}

type Repository struct {
	*repositories.Repository
	now func() time.Time
}

func NewRepository(db database.DB, schema *database.Schema, logger ectologger.Logger) *Repository {
	return &Repository{Repository: repositories.NewRepository(db, schema, logger), now: time.Now}
}

// IsHoliday reports whether d falls on a fixed national holiday.
func IsHoliday(d time.Time) bool {
	return holidays[d.Format("01-02")]
}

func IsWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}

// Daily compares each day 1..31 of the month of date (YYYY-MM-DD, today when
// empty) with the same day of the previous month. Days that do not exist in
// a month count as zero.
func (r *Repository) Daily(ctx context.Context, date string) (*Daily, error) {
	ctx, span := tracing.StartSpan(ctx, "ComparisonRepository.Daily")
	defer span.End()

	ref := r.now()
	if date != "" {
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, apperrors.BadRequest(apperrors.MsgInvalidValue)
		}
		ref = parsed
	}
	currFirst := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevFirst := currFirst.AddDate(0, -1, 0)
	nextFirst := currFirst.AddDate(0, 1, 0)

	totals, err := r.totals(ctx, prevFirst, nextFirst)
	if err != nil {
		return nil, err
	}

	out := &Daily{
		Liquido: make([]Day, 0, 31),
		Baixa:   []Day{},
		Info: Info{
			CurrLabel: currFirst.Format("Jan/2006"),
			PrevLabel: prevFirst.Format("Jan/2006"),
			TodayDay:  ref.Day(),
		},
	}
	for day := 1; day <= 31; day++ {
		row := Day{Day: day, IsToday: day == ref.Day()}
		if curr, ok := dayOf(currFirst, day); ok {
			row.IsWeekend = IsWeekend(curr)
			row.IsHoliday = IsHoliday(curr)
			key := curr.Format(dateLayout)
			row.LiqCurr = totals[key][TypeLiquido]
			row.BaiCurr = totals[key][TypeBaixa]
		}
		if prev, ok := dayOf(prevFirst, day); ok {
			key := prev.Format(dateLayout)
			row.LiqPrev = totals[key][TypeLiquido]
			row.BaiPrev = totals[key][TypeBaixa]
		}
		row.LiqDiff = row.LiqCurr - row.LiqPrev
		row.BaiDiff = row.BaiCurr - row.BaiPrev
		out.Liquido = append(out.Liquido, row)
	}
	return out, nil
}

// totals sums receipts per day and type over [from, to).
func (r *Repository) totals(ctx context.Context, from, to time.Time) (map[string]map[string]float64, error) {
	out := map[string]map[string]float64{}
	ok, err := r.HasTable(ctx, ReceiptsTable)
	if err != nil || !ok {
		return out, err
	}

	q := database.NewQuery()
	text := `SELECT DATE(Data) AS Data, Tipo, COALESCE(SUM(Valor), 0) AS Valor
		FROM ` + ReceiptsTable + `
		WHERE DATE(Data) >= ` + q.Var(from.Format(dateLayout)) + `
			AND DATE(Data) < ` + q.Var(to.Format(dateLayout)) + `
			AND Tipo IN (` + q.Var(TypeLiquido) + `, ` + q.Var(TypeBaixa) + `)
		GROUP BY DATE(Data), Tipo`
	var rows []receipt
	if err := r.Select(ctx, "comparison.daily", &rows, q, text); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if out[row.Data.String] == nil {
			out[row.Data.String] = map[string]float64{}
		}
		out[row.Data.String][row.Tipo.String] = row.Valor
	}
	return out, nil
}

// dayOf returns the given day of first's month, or false when the month is shorter.
func dayOf(first time.Time, day int) (time.Time, bool) {
	d := first.AddDate(0, 0, day-1)
	return d, d.Month() == first.Month()
}
