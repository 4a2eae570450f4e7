// Package calendar lays out a month as a Sunday-first grid and places
// transactions on their days.
package calendar

import (
	"fmt"
	"time"

	"github.com/budgetbook/budgetbook/internal/api"
)

// Day is one cell of the grid.
type Day struct {
	Date         time.Time
	Day          int
	InMonth      bool
	IsToday      bool
	IsSunday     bool
	IsSaturday   bool
	IsHoliday    bool
	Transactions []api.Transaction
}

// Grid is a month padded to whole weeks.
type Grid struct {
	Year  int
	Month time.Month
	Days  []Day
}

// Weeks splits the grid into rows of seven.
func (g Grid) Weeks() [][]Day {
	var out [][]Day
	for i := 0; i+7 <= len(g.Days); i += 7 {
		out = append(out, g.Days[i:i+7])
	}
	return out
}

// Label renders the grid's month as YYYY.MM.
func (g Grid) Label() string { return Label(g.Year, g.Month) }

// Month builds the grid for year/month in today's location. The grid starts on
// the Sunday on or before the 1st and ends on the Saturday on or after the
// last day. categoryID, when non-zero, keeps only that category's
// transactions.
func Month(year int, month time.Month, today time.Time, txs []api.Transaction, categoryID int64) Grid {
	loc := today.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	byDay := groupByDay(txs, loc, categoryID)
	g := Grid{Year: year, Month: month}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		g.Days = append(g.Days, Day{
			Date:         d,
			Day:          d.Day(),
			InMonth:      d.Month() == month,
			IsToday:      sameDay(d, today.In(loc)),
			IsSunday:     d.Weekday() == time.Sunday,
			IsSaturday:   d.Weekday() == time.Saturday,
			IsHoliday:    IsHoliday(d),
			Transactions: byDay[dayKey(d)],
		})
	}
	return g
}

// OnDate filters txs to those dated on day (compared in day's location),
// optionally only one category.
func OnDate(txs []api.Transaction, day time.Time, categoryID int64) []api.Transaction {
	return groupByDay(txs, day.Location(), categoryID)[dayKey(day)]
}

func groupByDay(txs []api.Transaction, loc *time.Location, categoryID int64) map[string][]api.Transaction {
	out := make(map[string][]api.Transaction)
	for _, tx := range txs {
		if tx.TransactionDate.IsZero() {
			continue
		}
		if categoryID != 0 && tx.CategoryID != categoryID {
			continue
		}
		k := dayKey(tx.TransactionDate.In(loc))
		out[k] = append(out[k], tx)
	}
	return out
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DisplayText is what a calendar cell shows for tx: the memo cut to ten
// characters, or the category name when there is no memo.
func DisplayText(tx api.Transaction) string {
	if tx.Memo == "" {
		return tx.CategoryName
	}
	r := []rune(tx.Memo)
	if len(r) > 10 {
		return string(r[:10]) + "..."
	}
	return tx.Memo
}

// Label renders YYYY.MM.
func Label(year int, month time.Month) string {
	return fmt.Sprintf("%d.%02d", year, int(month))
}

// Shift moves year/month by delta months.
func Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// WeekOfYear numbers weeks so that the week containing January 1st is 1 and
// weeks start on Sunday.
func WeekOfYear(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := t.YearDay() - 1
	return (days + int(jan1.Weekday()) + 1 + 6) / 7
}
