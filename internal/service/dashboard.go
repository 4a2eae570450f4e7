package service

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/calendar"
	"github.com/budgetbook/budgetbook/internal/chart"
)

// Dashboard gathers what the home screen shows for one month.
type Dashboard struct {
	Stats    StatisticsAPI
	Accounts *AccountBook
	Ledger   *Ledger
}

// MonthView is the loaded home screen.
type MonthView struct {
	Year         int
	Month        time.Month
	Stats        api.MonthlyStatistics
	Accounts     []api.Account
	Transactions []api.Transaction
}

// Month loads statistics, accounts and transactions for year/month in
// parallel. The first failure cancels the rest.
func (d *Dashboard) Month(ctx context.Context, year int, month time.Month) (MonthView, error) {
	view := MonthView{Year: year, Month: month}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := d.Stats.Monthly(ctx, year, int(month))
		view.Stats = stats
		return err
	})
	g.Go(func() error {
		accounts, err := d.Accounts.Load(ctx, "")
		view.Accounts = accounts
		return err
	})
	g.Go(func() error {
		txs, err := d.Ledger.Month(ctx, year, month)
		view.Transactions = txs
		return err
	})

	if err := g.Wait(); err != nil {
		return MonthView{}, err
	}
	return view, nil
}

// Period selects a statistics view.
type Period int

const (
	Weekly Period = iota
	Monthly
	Yearly
)

func (p Period) String() string {
	switch p {
	case Weekly:
		return "weekly"
	case Yearly:
		return "yearly"
	}
	return "monthly"
}

// ParsePeriod accepts weekly, monthly or yearly.
func ParsePeriod(s string) (Period, bool) {
	switch s {
	case "weekly", "week":
		return Weekly, true
	case "monthly", "month":
		return Monthly, true
	case "yearly", "year":
		return Yearly, true
	}
	return Monthly, false
}

// Next cycles weekly, monthly, yearly.
func (p Period) Next() Period { return (p + 1) % 3 }

// Report is one statistics view with its chart series.
type Report struct {
	Period       Period
	Title        string
	TotalIncome  float64
	TotalExpense float64
	Balance      float64
	Points       []chart.Point
	Expenses     []api.CategoryAmount
	Incomes      []api.CategoryAmount
}

// Report loads the statistics for the period containing day.
func (d *Dashboard) Report(ctx context.Context, p Period, day time.Time) (Report, error) {
	switch p {
	case Weekly:
		week := calendar.WeekOfYear(day)
		ws, err := d.Stats.Weekly(ctx, day.Year(), week)
		if err != nil {
			return Report{}, err
		}
		return WeeklyReport(ws, week), nil
	case Yearly:
		ys, err := d.Stats.Yearly(ctx, day.Year())
		if err != nil {
			return Report{}, err
		}
		return YearlyReport(ys), nil
	}
	ms, err := d.Stats.Monthly(ctx, day.Year(), int(day.Month()))
	if err != nil {
		return Report{}, err
	}
	return MonthlyReport(ms), nil
}

// WeeklyReport charts a week day by day.
func WeeklyReport(ws api.WeeklyStatistics, week int) Report {
	r := Report{
		Period:       Weekly,
		Title:        chart.WeekLabel(week),
		TotalIncome:  ws.TotalIncome.InexactFloat64(),
		TotalExpense: ws.TotalExpense.InexactFloat64(),
		Balance:      ws.Balance.InexactFloat64(),
		Expenses:     ws.CategoryExpenses,
		Incomes:      ws.CategoryIncomes,
	}
	for _, d := range ws.DailyExpenses {
		r.Points = append(r.Points, chart.Point{
			Label:   chart.DayLabel(d.Date.Time),
			Income:  d.Income.InexactFloat64(),
			Expense: d.Expense.InexactFloat64(),
		})
	}
	return r
}

// MonthlyReport charts a month week by week.
func MonthlyReport(ms api.MonthlyStatistics) Report {
	r := Report{
		Period:       Monthly,
		Title:        calendar.Label(ms.Year, time.Month(ms.Month)),
		TotalIncome:  ms.TotalIncome.InexactFloat64(),
		TotalExpense: ms.TotalExpense.InexactFloat64(),
		Balance:      ms.Balance.InexactFloat64(),
		Expenses:     ms.CategoryExpenses,
		Incomes:      ms.CategoryIncomes,
	}
	for _, w := range ms.WeeklyExpenses {
		r.Points = append(r.Points, chart.Point{
			Label:   chart.WeekLabel(w.Week),
			Income:  w.Income.InexactFloat64(),
			Expense: w.Expense.InexactFloat64(),
		})
	}
	return r
}

// YearlyReport charts a year month by month.
func YearlyReport(ys api.YearlyStatistics) Report {
	r := Report{
		Period:       Yearly,
		Title:        strconv.Itoa(ys.Year),
		TotalIncome:  ys.TotalIncome.InexactFloat64(),
		TotalExpense: ys.TotalExpense.InexactFloat64(),
		Balance:      ys.Balance.InexactFloat64(),
		Expenses:     ys.CategoryExpenses,
		Incomes:      ys.CategoryIncomes,
	}
	for _, m := range ys.MonthlyExpenses {
		r.Points = append(r.Points, chart.Point{
			Label:   chart.MonthLabel(m.Month),
			Income:  m.Income.InexactFloat64(),
			Expense: m.Expense.InexactFloat64(),
		})
	}
	return r
}
