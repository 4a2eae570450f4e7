package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/budgetbook/budgetbook/internal/calendar"
	"github.com/budgetbook/budgetbook/internal/chart"
	"github.com/budgetbook/budgetbook/internal/money"
	"github.com/budgetbook/budgetbook/internal/service"
)

func newStatsCmd(a *app) *cobra.Command {
	now := time.Now()
	var year, month, week int
	cmd := &cobra.Command{
		Use:       "stats monthly|weekly|yearly",
		Short:     "Show income and expense statistics",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"monthly", "weekly", "yearly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			p, ok := service.ParsePeriod(args[0])
			if !ok {
				return fmt.Errorf("unknown period %q, want monthly, weekly or yearly", args[0])
			}
			ctx := cmd.Context()
			var r service.Report
			switch p {
			case service.Weekly:
				if !cmd.Flags().Changed("week") {
					week = calendar.WeekOfYear(now.In(a.cfg.Location()))
				}
				ws, err := a.client.Statistics.Weekly(ctx, year, week)
				if err != nil {
					return err
				}
				r = service.WeeklyReport(ws, week)
			case service.Yearly:
				ys, err := a.client.Statistics.Yearly(ctx, year)
				if err != nil {
					return err
				}
				r = service.YearlyReport(ys)
			default:
				ms, err := a.client.Statistics.Monthly(ctx, year, month)
				if err != nil {
					return err
				}
				r = service.MonthlyReport(ms)
			}
			a.printReport(r)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", now.Year(), "year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month, for monthly")
	cmd.Flags().IntVar(&week, "week", 0, "week of year, for weekly (default current)")
	return cmd
}

const statsBarWidth = 30

func (a *app) printReport(r service.Report) {
	a.printf("%s  %s\n", headerStyle.Render(r.Title), r.Period)
	a.printf("수입 %s  지출 %s  잔액 %s\n\n",
		money.Format(decimal.NewFromFloat(r.TotalIncome)),
		money.Format(decimal.NewFromFloat(r.TotalExpense)),
		money.Format(decimal.NewFromFloat(r.Balance)))

	if len(r.Points) > 0 {
		scale := chart.Scale(r.Points)
		rows := make([][]string, 0, len(r.Points))
		for _, p := range r.Points {
			rows = append(rows, []string{
				p.Label,
				money.Format(decimal.NewFromFloat(p.Income)),
				money.Format(decimal.NewFromFloat(p.Expense)),
				strings.Repeat("█", statsBarWidth*chart.BarHeight(p.Expense, scale)/100),
			})
		}
		a.table([]string{"", "INCOME", "EXPENSE", "EXPENSE (top " + chart.AxisLabel(scale) + ")"}, rows)
	}
	a.printCategoryAmounts("지출", r.Expenses)
	a.printCategoryAmounts("수입", r.Incomes)
}
