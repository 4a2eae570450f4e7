package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/budgetbook/budgetbook/internal/calendar"
	"github.com/budgetbook/budgetbook/internal/money"
)

func newCalendarCmd(a *app) *cobra.Command {
	now := time.Now()
	var year, month int
	var category int64
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month grid with each day's transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			view, err := a.dashboard.Month(cmd.Context(), year, time.Month(month))
			if err != nil {
				return err
			}
			today := time.Now().In(a.cfg.Location())
			grid := calendar.Month(year, time.Month(month), today, view.Transactions, category)

			a.printf("%s  수입 %s  지출 %s\n", headerStyle.Render(grid.Label()),
				money.Format(view.Stats.TotalIncome), money.Format(view.Stats.TotalExpense))
			rows := make([][]string, 0, 6)
			for _, week := range grid.Weeks() {
				row := make([]string, 0, 7)
				for _, d := range week {
					row = append(row, dayCell(d))
				}
				rows = append(rows, row)
			}
			a.table([]string{"일", "월", "화", "수", "목", "금", "토"}, rows)

			for _, d := range grid.Days {
				if !d.InMonth || len(d.Transactions) == 0 {
					continue
				}
				a.printf("%s\n", d.Date.Format("01-02 Mon"))
				for _, t := range d.Transactions {
					a.printf("  %-14s %s\n", calendar.DisplayText(t), money.Signed(t.Amount, t.Type))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", now.Year(), "year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month")
	cmd.Flags().Int64Var(&category, "category", 0, "only this category")
	return cmd
}

// dayCell is the day number with markers: * today, ! holiday, and the number
// of transactions.
func dayCell(d calendar.Day) string {
	if !d.InMonth {
		return ""
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(d.Day))
	if d.IsToday {
		b.WriteString("*")
	}
	if d.IsHoliday {
		b.WriteString("!")
	}
	if n := len(d.Transactions); n > 0 {
		b.WriteString(" (" + strconv.Itoa(n) + ")")
	}
	return b.String()
}
