package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/calendar"
	"github.com/budgetbook/budgetbook/internal/money"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(a.out, t.Render())
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func (a *app) printAccounts(accounts []api.Account) {
	rows := make([][]string, 0, len(accounts))
	for _, acct := range accounts {
		rows = append(rows, []string{id(acct.ID), acct.BankName, acct.Alias, money.Format(acct.Balance)})
	}
	a.table([]string{"ID", "BANK", "ALIAS", "BALANCE"}, rows)
}

func (a *app) printCategories(cats []api.Category) {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{id(c.ID), c.Name, string(c.Type), c.Icon})
	}
	a.table([]string{"ID", "NAME", "TYPE", "ICON"}, rows)
}

func (a *app) printTransactions(txs []api.Transaction) {
	loc := a.cfg.Location()
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		account := t.AccountAlias
		if account == "" {
			account = t.AccountBankName
		}
		rows = append(rows, []string{
			id(t.ID),
			t.TransactionDate.In(loc).Format("2006-01-02 15:04"),
			account,
			t.CategoryName,
			calendar.DisplayText(t),
			money.Signed(t.Amount, t.Type),
		})
	}
	a.table([]string{"ID", "DATE", "ACCOUNT", "CATEGORY", "MEMO", "AMOUNT"}, rows)
}

func (a *app) printCategoryAmounts(title string, items []api.CategoryAmount) {
	if len(items) == 0 {
		return
	}
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{c.CategoryName, money.Format(c.Amount), fmt.Sprintf("%.1f%%", c.Percentage)})
	}
	a.printf("%s\n", headerStyle.Render(title))
	a.table([]string{"CATEGORY", "AMOUNT", "SHARE"}, rows)
}
