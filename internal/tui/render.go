package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/calendar"
	"github.com/budgetbook/budgetbook/internal/chart"
	"github.com/budgetbook/budgetbook/internal/money"
	"github.com/budgetbook/budgetbook/internal/service"
)

const barWidth = 40

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cellStyle    = lipgloss.NewStyle().Width(6)
	labelStyle   = lipgloss.NewStyle().Width(6)
	draftStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	red          = lipgloss.Color("9")
	blue         = lipgloss.Color("12")
)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewTransactions:
		body = a.renderTransactions()
	case viewStats:
		body = a.renderStats()
	case viewAssistant:
		body = a.renderAssistant()
	default:
		body = a.renderCalendar()
	}
	if a.confirmReset {
		body += "\n\n" + titleStyle.Render("Clear offline cache?") + "\nServer data is not touched.\n[y] Yes  [n] No"
	}
	if a.status != "" {
		body += "\n" + a.status
	}
	return body
}

func amountStyle(typ api.TransactionType) lipgloss.Style {
	if typ == api.Income {
		return incomeStyle
	}
	return expenseStyle
}

func (a *App) header(title string) string {
	return titleStyle.Render("BudgetBook · "+title) + "  " + mutedStyle.Render(a.filterLabel())
}

func (a *App) filterLabel() string {
	if a.categoryFilter == 0 {
		return ""
	}
	for _, c := range a.categories {
		if c.ID == a.categoryFilter {
			return "category: " + c.Name
		}
	}
	return ""
}

func (a *App) renderCalendar() string {
	var b strings.Builder
	grid := calendar.Month(a.year, a.month, a.today(), a.view.Transactions, a.categoryFilter)

	b.WriteString(a.header(grid.Label()) + "  " + a.renderYears() + "\n")
	if !a.loaded {
		b.WriteString("loading...\n")
	}
	b.WriteString(a.renderSummary() + "\n\n")

	heads := make([]string, 0, 7)
	for i, d := range []string{"일", "월", "화", "수", "목", "금", "토"} {
		style := cellStyle
		switch i {
		case 0:
			style = style.Foreground(red)
		case 6:
			style = style.Foreground(blue)
		}
		heads = append(heads, style.Render(d))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, heads...) + "\n")
	for _, week := range grid.Weeks() {
		cells := make([]string, 0, len(week))
		for _, d := range week {
			cells = append(cells, a.renderDay(d))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")
	}

	b.WriteString("\n" + a.renderDayDetail() + "\n")
	b.WriteString(help(a.keys.NextView, a.keys.PrevMonth, a.keys.PrevYear, a.keys.Filter, a.keys.Refresh, a.keys.Reset, a.keys.Quit))
	return b.String()
}

func (a *App) renderYears() string {
	years := calendar.YearWindow(a.today().Year(), a.year)
	parts := make([]string, len(years))
	for i, y := range years {
		if y == a.year {
			parts[i] = "[" + strconv.Itoa(y) + "]"
		} else {
			parts[i] = mutedStyle.Render(strconv.Itoa(y))
		}
	}
	return strings.Join(parts, " ")
}

func (a *App) renderSummary() string {
	s := a.view.Stats
	line := fmt.Sprintf("수입 %s  지출 %s  잔액 %s",
		incomeStyle.Render(money.Format(s.TotalIncome)),
		expenseStyle.Render(money.Format(s.TotalExpense)),
		money.Format(s.Balance))
	total := decimal.Zero
	for _, acct := range a.view.Accounts {
		total = total.Add(acct.Balance)
	}
	return line + fmt.Sprintf("  |  계좌 %d개 %s", len(a.view.Accounts), money.Format(total))
}

func (a *App) renderDay(d calendar.Day) string {
	label := strconv.Itoa(d.Day)
	if len(d.Transactions) > 0 {
		label += "•"
	}
	style := cellStyle
	switch {
	case !d.InMonth:
		style = style.Faint(true)
	case d.IsSunday || d.IsHoliday:
		style = style.Foreground(red)
	case d.IsSaturday:
		style = style.Foreground(blue)
	}
	if d.IsToday {
		style = style.Bold(true).Underline(true)
	}
	if d.Date.Equal(a.selected) {
		style = style.Reverse(true)
	}
	return style.Render(label)
}

func (a *App) renderDayDetail() string {
	title := a.selected.Format("2006-01-02 (Mon)")
	if name, ok := calendar.HolidayName(a.selected); ok {
		title += " " + expenseStyle.Render(name)
	}
	out := titleStyle.Render(title) + "\n"
	txs := calendar.OnDate(a.view.Transactions, a.selected, a.categoryFilter)
	if len(txs) == 0 {
		return out + mutedStyle.Render("  no transactions") + "\n"
	}
	for _, t := range txs {
		out += fmt.Sprintf("  %-14s %-10s %s\n", calendar.DisplayText(t), t.CategoryName,
			amountStyle(t.Type).Render(money.Signed(t.Amount, t.Type)))
	}
	return out
}

// monthTransactions is the loaded month, filtered and newest first.
func (a *App) monthTransactions() []api.Transaction {
	var out []api.Transaction
	for _, t := range a.view.Transactions {
		if a.categoryFilter == 0 || t.CategoryID == a.categoryFilter {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate.Time)
	})
	return out
}

func (a *App) renderTransactions() string {
	out := a.header("Transactions "+calendar.Label(a.year, a.month)) + "\n"
	txs := a.monthTransactions()
	if len(txs) == 0 {
		out += mutedStyle.Render("no transactions this month") + "\n"
	}
	for i, t := range txs {
		marker := " "
		if i == a.txCursor {
			marker = "▶"
		}
		account := t.AccountAlias
		if account == "" {
			account = t.AccountBankName
		}
		out += fmt.Sprintf("%s %s  %-12s %-14s %-10s %s\n", marker,
			t.TransactionDate.In(a.tz).Format("01-02 15:04"),
			account, calendar.DisplayText(t), t.CategoryName,
			amountStyle(t.Type).Render(money.Signed(t.Amount, t.Type)))
	}
	out += help(a.keys.NextView, a.keys.PrevMonth, a.keys.Filter, a.keys.Delete, a.keys.Refresh, a.keys.Quit)
	return out
}

func (a *App) renderStats() string {
	r := a.report
	if r == nil {
		return a.header("Statistics") + "\nloading...\n" + help(a.keys.Period, a.keys.Quit)
	}
	var b strings.Builder
	b.WriteString(a.header(fmt.Sprintf("Statistics %s (%s)", r.Title, r.Period)) + "\n")
	fmt.Fprintf(&b, "수입 %s  지출 %s  잔액 %s\n\n",
		incomeStyle.Render(money.Format(decimal.NewFromFloat(r.TotalIncome))),
		expenseStyle.Render(money.Format(decimal.NewFromFloat(r.TotalExpense))),
		money.Format(decimal.NewFromFloat(r.Balance)))

	if len(r.Points) > 0 {
		ticks := chart.YAxis(chart.MaxAmount(r.Points))
		labels := make([]string, len(ticks))
		for i, t := range ticks {
			labels[i] = chart.AxisLabel(t)
		}
		b.WriteString(mutedStyle.Render("axis "+strings.Join(labels, " / ")) + "\n")

		scale := chart.Scale(r.Points)
		for _, p := range r.Points {
			in := barWidth * chart.BarHeight(p.Income, scale) / 100
			ex := barWidth * chart.BarHeight(p.Expense, scale) / 100
			b.WriteString(labelStyle.Render(p.Label) +
				incomeStyle.Render(strings.Repeat("█", in)) + "\n" +
				labelStyle.Render("") +
				expenseStyle.Render(strings.Repeat("█", ex)) + "\n")
		}
	}

	b.WriteString("\n" + categoryBreakdown("지출", r.Expenses, r.TotalExpense))
	b.WriteString(categoryBreakdown("수입", r.Incomes, r.TotalIncome))
	b.WriteString(help(a.keys.NextView, a.keys.Period, a.keys.PrevMonth, a.keys.Refresh, a.keys.Quit))
	return b.String()
}

func categoryBreakdown(title string, items []api.CategoryAmount, total float64) string {
	if len(items) == 0 {
		return ""
	}
	out := titleStyle.Render(title) + "\n"
	for _, c := range items {
		out += fmt.Sprintf("  %-12s %12s %3d%%\n", c.CategoryName, money.Format(c.Amount),
			chart.Percentage(c.Amount.InexactFloat64(), total))
	}
	return out
}

func (a *App) renderAssistant() string {
	var b strings.Builder
	b.WriteString(a.header("Assistant") + "\n")

	start := max(0, len(a.chat)-10)
	for _, m := range a.chat[start:] {
		who := "나"
		if m.Role == api.RoleAssistant {
			who = "AI"
		}
		fmt.Fprintf(&b, "%s: %s\n", mutedStyle.Render(who), m.Content)
	}
	if a.draft != nil {
		b.WriteString(a.renderDraft(*a.draft) + "\n")
		b.WriteString(help(a.keys.Confirm, a.keys.ToggleType, a.keys.Cancel))
		return b.String()
	}
	b.WriteString("\n" + a.input.View() + "\n")
	b.WriteString(help(a.keys.NextView, a.keys.Back))
	return b.String()
}

func (a *App) renderDraft(d service.TransactionDraft) string {
	account := "(no account)"
	if a.services.Accounts != nil {
		if acct, ok := a.services.Accounts.Find(d.AccountID); ok {
			account = acct.DisplayName()
		}
	}
	category := d.CategoryName
	if category == "" {
		category = "(choose a category)"
	}
	lines := []string{
		titleStyle.Render("New transaction"),
		fmt.Sprintf("%s  %s", d.Type, amountStyle(d.Type).Render(money.Signed(d.Amount, d.Type))),
		"category  " + category,
		"account   " + account,
		"date      " + d.Date.Format("2006-01-02"),
	}
	if d.Memo != "" {
		lines = append(lines, "memo      "+d.Memo)
	}
	if d.Confidence > 0 {
		lines = append(lines, fmt.Sprintf("confidence %d%%", chart.Percentage(d.Confidence, 1)))
	}
	if err := d.Validate(); err != nil {
		lines = append(lines, expenseStyle.Render(err.Error()))
	}
	return draftStyle.Render(strings.Join(lines, "\n"))
}
