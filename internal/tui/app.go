// Package tui is the interactive dashboard: a month calendar, the month's
// transactions, period statistics and the assistant.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/calendar"
	"github.com/budgetbook/budgetbook/internal/money"
	"github.com/budgetbook/budgetbook/internal/service"
)

// Services are the flows the dashboard drives. Maintenance is nil when the
// offline cache is disabled.
type Services struct {
	Dashboard   *service.Dashboard
	Ledger      *service.Ledger
	Accounts    *service.AccountBook
	Categories  *service.Categories
	Assistant   *service.Assistant
	Maintenance *service.MaintenanceService
}

type appState string

const (
	viewCalendar     appState = "calendar"
	viewTransactions appState = "transactions"
	viewStats        appState = "stats"
	viewAssistant    appState = "assistant"
)

var viewOrder = []appState{viewCalendar, viewTransactions, viewStats, viewAssistant}

// App is the bubbletea model.
type App struct {
	ctx      context.Context
	services Services
	tz       *time.Location
	now      func() time.Time
	keys     keyMap

	state    appState
	year     int
	month    time.Month
	selected time.Time
	view     service.MonthView
	loaded   bool
	offline  bool
	txCursor int

	categories     []api.Category
	categoryFilter int64

	period service.Period
	report *service.Report

	input textinput.Model
	draft *service.TransactionDraft
	chat  []api.ChatMessage

	confirmReset bool
	status       string
}

// New builds the dashboard showing the current month in tz.
func New(ctx context.Context, services Services, tz *time.Location) *App {
	if tz == nil {
		tz = time.Local
	}
	in := textinput.New()
	in.Placeholder = "커피 4500원  (:chat 질문, :clear)"
	in.CharLimit = 200
	in.Width = 60

	a := &App{
		ctx:      ctx,
		services: services,
		tz:       tz,
		now:      time.Now,
		keys:     defaultKeys(),
		state:    viewCalendar,
		period:   service.Monthly,
		input:    in,
	}
	today := a.today()
	a.year, a.month = today.Year(), today.Month()
	a.selected = midnight(today)
	return a
}

func (a *App) today() time.Time { return a.now().In(a.tz) }

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type (
	monthMsg   service.MonthView
	offlineMsg struct {
		view service.MonthView
		err  error
	}
	categoriesMsg []api.Category
	reportMsg     service.Report
	draftMsg      service.TransactionDraft
	savedMsg      api.Transaction
	deletedMsg    int64
	chatMsg       struct {
		prompt string
		reply  api.ChatReply
	}
	historyMsg []api.ChatMessage
	statusMsg  string
	errMsg     struct{ err error }
)

func (e errMsg) Error() string { return e.err.Error() }

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadMonth(), a.loadCategories())
}

// commands

func (a *App) loadMonth() tea.Cmd {
	year, month := a.year, a.month
	return func() tea.Msg {
		view, err := a.services.Dashboard.Month(a.ctx, year, month)
		if err == nil {
			return monthMsg(view)
		}
		if errors.Is(err, api.ErrSessionExpired) || a.services.Ledger == nil {
			return errMsg{err}
		}
		txs, cerr := a.services.Ledger.CachedMonth(a.ctx, year, month)
		if cerr != nil || txs == nil {
			return errMsg{err}
		}
		view = service.MonthView{Year: year, Month: month, Transactions: txs}
		if a.services.Accounts != nil {
			view.Accounts = a.services.Accounts.Accounts()
		}
		return offlineMsg{view: view, err: err}
	}
}

func (a *App) loadCategories() tea.Cmd {
	return func() tea.Msg {
		if a.services.Categories == nil {
			return categoriesMsg(nil)
		}
		// a restored snapshot still gets refreshed; it only answers offline
		if err := a.services.Categories.Reload(a.ctx); err != nil {
			if cached := a.services.Categories.ByType(""); len(cached) > 0 {
				return categoriesMsg(cached)
			}
			return errMsg{err}
		}
		return categoriesMsg(a.services.Categories.ByType(""))
	}
}

func (a *App) loadReport() tea.Cmd {
	p, day := a.period, a.selected
	return func() tea.Msg {
		r, err := a.services.Dashboard.Report(a.ctx, p, day)
		if err != nil {
			return errMsg{err}
		}
		return reportMsg(r)
	}
}

func (a *App) parseCmd(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.services.Assistant.Parse(a.ctx, text)
		if err != nil {
			return errMsg{err}
		}
		return a.draftFrom(res)
	}
}

func (a *App) draftFrom(res api.ParseResult) tea.Msg {
	d, err := a.services.Assistant.Draft(a.ctx, res)
	if err != nil {
		return errMsg{err}
	}
	return draftMsg(d)
}

func (a *App) confirmCmd(d service.TransactionDraft) tea.Cmd {
	return func() tea.Msg {
		tx, err := a.services.Assistant.Confirm(a.ctx, d)
		if err != nil {
			return errMsg{err}
		}
		return savedMsg(tx)
	}
}

func (a *App) chatCmd(text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := a.services.Assistant.Chat(a.ctx, text)
		if err != nil {
			return errMsg{err}
		}
		return chatMsg{prompt: text, reply: reply}
	}
}

func (a *App) historyCmd() tea.Cmd {
	return func() tea.Msg {
		msgs, err := a.services.Assistant.History(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(msgs)
	}
}

func (a *App) clearHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Assistant.ClearHistory(a.ctx); err != nil {
			return errMsg{err}
		}
		return historyMsg(nil)
	}
}

func (a *App) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Ledger.Delete(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return deletedMsg(id)
	}
}

func (a *App) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Maintenance.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg("offline cache cleared")
	}
}

// Update

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(m)
	case monthMsg:
		a.view, a.loaded, a.offline = service.MonthView(m), true, false
		a.clampCursor()
	case offlineMsg:
		a.view, a.loaded, a.offline = m.view, true, true
		a.status = "offline, showing cached data: " + describe(m.err)
		a.clampCursor()
	case categoriesMsg:
		a.categories = []api.Category(m)
	case reportMsg:
		r := service.Report(m)
		a.report = &r
	case draftMsg:
		d := service.TransactionDraft(m)
		a.draft = &d
		a.status = ""
	case savedMsg:
		a.draft = nil
		a.status = fmt.Sprintf("saved %s %s", m.CategoryName, money.Signed(m.Amount, m.Type))
		return a, a.loadMonth()
	case deletedMsg:
		a.status = fmt.Sprintf("deleted transaction %d", int64(m))
		return a, a.loadMonth()
	case chatMsg:
		a.chat = append(a.chat,
			api.ChatMessage{Role: api.RoleUser, Content: m.prompt},
			api.ChatMessage{Role: api.RoleAssistant, Content: m.reply.Message, ActionType: m.reply.ActionType},
		)
		a.status = ""
		if m.reply.ActionType == api.ActionTransaction && m.reply.Transaction != nil {
			res := *m.reply.Transaction
			return a, func() tea.Msg { return a.draftFrom(res) }
		}
	case historyMsg:
		a.chat = []api.ChatMessage(m)
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = describe(m.err)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(m, a.keys.ForceQuit) {
		return a, tea.Quit
	}
	if a.confirmReset {
		a.confirmReset = false
		if m.String() == "y" {
			a.status = "clearing cache..."
			return a, a.resetCmd()
		}
		a.status = ""
		return a, nil
	}
	if key.Matches(m, a.keys.NextView) {
		return a, a.switchTo(nextView(a.state))
	}
	if a.state == viewAssistant {
		return a.handleAssistantKey(m)
	}

	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Calendar):
		return a, a.switchTo(viewCalendar)
	case key.Matches(m, a.keys.Transactions):
		return a, a.switchTo(viewTransactions)
	case key.Matches(m, a.keys.Stats):
		return a, a.switchTo(viewStats)
	case key.Matches(m, a.keys.Assistant):
		return a, a.switchTo(viewAssistant)
	case key.Matches(m, a.keys.PrevMonth):
		return a, a.shiftMonth(-1)
	case key.Matches(m, a.keys.NextMonth):
		return a, a.shiftMonth(1)
	case key.Matches(m, a.keys.PrevYear):
		return a, a.scrollYear(-1)
	case key.Matches(m, a.keys.NextYear):
		return a, a.scrollYear(1)
	case key.Matches(m, a.keys.Refresh):
		if a.state == viewStats {
			return a, a.loadReport()
		}
		return a, a.loadMonth()
	case key.Matches(m, a.keys.Filter):
		a.cycleFilter()
	case key.Matches(m, a.keys.Reset):
		if a.services.Maintenance != nil {
			a.confirmReset = true
		}
	}

	switch a.state {
	case viewCalendar:
		switch {
		case key.Matches(m, a.keys.Left):
			return a, a.moveSelection(-1)
		case key.Matches(m, a.keys.Right):
			return a, a.moveSelection(1)
		case key.Matches(m, a.keys.Up):
			return a, a.moveSelection(-7)
		case key.Matches(m, a.keys.Down):
			return a, a.moveSelection(7)
		}
	case viewTransactions:
		txs := a.monthTransactions()
		switch {
		case key.Matches(m, a.keys.Up):
			if a.txCursor > 0 {
				a.txCursor--
			}
		case key.Matches(m, a.keys.Down):
			if a.txCursor < len(txs)-1 {
				a.txCursor++
			}
		case key.Matches(m, a.keys.Delete):
			if len(txs) > 0 && !a.offline {
				a.status = "deleting..."
				return a, a.deleteCmd(txs[a.txCursor].ID)
			}
		}
	case viewStats:
		if key.Matches(m, a.keys.Period) {
			a.period = a.period.Next()
			return a, a.loadReport()
		}
	}
	return a, nil
}

func (a *App) handleAssistantKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.draft != nil {
		switch {
		case key.Matches(m, a.keys.Confirm):
			a.status = "saving..."
			return a, a.confirmCmd(*a.draft)
		case key.Matches(m, a.keys.Cancel):
			a.draft = nil
			a.status = "draft discarded"
		case key.Matches(m, a.keys.ToggleType):
			typ := api.Income
			if a.draft.Type == api.Income {
				typ = api.Expense
			}
			d := a.services.Assistant.ChangeType(*a.draft, typ)
			a.draft = &d
		}
		return a, nil
	}

	switch {
	case key.Matches(m, a.keys.Back):
		a.input.Blur()
		a.state = viewCalendar
		return a, nil
	case key.Matches(m, a.keys.Submit):
		text := strings.TrimSpace(a.input.Value())
		a.input.Reset()
		switch {
		case text == "":
			return a, nil
		case text == ":clear":
			return a, a.clearHistoryCmd()
		case strings.HasPrefix(text, ":chat "):
			a.status = "thinking..."
			return a, a.chatCmd(strings.TrimSpace(strings.TrimPrefix(text, ":chat ")))
		}
		a.status = "reading..."
		return a, a.parseCmd(text)
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return a, cmd
}

func nextView(s appState) appState {
	for i, v := range viewOrder {
		if v == s {
			return viewOrder[(i+1)%len(viewOrder)]
		}
	}
	return viewCalendar
}

func (a *App) switchTo(s appState) tea.Cmd {
	prev := a.state
	a.state = s
	if prev == viewAssistant && s != viewAssistant {
		a.input.Blur()
	}
	switch s {
	case viewStats:
		return a.loadReport()
	case viewAssistant:
		cmds := []tea.Cmd{a.input.Focus()}
		if a.chat == nil && a.services.Assistant != nil {
			cmds = append(cmds, a.historyCmd())
		}
		return tea.Batch(cmds...)
	}
	return nil
}

// moveSelection moves the selected day, following it into the next or
// previous month.
func (a *App) moveSelection(days int) tea.Cmd {
	a.selected = a.selected.AddDate(0, 0, days)
	if a.selected.Year() == a.year && a.selected.Month() == a.month {
		return nil
	}
	a.year, a.month = a.selected.Year(), a.selected.Month()
	return a.loadMonth()
}

func (a *App) shiftMonth(delta int) tea.Cmd {
	a.year, a.month = calendar.Shift(a.year, a.month, delta)
	a.selected = time.Date(a.year, a.month, 1, 0, 0, 0, 0, a.tz)
	a.txCursor = 0
	if a.state == viewStats {
		return tea.Batch(a.loadMonth(), a.loadReport())
	}
	return a.loadMonth()
}

func (a *App) scrollYear(dir int) tea.Cmd {
	year := calendar.ScrollYear(a.today().Year(), a.year, dir)
	if year == a.year {
		return nil
	}
	return a.shiftMonth((year - a.year) * 12)
}

// cycleFilter steps through no filter and then each category.
func (a *App) cycleFilter() {
	if len(a.categories) == 0 {
		a.categoryFilter = 0
		return
	}
	next := int64(0)
	for i, c := range a.categories {
		if c.ID == a.categoryFilter {
			if i+1 < len(a.categories) {
				next = a.categories[i+1].ID
			}
			a.categoryFilter = next
			a.txCursor = 0
			return
		}
	}
	a.categoryFilter = a.categories[0].ID
	a.txCursor = 0
}

func (a *App) clampCursor() {
	if n := len(a.monthTransactions()); a.txCursor >= n {
		a.txCursor = max(0, n-1)
	}
}

// describe turns an error into a status line.
func describe(err error) string {
	var pf *service.ParseFailure
	var apiErr *api.Error
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		return "session expired, run `budgetbook login`"
	case errors.As(err, &pf):
		return "could not read that: " + pf.Message
	case errors.Is(err, service.ErrIncompleteDraft):
		return err.Error()
	case errors.As(err, &apiErr):
		return "error: " + apiErr.Message
	}
	return "error: " + err.Error()
}
