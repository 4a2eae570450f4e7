package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/database"
)

var errOffline = errors.New("offline")

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func won(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fakeAccountAPI struct {
	mu       sync.Mutex
	accounts []api.Account
	lists    int
	lastOpts api.AccountListOptions
	listErr  error
	nextID   int64
}

func (f *fakeAccountAPI) List(_ context.Context, opts api.AccountListOptions) ([]api.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	f.lastOpts = opts
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []api.Account
	for _, a := range f.accounts {
		if opts.BankName == "" || a.BankName == opts.BankName {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccountAPI) Create(_ context.Context, req api.AccountCreateRequest) (api.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a := api.Account{ID: 100 + f.nextID, BankName: req.BankName, Alias: req.Alias, Balance: decimal.Zero}
	if req.Balance != nil {
		a.Balance = *req.Balance
	}
	f.accounts = append(f.accounts, a)
	return a, nil
}

func (f *fakeAccountAPI) UpdateAlias(_ context.Context, id int64, alias string) (api.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			f.accounts[i].Alias = alias
			return f.accounts[i], nil
		}
	}
	return api.Account{}, &api.Error{Status: 404, Message: "account not found"}
}

func (f *fakeAccountAPI) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			f.accounts = append(f.accounts[:i], f.accounts[i+1:]...)
			return nil
		}
	}
	return &api.Error{Status: 404, Message: "account not found"}
}

func (f *fakeAccountAPI) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

type fakeCategoryAPI struct {
	mu    sync.Mutex
	cats  []api.Category
	lists int
}

func (f *fakeCategoryAPI) List(_ context.Context, typ api.TransactionType) ([]api.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []api.Category
	for _, c := range f.cats {
		if typ == "" || c.Type == typ {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryAPI) Create(_ context.Context, req api.CategoryCreateRequest) (api.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := api.Category{ID: int64(len(f.cats) + 1), Name: req.Name, Type: req.Type, Icon: req.Icon}
	f.cats = append(f.cats, c)
	return c, nil
}

func (f *fakeCategoryAPI) Update(_ context.Context, id int64, req api.CategoryUpdateRequest) (api.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cats {
		if f.cats[i].ID == id {
			if req.Name != nil {
				f.cats[i].Name = *req.Name
			}
			if req.Icon != nil {
				f.cats[i].Icon = *req.Icon
			}
			return f.cats[i], nil
		}
	}
	return api.Category{}, &api.Error{Status: 404}
}

func (f *fakeCategoryAPI) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cats {
		if f.cats[i].ID == id {
			f.cats = append(f.cats[:i], f.cats[i+1:]...)
			return nil
		}
	}
	return &api.Error{Status: 404}
}

func (f *fakeCategoryAPI) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func sampleCategories() []api.Category {
	return []api.Category{
		{ID: 1, Name: "식비", Type: api.Expense},
		{ID: 2, Name: "교통", Type: api.Expense},
		{ID: 3, Name: "Salary", Type: api.Income},
		{ID: 4, Name: "Coffee", Type: api.Expense},
	}
}

type fakeTransactionAPI struct {
	mu      sync.Mutex
	txs     []api.Transaction
	lists   int
	created []api.TransactionCreateRequest
	nextID  int64
	// listFailAfter makes every List call past the first n fail; 0 never fails
	listFailAfter int
}

func (f *fakeTransactionAPI) List(_ context.Context, opts api.PageOptions) (api.TransactionPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listFailAfter > 0 && f.lists > f.listFailAfter {
		return api.TransactionPage{}, errOffline
	}
	size := opts.Size
	if size <= 0 {
		size = 20
	}
	from := opts.Page * size
	to := min(from+size, len(f.txs))
	page := api.TransactionPage{
		TotalElements: int64(len(f.txs)),
		TotalPages:    (len(f.txs) + size - 1) / size,
		Size:          size,
		Number:        opts.Page,
	}
	if from < len(f.txs) {
		page.Content = append([]api.Transaction(nil), f.txs[from:to]...)
	}
	return page, nil
}

func (f *fakeTransactionAPI) ListByDate(_ context.Context, day api.Date, accountID *int64) ([]api.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []api.Transaction
	for _, t := range f.txs {
		if api.NewDate(t.TransactionDate.Time).String() != day.String() {
			continue
		}
		if accountID != nil && t.AccountID != *accountID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTransactionAPI) Create(_ context.Context, req api.TransactionCreateRequest) (api.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := api.Transaction{
		ID:              1000 + f.nextID,
		AccountID:       req.AccountID,
		Type:            req.Type,
		Amount:          req.Amount,
		CategoryID:      req.CategoryID,
		Memo:            req.Memo,
		TransactionDate: req.TransactionDate,
	}
	f.created = append(f.created, req)
	f.txs = append(f.txs, t)
	return t, nil
}

func (f *fakeTransactionAPI) Update(_ context.Context, id int64, req api.TransactionUpdateRequest) (api.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.txs {
		if f.txs[i].ID != id {
			continue
		}
		if req.Amount != nil {
			f.txs[i].Amount = *req.Amount
		}
		if req.Memo != nil {
			f.txs[i].Memo = *req.Memo
		}
		return f.txs[i], nil
	}
	return api.Transaction{}, &api.Error{Status: 404}
}

func (f *fakeTransactionAPI) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.txs {
		if f.txs[i].ID == id {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return &api.Error{Status: 404}
}

func (f *fakeTransactionAPI) createdRequests() []api.TransactionCreateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.TransactionCreateRequest(nil), f.created...)
}

type fakeStatisticsAPI struct {
	monthly api.MonthlyStatistics
	weekly  api.WeeklyStatistics
	yearly  api.YearlyStatistics
	err     error

	mu        sync.Mutex
	weekAsked [2]int
}

func (f *fakeStatisticsAPI) Monthly(_ context.Context, year, month int) (api.MonthlyStatistics, error) {
	if f.err != nil {
		return api.MonthlyStatistics{}, f.err
	}
	ms := f.monthly
	ms.Year, ms.Month = year, month
	return ms, nil
}

func (f *fakeStatisticsAPI) Weekly(_ context.Context, year, week int) (api.WeeklyStatistics, error) {
	f.mu.Lock()
	f.weekAsked = [2]int{year, week}
	f.mu.Unlock()
	return f.weekly, f.err
}

func (f *fakeStatisticsAPI) Yearly(_ context.Context, year int) (api.YearlyStatistics, error) {
	ys := f.yearly
	ys.Year = year
	return ys, f.err
}

type fakeAssistantAPI struct {
	mu         sync.Mutex
	parse      api.ParseResult
	reply      api.ChatReply
	history    []api.ChatMessage
	historyErr error
	chatErr    error
	saved      []api.ChatMessage
	calls      int
	cleared    bool
}

func (f *fakeAssistantAPI) ParseTransaction(context.Context, string) (api.ParseResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.parse, nil
}

func (f *fakeAssistantAPI) Chat(context.Context, string) (api.ChatReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.chatErr != nil {
		return api.ChatReply{}, f.chatErr
	}
	return f.reply, nil
}

func (f *fakeAssistantAPI) History(context.Context) ([]api.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history, f.historyErr
}

func (f *fakeAssistantAPI) SaveMessage(_ context.Context, m api.ChatMessage) (api.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, m)
	m.ID = int64(len(f.saved))
	return m, nil
}

func (f *fakeAssistantAPI) ClearHistory(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = true
	return nil
}
