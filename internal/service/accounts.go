package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/database"
	"github.com/budgetbook/budgetbook/internal/database/repository"
	"github.com/budgetbook/budgetbook/internal/logging"
)

// AccountBook holds the most recently fetched account list. Every fetch
// replaces the list and notifies subscribers.
type AccountBook struct {
	API   AccountAPI
	Cache *repository.AccountRepo // nil disables the offline snapshot
	Log   *zap.Logger

	mu       sync.RWMutex
	accounts []api.Account
	loaded   bool
	subs     map[int]func([]api.Account)
	nextSub  int
}

func (b *AccountBook) log() *zap.Logger { return logging.OrNop(b.Log) }

// Accounts returns a copy of the latest list.
func (b *AccountBook) Accounts() []api.Account {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]api.Account(nil), b.accounts...)
}

// Loaded reports whether any list has been fetched or restored.
func (b *AccountBook) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Find looks an account up in the latest list.
func (b *AccountBook) Find(id int64) (api.Account, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return api.Account{}, false
}

// Total sums the balances of the latest list.
func (b *AccountBook) Total() decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sum := decimal.Zero
	for _, a := range b.accounts {
		sum = sum.Add(a.Balance)
	}
	return sum
}

// Load fetches accounts, optionally only those at bankName, and makes them the
// latest list. A filtered load replaces the list too.
func (b *AccountBook) Load(ctx context.Context, bankName string) ([]api.Account, error) {
	return b.fetch(ctx, api.AccountListOptions{BankName: bankName})
}

// ForceRefresh refetches the full list bypassing HTTP caches.
func (b *AccountBook) ForceRefresh(ctx context.Context) ([]api.Account, error) {
	return b.fetch(ctx, api.AccountListOptions{NoCache: true})
}

// First returns the first account, loading the list if nothing is held yet.
func (b *AccountBook) First(ctx context.Context) (api.Account, bool, error) {
	if !b.Loaded() {
		if _, err := b.Load(ctx, ""); err != nil {
			return api.Account{}, false, err
		}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.accounts) == 0 {
		return api.Account{}, false, nil
	}
	return b.accounts[0], true, nil
}

func (b *AccountBook) fetch(ctx context.Context, opts api.AccountListOptions) ([]api.Account, error) {
	accounts, err := b.API.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	b.set(accounts)
	if b.Cache != nil {
		rows := mapSlice(accounts, accountRow)
		if err := b.Cache.Replace(ctx, rows, database.Now()); err != nil {
			b.log().Warn("snapshot accounts", zap.Error(err))
		}
	}
	return b.Accounts(), nil
}

func (b *AccountBook) set(accounts []api.Account) {
	b.mu.Lock()
	b.accounts = append([]api.Account(nil), accounts...)
	b.loaded = true
	subs := make([]func([]api.Account), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(append([]api.Account(nil), accounts...))
	}
}

// Subscribe registers fn for every new list and returns a cancel func.
func (b *AccountBook) Subscribe(fn func([]api.Account)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func([]api.Account))
	}
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Restore seeds the list from the offline snapshot and reports how many
// accounts it found.
func (b *AccountBook) Restore(ctx context.Context) (int, error) {
	if b.Cache == nil {
		return 0, nil
	}
	rows, err := b.Cache.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore accounts: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	b.set(mapSlice(rows, accountFromRow))
	return len(rows), nil
}

// Create opens an account and refreshes the list.
func (b *AccountBook) Create(ctx context.Context, req api.AccountCreateRequest) (api.Account, error) {
	a, err := b.API.Create(ctx, req)
	if err != nil {
		return api.Account{}, fmt.Errorf("create account: %w", err)
	}
	b.refreshAfter(ctx, "create")
	return a, nil
}

// UpdateAlias renames an account and refreshes the list.
func (b *AccountBook) UpdateAlias(ctx context.Context, id int64, alias string) (api.Account, error) {
	a, err := b.API.UpdateAlias(ctx, id, alias)
	if err != nil {
		return api.Account{}, fmt.Errorf("rename account %d: %w", id, err)
	}
	b.refreshAfter(ctx, "rename")
	return a, nil
}

// Delete removes an account and refreshes the list.
func (b *AccountBook) Delete(ctx context.Context, id int64) error {
	if err := b.API.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	b.refreshAfter(ctx, "delete")
	return nil
}

// refreshAfter reloads the full list; the mutation already succeeded, so a
// failure here is only logged.
func (b *AccountBook) refreshAfter(ctx context.Context, op string) {
	if _, err := b.fetch(ctx, api.AccountListOptions{}); err != nil {
		b.log().Warn("refresh accounts after "+op, zap.Error(err))
	}
}
