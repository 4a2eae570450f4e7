package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/database"
	"github.com/budgetbook/budgetbook/internal/database/repository"
	"github.com/budgetbook/budgetbook/internal/logging"
)

const (
	monthPageSize = 1000
	maxMonthPages = 50
)

// Ledger reads and writes transactions. Every successful write refreshes the
// account book so balances match the server.
type Ledger struct {
	API      TransactionAPI
	Accounts *AccountBook
	Cache    *repository.TransactionRepo // nil disables the offline snapshot
	Log      *zap.Logger
	Location *time.Location // month boundaries; time.Local when nil
}

func (l *Ledger) log() *zap.Logger { return logging.OrNop(l.Log) }

func (l *Ledger) loc() *time.Location {
	if l.Location == nil {
		return time.Local
	}
	return l.Location
}

// MonthRange is [first of month, first of next month) in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// Page returns one page of the listing.
func (l *Ledger) Page(ctx context.Context, opts api.PageOptions) (api.TransactionPage, error) {
	page, err := l.API.List(ctx, opts)
	if err != nil {
		return api.TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	return page, nil
}

// Month returns every transaction dated in year/month. The listing has no
// date filter, so pages of monthPageSize are walked and filtered locally.
func (l *Ledger) Month(ctx context.Context, year int, month time.Month) ([]api.Transaction, error) {
	start, end := MonthRange(year, month, l.loc())

	var out []api.Transaction
	for page := 0; page < maxMonthPages; page++ {
		p, err := l.API.List(ctx, api.PageOptions{Page: page, Size: monthPageSize})
		if err != nil {
			return nil, fmt.Errorf("load %d-%02d: %w", year, int(month), err)
		}
		for _, t := range p.Content {
			d := t.TransactionDate.In(l.loc())
			if !d.Before(start) && d.Before(end) {
				out = append(out, t)
			}
		}
		if !p.HasNext() {
			break
		}
	}

	if l.Cache != nil {
		if err := l.Cache.ReplaceRange(ctx, start, end, mapSlice(out, transactionRow), database.Now()); err != nil {
			l.log().Warn("snapshot transactions", zap.Error(err))
		}
	}
	return out, nil
}

// CachedMonth reads year/month from the offline snapshot.
func (l *Ledger) CachedMonth(ctx context.Context, year int, month time.Month) ([]api.Transaction, error) {
	if l.Cache == nil {
		return nil, nil
	}
	start, end := MonthRange(year, month, l.loc())
	rows, err := l.Cache.Between(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("cached %d-%02d: %w", year, int(month), err)
	}
	return mapSlice(rows, transactionFromRow), nil
}

// Day returns transactions dated on day, optionally for one account.
func (l *Ledger) Day(ctx context.Context, day api.Date, accountID *int64) ([]api.Transaction, error) {
	txs, err := l.API.ListByDate(ctx, day, accountID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", day, err)
	}
	return txs, nil
}

// Create records a transaction.
func (l *Ledger) Create(ctx context.Context, req api.TransactionCreateRequest) (api.Transaction, error) {
	t, err := l.create(ctx, req)
	if err != nil {
		return api.Transaction{}, err
	}
	l.refreshBalances(ctx)
	return t, nil
}

// create records without refreshing balances, for batches that refresh once.
func (l *Ledger) create(ctx context.Context, req api.TransactionCreateRequest) (api.Transaction, error) {
	t, err := l.API.Create(ctx, req)
	if err != nil {
		return api.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	l.cache(ctx, t)
	return t, nil
}

// Update applies a partial update.
func (l *Ledger) Update(ctx context.Context, id int64, req api.TransactionUpdateRequest) (api.Transaction, error) {
	t, err := l.API.Update(ctx, id, req)
	if err != nil {
		return api.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	l.cache(ctx, t)
	l.refreshBalances(ctx)
	return t, nil
}

// Delete removes a transaction.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	if err := l.API.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if l.Cache != nil {
		if err := l.Cache.Delete(ctx, id); err != nil {
			l.log().Warn("snapshot delete", zap.Int64("id", id), zap.Error(err))
		}
	}
	l.refreshBalances(ctx)
	return nil
}

func (l *Ledger) cache(ctx context.Context, t api.Transaction) {
	if l.Cache == nil {
		return
	}
	if err := l.Cache.Upsert(ctx, []repository.Transaction{transactionRow(t)}, database.Now()); err != nil {
		l.log().Warn("snapshot transaction", zap.Int64("id", t.ID), zap.Error(err))
	}
}

func (l *Ledger) refreshBalances(ctx context.Context) {
	if l.Accounts == nil {
		return
	}
	if _, err := l.Accounts.ForceRefresh(ctx); err != nil {
		l.log().Warn("refresh balances", zap.Error(err))
	}
}
