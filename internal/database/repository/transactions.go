package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetbook/budgetbook/internal/database"
)

// TransactionFilters narrows a cached range query.
type TransactionFilters struct {
	Start      time.Time // inclusive
	End        time.Time // exclusive; zero means open-ended
	AccountID  int64
	CategoryID int64
	Type       string
}

// TransactionRepo caches fetched transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// Upsert writes transactions by id.
func (r *TransactionRepo) Upsert(ctx context.Context, txs []Transaction, syncedAt time.Time) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return upsertTransactions(ctx, tx, txs, syncedAt)
	})
}

// ReplaceRange drops cached rows dated in [start, end) and writes txs, so a
// refetched month also forgets server-side deletions. Both steps share one
// transaction; a failed write keeps the previous rows.
func (r *TransactionRepo) ReplaceRange(ctx context.Context, start, end time.Time, txs []Transaction, syncedAt time.Time) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE transaction_date >= ? AND transaction_date < ?`, unix(start), unix(end)); err != nil {
			return err
		}
		return upsertTransactions(ctx, tx, txs, syncedAt)
	})
}

func upsertTransactions(ctx context.Context, tx *sql.Tx, txs []Transaction, syncedAt time.Time) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO transactions(
	 id, account_id, account_alias, account_bank_name, type, amount,
	 category_id, category_name, memo, transaction_date, synced_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 account_id=excluded.account_id,
	 account_alias=excluded.account_alias,
	 account_bank_name=excluded.account_bank_name,
	 type=excluded.type,
	 amount=excluded.amount,
	 category_id=excluded.category_id,
	 category_name=excluded.category_name,
	 memo=excluded.memo,
	 transaction_date=excluded.transaction_date,
	 synced_at=excluded.synced_at;
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, t := range txs {
		if _, err := stmt.ExecContext(ctx, t.ID, t.AccountID, t.AccountAlias, t.AccountBankName, t.Type,
			t.Amount, t.CategoryID, t.CategoryName, t.Memo, unix(t.Date), unix(syncedAt)); err != nil {
			return err
		}
	}
	return nil
}

// Delete forgets one cached transaction.
func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return err
}

// List returns cached transactions matching f, newest first.
func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	var where []string
	var args []interface{}

	if !f.Start.IsZero() {
		where = append(where, "transaction_date >= ?")
		args = append(args, unix(f.Start))
	}
	if !f.End.IsZero() {
		where = append(where, "transaction_date < ?")
		args = append(args, unix(f.End))
	}
	if f.AccountID != 0 {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}

	query := "SELECT id, account_id, account_alias, account_bank_name, type, amount, category_id, category_name, memo, transaction_date FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY transaction_date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Between is List over [start, end).
func (r *TransactionRepo) Between(ctx context.Context, start, end time.Time) ([]Transaction, error) {
	return r.List(ctx, TransactionFilters{Start: start, End: end})
}

// SumByCategory totals cached amounts per category for one type over
// [start, end), largest first. Amounts are summed as decimals in Go since
// sqlite would round them through REAL.
func (r *TransactionRepo) SumByCategory(ctx context.Context, typ string, start, end time.Time) ([]CategoryTotal, error) {
	txs, err := r.List(ctx, TransactionFilters{Start: start, End: end, Type: typ})
	if err != nil {
		return nil, err
	}
	byID := map[int64]*CategoryTotal{}
	var order []int64
	for _, t := range txs {
		ct, ok := byID[t.CategoryID]
		if !ok {
			ct = &CategoryTotal{CategoryID: t.CategoryID, CategoryName: t.CategoryName, Total: decimal.Zero}
			byID[t.CategoryID] = ct
			order = append(order, t.CategoryID)
		}
		ct.Total = ct.Total.Add(t.Amount)
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

func (r *TransactionRepo) Get(ctx context.Context, id int64) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, account_id, account_alias, account_bank_name, type, amount, category_id, category_name, memo, transaction_date FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var date int64
	if err := row.Scan(&t.ID, &t.AccountID, &t.AccountAlias, &t.AccountBankName, &t.Type, &t.Amount,
		&t.CategoryID, &t.CategoryName, &t.Memo, &date); err != nil {
		return Transaction{}, err
	}
	t.Date = fromUnix(date)
	return t, nil
}
