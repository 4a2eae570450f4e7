package repository

import (
	"context"
	"database/sql"
	"time"
)

// AccountRepo caches the latest account list.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Replace swaps the cached set for accounts in one transaction.
func (r *AccountRepo) Replace(ctx context.Context, accounts []Account, syncedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO accounts(id, user_id, bank_name, alias, balance, created_at, updated_at, synced_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, a := range accounts {
		if _, err := stmt.ExecContext(ctx, a.ID, a.UserID, a.BankName, a.Alias, a.Balance,
			unix(a.CreatedAt), unix(a.UpdatedAt), unix(syncedAt)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, bank_name, alias, balance, created_at, updated_at, synced_at FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		var created, updated, synced int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.BankName, &a.Alias, &a.Balance, &created, &updated, &synced); err != nil {
			return nil, err
		}
		a.CreatedAt, a.UpdatedAt, a.SyncedAt = fromUnix(created), fromUnix(updated), fromUnix(synced)
		out = append(out, a)
	}
	return out, rows.Err()
}
