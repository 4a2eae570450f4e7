package repository

import (
	"context"
	"database/sql"
	"time"
)

// CategoryRepo caches categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Replace swaps the cached categories. A non-empty typ only replaces rows of
// that type, so a filtered fetch does not erase the other kind.
func (r *CategoryRepo) Replace(ctx context.Context, typ string, cats []Category, syncedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if typ == "" {
		_, err = tx.ExecContext(ctx, `DELETE FROM categories`)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE type = ?`, typ)
	}
	if err != nil {
		return err
	}
	for _, c := range cats {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO categories(id, name, type, icon, synced_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 name=excluded.name,
		 type=excluded.type,
		 icon=excluded.icon,
		 synced_at=excluded.synced_at;
		`, c.ID, c.Name, c.Type, c.Icon, unix(syncedAt)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns cached categories; an empty typ returns both kinds.
func (r *CategoryRepo) List(ctx context.Context, typ string) ([]Category, error) {
	query := `SELECT id, name, type, icon FROM categories`
	var args []interface{}
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, typ)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Icon); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
