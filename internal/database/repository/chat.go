package repository

import (
	"context"
	"database/sql"
)

// ChatRepo keeps the local assistant conversation.
type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db} }

// Append stores m and returns its id.
func (r *ChatRepo) Append(ctx context.Context, m ChatMessage) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO chat_messages(role, content, action_type, payload, created_at)
	VALUES (?, ?, ?, ?, ?)`, m.Role, m.Content, m.ActionType, m.Payload, unix(m.CreatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Log returns the most recent limit messages in chronological order.
// limit <= 0 returns everything.
func (r *ChatRepo) Log(ctx context.Context, limit int) ([]ChatMessage, error) {
	query := `SELECT id, role, content, action_type, payload, created_at FROM (
	 SELECT * FROM chat_messages ORDER BY id DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	query += `) ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		var created int64
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.ActionType, &m.Payload, &created); err != nil {
			return nil, err
		}
		m.CreatedAt = fromUnix(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ChatRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages`)
	return err
}
