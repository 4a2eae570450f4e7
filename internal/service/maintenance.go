package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/budgetbook/budgetbook/internal/database"
)

// MaintenanceService houses destructive actions on the local snapshot.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes the offline snapshot. It keeps the schema intact so the app can
// continue running; server data is untouched.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: cache not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"chat_messages",
			"transactions",
			"categories",
			"accounts",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
