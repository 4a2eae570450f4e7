package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a cached account row.
type Account struct {
	ID        int64
	UserID    int64
	BankName  string
	Alias     string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
	SyncedAt  time.Time
}

// Category is a cached category row.
type Category struct {
	ID   int64
	Name string
	Type string
	Icon string
}

// Transaction is a cached transaction row.
type Transaction struct {
	ID              int64
	AccountID       int64
	AccountAlias    string
	AccountBankName string
	Type            string
	Amount          decimal.Decimal
	CategoryID      int64
	CategoryName    string
	Memo            string
	Date            time.Time
}

// ChatMessage is one line of the local conversation log. Payload holds the
// JSON of any proposed transaction, category or account.
type ChatMessage struct {
	ID         int64
	Role       string
	Content    string
	ActionType string
	Payload    string
	CreatedAt  time.Time
}

// CategoryTotal sums one category over a period.
type CategoryTotal struct {
	CategoryID   int64
	CategoryName string
	Total        decimal.Decimal
}

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
