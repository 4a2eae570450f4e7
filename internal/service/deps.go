package service

import (
	"context"

	"github.com/budgetbook/budgetbook/internal/api"
)

// AccountAPI is the slice of the API the account book needs.
type AccountAPI interface {
	List(ctx context.Context, opts api.AccountListOptions) ([]api.Account, error)
	Create(ctx context.Context, req api.AccountCreateRequest) (api.Account, error)
	UpdateAlias(ctx context.Context, id int64, alias string) (api.Account, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryAPI is the slice of the API the category cache needs.
type CategoryAPI interface {
	List(ctx context.Context, typ api.TransactionType) ([]api.Category, error)
	Create(ctx context.Context, req api.CategoryCreateRequest) (api.Category, error)
	Update(ctx context.Context, id int64, req api.CategoryUpdateRequest) (api.Category, error)
	Delete(ctx context.Context, id int64) error
}

// TransactionAPI is the slice of the API the ledger needs.
type TransactionAPI interface {
	List(ctx context.Context, opts api.PageOptions) (api.TransactionPage, error)
	ListByDate(ctx context.Context, day api.Date, accountID *int64) ([]api.Transaction, error)
	Create(ctx context.Context, req api.TransactionCreateRequest) (api.Transaction, error)
	Update(ctx context.Context, id int64, req api.TransactionUpdateRequest) (api.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// StatisticsAPI is the slice of the API the dashboard needs.
type StatisticsAPI interface {
	Monthly(ctx context.Context, year, month int) (api.MonthlyStatistics, error)
	Weekly(ctx context.Context, year, week int) (api.WeeklyStatistics, error)
	Yearly(ctx context.Context, year int) (api.YearlyStatistics, error)
}

// AssistantAPI is the slice of the API the assistant needs.
type AssistantAPI interface {
	ParseTransaction(ctx context.Context, text string) (api.ParseResult, error)
	Chat(ctx context.Context, message string) (api.ChatReply, error)
	History(ctx context.Context) ([]api.ChatMessage, error)
	SaveMessage(ctx context.Context, msg api.ChatMessage) (api.ChatMessage, error)
	ClearHistory(ctx context.Context) error
}

var (
	_ AccountAPI     = (*api.AccountService)(nil)
	_ CategoryAPI    = (*api.CategoryService)(nil)
	_ TransactionAPI = (*api.TransactionService)(nil)
	_ StatisticsAPI  = (*api.StatisticsService)(nil)
	_ AssistantAPI   = (*api.AIService)(nil)
)
