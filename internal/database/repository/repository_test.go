package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/budgetbook/budgetbook/internal/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestAccountReplace(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	repo := NewAccountRepo(openTestDB(t))
	synced := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Replace(ctx, []Account{
		{ID: 1, BankName: "KB", Alias: "main", Balance: decimal.RequireFromString("150000.50")},
		{ID: 2, BankName: "Shinhan", Balance: decimal.Zero},
	}, synced))
	require.NoError(t, repo.Replace(ctx, []Account{
		{ID: 2, BankName: "Shinhan", Balance: decimal.NewFromInt(7000)},
	}, synced))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(2), got[0].ID)
	require.True(t, decimal.NewFromInt(7000).Equal(got[0].Balance))
	require.True(t, synced.Equal(got[0].SyncedAt))
	require.True(t, got[0].CreatedAt.IsZero())
}

func TestCategoryReplaceByType(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	repo := NewCategoryRepo(openTestDB(t))
	now := time.Now()

	require.NoError(t, repo.Replace(ctx, "", []Category{
		{ID: 1, Name: "salary", Type: "INCOME"},
		{ID: 2, Name: "food", Type: "EXPENSE"},
		{ID: 3, Name: "cafe", Type: "EXPENSE"},
	}, now))
	// an EXPENSE-only refetch keeps INCOME rows
	require.NoError(t, repo.Replace(ctx, "EXPENSE", []Category{{ID: 2, Name: "meals", Type: "EXPENSE"}}, now))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "salary", all[0].Name)
	require.Equal(t, "meals", all[1].Name)

	expense, err := repo.List(ctx, "EXPENSE")
	require.NoError(t, err)
	require.Len(t, expense, 1)
}

func TestTransactionsRangeAndTotals(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	repo := NewTransactionRepo(openTestDB(t))
	loc := time.FixedZone("KST", 9*3600)
	now := time.Now()

	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, loc) }
	require.NoError(t, repo.Upsert(ctx, []Transaction{
		{ID: 1, AccountID: 1, Type: "EXPENSE", Amount: decimal.NewFromInt(8000), CategoryID: 10, CategoryName: "food", Date: day(3)},
		{ID: 2, AccountID: 1, Type: "EXPENSE", Amount: decimal.NewFromInt(4500), CategoryID: 11, CategoryName: "cafe", Date: day(4)},
		{ID: 3, AccountID: 2, Type: "EXPENSE", Amount: decimal.NewFromInt(12000), CategoryID: 10, CategoryName: "food", Date: day(20)},
		{ID: 4, AccountID: 1, Type: "INCOME", Amount: decimal.NewFromInt(3000000), CategoryID: 1, CategoryName: "salary", Date: day(25)},
		{ID: 5, AccountID: 1, Type: "EXPENSE", Amount: decimal.NewFromInt(999), CategoryID: 10, CategoryName: "food", Date: time.Date(2025, 4, 1, 0, 0, 0, 0, loc)},
	}, now))

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	march, err := repo.Between(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, march, 4)
	require.Equal(t, int64(4), march[0].ID, "newest first")

	totals, err := repo.SumByCategory(ctx, "EXPENSE", start, end)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	require.Equal(t, "food", totals[0].CategoryName)
	require.Equal(t, "20000", totals[0].Total.String())
	require.Equal(t, "4500", totals[1].Total.String())

	// refetching the month drops rows the server no longer has
	require.NoError(t, repo.ReplaceRange(ctx, start, end, []Transaction{
		{ID: 1, AccountID: 1, Type: "EXPENSE", Amount: decimal.NewFromInt(9000), CategoryID: 10, CategoryName: "food", Memo: "edited", Date: day(3)},
	}, now))
	march, err = repo.Between(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, march, 1)
	require.Equal(t, "edited", march[0].Memo)

	april, err := repo.Get(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, april)

	require.NoError(t, repo.Delete(ctx, 5))
	missing, err := repo.Get(ctx, 5)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestReplaceRangeKeepsRowsOnFailedWrite(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	repo := NewTransactionRepo(openTestDB(t))
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	now := time.Now()

	require.NoError(t, repo.Upsert(ctx, []Transaction{
		{ID: 1, AccountID: 1, Type: "EXPENSE", Amount: decimal.NewFromInt(5000), CategoryID: 2, CategoryName: "food", Date: start.AddDate(0, 0, 2)},
	}, now))

	err := repo.ReplaceRange(ctx, start, end, []Transaction{
		{ID: 2, AccountID: 1, Type: "EXPENSE", Amount: decimal.NewFromInt(1000), CategoryID: 2, Date: start.AddDate(0, 0, 3)},
		{ID: 3, AccountID: 1, Type: "TRANSFER", Amount: decimal.NewFromInt(1000), CategoryID: 2, Date: start.AddDate(0, 0, 4)},
	}, now)
	require.Error(t, err)

	june, err := repo.Between(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, june, 1)
	require.Equal(t, int64(1), june[0].ID)
}

func TestChatLog(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	repo := NewChatRepo(openTestDB(t))
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, content := range []string{"hi", "hello, how can I help?", "lunch 8000"} {
		role := "USER"
		if i%2 == 1 {
			role = "ASSISTANT"
		}
		_, err := repo.Append(ctx, ChatMessage{Role: role, Content: content, CreatedAt: at.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	last2, err := repo.Log(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last2, 2)
	require.Equal(t, "hello, how can I help?", last2[0].Content)
	require.Equal(t, "lunch 8000", last2[1].Content)

	all, err := repo.Log(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, repo.Clear(ctx))
	all, err = repo.Log(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, all)
}
