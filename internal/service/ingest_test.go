package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/budgetbook/budgetbook/internal/api"
)

const importCSV = `date,amount,category,memo
2025-03-02,-4500,Coffee,latte
2025.03.03,"-12,000",식비,점심
2025/03/25,3000000,salary,March pay
03-04-2025,-100,Coffee,bad date
2025-03-05,-100,Gym,unknown category
2025-03-06,0,Coffee,zero
2025.03.03,-12000,식비,점심
`

func TestIngestCSV(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	accounts := &fakeAccountAPI{accounts: []api.Account{{ID: 7, BankName: "KB"}}}
	txs := &fakeTransactionAPI{txs: []api.Transaction{{
		ID:              1,
		AccountID:       7,
		Type:            api.Expense,
		Amount:          won(4500),
		Memo:            "latte",
		TransactionDate: api.NewDateTime(time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)),
	}}}
	svc := &IngestService{
		Ledger:     &Ledger{API: txs, Accounts: &AccountBook{API: accounts}, Location: time.UTC},
		Categories: &Categories{API: &fakeCategoryAPI{cats: sampleCategories()}},
		Location:   time.UTC,
	}

	res, err := svc.ImportCSV(ctx, strings.NewReader(importCSV), 7)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 3)
	require.Contains(t, res.Errors[0].Error(), "line 5 date")
	require.Contains(t, res.Errors[1].Error(), "line 6 category")
	require.Contains(t, res.Errors[2].Error(), "line 7 amount")

	reqs := txs.createdRequests()
	require.Len(t, reqs, 2)
	require.Equal(t, api.Expense, reqs[0].Type)
	require.True(t, reqs[0].Amount.Equal(won(12000)))
	require.Equal(t, int64(1), reqs[0].CategoryID)
	require.Equal(t, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), reqs[0].TransactionDate.Time)
	require.Equal(t, api.Income, reqs[1].Type)
	require.Equal(t, int64(3), reqs[1].CategoryID)

	require.Equal(t, 1, txs.lists)
	require.Equal(t, 1, accounts.listCalls())
}

func TestIngestRequiresAccount(t *testing.T) {
	t.Parallel()
	svc := &IngestService{}
	_, err := svc.ImportCSV(testCtx(t), strings.NewReader(importCSV), 0)
	require.Error(t, err)
}

func TestIngestRefreshesBalancesWhenStoppedEarly(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	accounts := &fakeAccountAPI{accounts: []api.Account{{ID: 7, BankName: "KB"}}}
	// March loads, the April listing fails
	txs := &fakeTransactionAPI{listFailAfter: 1}
	svc := &IngestService{
		Ledger:     &Ledger{API: txs, Accounts: &AccountBook{API: accounts}, Location: time.UTC},
		Categories: &Categories{API: &fakeCategoryAPI{cats: sampleCategories()}},
		Location:   time.UTC,
	}

	rows := "2025-03-02,-4500,Coffee,latte\n2025-04-01,-4500,Coffee,latte\n"
	res, err := svc.ImportCSV(ctx, strings.NewReader(rows), 7)
	require.ErrorIs(t, err, errOffline)
	require.Contains(t, err.Error(), "line 2")
	require.Equal(t, 1, res.Imported)
	require.Len(t, txs.createdRequests(), 1)
	require.Equal(t, 1, accounts.listCalls())
}
