package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/database/repository"
)

type assistantFixture struct {
	ai       *fakeAssistantAPI
	accounts *fakeAccountAPI
	txs      *fakeTransactionAPI
	chat     *repository.ChatRepo
	a        *Assistant
}

var fixedNow = time.Date(2025, 6, 3, 8, 15, 0, 0, time.UTC)

func newAssistant(t *testing.T) assistantFixture {
	t.Helper()
	f := assistantFixture{
		ai:       &fakeAssistantAPI{},
		accounts: &fakeAccountAPI{accounts: []api.Account{{ID: 7, BankName: "KB"}, {ID: 8, BankName: "Toss"}}},
		txs:      &fakeTransactionAPI{},
		chat:     repository.NewChatRepo(openTestDB(t)),
	}
	book := &AccountBook{API: f.accounts}
	f.a = &Assistant{
		API:        f.ai,
		Accounts:   book,
		Categories: &Categories{API: &fakeCategoryAPI{cats: sampleCategories()}},
		Ledger:     &Ledger{API: f.txs, Accounts: book},
		ChatLog:    f.chat,
		Now:        func() time.Time { return fixedNow },
		Location:   time.UTC,
	}
	return f
}

func TestAssistantRejectsBlankPrompt(t *testing.T) {
	t.Parallel()
	f := newAssistant(t)
	_, err := f.a.Parse(testCtx(t), "   ")
	require.ErrorIs(t, err, ErrEmptyPrompt)
	_, err = f.a.Chat(testCtx(t), "")
	require.ErrorIs(t, err, ErrEmptyPrompt)
	require.Zero(t, f.ai.calls)
}

func TestAssistantParseFailure(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		msg, want string
	}{
		{"", "parsing failed"},
		{"금액을 찾을 수 없습니다", "금액을 찾을 수 없습니다"},
	} {
		f := newAssistant(t)
		f.ai.parse = api.ParseResult{Success: false, ErrorMessage: tc.msg}
		_, err := f.a.Parse(testCtx(t), "뭔가 샀어")
		var pf *ParseFailure
		require.True(t, errors.As(err, &pf))
		require.Equal(t, tc.want, pf.Error())
	}
}

func TestAssistantDraftMatchesCategory(t *testing.T) {
	t.Parallel()
	four := int64(4)
	for i, tc := range []struct {
		res    api.ParseResult
		wantID int64
	}{
		{api.ParseResult{Type: api.Expense, CategoryID: &four, CategoryName: "식비"}, 4},
		{api.ParseResult{Type: api.Expense, CategoryName: "교통"}, 2},
		{api.ParseResult{Type: api.Expense, CategoryName: "coffe"}, 4},
		{api.ParseResult{Type: api.Income, CategoryName: "salary"}, 3},
		{api.ParseResult{Type: api.Expense, CategoryName: "Salary"}, 0},
		{api.ParseResult{Type: api.Expense, CategoryName: "Entertainment"}, 0},
	} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			t.Parallel()
			f := newAssistant(t)
			tc.res.Success, tc.res.Amount = true, won(4500)
			d, err := f.a.Draft(testCtx(t), tc.res)
			require.NoError(t, err)
			require.Equal(t, tc.wantID, d.CategoryID)
			require.Equal(t, int64(7), d.AccountID)
			require.Equal(t, time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC), d.Date)
		})
	}
}

func TestAssistantChangeTypePicksFirstCategory(t *testing.T) {
	t.Parallel()
	f := newAssistant(t)
	d, err := f.a.Draft(testCtx(t), api.ParseResult{Type: api.Expense, CategoryName: "식비", Amount: won(9000)})
	require.NoError(t, err)
	require.Equal(t, int64(1), d.CategoryID)

	d = f.a.ChangeType(d, api.Income)
	require.Equal(t, api.Income, d.Type)
	require.Equal(t, int64(3), d.CategoryID)
	require.Equal(t, "Salary", d.CategoryName)
}

func TestAssistantConfirm(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	f := newAssistant(t)

	_, err := f.a.Confirm(ctx, TransactionDraft{Type: api.Expense, Amount: won(3000), CategoryID: 1})
	require.ErrorIs(t, err, ErrIncompleteDraft)
	_, err = f.a.Confirm(ctx, TransactionDraft{Type: api.Expense, Amount: won(0), CategoryID: 1, AccountID: 7})
	require.ErrorIs(t, err, ErrIncompleteDraft)
	require.Empty(t, f.txs.createdRequests())

	_, err = f.a.Confirm(ctx, TransactionDraft{
		Type:       api.Expense,
		Amount:     won(3000),
		Memo:       " bus ",
		AccountID:  7,
		CategoryID: 2,
		Date:       time.Date(2025, 6, 1, 23, 40, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	reqs := f.txs.createdRequests()
	require.Len(t, reqs, 1)
	require.Equal(t, "bus", reqs[0].Memo)
	require.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), reqs[0].TransactionDate.Time)
	require.Equal(t, 1, f.accounts.listCalls())
}

func TestAssistantDatesInConfiguredZone(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	seoul := time.FixedZone("KST", 9*3600)
	la := time.FixedZone("PDT", -7*3600)
	f := newAssistant(t)
	f.a.Location = seoul
	// 08:15 in Los Angeles is already the next morning in Seoul
	f.a.Now = func() time.Time { return time.Date(2025, 6, 3, 8, 15, 0, 0, la) }

	d, err := f.a.Draft(ctx, api.ParseResult{Type: api.Expense, Amount: won(4500), CategoryName: "Coffee", Success: true})
	require.NoError(t, err)
	require.True(t, time.Date(2025, 6, 4, 12, 0, 0, 0, seoul).Equal(d.Date))

	_, err = f.a.Confirm(ctx, d)
	require.NoError(t, err)
	reqs := f.txs.createdRequests()
	require.Len(t, reqs, 1)
	got := reqs[0].TransactionDate.Time.In(seoul)
	require.Equal(t, time.Date(2025, 6, 4, 12, 0, 0, 0, seoul), got)

	// a draft carried over from another zone keeps its Seoul day
	_, err = f.a.Confirm(ctx, TransactionDraft{
		Type: api.Expense, Amount: won(1000), AccountID: 7, CategoryID: 4,
		Date: time.Date(2025, 6, 4, 22, 0, 0, 0, la),
	})
	require.NoError(t, err)
	reqs = f.txs.createdRequests()
	require.Equal(t, time.Date(2025, 6, 5, 12, 0, 0, 0, seoul), reqs[1].TransactionDate.Time.In(seoul))
}

func TestAssistantFailedChatRecordsNothing(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	f := newAssistant(t)
	f.ai.chatErr = errOffline

	_, err := f.a.Chat(ctx, "hello")
	require.ErrorIs(t, err, errOffline)
	require.Empty(t, f.ai.saved)

	local, err := f.a.LocalHistory(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, local)
}

func TestAssistantChatRecordsBothSides(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	f := newAssistant(t)
	f.ai.reply = api.ChatReply{
		Message:     "커피 4,500원을 기록할까요?",
		ActionType:  api.ActionTransaction,
		Transaction: &api.ParseResult{Type: api.Expense, Amount: won(4500), CategoryName: "Coffee", Success: true},
	}

	reply, err := f.a.Chat(ctx, "커피 4500원")
	require.NoError(t, err)
	require.Equal(t, f.ai.reply.Message, reply.Message)

	require.Len(t, f.ai.saved, 2)
	require.Equal(t, api.RoleUser, f.ai.saved[0].Role)
	require.Equal(t, api.RoleAssistant, f.ai.saved[1].Role)

	local, err := f.a.LocalHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, local, 2)
	require.Equal(t, "커피 4500원", local[0].Content)
	require.NotNil(t, local[1].Transaction)
	require.Equal(t, "Coffee", local[1].Transaction.CategoryName)
}

func TestAssistantHistoryFallsBackToLocalLog(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	f := newAssistant(t)
	f.ai.reply = api.ChatReply{Message: "안녕하세요"}
	_, err := f.a.Chat(ctx, "안녕")
	require.NoError(t, err)

	f.ai.historyErr = errOffline
	msgs, err := f.a.History(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	f.ai.historyErr = fmt.Errorf("%w: refresh rejected", api.ErrSessionExpired)
	_, err = f.a.History(ctx)
	require.ErrorIs(t, err, api.ErrSessionExpired)

	require.NoError(t, f.a.ClearHistory(ctx))
	require.True(t, f.ai.cleared)
	msgs, err = f.a.LocalHistory(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
}
