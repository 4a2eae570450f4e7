package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/database/repository"
	"github.com/budgetbook/budgetbook/internal/logging"
)

// maxCategoryDistance bounds the fuzzy match between the assistant's
// category name and an existing category.
const maxCategoryDistance = 2

var (
	// ErrEmptyPrompt rejects blank assistant input before any request is made.
	ErrEmptyPrompt = errors.New("assistant: prompt is empty")
	// ErrIncompleteDraft means a draft lacks an account, a category or a
	// positive amount.
	ErrIncompleteDraft = errors.New("assistant: draft is incomplete")
)

// ParseFailure is the assistant declining to read a transaction out of text.
type ParseFailure struct {
	Message string
}

func (e *ParseFailure) Error() string { return e.Message }

// TransactionDraft is a parsed transaction awaiting confirmation.
type TransactionDraft struct {
	Type         api.TransactionType
	Amount       decimal.Decimal
	Memo         string
	AccountID    int64
	CategoryID   int64
	CategoryName string
	Date         time.Time
	Confidence   float64
}

// Assistant turns free text into transactions and relays chat.
type Assistant struct {
	API        AssistantAPI
	Accounts   *AccountBook
	Categories *Categories
	Ledger     *Ledger
	ChatLog    *repository.ChatRepo // nil keeps no local log
	Log        *zap.Logger
	Now        func() time.Time
	Location   *time.Location // calendar day of drafts; api.Location when nil
}

func (a *Assistant) log() *zap.Logger { return logging.OrNop(a.Log) }

func (a *Assistant) loc() *time.Location {
	if a.Location == nil {
		return api.Location
	}
	return a.Location
}

// now is the current time in the configured zone.
func (a *Assistant) now() time.Time {
	if a.Now == nil {
		return time.Now().In(a.loc())
	}
	return a.Now().In(a.loc())
}

// Parse sends text to the assistant. A declined parse is a *ParseFailure.
func (a *Assistant) Parse(ctx context.Context, text string) (api.ParseResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return api.ParseResult{}, ErrEmptyPrompt
	}
	res, err := a.API.ParseTransaction(ctx, text)
	if err != nil {
		return api.ParseResult{}, fmt.Errorf("parse transaction: %w", err)
	}
	if !res.Success {
		msg := strings.TrimSpace(res.ErrorMessage)
		if msg == "" {
			msg = "parsing failed"
		}
		return res, &ParseFailure{Message: msg}
	}
	a.log().Debug("parsed transaction",
		zap.String("type", string(res.Type)),
		zap.String("amount", res.Amount.String()),
		zap.String("category", res.CategoryName),
		zap.Float64("confidence", res.Confidence),
	)
	return res, nil
}

// Draft prepares res for confirmation: the first account, noon today, and the
// category the assistant named when one can be matched.
func (a *Assistant) Draft(ctx context.Context, res api.ParseResult) (TransactionDraft, error) {
	d := TransactionDraft{
		Type:       res.Type,
		Amount:     res.Amount,
		Memo:       res.Memo,
		Confidence: res.Confidence,
		Date:       noon(a.now()),
	}

	acct, ok, err := a.Accounts.First(ctx)
	if err != nil {
		return TransactionDraft{}, err
	}
	if ok {
		d.AccountID = acct.ID
	}

	cats, err := a.Categories.List(ctx, "")
	if err != nil {
		return TransactionDraft{}, err
	}
	if cat, ok := matchCategory(cats, res); ok {
		d.CategoryID, d.CategoryName = cat.ID, cat.Name
	}
	return d, nil
}

// matchCategory prefers the id the assistant returned, then an exact name of
// the same type, then the closest same-type name within maxCategoryDistance.
func matchCategory(cats []api.Category, res api.ParseResult) (api.Category, bool) {
	if res.CategoryID != nil {
		for _, c := range cats {
			if c.ID == *res.CategoryID {
				return c, true
			}
		}
	}
	name := strings.TrimSpace(res.CategoryName)
	if name == "" {
		return api.Category{}, false
	}
	for _, c := range cats {
		if c.Name == name && c.Type == res.Type {
			return c, true
		}
	}

	best, bestDist := api.Category{}, maxCategoryDistance+1
	for _, c := range cats {
		if c.Type != res.Type {
			continue
		}
		if dist := levenshtein.ComputeDistance(strings.ToLower(c.Name), strings.ToLower(name)); dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best, bestDist <= maxCategoryDistance
}

// ChangeType switches d to typ and picks the first category of that type.
func (a *Assistant) ChangeType(d TransactionDraft, typ api.TransactionType) TransactionDraft {
	d.Type = typ
	d.CategoryID, d.CategoryName = 0, ""
	if cats := a.Categories.ByType(typ); len(cats) > 0 {
		d.CategoryID, d.CategoryName = cats[0].ID, cats[0].Name
	}
	return d
}

// Validate reports what keeps d from being saved.
func (d TransactionDraft) Validate() error {
	var missing []string
	if d.AccountID == 0 {
		missing = append(missing, "account")
	}
	if d.CategoryID == 0 {
		missing = append(missing, "category")
	}
	if d.Amount.LessThan(decimal.NewFromInt(1)) {
		missing = append(missing, "amount of at least 1")
	}
	if !d.Type.Valid() {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: needs %s", ErrIncompleteDraft, strings.Join(missing, ", "))
	}
	return nil
}

// Confirm saves d through the ledger, dated at noon of its day in the
// configured zone.
func (a *Assistant) Confirm(ctx context.Context, d TransactionDraft) (api.Transaction, error) {
	if err := d.Validate(); err != nil {
		return api.Transaction{}, err
	}
	date := a.now()
	if !d.Date.IsZero() {
		date = d.Date.In(a.loc())
	}
	return a.Ledger.Create(ctx, api.TransactionCreateRequest{
		AccountID:       d.AccountID,
		Type:            d.Type,
		Amount:          d.Amount,
		CategoryID:      d.CategoryID,
		Memo:            strings.TrimSpace(d.Memo),
		TransactionDate: api.NewDateTime(noon(date)),
	})
}

func noon(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}

// Chat sends message and, once the assistant answers, records both sides of
// the exchange on the server and in the local log. Failing to record is
// logged, not returned.
func (a *Assistant) Chat(ctx context.Context, message string) (api.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return api.ChatReply{}, ErrEmptyPrompt
	}
	sent := a.now()
	reply, err := a.API.Chat(ctx, message)
	if err != nil {
		return api.ChatReply{}, fmt.Errorf("chat: %w", err)
	}
	a.record(ctx, api.ChatMessage{Role: api.RoleUser, Content: message, Timestamp: api.NewDateTime(sent)})
	a.record(ctx, api.ChatMessage{
		Role:        api.RoleAssistant,
		Content:     reply.Message,
		ActionType:  reply.ActionType,
		Transaction: reply.Transaction,
		Category:    reply.Category,
		Account:     reply.Account,
		Timestamp:   api.NewDateTime(a.now()),
	})
	return reply, nil
}

func (a *Assistant) record(ctx context.Context, m api.ChatMessage) {
	if _, err := a.API.SaveMessage(ctx, m); err != nil {
		a.log().Warn("save chat message", zap.String("role", m.Role), zap.Error(err))
	}
	if a.ChatLog == nil {
		return
	}
	row := repository.ChatMessage{Role: m.Role, Content: m.Content, ActionType: m.ActionType, CreatedAt: m.Timestamp.Time}
	if m.Transaction != nil || m.Category != nil || m.Account != nil {
		payload, err := json.Marshal(struct {
			Transaction *api.ParseResult  `json:"transaction,omitempty"`
			Category    *api.CategoryData `json:"category,omitempty"`
			Account     *api.AccountData  `json:"account,omitempty"`
		}{m.Transaction, m.Category, m.Account})
		if err == nil {
			row.Payload = string(payload)
		}
	}
	if _, err := a.ChatLog.Append(ctx, row); err != nil {
		a.log().Warn("append chat log", zap.Error(err))
	}
}

// History returns the server-side conversation, falling back to the local log
// when the server cannot be reached.
func (a *Assistant) History(ctx context.Context) ([]api.ChatMessage, error) {
	msgs, err := a.API.History(ctx)
	if err == nil {
		return msgs, nil
	}
	if a.ChatLog == nil || errors.Is(err, api.ErrSessionExpired) {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	a.log().Warn("chat history unavailable, using local log", zap.Error(err))
	return a.LocalHistory(ctx, 0)
}

// LocalHistory reads the last limit messages of the local log.
func (a *Assistant) LocalHistory(ctx context.Context, limit int) ([]api.ChatMessage, error) {
	if a.ChatLog == nil {
		return nil, nil
	}
	rows, err := a.ChatLog.Log(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("local chat log: %w", err)
	}
	out := make([]api.ChatMessage, 0, len(rows))
	for _, r := range rows {
		m := api.ChatMessage{
			ID:         r.ID,
			Role:       r.Role,
			Content:    r.Content,
			ActionType: r.ActionType,
			Timestamp:  api.NewDateTime(r.CreatedAt),
		}
		if r.Payload != "" {
			_ = json.Unmarshal([]byte(r.Payload), &m)
		}
		out = append(out, m)
	}
	return out, nil
}

// ClearHistory empties the conversation on the server and locally.
func (a *Assistant) ClearHistory(ctx context.Context) error {
	if err := a.API.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	if a.ChatLog != nil {
		if err := a.ChatLog.Clear(ctx); err != nil {
			return fmt.Errorf("clear local chat log: %w", err)
		}
	}
	return nil
}
