package service

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/logging"
)

// IngestService imports transactions from CSV through the ledger.
//
// Columns: date, amount, category, memo. A negative amount is an expense and
// a positive one income. A first row starting with "date" is a header.
type IngestService struct {
	Ledger     *Ledger
	Categories *Categories
	Location   *time.Location
	Log        *zap.Logger

	// seen holds source hashes per month already on the server.
	seen map[string]map[string]bool
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

var dateLayouts = []string{"2006-01-02", "2006.01.02", "2006/01/02", "2006.1.2"}

// ImportCSV records every valid row against accountID. Rows matching an
// existing transaction (same account, day, amount and memo) are skipped.
func (s *IngestService) ImportCSV(ctx context.Context, r io.Reader, accountID int64) (IngestResult, error) {
	res := IngestResult{}
	if accountID == 0 {
		return res, errors.New("import: account required")
	}
	cats, err := s.Categories.List(ctx, "")
	if err != nil {
		return res, err
	}

	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}
		if len(rec) < 3 { // date, amount, category, [memo]
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected at least 3 columns", line))
			continue
		}

		date, err := s.parseDate(rec[0])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			continue
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[1]), ",", ""))
		if err != nil || amount.IsZero() {
			res.Errors = append(res.Errors, fmt.Errorf("line %d amount: invalid %q", line, rec[1]))
			continue
		}
		typ := api.Income
		if amount.IsNegative() {
			typ = api.Expense
		}
		amount = amount.Abs()

		cat, ok := matchCategory(cats, api.ParseResult{Type: typ, CategoryName: rec[2]})
		if !ok {
			res.Errors = append(res.Errors, fmt.Errorf("line %d category: no %s category like %q", line, strings.ToLower(string(typ)), rec[2]))
			continue
		}
		memo := ""
		if len(rec) > 3 {
			memo = strings.TrimSpace(rec[3])
		}

		hash := hashSource(accountID, date, amount, memo)
		dup, err := s.known(ctx, date, hash)
		if err != nil {
			s.finish(ctx, accountID, res)
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if dup {
			res.Skipped++
			continue
		}

		if _, err := s.Ledger.create(ctx, api.TransactionCreateRequest{
			AccountID:       accountID,
			Type:            typ,
			Amount:          amount,
			CategoryID:      cat.ID,
			Memo:            memo,
			TransactionDate: api.NewDateTime(date),
		}); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d create: %w", line, err))
			continue
		}
		s.seen[monthKey(date)][hash] = true
		res.Imported++
	}

	s.finish(ctx, accountID, res)
	return res, nil
}

// finish refreshes balances once for whatever was recorded and logs the run.
func (s *IngestService) finish(ctx context.Context, accountID int64, res IngestResult) {
	if res.Imported > 0 {
		s.Ledger.refreshBalances(ctx)
	}
	logging.OrNop(s.Log).Info("csv import",
		zap.Int64("account", accountID),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
}

func (s *IngestService) loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// parseDate reads a day and pins it at noon, matching manual entry.
func (s *IngestService) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc()); err == nil {
			return noon(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// known loads the server's transactions for date's month once, then answers
// from memory.
func (s *IngestService) known(ctx context.Context, date time.Time, hash string) (bool, error) {
	if s.seen == nil {
		s.seen = make(map[string]map[string]bool)
	}
	key := monthKey(date)
	hashes, ok := s.seen[key]
	if !ok {
		txs, err := s.Ledger.Month(ctx, date.Year(), date.Month())
		if err != nil {
			return false, err
		}
		hashes = make(map[string]bool, len(txs))
		for _, t := range txs {
			hashes[hashSource(t.AccountID, t.TransactionDate.In(s.loc()), t.Amount, t.Memo)] = true
		}
		s.seen[key] = hashes
	}
	return hashes[hash], nil
}

func monthKey(t time.Time) string { return t.Format("2006-01") }

func hashSource(accountID int64, day time.Time, amount decimal.Decimal, memo string) string {
	joined := strings.Join([]string{
		fmt.Sprint(accountID),
		day.Format(time.DateOnly),
		amount.Abs().String(),
		strings.TrimSpace(memo),
	}, "|")
	sum := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("%x", sum[:])
}
