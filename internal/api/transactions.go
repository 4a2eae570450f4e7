package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// TransactionService manages income and expense entries.
type TransactionService struct {
	c *Client
}

// PageOptions select one page of the transaction listing.
type PageOptions struct {
	Page      int
	Size      int
	AccountID int64 // zero means every account
}

// List returns one page, newest first.
func (s *TransactionService) List(ctx context.Context, opts PageOptions) (TransactionPage, error) {
	if opts.Size <= 0 {
		opts.Size = 20
	}
	q := url.Values{
		"page": {strconv.Itoa(opts.Page)},
		"size": {strconv.Itoa(opts.Size)},
	}
	if opts.AccountID > 0 {
		q.Set("accountId", strconv.FormatInt(opts.AccountID, 10))
	}
	var out TransactionPage
	err := s.c.get(ctx, "/transactions", q, &out)
	return out, err
}

// ListByDate returns every transaction dated on day. accountID narrows the
// result to one account; it is sent whenever non-nil, zero included.
func (s *TransactionService) ListByDate(ctx context.Context, day Date, accountID *int64) ([]Transaction, error) {
	q := url.Values{"date": {day.String()}}
	if accountID != nil {
		q.Set("accountId", strconv.FormatInt(*accountID, 10))
	}
	var out []Transaction
	if err := s.c.get(ctx, "/transactions", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TransactionService) Create(ctx context.Context, req TransactionCreateRequest) (Transaction, error) {
	var t Transaction
	err := s.c.send(ctx, http.MethodPost, "/transactions", req, &t)
	return t, err
}

func (s *TransactionService) Update(ctx context.Context, id int64, req TransactionUpdateRequest) (Transaction, error) {
	var t Transaction
	err := s.c.send(ctx, http.MethodPut, pathID("/transactions", id), req, &t)
	return t, err
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	return s.c.send(ctx, http.MethodDelete, pathID("/transactions", id), nil, nil)
}
