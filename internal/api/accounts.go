package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// AccountService manages bank accounts.
type AccountService struct {
	c *Client
}

// AccountListOptions narrow an account listing.
type AccountListOptions struct {
	BankName string
	// NoCache asks intermediaries for a fresh copy.
	NoCache bool
}

// List returns the user's accounts, optionally only those at one bank.
func (s *AccountService) List(ctx context.Context, opts AccountListOptions) ([]Account, error) {
	r := request{method: http.MethodGet, path: "/accounts"}
	if bank := strings.TrimSpace(opts.BankName); bank != "" {
		r.query = url.Values{"bankName": {bank}}
	}
	if opts.NoCache {
		r.header = noCache()
	}
	var out []Account
	if err := s.c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AccountService) Create(ctx context.Context, req AccountCreateRequest) (Account, error) {
	var a Account
	err := s.c.send(ctx, http.MethodPost, "/accounts", req, &a)
	return a, err
}

// UpdateAlias changes only the alias.
func (s *AccountService) UpdateAlias(ctx context.Context, id int64, alias string) (Account, error) {
	var a Account
	body := map[string]string{"alias": alias}
	err := s.c.send(ctx, http.MethodPut, pathID("/accounts", id), body, &a)
	return a, err
}

func (s *AccountService) Delete(ctx context.Context, id int64) error {
	return s.c.send(ctx, http.MethodDelete, pathID("/accounts", id), nil, nil)
}

func noCache() http.Header {
	h := http.Header{}
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	return h
}
