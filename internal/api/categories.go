package api

import (
	"context"
	"net/http"
	"net/url"
)

// CategoryService manages income and expense categories.
type CategoryService struct {
	c *Client
}

// List returns categories; an empty type returns both kinds.
func (s *CategoryService) List(ctx context.Context, typ TransactionType) ([]Category, error) {
	var q url.Values
	if typ != "" {
		q = url.Values{"type": {string(typ)}}
	}
	var out []Category
	if err := s.c.get(ctx, "/categories", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, req CategoryCreateRequest) (Category, error) {
	var c Category
	err := s.c.send(ctx, http.MethodPost, "/categories", req, &c)
	return c, err
}

func (s *CategoryService) Update(ctx context.Context, id int64, req CategoryUpdateRequest) (Category, error) {
	var c Category
	err := s.c.send(ctx, http.MethodPut, pathID("/categories", id), req, &c)
	return c, err
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.c.send(ctx, http.MethodDelete, pathID("/categories", id), nil, nil)
}
