package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/database"
	"github.com/budgetbook/budgetbook/internal/database/repository"
	"github.com/budgetbook/budgetbook/internal/logging"
)

// Categories caches the category list. Mutations drop the cache so the next
// read refetches.
type Categories struct {
	API   CategoryAPI
	Cache *repository.CategoryRepo
	Log   *zap.Logger

	mu     sync.Mutex
	all    []api.Category
	loaded bool
}

func (c *Categories) log() *zap.Logger { return logging.OrNop(c.Log) }

// List returns categories of typ, or all of them for an empty typ.
func (c *Categories) List(ctx context.Context, typ api.TransactionType) ([]api.Category, error) {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if !loaded {
		if err := c.Reload(ctx); err != nil {
			return nil, err
		}
	}
	return c.ByType(typ), nil
}

// Reload fetches every category.
func (c *Categories) Reload(ctx context.Context) error {
	cats, err := c.API.List(ctx, "")
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	c.mu.Lock()
	c.all, c.loaded = cats, true
	c.mu.Unlock()

	if c.Cache != nil {
		if err := c.Cache.Replace(ctx, "", mapSlice(cats, categoryRow), database.Now()); err != nil {
			c.log().Warn("snapshot categories", zap.Error(err))
		}
	}
	return nil
}

// ByType filters the cached list without fetching.
func (c *Categories) ByType(typ api.TransactionType) []api.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []api.Category
	for _, cat := range c.all {
		if typ == "" || cat.Type == typ {
			out = append(out, cat)
		}
	}
	return out
}

// Find returns a cached category by id.
func (c *Categories) Find(id int64) (api.Category, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cat := range c.all {
		if cat.ID == id {
			return cat, true
		}
	}
	return api.Category{}, false
}

// Restore seeds the cache from the offline snapshot.
func (c *Categories) Restore(ctx context.Context) (int, error) {
	if c.Cache == nil {
		return 0, nil
	}
	rows, err := c.Cache.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("restore categories: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	c.mu.Lock()
	c.all, c.loaded = mapSlice(rows, categoryFromRow), true
	c.mu.Unlock()
	return len(rows), nil
}

// Invalidate forces the next List to refetch.
func (c *Categories) Invalidate() {
	c.mu.Lock()
	c.all, c.loaded = nil, false
	c.mu.Unlock()
}

func (c *Categories) Create(ctx context.Context, req api.CategoryCreateRequest) (api.Category, error) {
	if !req.Type.Valid() {
		return api.Category{}, fmt.Errorf("create category: invalid type %q", req.Type)
	}
	cat, err := c.API.Create(ctx, req)
	if err != nil {
		return api.Category{}, fmt.Errorf("create category: %w", err)
	}
	c.Invalidate()
	return cat, nil
}

func (c *Categories) Update(ctx context.Context, id int64, req api.CategoryUpdateRequest) (api.Category, error) {
	cat, err := c.API.Update(ctx, id, req)
	if err != nil {
		return api.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	c.Invalidate()
	return cat, nil
}

func (c *Categories) Delete(ctx context.Context, id int64) error {
	if err := c.API.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	c.Invalidate()
	return nil
}
