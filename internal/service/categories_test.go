package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/database/repository"
)

func TestCategoriesLoadOnceAndInvalidate(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	fake := &fakeCategoryAPI{cats: sampleCategories()}
	c := &Categories{API: fake}

	expenses, err := c.List(ctx, api.Expense)
	require.NoError(t, err)
	require.Len(t, expenses, 3)
	incomes, err := c.List(ctx, api.Income)
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	require.Equal(t, 1, fake.listCalls())

	_, err = c.Create(ctx, api.CategoryCreateRequest{Name: "Bonus", Type: api.Income})
	require.NoError(t, err)
	require.Empty(t, c.ByType(""))

	incomes, err = c.List(ctx, api.Income)
	require.NoError(t, err)
	require.Len(t, incomes, 2)
	require.Equal(t, 2, fake.listCalls())

	name := "Transit"
	_, err = c.Update(ctx, 2, api.CategoryUpdateRequest{Name: &name})
	require.NoError(t, err)
	_, err = c.List(ctx, "")
	require.NoError(t, err)
	cat, ok := c.Find(2)
	require.True(t, ok)
	require.Equal(t, "Transit", cat.Name)

	require.NoError(t, c.Delete(ctx, 2))
	_, err = c.List(ctx, "")
	require.NoError(t, err)
	_, ok = c.Find(2)
	require.False(t, ok)
}

func TestCategoriesRejectUnknownType(t *testing.T) {
	t.Parallel()
	fake := &fakeCategoryAPI{}
	c := &Categories{API: fake}
	_, err := c.Create(testCtx(t), api.CategoryCreateRequest{Name: "Misc", Type: "TRANSFER"})
	require.Error(t, err)
	require.Empty(t, fake.cats)
}

func TestCategoriesRestoreSnapshot(t *testing.T) {
	t.Parallel()
	ctx := testCtx(t)
	repo := repository.NewCategoryRepo(openTestDB(t))
	require.NoError(t, (&Categories{API: &fakeCategoryAPI{cats: sampleCategories()}, Cache: repo}).Reload(ctx))

	offline := &Categories{API: &fakeCategoryAPI{}, Cache: repo}
	n, err := offline.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	incomes, err := offline.List(ctx, api.Income)
	require.NoError(t, err)
	require.Equal(t, []api.Category{{ID: 3, Name: "Salary", Type: api.Income}}, incomes)
}
