package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/davidrenteria/storefront-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryListProducts_pagination(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	category := mustCreateTestCategory(t, db, "Beverages")
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		mustCreateTestProduct(t, db, category.ID, "Product", now.Add(-time.Duration(i)*time.Minute))
	}

	full, err := repo.ListProducts(context.Background(), ListProductsInput{
		Pagination: pagination.Params{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, full.Products, 5)
	assert.Empty(t, full.NextCursor)

	first, err := repo.ListProducts(context.Background(), ListProductsInput{
		Pagination: pagination.Params{Limit: 3},
	})
	require.NoError(t, err)
	require.Len(t, first.Products, 3)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListProducts(context.Background(), ListProductsInput{
		Pagination: pagination.Params{Limit: 3, Cursor: first.NextCursor},
	})
	require.NoError(t, err)
	require.Len(t, second.Products, 2)
	assert.Empty(t, second.NextCursor)

	// Pages are disjoint and together equal the unpaginated read.
	seen := map[string]bool{}
	for _, p := range append(first.Products, second.Products...) {
		require.False(t, seen[p.ID.String()], "product %s appeared twice", p.ID)
		seen[p.ID.String()] = true
	}
	require.Len(t, seen, len(full.Products))
	for i, p := range append(first.Products, second.Products...) {
		assert.Equal(t, full.Products[i].ID, p.ID)
	}
}

func TestRepositoryListProducts_categoryFilter(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	drinks := mustCreateTestCategory(t, db, "Drinks")
	snacks := mustCreateTestCategory(t, db, "Snacks")
	now := time.Now().UTC()
	mustCreateTestProduct(t, db, drinks.ID, "Cola", now)
	mustCreateTestProduct(t, db, snacks.ID, "Chips", now.Add(-time.Minute))

	list, err := repo.ListProducts(context.Background(), ListProductsInput{
		CategoryID: &drinks.ID,
		Pagination: pagination.Params{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Cola", list.Products[0].Name)
	assert.Equal(t, "Drinks", list.Products[0].CategoryName)
}

func TestRepositoryListProducts_newOnly(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	category := mustCreateTestCategory(t, db, "Featured")
	now := time.Now().UTC()
	fresh := mustCreateTestProduct(t, db, category.ID, "Fresh", now)
	fresh.IsNew = true
	require.NoError(t, db.Save(fresh).Error)
	mustCreateTestProduct(t, db, category.ID, "Old", now.Add(-time.Minute))

	list, err := repo.ListProducts(context.Background(), ListProductsInput{
		NewOnly:    true,
		Pagination: pagination.Params{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Fresh", list.Products[0].Name)
	assert.True(t, list.Products[0].IsNew)
}

func TestRepositoryCategoryRoundTrip(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	category := mustCreateTestCategory(t, db, "Bakery")
	mustCreateTestCategory(t, db, "Deli")

	loaded, err := repo.FindCategoryByID(context.Background(), category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bakery", loaded.Name)

	all, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Bakery", all[0].Name)
	assert.Equal(t, "Deli", all[1].Name)

	require.NoError(t, repo.DeleteCategory(context.Background(), category.ID))
	_, err = repo.FindCategoryByID(context.Background(), category.ID)
	require.Error(t, err)
}
