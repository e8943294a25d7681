package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubBlobStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
}

func (s *stubBlobStore) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, key)
	return "https://storage.example.com/" + key, nil
}

func (s *stubBlobStore) Delete(_ context.Context, key string) error {
	s.deletes = append(s.deletes, key)
	return nil
}

func newTestService(t *testing.T, db *gorm.DB, blob blobStore) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), blob, logger.New(logger.Options{
		ServiceName: "catalog-test",
		Level:       zerolog.Disabled,
	}))
	require.NoError(t, err)
	return svc
}

func TestServiceGetProduct_notFound(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newTestService(t, db, &stubBlobStore{})

	_, err := svc.GetProduct(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceCreateProduct_validation(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newTestService(t, db, &stubBlobStore{})
	category := mustCreateTestCategory(t, db, "Drinks")

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"negative price", CreateProductInput{Name: "Cola", Price: decimal.NewFromInt(-1), CategoryID: category.ID}},
		{"negative stock", CreateProductInput{Name: "Cola", Price: decimal.NewFromInt(1), StockQuantity: -1, CategoryID: category.ID}},
		{"empty name", CreateProductInput{Name: "  ", Price: decimal.NewFromInt(1), CategoryID: category.ID}},
		{"missing category", CreateProductInput{Name: "Cola", Price: decimal.NewFromInt(1), CategoryID: uuid.New()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.input, nil)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestServiceCreateProduct_uploadsImageBeforeRecord(t *testing.T) {
	db := setupCatalogTestDB(t)
	blob := &stubBlobStore{}
	svc := newTestService(t, db, blob)
	category := mustCreateTestCategory(t, db, "Drinks")

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:          "Cola",
		Price:         decimal.RequireFromString("1.50"),
		StockQuantity: 10,
		CategoryID:    category.ID,
	}, &ImageUpload{Filename: "cola.png", ContentType: "image/png", Data: []byte{1, 2, 3}})
	require.NoError(t, err)
	require.Len(t, blob.uploads, 1)
	require.NotNil(t, dto.ImageURL)
	assert.Contains(t, *dto.ImageURL, blob.uploads[0])
	assert.True(t, dto.Price.Equal(decimal.RequireFromString("1.50")))
}

func TestServiceCreateProduct_uploadFailureLeavesNoRecord(t *testing.T) {
	db := setupCatalogTestDB(t)
	blob := &stubBlobStore{uploadErr: fmt.Errorf("bucket unavailable")}
	svc := newTestService(t, db, blob)
	category := mustCreateTestCategory(t, db, "Drinks")

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Cola",
		Price:      decimal.NewFromInt(1),
		CategoryID: category.ID,
	}, &ImageUpload{Filename: "cola.png", ContentType: "image/png", Data: []byte{1}})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	list, err := svc.ListProducts(context.Background(), ListProductsInput{})
	require.NoError(t, err)
	assert.Empty(t, list.Products)
}

func TestServiceUpdateProduct_replacesImage(t *testing.T) {
	db := setupCatalogTestDB(t)
	blob := &stubBlobStore{}
	svc := newTestService(t, db, blob)
	category := mustCreateTestCategory(t, db, "Drinks")

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Cola",
		Price:      decimal.NewFromInt(2),
		CategoryID: category.ID,
	}, &ImageUpload{Filename: "v1.png", ContentType: "image/png", Data: []byte{1}})
	require.NoError(t, err)
	firstKey := blob.uploads[0]

	newName := "Cola Zero"
	updated, err := svc.UpdateProduct(context.Background(), created.ID, UpdateProductInput{
		Name: &newName,
	}, &ImageUpload{Filename: "v2.png", ContentType: "image/png", Data: []byte{2}})
	require.NoError(t, err)
	assert.Equal(t, "Cola Zero", updated.Name)
	require.Len(t, blob.uploads, 2)
	assert.Equal(t, []string{firstKey}, blob.deletes)
}

func TestServiceDeleteProduct_removesImage(t *testing.T) {
	db := setupCatalogTestDB(t)
	blob := &stubBlobStore{}
	svc := newTestService(t, db, blob)
	category := mustCreateTestCategory(t, db, "Drinks")

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Cola",
		Price:      decimal.NewFromInt(2),
		CategoryID: category.ID,
	}, &ImageUpload{Filename: "v1.png", ContentType: "image/png", Data: []byte{1}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), created.ID))
	assert.Equal(t, blob.uploads, blob.deletes)

	_, err = svc.GetProduct(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceDeleteCategory_blockedWhileReferenced(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newTestService(t, db, &stubBlobStore{})
	category := mustCreateTestCategory(t, db, "Drinks")
	mustCreateTestProduct(t, db, category.ID, "Cola", time.Now().UTC())

	err := svc.DeleteCategory(context.Background(), category.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	empty := mustCreateTestCategory(t, db, "Empty")
	require.NoError(t, svc.DeleteCategory(context.Background(), empty.ID))
}

func TestServiceCreateCategory_duplicateName(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newTestService(t, db, &stubBlobStore{})

	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Drinks"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(context.Background(), CategoryInput{Name: "Drinks"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}
