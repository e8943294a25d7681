package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/davidrenteria/storefront-backend/pkg/db/models"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes catalog browse and admin management operations.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput, image *ImageUpload) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput, image *ImageUpload) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type blobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo *Repository
	blob blobStore
	logg *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, blob blobStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, blob: blob, logg: logg}, nil
}

// ListProducts returns one page of the catalog.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	result, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return result, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

// CreateProduct validates the payload, stores the image first, and only then
// writes the product row so a listing never references a missing object.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput, image *ImageUpload) (*ProductDTO, error) {
	if err := validateProductValues(input.Price.IsNegative(), input.StockQuantity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := s.ensureCategoryExists(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		CategoryID:    input.CategoryID,
		IsNew:         input.IsNew,
	}

	if image != nil {
		key, url, err := s.uploadImage(ctx, product.ID, image)
		if err != nil {
			return nil, err
		}
		product.ImageKey = &key
		product.ImageURL = &url
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if product.ImageKey != nil {
			s.deleteImage(ctx, *product.ImageKey)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}

	return s.GetProduct(ctx, created.ID)
}

// UpdateProduct applies partial updates. A replacement image is uploaded
// before the record write; the prior object is removed only afterwards.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput, image *ImageUpload) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
		}
		product.StockQuantity = *input.StockQuantity
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.CategoryID != nil {
		if err := s.ensureCategoryExists(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
		product.Category = nil
	}
	if input.IsNew != nil {
		product.IsNew = *input.IsNew
	}

	var previousKey *string
	if image != nil {
		previousKey = product.ImageKey
		key, url, err := s.uploadImage(ctx, product.ID, image)
		if err != nil {
			return nil, err
		}
		product.ImageKey = &key
		product.ImageURL = &url
	}

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		if image != nil && product.ImageKey != nil {
			s.deleteImage(ctx, *product.ImageKey)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}

	if previousKey != nil && (product.ImageKey == nil || *previousKey != *product.ImageKey) {
		s.deleteImage(ctx, *previousKey)
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the row and its stored image. The image delete is
// best effort once the row is gone.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}

	if product.ImageKey != nil {
		s.deleteImage(ctx, *product.ImageKey)
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewCategoryDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	category, err := s.repo.CreateCategory(ctx, &models.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: input.Description,
	})
	if err != nil {
		if isDuplicateName(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}

	dto := NewCategoryDTO(category)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	category.Description = input.Description

	if _, err := s.repo.UpdateCategory(ctx, category); err != nil {
		if isDuplicateName(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
	}

	dto := NewCategoryDTO(category)
	return &dto, nil
}

// DeleteCategory refuses to remove a category that products still reference.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}

	count, err := s.repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has products")
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	return nil
}

func (s *service) ensureCategoryExists(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return nil
}

func (s *service) uploadImage(ctx context.Context, productID uuid.UUID, image *ImageUpload) (string, string, error) {
	if s.blob == nil {
		return "", "", pkgerrors.New(pkgerrors.CodeDependency, "image storage is not configured")
	}
	if len(image.Data) == 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "image data is empty")
	}

	key := imageKey(productID, image.Filename)
	url, err := s.blob.Upload(ctx, key, image.ContentType, image.Data)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}
	return key, url, nil
}

func (s *service) deleteImage(ctx context.Context, key string) {
	if s.blob == nil || key == "" {
		return
	}
	if err := s.blob.Delete(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "image_key", key), "deleting product image failed")
	}
}

func imageKey(productID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.NewString(), ext)
}

func validateProductValues(priceNegative bool, stock int) error {
	if priceNegative {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
	}
	return nil
}

func isDuplicateName(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
