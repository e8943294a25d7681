package catalog

import (
	"time"

	"github.com/davidrenteria/storefront-backend/pkg/db/models"
	"github.com/davidrenteria/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListProductsInput captures the inputs needed to paginate/filter the catalog.
type ListProductsInput struct {
	CategoryID *uuid.UUID
	NewOnly    bool
	Pagination pagination.Params
}

// ProductListResult is one catalog page plus the continuation cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ProductDTO is the public shape of a catalog listing.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    uuid.UUID       `json:"category_id"`
	CategoryName  string          `json:"category_name,omitempty"`
	ImageURL      *string         `json:"image_url,omitempty"`
	IsNew         bool            `json:"is_new"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CategoryDTO is the public shape of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	CategoryID    uuid.UUID
	IsNew         bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	CategoryID    *uuid.UUID
	IsNew         *bool
}

// ImageUpload carries raw image bytes destined for blob storage.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CategoryInput holds the validated payload to create or update a category.
type CategoryInput struct {
	Name        string
	Description string
}

// NewProductDTO maps the persisted model into its public shape.
func NewProductDTO(product *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		StockQuantity: product.StockQuantity,
		CategoryID:    product.CategoryID,
		ImageURL:      product.ImageURL,
		IsNew:         product.IsNew,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
	if product.Category != nil {
		dto.CategoryName = product.Category.Name
	}
	return dto
}

// NewCategoryDTO maps the persisted model into its public shape.
func NewCategoryDTO(category *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
	}
}
