package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a storefront catalog listing. StockQuantity is the only
// field mutated outside admin CRUD; checkout decrements it under a
// transactional guard.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Description   string          `gorm:"column:description;not null;default:''"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	CategoryID    uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index"`
	Category      *Category       `gorm:"foreignKey:CategoryID"`
	ImageKey      *string         `gorm:"column:image_key"`
	ImageURL      *string         `gorm:"column:image_url"`
	IsNew         bool            `gorm:"column:is_new;not null;default:false"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_products_created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
