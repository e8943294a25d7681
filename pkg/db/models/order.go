package models

import (
	"time"

	"github.com/davidrenteria/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is created once at checkout; only its status changes afterwards.
// IdempotencyKey deduplicates client retries of the same checkout attempt;
// it is unique per user, so two customers may reuse the same key.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:idx_orders_user_idempotency_key,priority:1"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:pending"`
	CustomerName    string            `gorm:"column:customer_name;not null"`
	CustomerPhone   string            `gorm:"column:customer_phone;not null"`
	CustomerAddress string            `gorm:"column:customer_address;not null"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	IdempotencyKey  *string           `gorm:"column:idempotency_key;uniqueIndex:idx_orders_user_idempotency_key,priority:2"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime;index:idx_orders_created_at"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
