package checkout

import (
	"context"
	"fmt"

	"github.com/davidrenteria/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	reasonNotFound     = "product not found"
	reasonInsufficient = "insufficient stock"
)

// StockRequest asks for qty units of a product to be taken from stock.
type StockRequest struct {
	ProductID uuid.UUID
	Qty       int
}

// StockResult reports the outcome for a single request. Reserved is false
// with a Reason when the decrement did not happen.
type StockResult struct {
	ProductID uuid.UUID
	Reserved  bool
	Reason    string
}

// ReserveStock decrements stock for each request with a guarded update so a
// row can never go below zero, regardless of concurrent checkouts. It must
// run inside the transaction that creates the order; the caller aborts the
// transaction when any request was not reserved.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) ([]StockResult, error) {
	results := make([]StockResult, 0, len(requests))

	for _, req := range requests {
		if req.Qty < 1 {
			return nil, fmt.Errorf("reserve stock: qty must be >= 1 for product %s", req.ProductID)
		}

		res := tx.WithContext(ctx).Exec(
			"UPDATE products SET stock_quantity = stock_quantity - ? WHERE id = ? AND stock_quantity >= ?",
			req.Qty, req.ProductID, req.Qty,
		)
		if res.Error != nil {
			return nil, res.Error
		}

		if res.RowsAffected > 0 {
			results = append(results, StockResult{ProductID: req.ProductID, Reserved: true})
			continue
		}

		var count int64
		if err := tx.WithContext(ctx).Model(&models.Product{}).Where("id = ?", req.ProductID).Count(&count).Error; err != nil {
			return nil, err
		}
		reason := reasonInsufficient
		if count == 0 {
			reason = reasonNotFound
		}
		results = append(results, StockResult{ProductID: req.ProductID, Reason: reason})
	}

	return results, nil
}
