package cart

import (
	"github.com/davidrenteria/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product entry in a session cart. Price and Stock are snapshots
// taken when the product was added; checkout revalidates stock against the
// database.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

// Subtotal returns price times quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the session cart aggregate. Lines keep insertion order so the
// rendered cart is stable across mutations.
type Cart struct {
	Items []Line `json:"items"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add merges the product into the cart. The resulting quantity is clamped
// into [1, stock]; a product with zero stock is not added at all.
func (c *Cart) Add(product *models.Product, quantity int) {
	if product == nil || product.StockQuantity <= 0 {
		return
	}

	for i := range c.Items {
		if c.Items[i].ProductID == product.ID {
			c.Items[i].Name = product.Name
			c.Items[i].Price = product.Price
			c.Items[i].Stock = product.StockQuantity
			c.Items[i].ImageURL = product.ImageURL
			c.Items[i].Quantity = clampQuantity(c.Items[i].Quantity+quantity, product.StockQuantity)
			return
		}
	}

	c.Items = append(c.Items, Line{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.StockQuantity,
		Quantity:  clampQuantity(quantity, product.StockQuantity),
		ImageURL:  product.ImageURL,
	})
}

// SetQuantity sets the line quantity, clamped into [1, known stock]. Removing
// a line goes through Remove, not a zero quantity.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = clampQuantity(quantity, c.Items[i].Stock)
			return true
		}
	}
	return false
}

// Remove deletes the line for the product if present.
func (c *Cart) Remove(productID uuid.UUID) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Lines returns the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	return c.Items
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQuantity returns the summed quantity across all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Items {
		total += line.Quantity
	}
	return total
}

// Total returns the exact decimal sum of all line subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.Subtotal())
	}
	return total
}

func clampQuantity(quantity, stock int) int {
	if quantity < 1 {
		return 1
	}
	if stock > 0 && quantity > stock {
		return stock
	}
	return quantity
}
