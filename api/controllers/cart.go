package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/davidrenteria/storefront-backend/api/responses"
	"github.com/davidrenteria/storefront-backend/api/validators"
	"github.com/davidrenteria/storefront-backend/internal/cart"
	"github.com/davidrenteria/storefront-backend/pkg/db/models"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
)

type cartStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
	Save(ctx context.Context, userID uuid.UUID, c *cart.Cart) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type productFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type cartView struct {
	Items         []cart.Line     `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	Total         decimal.Decimal `json:"total"`
}

func newCartView(c *cart.Cart) cartView {
	view := cartView{
		Items:         c.Lines(),
		TotalQuantity: c.TotalQuantity(),
		Total:         c.Total(),
	}
	if view.Items == nil {
		view.Items = []cart.Line{}
	}
	return view
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type setCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// GetCart renders the session cart.
func GetCart(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := store.Load(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}

		responses.WriteSuccess(w, newCartView(current))
	}
}

// AddCartItem merges a product into the cart with a fresh price/stock snapshot.
func AddCartItem(store cartStore, products productFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.FindProductByID(r.Context(), body.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product"))
			return
		}
		if product.StockQuantity <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInsufficientStock, "product is out of stock"))
			return
		}

		current, err := store.Load(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}

		current.Add(product, body.Quantity)

		if err := store.Save(r.Context(), userID, current); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart"))
			return
		}

		responses.WriteSuccess(w, newCartView(current))
	}
}

// SetCartItemQuantity overwrites a line's quantity, clamped to known stock.
func SetCartItemQuantity(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setCartQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := store.Load(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}

		if !current.SetQuantity(productID, body.Quantity) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart"))
			return
		}

		if err := store.Save(r.Context(), userID, current); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart"))
			return
		}

		responses.WriteSuccess(w, newCartView(current))
	}
}

// RemoveCartItem drops a line from the cart.
func RemoveCartItem(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := store.Load(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}

		if !current.Remove(productID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart"))
			return
		}

		if err := store.Save(r.Context(), userID, current); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart"))
			return
		}

		responses.WriteSuccess(w, newCartView(current))
	}
}

// ClearCart discards the whole session cart.
func ClearCart(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart"))
			return
		}

		responses.WriteSuccess(w, newCartView(cart.New()))
	}
}
