package controllers

import (
	"net/http"

	"github.com/davidrenteria/storefront-backend/api/middleware"
	"github.com/davidrenteria/storefront-backend/api/responses"
	"github.com/davidrenteria/storefront-backend/api/validators"
	checkoutsvc "github.com/davidrenteria/storefront-backend/internal/checkout"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName    string `json:"customer_name" validate:"required,min=2,max=120"`
	CustomerPhone   string `json:"customer_phone" validate:"required,min=5,max=40"`
	CustomerAddress string `json:"customer_address" validate:"required,min=5,max=500"`
}

// Checkout submits the session cart as an order. The cart is cleared only
// after the order was committed; a failed placement keeps it intact so the
// buyer can retry.
func Checkout(svc checkoutsvc.Service, carts cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := carts.Load(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}
		if current.IsEmpty() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
			return
		}

		order, err := svc.PlaceOrder(r.Context(), userID, checkoutsvc.PlaceOrderInput{
			Customer: checkoutsvc.CustomerInfo{
				Name:    body.CustomerName,
				Phone:   body.CustomerPhone,
				Address: body.CustomerAddress,
			},
			Lines:          current.Lines(),
			IdempotencyKey: middleware.IdempotencyKeyFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if cerr := carts.Clear(r.Context(), userID); cerr != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "user_id", userID.String()), "failed to clear cart after checkout")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
