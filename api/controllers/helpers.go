package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/davidrenteria/storefront-backend/api/middleware"
	"github.com/davidrenteria/storefront-backend/internal/orders"
	"github.com/davidrenteria/storefront-backend/pkg/enums"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
)

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func requesterFromRequest(r *http.Request) (orders.Requester, error) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		return orders.Requester{}, err
	}
	role := enums.Role(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return orders.Requester{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "role context missing")
	}
	return orders.Requester{UserID: userID, Role: role}, nil
}
