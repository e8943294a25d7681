package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidrenteria/storefront-backend/pkg/enums"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Requester identifies who is asking, resolved from the access token.
type Requester struct {
	UserID uuid.UUID
	Role   enums.Role
}

// IsAdmin reports whether the requester holds the admin role.
func (r Requester) IsAdmin() bool {
	return r.Role == enums.RoleAdmin
}

// Service exposes order read and fulfillment operations. Order creation
// belongs to checkout.
type Service interface {
	GetOrder(ctx context.Context, requester Requester, orderID uuid.UUID) (*OrderDTO, error)
	ListMyOrders(ctx context.Context, requester Requester, params pagination.Params) (*OrderListResult, error)
	ListAllOrders(ctx context.Context, requester Requester, params pagination.Params, status *enums.OrderStatus) (*OrderListResult, error)
	UpdateStatus(ctx context.Context, requester Requester, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs an orders service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// GetOrder returns the order when the requester owns it or is an admin.
func (s *service) GetOrder(ctx context.Context, requester Requester, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	if order.UserID != requester.UserID && !requester.IsAdmin() {
		// Non-owners see the same 404 as a missing id.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	dto := NewOrderDTO(order)
	return &dto, nil
}

func (s *service) ListMyOrders(ctx context.Context, requester Requester, params pagination.Params) (*OrderListResult, error) {
	result, err := s.repo.ListByUser(ctx, requester.UserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return result, nil
}

func (s *service) ListAllOrders(ctx context.Context, requester Requester, params pagination.Params, status *enums.OrderStatus) (*OrderListResult, error) {
	if !requester.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	result, err := s.repo.ListAll(ctx, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return result, nil
}

// UpdateStatus advances the fulfillment status. Only forward single-step
// transitions are allowed.
func (s *service) UpdateStatus(ctx context.Context, requester Requester, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !requester.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}

	order.Status = next
	dto := NewOrderDTO(order)
	return &dto, nil
}
