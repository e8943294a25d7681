package checkout

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/davidrenteria/storefront-backend/internal/cart"
	"github.com/davidrenteria/storefront-backend/internal/orders"
	"github.com/davidrenteria/storefront-backend/pkg/config"
	"github.com/davidrenteria/storefront-backend/pkg/db"
	"github.com/davidrenteria/storefront-backend/pkg/db/models"
	"github.com/davidrenteria/storefront-backend/pkg/enums"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
	"github.com/davidrenteria/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerInfo is the delivery contact captured at checkout.
type CustomerInfo struct {
	Name    string
	Phone   string
	Address string
}

// PlaceOrderInput is one order placement attempt. Lines carry the price at
// selection time; that price is what the order charges. IdempotencyKey, when
// present, makes retries of the same attempt return the original order.
type PlaceOrderInput struct {
	Customer       CustomerInfo
	Lines          []cart.Line
	IdempotencyKey string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service executes the order placement sequence.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*orders.OrderDTO, error)
}

type service struct {
	tx           txRunner
	ordersRepo   *orders.Repository
	metrics      *metrics.CheckoutMetrics
	logg         *logger.Logger
	maxAttempts  int
	retryBackoff time.Duration
}

// NewService builds the checkout service.
func NewService(tx txRunner, ordersRepo *orders.Repository, m *metrics.CheckoutMetrics, logg *logger.Logger, cfg config.CheckoutConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	return &service{
		tx:           tx,
		ordersRepo:   ordersRepo,
		metrics:      m,
		logg:         logg,
		maxAttempts:  maxAttempts,
		retryBackoff: backoff,
	}, nil
}

// PlaceOrder runs the whole placement sequence in one transaction: every
// line's stock is decremented under a guard, then the order and its items
// are inserted. Any failure rolls the whole thing back, so no partial order
// or stock state is ever visible. Transient persistence failures are retried
// a bounded number of times; business rejections are not.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*orders.OrderDTO, error) {
	start := time.Now()

	if err := validateInput(userID, input); err != nil {
		s.metrics.IncRejected(string(pkgerrors.CodeValidation))
		return nil, err
	}

	var key *string
	if trimmed := strings.TrimSpace(input.IdempotencyKey); trimmed != "" {
		key = &trimmed
	}

	requests := make([]StockRequest, 0, len(input.Lines))
	total := decimal.Zero
	for _, line := range input.Lines {
		requests = append(requests, StockRequest{ProductID: line.ProductID, Qty: line.Quantity})
		total = total.Add(line.Subtotal())
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var created *models.Order
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			results, rerr := ReserveStock(ctx, tx, requests)
			if rerr != nil {
				return rerr
			}
			for _, result := range results {
				if result.Reserved {
					continue
				}
				details := map[string]any{"product_id": result.ProductID}
				if result.Reason == reasonNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, reasonNotFound).WithDetails(details)
				}
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, reasonInsufficient).WithDetails(details)
			}

			order := &models.Order{
				UserID:          userID,
				Status:          enums.OrderStatusPending,
				CustomerName:    strings.TrimSpace(input.Customer.Name),
				CustomerPhone:   strings.TrimSpace(input.Customer.Phone),
				CustomerAddress: strings.TrimSpace(input.Customer.Address),
				Total:           total,
				IdempotencyKey:  key,
			}
			for _, line := range input.Lines {
				order.Items = append(order.Items, models.OrderItem{
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
					UnitPrice: line.Price,
				})
			}

			var cerr error
			created, cerr = s.ordersRepo.WithTx(tx).CreateOrder(ctx, order)
			return cerr
		})

		if err == nil {
			s.metrics.IncPlaced()
			s.metrics.ObserveDuration(time.Since(start).Seconds())
			dto := orders.NewOrderDTO(created)
			return &dto, nil
		}

		// A duplicate idempotency key means this attempt already went
		// through; stock was not decremented twice. Hand back the
		// original order.
		if key != nil && db.IsUniqueViolation(err, "") {
			existing, ferr := s.ordersRepo.FindByIdempotencyKey(ctx, userID, *key)
			if ferr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, ferr, "load existing order")
			}
			dto := orders.NewOrderDTO(existing)
			return &dto, nil
		}

		if typed := pkgerrors.As(err); typed != nil && !pkgerrors.IsRetryable(err) {
			s.metrics.IncRejected(string(typed.Code()))
			return nil, err
		}

		lastErr = err
		if attempt < s.maxAttempts && db.IsTransient(err) {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"attempt": attempt,
				"user_id": userID.String(),
			}), "transient failure placing order, retrying")
			if serr := s.sleep(ctx, backoffFor(s.retryBackoff, attempt)); serr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, serr, "place order canceled")
			}
			continue
		}
		break
	}

	s.metrics.IncRejected(string(pkgerrors.CodeDependency))
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "place order")
}

func validateInput(userID uuid.UUID, input PlaceOrderInput) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if line.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
	}
	if strings.TrimSpace(input.Customer.Name) == "" ||
		strings.TrimSpace(input.Customer.Phone) == "" ||
		strings.TrimSpace(input.Customer.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name, phone, and address are required")
	}
	return nil
}

func backoffFor(base time.Duration, attempt int) time.Duration {
	d := base * time.Duration(attempt)
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	return d + jitter
}

func (s *service) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
