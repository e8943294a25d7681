package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/davidrenteria/storefront-backend/pkg/config"
	redisclient "github.com/davidrenteria/storefront-backend/pkg/redis"
	"github.com/google/uuid"
)

type cartBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type cartKeyer interface {
	CartKey(userID string) string
}

// Store persists session carts in Redis. A cart lives as long as the user's
// session; every save refreshes the TTL.
type Store struct {
	backend cartBackend
	keyer   cartKeyer
	ttl     time.Duration
}

// NewStore constructs a cart store backed by Redis.
func NewStore(client *redisclient.Client, cfg config.CartConfig) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("cart session ttl must be positive")
	}
	return &Store{
		backend: client,
		keyer:   client,
		ttl:     cfg.SessionTTL,
	}, nil
}

// Load returns the user's cart, or an empty cart when none is stored.
func (s *Store) Load(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	raw, err := s.backend.Get(ctx, s.keyer.CartKey(userID.String()))
	if err != nil {
		if errors.Is(err, redisclient.ErrNotFound) {
			return New(), nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return &cart, nil
}

// Save writes the cart back and refreshes the session TTL.
func (s *Store) Save(ctx context.Context, userID uuid.UUID, cart *Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.backend.Set(ctx, s.keyer.CartKey(userID.String()), string(payload), s.ttl); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}

// Clear deletes the stored cart, used after checkout and on logout.
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.backend.Del(ctx, s.keyer.CartKey(userID.String())); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
