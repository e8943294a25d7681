package cart

import (
	"context"
	"testing"
	"time"

	redisclient "github.com/davidrenteria/storefront-backend/pkg/redis"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBackend struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryBackend) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryBackend) Get(_ context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", redisclient.ErrNotFound
	}
	return value, nil
}

func (m *memoryBackend) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
		delete(m.ttls, key)
	}
	return nil
}

type prefixKeyer struct{}

func (prefixKeyer) CartKey(userID string) string { return "sf:cart:" + userID }

func newTestStore(backend *memoryBackend) *Store {
	return &Store{
		backend: backend,
		keyer:   prefixKeyer{},
		ttl:     time.Hour,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	backend := newMemoryBackend()
	store := newTestStore(backend)
	userID := uuid.New()

	cart := New()
	cart.Add(testProduct("Cola", "2.50", 5), 2)
	require.NoError(t, store.Save(context.Background(), userID, cart))
	assert.Equal(t, time.Hour, backend.ttls["sf:cart:"+userID.String()])

	loaded, err := store.Load(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines(), 1)
	assert.Equal(t, 2, loaded.Lines()[0].Quantity)
	assert.True(t, loaded.Total().Equal(decimal.RequireFromString("5.00")))
}

func TestStoreLoadMissingReturnsEmptyCart(t *testing.T) {
	t.Parallel()

	store := newTestStore(newMemoryBackend())

	cart, err := store.Load(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestStoreClear(t *testing.T) {
	t.Parallel()

	backend := newMemoryBackend()
	store := newTestStore(backend)
	userID := uuid.New()

	cart := New()
	cart.Add(testProduct("Cola", "2.50", 5), 1)
	require.NoError(t, store.Save(context.Background(), userID, cart))
	require.NoError(t, store.Clear(context.Background(), userID))

	loaded, err := store.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}
