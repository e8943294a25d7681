package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/davidrenteria/storefront-backend/pkg/db/models"
	"github.com/davidrenteria/storefront-backend/pkg/enums"
	"github.com/davidrenteria/storefront-backend/pkg/migrate"
	"github.com/davidrenteria/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	for _, stmt := range migrate.SQLiteSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func createOrder(t *testing.T, repo *Repository, userID uuid.UUID, created time.Time, key *string) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          enums.OrderStatusPending,
		CustomerName:    "Test Customer",
		CustomerPhone:   "555-0100",
		CustomerAddress: "1 Test St",
		Total:           decimal.RequireFromString("20.00"),
		IdempotencyKey:  key,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	created1, err := repo.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	return created1
}

func TestRepositoryCreateOrderAssignsItemIDs(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createOrder(t, repo, uuid.New(), time.Now().UTC(), nil)
	require.NotEqual(t, uuid.Nil, order.ID)
	require.Len(t, order.Items, 1)
	assert.NotEqual(t, uuid.Nil, order.Items[0].ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	loaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	assert.True(t, loaded.Total.Equal(decimal.RequireFromString("20.00")))
}

func TestRepositoryIdempotencyKeyUnique(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	key := "checkout-abc"

	first := createOrder(t, repo, userID, time.Now().UTC(), &key)

	dup := &models.Order{
		UserID:          userID,
		Status:          enums.OrderStatusPending,
		CustomerName:    "Test Customer",
		CustomerPhone:   "555-0100",
		CustomerAddress: "1 Test St",
		Total:           decimal.RequireFromString("20.00"),
		IdempotencyKey:  &key,
	}
	_, err := repo.CreateOrder(context.Background(), dup)
	require.Error(t, err)

	found, err := repo.FindByIdempotencyKey(context.Background(), userID, key)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestRepositoryListByUser_pagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	otherID := uuid.New()

	now := time.Now().UTC()
	newest := createOrder(t, repo, userID, now, nil)
	middle := createOrder(t, repo, userID, now.Add(-time.Minute), nil)
	oldest := createOrder(t, repo, userID, now.Add(-2*time.Minute), nil)
	createOrder(t, repo, otherID, now, nil)

	first, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, newest.ID, first.Orders[0].ID)
	assert.Equal(t, middle.ID, first.Orders[1].ID)

	second, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, oldest.ID, second.Orders[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListAll_statusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	pending := createOrder(t, repo, uuid.New(), now, nil)
	confirmed := createOrder(t, repo, uuid.New(), now.Add(-time.Minute), nil)
	require.NoError(t, repo.UpdateStatus(context.Background(), confirmed.ID, enums.OrderStatusConfirmed))

	status := enums.OrderStatusConfirmed
	list, err := repo.ListAll(context.Background(), pagination.Params{Limit: 10}, &status)
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, confirmed.ID, list.Orders[0].ID)

	all, err := repo.ListAll(context.Background(), pagination.Params{Limit: 10}, nil)
	require.NoError(t, err)
	assert.Len(t, all.Orders, 2)
	assert.Equal(t, pending.ID, all.Orders[0].ID)
}
