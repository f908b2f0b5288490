package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/shared/valueobject"
	"github.com/erp/purchasing/internal/infrastructure/config"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := NewDatabase(config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		DSN:      ":memory:",
		LogLevel: "silent",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

func newOrder(poNumber string, status purchasing.Status, orderDate string) *purchasing.PurchaseOrder {
	order := &purchasing.PurchaseOrder{
		PONumber:        poNumber,
		SupplierID:      1,
		WarehouseID:     2,
		ShippingAddress: "1 Dock Road",
		VatRate:         15,
		OrderDate:       orderDate,
		Status:          status,
		Items: []purchasing.PurchaseOrderItem{
			{ProductID: 10, Quantity: 2, UnitPrice: valueobject.MustAmount("10.00")},
			{ProductID: 11, Quantity: 1, UnitPrice: valueobject.MustAmount("5.50")},
		},
	}
	order.RecalculateTotals()
	return order
}

func seedOrders(t *testing.T, repo *GormPurchaseOrderRepository, orders ...*purchasing.PurchaseOrder) []*purchasing.PurchaseOrder {
	t.Helper()
	saved := make([]*purchasing.PurchaseOrder, len(orders))
	for i, o := range orders {
		created, err := repo.Create(context.Background(), o)
		require.NoError(t, err)
		saved[i] = created
	}
	return saved
}

func TestGormPurchaseOrderRepository_CreateAndFind(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newOrder("PO-1", purchasing.StatusApproved, "2024-03-01"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.Len(t, created.Items, 2)
	assert.NotZero(t, created.Items[0].ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-1", found.PONumber)
	assert.Equal(t, purchasing.StatusApproved, found.Status)
	assert.Equal(t, "2024-03-01", found.OrderDate)
	require.Len(t, found.Items, 2)
	assert.Equal(t, int64(10), found.Items[0].ProductID)
	assert.Equal(t, int64(11), found.Items[1].ProductID)
	assert.True(t, found.Items[1].UnitPrice.Equal(valueobject.MustAmount("5.50")))
	assert.True(t, found.Subtotal.Equal(valueobject.MustAmount("25.50")))
	assert.True(t, found.VatAmount.Equal(valueobject.MustAmount("3.83")))
	assert.True(t, found.GrandTotal.Equal(valueobject.MustAmount("29.33")))
}

func TestGormPurchaseOrderRepository_CreateDefaultsStatus(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(setupTestDB(t))

	created, err := repo.Create(context.Background(), newOrder("PO-1", "", "2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusDraft, created.Status)
}

func TestGormPurchaseOrderRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, shared.ErrorKindNotFound, shared.KindOf(err))
}

func TestGormPurchaseOrderRepository_List(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(setupTestDB(t))
	ctx := context.Background()

	memo := newOrder("PO-3", purchasing.StatusReceived, "2024-03-20")
	memo.Memo = "Urgent restock"
	seedOrders(t, repo,
		newOrder("PO-1", purchasing.StatusDraft, "2024-01-10"),
		newOrder("PO-2", purchasing.StatusApproved, "2024-02-15"),
		memo,
		newOrder("PO-4", purchasing.StatusDraft, "2024-04-01"),
		newOrder("PO-5", purchasing.StatusApproved, "2024-05-05"),
	)

	filter := purchasing.DefaultFilter(2)

	t.Run("pages in insertion order with the full total", func(t *testing.T) {
		f := filter
		f.Page = 2
		result, err := repo.List(ctx, purchasing.ListQuery{Filter: f})
		require.NoError(t, err)
		assert.Equal(t, 5, result.Total)
		require.Len(t, result.Orders, 2)
		assert.Equal(t, "PO-3", result.Orders[0].PONumber)
		assert.Equal(t, "PO-4", result.Orders[1].PONumber)
		assert.Len(t, result.Orders[0].Items, 2)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		f := filter
		f.Page = 9
		result, err := repo.List(ctx, purchasing.ListQuery{Filter: f})
		require.NoError(t, err)
		assert.Equal(t, 5, result.Total)
		assert.Empty(t, result.Orders)
	})

	t.Run("search is case insensitive across text fields", func(t *testing.T) {
		f := filter
		f.Search = "  urgent "
		result, err := repo.List(ctx, purchasing.ListQuery{Filter: f})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, "PO-3", result.Orders[0].PONumber)
	})

	t.Run("status filter", func(t *testing.T) {
		f := filter
		f.Status = "Approved"
		result, err := repo.List(ctx, purchasing.ListQuery{Filter: f})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
	})

	t.Run("All status is unfiltered", func(t *testing.T) {
		f := filter
		f.Status = purchasing.StatusAll
		result, err := repo.List(ctx, purchasing.ListQuery{Filter: f, Unpaged: true})
		require.NoError(t, err)
		assert.Len(t, result.Orders, 5)
	})

	t.Run("date range is inclusive and accepts timestamps", func(t *testing.T) {
		f := filter
		f.StartDate = "2024-02-15T08:00:00Z"
		f.EndDate = "2024-04-01"
		result, err := repo.List(ctx, purchasing.ListQuery{Filter: f, Unpaged: true})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
		assert.Len(t, result.Orders, 3)
	})

	t.Run("sort descending by whitelisted field", func(t *testing.T) {
		f := filter
		f.SortField = "orderDate"
		f.SortDirection = purchasing.SortDesc
		result, err := repo.List(ctx, purchasing.ListQuery{Filter: f})
		require.NoError(t, err)
		require.Len(t, result.Orders, 2)
		assert.Equal(t, "PO-5", result.Orders[0].PONumber)
		assert.Equal(t, "PO-4", result.Orders[1].PONumber)
	})

	t.Run("unknown sort field falls back to id", func(t *testing.T) {
		f := filter
		f.SortField = "id; DROP TABLE purchase_orders"
		result, err := repo.List(ctx, purchasing.ListQuery{Filter: f})
		require.NoError(t, err)
		assert.Equal(t, "PO-1", result.Orders[0].PONumber)
	})

	t.Run("invalid date is a validation error", func(t *testing.T) {
		f := filter
		f.EndDate = "01/02/2024"
		_, err := repo.List(ctx, purchasing.ListQuery{Filter: f})
		require.Error(t, err)
		assert.Equal(t, shared.ErrorKindValidation, shared.KindOf(err))
	})
}

func TestGormPurchaseOrderRepository_Update(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(setupTestDB(t))
	ctx := context.Background()
	saved := seedOrders(t, repo, newOrder("PO-1", purchasing.StatusDraft, "2024-03-01"))[0]

	t.Run("replaces fields and items", func(t *testing.T) {
		edit := saved.Clone()
		edit.Memo = "revised"
		edit.Status = purchasing.StatusApproved
		edit.Items = []purchasing.PurchaseOrderItem{
			{ProductID: 12, Quantity: 3, UnitPrice: valueobject.MustAmount("1.10")},
		}
		edit.RecalculateTotals()

		updated, err := repo.Update(ctx, saved.ID, &edit)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, updated.ID)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "revised", found.Memo)
		assert.Equal(t, purchasing.StatusApproved, found.Status)
		require.Len(t, found.Items, 1)
		assert.Equal(t, int64(12), found.Items[0].ProductID)
		assert.True(t, found.Subtotal.Equal(valueobject.MustAmount("3.30")))
	})

	t.Run("empty status keeps the stored one", func(t *testing.T) {
		edit := saved.Clone()
		edit.Status = ""
		_, err := repo.Update(ctx, saved.ID, &edit)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, purchasing.StatusApproved, found.Status)
	})

	t.Run("missing order is not found", func(t *testing.T) {
		edit := saved.Clone()
		_, err := repo.Update(ctx, 999, &edit)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPurchaseOrderRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()
	saved := seedOrders(t, repo,
		newOrder("PO-1", purchasing.StatusDraft, "2024-03-01"),
		newOrder("PO-2", purchasing.StatusDraft, "2024-03-02"),
	)

	require.NoError(t, repo.Delete(ctx, saved[0].ID))

	_, err := repo.FindByID(ctx, saved[0].ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var orphans int64
	require.NoError(t, db.Model(&PurchaseOrderItemModel{}).Where("order_id = ?", saved[0].ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	err = repo.Delete(ctx, saved[0].ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
