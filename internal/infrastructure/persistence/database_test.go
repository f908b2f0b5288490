package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/config"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
)

func TestNewDatabase(t *testing.T) {
	t.Run("opens and migrates sqlite", func(t *testing.T) {
		database, err := NewDatabase(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, nil)
		require.NoError(t, err)
		defer database.Close()

		assert.NoError(t, database.Ping())
		for _, table := range []string{"suppliers", "warehouses", "products", "purchase_orders", "purchase_order_items"} {
			assert.True(t, database.DB.Migrator().HasTable(table), table)
		}
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := NewDatabase(config.DatabaseConfig{Driver: "oracle"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		database, err := NewDatabase(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, nil)
		require.NoError(t, err)
		defer database.Close()

		boom := errors.New("boom")
		err = database.Transaction(func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&SupplierModel{Name: "Acme"}).Error)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int64
		require.NoError(t, database.DB.Model(&SupplierModel{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("records query spans when tracing is enabled", func(t *testing.T) {
		sr := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
		prev := otel.GetTracerProvider()
		otel.SetTracerProvider(tp)
		defer func() {
			otel.SetTracerProvider(prev)
			_ = tp.Shutdown(context.Background())
		}()

		database, err := NewDatabase(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, nil,
			WithTracing(telemetry.DBTracingConfig{Enabled: true}))
		require.NoError(t, err)
		defer database.Close()

		ctx, parent := otel.Tracer("test").Start(context.Background(), "GET /suppliers")
		_, err = NewGormReferenceRepository(database.DB).ListSuppliers(ctx)
		require.NoError(t, err)
		parent.End()

		var children int
		for _, span := range sr.Ended() {
			if span.Parent().SpanID() == parent.SpanContext().SpanID() {
				children++
			}
		}
		assert.Equal(t, 1, children)
	})
}

// newMockPurchaseOrderRepository creates a repository over a mocked postgres connection
func newMockPurchaseOrderRepository(t *testing.T) (*GormPurchaseOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPurchaseOrderRepository(gormDB), mock, mockDB
}

func TestGormPurchaseOrderRepository_Postgres(t *testing.T) {
	t.Run("find with no rows is not found", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(int64(7), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "po_number"}))

		_, err := repo.FindByID(context.Background(), 7)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver failure is passed through", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE id = \$1`).
			WithArgs(int64(7), 1).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.FindByID(context.Background(), 7)
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete of a missing row rolls back", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "purchase_orders" WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), 7)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSeeder_Seed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seeder := NewSeeder(db, SeedConfig{Suppliers: 4, Warehouses: 2, Products: 6, Orders: 12, Seed: 42, Now: now}, nil)

	inserted, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, inserted)

	refs := NewGormReferenceRepository(db)
	suppliers, err := refs.ListSuppliers(ctx)
	require.NoError(t, err)
	assert.Len(t, suppliers, 4)
	warehouses, err := refs.ListWarehouses(ctx)
	require.NoError(t, err)
	assert.Len(t, warehouses, 2)
	products, err := refs.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 6)
	assert.Equal(t, "SKU-00001", products[0].SKU)

	orders := NewGormPurchaseOrderRepository(db)
	result, err := orders.List(ctx, purchasing.ListQuery{Filter: purchasing.DefaultFilter(10), Unpaged: true})
	require.NoError(t, err)
	assert.Equal(t, 12, result.Total)
	for _, o := range result.Orders {
		assert.NotEmpty(t, o.Items)
		assert.GreaterOrEqual(t, o.OrderDate, "2024-03-01")
		assert.LessOrEqual(t, o.OrderDate, "2024-06-01")
		assert.True(t, o.Status.IsValid())
		recomputed := o.Clone()
		recomputed.RecalculateTotals()
		assert.True(t, o.StoredTotals().Equal(recomputed.StoredTotals()), o.PONumber)
	}

	again, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, again)
	count, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
}
