package purchasing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/erp/purchasing/internal/domain/purchasing"
)

// MockGateway is a mock implementation of purchasing.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListPurchaseOrders(ctx context.Context, query purchasing.ListQuery) (*purchasing.ListResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.ListResult), args.Error(1)
}

func (m *MockGateway) GetPurchaseOrder(ctx context.Context, id int64) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockGateway) CreatePurchaseOrder(ctx context.Context, order *purchasing.PurchaseOrder) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockGateway) UpdatePurchaseOrder(ctx context.Context, id int64, order *purchasing.PurchaseOrder) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, id, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockGateway) DeletePurchaseOrder(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGateway) ListSuppliers(ctx context.Context) ([]purchasing.Supplier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchasing.Supplier), args.Error(1)
}

func (m *MockGateway) ListWarehouses(ctx context.Context) ([]purchasing.Warehouse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchasing.Warehouse), args.Error(1)
}

func (m *MockGateway) ListProducts(ctx context.Context) ([]purchasing.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchasing.Product), args.Error(1)
}

func (m *MockGateway) ListVatRates(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// withSearch matches list queries by search text
func withSearch(search string) any {
	return mock.MatchedBy(func(q purchasing.ListQuery) bool {
		return q.Filter.Search == search
	})
}

// withPage matches list queries by page
func withPage(page int) any {
	return mock.MatchedBy(func(q purchasing.ListQuery) bool {
		return q.Filter.Page == page
	})
}

func ordersNumbered(prefix string, n int) []purchasing.PurchaseOrder {
	orders := make([]purchasing.PurchaseOrder, n)
	for i := range orders {
		orders[i] = purchasing.PurchaseOrder{
			ID:       int64(i + 1),
			PONumber: prefix + "-" + string(rune('A'+i%26)),
			Status:   purchasing.StatusDraft,
			Items:    []purchasing.PurchaseOrderItem{},
		}
	}
	return orders
}
