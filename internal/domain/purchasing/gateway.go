package purchasing

import "context"

// ListQuery is a list request sent to the backend.
// When Unpaged is set the backend returns the full filtered set and paging
// is applied by the caller.
type ListQuery struct {
	Filter  Filter
	Unpaged bool
}

// ListResult is one response to a ListQuery. Total is the size of the full
// filtered set, not of Orders.
type ListResult struct {
	Orders []PurchaseOrder
	Total  int
}

// Gateway is the backend the purchasing core talks to
type Gateway interface {
	ListPurchaseOrders(ctx context.Context, query ListQuery) (*ListResult, error)
	GetPurchaseOrder(ctx context.Context, id int64) (*PurchaseOrder, error)
	CreatePurchaseOrder(ctx context.Context, order *PurchaseOrder) (*PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, id int64, order *PurchaseOrder) (*PurchaseOrder, error)
	DeletePurchaseOrder(ctx context.Context, id int64) error

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListVatRates(ctx context.Context) ([]int64, error)
}
