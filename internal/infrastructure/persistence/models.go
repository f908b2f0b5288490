package persistence

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared/valueobject"
)

// SupplierModel is the persistence model for suppliers
type SupplierModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(200)"`
	Phone string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the model to the domain reference type
func (m *SupplierModel) ToDomain() purchasing.Supplier {
	return purchasing.Supplier{ID: m.ID, Name: m.Name, Email: m.Email, Phone: m.Phone}
}

// WarehouseModel is the persistence model for warehouses
type WarehouseModel struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	Name    string `gorm:"type:varchar(200);not null"`
	Address string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the model to the domain reference type
func (m *WarehouseModel) ToDomain() purchasing.Warehouse {
	return purchasing.Warehouse{ID: m.ID, Name: m.Name, Address: m.Address}
}

// ProductModel is the persistence model for products
type ProductModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"type:varchar(200);not null"`
	SKU      string `gorm:"column:sku;type:varchar(50);uniqueIndex"`
	Category string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to the domain reference type
func (m *ProductModel) ToDomain() purchasing.Product {
	return purchasing.Product{ID: m.ID, Name: m.Name, SKU: m.SKU, Category: m.Category}
}

// PurchaseOrderModel is the persistence model for purchase orders.
// OrderDate is kept as YYYY-MM-DD text so range filters compare lexically.
type PurchaseOrderModel struct {
	ID              int64                    `gorm:"primaryKey;autoIncrement"`
	PONumber        string                   `gorm:"column:po_number;type:varchar(50);not null;index"`
	SupplierID      int64                    `gorm:"not null;index"`
	WarehouseID     int64                    `gorm:"not null;index"`
	ShippingAddress string                   `gorm:"type:varchar(500)"`
	VatRate         int64                    `gorm:"not null"`
	OrderDate       string                   `gorm:"type:varchar(10);index"`
	Status          string                   `gorm:"type:varchar(20);not null;default:'Draft';index"`
	Memo            string                   `gorm:"type:text"`
	Subtotal        decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	VatAmount       decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal      decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	Items           []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt       time.Time                `gorm:"not null"`
	UpdatedAt       time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *purchasing.PurchaseOrder {
	order := &purchasing.PurchaseOrder{
		ID:              m.ID,
		PONumber:        m.PONumber,
		SupplierID:      m.SupplierID,
		WarehouseID:     m.WarehouseID,
		ShippingAddress: m.ShippingAddress,
		VatRate:         m.VatRate,
		OrderDate:       m.OrderDate,
		Status:          purchasing.Status(m.Status),
		Memo:            m.Memo,
		Items:           make([]purchasing.PurchaseOrderItem, len(m.Items)),
		Subtotal:        valueobject.NewAmount(m.Subtotal),
		VatAmount:       valueobject.NewAmount(m.VatAmount),
		GrandTotal:      valueobject.NewAmount(m.GrandTotal),
	}
	for i := range m.Items {
		order.Items[i] = m.Items[i].ToDomain()
	}
	return order
}

// PurchaseOrderModelFromDomain converts a domain order to its persistence
// model. Items keep their slice order through Position.
func PurchaseOrderModelFromDomain(order *purchasing.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		ID:              order.ID,
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID,
		WarehouseID:     order.WarehouseID,
		ShippingAddress: order.ShippingAddress,
		VatRate:         order.VatRate,
		OrderDate:       order.OrderDate,
		Status:          string(order.Status),
		Memo:            order.Memo,
		Subtotal:        order.Subtotal.Decimal(),
		VatAmount:       order.VatAmount.Decimal(),
		GrandTotal:      order.GrandTotal.Decimal(),
		Items:           make([]PurchaseOrderItemModel, len(order.Items)),
	}
	for i, item := range order.Items {
		m.Items[i] = PurchaseOrderItemModelFromDomain(order.ID, i, item)
	}
	return m
}

// PurchaseOrderItemModel is the persistence model for order line items
type PurchaseOrderItemModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"not null;index"`
	Position  int             `gorm:"not null"`
	ProductID int64           `gorm:"not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem
func (m *PurchaseOrderItemModel) ToDomain() purchasing.PurchaseOrderItem {
	return purchasing.PurchaseOrderItem{
		ID:        m.ID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: valueobject.NewAmount(m.UnitPrice),
		LineTotal: valueobject.NewAmount(m.LineTotal),
	}
}

// PurchaseOrderItemModelFromDomain converts a domain item at the given position.
// The item id is dropped; items are rewritten as a whole on every save.
func PurchaseOrderItemModelFromDomain(orderID int64, position int, item purchasing.PurchaseOrderItem) PurchaseOrderItemModel {
	return PurchaseOrderItemModel{
		OrderID:   orderID,
		Position:  position,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice.Decimal(),
		LineTotal: item.LineTotal.Decimal(),
	}
}

// AllModels returns every model the schema migration manages
func AllModels() []any {
	return []any{
		&SupplierModel{},
		&WarehouseModel{},
		&ProductModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
	}
}
