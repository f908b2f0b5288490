package purchasing

import "fmt"

// Supplier is read-only reference data
type Supplier struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Warehouse is read-only reference data
type Warehouse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Product is read-only reference data
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku,omitempty"`
	Category string `json:"category,omitempty"`
}

// ReferenceData holds the lookup sets loaded once per session.
// It is never mutated after construction.
type ReferenceData struct {
	suppliers  []Supplier
	warehouses []Warehouse
	products   []Product

	supplierByID  map[int64]Supplier
	warehouseByID map[int64]Warehouse
	productByID   map[int64]Product
}

// NewReferenceData indexes the given lookup sets
func NewReferenceData(suppliers []Supplier, warehouses []Warehouse, products []Product) *ReferenceData {
	rd := &ReferenceData{
		suppliers:     append([]Supplier(nil), suppliers...),
		warehouses:    append([]Warehouse(nil), warehouses...),
		products:      append([]Product(nil), products...),
		supplierByID:  make(map[int64]Supplier, len(suppliers)),
		warehouseByID: make(map[int64]Warehouse, len(warehouses)),
		productByID:   make(map[int64]Product, len(products)),
	}
	for _, s := range suppliers {
		rd.supplierByID[s.ID] = s
	}
	for _, w := range warehouses {
		rd.warehouseByID[w.ID] = w
	}
	for _, p := range products {
		rd.productByID[p.ID] = p
	}
	return rd
}

// Suppliers returns a copy of the supplier list
func (r *ReferenceData) Suppliers() []Supplier {
	return append([]Supplier(nil), r.suppliers...)
}

// Warehouses returns a copy of the warehouse list
func (r *ReferenceData) Warehouses() []Warehouse {
	return append([]Warehouse(nil), r.warehouses...)
}

// Products returns a copy of the product list
func (r *ReferenceData) Products() []Product {
	return append([]Product(nil), r.products...)
}

// Supplier looks up a supplier by id
func (r *ReferenceData) Supplier(id int64) (Supplier, bool) {
	s, ok := r.supplierByID[id]
	return s, ok
}

// Warehouse looks up a warehouse by id
func (r *ReferenceData) Warehouse(id int64) (Warehouse, bool) {
	w, ok := r.warehouseByID[id]
	return w, ok
}

// Product looks up a product by id
func (r *ReferenceData) Product(id int64) (Product, bool) {
	p, ok := r.productByID[id]
	return p, ok
}

// SupplierName resolves a display name, falling back to "Supplier <id>"
func (r *ReferenceData) SupplierName(id int64) string {
	if s, ok := r.supplierByID[id]; ok {
		return s.Name
	}
	return fmt.Sprintf("Supplier %d", id)
}

// WarehouseName resolves a display name, falling back to "Warehouse <id>"
func (r *ReferenceData) WarehouseName(id int64) string {
	if w, ok := r.warehouseByID[id]; ok {
		return w.Name
	}
	return fmt.Sprintf("Warehouse %d", id)
}

// ProductName resolves a display name, falling back to "Unknown Product"
func (r *ReferenceData) ProductName(id int64) string {
	if p, ok := r.productByID[id]; ok {
		return p.Name
	}
	return "Unknown Product"
}
