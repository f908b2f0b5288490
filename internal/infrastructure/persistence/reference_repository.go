package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/erp/purchasing/internal/domain/purchasing"
)

// GormReferenceRepository serves the read-only supplier, warehouse and product sets
type GormReferenceRepository struct {
	db *gorm.DB
}

// NewGormReferenceRepository creates a new GormReferenceRepository
func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{db: db}
}

// ListSuppliers returns every supplier ordered by id
func (r *GormReferenceRepository) ListSuppliers(ctx context.Context) ([]purchasing.Supplier, error) {
	return listAll(ctx, r.db, "suppliers", (*SupplierModel).ToDomain)
}

// ListWarehouses returns every warehouse ordered by id
func (r *GormReferenceRepository) ListWarehouses(ctx context.Context) ([]purchasing.Warehouse, error) {
	return listAll(ctx, r.db, "warehouses", (*WarehouseModel).ToDomain)
}

// ListProducts returns every product ordered by id
func (r *GormReferenceRepository) ListProducts(ctx context.Context) ([]purchasing.Product, error) {
	return listAll(ctx, r.db, "products", (*ProductModel).ToDomain)
}

func listAll[M any, D any](ctx context.Context, db *gorm.DB, what string, toDomain func(*M) D) ([]D, error) {
	var rows []M
	if err := db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	out := make([]D, len(rows))
	for i := range rows {
		out[i] = toDomain(&rows[i])
	}
	return out, nil
}

// IsEmpty reports whether no reference data has been stored yet
func (r *GormReferenceRepository) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&SupplierModel{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
