package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
)

const purchaseOrderResource = "purchase order"

// GormPurchaseOrderRepository stores purchase orders for the development backend
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// List returns one page of the filtered orders and the size of the whole
// filtered set. Unpaged queries return every match.
func (r *GormPurchaseOrderRepository) List(ctx context.Context, query purchasing.ListQuery) (*purchasing.ListResult, error) {
	filter := query.Filter.Clamped()
	from, to, err := normalizedRange(filter)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&PurchaseOrderModel{}), filter, from, to).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count purchase orders: %w", err)
	}

	q := r.applyFilter(r.db.WithContext(ctx).Model(&PurchaseOrderModel{}), filter, from, to)
	column := ValidateSortField(filter.SortField, PurchaseOrderSortFields, "id")
	q = q.Order(column + " " + ValidateSortOrder(string(filter.SortDirection)))
	if column != "id" {
		q = q.Order("id ASC")
	}
	if !query.Unpaged {
		q = q.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var orderModels []PurchaseOrderModel
	if err := q.Preload("Items", orderedItems).Find(&orderModels).Error; err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}

	orders := make([]purchasing.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return &purchasing.ListResult{Orders: orders, Total: int(total)}, nil
}

// applyFilter applies search, status and date range without paging or ordering
func (r *GormPurchaseOrderRepository) applyFilter(q *gorm.DB, filter purchasing.Filter, from, to string) *gorm.DB {
	if search := filter.TrimmedSearch(); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(po_number) LIKE ? OR LOWER(shipping_address) LIKE ? OR LOWER(memo) LIKE ? OR LOWER(status) LIKE ? OR order_date LIKE ?)",
			pattern, pattern, pattern, pattern, pattern)
	}
	if status := filter.StatusFilter(); status != "" {
		q = q.Where("status = ?", status)
	}
	if from != "" {
		q = q.Where("order_date >= ?", from)
	}
	if to != "" {
		q = q.Where("order_date <= ?", to)
	}
	return q
}

func normalizedRange(filter purchasing.Filter) (string, string, error) {
	var violations []shared.Violation
	from, err := purchasing.NormalizeDate(filter.StartDate)
	if err != nil {
		violations = append(violations, shared.Violation{Field: "startDate", Code: "date", Message: err.Error()})
	}
	to, err := purchasing.NormalizeDate(filter.EndDate)
	if err != nil {
		violations = append(violations, shared.Violation{Field: "endDate", Code: "date", Message: err.Error()})
	}
	if len(violations) > 0 {
		return "", "", shared.NewValidationError(violations...)
	}
	return from, to, nil
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id int64) (*purchasing.PurchaseOrder, error) {
	model, err := r.find(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPurchaseOrderRepository) find(db *gorm.DB, id int64) (*PurchaseOrderModel, error) {
	var model PurchaseOrderModel
	if err := db.Preload("Items", orderedItems).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &shared.NotFoundError{Resource: purchaseOrderResource, ID: id}
		}
		return nil, err
	}
	return &model, nil
}

// Create stores a new order with a backend-assigned id. Totals are kept as
// sent; an empty status becomes Draft.
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *purchasing.PurchaseOrder) (*purchasing.PurchaseOrder, error) {
	model := PurchaseOrderModelFromDomain(order)
	model.ID = 0
	if model.Status == "" {
		model.Status = string(purchasing.StatusDraft)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return err
		}
		return saveItems(tx, model)
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	return model.ToDomain(), nil
}

// Update replaces the order stored under id, items included
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, id int64, order *purchasing.PurchaseOrder) (*purchasing.PurchaseOrder, error) {
	model := PurchaseOrderModelFromDomain(order)
	model.ID = id

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.find(tx, id)
		if err != nil {
			return err
		}
		model.CreatedAt = existing.CreatedAt
		if model.Status == "" {
			model.Status = existing.Status
		}
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&PurchaseOrderItemModel{}).Error; err != nil {
			return err
		}
		return saveItems(tx, model)
	})
	if err != nil {
		var notFound *shared.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update purchase order: %w", err)
	}
	return model.ToDomain(), nil
}

func saveItems(tx *gorm.DB, model *PurchaseOrderModel) error {
	if len(model.Items) == 0 {
		return nil
	}
	for i := range model.Items {
		model.Items[i].ID = 0
		model.Items[i].OrderID = model.ID
		model.Items[i].Position = i
	}
	return tx.Create(&model.Items).Error
}

// Delete removes the order and its items
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&PurchaseOrderModel{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("delete purchase order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &shared.NotFoundError{Resource: purchaseOrderResource, ID: id}
		}
		return tx.Where("order_id = ?", id).Delete(&PurchaseOrderItemModel{}).Error
	})
}

// Count returns the number of stored orders
func (r *GormPurchaseOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PurchaseOrderModel{}).Count(&count).Error
	return count, err
}
