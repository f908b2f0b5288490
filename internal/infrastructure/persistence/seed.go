package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared/valueobject"
)

// SeedConfig sizes the fake data set. A zero Seed picks a random one.
type SeedConfig struct {
	Suppliers  int
	Warehouses int
	Products   int
	Orders     int
	Seed       uint64
	Now        time.Time
}

// Seeder fills an empty database with fake reference data and orders
type Seeder struct {
	db     *gorm.DB
	cfg    SeedConfig
	faker  *gofakeit.Faker
	orders *GormPurchaseOrderRepository
	refs   *GormReferenceRepository
	logger *zap.Logger
}

// NewSeeder creates a seeder over db
func NewSeeder(db *gorm.DB, cfg SeedConfig, logger *zap.Logger) *Seeder {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		db:     db,
		cfg:    cfg,
		faker:  gofakeit.New(cfg.Seed),
		orders: NewGormPurchaseOrderRepository(db),
		refs:   NewGormReferenceRepository(db),
		logger: logger,
	}
}

// Seed inserts the fake data set unless reference data already exists.
// It reports whether anything was inserted.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	empty, err := s.refs.IsEmpty(ctx)
	if err != nil {
		return false, fmt.Errorf("check seed state: %w", err)
	}
	if !empty {
		s.logger.Debug("Reference data present, skipping seed")
		return false, nil
	}

	suppliers := make([]SupplierModel, s.cfg.Suppliers)
	for i := range suppliers {
		suppliers[i] = SupplierModel{Name: s.faker.Company(), Email: s.faker.Email(), Phone: s.faker.Phone()}
	}
	warehouses := make([]WarehouseModel, s.cfg.Warehouses)
	for i := range warehouses {
		warehouses[i] = WarehouseModel{Name: s.faker.City() + " Warehouse", Address: s.faker.Address().Address}
	}
	products := make([]ProductModel, s.cfg.Products)
	for i := range products {
		products[i] = ProductModel{
			Name:     s.faker.ProductName(),
			SKU:      fmt.Sprintf("SKU-%05d", i+1),
			Category: s.faker.ProductCategory(),
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createAll(tx, suppliers); err != nil {
			return err
		}
		if err := createAll(tx, warehouses); err != nil {
			return err
		}
		return createAll(tx, products)
	})
	if err != nil {
		return false, fmt.Errorf("seed reference data: %w", err)
	}

	if len(suppliers) > 0 && len(warehouses) > 0 && len(products) > 0 {
		for i := 0; i < s.cfg.Orders; i++ {
			order := s.fakeOrder(i, suppliers, warehouses, products)
			if _, err := s.orders.Create(ctx, order); err != nil {
				return false, fmt.Errorf("seed purchase orders: %w", err)
			}
		}
	}

	s.logger.Info("Seeded development data",
		zap.Int("suppliers", len(suppliers)),
		zap.Int("warehouses", len(warehouses)),
		zap.Int("products", len(products)),
		zap.Int("orders", s.cfg.Orders),
	)
	return true, nil
}

func createAll[M any](tx *gorm.DB, rows []M) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (s *Seeder) fakeOrder(n int, suppliers []SupplierModel, warehouses []WarehouseModel, products []ProductModel) *purchasing.PurchaseOrder {
	f := s.faker
	orderDate := f.DateRange(s.cfg.Now.AddDate(0, -3, 0), s.cfg.Now)
	order := &purchasing.PurchaseOrder{
		PONumber:        purchasing.GeneratePONumber(s.cfg.Now.Add(time.Duration(n) * time.Millisecond)),
		SupplierID:      suppliers[f.Number(0, len(suppliers)-1)].ID,
		WarehouseID:     warehouses[f.Number(0, len(warehouses)-1)].ID,
		ShippingAddress: f.Address().Address,
		VatRate:         purchasing.AllowedVatRates[f.Number(0, len(purchasing.AllowedVatRates)-1)],
		OrderDate:       orderDate.Format(purchasing.DateLayout),
		Status:          purchasing.Statuses[f.Number(0, len(purchasing.Statuses)-1)],
		Items:           make([]purchasing.PurchaseOrderItem, f.Number(1, 4)),
	}
	if f.Bool() {
		order.Memo = f.Sentence(6)
	}
	for i := range order.Items {
		order.Items[i] = purchasing.PurchaseOrderItem{
			ProductID: products[f.Number(0, len(products)-1)].ID,
			Quantity:  int64(f.Number(1, 20)),
			UnitPrice: valueobject.NewAmountFromFloat(f.Price(1, 500)).RoundMoney(),
		}
	}
	order.RecalculateTotals()
	return order
}
