package purchasing

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/erp/purchasing/internal/domain/purchasing"
)

// ReferenceService loads suppliers, warehouses and products once per
// session. A failed load is not cached, so the next call retries.
type ReferenceService struct {
	gateway purchasing.Gateway
	logger  *zap.Logger

	mu       sync.Mutex
	data     *purchasing.ReferenceData
	vatRates []int64
}

// NewReferenceService creates a reference data loader
func NewReferenceService(gateway purchasing.Gateway, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{
		gateway: gateway,
		logger:  logger.Named("reference_data"),
	}
}

// Load returns the session's reference data, fetching the three lookup sets
// concurrently on first use
func (s *ReferenceService) Load(ctx context.Context) (*purchasing.ReferenceData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data != nil {
		return s.data, nil
	}

	var (
		suppliers  []purchasing.Supplier
		warehouses []purchasing.Warehouse
		products   []purchasing.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		suppliers, err = s.gateway.ListSuppliers(gctx)
		if err != nil {
			return fmt.Errorf("load suppliers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		warehouses, err = s.gateway.ListWarehouses(gctx)
		if err != nil {
			return fmt.Errorf("load warehouses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = s.gateway.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("reference data load failed", zap.Error(err))
		return nil, err
	}

	s.data = purchasing.NewReferenceData(suppliers, warehouses, products)
	s.logger.Debug("reference data loaded",
		zap.Int("suppliers", len(suppliers)),
		zap.Int("warehouses", len(warehouses)),
		zap.Int("products", len(products)),
	)
	return s.data, nil
}

// VatRates returns the selectable VAT rates. Values outside the allowed set
// are dropped, and the fixed set is used when the backend has none or fails.
func (s *ReferenceService) VatRates(ctx context.Context) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vatRates != nil {
		return append([]int64(nil), s.vatRates...)
	}

	fallback := append([]int64(nil), purchasing.AllowedVatRates...)
	rates, err := s.gateway.ListVatRates(ctx)
	if err != nil {
		s.logger.Debug("vat rates unavailable, using fixed set", zap.Error(err))
		return fallback
	}

	allowed := make([]int64, 0, len(rates))
	for _, r := range rates {
		if purchasing.IsAllowedVatRate(r) {
			allowed = append(allowed, r)
		}
	}
	if len(allowed) == 0 {
		allowed = fallback
	}
	s.vatRates = allowed
	return append([]int64(nil), allowed...)
}
