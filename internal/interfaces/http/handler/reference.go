package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/infrastructure/gateway"
)

// ReferenceStore is the storage the reference data endpoints serve from
type ReferenceStore interface {
	ListSuppliers(ctx context.Context) ([]purchasing.Supplier, error)
	ListWarehouses(ctx context.Context) ([]purchasing.Warehouse, error)
	ListProducts(ctx context.Context) ([]purchasing.Product, error)
}

// ReferenceHandler serves suppliers, warehouses, products and VAT rates
type ReferenceHandler struct {
	BaseHandler
	store ReferenceStore
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(store ReferenceStore) *ReferenceHandler {
	return &ReferenceHandler{store: store}
}

// RegisterRoutes registers the reference data routes
func (h *ReferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(gateway.PathSuppliers, serveList(h, h.store.ListSuppliers))
	rg.GET(gateway.PathWarehouses, serveList(h, h.store.ListWarehouses))
	rg.GET(gateway.PathProducts, serveList(h, h.store.ListProducts))
	rg.GET(gateway.PathVatRates, h.VatRates)
}

// VatRates handles GET /vatRates
func (h *ReferenceHandler) VatRates(c *gin.Context) {
	c.JSON(http.StatusOK, purchasing.AllowedVatRates)
}

func serveList[T any](h *ReferenceHandler, list func(context.Context) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := list(c.Request.Context())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		c.JSON(http.StatusOK, items)
	}
}
