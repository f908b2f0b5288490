package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/gateway"
	"github.com/erp/purchasing/internal/infrastructure/logger"
)

// PurchaseOrderStore is the storage the purchase order endpoints serve from
type PurchaseOrderStore interface {
	List(ctx context.Context, query purchasing.ListQuery) (*purchasing.ListResult, error)
	FindByID(ctx context.Context, id int64) (*purchasing.PurchaseOrder, error)
	Create(ctx context.Context, order *purchasing.PurchaseOrder) (*purchasing.PurchaseOrder, error)
	Update(ctx context.Context, id int64, order *purchasing.PurchaseOrder) (*purchasing.PurchaseOrder, error)
	Delete(ctx context.Context, id int64) error
}

// PurchaseOrderHandler serves the purchase order resource
type PurchaseOrderHandler struct {
	BaseHandler
	store PurchaseOrderStore
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(store PurchaseOrderStore) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{store: store}
}

// RegisterRoutes registers the purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group(gateway.PathPurchaseOrders)
	orders.GET("", h.List)
	orders.POST("", h.Create)
	orders.GET("/:id", h.Get)
	orders.PUT("/:id", h.Update)
	orders.DELETE("/:id", h.Delete)
}

// List handles GET /purchaseOrders. The size of the whole filtered set is
// returned in X-Total-Count.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	query, err := ParseListQuery(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.store.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	orders := result.Orders
	if orders == nil {
		orders = []purchasing.PurchaseOrder{}
	}
	c.Header(gateway.TotalCountHead, strconv.Itoa(result.Total))
	c.JSON(http.StatusOK, orders)
}

// Get handles GET /purchaseOrders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	order, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Create handles POST /purchaseOrders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var order purchasing.PurchaseOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	created, err := h.store.Create(c.Request.Context(), &order)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	logger.ForRequest(c).Info("Purchase order created",
		zap.Int64("id", created.ID),
		zap.String("po_number", created.PONumber),
	)
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /purchaseOrders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var order purchasing.PurchaseOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	updated, err := h.store.Update(c.Request.Context(), id, &order)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /purchaseOrders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	logger.ForRequest(c).Info("Purchase order deleted", zap.Int64("id", id))
	c.JSON(http.StatusOK, gin.H{})
}

func (h *PurchaseOrderHandler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		h.BadRequest(c, "invalid purchase order id")
		return 0, false
	}
	return id, true
}

// ParseListQuery reads json-server list parameters. Without _page and
// _limit the query is unpaged.
func ParseListQuery(c *gin.Context) (purchasing.ListQuery, error) {
	filter := purchasing.DefaultFilter(purchasing.DefaultPageSize)
	filter.Search = c.Query(gateway.ParamSearch)
	if status := c.Query(gateway.ParamStatus); status != "" {
		filter.Status = status
	}
	filter.StartDate = c.Query(gateway.ParamDateFrom)
	filter.EndDate = c.Query(gateway.ParamDateTo)
	filter.SortField = c.Query(gateway.ParamSort)
	filter.SortDirection = purchasing.SortDirection(strings.ToLower(c.Query(gateway.ParamOrder)))

	var violations []shared.Violation
	page, hasPage := c.GetQuery(gateway.ParamPage)
	if hasPage {
		n, err := strconv.Atoi(page)
		if err != nil {
			violations = append(violations, shared.Violation{Field: gateway.ParamPage, Code: "integer", Message: "must be an integer"})
		}
		filter.Page = n
	}
	limit, hasLimit := c.GetQuery(gateway.ParamLimit)
	if hasLimit {
		n, err := strconv.Atoi(limit)
		if err != nil {
			violations = append(violations, shared.Violation{Field: gateway.ParamLimit, Code: "integer", Message: "must be an integer"})
		}
		filter.PageSize = n
	}
	if len(violations) > 0 {
		return purchasing.ListQuery{}, shared.NewValidationError(violations...)
	}

	return purchasing.ListQuery{
		Filter:  filter.Clamped(),
		Unpaged: !hasPage && !hasLimit,
	}, nil
}
