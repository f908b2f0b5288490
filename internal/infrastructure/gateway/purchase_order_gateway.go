package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
)

// Resource paths
const (
	PathPurchaseOrders = "/purchaseOrders"
	PathSuppliers      = "/suppliers"
	PathWarehouses     = "/warehouses"
	PathProducts       = "/products"
	PathVatRates       = "/vatRates"
)

// ErrMissingTotalCount is returned when a paged list response has no
// X-Total-Count header
var ErrMissingTotalCount = errors.New("paged response is missing the X-Total-Count header")

// tracerName identifies gateway spans
const tracerName = "github.com/erp/purchasing/internal/infrastructure/gateway"

// HTTPGateway implements purchasing.Gateway against a json-server style API
type HTTPGateway struct {
	client  *Client
	metrics *telemetry.Metrics
	logger  *zap.Logger
	tracer  trace.Tracer
}

var _ purchasing.Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a new gateway. metrics may be nil.
func NewHTTPGateway(client *Client, metrics *telemetry.Metrics, logger *zap.Logger) *HTTPGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPGateway{
		client:  client,
		metrics: metrics,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// ListPurchaseOrders fetches one page, or the full filtered set when unpaged
func (g *HTTPGateway) ListPurchaseOrders(ctx context.Context, query purchasing.ListQuery) (*purchasing.ListResult, error) {
	const op = "list_purchase_orders"

	params, err := BuildListParams(query)
	if err != nil {
		return nil, err
	}

	resp, err := g.call(ctx, op, Request{Method: http.MethodGet, Path: PathPurchaseOrders, Query: params}, "", 0)
	if err != nil {
		return nil, err
	}

	var orders []purchasing.PurchaseOrder
	if err := resp.Decode(&orders); err != nil {
		return nil, &shared.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if orders == nil {
		orders = []purchasing.PurchaseOrder{}
	}

	if query.Unpaged {
		return &purchasing.ListResult{Orders: orders, Total: len(orders)}, nil
	}

	total, err := parseTotalCount(resp.Headers)
	if err != nil {
		return nil, &shared.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return &purchasing.ListResult{Orders: orders, Total: total}, nil
}

// GetPurchaseOrder fetches a single order
func (g *HTTPGateway) GetPurchaseOrder(ctx context.Context, id int64) (*purchasing.PurchaseOrder, error) {
	const op = "get_purchase_order"

	resp, err := g.call(ctx, op, Request{Method: http.MethodGet, Path: orderPath(id)}, "purchase order", id)
	if err != nil {
		return nil, err
	}
	var order purchasing.PurchaseOrder
	if err := resp.Decode(&order); err != nil {
		return nil, &shared.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return &order, nil
}

// CreatePurchaseOrder posts a new order and returns it with its assigned id
func (g *HTTPGateway) CreatePurchaseOrder(ctx context.Context, order *purchasing.PurchaseOrder) (*purchasing.PurchaseOrder, error) {
	const op = "create_purchase_order"

	payload := order.Clone()
	payload.ID = 0
	resp, err := g.call(ctx, op, Request{Method: http.MethodPost, Path: PathPurchaseOrders, Body: payload}, "", 0)
	if err != nil {
		return nil, err
	}
	var created purchasing.PurchaseOrder
	if err := resp.Decode(&created); err != nil {
		return nil, &shared.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return &created, nil
}

// UpdatePurchaseOrder replaces an existing order
func (g *HTTPGateway) UpdatePurchaseOrder(ctx context.Context, id int64, order *purchasing.PurchaseOrder) (*purchasing.PurchaseOrder, error) {
	const op = "update_purchase_order"

	payload := order.Clone()
	payload.ID = id
	resp, err := g.call(ctx, op, Request{Method: http.MethodPut, Path: orderPath(id), Body: payload}, "purchase order", id)
	if err != nil {
		return nil, err
	}
	var updated purchasing.PurchaseOrder
	if err := resp.Decode(&updated); err != nil {
		return nil, &shared.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return &updated, nil
}

// DeletePurchaseOrder removes an order
func (g *HTTPGateway) DeletePurchaseOrder(ctx context.Context, id int64) error {
	_, err := g.call(ctx, "delete_purchase_order", Request{Method: http.MethodDelete, Path: orderPath(id)}, "purchase order", id)
	return err
}

// ListSuppliers fetches all suppliers
func (g *HTTPGateway) ListSuppliers(ctx context.Context) ([]purchasing.Supplier, error) {
	return fetchAll[purchasing.Supplier](ctx, g, "list_suppliers", PathSuppliers)
}

// ListWarehouses fetches all warehouses
func (g *HTTPGateway) ListWarehouses(ctx context.Context) ([]purchasing.Warehouse, error) {
	return fetchAll[purchasing.Warehouse](ctx, g, "list_warehouses", PathWarehouses)
}

// ListProducts fetches all products
func (g *HTTPGateway) ListProducts(ctx context.Context) ([]purchasing.Product, error) {
	return fetchAll[purchasing.Product](ctx, g, "list_products", PathProducts)
}

// ListVatRates fetches the selectable VAT percentages
func (g *HTTPGateway) ListVatRates(ctx context.Context) ([]int64, error) {
	return fetchAll[int64](ctx, g, "list_vat_rates", PathVatRates)
}

func fetchAll[T any](ctx context.Context, g *HTTPGateway, op, path string) ([]T, error) {
	resp, err := g.call(ctx, op, Request{Method: http.MethodGet, Path: path}, "", 0)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := resp.Decode(&items); err != nil {
		return nil, &shared.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// call executes req and maps failures onto the error taxonomy. resource and
// id name the entity for 404 responses; an empty resource turns 404 into a
// NetworkError like any other non-2xx status.
func (g *HTTPGateway) call(ctx context.Context, op string, req Request, resource string, id int64) (*Response, error) {
	ctx, span := g.tracer.Start(ctx, "gateway."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := g.client.Do(ctx, req)
	if err != nil {
		g.metrics.GatewayRequest(op, 0, time.Since(start))
		g.logger.Warn("gateway request failed", zap.String("op", op), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, &shared.NetworkError{Op: op, Err: err}
	}
	g.metrics.GatewayRequest(op, resp.StatusCode, resp.Duration)
	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.String("request_id", resp.RequestID),
	)

	if resp.IsSuccess() {
		return resp, nil
	}
	span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))

	g.logger.Warn("gateway request rejected",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", resp.RequestID),
	)
	if resp.StatusCode == http.StatusNotFound && resource != "" {
		return nil, &shared.NotFoundError{Resource: resource, ID: id}
	}
	return nil, &shared.NetworkError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Err:        errors.New(errorBody(resp.Body)),
	}
}

func parseTotalCount(headers http.Header) (int, error) {
	raw := strings.TrimSpace(headers.Get(TotalCountHead))
	if raw == "" {
		return 0, ErrMissingTotalCount
	}
	total, err := strconv.Atoi(raw)
	if err != nil || total < 0 {
		return 0, fmt.Errorf("invalid %s header %q", TotalCountHead, raw)
	}
	return total, nil
}

func errorBody(body []byte) string {
	const maxLen = 200
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response body"
	}
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}
	return text
}

func orderPath(id int64) string {
	return PathPurchaseOrders + "/" + strconv.FormatInt(id, 10)
}
