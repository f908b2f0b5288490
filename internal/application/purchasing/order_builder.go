package purchasing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/domain/shared/valueobject"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
)

// Submission modes
const (
	ModeCreate = "create"
	ModeUpdate = "update"
)

// OrderBuilderConfig configures an OrderBuilder
type OrderBuilderConfig struct {
	DefaultVatRate int64
	// Clock returns the current time; defaults to time.Now
	Clock   func() time.Time
	Metrics *telemetry.Metrics
	Logger  *zap.Logger
}

// HeaderPatch carries a partial header edit; nil fields are left untouched
type HeaderPatch struct {
	PONumber        *string
	SupplierID      *int64
	WarehouseID     *int64
	ShippingAddress *string
	VatRate         *int64
	OrderDate       *string
	Memo            *string
}

// ItemPatch carries a partial line item edit; nil fields are left untouched
type ItemPatch struct {
	ProductID *int64
	Quantity  *int64
	UnitPrice *valueobject.Amount
}

// OrderBuilder owns one draft purchase order and keeps its totals current
// after every mutation. One builder serves one form session and is not safe
// for concurrent use.
type OrderBuilder struct {
	gateway        purchasing.Gateway
	defaultVatRate int64
	clock          func() time.Time
	validate       *validator.Validate
	metrics        *telemetry.Metrics
	logger         *zap.Logger

	draft purchasing.PurchaseOrder
}

// NewOrderBuilder creates a builder initialised for a new order
func NewOrderBuilder(gateway purchasing.Gateway, cfg OrderBuilderConfig) *OrderBuilder {
	if !purchasing.IsAllowedVatRate(cfg.DefaultVatRate) {
		cfg.DefaultVatRate = purchasing.DefaultVatRate
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	b := &OrderBuilder{
		gateway:        gateway,
		defaultVatRate: cfg.DefaultVatRate,
		clock:          cfg.Clock,
		validate:       newDraftValidator(),
		metrics:        cfg.Metrics,
		logger:         cfg.Logger.Named("order_builder"),
	}
	b.InitCreate()
	return b
}

// InitCreate resets the draft to an empty new order dated today
func (b *OrderBuilder) InitCreate() {
	b.draft = purchasing.PurchaseOrder{
		VatRate:   b.defaultVatRate,
		OrderDate: b.clock().Format(purchasing.DateLayout),
		Status:    purchasing.StatusDraft,
		Items:     []purchasing.PurchaseOrderItem{},
	}
	b.draft.RecalculateTotals()
}

// InitEdit loads an existing order verbatim and recomputes its totals.
// Stored totals that disagree with the recomputation are logged; the
// recomputed values win.
func (b *OrderBuilder) InitEdit(order purchasing.PurchaseOrder) {
	draft := order.Clone()
	if draft.Items == nil {
		draft.Items = []purchasing.PurchaseOrderItem{}
	}
	stored := draft.StoredTotals()
	draft.RecalculateTotals()

	if !stored.Equal(draft.StoredTotals()) {
		b.logger.Warn("stored totals disagree with recomputed totals",
			zap.Int64("id", draft.ID),
			zap.String("po_number", draft.PONumber),
			zap.String("stored_grand_total", stored.GrandTotal.StringFixed()),
			zap.String("computed_grand_total", draft.GrandTotal.StringFixed()),
		)
	}
	b.draft = draft
}

// LoadForEdit fetches an order and loads it with InitEdit
func (b *OrderBuilder) LoadForEdit(ctx context.Context, id int64) error {
	order, err := b.gateway.GetPurchaseOrder(ctx, id)
	if err != nil {
		return err
	}
	b.InitEdit(*order)
	return nil
}

// IsEdit reports whether the draft is an existing order
func (b *OrderBuilder) IsEdit() bool {
	return !b.draft.IsNew()
}

// Draft returns a copy of the current draft
func (b *OrderBuilder) Draft() purchasing.PurchaseOrder {
	return b.draft.Clone()
}

// Totals returns the current derived totals
func (b *OrderBuilder) Totals() purchasing.Totals {
	return b.draft.StoredTotals()
}

// Items returns a copy of the current line items
func (b *OrderBuilder) Items() []purchasing.PurchaseOrderItem {
	return b.draft.Clone().Items
}

// AddItem appends an empty line with quantity 1 and returns its index
func (b *OrderBuilder) AddItem() int {
	b.draft.Items = append(b.draft.Items, purchasing.PurchaseOrderItem{Quantity: 1})
	b.draft.RecalculateTotals()
	return len(b.draft.Items) - 1
}

// RemoveItem deletes the line at index
func (b *OrderBuilder) RemoveItem(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.draft.Items = append(b.draft.Items[:index], b.draft.Items[index+1:]...)
	b.draft.RecalculateTotals()
	return nil
}

// UpdateItem applies patch to the line at index
func (b *OrderBuilder) UpdateItem(index int, patch ItemPatch) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	item := &b.draft.Items[index]
	if patch.ProductID != nil {
		item.ProductID = *patch.ProductID
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		item.UnitPrice = *patch.UnitPrice
	}
	b.draft.RecalculateTotals()
	return nil
}

// UpdateHeader applies patch to the header fields
func (b *OrderBuilder) UpdateHeader(patch HeaderPatch) {
	if patch.PONumber != nil {
		b.draft.PONumber = strings.TrimSpace(*patch.PONumber)
	}
	if patch.SupplierID != nil {
		b.draft.SupplierID = *patch.SupplierID
	}
	if patch.WarehouseID != nil {
		b.draft.WarehouseID = *patch.WarehouseID
	}
	if patch.ShippingAddress != nil {
		b.draft.ShippingAddress = *patch.ShippingAddress
	}
	if patch.VatRate != nil {
		b.draft.VatRate = *patch.VatRate
	}
	if patch.OrderDate != nil {
		b.draft.OrderDate = *patch.OrderDate
	}
	if patch.Memo != nil {
		b.draft.Memo = *patch.Memo
	}
	b.draft.RecalculateTotals()
}

// Validate returns every field-level violation of the draft without
// changing it. An empty result means the draft can be submitted.
func (b *OrderBuilder) Validate() []shared.Violation {
	var violations []shared.Violation

	rules := newDraftRules(b.draft)
	if err := b.validate.Struct(rules); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []shared.Violation{{Field: "order", Code: "invalid", Message: err.Error()}}
		}
		for _, fe := range fieldErrs {
			violations = append(violations, violationFor(fe))
		}
	}

	for i, item := range b.draft.Items {
		if item.UnitPrice.LessThan(purchasing.MinUnitPrice) {
			violations = append(violations, shared.Violation{
				Field:   fmt.Sprintf("items[%d].unitPrice", i),
				Code:    "min",
				Message: "must be at least " + purchasing.MinUnitPrice.StringFixed(),
			})
		}
	}
	return violations
}

// Submit validates the draft and creates or updates it through the gateway.
// A draft with violations fails with a ValidationError before any network
// call. On success the draft adopts the saved order.
func (b *OrderBuilder) Submit(ctx context.Context) (*purchasing.PurchaseOrder, error) {
	if violations := b.Validate(); len(violations) > 0 {
		return nil, shared.NewValidationError(violations...)
	}

	payload := b.draft.Clone()
	payload.ShippingAddress = strings.TrimSpace(payload.ShippingAddress)
	payload.RecalculateTotals()

	var (
		saved *purchasing.PurchaseOrder
		err   error
		mode  string
	)
	if payload.IsNew() {
		mode = ModeCreate
		if payload.PONumber == "" {
			payload.PONumber = purchasing.GeneratePONumber(b.clock())
		}
		payload.Status = purchasing.StatusDraft
		saved, err = b.gateway.CreatePurchaseOrder(ctx, &payload)
	} else {
		mode = ModeUpdate
		saved, err = b.gateway.UpdatePurchaseOrder(ctx, payload.ID, &payload)
	}
	b.metrics.Submission(mode, err)
	if err != nil {
		b.logger.Warn("submit failed", zap.String("mode", mode), zap.Error(err))
		return nil, err
	}

	b.logger.Info("order submitted",
		zap.String("mode", mode),
		zap.Int64("id", saved.ID),
		zap.String("po_number", saved.PONumber),
	)
	b.adopt(payload, saved)
	return saved, nil
}

// adopt takes over the backend's identity for the submitted payload so a
// second submit updates rather than creates
func (b *OrderBuilder) adopt(payload purchasing.PurchaseOrder, saved *purchasing.PurchaseOrder) {
	b.draft = payload
	if saved.ID != 0 {
		b.draft.ID = saved.ID
	}
	if saved.PONumber != "" {
		b.draft.PONumber = saved.PONumber
	}
}

func (b *OrderBuilder) checkIndex(index int) error {
	if index < 0 || index >= len(b.draft.Items) {
		return shared.NewValidationError(shared.Violation{
			Field:   fmt.Sprintf("items[%d]", index),
			Code:    "out_of_range",
			Message: fmt.Sprintf("no item at index %d (order has %d)", index, len(b.draft.Items)),
		})
	}
	return nil
}

// draftRules is the validator view of a draft. Field names are taken from
// the json tags so violation paths match the wire names.
type draftRules struct {
	SupplierID      int64       `json:"supplierId" validate:"gt=0"`
	WarehouseID     int64       `json:"warehouseId" validate:"gt=0"`
	ShippingAddress string      `json:"shippingAddress" validate:"required"`
	VatRate         int64       `json:"vatRate" validate:"vatrate"`
	OrderDate       string      `json:"orderDate" validate:"required,datetime=2006-01-02"`
	Items           []itemRules `json:"items" validate:"min=1,dive"`
}

type itemRules struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int64 `json:"quantity" validate:"gte=1"`
}

func newDraftRules(o purchasing.PurchaseOrder) draftRules {
	items := make([]itemRules, len(o.Items))
	for i, item := range o.Items {
		items[i] = itemRules{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return draftRules{
		SupplierID:      o.SupplierID,
		WarehouseID:     o.WarehouseID,
		ShippingAddress: strings.TrimSpace(o.ShippingAddress),
		VatRate:         o.VatRate,
		OrderDate:       strings.TrimSpace(o.OrderDate),
		Items:           items,
	}
}

func newDraftValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("vatrate", func(fl validator.FieldLevel) bool {
		return purchasing.IsAllowedVatRate(fl.Field().Int())
	})
	return v
}

// violationFor converts a validator field error into a violation whose
// field path drops the root struct name, e.g. "items[1].quantity"
func violationFor(fe validator.FieldError) shared.Violation {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	code := fe.Tag()
	var msg string
	switch fe.Tag() {
	case "required", "gt":
		code = "required"
		msg = "is required"
	case "gte":
		msg = "must be at least " + fe.Param()
	case "min":
		code = shared.ErrNoItems.Code
		msg = shared.ErrNoItems.Message
	case "datetime":
		msg = "must be a date in YYYY-MM-DD format"
	case "vatrate":
		msg = "must be one of 5, 10, 15, 20"
	default:
		msg = "is invalid"
	}
	return shared.Violation{Field: field, Code: code, Message: msg}
}
