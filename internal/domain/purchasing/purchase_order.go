package purchasing

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/purchasing/internal/domain/shared/valueobject"
)

// Status represents the lifecycle status of a purchase order
type Status string

const (
	StatusDraft    Status = "Draft"
	StatusApproved Status = "Approved"
	StatusReceived Status = "Received"
)

// StatusAll is the filter sentinel meaning "any status"
const StatusAll = "All"

// Statuses lists every valid status in display order
var Statuses = []Status{StatusDraft, StatusApproved, StatusReceived}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusApproved, StatusReceived:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Tone returns the presentation tone used for status badges
func (s Status) Tone() string {
	switch s {
	case StatusApproved:
		return "success"
	case StatusDraft:
		return "warning"
	case StatusReceived:
		return "info"
	default:
		return "secondary"
	}
}

// ParseStatus parses a status case-insensitively
func ParseStatus(s string) (Status, error) {
	for _, status := range Statuses {
		if strings.EqualFold(string(status), strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown purchase order status %q", s)
}

// AllowedVatRates is the fixed set of VAT percentages an order may use
var AllowedVatRates = []int64{5, 10, 15, 20}

// DefaultVatRate is applied to new drafts
const DefaultVatRate int64 = 15

// IsAllowedVatRate reports whether rate is in AllowedVatRates
func IsAllowedVatRate(rate int64) bool {
	for _, r := range AllowedVatRates {
		if r == rate {
			return true
		}
	}
	return false
}

// DateLayout is the wire layout of order dates
const DateLayout = "2006-01-02"

// PONumberPrefix prefixes client-generated order numbers
const PONumberPrefix = "PO-"

// GeneratePONumber builds an order number from the creation instant
func GeneratePONumber(now time.Time) string {
	return fmt.Sprintf("%s%d", PONumberPrefix, now.UnixMilli())
}

// MinUnitPrice is the smallest acceptable unit price
var MinUnitPrice = valueobject.MustAmount("0.01")

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID        int64              `json:"id,omitempty"`
	ProductID int64              `json:"productId"`
	Quantity  int64              `json:"quantity"`
	UnitPrice valueobject.Amount `json:"unitPrice"`
	LineTotal valueobject.Amount `json:"lineTotal"`
}

// ComputeLineTotal returns round(quantity × unitPrice, 2)
func (i PurchaseOrderItem) ComputeLineTotal() valueobject.Amount {
	return i.UnitPrice.MulInt(i.Quantity).RoundMoney()
}

// PurchaseOrder is the purchase order record exchanged with the backend
type PurchaseOrder struct {
	ID              int64               `json:"id,omitempty"`
	PONumber        string              `json:"poNumber"`
	SupplierID      int64               `json:"supplierId"`
	WarehouseID     int64               `json:"warehouseId"`
	ShippingAddress string              `json:"shippingAddress"`
	VatRate         int64               `json:"vatRate"`
	OrderDate       string              `json:"orderDate"`
	Status          Status              `json:"status"`
	Memo            string              `json:"memo,omitempty"`
	Items           []PurchaseOrderItem `json:"items"`
	Subtotal        valueobject.Amount  `json:"subtotal"`
	VatAmount       valueobject.Amount  `json:"vatAmount"`
	GrandTotal      valueobject.Amount  `json:"grandTotal"`
}

// IsNew returns true if the backend has not assigned an id yet
func (o *PurchaseOrder) IsNew() bool {
	return o.ID == 0
}

// Clone returns a deep copy of the order
func (o PurchaseOrder) Clone() PurchaseOrder {
	items := make([]PurchaseOrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

// ItemCount returns the number of items in the order
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// Totals is the set of derived monetary fields of an order
type Totals struct {
	Subtotal   valueobject.Amount `json:"subtotal"`
	VatAmount  valueobject.Amount `json:"vatAmount"`
	GrandTotal valueobject.Amount `json:"grandTotal"`
}

// Equal compares all three fields by value
func (t Totals) Equal(other Totals) bool {
	return t.Subtotal.Equal(other.Subtotal) &&
		t.VatAmount.Equal(other.VatAmount) &&
		t.GrandTotal.Equal(other.GrandTotal)
}

// ComputeTotals derives line totals and order totals from scratch.
// lineTotals[i] corresponds to items[i].
func ComputeTotals(items []PurchaseOrderItem, vatRate int64) (Totals, []valueobject.Amount) {
	lineTotals := make([]valueobject.Amount, len(items))
	subtotal := valueobject.ZeroAmount()
	for idx, item := range items {
		lineTotals[idx] = item.ComputeLineTotal()
		subtotal = subtotal.Add(lineTotals[idx])
	}
	vatAmount := subtotal.Percent(vatRate).RoundMoney()
	return Totals{
		Subtotal:   subtotal,
		VatAmount:  vatAmount,
		GrandTotal: subtotal.Add(vatAmount),
	}, lineTotals
}

// StoredTotals returns the derived fields as currently stored on the order
func (o *PurchaseOrder) StoredTotals() Totals {
	return Totals{
		Subtotal:   o.Subtotal,
		VatAmount:  o.VatAmount,
		GrandTotal: o.GrandTotal,
	}
}

// RecalculateTotals recomputes every line total and the three order totals
// together from the current items and vat rate
func (o *PurchaseOrder) RecalculateTotals() {
	totals, lineTotals := ComputeTotals(o.Items, o.VatRate)
	for idx := range o.Items {
		o.Items[idx].LineTotal = lineTotals[idx]
	}
	o.Subtotal = totals.Subtotal
	o.VatAmount = totals.VatAmount
	o.GrandTotal = totals.GrandTotal
}
