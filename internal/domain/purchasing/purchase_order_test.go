package purchasing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/erp/purchasing/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(qty int64, price string) PurchaseOrderItem {
	return PurchaseOrderItem{ProductID: 1, Quantity: qty, UnitPrice: valueobject.MustAmount(price)}
}

func TestStatus(t *testing.T) {
	t.Run("valid statuses", func(t *testing.T) {
		for _, s := range Statuses {
			assert.True(t, s.IsValid(), s)
		}
		assert.False(t, Status("Cancelled").IsValid())
		assert.False(t, Status(StatusAll).IsValid())
	})

	t.Run("parse is case-insensitive", func(t *testing.T) {
		s, err := ParseStatus(" approved ")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, s)

		_, err = ParseStatus("shipped")
		assert.Error(t, err)
	})

	t.Run("tone", func(t *testing.T) {
		assert.Equal(t, "warning", StatusDraft.Tone())
		assert.Equal(t, "success", StatusApproved.Tone())
		assert.Equal(t, "info", StatusReceived.Tone())
		assert.Equal(t, "secondary", Status("x").Tone())
	})
}

func TestIsAllowedVatRate(t *testing.T) {
	for _, r := range []int64{5, 10, 15, 20} {
		assert.True(t, IsAllowedVatRate(r))
	}
	assert.False(t, IsAllowedVatRate(0))
	assert.False(t, IsAllowedVatRate(12))
}

func TestGeneratePONumber(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "PO-1700000000123", GeneratePONumber(now))
}

func TestComputeTotals(t *testing.T) {
	t.Run("reference example", func(t *testing.T) {
		totals, lines := ComputeTotals([]PurchaseOrderItem{item(2, "10.00"), item(1, "5.50")}, 15)

		assert.Equal(t, "20.00", lines[0].StringFixed())
		assert.Equal(t, "5.50", lines[1].StringFixed())
		assert.Equal(t, "25.50", totals.Subtotal.StringFixed())
		assert.Equal(t, "3.83", totals.VatAmount.StringFixed())
		assert.Equal(t, "29.33", totals.GrandTotal.StringFixed())
	})

	t.Run("grand total is exact sum for every allowed rate", func(t *testing.T) {
		items := []PurchaseOrderItem{item(3, "19.99"), item(7, "0.33"), item(1, "1234.56")}
		for _, rate := range AllowedVatRates {
			totals, _ := ComputeTotals(items, rate)
			assert.True(t, totals.GrandTotal.Equal(totals.Subtotal.Add(totals.VatAmount)), "rate %d", rate)
		}
	})

	t.Run("independent of insertion order", func(t *testing.T) {
		a := []PurchaseOrderItem{item(3, "0.335"), item(2, "10.005"), item(9, "1.11")}
		b := []PurchaseOrderItem{a[2], a[0], a[1]}
		ta, _ := ComputeTotals(a, 10)
		tb, _ := ComputeTotals(b, 10)
		assert.True(t, ta.Equal(tb))
	})

	t.Run("line totals are rounded to cents", func(t *testing.T) {
		_, lines := ComputeTotals([]PurchaseOrderItem{item(3, "0.335")}, 5)
		assert.Equal(t, "1.01", lines[0].StringFixed())
	})

	t.Run("no items", func(t *testing.T) {
		totals, lines := ComputeTotals(nil, 20)
		assert.Empty(t, lines)
		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.GrandTotal.IsZero())
	})
}

func TestPurchaseOrder_RecalculateTotals(t *testing.T) {
	order := &PurchaseOrder{
		VatRate: 15,
		Items:   []PurchaseOrderItem{item(2, "10.00"), item(1, "5.50")},
		// stale values must be overwritten
		Subtotal: valueobject.MustAmount("999"),
	}
	order.RecalculateTotals()

	assert.Equal(t, "20.00", order.Items[0].LineTotal.StringFixed())
	assert.Equal(t, "25.50", order.Subtotal.StringFixed())
	assert.Equal(t, "3.83", order.VatAmount.StringFixed())
	assert.Equal(t, "29.33", order.GrandTotal.StringFixed())
}

func TestPurchaseOrder_Clone(t *testing.T) {
	order := PurchaseOrder{Items: []PurchaseOrderItem{item(1, "1")}}
	clone := order.Clone()
	clone.Items[0].Quantity = 5
	assert.Equal(t, int64(1), order.Items[0].Quantity)
}

func TestPurchaseOrder_JSON(t *testing.T) {
	raw := `{
		"id": 3,
		"poNumber": "PO-1",
		"supplierId": 2,
		"warehouseId": 1,
		"shippingAddress": "Dock 4",
		"vatRate": 15,
		"orderDate": "2024-03-01",
		"status": "Approved",
		"items": [{"productId": 9, "quantity": 2, "unitPrice": 10, "lineTotal": 20}],
		"subtotal": 20,
		"vatAmount": 3,
		"grandTotal": 23
	}`

	var order PurchaseOrder
	require.NoError(t, json.Unmarshal([]byte(raw), &order))
	assert.Equal(t, int64(3), order.ID)
	assert.Equal(t, StatusApproved, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "10.00", order.Items[0].UnitPrice.StringFixed())
	assert.False(t, order.IsNew())

	order.ID = 0
	data, err := json.Marshal(order)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
	assert.Contains(t, string(data), `"unitPrice":10`)
}
