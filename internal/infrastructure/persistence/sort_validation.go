package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "ASC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "DESC" {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField maps a wire field name onto its column through a whitelist.
// Returns defaultColumn if the input is empty or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]string, defaultColumn string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultColumn
	}
	if column, ok := allowedFields[trimmed]; ok {
		return column
	}
	return defaultColumn
}

// PurchaseOrderSortFields maps sortable purchase order fields to columns
var PurchaseOrderSortFields = map[string]string{
	"id":              "id",
	"poNumber":        "po_number",
	"supplierId":      "supplier_id",
	"warehouseId":     "warehouse_id",
	"shippingAddress": "shipping_address",
	"vatRate":         "vat_rate",
	"orderDate":       "order_date",
	"status":          "status",
	"subtotal":        "subtotal",
	"vatAmount":       "vat_amount",
	"grandTotal":      "grand_total",
}

// ReferenceSortFields maps sortable reference data fields to columns
var ReferenceSortFields = map[string]string{
	"id":   "id",
	"name": "name",
}
