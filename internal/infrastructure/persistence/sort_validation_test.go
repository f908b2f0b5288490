package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns ASC", "", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"DESC uppercase returns DESC", "DESC", "DESC"},
		{"invalid value returns ASC", "sideways", "ASC"},
		{"sql injection attempt returns ASC", "DESC; DROP TABLE purchase_orders;--", "ASC"},
		{"whitespace around desc returns DESC", "  desc  ", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "id"},
		{"wire name maps to column", "poNumber", "po_number"},
		{"grand total maps to column", "grandTotal", "grand_total"},
		{"column name is not a wire name", "po_number", "id"},
		{"case sensitive", "PONUMBER", "id"},
		{"whitespace around valid field", "  orderDate ", "order_date"},
		{"sql injection attempt returns default", "id; DROP TABLE purchase_orders;--", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, PurchaseOrderSortFields, "id"))
		})
	}

	t.Run("empty default with invalid field", func(t *testing.T) {
		assert.Equal(t, "", ValidateSortField("nope", ReferenceSortFields, ""))
	})
}
