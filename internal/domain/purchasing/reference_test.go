package purchasing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceData(t *testing.T) {
	suppliers := []Supplier{{ID: 1, Name: "Acme"}}
	rd := NewReferenceData(
		suppliers,
		[]Warehouse{{ID: 2, Name: "North"}},
		[]Product{{ID: 3, Name: "Bolt", SKU: "B-1"}},
	)

	t.Run("resolves names", func(t *testing.T) {
		assert.Equal(t, "Acme", rd.SupplierName(1))
		assert.Equal(t, "North", rd.WarehouseName(2))
		assert.Equal(t, "Bolt", rd.ProductName(3))
	})

	t.Run("falls back for unknown ids", func(t *testing.T) {
		assert.Equal(t, "Supplier 9", rd.SupplierName(9))
		assert.Equal(t, "Warehouse 9", rd.WarehouseName(9))
		assert.Equal(t, "Unknown Product", rd.ProductName(9))
	})

	t.Run("lookup sets are isolated from callers", func(t *testing.T) {
		suppliers[0].Name = "Changed"
		assert.Equal(t, "Acme", rd.SupplierName(1))

		list := rd.Suppliers()
		list[0].Name = "Mutated"
		assert.Equal(t, "Acme", rd.Suppliers()[0].Name)

		_, ok := rd.Product(3)
		assert.True(t, ok)
		_, ok = rd.Warehouse(5)
		assert.False(t, ok)
	})
}
