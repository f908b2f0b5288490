package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Run("lists violations in message", func(t *testing.T) {
		err := NewValidationError(
			Violation{Field: "supplierId", Code: "required", Message: "is required"},
			Violation{Field: "items", Code: "min", Message: "at least one item"},
		)
		assert.Contains(t, err.Error(), "supplierId: is required")
		assert.Contains(t, err.Error(), "items: at least one item")
	})

	t.Run("fields are sorted and unique", func(t *testing.T) {
		err := NewValidationError(
			Violation{Field: "items[0].quantity"},
			Violation{Field: "items[0].quantity"},
			Violation{Field: "supplierId"},
		)
		assert.Equal(t, []string{"items[0].quantity", "supplierId"}, err.Fields())
		assert.True(t, err.Has("supplierId"))
		assert.False(t, err.Has("warehouseId"))
	})

	t.Run("empty violation set", func(t *testing.T) {
		assert.Equal(t, "validation failed", NewValidationError().Error())
	})
}

func TestNetworkError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &NetworkError{Op: "list purchase orders", Err: cause}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "list purchase orders: context deadline exceeded", err.Error())

	withStatus := &NetworkError{Op: "create purchase order", StatusCode: 500, Err: errors.New("boom")}
	assert.Contains(t, withStatus.Error(), "status 500")
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("load: %w", &NotFoundError{Resource: "purchase order", ID: 7})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "load: purchase order 7 not found", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrorKindNone},
		{"validation", NewValidationError(), ErrorKindValidation},
		{"wrapped validation", fmt.Errorf("submit: %w", NewValidationError()), ErrorKindValidation},
		{"not found", &NotFoundError{Resource: "supplier", ID: 1}, ErrorKindNotFound},
		{"network", &NetworkError{Op: "get", Err: errors.New("refused")}, ErrorKindNetwork},
		{"other", errors.New("unexpected"), ErrorKindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
