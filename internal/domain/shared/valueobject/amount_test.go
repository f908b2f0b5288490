package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAmountFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		a, err := NewAmountFromString("123.45")
		require.NoError(t, err)
		assert.True(t, a.Decimal().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewAmountFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestAmount_Arithmetic(t *testing.T) {
	price := MustAmount("10.00")

	assert.True(t, price.MulInt(2).Equal(MustAmount("20")))
	assert.True(t, price.Add(MustAmount("5.50")).Equal(MustAmount("15.5")))
	assert.True(t, MustAmount("25.50").Percent(15).Equal(MustAmount("3.825")))
}

func TestAmount_RoundMoney(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"3.825", "3.83"},
		{"3.824", "3.82"},
		{"0.005", "0.01"},
		{"-1.005", "-1.01"},
		{"7", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, MustAmount(tt.want).StringFixed(), MustAmount(tt.in).RoundMoney().StringFixed())
		})
	}
}

func TestAmount_JSON(t *testing.T) {
	t.Run("marshals as bare number", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Price Amount `json:"price"`
		}{Price: MustAmount("29.33")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"price": 29.33}`, string(data))
	})

	t.Run("unmarshals number, string and null", func(t *testing.T) {
		var v struct {
			A Amount `json:"a"`
			B Amount `json:"b"`
			C Amount `json:"c"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a": 5.5, "b": "10.25", "c": null}`), &v))
		assert.True(t, v.A.Equal(MustAmount("5.5")))
		assert.True(t, v.B.Equal(MustAmount("10.25")))
		assert.True(t, v.C.IsZero())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var a Amount
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &a))
	})
}

func TestAmount_Scan(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan(12.5))
	assert.True(t, a.Equal(MustAmount("12.5")))

	require.NoError(t, a.Scan([]byte("3.83")))
	assert.True(t, a.Equal(MustAmount("3.83")))

	require.NoError(t, a.Scan(int64(4)))
	assert.True(t, a.Equal(MustAmount("4")))

	require.NoError(t, a.Scan(nil))
	assert.True(t, a.IsZero())

	assert.Error(t, a.Scan(true))

	v, err := MustAmount("1.50").Value()
	require.NoError(t, err)
	assert.Equal(t, "1.5", v)
}
