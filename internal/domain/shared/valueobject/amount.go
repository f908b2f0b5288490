package valueobject

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places monetary amounts are rounded to
const MoneyPlaces int32 = 2

// Amount is an immutable decimal value object for monetary amounts.
// It serialises as a bare JSON number so it stays wire-compatible with
// backends that store prices as numbers.
type Amount struct {
	d decimal.Decimal
}

// NewAmount creates an Amount from a decimal
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// NewAmountFromFloat creates an Amount from a float64
func NewAmountFromFloat(f float64) Amount {
	return Amount{d: decimal.NewFromFloat(f)}
}

// NewAmountFromInt creates an Amount from an int64
func NewAmountFromInt(i int64) Amount {
	return Amount{d: decimal.NewFromInt(i)}
}

// NewAmountFromString creates an Amount from a string representation
func NewAmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Amount{d: d}, nil
}

// MustAmount parses s and panics on failure. Intended for constants and tests.
func MustAmount(s string) Amount {
	a, err := NewAmountFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ZeroAmount returns a zero Amount
func ZeroAmount() Amount {
	return Amount{}
}

// Decimal returns the underlying decimal
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Add returns a + other
func (a Amount) Add(other Amount) Amount {
	return Amount{d: a.d.Add(other.d)}
}

// MulInt returns a × n
func (a Amount) MulInt(n int64) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(n))}
}

// Percent returns a × rate / 100
func (a Amount) Percent(rate int64) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(rate)).Div(decimal.NewFromInt(100))}
}

// Round rounds half away from zero to the given number of places
func (a Amount) Round(places int32) Amount {
	return Amount{d: a.d.Round(places)}
}

// RoundMoney rounds to MoneyPlaces
func (a Amount) RoundMoney() Amount {
	return a.Round(MoneyPlaces)
}

// Equal compares by value, ignoring representation (10.5 == 10.50)
func (a Amount) Equal(other Amount) bool {
	return a.d.Equal(other.d)
}

// LessThan returns true if a < other
func (a Amount) LessThan(other Amount) bool {
	return a.d.LessThan(other.d)
}

// IsZero returns true if the amount is zero
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// String returns the amount with trailing zeros trimmed
func (a Amount) String() string {
	return a.d.String()
}

// StringFixed returns the amount with exactly MoneyPlaces decimals
func (a Amount) StringFixed() string {
	return a.d.StringFixed(MoneyPlaces)
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

// UnmarshalJSON accepts JSON numbers, numeric strings and null
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.d = decimal.Zero
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		if s == "" {
			a.d = decimal.Zero
			return nil
		}
		data = []byte(s)
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	a.d = d
	return nil
}

// Value implements driver.Valuer for database storage
func (a Amount) Value() (driver.Value, error) {
	return a.d.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (a *Amount) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		a.d = decimal.Zero
	case float64:
		a.d = decimal.NewFromFloat(v)
	case int64:
		a.d = decimal.NewFromInt(v)
	case string:
		return a.scanString(v)
	case []byte:
		return a.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Amount", value)
	}
	return nil
}

func (a *Amount) scanString(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	a.d = d
	return nil
}
