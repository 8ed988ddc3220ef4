package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits kept in stored balances.
const Precision = 4

// maxAmount is the largest magnitude an Amount may reach: the 96-bit mantissa
// bound (2^96-1) of the fixed-width decimal balances are specified against.
var maxAmount = decimal.RequireFromString("79228162514264337593543950335")

// MaxAmount returns the largest representable Amount.
func MaxAmount() Amount { return Amount{value: maxAmount} }

// Amount is an exact decimal monetary value.
//
// An amount keeps the scale it was written with: "1.0" prints as "1.0".
// Input amounts keep all their digits. Rounding to Precision digits only
// happens when a value is assigned to a stored balance, see Round.
type Amount struct {
	value decimal.Decimal
}

// A is a convenient factory for Amount.
func A[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Amount {
	return Amount{value: newDecimal(value)}
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// ParseAmount parses an exact decimal amount such as "1.12345678".
// Values outside the representable range are rejected.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Abs().GreaterThan(maxAmount) {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, ErrOverflow)
	}
	return Amount{value: d}, nil
}

// MustParseAmount is like ParseAmount but panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// CheckedAdd returns a+b, or ErrOverflow if the exact result is not representable.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	return checked(add(a.value, b.value))
}

// CheckedSub returns a-b, or ErrOverflow if the exact result is not representable.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	return checked(sub(a.value, b.value))
}

// add returns a+b with the larger scale of both, except that a zero operand
// yields the other operand unchanged.
func add(a, b decimal.Decimal) decimal.Decimal {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	}
	return a.Add(b)
}

// sub is the subtraction counterpart of add.
func sub(a, b decimal.Decimal) decimal.Decimal {
	switch {
	case b.IsZero():
		return a
	case a.IsZero():
		return b.Neg()
	}
	return a.Sub(b)
}

func checked(d decimal.Decimal) (Amount, error) {
	if d.Abs().GreaterThan(maxAmount) {
		return Amount{}, ErrOverflow
	}
	return Amount{value: d}, nil
}

// Round rounds to Precision fractional digits, half to even. An amount with
// fewer digits is returned unchanged.
func (a Amount) Round() Amount {
	if a.value.Exponent() >= -Precision {
		return a
	}
	return Amount{value: a.value.RoundBank(Precision)}
}

func (a Amount) Add(b Amount) Amount       { return Amount{value: add(a.value, b.value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{value: sub(a.value, b.value)} }
func (a Amount) Neg() Amount               { return Amount{value: a.value.Neg()} }
func (a Amount) Cmp(b Amount) int          { return a.value.Cmp(b.value) }
func (a Amount) Equal(b Amount) bool       { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool    { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool { return a.value.GreaterThan(b.value) }
func (a Amount) IsZero() bool              { return a.value.IsZero() }
func (a Amount) IsNegative() bool          { return a.value.IsNegative() }
func (a Amount) IsPositive() bool          { return a.value.IsPositive() }
func (a Amount) Decimal() decimal.Decimal  { return a.value }

// String formats the amount with its scale, trailing zeros included.
func (a Amount) String() string {
	if exp := a.value.Exponent(); exp < 0 {
		return a.value.StringFixed(-exp)
	}
	return a.value.String()
}

// StringFixed formats with exactly places fractional digits.
func (a Amount) StringFixed(places int32) string { return a.value.StringFixed(places) }

// MarshalJSON writes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both quoted and unquoted numbers.
// Out of range values are rejected and leave a unchanged.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	if d.Abs().GreaterThan(maxAmount) {
		return ErrOverflow
	}
	a.value = d
	return nil
}
