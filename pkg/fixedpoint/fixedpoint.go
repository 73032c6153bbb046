// Package fixedpoint implements the 18-decimal fixed-point arithmetic used
// throughout the contract engines.
//
// Amounts and rates are scaled integers (scale 1e18) over math/big, so a
// nominal rate of 5% is stored as 0.05 * 1e18. Multiplication and division
// rescale and truncate toward zero, which is the rounding behavior every
// interest and fee computation in the engines depends on. shopspring/decimal
// is used only as a bridge for parsing and rendering human-readable values —
// never for the arithmetic itself.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places carried by every Int.
const Scale = 18

// one is the scaled representation of 1.0.
var one = new(big.Int).Exp(big.NewInt(10), big.NewInt(Scale), nil)

// Int is an immutable 18-decimal fixed-point number. The zero value and a
// nil pointer both behave as 0; all operations return fresh values.
type Int struct {
	v big.Int
}

// ════════════════════════════════════════════════════════════════════
// Constructors
// ════════════════════════════════════════════════════════════════════

// New returns n as a fixed-point value (n * 1e18).
func New(n int64) *Int {
	x := new(Int)
	x.v.Mul(big.NewInt(n), one)
	return x
}

// Zero returns 0.
func Zero() *Int { return new(Int) }

// One returns 1.0 in fixed-point representation.
func One() *Int { return New(1) }

// FromScaled wraps an already-scaled integer value.
func FromScaled(raw *big.Int) *Int {
	x := new(Int)
	if raw != nil {
		x.v.Set(raw)
	}
	return x
}

// FromDecimal converts a decimal value, truncating toward zero past 18
// fractional digits.
func FromDecimal(d decimal.Decimal) *Int {
	x := new(Int)
	x.v.Set(d.Mul(decimal.New(1, Scale)).BigInt())
	return x
}

// Parse reads a human-readable decimal string such as "1000" or "-0.05".
func Parse(s string) (*Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("fixedpoint: parse %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(s string) *Int {
	x, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return x
}

// ════════════════════════════════════════════════════════════════════
// Arithmetic
// ════════════════════════════════════════════════════════════════════

// val reads x's raw value, treating nil as zero.
func val(x *Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return &x.v
}

// Add returns x + y.
func (x *Int) Add(y *Int) *Int {
	r := new(Int)
	r.v.Add(val(x), val(y))
	return r
}

// Sub returns x - y.
func (x *Int) Sub(y *Int) *Int {
	r := new(Int)
	r.v.Sub(val(x), val(y))
	return r
}

// Mul returns x * y rescaled to 18 decimals, truncating toward zero.
func (x *Int) Mul(y *Int) *Int {
	r := new(Int)
	r.v.Mul(val(x), val(y))
	r.v.Quo(&r.v, one)
	return r
}

// Div returns x / y rescaled to 18 decimals, truncating toward zero.
// Division by zero returns zero, matching the reference's defensive
// behavior for numeric edge cases.
func (x *Int) Div(y *Int) *Int {
	r := new(Int)
	d := val(y)
	if d.Sign() == 0 {
		return r
	}
	r.v.Mul(val(x), one)
	r.v.Quo(&r.v, d)
	return r
}

// Neg returns -x.
func (x *Int) Neg() *Int {
	r := new(Int)
	r.v.Neg(val(x))
	return r
}

// Abs returns |x|.
func (x *Int) Abs() *Int {
	r := new(Int)
	r.v.Abs(val(x))
	return r
}

// Min returns the smaller of x and y.
func (x *Int) Min(y *Int) *Int {
	if x.Cmp(y) <= 0 {
		return x.Clone()
	}
	return y.Clone()
}

// Max returns the larger of x and y.
func (x *Int) Max(y *Int) *Int {
	if x.Cmp(y) >= 0 {
		return x.Clone()
	}
	return y.Clone()
}

// Clamp bounds x to [lo, hi]. A nil bound is ignored.
func (x *Int) Clamp(lo, hi *Int) *Int {
	r := x.Clone()
	if lo != nil && r.Cmp(lo) < 0 {
		r = lo.Clone()
	}
	if hi != nil && r.Cmp(hi) > 0 {
		r = hi.Clone()
	}
	return r
}

// Cmp compares x and y, returning -1, 0, or +1.
func (x *Int) Cmp(y *Int) int { return val(x).Cmp(val(y)) }

// Sign returns -1, 0, or +1 according to the sign of x.
func (x *Int) Sign() int { return val(x).Sign() }

// IsZero reports whether x is exactly zero. A nil *Int is zero.
func (x *Int) IsZero() bool { return x.Sign() == 0 }

// Equal reports whether x and y represent the same value.
func (x *Int) Equal(y *Int) bool { return x.Cmp(y) == 0 }

// Clone returns an independent copy of x. Cloning nil yields zero.
func (x *Int) Clone() *Int {
	r := new(Int)
	r.v.Set(val(x))
	return r
}

// Scaled returns a copy of the raw scaled integer.
func (x *Int) Scaled() *big.Int { return new(big.Int).Set(val(x)) }

// ════════════════════════════════════════════════════════════════════
// Rendering & JSON
// ════════════════════════════════════════════════════════════════════

// Decimal converts x to a shopspring decimal for display.
func (x *Int) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(val(x), -Scale)
}

// String renders x as a plain decimal number, e.g. "1000.05".
func (x *Int) String() string { return x.Decimal().String() }

// MarshalJSON renders the value as a quoted decimal string.
func (x *Int) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number.
func (x *Int) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		x.v.SetInt64(0)
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	x.v.Set(&parsed.v)
	return nil
}
