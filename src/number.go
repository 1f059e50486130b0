package pawbasic

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberMode selects the numeric representation used by an interpreter.
// It is fixed when the interpreter is constructed.
type NumberMode int

const (
	FastNumbers    NumberMode = iota // float64
	PreciseNumbers                   // arbitrary precision decimal
)

func (m NumberMode) String() string {
	if m == PreciseNumbers {
		return "precise"
	}
	return "fast"
}

// ParseNumberMode accepts "fast" or "precise" (case-insensitive)
func ParseNumberMode(s string) (NumberMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fast", "double", "binary":
		return FastNumbers, true
	case "precise", "decimal", "exact":
		return PreciseNumbers, true
	}
	return FastNumbers, false
}

// divisionPrecision is the number of decimal places kept by precise division
// when the quotient does not terminate.
const divisionPrecision = 28

// Number is a numeric runtime value in either fast or precise mode.
type Number struct {
	precise bool
	f       float64
	d       decimal.Decimal
}

// Float makes a number in the given mode from a float64. Precise mode has
// no NaN or infinity; those become zero. Use FloatChecked for computed
// results.
func (m NumberMode) Float(f float64) Number {
	n, err := m.FloatChecked(f)
	if err != nil {
		return Number{precise: true}
	}
	return n
}

// FloatChecked is Float that fails instead of losing a non-finite value in
// precise mode: NaN is StatusFailed and an infinity is StatusOverflow.
func (m NumberMode) FloatChecked(f float64) (Number, error) {
	if m != PreciseNumbers {
		return Number{f: f}, nil
	}
	switch {
	case math.IsNaN(f):
		return Number{}, NewError(StatusFailed, "result is not a number")
	case math.IsInf(f, 0):
		return Number{}, NewError(StatusOverflow, "result is out of range")
	}
	return Number{precise: true, d: decimal.NewFromFloat(f)}, nil
}

// Int makes a number in the given mode from an int64
func (m NumberMode) Int(i int64) Number {
	if m == PreciseNumbers {
		return Number{precise: true, d: decimal.NewFromInt(i)}
	}
	return Number{f: float64(i)}
}

// Parse parses a decimal literal (digits, optional fraction, optional exponent).
func (m NumberMode) Parse(text string) (Number, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Number{}, false
	}
	if m == PreciseNumbers {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return Number{}, false
		}
		return Number{precise: true, d: d}, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// ParseFloat returns ±Inf with ErrRange for huge literals; keep them.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return Number{f: f}, true
		}
		return Number{}, false
	}
	return Number{f: f}, true
}

// Mode reports which representation n uses
func (n Number) Mode() NumberMode {
	if n.precise {
		return PreciseNumbers
	}
	return FastNumbers
}

func (n Number) decimal() decimal.Decimal {
	if n.precise {
		return n.d
	}
	if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(n.f)
}

// promote lifts both operands to precise mode if either one is precise.
func promote(a, b Number) (Number, Number, bool) {
	if a.precise == b.precise {
		return a, b, a.precise
	}
	return Number{precise: true, d: a.decimal()}, Number{precise: true, d: b.decimal()}, true
}

// Float64 returns the value as a float64
func (n Number) Float64() float64 {
	if n.precise {
		f, _ := n.d.Float64()
		return f
	}
	return n.f
}

// Int64 truncates toward zero. ok is false for NaN, infinities and values
// that do not fit.
func (n Number) Int64() (int64, bool) {
	if n.precise {
		t := n.d.Truncate(0)
		if t.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || t.LessThan(decimal.NewFromInt(math.MinInt64)) {
			return 0, false
		}
		return t.IntPart(), true
	}
	if math.IsNaN(n.f) || math.IsInf(n.f, 0) || n.f >= 0x1p63 || n.f < -0x1p63 {
		return 0, false
	}
	return int64(n.f), true
}

// IsInteger reports whether n has no fractional part
func (n Number) IsInteger() bool {
	if n.precise {
		return n.d.Equal(n.d.Truncate(0))
	}
	return !math.IsInf(n.f, 0) && n.f == math.Trunc(n.f)
}

// IsZero reports whether n equals zero
func (n Number) IsZero() bool {
	if n.precise {
		return n.d.IsZero()
	}
	return n.f == 0
}

// Sign returns -1, 0 or 1
func (n Number) Sign() int {
	if n.precise {
		return n.d.Sign()
	}
	switch {
	case n.f < 0:
		return -1
	case n.f > 0:
		return 1
	}
	return 0
}

func (n Number) String() string {
	if n.precise {
		return n.d.String()
	}
	if n.IsInteger() && math.Abs(n.f) < 1e15 {
		return strconv.FormatInt(int64(n.f), 10)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// Add returns a + b
func (n Number) Add(o Number) Number {
	a, b, precise := promote(n, o)
	if precise {
		return Number{precise: true, d: a.d.Add(b.d)}
	}
	return Number{f: a.f + b.f}
}

// Sub returns a - b
func (n Number) Sub(o Number) Number {
	a, b, precise := promote(n, o)
	if precise {
		return Number{precise: true, d: a.d.Sub(b.d)}
	}
	return Number{f: a.f - b.f}
}

// Mul returns a * b
func (n Number) Mul(o Number) Number {
	a, b, precise := promote(n, o)
	if precise {
		return Number{precise: true, d: a.d.Mul(b.d)}
	}
	return Number{f: a.f * b.f}
}

// Div returns a / b, failing on a zero divisor in both modes.
func (n Number) Div(o Number) (Number, error) {
	a, b, precise := promote(n, o)
	if b.IsZero() {
		return Number{}, NewError(StatusDivisionByZero, "division by zero")
	}
	if precise {
		return Number{precise: true, d: a.d.DivRound(b.d, divisionPrecision)}, nil
	}
	return Number{f: a.f / b.f}, nil
}

// IntDiv returns the quotient truncated toward zero
func (n Number) IntDiv(o Number) (Number, error) {
	q, err := n.Div(o)
	if err != nil {
		return Number{}, err
	}
	if q.precise {
		return Number{precise: true, d: q.d.Truncate(0)}, nil
	}
	return Number{f: math.Trunc(q.f)}, nil
}

// Mod returns the remainder with the sign of the dividend
func (n Number) Mod(o Number) (Number, error) {
	a, b, precise := promote(n, o)
	if b.IsZero() {
		return Number{}, NewError(StatusDivisionByZero, "division by zero")
	}
	if precise {
		return Number{precise: true, d: a.d.Mod(b.d)}, nil
	}
	return Number{f: math.Mod(a.f, b.f)}, nil
}

// Pow returns n raised to o. Precise mode keeps exactness for integer
// exponents. Zero to a negative power is a division by zero in both modes.
func (n Number) Pow(o Number) (Number, error) {
	a, b, precise := promote(n, o)
	if a.IsZero() && b.Sign() < 0 {
		return Number{}, NewError(StatusDivisionByZero, "zero raised to a negative power")
	}
	if !precise {
		return Number{f: math.Pow(a.f, b.f)}, nil
	}
	if b.IsInteger() && b.d.Abs().LessThanOrEqual(decimal.NewFromInt(1<<16)) {
		if b.d.Sign() < 0 {
			one := decimal.NewFromInt(1)
			return Number{precise: true, d: one.DivRound(a.d.Pow(b.d.Neg()), divisionPrecision)}, nil
		}
		return Number{precise: true, d: a.d.Pow(b.d)}, nil
	}
	return PreciseNumbers.FloatChecked(math.Pow(a.Float64(), b.Float64()))
}

// Neg returns -n
func (n Number) Neg() Number {
	if n.precise {
		return Number{precise: true, d: n.d.Neg()}
	}
	return Number{f: -n.f}
}

// Abs returns |n|
func (n Number) Abs() Number {
	if n.precise {
		return Number{precise: true, d: n.d.Abs()}
	}
	return Number{f: math.Abs(n.f)}
}

// Floor rounds toward negative infinity
func (n Number) Floor() Number {
	if n.precise {
		return Number{precise: true, d: n.d.Floor()}
	}
	return Number{f: math.Floor(n.f)}
}

// Truncate rounds toward zero
func (n Number) Truncate() Number {
	if n.precise {
		return Number{precise: true, d: n.d.Truncate(0)}
	}
	return Number{f: math.Trunc(n.f)}
}

// Round rounds half away from zero to the given number of decimal places
func (n Number) Round(places int32) Number {
	if n.precise {
		return Number{precise: true, d: n.d.Round(places)}
	}
	scale := math.Pow(10, float64(places))
	return Number{f: math.Round(n.f*scale) / scale}
}

// Cmp compares n and o, returning -1, 0 or 1
func (n Number) Cmp(o Number) int {
	a, b, precise := promote(n, o)
	if precise {
		return a.d.Cmp(b.d)
	}
	switch {
	case a.f < b.f:
		return -1
	case a.f > b.f:
		return 1
	}
	return 0
}

// Equal reports numeric equality
func (n Number) Equal(o Number) bool {
	return n.Cmp(o) == 0
}
