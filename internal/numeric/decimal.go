// Package numeric provides Decimal, a non-negative number whose magnitude is
// not bounded by float64 range.
//
// Values below 1e300 are held as a plain float64 so that everyday game
// arithmetic is ordinary double arithmetic. Larger values switch to a
// mantissa × 10^exponent form with the mantissa in [1, 10).
package numeric

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	plainLimit    = 1e300
	plainExponent = 300

	// Exponent gap past which the smaller operand is below float64 precision.
	precisionGap = 17

	maxExponent = int64(1) << 53
)

// ErrInvalidDecimal is returned when text cannot be parsed as a Decimal.
var ErrInvalidDecimal = errors.New("invalid decimal")

// Decimal is an immutable non-negative number. The zero value is 0.
type Decimal struct {
	mantissa float64
	exponent int64 // 0 = plain form, >= 300 = scientific form
}

var (
	Zero = Decimal{}
	One  = Decimal{mantissa: 1}

	// largest is where saturating operations land instead of overflowing.
	largest = Decimal{mantissa: 9.999999999999998, exponent: maxExponent}
)

// FromFloat converts f. Negative and NaN inputs become zero.
func FromFloat(f float64) Decimal {
	return normalize(f, 0)
}

// FromInt converts n. Negative inputs become zero.
func FromInt(n int64) Decimal {
	return normalize(float64(n), 0)
}

// Parse reads decimal text such as "42", "1.5e12" or "3.2e4500".
func Parse(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty string", ErrInvalidDecimal)
	}

	f, err := strconv.ParseFloat(s, 64)
	switch {
	case err == nil && (math.IsNaN(f) || math.IsInf(f, 0)):
		return Zero, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	case err == nil && f < plainLimit:
		return FromFloat(f), nil
	case err != nil && !errors.Is(err, strconv.ErrRange):
		return Zero, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}

	// Large or out of float64 range: keep the textual mantissa exact.
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		if err == nil {
			return FromFloat(f), nil
		}
		return Zero, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	m, err := strconv.ParseFloat(s[:idx], 64)
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
		return Zero, fmt.Errorf("%w: bad mantissa in %q", ErrInvalidDecimal, s)
	}
	e, err := strconv.ParseInt(strings.TrimPrefix(s[idx+1:], "+"), 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("%w: bad exponent in %q", ErrInvalidDecimal, s)
	}
	return normalize(m, e), nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func pow10(n int64) float64 {
	switch {
	case n > 400:
		return math.Inf(1)
	case n < -400:
		return 0
	}
	return math.Pow10(int(n))
}

// normalize builds the canonical Decimal for m × 10^e.
func normalize(m float64, e int64) Decimal {
	if math.IsNaN(m) || m <= 0 {
		return Zero
	}
	if math.IsInf(m, 1) {
		return largest
	}
	if e == 0 && m < plainLimit {
		return Decimal{mantissa: m}
	}

	shift := int64(math.Floor(math.Log10(m)))
	m /= pow10(shift)
	e += shift
	for m >= 10 {
		m /= 10
		e++
	}
	for m < 1 {
		m *= 10
		e--
	}

	if e < plainExponent {
		return normalize(m*pow10(e), 0)
	}
	if e > maxExponent {
		return largest
	}
	return Decimal{mantissa: m, exponent: e}
}

func (d Decimal) isPlain() bool {
	return d.exponent == 0
}

// sci returns d as mantissa in [1, 10) and a base-10 exponent.
func (d Decimal) sci() (float64, int64) {
	if !d.isPlain() || d.mantissa == 0 {
		return d.mantissa, d.exponent
	}
	e := int64(math.Floor(math.Log10(d.mantissa)))
	m := d.mantissa / pow10(e)
	if m >= 10 {
		m /= 10
		e++
	} else if m < 1 {
		m *= 10
		e--
	}
	return m, e
}

func fromLog10(l float64) Decimal {
	switch {
	case math.IsNaN(l), l < -float64(maxExponent):
		return Zero
	case l >= float64(maxExponent):
		return largest
	}
	e := math.Floor(l)
	return normalize(math.Pow(10, l-e), int64(e))
}

// Add returns d + o.
func (d Decimal) Add(o Decimal) Decimal {
	if d.isPlain() && o.isPlain() {
		return normalize(d.mantissa+o.mantissa, 0)
	}
	if d.IsZero() {
		return o
	}
	if o.IsZero() {
		return d
	}
	dm, de := d.sci()
	om, oe := o.sci()
	if de < oe {
		d, dm, de, om, oe = o, om, oe, dm, de
	}
	if de-oe > precisionGap {
		return d
	}
	return normalize(dm+om*pow10(oe-de), de)
}

// Sub returns d - o, or zero when o >= d.
func (d Decimal) Sub(o Decimal) Decimal {
	if d.Lte(o) {
		return Zero
	}
	if o.IsZero() {
		return d
	}
	if d.isPlain() && o.isPlain() {
		return normalize(d.mantissa-o.mantissa, 0)
	}
	dm, de := d.sci()
	om, oe := o.sci()
	if de-oe > precisionGap {
		return d
	}
	return normalize(dm-om*pow10(oe-de), de)
}

// Mul returns d × o.
func (d Decimal) Mul(o Decimal) Decimal {
	if d.IsZero() || o.IsZero() {
		return Zero
	}
	if d.isPlain() && o.isPlain() {
		if p := d.mantissa * o.mantissa; !math.IsInf(p, 0) {
			return normalize(p, 0)
		}
	}
	dm, de := d.sci()
	om, oe := o.sci()
	return normalize(dm*om, de+oe)
}

// Div returns d / o. Division by zero yields zero.
func (d Decimal) Div(o Decimal) Decimal {
	if d.IsZero() || o.IsZero() {
		return Zero
	}
	if d.isPlain() && o.isPlain() {
		if q := d.mantissa / o.mantissa; !math.IsInf(q, 0) {
			return normalize(q, 0)
		}
	}
	dm, de := d.sci()
	om, oe := o.sci()
	return normalize(dm/om, de-oe)
}

// Pow returns d raised to p. Exponents may be fractional or very large.
func (d Decimal) Pow(p float64) Decimal {
	if p == 0 {
		return One
	}
	if d.IsZero() {
		return Zero
	}
	if d.isPlain() {
		r := math.Pow(d.mantissa, p)
		if !math.IsInf(r, 0) && !math.IsNaN(r) {
			return normalize(r, 0)
		}
	}
	return fromLog10(d.Log10() * p)
}

// PowDecimal returns d raised to a Decimal exponent.
func (d Decimal) PowDecimal(p Decimal) Decimal {
	return d.Pow(p.Float64())
}

// Sqrt returns the square root of d.
func (d Decimal) Sqrt() Decimal {
	if d.isPlain() {
		return normalize(math.Sqrt(d.mantissa), 0)
	}
	m, e := d.mantissa, d.exponent
	if e%2 != 0 {
		m *= 10
		e--
	}
	return normalize(math.Sqrt(m), e/2)
}

// Floor truncates d to an integer. Scientific-form values are already
// integral at float64 precision.
func (d Decimal) Floor() Decimal {
	if !d.isPlain() {
		return d
	}
	return normalize(math.Floor(d.mantissa), 0)
}

// Round rounds d to the nearest integer, halves away from zero.
func (d Decimal) Round() Decimal {
	if !d.isPlain() {
		return d
	}
	return normalize(math.Round(d.mantissa), 0)
}

// Log10 returns the base-10 logarithm of d (-Inf for zero).
func (d Decimal) Log10() float64 {
	if d.isPlain() {
		return math.Log10(d.mantissa)
	}
	return math.Log10(d.mantissa) + float64(d.exponent)
}

// Cmp returns -1, 0 or +1 as d is less than, equal to, or greater than o.
func (d Decimal) Cmp(o Decimal) int {
	switch {
	case d.isPlain() && o.isPlain():
		switch {
		case d.mantissa < o.mantissa:
			return -1
		case d.mantissa > o.mantissa:
			return 1
		}
		return 0
	case d.isPlain():
		return -1
	case o.isPlain():
		return 1
	}
	switch {
	case d.exponent < o.exponent:
		return -1
	case d.exponent > o.exponent:
		return 1
	case d.mantissa < o.mantissa:
		return -1
	case d.mantissa > o.mantissa:
		return 1
	}
	return 0
}

func (d Decimal) Eq(o Decimal) bool  { return d.Cmp(o) == 0 }
func (d Decimal) Lt(o Decimal) bool  { return d.Cmp(o) < 0 }
func (d Decimal) Lte(o Decimal) bool { return d.Cmp(o) <= 0 }
func (d Decimal) Gt(o Decimal) bool  { return d.Cmp(o) > 0 }
func (d Decimal) Gte(o Decimal) bool { return d.Cmp(o) >= 0 }

// IsZero reports whether d is 0.
func (d Decimal) IsZero() bool {
	return d.isPlain() && d.mantissa == 0
}

// Max returns the larger of d and o.
func (d Decimal) Max(o Decimal) Decimal {
	if d.Lt(o) {
		return o
	}
	return d
}

// Min returns the smaller of d and o.
func (d Decimal) Min(o Decimal) Decimal {
	if d.Gt(o) {
		return o
	}
	return d
}

// Float64 returns d as a float64; scientific-form values return +Inf.
func (d Decimal) Float64() float64 {
	if !d.isPlain() {
		return math.Inf(1)
	}
	return d.mantissa
}

// Int64 truncates d, saturating at math.MaxInt64.
func (d Decimal) Int64() int64 {
	if !d.isPlain() || d.mantissa >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(d.mantissa)
}

// String renders d as decimal text that Parse reads back exactly.
func (d Decimal) String() string {
	if d.isPlain() {
		if d.mantissa < 1e21 {
			return strconv.FormatFloat(d.mantissa, 'f', -1, 64)
		}
		return strconv.FormatFloat(d.mantissa, 'e', -1, 64)
	}
	return strconv.FormatFloat(d.mantissa, 'f', -1, 64) + "e" + strconv.FormatInt(d.exponent, 10)
}

// MarshalJSON encodes d as a JSON string to keep full magnitude.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a quoted decimal string or a bare JSON number.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*d = Zero
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Value stores d as TEXT.
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan reads d from TEXT, INTEGER or REAL columns.
func (d *Decimal) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Zero
	case string:
		p, err := Parse(v)
		if err != nil {
			return err
		}
		*d = p
	case []byte:
		p, err := Parse(string(v))
		if err != nil {
			return err
		}
		*d = p
	case int64:
		*d = FromInt(v)
	case float64:
		*d = FromFloat(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidDecimal, src)
	}
	return nil
}
