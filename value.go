package intervals

import (
	"math"
	"strconv"
)

// Value is the result of evaluating an expression over intervals. It is one
// of Scalar, Interval, Undefined, or Symbolic.
type Value interface {
	String() string
	value()
}

// Scalar is an exact real value. An interval whose bounds coincide is always
// represented as a Scalar.
type Scalar float64

// Interval is a closed range of reals [Lo, Hi]. Either bound may be infinite.
// Use Span to create intervals so that degenerate ones collapse to scalars.
type Interval struct {
	Lo, Hi float64
}

// Undefined is the result of an expression that has no real value for some
// inputs in its domain, e.g. the square root of an interval containing
// negative numbers. Undefined poisons every expression containing it.
type Undefined struct{}

// Symbolic is the result of an expression that could not be reduced to a
// number because it contains unbound variables or functions with no interval
// rule. Node is the expression with every reducible subexpression replaced by
// its value.
type Symbolic struct {
	Node Node
}

func (Scalar) value()    {}
func (Interval) value()  {}
func (Undefined) value() {}
func (Symbolic) value()  {}

// Span creates a value spanning [lo, hi]. If lo == hi, the result is a
// Scalar; otherwise it is an Interval. Panics if lo > hi or either bound is
// NaN.
func Span(lo, hi float64) Value {
	if !(lo <= hi) {
		panic("intervals: invalid bounds [" + fmtFloat(lo) + ", " + fmtFloat(hi) + "]")
	}
	if lo == hi {
		return Scalar(lo)
	}
	return Interval{Lo: lo, Hi: hi}
}

// span is the result of an interval rule with bounds lo and hi, in either
// order. A NaN bound means the operation has no real value.
func span(lo, hi float64) Value {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return Undefined{}
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return Span(lo, hi)
}

// scalar is the result of a rule applied to a scalar.
func scalar(x float64) Value {
	if math.IsNaN(x) {
		return Undefined{}
	}
	return Scalar(x)
}

// bounds gets the endpoints of a Scalar or Interval. A scalar is an interval
// of zero width.
func bounds(v Value) (lo, hi float64) {
	switch v := v.(type) {
	case Scalar:
		return float64(v), float64(v)
	case Interval:
		return v.Lo, v.Hi
	default:
		panic("intervals: no bounds for " + v.String())
	}
}

// Contains returns whether x is in the interval.
func (i Interval) Contains(x float64) bool {
	return i.Lo <= x && x <= i.Hi
}

// Width returns the distance between the interval's bounds.
func (i Interval) Width() float64 {
	return i.Hi - i.Lo
}

func (i Interval) String() string {
	return "[" + fmtFloat(i.Lo) + ", " + fmtFloat(i.Hi) + "]"
}

func (s Scalar) String() string {
	return fmtFloat(float64(s))
}

func (Undefined) String() string {
	return "undefined"
}

func (s Symbolic) String() string {
	if s.Node == nil {
		return "<nil>"
	}
	return s.Node.String()
}

func fmtFloat(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "∞"
	case math.IsInf(x, -1):
		return "-∞"
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}
