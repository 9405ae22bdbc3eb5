package intervals

import "math"

// add is the interval rule for sums. Addition is increasing in every operand,
// so the bounds are the sums of the operands' bounds.
func add(ops []Value) Value {
	var lo, hi float64
	for _, v := range ops {
		a, b := bounds(v)
		lo += a
		hi += b
	}
	return span(lo, hi)
}

// mul is the interval rule for products. The running bounds start at the
// first operand. Each interval operand replaces them with the extrema of the
// four products of endpoints; each scalar operand scales them.
func mul(ops []Value) Value {
	lo, hi := bounds(ops[0])
	for _, v := range ops[1:] {
		switch v := v.(type) {
		case Interval:
			a, b := times(lo, v.Lo), times(lo, v.Hi)
			c, d := times(hi, v.Lo), times(hi, v.Hi)
			lo = math.Min(math.Min(a, b), math.Min(c, d))
			hi = math.Max(math.Max(a, b), math.Max(c, d))
		case Scalar:
			lo, hi = times(lo, float64(v)), times(hi, float64(v))
			if lo > hi {
				lo, hi = hi, lo
			}
		default:
			panic("intervals: mul of " + v.String())
		}
	}
	return span(lo, hi)
}

// times multiplies two bounds. Zero times an infinite bound is zero, since
// the infinite bound stands in for arbitrarily large finite values.
func times(x, y float64) float64 {
	if x == 0 || y == 0 {
		return 0
	}
	return x * y
}
