package intervals

import "math"

// fullTurn is the period of sine and cosine.
const fullTurn = 2 * math.Pi

func sin(v Value) Value {
	switch v := v.(type) {
	case Scalar:
		return scalar(math.Sin(float64(v)))
	case Interval:
		return periodic(v, math.Sin, 3*math.Pi/2, math.Pi/2)
	default:
		panic("intervals: sin of " + v.String())
	}
}

func cos(v Value) Value {
	switch v := v.(type) {
	case Scalar:
		return scalar(math.Cos(float64(v)))
	case Interval:
		return periodic(v, math.Cos, math.Pi, fullTurn)
	default:
		panic("intervals: cos of " + v.String())
	}
}

// periodic bounds a function with range [-1, 1] and period fullTurn which
// takes its minimum at phase lowAt and its maximum at phase highAt. Where the
// interval contains no extremum, the function is monotonic over it and the
// endpoint values decide the bound.
func periodic(v Interval, f func(float64) float64, lowAt, highAt float64) Value {
	var lo, hi float64
	if hasPhase(v, lowAt) {
		lo = -1
	} else {
		lo = math.Min(f(v.Lo), f(v.Hi))
	}
	if hasPhase(v, highAt) {
		hi = 1
	} else {
		hi = math.Max(f(v.Lo), f(v.Hi))
	}
	return span(lo, hi)
}

// hasPhase returns whether the interval contains a point congruent to phase
// modulo fullTurn. Translated by -phase, it does exactly when the least
// multiple of fullTurn at or above its lower bound is at or below its upper
// bound.
func hasPhase(v Interval, phase float64) bool {
	lo, hi := v.Lo-phase, v.Hi-phase
	return math.Ceil(lo/fullTurn)*fullTurn <= hi
}

// exp is the interval rule for the exponential, which is increasing
// everywhere.
func exp(v Value) Value {
	switch v := v.(type) {
	case Scalar:
		return scalar(math.Exp(float64(v)))
	case Interval:
		// Bounds that overflow or underflow together stay an Interval, since
		// the input spans more than one point.
		return Interval{Lo: math.Exp(v.Lo), Hi: math.Exp(v.Hi)}
	default:
		panic("intervals: exp of " + v.String())
	}
}
