package intervals

import (
	"math"
	"math/big"
)

// maxDenominator is the largest denominator considered when recovering the
// rational form of an exponent.
const maxDenominator = 1000000

// exponent is a power classified by the parity of its rational form in
// lowest terms.
type exponent struct {
	val float64
	// oddNum and oddDen are the parities of the numerator and denominator.
	oddNum, oddDen bool
}

// classify finds the rational form of a finite exponent. The denominator is
// limited so that floating-point images of fractions like 1/3 classify as the
// fractions themselves.
func classify(e float64) exponent {
	q := limitDenominator(new(big.Rat).SetFloat64(e), maxDenominator)
	den := q.Denom()
	return exponent{
		val:    e,
		oddNum: q.Num().Bit(0) == 1,
		oddDen: den.Bit(0) == 1,
	}
}

// limitDenominator finds the closest rational to r with denominator at most
// limit, using the convergents of the continued fraction of r.
func limitDenominator(r *big.Rat, limit int64) *big.Rat {
	bound := big.NewInt(limit)
	if r.Denom().Cmp(bound) <= 0 {
		return r
	}
	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	n, d := new(big.Int).Set(r.Num()), new(big.Int).Set(r.Denom())
	for {
		// d is always positive, so Div is floor division.
		a := new(big.Int).Div(n, d)
		q2 := new(big.Int).Mul(a, q1)
		q2.Add(q2, q0)
		if q2.Cmp(bound) > 0 {
			break
		}
		p2 := new(big.Int).Mul(a, p1)
		p2.Add(p2, p0)
		p0, q0, p1, q1 = p1, q1, p2, q2
		m := new(big.Int).Mul(a, d)
		n, d = d, m.Sub(n, m)
	}
	k := new(big.Int).Sub(bound, q0)
	k.Div(k, q1)
	// The best approximation is either the last convergent or the
	// semiconvergent between it and the one before.
	semi := new(big.Rat).SetFrac(
		new(big.Int).Add(p0, new(big.Int).Mul(k, p1)),
		new(big.Int).Add(q0, new(big.Int).Mul(k, q1)),
	)
	conv := new(big.Rat).SetFrac(p1, q1)
	ds := new(big.Rat).Sub(semi, r)
	dc := new(big.Rat).Sub(conv, r)
	if dc.Abs(dc).Cmp(ds.Abs(ds)) <= 0 {
		return conv
	}
	return semi
}

// realPow computes x^e over the reals. A negative base with an odd
// denominator has a real root whose sign depends on the numerator. A
// negative base with an even denominator has no real root; the result is
// -(|x|^e) by convention.
func realPow(x float64, e exponent) float64 {
	if x == 0 {
		// Drop the sign so that 0^-1 is +Inf.
		x = 0
	}
	if x >= 0 {
		return math.Pow(x, e.val)
	}
	m := math.Pow(-x, e.val)
	if e.oddDen && !e.oddNum {
		return m
	}
	return -m
}

// pow is the interval rule for powers. The exponent is a Scalar.
func pow(base, power Value) Value {
	e := float64(power.(Scalar))
	if e == 0 {
		return Scalar(1)
	}
	switch b := base.(type) {
	case Scalar:
		if math.IsInf(e, 0) || math.IsNaN(e) {
			return scalar(math.Pow(float64(b), e))
		}
		return scalar(realPow(float64(b), classify(e)))
	case Interval:
		if math.IsInf(e, 0) || math.IsNaN(e) {
			return Undefined{}
		}
		return powInterval(b, classify(e))
	default:
		panic("intervals: pow of " + base.String())
	}
}

// powInterval raises an interval to a power. The cases follow the shape of
// x^e: for a positive exponent, it is increasing when the numerator is odd,
// and symmetric about zero when the numerator is even; a negative exponent
// additionally has a pole at zero. Even denominators are roots, which have no
// real value for negative x.
func powInterval(b Interval, e exponent) Value {
	lo, hi := b.Lo, b.Hi
	f := func(x float64) float64 { return realPow(x, e) }
	inf := math.Inf(1)
	if e.val > 0 {
		switch {
		case !e.oddDen:
			if lo < 0 {
				return Undefined{}
			}
			return span(f(lo), f(hi))
		case !e.oddNum:
			if hi < 0 || lo > 0 {
				return span(f(lo), f(hi))
			}
			return span(0, math.Max(f(lo), f(hi)))
		default:
			return span(f(lo), f(hi))
		}
	}
	switch {
	case !e.oddDen:
		switch {
		case hi <= 0, lo < 0:
			// Either no part of the base is positive, or the part that is
			// must exclude the negative values.
			return Undefined{}
		case lo == 0:
			return span(f(hi), inf)
		default:
			return span(f(hi), f(lo))
		}
	case !e.oddNum:
		switch {
		case hi < 0 || lo > 0:
			return span(f(lo), f(hi))
		case lo == 0:
			return span(f(hi), inf)
		case hi == 0:
			return span(f(lo), inf)
		default:
			return span(math.Min(f(lo), f(hi)), inf)
		}
	default:
		switch {
		case hi < 0 || lo > 0:
			return span(f(hi), f(lo))
		case lo == 0:
			return span(f(hi), inf)
		case hi == 0:
			return span(-inf, f(lo))
		default:
			return span(-inf, inf)
		}
	}
}
