package engine

import "math/bits"

// ScaleFactor returns the 1e9 fixed-point factor that shrinks a set of
// unconstrained sizes with sum total down to budget. It is scaleOne (a
// no-op) when the sum already fits or is zero.
func ScaleFactor(total, budget uint64) uint64 {
	if total == 0 || total <= budget {
		return scaleOne
	}
	return mulDiv(budget, scaleOne, total)
}

// ApplyScale multiplies amount by a ScaleFactor, truncating toward zero.
func ApplyScale(amount, factor uint64) uint64 {
	if factor == scaleOne {
		return amount
	}
	return mulDiv(amount, factor, scaleOne)
}

// mulDiv computes a*b/d using a 128-bit intermediate so the proportional
// rescale stays exact for budgets beyond 2^64/1e9.
func mulDiv(a, b, d uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return ^uint64(0) // quotient would overflow; clamp
	}
	q, _ := bits.Div64(hi, lo, d)
	return q
}
