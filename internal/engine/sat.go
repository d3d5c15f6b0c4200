package engine

import "math/bits"

// Saturating arithmetic used by every computation fed from externally
// controlled values. Overflow clamps to the type bound instead of wrapping,
// so adversarial inputs degrade to zero-valued or extreme results rather
// than faulting.

func satAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return sum
}

func satSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func satMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return ^uint64(0)
	}
	return lo
}

func satSubI64(a, b int64) int64 {
	d := a - b
	if a >= 0 && b < 0 && d < 0 {
		return int64(^uint64(0) >> 1) // MaxInt64
	}
	if a < 0 && b > 0 && d >= 0 {
		return -int64(^uint64(0)>>1) - 1 // MinInt64
	}
	return d
}
