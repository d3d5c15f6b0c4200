package engine

import "math/bits"

// Isqrt returns the floor of the square root of n,
// i.e. Isqrt(n)*Isqrt(n) <= n < (Isqrt(n)+1)*(Isqrt(n)+1).
//
// Newton's method with a fixed cap of 6 refinement steps, exiting early once
// the iterate stops decreasing. The seed is the power of two just above
// sqrt(n), which keeps the iterate within a factor of two of the root and
// makes the fixed cap sufficient for the full uint64 range. The cap bounds
// the cost for callers that must stay within a deterministic step budget.
func Isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	if n <= 3 {
		return 1
	}

	x := uint64(1) << ((bits.Len64(n) + 1) / 2)
	y := (x + n/x) >> 1

	for i := 0; i < 6; i++ {
		if y >= x {
			return x
		}
		x = y
		y = (x + n/x) >> 1
	}

	return x
}
