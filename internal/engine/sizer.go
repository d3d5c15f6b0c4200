package engine

// NumBlocks is the number of slots in a round.
const NumBlocks = 25

// MaxCandidates caps how many blocks one plan may target.
const MaxCandidates = 5

const (
	// cScaled is the payout-curve constant C = 24.2525 in 1e9 fixed point.
	cScaled = 24_252_500_000
	// scaleOne is the fixed-point unit used for ratios.
	scaleOne = 1_000_000_000
	// settleFeeBps is kept by the protocol from the losing pool.
	settleFeeBps = 1_000
	// refineTolerance stops the sizer refinement once successive iterates
	// are this close, in the smallest capital unit.
	refineTolerance = 100
	// refineMaxPasses bounds the sizer refinement cost.
	refineMaxPasses = 5
)

// PoolValue converts the price signal and the motherlode bonus into the
// payout-pool leg of the pot: the price after the 10% refining fee plus the
// motherlode expectation (motherlode/625, then the same fee).
func PoolValue(unitPrice, motherlode uint64) uint64 {
	base := satMul(unitPrice, 9) / 10
	bonus := satMul(motherlode, 9) / 6250
	return satAdd(base, bonus)
}

// OptimalSize returns the Kelly-optimal commitment for one block:
//
//	y* = sqrt(V * O / C) - O
//
// where O is the block's committed amount and V the pot paid if it wins.
// Degenerate pools (empty block, or a pool no larger than the block) size
// to zero. The closed form is refined up to refineMaxPasses times, each pass
// shrinking the losing pool by the previous iterate to model the deployment's
// own impact on the odds, and stops once iterates converge within
// refineTolerance.
func OptimalSize(blockCommitted, totalCommitted, poolValue uint64) uint64 {
	if blockCommitted == 0 || totalCommitted <= blockCommitted {
		return 0
	}

	losingPool := satSub(totalCommitted, blockCommitted)
	winnings := satMul(losingPool, 10_000-settleFeeBps) / 10_000
	v := satAdd(winnings, poolValue)
	if v == 0 {
		return 0
	}

	yStar := closedForm(v, blockCommitted)

	for i := 0; i < refineMaxPasses; i++ {
		if yStar == 0 {
			break
		}

		adjustedPool := satSub(losingPool, yStar)
		adjustedWinnings := satMul(adjustedPool, 10_000-settleFeeBps) / 10_000
		newV := satAdd(adjustedWinnings, poolValue)
		if newV == 0 {
			return 0
		}

		next := closedForm(newV, blockCommitted)

		var diff uint64
		if next > yStar {
			diff = next - yStar
		} else {
			diff = yStar - next
		}
		yStar = next
		if diff < refineTolerance {
			break
		}
	}

	return yStar
}

func closedForm(v, blockCommitted uint64) uint64 {
	product := satMul(v, blockCommitted)
	scaled := satMul(product, scaleOne) / cScaled
	return satSub(Isqrt(scaled), blockCommitted)
}
