package engine

import "math"

const adminFeeBps = 101

// ExpectedValue returns the probability-weighted net result, in the smallest
// capital unit, of committing deployAmount to a block currently holding
// blockCommitted. Degenerate inputs return math.MinInt64 so they always lose
// a threshold comparison.
//
// The win leg weights the pot by the deployer's share of the block and a
// 1-in-NumBlocks win probability; the loss leg is the principal weighted by
// the complementary probability; the platform keeps a 1.01% admin fee either
// way. Each term saturates before combination.
func ExpectedValue(blockCommitted, deployAmount, totalCommitted, poolValue uint64) int64 {
	if deployAmount == 0 || blockCommitted == 0 {
		return math.MinInt64
	}

	totalBlock := satAdd(blockCommitted, deployAmount)
	if totalBlock == 0 {
		return math.MinInt64
	}

	shareBps := satMul(deployAmount, 10_000) / totalBlock

	losingPool := satSub(totalCommitted, blockCommitted)
	winnings := satMul(losingPool, 10_000-settleFeeBps) / 10_000
	pot := satAdd(winnings, poolValue)

	expectedWin := satMul(pot, shareBps) / (NumBlocks * 10_000)
	expectedLoss := satMul(deployAmount, NumBlocks-1) / NumBlocks
	adminFee := satMul(deployAmount, adminFeeBps) / 10_000

	ev := satSubI64(clampI64(expectedWin), clampI64(expectedLoss))
	return satSubI64(ev, clampI64(adminFee))
}

// MinAcceptableEV converts a basis-point threshold into the smallest
// acceptable expected value for a given deployment size. Negative thresholds
// accept a bounded expected loss.
func MinAcceptableEV(deployAmount uint64, thresholdBps int16) int64 {
	mag := uint64(thresholdBps)
	if thresholdBps < 0 {
		mag = uint64(-int64(thresholdBps))
	}
	v := clampI64(mulDiv(deployAmount, mag, 10_000))
	if thresholdBps < 0 {
		return -v
	}
	return v
}

func clampI64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
