package engine

// Candidate is one scaled deployment the EV filter considers. Candidates
// must arrive in ascending committed-size order.
type Candidate struct {
	BlockIndex uint8
	Committed  uint64
	Amount     uint64
}

// FilterCandidates recomputes expected value for each candidate and keeps
// the prefix that clears the threshold. The first failure ends consideration
// entirely: candidates are pre-sorted so the best-value ones come first, and
// stopping there is policy, not a shortcut. A candidate that alone would
// pass never enters the plan once an earlier one has failed.
func FilterCandidates(cands []Candidate, totalCommitted, poolValue uint64, thresholdBps int16) Plan {
	var plan Plan
	for _, c := range cands {
		if plan.Count >= MaxCandidates {
			break
		}
		ev := ExpectedValue(c.Committed, c.Amount, totalCommitted, poolValue)
		if ev < MinAcceptableEV(c.Amount, thresholdBps) {
			break
		}
		plan.Amounts[plan.Count] = c.Amount
		plan.BlockIndices[plan.Count] = c.BlockIndex
		plan.ExpectedValues[plan.Count] = ev
		plan.Count++
	}
	return plan
}
