package engine

import "errors"

// Sentinel errors for the two terminal rejection paths. Both leave no
// partial effects; the caller must change inputs to get a different outcome.
var (
	// ErrInvalidRequest flags a malformed request, detected before any
	// computation.
	ErrInvalidRequest = errors.New("invalid deploy request")
	// ErrNoViableAllocation flags a well-formed request for which the
	// current pool odds leave no candidate above the threshold.
	ErrNoViableAllocation = errors.New("no viable allocation")
)

// Snapshot is the read-only round view the planner consumes. It mirrors the
// on-chain record fields the optimizer needs and nothing else, keeping the
// engine decoupled from the account layout.
type Snapshot struct {
	Committed      [NumBlocks]uint64
	TotalCommitted uint64
	Motherlode     uint64
}

// Request holds the planner inputs.
type Request struct {
	TotalBudget       uint64
	UnitPrice         uint64
	MinEVThresholdBps int16
	MaxBlocks         uint8
}

// Plan is the planner output: Count candidates in ascending committed-size
// order, with parallel amounts, block indices and expected values.
type Plan struct {
	Count          uint8
	Amounts        [MaxCandidates]uint64
	BlockIndices   [MaxCandidates]uint8
	ExpectedValues [MaxCandidates]int64
}

// TotalAmount sums the planned amounts; always <= the request budget.
func (p Plan) TotalAmount() uint64 {
	var sum uint64
	for i := uint8(0); i < p.Count; i++ {
		sum += p.Amounts[i]
	}
	return sum
}

// PlanDeployment runs the full pipeline over one round snapshot:
// validate, rank, size, scale, filter. The computation is pure and
// integer-only, so re-running it with the same inputs is bit-identical on
// any machine.
func PlanDeployment(snap Snapshot, req Request) (Plan, error) {
	if req.MaxBlocks == 0 || req.MaxBlocks > MaxCandidates {
		return Plan{}, ErrInvalidRequest
	}
	if req.UnitPrice == 0 {
		return Plan{}, ErrInvalidRequest
	}

	poolValue := PoolValue(req.UnitPrice, snap.Motherlode)

	// Sizing: unconstrained Kelly optimum for each of the smallest blocks.
	ranked := RankBlocks(snap.Committed)
	var optimal [MaxCandidates]uint64
	var totalOptimal uint64
	for i := 0; i < int(req.MaxBlocks); i++ {
		optimal[i] = OptimalSize(ranked[i].Committed, snap.TotalCommitted, poolValue)
		totalOptimal = satAdd(totalOptimal, optimal[i])
	}

	// Scaling: shrink proportionally so the sum fits the budget.
	factor := ScaleFactor(totalOptimal, req.TotalBudget)

	// Zero-sized and zero-scaled candidates drop out here; a dropped
	// candidate does not end consideration the way a threshold failure does.
	cands := make([]Candidate, 0, req.MaxBlocks)
	for i := 0; i < int(req.MaxBlocks); i++ {
		if optimal[i] == 0 {
			continue
		}
		scaled := ApplyScale(optimal[i], factor)
		if scaled == 0 {
			continue
		}
		cands = append(cands, Candidate{
			BlockIndex: ranked[i].Index,
			Committed:  ranked[i].Committed,
			Amount:     scaled,
		})
	}

	// Filtering: smallest-first, first threshold failure is terminal.
	plan := FilterCandidates(cands, snap.TotalCommitted, poolValue, req.MinEVThresholdBps)

	if plan.Count == 0 {
		return Plan{}, ErrNoViableAllocation
	}
	return plan, nil
}
