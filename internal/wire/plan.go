package wire

import "github.com/scotchthepilgrim/ore-ev-program/internal/engine"

// DeployPlan is the JSON wire form of a planner result, trimmed to the
// accepted candidates.
type DeployPlan struct {
	Count          uint8    `json:"count"`
	Amounts        []uint64 `json:"amounts"`
	BlockIndices   []uint8  `json:"block_indices"`
	ExpectedValues []int64  `json:"expected_values"`
	TotalAmount    uint64   `json:"total_amount"`
}

// PlanFromInternal converts a planner plan to its wire form.
func PlanFromInternal(p engine.Plan) DeployPlan {
	n := int(p.Count)
	return DeployPlan{
		Count:          p.Count,
		Amounts:        append([]uint64{}, p.Amounts[:n]...),
		BlockIndices:   append([]uint8{}, p.BlockIndices[:n]...),
		ExpectedValues: append([]int64{}, p.ExpectedValues[:n]...),
		TotalAmount:    p.TotalAmount(),
	}
}
