package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/scotchthepilgrim/ore-ev-program/internal/engine"
)

// RequestLen is the fixed size of the deploy request record.
const RequestLen = 24

// DeployRequest is the wire-format deployment instruction: how much capital
// to allocate, the price signal valuing the bonus pool, the minimum-return
// threshold and how many of the smallest blocks to consider. The trailing
// five bytes of the record are reserved and ignored.
type DeployRequest struct {
	TotalBudget       uint64 `json:"total_budget"`
	UnitPrice         uint64 `json:"unit_price"`
	MinEVThresholdBps int16  `json:"min_ev_threshold_bps"`
	MaxBlocks         uint8  `json:"max_blocks"`
}

// DecodeDeployRequest reads the fixed 24-byte little-endian record.
func DecodeDeployRequest(b []byte) (DeployRequest, error) {
	if len(b) < RequestLen {
		return DeployRequest{}, fmt.Errorf("deploy request too short: %d < %d", len(b), RequestLen)
	}
	return DeployRequest{
		TotalBudget:       binary.LittleEndian.Uint64(b[0:]),
		UnitPrice:         binary.LittleEndian.Uint64(b[8:]),
		MinEVThresholdBps: int16(binary.LittleEndian.Uint16(b[16:])),
		MaxBlocks:         b[18],
	}, nil
}

// Encode renders the request into its 24-byte record; reserved bytes zero.
func (r DeployRequest) Encode() []byte {
	b := make([]byte, RequestLen)
	binary.LittleEndian.PutUint64(b[0:], r.TotalBudget)
	binary.LittleEndian.PutUint64(b[8:], r.UnitPrice)
	binary.LittleEndian.PutUint16(b[16:], uint16(r.MinEVThresholdBps))
	b[18] = r.MaxBlocks
	return b
}

// ToInternal converts the wire request to the planner input.
func (r DeployRequest) ToInternal() engine.Request {
	return engine.Request{
		TotalBudget:       r.TotalBudget,
		UnitPrice:         r.UnitPrice,
		MinEVThresholdBps: r.MinEVThresholdBps,
		MaxBlocks:         r.MaxBlocks,
	}
}

// FromInternal converts a planner input back to its wire form.
func FromInternal(req engine.Request) DeployRequest {
	return DeployRequest{
		TotalBudget:       req.TotalBudget,
		UnitPrice:         req.UnitPrice,
		MinEVThresholdBps: req.MinEVThresholdBps,
		MaxBlocks:         req.MaxBlocks,
	}
}
