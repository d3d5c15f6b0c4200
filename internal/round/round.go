package round

import (
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/scotchthepilgrim/ore-ev-program/internal/engine"
)

// RecordLen is the exact size of the on-chain round record in bytes.
const RecordLen = 8 + 8 + 8*engine.NumBlocks + 32 + 8*engine.NumBlocks + 8 + 8 + 32 + 32 + 8 + 8 + 8 + 8

// Round mirrors the externally owned round record. All multi-byte fields are
// little-endian and laid out back to back with no implicit padding.
type Round struct {
	Discriminator  [8]byte
	ID             uint64
	Committed      [engine.NumBlocks]uint64
	SlotHash       [32]byte
	Count          [engine.NumBlocks]uint64
	ExpiresAt      uint64
	Motherlode     uint64
	RentPayer      [32]byte
	TopMiner       [32]byte
	TopMinerReward uint64
	TotalCommitted uint64
	TotalVaulted   uint64
	TotalWinnings  uint64
}

// Decode reads a Round from raw account bytes. Buffers longer than RecordLen
// are accepted; the extra bytes are ignored.
func Decode(b []byte) (Round, error) {
	if len(b) < RecordLen {
		return Round{}, fmt.Errorf("round record too short: %d < %d", len(b), RecordLen)
	}

	var r Round
	off := 0
	copy(r.Discriminator[:], b[off:off+8])
	off += 8
	r.ID = binary.LittleEndian.Uint64(b[off:])
	off += 8
	for i := range r.Committed {
		r.Committed[i] = binary.LittleEndian.Uint64(b[off:])
		off += 8
	}
	copy(r.SlotHash[:], b[off:off+32])
	off += 32
	for i := range r.Count {
		r.Count[i] = binary.LittleEndian.Uint64(b[off:])
		off += 8
	}
	r.ExpiresAt = binary.LittleEndian.Uint64(b[off:])
	off += 8
	r.Motherlode = binary.LittleEndian.Uint64(b[off:])
	off += 8
	copy(r.RentPayer[:], b[off:off+32])
	off += 32
	copy(r.TopMiner[:], b[off:off+32])
	off += 32
	r.TopMinerReward = binary.LittleEndian.Uint64(b[off:])
	off += 8
	r.TotalCommitted = binary.LittleEndian.Uint64(b[off:])
	off += 8
	r.TotalVaulted = binary.LittleEndian.Uint64(b[off:])
	off += 8
	r.TotalWinnings = binary.LittleEndian.Uint64(b[off:])
	return r, nil
}

// Encode renders the record back into its wire layout.
func (r Round) Encode() []byte {
	b := make([]byte, RecordLen)
	off := 0
	copy(b[off:], r.Discriminator[:])
	off += 8
	binary.LittleEndian.PutUint64(b[off:], r.ID)
	off += 8
	for i := range r.Committed {
		binary.LittleEndian.PutUint64(b[off:], r.Committed[i])
		off += 8
	}
	copy(b[off:], r.SlotHash[:])
	off += 32
	for i := range r.Count {
		binary.LittleEndian.PutUint64(b[off:], r.Count[i])
		off += 8
	}
	binary.LittleEndian.PutUint64(b[off:], r.ExpiresAt)
	off += 8
	binary.LittleEndian.PutUint64(b[off:], r.Motherlode)
	off += 8
	copy(b[off:], r.RentPayer[:])
	off += 32
	copy(b[off:], r.TopMiner[:])
	off += 32
	binary.LittleEndian.PutUint64(b[off:], r.TopMinerReward)
	off += 8
	binary.LittleEndian.PutUint64(b[off:], r.TotalCommitted)
	off += 8
	binary.LittleEndian.PutUint64(b[off:], r.TotalVaulted)
	off += 8
	binary.LittleEndian.PutUint64(b[off:], r.TotalWinnings)
	return b
}

// Snapshot projects the record onto the read-only view the planner consumes.
func (r Round) Snapshot() engine.Snapshot {
	return engine.Snapshot{
		Committed:      r.Committed,
		TotalCommitted: r.TotalCommitted,
		Motherlode:     r.Motherlode,
	}
}

// RentPayerAddr renders the rent payer reference in base58.
func (r Round) RentPayerAddr() string { return base58.Encode(r.RentPayer[:]) }

// TopMinerAddr renders the top miner reference in base58.
func (r Round) TopMinerAddr() string { return base58.Encode(r.TopMiner[:]) }
