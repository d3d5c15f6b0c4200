package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/scotchthepilgrim/ore-ev-program/internal/engine"
)

// CommitDiscriminator tags the settlement program's deploy instruction.
const CommitDiscriminator uint8 = 6

// CommitLen is the size of an encoded commit instruction.
const CommitLen = 1 + 8 + 4

// BlockMask returns the one-hot mask selecting a single block.
func BlockMask(blockIndex uint8) (uint32, error) {
	if int(blockIndex) >= engine.NumBlocks {
		return 0, fmt.Errorf("block index out of range: %d", blockIndex)
	}
	return 1 << blockIndex, nil
}

// EncodeCommit renders one commit-deployment call for the settlement system:
// discriminator, amount (u64 LE), block mask (u32 LE).
func EncodeCommit(amount uint64, mask uint32) []byte {
	b := make([]byte, CommitLen)
	b[0] = CommitDiscriminator
	binary.LittleEndian.PutUint64(b[1:], amount)
	binary.LittleEndian.PutUint32(b[9:], mask)
	return b
}
