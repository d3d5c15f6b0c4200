package engine

import "sort"

// RankedBlock pairs a block's original index with its committed amount.
type RankedBlock struct {
	Index     uint8
	Committed uint64
}

// RankBlocks orders all blocks ascending by committed amount, keeping the
// original index order for equal amounts. Smallest blocks carry the best
// odds per unit committed, so downstream stages may treat the first failure
// as terminal.
func RankBlocks(committed [NumBlocks]uint64) [NumBlocks]RankedBlock {
	var blocks [NumBlocks]RankedBlock
	for i := range committed {
		blocks[i] = RankedBlock{Index: uint8(i), Committed: committed[i]}
	}
	sort.SliceStable(blocks[:], func(i, j int) bool { return blocks[i].Committed < blocks[j].Committed })
	return blocks
}
