package engine

import "testing"

func TestRankBlocks_Ascending(t *testing.T) {
	var committed [NumBlocks]uint64
	for i := range committed {
		committed[i] = uint64((NumBlocks - i) * 100)
	}
	ranked := RankBlocks(committed)
	for i := 1; i < NumBlocks; i++ {
		if ranked[i-1].Committed > ranked[i].Committed {
			t.Fatalf("rank %d out of order: %d > %d", i, ranked[i-1].Committed, ranked[i].Committed)
		}
	}
	if ranked[0].Index != NumBlocks-1 || ranked[NumBlocks-1].Index != 0 {
		t.Fatalf("reversed input not reordered: first=%d last=%d", ranked[0].Index, ranked[NumBlocks-1].Index)
	}
}

func TestRankBlocks_StableOnTies(t *testing.T) {
	var committed [NumBlocks]uint64
	for i := range committed {
		committed[i] = 500 // all equal
	}
	committed[10] = 100
	committed[20] = 100

	ranked := RankBlocks(committed)
	if ranked[0].Index != 10 || ranked[1].Index != 20 {
		t.Fatalf("tied minimum blocks reordered: got %d, %d", ranked[0].Index, ranked[1].Index)
	}
	// The remaining ties must keep original index order.
	want := uint8(0)
	for i := 2; i < NumBlocks; i++ {
		for want == 10 || want == 20 {
			want++
		}
		if ranked[i].Index != want {
			t.Fatalf("rank %d: got index %d, want %d", i, ranked[i].Index, want)
		}
		want++
	}
}
