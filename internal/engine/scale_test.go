package engine

import (
	"math"
	"testing"
)

func TestScaleFactor(t *testing.T) {
	if got := ScaleFactor(0, 1000); got != scaleOne {
		t.Fatalf("zero sum: got %d, want identity", got)
	}
	if got := ScaleFactor(500, 1000); got != scaleOne {
		t.Fatalf("sum within budget: got %d, want identity", got)
	}
	if got := ScaleFactor(1000, 1000); got != scaleOne {
		t.Fatalf("sum equals budget: got %d, want identity", got)
	}
	if got := ScaleFactor(2000, 1000); got != scaleOne/2 {
		t.Fatalf("half budget: got %d, want %d", got, scaleOne/2)
	}
	// Budgets beyond 2^64/1e9 go through the 128-bit path without wrapping.
	if got := ScaleFactor(math.MaxUint64, math.MaxUint64/2); got != 499999999 {
		t.Fatalf("wide factor: got %d, want 499999999", got)
	}
	if got := ScaleFactor(43920, 20000); got != 455373406 {
		t.Fatalf("fractional factor: got %d, want 455373406", got)
	}
}

func TestApplyScale_SumNeverExceedsBudget(t *testing.T) {
	amounts := []uint64{18439, 25481, 7, 999_999_937}
	var total uint64
	for _, a := range amounts {
		total += a
	}
	for _, budget := range []uint64{1, 100, 20000, total - 1, total, total + 1} {
		f := ScaleFactor(total, budget)
		var sum uint64
		for _, a := range amounts {
			sum += ApplyScale(a, f)
		}
		if sum > total {
			t.Fatalf("budget %d: scaled sum %d exceeds original %d", budget, sum, total)
		}
		if total > budget && sum > budget {
			t.Fatalf("budget %d: scaled sum %d exceeds budget", budget, sum)
		}
	}
}

func TestApplyScale_Identity(t *testing.T) {
	if got := ApplyScale(12345, scaleOne); got != 12345 {
		t.Fatalf("identity scale changed amount: %d", got)
	}
	if got := ApplyScale(43920, 455373406); got != 19999 {
		t.Fatalf("ApplyScale(43920, 455373406) = %d, want 19999", got)
	}
}
