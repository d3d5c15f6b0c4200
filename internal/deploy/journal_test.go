package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scotchthepilgrim/ore-ev-program/internal/engine"
)

func samplePlan() engine.Plan {
	var p engine.Plan
	p.Count = 2
	p.Amounts[0], p.Amounts[1] = 18439, 25481
	p.BlockIndices[0], p.BlockIndices[1] = 0, 1
	p.ExpectedValues[0], p.ExpectedValues[1] = 330470, 315783
	return p
}

func TestJournal_AppendAndRecover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans", "journal.log")
	j := NewJournal(path)

	if err := j.Append(7, "t-1", samplePlan()); err != nil {
		t.Fatalf("append: %v", err)
	}
	p2 := samplePlan()
	p2.Count = 1
	p2.Amounts[0] = 999
	if err := j.Append(8, "t-2", p2); err != nil {
		t.Fatalf("append: %v", err)
	}

	id, got, err := j.LastPlan()
	if err != nil {
		t.Fatalf("last plan: %v", err)
	}
	if id != 8 {
		t.Fatalf("round id %d, want 8", id)
	}
	if got.Count != 1 || got.Amounts[0] != 999 {
		t.Fatalf("recovered plan %+v", got)
	}
}

func TestJournal_SkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	j := NewJournal(path)
	if err := j.Append(3, "", samplePlan()); err != nil {
		t.Fatalf("append: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("{not json\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	id, got, err := j.LastPlan()
	if err != nil {
		t.Fatalf("last plan: %v", err)
	}
	if id != 3 || got.Count != 2 {
		t.Fatalf("recovered round %d count %d", id, got.Count)
	}
}

func TestJournal_EmptyFileIsMiss(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "missing.log"))
	if _, _, err := j.LastPlan(); err == nil {
		t.Fatalf("expected error for missing journal")
	}
}
