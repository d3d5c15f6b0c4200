package deploy

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/scotchthepilgrim/ore-ev-program/internal/engine"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/logger"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/metrics"
)

// Journal is a minimal append-only log of issued plans. Each entry is one
// JSON line. It is a best-effort record for reconstructing the last plan on
// restart and for avoiding a duplicate submission against the same round.
type Journal struct {
	mu   sync.Mutex
	path string
}

type journalEntry struct {
	RoundID        uint64   `json:"round_id"`
	TraceID        string   `json:"trace_id,omitempty"`
	Count          uint8    `json:"count"`
	Amounts        []uint64 `json:"amounts"`
	BlockIndices   []uint8  `json:"block_indices"`
	ExpectedValues []int64  `json:"expected_values"`
}

func NewJournal(path string) *Journal { return &Journal{path: path} }

// Append records an issued plan as a single JSON line.
func (j *Journal) Append(roundID uint64, traceID string, plan engine.Plan) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	n := int(plan.Count)
	enc := journalEntry{
		RoundID:        roundID,
		TraceID:        traceID,
		Count:          plan.Count,
		Amounts:        append([]uint64{}, plan.Amounts[:n]...),
		BlockIndices:   append([]uint8{}, plan.BlockIndices[:n]...),
		ExpectedValues: append([]int64{}, plan.ExpectedValues[:n]...),
	}
	b, _ := json.Marshal(enc)
	if _, err = f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	_ = f.Close()
	metrics.Inc("deploy_journal_appends_total", nil)
	logger.InfoJ("deploy_journal", map[string]any{"op": "append", "result": "ok", "round_id": roundID, "count": plan.Count})
	return nil
}

// LastPlan returns the last valid entry from the journal (if any).
func (j *Journal) LastPlan() (uint64, engine.Plan, error) {
	if j == nil {
		return 0, engine.Plan{}, errors.New("nil journal")
	}
	f, err := os.Open(j.path)
	if err != nil {
		return 0, engine.Plan{}, err
	}
	defer f.Close()
	// Scan all lines and keep the last valid one (files are expected to be small)
	var last journalEntry
	found := false
	s := bufio.NewScanner(f)
	for s.Scan() {
		var e journalEntry
		if json.Unmarshal(s.Bytes(), &e) == nil && e.Count > 0 {
			last = e
			found = true
		}
	}
	if !found {
		return 0, engine.Plan{}, errors.New("no entries")
	}
	var plan engine.Plan
	plan.Count = last.Count
	copy(plan.Amounts[:], last.Amounts)
	copy(plan.BlockIndices[:], last.BlockIndices)
	copy(plan.ExpectedValues[:], last.ExpectedValues)
	metrics.Inc("deploy_journal_recover_total", map[string]string{"result": "ok"})
	return last.RoundID, plan, nil
}
