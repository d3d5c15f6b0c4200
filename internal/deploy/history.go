package deploy

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scotchthepilgrim/ore-ev-program/internal/engine"
)

// History persists accepted deployments to sqlite for later inspection.
// The optimizer itself stays stateless; this is an audit surface only.
type History struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS deployments (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    round_id    INTEGER NOT NULL,
    trace_id    TEXT,
    block_index INTEGER NOT NULL,
    amount      INTEGER NOT NULL,
    expected_ev INTEGER NOT NULL,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deployments_round ON deployments(round_id);
`

// OpenHistory opens (and initializes) the history database at path.
// Use ":memory:" for tests.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Record inserts one row per plan candidate.
func (h *History) Record(ctx context.Context, roundID uint64, traceID string, plan engine.Plan) error {
	if h == nil || h.db == nil {
		return nil
	}
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	for i := uint8(0); i < plan.Count; i++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO deployments (round_id, trace_id, block_index, amount, expected_ev, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			int64(roundID), traceID, plan.BlockIndices[i], int64(plan.Amounts[i]), plan.ExpectedValues[i], now,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// HistoryRow is one persisted deployment.
type HistoryRow struct {
	RoundID    uint64
	TraceID    string
	BlockIndex uint8
	Amount     uint64
	ExpectedEV int64
}

// Recent returns up to n most recent deployments, newest first.
func (h *History) Recent(ctx context.Context, n int) ([]HistoryRow, error) {
	if h == nil || h.db == nil {
		return nil, nil
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT round_id, trace_id, block_index, amount, expected_ev FROM deployments ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HistoryRow
	for rows.Next() {
		var r HistoryRow
		var roundID, amount int64
		if err := rows.Scan(&roundID, &r.TraceID, &r.BlockIndex, &amount, &r.ExpectedEV); err != nil {
			return nil, err
		}
		r.RoundID = uint64(roundID)
		r.Amount = uint64(amount)
		out = append(out, r)
	}
	return out, rows.Err()
}
