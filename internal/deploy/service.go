package deploy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/scotchthepilgrim/ore-ev-program/internal/engine"
	"github.com/scotchthepilgrim/ore-ev-program/internal/round"
	"github.com/scotchthepilgrim/ore-ev-program/internal/wire"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/bus"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/lifecycle"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/logger"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/metrics"
)

// ErrNoRound is returned when a deploy request arrives before any round
// snapshot has been observed.
var ErrNoRound = errors.New("no round snapshot observed yet")

// Service owns the request path: it tracks the latest observed round, runs
// the planner for each deploy request, and issues one commit call per
// accepted candidate. The planner itself is pure; all effects live here.
type Service struct {
	sub       bus.Subscriber
	submitter Submitter
	journal   *Journal
	history   *History

	mu        sync.RWMutex
	snap      engine.Snapshot
	roundID   uint64
	haveRound bool
}

func New() *Service { return &Service{} }

func NewWithSub(sub bus.Subscriber) *Service { return &Service{sub: sub} }

func (s *Service) Name() string { return "deploy" }

// SetSubmitter injects the settlement collaborator. If nil, plans are
// computed and journaled but no commit calls leave the process.
func (s *Service) SetSubmitter(sub Submitter) { s.submitter = sub }

// SetJournal injects an optional plan journal.
func (s *Service) SetJournal(j *Journal) { s.journal = j }

// SetHistory injects an optional sqlite history store.
func (s *Service) SetHistory(h *History) { s.history = h }

func (s *Service) Start(ctx context.Context) error {
	if s.journal != nil {
		if id, last, err := s.journal.LastPlan(); err == nil {
			logger.InfoJ("deploy_journal", map[string]any{"op": "recover", "result": "ok", "round_id": id, "count": last.Count})
		} else {
			logger.InfoJ("deploy_journal", map[string]any{"op": "recover", "result": "miss"})
		}
	}
	if s.sub == nil {
		logger.Info("deploy start (direct mode)")
		return nil
	}
	go func() {
		for {
			select {
			case ev := <-s.sub:
				metrics.Inc("deploy_events_total", map[string]string{"kind": string(ev.Kind)})
				switch ev.Kind {
				case bus.KindRound:
					if r, ok := ev.Body.(round.Round); ok {
						s.SetRound(r)
					}
				case bus.KindDeploy:
					if req, ok := ev.Body.(wire.DeployRequest); ok {
						_, _ = s.Execute(ctx, req.ToInternal(), ev.TraceID)
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if err := s.history.Close(); err != nil {
		logger.ErrorJ("deploy_history", map[string]any{"op": "close", "err": err.Error()})
	}
	return nil
}

// SetRound replaces the tracked round snapshot.
func (s *Service) SetRound(r round.Round) {
	s.mu.Lock()
	s.snap = r.Snapshot()
	s.roundID = r.ID
	s.haveRound = true
	s.mu.Unlock()
	metrics.SetGauge("round_total_committed", nil, float64(r.TotalCommitted))
	logger.InfoJ("round_update", map[string]any{"round_id": r.ID, "total_committed": r.TotalCommitted, "motherlode": r.Motherlode})
}

// LatestRound reports the tracked round id and snapshot, if any.
func (s *Service) LatestRound() (uint64, engine.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roundID, s.snap, s.haveRound
}

// Execute plans one deployment against the latest round and submits each
// accepted candidate. Zero commit calls are issued on any planner error.
func (s *Service) Execute(ctx context.Context, req engine.Request, traceID string) (engine.Plan, error) {
	s.mu.RLock()
	snap, roundID, ok := s.snap, s.roundID, s.haveRound
	s.mu.RUnlock()
	if !ok {
		metrics.Inc("deploy_exec_total", map[string]string{"result": "no_round"})
		return engine.Plan{}, ErrNoRound
	}

	begin := time.Now()
	plan, err := engine.PlanDeployment(snap, req)
	metrics.ObserveSummary("deploy_plan_ms", nil, float64(time.Since(begin).Milliseconds()))
	if err != nil {
		result := "invalid_request"
		if errors.Is(err, engine.ErrNoViableAllocation) {
			result = "no_viable_allocation"
		}
		metrics.Inc("deploy_exec_total", map[string]string{"result": result})
		logger.InfoJ("deploy_exec", map[string]any{"result": result, "round_id": roundID, "trace_id": traceID})
		return engine.Plan{}, err
	}

	for i := uint8(0); i < plan.Count; i++ {
		mask, merr := wire.BlockMask(plan.BlockIndices[i])
		if merr != nil {
			return engine.Plan{}, merr
		}
		if s.submitter != nil {
			if serr := s.submitter.Submit(ctx, plan.Amounts[i], mask); serr != nil {
				metrics.Inc("deploy_exec_total", map[string]string{"result": "submit_error"})
				logger.ErrorJ("deploy_exec", map[string]any{"result": "submit_error", "round_id": roundID, "block": plan.BlockIndices[i], "err": serr.Error(), "trace_id": traceID})
				return plan, serr
			}
		}
		logger.InfoJ("deploy_commit", map[string]any{
			"round_id": roundID,
			"block":    plan.BlockIndices[i],
			"amount":   plan.Amounts[i],
			"ev":       plan.ExpectedValues[i],
			"trace_id": traceID,
		})
	}

	if s.journal != nil {
		if jerr := s.journal.Append(roundID, traceID, plan); jerr != nil {
			logger.ErrorJ("deploy_journal", map[string]any{"op": "append", "err": jerr.Error()})
		}
	}
	if s.history != nil {
		if herr := s.history.Record(ctx, roundID, traceID, plan); herr != nil {
			logger.ErrorJ("deploy_history", map[string]any{"op": "record", "err": herr.Error()})
		}
	}

	metrics.Inc("deploy_exec_total", map[string]string{"result": "ok"})
	logger.InfoJ("deploy_exec", map[string]any{
		"result":   "ok",
		"round_id": roundID,
		"count":    plan.Count,
		"total":    plan.TotalAmount(),
		"trace_id": traceID,
	})
	return plan, nil
}

var _ lifecycle.Service = (*Service)(nil)
