package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/scotchthepilgrim/ore-ev-program/internal/deploy"
	"github.com/scotchthepilgrim/ore-ev-program/internal/engine"
	"github.com/scotchthepilgrim/ore-ev-program/internal/wire"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/lifecycle"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/logger"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/metrics"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/trace"
)

// Executor plans and submits one deployment; implemented by deploy.Service.
type Executor interface {
	Execute(ctx context.Context, req engine.Request, traceID string) (engine.Plan, error)
	LatestRound() (uint64, engine.Snapshot, bool)
}

// Service is the operator-facing HTTP surface.
type Service struct {
	addr string
	exec Executor
	srv  *http.Server
}

func New(addr string, exec Executor) *Service { return &Service{addr: addr, exec: exec} }

func (s *Service) Name() string { return "api" }

// SetExecutor allows tests/wiring to inject the deploy executor.
func (s *Service) SetExecutor(e Executor) { s.exec = e }

func (s *Service) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/deploy", s.handleDeploy)
	mux.HandleFunc("/v1/round", s.handleRound)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.srv = &http.Server{Addr: s.addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorJ("api", map[string]any{"op": "listen", "err": err.Error()})
		}
	}()
	logger.InfoJ("api", map[string]any{"op": "start", "addr": s.addr})
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// handleDeploy accepts one deployment request, either as JSON or as the raw
// 24-byte record (Content-Type: application/octet-stream).
func (s *Service) handleDeploy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.exec == nil {
		http.Error(w, "executor unavailable", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	var req wire.DeployRequest
	if r.Header.Get("Content-Type") == "application/octet-stream" {
		req, err = wire.DecodeDeployRequest(body)
	} else {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		metrics.Inc("api_deploy_total", map[string]string{"result": "bad_request"})
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tid := trace.New()
	ctx := trace.WithContext(r.Context(), tid)
	plan, err := s.exec.Execute(ctx, req.ToInternal(), tid)
	switch {
	case errors.Is(err, engine.ErrInvalidRequest):
		metrics.Inc("api_deploy_total", map[string]string{"result": "invalid"})
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, engine.ErrNoViableAllocation):
		// Well-formed request, but the market offers nothing acceptable.
		metrics.Inc("api_deploy_total", map[string]string{"result": "no_viable"})
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, deploy.ErrNoRound):
		metrics.Inc("api_deploy_total", map[string]string{"result": "no_round"})
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		metrics.Inc("api_deploy_total", map[string]string{"result": "error"})
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	metrics.Inc("api_deploy_total", map[string]string{"result": "ok"})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(wire.PlanFromInternal(plan))
}

type roundView struct {
	RoundID        uint64   `json:"round_id"`
	Committed      []uint64 `json:"committed"`
	TotalCommitted uint64   `json:"total_committed"`
	Motherlode     uint64   `json:"motherlode"`
}

func (s *Service) handleRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.exec == nil {
		http.Error(w, "executor unavailable", http.StatusServiceUnavailable)
		return
	}
	id, snap, ok := s.exec.LatestRound()
	if !ok {
		http.Error(w, "no round observed", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(roundView{
		RoundID:        id,
		Committed:      snap.Committed[:],
		TotalCommitted: snap.TotalCommitted,
		Motherlode:     snap.Motherlode,
	})
}

var _ lifecycle.Service = (*Service)(nil)
