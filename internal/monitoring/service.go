package monitoring

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/scotchthepilgrim/ore-ev-program/pkg/lifecycle"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/logger"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/metrics"
)

// Service exposes the process metrics registry and a liveness probe.
type Service struct {
	addr string
	srv  *http.Server
}

func New(addr string) *Service { return &Service{addr: addr} }

func (s *Service) Name() string { return "monitoring" }

func (s *Service) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.srv = &http.Server{Addr: s.addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorJ("monitoring", map[string]any{"op": "listen", "err": err.Error()})
		}
	}()
	logger.InfoJ("monitoring", map[string]any{"op": "start", "addr": s.addr})
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

var _ lifecycle.Service = (*Service)(nil)
