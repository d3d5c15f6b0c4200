package lifecycle

import (
	"context"

	"github.com/scotchthepilgrim/ore-ev-program/pkg/logger"
)

// Service is the minimal contract for long-running components owned by main.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Manager starts services in registration order and stops them in reverse.
type Manager struct {
	svcs []Service
}

func New() *Manager { return &Manager{} }

func (m *Manager) Add(s Service) {
	if s != nil {
		m.svcs = append(m.svcs, s)
	}
}

// StartAll starts every registered service. On the first failure it stops the
// services already started (reverse order) and returns the error.
func (m *Manager) StartAll(ctx context.Context) error {
	for i, s := range m.svcs {
		if err := s.Start(ctx); err != nil {
			logger.ErrorJ("lifecycle", map[string]any{"op": "start", "service": s.Name(), "err": err.Error()})
			for j := i - 1; j >= 0; j-- {
				_ = m.svcs[j].Stop(ctx)
			}
			return err
		}
		logger.InfoJ("lifecycle", map[string]any{"op": "start", "service": s.Name(), "result": "ok"})
	}
	return nil
}

// StopAll stops every service in reverse order; errors are logged, not returned.
func (m *Manager) StopAll(ctx context.Context) error {
	for i := len(m.svcs) - 1; i >= 0; i-- {
		s := m.svcs[i]
		if err := s.Stop(ctx); err != nil {
			logger.ErrorJ("lifecycle", map[string]any{"op": "stop", "service": s.Name(), "err": err.Error()})
		}
	}
	return nil
}
