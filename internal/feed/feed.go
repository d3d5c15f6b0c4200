package feed

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/websocket"

	"github.com/scotchthepilgrim/ore-ev-program/internal/round"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/bus"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/lifecycle"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/logger"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/metrics"
)

const (
	minRetry      = 1 * time.Second
	maxRetry      = 60 * time.Second
	backoffFactor = 3

	keepaliveEvery = 30 * time.Second
)

// Service watches a websocket endpoint that streams raw round records and
// republishes decoded snapshots on the bus. Byte-identical frames are
// deduplicated so downstream consumers only see state changes.
type Service struct {
	url     string
	b       *bus.Bus
	clk     clock.Clock
	dialer  *websocket.Dialer
	cancel  context.CancelFunc
	lastSum uint64
	haveSum bool
}

func New(url string, b *bus.Bus) *Service {
	return &Service{url: url, b: b, clk: clock.New(), dialer: websocket.DefaultDialer}
}

func (s *Service) Name() string { return "feed" }

// SetClock injects a mock clock for tests.
func (s *Service) SetClock(c clock.Clock) { s.clk = c }

func (s *Service) Start(ctx context.Context) error {
	if s.url == "" {
		logger.Info("feed disabled (no url)")
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *Service) run(ctx context.Context) {
	delay := minRetry
	first := true
	for {
		if !first {
			t := s.clk.Timer(delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return
			}
			delay *= backoffFactor
			if delay > maxRetry {
				delay = maxRetry
			}
		}
		first = false
		if ctx.Err() != nil {
			return
		}

		logger.InfoJ("feed", map[string]any{"op": "dial", "url": s.url})
		c, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			metrics.Inc("feed_dial_total", map[string]string{"result": "error"})
			logger.ErrorJ("feed", map[string]any{"op": "dial", "err": err.Error()})
			continue
		}
		metrics.Inc("feed_dial_total", map[string]string{"result": "ok"})
		delay = minRetry

		done := make(chan struct{})
		go s.keepalive(ctx, c, done)
		s.readLoop(ctx, c)
		close(done)
		_ = c.Close()
	}
}

func (s *Service) readLoop(ctx context.Context, c *websocket.Conn) {
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.ErrorJ("feed", map[string]any{"op": "read", "err": err.Error()})
			}
			return
		}
		s.handleFrame(ctx, msg)
	}
}

// handleFrame decodes one raw round record and publishes it unless it is a
// byte-identical repeat of the previous frame.
func (s *Service) handleFrame(ctx context.Context, frame []byte) {
	sum := xxhash.Sum64(frame)
	if s.haveSum && sum == s.lastSum {
		metrics.Inc("feed_frames_total", map[string]string{"result": "dup"})
		return
	}

	r, err := round.Decode(frame)
	if err != nil {
		metrics.Inc("feed_frames_total", map[string]string{"result": "invalid"})
		logger.ErrorJ("feed", map[string]any{"op": "decode", "err": err.Error()})
		return
	}
	s.lastSum, s.haveSum = sum, true

	metrics.Inc("feed_frames_total", map[string]string{"result": "ok"})
	s.b.Publish(ctx, bus.Event{Kind: bus.KindRound, Round: r.ID, Body: r})
}

func (s *Service) keepalive(ctx context.Context, c *websocket.Conn, done chan struct{}) {
	t := s.clk.Ticker(keepaliveEvery)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-t.C:
			_ = c.WriteMessage(websocket.PingMessage, nil)
		}
	}
}

var _ lifecycle.Service = (*Service)(nil)
