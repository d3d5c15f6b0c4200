package deploy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scotchthepilgrim/ore-ev-program/internal/engine"
	"github.com/scotchthepilgrim/ore-ev-program/internal/round"
	"github.com/scotchthepilgrim/ore-ev-program/internal/wire"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/bus"
)

type recordingSubmitter struct {
	amounts []uint64
	masks   []uint32
	failAt  int // 1-based call index to fail on, 0 means never
}

func (r *recordingSubmitter) Submit(ctx context.Context, amount uint64, mask uint32) error {
	r.amounts = append(r.amounts, amount)
	r.masks = append(r.masks, mask)
	if r.failAt > 0 && len(r.amounts) == r.failAt {
		return errors.New("submit failed")
	}
	return nil
}

func testRound() round.Round {
	var r round.Round
	r.ID = 42
	r.Committed[0] = 1000
	r.Committed[1] = 2000
	for i := 2; i < engine.NumBlocks; i++ {
		r.Committed[i] = 400000
	}
	r.TotalCommitted = 9203000
	return r
}

func TestExecute_NoRound(t *testing.T) {
	s := New()
	sub := &recordingSubmitter{}
	s.SetSubmitter(sub)

	_, err := s.Execute(context.Background(), engine.Request{
		TotalBudget: 1000, UnitPrice: 1_000_000, MaxBlocks: 2,
	}, "")
	if !errors.Is(err, ErrNoRound) {
		t.Fatalf("err = %v, want ErrNoRound", err)
	}
	if len(sub.amounts) != 0 {
		t.Fatalf("submitter called %d times before a round was seen", len(sub.amounts))
	}
}

func TestExecute_SubmitsPerCandidate(t *testing.T) {
	s := New()
	sub := &recordingSubmitter{}
	s.SetSubmitter(sub)
	s.SetRound(testRound())

	plan, err := s.Execute(context.Background(), engine.Request{
		TotalBudget: 1_000_000_000_000,
		UnitPrice:   1_000_000,
		MaxBlocks:   2,
	}, "trace-1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if plan.Count != 2 {
		t.Fatalf("plan count %d, want 2", plan.Count)
	}
	if len(sub.amounts) != int(plan.Count) {
		t.Fatalf("got %d submit calls, want %d", len(sub.amounts), plan.Count)
	}
	for i := uint8(0); i < plan.Count; i++ {
		if sub.amounts[i] != plan.Amounts[i] {
			t.Fatalf("call %d amount %d, want %d", i, sub.amounts[i], plan.Amounts[i])
		}
		want := uint32(1) << plan.BlockIndices[i]
		if sub.masks[i] != want {
			t.Fatalf("call %d mask %b, want %b", i, sub.masks[i], want)
		}
	}
}

func TestExecute_PlannerErrorsIssueNoCommits(t *testing.T) {
	s := New()
	sub := &recordingSubmitter{}
	s.SetSubmitter(sub)
	s.SetRound(testRound())

	cases := []struct {
		name string
		req  engine.Request
		want error
	}{
		{"zero max blocks", engine.Request{TotalBudget: 1000, UnitPrice: 1_000_000}, engine.ErrInvalidRequest},
		{"zero price", engine.Request{TotalBudget: 1000, MaxBlocks: 2}, engine.ErrInvalidRequest},
		{"unreachable threshold", engine.Request{TotalBudget: 1, UnitPrice: 1_000_000, MinEVThresholdBps: 10000, MaxBlocks: 1}, engine.ErrNoViableAllocation},
	}
	for _, tc := range cases {
		if _, err := s.Execute(context.Background(), tc.req, ""); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
	if len(sub.amounts) != 0 {
		t.Fatalf("submitter called %d times on planner errors", len(sub.amounts))
	}
}

func TestExecute_SubmitErrorAborts(t *testing.T) {
	s := New()
	sub := &recordingSubmitter{failAt: 1}
	s.SetSubmitter(sub)
	s.SetRound(testRound())

	_, err := s.Execute(context.Background(), engine.Request{
		TotalBudget: 1_000_000_000_000,
		UnitPrice:   1_000_000,
		MaxBlocks:   2,
	}, "")
	if err == nil {
		t.Fatalf("expected submit error")
	}
	if len(sub.amounts) != 1 {
		t.Fatalf("got %d submit calls after first failure, want 1", len(sub.amounts))
	}
}

type channelSubmitter struct {
	calls chan uint64
}

func (c *channelSubmitter) Submit(_ context.Context, amount uint64, _ uint32) error {
	c.calls <- amount
	return nil
}

func TestBusConsumer_RoundThenDeploy(t *testing.T) {
	b := bus.New(8)
	s := NewWithSub(b.Subscribe())
	sub := &channelSubmitter{calls: make(chan uint64, 8)}
	s.SetSubmitter(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	r := testRound()
	b.Publish(ctx, bus.Event{Kind: bus.KindRound, Round: r.ID, Body: r})
	b.Publish(ctx, bus.Event{Kind: bus.KindDeploy, Body: wire.DeployRequest{
		TotalBudget: 1_000_000_000_000,
		UnitPrice:   1_000_000,
		MaxBlocks:   2,
	}})

	for _, want := range []uint64{18439, 25481} {
		select {
		case got := <-sub.calls:
			if got != want {
				t.Fatalf("submitted %d, want %d", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for submit of %d", want)
		}
	}
}

func TestLatestRound(t *testing.T) {
	s := New()
	if _, _, ok := s.LatestRound(); ok {
		t.Fatalf("fresh service reports a round")
	}
	s.SetRound(testRound())
	id, snap, ok := s.LatestRound()
	if !ok || id != 42 {
		t.Fatalf("round id %d ok=%v, want 42 true", id, ok)
	}
	if snap.TotalCommitted != 9203000 || snap.Committed[1] != 2000 {
		t.Fatalf("snapshot not projected: %+v", snap)
	}
}
