package bus

import (
	"context"
)

type Kind string

const (
	// KindRound carries a freshly observed round snapshot from the feed.
	KindRound Kind = "round"
	// KindDeploy carries an asynchronous deployment request.
	KindDeploy Kind = "deploy"
)

type Event struct {
	Kind    Kind
	Round   uint64
	Body    any
	TraceID string
}

type Subscriber chan Event

type Bus struct {
	pub chan Event
}

func New(size int) *Bus {
	if size <= 0 {
		size = 128
	}
	return &Bus{pub: make(chan Event, size)}
}

// Publish enqueues an event, dropping it if the buffer is full. A slow
// consumer must never stall the feed.
func (b *Bus) Publish(_ context.Context, ev Event) {
	select {
	case b.pub <- ev:
	default:
	}
}

func (b *Bus) Subscribe() Subscriber { return b.pub }
