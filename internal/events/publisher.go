package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sink receives emitted events. Implementations are append-only: the
// in-memory store for tests and single-node deployments, the Kafka producer
// for everything else.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps and forwards domain events. It is append-only and uses a
// Sink for persistence so tests can swap sinks easily.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.sink.Append(ctx, event)
}
