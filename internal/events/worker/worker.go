package worker

import (
	"context"

	"attestry/internal/events"
)

// Worker consumes domain events from a channel and forwards them to a sink.
// It decouples request latency from sink latency when the sink is a broker.
type Worker struct {
	sink  events.Sink
	inbox <-chan events.Event
}

func NewWorker(sink events.Sink, inbox <-chan events.Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}
