package events

import "context"

// ChanSink hands events to a channel consumed by a worker, decoupling the
// emitting operation from the downstream sink.
type ChanSink struct {
	inbox chan<- Event
}

func NewChanSink(inbox chan<- Event) *ChanSink {
	return &ChanSink{inbox: inbox}
}

func (s *ChanSink) Append(ctx context.Context, event Event) error {
	select {
	case s.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
