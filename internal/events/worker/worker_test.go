package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"attestry/internal/events"
)

func TestWorkerDrainsInbox(t *testing.T) {
	store := events.NewInMemoryStore()
	inbox := make(chan events.Event, 2)
	w := NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	inbox <- events.Event{Type: events.TypeIdentityCreated, Actor: "alice"}
	inbox <- events.Event{Type: events.TypeIdentityRevoked, Actor: "alice"}

	require.Eventually(t, func() bool {
		got, err := store.List(context.Background())
		return err == nil && len(got) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
