package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var seen []int64
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, event.TicketID)
		return nil
	})
	dispatcher.Subscribe(EventTicketStatusChanged, func(_ context.Context, event Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 3}))
	assert.Equal(t, []int64{3}, seen)
}

func TestDispatcherLogsFailingHandlerAndContinues(t *testing.T) {
	core, observed := observer.New(zap.WarnLevel)
	dispatcher := NewInMemoryDispatcher(zap.New(core))

	called := false
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("webhook unreachable")
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 9}))
	assert.True(t, called)

	failures := observed.FilterMessage("event handler failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, int64(9), failures[0].ContextMap()["ticket_id"])
}
