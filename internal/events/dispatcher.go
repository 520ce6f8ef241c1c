package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler consumes a published event. A non-nil return marks this handler
// as failed for the event; delivery to the remaining handlers still happens.
type EventHandler func(context.Context, Event) error

// Dispatcher publishes ticket events to registered handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// memoryDispatcher delivers events synchronously, in subscription order.
type memoryDispatcher struct {
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a synchronous dispatcher.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	return &memoryDispatcher{
		logger:   logger,
		handlers: make(map[EventType][]EventHandler),
	}
}

// Publish invokes every handler subscribed to the event's type. A failing
// handler is logged and skipped; the ticket write that produced the event
// never depends on a subscriber succeeding.
func (d *memoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribed := append([]EventHandler{}, d.handlers[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range subscribed {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.Int64("ticket_id", event.TicketID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *memoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}
