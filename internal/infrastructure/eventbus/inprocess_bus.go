package eventbus

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/expenseflow/backend/internal/domain/shared"
)

// InProcessBus is a synchronous in-process event bus. Handlers run in
// publish order on the publisher's goroutine; a failing handler is
// logged and does not stop delivery to the remaining handlers.
type InProcessBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	catchAll []shared.EventHandler
	logger   *zap.Logger
}

// NewInProcessBus creates a new in-process event bus
func NewInProcessBus(logger *zap.Logger) *InProcessBus {
	return &InProcessBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event types. With no
// types, the handler's own EventTypes are used; if those are empty too,
// the handler receives every event.
func (b *InProcessBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.catchAll = append(b.catchAll, handler)
		return
	}
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
}

// Publish delivers events to all matching handlers
func (b *InProcessBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		b.mu.RLock()
		handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.catchAll))
		handlers = append(handlers, b.handlers[event.EventType()]...)
		handlers = append(handlers, b.catchAll...)
		b.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler.Handle(ctx, event); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.Error(err))
			}
		}
	}
	return nil
}
