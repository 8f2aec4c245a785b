package event

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/shared"
)

// InMemoryEventBus delivers events synchronously to all subscribed
// handlers. Synchronous delivery keeps the stock and listing stores
// consistent within one logical operation: when a write to stock
// returns, every side effect on listings has already happened.
type InMemoryEventBus struct {
	mu sync.RWMutex
	// handlers keyed by event type; the empty key holds wildcard
	// handlers that receive every event
	handlers map[string][]shared.EventHandler
	logger   *zap.Logger
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event types. When no
// types are provided the handler's own EventTypes are used; if those
// are empty too, the handler receives all events.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if handler == nil {
		return
	}
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(eventTypes) == 0 {
		b.handlers[""] = append(b.handlers[""], handler)
		return
	}
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
}

// Unsubscribe removes a handler from all event types
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, handlers := range b.handlers {
		filtered := handlers[:0]
		for _, h := range handlers {
			if h != handler {
				filtered = append(filtered, h)
			}
		}
		if len(filtered) == 0 {
			delete(b.handlers, eventType)
		} else {
			b.handlers[eventType] = filtered
		}
	}
}

// Publish delivers each event to all handlers subscribed to its type.
// Handler errors are logged and collected, but a failing handler does
// not stop delivery to the remaining handlers.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, evt := range events {
		b.mu.RLock()
		handlers := make([]shared.EventHandler, 0, len(b.handlers[evt.EventType()])+len(b.handlers[""]))
		handlers = append(handlers, b.handlers[evt.EventType()]...)
		handlers = append(handlers, b.handlers[""]...)
		b.mu.RUnlock()

		for _, handler := range handlers {
			if err := b.invoke(ctx, handler, evt); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.String("aggregate_id", evt.AggregateID()),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d event handler(s) failed: %w", len(errs), errs[0])
	}
	return nil
}

// invoke calls a handler, converting panics into errors
func (b *InMemoryEventBus) invoke(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, evt)
}
