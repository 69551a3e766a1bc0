// Package event provides the in-process domain event bus.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/erp/purchase/internal/domain/shared"
	"go.uber.org/zap"
)

// allEvents subscribes a handler to every event type
const allEvents = "*"

// InMemoryEventBus dispatches events synchronously to subscribed handlers.
// Handler failures and panics are logged and never reach the publisher.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers handler for eventTypes, defaulting to handler.EventTypes().
// A handler with no types receives every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	if len(eventTypes) == 0 {
		eventTypes = []string{allEvents}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
}

// Publish delivers each event to its handlers in subscription order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		for _, h := range b.handlersFor(e.EventType()) {
			if err := b.dispatch(ctx, h, e); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", e.EventType()),
					zap.String("event_id", e.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]shared.EventHandler, 0, len(b.handlers[eventType])+len(b.handlers[allEvents]))
	out = append(out, b.handlers[eventType]...)
	return append(out, b.handlers[allEvents]...)
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

// Start is a no-op; the bus needs no background workers
func (b *InMemoryEventBus) Start(context.Context) error {
	b.logger.Info("Event bus started")
	return nil
}

// Stop is a no-op; dispatch is synchronous
func (b *InMemoryEventBus) Stop(context.Context) error {
	b.logger.Info("Event bus stopped")
	return nil
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
