package domain

import (
	"context"
	"fmt"
	"sync"
)

//go:generate mockgen -destination mocks/mock_event_bus.go -package mocks github.com/Planora/planora/internal/domain EventBus

// EventType defines the type of an event
type EventType string

const (
	// EventTaskAssigned fires after a task is created with an assignee;
	// the notification workflow subscribes to it
	EventTaskAssigned EventType = "task.assigned"
)

// EventPayload represents the data associated with an event
type EventPayload struct {
	Type     EventType              `json:"type"`
	EntityID string                 `json:"entity_id"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, payload EventPayload)

// EventBus provides a way for services to publish and subscribe to events
type EventBus interface {
	// Publish sends an event to all subscribers
	Publish(ctx context.Context, event EventPayload)

	// Subscribe registers a handler for a specific event type
	Subscribe(eventType EventType, handler EventHandler)
}

// InMemoryEventBus is a simple in-memory implementation of the EventBus
type InMemoryEventBus struct {
	subscribers map[EventType][]EventHandler
	mu          sync.RWMutex
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus() *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make(map[EventType][]EventHandler),
	}
}

// Publish sends an event to all subscribers. Handlers run on their own
// goroutines; a panicking handler never takes the publisher down.
func (b *InMemoryEventBus) Publish(ctx context.Context, event EventPayload) {
	b.mu.RLock()
	handlers := b.subscribers[event.Type]
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h EventHandler) {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("ERROR: Panic in event handler: %v\n", r)
				}
			}()

			h(ctx, event)
		}(handler)
	}
}

// Subscribe registers a handler for a specific event type
func (b *InMemoryEventBus) Subscribe(eventType EventType, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}
