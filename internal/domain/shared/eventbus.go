package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice means the handler receives all events.
	EventTypes() []string
}

// EventPublisher publishes domain events. Services call it after their
// transaction commits; the ledger and payment rows, not the events, are the
// source of truth.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is a publisher that handlers can subscribe to
type EventBus interface {
	EventPublisher
	// Subscribe registers a handler for specific event types. With no event
	// types the handler's own EventTypes decide; an empty answer subscribes
	// it to everything.
	Subscribe(handler EventHandler, eventTypes ...string)
}
