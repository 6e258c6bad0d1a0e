// Package ports define the EventBus interface for event-driven communication.
package ports

import (
	"github.com/audition-player/audition/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
// The bus decouples event producers (services) from event consumers (the
// presenter, logging); multiple subscribers can listen to the same event,
// and subscribers don't know about publishers.
//
// Thread-safety: implementations must be thread-safe. Import failures are
// published from worker goroutines while UI-facing events are published from
// the dispatcher goroutine.
type EventBus interface {
	// Publish publishes an event to all subscribers of that event type.
	// Handlers run synchronously; they must be quick or dispatch elsewhere.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// The same handler can be registered multiple times, each registration
	// receiving its own SubscriptionID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// Unknown or already-removed IDs are a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events regardless
	// of type. Useful for logging and debugging.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether any subscription exists for the type.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and cleans up resources.
	Close() error
}
