// Package ports defines the EventBus interface for event-driven communication.
package ports

import (
	"github.com/lucverdier/minuet/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
// It decouples event producers (services) from consumers (UI bindings,
// logging) without either knowing about the other.
//
// Thread-safety: implementations must be safe for concurrent publish and
// subscribe/unsubscribe from multiple goroutines.
type EventBus interface {
	// Publish delivers an event to all subscribers of its type.
	// Handlers should return quickly; long work belongs in a goroutine.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the given type and
	// returns an id for Unsubscribe. The same handler may be registered
	// multiple times.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered handler.
	// Unknown ids are a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives every event,
	// regardless of type. Useful for logging and debugging.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// Close shuts the bus down; subsequent publishes are dropped.
	Close() error
}
