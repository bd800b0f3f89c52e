package bus

import "time"

// EventBus is an in-process pub/sub bus for gameplay notifications
// (contacts, platform state changes, telekinesis target changes).
//
// Delivery is synchronous: Publish calls handlers in the caller goroutine,
// in subscription order. Handlers that cross goroutines (the inspector)
// must hand events off without blocking. Handler errors are joined and
// returned from Publish. All methods are safe for concurrent use.
type EventBus interface {
	Publisher

	// Subscribe registers a handler for one event type. The type Wildcard
	// receives every event.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is ignored.
	Unsubscribe(Subscription) error

	// PublishWithFilters drops the event silently if any filter rejects it.
	PublishWithFilters(event Event, filters ...EventFilter) error

	GetMetrics() EventBusMetrics
}

// Publisher is the narrow side of the bus handed to event sources.
type Publisher interface {
	Publish(event Event) error
}

// Wildcard subscribes to every event type.
const Wildcard = "*"

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered.
	EventFilter func(event Event) bool
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusMetrics are running counters since the bus was created.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}
