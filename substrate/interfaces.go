package substrate

import (
	"context"

	"github.com/poiesic/docpipe/event"
)

// Delivery is one handler invocation of an event. Attempt starts at 1
// and never exceeds MaxAttempts; the same event is redelivered with an
// incremented Attempt after a handler error.
type Delivery struct {
	Event       *event.Event
	Attempt     int
	MaxAttempts int
}

// Handler processes one delivery. Returning an error requests a
// redelivery; the substrate retries with backoff until MaxAttempts is
// reached. Handlers that have already recorded a terminal failure must
// return nil so the event is not redelivered.
type Handler func(ctx context.Context, delivery Delivery) error

// Registration subscribes a named handler to one trigger event.
type Registration struct {
	// Name identifies the subscriber in logs.
	Name string

	// Trigger is the event name that invokes the handler.
	Trigger event.Name

	// Policy governs concurrency, retries, rate limiting and timeouts
	// for this subscriber.
	Policy Policy

	// Handler is invoked for each delivery of the trigger event.
	Handler Handler
}

// Substrate is the step-execution layer the pipeline coordinator sits
// on. It owns event routing, retry scheduling, concurrency limits, and
// at-most-once delivery per event ID and subscriber.
// Implementations must be thread-safe.
type Substrate interface {
	// Register subscribes a handler to its trigger event.
	// Registrations are accepted only before the first Publish.
	Register(reg Registration) error

	// Publish routes an event to every registered subscriber of its
	// name. Publishing an event nobody subscribes to is a no-op.
	// Delivery is asynchronous; Publish returns once the event is
	// enqueued.
	Publish(ctx context.Context, evt *event.Event) error

	// Drain blocks until every in-flight and queued delivery has
	// finished, or the context is cancelled.
	Drain(ctx context.Context) error

	// Close stops delivery and releases resources. Pending retries are
	// abandoned.
	Close() error
}
