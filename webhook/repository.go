package webhook

import (
	"context"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// Publisher hands accepted events to the event bus
type Publisher interface {
	/* Context is always the first parameter in functions that do I/O
	 * This allows for cancellation, timeouts, and shared values
	 */
	Publish(ctx context.Context, e Event) error
}

// Consumer reads events from the event bus
type Consumer interface {
	/* Consume blocks until events are available, a short poll interval
	 * elapses, or ctx is cancelled. An empty slice is not an error.
	 */
	Consume(ctx context.Context) ([]Event, error)
	/* Acknowledge marks an event as processed so it is not delivered again
	 * e must come from Consume, its Position locates it on the bus
	 */
	Acknowledge(ctx context.Context, e Event) error
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Bus interface {
	Publisher
	Consumer
	Close(ctx context.Context) error
}

// Deduper remembers event identifiers so redeliveries are not dispatched twice
type Deduper interface {
	/* Claim records identifier and returns true the first time it is seen
	 * within the retention window, false for a redelivery
	 */
	Claim(ctx context.Context, identifier string) (bool, error)
	// Release forgets a claim whose event never reached the bus
	Release(ctx context.Context, identifier string) error
}

// Heartbeater records that a worker is alive
type Heartbeater interface {
	Heartbeat(ctx context.Context, workerID, status string) error
}

// Invoker runs the trigger or node registered under target
type Invoker interface {
	Invoke(ctx context.Context, target string, data, execContext map[string]any) (map[string]any, error)
}
