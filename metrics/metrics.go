package metrics

import (
	"context"
)

/* Recorder receives connector events worth counting
 * Implementations must be safe for concurrent use
 */
type Recorder interface {
	// WebhookReceived counts a webhook accepted at ingress
	WebhookReceived(ctx context.Context, topic string)

	// WebhookDuplicate counts a redelivery of an already seen event identifier
	WebhookDuplicate(ctx context.Context, topic string)

	// WebhookDispatched counts an event routed to a trigger target
	WebhookDispatched(ctx context.Context, topic, target string)

	// WebhookUnsupported counts an event whose topic has no registered handler
	WebhookUnsupported(ctx context.Context, topic string)

	// WebhookFailed counts an event that could not be dispatched
	WebhookFailed(ctx context.Context, topic, reason string)

	// RequestAttempt counts one physical Admin API request by outcome
	RequestAttempt(ctx context.Context, method, outcome string)

	// RequestRetry counts a retry scheduled after a 429/5xx response
	RequestRetry(ctx context.Context, method string, statusCode int)
}

// InboxCollector reports the state of the event inbox
type InboxCollector interface {
	// Pending returns the number of events waiting to be dispatched
	Pending(ctx context.Context) (int64, error)

	// ActiveWorkers returns the number of dispatch workers alive
	ActiveWorkers(ctx context.Context) (int64, error)
}

// Nop discards everything
type Nop struct{}

func (Nop) WebhookReceived(context.Context, string)           {}
func (Nop) WebhookDuplicate(context.Context, string)          {}
func (Nop) WebhookDispatched(context.Context, string, string) {}
func (Nop) WebhookUnsupported(context.Context, string)        {}
func (Nop) WebhookFailed(context.Context, string, string)     {}
func (Nop) RequestAttempt(context.Context, string, string)    {}
func (Nop) RequestRetry(context.Context, string, int)         {}
