package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/com4-wkflws/shopify/metrics"
	"github.com/com4-wkflws/shopify/webhook/signature"
	"github.com/rs/zerolog"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the operations of the webhook inbox
type UseCase interface {
	Receive(ctx context.Context, headers map[string]string, body []byte) (Receipt, error)
	Process(ctx context.Context, e Event) (Result, error)
	Topics() []Descriptor
}

// Receipt is what ingress reports back to Shopify
type Receipt struct {
	Event     Event
	Duplicate bool
}

type Service struct {
	Bus        Publisher
	Dispatcher *Dispatcher

	logger   zerolog.Logger
	deduper  Deduper
	invoker  Invoker
	recorder metrics.Recorder
	secret   string
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithDeduper skips redeliveries of an already published identifier
func WithDeduper(d Deduper) ServiceOption {
	return func(s *Service) {
		s.deduper = d
	}
}

// WithSecret enables X-Shopify-Hmac-Sha256 verification
func WithSecret(secret string) ServiceOption {
	return func(s *Service) {
		s.secret = secret
	}
}

// WithInvoker runs the dispatched trigger in-process
func WithInvoker(i Invoker) ServiceOption {
	return func(s *Service) {
		s.invoker = i
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r metrics.Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a new webhook service with dependency injection
func NewService(logger zerolog.Logger, bus Publisher, dispatcher *Dispatcher, opts ...ServiceOption) *Service {
	s := &Service{
		Bus:        bus,
		Dispatcher: dispatcher,
		logger:     logger,
		recorder:   metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Receive verifies and normalizes a webhook and publishes it to the event bus.
// A redelivered identifier is reported as a duplicate and not published again.
func (s *Service) Receive(ctx context.Context, headers map[string]string, body []byte) (Receipt, error) {
	if s.secret != "" {
		if err := signature.Verify(s.secret, body, header(headers, HMACHeader)); err != nil {
			return Receipt{}, fmt.Errorf("verifying signature: %w", err)
		}
	}

	e, err := Normalize(headers, body)
	if err != nil {
		return Receipt{}, fmt.Errorf("normalizing webhook: %w", err)
	}
	s.recorder.WebhookReceived(ctx, e.Topic())

	if s.deduper != nil {
		first, err := s.deduper.Claim(ctx, e.Identifier)
		if err != nil {
			return Receipt{}, fmt.Errorf("claiming event %s: %w", e.Identifier, err)
		}
		if !first {
			s.logger.Info().Str("identifier", e.Identifier).Str("topic", e.Topic()).Msg("duplicate webhook skipped")
			s.recorder.WebhookDuplicate(ctx, e.Topic())
			return Receipt{Event: e, Duplicate: true}, nil
		}
	}

	if err := s.Bus.Publish(ctx, e); err != nil {
		// Shopify retries the delivery, which must not be taken for a duplicate
		if s.deduper != nil {
			if rerr := s.deduper.Release(ctx, e.Identifier); rerr != nil {
				s.logger.Error().Err(rerr).Str("identifier", e.Identifier).Msg("releasing claim")
				err = errors.Join(err, fmt.Errorf("releasing claim: %w", rerr))
			}
		}
		return Receipt{}, fmt.Errorf("publishing event %s: %w", e.Identifier, err)
	}

	return Receipt{Event: e}, nil
}

// Process dispatches an event and, when an invoker is configured, runs its trigger.
// A trigger failure is returned as an error alongside the Dispatched result.
// Unsupported topics return a Result without target and no error.
func (s *Service) Process(ctx context.Context, e Event) (Result, error) {
	topic := e.Topic()

	res, err := s.Dispatcher.Dispatch(ctx, e)
	if err != nil {
		s.recorder.WebhookFailed(ctx, topic, failureReason(err))
		return res, fmt.Errorf("dispatching event %s: %w", e.Identifier, err)
	}
	if !res.HasTarget() {
		s.recorder.WebhookUnsupported(ctx, topic)
		return res, nil
	}

	if s.invoker != nil {
		if _, err := s.invoker.Invoke(ctx, res.Target, res.Data, executionContext(e)); err != nil {
			s.recorder.WebhookFailed(ctx, topic, "trigger")
			return res, fmt.Errorf("invoking %s: %w", res.Target, err)
		}
	}

	s.recorder.WebhookDispatched(ctx, topic, res.Target)
	return res, nil
}

// Topics returns the topics the service dispatches
func (s *Service) Topics() []Descriptor {
	return s.Dispatcher.Topics()
}

// executionContext exposes the webhook metadata to the trigger
func executionContext(e Event) map[string]any {
	out := make(map[string]any, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		out[k] = v
	}
	out["identifier"] = e.Identifier
	return out
}

func failureReason(err error) string {
	if errors.Is(err, ErrMalformedPayload) {
		return "malformed"
	}
	return "validation"
}

// header looks up name case-insensitively, matching Normalize on collisions
func header(headers map[string]string, name string) string {
	for _, k := range sortedKeys(headers) {
		if strings.EqualFold(k, name) {
			return headers[k]
		}
	}
	return ""
}
