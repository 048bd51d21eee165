package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/com4-wkflws/shopify/webhook/payload"
	"github.com/rs/zerolog"
)

// Result is the outcome of dispatching one event.
// An empty Target means the topic is not supported.
type Result struct {
	Target string
	Data   map[string]any
	State  State
	Trail  []State // every state the event passed through, starting at Received
}

func newResult() Result {
	return Result{State: Received, Trail: []State{Received}}
}

// HasTarget reports whether the event was routed to a trigger
func (r Result) HasTarget() bool {
	return r.Target != ""
}

// advance moves the result to next, recording the step in Trail
func (r *Result) advance(next State) error {
	if !r.State.CanTransition(next) {
		return fmt.Errorf("invalid state transition from %s to %s", r.State, next)
	}
	r.State = next
	r.Trail = append(r.Trail, next)
	return nil
}

// fail moves a received result to Failed
func (r *Result) fail() {
	_ = r.advance(Failed)
}

// Decode converts the dispatched data into a typed value such as SubscriptionBillingAttempt
func (r Result) Decode(v any) error {
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("marshaling dispatch data: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding dispatch data: %w", err)
	}
	return nil
}

/* Dispatcher routes events to trigger targets by topic
 * Read-only after construction, safe for concurrent use
 */
type Dispatcher struct {
	logger zerolog.Logger
	topics map[string]Descriptor
}

// NewDispatcher creates a dispatcher for the given descriptors.
// A later descriptor for the same topic replaces an earlier one.
func NewDispatcher(logger zerolog.Logger, descriptors ...Descriptor) (*Dispatcher, error) {
	topics := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("validating descriptor: %w", err)
		}
		topics[d.Topic] = d
	}
	return &Dispatcher{
		logger: logger,
		topics: topics,
	}, nil
}

// Dispatch validates e against its topic's schema and returns the target
// with the translated data. Unknown topics are Rejected and not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) (Result, error) {
	topic := e.Topic()
	log := d.logger.With().Str("identifier", e.Identifier).Str("topic", topic).Logger()
	res := newResult()

	obj, ok := payload.Object(e.Data)
	if !ok {
		log.Error().Msgf("payload is %T, expected a JSON object", e.Data)
		res.fail()
		return res, fmt.Errorf("%w: event %s payload must be a JSON object", ErrMalformedPayload, e.Identifier)
	}

	desc, ok := d.topics[topic]
	if !ok {
		log.Warn().Msg("unsupported webhook topic")
		res.Data = map[string]any{}
		return res, res.advance(Rejected)
	}

	if err := desc.Schema.Validate(obj); err != nil {
		log.Error().Err(err).Msg("payload failed validation")
		res.fail()
		return res, fmt.Errorf("validating %s payload: %w", topic, err)
	}

	if err := res.advance(Validated); err != nil {
		return res, err
	}

	log.Debug().Str("target", desc.Target).Msg("dispatching event")
	res.Target = desc.Target
	res.Data = desc.translate(obj)
	return res, res.advance(Dispatched)
}

// Lookup returns the descriptor registered for topic
func (d *Dispatcher) Lookup(topic string) (Descriptor, bool) {
	desc, ok := d.topics[topic]
	return desc, ok
}

// Topics returns the registered descriptors sorted by topic
func (d *Dispatcher) Topics() []Descriptor {
	out := make([]Descriptor, 0, len(d.topics))
	for _, desc := range d.topics {
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Topic < out[j].Topic
	})
	return out
}
