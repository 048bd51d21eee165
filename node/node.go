package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/com4-wkflws/shopify/webhook"
	"github.com/com4-wkflws/shopify/webhook/payload"
	"github.com/rs/zerolog"
)

var ErrUnknownTarget = errors.New("unknown target")

/* Func is a workflow node or trigger
 * data is the node input, execContext carries connection details and event metadata
 */
type Func func(ctx context.Context, data, execContext map[string]any) (map[string]any, error)

var _ webhook.Invoker = (*Registry)(nil)

// Registry maps targets to the nodes that serve them
type Registry struct {
	mu     sync.RWMutex
	nodes  map[string]Func
	logger zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		nodes:  make(map[string]Func),
		logger: logger,
	}
}

// Register adds fn under target. A target can only be registered once.
func (r *Registry) Register(target string, fn Func) error {
	if target == "" {
		return fmt.Errorf("target is required")
	}
	if fn == nil {
		return fmt.Errorf("node for %s is nil", target)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[target]; ok {
		return fmt.Errorf("target %s already registered", target)
	}
	r.nodes[target] = fn
	return nil
}

// Invoke runs the node registered for target
func (r *Registry) Invoke(ctx context.Context, target string, data, execContext map[string]any) (map[string]any, error) {
	r.mu.RLock()
	fn, ok := r.nodes[target]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	r.logger.Debug().Str("target", target).Msg("invoking node")
	return fn(ctx, data, execContext)
}

// Targets returns the registered targets in order
func (r *Registry) Targets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.nodes))
	for target := range r.nodes {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// Decode converts a node input mapping into v
func Decode(data map[string]any, v any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding input: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}
	return nil
}

// Output converts a typed result into the mapping a node returns.
// Numbers stay json.Number so large identifiers and money keep their text.
func Output(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	parsed, err := payload.Parse(raw)
	if err != nil {
		return nil, err
	}
	out, ok := payload.Object(parsed)
	if !ok {
		return nil, fmt.Errorf("output is not an object")
	}
	return out, nil
}

/* Main runs fn as a standalone program
 * args[0] is the message JSON and args[1] the context JSON
 * The result is printed to stdout. Returns the process exit status.
 */
func Main(ctx context.Context, fn Func, args []string, stdout io.Writer, logger zerolog.Logger) int {
	if len(args) < 2 {
		logger.Error().Int("args", len(args)).Msg("usage: <message json> <context json>")
		return 1
	}

	data, err := parseObject(args[0])
	if err != nil {
		logger.Error().Err(err).Msg("invalid message")
		return 1
	}
	execContext, err := parseObject(args[1])
	if err != nil {
		logger.Error().Err(err).Msg("invalid context")
		return 1
	}

	out, err := fn(ctx, data, execContext)
	if err != nil {
		logger.Error().Err(err).Msg("node failed")
		return 1
	}
	if out == nil {
		logger.Error().Msg("node returned no output")
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		logger.Error().Err(err).Msg("writing output")
		return 1
	}
	return 0
}

func parseObject(arg string) (map[string]any, error) {
	v, err := payload.Parse([]byte(arg))
	if err != nil {
		return nil, err
	}
	obj, ok := payload.Object(v)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return obj, nil
}
