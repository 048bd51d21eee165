package webhook

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultHeartbeatInterval = 30 * time.Second
	consumeErrorBackoff      = time.Second
)

// Processor handles one consumed event
type Processor interface {
	Process(ctx context.Context, e Event) (Result, error)
}

/* Worker drains the event bus into the dispatcher
 * Events are acknowledged after processing, also when processing failed:
 * a payload that fails validation fails the same way on redelivery
 */
type Worker struct {
	ID string

	logger            zerolog.Logger
	consumer          Consumer
	processor         Processor
	heartbeater       Heartbeater
	heartbeatInterval time.Duration
	lastHeartbeat     time.Time
}

// WorkerOption configures a Worker
type WorkerOption func(*Worker)

// WithHeartbeat reports liveness through h every interval
func WithHeartbeat(h Heartbeater, interval time.Duration) WorkerOption {
	return func(w *Worker) {
		w.heartbeater = h
		if interval > 0 {
			w.heartbeatInterval = interval
		}
	}
}

// NewWorker creates a worker with a random ID
func NewWorker(logger zerolog.Logger, consumer Consumer, processor Processor, opts ...WorkerOption) *Worker {
	w := &Worker{
		ID:                uuid.New().String(),
		logger:            logger,
		consumer:          consumer,
		processor:         processor,
		heartbeatInterval: defaultHeartbeatInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With().Str("worker_id", w.ID).Logger()
	return w
}

// Run polls until ctx is cancelled
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().Msg("worker started")
	defer w.logger.Info().Msg("worker stopped")

	for ctx.Err() == nil {
		if _, err := w.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error().Err(err).Msg("consuming events")
			select {
			case <-ctx.Done():
				return
			case <-time.After(consumeErrorBackoff):
			}
		}
	}
}

// Poll consumes one batch, processes and acknowledges every event in it
// and returns how many events were handled
func (w *Worker) Poll(ctx context.Context) (int, error) {
	events, err := w.consumer.Consume(ctx)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		w.heartbeat(ctx, "idle")
		return 0, nil
	}
	w.heartbeat(ctx, "processing")

	for _, e := range events {
		log := w.logger.With().Str("identifier", e.Identifier).Str("topic", e.Topic()).Logger()

		res, err := w.processor.Process(ctx, e)
		switch {
		case err != nil:
			log.Error().Err(err).Str("state", res.State.String()).Msg("processing event")
		case res.HasTarget():
			log.Info().Str("target", res.Target).Msg("event dispatched")
		}

		if err := w.consumer.Acknowledge(ctx, e); err != nil {
			log.Error().Err(err).Msg("acknowledging event")
		}
	}
	return len(events), nil
}

func (w *Worker) heartbeat(ctx context.Context, status string) {
	if w.heartbeater == nil || time.Since(w.lastHeartbeat) < w.heartbeatInterval {
		return
	}
	if err := w.heartbeater.Heartbeat(ctx, w.ID, status); err != nil {
		w.logger.Warn().Err(err).Msg("sending heartbeat")
		return
	}
	w.lastHeartbeat = time.Now()
}
