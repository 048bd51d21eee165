package webhook_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/com4-wkflws/shopify/webhook"
	"github.com/com4-wkflws/shopify/webhook/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoll(t *testing.T) {
	ctx := context.Background()
	events := []webhook.Event{
		{Identifier: "a", Position: "1-0", Metadata: map[string]string{webhook.TopicHeader: "subscription_billing_attempt/failed"}, Data: map[string]any{}},
		{Identifier: "b", Position: "1-1", Metadata: map[string]string{webhook.TopicHeader: "unknown/thing"}, Data: map[string]any{}},
	}

	t.Run("processes and acknowledges every event", func(t *testing.T) {
		consumer := mocks.NewConsumer(t)
		processor := mocks.NewProcessor(t)
		w := webhook.NewWorker(zerolog.Nop(), consumer, processor)

		consumer.On("Consume", ctx).Return(events, nil)
		processor.On("Process", ctx, events[0]).Return(webhook.Result{Target: "t", State: webhook.Dispatched}, nil)
		processor.On("Process", ctx, events[1]).Return(webhook.Result{State: webhook.Rejected}, nil)
		consumer.On("Acknowledge", ctx, events[0]).Return(nil)
		consumer.On("Acknowledge", ctx, events[1]).Return(nil)

		n, err := w.Poll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("acknowledges events that failed processing", func(t *testing.T) {
		consumer := mocks.NewConsumer(t)
		processor := mocks.NewProcessor(t)
		w := webhook.NewWorker(zerolog.Nop(), consumer, processor)

		consumer.On("Consume", ctx).Return(events[:1], nil)
		processor.On("Process", ctx, events[0]).Return(webhook.Result{State: webhook.Failed}, webhook.ErrMalformedPayload)
		consumer.On("Acknowledge", ctx, events[0]).Return(nil)

		n, err := w.Poll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("empty batch sends an idle heartbeat", func(t *testing.T) {
		consumer := mocks.NewConsumer(t)
		heartbeater := mocks.NewHeartbeater(t)
		w := webhook.NewWorker(zerolog.Nop(), consumer, mocks.NewProcessor(t), webhook.WithHeartbeat(heartbeater, time.Hour))

		consumer.On("Consume", ctx).Return([]webhook.Event{}, nil)
		heartbeater.On("Heartbeat", ctx, w.ID, "idle").Return(nil).Once()

		n, err := w.Poll(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		// throttled by the interval
		_, err = w.Poll(ctx)
		require.NoError(t, err)
	})

	t.Run("consume error is returned", func(t *testing.T) {
		consumer := mocks.NewConsumer(t)
		w := webhook.NewWorker(zerolog.Nop(), consumer, mocks.NewProcessor(t))

		consumer.On("Consume", ctx).Return(nil, errors.New("connection reset"))

		_, err := w.Poll(ctx)
		require.Error(t, err)
	})
}

func TestWorkerRun(t *testing.T) {
	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		consumer := mocks.NewConsumer(t)
		w := webhook.NewWorker(zerolog.Nop(), consumer, mocks.NewProcessor(t))

		consumer.On("Consume", mock.Anything).Return(func(context.Context) ([]webhook.Event, error) {
			cancel()
			return nil, context.Canceled
		})

		done := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not stop")
		}
	})
}
