package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter records connector metrics with OpenTelemetry and exposes them in Prometheus format
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	inbox         InboxCollector

	meter              metric.Meter
	received           metric.Int64Counter
	duplicates         metric.Int64Counter
	dispatched         metric.Int64Counter
	unsupported        metric.Int64Counter
	failed             metric.Int64Counter
	requestAttempts    metric.Int64Counter
	requestRetries     metric.Int64Counter
	inboxPendingGauge  metric.Int64ObservableGauge
	activeWorkersGauge metric.Int64ObservableGauge
}

var _ Recorder = (*OTelExporter)(nil)

// NewOTelExporter creates the meter provider. inbox may be nil, in which case
// no inbox gauges are registered.
func NewOTelExporter(inbox InboxCollector) (*OTelExporter, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"wkflws-shopify",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		inbox:         inbox,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

func (oe *OTelExporter) registerInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&oe.received, "shopify.webhook.received", "Webhooks accepted at ingress", "{webhooks}"},
		{&oe.duplicates, "shopify.webhook.duplicates", "Webhook redeliveries skipped by identifier", "{webhooks}"},
		{&oe.dispatched, "shopify.webhook.dispatched", "Webhook events routed to a trigger", "{events}"},
		{&oe.unsupported, "shopify.webhook.unsupported", "Webhook events with an unsupported topic", "{events}"},
		{&oe.failed, "shopify.webhook.failed", "Webhook events that failed dispatch", "{events}"},
		{&oe.requestAttempts, "shopify.request.attempts", "Physical Admin API requests by outcome", "{requests}"},
		{&oe.requestRetries, "shopify.request.retries", "Admin API retries after 429/5xx", "{requests}"},
	}

	for _, c := range counters {
		counter, err := oe.meter.Int64Counter(
			c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.target = counter
	}

	if oe.inbox == nil {
		return nil
	}

	var err error
	oe.inboxPendingGauge, err = oe.meter.Int64ObservableGauge(
		"shopify.inbox.pending",
		metric.WithDescription("Number of webhook events waiting to be dispatched"),
		metric.WithUnit("{events}"),
		metric.WithInt64Callback(oe.observeInboxPending),
	)
	if err != nil {
		return fmt.Errorf("creating inbox pending gauge: %w", err)
	}

	oe.activeWorkersGauge, err = oe.meter.Int64ObservableGauge(
		"shopify.workers.active",
		metric.WithDescription("Number of dispatch workers with a live heartbeat"),
		metric.WithUnit("{workers}"),
		metric.WithInt64Callback(oe.observeActiveWorkers),
	)
	if err != nil {
		return fmt.Errorf("creating active workers gauge: %w", err)
	}

	return nil
}

// observeInboxPending is a callback that reports the inbox backlog
func (oe *OTelExporter) observeInboxPending(ctx context.Context, observer metric.Int64Observer) error {
	pending, err := oe.inbox.Pending(ctx)
	if err != nil {
		return err
	}
	observer.Observe(pending)
	return nil
}

// observeActiveWorkers is a callback that reports live dispatch workers
func (oe *OTelExporter) observeActiveWorkers(ctx context.Context, observer metric.Int64Observer) error {
	workers, err := oe.inbox.ActiveWorkers(ctx)
	if err != nil {
		return err
	}
	observer.Observe(workers)
	return nil
}

func (oe *OTelExporter) WebhookReceived(ctx context.Context, topic string) {
	oe.received.Add(ctx, 1, metric.WithAttributes(attribute.String("shopify.topic", topic)))
}

func (oe *OTelExporter) WebhookDuplicate(ctx context.Context, topic string) {
	oe.duplicates.Add(ctx, 1, metric.WithAttributes(attribute.String("shopify.topic", topic)))
}

func (oe *OTelExporter) WebhookDispatched(ctx context.Context, topic, target string) {
	oe.dispatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("shopify.topic", topic),
		attribute.String("trigger.target", target),
	))
}

func (oe *OTelExporter) WebhookUnsupported(ctx context.Context, topic string) {
	oe.unsupported.Add(ctx, 1, metric.WithAttributes(attribute.String("shopify.topic", topic)))
}

func (oe *OTelExporter) WebhookFailed(ctx context.Context, topic, reason string) {
	oe.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("shopify.topic", topic),
		attribute.String("failure.reason", reason),
	))
}

func (oe *OTelExporter) RequestAttempt(ctx context.Context, method, outcome string) {
	oe.requestAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.outcome", outcome),
	))
}

func (oe *OTelExporter) RequestRetry(ctx context.Context, method string, statusCode int) {
	oe.requestRetries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.status_code", strconv.Itoa(statusCode)),
	))
}

// ServeHTTP serves Prometheus-formatted metrics
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.Handler()
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
