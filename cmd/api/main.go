package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/com4-wkflws/shopify/config"
	"github.com/com4-wkflws/shopify/internal/http/chi"
	"github.com/com4-wkflws/shopify/metrics"
	"github.com/com4-wkflws/shopify/node"
	"github.com/com4-wkflws/shopify/node/billingfailed"
	"github.com/com4-wkflws/shopify/node/getorder"
	"github.com/com4-wkflws/shopify/shopify"
	"github.com/com4-wkflws/shopify/topics"
	"github.com/com4-wkflws/shopify/webhook"
	"github.com/com4-wkflws/shopify/webhook/kafka"
	"github.com/com4-wkflws/shopify/webhook/redis"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

const TIMEOUT = 30 * time.Second

/* main wires the connector: config, event bus, metrics, nodes, the
 * dispatch worker and the HTTP server. Imports only flow downwards.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := httplog.NewLogger("wkflws-shopify", httplog.Options{
		JSON: true,
	})
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Topics
	loader := topics.NewLoader()
	if cfg.TopicsFile != "" {
		if err := loader.Load(cfg.TopicsFile); err != nil {
			return err
		}
	}
	dispatcher, err := webhook.NewDispatcher(logger, loader.Descriptors()...)
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	// Event bus
	var (
		bus         webhook.Bus
		inbox       metrics.InboxCollector
		serviceOpts []webhook.ServiceOption
		workerOpts  []webhook.WorkerOption
	)
	switch kind := webhook.NewBusKind(cfg.EventBus); kind {
	case webhook.KafkaBus:
		kb, err := kafka.NewBus(cfg.Brokers(), cfg.KafkaTopic, cfg.KafkaGroupID)
		if err != nil {
			return err
		}
		bus = kb
	default:
		repo, err := redis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithDedupeTTL(cfg.DedupeTTL()))
		if err != nil {
			return err
		}
		bus = repo
		inbox = metrics.NewRedisCollector(repo.GetClient(), redis.StreamKey, redis.ConsumerGroup, redis.HeartbeatPrefix)
		serviceOpts = append(serviceOpts, webhook.WithDeduper(repo))
		workerOpts = append(workerOpts, webhook.WithHeartbeat(repo, 30*time.Second))
	}
	defer bus.Close(context.Background())

	// Metrics
	exporter, err := metrics.NewOTelExporter(inbox)
	if err != nil {
		return fmt.Errorf("creating metrics exporter: %w", err)
	}
	defer exporter.Shutdown(context.Background())

	// Tracing
	tracerProvider, err := metrics.NewTracerProvider(ctx, metrics.TracingConfig{
		ServiceName:  "wkflws-shopify",
		OTLPEndpoint: cfg.OTLPEndpoint,
		Insecure:     cfg.OTLPInsecure,
	})
	if err != nil {
		return err
	}
	defer tracerProvider.Shutdown(context.Background())

	// Nodes
	transport := shopify.NewTransport(logger,
		shopify.WithRecorder(exporter),
		shopify.WithTracerProvider(tracerProvider),
		shopify.WithRateLimit(cfg.ShopifyRequestsPerSec, cfg.ShopifyRequestBurst),
		shopify.WithAttemptTimeout(cfg.AttemptTimeout()),
	)
	client := shopify.NewClient(logger, transport,
		shopify.WithClientAPIVersion(cfg.ShopifyAPIVersion),
		shopify.WithClientRetries(cfg.ShopifyMaxRetries),
	)
	registry := node.NewRegistry(logger)
	if err := registry.Register(getorder.Target, getorder.New(logger, client)); err != nil {
		return err
	}
	// topics.yaml may route the trigger to another target
	for _, d := range dispatcher.Topics() {
		if d.Topic == webhook.TopicSubscriptionBillingAttemptFailed {
			if err := registry.Register(d.Target, billingfailed.New(logger)); err != nil {
				return err
			}
		}
	}

	serviceOpts = append(serviceOpts,
		webhook.WithSecret(cfg.ShopifyWebhookSecret),
		webhook.WithInvoker(registry),
		webhook.WithRecorder(exporter),
	)
	service := webhook.NewService(logger, bus, dispatcher, serviceOpts...)

	// Dispatch worker
	worker := webhook.NewWorker(logger, bus, service, workerOpts...)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	// HTTP server
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      chi.Handlers(ctx, logger, service, exporter.ServeHTTP()),
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)

	logger.Info().Str("port", cfg.Port).Str("bus", webhook.NewBusKind(cfg.EventBus).String()).Strs("targets", registry.Targets()).Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-errShutdown; err != nil {
		return err
	}
	<-workerDone
	return nil
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	}
}
