package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/com4-wkflws/shopify/webhook"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

const requestTimeout = 30 * time.Second

// Handlers sets up the connector API routes. metricsHandler may be nil.
func Handlers(ctx context.Context, logger zerolog.Logger, webhookService webhook.UseCase, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Shopify delivers every topic to the same address
	r.Method(http.MethodPost, "/shopify/webhook/", postWebhook(webhookService))

	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/topics", getTopics(webhookService))
	})

	return r
}
