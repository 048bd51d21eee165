package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/com4-wkflws/shopify/config"
	"github.com/com4-wkflws/shopify/node"
	"github.com/com4-wkflws/shopify/node/getorder"
	"github.com/com4-wkflws/shopify/shopify"
	"github.com/rs/zerolog"
)

/* get-order - runs the get_order node once
 * Usage: get-order '<message json>' '<context json>'
 * Prints the order JSON on success, exit status 1 otherwise
 */

func main() {
	os.Exit(run())
}

func run() int {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("node", getorder.Target).Logger()

	cfg, err := config.GetConfig()
	if err != nil {
		logger.Error().Err(err).Msg("loading config")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport := shopify.NewTransport(logger,
		shopify.WithRateLimit(cfg.ShopifyRequestsPerSec, cfg.ShopifyRequestBurst),
		shopify.WithAttemptTimeout(cfg.AttemptTimeout()),
	)
	client := shopify.NewClient(logger, transport,
		shopify.WithClientAPIVersion(cfg.ShopifyAPIVersion),
		shopify.WithClientRetries(cfg.ShopifyMaxRetries),
	)

	return node.Main(ctx, getorder.New(logger, client), os.Args[1:], os.Stdout, logger)
}
