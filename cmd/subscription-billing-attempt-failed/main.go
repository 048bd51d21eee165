package main

import (
	"context"
	"os"

	"github.com/com4-wkflws/shopify/node"
	"github.com/com4-wkflws/shopify/node/billingfailed"
	"github.com/rs/zerolog"
)

// Usage: subscription-billing-attempt-failed '<message json>' '<context json>'
func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("node", billingfailed.Target).Logger()
	os.Exit(node.Main(context.Background(), billingfailed.New(logger), os.Args[1:], os.Stdout, logger))
}
