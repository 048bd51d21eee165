package getorder

import (
	"context"
	"fmt"

	"github.com/com4-wkflws/shopify/node"
	"github.com/com4-wkflws/shopify/schema"
	"github.com/com4-wkflws/shopify/shopify"
	"github.com/rs/zerolog"
)

const Target = "wkflws_shopify.get_order"

// Params is the node input
type Params struct {
	OrderID int64 `json:"order_id"`
}

// Context holds the shop connection details
type Context struct {
	Domain      string `json:"myshopify_domain"`
	AccessToken string `json:"shopify_token"`
}

// OrderGetter is satisfied by *shopify.Client
type OrderGetter interface {
	GetOrder(ctx context.Context, domain, accessToken string, orderID int64) (shopify.Order, error)
}

var paramsSchema = schema.MustCompile("get_order.params", `{
	"type": "object",
	"properties": {
		"order_id": {"type": "integer", "minimum": 1}
	},
	"required": ["order_id"]
}`)

var contextSchema = schema.MustCompile("get_order.context", `{
	"type": "object",
	"properties": {
		"myshopify_domain": {"type": "string", "minLength": 1},
		"shopify_token": {"type": "string", "minLength": 1}
	},
	"required": ["myshopify_domain", "shopify_token"]
}`)

// New returns the node. Input and context are checked before any request is made.
func New(logger zerolog.Logger, client OrderGetter) node.Func {
	return func(ctx context.Context, data, execContext map[string]any) (map[string]any, error) {
		if err := paramsSchema.Validate(data); err != nil {
			return nil, err
		}
		if err := contextSchema.Validate(execContext); err != nil {
			return nil, err
		}

		var params Params
		if err := node.Decode(data, &params); err != nil {
			return nil, err
		}
		var conn Context
		if err := node.Decode(execContext, &conn); err != nil {
			return nil, err
		}

		logger.Info().Int64("order_id", params.OrderID).Str("shop", conn.Domain).Msg("getting order")

		order, err := client.GetOrder(ctx, conn.Domain, conn.AccessToken, params.OrderID)
		if err != nil {
			return nil, fmt.Errorf("getting order %d: %w", params.OrderID, err)
		}
		return node.Output(order)
	}
}
