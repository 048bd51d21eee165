package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var ErrUnexpectedResponse = errors.New("unexpected response")

// Client issues Admin API calls for any shop through a shared Transport
type Client struct {
	transport  *Transport
	logger     zerolog.Logger
	apiVersion string
	maxRetries int
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithClientAPIVersion sets the Admin API version for every request
func WithClientAPIVersion(version string) ClientOption {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// WithClientRetries sets the retry budget for every request
func WithClientRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

func NewClient(logger zerolog.Logger, transport *Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport:  transport,
		logger:     logger,
		apiVersion: DefaultAPIVersion,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request builds and executes a call against domain. opts are applied after
// the client defaults so callers can override the version or retry budget.
func (c *Client) Request(ctx context.Context, domain, accessToken, apiPath string, opts ...RequestOption) (Response, error) {
	all := append([]RequestOption{WithAPIVersion(c.apiVersion), WithRetries(c.maxRetries)}, opts...)
	spec, err := NewRequest(domain, apiPath, accessToken, all...)
	if err != nil {
		return Response{}, fmt.Errorf("building request: %w", err)
	}
	return c.transport.Do(ctx, spec)
}

// GetOrder fetches /orders/{id}.json and checks the order before decoding it
func (c *Client) GetOrder(ctx context.Context, domain, accessToken string, orderID int64) (Order, error) {
	resp, err := c.Request(ctx, domain, accessToken, fmt.Sprintf("/orders/%d.json", orderID))
	if err != nil {
		return Order{}, err
	}

	var envelope struct {
		Order json.RawMessage `json:"order"`
	}
	if err := resp.JSON(&envelope); err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if len(envelope.Order) == 0 || string(envelope.Order) == "null" {
		return Order{}, fmt.Errorf("%w: no order in response", ErrUnexpectedResponse)
	}

	var raw any
	if err := json.Unmarshal(envelope.Order, &raw); err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if err := orderSchema.Validate(raw); err != nil {
		return Order{}, fmt.Errorf("checking order %d: %w", orderID, err)
	}

	var order Order
	if err := json.Unmarshal(envelope.Order, &order); err != nil {
		return Order{}, fmt.Errorf("decoding order %d: %w", orderID, err)
	}
	order.applyDefaults()

	c.logger.Debug().Int64("order_id", orderID).Str("shop", domain).Msg("fetched order")
	return order, nil
}
