package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shopify webhook headers, lower-cased as they appear in Event.Metadata
const (
	TopicHeader      = "x-shopify-topic"
	ShopDomainHeader = "x-shopify-shop-domain"
	APIVersionHeader = "x-shopify-api-version"
	WebhookIDHeader  = "x-shopify-webhook-id"
	HMACHeader       = "x-shopify-hmac-sha256"

	// IdempotencyKeyField is the payload field used as the event identifier
	IdempotencyKeyField = "idempotency_key"
)

/* Event represents an inbound webhook occurrence
 * Uses value semantics as it represents data, not behavior
 * Built once by Normalize and never mutated afterwards
 */
type Event struct {
	Identifier string            `json:"identifier"`
	Metadata   map[string]string `json:"metadata"`
	Data       any               `json:"data"`

	// Position is where the bus delivered the event from, set by Consume
	Position string `json:"-"`
}

// Topic returns the webhook topic header value
func (e Event) Topic() string {
	return e.Metadata[TopicHeader]
}

// ShopDomain returns the shop that sent the webhook
func (e Event) ShopDomain() string {
	return e.Metadata[ShopDomainHeader]
}

// EncodeEvent serializes an event for the event bus
func EncodeEvent(e Event) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshaling event %s: %w", e.Identifier, err)
	}
	return raw, nil
}

// DecodeEvent is the inverse of EncodeEvent. Numbers in Data are decoded as json.Number.
func DecodeEvent(raw []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var e Event
	if err := dec.Decode(&e); err != nil {
		return Event{}, fmt.Errorf("unmarshaling event: %w", err)
	}
	if e.Identifier == "" {
		return Event{}, fmt.Errorf("unmarshaling event: identifier is empty")
	}
	if e.Metadata == nil {
		e.Metadata = map[string]string{}
	}
	return e, nil
}
