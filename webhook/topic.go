package webhook

import (
	"fmt"

	"github.com/com4-wkflws/shopify/schema"
)

// Field maps a wire field name to its canonical name in the dispatched data
type Field struct {
	Wire     string
	Name     string
	Required bool
}

/* Descriptor tells the dispatcher how to handle one topic
 * Adding a topic is adding a Descriptor, not a branch
 */
type Descriptor struct {
	Topic  string
	Target string
	Schema *schema.Validator
	Fields []Field
}

// Validate checks the descriptor is usable by a Dispatcher
func (d Descriptor) Validate() error {
	if d.Topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if d.Target == "" {
		return fmt.Errorf("target cannot be empty for topic %s", d.Topic)
	}
	if d.Schema == nil {
		return fmt.Errorf("schema cannot be empty for topic %s", d.Topic)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("fields cannot be empty for topic %s", d.Topic)
	}
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Wire == "" || f.Name == "" {
			return fmt.Errorf("field names cannot be empty for topic %s", d.Topic)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %s for topic %s", f.Name, d.Topic)
		}
		seen[f.Name] = true
	}
	return nil
}

// WithTarget returns a copy of d routed to target
func (d Descriptor) WithTarget(target string) Descriptor {
	d.Target = target
	return d
}

// translate copies the declared fields from a validated payload, renaming
// them. Optional fields absent from the payload are set to nil.
func (d Descriptor) translate(obj map[string]any) map[string]any {
	out := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		out[f.Name] = obj[f.Wire]
	}
	return out
}

const (
	TopicSubscriptionBillingAttemptFailed  = "subscription_billing_attempt/failed"
	TargetSubscriptionBillingAttemptFailed = "wkflws_shopify.triggers.subscription_billing_attempt_failed"
)

var subscriptionBillingAttemptSchema = schema.MustCompile("subscription_billing_attempt", `{
	"type": "object",
	"properties": {
		"order_id": {"type": "integer"},
		"admin_graphql_api_order_id": {"type": "string"},
		"subscription_contract_id": {"type": "integer"},
		"admin_graphql_api_subscription_contract_id": {"type": "string"},
		"ready": {"type": "boolean"},
		"error_message": {"type": ["string", "null"]},
		"error_code": {"type": ["string", "null"]}
	},
	"required": [
		"order_id",
		"admin_graphql_api_order_id",
		"subscription_contract_id",
		"admin_graphql_api_subscription_contract_id",
		"ready"
	]
}`)

// SubscriptionBillingAttempt is the dispatched form of a
// subscription_billing_attempt/failed webhook
type SubscriptionBillingAttempt struct {
	OrderID                       int64   `json:"order_id"`
	GraphQLOrderID                string  `json:"graphql_order_id"`
	SubscriptionContractID        int64   `json:"subscription_contract_id"`
	GraphQLSubscriptionContractID string  `json:"graphql_subscription_contract_id"`
	Ready                         bool    `json:"ready"`
	ErrorMessage                  *string `json:"error_message"`
	ErrorCode                     *string `json:"error_code"`
}

// Catalog returns the descriptors of every supported topic
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Topic:  TopicSubscriptionBillingAttemptFailed,
			Target: TargetSubscriptionBillingAttemptFailed,
			Schema: subscriptionBillingAttemptSchema,
			Fields: []Field{
				{Wire: "order_id", Name: "order_id", Required: true},
				{Wire: "admin_graphql_api_order_id", Name: "graphql_order_id", Required: true},
				{Wire: "subscription_contract_id", Name: "subscription_contract_id", Required: true},
				{Wire: "admin_graphql_api_subscription_contract_id", Name: "graphql_subscription_contract_id", Required: true},
				{Wire: "ready", Name: "ready", Required: true},
				{Wire: "error_message", Name: "error_message"},
				{Wire: "error_code", Name: "error_code"},
			},
		},
	}
}
