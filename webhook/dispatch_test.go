package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/com4-wkflws/shopify/schema"
	"github.com/com4-wkflws/shopify/webhook"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const billingAttemptBody = `{
	"id": null,
	"admin_graphql_api_id": null,
	"idempotency_key": "K",
	"order_id": 1,
	"admin_graphql_api_order_id": "gid://shopify/Order/1",
	"subscription_contract_id": 9998878778,
	"admin_graphql_api_subscription_contract_id": "gid://shopify/SubscriptionContract/9998878778",
	"ready": true,
	"error_message": null,
	"error_code": null
}`

func newDispatcher(t *testing.T) *webhook.Dispatcher {
	t.Helper()
	d, err := webhook.NewDispatcher(zerolog.Nop(), webhook.Catalog()...)
	require.NoError(t, err)
	return d
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("success - subscription billing attempt failed", func(t *testing.T) {
		d := newDispatcher(t)
		e, err := webhook.Normalize(shopifyHeaders("subscription_billing_attempt/failed"), []byte(billingAttemptBody))
		require.NoError(t, err)
		assert.Equal(t, "K", e.Identifier)

		res, err := d.Dispatch(ctx, e)
		require.NoError(t, err)

		assert.True(t, res.HasTarget())
		assert.Equal(t, "wkflws_shopify.triggers.subscription_billing_attempt_failed", res.Target)
		assert.Equal(t, webhook.Dispatched, res.State)
		assert.Equal(t, []webhook.State{webhook.Received, webhook.Validated, webhook.Dispatched}, res.Trail)
		assert.Equal(t, map[string]any{
			"order_id":                         json.Number("1"),
			"graphql_order_id":                 "gid://shopify/Order/1",
			"subscription_contract_id":         json.Number("9998878778"),
			"graphql_subscription_contract_id": "gid://shopify/SubscriptionContract/9998878778",
			"ready":                            true,
			"error_message":                    nil,
			"error_code":                       nil,
		}, res.Data)
	})

	t.Run("success - optional fields may be absent", func(t *testing.T) {
		d := newDispatcher(t)
		e, err := webhook.Normalize(shopifyHeaders("subscription_billing_attempt/failed"), []byte(`{
			"order_id": 1,
			"admin_graphql_api_order_id": "gid://shopify/Order/1",
			"subscription_contract_id": 2,
			"admin_graphql_api_subscription_contract_id": "gid://shopify/SubscriptionContract/2",
			"ready": false
		}`))
		require.NoError(t, err)

		res, err := d.Dispatch(ctx, e)
		require.NoError(t, err)
		assert.Len(t, res.Data, 7)
		assert.Contains(t, res.Data, "error_message")
		assert.Nil(t, res.Data["error_code"])
	})

	t.Run("success - decodes into the typed payload", func(t *testing.T) {
		d := newDispatcher(t)
		e, err := webhook.Normalize(shopifyHeaders("subscription_billing_attempt/failed"), []byte(billingAttemptBody))
		require.NoError(t, err)

		res, err := d.Dispatch(ctx, e)
		require.NoError(t, err)

		var attempt webhook.SubscriptionBillingAttempt
		require.NoError(t, res.Decode(&attempt))
		assert.Equal(t, int64(9998878778), attempt.SubscriptionContractID)
		assert.Equal(t, "gid://shopify/Order/1", attempt.GraphQLOrderID)
		assert.True(t, attempt.Ready)
		assert.Nil(t, attempt.ErrorMessage)
	})

	t.Run("unknown topic - no target and empty data", func(t *testing.T) {
		d := newDispatcher(t)
		e := webhook.Event{
			Identifier: "id",
			Metadata:   map[string]string{webhook.TopicHeader: "unknown/thing"},
			Data:       map[string]any{},
		}

		res, err := d.Dispatch(ctx, e)
		require.NoError(t, err)
		assert.False(t, res.HasTarget())
		assert.Equal(t, map[string]any{}, res.Data)
		assert.Equal(t, webhook.Rejected, res.State)
		assert.Equal(t, []webhook.State{webhook.Received, webhook.Rejected}, res.Trail)
	})

	t.Run("error - non-mapping payload", func(t *testing.T) {
		d := newDispatcher(t)
		e, err := webhook.Normalize(shopifyHeaders("subscription_billing_attempt/failed"), []byte(`[1, 2, 3]`))
		require.NoError(t, err)

		res, err := d.Dispatch(ctx, e)
		require.Error(t, err)
		assert.ErrorIs(t, err, webhook.ErrMalformedPayload)
		assert.False(t, res.HasTarget())
		assert.Equal(t, webhook.Failed, res.State)
		assert.Equal(t, []webhook.State{webhook.Received, webhook.Failed}, res.Trail)
	})

	t.Run("error - non-mapping payload with unknown topic", func(t *testing.T) {
		d := newDispatcher(t)
		e := webhook.Event{
			Identifier: "id",
			Metadata:   map[string]string{webhook.TopicHeader: "unknown/thing"},
			Data:       []any{},
		}

		_, err := d.Dispatch(ctx, e)
		assert.ErrorIs(t, err, webhook.ErrMalformedPayload)
	})

	t.Run("error - missing required field", func(t *testing.T) {
		d := newDispatcher(t)
		e, err := webhook.Normalize(shopifyHeaders("subscription_billing_attempt/failed"), []byte(`{
			"order_id": 1,
			"admin_graphql_api_order_id": "gid://shopify/Order/1",
			"subscription_contract_id": 2,
			"admin_graphql_api_subscription_contract_id": "gid://shopify/SubscriptionContract/2"
		}`))
		require.NoError(t, err)

		res, err := d.Dispatch(ctx, e)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrValidation)
		assert.NotErrorIs(t, err, webhook.ErrMalformedPayload)
		assert.Equal(t, webhook.Failed, res.State)
		assert.Equal(t, []webhook.State{webhook.Received, webhook.Failed}, res.Trail)

		var verr *schema.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Error(), "ready")
	})

	t.Run("error - wrong field type", func(t *testing.T) {
		d := newDispatcher(t)
		e, err := webhook.Normalize(shopifyHeaders("subscription_billing_attempt/failed"), []byte(`{
			"order_id": "1",
			"admin_graphql_api_order_id": "gid://shopify/Order/1",
			"subscription_contract_id": 2,
			"admin_graphql_api_subscription_contract_id": "gid://shopify/SubscriptionContract/2",
			"ready": true
		}`))
		require.NoError(t, err)

		_, err = d.Dispatch(ctx, e)

		var verr *schema.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "order_id", verr.Fields[0].Field)
	})
}

func TestNewDispatcher(t *testing.T) {
	t.Run("error - invalid descriptor", func(t *testing.T) {
		_, err := webhook.NewDispatcher(zerolog.Nop(), webhook.Descriptor{Topic: "orders/create"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target cannot be empty")
	})

	t.Run("later descriptor replaces earlier", func(t *testing.T) {
		catalog := webhook.Catalog()
		override := catalog[0].WithTarget("custom.target")

		d, err := webhook.NewDispatcher(zerolog.Nop(), append(catalog, override)...)
		require.NoError(t, err)

		desc, ok := d.Lookup(webhook.TopicSubscriptionBillingAttemptFailed)
		require.True(t, ok)
		assert.Equal(t, "custom.target", desc.Target)
		assert.Len(t, d.Topics(), 1)
	})

	t.Run("no descriptors", func(t *testing.T) {
		d, err := webhook.NewDispatcher(zerolog.Nop())
		require.NoError(t, err)
		assert.Empty(t, d.Topics())
	})
}

func TestDescriptorValidate(t *testing.T) {
	base := webhook.Catalog()[0]

	t.Run("valid catalog", func(t *testing.T) {
		for _, d := range webhook.Catalog() {
			assert.NoError(t, d.Validate())
		}
	})

	t.Run("error - duplicate canonical name", func(t *testing.T) {
		d := base
		d.Fields = []webhook.Field{{Wire: "a", Name: "x"}, {Wire: "b", Name: "x"}}
		assert.Error(t, d.Validate())
	})

	t.Run("error - missing schema", func(t *testing.T) {
		d := base
		d.Schema = nil
		assert.Error(t, d.Validate())
	})
}
