package getorder_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/com4-wkflws/shopify/node/getorder"
	"github.com/com4-wkflws/shopify/schema"
	"github.com/com4-wkflws/shopify/shopify"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderGetter struct {
	mock.Mock
}

func (m *mockOrderGetter) GetOrder(ctx context.Context, domain, accessToken string, orderID int64) (shopify.Order, error) {
	args := m.Called(ctx, domain, accessToken, orderID)
	return args.Get(0).(shopify.Order), args.Error(1)
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	execContext := map[string]any{
		"myshopify_domain": "heyhorse.myshopify.com",
		"shopify_token":    "shpat_token",
	}

	t.Run("success - returns the order as a mapping", func(t *testing.T) {
		client := &mockOrderGetter{}
		client.On("GetOrder", ctx, "heyhorse.myshopify.com", "shpat_token", int64(450789469)).
			Return(shopify.Order{ID: 450789469, Name: "#1001", TotalPrice: decimal.RequireFromString("598.94")}, nil)

		fn := getorder.New(zerolog.Nop(), client)
		out, err := fn(ctx, map[string]any{"order_id": json.Number("450789469")}, execContext)
		require.NoError(t, err)

		assert.Equal(t, json.Number("450789469"), out["id"])
		assert.Equal(t, "#1001", out["name"])
		assert.Equal(t, "598.94", out["total_price"])
		client.AssertExpectations(t)
	})

	t.Run("error - invalid params are rejected before any request", func(t *testing.T) {
		client := &mockOrderGetter{}
		fn := getorder.New(zerolog.Nop(), client)

		_, err := fn(ctx, map[string]any{"order_id": "abc"}, execContext)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrValidation)

		_, err = fn(ctx, map[string]any{}, execContext)
		assert.ErrorIs(t, err, schema.ErrValidation)
		client.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - invalid context is rejected before any request", func(t *testing.T) {
		client := &mockOrderGetter{}
		fn := getorder.New(zerolog.Nop(), client)

		_, err := fn(ctx, map[string]any{"order_id": 1}, map[string]any{"myshopify_domain": "heyhorse.myshopify.com"})
		require.Error(t, err)

		var verr *schema.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "get_order.context", verr.Schema)
		client.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - request failure is wrapped", func(t *testing.T) {
		client := &mockOrderGetter{}
		client.On("GetOrder", ctx, mock.Anything, mock.Anything, int64(7)).
			Return(shopify.Order{}, &shopify.HTTPError{Kind: shopify.KindClientRequest, StatusCode: 404})

		fn := getorder.New(zerolog.Nop(), client)
		_, err := fn(ctx, map[string]any{"order_id": 7}, execContext)
		require.Error(t, err)
		assert.ErrorIs(t, err, shopify.ErrClientRequest)
		assert.Contains(t, err.Error(), "getting order 7")
		assert.False(t, errors.Is(err, schema.ErrValidation))
	})
}
