package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/com4-wkflws/shopify/webhook"
	"github.com/com4-wkflws/shopify/webhook/mocks"
	"github.com/com4-wkflws/shopify/webhook/signature"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const billingBody = `{"idempotency_key":"K","order_id":1}`

func postShopify(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "/shopify/webhook/", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("X-Shopify-Topic", webhook.TopicSubscriptionBillingAttemptFailed)
	req.Header.Set("X-Shopify-Shop-Domain", "heyhorse.myshopify.com")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Receive", mock.Anything, mock.MatchedBy(func(h map[string]string) bool {
			return h["X-Shopify-Topic"] == webhook.TopicSubscriptionBillingAttemptFailed
		}), []byte(billingBody)).Return(webhook.Receipt{Event: webhook.Event{Identifier: "K"}}, nil)

		w := postShopify(t, Handlers(ctx, zerolog.Nop(), s, nil), billingBody)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"identifier":"K"}`, w.Body.String())
	})

	t.Run("duplicate", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Receive", mock.Anything, mock.Anything, mock.Anything).
			Return(webhook.Receipt{Event: webhook.Event{Identifier: "K"}, Duplicate: true}, nil)

		w := postShopify(t, Handlers(ctx, zerolog.Nop(), s, nil), billingBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"identifier":"K","duplicate":true}`, w.Body.String())
	})

	errorCases := []struct {
		name   string
		err    error
		status int
	}{
		{"malformed", fmt.Errorf("normalizing webhook: %w", webhook.ErrMalformedPayload), http.StatusBadRequest},
		{"bad signature", fmt.Errorf("verifying signature: %w", signature.ErrInvalidSignature), http.StatusUnauthorized},
		{"bus failure", errors.New("publishing event K: stream unavailable"), http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run("error - "+tc.name, func(t *testing.T) {
			s := mocks.NewUseCase(t)
			s.On("Receive", mock.Anything, mock.Anything, mock.Anything).Return(webhook.Receipt{}, tc.err)

			w := postShopify(t, Handlers(ctx, zerolog.Nop(), s, nil), billingBody)

			assert.Equal(t, tc.status, w.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, http.StatusText(tc.status), resp.Error)
		})
	}

	t.Run("error - body over the size limit", func(t *testing.T) {
		s := mocks.NewUseCase(t)

		w := postShopify(t, Handlers(ctx, zerolog.Nop(), s, nil), strings.Repeat("x", maxWebhookBytes+1))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"request body too large"}`, w.Body.String())
		s.AssertNotCalled(t, "Receive", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetTopics(t *testing.T) {
	ctx := context.Background()
	s := mocks.NewUseCase(t)
	s.On("Topics").Return(webhook.Catalog())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/v1/topics", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	Handlers(ctx, zerolog.Nop(), s, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var results []topicResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, webhook.TopicSubscriptionBillingAttemptFailed, results[0].Topic)
	assert.Equal(t, webhook.TargetSubscriptionBillingAttemptFailed, results[0].Target)
	assert.Len(t, results[0].Fields, 7)
}

func TestHealthAndMetrics(t *testing.T) {
	ctx := context.Background()
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("shopify_webhook_received_total 1\n"))
	})
	h := Handlers(ctx, zerolog.Nop(), mocks.NewUseCase(t), metricsHandler)

	for path, want := range map[string]string{
		"/health":  `{"status":"healthy"}`,
		"/metrics": "shopify_webhook_received_total 1\n",
	} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, w.Body.String(), path)
	}
}
