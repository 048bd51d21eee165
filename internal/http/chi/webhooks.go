package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/com4-wkflws/shopify/webhook"
	"github.com/com4-wkflws/shopify/webhook/signature"
	"github.com/go-chi/httplog"
)

// maxWebhookBytes bounds a webhook body, Shopify payloads are far smaller
const maxWebhookBytes = 5 << 20

/* HTTP layer DTOs for webhook API
 * Separate from domain entities to avoid leaking internal structure
 */

// webhookResponse is returned to Shopify once an event is accepted
type webhookResponse struct {
	Identifier string `json:"identifier"`
	Duplicate  bool   `json:"duplicate,omitempty"`
}

// topicResponse represents a subscribed topic in the API
type topicResponse struct {
	Topic  string   `json:"topic"`
	Target string   `json:"target"`
	Fields []string `json:"fields"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// postWebhook handles POST /shopify/webhook/
func postWebhook(webhookService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
			return
		}

		headers := make(map[string]string, len(r.Header))
		for key, values := range r.Header {
			if len(values) > 0 {
				headers[key] = values[0]
			}
		}

		receipt, err := webhookService.Receive(r.Context(), headers, body)
		if err != nil {
			status := statusFor(err)
			httplog.LogEntrySetField(r.Context(), "webhook_error", err.Error())
			writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
			return
		}

		status := http.StatusAccepted
		if receipt.Duplicate {
			status = http.StatusOK
		}
		writeJSON(w, status, webhookResponse{
			Identifier: receipt.Event.Identifier,
			Duplicate:  receipt.Duplicate,
		})
	})
}

// getTopics handles GET /v1/topics
func getTopics(webhookService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		descriptors := webhookService.Topics()

		responses := make([]topicResponse, 0, len(descriptors))
		for _, d := range descriptors {
			fields := make([]string, 0, len(d.Fields))
			for _, f := range d.Fields {
				fields = append(fields, f.Name)
			}
			responses = append(responses, topicResponse{
				Topic:  d.Topic,
				Target: d.Target,
				Fields: fields,
			})
		}

		writeJSON(w, http.StatusOK, responses)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, signature.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, webhook.ErrMalformedPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
