package webhook

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/com4-wkflws/shopify/webhook/payload"
	"github.com/google/uuid"
)

// ErrMalformedPayload is returned when a body is not valid JSON or is not
// the JSON object a topic requires
var ErrMalformedPayload = errors.New("malformed payload")

// Normalize turns raw webhook headers and body into an Event.
// Header names are lower-cased; values are kept verbatim. When names differ
// only in case, the first in sorted order wins.
func Normalize(headers map[string]string, body []byte) (Event, error) {
	metadata := make(map[string]string, len(headers))
	for _, k := range sortedKeys(headers) {
		lower := strings.ToLower(k)
		if _, ok := metadata[lower]; !ok {
			metadata[lower] = headers[k]
		}
	}

	data, err := payload.Parse(body)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return Event{
		Identifier: identifier(data),
		Metadata:   metadata,
		Data:       data,
	}, nil
}

// NormalizeRequest is Normalize for net/http headers, keeping the first
// value of multi-valued headers
func NormalizeRequest(header http.Header, body []byte) (Event, error) {
	headers := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}
	return Normalize(headers, body)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// identifier prefers the payload's idempotency key and falls back to a random UUID
func identifier(data any) string {
	if obj, ok := payload.Object(data); ok {
		if key, ok := obj[IdempotencyKeyField]; ok && key != nil {
			if id, err := payload.String(key); err == nil && id != "" {
				return id
			}
		}
	}
	return uuid.New().String()
}
