package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultAPIVersion is the Admin API version used when none is configured
	DefaultAPIVersion = "2022-04"

	// DefaultMaxRetries is the retry budget for 429 and 5xx responses
	DefaultMaxRetries = 5

	AccessTokenHeader  = "X-Shopify-Access-Token"
	DefaultContentType = "application/json; charset=utf-8"
)

/* RequestSpec is a pending Admin API call
 * Built once by NewRequest and never mutated by the transport
 */
type RequestSpec struct {
	Method     string
	URL        string
	Header     map[string]string
	Body       []byte
	MaxRetries int
}

type requestOptions struct {
	method     string
	payload    any
	headers    map[string]string
	apiVersion string
	maxRetries int
}

// RequestOption configures NewRequest
type RequestOption func(*requestOptions)

// WithMethod sets the HTTP method (GET, POST, PUT, DELETE)
func WithMethod(method string) RequestOption {
	return func(o *requestOptions) {
		o.method = strings.ToUpper(method)
	}
}

// WithJSON sets the JSON payload. Monetary values should be decimal.Decimal
// or json.Number so they are encoded without float rounding.
func WithJSON(payload any) RequestOption {
	return func(o *requestOptions) {
		o.payload = payload
	}
}

// WithHeaders adds extra request headers
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithAPIVersion overrides DefaultAPIVersion
func WithAPIVersion(version string) RequestOption {
	return func(o *requestOptions) {
		if version != "" {
			o.apiVersion = version
		}
	}
}

// WithRetries sets the retry budget
func WithRetries(n int) RequestOption {
	return func(o *requestOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// NewRequest builds a RequestSpec for https://{domain}/admin/api/{version}{apiPath}
func NewRequest(domain, apiPath, accessToken string, opts ...RequestOption) (RequestSpec, error) {
	if domain == "" {
		return RequestSpec{}, fmt.Errorf("domain is required")
	}
	if apiPath == "" {
		return RequestSpec{}, fmt.Errorf("api path is required")
	}
	if accessToken == "" {
		return RequestSpec{}, fmt.Errorf("access token is required")
	}

	o := requestOptions{
		headers:    make(map[string]string),
		apiVersion: DefaultAPIVersion,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(&o)
	}

	header := make(map[string]string, len(o.headers)+2)
	for k, v := range o.headers {
		header[http.CanonicalHeaderKey(k)] = v
	}
	header[AccessTokenHeader] = accessToken
	if _, ok := header["Content-Type"]; !ok {
		header["Content-Type"] = DefaultContentType
	}

	var body []byte
	if o.payload != nil {
		encoded, err := EncodeJSON(o.payload)
		if err != nil {
			return RequestSpec{}, fmt.Errorf("encoding payload: %w", err)
		}
		body = encoded
	}

	method := o.method
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	return RequestSpec{
		Method:     method,
		URL:        fmt.Sprintf("https://%s/admin/api/%s%s", domain, o.apiVersion, apiPath),
		Header:     header,
		Body:       body,
		MaxRetries: o.maxRetries,
	}, nil
}

// EncodeJSON encodes v without HTML escaping and without a trailing newline.
// decimal.Decimal and json.Number values keep their exact textual form.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
