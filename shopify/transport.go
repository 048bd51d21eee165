package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/com4-wkflws/shopify/metrics"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRedirects = 10
	tracerName          = "github.com/com4-wkflws/shopify/shopify"
)

// credentialHeaders are not forwarded to a redirect on another host
var credentialHeaders = []string{AccessTokenHeader, "Authorization", "Cookie"}

// Response is the result of one physical HTTP attempt
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Header returns a response header value, case-insensitively
func (r Response) Header(name string) string {
	return r.Headers[http.CanonicalHeaderKey(name)]
}

// JSON decodes the response body into v
func (r Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// RetryState tracks retries of 429/5xx responses for a single Do call
type RetryState struct {
	Attempts int
	Max      int
}

// Exhausted reports whether the retry budget has been exceeded
func (s RetryState) Exhausted() bool {
	return s.Attempts > s.Max
}

// Backoff returns the deterministic wait before retry number attempt: 2^attempt seconds
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

/* Transport executes RequestSpecs against the Admin API
 * Retries 429/5xx with exponential backoff and follows redirects by hand
 * Holds no per-request state, safe for concurrent use
 */
type Transport struct {
	client         *http.Client
	logger         zerolog.Logger
	recorder       metrics.Recorder
	limiter        *rate.Limiter
	tracer         trace.Tracer
	backoff        func(attempt int) time.Duration
	attemptTimeout time.Duration
	maxRedirects   int
}

// Option configures a Transport
type Option func(*Transport)

// WithHTTPClient sets the underlying client. Automatic redirect following is
// disabled on a copy of the client since the transport follows redirects itself.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		cp := *c
		cp.CheckRedirect = noFollow
		t.client = &cp
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r metrics.Recorder) Option {
	return func(t *Transport) {
		t.recorder = r
	}
}

// WithRateLimit waits for a token before every physical attempt
func WithRateLimit(perSecond float64, burst int) Option {
	return func(t *Transport) {
		if perSecond > 0 && burst > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithAttemptTimeout bounds each physical attempt
func WithAttemptTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.attemptTimeout = d
	}
}

// WithBackoff replaces the 2^attempt seconds schedule
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(t *Transport) {
		t.backoff = fn
	}
}

// WithTracerProvider sets where request spans are recorded, the global provider by default
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Transport) {
		if tp != nil {
			t.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewTransport creates a Transport that logs through logger
func NewTransport(logger zerolog.Logger, opts ...Option) *Transport {
	t := &Transport{
		client:       &http.Client{CheckRedirect: noFollow},
		logger:       logger,
		recorder:     metrics.Nop{},
		tracer:       otel.Tracer(tracerName),
		backoff:      Backoff,
		maxRedirects: defaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do executes spec until a terminal outcome is reached or the retry budget is spent.
// ctx is checked before every attempt and while waiting between retries.
func (t *Transport) Do(ctx context.Context, spec RequestSpec) (Response, error) {
	ctx, span := t.tracer.Start(ctx, "shopify.request", trace.WithAttributes(
		attribute.String("http.method", spec.Method),
		attribute.String("http.url", spec.URL),
	))
	defer span.End()

	state := RetryState{Max: spec.MaxRetries}
	target := spec.URL
	header := spec.Header
	redirects := 0

	for {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return Response{}, fmt.Errorf("%s %s cancelled: %w", spec.Method, target, err)
		}
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				span.SetStatus(codes.Error, err.Error())
				return Response{}, fmt.Errorf("waiting for rate limit: %w", err)
			}
		}

		t.logger.Info().Str("method", spec.Method).Str("url", target).Msg("making HTTP request")
		resp, err := t.attempt(ctx, spec, target, header)
		if err != nil {
			if ctx.Err() != nil {
				span.SetStatus(codes.Error, ctx.Err().Error())
				return Response{}, fmt.Errorf("%s %s cancelled: %w", spec.Method, target, ctx.Err())
			}
			t.recorder.RequestAttempt(ctx, spec.Method, Unknown.String())
			span.SetStatus(codes.Error, err.Error())
			return Response{}, &HTTPError{
				Kind:    KindTransport,
				Method:  spec.Method,
				URL:     target,
				Retries: state.Attempts,
				Err:     err,
			}
		}

		outcome := Classify(resp.StatusCode)
		t.recorder.RequestAttempt(ctx, spec.Method, outcome.String())
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

		switch {
		case outcome == Success:
			return resp, nil

		case outcome == Redirect:
			location := resp.Header("Location")
			if location == "" {
				return resp, nil
			}
			redirects++
			if redirects > t.maxRedirects {
				span.SetStatus(codes.Error, ErrTooManyRedirects.Error())
				return Response{}, &HTTPError{
					Kind:       KindTooManyRedirects,
					Method:     spec.Method,
					URL:        target,
					StatusCode: resp.StatusCode,
					Body:       resp.Body,
					Retries:    state.Attempts,
				}
			}
			next, err := resolveLocation(target, location)
			if err != nil {
				return Response{}, fmt.Errorf("parsing redirect location %q: %w", location, err)
			}
			if !sameHost(target, next) {
				t.logger.Warn().Str("from", target).Str("location", next).Msg("redirect leaves the shop host, dropping credentials")
				header = withoutCredentials(header)
			}
			t.logger.Debug().Int("status", resp.StatusCode).Str("location", next).Msg("following redirect")
			target = next

		case outcome == ClientError:
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
			return Response{}, &HTTPError{
				Kind:       KindClientRequest,
				Method:     spec.Method,
				URL:        target,
				StatusCode: resp.StatusCode,
				Body:       resp.Body,
				Retries:    state.Attempts,
			}

		case outcome.Retryable():
			state.Attempts++
			if state.Exhausted() {
				t.logger.Error().Int("status", resp.StatusCode).Int("retries", state.Max).Str("url", target).Msg("retries exceeded")
				span.SetStatus(codes.Error, ErrRetriesExceeded.Error())
				return Response{}, &HTTPError{
					Kind:       KindRetriesExceeded,
					Method:     spec.Method,
					URL:        target,
					StatusCode: resp.StatusCode,
					Body:       resp.Body,
					Retries:    state.Max,
				}
			}
			t.recorder.RequestRetry(ctx, spec.Method, resp.StatusCode)
			wait := t.backoff(state.Attempts)
			t.logger.Debug().
				Int("status", resp.StatusCode).
				Dur("wait", wait).
				Msgf("request failed, retrying (%d of %d)", state.Attempts, state.Max)
			if err := sleep(ctx, wait); err != nil {
				span.SetStatus(codes.Error, err.Error())
				return Response{}, fmt.Errorf("waiting to retry %s %s: %w", spec.Method, target, err)
			}

		default:
			return resp, nil
		}
	}
}

// attempt performs one physical request and reads the whole body
func (t *Transport) attempt(ctx context.Context, spec RequestSpec, target string, header map[string]string) (Response, error) {
	if t.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.attemptTimeout)
		defer cancel()
	}

	var body io.Reader
	if spec.Body != nil {
		body = bytes.NewReader(spec.Body)
	}
	req, err := http.NewRequestWithContext(ctx, spec.Method, target, body)
	if err != nil {
		return Response{}, fmt.Errorf("building request: %w", err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, fmt.Errorf("reading response body: %w", err)
	}

	headers := make(map[string]string, len(res.Header))
	for k, values := range res.Header {
		if len(values) > 0 {
			headers[k] = values[0]
		}
	}

	return Response{
		StatusCode: res.StatusCode,
		Headers:    headers,
		Body:       raw,
	}, nil
}

// sleep waits for d or until ctx is done, whichever comes first
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ctx.Err()
	}
}

func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// sameHost compares host and port of two absolute URLs
func sameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Host, ub.Host)
}

func withoutCredentials(header map[string]string) map[string]string {
	out := make(map[string]string, len(header))
	for k, v := range header {
		out[k] = v
	}
	for k := range out {
		for _, name := range credentialHeaders {
			if strings.EqualFold(k, name) {
				delete(out, k)
			}
		}
	}
	return out
}

func noFollow(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
