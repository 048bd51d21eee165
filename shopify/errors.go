package shopify

import (
	"errors"
	"fmt"
)

// ErrorKind identifies why an outbound request failed.
type ErrorKind int

const (
	KindTransport ErrorKind = iota + 1
	KindClientRequest
	KindRetriesExceeded
	KindTooManyRedirects
)

var (
	ErrTransport        = errors.New("transport failure")
	ErrClientRequest    = errors.New("client request error")
	ErrRetriesExceeded  = errors.New("retries exceeded")
	ErrTooManyRedirects = errors.New("too many redirects")
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindClientRequest:
		return "client_request"
	case KindRetriesExceeded:
		return "retries_exceeded"
	case KindTooManyRedirects:
		return "too_many_redirects"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindClientRequest:
		return ErrClientRequest
	case KindRetriesExceeded:
		return ErrRetriesExceeded
	case KindTooManyRedirects:
		return ErrTooManyRedirects
	default:
		return nil
	}
}

/* HTTPError describes an unrecoverable outbound request failure
 * StatusCode is 0 when no response was obtained (KindTransport)
 */
type HTTPError struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Retries    int
	Err        error
}

func (e *HTTPError) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Kind, e.Err)
	case KindRetriesExceeded:
		return fmt.Sprintf("%s %s: retries exceeded after %d retries (last status %d)", e.Method, e.URL, e.Retries, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.URL, e.Kind, e.StatusCode)
	}
}

// Is lets errors.Is match an HTTPError against the Err* sentinels.
func (e *HTTPError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
