package shopify

/* Outcome is the category of a single physical HTTP attempt
 * Exactly one outcome applies to every status code
 */
type Outcome int

const (
	Unknown Outcome = iota
	Success
	Redirect
	ClientError
	ServerError
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Redirect:
		return "redirect"
	case ClientError:
		return "client_error"
	case ServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// Retryable reports whether a request with this outcome may be retried.
// 429 is classified as ServerError because it signals rate limiting, not a bad request.
func (o Outcome) Retryable() bool {
	return o == ServerError
}

// Classify maps an HTTP status code to its outcome. A zero status code means
// no response was obtained.
func Classify(statusCode int) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return Success
	case statusCode >= 300 && statusCode < 400:
		return Redirect
	case statusCode == 429:
		return ServerError
	case statusCode >= 400 && statusCode < 500:
		return ClientError
	case statusCode >= 500 && statusCode < 600:
		return ServerError
	default:
		return Unknown
	}
}
