package respectify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Every error returned by this library wraps exactly one of
// these sentinels, so callers classify with errors.Is.
var (
	// ErrInvalidRequest means a caller-supplied argument failed a
	// pre-flight check; no HTTP request was issued.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrBadRequest corresponds to HTTP 400.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized corresponds to HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPaymentRequired corresponds to HTTP 402.
	ErrPaymentRequired = errors.New("payment required")

	// ErrUnsupportedMediaType corresponds to HTTP 415.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrServerError corresponds to HTTP 500.
	ErrServerError = errors.New("server error")

	// ErrGenericAPI covers any other non-200 status.
	ErrGenericAPI = errors.New("unexpected API error")

	// ErrTransport means no HTTP response was obtained at all.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse means HTTP 200 arrived but the body was not
	// valid JSON or lacked a field the operation requires.
	ErrMalformedResponse = errors.New("malformed response")

	// Config errors.
	ErrMissingEmail  = errors.New("user email is required")
	ErrMissingAPIKey = errors.New("API key is required")
)

// APIError is a classified non-200 response. It unwraps to the kind
// sentinel matching its status code and keeps the raw status, reason
// phrase and body text for diagnostics.
type APIError struct {
	StatusCode int
	Reason     string
	Body       string

	kind error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: HTTP %d %s", e.kind, e.StatusCode, e.Reason)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// classifyStatus maps a non-200 HTTP outcome onto the error taxonomy. The
// mapping is driven by the status code alone; body text is carried for
// diagnostics but never inspected to pick the kind.
func classifyStatus(status int, reason, body string) *APIError {
	var kind error
	switch status {
	case http.StatusBadRequest:
		kind = ErrBadRequest
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusPaymentRequired:
		kind = ErrPaymentRequired
	case http.StatusUnsupportedMediaType:
		kind = ErrUnsupportedMediaType
	case http.StatusInternalServerError:
		kind = ErrServerError
	default:
		kind = ErrGenericAPI
	}

	return &APIError{
		StatusCode: status,
		Reason:     reason,
		Body:       strings.TrimSpace(body),
		kind:       kind,
	}
}

// errorKindLabel names an error kind for metrics labels.
func errorKindLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrPaymentRequired):
		return "payment_required"
	case errors.Is(err, ErrUnsupportedMediaType):
		return "unsupported_media_type"
	case errors.Is(err, ErrServerError):
		return "server_error"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "api_error"
	}
}
