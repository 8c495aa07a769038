package ferrier

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/cfe-lab/ferrier/internal/constants"
)

// Static errors.
var (
	// ErrCancelled rejects a future whose request was aborted.
	ErrCancelled = errors.New("request cancelled")

	// ErrPending is returned by Result when the future has not settled.
	ErrPending = errors.New("future has not settled")

	// ErrConfigRequired is returned by constructors given a nil config.
	ErrConfigRequired = errors.New("config is required")

	// ErrEndpointRequired is returned when no endpoint is configured.
	ErrEndpointRequired = errors.New("endpoint is required")

	// ErrTransportRequired is returned by NewLoader without a transport.
	ErrTransportRequired = errors.New("transport is required")

	// ErrURLRequired is returned by NewLoader without a URL.
	ErrURLRequired = errors.New("url is required")

	// ErrNavigatorRequired is returned by NewRouter without a navigation handle.
	ErrNavigatorRequired = errors.New("navigator is required")
)

// RequestError represents a failed request. Message is never empty: it is
// the "error" field of a JSON error body, or the raw body text, or a fixed
// fallback. Payload carries the whole parsed body when it had no usable
// "error" field.
type RequestError struct {
	StatusCode int
	Message    string
	Payload    any
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ClassifyFailure builds the RequestError for a failed request.
//
// Status 0 means the request never completed (unreachable host or timeout)
// and maps to a fixed message without inspecting the body. Any other status
// is classified from the body: a JSON object with an "error" field yields
// that string (or a placeholder when empty); any other parseable JSON value
// is surfaced whole as the error payload; an unparseable body yields its raw
// text, or the fixed fallback when empty.
func ClassifyFailure(statusCode int, body []byte) *RequestError {
	if statusCode == 0 {
		return &RequestError{StatusCode: 0, Message: constants.MsgUnreachable}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &RequestError{StatusCode: statusCode, Message: constants.MsgUnexpectedResponse}
	}

	var parsed any

	err := json.Unmarshal(trimmed, &parsed)
	if err != nil {
		return &RequestError{StatusCode: statusCode, Message: string(body)}
	}

	if obj, ok := parsed.(map[string]any); ok {
		if msg, ok := obj["error"].(string); ok {
			if msg == "" {
				msg = constants.MsgNoMessageProvided
			}

			return &RequestError{StatusCode: statusCode, Message: msg}
		}
	}

	// No usable "error" field: the whole parsed value is the error payload.
	rendered, err := json.Marshal(parsed)
	if err != nil {
		rendered = body
	}

	return &RequestError{StatusCode: statusCode, Message: string(rendered), Payload: parsed}
}

// MessageFromError extracts the user-facing message from any error
// produced by this layer.
func MessageFromError(err error) string {
	reqErr := &RequestError{}
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}

	return err.Error()
}

// IsUnreachable checks if the error is the unreachable-server failure.
func IsUnreachable(err error) bool {
	reqErr := &RequestError{}
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == 0
	}

	return false
}

// IsHTTPError checks if the error carries a non-success HTTP status.
func IsHTTPError(err error) bool {
	reqErr := &RequestError{}
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode != 0
	}

	return false
}

// IsCancelled checks if the error marks an aborted request.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
