package constants

import "time"

// HTTP and network timeouts.
const (
	// DefaultRequestTimeout is the fixed per-request timeout applied by the
	// transport to every outgoing request.
	DefaultRequestTimeout = 90 * time.Second

	// ShortHTTPTimeout is used for quick one-off operations such as
	// endpoint probing.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are disabled unless explicitly configured.
const (
	// DefaultRetryMax is the retry count used when none is configured.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum backoff between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum backoff between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// LogTag prefixes the request line logged by the transport when debug
// logging is enabled, e.g. "ferrier: GET /items".
const LogTag = "ferrier"

// Fixed user-facing messages produced by response normalization.
const (
	// MsgUnreachable is reported when the request never completed.
	MsgUnreachable = "Could not reach the server"

	// MsgUnexpectedResponse is reported when an error response carried no
	// usable body.
	MsgUnexpectedResponse = "Server returned with an unexpected response"

	// MsgNoMessageProvided substitutes for an empty "error" field.
	MsgNoMessageProvided = "(no message provided)"

	// MsgNoResults is reported when an empty result set is not permitted.
	MsgNoResults = "No results"
)

// HTTP status codes commonly used.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusMultipleChoices is the exclusive upper bound of the
	// success range.
	HTTPStatusMultipleChoices = 300
)
