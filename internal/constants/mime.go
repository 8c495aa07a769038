package constants

// Content types sent and accepted by the transport. JSON is the default
// request body encoding; the form and HTML variants are available as
// alternate content types for callers that need them.
const (
	// MimeJSON is the default Content-Type for request bodies and the
	// Accept value set on every request.
	MimeJSON = "application/json;charset=utf-8"

	// MimeForm is the URL-encoded form variant.
	MimeForm = "application/x-www-form-urlencoded;charset=utf-8"

	// MimeMultipart is the multipart form variant used for file payloads.
	MimeMultipart = "multipart/form-data"

	// MimeHTML is the HTML variant.
	MimeHTML = "text/html;charset=utf-8"

	// MimeText is the plain text variant.
	MimeText = "text/plain;charset=utf-8"
)
