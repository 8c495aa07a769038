package ferrier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Transport issues one HTTP request per call and returns a cancellable
// future of the normalized result. GET serializes query parameters into the
// URL; every other verb JSON-encodes the optional body.
type Transport interface {
	Get(ctx context.Context, url string, query map[string]any) *Future[*Response]
	Post(ctx context.Context, url string, body any) *Future[*Response]
	Patch(ctx context.Context, url string, body any) *Future[*Response]
	Put(ctx context.Context, url string, body any) *Future[*Response]
	Delete(ctx context.Context, url string, body any) *Future[*Response]
	Link(ctx context.Context, url string, body any) *Future[*Response]
	Unlink(ctx context.Context, url string, body any) *Future[*Response]
}

// Response is the normalized result of a successful request.
//
// Value holds the JSON-parsed body (object, array, or primitive). When the
// body is not valid JSON the raw text is the success value instead; a 2xx
// response never fails on an unparseable body. RedirectTo carries the
// Location header when the server sent one.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Value      any
	RedirectTo string
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

// Inputs are the caller-visible inputs a Loader derives its query key from.
type Inputs map[string]any
