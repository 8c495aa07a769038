// Package transport implements the concrete HTTP transport behind
// ferrier.Transport: one request per call, returning a cancellable future
// of the normalized result.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/atomic"

	"github.com/cfe-lab/ferrier/internal/constants"
	"github.com/cfe-lab/ferrier/pkg/ferrier"
)

// HTTP methods issued by the transport. LINK and UNLINK are first-class
// verbs on the backend this layer talks to.
const (
	MethodLink   = "LINK"
	MethodUnlink = "UNLINK"
)

// Request describes one HTTP call.
type Request struct {
	Method string
	URL    string
	// Query is serialized into the URL; GET requests carry no body.
	Query map[string]any
	// Body is JSON-encoded unless ContentType selects the form variant.
	Body any
	// ContentType defaults to the JSON/UTF-8 variant.
	ContentType string
	Headers     map[string]string
}

// Client is the concrete ferrier.Transport.
type Client struct {
	baseURL   string
	inner     *retryablehttp.Client
	logger    ferrier.Logger
	debug     atomic.Bool
	userAgent string
	timeout   time.Duration
}

// NewClient creates a transport for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	inner := retryablehttp.NewClient()
	inner.RetryMax = constants.DefaultRetryMax
	inner.RetryWaitMin = constants.DefaultRetryWaitMin
	inner.RetryWaitMax = constants.DefaultRetryWaitMax
	inner.Logger = nil
	// Hand back the last response instead of a give-up error so failure
	// classification sees the status and body.
	inner.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		inner:   inner,
		logger:  ferrier.DefaultLogger(),
		timeout: constants.DefaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SetDebug toggles per-request logging at runtime.
func (c *Client) SetDebug(debug bool) {
	c.debug.Store(debug)
}

// Get implements ferrier.Transport.
func (c *Client) Get(ctx context.Context, target string, query map[string]any) *ferrier.Future[*ferrier.Response] {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: target, Query: query})
}

// Post implements ferrier.Transport.
func (c *Client) Post(ctx context.Context, target string, body any) *ferrier.Future[*ferrier.Response] {
	return c.Do(ctx, &Request{Method: http.MethodPost, URL: target, Body: body})
}

// Patch implements ferrier.Transport.
func (c *Client) Patch(ctx context.Context, target string, body any) *ferrier.Future[*ferrier.Response] {
	return c.Do(ctx, &Request{Method: http.MethodPatch, URL: target, Body: body})
}

// Put implements ferrier.Transport.
func (c *Client) Put(ctx context.Context, target string, body any) *ferrier.Future[*ferrier.Response] {
	return c.Do(ctx, &Request{Method: http.MethodPut, URL: target, Body: body})
}

// Delete implements ferrier.Transport.
func (c *Client) Delete(ctx context.Context, target string, body any) *ferrier.Future[*ferrier.Response] {
	return c.Do(ctx, &Request{Method: http.MethodDelete, URL: target, Body: body})
}

// Link implements ferrier.Transport.
func (c *Client) Link(ctx context.Context, target string, body any) *ferrier.Future[*ferrier.Response] {
	return c.Do(ctx, &Request{Method: MethodLink, URL: target, Body: body})
}

// Unlink implements ferrier.Transport.
func (c *Client) Unlink(ctx context.Context, target string, body any) *ferrier.Future[*ferrier.Response] {
	return c.Do(ctx, &Request{Method: MethodUnlink, URL: target, Body: body})
}

// Do dispatches one request and returns a cancellable future of the
// normalized result. The future's Cancel aborts the in-flight call; the
// abort handle is armed before Do returns.
func (c *Client) Do(ctx context.Context, req *Request) *ferrier.Future[*ferrier.Response] {
	abort := ferrier.NewAbortHandle()
	future, promise := ferrier.NewFuture[*ferrier.Response](abort)

	target := c.resolveTarget(req)

	rawBody, contentType, err := encodeBody(req)
	if err != nil {
		// The future settles without a request ever going out; arm the
		// handle so Cancel on it stays a safe no-op.
		abort.Arm(func() {})
		promise.Reject(fmt.Errorf("encoding request body: %w", err))

		return future
	}

	reqCtx, timeoutCancel := context.WithTimeout(ctx, c.timeout)
	reqCtx, abortFn := context.WithCancelCause(reqCtx)
	abort.Arm(func() { abortFn(ferrier.ErrCancelled) })

	if c.debug.Load() {
		c.logger.Debug(
			fmt.Sprintf("%s: %s %s", constants.LogTag, req.Method, target),
			map[string]interface{}{"request_id": uuid.NewString()},
		)
	}

	go func() {
		defer timeoutCancel()

		c.dispatch(reqCtx, req, target, rawBody, contentType, promise)
	}()

	return future
}

func (c *Client) dispatch(
	ctx context.Context,
	req *Request,
	target string,
	rawBody []byte,
	contentType string,
	promise *ferrier.Promise[*ferrier.Response],
) {
	var bodyArg interface{}
	if rawBody != nil {
		bodyArg = rawBody
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, bodyArg)
	if err != nil {
		promise.Reject(fmt.Errorf("building request: %w", err))

		return
	}

	httpReq.Header.Set("Accept", constants.MimeJSON)

	if rawBody != nil {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.inner.Do(httpReq)
	if err != nil {
		if ferrier.IsCancelled(context.Cause(ctx)) {
			promise.Reject(ferrier.ErrCancelled)

			return
		}

		// Never completed: unreachable host, timeout, or broken
		// connection all take the status-0 path.
		promise.Reject(ferrier.ClassifyFailure(0, nil))

		return
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		promise.Reject(ferrier.ClassifyFailure(0, nil))

		return
	}

	if resp.StatusCode >= constants.HTTPStatusOK && resp.StatusCode < constants.HTTPStatusMultipleChoices {
		promise.Resolve(normalize(resp, body))

		return
	}

	promise.Reject(ferrier.ClassifyFailure(resp.StatusCode, body))
}

func (c *Client) resolveTarget(req *Request) string {
	target := req.URL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + target
	}

	if req.Method == http.MethodGet {
		target = ferrier.AppendQuery(target, req.Query)
	}

	return target
}

func encodeBody(req *Request) ([]byte, string, error) {
	if req.Body == nil {
		return nil, "", nil
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = constants.MimeJSON
	}

	if contentType == constants.MimeForm {
		form, ok := req.Body.(url.Values)
		if !ok {
			return nil, "", fmt.Errorf("form body must be url.Values, got %T", req.Body)
		}

		return []byte(form.Encode()), contentType, nil
	}

	raw, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("marshalling body: %w", err)
	}

	return raw, contentType, nil
}

// normalize builds the success value: JSON-parse the body, falling back to
// the raw text, and surface a Location header as the redirect target.
func normalize(resp *http.Response, body []byte) *ferrier.Response {
	normalized := &ferrier.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		RedirectTo: resp.Header.Get("Location"),
	}

	if len(body) == 0 {
		return normalized
	}

	var value any

	err := json.Unmarshal(body, &value)
	if err != nil {
		normalized.Value = string(body)

		return normalized
	}

	normalized.Value = value

	return normalized
}
