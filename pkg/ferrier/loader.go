package ferrier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/cfe-lab/ferrier/internal/constants"
	"github.com/cfe-lab/ferrier/internal/structeq"
)

// State is the render state of a Loader.
type State int

const (
	// StateLoading: a request is pending and no data is held.
	StateLoading State = iota

	// StateSuccess: the tracked request resolved with data.
	StateSuccess

	// StateError: the tracked request failed with a message.
	StateError
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ReloadOptions controls an explicit reload trigger.
type ReloadOptions struct {
	// ClearData drops the currently held data before re-fetching.
	ClearData bool
}

// Snapshot is the render input handed to a success view: the adapted data,
// the resolved query parameters, the caller's passthrough props, and the
// reload trigger.
type Snapshot[T any] struct {
	State  State
	Data   T
	Err    string
	Query  map[string]any
	Props  map[string]any
	Reload func(ReloadOptions)
}

// RenderFunc renders the success view.
type RenderFunc[T any] func(w io.Writer, snapshot Snapshot[T])

// LoaderConfig configures a Loader.
type LoaderConfig[T any] struct {
	// Transport issues the tracked GET request. Required.
	Transport Transport

	// URL is the request target, optionally containing ":name" path
	// placeholders. Required.
	URL string

	// ResolveURL substitutes derived path parameters into URL. The default
	// replaces ":name" placeholders.
	ResolveURL func(rawURL string, params map[string]string) string

	// GetAPIQuery derives the request query parameters from the inputs.
	// The default uses an explicit "query" override object when present,
	// else extracts the "id" field.
	GetAPIQuery func(inputs Inputs) map[string]any

	// GetURLParams derives path template parameters. Default: none.
	GetURLParams func(inputs Inputs) map[string]string

	// Adapt post-processes a successful payload. Default: identity.
	Adapt func(data T) T

	// AllowEmpty permits empty slice results. Without it an empty slice is
	// the "No results" error.
	AllowEmpty bool

	// OnError is invoked with the failure message before the error render.
	// Returning false suppresses the Error transition; the settle callback
	// still fires.
	OnError func(message string) bool

	// OnSettled fires after every settle, success or error.
	OnSettled func()

	// Props are passed through untouched to the success view.
	Props map[string]any

	// Out is the render destination. Default: os.Stdout.
	Out io.Writer

	// Render draws the success view.
	Render RenderFunc[T]

	// RenderLoading overrides the package default loading placeholder.
	RenderLoading LoadingView

	// RenderError overrides the package default error placeholder.
	RenderError ErrorView
}

// Loader drives a display surface through Loading, Success, and Error
// states based on a single tracked GET request. It re-fetches whenever the
// derived query key (API query plus URL path parameters) changes
// structurally.
//
// Overlapping requests caused by rapid input changes are not cancelled:
// whichever response settles last determines the observed state. This
// last-writer-wins behavior is deliberate; callers needing strict ordering
// should debounce their inputs.
type Loader[T any] struct {
	mu  sync.Mutex
	cfg LoaderConfig[T]

	// ctx is captured on Mount and reused by reload triggers, which take
	// no context of their own.
	ctx context.Context

	inputs    Inputs
	apiQuery  map[string]any
	urlParams map[string]string

	state   State
	data    T
	message string

	mounted bool
	closed  bool
}

// NewLoader validates the configuration and fills in defaults.
func NewLoader[T any](cfg LoaderConfig[T]) (*Loader[T], error) {
	if cfg.Transport == nil {
		return nil, ErrTransportRequired
	}

	if cfg.URL == "" {
		return nil, ErrURLRequired
	}

	if cfg.ResolveURL == nil {
		cfg.ResolveURL = resolvePathParams
	}

	if cfg.GetAPIQuery == nil {
		cfg.GetAPIQuery = DefaultAPIQuery
	}

	if cfg.GetURLParams == nil {
		cfg.GetURLParams = func(Inputs) map[string]string { return nil }
	}

	if cfg.Adapt == nil {
		cfg.Adapt = func(data T) T { return data }
	}

	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	return &Loader[T]{cfg: cfg, state: StateLoading}, nil
}

// Wrap composes a success view into a configured Loader. It is the
// explicit equivalent of wrapping a display component.
func Wrap[T any](cfg LoaderConfig[T], render RenderFunc[T]) (*Loader[T], error) {
	cfg.Render = render

	return NewLoader(cfg)
}

// DefaultAPIQuery derives request query parameters from inputs: an
// explicit "query" override object wins, otherwise the "id" field is
// extracted.
func DefaultAPIQuery(inputs Inputs) map[string]any {
	if override, ok := inputs["query"].(map[string]any); ok {
		return override
	}

	if id, ok := inputs["id"]; ok {
		return map[string]any{"id": id}
	}

	return nil
}

// Mount activates the loader: derive the query key from the initial
// inputs, render the loading placeholder, and issue the request.
func (l *Loader[T]) Mount(ctx context.Context, inputs Inputs) {
	l.mu.Lock()
	l.ctx = ctx
	l.mounted = true
	l.inputs = inputs
	l.apiQuery = l.cfg.GetAPIQuery(inputs)
	l.urlParams = l.cfg.GetURLParams(inputs)
	l.state = StateLoading
	l.mu.Unlock()

	l.render()
	l.fetch()
}

// Update recomputes the query key from new inputs. A structural change
// clears held data, re-enters Loading, and issues a new request; the prior
// in-flight request is left to settle.
func (l *Loader[T]) Update(inputs Inputs) {
	apiQuery := l.cfg.GetAPIQuery(inputs)
	urlParams := l.cfg.GetURLParams(inputs)

	l.mu.Lock()
	if !l.mounted || l.closed {
		l.mu.Unlock()

		return
	}

	same := structeq.Equal(l.apiQuery, apiQuery) && structeq.Equal(l.urlParams, urlParams)

	l.inputs = inputs
	if same {
		l.mu.Unlock()

		return
	}

	l.apiQuery = apiQuery
	l.urlParams = urlParams

	var zero T

	l.data = zero
	l.state = StateLoading
	l.mu.Unlock()

	l.render()
	l.fetch()
}

// Reload re-issues the tracked request unconditionally. It is also the
// trigger handed to the success view.
func (l *Loader[T]) Reload(opts ReloadOptions) {
	l.mu.Lock()
	if !l.mounted || l.closed {
		l.mu.Unlock()

		return
	}

	if opts.ClearData {
		var zero T

		l.data = zero
	}

	l.state = StateLoading
	l.mu.Unlock()

	l.render()
	l.fetch()
}

// Snapshot returns the current render input.
func (l *Loader[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Snapshot[T]{
		State:  l.state,
		Data:   l.data,
		Err:    l.message,
		Query:  l.apiQuery,
		Props:  l.cfg.Props,
		Reload: l.Reload,
	}
}

// Close deactivates the loader. In-flight requests are not cancelled;
// their settles are ignored.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
}

func (l *Loader[T]) fetch() {
	l.mu.Lock()
	ctx := l.ctx
	target := l.cfg.ResolveURL(l.cfg.URL, l.urlParams)
	query := l.apiQuery
	l.mu.Unlock()

	future := l.cfg.Transport.Get(ctx, target, query)

	go func() {
		resp, err := future.Wait(ctx)
		l.settle(resp, err)
	}()
}

//nolint:cyclop // the settle rules are one decision tree, splitting it obscures them
func (l *Loader[T]) settle(resp *Response, err error) {
	if l.isClosed() {
		return
	}

	if err != nil {
		// Aborted requests settle nothing.
		if IsCancelled(err) || errors.Is(err, context.Canceled) {
			return
		}

		l.fail(MessageFromError(err), true)

		return
	}

	data, decodeErr := decodePayload[T](resp)
	if decodeErr != nil {
		l.fail(constants.MsgUnexpectedResponse, true)

		return
	}

	if isEmptySlice(data) && !l.cfg.AllowEmpty {
		l.fail(constants.MsgNoResults, false)

		return
	}

	data = l.cfg.Adapt(data)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()

		return
	}

	l.data = data
	l.state = StateSuccess
	l.message = ""
	l.mu.Unlock()

	l.render()
	l.settled()
}

// fail applies the Error transition. When hooked is true the caller's
// OnError hook runs first and may suppress the transition by returning
// false; the settle callback fires either way.
func (l *Loader[T]) fail(message string, hooked bool) {
	show := true
	if hooked && l.cfg.OnError != nil {
		show = l.cfg.OnError(message)
	}

	if show {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()

			return
		}

		var zero T

		l.data = zero
		l.state = StateError
		l.message = message
		l.mu.Unlock()

		l.render()
	}

	l.settled()
}

func (l *Loader[T]) settled() {
	if l.cfg.OnSettled != nil {
		l.cfg.OnSettled()
	}
}

func (l *Loader[T]) render() {
	l.mu.Lock()
	state := l.state
	message := l.message
	out := l.cfg.Out
	l.mu.Unlock()

	switch state {
	case StateLoading:
		loadingViewOr(l.cfg.RenderLoading)(out)
	case StateError:
		errorViewOr(l.cfg.RenderError)(out, message)
	case StateSuccess:
		if l.cfg.Render != nil {
			l.cfg.Render(out, l.Snapshot())
		}
	}
}

func (l *Loader[T]) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.closed
}

// decodePayload turns a normalized response into the loader's data type.
// For T == any the transport's parsed value is used directly; otherwise
// the raw body is unmarshalled into T.
func decodePayload[T any](resp *Response) (T, error) {
	var data T

	if target, ok := any(&data).(*any); ok {
		*target = resp.Value

		return data, nil
	}

	if target, ok := any(&data).(*string); ok {
		*target = string(resp.Body)

		return data, nil
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return data, nil
	}

	err := json.Unmarshal(resp.Body, &data)
	if err != nil {
		return data, fmt.Errorf("decoding payload: %w", err)
	}

	return data, nil
}

func isEmptySlice(data any) bool {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}

		v = v.Elem()
	}

	return (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Len() == 0
}

// resolvePathParams substitutes ":name" placeholders in a URL path.
func resolvePathParams(rawURL string, params map[string]string) string {
	for key, value := range params {
		rawURL = strings.ReplaceAll(rawURL, ":"+key, url.PathEscape(value))
	}

	return rawURL
}
