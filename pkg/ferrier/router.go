package ferrier

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// NavState is the state attached to a navigation history entry.
type NavState map[string]any

// Navigator is the navigation handle supplied by the caller: push a new
// history entry or replace the state of the current one.
type Navigator interface {
	Push(path string, state NavState)
	Replace(state NavState)
}

// PathResolver derives a navigation path from the non-message fields of a
// success response.
type PathResolver func(fields map[string]any) string

// Router forwards completed transport results into navigation history.
//
// On success, the response's non-message fields are interpreted as a
// redirect target descriptor: when any remain after removing "message", a
// new history entry is pushed at the derived path with the server message
// as its state; otherwise the current entry's state is replaced. Failures
// replace the current entry's state with the error message. Routing
// composes with the caller's own handling of the future rather than
// consuming it.
type Router struct {
	nav     Navigator
	resolve PathResolver
}

// NewRouter builds a Router around a navigation handle. A nil resolver
// falls back to DefaultPathResolver.
func NewRouter(nav Navigator, resolve PathResolver) (*Router, error) {
	if nav == nil {
		return nil, ErrNavigatorRequired
	}

	if resolve == nil {
		resolve = DefaultPathResolver
	}

	return &Router{nav: nav, resolve: resolve}, nil
}

// DefaultPathResolver joins the descriptor values in sorted key order into
// a path, e.g. {"entity":"runs","id":7} -> "/runs/7".
func DefaultPathResolver(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	segments := make([]string, 0, len(keys))
	for _, key := range keys {
		segments = append(segments, url.PathEscape(stringify(fields[key])))
	}

	return "/" + strings.Join(segments, "/")
}

// Route attaches the router's success and failure handling to a request
// future and returns the original future so the caller can keep chaining.
func (r *Router) Route(future *Future[*Response]) *Future[*Response] {
	Then(future, func(resp *Response) (*Response, error) {
		r.succeed(resp)

		return resp, nil
	})

	Catch(future, func(err error) (*Response, error) {
		r.nav.Replace(NavState{"errorMessage": MessageFromError(err)})

		return nil, err
	})

	return future
}

func (r *Router) succeed(resp *Response) {
	fields, ok := resp.Value.(map[string]any)
	if !ok {
		// Non-object payloads carry no redirect descriptor.
		r.nav.Replace(NavState{"serverMessage": nil})

		return
	}

	message := fields["message"]

	rest := make(map[string]any, len(fields))
	for key, value := range fields {
		if key == "message" {
			continue
		}

		rest[key] = value
	}

	if len(rest) > 0 {
		r.nav.Push(r.resolve(rest), NavState{"serverMessage": message})

		return
	}

	r.nav.Replace(NavState{"serverMessage": message})
}

// stringify renders descriptor values for path segments; integral floats
// (the usual shape of JSON ids) drop their fractional part.
func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}

	if f, ok := value.(float64); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}

	return fmt.Sprint(value)
}
