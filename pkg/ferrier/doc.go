// Package ferrier provides types, interfaces, and helpers for a client-side
// data-access layer over a JSON REST backend.
//
// # Overview
//
// The ferrier package defines the transport contract (Transport), the
// cancellable future type returned by every request (Future), the
// data-loading state machine that drives a display surface through
// Loading/Success/Error transitions (Loader), and the optional navigation
// integration (Router). A concrete Transport implementation is provided by
// the restclient package, which wires configuration, the HTTP client, and
// logging. Most consumers should import restclient to construct a transport
// and then work with the types exposed here.
//
// Getting a transport
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/cfe-lab/ferrier/pkg/ferrier"
//	  "github.com/cfe-lab/ferrier/pkg/restclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  tr, err := restclient.New(&ferrier.Config{Endpoint: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  fut := tr.Get(ctx, "/items", map[string]any{"id": 1})
//	  resp, err := fut.Wait(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = resp.Value
//	}
//
// # Cancellation
//
// Every request returns a *Future whose Cancel aborts the in-flight HTTP
// call. Futures derived through Then, Catch, or Finally forward Cancel to
// the original request, so cancellability survives arbitrarily long
// composition chains. Cancelling an already-settled future is a no-op;
// cancelling a future whose request was never initiated is a programming
// error and panics.
//
// # Loading state
//
// Loader ties a display surface to one tracked GET request. It re-issues
// the request whenever the derived query key changes (compared
// structurally, with NaN equal to NaN and file-like values compared by
// metadata) and renders a loading, error, or success view on each
// transition.
//
// # Errors
//
// Request failures surface as *RequestError carrying the HTTP status and a
// never-empty message extracted from the response body. Helpers such as
// IsUnreachable and MessageFromError make it easy to branch on common
// cases.
package ferrier
