package ferrier

import (
	"fmt"
	"io"
	"sync"
)

// LoadingView renders the loading placeholder.
type LoadingView func(w io.Writer)

// ErrorView renders the error placeholder with the failure message.
type ErrorView func(w io.Writer, message string)

// Package-level view defaults. A Loader without per-instance views falls
// back to these. Set them once during program initialization; there is no
// teardown.
var (
	viewMu              sync.RWMutex
	defaultLoadingView  LoadingView = func(w io.Writer) { fmt.Fprintln(w, "Loading...") }
	defaultErrorView    ErrorView   = func(w io.Writer, message string) { fmt.Fprintf(w, "Error: %s\n", message) }
)

// SetDefaultLoadingView replaces the package-wide loading placeholder.
func SetDefaultLoadingView(view LoadingView) {
	viewMu.Lock()
	defer viewMu.Unlock()

	defaultLoadingView = view
}

// SetDefaultErrorView replaces the package-wide error placeholder.
func SetDefaultErrorView(view ErrorView) {
	viewMu.Lock()
	defer viewMu.Unlock()

	defaultErrorView = view
}

func loadingViewOr(view LoadingView) LoadingView {
	if view != nil {
		return view
	}

	viewMu.RLock()
	defer viewMu.RUnlock()

	return defaultLoadingView
}

func errorViewOr(view ErrorView) ErrorView {
	if view != nil {
		return view
	}

	viewMu.RLock()
	defer viewMu.RUnlock()

	return defaultErrorView
}
