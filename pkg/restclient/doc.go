// Package restclient provides the entry point for creating ferrier
// transports.
//
// It normalizes the configured endpoint, wires logging and timeout options
// into the concrete HTTP transport, and returns it behind the
// ferrier.Transport interface.
package restclient
