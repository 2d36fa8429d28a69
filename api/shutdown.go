// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown unifies teardown of components owning goroutines or sockets.
type GracefulShutdown interface {
	// Shutdown stops internal services and releases resources.
	// Calling it more than once is safe.
	Shutdown() error
}
