// Package api
// Author: momentics@gmail.com
//
// CPU affinity and thread pinning definitions.

package api

// Affinity controls execution on particular CPUs.
type Affinity interface {
	// Pin locks the calling goroutine to its OS thread and binds the thread to cpuID.
	Pin(cpuID int) error
	// Unpin removes affinity and releases the OS thread.
	Unpin() error
	// Get returns the bound CPU, or -1.
	Get() int
}
