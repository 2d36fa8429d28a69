// File: adapters/affinity_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
// Description:
//   Adapter implementing the api.Affinity interface, delegating to
//   internal concurrency primitives for CPU pinning.

package adapters

import (
	"runtime"

	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/internal/concurrency"
)

// AffinityAdapter implements api.Affinity for the calling goroutine's thread.
// It is meant to be owned by one goroutine.
type AffinityAdapter struct {
	currentCPU int
	pinned     bool
}

var _ api.Affinity = (*AffinityAdapter)(nil)

// NewAffinityAdapter creates an unpinned adapter.
func NewAffinityAdapter() *AffinityAdapter {
	return &AffinityAdapter{currentCPU: -1}
}

// Pin binds the calling thread to cpuID; -1 picks CPU 0.
func (a *AffinityAdapter) Pin(cpuID int) error {
	if cpuID < 0 {
		cpuID = concurrency.CPUFor(0, 0)
	}
	if err := concurrency.PinCurrentThread(cpuID); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	a.currentCPU = cpuID
	a.pinned = true
	return nil
}

// Unpin clears the binding, allowing the OS scheduler to migrate the thread.
func (a *AffinityAdapter) Unpin() error {
	if !a.pinned {
		return nil
	}
	if err := concurrency.UnpinCurrentThread(); err != nil {
		return err
	}
	a.pinned = false
	a.currentCPU = -1
	return nil
}

// Get returns the bound CPU or -1.
func (a *AffinityAdapter) Get() int {
	return a.currentCPU
}
