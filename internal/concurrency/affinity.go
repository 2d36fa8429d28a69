// File: internal/concurrency/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CPU affinity for worker threads.

package concurrency

import (
	"runtime"
)

// NumCPUs returns the number of logical CPUs.
func NumCPUs() int {
	return runtime.NumCPU()
}

// CPUFor maps a worker id onto a CPU starting at base, wrapping around.
// A negative base disables pinning and yields -1.
func CPUFor(base, id int) int {
	if base < 0 {
		return -1
	}
	return (base + id) % NumCPUs()
}

// PinCurrentThread locks the calling goroutine to its OS thread and binds
// that thread to cpuID. The goroutine stays locked even on error.
func PinCurrentThread(cpuID int) error {
	runtime.LockOSThread()
	return platformPinCurrentThread(cpuID)
}

// UnpinCurrentThread widens affinity to every CPU and unlocks the thread.
func UnpinCurrentThread() error {
	defer runtime.UnlockOSThread()
	return platformUnpinCurrentThread()
}
