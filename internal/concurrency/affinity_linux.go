//go:build linux
// +build linux

// File: internal/concurrency/affinity_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux thread affinity through sched_setaffinity(2), without cgo.

package concurrency

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/spaceradio/api"
)

func platformPinCurrentThread(cpuID int) error {
	if cpuID < 0 || cpuID >= NumCPUs() {
		return fmt.Errorf("pin cpu %d: %w", cpuID, api.ErrInvalidArgument)
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity cpu %d: %w", cpuID, err)
	}
	return nil
}

func platformUnpinCurrentThread() error {
	var set unix.CPUSet
	set.Zero()
	for i := 0; i < NumCPUs(); i++ {
		set.Set(i)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity reset: %w", err)
	}
	return nil
}
