//go:build !linux
// +build !linux

// File: internal/concurrency/affinity_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub implementation for platforms without thread affinity support.

package concurrency

func platformPinCurrentThread(cpuID int) error {
	return ErrAffinityNotSupported
}

func platformUnpinCurrentThread() error {
	return nil
}
