// File: api/plugin.go
// Package api defines the host-facing plugin contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A host drives a plugin through four phases: Initialize once per
// configuration, Process once per block on the real-time thread,
// Save/RestoreState from the persistence layer, and Shutdown on teardown.
// Background work of type T is handed to the host from Process and later
// executed off the real-time thread by the function returned from TaskExecutor.

package api

// ProcessStatus is returned by Plugin.Process.
type ProcessStatus int

const (
	// ProcessNormal means the block was processed and the plugin keeps running.
	ProcessNormal ProcessStatus = iota
	// ProcessError means the block could not be processed.
	ProcessError
	// ProcessKeepAlive asks the host to keep calling Process with silent input.
	ProcessKeepAlive
)

func (s ProcessStatus) String() string {
	switch s {
	case ProcessNormal:
		return "normal"
	case ProcessError:
		return "error"
	case ProcessKeepAlive:
		return "keep-alive"
	default:
		return "unknown"
	}
}

// InitContext is available during Initialize.
type InitContext[T any] interface {
	// ExecuteBackground schedules task off the calling thread.
	ExecuteBackground(task T) bool
}

// ProcessContext is available during Process. ExecuteBackground must not
// block: it reports whether the task was accepted and never retries.
type ProcessContext[T any] interface {
	ExecuteBackground(task T) bool
}

// Plugin is the contract between a host and a processing core.
type Plugin[T any] interface {
	GracefulShutdown

	// Initialize is called before the first Process call and whenever the
	// host reconfigures buses or buffers. Returning false rejects the config.
	Initialize(bus BusConfig, buf BufferConfig, ctx InitContext[T]) bool

	// Process handles one block on the real-time thread.
	Process(buf *Buffer, ctx ProcessContext[T]) ProcessStatus

	// TaskExecutor returns the handler for background tasks. Hosts call it
	// once and run every submitted task through the returned function.
	TaskExecutor() func(task T)

	// Params enumerates host-visible parameters in stable index order.
	Params() []ParamInfo

	// SaveState serializes persistent fields.
	SaveState() ([]byte, error)

	// RestoreState applies previously saved fields.
	RestoreState(data []byte) error

	// Deactivate is called when the host suspends processing.
	Deactivate()
}
