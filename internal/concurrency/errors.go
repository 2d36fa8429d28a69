// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import "errors"

var (
	// ErrExecutorClosed indicates the executor has been shut down
	ErrExecutorClosed = errors.New("executor is closed")

	// ErrQueueFull indicates a bounded queue rejected a task
	ErrQueueFull = errors.New("task queue is full")

	// ErrInvalidWorkerCount indicates invalid worker count configuration
	ErrInvalidWorkerCount = errors.New("invalid worker count")

	// ErrAffinityNotSupported indicates CPU affinity is not supported on this platform
	ErrAffinityNotSupported = errors.New("CPU affinity not supported")
)
