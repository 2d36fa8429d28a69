// Package api
// Author: momentics
//
// Executor contract for background task dispatch off the real-time thread.

package api

// Executor abstracts parallel background task execution.
type Executor interface {
	// Submit schedules task for execution. It must not block.
	Submit(task func()) error

	// NumWorkers returns current number of active worker routines.
	NumWorkers() int

	// Resize adjusts the concurrency at runtime.
	Resize(newCount int)

	// Close stops the workers after in-flight tasks finish.
	Close()
}

// TaskQueue is a typed, ordered, single-consumer executor. Tasks are held
// by value so submission does not allocate.
type TaskQueue[T any] interface {
	// Submit enqueues task without blocking.
	Submit(task T) error

	// Len returns the number of queued tasks.
	Len() int

	// Close drains queued tasks and stops the consumer.
	Close()
}
