// File: adapters/executor_adapter.go
// Package adapters provides glue between internal concurrency and the api contracts.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ExecutorAdapter implements the api.Executor interface by delegating to the
// internal concurrency.Executor.

package adapters

import (
	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/internal/concurrency"
)

// ExecutorAdapter wraps an internal concurrency.Executor to satisfy the api.Executor contract.
type ExecutorAdapter struct {
	exec *concurrency.Executor
}

var _ api.Executor = (*ExecutorAdapter)(nil)

// NewExecutorAdapter constructs an api.Executor with the given number of worker
// goroutines, pinned to consecutive CPUs from cpuBase (-1 disables pinning).
func NewExecutorAdapter(workers int, cpuBase int) *ExecutorAdapter {
	return &ExecutorAdapter{exec: concurrency.NewExecutor(workers, cpuBase)}
}

// Submit dispatches a task function to be executed asynchronously.
// Returns an error if the executor has been closed.
func (ea *ExecutorAdapter) Submit(task func()) error {
	return ea.exec.Submit(task)
}

// NumWorkers returns the current number of active worker goroutines.
func (ea *ExecutorAdapter) NumWorkers() int {
	return ea.exec.NumWorkers()
}

// Resize dynamically adjusts the size of the worker pool.
func (ea *ExecutorAdapter) Resize(newCount int) {
	ea.exec.Resize(newCount)
}

// Stats returns executor counters.
func (ea *ExecutorAdapter) Stats() map[string]int64 {
	return ea.exec.Stats()
}

// Close shuts down the executor, running queued tasks before workers exit.
func (ea *ExecutorAdapter) Close() {
	ea.exec.Close()
}
