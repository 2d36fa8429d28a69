// File: adapters/background_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BackgroundAdapter turns an api.Executor plus a plugin's task handler into
// the host context handed to Plugin.Initialize and Plugin.Process.

package adapters

import (
	"github.com/momentics/spaceradio/api"
)

// BackgroundAdapter submits typed tasks to a function executor. Each task is
// wrapped in a closure, so submission allocates; prefer a concurrency.TaskQueue
// where the caller is allocation-sensitive.
type BackgroundAdapter[T any] struct {
	exec    api.Executor
	handler func(T)
}

var (
	_ api.ProcessContext[int] = (*BackgroundAdapter[int])(nil)
	_ api.InitContext[int]    = (*BackgroundAdapter[int])(nil)
)

// NewBackgroundAdapter binds handler to exec.
func NewBackgroundAdapter[T any](exec api.Executor, handler func(T)) *BackgroundAdapter[T] {
	return &BackgroundAdapter[T]{exec: exec, handler: handler}
}

// ExecuteBackground submits task and reports whether the executor accepted it.
func (b *BackgroundAdapter[T]) ExecuteBackground(task T) bool {
	handler := b.handler
	return b.exec.Submit(func() { handler(task) }) == nil
}

// QueueAdapter exposes an api.TaskQueue as a host context.
type QueueAdapter[T any] struct {
	queue api.TaskQueue[T]
}

var _ api.ProcessContext[int] = (*QueueAdapter[int])(nil)

// NewQueueAdapter wraps q.
func NewQueueAdapter[T any](q api.TaskQueue[T]) *QueueAdapter[T] {
	return &QueueAdapter[T]{queue: q}
}

// ExecuteBackground enqueues task without blocking.
func (a *QueueAdapter[T]) ExecuteBackground(task T) bool {
	return a.queue.Submit(task) == nil
}
