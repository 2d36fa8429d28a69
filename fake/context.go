// Package fake
// Author: momentics <momentics@gmail.com>
//
// Recording host contexts.

package fake

import "sync"

// Context records background tasks instead of executing them. It satisfies
// api.InitContext[T] and api.ProcessContext[T].
type Context[T any] struct {
	mu     sync.Mutex
	tasks  []T
	reject bool
}

// NewContext creates an accepting context.
func NewContext[T any]() *Context[T] {
	return &Context[T]{}
}

// ExecuteBackground records task. It returns false when rejecting.
func (c *Context[T]) ExecuteBackground(task T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reject {
		return false
	}
	c.tasks = append(c.tasks, task)
	return true
}

// Reject makes subsequent submissions fail.
func (c *Context[T]) Reject(reject bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reject = reject
}

// Take returns and clears the recorded tasks.
func (c *Context[T]) Take() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.tasks
	c.tasks = nil
	return out
}
