// File: internal/concurrency/taskqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TaskQueue is an ordered single-consumer executor for typed tasks. Tasks are
// stored by value in a lock-free ring, so Submit performs no allocation and
// no blocking: a full ring rejects the task and the consumer is woken with a
// non-blocking send on a one-slot channel.

package concurrency

import (
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/momentics/spaceradio/api"
)

var _ api.TaskQueue[int] = (*TaskQueue[int])(nil)

// DefaultTaskQueueSize bounds the number of pending tasks.
const DefaultTaskQueueSize = 4096

// TaskQueue runs handler for every submitted task on one goroutine, in
// submission order.
type TaskQueue[T any] struct {
	ring    *LockFreeQueue[T]
	handler func(T)
	cpuID   int
	wake    chan struct{}
	stopCh  chan struct{}
	done    chan struct{}
	closed  atomic.Bool
	// inflight counts Submit calls between the closed check and the enqueue.
	inflight atomic.Int32

	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	panics    atomic.Int64
}

// NewTaskQueue starts the consumer goroutine. capacity <= 0 uses
// DefaultTaskQueueSize. A non-negative cpuID pins the consumer thread.
func NewTaskQueue[T any](capacity, cpuID int, handler func(T)) *TaskQueue[T] {
	if capacity <= 0 {
		capacity = DefaultTaskQueueSize
	}
	q := &TaskQueue[T]{
		ring:    NewLockFreeQueue[T](capacity),
		handler: handler,
		cpuID:   cpuID,
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit enqueues task. It returns ErrQueueFull or ErrExecutorClosed
// immediately instead of waiting. A task accepted with a nil error always
// runs, even when Close races with Submit.
func (q *TaskQueue[T]) Submit(task T) error {
	q.inflight.Add(1)
	defer q.inflight.Add(-1)
	if q.closed.Load() {
		return ErrExecutorClosed
	}
	if !q.ring.Enqueue(task) {
		q.rejected.Add(1)
		return ErrQueueFull
	}
	q.submitted.Add(1)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// ExecuteBackground adapts Submit to api.ProcessContext.
func (q *TaskQueue[T]) ExecuteBackground(task T) bool {
	return q.Submit(task) == nil
}

// Len returns the number of queued tasks.
func (q *TaskQueue[T]) Len() int {
	return q.ring.Len()
}

// Cap returns the queue capacity.
func (q *TaskQueue[T]) Cap() int {
	return q.ring.Cap()
}

// Close runs every queued task, stops the consumer and waits for it.
func (q *TaskQueue[T]) Close() {
	if !q.closed.CompareAndSwap(false, true) {
		<-q.done
		return
	}
	close(q.stopCh)
	<-q.done
}

// Stats returns queue counters.
func (q *TaskQueue[T]) Stats() map[string]int64 {
	return map[string]int64{
		"submitted_tasks": q.submitted.Load(),
		"completed_tasks": q.completed.Load(),
		"rejected_tasks":  q.rejected.Load(),
		"pending_tasks":   int64(q.ring.Len()),
		"panics":          q.panics.Load(),
	}
}

func (q *TaskQueue[T]) run() {
	defer close(q.done)
	if q.cpuID >= 0 {
		if err := PinCurrentThread(q.cpuID); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "TaskQueue.run",
				"cpu":      q.cpuID,
				"error":    err.Error(),
			}).Warn("CPU affinity unavailable, running unpinned")
		}
	}
	for {
		q.drain()
		select {
		case <-q.wake:
		case <-q.stopCh:
			for q.inflight.Load() != 0 {
				runtime.Gosched()
			}
			q.drain()
			return
		}
	}
}

func (q *TaskQueue[T]) drain() {
	for task, ok := q.ring.Dequeue(); ok; task, ok = q.ring.Dequeue() {
		q.execute(task)
	}
}

func (q *TaskQueue[T]) execute(task T) {
	defer func() {
		if r := recover(); r != nil {
			q.panics.Add(1)
			logrus.WithFields(logrus.Fields{
				"function": "TaskQueue.execute",
				"panic":    r,
			}).Error("Task panicked")
		}
		q.completed.Add(1)
	}()
	q.handler(task)
}
