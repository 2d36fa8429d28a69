// File: internal/concurrency/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks across worker goroutines, using lock-free local
// queues and an unbounded backlog for overflow. Once the backlog holds tasks,
// new submissions join it too, so a single-worker executor stays FIFO.
// Workers removed by Resize hand their leftover tasks to the backlog.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"
)

// TaskFunc is a unit of work to execute.
type TaskFunc func()

const localQueueSize = 1024

// Executor manages a pool of worker goroutines.
type Executor struct {
	mu          sync.RWMutex // guards workers and localQueues against Resize
	localQueues []*LockFreeQueue[TaskFunc]
	workers     []*worker

	backlogMu  sync.Mutex
	backlog    *queue.Queue
	backlogLen atomic.Int64

	closeCh       chan struct{}
	closed        atomic.Bool
	resizeRequest chan int
	resizeDone    chan struct{}
	wg            sync.WaitGroup
	cpuBase       int
	next          atomic.Uint64

	totalTasks     atomic.Int64
	completedTasks atomic.Int64
	panics         atomic.Int64
}

// NewExecutor creates an Executor with numWorkers workers. If numWorkers <= 0,
// defaults to runtime.NumCPU(). Workers are pinned to consecutive CPUs starting
// at cpuBase; a negative cpuBase disables pinning.
func NewExecutor(numWorkers, cpuBase int) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	e := &Executor{
		backlog:       queue.New(),
		closeCh:       make(chan struct{}),
		resizeRequest: make(chan int),
		resizeDone:    make(chan struct{}),
		cpuBase:       cpuBase,
	}
	e.mu.Lock()
	for i := 0; i < numWorkers; i++ {
		e.addWorkerLocked(i)
	}
	e.mu.Unlock()
	go e.manageResizes()
	return e
}

func (e *Executor) addWorkerLocked(id int) {
	q := NewLockFreeQueue[TaskFunc](localQueueSize)
	w := &worker{
		id:         id,
		executor:   e,
		localQueue: q,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
	e.localQueues = append(e.localQueues, q)
	e.workers = append(e.workers, w)
	e.wg.Add(1)
	go w.run()
}

// Submit enqueues a task without blocking. Returns ErrExecutorClosed after Close.
func (e *Executor) Submit(task TaskFunc) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}
	e.totalTasks.Add(1)
	if e.backlogLen.Load() == 0 {
		e.mu.RLock()
		n := uint64(len(e.localQueues))
		ok := n > 0 && e.localQueues[e.next.Add(1)%n].Enqueue(task)
		e.mu.RUnlock()
		if ok {
			return nil
		}
	}
	e.pushBacklog(task)
	return nil
}

func (e *Executor) pushBacklog(task TaskFunc) {
	e.backlogMu.Lock()
	e.backlog.Add(task)
	e.backlogLen.Store(int64(e.backlog.Length()))
	e.backlogMu.Unlock()
}

func (e *Executor) popBacklog() (TaskFunc, bool) {
	if e.backlogLen.Load() == 0 {
		return nil, false
	}
	e.backlogMu.Lock()
	defer e.backlogMu.Unlock()
	if e.backlog.Length() == 0 {
		return nil, false
	}
	task := e.backlog.Remove().(TaskFunc)
	e.backlogLen.Store(int64(e.backlog.Length()))
	return task, true
}

// Resize dynamically scales the worker pool and waits until it is applied.
// It is a no-op after Close.
func (e *Executor) Resize(newCount int) {
	if e.closed.Load() {
		return
	}
	select {
	case e.resizeRequest <- newCount:
		<-e.resizeDone
	case <-e.closeCh:
	}
}

// manageResizes applies resize requests, stopping removed workers and moving
// their leftover local tasks to the backlog before truncating the slices.
func (e *Executor) manageResizes() {
	for {
		select {
		case <-e.closeCh:
			return
		case newCount := <-e.resizeRequest:
			if newCount <= 0 {
				newCount = 1
			}
			e.mu.Lock()
			current := len(e.workers)
			switch {
			case newCount > current:
				for i := current; i < newCount; i++ {
					e.addWorkerLocked(i)
				}
			case newCount < current:
				removed := e.workers[newCount:]
				queues := e.localQueues[newCount:]
				e.workers = e.workers[:newCount:newCount]
				e.localQueues = e.localQueues[:newCount:newCount]
				e.mu.Unlock()
				for _, w := range removed {
					close(w.stopCh)
					<-w.stoppedCh
				}
				for _, q := range queues {
					for task, ok := q.Dequeue(); ok; task, ok = q.Dequeue() {
						e.pushBacklog(task)
					}
				}
				e.mu.Lock()
			}
			e.mu.Unlock()
			e.resizeDone <- struct{}{}
		}
	}
}

// Close shuts down the executor. Workers drain what is queued and exit;
// Close waits for them.
func (e *Executor) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	close(e.closeCh)
	e.mu.RLock()
	for _, w := range e.workers {
		close(w.stopCh)
	}
	e.mu.RUnlock()
	e.wg.Wait()
}

// NumWorkers returns active worker count.
func (e *Executor) NumWorkers() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.workers)
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	total := e.totalTasks.Load()
	completed := e.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": completed,
		"pending_tasks":   total - completed,
		"backlog_tasks":   e.backlogLen.Load(),
		"panics":          e.panics.Load(),
		"num_workers":     int64(e.NumWorkers()),
	}
}

// worker runs tasks. stoppedCh is closed only after the worker has fully
// exited, so Resize can safely drop its queue.
type worker struct {
	id         int
	executor   *Executor
	localQueue *LockFreeQueue[TaskFunc]
	stopCh     chan struct{}
	stoppedCh  chan struct{}
}

func (w *worker) run() {
	defer func() {
		w.executor.wg.Done()
		close(w.stoppedCh)
	}()
	if cpuID := CPUFor(w.executor.cpuBase, w.id); cpuID >= 0 {
		if err := PinCurrentThread(cpuID); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "worker.run",
				"worker":   w.id,
				"cpu":      cpuID,
				"error":    err.Error(),
			}).Warn("CPU affinity unavailable, running unpinned")
		}
	}
	for {
		if w.runOne() {
			continue
		}
		select {
		case <-w.stopCh:
			w.drain()
			return
		default:
			// backoff to reduce CPU spinning
			time.Sleep(time.Millisecond)
		}
	}
}

// runOne executes one task from the local queue or the backlog.
func (w *worker) runOne() bool {
	if task, ok := w.localQueue.Dequeue(); ok {
		w.safeExecute(task)
		return true
	}
	if task, ok := w.executor.popBacklog(); ok {
		w.safeExecute(task)
		return true
	}
	return false
}

// drain runs the worker's remaining local tasks. The backlog is drained
// only on Close; removed workers leave it to the survivors.
func (w *worker) drain() {
	for task, ok := w.localQueue.Dequeue(); ok; task, ok = w.localQueue.Dequeue() {
		w.safeExecute(task)
	}
	if !w.executor.closed.Load() {
		return
	}
	for task, ok := w.executor.popBacklog(); ok; task, ok = w.executor.popBacklog() {
		w.safeExecute(task)
	}
}

// safeExecute runs the task and updates statistics, recovering from panics.
func (w *worker) safeExecute(task TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			w.executor.panics.Add(1)
			logrus.WithFields(logrus.Fields{
				"function": "worker.safeExecute",
				"worker":   w.id,
				"panic":    r,
			}).Error("Task panicked")
		}
		w.executor.completedTasks.Add(1)
	}()
	task()
}
