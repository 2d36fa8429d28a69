// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Background execution for spaceradio: a typed, ordered single-consumer
// task queue for dispatch tasks, a multi-worker executor with lock-free
// local queues and an unbounded backlog, and CPU pinning for worker threads.
//
// Submission paths never block and never spin; they either accept the task
// or return an error immediately.
package concurrency
