// File: bridge/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package bridge forwards control changes to an OSC listener.
//
// Writes to the control bank mark indices in a dirty tracker. Once per
// processing block the real-time thread drains the tracker and hands one
// Task per changed control to the host's background executor. The task
// handler, running off the real-time thread, reads the current endpoint and
// sends "/{index}" with a single float32 argument over UDP.
//
// Process never allocates, logs, blocks or takes a contended lock. All
// network and logging work happens in the task handler.
package bridge
