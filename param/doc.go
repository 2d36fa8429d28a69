// File: param/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package param implements the control bank: a fixed set of independently
// smoothed float controls, each with a stable index and a change callback
// that runs synchronously on the writer's thread.
//
// Values are stored as atomic float32 bits, so reads from the block driver
// or background workers never take a lock. Smoothers are owned by the
// real-time thread and must only be advanced from it.
package param
