// Package control
// Author: momentics <momentics@gmail.com>
//
// Endpoint configuration, hot-reload, runtime metrics and debug introspection
// for spaceradio.
//
// Provides concurrent-safe state handling primitives including:
//   - The OSC destination endpoint, read as one consistent address/port pair
//   - Key/value config snapshots with reload listeners
//   - Prometheus-backed bridge counters
//   - Debug probe registration
package control
