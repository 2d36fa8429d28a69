// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control manages dynamic config, the OSC endpoint and runtime metrics.
type Control interface {
	GetConfig() map[string]any
	SetConfig(cfg map[string]any) error
	// Endpoint returns the current destination address and port.
	Endpoint() (address string, port uint16)
	// SetEndpoint atomically replaces the destination address and port.
	SetEndpoint(address string, port uint16) error
	Stats() map[string]any
	OnReload(fn func())
	RegisterDebugProbe(name string, fn func() any)
}
