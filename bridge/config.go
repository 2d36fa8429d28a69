// File: bridge/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bridge

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/spaceradio/control"
	"github.com/momentics/spaceradio/param"
	"github.com/momentics/spaceradio/transport"
)

// Config holds construction parameters.
type Config struct {
	Controls  int                  // Number of controls in the bank
	LocalAddr string               // Local bind address for the UDP socket
	Address   string               // Initial destination host
	Port      uint16               // Initial destination port
	Smoothing param.SmoothingStyle // Smoothing applied to every control
}

// DefaultConfig returns the reference configuration: 64 controls sending to
// 127.0.0.1:9009 from an ephemeral port.
func DefaultConfig() Config {
	return Config{
		Controls:  param.DefaultControls,
		LocalAddr: transport.DefaultLocalAddr,
		Address:   control.DefaultAddress,
		Port:      control.DefaultPort,
		Smoothing: param.SmoothingNone,
	}
}

// Option customizes a Bridge.
type Option func(*Bridge)

// WithMetrics shares an existing metrics registry.
func WithMetrics(m *control.MetricsRegistry) Option {
	return func(b *Bridge) { b.metrics = m }
}

// WithEndpointStore shares an existing endpoint store. Config.Address and
// Config.Port are ignored.
func WithEndpointStore(s *control.EndpointStore) Option {
	return func(b *Bridge) { b.endpoint = s }
}

// WithSender installs s instead of binding a socket.
func WithSender(s *transport.Sender) Option {
	return func(b *Bridge) {
		b.sender = s
		b.skipSpawn = true
	}
}

// WithoutSender leaves the sender slot empty. Every task is dropped.
func WithoutSender() Option {
	return func(b *Bridge) {
		b.sender = nil
		b.skipSpawn = true
	}
}

// WithLogger sets the logger used by the task handler and lifecycle methods.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Bridge) { b.log = l }
}
