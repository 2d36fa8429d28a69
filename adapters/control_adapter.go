// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control interface using control package primitives.
// The "osc.address" and "osc.port" config keys are routed to the endpoint store.

package adapters

import (
	"fmt"

	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/control"
)

// Config keys mirrored into the endpoint store.
const (
	KeyOSCAddress = "osc.address"
	KeyOSCPort    = "osc.port"
)

type ControlAdapter struct {
	config   *control.ConfigStore
	endpoint *control.EndpointStore
	metrics  *control.MetricsRegistry
	debug    *control.DebugProbes
}

var _ api.Control = (*ControlAdapter)(nil)

// NewControlAdapter wires the control primitives together. endpoint and
// metrics are shared with the bridge.
func NewControlAdapter(endpoint *control.EndpointStore, metrics *control.MetricsRegistry) *ControlAdapter {
	adapter := &ControlAdapter{
		config:   control.NewConfigStore(),
		endpoint: endpoint,
		metrics:  metrics,
		debug:    control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(adapter.debug)
	e := endpoint.Load()
	adapter.config.SetConfig(map[string]any{KeyOSCAddress: e.Address, KeyOSCPort: int(e.Port)})
	endpoint.OnChange(func(e control.Endpoint) {
		adapter.config.SetConfig(map[string]any{KeyOSCAddress: e.Address, KeyOSCPort: int(e.Port)})
	})
	return adapter
}

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

// SetConfig merges cfg. Endpoint keys are validated and applied as one pair.
func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	addr, hasAddr := cfg[KeyOSCAddress]
	port, hasPort := cfg[KeyOSCPort]
	if hasAddr || hasPort {
		e := c.endpoint.Load()
		if hasAddr {
			s, ok := addr.(string)
			if !ok {
				return api.NewError(api.ErrCodeInvalidArgument, "osc.address must be a string").
					WithContext("value", addr)
			}
			e.Address = s
		}
		if hasPort {
			p, err := toPort(port)
			if err != nil {
				return err
			}
			e.Port = p
		}
		if err := c.endpoint.Store(e); err != nil {
			return err
		}
	}
	c.config.SetConfig(cfg)
	return nil
}

func (c *ControlAdapter) Endpoint() (string, uint16) {
	e := c.endpoint.Load()
	return e.Address, e.Port
}

func (c *ControlAdapter) SetEndpoint(address string, port uint16) error {
	return c.endpoint.Store(control.Endpoint{Address: address, Port: port})
}

func (c *ControlAdapter) Stats() map[string]any {
	combined := make(map[string]any)
	for k, v := range c.config.GetSnapshot() {
		combined[k] = v
	}
	for k, v := range c.metrics.GetSnapshot() {
		combined[k] = v
	}
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(fn)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

func toPort(v any) (uint16, error) {
	var n int64
	switch p := v.(type) {
	case int:
		n = int64(p)
	case int64:
		n = p
	case uint16:
		return p, nil
	case float64:
		n = int64(p)
	default:
		return 0, api.NewError(api.ErrCodeInvalidArgument, "osc.port must be an integer").
			WithContext("value", fmt.Sprint(v))
	}
	if n < 0 || n > 65535 {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "osc.port out of range").
			WithContext("value", n)
	}
	return uint16(n), nil
}
