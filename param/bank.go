// File: param/bank.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bank is the fixed-size control collection exposed to the host.

package param

import (
	"fmt"

	"github.com/momentics/spaceradio/api"
)

// DefaultControls is the number of controls in the reference configuration.
const DefaultControls = 64

// GroupName is the host-visible group for bank controls.
const GroupName = "Array Parameters"

// BankOption customizes bank construction.
type BankOption func(*bankConfig)

type bankConfig struct {
	def       float32
	rng       FloatRange
	smoothing SmoothingStyle
}

// WithRange sets the range for every control.
func WithRange(r FloatRange) BankOption {
	return func(c *bankConfig) { c.rng = r }
}

// WithDefault sets the default value for every control.
func WithDefault(v float32) BankOption {
	return func(c *bankConfig) { c.def = v }
}

// WithSmoothing sets the smoothing style for every control.
func WithSmoothing(s SmoothingStyle) BankOption {
	return func(c *bankConfig) { c.smoothing = s }
}

// Bank is an immutable slice of controls indexed 0..Len()-1.
type Bank struct {
	params []*FloatParam
	byID   map[string]*FloatParam
}

// NewBank creates n controls. onChange, if set, is called with the control's
// own index whenever that control is written; each control's callback is a
// closure with its index fixed at construction.
func NewBank(n int, onChange func(index int), opts ...BankOption) *Bank {
	if n <= 0 {
		n = DefaultControls
	}
	cfg := bankConfig{def: 0, rng: UnitRange, smoothing: SmoothingNone}
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &Bank{
		params: make([]*FloatParam, n),
		byID:   make(map[string]*FloatParam, n),
	}
	for i := 0; i < n; i++ {
		p := NewFloatParam(i, ControlID(i), ControlName(i), cfg.def, cfg.rng).
			WithSmoother(cfg.smoothing)
		if onChange != nil {
			index := i
			p.WithCallback(func(float32) { onChange(index) })
		}
		b.params[i] = p
		b.byID[p.ID()] = p
	}
	return b
}

// ControlID returns the persistent id for index: channel_1, channel_2, ...
func ControlID(index int) string {
	return fmt.Sprintf("channel_%d", index+1)
}

// ControlName returns the label for index: "Ch. 1", "Ch. 2", ...
func ControlName(index int) string {
	return fmt.Sprintf("Ch. %d", index+1)
}

// Len returns the number of controls.
func (b *Bank) Len() int { return len(b.params) }

// At returns the control at index or nil.
func (b *Bank) At(index int) *FloatParam {
	if index < 0 || index >= len(b.params) {
		return nil
	}
	return b.params[index]
}

// ByID looks a control up by persistent id.
func (b *Bank) ByID(id string) (*FloatParam, bool) {
	p, ok := b.byID[id]
	return p, ok
}

// Value reads the current value of index.
func (b *Bank) Value(index int) (float32, bool) {
	p := b.At(index)
	if p == nil {
		return 0, false
	}
	return p.Value(), true
}

// Set writes index. Returns false for unknown indices.
func (b *Bank) Set(index int, v float32) bool {
	p := b.At(index)
	if p == nil {
		return false
	}
	p.Set(v)
	return true
}

// Reset configures every smoother for sampleRate. Real-time thread only.
func (b *Bank) Reset(sampleRate float32) {
	for _, p := range b.params {
		p.smoother.Reset(sampleRate)
	}
}

// Advance moves every smoother forward by samples. Real-time thread only.
func (b *Bank) Advance(samples int) {
	for _, p := range b.params {
		p.advance(samples)
	}
}

// Each calls fn for every control in index order.
func (b *Bank) Each(fn func(p *FloatParam)) {
	for _, p := range b.params {
		fn(p)
	}
}

// Infos returns host descriptors for every control.
func (b *Bank) Infos() []api.ParamInfo {
	out := make([]api.ParamInfo, len(b.params))
	for i, p := range b.params {
		out[i] = api.ParamInfo{
			Index:   i,
			ID:      p.ID(),
			Name:    p.Name(),
			Group:   GroupName,
			Kind:    api.ParamFloat,
			Default: p.Default(),
			Min:     p.rng.Min,
			Max:     p.rng.Max,
		}
	}
	return out
}
