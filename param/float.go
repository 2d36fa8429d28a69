// File: param/float.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FloatParam is a single automatable control.

package param

import (
	"math"
	"sync/atomic"
)

// FloatParam holds one control value. Set, Value and Normalized are safe for
// concurrent use. The smoother is advanced by the real-time thread only.
type FloatParam struct {
	index    int
	id       string
	name     string
	def      float32
	rng      FloatRange
	bits     atomic.Uint32
	smoother *Smoother
	onChange func(value float32)
}

// NewFloatParam creates a control at index with the given default.
func NewFloatParam(index int, id, name string, def float32, rng FloatRange) *FloatParam {
	def = rng.Clamp(def)
	p := &FloatParam{
		index:    index,
		id:       id,
		name:     name,
		def:      def,
		rng:      rng,
		smoother: NewSmoother(SmoothingNone, def),
	}
	p.bits.Store(math.Float32bits(def))
	return p
}

// WithSmoother sets the smoothing style. Call before the param is shared.
func (p *FloatParam) WithSmoother(style SmoothingStyle) *FloatParam {
	p.smoother = NewSmoother(style, p.Value())
	return p
}

// WithCallback binds the change callback. Call before the param is shared.
// The callback runs synchronously inside Set and must be bounded and
// allocation-free.
func (p *FloatParam) WithCallback(fn func(value float32)) *FloatParam {
	p.onChange = fn
	return p
}

// Index returns the stable control index.
func (p *FloatParam) Index() int { return p.index }

// ID returns the persistent identifier.
func (p *FloatParam) ID() string { return p.id }

// Name returns the human-readable label.
func (p *FloatParam) Name() string { return p.name }

// Range returns the value range.
func (p *FloatParam) Range() FloatRange { return p.rng }

// Default returns the default plain value.
func (p *FloatParam) Default() float32 { return p.def }

// Value returns the current plain value.
func (p *FloatParam) Value() float32 {
	return math.Float32frombits(p.bits.Load())
}

// Normalized returns the current value mapped to [0, 1].
func (p *FloatParam) Normalized() float32 {
	return p.rng.Normalize(p.Value())
}

// Set stores a plain value, clamped to the range, and fires the callback.
func (p *FloatParam) Set(v float32) {
	v = p.rng.Clamp(v)
	p.bits.Store(math.Float32bits(v))
	if p.onChange != nil {
		p.onChange(v)
	}
}

// SetNormalized stores a value given in [0, 1].
func (p *FloatParam) SetNormalized(n float32) {
	p.Set(p.rng.Unnormalize(n))
}

// Smoothed returns the smoother. Real-time thread only.
func (p *FloatParam) Smoothed() *Smoother {
	return p.smoother
}

// advance retargets the smoother to the latest value and skips n samples.
func (p *FloatParam) advance(n int) {
	if v := p.Value(); v != p.smoother.Target() {
		p.smoother.SetTarget(v)
	}
	p.smoother.Skip(n)
}
