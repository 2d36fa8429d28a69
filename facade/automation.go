// File: facade/automation.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Automation stands in for host automation lanes when no DAW is attached.

package facade

import (
	"math"

	"github.com/momentics/spaceradio/param"
)

// Automation drives controls with phase-shifted sine LFOs. Control i lags
// control 0 by i/Controls of a cycle.
type Automation struct {
	RateHz   float64 // LFO frequency
	Depth    float32 // Peak deviation from 0.5 in normalized units, 0..0.5
	Controls int     // Number of animated controls, starting at index 0
	Step     float32 // Minimum normalized change before a control is written
}

// NewAutomation animates the first controls controls at rateHz with full depth.
func NewAutomation(rateHz float64, controls int) *Automation {
	return &Automation{
		RateHz:   rateHz,
		Depth:    0.5,
		Controls: controls,
		Step:     1.0 / 1024,
	}
}

// ValueAt returns the normalized value of control index at time t seconds.
func (a *Automation) ValueAt(index int, t float64) float32 {
	n := a.Controls
	if n <= 0 {
		n = 1
	}
	phase := 2 * math.Pi * (a.RateHz*t + float64(index)/float64(n))
	return 0.5 + a.Depth*float32(math.Sin(phase))
}

// Apply writes every animated control whose value moved by at least Step.
// It does not allocate and is safe on the block thread.
func (a *Automation) Apply(bank *param.Bank, t float64) {
	n := a.Controls
	if n > bank.Len() {
		n = bank.Len()
	}
	for i := 0; i < n; i++ {
		p := bank.At(i)
		v := a.ValueAt(i, t)
		if d := v - p.Normalized(); d < a.Step && d > -a.Step {
			continue
		}
		p.SetNormalized(v)
	}
}
