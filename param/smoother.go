// File: param/smoother.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-sample linear smoothing for control values.

package param

// SmoothingStyle selects how a Smoother ramps toward its target.
type SmoothingStyle struct {
	linear bool
	ms     float32
}

// SmoothingNone jumps to the target immediately.
var SmoothingNone = SmoothingStyle{}

// SmoothingLinear ramps linearly over ms milliseconds.
func SmoothingLinear(ms float32) SmoothingStyle {
	if ms <= 0 {
		return SmoothingNone
	}
	return SmoothingStyle{linear: true, ms: ms}
}

// Smoother ramps a value toward a target. It is not safe for concurrent use;
// only the real-time thread touches it.
type Smoother struct {
	style      SmoothingStyle
	sampleRate float32
	current    float32
	target     float32
	step       float32
	remaining  int
}

// NewSmoother creates a smoother settled at initial.
func NewSmoother(style SmoothingStyle, initial float32) *Smoother {
	return &Smoother{style: style, current: initial, target: initial}
}

// Reset sets the sample rate and snaps to the current target.
func (s *Smoother) Reset(sampleRate float32) {
	s.sampleRate = sampleRate
	s.current = s.target
	s.step = 0
	s.remaining = 0
}

// SetTarget starts a ramp toward target.
func (s *Smoother) SetTarget(target float32) {
	s.target = target
	steps := s.steps()
	if steps <= 0 {
		s.current = target
		s.remaining = 0
		s.step = 0
		return
	}
	s.remaining = steps
	s.step = (target - s.current) / float32(steps)
}

func (s *Smoother) steps() int {
	if !s.style.linear || s.sampleRate <= 0 {
		return 0
	}
	return int(s.sampleRate * s.style.ms / 1000)
}

// Next advances one sample and returns the smoothed value.
func (s *Smoother) Next() float32 {
	if s.remaining == 0 {
		return s.current
	}
	s.remaining--
	if s.remaining == 0 {
		s.current = s.target
	} else {
		s.current += s.step
	}
	return s.current
}

// Skip advances n samples.
func (s *Smoother) Skip(n int) {
	if n <= 0 || s.remaining == 0 {
		return
	}
	if n >= s.remaining {
		s.current = s.target
		s.remaining = 0
		return
	}
	s.remaining -= n
	s.current += s.step * float32(n)
}

// Current returns the value without advancing.
func (s *Smoother) Current() float32 {
	return s.current
}

// Target returns the ramp destination.
func (s *Smoother) Target() float32 {
	return s.target
}

// Smoothing reports whether a ramp is in progress.
func (s *Smoother) Smoothing() bool {
	return s.remaining > 0
}
