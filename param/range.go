// File: param/range.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package param

// FloatRange is a linear value range.
type FloatRange struct {
	Min float32
	Max float32
}

// UnitRange is the default [0, 1] range.
var UnitRange = FloatRange{Min: 0, Max: 1}

// Clamp limits v to the range.
func (r FloatRange) Clamp(v float32) float32 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	if v != v { // NaN
		return r.Min
	}
	return v
}

// Normalize maps a plain value to [0, 1].
func (r FloatRange) Normalize(v float32) float32 {
	if r.Max == r.Min {
		return 0
	}
	return (r.Clamp(v) - r.Min) / (r.Max - r.Min)
}

// Unnormalize maps a normalized value in [0, 1] to the plain range.
func (r FloatRange) Unnormalize(n float32) float32 {
	n = UnitRange.Clamp(n)
	return r.Min + n*(r.Max-r.Min)
}
