// File: api/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bus, buffer and block descriptors supplied by the host.

package api

// BusConfig describes the channel layout offered by the host.
type BusConfig struct {
	NumInputChannels  uint32
	NumOutputChannels uint32
	AuxInputs         []uint32
	AuxOutputs        []uint32
}

// BufferConfig describes block sizing and sample rate.
type BufferConfig struct {
	SampleRate    float32
	MinBufferSize uint32
	MaxBufferSize uint32
}

// Buffer is one block of non-interleaved audio. Channels may be empty for
// plugins without audio outputs; NumSamples is authoritative.
type Buffer struct {
	Channels   [][]float32
	NumSamples int
}

// NewBuffer allocates a zeroed buffer with the given layout.
func NewBuffer(channels, samples int) *Buffer {
	b := &Buffer{Channels: make([][]float32, channels), NumSamples: samples}
	for i := range b.Channels {
		b.Channels[i] = make([]float32, samples)
	}
	return b
}

// Samples returns the number of samples in the block.
func (b *Buffer) Samples() int {
	if b == nil {
		return 0
	}
	return b.NumSamples
}

// Silence zeroes every channel.
func (b *Buffer) Silence() {
	for _, ch := range b.Channels {
		clear(ch)
	}
}
