package audio

import "math"

// ModulationSource is a sine LFO. Its value is expressed in the units of the
// parameter it drives (Hz for a filter frequency, linear gain for a branch).
type ModulationSource struct {
	rate       float64
	depth      float64
	sampleRate float64
	phase      float64 // cycles, [0,1)
}

// NewModulationSource creates an LFO at rate Hz swinging ±depth.
func NewModulationSource(rate, depth, sampleRate float64) *ModulationSource {
	return &ModulationSource{rate: rate, depth: depth, sampleRate: sampleRate}
}

// Value returns the current modulation offset.
func (m *ModulationSource) Value() float64 {
	return m.depth * math.Sin(2*math.Pi*m.phase)
}

// Advance moves the phase forward by frames render frames.
func (m *ModulationSource) Advance(frames int) {
	m.phase += m.rate * float64(frames) / m.sampleRate
	m.phase -= math.Floor(m.phase)
}

func (m *ModulationSource) Rate() float64  { return m.rate }
func (m *ModulationSource) Depth() float64 { return m.depth }

// Phase returns the current phase in cycles.
func (m *ModulationSource) Phase() float64 { return m.phase }
