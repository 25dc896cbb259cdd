package audio

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilterKind is the response type of a biquad stage.
type FilterKind int

const (
	Lowpass FilterKind = iota
	Highpass
	Bandpass
)

// Stability limits applied to every coefficient update.
const (
	MinFilterFrequency = 10.0
	MinQ               = 0.0001
	maxNyquistFraction = 0.99
)

func (k FilterKind) String() string {
	switch k {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// ParseFilterKind parses a filter kind name.
func ParseFilterKind(s string) (FilterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lowpass":
		return Lowpass, nil
	case "highpass":
		return Highpass, nil
	case "bandpass":
		return Bandpass, nil
	}
	return Lowpass, fmt.Errorf("unknown filter kind %q", s)
}

func (k *FilterKind) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseFilterKind(value.Value)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k FilterKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// FilterStage is one RBJ biquad. Its center frequency may be driven by a
// ModulationSource; the effective value is re-evaluated once per Process
// call (one render quantum) and clamped into the stable range.
type FilterStage struct {
	kind       FilterKind
	frequency  float64
	q          float64
	sampleRate float64
	mod        *ModulationSource

	// coefficients, normalized by a0
	b0, b1, b2, a1, a2 float64
	coeffFreq          float64
	coeffQ             float64

	// direct form I history
	x1, x2, y1, y2 float64
}

// NewFilterStage creates a biquad with static frequency and Q.
func NewFilterStage(kind FilterKind, frequency, q, sampleRate float64) *FilterStage {
	s := &FilterStage{
		kind:       kind,
		sampleRate: sampleRate,
	}
	s.frequency = frequency
	s.q = q
	s.update(s.Frequency())
	return s
}

// SetFrequency changes the static center frequency.
func (s *FilterStage) SetFrequency(hz float64) { s.frequency = hz }

// SetQ changes the resonance.
func (s *FilterStage) SetQ(q float64) { s.q = q }

// Modulate binds m to the center frequency. The stage owns m from now on.
func (s *FilterStage) Modulate(m *ModulationSource) { s.mod = m }

// Modulation returns the bound modulation source, if any.
func (s *FilterStage) Modulation() *ModulationSource { return s.mod }

func (s *FilterStage) Kind() FilterKind         { return s.kind }
func (s *FilterStage) StaticFrequency() float64 { return s.frequency }

// Q returns the resonance after clamping.
func (s *FilterStage) Q() float64 {
	if !(s.q >= MinQ) {
		return MinQ
	}
	return s.q
}

// Frequency returns the effective center frequency: static plus the current
// modulation value, clamped to (0, nyquist).
func (s *FilterStage) Frequency() float64 {
	f := s.frequency
	if s.mod != nil {
		f += s.mod.Value()
	}
	return s.clampFrequency(f)
}

func (s *FilterStage) clampFrequency(f float64) float64 {
	hi := s.sampleRate / 2 * maxNyquistFraction
	if !(f >= MinFilterFrequency) {
		return MinFilterFrequency
	}
	if f > hi {
		return hi
	}
	return f
}

func (s *FilterStage) update(freq float64) {
	q := s.Q()
	if freq == s.coeffFreq && q == s.coeffQ {
		return
	}
	omega := 2 * math.Pi * freq / s.sampleRate
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	alpha := sinOmega / (2 * q)

	var b0, b1, b2 float64
	switch s.kind {
	case Lowpass:
		b0 = (1 - cosOmega) / 2
		b1 = 1 - cosOmega
		b2 = (1 - cosOmega) / 2
	case Highpass:
		b0 = (1 + cosOmega) / 2
		b1 = -(1 + cosOmega)
		b2 = (1 + cosOmega) / 2
	case Bandpass:
		// constant 0 dB peak gain
		b0 = alpha
		b1 = 0
		b2 = -alpha
	}
	a0 := 1 + alpha
	s.b0 = b0 / a0
	s.b1 = b1 / a0
	s.b2 = b2 / a0
	s.a1 = -2 * cosOmega / a0
	s.a2 = (1 - alpha) / a0
	s.coeffFreq = freq
	s.coeffQ = q
}

// Process filters buf in place and advances the bound modulation source by
// len(buf) frames.
func (s *FilterStage) Process(buf []float64) {
	s.update(s.Frequency())
	b0, b1, b2, a1, a2 := s.b0, s.b1, s.b2, s.a1, s.a2
	x1, x2, y1, y2 := s.x1, s.x2, s.y1, s.y2
	for i, x0 := range buf {
		y0 := b0*x0 + b1*x1 + b2*x2 - a1*y1 - a2*y2
		buf[i] = y0
		x2, x1 = x1, x0
		y2, y1 = y1, y0
	}
	s.x1, s.x2, s.y1, s.y2 = x1, x2, y1, y2
	if s.mod != nil {
		s.mod.Advance(len(buf))
	}
}

// Release clears the filter history.
func (s *FilterStage) Release() {
	s.x1, s.x2, s.y1, s.y2 = 0, 0, 0, 0
	s.mod = nil
}
