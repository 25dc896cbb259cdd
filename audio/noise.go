package audio

import (
	"fmt"
	"strings"

	"github.com/simukka/soundscape/common"
	"gopkg.in/yaml.v3"
)

// NoiseColor selects the spectral shape of a noise source.
type NoiseColor int

const (
	NoiseNone    NoiseColor = iota // Profile has no noise source
	NoiseWhite                     // Flat spectrum
	NoisePink                      // -3 dB/octave
	NoiseBrown                     // -6 dB/octave
	NoiseSilence                   // All-zero buffer
)

// Loudness calibration constants. Empirical, keep as literals.
const (
	pinkGain  = 0.11
	brownGain = 3.5
)

var noiseColorNames = map[NoiseColor]string{
	NoiseNone:    "none",
	NoiseWhite:   "white",
	NoisePink:    "pink",
	NoiseBrown:   "brown",
	NoiseSilence: "silence",
}

func (c NoiseColor) String() string {
	if name, ok := noiseColorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("NoiseColor(%d)", int(c))
}

// ParseNoiseColor parses a color name as used in profile files.
func ParseNoiseColor(s string) (NoiseColor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range noiseColorNames {
		if name == s {
			return c, nil
		}
	}
	return NoiseNone, fmt.Errorf("unknown noise color %q", s)
}

func (c *NoiseColor) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseNoiseColor(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c NoiseColor) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// pinkState is the Paul Kellet filter bank. b[6] is carried along but never
// updated, matching the reference algorithm.
type pinkState [7]float64

func (b *pinkState) next(white float64) float64 {
	b[0] = 0.99886*b[0] + white*0.0555179
	b[1] = 0.99332*b[1] + white*0.0750759
	b[2] = 0.96900*b[2] + white*0.1538520
	b[3] = 0.86650*b[3] + white*0.3104856
	b[4] = 0.55000*b[4] + white*0.5329522
	b[5] = -0.7616*b[5] - white*0.0168980
	return (b[0] + b[1] + b[2] + b[3] + b[4] + b[5] + b[6] + white*0.5362) * pinkGain
}

// NoiseGenerator owns a precomputed loop of noise for one color. The render
// thread only reads the loop; filter state is kept on the generator so
// successive Generate calls continue the same signal.
type NoiseGenerator struct {
	color      NoiseColor
	sampleRate float64
	rng        *common.SeededRNG

	pink  pinkState
	brown float64

	buf []float64
	pos int
}

// NewNoiseGenerator precomputes lengthSamples of noise. A non-positive
// length is a programming error and panics.
func NewNoiseGenerator(color NoiseColor, lengthSamples int, sampleRate float64, rng *common.SeededRNG) *NoiseGenerator {
	g := &NoiseGenerator{
		color:      color,
		sampleRate: sampleRate,
		rng:        rng,
	}
	g.buf = g.Generate(lengthSamples)
	return g
}

// Generate produces a buffer of noise for color using a fresh filter state.
func Generate(color NoiseColor, lengthSamples int, sampleRate float64, rng *common.SeededRNG) []float64 {
	g := &NoiseGenerator{color: color, sampleRate: sampleRate, rng: rng}
	return g.Generate(lengthSamples)
}

// Generate produces the next n samples, continuing the generator's state.
func (g *NoiseGenerator) Generate(n int) []float64 {
	if n <= 0 {
		panic(fmt.Sprintf("audio: noise length must be > 0, got %d", n))
	}
	out := make([]float64, n)
	switch g.color {
	case NoiseWhite:
		for i := range out {
			out[i] = g.rng.Signed()
		}
	case NoisePink:
		for i := range out {
			out[i] = g.pink.next(g.rng.Signed())
		}
	case NoiseBrown:
		for i := range out {
			g.brown = (g.brown + 0.02*g.rng.Signed()) / 1.02
			out[i] = g.brown * brownGain
		}
	case NoiseSilence, NoiseNone:
	default:
		panic(fmt.Sprintf("audio: unknown noise color %d", int(g.color)))
	}
	return out
}

// Fill copies the loop into dst, wrapping at the end of the buffer.
func (g *NoiseGenerator) Fill(dst []float64) {
	if len(g.buf) == 0 {
		clear(dst)
		return
	}
	for n := 0; n < len(dst); {
		c := copy(dst[n:], g.buf[g.pos:])
		n += c
		g.pos += c
		if g.pos == len(g.buf) {
			g.pos = 0
		}
	}
}

// Release drops the loop buffer.
func (g *NoiseGenerator) Release() {
	g.buf = nil
	g.pos = 0
}

func (g *NoiseGenerator) Color() NoiseColor   { return g.color }
func (g *NoiseGenerator) SampleRate() float64 { return g.sampleRate }

// Len returns the loop length in samples, or 0 once released.
func (g *NoiseGenerator) Len() int { return len(g.buf) }
