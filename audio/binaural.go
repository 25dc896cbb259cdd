package audio

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// BinauralBeatType names a brain-wave band.
type BinauralBeatType int

const (
	Delta BinauralBeatType = iota
	Theta
	Alpha
	Beta
	Gamma
)

// BandRange is an inclusive frequency range in Hz.
type BandRange struct {
	Min float64
	Max float64
}

// Contains reports whether f lies inside the range, edges included.
func (r BandRange) Contains(f float64) bool { return f >= r.Min && f <= r.Max }

// Clamp bounds f to the range.
func (r BandRange) Clamp(f float64) float64 { return math.Min(math.Max(f, r.Min), r.Max) }

type bandInfo struct {
	name  string
	rng   BandRange
	deflt float64
}

// Declared order matters: BandFor returns the first band containing f.
var bands = [...]bandInfo{
	Delta: {"delta", BandRange{0.5, 4}, 2},
	Theta: {"theta", BandRange{4, 8}, 6},
	Alpha: {"alpha", BandRange{8, 14}, 10},
	Beta:  {"beta", BandRange{14, 30}, 20},
	Gamma: {"gamma", BandRange{30, 40}, 35},
}

// Bands lists every band in declared order.
func Bands() []BinauralBeatType {
	return []BinauralBeatType{Delta, Theta, Alpha, Beta, Gamma}
}

func (b BinauralBeatType) valid() bool { return b >= Delta && b <= Gamma }

func (b BinauralBeatType) String() string {
	if !b.valid() {
		return fmt.Sprintf("BinauralBeatType(%d)", int(b))
	}
	return bands[b].name
}

// Range returns the band's inclusive frequency range.
func (b BinauralBeatType) Range() BandRange { return bands[b].rng }

// Default returns the band's default beat frequency.
func (b BinauralBeatType) Default() float64 { return bands[b].deflt }

// ParseBinauralBeatType parses a band name.
func ParseBinauralBeatType(s string) (BinauralBeatType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, info := range bands {
		if info.name == s {
			return BinauralBeatType(i), nil
		}
	}
	return Alpha, fmt.Errorf("%w: %q", ErrUnknownBand, s)
}

func (b *BinauralBeatType) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseBinauralBeatType(value.Value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b BinauralBeatType) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// BandFor resolves the band containing f. On a shared edge such as 4 Hz the
// earlier band in declared order wins.
func BandFor(f float64) (BinauralBeatType, bool) {
	for i, info := range bands {
		if info.rng.Contains(f) {
			return BinauralBeatType(i), true
		}
	}
	return Alpha, false
}

// BinauralBeatController holds the active band and the applied beat
// frequency, and derives the two carrier tones from them.
type BinauralBeatController struct {
	carrier float64
	band    BinauralBeatType
	applied float64
}

// NewBinauralBeatController starts on the alpha band default.
func NewBinauralBeatController(carrier float64) *BinauralBeatController {
	c := &BinauralBeatController{carrier: carrier}
	c.band = Alpha
	c.applied = Alpha.Default()
	return c
}

// SetBand selects band and resets the target to its default.
func (c *BinauralBeatController) SetBand(band BinauralBeatType) error {
	if !band.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownBand, int(band))
	}
	c.band = band
	c.applied = band.Default()
	return nil
}

// SetTarget clamps f into the active band and applies it. NaN keeps the
// current value.
func (c *BinauralBeatController) SetTarget(f float64) float64 {
	if !math.IsNaN(f) {
		c.applied = c.band.Range().Clamp(f)
	}
	return c.applied
}

func (c *BinauralBeatController) Applied() float64       { return c.applied }
func (c *BinauralBeatController) Band() BinauralBeatType { return c.band }
func (c *BinauralBeatController) Carrier() float64       { return c.carrier }

// Carriers returns the left and right tone frequencies. Their difference is
// the applied beat frequency.
func (c *BinauralBeatController) Carriers() (left, right float64) {
	return c.carrier, c.carrier + c.applied
}

// ToneGenerator is a sine source whose frequency glides between targets.
type ToneGenerator struct {
	freq       *Param
	amplitude  float64
	sampleRate float64
	phase      float64
	released   bool
}

// NewToneGenerator creates a sine tone at hz.
func NewToneGenerator(hz, amplitude, sampleRate float64) *ToneGenerator {
	return &ToneGenerator{
		freq:       NewParam(hz),
		amplitude:  amplitude,
		sampleRate: sampleRate,
	}
}

// SetFrequency glides to hz over frames frames.
func (t *ToneGenerator) SetFrequency(hz float64, frames int) { t.freq.RampTo(hz, frames) }

// Frequency returns the target frequency.
func (t *ToneGenerator) Frequency() float64 { return t.freq.Target() }

func (t *ToneGenerator) Fill(dst []float64) {
	if t.released {
		clear(dst)
		return
	}
	for i := range dst {
		dst[i] = t.amplitude * math.Sin(2*math.Pi*t.phase)
		t.phase += t.freq.Next() / t.sampleRate
		t.phase -= math.Floor(t.phase)
	}
}

func (t *ToneGenerator) Release() { t.released = true }

// Released reports whether the tone has been torn down.
func (t *ToneGenerator) Released() bool { return t.released }
