package audio

import (
	"math"

	"github.com/simukka/soundscape/common"
)

// Burst envelope levels.
const (
	burstPeak  = 0.8
	burstFloor = 0.001
)

// Burst is a one-shot transient: a fresh white-noise buffer through its own
// lowpass, shaped by a linear attack to burstPeak and an exponential decay
// toward burstFloor. It releases its noise source once the envelope ends.
type Burst struct {
	noise  *NoiseGenerator
	filter *FilterStage
	attack int
	decay  int
	pos    int
	buf    []float64
}

// NewBurst synthesizes the noise for one transient described by spec.
func NewBurst(spec TransientSpec, sampleRate float64, rng *common.SeededRNG) *Burst {
	attack := int(spec.AttackTimeMs * sampleRate / 1000)
	decay := max(int(spec.DecayTimeMs*sampleRate/1000), 1)
	return &Burst{
		noise:  NewNoiseGenerator(NoiseWhite, attack+decay, sampleRate, rng),
		filter: NewFilterStage(Lowpass, spec.BurstFilterCutoff, DefaultQ, sampleRate),
		attack: attack,
		decay:  decay,
	}
}

// Len returns the burst length in frames.
func (b *Burst) Len() int { return b.attack + b.decay }

// Done reports whether the envelope has completed.
func (b *Burst) Done() bool { return b.noise == nil }

// Envelope returns the gain at frame i of the burst.
func (b *Burst) Envelope(i int) float64 {
	if i < b.attack {
		return burstPeak * float64(i) / float64(b.attack)
	}
	if i >= b.Len() {
		return 0
	}
	t := float64(i-b.attack) / float64(b.decay)
	return burstPeak * math.Pow(burstFloor/burstPeak, t)
}

// Stream implements beep.Streamer.
func (b *Burst) Stream(samples [][2]float64) (n int, ok bool) {
	if b.noise == nil {
		return 0, false
	}
	n = min(len(samples), b.Len()-b.pos)
	if cap(b.buf) < n {
		b.buf = make([]float64, n)
	}
	buf := b.buf[:n]
	b.noise.Fill(buf)
	b.filter.Process(buf)
	for i, x := range buf {
		v := x * b.Envelope(b.pos+i)
		samples[i][0] = v
		samples[i][1] = v
	}
	b.pos += n
	if b.pos >= b.Len() {
		b.noise.Release()
		b.filter.Release()
		b.noise = nil
	}
	return n, n > 0
}

func (b *Burst) Err() error { return nil }
