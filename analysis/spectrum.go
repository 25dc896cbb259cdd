// Package analysis inspects rendered audio in the frequency domain.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
	"github.com/maddyblue/go-dsp/window"
)

// Spectrum is the one-sided magnitude spectrum of a mono signal.
type Spectrum struct {
	SampleRate float64
	Bins       []float64 // Magnitude per bin, DC first
	size       int
}

// Analyze windows samples with a Hann window and returns their spectrum.
func Analyze(samples []float64, sampleRate float64) Spectrum {
	buf := make([]float64, len(samples))
	copy(buf, samples)
	window.Apply(buf, window.Hann)

	fftResult := fft.FFTReal(buf)

	// Get the magnitude spectrum
	bins := make([]float64, len(fftResult)/2+1)
	for i, c := range fftResult[:len(bins)] {
		bins[i] = cmplx.Abs(c) / float64(len(buf))
	}
	return Spectrum{SampleRate: sampleRate, Bins: bins, size: len(buf)}
}

// BinHz returns the width of one bin.
func (s Spectrum) BinHz() float64 {
	if s.size == 0 {
		return 0
	}
	return s.SampleRate / float64(s.size)
}

// Frequency returns the center frequency of bin i.
func (s Spectrum) Frequency(i int) float64 { return float64(i) * s.BinHz() }

// BandEnergy sums squared magnitudes of the bins in [lo, hi).
func (s Spectrum) BandEnergy(lo, hi float64) float64 {
	var e float64
	for i, m := range s.Bins {
		f := s.Frequency(i)
		if f >= lo && f < hi {
			e += m * m
		}
	}
	return e
}

// Centroid returns the magnitude-weighted mean frequency.
func (s Spectrum) Centroid() float64 {
	var num, den float64
	for i, m := range s.Bins {
		num += s.Frequency(i) * m
		den += m
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Peak returns the frequency of the strongest non-DC bin.
func (s Spectrum) Peak() float64 {
	best, idx := 0.0, 0
	for i := 1; i < len(s.Bins); i++ {
		if s.Bins[i] > best {
			best, idx = s.Bins[i], i
		}
	}
	return s.Frequency(idx)
}

// RMS returns the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Mono averages stereo frames into one channel.
func Mono(frames [][2]float64) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = (f[0] + f[1]) / 2
	}
	return out
}

// Channel extracts one channel (0 left, 1 right).
func Channel(frames [][2]float64, ch int) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f[ch]
	}
	return out
}
