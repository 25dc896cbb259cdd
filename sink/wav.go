// Package sink connects the engine's render entry to real outputs.
package sink

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/simukka/soundscape/common"
)

// RenderWAV encodes d of src as 16-bit stereo WAV. The WAV encoder's loop is
// the render thread.
func RenderWAV(w io.WriteSeeker, src beep.Streamer, sampleRate beep.SampleRate, d time.Duration) error {
	format := beep.Format{
		SampleRate:  sampleRate,
		NumChannels: 2,
		Precision:   2, // 16-bit audio
	}
	if err := wav.Encode(w, beep.Take(sampleRate.N(d), src), format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// Clocked advances a manual clock in step with the frames its source
// renders, so timers scheduled by sessions fire in rendered time when
// audio is produced faster than real time.
type Clocked struct {
	src        beep.Streamer
	clock      *common.ManualClock
	sampleRate beep.SampleRate
	frames     int
	advanced   time.Duration
}

// NewClocked wraps src.
func NewClocked(src beep.Streamer, clock *common.ManualClock, sampleRate beep.SampleRate) *Clocked {
	return &Clocked{src: src, clock: clock, sampleRate: sampleRate}
}

// Stream renders from src, then moves the clock forward by the rendered span.
func (c *Clocked) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = c.src.Stream(samples)
	c.frames += n
	elapsed := c.sampleRate.D(c.frames)
	c.clock.Advance(elapsed - c.advanced)
	c.advanced = elapsed
	return n, ok
}

func (c *Clocked) Err() error { return c.src.Err() }

// Elapsed returns the rendered duration.
func (c *Clocked) Elapsed() time.Duration { return c.advanced }
