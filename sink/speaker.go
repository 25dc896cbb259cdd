//go:build !js

package sink

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/simukka/soundscape/audio"
)

// PlaySpeaker hands src to beep's speaker, which runs its own render
// goroutine. buffer sets the device latency.
func PlaySpeaker(sampleRate beep.SampleRate, src beep.Streamer, buffer time.Duration) error {
	if err := speaker.Init(sampleRate, sampleRate.N(buffer)); err != nil {
		return fmt.Errorf("%w: %v", audio.ErrContextUnavailable, err)
	}
	speaker.Play(src)
	return nil
}

// CloseSpeaker stops playback and releases the device.
func CloseSpeaker() {
	speaker.Clear()
	speaker.Close()
}
