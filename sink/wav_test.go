package sink

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/simukka/soundscape/audio"
	"github.com/simukka/soundscape/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderWAV_Decodes tests that a rendered session round-trips through the WAV decoder
func TestRenderWAV_Decodes(t *testing.T) {
	ctx, err := audio.NewContext(audio.DefaultConfig)
	require.NoError(t, err)
	clock := common.NewManualClock(time.Unix(0, 0))
	engine := audio.NewEngine(ctx, audio.WithClock(clock), audio.WithSeed(7))

	s, err := engine.CreateSoundscape("rain", audio.WithVolume(1))
	require.NoError(t, err)
	require.NoError(t, s.Start())

	path := filepath.Join(t.TempDir(), "rain.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, RenderWAV(f, ctx, ctx.SampleRate(), 500*time.Millisecond))
	require.NoError(t, f.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()

	streamer, format, err := wav.Decode(in)
	require.NoError(t, err)
	defer streamer.Close()

	assert.Equal(t, beep.SampleRate(44100), format.SampleRate)
	assert.Equal(t, 2, format.NumChannels)
	assert.Equal(t, 2, format.Precision)
	assert.Equal(t, 22050, streamer.Len())

	buf := make([][2]float64, 22050)
	n, _ := streamer.Stream(buf)
	require.Equal(t, 22050, n)
	var peak float64
	for _, frame := range buf {
		peak = max(peak, frame[0])
	}
	assert.Greater(t, peak, 0.0, "rain is audible")
}

// TestClocked_AdvancesWithFrames tests that the manual clock follows rendered time
func TestClocked_AdvancesWithFrames(t *testing.T) {
	start := time.Unix(0, 0)
	clock := common.NewManualClock(start)
	sr := beep.SampleRate(44100)
	c := NewClocked(beep.Silence(-1), clock, sr)

	fired := false
	clock.AfterFunc(500*time.Millisecond, func() { fired = true })

	buf := make([][2]float64, 441)
	n, ok := c.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 441, n)
	assert.Equal(t, 10*time.Millisecond, c.Elapsed())
	assert.Equal(t, start.Add(10*time.Millisecond), clock.Now())
	assert.False(t, fired)

	big := make([][2]float64, 44100)
	c.Stream(big)
	assert.Equal(t, 1010*time.Millisecond, c.Elapsed())
	assert.True(t, fired)
	assert.NoError(t, c.Err())
}

func TestClocked_DrainedSource(t *testing.T) {
	clock := common.NewManualClock(time.Unix(0, 0))
	sr := beep.SampleRate(44100)
	c := NewClocked(beep.Silence(100), clock, sr)

	n, ok := c.Stream(make([][2]float64, 441))
	assert.Equal(t, 100, n)
	assert.True(t, ok)
	assert.Equal(t, sr.D(100), c.Elapsed())
}
