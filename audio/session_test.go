package audio

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Lifecycle Tests ---

func TestSession_Lifecycle(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s, err := e.CreateSoundscape("rain")
	require.NoError(t, err)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, "rain", s.ProfileID())
	assert.Nil(t, s.Graph(), "nothing is built before Start")
	assert.Equal(t, 0, e.Context().Active())

	require.NoError(t, s.Start())
	assert.Equal(t, Playing, s.State())
	assert.Equal(t, 1, e.Context().Active())

	require.NoError(t, s.Stop())
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, 0, e.Context().Active())
}

// TestSession_LifecycleErrors tests every operation issued in the wrong state
func TestSession_LifecycleErrors(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s, err := e.CreateSoundscape("wind")
	require.NoError(t, err)

	assert.True(t, errors.Is(s.Stop(), ErrNotPlaying))
	assert.True(t, errors.Is(s.SetVolume(0.3), ErrNotPlaying))

	require.NoError(t, s.Start())
	err = s.Start()
	assert.True(t, errors.Is(err, ErrAlreadyStarted))

	var lerr *LifecycleError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, s.ID(), lerr.Session)
	assert.Equal(t, "start", lerr.Op)
	assert.Equal(t, Playing, lerr.State)
	assert.Contains(t, err.Error(), "playing")

	require.NoError(t, s.Stop())
	assert.True(t, errors.Is(s.Start(), ErrStopped))
	assert.True(t, errors.Is(s.Stop(), ErrStopped))
	assert.True(t, errors.Is(s.SetVolume(0.3), ErrStopped))
	assert.Equal(t, Stopped, s.State())
}

func TestEngine_CreateSoundscape_Unknown(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s, err := e.CreateSoundscape("lava")
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, ErrUnknownProfile))
}

func TestEngine_CreateSoundscape_Invalid(t *testing.T) {
	bad := SoundProfile{ID: "bad", Noise: NoiseWhite, Filters: []FilterSpec{{Kind: Lowpass, Frequency: 0}}}
	e, _, _ := newTestEngine(t, WithProfiles(bad))
	_, err := e.CreateSoundscape("bad")
	assert.True(t, errors.Is(err, ErrInvalidProfile))
}

// TestEngine_Profiles_IncludesConfigured tests that extra profiles extend the table
func TestEngine_Profiles_IncludesConfigured(t *testing.T) {
	hum := SoundProfile{ID: "hum", Name: "Hum", Noise: NoiseBrown, Filters: []FilterSpec{{Kind: Lowpass, Frequency: 120}}}
	e, _, _ := newTestEngine(t, WithProfiles(hum))

	infos := e.Profiles()
	require.Len(t, infos, 9)
	assert.Equal(t, ProfileInfo{ID: "hum", Name: "Hum"}, infos[3])

	s, err := e.CreateSoundscape("hum")
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Equal(t, NoiseBrown, s.Graph().Sources()[0].(*NoiseGenerator).Color())
}

// --- Volume Tests ---

func TestSession_Volume_Clamped(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s, err := e.CreateSoundscape("ocean", WithVolume(7))
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Volume())

	require.NoError(t, s.Start())
	assert.Equal(t, 1.0, s.Graph().Master().Value())

	tests := []struct {
		in, want float64
	}{
		{0.3, 0.3},
		{-2, 0},
		{1.5, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		require.NoError(t, s.SetVolume(tt.in))
		assert.Equal(t, tt.want, s.Volume())
		assert.Equal(t, tt.want, s.Graph().Master().Target())
	}
}

func TestSession_DefaultVolume(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s, err := e.CreateSoundscape("ocean")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig.MasterVolume, s.Volume())
}

// TestSession_SetVolume_RampsWithinQuantum tests that the master gain settles after one render quantum
func TestSession_SetVolume_RampsWithinQuantum(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s, err := e.CreateSoundscape("rain", WithVolume(1))
	require.NoError(t, err)
	require.NoError(t, s.Start())

	require.NoError(t, s.SetVolume(0.2))
	master := s.Graph().Master()
	assert.Equal(t, 1.0, master.Value(), "nothing moves until rendered")

	e.Context().Stream(make([][2]float64, DefaultConfig.Quantum))
	assert.Equal(t, 0.2, master.Value())
}

// --- Teardown Tests ---

// TestSession_Stop_ReleasesNodes tests that a stopped session frees its buffers
func TestSession_Stop_ReleasesNodes(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s, err := e.CreateSoundscape("forest")
	require.NoError(t, err)
	require.NoError(t, s.Start())

	g := s.Graph()
	noise := g.Sources()[0].(*NoiseGenerator)
	require.NotZero(t, noise.Len())
	e.Context().Stream(make([][2]float64, 1024))

	require.NoError(t, s.Stop())
	assert.True(t, g.Closed())
	assert.Zero(t, noise.Len())
	for _, f := range g.Filters() {
		assert.Nil(t, f.Modulation())
	}

	out := make([][2]float64, 1024)
	e.Context().Stream(out)
	for _, v := range out {
		require.Equal(t, [2]float64{0, 0}, v, "a stopped graph is silent")
	}
}

// TestSession_Independent tests that two sessions of one profile share no nodes
func TestSession_Independent(t *testing.T) {
	e, _, _ := newTestEngine(t)
	a, err := e.CreateSoundscape("ocean")
	require.NoError(t, err)
	b, err := e.CreateSoundscape("ocean")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	require.NoError(t, a.Start())
	require.NoError(t, b.Start())
	assert.Equal(t, 2, e.Context().Active())

	ga, gb := a.Graph(), b.Graph()
	assert.NotSame(t, ga.Sources()[0], gb.Sources()[0])
	assert.NotSame(t, ga.Filters()[0], gb.Filters()[0])
	assert.NotSame(t, ga.Master(), gb.Master())

	require.NoError(t, a.Stop())
	assert.False(t, gb.Closed())
	assert.NotZero(t, gb.Sources()[0].(*NoiseGenerator).Len())
	assert.Equal(t, 1, e.Context().Active())
}

func TestSession_SeedReproducible(t *testing.T) {
	render := func() [][2]float64 {
		e, _, _ := newTestEngine(t)
		s, err := e.CreateSoundscape("stream")
		require.NoError(t, err)
		require.NoError(t, s.Start())
		out := make([][2]float64, 2048)
		e.Context().Stream(out)
		return out
	}
	assert.Equal(t, render(), render())
}

// --- Scheduled Event Tests ---

func TestBirdsSession_Recenter(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	s, err := e.CreateSoundscape("birds")
	require.NoError(t, err)
	require.NoError(t, s.Start())

	stage := s.Graph().Filters()[0]
	require.Equal(t, 3000.0, stage.StaticFrequency())

	moved := false
	for i := 0; i < 60; i++ {
		clock.Advance(time.Second)
		f := stage.StaticFrequency()
		if f != 3000 {
			moved = true
		}
		require.GreaterOrEqual(t, f, 2000.0)
		require.LessOrEqual(t, f, 4000.0)
	}
	assert.True(t, moved, "a minute of 30% chances should re-center at least once")

	require.NoError(t, s.Stop())
	assert.Equal(t, 0, clock.Pending())
	last := stage.StaticFrequency()
	clock.Advance(time.Minute)
	assert.Equal(t, last, stage.StaticFrequency())
}

// --- Logging Tests ---

func TestSession_Logging(t *testing.T) {
	e, _, hook := newTestEngine(t)
	s, err := e.CreateSoundscape("ocean", WithVolume(0.4))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	var infos []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.InfoLevel {
			infos = append(infos, entry)
		}
	}
	require.Len(t, infos, 2)
	assert.Equal(t, "Session started", infos[0].Message)
	assert.Equal(t, "ocean", infos[0].Data["profile"])
	assert.Equal(t, 0.4, infos[0].Data["volume"])
	assert.Equal(t, s.ID(), infos[0].Data["session"])
	assert.Equal(t, "Session stopped", infos[1].Message)
}
