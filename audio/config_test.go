package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soundscape.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestLoadConfig_OverlaysDefaults tests that unset keys keep their shipped values
func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
sample_rate: 48000
master_volume: 3
seed: 1234
profiles:
  - id: hum
    name: Fridge Hum
    noise: brown
    filters:
      - kind: lowpass
        frequency: 120
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, DefaultConfig.Quantum, cfg.Quantum)
	assert.Equal(t, DefaultConfig.BinauralCarrier, cfg.BinauralCarrier)
	assert.Equal(t, 1.0, cfg.MasterVolume, "volume is clamped, not rejected")
	assert.Equal(t, uint32(1234), cfg.Seed)
	assert.Equal(t, 96000, cfg.NoiseLoopFrames())

	require.Len(t, cfg.Profiles, 1)
	assert.Equal(t, "hum", cfg.Profiles[0].ID)
	assert.Equal(t, NoiseBrown, cfg.Profiles[0].Noise)
}

func TestLoadConfig_InvalidProfile(t *testing.T) {
	path := writeConfig(t, `
profiles:
  - id: broken
    noise: white
    filters:
      - kind: lowpass
        frequency: -5
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProfile))
}

func TestLoadConfig_BadYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "profiles:\n  - id: x\n    noise: purple\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero quantum", func(c *Config) { c.Quantum = 0 }},
		{"zero loop", func(c *Config) { c.NoiseLoopSeconds = 0 }},
		{"carrier above nyquist", func(c *Config) { c.BinauralCarrier = 30000 }},
		{"carrier zero", func(c *Config) { c.BinauralCarrier = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig
	require.NoError(t, cfg.Validate())
}

// TestNewContext_BadConfig tests that host setup failures surface as ErrContextUnavailable
func TestNewContext_BadConfig(t *testing.T) {
	cfg := DefaultConfig
	cfg.SampleRate = -1
	ctx, err := NewContext(cfg)
	require.Error(t, err)
	assert.Nil(t, ctx)
	assert.True(t, errors.Is(err, ErrContextUnavailable))
}

func TestContext_Stream_SilentWhenEmpty(t *testing.T) {
	ctx, err := NewContext(DefaultConfig)
	require.NoError(t, err)

	buf := make([][2]float64, 300)
	for i := range buf {
		buf[i] = [2]float64{1, 1}
	}
	n, ok := ctx.Stream(buf)
	assert.Equal(t, 300, n)
	assert.True(t, ok, "the context never drains")
	for _, s := range buf {
		require.Equal(t, [2]float64{0, 0}, s)
	}
	assert.Equal(t, int64(300), ctx.Frames())
	assert.Equal(t, 0, ctx.Active())
}
