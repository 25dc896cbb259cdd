package audio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds engine tunables. DefaultConfig carries the shipped values;
// LoadConfig overlays a YAML file on top of them.
type Config struct {
	// Host context
	SampleRate int `yaml:"sample_rate"` // Frames per second rendered by the host
	Quantum    int `yaml:"quantum"`     // Render block size; parameters update once per block

	// Noise beds
	NoiseLoopSeconds float64 `yaml:"noise_loop_seconds"` // Length of each precomputed noise loop

	// Sessions
	MasterVolume float64 `yaml:"master_volume"` // Initial session volume (0-1)
	Seed         uint32  `yaml:"seed"`          // RNG seed; 0 picks one from the wall clock

	// Binaural
	BinauralCarrier float64 `yaml:"binaural_carrier"` // Left-ear tone in Hz
	ToneAmplitude   float64 `yaml:"tone_amplitude"`   // Peak level of each binaural tone

	// Extra or overriding sound profiles, keyed by ID
	Profiles []SoundProfile `yaml:"profiles"`
}

// LoadConfig reads a YAML config file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the structural settings. Volume is clamped rather than rejected.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be > 0, got %d", c.SampleRate)
	}
	if c.Quantum <= 0 {
		return fmt.Errorf("quantum must be > 0, got %d", c.Quantum)
	}
	if c.NoiseLoopSeconds <= 0 {
		return fmt.Errorf("noise_loop_seconds must be > 0, got %g", c.NoiseLoopSeconds)
	}
	if c.BinauralCarrier <= 0 || c.BinauralCarrier >= float64(c.SampleRate)/2 {
		return fmt.Errorf("binaural_carrier %g outside (0, nyquist)", c.BinauralCarrier)
	}
	c.MasterVolume = clampVolume(c.MasterVolume)
	for i := range c.Profiles {
		if err := ValidateProfile(c.Profiles[i]); err != nil {
			return err
		}
	}
	return nil
}

// NoiseLoopFrames returns the length of a noise loop buffer in frames.
func (c Config) NoiseLoopFrames() int {
	return int(c.NoiseLoopSeconds * float64(c.SampleRate))
}
