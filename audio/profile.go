package audio

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultQ is used when a filter entry leaves Q unset (Web Audio's default).
const DefaultQ = 1.0

// FilterSpec is the static description of one FilterStage.
type FilterSpec struct {
	Kind      FilterKind `yaml:"kind"`
	Frequency float64    `yaml:"frequency"` // Center/cutoff in Hz
	Q         float64    `yaml:"q"`         // 0 means DefaultQ
}

// ModulationTarget names the parameter a ModulationBinding drives.
type ModulationTarget int

const (
	TargetFrequency ModulationTarget = iota // Filter center frequency (Hz)
	TargetGain                              // Linear gain of the stage's branch
)

func (t ModulationTarget) String() string {
	if t == TargetGain {
		return "gain"
	}
	return "frequency"
}

func (t *ModulationTarget) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(value.Value) {
	case "", "frequency":
		*t = TargetFrequency
	case "gain":
		*t = TargetGain
	default:
		return fmt.Errorf("unknown modulation target %q", value.Value)
	}
	return nil
}

func (t ModulationTarget) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// ModulationBinding attaches an LFO to a filter stage (or its branch gain).
type ModulationBinding struct {
	Stage  int              `yaml:"stage"`  // Index into SoundProfile.Filters
	Rate   float64          `yaml:"rate"`   // Hz
	Depth  float64          `yaml:"depth"`  // Target units
	Scale  float64          `yaml:"scale"`  // Depth multiplier, 0 means 1
	Target ModulationTarget `yaml:"target"` // frequency or gain
}

// EffectiveDepth returns Depth scaled by Scale.
func (b ModulationBinding) EffectiveDepth() float64 {
	if b.Scale == 0 {
		return b.Depth
	}
	return b.Depth * b.Scale
}

// RecenterSpec periodically moves a stage's static frequency to a random
// point in [MinHz, MaxHz].
type RecenterSpec struct {
	Stage       int     `yaml:"stage"`
	IntervalMs  float64 `yaml:"interval_ms"`
	Probability float64 `yaml:"probability"`
	MinHz       float64 `yaml:"min_hz"`
	MaxHz       float64 `yaml:"max_hz"`
}

// TransientSpec drives the TransientEventScheduler.
type TransientSpec struct {
	BurstFilterCutoff     float64 `yaml:"burst_filter_cutoff"` // Hz
	AttackTimeMs          float64 `yaml:"attack_ms"`
	DecayTimeMs           float64 `yaml:"decay_ms"`
	MinIntervalMs         float64 `yaml:"min_interval_ms"`
	MaxIntervalMs         float64 `yaml:"max_interval_ms"`
	RecurrenceProbability float64 `yaml:"probability"`
}

// SoundProfile declares how one soundscape is wired. Adding an ambience is
// a table edit, never new wiring code.
type SoundProfile struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Noise   NoiseColor   `yaml:"noise"`
	Filters []FilterSpec `yaml:"filters"`

	// Branches lists parallel chains of filter indices fed by the noise
	// source. Nil means one branch per filter.
	Branches [][]int `yaml:"branches"`

	Modulation []ModulationBinding `yaml:"modulation"`
	Recenter   *RecenterSpec       `yaml:"recenter"`
	Transient  *TransientSpec      `yaml:"transient"`
}

// ProfileInfo is the listing entry exposed to UI collaborators.
type ProfileInfo struct {
	ID   string
	Name string
}

// BranchChains returns the filter chains, applying the one-branch-per-filter
// default. A noise source without filters yields a single empty chain.
func (p SoundProfile) BranchChains() [][]int {
	if p.Branches != nil {
		return p.Branches
	}
	if len(p.Filters) == 0 {
		if p.Noise == NoiseNone {
			return nil
		}
		return [][]int{{}}
	}
	chains := make([][]int, len(p.Filters))
	for i := range p.Filters {
		chains[i] = []int{i}
	}
	return chains
}

// ValidateProfile rejects malformed entries with ErrInvalidProfile.
func ValidateProfile(p SoundProfile) error {
	if p.ID == "" {
		return profileError(p.ID, "missing id")
	}
	if p.Noise < NoiseNone || p.Noise > NoiseSilence {
		return profileError(p.ID, "unknown noise color %d", int(p.Noise))
	}
	if p.Noise == NoiseNone && (len(p.Filters) > 0 || p.Branches != nil) {
		return profileError(p.ID, "filters without a noise source")
	}
	for i, f := range p.Filters {
		if f.Kind < Lowpass || f.Kind > Bandpass {
			return profileError(p.ID, "filter %d: unknown kind %d", i, int(f.Kind))
		}
		if !(f.Frequency > 0) {
			return profileError(p.ID, "filter %d: frequency must be > 0", i)
		}
		if !(f.Q >= 0) {
			return profileError(p.ID, "filter %d: Q must not be negative", i)
		}
	}

	owner := make(map[int]int)
	for b, chain := range p.BranchChains() {
		for _, idx := range chain {
			if idx < 0 || idx >= len(p.Filters) {
				return profileError(p.ID, "branch %d: filter index %d out of range", b, idx)
			}
			if prev, ok := owner[idx]; ok {
				return profileError(p.ID, "filter %d used by branches %d and %d", idx, prev, b)
			}
			owner[idx] = b
		}
	}

	freqMod := make(map[int]bool)
	gainMod := make(map[int]bool)
	for i, m := range p.Modulation {
		if m.Stage < 0 || m.Stage >= len(p.Filters) {
			return profileError(p.ID, "modulation %d: stage %d out of range", i, m.Stage)
		}
		if !(m.Rate > 0) {
			return profileError(p.ID, "modulation %d: rate must be > 0", i)
		}
		if math.IsNaN(m.Depth) || math.IsInf(m.Depth, 0) {
			return profileError(p.ID, "modulation %d: depth must be finite", i)
		}
		if _, ok := owner[m.Stage]; !ok {
			return profileError(p.ID, "modulation %d: stage %d is not routed", i, m.Stage)
		}
		switch m.Target {
		case TargetFrequency:
			if freqMod[m.Stage] {
				return profileError(p.ID, "stage %d has two frequency modulators", m.Stage)
			}
			freqMod[m.Stage] = true
		case TargetGain:
			b := owner[m.Stage]
			if gainMod[b] {
				return profileError(p.ID, "branch %d has two gain modulators", b)
			}
			gainMod[b] = true
		default:
			return profileError(p.ID, "modulation %d: unknown target %d", i, int(m.Target))
		}
	}

	if r := p.Recenter; r != nil {
		if r.Stage < 0 || r.Stage >= len(p.Filters) {
			return profileError(p.ID, "recenter stage %d out of range", r.Stage)
		}
		if !(r.IntervalMs > 0) || !(r.Probability >= 0 && r.Probability <= 1) {
			return profileError(p.ID, "recenter interval/probability out of range")
		}
		if !(r.MinHz > 0) || !(r.MaxHz >= r.MinHz) {
			return profileError(p.ID, "recenter range [%g, %g] invalid", r.MinHz, r.MaxHz)
		}
	}

	if t := p.Transient; t != nil {
		if !(t.BurstFilterCutoff > 0) || !(t.AttackTimeMs >= 0) || !(t.DecayTimeMs > 0) {
			return profileError(p.ID, "transient envelope/cutoff invalid")
		}
		if !(t.MinIntervalMs > 0) || !(t.MaxIntervalMs >= t.MinIntervalMs) {
			return profileError(p.ID, "transient interval [%g, %g] invalid", t.MinIntervalMs, t.MaxIntervalMs)
		}
		if !(t.RecurrenceProbability >= 0 && t.RecurrenceProbability <= 1) {
			return profileError(p.ID, "transient probability %g outside [0,1]", t.RecurrenceProbability)
		}
	}
	return nil
}

// LookupProfile returns the built-in profile for id.
func LookupProfile(id string) (SoundProfile, error) {
	p, ok := SoundProfiles[id]
	if !ok {
		return SoundProfile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	return p, nil
}

// Profiles lists the built-in profiles sorted by ID.
func Profiles() []ProfileInfo {
	return profileInfo(SoundProfiles)
}

func profileInfo(table map[string]SoundProfile) []ProfileInfo {
	infos := make([]ProfileInfo, 0, len(table))
	for id, p := range table {
		infos = append(infos, ProfileInfo{ID: id, Name: p.Name})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}
