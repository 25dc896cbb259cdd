package audio

// DefaultConfig carries the shipped engine settings.
var DefaultConfig = Config{
	// Host context
	SampleRate: 44100,
	Quantum:    128,

	// Noise beds
	NoiseLoopSeconds: 2,

	// Sessions
	MasterVolume: 0.5,
	Seed:         0,

	// Binaural
	BinauralCarrier: 200,
	ToneAmplitude:   0.3,
}

// Cricket chirp depth is scaled down after the fact; the value is an
// empirical loudness match.
const cricketDepthScale = 0.3

// SoundProfiles is the declarative table consumed by the Composer.
var SoundProfiles = map[string]SoundProfile{
	"ocean": {
		ID:    "ocean",
		Name:  "Ocean Waves",
		Noise: NoiseWhite,
		Filters: []FilterSpec{
			{Kind: Lowpass, Frequency: 850, Q: 0.5},
		},
		Modulation: []ModulationBinding{
			{Stage: 0, Rate: 0.1, Depth: 400},
		},
	},
	"rain": {
		ID:    "rain",
		Name:  "Rainfall",
		Noise: NoiseWhite,
		Filters: []FilterSpec{
			{Kind: Bandpass, Frequency: 2500, Q: 0.2},
		},
	},
	"wind": {
		ID:    "wind",
		Name:  "Wind",
		Noise: NoiseWhite,
		Filters: []FilterSpec{
			{Kind: Bandpass, Frequency: 400, Q: 1},
		},
		Modulation: []ModulationBinding{
			{Stage: 0, Rate: 0.2, Depth: 200},
		},
	},
	"forest": {
		ID:    "forest",
		Name:  "Forest",
		Noise: NoiseWhite,
		Filters: []FilterSpec{
			{Kind: Highpass, Frequency: 2000, Q: 0.5}, // Leaf rustle
			{Kind: Lowpass, Frequency: 400, Q: 0.5},   // Ambience
		},
		Modulation: []ModulationBinding{
			{Stage: 0, Rate: 0.3, Depth: 100},
		},
	},
	"stream": {
		ID:    "stream",
		Name:  "Stream",
		Noise: NoiseWhite,
		Filters: []FilterSpec{
			{Kind: Bandpass, Frequency: 600, Q: 1},
			{Kind: Highpass, Frequency: 2000, Q: 0.5},
		},
		Modulation: []ModulationBinding{
			{Stage: 0, Rate: 0.5, Depth: 200},
		},
	},
	"crickets": {
		ID:    "crickets",
		Name:  "Crickets",
		Noise: NoiseWhite,
		Filters: []FilterSpec{
			{Kind: Bandpass, Frequency: 4500, Q: 10},
		},
		Modulation: []ModulationBinding{
			{Stage: 0, Rate: 20, Depth: 0.7, Scale: cricketDepthScale, Target: TargetGain},
		},
	},
	"birds": {
		ID:    "birds",
		Name:  "Birdsong",
		Noise: NoiseWhite,
		Filters: []FilterSpec{
			{Kind: Bandpass, Frequency: 3000, Q: 5},
		},
		Modulation: []ModulationBinding{
			{Stage: 0, Rate: 10, Depth: 1000},
		},
		Recenter: &RecenterSpec{
			Stage:       0,
			IntervalMs:  1000,
			Probability: 0.3,
			MinHz:       2000,
			MaxHz:       4000,
		},
	},
	"thunder": {
		ID:    "thunder",
		Name:  "Thunderstorm",
		Noise: NoiseWhite,
		Filters: []FilterSpec{
			{Kind: Lowpass, Frequency: 100},
		},
		Transient: &TransientSpec{
			BurstFilterCutoff:     200,
			AttackTimeMs:          100,
			DecayTimeMs:           3000,
			MinIntervalMs:         5000,
			MaxIntervalMs:         10000,
			RecurrenceProbability: 0.3,
		},
	},
}

// clampVolume bounds a linear gain to [0, 1].
func clampVolume(v float64) float64 {
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
