package audio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/simukka/soundscape/common"
	"github.com/sirupsen/logrus"
)

// Engine is the composition root for sessions. It owns the profile table and
// hands every session the shared Context, a Clock and a derived RNG.
type Engine struct {
	ctx      *Context
	composer *Composer
	clock    common.Clock
	seed     uint32
	log      logrus.FieldLogger
	profiles map[string]SoundProfile
	nextID   atomic.Uint64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used for scheduled events.
func WithClock(c common.Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithSeed fixes the base seed for every session RNG.
func WithSeed(seed uint32) EngineOption {
	return func(e *Engine) { e.seed = seed }
}

// WithLogger sets the engine logger.
func WithLogger(l logrus.FieldLogger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithProfiles adds or overrides sound profiles.
func WithProfiles(profiles ...SoundProfile) EngineOption {
	return func(e *Engine) {
		for _, p := range profiles {
			e.profiles[p.ID] = p
		}
	}
}

// NewEngine creates an engine on ctx. Profiles from the context config are
// layered over the built-in table; options are applied last.
func NewEngine(ctx *Context, opts ...EngineOption) *Engine {
	cfg := ctx.Config()
	e := &Engine{
		ctx:      ctx,
		composer: NewComposer(ctx),
		clock:    common.RealClock(),
		seed:     cfg.Seed,
		log:      logrus.StandardLogger(),
		profiles: make(map[string]SoundProfile, len(SoundProfiles)),
	}
	for id, p := range SoundProfiles {
		e.profiles[id] = p
	}
	for _, p := range cfg.Profiles {
		e.profiles[p.ID] = p
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.seed == 0 {
		e.seed = uint32(time.Now().UnixNano())
	}
	return e
}

// Context returns the host context.
func (e *Engine) Context() *Context { return e.ctx }

// Seed returns the base seed.
func (e *Engine) Seed() uint32 { return e.seed }

// Profiles lists the available profiles sorted by ID.
func (e *Engine) Profiles() []ProfileInfo { return profileInfo(e.profiles) }

// Profile returns the profile registered under id.
func (e *Engine) Profile(id string) (SoundProfile, error) {
	p, ok := e.profiles[id]
	if !ok {
		return SoundProfile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	return p, nil
}

// SessionOption configures a new session.
type SessionOption func(*Session)

// WithVolume sets the initial master volume, clamped to [0, 1].
func WithVolume(v float64) SessionOption {
	return func(s *Session) { s.volume = clampVolume(v) }
}

func (e *Engine) newSession(p SoundProfile, opts []SessionOption) *Session {
	id := e.nextID.Add(1)
	s := &Session{
		id:      id,
		profile: p,
		volume:  e.ctx.Config().MasterVolume,
		ctx:     e.ctx,
		clock:   e.clock,
		rng:     common.NewSeededRNG(common.DeriveSeed(e.seed, int(id))),
		log:     e.log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSoundscape returns an idle session for profileID. Unknown or
// malformed profiles fail here; there is no fallback profile.
func (e *Engine) CreateSoundscape(profileID string, opts ...SessionOption) (*Session, error) {
	p, err := e.Profile(profileID)
	if err != nil {
		return nil, err
	}
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	s := e.newSession(p, opts)
	s.build = func() (*Graph, error) {
		return e.composer.Build(s.profile, s.volume, s.rng)
	}
	e.log.WithFields(logrus.Fields{
		"session": s.id,
		"profile": p.ID,
	}).Debug("Soundscape created")
	return s, nil
}

// BinauralProfileID is the ProfileID reported by binaural sessions.
const BinauralProfileID = "binaural"

// CreateBinauralSession returns an idle binaural session on band with the
// target clamped into the band.
func (e *Engine) CreateBinauralSession(band BinauralBeatType, targetHz float64, opts ...SessionOption) (*BinauralSession, error) {
	ctrl := NewBinauralBeatController(e.ctx.Config().BinauralCarrier)
	if err := ctrl.SetBand(band); err != nil {
		return nil, err
	}
	ctrl.SetTarget(targetHz)

	b := &BinauralSession{
		Session: e.newSession(SoundProfile{ID: BinauralProfileID, Name: "Binaural Beats", Noise: NoiseNone}, opts),
		ctrl:    ctrl,
	}
	b.build = func() (*Graph, error) {
		g, left, right := e.composer.BuildBinaural(b.ctrl, b.volume)
		b.left, b.right = left, right
		return g, nil
	}
	e.log.WithFields(logrus.Fields{
		"session": b.id,
		"band":    band,
		"beat":    ctrl.Applied(),
	}).Debug("Binaural session created")
	return b, nil
}
