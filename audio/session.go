package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/simukka/soundscape/common"
	"github.com/sirupsen/logrus"
)

// SessionState is the lifecycle position of a Session.
type SessionState int

const (
	Idle SessionState = iota
	Playing
	Stopped
)

func (s SessionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Session owns one playing graph and its timers.
// Idle -> Playing -> Stopped; Stopped is terminal.
type Session struct {
	mu      sync.Mutex
	id      uint64
	profile SoundProfile
	state   SessionState
	volume  float64

	ctx   *Context
	clock common.Clock
	rng   *common.SeededRNG
	log   logrus.FieldLogger

	build func() (*Graph, error)
	graph *Graph

	transient *TransientScheduler
	recenter  *Task
}

func (s *Session) lifecycleError(op string, err error) error {
	return &LifecycleError{Session: s.id, Op: op, State: s.state, Err: err}
}

// Start builds the graph, attaches it to the context and starts any
// scheduled events.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Playing:
		return s.lifecycleError("start", ErrAlreadyStarted)
	case Stopped:
		return s.lifecycleError("start", ErrStopped)
	}

	g, err := s.build()
	if err != nil {
		return err
	}
	s.graph = g
	s.ctx.attach(g)
	s.startTasks()
	s.state = Playing

	s.log.WithFields(logrus.Fields{
		"session": s.id,
		"profile": s.profile.ID,
		"volume":  s.volume,
	}).Info("Session started")
	return nil
}

func (s *Session) startTasks() {
	g := s.graph
	sr := float64(s.ctx.Config().SampleRate)

	if spec := s.profile.Transient; spec != nil {
		rng := s.rng.Fork()
		s.transient = NewTransientScheduler(*spec, s.clock, rng, func() {
			b := NewBurst(*spec, sr, rng)
			s.ctx.Do(func() { g.AddBurst(b) })
			s.log.WithField("session", s.id).Debug("Transient burst")
		})
		s.transient.Start()
	}

	if spec := s.profile.Recenter; spec != nil {
		rng := s.rng.Fork()
		stage := g.Filters()[spec.Stage]
		interval := time.Duration(spec.IntervalMs * float64(time.Millisecond))
		s.recenter = NewTask(s.clock, func() time.Duration { return interval }, func() {
			if !rng.Chance(spec.Probability) {
				return
			}
			hz := rng.RandomFloat(spec.MinHz, spec.MaxHz)
			s.ctx.Do(func() { stage.SetFrequency(hz) })
			s.log.WithFields(logrus.Fields{"session": s.id, "hz": hz}).Debug("Filter re-centered")
		})
		s.recenter.Start()
	}
}

// Stop cancels every pending timer, then detaches and releases the graph.
// No scheduled event fires after Stop returns.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Idle:
		return s.lifecycleError("stop", ErrNotPlaying)
	case Stopped:
		return s.lifecycleError("stop", ErrStopped)
	}

	if s.transient != nil {
		s.transient.Stop()
	}
	if s.recenter != nil {
		s.recenter.Stop()
	}
	s.ctx.detach(s.graph)
	s.state = Stopped

	s.log.WithField("session", s.id).Info("Session stopped")
	return nil
}

// SetVolume ramps the master gain to v, clamped to [0, 1], within one
// render quantum.
func (s *Session) SetVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePlaying("set volume"); err != nil {
		return err
	}
	v = clampVolume(v)
	s.volume = v
	g, q := s.graph, s.ctx.Quantum()
	s.ctx.Do(func() { g.Master().RampTo(v, q) })
	return nil
}

func (s *Session) requirePlaying(op string) error {
	switch s.state {
	case Idle:
		return s.lifecycleError(op, ErrNotPlaying)
	case Stopped:
		return s.lifecycleError(op, ErrStopped)
	}
	return nil
}

// Volume returns the requested master volume.
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ID() uint64 { return s.id }

// ProfileID returns the sound identifier the session plays.
func (s *Session) ProfileID() string { return s.profile.ID }

// Graph returns the session's graph, or nil before Start.
func (s *Session) Graph() *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// Bursts returns the number of transient events fired so far.
func (s *Session) Bursts() int {
	s.mu.Lock()
	t := s.transient
	s.mu.Unlock()
	if t == nil {
		return 0
	}
	return t.Fired()
}

// BinauralSession is a Session playing two tones whose difference is the
// beat frequency. Frequency and band may change while Idle or Playing.
type BinauralSession struct {
	*Session
	ctrl        *BinauralBeatController
	left, right *ToneGenerator
}

// SetFrequency clamps f into the active band and glides the tones to it.
// It returns the applied frequency.
func (b *BinauralSession) SetFrequency(f float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Stopped {
		return b.ctrl.Applied(), b.lifecycleError("set frequency", ErrStopped)
	}
	applied := b.ctrl.SetTarget(f)
	b.retune()
	return applied, nil
}

// SetBand switches band and moves to its default frequency.
func (b *BinauralSession) SetBand(band BinauralBeatType) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Stopped {
		return b.lifecycleError("set band", ErrStopped)
	}
	if err := b.ctrl.SetBand(band); err != nil {
		return err
	}
	b.retune()
	return nil
}

func (b *BinauralSession) retune() {
	if b.left == nil {
		return
	}
	lf, rf := b.ctrl.Carriers()
	q := b.ctx.Quantum()
	b.ctx.Do(func() {
		b.left.SetFrequency(lf, q)
		b.right.SetFrequency(rf, q)
	})
	b.log.WithFields(logrus.Fields{
		"session": b.id,
		"band":    b.ctrl.Band(),
		"beat":    b.ctrl.Applied(),
	}).Debug("Binaural retuned")
}

// Frequency returns the applied beat frequency.
func (b *BinauralSession) Frequency() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctrl.Applied()
}

func (b *BinauralSession) Band() BinauralBeatType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctrl.Band()
}

// Tones returns the left and right tone generators, or nil before Start.
func (b *BinauralSession) Tones() (left, right *ToneGenerator) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.left, b.right
}
