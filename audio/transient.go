package audio

import (
	"sync"
	"time"

	"github.com/simukka/soundscape/common"
)

// Task is a cancellable self-rescheduling callback. After each run it asks
// next for the following delay and arms a new timer.
type Task struct {
	clock common.Clock
	next  func() time.Duration
	fn    func()

	mu      sync.Mutex
	timer   common.Timer
	started bool
	stopped bool
	runs    int
}

// NewTask creates an idle task.
func NewTask(clock common.Clock, next func() time.Duration, fn func()) *Task {
	return &Task{clock: clock, next: next, fn: fn}
}

// Start arms the first timer. Starting twice or after Stop is a no-op.
func (t *Task) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.stopped {
		return
	}
	t.started = true
	t.schedule()
}

func (t *Task) schedule() {
	t.timer = t.clock.AfterFunc(t.next(), t.tick)
}

func (t *Task) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.runs++
	t.fn()
	t.schedule()
}

// Stop cancels the pending timer. A callback already in progress finishes
// before Stop returns; none runs afterwards.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Runs returns how many times the callback has run.
func (t *Task) Runs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

// Stopped reports whether Stop has been called.
func (t *Task) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// TransientScheduler drives irregular transient events. Each check waits a
// uniform delay in [MinIntervalMs, MaxIntervalMs] and then fires with
// RecurrenceProbability, which clusters events instead of ticking evenly.
type TransientScheduler struct {
	spec TransientSpec
	rng  *common.SeededRNG
	fire func()
	task *Task

	mu    sync.Mutex
	fired int
}

// NewTransientScheduler creates a stopped scheduler that calls fire for
// every event.
func NewTransientScheduler(spec TransientSpec, clock common.Clock, rng *common.SeededRNG, fire func()) *TransientScheduler {
	s := &TransientScheduler{spec: spec, rng: rng, fire: fire}
	s.task = NewTask(clock, s.nextDelay, s.check)
	return s
}

func (s *TransientScheduler) nextDelay() time.Duration {
	ms := s.rng.RandomFloat(s.spec.MinIntervalMs, s.spec.MaxIntervalMs)
	return time.Duration(ms * float64(time.Millisecond))
}

func (s *TransientScheduler) check() {
	if !s.rng.Chance(s.spec.RecurrenceProbability) {
		return
	}
	s.mu.Lock()
	s.fired++
	s.mu.Unlock()
	s.fire()
}

// Start schedules the first check.
func (s *TransientScheduler) Start() { s.task.Start() }

// Stop cancels the pending check. No event fires after Stop returns.
func (s *TransientScheduler) Stop() { s.task.Stop() }

// Fired returns the number of events fired so far.
func (s *TransientScheduler) Fired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Checks returns the number of completed waits, fired or not.
func (s *TransientScheduler) Checks() int { return s.task.Runs() }
