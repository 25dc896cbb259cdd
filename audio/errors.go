package audio

import (
	"errors"
	"fmt"
)

// Errors reported by the engine. Out-of-range numeric input (volume, beat
// frequency) is clamped and never produces an error.
var (
	// ErrUnknownProfile indicates a sound identifier with no SoundProfile entry.
	ErrUnknownProfile = errors.New("audio: unknown sound profile")

	// ErrInvalidProfile indicates a malformed SoundProfile entry.
	ErrInvalidProfile = errors.New("audio: invalid sound profile")

	// ErrUnknownBand indicates a binaural band name or value outside delta..gamma.
	ErrUnknownBand = errors.New("audio: unknown binaural band")

	// ErrAlreadyStarted indicates Start on a session that is already playing.
	ErrAlreadyStarted = errors.New("audio: session already started")

	// ErrNotPlaying indicates an operation that needs a playing session was
	// called on an idle one.
	ErrNotPlaying = errors.New("audio: session is not playing")

	// ErrStopped indicates any operation on a session that has been stopped.
	ErrStopped = errors.New("audio: session is stopped")

	// ErrContextUnavailable indicates the host audio context could not be
	// created or the output device could not be opened. It is not retried.
	ErrContextUnavailable = errors.New("audio: host audio context unavailable")
)

// LifecycleError reports a session operation issued in the wrong state.
type LifecycleError struct {
	Session uint64
	Op      string
	State   SessionState
	Err     error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("session %d: %s while %s: %v", e.Session, e.Op, e.State, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }

func profileError(id, format string, args ...interface{}) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidProfile, id, fmt.Sprintf(format, args...))
}
