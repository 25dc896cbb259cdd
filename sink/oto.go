//go:build !js

package sink

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
	"github.com/simukka/soundscape/audio"
)

// OtoSink plays a beep.Streamer on the default output device. oto's reader
// goroutine is the render thread: every Read pulls one block from the source.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	src    beep.Streamer

	frames  [][2]float64 // Pre-allocated render buffer
	started bool
	mutex   sync.Mutex // Only for setup/control operations
}

// NewOtoSink opens the output device as 32-bit float stereo. Device failures
// wrap audio.ErrContextUnavailable.
func NewOtoSink(sampleRate beep.SampleRate, src beep.Streamer) (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrContextUnavailable, err)
	}
	<-ready

	s := &OtoSink{
		ctx:    ctx,
		src:    src,
		frames: make([][2]float64, 1024),
	}
	s.player = ctx.NewPlayer(s)
	return s, nil
}

// Read implements io.Reader for oto. Each frame is two little-endian float32
// samples.
func (s *OtoSink) Read(p []byte) (int, error) {
	n := len(p) / 8
	if len(s.frames) < n {
		s.frames = make([][2]float64, n)
	}
	frames := s.frames[:n]
	got, ok := s.src.Stream(frames)
	if !ok {
		got = 0
	}
	clear(frames[got:])
	for i, f := range frames {
		binary.LittleEndian.PutUint32(p[i*8:], math.Float32bits(float32(f[0])))
		binary.LittleEndian.PutUint32(p[i*8+4:], math.Float32bits(float32(f[1])))
	}
	return n * 8, nil
}

func (s *OtoSink) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.started {
		s.player.Play()
		s.started = true
	}
}

func (s *OtoSink) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.started {
		s.player.Pause()
		s.started = false
	}
}

// Err returns the player's error, if any.
func (s *OtoSink) Err() error { return s.player.Err() }

func (s *OtoSink) IsStarted() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.started
}
