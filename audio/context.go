package audio

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep"
)

// Context is the host audio context: one per process, created by the
// composition root and passed to everything that builds graphs. Sinks pull
// audio from it on the render thread through Stream; control code mutates
// graphs only through Do.
type Context struct {
	mu     sync.Mutex
	cfg    Config
	mixer  beep.Mixer
	graphs map[*Graph]struct{}
	frames int64
}

// NewContext validates cfg and creates the context. Any failure wraps
// ErrContextUnavailable.
func NewContext(cfg Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}
	return &Context{
		cfg:    cfg,
		graphs: make(map[*Graph]struct{}),
	}, nil
}

// Config returns the settings the context was created with.
func (c *Context) Config() Config { return c.cfg }

// SampleRate returns the render rate.
func (c *Context) SampleRate() beep.SampleRate { return beep.SampleRate(c.cfg.SampleRate) }

// Quantum returns the render block size in frames.
func (c *Context) Quantum() int { return c.cfg.Quantum }

// Frames returns the number of frames rendered so far.
func (c *Context) Frames() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Active returns the number of attached graphs.
func (c *Context) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.graphs)
}

// Do runs fn with the render thread held off. fn must not block.
func (c *Context) Do(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

func (c *Context) attach(g *Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.graphs[g] = struct{}{}
	c.mixer.Add(g)
}

// detach tears g down. The mixer drops it on the next quantum.
func (c *Context) detach(g *Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.graphs, g)
	g.close()
}

// Stream renders every attached graph into samples. It never drains; with
// nothing attached it produces silence.
func (c *Context) Stream(samples [][2]float64) (n int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.cfg.Quantum
	for n < len(samples) {
		end := min(n+q, len(samples))
		chunk := samples[n:end]
		clear(chunk)
		if c.mixer.Len() > 0 {
			c.mixer.Stream(chunk)
		}
		n = end
	}
	c.frames += int64(n)
	return n, true
}

// Err implements beep.Streamer.
func (c *Context) Err() error { return nil }
