//go:build js
// +build js

package sink

import (
	"fmt"

	"github.com/gopherjs/gopherjs/js"
	"github.com/gopxl/beep"
	"github.com/simukka/soundscape/audio"
)

// WebAudioSink drives a source from a Web Audio ScriptProcessorNode. The
// browser's audio callback is the render thread.
type WebAudioSink struct {
	ctx    *js.Object
	node   *js.Object
	src    beep.Streamer
	frames [][2]float64
}

// NewWebAudioSink creates the browser AudioContext and a stereo processor
// node of blockSize frames. Output is silent until Attach is called.
func NewWebAudioSink(blockSize int) (*WebAudioSink, error) {
	// Try to create AudioContext
	audioCtx := js.Global.Get("AudioContext")
	if audioCtx == nil || audioCtx == js.Undefined {
		audioCtx = js.Global.Get("webkitAudioContext")
	}
	if audioCtx == nil || audioCtx == js.Undefined {
		return nil, fmt.Errorf("%w: Web Audio not supported", audio.ErrContextUnavailable)
	}

	s := &WebAudioSink{
		ctx:    audioCtx.New(),
		frames: make([][2]float64, blockSize),
	}
	s.node = s.ctx.Call("createScriptProcessor", blockSize, 0, 2)
	s.node.Set("onaudioprocess", s.process)
	s.node.Call("connect", s.ctx.Get("destination"))
	return s, nil
}

// SampleRate returns the rate chosen by the browser.
func (s *WebAudioSink) SampleRate() beep.SampleRate {
	return beep.SampleRate(s.ctx.Get("sampleRate").Int())
}

// Attach sets the streamer pulled on every audio callback.
func (s *WebAudioSink) Attach(src beep.Streamer) { s.src = src }

func (s *WebAudioSink) process(event *js.Object) {
	out := event.Get("outputBuffer")
	left := out.Call("getChannelData", 0)
	right := out.Call("getChannelData", 1)
	n := out.Get("length").Int()
	if len(s.frames) < n {
		s.frames = make([][2]float64, n)
	}
	frames := s.frames[:n]
	got := 0
	if s.src != nil {
		got, _ = s.src.Stream(frames)
	}
	clear(frames[got:])
	for i, f := range frames {
		left.SetIndex(i, f[0])
		right.SetIndex(i, f[1])
	}
}

// Resume restarts a context the browser suspended until a user gesture.
func (s *WebAudioSink) Resume() {
	// Resume context if suspended
	if s.ctx.Get("state").String() == "suspended" {
		s.ctx.Call("resume")
	}
}

// Close disconnects the node and closes the browser context.
func (s *WebAudioSink) Close() {
	s.node.Call("disconnect")
	s.ctx.Call("close")
}
