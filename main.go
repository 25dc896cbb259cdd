//go:build js
// +build js

package main

import (
	"github.com/gopherjs/gopherjs/js"
	"github.com/simukka/soundscape/audio"
	"github.com/simukka/soundscape/sink"
)

// Browser processor block size in frames
const blockSize = 2048

func main() {
	console := js.Global.Get("console")

	out, err := sink.NewWebAudioSink(blockSize)
	if err != nil {
		console.Call("error", err.Error())
		return
	}

	// The browser picks the output rate
	cfg := audio.DefaultConfig
	cfg.SampleRate = int(out.SampleRate())
	ctx, err := audio.NewContext(cfg)
	if err != nil {
		console.Call("error", err.Error())
		return
	}
	out.Attach(ctx)

	engine := audio.NewEngine(ctx)
	sessions := make(map[int]*audio.Session)
	binaural := make(map[int]*audio.BinauralSession)

	result := func(id int, err error) map[string]interface{} {
		if err != nil {
			return map[string]interface{}{"id": id, "error": err.Error()}
		}
		return map[string]interface{}{"id": id}
	}

	start := func(s *audio.Session) (int, error) {
		out.Resume()
		if err := s.Start(); err != nil {
			return 0, err
		}
		id := int(s.ID())
		sessions[id] = s
		return id, nil
	}

	// Expose the engine to JavaScript
	js.Global.Set("Soundscape", map[string]interface{}{
		"profiles": func() []interface{} {
			var list []interface{}
			for _, info := range engine.Profiles() {
				list = append(list, map[string]interface{}{"id": info.ID, "name": info.Name})
			}
			return list
		},
		"createSoundscape": func(profileID string, volume float64) map[string]interface{} {
			s, err := engine.CreateSoundscape(profileID, audio.WithVolume(volume))
			if err != nil {
				return result(0, err)
			}
			return result(start(s))
		},
		"createBinauralSession": func(band string, hz, volume float64) map[string]interface{} {
			b, err := audio.ParseBinauralBeatType(band)
			if err != nil {
				return result(0, err)
			}
			s, err := engine.CreateBinauralSession(b, hz, audio.WithVolume(volume))
			if err != nil {
				return result(0, err)
			}
			id, err := start(s.Session)
			if err == nil {
				binaural[id] = s
			}
			return result(id, err)
		},
		"setVolume": func(id int, v float64) map[string]interface{} {
			s, ok := sessions[id]
			if !ok {
				return result(id, audio.ErrStopped)
			}
			return result(id, s.SetVolume(v))
		},
		"setFrequency": func(id int, hz float64) map[string]interface{} {
			s, ok := binaural[id]
			if !ok {
				return result(id, audio.ErrStopped)
			}
			applied, err := s.SetFrequency(hz)
			r := result(id, err)
			r["applied"] = applied
			return r
		},
		"setBand": func(id int, band string) map[string]interface{} {
			s, ok := binaural[id]
			if !ok {
				return result(id, audio.ErrStopped)
			}
			b, err := audio.ParseBinauralBeatType(band)
			if err == nil {
				err = s.SetBand(b)
			}
			r := result(id, err)
			r["applied"] = s.Frequency()
			return r
		},
		"bandFor": func(hz float64) string {
			if b, ok := audio.BandFor(hz); ok {
				return b.String()
			}
			return ""
		},
		"stop": func(id int) map[string]interface{} {
			s, ok := sessions[id]
			if !ok {
				return result(id, audio.ErrStopped)
			}
			delete(sessions, id)
			delete(binaural, id)
			return result(id, s.Stop())
		},
	})

	// Release the device when the page goes away
	js.Global.Call("addEventListener", "beforeunload", func() {
		for _, s := range sessions {
			s.Stop()
		}
		out.Close()
	})

	select {}
}
