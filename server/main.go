//go:build !js
// +build !js

package main

import (
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/simukka/soundscape/audio"
	"github.com/simukka/soundscape/common"
	"github.com/simukka/soundscape/sink"
	"github.com/sirupsen/logrus"
)

//go:embed index.html
var indexHTML []byte

// Longest offline render served over HTTP
const maxRenderSeconds = 300

// Server serves the browser player page and renders soundscapes to WAV.
type Server struct {
	cfg audio.Config
	log logrus.FieldLogger
}

// NewServer creates a server rendering with cfg.
func NewServer(cfg audio.Config, log logrus.FieldLogger) *Server {
	return &Server{cfg: cfg, log: log}
}

// Routes registers every endpoint on a new mux.
func (s *Server) Routes(staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	// Serve embedded index.html at root path
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(indexHTML)
			return
		}
		// Serve other static files (the compiled browser bundle) from disk
		http.FileServer(http.Dir(staticDir)).ServeHTTP(w, r)
	})

	mux.HandleFunc("/api/profiles", s.handleProfiles)
	mux.HandleFunc("/api/bands", s.handleBands)
	mux.HandleFunc("/api/render", s.handleRender)

	// Health check
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(v)
}

// handleProfiles lists the sound profiles available to the renderer.
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, err := audio.NewContext(s.cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	profiles := make([]map[string]interface{}, 0)
	for _, info := range audio.NewEngine(ctx).Profiles() {
		profiles = append(profiles, map[string]interface{}{
			"id":   info.ID,
			"name": info.Name,
		})
	}
	writeJSON(w, map[string]interface{}{"profiles": profiles})
}

// handleBands lists binaural bands with their ranges and defaults.
func (s *Server) handleBands(w http.ResponseWriter, r *http.Request) {
	bands := make([]map[string]interface{}, 0, len(audio.Bands()))
	for _, b := range audio.Bands() {
		rng := b.Range()
		bands = append(bands, map[string]interface{}{
			"id":      b.String(),
			"min":     rng.Min,
			"max":     rng.Max,
			"default": b.Default(),
		})
	}
	writeJSON(w, map[string]interface{}{"bands": bands})
}

// renderRequest is the parsed query of /api/render.
type renderRequest struct {
	sound   string
	band    string
	beat    float64
	volume  float64
	seconds float64
	seed    uint32
}

func parseRenderRequest(r *http.Request) (renderRequest, error) {
	q := r.URL.Query()
	req := renderRequest{
		sound:   q.Get("sound"),
		band:    q.Get("band"),
		volume:  -1,
		seconds: 10,
	}
	if req.sound == "" && req.band == "" {
		return req, errors.New("sound or band query parameter required")
	}
	floats := map[string]*float64{
		"beat":    &req.beat,
		"volume":  &req.volume,
		"seconds": &req.seconds,
	}
	for name, dst := range floats {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return req, fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = f
		}
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return req, fmt.Errorf("invalid seed: %w", err)
		}
		req.seed = uint32(n)
	}
	if !(req.seconds > 0 && req.seconds <= maxRenderSeconds) {
		return req, fmt.Errorf("seconds must be in (0, %d]", maxRenderSeconds)
	}
	return req, nil
}

// handleRender renders a session offline and returns it as audio/wav.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := parseRenderRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := os.CreateTemp("", "soundscape-*.wav")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.Remove(f.Name())
	defer f.Close()

	bursts, err := s.render(f, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, audio.ErrUnknownProfile) || errors.Is(err, audio.ErrUnknownBand) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	s.log.WithFields(logrus.Fields{
		"sound":   req.sound,
		"band":    req.band,
		"seconds": req.seconds,
		"bursts":  bursts,
	}).Info("Rendered")

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeContent(w, r, "soundscape.wav", time.Time{}, f)
}

// render writes the requested session to f and returns the burst count.
func (s *Server) render(f *os.File, req renderRequest) (int, error) {
	cfg := s.cfg
	if req.seed != 0 {
		cfg.Seed = req.seed
	}
	ctx, err := audio.NewContext(cfg)
	if err != nil {
		return 0, err
	}
	clock := common.NewManualClock(time.Unix(0, 0))
	engine := audio.NewEngine(ctx, audio.WithClock(clock), audio.WithLogger(s.log))

	var opts []audio.SessionOption
	if req.volume >= 0 {
		opts = append(opts, audio.WithVolume(req.volume))
	}

	var session *audio.Session
	if req.band != "" {
		band, err := audio.ParseBinauralBeatType(req.band)
		if err != nil {
			return 0, err
		}
		target := band.Default()
		if req.beat > 0 {
			target = req.beat
		}
		b, err := engine.CreateBinauralSession(band, target, opts...)
		if err != nil {
			return 0, err
		}
		session = b.Session
	} else {
		session, err = engine.CreateSoundscape(req.sound, opts...)
		if err != nil {
			return 0, err
		}
	}
	if err := session.Start(); err != nil {
		return 0, err
	}
	defer session.Stop()

	d := time.Duration(req.seconds * float64(time.Second))
	src := sink.NewClocked(ctx, clock, ctx.SampleRate())
	if err := sink.RenderWAV(f, src, ctx.SampleRate(), d); err != nil {
		return 0, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return 0, err
	}
	return session.Bursts(), nil
}

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	staticDir := flag.String("static", ".", "Directory to serve static files from")
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := audio.DefaultConfig
	if *configPath != "" {
		loaded, err := audio.LoadConfig(*configPath)
		if err != nil {
			log.WithError(err).Fatal("Loading config failed")
		}
		cfg = loaded
	}

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Soundscape server starting on http://localhost%s", addr)
	log.Printf("Serving static files from: %s", *staticDir)
	log.Printf("Render endpoint: /api/render?sound=ocean&seconds=10")

	if err := http.ListenAndServe(addr, NewServer(cfg, log).Routes(*staticDir)); err != nil {
		log.Fatal(err)
	}
}
