//go:build !js
// +build !js

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/simukka/soundscape/analysis"
	"github.com/simukka/soundscape/audio"
	"github.com/simukka/soundscape/common"
	"github.com/simukka/soundscape/sink"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Volume and beat steps for interactive keys
const (
	volumeStep = 0.05
	beatStep   = 0.5
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	sound := flag.String("sound", "ocean", "Sound profile to play")
	volume := flag.Float64("volume", -1, "Master volume 0-1 (default from config)")
	band := flag.String("band", "", "Binaural band (delta, theta, alpha, beta, gamma); plays binaural beats instead of a soundscape")
	beat := flag.Float64("beat", 0, "Binaural beat frequency in Hz (default: band default)")
	outPath := flag.String("out", "", "Render to this WAV file instead of the speakers")
	duration := flag.Duration("duration", 0, "Stop after this long (required with -out)")
	analyze := flag.Duration("analyze", 0, "Render this much audio offline and print a spectrum report")
	list := flag.Bool("list", false, "List sound profiles and binaural bands")
	backend := flag.String("backend", "oto", "Output backend: oto or speaker")
	logLevel := flag.String("log-level", "info", "Log level")
	seed := flag.Uint("seed", 0, "RNG seed (0 = from config or clock)")
	flag.Parse()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithError(err).Warn("Unknown log level, using info")
	}

	cfg := audio.DefaultConfig
	if *configPath != "" {
		loaded, err := audio.LoadConfig(*configPath)
		if err != nil {
			log.WithError(err).Fatal("Loading config failed")
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.Seed = uint32(*seed)
	}

	if *list {
		printListing(cfg)
		return
	}

	p := &player{
		cfg:    cfg,
		log:    log,
		sound:  *sound,
		band:   *band,
		beat:   *beat,
		volume: *volume,
	}

	if *analyze > 0 {
		if err := p.analyze(*analyze); err != nil {
			log.WithError(err).Fatal("Analysis failed")
		}
		if *outPath == "" {
			return
		}
	}

	if *outPath != "" {
		if *duration <= 0 {
			log.Fatal("-out requires -duration")
		}
		if err := p.render(*outPath, *duration); err != nil {
			log.WithError(err).Fatal("Rendering failed")
		}
		return
	}

	if err := p.play(*backend, *duration); err != nil {
		log.WithError(err).Fatal("Playback failed")
	}
}

func printListing(cfg audio.Config) {
	ctx, err := audio.NewContext(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("Sound profiles:")
	for _, info := range audio.NewEngine(ctx).Profiles() {
		fmt.Printf("  %-10s %s\n", info.ID, info.Name)
	}
	fmt.Println("Binaural bands:")
	for _, b := range audio.Bands() {
		r := b.Range()
		fmt.Printf("  %-10s %5.1f - %4.1f Hz (default %g)\n", b, r.Min, r.Max, b.Default())
	}
}

type player struct {
	cfg    audio.Config
	log    logrus.FieldLogger
	sound  string
	band   string
	beat   float64
	volume float64

	session  *audio.Session
	binaural *audio.BinauralSession
}

// open creates the context, engine and an idle session.
func (p *player) open(clock common.Clock) (*audio.Context, error) {
	ctx, err := audio.NewContext(p.cfg)
	if err != nil {
		return nil, err
	}
	engine := audio.NewEngine(ctx, audio.WithClock(clock), audio.WithLogger(p.log))

	var opts []audio.SessionOption
	if p.volume >= 0 {
		opts = append(opts, audio.WithVolume(p.volume))
	}

	if p.band != "" {
		band, err := audio.ParseBinauralBeatType(p.band)
		if err != nil {
			return nil, err
		}
		target := band.Default()
		if p.beat > 0 {
			target = p.beat
		}
		b, err := engine.CreateBinauralSession(band, target, opts...)
		if err != nil {
			return nil, err
		}
		p.binaural = b
		p.session = b.Session
	} else {
		s, err := engine.CreateSoundscape(p.sound, opts...)
		if err != nil {
			return nil, err
		}
		p.session = s
	}
	return ctx, p.session.Start()
}

// render writes d of audio to a WAV file, faster than real time.
func (p *player) render(path string, d time.Duration) error {
	clock := common.NewManualClock(time.Now())
	ctx, err := p.open(clock)
	if err != nil {
		return err
	}
	defer p.session.Stop()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	src := sink.NewClocked(ctx, clock, ctx.SampleRate())
	if err := sink.RenderWAV(f, src, ctx.SampleRate(), d); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{
		"file":     path,
		"duration": d,
		"bursts":   p.session.Bursts(),
	}).Info("Render complete")
	return nil
}

// analyze renders d of audio into memory and prints a spectrum report.
func (p *player) analyze(d time.Duration) error {
	clock := common.NewManualClock(time.Now())
	ctx, err := p.open(clock)
	if err != nil {
		return err
	}
	defer p.session.Stop()

	sr := ctx.SampleRate()
	frames := make([][2]float64, sr.N(d))
	src := sink.NewClocked(ctx, clock, sr)
	for n := 0; n < len(frames); n += 1024 {
		src.Stream(frames[n:min(n+1024, len(frames))])
	}

	mono := analysis.Mono(frames)
	spec := analysis.Analyze(mono, float64(sr))
	fmt.Printf("profile:   %s\n", p.session.ProfileID())
	fmt.Printf("rms:       %.4f\n", analysis.RMS(mono))
	fmt.Printf("centroid:  %.1f Hz\n", spec.Centroid())
	fmt.Printf("peak:      %.1f Hz\n", spec.Peak())
	edges := []float64{0, 250, 1000, 4000, float64(sr) / 2}
	for i := 0; i+1 < len(edges); i++ {
		fmt.Printf("%5.0f-%5.0f Hz: %.3e\n", edges[i], edges[i+1], spec.BandEnergy(edges[i], edges[i+1]))
	}
	if p.binaural != nil {
		l := analysis.Analyze(analysis.Channel(frames, 0), float64(sr)).Peak()
		r := analysis.Analyze(analysis.Channel(frames, 1), float64(sr)).Peak()
		fmt.Printf("tones:     %.1f Hz / %.1f Hz (beat %.2f Hz)\n", l, r, p.binaural.Frequency())
	}
	return nil
}

// play streams to the speakers until q, a signal, or the duration elapses.
func (p *player) play(backend string, d time.Duration) error {
	ctx, err := p.open(common.RealClock())
	if err != nil {
		return err
	}
	defer p.session.Stop()

	switch backend {
	case "oto":
		out, err := sink.NewOtoSink(ctx.SampleRate(), ctx)
		if err != nil {
			return err
		}
		out.Start()
		defer out.Stop()
	case "speaker":
		if err := sink.PlaySpeaker(ctx.SampleRate(), ctx, 100*time.Millisecond); err != nil {
			return err
		}
		defer sink.CloseSpeaker()
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}

	p.log.WithFields(logrus.Fields{
		"profile": p.session.ProfileID(),
		"volume":  p.session.Volume(),
		"backend": backend,
	}).Info("Playing")

	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	var timeout <-chan time.Time
	if d > 0 {
		timeout = time.After(d)
	}

	keys, restore := p.keys(done)
	defer restore()

	for {
		select {
		case k := <-keys:
			if !p.handleKey(k) {
				close(done)
				return nil
			}
		case <-sig:
			close(done)
			return nil
		case <-timeout:
			close(done)
			return nil
		}
	}
}

// keys puts the terminal in raw mode and forwards single key presses.
func (p *player) keys(done <-chan struct{}) (<-chan byte, func()) {
	ch := make(chan byte)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ch, func() {}
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		p.log.WithError(err).Warn("Failed to set raw mode, keys disabled")
		return ch, func() {}
	}
	fmt.Print("keys: +/- volume, [/] beat, q quit\r\n")

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			select {
			case ch <- buf[0]:
			case <-done:
				return
			}
		}
	}()
	return ch, func() { _ = term.Restore(fd, oldState) }
}

// handleKey applies one key press. It returns false to quit.
func (p *player) handleKey(k byte) bool {
	switch k {
	case 'q', 'Q', 3: // Ctrl-C arrives as a byte in raw mode
		return false
	case '+', '=':
		p.nudgeVolume(volumeStep)
	case '-', '_':
		p.nudgeVolume(-volumeStep)
	case ']':
		p.nudgeBeat(beatStep)
	case '[':
		p.nudgeBeat(-beatStep)
	}
	return true
}

func (p *player) nudgeVolume(delta float64) {
	if err := p.session.SetVolume(p.session.Volume() + delta); err != nil {
		p.log.WithError(err).Warn("Volume change rejected")
		return
	}
	fmt.Printf("volume %.2f\r\n", p.session.Volume())
}

func (p *player) nudgeBeat(delta float64) {
	if p.binaural == nil {
		return
	}
	applied, err := p.binaural.SetFrequency(p.binaural.Frequency() + delta)
	if err != nil {
		p.log.WithError(err).Warn("Beat change rejected")
		return
	}
	fmt.Printf("%s %.2f Hz\r\n", p.binaural.Band(), applied)
}
