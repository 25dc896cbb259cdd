package audio

import (
	"github.com/simukka/soundscape/common"
)

// Composer turns a SoundProfile into a live Graph on a host Context.
type Composer struct {
	ctx *Context
}

// NewComposer creates a composer bound to ctx.
func NewComposer(ctx *Context) *Composer {
	return &Composer{ctx: ctx}
}

// Build validates p and wires its graph: one noise source, one FilterStage
// per filter entry, LFO bindings, and branches from the source through
// their chains into a master gain at volume. The returned graph is not yet
// attached to the context.
func (c *Composer) Build(p SoundProfile, volume float64, rng *common.SeededRNG) (*Graph, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	cfg := c.ctx.Config()
	sr := float64(cfg.SampleRate)
	g := newGraph(sr, cfg.Quantum, clampVolume(volume))

	src := -1
	if p.Noise != NoiseNone {
		src = g.addSource(NewNoiseGenerator(p.Noise, cfg.NoiseLoopFrames(), sr, rng.Fork()))
	}

	for _, f := range p.Filters {
		q := f.Q
		if q == 0 {
			q = DefaultQ
		}
		g.filters = append(g.filters, NewFilterStage(f.Kind, f.Frequency, q, sr))
	}

	chains := p.BranchChains()
	stageBranch := make(map[int]*Branch)
	for _, idx := range chains {
		chain := make([]*FilterStage, len(idx))
		for i, fi := range idx {
			chain[i] = g.filters[fi]
		}
		b := g.addBranch(src, chain, PanCenter)
		for _, fi := range idx {
			stageBranch[fi] = b
		}
	}

	for _, m := range p.Modulation {
		mod := NewModulationSource(m.Rate, m.EffectiveDepth(), sr)
		g.mods = append(g.mods, mod)
		switch m.Target {
		case TargetGain:
			stageBranch[m.Stage].gainMod = mod
		default:
			g.filters[m.Stage].Modulate(mod)
		}
	}
	return g, nil
}

// BuildBinaural wires two hard-panned tones at the controller's carriers.
func (c *Composer) BuildBinaural(ctrl *BinauralBeatController, volume float64) (*Graph, *ToneGenerator, *ToneGenerator) {
	cfg := c.ctx.Config()
	sr := float64(cfg.SampleRate)
	g := newGraph(sr, cfg.Quantum, clampVolume(volume))

	lf, rf := ctrl.Carriers()
	left := NewToneGenerator(lf, cfg.ToneAmplitude, sr)
	right := NewToneGenerator(rf, cfg.ToneAmplitude, sr)
	g.addBranch(g.addSource(left), nil, PanLeft)
	g.addBranch(g.addSource(right), nil, PanRight)
	return g, left, right
}
