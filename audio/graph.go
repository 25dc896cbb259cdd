package audio

import (
	"math"
	"slices"

	"github.com/gopxl/beep"
)

// Source is a looping mono signal read by the render thread.
type Source interface {
	Fill(dst []float64)
	Release()
}

// Pan routes a branch to one or both output channels.
type Pan int

const (
	PanCenter Pan = iota
	PanLeft
	PanRight
)

// Branch is one path from a source through a filter chain to the master gain.
type Branch struct {
	source  int
	chain   []*FilterStage
	gain    *Param
	gainMod *ModulationSource
	pan     Pan
	output  *Param
	buf     []float64
}

// Source returns the index of the feeding source in Graph.Sources.
func (b *Branch) Source() int { return b.source }

// Chain returns the filter stages in processing order.
func (b *Branch) Chain() []*FilterStage { return slices.Clone(b.chain) }

// Gain returns the branch's static gain.
func (b *Branch) Gain() float64 { return b.gain.Value() }

// GainModulation returns the LFO driving the branch gain, if any.
func (b *Branch) GainModulation() *ModulationSource { return b.gainMod }

func (b *Branch) Pan() Pan { return b.pan }

// Output returns the gain node the branch terminates at.
func (b *Branch) Output() *Param { return b.output }

// Graph is a live signal-processing graph: sources feed filter branches
// that sum into a single master gain. Transient bursts are mixed in just
// ahead of the master gain. A Graph is a beep.Streamer driven by the
// host Context; while attached, all access happens under the context
// lock (see Context.Do).
type Graph struct {
	sampleRate float64
	quantum    int

	sources  []Source
	srcBufs  [][]float64
	branches []*Branch
	filters  []*FilterStage
	mods     []*ModulationSource
	master   *Param

	bursts   beep.Mixer
	burstBuf [][2]float64

	closed bool
}

func newGraph(sampleRate float64, quantum int, volume float64) *Graph {
	return &Graph{
		sampleRate: sampleRate,
		quantum:    quantum,
		master:     NewParam(volume),
		burstBuf:   make([][2]float64, quantum),
	}
}

func (g *Graph) addSource(src Source) int {
	g.sources = append(g.sources, src)
	g.srcBufs = append(g.srcBufs, make([]float64, g.quantum))
	return len(g.sources) - 1
}

func (g *Graph) addBranch(source int, chain []*FilterStage, pan Pan) *Branch {
	b := &Branch{
		source: source,
		chain:  chain,
		gain:   NewParam(1),
		pan:    pan,
		output: g.master,
		buf:    make([]float64, g.quantum),
	}
	g.branches = append(g.branches, b)
	return b
}

// Sources, Filters, Modulators and Branches return copies of the node
// lists. The nodes themselves are live: once the graph is attached to a
// Context, read or change them only inside Context.Do.
func (g *Graph) Sources() []Source               { return slices.Clone(g.sources) }
func (g *Graph) Filters() []*FilterStage         { return slices.Clone(g.filters) }
func (g *Graph) Modulators() []*ModulationSource { return slices.Clone(g.mods) }
func (g *Graph) Branches() []*Branch             { return slices.Clone(g.branches) }

// Master returns the master output gain.
func (g *Graph) Master() *Param { return g.master }

// ActiveBursts returns the number of transient bursts still sounding.
func (g *Graph) ActiveBursts() int { return g.bursts.Len() }

// AddBurst mixes a short-lived streamer into the graph. It is dropped once
// it reports itself drained.
func (g *Graph) AddBurst(s beep.Streamer) {
	if g.closed {
		return
	}
	g.bursts.Add(s)
}

// Closed reports whether the graph has been torn down.
func (g *Graph) Closed() bool { return g.closed }

// Stream renders the graph into samples, one quantum at a time. A closed
// graph reports itself drained so the context mixer drops it.
func (g *Graph) Stream(samples [][2]float64) (n int, ok bool) {
	if g.closed {
		return 0, false
	}
	for n < len(samples) {
		end := min(n+g.quantum, len(samples))
		g.render(samples[n:end])
		n = end
	}
	return n, true
}

// Err implements beep.Streamer.
func (g *Graph) Err() error { return nil }

func (g *Graph) render(out [][2]float64) {
	n := len(out)
	for i, src := range g.sources {
		src.Fill(g.srcBufs[i][:n])
	}
	clear(out)

	for _, b := range g.branches {
		buf := b.buf[:n]
		copy(buf, g.srcBufs[b.source][:n])
		for _, f := range b.chain {
			f.Process(buf)
		}
		mod := 1.0
		if b.gainMod != nil {
			mod = math.Max(0, 1+b.gainMod.Value())
			b.gainMod.Advance(n)
		}
		for i, x := range buf {
			v := x * b.gain.Next() * mod
			switch b.pan {
			case PanLeft:
				out[i][0] += v
			case PanRight:
				out[i][1] += v
			default:
				out[i][0] += v
				out[i][1] += v
			}
		}
	}

	if g.bursts.Len() > 0 {
		bb := g.burstBuf[:n]
		clear(bb)
		g.bursts.Stream(bb)
		for i := range bb {
			out[i][0] += bb[i][0]
			out[i][1] += bb[i][1]
		}
	}

	for i := range out {
		m := g.master.Next()
		out[i][0] *= m
		out[i][1] *= m
	}
}

// close releases every node owned by the graph. Pending bursts are dropped.
func (g *Graph) close() {
	if g.closed {
		return
	}
	g.closed = true
	for _, src := range g.sources {
		src.Release()
	}
	for _, f := range g.filters {
		f.Release()
	}
	g.bursts.Clear()
	g.srcBufs = nil
}
