package audio

// Param is a control value read once per frame by the render thread.
// Targets are approached with a linear ramp to avoid zipper noise, the same
// way Web Audio's linearRampToValueAtTime is used for gain and pitch moves.
type Param struct {
	value     float64
	target    float64
	step      float64
	remaining int
}

// NewParam creates a parameter resting at v.
func NewParam(v float64) *Param {
	return &Param{value: v, target: v}
}

// Set jumps to v immediately.
func (p *Param) Set(v float64) {
	p.value, p.target = v, v
	p.step, p.remaining = 0, 0
}

// RampTo moves linearly to v over frames frames. frames <= 0 jumps.
func (p *Param) RampTo(v float64, frames int) {
	if frames <= 0 {
		p.Set(v)
		return
	}
	p.target = v
	p.remaining = frames
	p.step = (v - p.value) / float64(frames)
}

// Next returns the value for the current frame and advances the ramp.
func (p *Param) Next() float64 {
	v := p.value
	if p.remaining > 0 {
		p.remaining--
		if p.remaining == 0 {
			p.value = p.target
		} else {
			p.value += p.step
		}
	}
	return v
}

// Value returns the current (possibly mid-ramp) value.
func (p *Param) Value() float64 { return p.value }

// Target returns the value the parameter is heading to.
func (p *Param) Target() float64 { return p.target }
