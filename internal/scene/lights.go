package scene

import (
	"time"

	"github.com/kidandcat/heartquest/internal/sequence"
	"github.com/kidandcat/heartquest/internal/session"
)

const (
	RestLightColor     = "#ffffff"
	ProposalLightColor = "#FFDDC2"
	ProposalBloomColor = "#FFB6C1"
)

type animator interface {
	Advance(dt time.Duration) float64
	Done() bool
}

// channel is one animatable light parameter.
type channel struct {
	value float64
	anim  animator
}

func (c *channel) to(v float64, d time.Duration, ease sequence.Ease) {
	c.anim = sequence.NewTween(c.value, v, d, ease)
}

func (c *channel) set(v float64) {
	c.value = v
	c.anim = nil
}

func (c *channel) advance(dt time.Duration) {
	if c.anim == nil {
		return
	}
	c.value = c.anim.Advance(dt)
	if c.anim.Done() {
		c.anim = nil
	}
}

// Lights is a snapshot for the renderer.
type Lights struct {
	Ambient    float64
	Point      float64
	PointColor string
	PointZ     float64
	Bloom      float64
}

// LightRig animates ambient, point and bloom levels per phase.
type LightRig struct {
	ambient, point, pointZ, bloom channel
	color                         string
}

func NewLightRig() *LightRig {
	r := &LightRig{color: RestLightColor}
	r.ambient.set(0.5)
	r.point.set(1)
	r.pointZ.set(10)
	r.bloom.set(1.5)
	return r
}

// Enter starts the transition for phase p.
func (r *LightRig) Enter(p session.Phase) {
	switch p {
	case session.PhasePlaying:
		r.ambient.set(0.5)
		r.point.set(1)
		r.pointZ.set(10)
		r.color = RestLightColor
		r.bloom.to(1.5, time.Second, sequence.Power2Out)
	case session.PhaseReveal:
		r.ambient.to(0.1, 2*time.Second, sequence.Power2Out)
		r.point.to(5, 2*time.Second, sequence.Power2Out)
		r.pointZ.to(2, 2*time.Second, sequence.Power2Out)
		r.color = ProposalLightColor
		r.bloom.to(0.5, 2*time.Second, sequence.Power2Out)
	case session.PhaseProposal:
		b := r.bloom.value
		r.bloom.anim = sequence.NewChain(
			sequence.NewTween(b, b, 500*time.Millisecond, sequence.Linear),
			sequence.NewTween(b, 2.5, 1500*time.Millisecond, sequence.Power2InOut),
		)
	case session.PhaseFinale:
		r.ambient.to(0, 3*time.Second, sequence.Power2Out)
		r.point.to(0, 3*time.Second, sequence.Power2Out)
		r.bloom.to(0, 3*time.Second, sequence.Power2Out)
	}
}

// Flash brightens the bloom briefly, then settles back to the play level.
func (r *LightRig) Flash() {
	r.bloom.anim = sequence.NewChain(
		sequence.NewTween(r.bloom.value, 3.5, 300*time.Millisecond, sequence.Power2Out),
		sequence.NewTween(3.5, 1.5, 1500*time.Millisecond, sequence.Power2Out),
	)
}

func (r *LightRig) Advance(dt time.Duration) {
	r.ambient.advance(dt)
	r.point.advance(dt)
	r.pointZ.advance(dt)
	r.bloom.advance(dt)
}

func (r *LightRig) State() Lights {
	return Lights{
		Ambient:    r.ambient.value,
		Point:      r.point.value,
		PointColor: r.color,
		PointZ:     r.pointZ.value,
		Bloom:      r.bloom.value,
	}
}
