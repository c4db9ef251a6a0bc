package sequence

import (
	"math"
	"time"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float64) float64

func Linear(t float64) float64 { return t }

// Power2InOut is a quadratic ease in and out.
func Power2InOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

// Power2Out decelerates toward the end.
func Power2Out(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// Tween interpolates a scalar from one value to another over a duration.
type Tween struct {
	from, to float64
	dur      time.Duration
	elapsed  time.Duration
	ease     Ease
	done     bool
	onDone   func()
}

func NewTween(from, to float64, dur time.Duration, ease Ease) *Tween {
	if ease == nil {
		ease = Linear
	}
	return &Tween{from: from, to: to, dur: dur, ease: ease}
}

func (t *Tween) OnDone(fn func()) *Tween {
	t.onDone = fn
	return t
}

// Advance steps the tween and returns the current value.
func (t *Tween) Advance(dt time.Duration) float64 {
	if t.done {
		return t.to
	}
	t.elapsed += dt
	if t.dur <= 0 || t.elapsed >= t.dur {
		t.elapsed = t.dur
		t.done = true
		if t.onDone != nil {
			t.onDone()
		}
		return t.to
	}
	return t.Value()
}

func (t *Tween) Value() float64 {
	if t.done || t.dur <= 0 {
		return t.to
	}
	p := float64(t.elapsed) / float64(t.dur)
	return t.from + (t.to-t.from)*t.ease(p)
}

func (t *Tween) Done() bool { return t.done }

// Chain runs tweens on the same value one after another.
type Chain struct {
	tweens []*Tween
	i      int
}

func NewChain(tweens ...*Tween) *Chain {
	return &Chain{tweens: tweens}
}

func (c *Chain) Advance(dt time.Duration) float64 {
	if len(c.tweens) == 0 {
		return 0
	}
	for c.i < len(c.tweens)-1 && c.tweens[c.i].Done() {
		c.i++
	}
	return c.tweens[c.i].Advance(dt)
}

func (c *Chain) Done() bool {
	return len(c.tweens) == 0 || (c.i == len(c.tweens)-1 && c.tweens[c.i].Done())
}
