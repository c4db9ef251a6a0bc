package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// sine is a fixed-length sine oscillator.
type sine struct {
	freq     float64
	phase    float64
	position int
	length   int
	rate     beep.SampleRate
}

func newSine(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &sine{freq: freq, length: rate.N(d), rate: rate}
}

func (o *sine) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if o.position >= o.length {
			return i, false
		}
		v := math.Sin(2 * math.Pi * o.phase)
		samples[i][0], samples[i][1] = v, v
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *sine) Err() error { return nil }

// decay shapes a stream with a linear attack and an exponential tail.
type decay struct {
	s        beep.Streamer
	position int
	attack   int
	rate     beep.SampleRate
	tau      float64
}

func newDecay(s beep.Streamer, attack time.Duration, tau float64, rate beep.SampleRate) beep.Streamer {
	return &decay{s: s, attack: rate.N(attack), rate: rate, tau: tau}
}

func (d *decay) Stream(samples [][2]float64) (int, bool) {
	n, ok := d.s.Stream(samples)
	for i := 0; i < n; i++ {
		vol := math.Exp(-float64(d.position) / float64(d.rate) / d.tau)
		if d.position < d.attack {
			vol *= float64(d.position) / float64(d.attack)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.s.Err() }

// gain converts a linear level to a beep volume effect. Zero is silent.
func gain(s beep.Streamer, level float64) *effects.Volume {
	v := &effects.Volume{Streamer: s, Base: 2}
	setGain(v, level)
	return v
}

func setGain(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(level)
}

// chime is the two-note bell played when a memory is collected.
func chime(rate beep.SampleRate, level float64) beep.Streamer {
	const d = 900 * time.Millisecond
	low := newDecay(newSine(1046.5, d, rate), 5*time.Millisecond, 0.25, rate)
	high := newDecay(newSine(1568.0, d, rate), 5*time.Millisecond, 0.15, rate)
	return gain(beep.Mix(gain(low, 0.6), gain(high, 0.4)), level)
}
