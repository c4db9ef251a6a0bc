// Package audio mixes scene music and effects into a single beep stream.
//
// The Engine is itself a beep.Streamer. Whoever owns the output device
// plays it; the engine never opens one.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/sequence"
)

const SampleRate = beep.SampleRate(44100)

type Engine struct {
	mu    sync.Mutex
	rate  beep.SampleRate
	mixer *beep.Mixer
	log   *zap.Logger

	music     *beep.Ctrl
	musicVol  *effects.Volume
	musicSrc  beep.StreamSeekCloser
	musicGain float64
	fade      *sequence.Tween

	effectLevel float64
	pulse       float64
	closed      bool
}

func NewEngine(rate beep.SampleRate, log *zap.Logger) *Engine {
	return &Engine{
		rate:        rate,
		mixer:       &beep.Mixer{},
		log:         log,
		effectLevel: 0.5,
	}
}

func (e *Engine) SampleRate() beep.SampleRate { return e.rate }

// Stream mixes everything currently playing and updates the pulse level.
// It never drains.
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		e.pulse = 0
		return len(samples), true
	}
	n, _ := e.mixer.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	var sum float64
	for i := range samples {
		m := (samples[i][0] + samples[i][1]) / 2
		sum += m * m
	}
	if len(samples) > 0 {
		e.pulse = math.Min(1, math.Sqrt(sum/float64(len(samples)))*math.Sqrt2)
	}
	return len(samples), true
}

func (e *Engine) Err() error { return nil }

// PlayMusic replaces the current track. Playback begins start into the
// track; with loop set it restarts from the beginning when it ends.
func (e *Engine) PlayMusic(src beep.StreamSeekCloser, format beep.Format, start time.Duration, loop bool) error {
	if start > 0 {
		pos := format.SampleRate.N(start)
		if src.Len() > 0 && pos >= src.Len() {
			pos = 0
		}
		if err := src.Seek(pos); err != nil {
			e.log.Warn("music seek failed, playing from start", zap.Error(err))
		}
	}

	var s beep.Streamer = src
	if loop {
		s = beep.Loop(-1, src)
	}
	if format.SampleRate != e.rate {
		s = beep.Resample(4, format.SampleRate, e.rate, s)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopMusicLocked()
	e.musicSrc = src
	e.musicGain = 1
	e.musicVol = gain(s, 1)
	e.music = &beep.Ctrl{Streamer: e.musicVol}
	e.mixer.Add(e.music)
	return nil
}

// StopMusic silences and releases the current track.
func (e *Engine) StopMusic() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopMusicLocked()
}

func (e *Engine) stopMusicLocked() {
	if e.music != nil {
		e.music.Paused = true
		e.music.Streamer = nil
	}
	if e.musicSrc != nil {
		if err := e.musicSrc.Close(); err != nil {
			e.log.Debug("close music", zap.Error(err))
		}
	}
	e.music, e.musicVol, e.musicSrc, e.fade = nil, nil, nil, nil
}

// PlayingMusic reports whether a track is loaded and not paused.
func (e *Engine) PlayingMusic() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.music != nil && !e.music.Paused
}

// FadeMusic ramps the music level to level over d.
func (e *Engine) FadeMusic(level float64, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.music == nil {
		return
	}
	e.fade = sequence.NewTween(e.musicGain, level, d, sequence.Linear)
}

// Advance moves fades forward by dt. Call it once per frame.
func (e *Engine) Advance(dt time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fade == nil || e.musicVol == nil {
		return
	}
	e.musicGain = e.fade.Advance(dt)
	setGain(e.musicVol, e.musicGain)
	if e.fade.Done() {
		e.fade = nil
	}
}

func (e *Engine) MusicGain() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.musicGain
}

// Chime plays the collect bell.
func (e *Engine) Chime() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.mixer.Add(chime(e.rate, e.effectLevel))
}

// Pulse is the recent output level in 0..1, used to make the scene throb
// with the music.
func (e *Engine) Pulse() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pulse
}

// Close stops all sound. The engine keeps streaming silence afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopMusicLocked()
	e.mixer.Clear()
	e.closed = true
	e.pulse = 0
}

func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
