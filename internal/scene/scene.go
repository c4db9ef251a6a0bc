// Package scene assembles the playable worlds: the starfield odyssey and
// the walkable love city. A scene owns its session controller, its
// interaction layer and its scripted sequences, and is ticked once per
// animation frame by the browser client.
package scene

import (
	"context"
	"time"

	"github.com/gopxl/beep"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/narration"
	"github.com/kidandcat/heartquest/internal/phase"
	"github.com/kidandcat/heartquest/internal/session"
)

// Sound is the audio the scenes drive. *audio.Engine implements it.
type Sound interface {
	PlayMusic(src beep.StreamSeekCloser, format beep.Format, start time.Duration, loop bool) error
	StopMusic()
	FadeMusic(level float64, d time.Duration)
	Advance(dt time.Duration)
	Chime()
	Pulse() float64
	Close()
}

// MusicSource fetches and decodes a track.
type MusicSource func(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error)

// Deps are the collaborators shared by both scenes. Only Store is
// required.
type Deps struct {
	Store    *session.Store
	Narrator narration.Generator
	Speaker  narration.Speaker
	Writer   phase.CollectedWriter
	Sound    Sound
	Music    MusicSource
	Log      *zap.Logger
	// Go and Dispatch move work off and back onto the frame loop.
	Go       func(func())
	Dispatch func(func())
}

func (d *Deps) defaults() {
	if d.Store == nil {
		d.Store = session.New()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Go == nil {
		d.Go = func(fn func()) { go fn() }
	}
	if d.Dispatch == nil {
		d.Dispatch = func(fn func()) { fn() }
	}
}

func (d Deps) controller(script phase.Script) *phase.Controller {
	return phase.New(phase.Config{
		Store:    d.Store,
		Narrator: d.Narrator,
		Speaker:  d.Speaker,
		Writer:   d.Writer,
		Script:   script,
		Log:      d.Log,
		Go:       d.Go,
		Dispatch: d.Dispatch,
	})
}

// music starts url from start on the shared Sound. Any failure leaves the
// scene silent.
type music struct {
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc
}

func newMusic(d Deps) *music {
	ctx, cancel := context.WithCancel(context.Background())
	return &music{deps: d, ctx: ctx, cancel: cancel}
}

func (m *music) play(url string, start time.Duration, loop bool) {
	if url == "" || m.deps.Sound == nil || m.deps.Music == nil {
		return
	}
	ctx := m.ctx
	m.deps.Go(func() {
		src, format, err := m.deps.Music(ctx, url)
		if err != nil {
			m.deps.Log.Warn("music unavailable", zap.String("url", url), zap.Error(err))
			return
		}
		m.deps.Dispatch(func() {
			if ctx.Err() != nil {
				src.Close()
				return
			}
			if err := m.deps.Sound.PlayMusic(src, format, start, loop); err != nil {
				m.deps.Log.Warn("music playback failed", zap.Error(err))
			}
		})
	})
}

func (m *music) stop() {
	if m.deps.Sound != nil {
		m.deps.Sound.StopMusic()
	}
}

func (m *music) fade(level float64, d time.Duration) {
	if m.deps.Sound != nil {
		m.deps.Sound.FadeMusic(level, d)
	}
}

func (m *music) close() {
	m.cancel()
	m.stop()
}

// Seconds converts a stored music offset to a duration.
func Seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
