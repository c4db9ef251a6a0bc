package scene

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/interaction"
	"github.com/kidandcat/heartquest/internal/narration"
	"github.com/kidandcat/heartquest/internal/proposal"
	"github.com/kidandcat/heartquest/internal/session"
)

const frame = 16 * time.Millisecond

// frames replays queued input, then reports idle frames.
type frames struct{ queue []interaction.Frame }

func (f *frames) push(fr interaction.Frame) { f.queue = append(f.queue, fr) }

func (f *frames) Poll() interaction.Frame {
	if len(f.queue) == 0 {
		return interaction.Frame{}
	}
	fr := f.queue[0]
	f.queue = f.queue[1:]
	return fr
}

type fakeSound struct {
	chimes  int
	closed  bool
	playing bool
	level   float64
}

func (s *fakeSound) PlayMusic(src beep.StreamSeekCloser, _ beep.Format, _ time.Duration, _ bool) error {
	s.playing = true
	return nil
}
func (s *fakeSound) StopMusic() { s.playing = false }
func (s *fakeSound) FadeMusic(level float64, _ time.Duration) { s.level = level }
func (s *fakeSound) Advance(time.Duration) {}
func (s *fakeSound) Chime() { s.chimes++ }
func (s *fakeSound) Pulse() float64 { return 0.25 }
func (s *fakeSound) Close() { s.closed = true }

type nopWriter struct{ ids []string }

func (w *nopWriter) SetCollected(_ context.Context, id string, _ bool) error {
	w.ids = append(w.ids, id)
	return nil
}

func testProposal(n int) *proposal.Proposal {
	p := &proposal.Proposal{
		ID:           "7b1e2c4a-odyssey",
		PartnerName:  "Ana",
		Token:        "HEART-4321",
		NebulaColor:  proposal.DefaultNebulaColor,
		StarColor:    proposal.DefaultStarColor,
		ProposalText: "Will you marry me, Ana?",
		VideoURL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	for i := 0; i < n; i++ {
		p.Memories = append(p.Memories, proposal.Memory{
			ID:          fmt.Sprintf("m%d", i),
			ProposalID:  p.ID,
			CaptionText: fmt.Sprintf("memory %d", i),
			OrderIndex:  i,
		})
	}
	return p
}

func testDeps(p *proposal.Proposal) (Deps, *fakeSound, *nopWriter) {
	store := session.New()
	if p != nil {
		store.SetProposal(p)
	}
	snd := &fakeSound{}
	w := &nopWriter{}
	return Deps{
		Store: store,
		Narrator: narration.GeneratorFunc(func(_ context.Context, caption, partner string) (string, error) {
			return partner + ", remember " + caption, nil
		}),
		Speaker:  narration.Silent{},
		Writer:   w,
		Sound:    snd,
		Log:      zap.NewNop(),
		Go:       func(fn func()) { fn() },
		Dispatch: func(fn func()) { fn() },
	}, snd, w
}

func run(tick func(time.Duration), d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		tick(frame)
	}
}

func TestEvade(t *testing.T) {
	center := interaction.Vec2{X: 500, Y: 300}

	off, scale := Evade(interaction.Vec2{X: 700, Y: 300}, center)
	assert.Equal(t, interaction.Vec2{}, off)
	assert.Equal(t, 1.0, scale)

	off, scale = Evade(interaction.Vec2{X: 440, Y: 300}, center)
	assert.InDelta(t, 50, off.X, 1e-9)
	assert.InDelta(t, 0, off.Y, 1e-9)
	assert.InDelta(t, 0.6, scale, 1e-9)

	off, scale = Evade(center, center)
	assert.InDelta(t, EvadeMaxMove, off.Len(), 1e-9)
	assert.InDelta(t, EvadeMinScale, scale, 1e-9)
}

func TestYouTubeID(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=42":           "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":   "dQw4w9WgXcQ",
		"https://cdn.example.com/song.mp3":            "",
		"https://www.youtube.com/watch?v=short":       "",
		"":                                            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, YouTubeID(in), in)
	}
}

func TestLightRig(t *testing.T) {
	r := NewLightRig()
	assert.Equal(t, 1.5, r.State().Bloom)

	r.Flash()
	r.Advance(300 * time.Millisecond)
	assert.InDelta(t, 3.5, r.State().Bloom, 1e-9)
	r.Advance(time.Millisecond)
	r.Advance(1500 * time.Millisecond)
	assert.InDelta(t, 1.5, r.State().Bloom, 1e-9)

	r.Enter(session.PhaseReveal)
	r.Advance(2 * time.Second)
	s := r.State()
	assert.InDelta(t, 0.1, s.Ambient, 1e-9)
	assert.InDelta(t, 5, s.Point, 1e-9)
	assert.InDelta(t, 0.5, s.Bloom, 1e-9)
	assert.Equal(t, ProposalLightColor, s.PointColor)

	r.Enter(session.PhaseProposal)
	r.Advance(400 * time.Millisecond)
	assert.InDelta(t, 0.5, r.State().Bloom, 1e-9)
	r.Advance(200 * time.Millisecond)
	r.Advance(1500 * time.Millisecond)
	assert.InDelta(t, 2.5, r.State().Bloom, 1e-9)

	r.Enter(session.PhaseFinale)
	r.Advance(3 * time.Second)
	s = r.State()
	assert.Equal(t, 0.0, s.Ambient)
	assert.Equal(t, 0.0, s.Point)
	assert.Equal(t, 0.0, s.Bloom)
}

func TestTurnTakesShortArc(t *testing.T) {
	tt := newTurnTween(3, -3, time.Second)
	mid := tt.advance(500 * time.Millisecond)
	assert.Greater(t, mid, 3.0)
	end := tt.advance(500 * time.Millisecond)
	assert.InDelta(t, 2*math.Pi-3, end, 1e-9)
	assert.True(t, tt.done())
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, time.Duration(0), Seconds(-1))
	assert.Equal(t, 1500*time.Millisecond, Seconds(1.5))
}

// heldSpeaker keeps every utterance open until the test finishes it.
type heldSpeaker struct{ pending map[string]func() }

func (h *heldSpeaker) Speak(text string, onDone func()) {
	if h.pending == nil {
		h.pending = make(map[string]func())
	}
	h.pending[text] = onDone
}

func (h *heldSpeaker) finish(text string) {
	if fn := h.pending[text]; fn != nil {
		delete(h.pending, text)
		fn()
	}
}
