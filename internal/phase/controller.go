// Package phase drives a playthrough from the first collected memory to the
// finale. The Controller owns the transition rules; scenes plug their
// cinematics in through Hooks.
package phase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/narration"
	"github.com/kidandcat/heartquest/internal/proposal"
	"github.com/kidandcat/heartquest/internal/session"
)

// Resolver looks a proposal up by token.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*proposal.Proposal, error)
}

// CollectedWriter persists the collected flag. Calls are fire-and-forget.
type CollectedWriter interface {
	SetCollected(ctx context.Context, memoryID string, collected bool) error
}

// Script holds the scene-specific lines.
type Script struct {
	Welcome func(partner string) string
	Reveal  string
	Finale  string
}

// Hooks are the scene side effects. All are optional.
type Hooks struct {
	// Bound runs when a proposal is attached, before play starts.
	Bound func(p *proposal.Proposal)
	// Enter runs after the store has moved to p.
	Enter func(p session.Phase)
	// Collected runs once per newly collected memory.
	Collected func(m proposal.Memory, count, total int)
}

type Config struct {
	Store    *session.Store
	Narrator narration.Generator
	Speaker  narration.Speaker
	Writer   CollectedWriter
	Script   Script
	Hooks    Hooks
	Log      *zap.Logger
	// Go runs blocking work off the frame loop. Defaults to a goroutine.
	Go func(func())
	// Dispatch runs fn back on the frame loop. Defaults to calling fn.
	Dispatch func(func())
}

type Controller struct {
	store    *session.Store
	narrator narration.Generator
	speaker  narration.Speaker
	writer   CollectedWriter
	script   Script
	hooks    Hooks
	log      *zap.Logger
	spawn    func(func())
	dispatch func(func())

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func New(cfg Config) *Controller {
	c := &Controller{
		store:    cfg.Store,
		narrator: cfg.Narrator,
		speaker:  cfg.Speaker,
		writer:   cfg.Writer,
		script:   cfg.Script,
		hooks:    cfg.Hooks,
		log:      cfg.Log,
		spawn:    cfg.Go,
		dispatch: cfg.Dispatch,
	}
	if c.store == nil {
		c.store = session.New()
	}
	if c.speaker == nil {
		c.speaker = narration.Silent{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.spawn == nil {
		c.spawn = func(fn func()) { go fn() }
	}
	if c.dispatch == nil {
		c.dispatch = func(fn func()) { fn() }
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

func (c *Controller) Store() *session.Store { return c.store }

// SetHooks replaces the scene hooks. Scenes call it once while mounting.
func (c *Controller) SetHooks(h Hooks) { c.hooks = h }

// Submit resolves token and binds the result on the frame loop. It blocks,
// so call it from a goroutine. A lookup failure leaves the store untouched
// so the entry screen can retry.
func (c *Controller) Submit(ctx context.Context, r Resolver, token string) error {
	c.store.SetLoading(true)
	p, err := r.Resolve(ctx, token)
	if err != nil {
		c.store.SetLoading(false)
		if errors.Is(err, proposal.ErrNotFound) || errors.Is(err, proposal.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("resolve token: %w", err)
	}
	done := make(chan struct{})
	c.dispatch(func() {
		c.Bind(p)
		close(done)
	})
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Bind attaches p to the session and starts play.
func (c *Controller) Bind(p *proposal.Proposal) {
	if p == nil {
		return
	}
	if c.store.Phase() != session.PhaseLoading && c.store.Phase() != session.PhaseEntry {
		return
	}
	c.store.SetProposal(p)
	if c.hooks.Bound != nil {
		c.hooks.Bound(p)
	}
	c.store.SetLoading(false)
	if !c.store.Advance(session.PhasePlaying) {
		return
	}
	c.log.Info("playthrough started",
		zap.String("proposal", p.ID),
		zap.Int("memories", len(p.Memories)))
	if c.script.Welcome != nil {
		c.Say(c.script.Welcome(p.PartnerName), nil)
	}
	c.enter(session.PhasePlaying)
}

// Collect handles an activation of memory id. It returns true when the
// memory was newly collected. Repeats and activations outside PLAYING are
// ignored.
func (c *Controller) Collect(id string) bool {
	if c.closed || c.store.Phase() != session.PhasePlaying {
		return false
	}
	if !c.store.MarkCollected(id) {
		return false
	}
	p := c.store.Proposal()
	m, _ := p.Memory(id)
	count, total := c.store.CollectedCount(), c.store.TotalMemories()

	c.store.SetNarrative(narration.CollectedLine(m.OrderIndex))
	if c.hooks.Collected != nil {
		c.hooks.Collected(m, count, total)
	}
	c.persist(id)
	c.narrate(m.CaptionText, p.PartnerName)

	if count == total {
		c.transition(session.PhaseReveal)
	}
	return true
}

func (c *Controller) persist(id string) {
	if c.writer == nil {
		return
	}
	ctx := c.ctx
	c.spawn(func() {
		if err := c.writer.SetCollected(ctx, id, true); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn("persist collected flag", zap.String("memory", id), zap.Error(err))
		}
	})
}

func (c *Controller) narrate(caption, partner string) {
	ctx := c.ctx
	c.spawn(func() {
		text := ""
		if c.narrator != nil {
			var err error
			text, err = c.narrator.Generate(ctx, caption, partner)
			if err != nil {
				c.log.Warn("narration failed, using fallback", zap.Error(err))
				text = ""
			}
		}
		if text == "" {
			text = narration.Fallback(caption)
		}
		c.dispatch(func() {
			// Late results still replace the display string; only the
			// playing phase speaks them.
			if c.closed {
				return
			}
			c.store.SetNarrative(text)
			if c.store.Phase() == session.PhasePlaying {
				c.speaker.Speak(text, nil)
			}
		})
	})
}

// Say shows text and speaks it. onDone runs once speech ends, or at once
// when speech is unavailable.
func (c *Controller) Say(text string, onDone func()) {
	c.store.SetNarrative(text)
	c.speaker.Speak(text, func() {
		if onDone == nil {
			return
		}
		c.dispatch(func() {
			if !c.closed {
				onDone()
			}
		})
	})
}

// SayReveal speaks the scene's reveal line.
func (c *Controller) SayReveal(onDone func()) {
	c.Say(c.script.Reveal, onDone)
}

// RevealComplete is signalled by the scene once its reveal cinematic and
// narration have finished.
func (c *Controller) RevealComplete() bool {
	if c.closed || c.store.Phase() != session.PhaseReveal {
		return false
	}
	c.transition(session.PhaseProposal)
	return true
}

// Accept handles the Yes button.
func (c *Controller) Accept() bool {
	if c.closed || c.store.Phase() != session.PhaseProposal {
		return false
	}
	c.transition(session.PhaseFinale)
	if c.script.Finale != "" {
		c.Say(c.script.Finale, nil)
	}
	return true
}

func (c *Controller) transition(p session.Phase) {
	if !c.store.Advance(p) {
		return
	}
	c.log.Info("phase changed", zap.String("phase", string(p)))
	c.enter(p)
}

// enter runs the scene hook without letting a panicking scene abort the
// transition that already happened.
func (c *Controller) enter(p session.Phase) {
	if c.hooks.Enter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("phase hook panicked", zap.String("phase", string(p)), zap.Any("panic", r))
		}
	}()
	c.hooks.Enter(p)
}

// Close cancels in-flight narration and writes. Results arriving later are
// dropped.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
}
