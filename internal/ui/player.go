package ui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/client"
	"github.com/kidandcat/heartquest/internal/interaction"
	"github.com/kidandcat/heartquest/internal/proposal"
	"github.com/kidandcat/heartquest/internal/scene"
	"github.com/kidandcat/heartquest/internal/session"
)

const (
	canvasID   = "scene-canvas"
	noButtonID = "no-button"
	// maxFrame caps dt after the tab was hidden.
	maxFrame = 100 * time.Millisecond
)

// Player hosts one scene at /odyssey/{token} or /city/{token}.
type Player struct {
	app.Compo

	world string
	token string
	err   string
	crash bool

	stage   stage
	speaker *client.Speaker
	keys    *interaction.KeyboardMouse
	touch   *interaction.Touch
	painter *painter
	view    hud

	raf     app.Func
	stopped atomic.Bool
	last    float64
	cleanup []func()

	noOffset interaction.Vec2
	noScale  float64
	touchAt  time.Time
}

func (p *Player) OnMount(ctx app.Context) {
	parts := strings.Split(strings.Trim(ctx.Page().URL().Path, "/"), "/")
	if len(parts) < 2 {
		ctx.Navigate("/")
		return
	}
	p.world, p.token = parts[0], parts[1]
	p.noScale = 1
	p.keys = interaction.NewKeyboardMouse()
	p.touch = interaction.NewTouch()

	var sound scene.Sound
	if env.NewSound != nil {
		sound = env.NewSound()
	}
	p.speaker = client.NewSpeaker(env.Client, env.Play)
	deps := scene.Deps{
		Store:    session.New(),
		Narrator: env.Client,
		Speaker:  p.speaker,
		Writer:   env.Client,
		Sound:    sound,
		Music:    env.Client.Music,
		Log:      env.Log.Named("scene").With(zap.String("world", p.world)),
		Go:       func(fn func()) { ctx.Async(fn) },
		Dispatch: func(fn func()) { ctx.Dispatch(func(app.Context) { fn() }) },
	}
	st, err := newStage(p.world, deps, interaction.Combined{p.keys, p.touch})
	if err != nil {
		env.Log.Error("scene failed to load", zap.Error(err))
		p.crash = true
		return
	}
	p.stage = st

	p.listen(ctx)
	p.startLoop(ctx)

	token := p.token
	ctrl := st.Controller()
	ctx.Async(func() {
		rctx, cancel := context.WithTimeout(context.Background(), client.Timeout)
		defer cancel()
		err := ctrl.Submit(rctx, &resolved, token)
		if err == nil {
			return
		}
		ctx.Dispatch(func(ctx app.Context) {
			switch {
			case errors.Is(err, proposal.ErrNotFound), errors.Is(err, proposal.ErrInvalidToken):
				p.err = "No proposal found for " + token + "."
			default:
				env.Log.Warn("resolve failed", zap.Error(err))
				p.err = "Could not load your journey. Check your connection and try again."
			}
		})
	})
}

func (p *Player) OnDismount() {
	p.stopped.Store(true)
	for _, fn := range p.cleanup {
		fn()
	}
	p.cleanup = nil
	if p.stage != nil {
		p.stage.Close()
	}
	if p.speaker != nil {
		p.speaker.Close()
	}
}

func (p *Player) listen(ctx app.Context) {
	win := app.Window()
	p.cleanup = append(p.cleanup,
		win.AddEventListener("keydown", func(ctx app.Context, e app.Event) {
			p.keys.KeyDown(e.Get("key").String())
		}),
		win.AddEventListener("keyup", func(ctx app.Context, e app.Event) {
			p.keys.KeyUp(e.Get("key").String())
		}),
		win.AddEventListener("blur", func(ctx app.Context, e app.Event) {
			p.keys.Release()
		}),
	)
}

func (p *Player) startLoop(ctx app.Context) {
	p.raf = app.FuncOf(func(this app.Value, args []app.Value) any {
		if p.stopped.Load() {
			p.raf.Release()
			return nil
		}
		ts := args[0].Float()
		ctx.Dispatch(func(ctx app.Context) { p.frame(ts) })
		app.Window().Call("requestAnimationFrame", p.raf)
		return nil
	})
	app.Window().Call("requestAnimationFrame", p.raf)
}

// frame ticks and paints. A panic ends the scene and shows the reload
// notice instead of leaving a frozen canvas.
func (p *Player) frame(ts float64) {
	if p.crash || p.stage == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			env.Log.Error("scene crashed", zap.Any("panic", r))
			p.crash = true
			p.stopped.Store(true)
			p.stage.Close()
		}
	}()

	dt := time.Duration(0)
	if p.last > 0 {
		dt = time.Duration((ts - p.last) * float64(time.Millisecond))
	}
	p.last = ts
	if dt > maxFrame {
		dt = maxFrame
	}

	p.keys.SetPointerLock(app.Window().Get("document").Get("pointerLockElement").Truthy())
	p.stage.Tick(dt)
	p.view = p.stage.hud()
	p.paint()
}

func (p *Player) paint() {
	if p.painter == nil {
		if p.painter = newPainter(canvasID); p.painter == nil {
			return
		}
	}
	vp := p.painter.fit()
	p.stage.setAspect(vp.Aspect())
	sprites, bg := p.stage.sprites(vp)
	p.painter.background(vp, bg.inner, bg.outer)
	p.painter.draw(sprites)
	if bg.crosshair {
		p.painter.crosshair(vp, bg.aimed)
	}
	if bg.minimap != nil {
		p.painter.minimap(vp, scene.MinimapSize, bg.minimap.Heading, MinimapMarkers(*bg.minimap))
	}
}

func windowSize() (float64, float64) {
	return app.Window().Get("innerWidth").Float(), app.Window().Get("innerHeight").Float()
}

func (p *Player) onPointerMove(ctx app.Context, e app.Event) {
	w, h := windowSize()
	ndc := interaction.ScreenToNDC(e.Get("clientX").Float(), e.Get("clientY").Float(), w, h)
	p.keys.PointerMove(ndc, e.Get("movementX").Float(), e.Get("movementY").Float())
}

func (p *Player) onClick(ctx app.Context, e app.Event) {
	if time.Since(p.touchAt) < 500*time.Millisecond {
		// Synthetic click after a touch; the tap was already delivered.
		return
	}
	if p.view.FirstPerson {
		if !app.Window().Get("document").Get("pointerLockElement").Truthy() {
			ctx.JSSrc().Call("requestPointerLock")
		}
		p.keys.Click(interaction.Vec2{})
		return
	}
	w, h := windowSize()
	p.keys.Click(interaction.ScreenToNDC(e.Get("clientX").Float(), e.Get("clientY").Float(), w, h))
}

func firstTouch(e app.Event) (float64, float64, bool) {
	touches := e.Get("changedTouches")
	if !touches.Truthy() || touches.Length() == 0 {
		return 0, 0, false
	}
	t := touches.Index(0)
	return t.Get("clientX").Float(), t.Get("clientY").Float(), true
}

// Touches on the left half drive the joystick, on the right half they look
// around. A short touch that barely moved is a tap.
func (p *Player) onTouchStart(ctx app.Context, e app.Event) {
	x, y, ok := firstTouch(e)
	if !ok {
		return
	}
	p.touchAt = time.Now()
	w, h := windowSize()
	if !p.view.FirstPerson {
		p.keys.Click(interaction.ScreenToNDC(x, y, w, h))
		return
	}
	if x < w/2 {
		p.touch.StickStart(x, y)
	} else {
		p.touch.LookStart(x, y)
	}
}

func (p *Player) onTouchMove(ctx app.Context, e app.Event) {
	x, y, ok := firstTouch(e)
	if !ok || !p.view.FirstPerson {
		return
	}
	e.PreventDefault()
	p.touch.StickMove(x, y)
	p.touch.LookMove(x, y)
}

func (p *Player) onTouchEnd(ctx app.Context, e app.Event) {
	if !p.view.FirstPerson {
		return
	}
	if time.Since(p.touchAt) < 250*time.Millisecond {
		p.touch.Tap()
	}
	p.touch.StickEnd()
	p.touch.LookEnd()
}

// dodge moves the No button away from the pointer.
func (p *Player) dodge(ctx app.Context, x, y float64) {
	el := app.Window().GetElementByID(noButtonID)
	if !el.Truthy() {
		return
	}
	r := el.Call("getBoundingClientRect")
	center := interaction.Vec2{
		X: r.Get("left").Float() + r.Get("width").Float()/2 - p.noOffset.X,
		Y: r.Get("top").Float() + r.Get("height").Float()/2 - p.noOffset.Y,
	}
	p.noOffset, p.noScale = scene.Evade(interaction.Vec2{X: x, Y: y}, center)
}
