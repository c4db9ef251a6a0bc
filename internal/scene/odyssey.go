package scene

import (
	"time"

	"github.com/kidandcat/heartquest/internal/interaction"
	"github.com/kidandcat/heartquest/internal/narration"
	"github.com/kidandcat/heartquest/internal/phase"
	"github.com/kidandcat/heartquest/internal/proposal"
	"github.com/kidandcat/heartquest/internal/sequence"
	"github.com/kidandcat/heartquest/internal/session"
	"github.com/kidandcat/heartquest/internal/world"
)

const (
	revealCameraTime = 4 * time.Second
)

type CrystalView struct {
	ID       string
	Order    int
	Position interaction.Vec3
	Radius   float64
	Aimed    bool
}

// OdysseyView is what the renderer draws for one frame.
type OdysseyView struct {
	Waiting     bool
	Phase       session.Phase
	Narrative   string
	Collected   int
	Total       int
	PartnerName string
	Question    string
	NebulaColor string
	StarColor   string
	Camera      interaction.Camera
	Crystals    []CrystalView
	Lights      Lights
	Pulse       float64
	Active      *proposal.Memory
	ShowGuide   bool
	Guide       interaction.Vec3
	ShowRing    bool
	Ring        interaction.Vec3
}

// Odyssey is the starfield scene: crystals float in a cube around a
// pointer-driven camera.
type Odyssey struct {
	layout *world.Odyssey
	deps   Deps
	ctrl   *phase.Controller
	reg    *interaction.Registry
	layer  *interaction.FreeRoam
	input  interaction.Input
	lights *LightRig
	music  *music

	crystals []CrystalView
	stars    []interaction.Vec3
	reveal   *sequence.Runner
	camera   *moveTween
	active   *proposal.Memory
	closed   bool
}

func NewOdyssey(layout *world.Odyssey, d Deps, in interaction.Input) *Odyssey {
	d.defaults()
	o := &Odyssey{
		layout: layout,
		deps:   d,
		reg:    interaction.NewRegistry(),
		input:  in,
		lights: NewLightRig(),
		music:  newMusic(d),
	}
	o.ctrl = d.controller(phase.Script{
		Welcome: narration.OdysseyWelcome,
		Reveal:  narration.OdysseyReveal,
		Finale:  narration.OdysseyFinale,
	})
	o.ctrl.SetHooks(phase.Hooks{Bound: o.bound, Enter: o.enter, Collected: o.collected})
	o.layer = interaction.NewFreeRoam(interaction.FreeRoamConfig{
		Start:   layout.Camera.Start.Vec(),
		Reach:   layout.Camera.Reach,
		Damping: layout.Camera.Damping,
		Focus:   layout.Camera.Focus.Vec(),
		FOV:     layout.Camera.FOV,
		Aspect:  16.0 / 9.0,
	}, o.reg)
	o.layer.Disable()
	o.layer.OnActivate(o.activate)
	return o
}

func (o *Odyssey) Controller() *phase.Controller { return o.ctrl }

func (o *Odyssey) Layer() *interaction.FreeRoam { return o.layer }

// Start plays the proposal already in the store. Without one it returns
// false and the scene stays in its waiting state.
func (o *Odyssey) Start() bool {
	p := o.deps.Store.Proposal()
	if p == nil {
		return false
	}
	o.ctrl.Bind(p)
	return true
}

func (o *Odyssey) bound(p *proposal.Proposal) {
	seed := world.Seed(p.ID)
	positions := o.layout.Crystals(seed, len(p.Memories))
	o.crystals = o.crystals[:0]
	for i, m := range p.Memories {
		o.reg.Register(interaction.Landmark{
			ID:    m.ID,
			Kind:  interaction.KindMemory,
			Label: narration.CollectedLine(m.OrderIndex),
			Shape: interaction.Sphere{Center: positions[i], Radius: o.layout.Crystal.Radius},
		})
		o.crystals = append(o.crystals, CrystalView{
			ID:       m.ID,
			Order:    m.OrderIndex,
			Position: positions[i],
			Radius:   o.layout.Crystal.Radius,
		})
	}
	o.stars = o.layout.Starfield(seed, o.layout.Stars.Count)
	o.music.play(p.MusicURL, Seconds(p.MusicStartTime), true)
}

func (o *Odyssey) activate(l interaction.Landmark) {
	if l.Kind == interaction.KindMemory {
		o.ctrl.Collect(l.ID)
	}
}

func (o *Odyssey) collected(m proposal.Memory, _, _ int) {
	o.reg.SetHidden(m.ID, true)
	o.lights.Flash()
	if o.deps.Sound != nil {
		o.deps.Sound.Chime()
	}
	o.active = &m
	o.layer.Disable()
}

func (o *Odyssey) enter(p session.Phase) {
	o.lights.Enter(p)
	switch p {
	case session.PhasePlaying:
		o.layer.Enable()
	case session.PhaseReveal:
		o.layer.Disable()
		o.reveal = sequence.New(
			sequence.Step{At: 0, Name: "camera", Do: func() {
				o.camera = newMoveTween(o.layer.Position(), o.layout.Camera.RevealPosition.Vec(), revealCameraTime, sequence.Power2InOut)
			}},
			sequence.Step{At: revealCameraTime, Name: "narrate", Wait: func(resume func()) {
				o.ctrl.SayReveal(resume)
			}},
		).OnDone(func() { o.ctrl.RevealComplete() })
		o.reveal.Start()
	case session.PhaseFinale:
		o.active = nil
		o.layer.Enable()
	}
}

// CloseMemory dismisses the memory frame and hands control back.
func (o *Odyssey) CloseMemory() {
	o.active = nil
	switch o.deps.Store.Phase() {
	case session.PhasePlaying, session.PhaseFinale:
		o.layer.Enable()
	}
}

// Accept is the Yes button.
func (o *Odyssey) Accept() bool { return o.ctrl.Accept() }

func (o *Odyssey) Tick(dt time.Duration) {
	if o.closed {
		return
	}
	o.layer.Tick(dt, o.input)
	if o.reveal != nil {
		o.reveal.Advance(dt)
	}
	if o.camera != nil {
		o.layer.SetPosition(o.camera.advance(dt))
		if o.camera.done() {
			o.camera = nil
		}
	}
	o.lights.Advance(dt)
	if o.deps.Sound != nil {
		o.deps.Sound.Advance(dt)
	}
}

// Stars are fixed for the life of the scene.
func (o *Odyssey) Stars() []interaction.Vec3 { return o.stars }

func (o *Odyssey) View() OdysseyView {
	store := o.deps.Store
	p := store.Proposal()
	v := OdysseyView{
		Waiting:   p == nil,
		Phase:     store.Phase(),
		Narrative: store.Narrative(),
		Collected: store.CollectedCount(),
		Total:     store.TotalMemories(),
		Camera:    o.layer.Camera(),
		Lights:    o.lights.State(),
		Active:    o.active,
	}
	if p == nil {
		return v
	}
	v.PartnerName = p.PartnerName
	v.Question = p.QuestionText()
	v.NebulaColor = p.NebulaColor
	v.StarColor = p.StarColor
	if o.deps.Sound != nil {
		v.Pulse = o.deps.Sound.Pulse()
	}
	if v.Phase == session.PhasePlaying {
		aimed := o.layer.Aimed()
		for _, c := range o.crystals {
			if store.IsCollected(c.ID) {
				continue
			}
			c.Aimed = c.ID == aimed
			v.Crystals = append(v.Crystals, c)
		}
		v.ShowGuide = true
		v.Guide = v.Camera.Position.Add(o.layout.GuideOffset.Vec())
	}
	if v.Phase == session.PhaseProposal {
		v.ShowRing = true
		v.Ring = o.layout.RingPosition.Vec()
	}
	return v
}

// Close stops sequences, narration and audio. The scene is inert after.
func (o *Odyssey) Close() {
	if o.closed {
		return
	}
	o.closed = true
	if o.reveal != nil {
		o.reveal.Cancel()
	}
	o.ctrl.Close()
	o.music.close()
	if o.deps.Sound != nil {
		o.deps.Sound.Close()
	}
}
