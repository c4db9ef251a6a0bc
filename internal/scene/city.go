package scene

import (
	"fmt"
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
	PalaceID = "palace"

	MinimapSize = 220
	turnTime    = 2 * time.Second
)

type ShopView struct {
	ID        string
	Label     string
	Color     string
	Box       interaction.Box
	Collected bool
	Aimed     bool
}

type MapMarker struct {
	Position  interaction.Vec2
	Collected bool
}

type MapView struct {
	Player   interaction.Vec2
	Heading  float64
	Palace   interaction.Vec2
	Memories []MapMarker
}

// CityView is what the renderer draws for one frame.
type CityView struct {
	Waiting     bool
	Phase       session.Phase
	Narrative   string
	Collected   int
	Total       int
	PartnerName string
	Question    string
	Camera      interaction.Camera
	Items       []world.Item
	Shops       []ShopView
	Palace      interaction.Box
	PalaceAimed bool
	GatesOpen   bool
	Map         MapView
	Lights      Lights
	Pulse       float64
	Active      *proposal.Memory
	Castle      *CastleView
}

// City is the walkable love city. Memories live in shops along the
// avenue; the palace at the centre opens once all are collected.
type City struct {
	layout  *world.City
	deps    Deps
	ctrl    *phase.Controller
	reg     *interaction.Registry
	layer   *interaction.FirstPerson
	input   interaction.Input
	lights  *LightRig
	music   *music
	minimap world.Minimap

	items  []world.Item
	shops  []ShopView
	turn   *turnTween
	reveal *sequence.Runner
	castle *Castle
	active *proposal.Memory
	closed bool
}

func NewCity(layout *world.City, d Deps, in interaction.Input) *City {
	d.defaults()
	c := &City{
		layout:  layout,
		deps:    d,
		reg:     interaction.NewRegistry(),
		input:   in,
		lights:  NewLightRig(),
		music:   newMusic(d),
		minimap: world.NewMinimap(MinimapSize, layout.Bounds.Max[0]-layout.Bounds.Min[0]),
	}
	c.ctrl = d.controller(phase.Script{
		Welcome: narration.CityWelcome,
		Reveal:  narration.CityReveal,
		Finale:  narration.CityFinale,
	})
	c.ctrl.SetHooks(phase.Hooks{Bound: c.bound, Enter: c.enter, Collected: c.collected})
	c.layer = interaction.NewFirstPerson(interaction.FirstPersonConfig{
		Mover:    layout.MoverConfig(),
		Start:    layout.Player.Start.Vec(),
		StartYaw: layout.Player.Yaw,
		AimRange: layout.Player.AimRange,
		FOV:      layout.Player.FOV,
		Aspect:   16.0 / 9.0,
	}, c.reg)
	c.layer.Disable()
	c.layer.OnActivate(c.activate)
	return c
}

func (c *City) Controller() *phase.Controller { return c.ctrl }

func (c *City) Layer() *interaction.FirstPerson { return c.layer }

// Castle is the palace interior while the player is inside, else nil.
func (c *City) Castle() *Castle { return c.castle }

// Start plays the proposal already in the store. Without one it returns
// false and the scene stays in its waiting state.
func (c *City) Start() bool {
	p := c.deps.Store.Proposal()
	if p == nil {
		return false
	}
	c.ctrl.Bind(p)
	return true
}

func (c *City) bound(p *proposal.Proposal) {
	inUse := len(p.Memories)
	if inUse > len(c.layout.Shops) {
		inUse = len(c.layout.Shops)
	}
	c.items = c.layout.Generate(world.Seed(p.ID), inUse)

	solid := world.Buildings(c.items)
	c.shops = c.shops[:0]
	for i, m := range p.Memories {
		shop := c.layout.Slot(i)
		box := shop.Box()
		c.reg.Register(interaction.Landmark{
			ID:    m.ID,
			Kind:  interaction.KindMemory,
			Label: shop.Label,
			Shape: box,
		})
		c.shops = append(c.shops, ShopView{ID: m.ID, Label: shop.Label, Color: shop.Color, Box: box})
		if i < inUse {
			solid = append(solid, box)
		}
	}
	palace := c.layout.PalaceBox()
	c.reg.Register(interaction.Landmark{ID: PalaceID, Kind: interaction.KindPalace, Label: "Love Palace", Shape: palace})
	solid = append(solid, palace)
	c.layer.SetBuildings(solid)
}

func (c *City) activate(l interaction.Landmark) {
	switch l.Kind {
	case interaction.KindMemory:
		c.ctrl.Collect(l.ID)
	case interaction.KindPalace:
		c.knock()
	}
}

// knock handles a click on the palace.
func (c *City) knock() {
	store := c.deps.Store
	switch store.Phase() {
	case session.PhasePlaying:
		left := store.TotalMemories() - store.CollectedCount()
		c.ctrl.Say(fmt.Sprintf("The palace gates are sealed. %d memories still wait in the city.", left), nil)
	case session.PhaseReveal, session.PhaseProposal:
		c.enterCastle()
	}
}

func (c *City) collected(m proposal.Memory, _, _ int) {
	// Wrapped slots share a box with an earlier memory; hiding the
	// collected one lets the next take aim.
	c.reg.SetHidden(m.ID, true)
	c.lights.Flash()
	if c.deps.Sound != nil {
		c.deps.Sound.Chime()
	}
	c.active = &m
	c.layer.Disable()
}

func (c *City) enter(p session.Phase) {
	switch p {
	case session.PhasePlaying:
		c.lights.Enter(p)
		c.layer.Enable()
	case session.PhaseReveal:
		c.lights.Enter(p)
		c.ctrl.SayReveal(nil)
		c.layer.Disable()
		mover := c.layer.Mover()
		c.reveal = sequence.New(
			sequence.Step{At: 0, Name: "face palace", Do: func() {
				target := interaction.YawTowards(mover.Position(), c.layout.Palace.Position.Vec())
				c.turn = newTurnTween(mover.Yaw(), target, turnTime)
			}},
			sequence.Step{At: turnTime, Name: "release", Do: func() {
				if c.active == nil && c.castle == nil {
					c.layer.Enable()
				}
			}},
		)
		c.reveal.Start()
	case session.PhaseProposal:
		c.lights.Enter(p)
	case session.PhaseFinale:
		c.lights.Enter(p)
		c.exitCastle()
	}
}

func (c *City) enterCastle() {
	if c.castle != nil {
		return
	}
	p := c.deps.Store.Proposal()
	c.layer.Disable()
	c.castle = newCastle(castleConfig{
		ProposalText: p.QuestionText(),
		MusicURL:     p.MusicURL,
		MusicStart:   Seconds(p.MusicStartTime),
		VideoURL:     p.VideoURL,
		Seed:         world.Seed(p.ID),
		OnComplete:   func() { c.ctrl.RevealComplete() },
	}, c.music)
}

// ExitCastle leaves the palace without finishing the cutscene.
func (c *City) ExitCastle() { c.exitCastle() }

func (c *City) exitCastle() {
	if c.castle == nil {
		return
	}
	c.castle.close()
	c.castle = nil
	if c.active == nil {
		c.layer.Enable()
	}
}

// CloseMemory dismisses the memory frame and hands control back.
func (c *City) CloseMemory() {
	c.active = nil
	if c.castle != nil || (c.reveal != nil && c.reveal.Active()) {
		return
	}
	c.layer.Enable()
}

// Accept is the Yes button.
func (c *City) Accept() bool { return c.ctrl.Accept() }

func (c *City) Tick(dt time.Duration) {
	if c.closed {
		return
	}
	if c.castle != nil {
		c.castle.tick(dt, c.input)
	} else {
		c.layer.Tick(dt, c.input)
	}
	if c.reveal != nil {
		c.reveal.Advance(dt)
	}
	if c.turn != nil {
		mover := c.layer.Mover()
		mover.Teleport(mover.Position(), c.turn.advance(dt))
		if c.turn.done() {
			c.turn = nil
		}
	}
	c.lights.Advance(dt)
	if c.deps.Sound != nil {
		c.deps.Sound.Advance(dt)
	}
}

func (c *City) View() CityView {
	store := c.deps.Store
	p := store.Proposal()
	v := CityView{
		Waiting:   p == nil,
		Phase:     store.Phase(),
		Narrative: store.Narrative(),
		Collected: store.CollectedCount(),
		Total:     store.TotalMemories(),
		Camera:    c.layer.Camera(),
		Lights:    c.lights.State(),
		Active:    c.active,
		Palace:    c.layout.PalaceBox(),
		GatesOpen: !store.Phase().Before(session.PhaseReveal),
	}
	if p == nil {
		return v
	}
	v.PartnerName = p.PartnerName
	v.Question = p.QuestionText()
	v.Items = c.items
	if c.deps.Sound != nil {
		v.Pulse = c.deps.Sound.Pulse()
	}
	aimed := c.layer.Aimed()
	v.PalaceAimed = aimed == PalaceID
	for _, s := range c.shops {
		s.Collected = store.IsCollected(s.ID)
		s.Aimed = s.ID == aimed
		v.Shops = append(v.Shops, s)
		v.Map.Memories = append(v.Map.Memories, MapMarker{
			Position:  c.minimap.Point(s.Box.Center),
			Collected: s.Collected,
		})
	}
	v.Map.Player = c.minimap.Point(v.Camera.Position)
	v.Map.Heading = world.Heading(v.Camera.Forward)
	v.Map.Palace = c.minimap.Point(c.layout.Palace.Position.Vec())
	if c.castle != nil {
		cv := c.castle.view()
		v.Castle = &cv
	}
	return v
}

// Close stops sequences, narration and audio. The scene is inert after.
func (c *City) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.reveal != nil {
		c.reveal.Cancel()
	}
	if c.castle != nil {
		c.castle.close()
	}
	c.ctrl.Close()
	c.music.close()
	if c.deps.Sound != nil {
		c.deps.Sound.Close()
	}
}
