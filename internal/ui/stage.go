package ui

import (
	"time"

	"github.com/kidandcat/heartquest/internal/interaction"
	"github.com/kidandcat/heartquest/internal/phase"
	"github.com/kidandcat/heartquest/internal/proposal"
	"github.com/kidandcat/heartquest/internal/scene"
	"github.com/kidandcat/heartquest/internal/session"
	"github.com/kidandcat/heartquest/internal/world"
)

const (
	WorldOdyssey = "odyssey"
	WorldCity    = "city"
)

// hud is the DOM-side state of a frame. Everything else goes to the canvas.
type hud struct {
	Waiting     bool
	Phase       session.Phase
	Narrative   string
	Collected   int
	Total       int
	PartnerName string
	Question    string
	Active      *proposal.Memory
	FirstPerson bool
	Castle      *scene.CastleView
}

// stage is a playable scene as the player drives it.
type stage interface {
	Controller() *phase.Controller
	Tick(dt time.Duration)
	Accept() bool
	CloseMemory()
	Close()
	setAspect(a float64)
	sprites(vp Viewport) ([]Sprite, background)
	hud() hud
}

type background struct {
	inner, outer string
	crosshair    bool
	aimed        bool
	minimap      *scene.MapView
}

type odysseyStage struct {
	*scene.Odyssey
}

func newOdysseyStage(d scene.Deps, in interaction.Input) (*odysseyStage, error) {
	layout, err := world.LoadOdyssey()
	if err != nil {
		return nil, err
	}
	return &odysseyStage{scene.NewOdyssey(layout, d, in)}, nil
}

func (s *odysseyStage) setAspect(a float64) { s.Layer().SetAspect(a) }

func (s *odysseyStage) sprites(vp Viewport) ([]Sprite, background) {
	v := s.View()
	nebula := v.NebulaColor
	if nebula == "" {
		nebula = proposal.DefaultNebulaColor
	}
	return OdysseySprites(vp, v, s.Stars()), background{inner: nebula, outer: "#000000"}
}

func (s *odysseyStage) hud() hud {
	v := s.View()
	return hud{
		Waiting:     v.Waiting,
		Phase:       v.Phase,
		Narrative:   v.Narrative,
		Collected:   v.Collected,
		Total:       v.Total,
		PartnerName: v.PartnerName,
		Question:    v.Question,
		Active:      v.Active,
	}
}

type cityStage struct {
	*scene.City
}

func newCityStage(d scene.Deps, in interaction.Input) (*cityStage, error) {
	layout, err := world.LoadCity()
	if err != nil {
		return nil, err
	}
	return &cityStage{scene.NewCity(layout, d, in)}, nil
}

func (s *cityStage) setAspect(a float64) {
	s.Layer().SetAspect(a)
	if c := s.Castle(); c != nil {
		c.Layer().SetAspect(a)
	}
}

func (s *cityStage) sprites(vp Viewport) ([]Sprite, background) {
	v := s.View()
	bg := background{inner: "#ffb6c1", outer: "#4b2e83", crosshair: true}
	if v.Castle != nil {
		bg.inner, bg.outer = "#3d0a24", "#0a0005"
		bg.aimed = v.Castle.HeartAimed
	} else {
		bg.aimed = v.PalaceAimed
		for _, sh := range v.Shops {
			bg.aimed = bg.aimed || sh.Aimed
		}
		m := v.Map
		bg.minimap = &m
	}
	return CitySprites(vp, v), bg
}

func (s *cityStage) hud() hud {
	v := s.View()
	return hud{
		Waiting:     v.Waiting,
		Phase:       v.Phase,
		Narrative:   v.Narrative,
		Collected:   v.Collected,
		Total:       v.Total,
		PartnerName: v.PartnerName,
		Question:    v.Question,
		Active:      v.Active,
		FirstPerson: true,
		Castle:      v.Castle,
	}
}

// newStage builds the scene for a world name.
func newStage(name string, d scene.Deps, in interaction.Input) (stage, error) {
	if name == WorldCity {
		s, err := newCityStage(d, in)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := newOdysseyStage(d, in)
	if err != nil {
		return nil, err
	}
	return s, nil
}
