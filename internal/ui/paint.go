package ui

import (
	"math"
	"sort"

	"github.com/kidandcat/heartquest/internal/interaction"
	"github.com/kidandcat/heartquest/internal/scene"
	"github.com/kidandcat/heartquest/internal/world"
)

type Shape int

const (
	Circle Shape = iota
	Rect
	Diamond
	Heart
)

// Sprite is one projected primitive, in canvas pixels.
type Sprite struct {
	Shape  Shape
	X, Y   float64
	W, H   float64
	Color  string
	Alpha  float64
	Glow   float64
	Label  string
	Stroke bool
	depth  float64
}

// Viewport maps normalized device coordinates to canvas pixels.
type Viewport struct {
	W, H float64
}

func (v Viewport) Aspect() float64 {
	if v.H <= 0 {
		return 1
	}
	return v.W / v.H
}

func (v Viewport) pixel(ndc interaction.Vec2) (float64, float64) {
	return (ndc.X + 1) / 2 * v.W, (1 - ndc.Y) / 2 * v.H
}

// scale is the pixel size of one world unit at depth.
func (v Viewport) scale(cam interaction.Camera, depth float64) float64 {
	return v.H / 2 / (depth * math.Tan(cam.FOV*math.Pi/360))
}

func (v Viewport) project(cam interaction.Camera, p interaction.Vec3) (x, y, s, depth float64, ok bool) {
	ndc, depth, ok := cam.Project(p)
	if !ok || math.Abs(ndc.X) > 1.5 || math.Abs(ndc.Y) > 1.5 {
		return 0, 0, 0, depth, false
	}
	x, y = v.pixel(ndc)
	return x, y, v.scale(cam, depth), depth, true
}

func (v Viewport) point(cam interaction.Camera, p interaction.Vec3, shape Shape, radius float64, color string) (Sprite, bool) {
	x, y, s, depth, ok := v.project(cam, p)
	if !ok {
		return Sprite{}, false
	}
	d := math.Max(radius*2*s, 1)
	return Sprite{Shape: shape, X: x, Y: y, W: d, H: d, Color: color, Alpha: 1, depth: depth}, true
}

func (v Viewport) box(cam interaction.Camera, b interaction.Box, color string) (Sprite, bool) {
	x, y, s, depth, ok := v.project(cam, b.Center)
	if !ok {
		return Sprite{}, false
	}
	w := math.Max(b.Size.X, b.Size.Z) * s
	h := b.Size.Y * s
	return Sprite{Shape: Rect, X: x, Y: y, W: w, H: h, Color: color, Alpha: 1, depth: depth}, true
}

// backToFront orders sprites so nearer ones paint last.
func backToFront(sprites []Sprite) []Sprite {
	sort.SliceStable(sprites, func(i, j int) bool { return sprites[i].depth > sprites[j].depth })
	return sprites
}

// OdysseySprites projects the starfield, crystals, guide and ring.
func OdysseySprites(vp Viewport, v scene.OdysseyView, stars []interaction.Vec3) []Sprite {
	var out []Sprite
	starColor := v.StarColor
	if starColor == "" {
		starColor = "#e0e0e0"
	}
	for _, st := range stars {
		if s, ok := vp.point(v.Camera, st, Circle, 0.15, starColor); ok {
			s.Alpha = 0.8
			out = append(out, s)
		}
	}
	for _, c := range v.Crystals {
		s, ok := vp.point(v.Camera, c.Position, Diamond, c.Radius, "#ffc0cb")
		if !ok {
			continue
		}
		s.Glow = v.Lights.Bloom * (1 + v.Pulse)
		if c.Aimed {
			s.Stroke = true
			s.Color = "#ffffff"
		}
		out = append(out, s)
	}
	if v.ShowGuide {
		if s, ok := vp.point(v.Camera, v.Guide, Heart, 0.4, "#ff69b4"); ok {
			s.Glow = 1
			out = append(out, s)
		}
	}
	if v.ShowRing {
		if s, ok := vp.point(v.Camera, v.Ring, Circle, 1, "#ffd700"); ok {
			s.Stroke = true
			s.Glow = v.Lights.Bloom
			out = append(out, s)
		}
	}
	return backToFront(out)
}

var itemColors = map[world.ItemKind]string{
	world.ItemTree: "#2e8b57",
	world.ItemLamp: "#fff4c2",
}

// CitySprites projects buildings, shops and the palace for the street
// view, or the castle interior when the player is inside.
func CitySprites(vp Viewport, v scene.CityView) []Sprite {
	if v.Castle != nil {
		return CastleSprites(vp, *v.Castle)
	}
	var out []Sprite
	for _, it := range v.Items {
		color := it.Color
		if c, ok := itemColors[it.Kind]; ok {
			color = c
		}
		if s, ok := vp.box(v.Camera, it.Box, color); ok {
			out = append(out, s)
		}
	}
	for _, sh := range v.Shops {
		s, ok := vp.box(v.Camera, sh.Box, sh.Color)
		if !ok {
			continue
		}
		s.Label = sh.Label
		if sh.Collected {
			s.Alpha = 0.4
		} else {
			s.Glow = v.Lights.Point * (1 + v.Pulse)
		}
		s.Stroke = sh.Aimed
		out = append(out, s)
	}
	palace := "#c9a0dc"
	if v.GatesOpen {
		palace = "#ffd1dc"
	}
	if s, ok := vp.box(v.Camera, v.Palace, palace); ok {
		s.Label = "Palace"
		s.Stroke = v.PalaceAimed
		s.Glow = v.Lights.Bloom
		out = append(out, s)
	}
	return backToFront(out)
}

func CastleSprites(vp Viewport, v scene.CastleView) []Sprite {
	var out []Sprite
	if v.HeartVisible {
		if s, ok := vp.point(v.Camera, v.Heart, Heart, 3.5*v.HeartScale, "#ff1493"); ok {
			s.Stroke = v.HeartAimed
			s.Glow = 2
			out = append(out, s)
		}
	}
	for _, p := range v.Particles {
		if s, ok := vp.point(v.Camera, p.Position, Heart, 0.3, "#ff69b4"); ok {
			out = append(out, s)
		}
	}
	return backToFront(out)
}

// MinimapMarker is a dot on the city minimap.
type MinimapMarker struct {
	X, Y  float64
	Color string
}

// MinimapMarkers lays out the palace, the memories and the player.
func MinimapMarkers(m scene.MapView) []MinimapMarker {
	out := []MinimapMarker{{X: m.Palace.X, Y: m.Palace.Y, Color: "#ffd700"}}
	for _, mm := range m.Memories {
		c := "#ff69b4"
		if mm.Collected {
			c = "#555555"
		}
		out = append(out, MinimapMarker{X: mm.Position.X, Y: mm.Position.Y, Color: c})
	}
	return append(out, MinimapMarker{X: m.Player.X, Y: m.Player.Y, Color: "#00bfff"})
}
