package ui

import (
	"math"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// painter draws sprites on a 2D canvas element.
type painter struct {
	canvas app.Value
	ctx    app.Value
}

func newPainter(id string) *painter {
	el := app.Window().GetElementByID(id)
	if !el.Truthy() {
		return nil
	}
	return &painter{canvas: el, ctx: el.Call("getContext", "2d")}
}

// fit sizes the canvas backing store to the window and returns the
// viewport.
func (p *painter) fit() Viewport {
	w := app.Window().Get("innerWidth").Float()
	h := app.Window().Get("innerHeight").Float()
	if p.canvas.Get("width").Float() != w {
		p.canvas.Set("width", w)
	}
	if p.canvas.Get("height").Float() != h {
		p.canvas.Set("height", h)
	}
	return Viewport{W: w, H: h}
}

func (p *painter) background(vp Viewport, inner, outer string) {
	g := p.ctx.Call("createRadialGradient", vp.W/2, vp.H/2, 0, vp.W/2, vp.H/2, math.Max(vp.W, vp.H)/1.2)
	g.Call("addColorStop", 0, inner)
	g.Call("addColorStop", 1, outer)
	p.ctx.Set("fillStyle", g)
	p.ctx.Call("fillRect", 0, 0, vp.W, vp.H)
}

func (p *painter) draw(sprites []Sprite) {
	c := p.ctx
	for _, s := range sprites {
		c.Call("save")
		c.Set("globalAlpha", s.Alpha)
		c.Set("fillStyle", s.Color)
		c.Set("shadowColor", s.Color)
		c.Set("shadowBlur", s.Glow*12)
		c.Call("beginPath")
		switch s.Shape {
		case Circle:
			c.Call("arc", s.X, s.Y, s.W/2, 0, 2*math.Pi)
		case Rect:
			c.Call("rect", s.X-s.W/2, s.Y-s.H/2, s.W, s.H)
		case Diamond:
			c.Call("moveTo", s.X, s.Y-s.H/2)
			c.Call("lineTo", s.X+s.W/3, s.Y)
			c.Call("lineTo", s.X, s.Y+s.H/2)
			c.Call("lineTo", s.X-s.W/3, s.Y)
			c.Call("closePath")
		case Heart:
			r := s.W / 2
			c.Call("moveTo", s.X, s.Y+r*0.7)
			c.Call("bezierCurveTo", s.X-r*1.2, s.Y-r*0.2, s.X-r*0.5, s.Y-r, s.X, s.Y-r*0.4)
			c.Call("bezierCurveTo", s.X+r*0.5, s.Y-r, s.X+r*1.2, s.Y-r*0.2, s.X, s.Y+r*0.7)
		}
		c.Call("fill")
		if s.Stroke {
			c.Set("strokeStyle", "#ffffff")
			c.Set("lineWidth", 3)
			c.Call("stroke")
		}
		if s.Label != "" && s.W > 40 {
			c.Set("shadowBlur", 0)
			c.Set("globalAlpha", 1)
			c.Set("fillStyle", "#ffffff")
			c.Set("font", "bold 14px sans-serif")
			c.Set("textAlign", "center")
			c.Call("fillText", s.Label, s.X, s.Y-s.H/2-8)
		}
		c.Call("restore")
	}
}

func (p *painter) crosshair(vp Viewport, aimed bool) {
	c := p.ctx
	color := "rgba(255,255,255,0.6)"
	if aimed {
		color = "#ff69b4"
	}
	c.Set("strokeStyle", color)
	c.Set("lineWidth", 2)
	c.Call("beginPath")
	c.Call("arc", vp.W/2, vp.H/2, 6, 0, 2*math.Pi)
	c.Call("stroke")
}

// minimap draws markers in a square of size pixels at the top right.
func (p *painter) minimap(vp Viewport, size float64, heading float64, markers []MinimapMarker) {
	c := p.ctx
	x0, y0 := vp.W-size-16, 16.0
	c.Call("save")
	c.Set("globalAlpha", 0.8)
	c.Set("fillStyle", "#1a0b2e")
	c.Call("fillRect", x0, y0, size, size)
	c.Set("globalAlpha", 1)
	for i, m := range markers {
		c.Set("fillStyle", m.Color)
		c.Call("beginPath")
		if i == len(markers)-1 {
			// Player arrow.
			c.Call("moveTo", x0+m.X+math.Sin(heading)*8, y0+m.Y+math.Cos(heading)*8)
			c.Call("lineTo", x0+m.X+math.Sin(heading+2.5)*6, y0+m.Y+math.Cos(heading+2.5)*6)
			c.Call("lineTo", x0+m.X+math.Sin(heading-2.5)*6, y0+m.Y+math.Cos(heading-2.5)*6)
			c.Call("closePath")
		} else {
			c.Call("arc", x0+m.X, y0+m.Y, 4, 0, 2*math.Pi)
		}
		c.Call("fill")
	}
	c.Call("restore")
}
