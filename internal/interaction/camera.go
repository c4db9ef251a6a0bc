package interaction

import "math"

var worldUp = Vec3{0, 1, 0}

// Camera is a perspective view. Forward is unit length.
type Camera struct {
	Position Vec3
	Forward  Vec3
	FOV      float64 // vertical, degrees
	Aspect   float64
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target Vec3) {
	f := target.Sub(c.Position).Normalize()
	if f.Len() == 0 {
		return
	}
	c.Forward = f
}

func (c Camera) basis() (right, up Vec3) {
	right = c.Forward.Cross(worldUp).Normalize()
	if right.Len() == 0 {
		right = Vec3{1, 0, 0}
	}
	up = right.Cross(c.Forward).Normalize()
	return right, up
}

func (c Camera) halfExtents() (float64, float64) {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	h := math.Tan(c.FOV * math.Pi / 360)
	return h * aspect, h
}

// Ray returns the view ray through a point in normalized device
// coordinates; (0,0) is the screen centre.
func (c Camera) Ray(ndc Vec2) Ray {
	right, up := c.basis()
	hw, hh := c.halfExtents()
	dir := c.Forward.Add(right.Scale(ndc.X * hw)).Add(up.Scale(ndc.Y * hh))
	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}

// Project maps a world point to normalized device coordinates. ok is false
// for points behind the camera.
func (c Camera) Project(p Vec3) (ndc Vec2, depth float64, ok bool) {
	right, up := c.basis()
	rel := p.Sub(c.Position)
	depth = rel.Dot(c.Forward)
	if depth <= 0 {
		return Vec2{}, depth, false
	}
	hw, hh := c.halfExtents()
	return Vec2{rel.Dot(right) / depth / hw, rel.Dot(up) / depth / hh}, depth, true
}

// YawPitchForward converts look angles to a direction. Yaw zero looks down
// negative Z.
func YawPitchForward(yaw, pitch float64) Vec3 {
	cp := math.Cos(pitch)
	return Vec3{-math.Sin(yaw) * cp, math.Sin(pitch), -math.Cos(yaw) * cp}
}

// YawTowards returns the yaw that faces to from from, ignoring height.
func YawTowards(from, to Vec3) float64 {
	d := to.Sub(from)
	return math.Atan2(-d.X, -d.Z)
}
