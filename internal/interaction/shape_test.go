package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxIntersect(t *testing.T) {
	b := Box{Center: Vec3{0, 0, -10}, Size: Vec3{2, 2, 2}}

	d, ok := b.Intersect(Ray{Origin: Vec3{}, Dir: Vec3{0, 0, -1}})
	assert.True(t, ok)
	assert.InDelta(t, 9, d, 1e-9)

	_, ok = b.Intersect(Ray{Origin: Vec3{}, Dir: Vec3{0, 0, 1}})
	assert.False(t, ok, "behind the ray")

	_, ok = b.Intersect(Ray{Origin: Vec3{5, 0, 0}, Dir: Vec3{0, 0, -1}})
	assert.False(t, ok, "parallel miss")

	d, ok = b.Intersect(Ray{Origin: Vec3{0, 0, -10}, Dir: Vec3{1, 0, 0}})
	assert.True(t, ok)
	assert.Equal(t, 0.0, d, "inside")
}

func TestBoxContainsXZIsStrict(t *testing.T) {
	b := Box{Center: Vec3{0, 0, 0}, Size: Vec3{2, 2, 2}}.Expand(1.5)
	assert.True(t, b.ContainsXZ(Vec3{2.4, 100, 0}), "height is ignored")
	assert.False(t, b.ContainsXZ(Vec3{2.5, 0, 0}), "edge is outside")
}

func TestSphereIntersect(t *testing.T) {
	s := Sphere{Center: Vec3{0, 0, -10}, Radius: 1.5}
	d, ok := s.Intersect(Ray{Origin: Vec3{}, Dir: Vec3{0, 0, -1}})
	assert.True(t, ok)
	assert.InDelta(t, 8.5, d, 1e-9)

	_, ok = s.Intersect(Ray{Origin: Vec3{0, 3, 0}, Dir: Vec3{0, 0, -1}})
	assert.False(t, ok)
}

func TestRegistryRaycast(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Landmark{ID: "near", Shape: Sphere{Center: Vec3{0, 0, -5}, Radius: 1}})
	reg.Register(Landmark{ID: "far", Shape: Sphere{Center: Vec3{0, 0, -30}, Radius: 1}})
	ray := Ray{Dir: Vec3{0, 0, -1}}

	hit, ok := reg.Raycast(ray, 20, nil)
	assert.True(t, ok)
	assert.Equal(t, "near", hit.Landmark.ID)

	reg.SetHidden("near", true)
	_, ok = reg.Raycast(ray, 20, nil)
	assert.False(t, ok, "far is out of range")

	hit, ok = reg.Raycast(ray, 0, nil)
	assert.True(t, ok)
	assert.Equal(t, "far", hit.Landmark.ID)

	wall := Box{Center: Vec3{0, 0, -15}, Size: Vec3{10, 10, 1}}
	_, ok = reg.Raycast(ray, 0, []Box{wall})
	assert.False(t, ok, "occluded")

	reg.SetHidden("near", false)
	hit, ok = reg.Raycast(ray, 0, []Box{wall})
	assert.True(t, ok)
	assert.Equal(t, "near", hit.Landmark.ID)
}

func TestCameraRayAndProject(t *testing.T) {
	c := Camera{Position: Vec3{0, 0, 10}, Forward: Vec3{0, 0, -1}, FOV: 75, Aspect: 1.5}
	r := c.Ray(Vec2{})
	assert.InDelta(t, -1, r.Dir.Z, 1e-9)

	ndc, depth, ok := c.Project(Vec3{0, 0, 0})
	assert.True(t, ok)
	assert.InDelta(t, 10, depth, 1e-9)
	assert.InDelta(t, 0, ndc.X, 1e-9)

	p := c.Ray(Vec2{0.5, -0.25}).At(7)
	back, _, ok := c.Project(p)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, back.X, 1e-9)
	assert.InDelta(t, -0.25, back.Y, 1e-9)

	_, _, ok = c.Project(Vec3{0, 0, 20})
	assert.False(t, ok)
}
