package interaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type scripted []Frame

func (s *scripted) Poll() Frame {
	if len(*s) == 0 {
		return Frame{}
	}
	f := (*s)[0]
	*s = (*s)[1:]
	return f
}

func cityRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(Landmark{ID: "cafe", Kind: KindMemory, Shape: Box{Center: Vec3{0, 5, 10}, Size: Vec3{6, 10, 6}}})
	return reg
}

func TestFirstPersonAimAndSingleActivate(t *testing.T) {
	reg := cityRegistry()
	fp := NewFirstPerson(FirstPersonConfig{Mover: DefaultMoverConfig(), Start: Vec3{0, 5, 25}}, reg)

	var got []string
	fp.OnActivate(func(l Landmark) { got = append(got, l.ID) })

	in := &scripted{{}, {Activations: []Vec2{{}}}, {}, {}}
	fp.Tick(frame, in)
	assert.Equal(t, "cafe", fp.Aimed())
	assert.Empty(t, got)

	for i := 0; i < 3; i++ {
		fp.Tick(frame, in)
	}
	assert.Equal(t, []string{"cafe"}, got, "one click is one event, not one per frame")
}

func TestFirstPersonOutOfRange(t *testing.T) {
	reg := cityRegistry()
	fp := NewFirstPerson(FirstPersonConfig{Mover: DefaultMoverConfig(), Start: Vec3{0, 5, 50}}, reg)
	fired := false
	fp.OnActivate(func(Landmark) { fired = true })
	fp.Tick(frame, &scripted{{Activations: []Vec2{{}}}})
	assert.Equal(t, "", fp.Aimed())
	assert.False(t, fired)
}

func TestFirstPersonDisabledSuppressesAtSource(t *testing.T) {
	reg := cityRegistry()
	fp := NewFirstPerson(FirstPersonConfig{Mover: DefaultMoverConfig(), Start: Vec3{0, 5, 25}}, reg)
	fired := 0
	fp.OnActivate(func(Landmark) { fired++ })

	fp.Tick(frame, &scripted{{}})
	assert.Equal(t, "cafe", fp.Aimed())

	fp.Disable()
	assert.Equal(t, "", fp.Aimed())
	before := fp.Mover().Position()
	in := &scripted{{Move: Vec2{0, 1}, Activations: []Vec2{{}, {}}}}
	fp.Tick(frame, in)
	assert.Equal(t, 0, fired)
	assert.Equal(t, before, fp.Mover().Position())
	assert.Empty(t, *in, "input is drained while disabled")

	fp.Enable()
	fp.Tick(frame, &scripted{{}})
	assert.Equal(t, 0, fired, "clicks made while disabled are not replayed")
}

func TestFirstPersonHandlerDisablingStopsBurst(t *testing.T) {
	reg := cityRegistry()
	fp := NewFirstPerson(FirstPersonConfig{Mover: DefaultMoverConfig(), Start: Vec3{0, 5, 25}}, reg)
	fired := 0
	fp.OnActivate(func(Landmark) {
		fired++
		fp.Disable()
	})
	fp.Tick(frame, &scripted{{Activations: []Vec2{{}, {}, {}}}})
	assert.Equal(t, 1, fired)
}

func TestFirstPersonBuildingOccludesAim(t *testing.T) {
	reg := cityRegistry()
	wall := Box{Center: Vec3{0, 5, 17}, Size: Vec3{10, 10, 1}}
	fp := NewFirstPerson(FirstPersonConfig{Mover: DefaultMoverConfig(), Start: Vec3{0, 5, 25}, Buildings: []Box{wall}}, reg)
	fp.Tick(frame, &scripted{{}})
	assert.Equal(t, "", fp.Aimed())
}

func TestFreeRoamFollowsPointerSmoothly(t *testing.T) {
	reg := NewRegistry()
	fr := NewFreeRoam(FreeRoamConfig{Start: Vec3{0, 0, 10}, Reach: 40}, reg)

	in := &scripted{}
	for i := 0; i < 10; i++ {
		*in = append(*in, Frame{Pointer: Vec2{1, 0}})
	}
	fr.Tick(time.Second/60, in)
	assert.InDelta(t, 40*0.03, fr.Position().X, 1e-6)

	for i := 0; i < 9; i++ {
		fr.Tick(time.Second/60, in)
	}
	x := fr.Position().X
	assert.Greater(t, x, 1.2)
	assert.Less(t, x, 40.0)
	assert.InDelta(t, 10, fr.Position().Z, 1e-9)
}

func TestFollowFrameRateIndependent(t *testing.T) {
	one := Follow(0.03, time.Second/30)
	two := 1 - (1-Follow(0.03, time.Second/60))*(1-Follow(0.03, time.Second/60))
	assert.InDelta(t, one, two, 1e-6)
}

func TestFreeRoamClickActivatesUnderPointer(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Landmark{ID: "crystal", Shape: Sphere{Center: Vec3{0, 0, 0}, Radius: 1.5}})
	fr := NewFreeRoam(FreeRoamConfig{Start: Vec3{0, 0, 10}, Reach: 40}, reg)
	var got []string
	fr.OnActivate(func(l Landmark) { got = append(got, l.ID) })

	fr.Tick(0, &scripted{{Activations: []Vec2{{0.9, 0.9}}}})
	assert.Empty(t, got, "missed click")

	fr.Tick(0, &scripted{{Activations: []Vec2{{0, 0}}}})
	assert.Equal(t, []string{"crystal"}, got)
	assert.Equal(t, "crystal", fr.Aimed())
}
