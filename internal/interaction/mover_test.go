package interaction

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 16 * time.Millisecond

func TestMoverDiagonalNotFaster(t *testing.T) {
	straight := NewMover(DefaultMoverConfig(), Vec3{0, 5, 0}, nil)
	diag := NewMover(DefaultMoverConfig(), Vec3{0, 5, 0}, nil)

	straight.Step(Vec2{0, 1}, time.Second)
	diag.Step(Vec2{1, 1}, time.Second)

	assert.InDelta(t, 15, straight.Position().Distance(Vec3{0, 5, 0}), 1e-9)
	assert.InDelta(t, 15, diag.Position().Distance(Vec3{0, 5, 0}), 1e-9)
}

func TestMoverForwardIsNegativeZ(t *testing.T) {
	m := NewMover(DefaultMoverConfig(), Vec3{0, 5, 30}, nil)
	m.Step(Vec2{0, 1}, time.Second)
	assert.InDelta(t, 15, m.Position().Z, 1e-9)
	assert.InDelta(t, 0, m.Position().X, 1e-9)

	m.Step(Vec2{1, 0}, time.Second)
	assert.InDelta(t, 15, m.Position().X, 1e-9)
}

func TestMoverClampsToBounds(t *testing.T) {
	m := NewMover(DefaultMoverConfig(), Vec3{79, 100, -79}, nil)
	assert.Equal(t, 50.0, m.Position().Y)
	m.Step(Vec2{1, 1}, 10*time.Second)
	p := m.Position()
	assert.LessOrEqual(t, p.X, 80.0)
	assert.GreaterOrEqual(t, p.Z, -80.0)

	low := NewMover(DefaultMoverConfig(), Vec3{0, -5, 0}, nil)
	assert.Equal(t, 2.0, low.Position().Y)
}

func TestMoverRejectsWholeStepIntoBuilding(t *testing.T) {
	building := Box{Center: Vec3{0, 10, 0}, Size: Vec3{10, 20, 10}}
	m := NewMover(DefaultMoverConfig(), Vec3{0, 5, 7}, []Box{building})

	before := m.Position()
	moved := m.Step(Vec2{0, 1}, 100*time.Millisecond)
	assert.False(t, moved)
	assert.Equal(t, before, m.Position(), "no partial slide")

	// Moving away is fine.
	assert.True(t, m.Step(Vec2{0, -1}, 100*time.Millisecond))
}

func TestMoverBlockedProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var buildings []Box
	for i := 0; i < 30; i++ {
		buildings = append(buildings, Box{
			Center: Vec3{rng.Float64()*140 - 70, 10, rng.Float64()*140 - 70},
			Size:   Vec3{4 + rng.Float64()*8, 20, 4 + rng.Float64()*8},
		})
	}
	m := NewMover(DefaultMoverConfig(), Vec3{0, 5, 0}, buildings)
	for m.Blocked(m.Position()) {
		m.Teleport(Vec3{rng.Float64()*160 - 80, 5, rng.Float64()*160 - 80}, 0)
	}

	for i := 0; i < 5000; i++ {
		m.Look(rng.Float64()-0.5, 0)
		before := m.Position()
		mv := Vec2{rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		dt := time.Duration(rng.Intn(100)) * time.Millisecond

		moved := m.Step(mv, dt)
		if !moved {
			require.Equal(t, before, m.Position(), "step %d", i)
		}
		require.False(t, m.Blocked(m.Position()), "step %d ended inside a building", i)
	}
}

func TestMoverLookClampsPitch(t *testing.T) {
	m := NewMover(DefaultMoverConfig(), Vec3{}, nil)
	m.Look(0, 10)
	assert.Less(t, m.Pitch(), math.Pi/2)
	m.Look(0, -20)
	assert.Greater(t, m.Pitch(), -math.Pi/2)
}
