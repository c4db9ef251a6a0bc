package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidandcat/heartquest/internal/interaction"
)

func TestLoadLayouts(t *testing.T) {
	c, err := LoadCity()
	require.NoError(t, err)
	assert.Equal(t, Point{0, 5, 30}, c.Player.Start)
	assert.Equal(t, 60, c.BuildingAttempts)
	assert.Len(t, c.Shops, 10)
	assert.Equal(t, "Star Cafe", c.Shops[0].Label)

	mc := c.MoverConfig()
	assert.Equal(t, 15.0, mc.Speed)
	assert.Equal(t, -80.0, mc.Bounds.Min.X)
	assert.Equal(t, 50.0, mc.Bounds.Max.Y)

	o, err := LoadOdyssey()
	require.NoError(t, err)
	assert.Equal(t, 10000, o.Stars.Count)
	assert.Equal(t, Point{0, 0, 5}, o.Camera.RevealPosition)
	assert.Equal(t, 0.03, o.Camera.Damping)
}

func TestSlotWraps(t *testing.T) {
	c, err := LoadCity()
	require.NoError(t, err)
	assert.Equal(t, c.Shops[0], c.Slot(len(c.Shops)))
	assert.Equal(t, c.Shops[3], c.Slot(3))
}

func TestShopBoxStandsOnGround(t *testing.T) {
	s := Shop{Position: Point{15, 0, 30}, Size: Point{8, 10, 8}}
	b := s.Box()
	assert.Equal(t, 0.0, b.Min().Y)
	assert.Equal(t, 10.0, b.Max().Y)
}

func TestClear(t *testing.T) {
	c, err := LoadCity()
	require.NoError(t, err)
	shops := c.Shops[:5]

	tests := []struct {
		name string
		x, z float64
		want bool
	}{
		{"palace square", 10, -10, false},
		{"avenue", 5, 100, false},
		{"near shop", 15, 45, false},
		{"road to shop", 33, -45, true},
		{"open ground", -70, -70, true},
		{"far corner", 70, -70, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Clear(tt.x, tt.z, shops))
		})
	}
}

func TestClearRoads(t *testing.T) {
	c := &City{ShopClearance: 25, RoadClearance: 8}
	c.Palace.Clearance = 30
	far := []Shop{{Position: Point{100, 0, 0}}, {Position: Point{-100, 0, 60}}}

	assert.False(t, c.Clear(56, 0, far))
	assert.False(t, c.Clear(-56, 62, far))
	assert.True(t, c.Clear(56, 20, far))
	assert.True(t, c.Clear(-56, 0, far))
}

func TestGenerateRespectsClearances(t *testing.T) {
	c, err := LoadCity()
	require.NoError(t, err)

	for seed := int64(1); seed <= 20; seed++ {
		items := c.Generate(seed, 5)
		assert.LessOrEqual(t, len(items), c.BuildingAttempts)
		for _, it := range items {
			x, z := it.Box.Center.X, it.Box.Center.Z
			assert.True(t, c.Clear(x, z, c.Shops[:5]), "item at %.1f,%.1f", x, z)
			assert.LessOrEqual(t, math.Abs(x), 80.0)
			assert.LessOrEqual(t, math.Abs(z), 80.0)
			if it.Kind == ItemBuilding {
				assert.GreaterOrEqual(t, it.Box.Size.Y, 15.0)
				assert.LessOrEqual(t, it.Box.Size.Y, 60.0)
				assert.InDelta(t, 0, it.Box.Min().Y, 1e-9)
			}
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	c, err := LoadCity()
	require.NoError(t, err)
	seed := Seed("3f2b8c1e-proposal")
	assert.Equal(t, c.Generate(seed, 5), c.Generate(seed, 5))
	assert.Equal(t, seed, Seed("3f2b8c1e-proposal"))
	assert.GreaterOrEqual(t, seed, int64(0))
}

func TestBuildingsFilter(t *testing.T) {
	items := []Item{
		{Kind: ItemTree},
		{Kind: ItemBuilding, Box: interaction.Box{Size: interaction.Vec3{X: 8, Y: 20, Z: 8}}},
		{Kind: ItemLamp},
	}
	got := Buildings(items)
	require.Len(t, got, 1)
	assert.Equal(t, 20.0, got[0].Size.Y)
}

func TestCrystalsAndStars(t *testing.T) {
	o, err := LoadOdyssey()
	require.NoError(t, err)

	crystals := o.Crystals(7, 12)
	require.Len(t, crystals, 12)
	for _, p := range crystals {
		assert.LessOrEqual(t, math.Abs(p.X), 80.0)
		assert.LessOrEqual(t, math.Abs(p.Y), 80.0)
		assert.LessOrEqual(t, math.Abs(p.Z), 80.0)
	}

	stars := o.Starfield(7, 200)
	for _, s := range stars {
		r := s.Len()
		assert.GreaterOrEqual(t, r, 160.0-1e-6)
		assert.LessOrEqual(t, r, 200.0+1e-6)
	}
}

func TestMinimap(t *testing.T) {
	m := NewMinimap(220, 160)
	center := m.Point(interaction.Vec3{})
	assert.InDelta(t, 110, center.X, 1e-9)
	assert.InDelta(t, 110, center.Y, 1e-9)

	corner := m.Point(interaction.Vec3{X: 80, Z: -80})
	assert.InDelta(t, 220, corner.X, 1e-9)
	assert.InDelta(t, 0, corner.Y, 1e-9)

	assert.InDelta(t, 0, Heading(interaction.Vec3{Z: 1}), 1e-9)
	assert.InDelta(t, math.Pi/2, Heading(interaction.Vec3{X: 1}), 1e-9)
}
