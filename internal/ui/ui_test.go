package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidandcat/heartquest/internal/client"
	"github.com/kidandcat/heartquest/internal/interaction"
	"github.com/kidandcat/heartquest/internal/proposal"
	"github.com/kidandcat/heartquest/internal/scene"
	"github.com/kidandcat/heartquest/internal/world"
)

var straightAhead = interaction.Camera{
	Position: interaction.Vec3{},
	Forward:  interaction.Vec3{Z: -1},
	FOV:      90,
	Aspect:   1,
}

func TestViewportProjection(t *testing.T) {
	vp := Viewport{W: 200, H: 200}

	s, ok := vp.point(straightAhead, interaction.Vec3{Z: -10}, Circle, 1, "#fff")
	require.True(t, ok)
	assert.InDelta(t, 100, s.X, 1e-9)
	assert.InDelta(t, 100, s.Y, 1e-9)
	assert.InDelta(t, 20, s.W, 1e-9)

	s, ok = vp.point(straightAhead, interaction.Vec3{X: 3, Y: 3, Z: -10}, Circle, 1, "#fff")
	require.True(t, ok)
	assert.InDelta(t, 130, s.X, 1e-9)
	assert.InDelta(t, 70, s.Y, 1e-9, "screen y grows downward")

	_, ok = vp.point(straightAhead, interaction.Vec3{Z: 10}, Circle, 1, "#fff")
	assert.False(t, ok, "behind the camera")
	_, ok = vp.point(straightAhead, interaction.Vec3{X: 50, Z: -10}, Circle, 1, "#fff")
	assert.False(t, ok, "far off screen")

	assert.Equal(t, 2.0, Viewport{W: 400, H: 200}.Aspect())
	assert.Equal(t, 1.0, Viewport{}.Aspect())
}

func TestOdysseySprites(t *testing.T) {
	vp := Viewport{W: 200, H: 200}
	v := scene.OdysseyView{
		Camera:    straightAhead,
		StarColor: "#abcdef",
		Crystals: []scene.CrystalView{
			{ID: "near", Position: interaction.Vec3{Z: -5}, Radius: 1},
			{ID: "far", Position: interaction.Vec3{Z: -40}, Radius: 1, Aimed: true},
		},
		Lights: scene.Lights{Bloom: 1.5},
	}
	stars := []interaction.Vec3{{Z: -80}, {Z: 30}}

	sprites := OdysseySprites(vp, v, stars)
	require.Len(t, sprites, 3, "the star behind the camera is dropped")
	assert.Equal(t, "#abcdef", sprites[0].Color, "farthest first")
	assert.Equal(t, Diamond, sprites[1].Shape)
	assert.True(t, sprites[1].Stroke, "aimed crystal is outlined")
	assert.False(t, sprites[2].Stroke)
	assert.Equal(t, 1.5, sprites[2].Glow)

	v.ShowRing = true
	v.Ring = interaction.Vec3{Z: -20}
	assert.Len(t, OdysseySprites(vp, v, nil), 3)
}

func TestCitySprites(t *testing.T) {
	vp := Viewport{W: 200, H: 200}
	box := func(z float64) interaction.Box {
		return interaction.Box{Center: interaction.Vec3{Z: z}, Size: interaction.Vec3{X: 4, Y: 6, Z: 4}}
	}
	v := scene.CityView{
		Camera: straightAhead,
		Items: []world.Item{
			{Kind: world.ItemBuilding, Box: box(-60), Color: "#f5e6e8"},
			{Kind: world.ItemTree, Box: box(-50)},
		},
		Shops: []scene.ShopView{
			{ID: "m0", Label: "Star Cafe", Color: "#ff69b4", Box: box(-10), Collected: true},
		},
		Palace:      box(-30),
		PalaceAimed: true,
	}

	sprites := CitySprites(vp, v)
	require.Len(t, sprites, 4)
	assert.Equal(t, "#f5e6e8", sprites[0].Color)
	assert.Equal(t, "#2e8b57", sprites[1].Color)
	assert.Equal(t, "Palace", sprites[2].Label)
	assert.True(t, sprites[2].Stroke)
	assert.Equal(t, "Star Cafe", sprites[3].Label)
	assert.Equal(t, 0.4, sprites[3].Alpha)
	assert.InDelta(t, 40, sprites[3].W, 1e-9)
	assert.InDelta(t, 60, sprites[3].H, 1e-9)

	v.Castle = &scene.CastleView{
		Camera:       straightAhead,
		HeartVisible: true,
		Heart:        interaction.Vec3{Z: -20},
		HeartScale:   1,
		Particles:    []scene.Particle{{Position: interaction.Vec3{Z: -10}}},
	}
	sprites = CitySprites(vp, v)
	require.Len(t, sprites, 2, "inside the castle only the heart and its burst draw")
	assert.Equal(t, Heart, sprites[0].Shape)
}

func TestMinimapMarkers(t *testing.T) {
	m := scene.MapView{
		Player: interaction.Vec2{X: 1, Y: 2},
		Palace: interaction.Vec2{X: 110, Y: 110},
		Memories: []scene.MapMarker{
			{Position: interaction.Vec2{X: 5, Y: 5}},
			{Position: interaction.Vec2{X: 6, Y: 6}, Collected: true},
		},
	}
	got := MinimapMarkers(m)
	require.Len(t, got, 4)
	assert.Equal(t, MinimapMarker{X: 110, Y: 110, Color: "#ffd700"}, got[0])
	assert.Equal(t, "#ff69b4", got[1].Color)
	assert.Equal(t, "#555555", got[2].Color)
	assert.Equal(t, MinimapMarker{X: 1, Y: 2, Color: "#00bfff"}, got[3])
}

func TestHandoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"proposal not found"}`))
	}))
	defer srv.Close()
	prev := env
	Configure(Env{Client: client.New(srv.URL, srv.Client(), nil)})
	defer func() { env = prev }()

	var h handoff
	p := &proposal.Proposal{ID: "p1", Token: "HEART-1234"}
	h.put(p)

	got, err := h.Resolve(context.Background(), " heart-1234 ")
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = h.Resolve(context.Background(), "HEART-1234")
	assert.ErrorIs(t, err, proposal.ErrNotFound, "the held proposal is served once")
}
