package world

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/kidandcat/heartquest/internal/interaction"
)

type ItemKind string

const (
	ItemBuilding ItemKind = "building"
	ItemTree     ItemKind = "tree"
	ItemLamp     ItemKind = "lamp"
)

// Item is one piece of generated scenery. Only buildings collide.
type Item struct {
	Kind  ItemKind
	Box   interaction.Box
	Color string
}

var buildingColors = []string{"#f5e6e8", "#d5c6e0", "#aaa1c8", "#967aa1", "#e8d5b7", "#c9ada7"}

// Seed derives a stable layout seed from a proposal id, so a partner who
// reloads walks the same streets.
func Seed(id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64() & math.MaxInt64)
}

// Clear reports whether (x, z) is free for scenery: outside the palace
// square, the central avenue, every shop's radius and the short roads
// joining the shops to the avenue.
func (c *City) Clear(x, z float64, shops []Shop) bool {
	if math.Abs(x) < c.Palace.Clearance && math.Abs(z) < c.Palace.Clearance {
		return false
	}
	if math.Abs(x) < c.Avenue.HalfWidth && z > c.Avenue.ZMin && z < c.Avenue.ZMax {
		return false
	}
	for _, s := range shops {
		if math.Hypot(x-s.Position[0], z-s.Position[2]) < c.ShopClearance {
			return false
		}
	}
	for _, s := range shops {
		roadX := 6 + math.Abs(s.Position[0])/2
		if s.Position[0] <= 0 {
			roadX = -roadX
		}
		if math.Abs(x-roadX) < c.RoadClearance && math.Abs(z-s.Position[2]) < c.RoadClearance {
			return false
		}
	}
	return true
}

// Generate scatters scenery over the city. Shops in use are kept clear.
func (c *City) Generate(seed int64, shopsInUse int) []Item {
	rng := rand.New(rand.NewSource(seed))
	shops := c.Shops
	if shopsInUse > 0 && shopsInUse < len(shops) {
		shops = shops[:shopsInUse]
	}
	span := c.Bounds.Max[0] - c.Bounds.Min[0]

	var items []Item
	for i := 0; i < c.BuildingAttempts; i++ {
		x := (rng.Float64() - 0.5) * span
		z := (rng.Float64() - 0.5) * span
		kind := rng.Float64()
		if !c.Clear(x, z, shops) {
			continue
		}
		switch {
		case kind > 0.6:
			w := 8 + rng.Float64()*8
			d := 8 + rng.Float64()*8
			h := 15 + rng.Float64()*45
			items = append(items, Item{
				Kind:  ItemBuilding,
				Box:   interaction.Box{Center: interaction.Vec3{X: x, Y: h / 2, Z: z}, Size: interaction.Vec3{X: w, Y: h, Z: d}},
				Color: buildingColors[rng.Intn(len(buildingColors))],
			})
		case kind > 0.3:
			items = append(items, Item{Kind: ItemTree, Box: interaction.Box{Center: interaction.Vec3{X: x, Y: 3, Z: z}, Size: interaction.Vec3{X: 2, Y: 6, Z: 2}}})
		default:
			items = append(items, Item{Kind: ItemLamp, Box: interaction.Box{Center: interaction.Vec3{X: x, Y: 2.5, Z: z}, Size: interaction.Vec3{X: 0.4, Y: 5, Z: 0.4}}})
		}
	}
	return items
}

// Buildings filters the collision boxes out of generated scenery.
func Buildings(items []Item) []interaction.Box {
	var out []interaction.Box
	for _, it := range items {
		if it.Kind == ItemBuilding {
			out = append(out, it.Box)
		}
	}
	return out
}

// Crystals spreads n memory crystals uniformly in a cube of half-size r.
func (o *Odyssey) Crystals(seed int64, n int) []interaction.Vec3 {
	rng := rand.New(rand.NewSource(seed))
	r := o.Crystal.SpawnRadius
	out := make([]interaction.Vec3, n)
	for i := range out {
		out[i] = interaction.Vec3{
			X: (rng.Float64() - 0.5) * 2 * r,
			Y: (rng.Float64() - 0.5) * 2 * r,
			Z: (rng.Float64() - 0.5) * 2 * r,
		}
	}
	return out
}

// Starfield places background stars on a spherical shell.
func (o *Odyssey) Starfield(seed int64, n int) []interaction.Vec3 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]interaction.Vec3, n)
	for i := range out {
		u := rng.Float64()*2 - 1
		theta := rng.Float64() * 2 * math.Pi
		r := o.Stars.Radius * (0.8 + 0.2*rng.Float64())
		s := math.Sqrt(1 - u*u)
		out[i] = interaction.Vec3{X: r * s * math.Cos(theta), Y: r * u, Z: r * s * math.Sin(theta)}
	}
	return out
}
