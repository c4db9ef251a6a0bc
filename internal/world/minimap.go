package world

import (
	"math"

	"github.com/kidandcat/heartquest/internal/interaction"
)

// Minimap projects the city onto a square map, north up.
type Minimap struct {
	Size      float64 // pixels
	CitySize  float64 // world units across
	scale     float64
	halfPixel float64
}

func NewMinimap(size, citySize float64) Minimap {
	return Minimap{Size: size, CitySize: citySize, scale: size / citySize, halfPixel: size / 2}
}

// Point maps a world position to map pixels.
func (m Minimap) Point(p interaction.Vec3) interaction.Vec2 {
	return interaction.Vec2{X: p.X*m.scale + m.halfPixel, Y: p.Z*m.scale + m.halfPixel}
}

// Heading returns the map rotation for a forward vector.
func Heading(forward interaction.Vec3) float64 {
	return math.Atan2(forward.X, forward.Z)
}
