package scene

import "github.com/kidandcat/heartquest/internal/interaction"

const (
	EvadeRadius   = 120.0
	EvadeMaxMove  = 100.0
	EvadeMinScale = 0.2
)

// Evade computes where the No button flees to. pointer and center are in
// screen pixels; offset moves the button away from the pointer and scale
// shrinks it the closer the pointer gets. It never touches the session.
func Evade(pointer, center interaction.Vec2) (offset interaction.Vec2, scale float64) {
	away := center.Sub(pointer)
	dist := away.Len()
	if dist >= EvadeRadius {
		return interaction.Vec2{}, 1
	}
	amount := 1 - dist/EvadeRadius
	scale = 1 - amount*(1-EvadeMinScale)
	if dist == 0 {
		return interaction.Vec2{X: EvadeMaxMove}, scale
	}
	return away.Scale(EvadeMaxMove * amount / dist), scale
}
