package scene

import (
	"math"
	"time"

	"github.com/kidandcat/heartquest/internal/interaction"
	"github.com/kidandcat/heartquest/internal/sequence"
)

// moveTween animates a position along a straight line.
type moveTween struct {
	from, to interaction.Vec3
	t        *sequence.Tween
}

func newMoveTween(from, to interaction.Vec3, d time.Duration, ease sequence.Ease) *moveTween {
	return &moveTween{from: from, to: to, t: sequence.NewTween(0, 1, d, ease)}
}

func (m *moveTween) advance(dt time.Duration) interaction.Vec3 {
	return m.from.Lerp(m.to, m.t.Advance(dt))
}

func (m *moveTween) done() bool { return m.t.Done() }

// turnTween animates a yaw along the shorter arc.
type turnTween struct {
	from, delta float64
	t           *sequence.Tween
}

func newTurnTween(from, to float64, d time.Duration) *turnTween {
	delta := math.Mod(to-from, 2*math.Pi)
	switch {
	case delta > math.Pi:
		delta -= 2 * math.Pi
	case delta < -math.Pi:
		delta += 2 * math.Pi
	}
	return &turnTween{from: from, delta: delta, t: sequence.NewTween(0, 1, d, sequence.Power2InOut)}
}

func (tt *turnTween) advance(dt time.Duration) float64 {
	return tt.from + tt.delta*tt.t.Advance(dt)
}

func (tt *turnTween) done() bool { return tt.t.Done() }
