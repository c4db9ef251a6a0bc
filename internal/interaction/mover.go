package interaction

import (
	"math"
	"time"
)

// Bounds is the walkable volume.
type Bounds struct {
	Min, Max Vec3
}

func (b Bounds) Clamp(p Vec3) Vec3 {
	return Vec3{
		clamp(p.X, b.Min.X, b.Max.X),
		clamp(p.Y, b.Min.Y, b.Max.Y),
		clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

type MoverConfig struct {
	Speed        float64 // units per second
	PlayerRadius float64
	Bounds       Bounds
}

// DefaultMoverConfig matches the city: 160 units across, eye height 2..50.
func DefaultMoverConfig() MoverConfig {
	return MoverConfig{
		Speed:        15,
		PlayerRadius: 1.5,
		Bounds: Bounds{
			Min: Vec3{-80, 2, -80},
			Max: Vec3{80, 50, 80},
		},
	}
}

const maxPitch = math.Pi/2 - 0.01

// Mover is the first-person body: position, look angles and collision.
type Mover struct {
	cfg      MoverConfig
	pos      Vec3
	yaw      float64
	pitch    float64
	blockers []Box
}

func NewMover(cfg MoverConfig, start Vec3, buildings []Box) *Mover {
	m := &Mover{cfg: cfg, pos: cfg.Bounds.Clamp(start)}
	m.SetBuildings(buildings)
	return m
}

// SetBuildings registers building footprints; each is expanded by the
// player radius once here.
func (m *Mover) SetBuildings(buildings []Box) {
	m.blockers = make([]Box, len(buildings))
	for i, b := range buildings {
		m.blockers[i] = b.Expand(m.cfg.PlayerRadius)
	}
}

func (m *Mover) Position() Vec3 { return m.pos }

func (m *Mover) Yaw() float64 { return m.yaw }

func (m *Mover) Pitch() float64 { return m.pitch }

func (m *Mover) Forward() Vec3 { return YawPitchForward(m.yaw, m.pitch) }

// Look applies rotation deltas; pitch stops just short of straight up/down.
func (m *Mover) Look(dYaw, dPitch float64) {
	m.yaw = wrapAngle(m.yaw + dYaw)
	m.pitch = clamp(m.pitch+dPitch, -maxPitch, maxPitch)
}

// Blocked reports whether p falls inside any expanded building footprint.
func (m *Mover) Blocked(p Vec3) bool {
	for _, b := range m.blockers {
		if b.ContainsXZ(p) {
			return true
		}
	}
	return false
}

// Step integrates one frame of movement. The input vector is capped at unit
// length so diagonals are no faster than straight lines. A candidate inside
// any building is rejected whole: the position stays exactly where it was.
// It reports whether the player moved.
func (m *Mover) Step(move Vec2, dt time.Duration) bool {
	move = move.ClampLen(1)
	if move.IsZero() || dt <= 0 {
		return false
	}
	fwd := Vec3{-math.Sin(m.yaw), 0, -math.Cos(m.yaw)}
	right := Vec3{math.Cos(m.yaw), 0, -math.Sin(m.yaw)}
	vel := fwd.Scale(move.Y).Add(right.Scale(move.X)).Scale(m.cfg.Speed)

	next := m.cfg.Bounds.Clamp(m.pos.Add(vel.Scale(dt.Seconds())))
	if m.Blocked(next) {
		return false
	}
	m.pos = next
	return true
}

// Teleport places the player without collision checks.
func (m *Mover) Teleport(p Vec3, yaw float64) {
	m.pos = m.cfg.Bounds.Clamp(p)
	m.yaw = wrapAngle(yaw)
	m.pitch = 0
}
