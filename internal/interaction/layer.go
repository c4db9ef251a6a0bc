// Package interaction turns raw input into aim and activate events.
//
// Two layers share one contract. FreeRoam follows the pointer with a damped
// camera and activates whatever is under the click. FirstPerson walks a
// collision-checked body and activates whatever sits at the screen centre.
// A disabled layer drains its input and emits nothing.
package interaction

import (
	"math"
	"time"
)

// Layer is the contract the phase controller and the renderer rely on.
type Layer interface {
	// Tick consumes one frame of input.
	Tick(dt time.Duration, in Input)
	// Aimed is the landmark currently targeted, or "".
	Aimed() string
	Enable()
	Disable()
	Enabled() bool
	Camera() Camera
	// OnActivate sets the single receiver of activate events.
	OnActivate(fn func(Landmark))
}

type base struct {
	registry   *Registry
	enabled    bool
	aimed      string
	onActivate func(Landmark)
}

func (b *base) Aimed() string { return b.aimed }

func (b *base) Enable() { b.enabled = true }

func (b *base) Disable() {
	b.enabled = false
	b.aimed = ""
}

func (b *base) Enabled() bool { return b.enabled }

func (b *base) OnActivate(fn func(Landmark)) { b.onActivate = fn }

func (b *base) emit(l Landmark) {
	if b.enabled && b.onActivate != nil {
		b.onActivate(l)
	}
}

// FirstPersonConfig configures the walkable variant.
type FirstPersonConfig struct {
	Mover     MoverConfig
	Start     Vec3
	StartYaw  float64
	AimRange  float64
	FOV       float64
	Aspect    float64
	Buildings []Box
}

type FirstPerson struct {
	base
	mover     *Mover
	buildings []Box
	aimRange  float64
	fov       float64
	aspect    float64
}

func NewFirstPerson(cfg FirstPersonConfig, reg *Registry) *FirstPerson {
	if cfg.AimRange <= 0 {
		cfg.AimRange = 20
	}
	if cfg.FOV <= 0 {
		cfg.FOV = 60
	}
	fp := &FirstPerson{
		base:      base{registry: reg, enabled: true},
		mover:     NewMover(cfg.Mover, cfg.Start, cfg.Buildings),
		buildings: cfg.Buildings,
		aimRange:  cfg.AimRange,
		fov:       cfg.FOV,
		aspect:    cfg.Aspect,
	}
	fp.mover.Teleport(cfg.Start, cfg.StartYaw)
	return fp
}

func (f *FirstPerson) Mover() *Mover { return f.mover }

// SetBuildings replaces the collision and occlusion boxes.
func (f *FirstPerson) SetBuildings(b []Box) {
	f.buildings = b
	f.mover.SetBuildings(b)
}

func (f *FirstPerson) SetAspect(a float64) { f.aspect = a }

func (f *FirstPerson) Camera() Camera {
	return Camera{Position: f.mover.Position(), Forward: f.mover.Forward(), FOV: f.fov, Aspect: f.aspect}
}

func (f *FirstPerson) Tick(dt time.Duration, in Input) {
	fr := in.Poll()
	if !f.enabled {
		return
	}
	f.mover.Look(fr.LookYaw, fr.LookPitch)
	f.mover.Step(fr.Move, dt)

	hit, ok := f.registry.Raycast(f.Camera().Ray(Vec2{}), f.aimRange, f.buildings)
	f.aimed = ""
	if ok {
		f.aimed = hit.Landmark.ID
	}
	for range fr.Activations {
		if !ok || !f.enabled {
			break
		}
		f.emit(hit.Landmark)
	}
}

// FreeRoamConfig configures the pointer-follow variant.
type FreeRoamConfig struct {
	Start Vec3
	// Reach is how far the camera drifts for a pointer at the screen edge.
	Reach float64
	// Damping is the fraction of the remaining distance covered per 60 Hz
	// frame.
	Damping float64
	Focus   Vec3
	FOV     float64
	Aspect  float64
}

type FreeRoam struct {
	base
	cfg FreeRoamConfig
	pos Vec3
}

func NewFreeRoam(cfg FreeRoamConfig, reg *Registry) *FreeRoam {
	if cfg.Damping <= 0 {
		cfg.Damping = 0.03
	}
	if cfg.FOV <= 0 {
		cfg.FOV = 75
	}
	return &FreeRoam{base: base{registry: reg, enabled: true}, cfg: cfg, pos: cfg.Start}
}

func (f *FreeRoam) Position() Vec3 { return f.pos }

// SetPosition hands the camera to a scripted animation.
func (f *FreeRoam) SetPosition(p Vec3) { f.pos = p }

func (f *FreeRoam) SetAspect(a float64) { f.cfg.Aspect = a }

func (f *FreeRoam) Camera() Camera {
	c := Camera{Position: f.pos, Forward: Vec3{0, 0, -1}, FOV: f.cfg.FOV, Aspect: f.cfg.Aspect}
	c.LookAt(f.cfg.Focus)
	return c
}

// Follow returns the frame-rate independent lerp factor for dt.
func Follow(damping float64, dt time.Duration) float64 {
	return 1 - math.Pow(1-damping, dt.Seconds()*60)
}

func (f *FreeRoam) Tick(dt time.Duration, in Input) {
	fr := in.Poll()
	if !f.enabled {
		return
	}
	target := Vec3{fr.Pointer.X * f.cfg.Reach, fr.Pointer.Y * f.cfg.Reach, f.cfg.Start.Z}
	f.pos = f.pos.Lerp(target, Follow(f.cfg.Damping, dt))

	cam := f.Camera()
	f.aimed = ""
	if hit, ok := f.registry.Raycast(cam.Ray(fr.Pointer), 0, nil); ok {
		f.aimed = hit.Landmark.ID
	}
	for _, at := range fr.Activations {
		if !f.enabled {
			break
		}
		if hit, ok := f.registry.Raycast(cam.Ray(at), 0, nil); ok {
			f.emit(hit.Landmark)
		}
	}
}
