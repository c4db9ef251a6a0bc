package interaction

import (
	"math"
	"strings"
	"sync"
)

// Frame is what an input source produced since the previous poll.
type Frame struct {
	// Move is the desired planar movement: X strafes right, Y walks forward.
	Move Vec2
	// LookYaw and LookPitch are rotation deltas in radians.
	LookYaw, LookPitch float64
	// Pointer is the pointer position in normalized device coordinates.
	Pointer Vec2
	// Activations holds one entry per discrete click or tap, at the NDC
	// position where it happened.
	Activations []Vec2
}

// Input is a polymorphic source of movement, aim and activation.
type Input interface {
	Poll() Frame
}

const (
	MouseSensitivity = 0.002
	TouchSensitivity = 0.005
	JoystickRadius   = 50.0
)

// KeyboardMouse turns key state and pointer events into frames.
type KeyboardMouse struct {
	mu          sync.Mutex
	keys        map[string]bool
	yaw, pitch  float64
	pointer     Vec2
	activations []Vec2
	locked      bool
}

func NewKeyboardMouse() *KeyboardMouse {
	return &KeyboardMouse{keys: make(map[string]bool)}
}

func normalizeKey(key string) string {
	switch key {
	case "ArrowUp":
		return "w"
	case "ArrowDown":
		return "s"
	case "ArrowLeft":
		return "a"
	case "ArrowRight":
		return "d"
	}
	return strings.ToLower(key)
}

func (k *KeyboardMouse) KeyDown(key string) {
	k.mu.Lock()
	k.keys[normalizeKey(key)] = true
	k.mu.Unlock()
}

func (k *KeyboardMouse) KeyUp(key string) {
	k.mu.Lock()
	delete(k.keys, normalizeKey(key))
	k.mu.Unlock()
}

// SetPointerLock records whether the pointer is captured; look deltas only
// count while it is.
func (k *KeyboardMouse) SetPointerLock(locked bool) {
	k.mu.Lock()
	k.locked = locked
	k.mu.Unlock()
}

// PointerMove takes the pointer position in NDC plus the raw movement in
// pixels reported by the browser.
func (k *KeyboardMouse) PointerMove(ndc Vec2, dx, dy float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pointer = ndc
	if k.locked {
		k.yaw -= dx * MouseSensitivity
		k.pitch -= dy * MouseSensitivity
	}
}

func (k *KeyboardMouse) Click(ndc Vec2) {
	k.mu.Lock()
	k.activations = append(k.activations, ndc)
	k.mu.Unlock()
}

// Release drops all held keys, e.g. when the window loses focus.
func (k *KeyboardMouse) Release() {
	k.mu.Lock()
	k.keys = make(map[string]bool)
	k.mu.Unlock()
}

func (k *KeyboardMouse) Poll() Frame {
	k.mu.Lock()
	defer k.mu.Unlock()
	var mv Vec2
	if k.keys["w"] {
		mv.Y++
	}
	if k.keys["s"] {
		mv.Y--
	}
	if k.keys["d"] {
		mv.X++
	}
	if k.keys["a"] {
		mv.X--
	}
	f := Frame{
		Move:        mv,
		LookYaw:     k.yaw,
		LookPitch:   k.pitch,
		Pointer:     k.pointer,
		Activations: k.activations,
	}
	k.yaw, k.pitch = 0, 0
	k.activations = nil
	return f
}

// Touch is the virtual joystick plus drag-to-look adapter.
type Touch struct {
	mu          sync.Mutex
	stickOrigin Vec2
	stick       Vec2
	stickActive bool
	lookLast    Vec2
	lookActive  bool
	yaw, pitch  float64
	activations []Vec2
}

func NewTouch() *Touch { return &Touch{} }

func (t *Touch) StickStart(x, y float64) {
	t.mu.Lock()
	t.stickOrigin = Vec2{x, y}
	t.stick = Vec2{}
	t.stickActive = true
	t.mu.Unlock()
}

// StickMove clamps the knob to JoystickRadius and maps it to [-1,1]. Screen
// Y grows downward, so dragging up walks forward.
func (t *Touch) StickMove(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stickActive {
		return
	}
	d := Vec2{x, y}.Sub(t.stickOrigin).ClampLen(JoystickRadius)
	t.stick = Vec2{d.X / JoystickRadius, -d.Y / JoystickRadius}
}

func (t *Touch) StickEnd() {
	t.mu.Lock()
	t.stick = Vec2{}
	t.stickActive = false
	t.mu.Unlock()
}

func (t *Touch) LookStart(x, y float64) {
	t.mu.Lock()
	t.lookLast = Vec2{x, y}
	t.lookActive = true
	t.mu.Unlock()
}

func (t *Touch) LookMove(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.lookActive {
		return
	}
	d := Vec2{x, y}.Sub(t.lookLast)
	t.lookLast = Vec2{x, y}
	t.yaw -= d.X * TouchSensitivity
	t.pitch -= d.Y * TouchSensitivity
}

func (t *Touch) LookEnd() {
	t.mu.Lock()
	t.lookActive = false
	t.mu.Unlock()
}

// Tap is a discrete activation at the screen centre.
func (t *Touch) Tap() {
	t.mu.Lock()
	t.activations = append(t.activations, Vec2{})
	t.mu.Unlock()
}

func (t *Touch) Poll() Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	f := Frame{
		Move:        t.stick,
		LookYaw:     t.yaw,
		LookPitch:   t.pitch,
		Activations: t.activations,
	}
	t.yaw, t.pitch = 0, 0
	t.activations = nil
	return f
}

// Combined merges several sources; movement vectors add up and are later
// clamped by the mover.
type Combined []Input

func (c Combined) Poll() Frame {
	var out Frame
	for _, in := range c {
		f := in.Poll()
		out.Move = out.Move.Add(f.Move)
		out.LookYaw += f.LookYaw
		out.LookPitch += f.LookPitch
		if !f.Pointer.IsZero() {
			out.Pointer = f.Pointer
		}
		out.Activations = append(out.Activations, f.Activations...)
	}
	return out
}

// ScreenToNDC converts client pixels to normalized device coordinates.
func ScreenToNDC(x, y, width, height float64) Vec2 {
	if width <= 0 || height <= 0 {
		return Vec2{}
	}
	return Vec2{
		X: clamp(x/width*2-1, -1, 1),
		Y: clamp(-(y/height)*2+1, -1, 1),
	}
}

func wrapAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}
