package sequence

import "time"

// MaxFrameStep caps a single frame's delta.
const MaxFrameStep = 100 * time.Millisecond

// FrameClock turns animation-frame timestamps into per-frame deltas.
type FrameClock struct {
	last    time.Duration
	started bool
}

// Tick takes a monotonic timestamp and returns the clamped delta since the
// previous call. The first call returns zero.
func (c *FrameClock) Tick(now time.Duration) time.Duration {
	if !c.started {
		c.started = true
		c.last = now
		return 0
	}
	dt := now - c.last
	c.last = now
	if dt < 0 {
		return 0
	}
	if dt > MaxFrameStep {
		return MaxFrameStep
	}
	return dt
}

// Reset forgets the last timestamp.
func (c *FrameClock) Reset() {
	c.started = false
}
