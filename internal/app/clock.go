package app

import "time"

// maxDelta caps a frame step so a stall (a modal dialog, a breakpoint)
// does not launch physics bodies across the scene.
const maxDelta = 0.25

// Clock measures the time between frames.
type Clock struct {
	now     func() time.Time
	last    time.Time
	started bool
}

// NewClock creates a clock reading now, or time.Now when now is nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Tick returns the seconds since the previous Tick. The first tick and any
// backwards step of the clock return zero.
func (c *Clock) Tick() float32 {
	t := c.now()
	if !c.started {
		c.started = true
		c.last = t
		return 0
	}
	dt := t.Sub(c.last).Seconds()
	c.last = t
	if dt < 0 {
		return 0
	}
	if dt > maxDelta {
		dt = maxDelta
	}
	return float32(dt)
}
