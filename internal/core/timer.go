package core

import (
	"math"
	"time"
)

const (
	fpsInterval  = 500 * time.Millisecond
	fpsSampleCap = 1000
)

// FrameClock measures the delta between frames and keeps a rolling FPS
// average recomputed every half second.
type FrameClock struct {
	now func() time.Time

	last     time.Time
	lastDump time.Time
	delta    time.Duration
	samples  []time.Duration
	fps      int

	timers   []Timer
	reported []Timer
}

// NewFrameClock returns a clock reading time from now (time.Now when nil).
func NewFrameClock(now func() time.Time) *FrameClock {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &FrameClock{now: now, last: t, lastDump: t}
}

// Tick starts a new frame and returns the time since the previous Tick.
// Timers finished during the previous frame become Reported and are then
// discarded.
func (c *FrameClock) Tick() time.Duration {
	t := c.now()
	c.delta = t.Sub(c.last)
	c.last = t
	if len(c.samples) < fpsSampleCap {
		c.samples = append(c.samples, c.delta)
	}
	if t.Sub(c.lastDump) > fpsInterval {
		c.fps = averageFPS(c.samples)
		c.samples = c.samples[:0]
		c.lastDump = t
	}
	c.reported = append(c.reported[:0], c.timers...)
	c.timers = c.timers[:0]
	return c.delta
}

// Delta returns the duration measured by the last Tick.
func (c *FrameClock) Delta() time.Duration { return c.delta }

// FPS returns the last averaged frame rate.
func (c *FrameClock) FPS() int { return c.fps }

// StartTimer opens a labelled span measured with the clock's time source.
func (c *FrameClock) StartTimer(label string) Timer {
	return Timer{Label: label, start: c.now(), now: c.now}
}

// Add records a finished timer for the current frame.
func (c *FrameClock) Add(t Timer) { c.timers = append(c.timers, t) }

// Reported returns the timers finished during the previous frame.
func (c *FrameClock) Reported() []Timer { return c.reported }

func averageFPS(samples []time.Duration) int {
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range samples {
		total += s
	}
	mean := total.Seconds() / float64(len(samples))
	if mean <= 0 {
		return 0
	}
	return int(1 / mean)
}

// Timer is a host-side diagnostic span.
type Timer struct {
	Label   string
	Elapsed time.Duration
	Done    bool

	start time.Time
	now   func() time.Time
}

// End finalizes the span.
func (t *Timer) End() {
	if t.Done {
		return
	}
	t.Elapsed = t.now().Sub(t.start)
	t.Done = true
}

// Stopwatch accumulates frame deltas. It only advances when told to, so a
// caller can freeze it while the simulation is paused.
type Stopwatch struct {
	elapsed time.Duration
}

// Advance adds dt to the elapsed time.
func (s *Stopwatch) Advance(dt time.Duration) {
	if dt > 0 {
		s.elapsed += dt
	}
}

// Elapsed returns the accumulated time since the last Reset.
func (s *Stopwatch) Elapsed() time.Duration { return s.elapsed }

// Reset restarts the stopwatch at zero.
func (s *Stopwatch) Reset() { s.elapsed = 0 }

// Interval converts a rate in Hz to a period. Rates that are not positive
// and finite yield ok == false.
func Interval(hz float64) (time.Duration, bool) {
	if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return 0, false
	}
	return time.Duration(float64(time.Second) / hz), true
}
