package sim

import (
	"time"

	"automata/internal/core"
	"automata/internal/device"
	"automata/internal/edit"
)

// FrameResult reports what a frame recorded.
type FrameResult struct {
	Flushed bool
	Stepped bool

	// sinceStep is the stopwatch reading a step reset.
	sinceStep time.Duration
}

// Scheduler decides per frame whether to flush edits and whether to advance
// the automaton, independently of the render cadence.
type Scheduler struct {
	sinceStep core.Stopwatch
}

// NewScheduler returns a scheduler with a zeroed stopwatch.
func NewScheduler() *Scheduler { return &Scheduler{} }

// Reset zeroes the time since the last step.
func (s *Scheduler) Reset() { s.sinceStep.Reset() }

// SinceStep returns the accumulated running time since the last step.
func (s *Scheduler) SinceStep() time.Duration { return s.sinceStep.Elapsed() }

// Frame records this frame's flush and step into enc and swaps the store
// after each. Edits are flushed even while paused. The stopwatch only
// accumulates while running, so paused time never counts towards a step.
func (s *Scheduler) Frame(enc *device.CommandEncoder, cfg *Config, dt time.Duration, store *core.GridStore, edits *edit.Queue, kernel core.Kernel) FrameResult {
	var res FrameResult
	if edits != nil && edits.Flush(enc, store) {
		store.Swap()
		res.Flushed = true
	}
	if !cfg.Running || kernel == nil {
		return res
	}
	if cfg.RateLimited {
		s.sinceStep.Advance(dt)
		interval, ok := core.Interval(cfg.UpdateRateHz)
		if !ok || s.sinceStep.Elapsed() <= interval-dt {
			return res
		}
		res.sinceStep = s.sinceStep.Elapsed()
		s.sinceStep.Reset()
	}
	kernel.Encode(enc, store)
	store.Swap()
	res.Stepped = true
	return res
}

// Rollback undoes the stopwatch reset of a frame that was recorded but
// never submitted, so the pending step fires on the next frame.
func (s *Scheduler) Rollback(res FrameResult) {
	if res.Stepped && res.sinceStep > 0 {
		s.sinceStep.Reset()
		s.sinceStep.Advance(res.sinceStep)
	}
}
