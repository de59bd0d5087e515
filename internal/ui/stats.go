package ui

import (
	"fmt"
	"time"

	"automata/internal/core"
)

// Stats is the per-frame diagnostic state shown by the overlay.
type Stats struct {
	FPS        int
	Generation uint64
	Kernel     string
	Size       core.Size
	Running    bool
	RateHz     float64
	Limited    bool
	Timers     []core.Timer
	Err        error
}

// Lines formats s for display, one entry per row.
func (s Stats) Lines() []string {
	state := "running"
	if !s.Running {
		state = "paused"
	}
	rate := "unlimited"
	if s.Limited {
		rate = fmt.Sprintf("%.0f Hz", s.RateHz)
	}
	lines := []string{
		fmt.Sprintf("FPS %d", s.FPS),
		fmt.Sprintf("%s %dx%d", s.Kernel, s.Size.W, s.Size.H),
		fmt.Sprintf("gen %d (%s, %s)", s.Generation, state, rate),
	}
	for _, t := range s.Timers {
		if !t.Done {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-8s %6.2f ms", t.Label, float64(t.Elapsed)/float64(time.Millisecond)))
	}
	if s.Err != nil {
		lines = append(lines, "error: "+s.Err.Error())
	}
	return lines
}
