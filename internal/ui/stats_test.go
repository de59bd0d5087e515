package ui

import (
	"errors"
	"slices"
	"testing"
	"time"

	"automata/internal/core"
)

func TestStatsLines(t *testing.T) {
	s := Stats{
		FPS:        60,
		Generation: 12,
		Kernel:     "life",
		Size:       core.Size{W: 64, H: 32},
		Running:    true,
		RateHz:     30,
		Limited:    true,
		Timers: []core.Timer{
			{Label: "record", Elapsed: 1500 * time.Microsecond, Done: true},
			{Label: "open"},
		},
	}
	want := []string{
		"FPS 60",
		"life 64x32",
		"gen 12 (running, 30 Hz)",
		"record     1.50 ms",
	}
	if got := s.Lines(); !slices.Equal(got, want) {
		t.Fatalf("lines = %q", got)
	}

	s.Running, s.Limited, s.Timers = false, false, nil
	s.Err = errors.New("device lost")
	got := s.Lines()
	if got[2] != "gen 12 (paused, unlimited)" || got[len(got)-1] != "error: device lost" {
		t.Fatalf("lines = %q", got)
	}
}
