package main

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"

	"automata/internal/core"
)

func TestSweepRunsEveryScenario(t *testing.T) {
	h := memory.New()
	logger := &log.Logger{Handler: h, Level: log.InfoLevel}
	sets := scenarios([]core.KernelID{core.GameOfLife, core.BriansBrain}, []int{8, 16})
	results := sweep(context.Background(), sets, sweepOptions{steps: 5, workers: 2, deviceWorkers: 2, seed: 1}, logger)
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	for _, r := range results {
		if r.err != nil {
			t.Fatalf("%s: %v", r.scenario, r.err)
		}
		if r.generations != 5 {
			t.Fatalf("%s: generations = %d", r.scenario, r.generations)
		}
		if r.mean < 0 || r.mean > 1 {
			t.Fatalf("%s: mean = %v", r.scenario, r.mean)
		}
	}
	done := 0
	for _, e := range h.Entries {
		if e.Message == "scenario done" {
			done++
		}
	}
	if done != 4 {
		t.Fatalf("logged %d finished scenarios", done)
	}
}

func TestParseFlags(t *testing.T) {
	sizes, err := parseSizes("8, 32,,64")
	if err != nil || !slices.Equal(sizes, []int{8, 32, 64}) {
		t.Fatalf("sizes = %v, %v", sizes, err)
	}
	if _, err := parseSizes("8,-1"); !errors.Is(err, core.ErrInvalidDimensions) {
		t.Fatalf("err = %v", err)
	}
	ids, err := parseKernels("life, smoothlife")
	if err != nil || !slices.Equal(ids, []core.KernelID{core.GameOfLife, core.SmoothLife}) {
		t.Fatalf("kernels = %v, %v", ids, err)
	}
	if all, _ := parseKernels(""); len(all) != 4 {
		t.Fatalf("default kernels = %v", all)
	}
}
