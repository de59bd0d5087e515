package sim

import (
	"math"
	"testing"
	"time"

	"automata/internal/core"
	"automata/internal/device"
	"automata/internal/edit"
)

type countingKernel struct{ encoded int }

func (k *countingKernel) ID() core.KernelID { return core.GameOfLife }

func (k *countingKernel) Name() string { return "counting" }

func (k *countingKernel) Bind(*device.Device, *core.GridStore) error { return nil }

func (k *countingKernel) Encode(*device.CommandEncoder, *core.GridStore) { k.encoded++ }

func newStore(t *testing.T) (*device.Device, *core.GridStore) {
	t.Helper()
	opts := device.DefaultOptions()
	opts.Workers = 2
	dev, err := device.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(dev.Destroy)
	store, err := core.NewGridStore(dev, 4, 4, core.SeedZero, 0)
	if err != nil {
		t.Fatal(err)
	}
	return dev, store
}

func runFrames(dev *device.Device, s *Scheduler, cfg *Config, store *core.GridStore, k core.Kernel, n int, dt time.Duration) int {
	steps := 0
	for i := 0; i < n; i++ {
		enc := dev.CreateCommandEncoder("frame")
		if s.Frame(enc, cfg, dt, store, nil, k).Stepped {
			steps++
		}
	}
	return steps
}

func TestRateLimitedStepsAtRate(t *testing.T) {
	dev, store := newStore(t)
	cfg := DefaultConfig()
	cfg.UpdateRateHz = 10
	k := &countingKernel{}
	s := NewScheduler()

	// 16ms frames against a 100ms interval step every sixth frame.
	steps := runFrames(dev, s, &cfg, store, k, 60, 16*time.Millisecond)
	if steps != 10 || k.encoded != 10 {
		t.Fatalf("steps = %d, encoded = %d, want 10", steps, k.encoded)
	}
	if store.Parity() != 0 {
		t.Fatalf("parity = %d after an even number of steps", store.Parity())
	}
}

func TestRateLimitedIsDeterministic(t *testing.T) {
	dev, store := newStore(t)
	cfg := DefaultConfig()
	cfg.UpdateRateHz = 24
	var first []bool
	for run := 0; run < 2; run++ {
		s := NewScheduler()
		var pattern []bool
		for i := 0; i < 50; i++ {
			enc := dev.CreateCommandEncoder("frame")
			pattern = append(pattern, s.Frame(enc, &cfg, 7*time.Millisecond, store, nil, &countingKernel{}).Stepped)
		}
		if run == 0 {
			first = pattern
			continue
		}
		for i := range pattern {
			if pattern[i] != first[i] {
				t.Fatalf("frame %d differs between runs", i)
			}
		}
	}
}

func TestNonPositiveRateNeverSteps(t *testing.T) {
	dev, store := newStore(t)
	for _, rate := range []float64{0, -3, math.NaN()} {
		cfg := DefaultConfig()
		cfg.UpdateRateHz = rate
		k := &countingKernel{}
		if steps := runFrames(dev, NewScheduler(), &cfg, store, k, 100, 50*time.Millisecond); steps != 0 {
			t.Fatalf("rate %v stepped %d times", rate, steps)
		}
	}
}

func TestUnlimitedStepsEveryRunningFrame(t *testing.T) {
	dev, store := newStore(t)
	cfg := DefaultConfig()
	cfg.RateLimited = false
	k := &countingKernel{}
	s := NewScheduler()
	if steps := runFrames(dev, s, &cfg, store, k, 7, time.Millisecond); steps != 7 {
		t.Fatalf("steps = %d", steps)
	}
	cfg.Running = false
	if steps := runFrames(dev, s, &cfg, store, k, 7, time.Millisecond); steps != 0 {
		t.Fatalf("paused steps = %d", steps)
	}
}

func TestPauseFreezesStopwatch(t *testing.T) {
	dev, store := newStore(t)
	cfg := DefaultConfig()
	cfg.UpdateRateHz = 10
	k := &countingKernel{}
	s := NewScheduler()

	runFrames(dev, s, &cfg, store, k, 3, 16*time.Millisecond)
	before := s.SinceStep()
	if before != 48*time.Millisecond {
		t.Fatalf("since step = %v", before)
	}
	cfg.Running = false
	runFrames(dev, s, &cfg, store, k, 100, 16*time.Millisecond)
	if s.SinceStep() != before {
		t.Fatalf("paused stopwatch moved to %v", s.SinceStep())
	}
	cfg.Running = true
	if steps := runFrames(dev, s, &cfg, store, k, 2, 16*time.Millisecond); steps != 0 {
		t.Fatal("stepped before the interval elapsed")
	}
	if steps := runFrames(dev, s, &cfg, store, k, 1, 16*time.Millisecond); steps != 1 {
		t.Fatal("no step once the interval elapsed")
	}
	if s.SinceStep() != 0 {
		t.Fatalf("stopwatch not reset after step: %v", s.SinceStep())
	}
}

func TestFlushIgnoresRunning(t *testing.T) {
	dev, store := newStore(t)
	q, err := edit.NewQueue(dev, 4)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Running = false
	s := NewScheduler()
	if err := q.EnqueueBatch([]edit.Entry{{X: 1, Y: 1, Kind: 1}}); err != nil {
		t.Fatal(err)
	}
	enc := dev.CreateCommandEncoder("frame")
	res := s.Frame(enc, &cfg, time.Second, store, q, &countingKernel{})
	if !res.Flushed || res.Stepped {
		t.Fatalf("result = %+v", res)
	}
	if store.Parity() != 1 {
		t.Fatal("flush did not swap")
	}
	enc = dev.CreateCommandEncoder("frame")
	if res := s.Frame(enc, &cfg, time.Second, store, q, &countingKernel{}); res.Flushed {
		t.Fatal("second frame flushed again")
	}
	if store.Parity() != 1 {
		t.Fatal("idle frame swapped")
	}
}
