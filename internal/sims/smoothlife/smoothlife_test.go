package smoothlife

import (
	"context"
	"errors"
	"math"
	"testing"

	"automata/internal/core"
	"automata/internal/device"
	pcore "automata/pkg/core"
)

// directStep computes one generation with explicit neighbourhood sums.
func directStep(cfg Config, grid []float32, w, h int) []float32 {
	reach := cfg.Reach()
	var innerArea, ringArea float64
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			d := math.Hypot(float64(dx), float64(dy))
			innerArea += cfg.InnerWeight(d)
			ringArea += cfg.RingWeight(d)
		}
	}
	out := make([]float32, len(grid))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var m, n float64
			for dy := -reach; dy <= reach; dy++ {
				for dx := -reach; dx <= reach; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					d := math.Hypot(float64(dx), float64(dy))
					v := float64(grid[ny*w+nx])
					m += cfg.InnerWeight(d) * v
					n += cfg.RingWeight(d) * v
				}
			}
			idx := y*w + x
			out[idx] = float32(cfg.Next(float64(grid[idx]), clamp01(n/ringArea), clamp01(m/innerArea)))
		}
	}
	return out
}

func runStep(t *testing.T, cfg Config, w, h int, seed int64) (got, want []float32) {
	t.Helper()
	opts := device.DefaultOptions()
	opts.Workers = 3
	dev, err := device.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Destroy()
	store, err := core.NewGridStore(dev, w, h, core.SeedZero, 0)
	if err != nil {
		t.Fatal(err)
	}
	grid := make([]float32, w*h)
	pcore.FillUniform(pcore.NewStreams(seed).Rand(0), grid)
	// Leave a dense blob against the left border.
	for y := 0; y < h/2; y++ {
		grid[y*w] = 1
		grid[y*w+1] = 1
	}
	if err := device.WriteBuffer(dev.Queue(), store.Current(), 0, grid); err != nil {
		t.Fatal(err)
	}
	k := New(cfg)
	if err := k.Bind(dev, store); err != nil {
		t.Fatal(err)
	}
	enc := dev.CreateCommandEncoder("step")
	k.Encode(enc, store)
	cb, err := enc.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Queue().Submit(cb); err != nil {
		t.Fatal(err)
	}
	store.Swap()
	got, err = store.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return got, directStep(cfg, grid, w, h)
}

func TestFFTStepMatchesDirectSums(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InnerRadius = 2
	for _, sz := range [][2]int{{12, 10}, {17, 9}} {
		got, want := runStep(t, cfg, sz[0], sz[1], 42)
		for i := range want {
			if math.Abs(float64(got[i]-want[i])) > 2e-3 {
				t.Fatalf("%dx%d cell %d: fft %v, direct %v", sz[0], sz[1], i, got[i], want[i])
			}
		}
	}
}

func TestSmoothTimeStepping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InnerRadius = 1.5
	cfg.DT = 0.1
	got, want := runStep(t, cfg, 9, 9, 7)
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 2e-3 {
			t.Fatalf("cell %d: fft %v, direct %v", i, got[i], want[i])
		}
	}
}

func TestTransitionThresholds(t *testing.T) {
	cfg := DefaultConfig()
	if s := cfg.Transition(0.3, 0); s < 0.9 {
		t.Fatalf("birth band s = %v", s)
	}
	if s := cfg.Transition(0.05, 0); s > 0.01 {
		t.Fatalf("empty neighbourhood s = %v", s)
	}
	if s := cfg.Transition(0.35, 1); s < 0.9 {
		t.Fatalf("survival band s = %v", s)
	}
	if s := cfg.Transition(0.9, 1); s > 0.01 {
		t.Fatalf("overcrowded s = %v", s)
	}
}

func TestWeights(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.InnerWeight(0) != 1 || cfg.RingWeight(0) != 0 {
		t.Fatal("centre belongs to the inner disk only")
	}
	if w := cfg.InnerWeight(cfg.InnerRadius); w != 0.5 {
		t.Fatalf("inner edge weight = %v", w)
	}
	if w := cfg.RingWeight(8); w != 1 {
		t.Fatalf("mid ring weight = %v", w)
	}
	if w := cfg.RingWeight(cfg.OuterRadius() + 1); w != 0 {
		t.Fatalf("outside weight = %v", w)
	}
}

func TestPaddingAvoidsWrap(t *testing.T) {
	cfg := DefaultConfig()
	p := newPlan(cfg, 100, 30)
	if p.nx < 100+cfg.Reach() || p.ny < 30+cfg.Reach() {
		t.Fatalf("padded plane %dx%d too small", p.nx, p.ny)
	}
	if p.nx != 100+cfg.Reach() || p.ny != 30+cfg.Reach() {
		t.Fatalf("padded plane %dx%d larger than needed", p.nx, p.ny)
	}
}

func TestBindRejectsSpectraOverLimit(t *testing.T) {
	opts := device.DefaultOptions()
	opts.Workers = 2
	opts.Limits.MaxBufferElements = 4096
	dev, err := device.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Destroy()
	// The grid itself fits; its padded spectra do not.
	store, err := core.NewGridStore(dev, 60, 60, core.SeedZero, 0)
	if err != nil {
		t.Fatal(err)
	}
	k := New(DefaultConfig())
	if err := k.Bind(dev, store); !errors.Is(err, device.ErrAllocation) {
		t.Fatalf("Bind err = %v, want ErrAllocation", err)
	}
	if k.plan != nil {
		t.Fatal("failed Bind kept a plan")
	}

	small, err := core.NewGridStore(dev, 8, 8, core.SeedZero, 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.InnerRadius = 2
	if err := New(cfg).Bind(dev, small); err != nil {
		t.Fatalf("small grid: %v", err)
	}
}

func TestFromMap(t *testing.T) {
	c := FromMap(map[string]string{"ri": "6", "dt": "0.2", "b1": "-1"})
	if c.InnerRadius != 6 || c.OuterRadius() != 18 || c.DT != 0.2 {
		t.Fatalf("config = %+v", c)
	}
	if c.B1 != DefaultConfig().B1 {
		t.Fatalf("negative b1 accepted: %v", c.B1)
	}
}
