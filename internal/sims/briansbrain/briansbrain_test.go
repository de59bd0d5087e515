package briansbrain

import (
	"context"
	"testing"

	"automata/internal/core"
	"automata/internal/device"
)

func run(t *testing.T, w, h int, cells map[[2]int]float32, steps int) [][]float32 {
	t.Helper()
	opts := device.DefaultOptions()
	opts.Workers = 2
	dev, err := device.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Destroy()
	store, err := core.NewGridStore(dev, w, h, core.SeedZero, 0)
	if err != nil {
		t.Fatal(err)
	}
	host := make([]float32, w*h)
	for p, v := range cells {
		host[store.Index(p[0], p[1])] = v
	}
	if err := device.WriteBuffer(dev.Queue(), store.Current(), 0, host); err != nil {
		t.Fatal(err)
	}
	b := New()
	if err := b.Bind(dev, store); err != nil {
		t.Fatal(err)
	}
	var out [][]float32
	for i := 0; i < steps; i++ {
		enc := dev.CreateCommandEncoder("step")
		b.Encode(enc, store)
		cb, err := enc.Finish()
		if err != nil {
			t.Fatal(err)
		}
		if err := dev.Queue().Submit(cb); err != nil {
			t.Fatal(err)
		}
		store.Swap()
		snap, err := store.Snapshot(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, snap)
	}
	return out
}

func TestFiringCellsDecay(t *testing.T) {
	const w = 5
	gens := run(t, w, 5, map[[2]int]float32{{1, 2}: StateOn, {3, 2}: StateOn}, 2)
	at := func(g []float32, x, y int) float32 { return g[y*w+x] }

	first := gens[0]
	if at(first, 1, 2) != StateDying || at(first, 3, 2) != StateDying {
		t.Fatalf("firing cells did not start dying: %v %v", at(first, 1, 2), at(first, 3, 2))
	}
	for _, p := range [][2]int{{2, 1}, {2, 2}, {2, 3}} {
		if at(first, p[0], p[1]) != StateOn {
			t.Fatalf("cell %v with two firing neighbours = %v", p, at(first, p[0], p[1]))
		}
	}
	if at(first, 0, 2) != StateDead {
		t.Fatalf("cell with one firing neighbour fired")
	}

	second := gens[1]
	if at(second, 1, 2) != StateDead || at(second, 3, 2) != StateDead {
		t.Fatal("dying cells did not die")
	}
	if at(second, 2, 2) != StateDying {
		t.Fatalf("centre = %v, want dying", at(second, 2, 2))
	}
}

func TestStateQuantization(t *testing.T) {
	cases := map[float32]float32{0: StateDead, 0.2: StateDead, 0.3: StateDying, 0.5: StateDying, 0.8: StateOn, 1: StateOn}
	for in, want := range cases {
		if got := state(in); got != want {
			t.Fatalf("state(%v) = %v, want %v", in, got, want)
		}
	}
}
