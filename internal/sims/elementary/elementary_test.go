package elementary

import (
	"context"
	"slices"
	"testing"

	"automata/internal/core"
	"automata/internal/device"
)

func step(t *testing.T, rule uint8, w, h int, grid []float32) []float32 {
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
	if err := device.WriteBuffer(dev.Queue(), store.Current(), 0, grid); err != nil {
		t.Fatal(err)
	}
	e := New(rule)
	if err := e.Bind(dev, store); err != nil {
		t.Fatal(err)
	}
	enc := dev.CreateCommandEncoder("step")
	e.Encode(enc, store)
	cb, err := enc.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Queue().Submit(cb); err != nil {
		t.Fatal(err)
	}
	store.Swap()
	out, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestRule110ScrollsHistory(t *testing.T) {
	grid := []float32{
		0, 0, 1, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
	}
	got := step(t, 110, 5, 3, grid)
	want := []float32{
		0, 1, 1, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 0, 0,
	}
	if !slices.Equal(got, want) {
		t.Fatalf("generation = %v, want %v", got, want)
	}
}

func TestEdgesReadAsZero(t *testing.T) {
	// Rule 1 only fires on an all-zero neighbourhood; with wrapping the
	// edge cells would see their live neighbour across the border.
	got := step(t, 1, 5, 1, []float32{0, 0, 0, 0, 1})
	if want := []float32{1, 1, 1, 0, 0}; !slices.Equal(got, want) {
		t.Fatalf("row = %v, want %v", got, want)
	}
	got = step(t, 1, 3, 1, []float32{0, 0, 0})
	if want := []float32{1, 1, 1}; !slices.Equal(got, want) {
		t.Fatalf("row = %v, want %v", got, want)
	}
}

func TestFromMap(t *testing.T) {
	if c := FromMap(map[string]string{"rule": "30"}); c.Rule != 30 {
		t.Fatalf("rule = %d", c.Rule)
	}
	if c := FromMap(map[string]string{"rule": "300"}); c.Rule != 110 {
		t.Fatalf("out of range rule accepted: %d", c.Rule)
	}
}
