package core

import (
	"context"
	"errors"
	"slices"
	"testing"

	"automata/internal/device"
)

func newDevice(t *testing.T) *device.Device {
	t.Helper()
	opts := device.DefaultOptions()
	opts.Workers = 2
	d, err := device.New(opts)
	if err != nil {
		t.Fatalf("device.New: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}

func readBoth(t *testing.T, d *device.Device, s *GridStore) ([]float32, []float32) {
	t.Helper()
	ctx := context.Background()
	cur, err := device.ReadBuffer(ctx, d.Queue(), s.Current())
	if err != nil {
		t.Fatal(err)
	}
	other, err := device.ReadBuffer(ctx, d.Queue(), s.Other())
	if err != nil {
		t.Fatal(err)
	}
	return cur, other
}

func TestGridStoreAllocatesBothBuffers(t *testing.T) {
	d := newDevice(t)
	for _, sz := range []Size{{1, 1}, {3, 7}, {64, 32}} {
		s, err := NewGridStore(d, sz.W, sz.H, SeedZero, 0)
		if err != nil {
			t.Fatalf("%v: %v", sz, err)
		}
		if s.Current().Len() != sz.W*sz.H || s.Other().Len() != sz.W*sz.H {
			t.Fatalf("%v: buffers %d/%d, want %d", sz, s.Current().Len(), s.Other().Len(), sz.W*sz.H)
		}
		if s.Current() == s.Other() {
			t.Fatalf("%v: current and other alias", sz)
		}
		if s.Size() != sz || s.Cells() != sz.W*sz.H {
			t.Fatalf("%v: size %v cells %d", sz, s.Size(), s.Cells())
		}
	}
}

func TestGridStoreRejectsZeroDimensions(t *testing.T) {
	d := newDevice(t)
	for _, sz := range []Size{{0, 5}, {5, 0}, {0, 0}, {-1, 4}} {
		if _, err := NewGridStore(d, sz.W, sz.H, SeedZero, 0); !errors.Is(err, ErrInvalidDimensions) {
			t.Fatalf("%v: err = %v, want ErrInvalidDimensions", sz, err)
		}
	}
}

func TestSwapIsItsOwnInverse(t *testing.T) {
	d := newDevice(t)
	s, err := NewGridStore(d, 4, 4, SeedRandom, 3)
	if err != nil {
		t.Fatal(err)
	}
	cur, other := s.Current(), s.Other()
	beforeCur, beforeOther := readBoth(t, d, s)

	s.Swap()
	if s.Current() != other || s.Other() != cur || s.Parity() != 1 {
		t.Fatal("single swap did not exchange roles")
	}
	s.Swap()
	if s.Current() != cur || s.Other() != other || s.Parity() != 0 {
		t.Fatal("double swap did not restore roles")
	}
	afterCur, afterOther := readBoth(t, d, s)
	if !slices.Equal(beforeCur, afterCur) || !slices.Equal(beforeOther, afterOther) {
		t.Fatal("swap changed buffer contents")
	}
}

func TestRandomSeedFillsBothBuffersIndependently(t *testing.T) {
	d := newDevice(t)
	s, err := NewGridStore(d, 16, 16, SeedRandom, 99)
	if err != nil {
		t.Fatal(err)
	}
	cur, other := readBoth(t, d, s)
	if slices.Equal(cur, other) {
		t.Fatal("random buffers are copies of each other")
	}
	for _, buf := range [][]float32{cur, other} {
		nonZero := 0
		for _, v := range buf {
			if v < 0 || v >= 1 {
				t.Fatalf("seed value %v outside [0,1)", v)
			}
			if v != 0 {
				nonZero++
			}
		}
		if nonZero == 0 {
			t.Fatal("random buffer left zeroed")
		}
	}
}

func TestZeroSeed(t *testing.T) {
	d := newDevice(t)
	s, err := NewGridStore(d, 5, 3, SeedZero, 99)
	if err != nil {
		t.Fatal(err)
	}
	cur, other := readBoth(t, d, s)
	for i := range cur {
		if cur[i] != 0 || other[i] != 0 {
			t.Fatalf("cell %d not zero: %v/%v", i, cur[i], other[i])
		}
	}
}

func TestRecreateResetsRolesAndDimensions(t *testing.T) {
	d := newDevice(t)
	s, err := NewGridStore(d, 4, 4, SeedZero, 0)
	if err != nil {
		t.Fatal(err)
	}
	epoch := s.Epoch()
	s.Swap()
	if err := s.Recreate(d, 8, 2, SeedRandom, 1); err != nil {
		t.Fatal(err)
	}
	if s.Parity() != 0 {
		t.Fatal("recreate did not reset the role flag")
	}
	if s.Size() != (Size{W: 8, H: 2}) || s.Current().Len() != 16 {
		t.Fatalf("recreate size %v len %d", s.Size(), s.Current().Len())
	}
	if s.Epoch() == epoch {
		t.Fatal("recreate kept the epoch")
	}
	if s.Seed() != SeedRandom {
		t.Fatalf("seed policy %v", s.Seed())
	}
}

func TestRecreateFailureKeepsPreviousState(t *testing.T) {
	d := newDevice(t)
	s, err := NewGridStore(d, 4, 4, SeedZero, 0)
	if err != nil {
		t.Fatal(err)
	}
	cur := s.Current()
	s.Swap()
	if err := s.Recreate(d, 0, 4, SeedZero, 0); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("err = %v", err)
	}
	if s.Size() != (Size{W: 4, H: 4}) || s.Other() != cur || s.Parity() != 1 {
		t.Fatal("failed recreate mutated the store")
	}
}

func TestGridStoreAllocationFailure(t *testing.T) {
	opts := device.DefaultOptions()
	opts.Limits.MaxBufferElements = 10
	d, err := device.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Destroy()
	if _, err := NewGridStore(d, 4, 4, SeedZero, 0); !errors.Is(err, device.ErrAllocation) {
		t.Fatalf("err = %v, want ErrAllocation", err)
	}
}

func TestInBoundsAndIndex(t *testing.T) {
	d := newDevice(t)
	s, err := NewGridStore(d, 3, 2, SeedZero, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !s.InBounds(2, 1) || s.InBounds(3, 0) || s.InBounds(0, 2) || s.InBounds(-1, 0) {
		t.Fatal("InBounds wrong")
	}
	if s.Index(2, 1) != 5 {
		t.Fatalf("Index(2,1) = %d", s.Index(2, 1))
	}
}
