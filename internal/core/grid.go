package core

import (
	"context"
	"errors"
	"fmt"

	"automata/internal/device"
	pcore "automata/pkg/core"
)

// ErrInvalidDimensions reports a grid with a zero (or negative) side.
var ErrInvalidDimensions = errors.New("core: invalid grid dimensions")

// ErrStaleBinding reports a kernel encoded against a store it was not bound to.
var ErrStaleBinding = errors.New("core: kernel bound to a different grid")

// SeedPolicy selects the initial contents of both grid buffers.
type SeedPolicy uint8

const (
	// SeedZero fills both buffers with zeros.
	SeedZero SeedPolicy = iota
	// SeedRandom fills both buffers with independent uniform values in [0,1).
	SeedRandom
)

func (p SeedPolicy) String() string {
	if p == SeedRandom {
		return "random"
	}
	return "zero"
}

// PingPong holds two values and a flag naming the current one.
type PingPong[T any] struct {
	slots  [2]T
	second bool
}

// NewPingPong returns a pair whose current value is first.
func NewPingPong[T any](first, second T) PingPong[T] {
	return PingPong[T]{slots: [2]T{first, second}}
}

// Current returns the value holding the latest committed state.
func (p *PingPong[T]) Current() T { return p.slots[p.Parity()] }

// Other returns the value the next step writes.
func (p *PingPong[T]) Other() T { return p.slots[1-p.Parity()] }

// Parity is 0 while the first value is current and 1 otherwise.
func (p *PingPong[T]) Parity() int {
	if p.second {
		return 1
	}
	return 0
}

// Swap flips the roles.
func (p *PingPong[T]) Swap() { p.second = !p.second }

// Slot returns the value at a fixed index, independent of the roles.
func (p *PingPong[T]) Slot(i int) T { return p.slots[i&1] }

// GridStore owns the two grid buffers of one logical grid. After NewGridStore
// and Recreate buffer A is current; no swap is ever performed during
// construction.
type GridStore struct {
	size  Size
	seed  SeedPolicy
	epoch uint64
	bufs  PingPong[*device.Buffer[float32]]
	dims  *device.Buffer[int32]
	queue *device.Queue
}

// NewGridStore allocates and seeds a w*h grid pair.
func NewGridStore(dev *device.Device, w, h int, policy SeedPolicy, seed int64) (*GridStore, error) {
	s := &GridStore{}
	if err := s.Recreate(dev, w, h, policy, seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Recreate replaces both buffers and resets the role flag. It is the only
// way to change dimensions. On error the store keeps its previous state.
func (s *GridStore) Recreate(dev *device.Device, w, h int, policy SeedPolicy, seed int64) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	n := w * h
	a, err := device.CreateBuffer[float32](dev, device.BufferDescriptor{Label: "grid_a", Len: n})
	if err != nil {
		return fmt.Errorf("grid buffer A: %w", err)
	}
	b, err := device.CreateBuffer[float32](dev, device.BufferDescriptor{Label: "grid_b", Len: n})
	if err != nil {
		return fmt.Errorf("grid buffer B: %w", err)
	}
	dims, err := device.CreateBuffer[int32](dev, device.BufferDescriptor{Label: "grid_dims", Len: 2})
	if err != nil {
		return fmt.Errorf("grid dims: %w", err)
	}
	if err := device.WriteBuffer(dev.Queue(), dims, 0, []int32{int32(w), int32(h)}); err != nil {
		return fmt.Errorf("grid dims: %w", err)
	}
	if policy == SeedRandom {
		streams := pcore.NewStreams(seed)
		host := make([]float32, n)
		for i, buf := range []*device.Buffer[float32]{a, b} {
			pcore.FillUniform(streams.Rand(uint64(i)), host)
			if err := device.WriteBuffer(dev.Queue(), buf, 0, host); err != nil {
				return fmt.Errorf("seed %s: %w", buf.Label(), err)
			}
		}
	}
	s.size = Size{W: w, H: h}
	s.seed = policy
	s.bufs = NewPingPong(a, b)
	s.dims = dims
	s.queue = dev.Queue()
	s.epoch++
	return nil
}

// Size returns the grid dimensions.
func (s *GridStore) Size() Size { return s.size }

// Cells returns W*H.
func (s *GridStore) Cells() int { return s.size.W * s.size.H }

// Seed returns the policy used by the last (re)creation.
func (s *GridStore) Seed() SeedPolicy { return s.seed }

// Epoch changes every time the buffers are replaced.
func (s *GridStore) Epoch() uint64 { return s.epoch }

// Current returns the buffer holding the latest committed state.
func (s *GridStore) Current() *device.Buffer[float32] { return s.bufs.Current() }

// Other returns the write target of the next pass.
func (s *GridStore) Other() *device.Buffer[float32] { return s.bufs.Other() }

// Buffer returns A (0) or B (1) regardless of roles.
func (s *GridStore) Buffer(i int) *device.Buffer[float32] { return s.bufs.Slot(i) }

// Dims returns a two-element {W, H} buffer shaders bind to learn the grid
// size.
func (s *GridStore) Dims() *device.Buffer[int32] { return s.dims }

// Parity is 0 while A is current.
func (s *GridStore) Parity() int { return s.bufs.Parity() }

// Swap flips current and other without moving data.
func (s *GridStore) Swap() { s.bufs.Swap() }

// Index returns the linear index for coordinates (x, y).
func (s *GridStore) Index(x, y int) int { return y*s.size.W + x }

// InBounds reports whether (x, y) addresses a cell.
func (s *GridStore) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.size.W && y < s.size.H
}

// Snapshot reads the current buffer back to the host after all queued work.
// It is a diagnostic path and never runs during a normal frame.
func (s *GridStore) Snapshot(ctx context.Context) ([]float32, error) {
	return device.ReadBuffer(ctx, s.queue, s.Current())
}

// Destroy releases the buffers. Callers wait for the queue to go idle first;
// replaced buffers from Recreate are left to in-flight work and the collector.
func (s *GridStore) Destroy() {
	for i := 0; i < 2; i++ {
		if b := s.bufs.Slot(i); b != nil {
			b.Destroy()
		}
	}
	if s.dims != nil {
		s.dims.Destroy()
	}
}
