package sim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/apex/log"

	"automata/internal/camera"
	"automata/internal/core"
	"automata/internal/device"
	"automata/internal/edit"
	"automata/internal/render"

	// Kernel registrations.
	_ "automata/internal/sims/briansbrain"
	_ "automata/internal/sims/elementary"
	_ "automata/internal/sims/life"
	_ "automata/internal/sims/smoothlife"
)

// FrameStats summarises one submitted frame.
type FrameStats struct {
	FrameResult
	Edits      int
	Generation uint64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger routes lifecycle events to l.
func WithLogger(l log.Interface) Option {
	return func(s *Simulation) { s.log = l }
}

// WithEditCapacity overrides the edit queue size.
func WithEditCapacity(n int) Option {
	return func(s *Simulation) { s.editCap = n }
}

// WithClock records host-side timers for every frame into c.
func WithClock(c *core.FrameClock) Option {
	return func(s *Simulation) { s.clock = c }
}

// Simulation owns the grid pair, the edit queue, the active kernel, the
// scheduler and the presenter, and records one command buffer per frame.
type Simulation struct {
	dev     *device.Device
	log     log.Interface
	clock   *core.FrameClock
	editCap int

	store     *core.GridStore
	edits     *edit.Queue
	kernel    core.Kernel
	params    map[string]string
	sched     *Scheduler
	presenter *render.Presenter

	generation uint64
	lost       bool
}

// New builds every component for cfg. Any failure here is fatal to start-up.
func New(dev *device.Device, cfg Config, opts ...Option) (*Simulation, error) {
	s := &Simulation{dev: dev, log: log.Log, editCap: edit.DefaultCapacity, sched: NewScheduler()}
	for _, opt := range opts {
		opt(s)
	}
	size := cfg.Size()
	store, err := core.NewGridStore(dev, size.W, size.H, cfg.SeedPolicy(), cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	s.store = store
	if s.edits, err = edit.NewQueue(dev, s.editCap); err != nil {
		return nil, err
	}
	if s.presenter, err = render.NewPresenter(dev); err != nil {
		return nil, err
	}
	if err := s.RebuildKernel(cfg); err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{
		"w":       size.W,
		"h":       size.H,
		"seed":    cfg.SeedPolicy().String(),
		"kernel":  cfg.ActiveKernel.String(),
		"workers": dev.Workers(),
	}).Info("simulation created")
	return s, nil
}

// Store exposes the grid pair.
func (s *Simulation) Store() *core.GridStore { return s.store }

// Kernel returns the active kernel.
func (s *Simulation) Kernel() core.Kernel { return s.kernel }

// Edits exposes the edit queue.
func (s *Simulation) Edits() *edit.Queue { return s.edits }

// Generation counts steps since the grid was last created.
func (s *Simulation) Generation() uint64 { return s.generation }

// NeedsRecreate reports whether cfg asks for a different grid size or
// seeding.
func (s *Simulation) NeedsRecreate(cfg *Config) bool {
	return cfg.Size() != s.store.Size() || cfg.SeedPolicy() != s.store.Seed()
}

// NeedsRebuild reports whether cfg asks for a different kernel or kernel
// parameters.
func (s *Simulation) NeedsRebuild(cfg *Config) bool {
	return s.kernel == nil || s.kernel.ID() != cfg.ActiveKernel || !maps.Equal(s.params, cfg.KernelParams)
}

// Recreate replaces the grid with cfg's size and seeding and rebinds the
// kernel. On a grid error the previous grid stays in place.
func (s *Simulation) Recreate(cfg Config) error {
	size := cfg.Size()
	if err := s.store.Recreate(s.dev, size.W, size.H, cfg.SeedPolicy(), cfg.Seed); err != nil {
		s.log.WithError(err).WithFields(log.Fields{"w": size.W, "h": size.H}).Error("grid recreate failed")
		return fmt.Errorf("recreate: %w", err)
	}
	s.sched.Reset()
	s.generation = 0
	if err := s.edits.EnqueueBatch(nil); err != nil {
		return fmt.Errorf("recreate: %w", err)
	}
	if s.kernel != nil {
		if err := s.kernel.Bind(s.dev, s.store); err != nil {
			s.log.WithError(err).WithField("kernel", s.kernel.Name()).Error("kernel rebind failed")
			return fmt.Errorf("recreate: %w", err)
		}
	}
	s.log.WithFields(log.Fields{
		"w":     size.W,
		"h":     size.H,
		"seed":  cfg.SeedPolicy().String(),
		"epoch": s.store.Epoch(),
	}).Info("grid recreated")
	return nil
}

// Reset recreates the grid at its current size using cfg's seeding.
func (s *Simulation) Reset(cfg Config) error {
	size := s.store.Size()
	cfg.GridWidth, cfg.GridHeight = uint32(size.W), uint32(size.H)
	return s.Recreate(cfg)
}

// RebuildKernel compiles cfg.ActiveKernel against the current grid. The
// grid contents are kept. On failure the previous kernel stays active.
func (s *Simulation) RebuildKernel(cfg Config) error {
	k, err := core.NewKernel(cfg.ActiveKernel, cfg.KernelParams)
	if err != nil {
		return err
	}
	if err := k.Bind(s.dev, s.store); err != nil {
		s.log.WithError(err).WithField("kernel", k.Name()).Error("kernel build failed")
		return fmt.Errorf("kernel %s: %w", k.Name(), err)
	}
	if err := s.presenter.SetPalette(render.PaletteFor(k.ID())); err != nil {
		return err
	}
	s.kernel = k
	s.params = maps.Clone(cfg.KernelParams)
	s.log.WithField("kernel", k.Name()).Info("kernel active")
	return nil
}

// Frame turns input into edits, then records the edit flush, the scheduled
// step and the present pass into a single command buffer and submits it.
// target may be nil for headless stepping.
func (s *Simulation) Frame(ctx context.Context, cfg *Config, in Input, dt time.Duration, target *render.Target, view camera.Camera) (FrameStats, error) {
	var stats FrameStats
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	record := s.startTimer("record")

	var toWorld ScreenToWorld
	if target != nil {
		toWorld = CameraMapping(view, target.W, target.H)
	}
	if entries := in.Edits(cfg, s.store.Size(), toWorld); len(entries) > 0 {
		if err := s.edits.EnqueueBatch(entries); err != nil {
			return stats, err
		}
		stats.Edits = len(entries)
	}

	enc := s.dev.CreateCommandEncoder("frame")
	stats.FrameResult = s.sched.Frame(enc, cfg, dt, s.store, s.edits, s.kernel)
	if target != nil {
		s.presenter.Draw(enc, s.store, target, view)
	}
	cb, err := enc.Finish()
	if err != nil {
		s.rollback(stats.FrameResult)
		return stats, err
	}
	s.endTimer(record)

	submit := s.startTimer("submit")
	if err := s.dev.Queue().Submit(cb); err != nil {
		if errors.Is(err, device.ErrDeviceLost) && !s.lost {
			s.lost = true
			s.log.WithError(err).Error("device lost")
		}
		s.rollback(stats.FrameResult)
		return stats, err
	}
	s.endTimer(submit)

	if stats.Stepped {
		s.generation++
	}
	stats.Generation = s.generation
	return stats, nil
}

// Snapshot reads back the current grid after all submitted work.
func (s *Simulation) Snapshot(ctx context.Context) ([]float32, error) {
	return s.store.Snapshot(ctx)
}

// WaitIdle blocks until every submitted frame has executed.
func (s *Simulation) WaitIdle(ctx context.Context) error {
	return s.dev.Queue().WaitIdle(ctx)
}

// Close waits for submitted frames to finish and releases the grid. The
// simulation must not be used afterwards.
func (s *Simulation) Close(ctx context.Context) error {
	if err := s.WaitIdle(ctx); err != nil {
		return err
	}
	q := s.dev.Queue()
	s.store.Destroy()
	s.log.WithFields(log.Fields{
		"generation": s.generation,
		"submitted":  q.Submitted(),
		"completed":  q.Completed(),
	}).Debug("simulation closed")
	return nil
}

// rollback restores the roles, the pending edits and the step timing of a
// frame that was recorded but never submitted.
func (s *Simulation) rollback(res FrameResult) {
	if res.Flushed {
		s.store.Swap()
		s.edits.Requeue()
	}
	if res.Stepped {
		s.store.Swap()
	}
	s.sched.Rollback(res)
}

func (s *Simulation) startTimer(label string) *core.Timer {
	if s.clock == nil {
		return nil
	}
	t := s.clock.StartTimer(label)
	return &t
}

func (s *Simulation) endTimer(t *core.Timer) {
	if t == nil {
		return
	}
	t.End()
	s.clock.Add(*t)
}
