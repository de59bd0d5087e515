package app

import (
	"flag"
	"fmt"

	"github.com/apex/log"

	"automata/internal/core"
	"automata/internal/device"
	"automata/internal/edit"
	"automata/internal/sim"
)

// Config represents the command-line parameters for the application.
type Config struct {
	Width     int
	Height    int
	Kernel    string
	Rate      float64
	Unlimited bool
	Paused    bool
	Random    bool
	Seed      int64
	Brush     int
	Radius    int

	Scale    int
	TPS      int
	Workers  int
	Frames   int
	LogLevel string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	d := sim.DefaultConfig()
	return &Config{
		Width:    int(d.GridWidth),
		Height:   int(d.GridHeight),
		Kernel:   d.ActiveKernel.String(),
		Rate:     d.UpdateRateHz,
		Random:   d.GenerateRandom,
		Seed:     d.Seed,
		Brush:    int(d.BrushKind),
		Radius:   int(d.BrushRadius),
		Scale:    3,
		TPS:      60,
		Frames:   2,
		LogLevel: "info",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "w", c.Width, "grid width in cells")
	fs.IntVar(&c.Height, "h", c.Height, "grid height in cells")
	fs.StringVar(&c.Kernel, "kernel", c.Kernel, "automaton to run (life, smoothlife, briansbrain, elementary)")
	fs.Float64Var(&c.Rate, "rate", c.Rate, "generations per second when rate limited")
	fs.BoolVar(&c.Unlimited, "unlimited", c.Unlimited, "step once per rendered frame")
	fs.BoolVar(&c.Paused, "paused", c.Paused, "start paused")
	fs.BoolVar(&c.Random, "random", c.Random, "seed the grid with uniform noise")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for random grids")
	fs.IntVar(&c.Brush, "brush", c.Brush, "brush shape: 1 square, 2 disk, 3 soft")
	fs.IntVar(&c.Radius, "radius", c.Radius, "brush radius in cells")
	fs.IntVar(&c.Scale, "scale", c.Scale, "window pixels per cell")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.IntVar(&c.Workers, "workers", c.Workers, "device worker goroutines (0 uses every CPU)")
	fs.IntVar(&c.Frames, "frames-in-flight", c.Frames, "submitted frames allowed to be pending")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
}

// Level parses LogLevel.
func (c *Config) Level() (log.Level, error) {
	return log.ParseLevel(c.LogLevel)
}

// DeviceOptions derives the compute device options.
func (c *Config) DeviceOptions() device.Options {
	opts := device.DefaultOptions()
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	if c.Frames > 0 {
		opts.MaxFramesInFlight = c.Frames
	}
	return opts
}

// ToSim validates the flags and builds the simulation configuration.
func (c *Config) ToSim() (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if c.Width < sim.MinGridSize || c.Width > sim.MaxGridSize || c.Height < sim.MinGridSize || c.Height > sim.MaxGridSize {
		return cfg, fmt.Errorf("%w: %dx%d", core.ErrInvalidDimensions, c.Width, c.Height)
	}
	id, err := core.ParseKernelID(c.Kernel)
	if err != nil {
		return cfg, err
	}
	if c.Brush < int(edit.BrushSquare) || c.Brush > int(edit.BrushSoft) {
		return cfg, fmt.Errorf("brush %d: want 1, 2 or 3", c.Brush)
	}
	if c.Radius < 0 {
		return cfg, fmt.Errorf("brush radius %d is negative", c.Radius)
	}
	cfg.GridWidth, cfg.GridHeight = uint32(c.Width), uint32(c.Height)
	cfg.ActiveKernel = id
	cfg.UpdateRateHz = c.Rate
	cfg.RateLimited = !c.Unlimited
	cfg.Running = !c.Paused
	cfg.GenerateRandom = c.Random
	cfg.Seed = c.Seed
	cfg.BrushKind = int32(c.Brush)
	cfg.BrushRadius = int32(c.Radius)
	return cfg, nil
}
