package sim

import (
	"maps"
	"strconv"

	"automata/internal/core"
	"automata/internal/edit"
)

// Grid size bounds exposed on the HUD.
const (
	MinGridSize = 1
	MaxGridSize = 8192
)

// Config is the plain, per-frame simulation configuration. It is read fresh
// every frame. Changes to the grid size, seeding or kernel only take effect
// through Simulation.Recreate and Simulation.RebuildKernel.
type Config struct {
	GridWidth      uint32
	GridHeight     uint32
	GenerateRandom bool
	Seed           int64

	UpdateRateHz float64
	RateLimited  bool
	Running      bool

	ActiveKernel core.KernelID
	KernelParams map[string]string

	BrushKind   int32
	BrushRadius int32
}

// DefaultConfig mirrors the start-up state of the interactive viewer.
func DefaultConfig() Config {
	return Config{
		GridWidth:      256,
		GridHeight:     256,
		GenerateRandom: true,
		Seed:           42,
		UpdateRateHz:   30,
		RateLimited:    true,
		Running:        true,
		ActiveKernel:   core.GameOfLife,
		BrushKind:      edit.BrushDisk,
		BrushRadius:    20,
	}
}

// Clone returns a copy that shares no maps with c.
func (c Config) Clone() Config {
	c.KernelParams = maps.Clone(c.KernelParams)
	return c
}

// SeedPolicy maps GenerateRandom onto the store's seeding policy.
func (c Config) SeedPolicy() core.SeedPolicy {
	if c.GenerateRandom {
		return core.SeedRandom
	}
	return core.SeedZero
}

// Size returns the configured grid dimensions.
func (c Config) Size() core.Size {
	return core.Size{W: int(c.GridWidth), H: int(c.GridHeight)}
}

// ParameterControls lists the HUD-adjustable fields.
func (c *Config) ParameterControls() []core.ParameterControl {
	kernels := core.Kernels()
	maxKernel := 0.0
	if len(kernels) > 0 {
		maxKernel = float64(kernels[len(kernels)-1])
	}
	return []core.ParameterControl{
		{Key: "size", Label: "Grid size", Type: core.ParamTypeInt, Step: 16, Min: MinGridSize, Max: MaxGridSize, HasMin: true, HasMax: true},
		{Key: "rate", Label: "Update rate", Type: core.ParamTypeFloat, Step: 5, Min: 5, Max: 144, HasMin: true, HasMax: true},
		{Key: "limited", Label: "Rate limited", Type: core.ParamTypeBool},
		{Key: "running", Label: "Running", Type: core.ParamTypeBool},
		{Key: "random", Label: "Generate random", Type: core.ParamTypeBool},
		{Key: "kernel", Label: "Kernel", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: maxKernel, HasMin: true, HasMax: true},
		{Key: "brush", Label: "Brush", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: float64(edit.BrushSoft), HasMin: true, HasMax: true},
		{Key: "radius", Label: "Brush radius", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: 64, HasMin: true, HasMax: true},
	}
}

// Parameters snapshots the current values for display.
func (c *Config) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				{Key: "size", Label: "Grid size", Type: core.ParamTypeInt, Value: strconv.Itoa(int(c.GridWidth)), Description: "cells per side, applied on reset"},
				{Key: "random", Label: "Generate random", Type: core.ParamTypeBool, Value: strconv.FormatBool(c.GenerateRandom)},
			},
		},
		{
			Name: "Schedule",
			Params: []core.Parameter{
				{Key: "rate", Label: "Update rate", Type: core.ParamTypeFloat, Value: strconv.FormatFloat(c.UpdateRateHz, 'f', -1, 64), Description: "generations per second"},
				{Key: "limited", Label: "Rate limited", Type: core.ParamTypeBool, Value: strconv.FormatBool(c.RateLimited)},
				{Key: "running", Label: "Running", Type: core.ParamTypeBool, Value: strconv.FormatBool(c.Running)},
			},
		},
		{
			Name:    "Kernel",
			Summary: c.ActiveKernel.String(),
			Params: []core.Parameter{
				{Key: "kernel", Label: "Kernel", Type: core.ParamTypeInt, Value: strconv.Itoa(int(c.ActiveKernel)), Description: c.ActiveKernel.String()},
				{Key: "brush", Label: "Brush", Type: core.ParamTypeInt, Value: strconv.Itoa(int(c.BrushKind))},
				{Key: "radius", Label: "Brush radius", Type: core.ParamTypeInt, Value: strconv.Itoa(int(c.BrushRadius))},
			},
		},
	}}
}

// SetIntParameter updates integer fields. The grid stays square, as on the
// HUD slider.
func (c *Config) SetIntParameter(key string, value int) bool {
	switch key {
	case "size":
		if value < MinGridSize || value > MaxGridSize {
			return false
		}
		c.GridWidth, c.GridHeight = uint32(value), uint32(value)
	case "kernel":
		if value < 0 || value > 255 {
			return false
		}
		id := core.KernelID(value)
		if _, err := core.ParseKernelID(id.String()); err != nil {
			return false
		}
		c.ActiveKernel = id
	case "brush":
		if value < 1 || value > int(edit.BrushSoft) {
			return false
		}
		c.BrushKind = int32(value)
	case "radius":
		if value < 0 {
			return false
		}
		c.BrushRadius = int32(value)
	default:
		return false
	}
	return true
}

// SetFloatParameter updates floating point fields.
func (c *Config) SetFloatParameter(key string, value float64) bool {
	if key != "rate" || value < 0 {
		return false
	}
	c.UpdateRateHz = value
	return true
}

// SetBoolParameter toggles boolean fields.
func (c *Config) SetBoolParameter(key string, value bool) bool {
	switch key {
	case "limited":
		c.RateLimited = value
	case "running":
		c.Running = value
	case "random":
		c.GenerateRandom = value
	default:
		return false
	}
	return true
}
