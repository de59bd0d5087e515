package elementary

import (
	"fmt"
	"strconv"

	"automata/internal/core"
	"automata/internal/device"
)

// Config holds parameters for the elementary cellular automaton.
type Config struct {
	Rule uint8
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Rule: 110}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["rule"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 255 {
			c.Rule = uint8(parsed)
		}
	}
	return c
}

const workgroup = 8

var layout = core.GridLayout("elementary")

// Elementary runs a one-dimensional Wolfram code on the top row and scrolls
// history downwards, one row per generation.
type Elementary struct {
	rule     uint8
	pipeline *device.ComputePipeline
	groups   core.ParityGroups
}

// New creates an automaton with the given rule.
func New(rule uint8) *Elementary { return &Elementary{rule: rule} }

// ID identifies the kernel.
func (e *Elementary) ID() core.KernelID { return core.Elementary }

// Name returns the simulation identifier.
func (e *Elementary) Name() string { return "elementary" }

// Bind compiles the step pipeline and binds both parities of store.
func (e *Elementary) Bind(dev *device.Device, store *core.GridStore) error {
	pipeline, err := dev.CreateComputePipeline(device.ComputePipelineDescriptor{
		Label:         "elementary_step",
		Layouts:       []*device.BindGroupLayout{layout},
		WorkgroupSize: [3]uint32{workgroup, workgroup, 1},
		Shader:        e.shader,
	})
	if err != nil {
		return fmt.Errorf("elementary: %w", err)
	}
	groups, err := core.BindParity(dev, store, "elementary", layout)
	if err != nil {
		return fmt.Errorf("elementary: %w", err)
	}
	e.pipeline, e.groups = pipeline, groups
	return nil
}

// Encode computes the next generation.
func (e *Elementary) Encode(enc *device.CommandEncoder, store *core.GridStore) {
	g := e.groups.Select(enc, store)
	if g == nil {
		return
	}
	size := store.Size()
	pass := enc.BeginComputePass("elementary_step")
	pass.SetPipeline(e.pipeline)
	pass.SetBindGroup(0, g)
	pass.DispatchWorkgroups(device.WorkgroupCount(size.W, workgroup), device.WorkgroupCount(size.H, workgroup), 1)
	pass.End()
}

func (e *Elementary) shader(groups []*device.BindGroup) device.Invoke {
	cur := groups[0].Float32(0)
	nxt := groups[0].Float32(1)
	dims := groups[0].Int32(2)
	w, h := int(dims[0]), int(dims[1])
	rule := e.rule
	bit := func(x int) uint8 {
		if x < 0 || x >= w || cur[x] < 0.5 {
			return 0
		}
		return 1
	}
	return func(id device.GlobalID) {
		x, y := int(id.X), int(id.Y)
		if x >= w || y >= h {
			return
		}
		if y > 0 {
			nxt[y*w+x] = cur[(y-1)*w+x]
			return
		}
		idx := bit(x-1)<<2 | bit(x)<<1 | bit(x+1)
		nxt[x] = float32((rule >> idx) & 1)
	}
}

func init() {
	core.Register(core.Elementary, func(cfg map[string]string) core.Kernel {
		c := FromMap(cfg)
		return New(c.Rule)
	})
}
