package briansbrain

import (
	"fmt"

	"automata/internal/core"
	"automata/internal/device"
)

// Cell values for the three states.
const (
	StateDead  float32 = 0
	StateOn    float32 = 1
	StateDying float32 = 0.5
)

const workgroup = 8

// state quantizes an arbitrary cell value, so painted or random grids map
// onto the three states.
func state(v float32) float32 {
	switch {
	case v >= 0.75:
		return StateOn
	case v >= 0.25:
		return StateDying
	default:
		return StateDead
	}
}

var layout = core.GridLayout("briansbrain")

// Brain implements Brian's Brain cellular automaton.
type Brain struct {
	pipeline *device.ComputePipeline
	groups   core.ParityGroups
}

// New creates a Brain kernel.
func New() *Brain { return &Brain{} }

// ID identifies the kernel.
func (b *Brain) ID() core.KernelID { return core.BriansBrain }

// Name identifies the simulation.
func (b *Brain) Name() string { return "briansbrain" }

// Bind compiles the step pipeline and binds both parities of store.
func (b *Brain) Bind(dev *device.Device, store *core.GridStore) error {
	pipeline, err := dev.CreateComputePipeline(device.ComputePipelineDescriptor{
		Label:         "briansbrain_step",
		Layouts:       []*device.BindGroupLayout{layout},
		WorkgroupSize: [3]uint32{workgroup, workgroup, 1},
		Shader:        shader,
	})
	if err != nil {
		return fmt.Errorf("briansbrain: %w", err)
	}
	groups, err := core.BindParity(dev, store, "briansbrain", layout)
	if err != nil {
		return fmt.Errorf("briansbrain: %w", err)
	}
	b.pipeline, b.groups = pipeline, groups
	return nil
}

// Encode advances the automaton by one tick.
func (b *Brain) Encode(enc *device.CommandEncoder, store *core.GridStore) {
	g := b.groups.Select(enc, store)
	if g == nil {
		return
	}
	size := store.Size()
	pass := enc.BeginComputePass("briansbrain_step")
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, g)
	pass.DispatchWorkgroups(device.WorkgroupCount(size.W, workgroup), device.WorkgroupCount(size.H, workgroup), 1)
	pass.End()
}

func shader(groups []*device.BindGroup) device.Invoke {
	cur := groups[0].Float32(0)
	nxt := groups[0].Float32(1)
	dims := groups[0].Int32(2)
	w, h := int(dims[0]), int(dims[1])
	return func(id device.GlobalID) {
		x, y := int(id.X), int(id.Y)
		if x >= w || y >= h {
			return
		}
		idx := y*w + x
		switch state(cur[idx]) {
		case StateOn:
			nxt[idx] = StateDying
		case StateDying:
			nxt[idx] = StateDead
		default:
			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if state(cur[ny*w+nx]) == StateOn {
						neighbors++
					}
				}
			}
			if neighbors == 2 {
				nxt[idx] = StateOn
			} else {
				nxt[idx] = StateDead
			}
		}
	}
}

func init() {
	core.Register(core.BriansBrain, func(cfg map[string]string) core.Kernel {
		return New()
	})
}
