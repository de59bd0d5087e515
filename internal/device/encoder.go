package device

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type command interface {
	execute(ctx context.Context, workers int) error
}

// CommandBuffer is a finished, immutable list of commands.
type CommandBuffer struct {
	label string
	cmds  []command
}

// Label returns the debug label.
func (c *CommandBuffer) Label() string { return c.label }

// Len reports how many commands were recorded.
func (c *CommandBuffer) Len() int { return len(c.cmds) }

// CommandEncoder records commands for a single submission. Recording errors
// are sticky and returned from Finish.
type CommandEncoder struct {
	dev    *Device
	label  string
	cmds   []command
	err    error
	inPass bool
}

func (e *CommandEncoder) fail(format string, args ...any) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s: %s", ErrValidation, e.label, fmt.Sprintf(format, args...))
	}
}

// SetError records err as a recording failure returned from Finish. Layers
// above the device use it to reject commands they cannot encode.
func (e *CommandEncoder) SetError(err error) {
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%w: %s: %w", ErrValidation, e.label, err)
	}
}

// Len reports how many commands have been recorded so far.
func (e *CommandEncoder) Len() int { return len(e.cmds) }

// BeginComputePass opens a compute pass. Only one pass may be open.
func (e *CommandEncoder) BeginComputePass(label string) *ComputePass {
	if e.inPass {
		e.fail("pass %q begun inside another pass", label)
	}
	e.inPass = true
	return &ComputePass{enc: e, label: label}
}

// Finish closes the encoder.
func (e *CommandEncoder) Finish() (*CommandBuffer, error) {
	if e.inPass {
		e.fail("finished with an open pass")
	}
	if e.err != nil {
		return nil, e.err
	}
	return &CommandBuffer{label: e.label, cmds: e.cmds}, nil
}

// CopyBufferToBuffer records a full copy of src into dst.
func CopyBufferToBuffer[T Scalar](e *CommandEncoder, src, dst *Buffer[T]) {
	if e.inPass {
		e.fail("copy %q -> %q inside a pass", src.label, dst.label)
		return
	}
	if src == dst {
		e.fail("copy %q onto itself", src.label)
		return
	}
	if src.Len() != dst.Len() {
		e.fail("copy %q (%d) -> %q (%d) size mismatch", src.label, src.Len(), dst.label, dst.Len())
		return
	}
	e.cmds = append(e.cmds, copyCmd[T]{src: src, dst: dst})
}

type copyCmd[T Scalar] struct {
	src, dst *Buffer[T]
}

func (c copyCmd[T]) execute(context.Context, int) error {
	copy(c.dst.data, c.src.data)
	return nil
}

// ComputePass records dispatches against one pipeline at a time.
type ComputePass struct {
	enc      *CommandEncoder
	label    string
	pipeline *ComputePipeline
	groups   []*BindGroup
	ended    bool
}

// SetPipeline selects the pipeline for following dispatches.
func (p *ComputePass) SetPipeline(pl *ComputePipeline) {
	p.pipeline = pl
	if pl != nil && len(p.groups) < len(pl.layouts) {
		grown := make([]*BindGroup, len(pl.layouts))
		copy(grown, p.groups)
		p.groups = grown
	}
}

// SetBindGroup binds g at index.
func (p *ComputePass) SetBindGroup(index int, g *BindGroup) {
	if index < 0 || index >= p.enc.dev.limits.MaxBindGroups {
		p.enc.fail("pass %q bind group index %d out of range", p.label, index)
		return
	}
	if index >= len(p.groups) {
		grown := make([]*BindGroup, index+1)
		copy(grown, p.groups)
		p.groups = grown
	}
	p.groups[index] = g
}

// DispatchWorkgroups records a dispatch of x*y*z workgroups.
func (p *ComputePass) DispatchWorkgroups(x, y, z uint32) {
	if p.ended {
		p.enc.fail("dispatch on ended pass %q", p.label)
		return
	}
	pl := p.pipeline
	if pl == nil {
		p.enc.fail("pass %q dispatch without pipeline", p.label)
		return
	}
	groups := make([]*BindGroup, len(pl.layouts))
	for i, layout := range pl.layouts {
		if i >= len(p.groups) || p.groups[i] == nil {
			p.enc.fail("pass %q pipeline %q missing bind group %d", p.label, pl.label, i)
			return
		}
		if p.groups[i].layout != layout {
			p.enc.fail("pass %q pipeline %q bind group %d (%q) has layout %q, want %q", p.label, pl.label, i, p.groups[i].label, p.groups[i].layout.Label, layout.Label)
			return
		}
		groups[i] = p.groups[i]
	}
	max := p.enc.dev.limits.MaxWorkgroupsPerDimension
	if x > max || y > max || z > max {
		p.enc.fail("pass %q dispatch %dx%dx%d exceeds %d per dimension", p.label, x, y, z, max)
		return
	}
	if x == 0 || y == 0 || z == 0 {
		return
	}
	p.enc.cmds = append(p.enc.cmds, dispatchCmd{pipeline: pl, groups: groups, count: [3]uint32{x, y, z}})
}

// End closes the pass.
func (p *ComputePass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.enc.inPass = false
}

type dispatchCmd struct {
	pipeline *ComputePipeline
	groups   []*BindGroup
	count    [3]uint32
}

func (c dispatchCmd) execute(ctx context.Context, workers int) error {
	invoke := c.pipeline.shader(c.groups)
	if invoke == nil {
		return nil
	}
	ws := c.pipeline.workgroupSize
	total := int(c.count[0]) * int(c.count[1]) * int(c.count[2])
	chunks := workers * 4
	if chunks > total {
		chunks = total
	}
	if chunks < 1 {
		chunks = 1
	}
	per := (total + chunks - 1) / chunks

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < total; start += per {
		start, end := start, start+per
		if end > total {
			end = total
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("pipeline %q: %v", c.pipeline.label, r)
				}
			}()
			for wg := start; wg < end; wg++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				gx := uint32(wg) % c.count[0]
				gy := (uint32(wg) / c.count[0]) % c.count[1]
				gz := uint32(wg) / (c.count[0] * c.count[1])
				for lz := uint32(0); lz < ws[2]; lz++ {
					for ly := uint32(0); ly < ws[1]; ly++ {
						for lx := uint32(0); lx < ws[0]; lx++ {
							invoke(GlobalID{X: gx*ws[0] + lx, Y: gy*ws[1] + ly, Z: gz*ws[2] + lz})
						}
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}
