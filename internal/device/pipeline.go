package device

import "fmt"

// Resource is anything that can be bound into a BindGroup.
type Resource interface {
	Label() string
	Len() int
	kind() Kind
	raw() any
}

// BindGroupLayout declares the element kind expected at each binding slot.
type BindGroupLayout struct {
	Label   string
	Entries []Kind
}

// BindGroup binds concrete buffers to a layout.
type BindGroup struct {
	label     string
	layout    *BindGroupLayout
	resources []Resource
}

// CreateBindGroup validates resources against layout.
func (d *Device) CreateBindGroup(label string, layout *BindGroupLayout, resources ...Resource) (*BindGroup, error) {
	if layout == nil {
		return nil, fmt.Errorf("%w: bind group %q has no layout", ErrValidation, label)
	}
	if len(resources) != len(layout.Entries) {
		return nil, fmt.Errorf("%w: bind group %q has %d resources, layout %q wants %d", ErrValidation, label, len(resources), layout.Label, len(layout.Entries))
	}
	for i, r := range resources {
		if r == nil {
			return nil, fmt.Errorf("%w: bind group %q binding %d is nil", ErrValidation, label, i)
		}
		if r.kind() != layout.Entries[i] {
			return nil, fmt.Errorf("%w: bind group %q binding %d is %s, want %s", ErrValidation, label, i, r.kind(), layout.Entries[i])
		}
	}
	return &BindGroup{label: label, layout: layout, resources: append([]Resource(nil), resources...)}, nil
}

// Label returns the debug label.
func (g *BindGroup) Label() string { return g.label }

// Float32 returns the storage behind binding i. Only shaders call this.
func (g *BindGroup) Float32(i int) []float32 { return g.resources[i].raw().([]float32) }

// Int32 returns the storage behind binding i. Only shaders call this.
func (g *BindGroup) Int32(i int) []int32 { return g.resources[i].raw().([]int32) }

// Uint8 returns the storage behind binding i. Only shaders call this.
func (g *BindGroup) Uint8(i int) []uint8 { return g.resources[i].raw().([]uint8) }

// GlobalID is the invocation coordinate within a dispatch.
type GlobalID struct {
	X, Y, Z uint32
}

// Invoke runs one invocation. Invocations of a dispatch may run concurrently
// and must only write locations no other invocation writes.
type Invoke func(id GlobalID)

// Shader links bind groups into an invocation function. It runs once per
// dispatch on the queue goroutine, after earlier commands have completed.
type Shader func(groups []*BindGroup) Invoke

// ComputePipelineDescriptor describes a compute program.
type ComputePipelineDescriptor struct {
	Label         string
	Layouts       []*BindGroupLayout
	WorkgroupSize [3]uint32
	Shader        Shader
}

// ComputePipeline is a compiled compute program.
type ComputePipeline struct {
	label         string
	layouts       []*BindGroupLayout
	workgroupSize [3]uint32
	shader        Shader
}

// CreateComputePipeline validates and compiles desc.
func (d *Device) CreateComputePipeline(desc ComputePipelineDescriptor) (*ComputePipeline, error) {
	if err := d.Err(); err != nil {
		return nil, err
	}
	if desc.Shader == nil {
		return nil, fmt.Errorf("%w: %q has no shader", ErrInvalidPipeline, desc.Label)
	}
	if len(desc.Layouts) > d.limits.MaxBindGroups {
		return nil, fmt.Errorf("%w: %q uses %d bind groups (max %d)", ErrInvalidPipeline, desc.Label, len(desc.Layouts), d.limits.MaxBindGroups)
	}
	for i, l := range desc.Layouts {
		if l == nil {
			return nil, fmt.Errorf("%w: %q layout %d is nil", ErrInvalidPipeline, desc.Label, i)
		}
	}
	ws := desc.WorkgroupSize
	for i := range ws {
		if ws[i] == 0 {
			ws[i] = 1
		}
	}
	if n := int(ws[0]) * int(ws[1]) * int(ws[2]); n > d.limits.MaxWorkgroupInvocations {
		return nil, fmt.Errorf("%w: %q workgroup of %d invocations (max %d)", ErrInvalidPipeline, desc.Label, n, d.limits.MaxWorkgroupInvocations)
	}
	return &ComputePipeline{
		label:         desc.Label,
		layouts:       append([]*BindGroupLayout(nil), desc.Layouts...),
		workgroupSize: ws,
		shader:        desc.Shader,
	}, nil
}

// Label returns the debug label.
func (p *ComputePipeline) Label() string { return p.label }

// WorkgroupSize returns the invocation extent of one workgroup.
func (p *ComputePipeline) WorkgroupSize() [3]uint32 { return p.workgroupSize }
