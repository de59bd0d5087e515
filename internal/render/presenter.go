package render

import (
	"fmt"
	"math"

	"automata/internal/camera"
	"automata/internal/core"
	"automata/internal/device"
)

const workgroup = 8

// grid, grid dims, camera, lut, target pixels, target dims
var presentLayout = &device.BindGroupLayout{
	Label: "present",
	Entries: []device.Kind{
		device.KindFloat32,
		device.KindInt32,
		device.KindFloat32,
		device.KindUint8,
		device.KindUint8,
		device.KindInt32,
	},
}

// Target is an RGBA8 image the presenter draws into, row-major with the
// top row first.
type Target struct {
	W, H   int
	Pixels *device.Buffer[uint8]
	dims   *device.Buffer[int32]
}

// NewTarget allocates a w x h target.
func NewTarget(dev *device.Device, w, h int) (*Target, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: target %dx%d", device.ErrValidation, w, h)
	}
	px, err := device.CreateBuffer[uint8](dev, device.BufferDescriptor{Label: "present_target", Len: w * h * 4})
	if err != nil {
		return nil, fmt.Errorf("present target: %w", err)
	}
	dims, err := device.CreateBuffer[int32](dev, device.BufferDescriptor{Label: "present_target_dims", Len: 2})
	if err != nil {
		return nil, fmt.Errorf("present target: %w", err)
	}
	if err := device.WriteBuffer(dev.Queue(), dims, 0, []int32{int32(w), int32(h)}); err != nil {
		return nil, fmt.Errorf("present target: %w", err)
	}
	return &Target{W: w, H: h, Pixels: px, dims: dims}, nil
}

type presentBinding struct {
	store  *core.GridStore
	epoch  uint64
	target *Target
	groups [2]*device.BindGroup
}

// Presenter samples the current grid buffer into a target through the
// camera, one invocation per target pixel, with nearest-cell lookup.
type Presenter struct {
	dev      *device.Device
	pipeline *device.ComputePipeline
	view     *device.Buffer[float32]
	lut      *device.Buffer[uint8]
	binding  presentBinding
}

// NewPresenter compiles the present pipeline with the grayscale palette.
func NewPresenter(dev *device.Device) (*Presenter, error) {
	pipeline, err := dev.CreateComputePipeline(device.ComputePipelineDescriptor{
		Label:         "present",
		Layouts:       []*device.BindGroupLayout{presentLayout},
		WorkgroupSize: [3]uint32{workgroup, workgroup, 1},
		Shader:        presentShader,
	})
	if err != nil {
		return nil, fmt.Errorf("presenter: %w", err)
	}
	view, err := device.CreateBuffer[float32](dev, device.BufferDescriptor{Label: "present_camera", Len: camera.UniformLen})
	if err != nil {
		return nil, fmt.Errorf("presenter: %w", err)
	}
	lut, err := device.CreateBuffer[uint8](dev, device.BufferDescriptor{Label: "present_lut", Len: LUTSize * 4})
	if err != nil {
		return nil, fmt.Errorf("presenter: %w", err)
	}
	p := &Presenter{dev: dev, pipeline: pipeline, view: view, lut: lut}
	if err := p.SetPalette(Grayscale); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPalette uploads a new colour ramp; it applies from the next Draw.
func (p *Presenter) SetPalette(pal Palette) error {
	return device.WriteBuffer(p.dev.Queue(), p.lut, 0, pal.LUT())
}

func (p *Presenter) bind(store *core.GridStore, target *Target) error {
	b := &p.binding
	if b.store == store && b.epoch == store.Epoch() && b.target == target {
		return nil
	}
	var groups [2]*device.BindGroup
	for parity := 0; parity < 2; parity++ {
		g, err := p.dev.CreateBindGroup(fmt.Sprintf("present_%d", parity), presentLayout,
			store.Buffer(parity), store.Dims(), p.view, p.lut, target.Pixels, target.dims)
		if err != nil {
			return err
		}
		groups[parity] = g
	}
	p.binding = presentBinding{store: store, epoch: store.Epoch(), target: target, groups: groups}
	return nil
}

// Draw records a pass painting store.Current() into target as seen by view.
// It never writes grid buffers.
func (p *Presenter) Draw(enc *device.CommandEncoder, store *core.GridStore, target *Target, view camera.Camera) {
	if err := p.bind(store, target); err != nil {
		enc.SetError(err)
		return
	}
	if err := device.WriteBuffer(p.dev.Queue(), p.view, 0, view.Uniform()); err != nil {
		enc.SetError(err)
		return
	}
	pass := enc.BeginComputePass("present")
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.binding.groups[store.Parity()])
	pass.DispatchWorkgroups(device.WorkgroupCount(target.W, workgroup), device.WorkgroupCount(target.H, workgroup), 1)
	pass.End()
}

// CellAt maps a world position to the nearest grid cell.
func CellAt(world [2]float64, size core.Size) (x, y int, ok bool) {
	ux, uy := (world[0]+1)/2, (world[1]+1)/2
	if !(ux >= 0 && ux <= 1 && uy >= 0 && uy <= 1) {
		return 0, 0, false
	}
	x = min(int(math.Floor(ux*float64(size.W))), size.W-1)
	y = min(int(math.Floor(uy*float64(size.H))), size.H-1)
	return x, y, true
}

func presentShader(groups []*device.BindGroup) device.Invoke {
	cells := groups[0].Float32(0)
	dims := groups[0].Int32(1)
	view := camera.FromUniform(groups[0].Float32(2))
	lut := groups[0].Uint8(3)
	px := groups[0].Uint8(4)
	tdims := groups[0].Int32(5)
	size := core.Size{W: int(dims[0]), H: int(dims[1])}
	tw, th := int(tdims[0]), int(tdims[1])
	return func(id device.GlobalID) {
		sx, sy := int(id.X), int(id.Y)
		if sx >= tw || sy >= th {
			return
		}
		world := view.ScreenToWorld(float64(sx)+0.5, float64(sy)+0.5, tw, th)
		o := (sy*tw + sx) * 4
		x, y, ok := CellAt([2]float64{world.X, world.Y}, size)
		if !ok {
			px[o+0], px[o+1], px[o+2], px[o+3] = Background.R, Background.G, Background.B, Background.A
			return
		}
		l := lutIndex(cells[y*size.W+x]) * 4
		copy(px[o:o+4], lut[l:l+4])
	}
}
