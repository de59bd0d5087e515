package smoothlife

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"automata/internal/core"
	"automata/internal/device"
)

const rowWorkgroup = 16

var (
	// spectrum, inner integral, ring integral
	gridLayout = core.GridLayout("smoothlife_grid", device.KindFloat32, device.KindFloat32, device.KindFloat32)
	// spectrum, inner kernel, ring kernel, inner integral, ring integral
	spectrumLayout = &device.BindGroupLayout{
		Label: "smoothlife_spectrum",
		Entries: []device.Kind{
			device.KindFloat32, device.KindFloat32, device.KindFloat32,
			device.KindFloat32, device.KindFloat32,
		},
	}
)

// SmoothLife is Rafler's continuous generalisation of Life. The disk and
// ring integrals are computed as a zero padded FFT convolution split over
// three dispatches: forward row transforms, column transforms multiplied
// by the kernel spectra and inverted, and inverse row transforms feeding
// the transition.
type SmoothLife struct {
	cfg Config

	plan        *plan
	rows        *device.ComputePipeline
	columns     *device.ComputePipeline
	transition  *device.ComputePipeline
	groups      core.ParityGroups
	spectrumGrp *device.BindGroup
}

// New returns a SmoothLife kernel.
func New(cfg Config) *SmoothLife { return &SmoothLife{cfg: cfg} }

// ID identifies the kernel.
func (s *SmoothLife) ID() core.KernelID { return core.SmoothLife }

// Name returns the kernel identifier.
func (s *SmoothLife) Name() string { return "smoothlife" }

// Config returns the kernel parameters.
func (s *SmoothLife) Config() Config { return s.cfg }

// plan is the FFT geometry for one grid size. The plane is padded by the
// kernel reach on each axis so the circular convolution never wraps a
// neighbour across the border. FFT values keep internal
// work space, so each invocation borrows its own from the pool.
type plan struct {
	cfg       Config
	w, h      int
	nx, ny    int
	halfC     int
	norm      float64
	innerArea float64
	ringArea  float64
	pool      sync.Pool
}

type workspace struct {
	real  *fourier.FFT
	cmplx *fourier.CmplxFFT
	row   []float64
	inner []float64
	coeff []complex128
	col   []complex128
	tmp   []complex128
}

func newPlan(cfg Config, w, h int) *plan {
	reach := cfg.Reach()
	p := &plan{cfg: cfg, w: w, h: h, nx: w + reach, ny: h + reach}
	p.halfC = p.nx/2 + 1
	p.norm = 1 / float64(p.nx*p.ny)
	p.pool.New = func() any {
		return &workspace{
			real:  fourier.NewFFT(p.nx),
			cmplx: fourier.NewCmplxFFT(p.ny),
			row:   make([]float64, p.nx),
			inner: make([]float64, p.w),
			coeff: make([]complex128, p.halfC),
			col:   make([]complex128, p.ny),
			tmp:   make([]complex128, p.ny),
		}
	}
	return p
}

// spectrumLen is the float32 length of an ny x halfC complex array.
func (p *plan) spectrumLen() int { return 2 * p.ny * p.halfC }

// kernelSpectra transforms the inner disk and outer ring weights, wrapped
// around the origin of the padded plane, and records their areas.
func (p *plan) kernelSpectra() (inner, ring []float32) {
	reach := p.cfg.Reach()
	innerReal := make([]float64, p.nx*p.ny)
	ringReal := make([]float64, p.nx*p.ny)
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			d := math.Hypot(float64(dx), float64(dy))
			fy := (dy + p.ny) % p.ny
			fx := (dx + p.nx) % p.nx
			wi, wr := p.cfg.InnerWeight(d), p.cfg.RingWeight(d)
			innerReal[fy*p.nx+fx] = wi
			ringReal[fy*p.nx+fx] = wr
			p.innerArea += wi
			p.ringArea += wr
		}
	}
	return p.forward2D(innerReal), p.forward2D(ringReal)
}

func (p *plan) forward2D(plane []float64) []float32 {
	ws := p.pool.Get().(*workspace)
	defer p.pool.Put(ws)
	freq := make([]complex128, p.ny*p.halfC)
	for y := 0; y < p.ny; y++ {
		ws.real.Coefficients(freq[y*p.halfC:(y+1)*p.halfC], plane[y*p.nx:(y+1)*p.nx])
	}
	for x := 0; x < p.halfC; x++ {
		for y := 0; y < p.ny; y++ {
			ws.col[y] = freq[y*p.halfC+x]
		}
		ws.cmplx.Coefficients(ws.col, ws.col)
		for y := 0; y < p.ny; y++ {
			freq[y*p.halfC+x] = ws.col[y]
		}
	}
	out := make([]float32, 2*len(freq))
	for i, c := range freq {
		putComplex(out, i, c)
	}
	return out
}

func putComplex(dst []float32, i int, c complex128) {
	dst[2*i] = float32(real(c))
	dst[2*i+1] = float32(imag(c))
}

func getComplex(src []float32, i int) complex128 {
	return complex(float64(src[2*i]), float64(src[2*i+1]))
}

// Bind plans the FFT for store's size, uploads the kernel spectra and
// compiles the three pipelines.
func (s *SmoothLife) Bind(dev *device.Device, store *core.GridStore) error {
	size := store.Size()
	p := newPlan(s.cfg, size.W, size.H)
	if n, limit := p.spectrumLen(), dev.Limits().MaxBufferElements; n > limit {
		return fmt.Errorf("smoothlife: %w: %dx%d grid needs spectra of %d elements (max %d)", device.ErrAllocation, size.W, size.H, n, limit)
	}
	innerK, ringK := p.kernelSpectra()

	bufs := make([]*device.Buffer[float32], 5)
	for i, label := range []string{"smoothlife_spectrum", "smoothlife_inner_kernel", "smoothlife_ring_kernel", "smoothlife_inner", "smoothlife_ring"} {
		b, err := device.CreateBuffer[float32](dev, device.BufferDescriptor{Label: label, Len: p.spectrumLen()})
		if err != nil {
			return fmt.Errorf("smoothlife: %w", err)
		}
		bufs[i] = b
	}
	spectrum, innerKBuf, ringKBuf, innerOut, ringOut := bufs[0], bufs[1], bufs[2], bufs[3], bufs[4]
	if err := device.WriteBuffer(dev.Queue(), innerKBuf, 0, innerK); err != nil {
		return fmt.Errorf("smoothlife: %w", err)
	}
	if err := device.WriteBuffer(dev.Queue(), ringKBuf, 0, ringK); err != nil {
		return fmt.Errorf("smoothlife: %w", err)
	}

	pipelines := make([]*device.ComputePipeline, 3)
	descs := []device.ComputePipelineDescriptor{
		{Label: "smoothlife_rows", Layouts: []*device.BindGroupLayout{gridLayout}, Shader: p.rowsShader},
		{Label: "smoothlife_columns", Layouts: []*device.BindGroupLayout{spectrumLayout}, Shader: p.columnsShader},
		{Label: "smoothlife_transition", Layouts: []*device.BindGroupLayout{gridLayout}, Shader: p.transitionShader},
	}
	for i, desc := range descs {
		desc.WorkgroupSize = [3]uint32{rowWorkgroup, 1, 1}
		pl, err := dev.CreateComputePipeline(desc)
		if err != nil {
			return fmt.Errorf("smoothlife: %w", err)
		}
		pipelines[i] = pl
	}

	groups, err := core.BindParity(dev, store, "smoothlife", gridLayout, spectrum, innerOut, ringOut)
	if err != nil {
		return fmt.Errorf("smoothlife: %w", err)
	}
	spectrumGrp, err := dev.CreateBindGroup("smoothlife_spectrum", spectrumLayout, spectrum, innerKBuf, ringKBuf, innerOut, ringOut)
	if err != nil {
		return fmt.Errorf("smoothlife: %w", err)
	}

	s.plan = p
	s.rows, s.columns, s.transition = pipelines[0], pipelines[1], pipelines[2]
	s.groups, s.spectrumGrp = groups, spectrumGrp
	return nil
}

// Encode records one generation as three dispatches in a single pass.
func (s *SmoothLife) Encode(enc *device.CommandEncoder, store *core.GridStore) {
	g := s.groups.Select(enc, store)
	if g == nil {
		return
	}
	p := s.plan
	pass := enc.BeginComputePass("smoothlife_step")
	pass.SetPipeline(s.rows)
	pass.SetBindGroup(0, g)
	pass.DispatchWorkgroups(device.WorkgroupCount(p.ny, rowWorkgroup), 1, 1)

	pass.SetPipeline(s.columns)
	pass.SetBindGroup(0, s.spectrumGrp)
	pass.DispatchWorkgroups(device.WorkgroupCount(p.halfC, rowWorkgroup), 1, 1)

	pass.SetPipeline(s.transition)
	pass.SetBindGroup(0, g)
	pass.DispatchWorkgroups(device.WorkgroupCount(p.h, rowWorkgroup), 1, 1)
	pass.End()
}

// rowsShader transforms each padded row of the current grid.
func (p *plan) rowsShader(groups []*device.BindGroup) device.Invoke {
	cur := groups[0].Float32(0)
	spectrum := groups[0].Float32(3)
	return func(id device.GlobalID) {
		y := int(id.X)
		if y >= p.ny {
			return
		}
		base := y * p.halfC
		if y >= p.h {
			clear(spectrum[2*base : 2*(base+p.halfC)])
			return
		}
		ws := p.pool.Get().(*workspace)
		defer p.pool.Put(ws)
		for x := 0; x < p.nx; x++ {
			ws.row[x] = 0
			if x < p.w {
				ws.row[x] = float64(cur[y*p.w+x])
			}
		}
		ws.real.Coefficients(ws.coeff, ws.row)
		for k, c := range ws.coeff {
			putComplex(spectrum, base+k, c)
		}
	}
}

// columnsShader finishes the forward transform of one column, multiplies
// it by both kernel spectra and inverts the column transform.
func (p *plan) columnsShader(groups []*device.BindGroup) device.Invoke {
	spectrum := groups[0].Float32(0)
	innerK := groups[0].Float32(1)
	ringK := groups[0].Float32(2)
	innerOut := groups[0].Float32(3)
	ringOut := groups[0].Float32(4)
	return func(id device.GlobalID) {
		k := int(id.X)
		if k >= p.halfC {
			return
		}
		ws := p.pool.Get().(*workspace)
		defer p.pool.Put(ws)
		for y := 0; y < p.ny; y++ {
			ws.col[y] = getComplex(spectrum, y*p.halfC+k)
		}
		ws.cmplx.Coefficients(ws.col, ws.col)
		for _, out := range []struct{ kernel, dst []float32 }{{innerK, innerOut}, {ringK, ringOut}} {
			for y := 0; y < p.ny; y++ {
				ws.tmp[y] = ws.col[y] * getComplex(out.kernel, y*p.halfC+k)
			}
			ws.cmplx.Sequence(ws.tmp, ws.tmp)
			for y := 0; y < p.ny; y++ {
				putComplex(out.dst, y*p.halfC+k, ws.tmp[y])
			}
		}
	}
}

// transitionShader inverts the row transforms of both integrals and
// applies the transition to one grid row.
func (p *plan) transitionShader(groups []*device.BindGroup) device.Invoke {
	cur := groups[0].Float32(0)
	nxt := groups[0].Float32(1)
	innerOut := groups[0].Float32(4)
	ringOut := groups[0].Float32(5)
	return func(id device.GlobalID) {
		y := int(id.X)
		if y >= p.h {
			return
		}
		ws := p.pool.Get().(*workspace)
		defer p.pool.Put(ws)
		base := y * p.halfC

		for k := range ws.coeff {
			ws.coeff[k] = getComplex(innerOut, base+k)
		}
		inner := ws.inner
		ws.real.Sequence(ws.row, ws.coeff)
		for x := 0; x < p.w; x++ {
			inner[x] = ws.row[x] * p.norm / p.innerArea
		}

		for k := range ws.coeff {
			ws.coeff[k] = getComplex(ringOut, base+k)
		}
		ws.real.Sequence(ws.row, ws.coeff)
		for x := 0; x < p.w; x++ {
			idx := y*p.w + x
			m := clamp01(inner[x])
			n := clamp01(ws.row[x] * p.norm / p.ringArea)
			nxt[idx] = float32(p.cfg.Next(float64(cur[idx]), n, m))
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func init() {
	core.Register(core.SmoothLife, func(cfg map[string]string) core.Kernel {
		return New(FromMap(cfg))
	})
}
