package life

import (
	"fmt"
	"strconv"
	"strings"

	"automata/internal/core"
	"automata/internal/device"
)

const workgroup = 8

// Config holds the birth and survival neighbour counts as bit masks.
type Config struct {
	Birth   uint16
	Survive uint16
}

// DefaultConfig returns Conway's B3/S23.
func DefaultConfig() Config {
	return Config{Birth: 1 << 3, Survive: 1<<2 | 1<<3}
}

// FromMap populates a Config from a string map. The "rule" key takes a
// B/S string such as "B36/S23".
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["rule"]; ok {
		if parsed, err := ParseRule(v); err == nil {
			c = parsed
		}
	}
	return c
}

// ParseRule parses B/S notation.
func ParseRule(s string) (Config, error) {
	var c Config
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "/")
	if len(parts) != 2 {
		return c, fmt.Errorf("life: rule %q is not B/S notation", s)
	}
	for _, part := range parts {
		if part == "" {
			return c, fmt.Errorf("life: rule %q has an empty half", s)
		}
		var mask *uint16
		switch part[0] {
		case 'B':
			mask = &c.Birth
		case 'S':
			mask = &c.Survive
		default:
			return c, fmt.Errorf("life: rule %q: unknown prefix %q", s, part[0])
		}
		for _, r := range part[1:] {
			n, err := strconv.Atoi(string(r))
			if err != nil || n > 8 {
				return c, fmt.Errorf("life: rule %q: bad count %q", s, r)
			}
			*mask |= 1 << n
		}
	}
	return c, nil
}

func (c Config) String() string {
	var b strings.Builder
	b.WriteByte('B')
	for n := 0; n <= 8; n++ {
		if c.Birth&(1<<n) != 0 {
			b.WriteString(strconv.Itoa(n))
		}
	}
	b.WriteString("/S")
	for n := 0; n <= 8; n++ {
		if c.Survive&(1<<n) != 0 {
			b.WriteString(strconv.Itoa(n))
		}
	}
	return b.String()
}

// Life implements Conway-style life on a float grid. A cell is alive when
// its value is at least 0.5 and cells beyond the border count as dead.
type Life struct {
	cfg      Config
	pipeline *device.ComputePipeline
	groups   core.ParityGroups
}

// New returns a Life kernel for the given rule.
func New(cfg Config) *Life { return &Life{cfg: cfg} }

// ID identifies the kernel.
func (l *Life) ID() core.KernelID { return core.GameOfLife }

// Name returns the kernel identifier.
func (l *Life) Name() string { return "life" }

var layout = core.GridLayout("life")

// Bind compiles the step pipeline and binds both parities of store.
func (l *Life) Bind(dev *device.Device, store *core.GridStore) error {
	pipeline, err := dev.CreateComputePipeline(device.ComputePipelineDescriptor{
		Label:         "life_step",
		Layouts:       []*device.BindGroupLayout{layout},
		WorkgroupSize: [3]uint32{workgroup, workgroup, 1},
		Shader:        l.shader,
	})
	if err != nil {
		return fmt.Errorf("life: %w", err)
	}
	groups, err := core.BindParity(dev, store, "life", layout)
	if err != nil {
		return fmt.Errorf("life: %w", err)
	}
	l.pipeline, l.groups = pipeline, groups
	return nil
}

// Encode records one generation.
func (l *Life) Encode(enc *device.CommandEncoder, store *core.GridStore) {
	g := l.groups.Select(enc, store)
	if g == nil {
		return
	}
	size := store.Size()
	pass := enc.BeginComputePass("life_step")
	pass.SetPipeline(l.pipeline)
	pass.SetBindGroup(0, g)
	pass.DispatchWorkgroups(device.WorkgroupCount(size.W, workgroup), device.WorkgroupCount(size.H, workgroup), 1)
	pass.End()
}

func (l *Life) shader(groups []*device.BindGroup) device.Invoke {
	cur := groups[0].Float32(0)
	nxt := groups[0].Float32(1)
	dims := groups[0].Int32(2)
	w, h := int(dims[0]), int(dims[1])
	birth, survive := l.cfg.Birth, l.cfg.Survive
	return func(id device.GlobalID) {
		x, y := int(id.X), int(id.Y)
		if x >= w || y >= h {
			return
		}
		neighbors := 0
		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			if ny < 0 || ny >= h {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				nx := x + dx
				if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
					continue
				}
				if cur[ny*w+nx] >= 0.5 {
					neighbors++
				}
			}
		}
		idx := y*w + x
		mask := birth
		if cur[idx] >= 0.5 {
			mask = survive
		}
		nxt[idx] = 0
		if mask&(1<<neighbors) != 0 {
			nxt[idx] = 1
		}
	}
}

func init() {
	core.Register(core.GameOfLife, func(cfg map[string]string) core.Kernel {
		return New(FromMap(cfg))
	})
}
