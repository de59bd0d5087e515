package smoothlife

import (
	"math"
	"strconv"
)

// Config holds the SmoothLife parameters. The outer ring radius is always
// three times the inner radius.
type Config struct {
	InnerRadius float64
	B1, B2      float64
	D1, D2      float64
	AlphaN      float64
	AlphaM      float64
	// DT > 0 switches to smooth time stepping with that step size.
	DT float64
}

// DefaultConfig returns the standard discrete-time parameter set.
func DefaultConfig() Config {
	return Config{
		InnerRadius: 4,
		B1:          0.278,
		B2:          0.365,
		D1:          0.267,
		D2:          0.445,
		AlphaN:      0.028,
		AlphaM:      0.147,
	}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	positive := func(key string, dst *float64) {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
				*dst = parsed
			}
		}
	}
	positive("ri", &c.InnerRadius)
	positive("b1", &c.B1)
	positive("b2", &c.B2)
	positive("d1", &c.D1)
	positive("d2", &c.D2)
	positive("alpha_n", &c.AlphaN)
	positive("alpha_m", &c.AlphaM)
	positive("dt", &c.DT)
	return c
}

// OuterRadius returns the ring's outer radius.
func (c Config) OuterRadius() float64 { return 3 * c.InnerRadius }

// Reach is the largest offset with non-zero weight.
func (c Config) Reach() int { return int(math.Ceil(c.OuterRadius() + 0.5)) }

// InnerWeight is the anti-aliased membership of offset distance d in the
// inner disk.
func (c Config) InnerWeight(d float64) float64 { return disk(d, c.InnerRadius) }

// RingWeight is the anti-aliased membership of d in the outer ring.
func (c Config) RingWeight(d float64) float64 {
	return disk(d, c.OuterRadius()) - disk(d, c.InnerRadius)
}

func disk(d, r float64) float64 {
	return math.Max(0, math.Min(1, r+0.5-d))
}

func sigma1(x, a, alpha float64) float64 {
	return 1 / (1 + math.Exp(-(x-a)*4/alpha))
}

func sigma2(x, a, b, alpha float64) float64 {
	return sigma1(x, a, alpha) * (1 - sigma1(x, b, alpha))
}

func sigmaM(x, y, m, alpha float64) float64 {
	w := sigma1(m, 0.5, alpha)
	return x*(1-w) + y*w
}

// Transition maps the ring filling n and the inner filling m to the new
// cell state.
func (c Config) Transition(n, m float64) float64 {
	return sigma2(n, sigmaM(c.B1, c.D1, m, c.AlphaM), sigmaM(c.B2, c.D2, m, c.AlphaM), c.AlphaN)
}

// Next applies Transition to a cell whose current value is v.
func (c Config) Next(v, n, m float64) float64 {
	s := c.Transition(n, m)
	if c.DT > 0 {
		s = v + c.DT*(2*s-1)
	}
	return math.Max(0, math.Min(1, s))
}
