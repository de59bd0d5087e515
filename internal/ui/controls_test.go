package ui

import (
	"testing"

	"automata/internal/core"
	"automata/internal/sim"
)

func TestPanelModelReadsConfig(t *testing.T) {
	cfg := sim.DefaultConfig()
	m := newPanelModel(&cfg)
	m.refresh()
	if len(m.controls) == 0 {
		t.Fatal("no controls")
	}
	for _, st := range m.controls {
		if !st.hasValue {
			t.Fatalf("control %q has no value", st.control.Key)
		}
	}
}

func index(t *testing.T, m *panelModel, key string) int {
	t.Helper()
	for i, st := range m.controls {
		if st.control.Key == key {
			return i
		}
	}
	t.Fatalf("control %q missing", key)
	return -1
}

func TestPanelModelAdjust(t *testing.T) {
	cfg := sim.DefaultConfig()
	m := newPanelModel(&cfg)
	m.refresh()

	size := index(t, m, "size")
	if !m.adjust(size, 1) || cfg.GridWidth != 272 || cfg.GridHeight != 272 {
		t.Fatalf("size = %dx%d", cfg.GridWidth, cfg.GridHeight)
	}

	running := index(t, m, "running")
	if m.canAdjust(running, 1) {
		t.Fatal("running already on")
	}
	if !m.adjust(running, -1) || cfg.Running {
		t.Fatal("running not switched off")
	}
	if m.controls[running].value != "off" {
		t.Fatalf("running shows %q", m.controls[running].value)
	}

	rate := index(t, m, "rate")
	for i := 0; i < 100; i++ {
		m.adjust(rate, 1)
	}
	if cfg.UpdateRateHz != 144 {
		t.Fatalf("rate = %v, want clamped to 144", cfg.UpdateRateHz)
	}
	if m.canAdjust(rate, 1) {
		t.Fatal("rate adjustable past its maximum")
	}

	kernel := index(t, m, "kernel")
	m.adjust(kernel, 1)
	m.refresh()
	if cfg.ActiveKernel != core.SmoothLife || m.controls[kernel].value != "smoothlife" {
		t.Fatalf("kernel = %v shown as %q", cfg.ActiveKernel, m.controls[kernel].value)
	}
}

func TestPanelModelHit(t *testing.T) {
	cfg := sim.DefaultConfig()
	m := newPanelModel(&cfg)
	m.layout(240)
	r := m.controls[2].plusRect
	i, dir, ok := m.hit(r.Min.X+1, r.Min.Y+1)
	if !ok || i != 2 || dir != 1 {
		t.Fatalf("hit = %d %d %v", i, dir, ok)
	}
	if _, _, ok := m.hit(0, 0); ok {
		t.Fatal("hit outside buttons")
	}
}

func TestFormatFloat(t *testing.T) {
	cases := []struct {
		step float64
		v    float64
		want string
	}{
		{5, 30, "30.0"},
		{0.05, 0.278, "0.28"},
		{0.005, 0.278, "0.278"},
	}
	for _, c := range cases {
		if got := formatFloat(core.ParameterControl{Step: c.step}, c.v); got != c.want {
			t.Fatalf("formatFloat(%v, %v) = %q, want %q", c.step, c.v, got, c.want)
		}
	}
}
