package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func near(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestScreenToWorld(t *testing.T) {
	c := New(2)
	cases := []struct {
		sx, sy float64
		want   r2.Vec
	}{
		{0, 0, r2.Vec{X: -2, Y: 1}},
		{400, 200, r2.Vec{X: 0, Y: 0}},
		{800, 400, r2.Vec{X: 2, Y: -1}},
	}
	for _, tc := range cases {
		if got := c.ScreenToWorld(tc.sx, tc.sy, 800, 400); !near(got, tc.want) {
			t.Fatalf("ScreenToWorld(%v, %v) = %v, want %v", tc.sx, tc.sy, got, tc.want)
		}
	}

	c.Zoom = 2
	c.Eye = r2.Vec{X: 0.5, Y: -0.5}
	if got := c.ScreenToWorld(800, 0, 800, 400); !near(got, r2.Vec{X: 1.5, Y: 0}) {
		t.Fatalf("zoomed corner = %v", got)
	}
}

func TestUniformRoundTrip(t *testing.T) {
	c := Camera{Eye: r2.Vec{X: 0.25, Y: -0.75}, Aspect: 1.5, Zoom: 3}
	if got := FromUniform(c.Uniform()); got != c {
		t.Fatalf("FromUniform = %+v, want %+v", got, c)
	}
}

func TestControllerUpdate(t *testing.T) {
	c := New(1)
	ctl := Controller{Speed: 1}
	ctl.Update(&c, 0.5, Controls{ZoomIn: true, Up: true, Left: true})
	if c.Zoom != 1.5 {
		t.Fatalf("zoom = %v", c.Zoom)
	}
	if !near(c.Eye, r2.Vec{X: -0.5, Y: 0.5}) {
		t.Fatalf("eye = %v", c.Eye)
	}
	ctl.Update(&c, 2, Controls{ZoomOut: true})
	if c.Zoom != 1.5 {
		t.Fatalf("zoom out past zero changed zoom to %v", c.Zoom)
	}
}

func TestZoomIgnoresPanSpeed(t *testing.T) {
	c := New(1)
	ctl := Controller{Speed: 4}
	ctl.Update(&c, 0.25, Controls{ZoomIn: true, Right: true})
	if c.Zoom != 1.25 {
		t.Fatalf("zoom in = %v, want 1.25", c.Zoom)
	}
	if !near(c.Eye, r2.Vec{X: 1}) {
		t.Fatalf("eye = %v", c.Eye)
	}
	ctl.Update(&c, 0.5, Controls{ZoomOut: true})
	if c.Zoom != 0.625 {
		t.Fatalf("zoom out = %v, want 0.625", c.Zoom)
	}
}
