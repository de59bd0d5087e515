// Package camera maps screen positions into the world plane the grid is
// drawn on. The grid spans [-1, 1] on both world axes.
package camera

import "gonum.org/v1/gonum/spatial/r2"

// Camera is an orthographic view centred on Eye. At Zoom 1 the viewport is
// two world units tall and Aspect times that wide.
type Camera struct {
	Eye    r2.Vec
	Aspect float64
	Zoom   float64
}

// New returns a camera looking at the origin.
func New(aspect float64) Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return Camera{Aspect: aspect, Zoom: 1}
}

// ScreenToWorld maps a screen position in pixels (origin top left, y down)
// on a w x h surface into world coordinates (y up).
func (c Camera) ScreenToWorld(sx, sy float64, w, h int) r2.Vec {
	if w <= 0 || h <= 0 || c.Zoom == 0 {
		return c.Eye
	}
	ndc := r2.Vec{X: 2*sx/float64(w) - 1, Y: 1 - 2*sy/float64(h)}
	return r2.Add(c.Eye, r2.Vec{X: ndc.X * c.Aspect / c.Zoom, Y: ndc.Y / c.Zoom})
}

// UniformLen is the length of the slice returned by Uniform.
const UniformLen = 4

// Uniform packs the camera for upload to a device buffer.
func (c Camera) Uniform() []float32 {
	return []float32{float32(c.Eye.X), float32(c.Eye.Y), float32(c.Zoom), float32(c.Aspect)}
}

// FromUniform is the inverse of Uniform.
func FromUniform(u []float32) Camera {
	return Camera{Eye: r2.Vec{X: float64(u[0]), Y: float64(u[1])}, Zoom: float64(u[2]), Aspect: float64(u[3])}
}

// Controls is the held state of the camera keys for one frame.
type Controls struct {
	ZoomIn, ZoomOut       bool
	Up, Down, Left, Right bool
}

// Controller moves a camera at Speed world units per second and scales the
// zoom by (1 ± dt) per held frame.
type Controller struct {
	Speed float64
}

// Update applies one frame of controls.
func (ctl Controller) Update(c *Camera, dt float64, in Controls) {
	if in.ZoomIn {
		c.Zoom *= 1 + dt
	}
	if in.ZoomOut {
		if z := c.Zoom * (1 - dt); z > 0 {
			c.Zoom = z
		}
	}
	var d r2.Vec
	if in.Up {
		d.Y += 1
	}
	if in.Down {
		d.Y -= 1
	}
	if in.Right {
		d.X += 1
	}
	if in.Left {
		d.X -= 1
	}
	c.Eye = r2.Add(c.Eye, r2.Scale(ctl.Speed*dt, d))
}
