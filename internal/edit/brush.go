package edit

import "math"

// Brush shapes selected by |Kind|.
const (
	BrushSquare int32 = 1
	BrushDisk   int32 = 2
	BrushSoft   int32 = 3
)

// weight returns how strongly e covers the cell at (x, y), in [0, 1].
func (e Entry) weight(x, y int32) float32 {
	r := int64(e.Radius)
	if r < 0 {
		r = 0
	}
	dx := int64(x) - int64(e.X)
	dy := int64(y) - int64(e.Y)
	if dx > r || dx < -r || dy > r || dy < -r {
		return 0
	}
	shape := int64(e.Kind)
	if shape < 0 {
		shape = -shape
	}
	switch {
	case shape == int64(BrushSquare):
		return 1
	case shape == int64(BrushDisk):
		if dx*dx+dy*dy <= r*r {
			return 1
		}
		return 0
	default:
		d := math.Sqrt(float64(dx*dx + dy*dy))
		if d > float64(r) {
			return 0
		}
		return float32(1 - d/float64(r+1))
	}
}

// Apply blends e into the cell value v at (x, y).
func (e Entry) Apply(v float32, x, y int32) float32 {
	if e.Noop() {
		return v
	}
	w := e.weight(x, y)
	if w == 0 {
		return v
	}
	if e.Kind > 0 {
		return max(v, w)
	}
	return min(v, 1-w)
}
