package edit

import (
	"math"

	"automata/internal/core"
)

// NormalizeWorld maps a world coordinate in [-1, 1] onto [0, 1].
func NormalizeWorld(p float64) float64 { return (p + 1) / 2 }

// PixelFromNormalized maps u in [0, 1] onto a cell index in [0, n). Values
// outside [0, 1] are not clamped; ok is false for them.
func PixelFromNormalized(u float64, n int) (int, bool) {
	if math.IsNaN(u) || u < 0 || u > 1 {
		return 0, false
	}
	if u == 0 {
		return 0, true
	}
	return int(math.Ceil(float64(n)*u)) - 1, true
}

// EntryAt builds the edit for a world position over a grid of size. A
// position off the grid on either axis yields Sentinel.
func EntryAt(world [2]float64, size core.Size, kind, radius int32) Entry {
	x, okx := PixelFromNormalized(NormalizeWorld(world[0]), size.W)
	y, oky := PixelFromNormalized(NormalizeWorld(world[1]), size.H)
	if !okx || !oky {
		return Sentinel
	}
	return Entry{X: int32(x), Y: int32(y), Kind: kind, Radius: radius}
}
