package render

import (
	"image/color"

	"automata/internal/core"
)

// LUTSize is the number of palette entries uploaded to the device.
const LUTSize = 256

// Palette is a list of colour stops spread evenly over [0, 1].
type Palette []color.RGBA

// Background is painted outside the grid.
var Background = color.RGBA{R: 16, G: 16, B: 24, A: 255}

var (
	// Grayscale maps 0 to black and 1 to white.
	Grayscale = Palette{{A: 255}, {R: 255, G: 255, B: 255, A: 255}}
	// Brain shows dying cells in blue between dead and firing.
	Brain = Palette{{A: 255}, {R: 40, G: 90, B: 255, A: 255}, {R: 255, G: 255, B: 255, A: 255}}
	// Ember runs from black through red and orange to pale yellow.
	Ember = Palette{{A: 255}, {R: 160, G: 20, B: 10, A: 255}, {R: 255, G: 140, B: 20, A: 255}, {R: 255, G: 250, B: 200, A: 255}}
)

// PaletteFor returns the palette used for a kernel.
func PaletteFor(id core.KernelID) Palette {
	switch id {
	case core.BriansBrain:
		return Brain
	case core.SmoothLife:
		return Ember
	default:
		return Grayscale
	}
}

// LUT expands the palette into LUTSize interpolated RGBA entries. An empty
// palette yields transparent black.
func (p Palette) LUT() []uint8 {
	buf := make([]uint8, LUTSize*4)
	if len(p) == 0 {
		return buf
	}
	last := len(p) - 1
	for i := 0; i < LUTSize; i++ {
		pos := float64(i) / float64(LUTSize-1) * float64(last)
		lo := int(pos)
		if lo >= last {
			putRGBA(buf, i, p[last])
			continue
		}
		putRGBA(buf, i, lerp(p[lo], p[lo+1], pos-float64(lo)))
	}
	return buf
}

// lutIndex quantizes a cell value into the LUT.
func lutIndex(v float32) int {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return LUTSize - 1
	default:
		return int(v*(LUTSize-1) + 0.5)
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func putRGBA(buf []uint8, i int, c color.RGBA) {
	base := i * 4
	buf[base+0] = c.R
	buf[base+1] = c.G
	buf[base+2] = c.B
	buf[base+3] = c.A
}
