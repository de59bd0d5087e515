//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	overlayBack = color.RGBA{A: 160}
	overlayText = color.RGBA{R: 230, G: 230, B: 120, A: 255}
	overlayErr  = color.RGBA{R: 255, G: 110, B: 90, A: 255}
)

const overlayLine = 15

// Overlay draws frame diagnostics over the top left of the grid view. F1
// toggles it.
type Overlay struct {
	visible bool
	lines   []string
	failed  bool
	pixel   *ebiten.Image
}

// NewOverlay returns a visible overlay.
func NewOverlay() *Overlay {
	o := &Overlay{visible: true, pixel: ebiten.NewImage(1, 1)}
	o.pixel.Fill(color.White)
	return o
}

// Update handles the toggle key and captures stats for the next Draw.
func (o *Overlay) Update(s Stats) {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		o.visible = !o.visible
	}
	o.lines = s.Lines()
	o.failed = s.Err != nil
}

// Draw renders the captured lines.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.visible || len(o.lines) == 0 {
		return
	}
	face := basicfont.Face7x13
	width := 0
	for _, l := range o.lines {
		width = max(width, text.BoundString(face, l).Dx())
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(width+2*panelPadding), float64(len(o.lines)*overlayLine+panelPadding))
	op.ColorScale.ScaleWithColor(overlayBack)
	screen.DrawImage(o.pixel, op)
	for i, l := range o.lines {
		col := overlayText
		if o.failed && i == len(o.lines)-1 {
			col = overlayErr
		}
		text.Draw(screen, l, face, panelPadding, panelPadding+i*overlayLine+6, col)
	}
}
