//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	panelColor   = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	titleColor   = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	labelColor   = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	mutedColor   = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	buttonColor  = color.RGBA{R: 54, G: 56, B: 64, A: 255}
	disabledFill = color.RGBA{R: 32, G: 34, B: 40, A: 255}
	disabledText = color.RGBA{R: 120, G: 120, B: 130, A: 255}
)

// HUD renders the control panel to the right of the grid view and forwards
// clicks to the tunable configuration.
type HUD struct {
	model   *panelModel
	width   int
	title   string
	offsetX int

	panel   *ebiten.Image
	pixel   *ebiten.Image
	actions []actionButton
}

type actionButton struct {
	action Action
	label  string
	rect   image.Rectangle
}

// NewHUD builds a panel width pixels wide for target.
func NewHUD(target Tunable, title string, width int) *HUD {
	h := &HUD{model: newPanelModel(target), width: max(width, 0), title: title}
	if h.width == 0 {
		return h
	}
	h.pixel = ebiten.NewImage(1, 1)
	h.pixel.Fill(color.White)
	h.model.layout(h.width)
	y := h.model.actionsTop()
	for _, a := range []Action{ActionReset, ActionApply} {
		h.actions = append(h.actions, actionButton{
			action: a,
			label:  a.String(),
			rect:   image.Rect(panelPadding, y, h.width-panelPadding, y+actionHeight),
		})
		y += actionHeight + buttonGap
	}
	return h
}

// Update refreshes the displayed values and handles a click on the panel,
// which sits offsetX pixels from the left of the window.
func (h *HUD) Update(offsetX int) Action {
	if h == nil || h.width == 0 {
		return ActionNone
	}
	h.offsetX = offsetX
	h.model.refresh()
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return ActionNone
	}
	mx, my := ebiten.CursorPosition()
	px := mx - offsetX
	if px < 0 {
		return ActionNone
	}
	if i, dir, ok := h.model.hit(px, my); ok {
		h.model.adjust(i, dir)
		return ActionNone
	}
	for _, b := range h.actions {
		if image.Pt(px, my).In(b.rect) {
			return b.action
		}
	}
	return ActionNone
}

// Draw paints the panel at the given height.
func (h *HUD) Draw(screen *ebiten.Image, height int) {
	if h == nil || h.width == 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(panelColor)
	h.drawControls()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(h.offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	headerY := panelPadding + headerBaseline
	text.Draw(h.panel, fmt.Sprintf("%s controls", h.title), face, panelPadding, headerY, titleColor)
	for i := range h.model.controls {
		st := &h.model.controls[i]
		baseline := st.top + labelBaseline
		text.Draw(h.panel, st.control.Label, face, panelPadding, baseline, labelColor)
		valueColor := labelColor
		if !st.hasValue {
			valueColor = mutedColor
		}
		valueX := st.minusRect.Min.X - buttonGap - text.BoundString(face, st.value).Dx()
		text.Draw(h.panel, st.value, face, valueX, baseline, valueColor)
		h.drawButton(st.minusRect, "-", h.model.canAdjust(i, -1))
		h.drawButton(st.plusRect, "+", h.model.canAdjust(i, 1))
	}
	for _, b := range h.actions {
		h.drawButton(b.rect, b.label, true)
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	bg, fg := buttonColor, labelColor
	if !enabled {
		bg, fg = disabledFill, disabledText
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}
