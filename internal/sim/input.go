package sim

import (
	"automata/internal/camera"
	"automata/internal/core"
	"automata/internal/edit"
)

// Input is the per-frame pointer state relevant to editing. Cursor is in
// surface pixels, origin top left.
type Input struct {
	LeftJustPressed  bool
	RightJustPressed bool
	// PaintHeld paints continuously while held.
	PaintHeld bool
	Cursor    [2]float64
}

// ScreenToWorld maps a surface position into world space.
type ScreenToWorld func(sx, sy float64) [2]float64

// CameraMapping adapts a camera viewing a w x h surface.
func CameraMapping(view camera.Camera, w, h int) ScreenToWorld {
	return func(sx, sy float64) [2]float64 {
		p := view.ScreenToWorld(sx, sy, w, h)
		return [2]float64{p.X, p.Y}
	}
}

// Edits translates input into queue entries for a grid of size. Paint uses
// cfg.BrushKind, erase its negation. Positions off the grid produce nothing.
func (in Input) Edits(cfg *Config, size core.Size, toWorld ScreenToWorld) []edit.Entry {
	if toWorld == nil || cfg.BrushKind == 0 {
		return nil
	}
	var kind int32
	switch {
	case in.RightJustPressed:
		kind = -cfg.BrushKind
	case in.LeftJustPressed || in.PaintHeld:
		kind = cfg.BrushKind
	default:
		return nil
	}
	e := edit.EntryAt(toWorld(in.Cursor[0], in.Cursor[1]), size, kind, cfg.BrushRadius)
	if e.Noop() {
		return nil
	}
	return []edit.Entry{e}
}
