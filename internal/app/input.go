//go:build ebiten

package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"automata/internal/camera"
	"automata/internal/sim"
)

// keys is the discrete key state of one frame.
type keys struct {
	quit   bool
	reset  bool
	apply  bool
	pause  bool
	step   bool
	camera camera.Controls
}

func readKeys() keys {
	return keys{
		quit:  inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		reset: inpututil.IsKeyJustPressed(ebiten.KeySpace),
		apply: inpututil.IsKeyJustPressed(ebiten.KeyEnter),
		pause: inpututil.IsKeyJustPressed(ebiten.KeyP),
		step:  inpututil.IsKeyJustPressed(ebiten.KeyN),
		camera: camera.Controls{
			ZoomIn:  ebiten.IsKeyPressed(ebiten.KeyZ),
			ZoomOut: ebiten.IsKeyPressed(ebiten.KeyX),
			Up:      ebiten.IsKeyPressed(ebiten.KeyW),
			Down:    ebiten.IsKeyPressed(ebiten.KeyS),
			Left:    ebiten.IsKeyPressed(ebiten.KeyA),
			Right:   ebiten.IsKeyPressed(ebiten.KeyD),
		},
	}
}

// readPointer returns the edit input for a view w x h pixels at the window
// origin. Clicks outside the view are ignored.
func readPointer(w, h int) sim.Input {
	mx, my := ebiten.CursorPosition()
	if mx < 0 || my < 0 || mx >= w || my >= h {
		return sim.Input{}
	}
	return sim.Input{
		LeftJustPressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		RightJustPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight),
		PaintHeld:        ebiten.IsKeyPressed(ebiten.KeyV) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Cursor:           [2]float64{float64(mx) + 0.5, float64(my) + 0.5},
	}
}
