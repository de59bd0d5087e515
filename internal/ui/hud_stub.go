//go:build !ebiten

package ui

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(Tunable, string, int) *HUD { return nil }

// Update is a no-op in the headless build.
func (h *HUD) Update(int) Action { return ActionNone }

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int) {}
