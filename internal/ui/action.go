package ui

// Action is a panel request the application carries out.
type Action uint8

const (
	ActionNone Action = iota
	// ActionReset reseeds the grid at its current size.
	ActionReset
	// ActionApply recreates the grid and rebuilds the kernel from the
	// edited configuration.
	ActionApply
)

func (a Action) String() string {
	switch a {
	case ActionReset:
		return "Reset"
	case ActionApply:
		return "Apply"
	}
	return ""
}
