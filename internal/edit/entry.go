package edit

import "math"

// Entry is one queued cell edit. Kind > 0 paints, Kind < 0 erases and the
// magnitude selects the brush. Kind == 0 and X == math.MaxInt32 are no-ops.
type Entry struct {
	X, Y   int32
	Kind   int32
	Radius int32
}

// Sentinel fills unused queue slots.
var Sentinel = Entry{X: math.MaxInt32, Y: math.MaxInt32}

// Noop reports whether the entry leaves the grid untouched.
func (e Entry) Noop() bool { return e.X == math.MaxInt32 || e.Kind == 0 }

const entryWords = 4

func (e Entry) words() [entryWords]int32 { return [entryWords]int32{e.X, e.Y, e.Kind, e.Radius} }

func entryFrom(w []int32) Entry {
	return Entry{X: w[0], Y: w[1], Kind: w[2], Radius: w[3]}
}
