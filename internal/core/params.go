package core

// ParamType is the value kind of a tunable.
type ParamType string

const (
	ParamTypeInt   ParamType = "int"
	ParamTypeFloat ParamType = "float"
	ParamTypeBool  ParamType = "bool"
)

// Parameter is one displayed value. Value holds the strconv encoding of the
// typed value.
type Parameter struct {
	Key         string
	Label       string
	Type        ParamType
	Value       string
	Description string
}

// ParameterGroup is a titled block of parameters on the panel.
type ParameterGroup struct {
	Name    string
	Summary string
	Params  []Parameter
}

// ParameterSnapshot is the full set of displayed values at one instant.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// Lookup returns the parameter stored under key.
func (s ParameterSnapshot) Lookup(key string) (Parameter, bool) {
	for _, g := range s.Groups {
		for _, p := range g.Params {
			if p.Key == key {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

// ParameterControl makes a parameter adjustable with +/- buttons. Step and
// the bounds are optional.
type ParameterControl struct {
	Key   string
	Label string
	Type  ParamType

	Step   float64
	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// Clamp limits v to the control's bounds.
func (c ParameterControl) Clamp(v float64) float64 {
	if c.HasMin && v < c.Min {
		v = c.Min
	}
	if c.HasMax && v > c.Max {
		v = c.Max
	}
	return v
}

// ParameterControlsProvider lists the controls a panel should show.
type ParameterControlsProvider interface {
	ParameterControls() []ParameterControl
}

// Setters report whether the key was known and the value accepted.
type (
	IntParameterSetter interface {
		SetIntParameter(key string, value int) bool
	}
	FloatParameterSetter interface {
		SetFloatParameter(key string, value float64) bool
	}
	BoolParameterSetter interface {
		SetBoolParameter(key string, value bool) bool
	}
)
