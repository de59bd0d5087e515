package ui

import (
	"image"
	"math"
	"strconv"

	"automata/internal/core"
)

// Tunable is anything the control panel can display and adjust. Setters are
// discovered through core.IntParameterSetter, core.FloatParameterSetter and
// core.BoolParameterSetter.
type Tunable interface {
	core.ParameterControlsProvider
	Parameters() core.ParameterSnapshot
}

type controlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	boolValue  bool
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// panelModel holds the layout-independent state of the control panel.
type panelModel struct {
	target   Tunable
	controls []controlState

	ints   core.IntParameterSetter
	floats core.FloatParameterSetter
	bools  core.BoolParameterSetter
}

func newPanelModel(target Tunable) *panelModel {
	m := &panelModel{target: target}
	if target == nil {
		return m
	}
	for _, ctrl := range target.ParameterControls() {
		m.controls = append(m.controls, controlState{control: ctrl, value: "--"})
	}
	m.ints, _ = target.(core.IntParameterSetter)
	m.floats, _ = target.(core.FloatParameterSetter)
	m.bools, _ = target.(core.BoolParameterSetter)
	return m
}

// refresh re-reads every control value from the target.
func (m *panelModel) refresh() {
	if m.target == nil {
		return
	}
	snap := m.target.Parameters()
	for i := range m.controls {
		st := &m.controls[i]
		st.hasValue = false
		st.value = "--"
		p, ok := snap.Lookup(st.control.Key)
		if !ok {
			continue
		}
		switch st.control.Type {
		case core.ParamTypeInt:
			v, err := strconv.Atoi(p.Value)
			if err != nil {
				continue
			}
			st.intValue, st.floatValue = v, float64(v)
			st.value = strconv.Itoa(v)
			if p.Description != "" && st.control.Key == "kernel" {
				st.value = p.Description
			}
		case core.ParamTypeFloat:
			v, err := strconv.ParseFloat(p.Value, 64)
			if err != nil {
				continue
			}
			st.floatValue = v
			st.value = formatFloat(st.control, v)
		case core.ParamTypeBool:
			v, err := strconv.ParseBool(p.Value)
			if err != nil {
				continue
			}
			st.boolValue = v
			st.value = onOff(v)
		default:
			continue
		}
		st.hasValue = true
	}
}

// stepInt returns the clamped integer one step away from st in direction.
func stepInt(st *controlState, direction int) int {
	step := int(math.Round(st.control.Step))
	if step <= 0 {
		step = 1
	}
	target := float64(st.intValue + direction*step)
	return int(math.Round(st.control.Clamp(target)))
}

func stepFloat(st *controlState, direction int) float64 {
	step := st.control.Step
	if step <= 0 {
		step = 0.05
	}
	return st.control.Clamp(st.floatValue + float64(direction)*step)
}

// canAdjust reports whether pressing the button in direction would change
// control i. Bool controls use minus for off and plus for on.
func (m *panelModel) canAdjust(i, direction int) bool {
	st := &m.controls[i]
	if !st.hasValue || direction == 0 {
		return false
	}
	switch st.control.Type {
	case core.ParamTypeInt:
		return m.ints != nil && stepInt(st, direction) != st.intValue
	case core.ParamTypeFloat:
		return m.floats != nil && math.Abs(stepFloat(st, direction)-st.floatValue) >= 1e-9
	case core.ParamTypeBool:
		return m.bools != nil && st.boolValue != (direction > 0)
	}
	return false
}

// adjust applies one button press to control i and reports whether the
// target accepted it.
func (m *panelModel) adjust(i, direction int) bool {
	if !m.canAdjust(i, direction) {
		return false
	}
	st := &m.controls[i]
	switch st.control.Type {
	case core.ParamTypeInt:
		v := stepInt(st, direction)
		if !m.ints.SetIntParameter(st.control.Key, v) {
			return false
		}
		st.intValue, st.floatValue = v, float64(v)
		st.value = strconv.Itoa(v)
	case core.ParamTypeFloat:
		v := stepFloat(st, direction)
		if !m.floats.SetFloatParameter(st.control.Key, v) {
			return false
		}
		st.floatValue = v
		st.value = formatFloat(st.control, v)
	case core.ParamTypeBool:
		v := direction > 0
		if !m.bools.SetBoolParameter(st.control.Key, v) {
			return false
		}
		st.boolValue = v
		st.value = onOff(v)
	}
	return true
}

// layout positions the rows of a panel width pixels wide.
func (m *panelModel) layout(width int) {
	for i := range m.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plus := image.Rect(width-panelPadding-buttonSize, buttonY, width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		m.controls[i].top = top
		m.controls[i].minusRect = minus
		m.controls[i].plusRect = plus
	}
}

// actionsTop is the y of the first action button below the controls.
func (m *panelModel) actionsTop() int {
	return controlsTop + len(m.controls)*lineHeight + panelPadding
}

// hit returns the control index and direction under panel point (x, y).
func (m *panelModel) hit(x, y int) (int, int, bool) {
	p := image.Pt(x, y)
	for i := range m.controls {
		if p.In(m.controls[i].minusRect) {
			return i, -1, true
		}
		if p.In(m.controls[i].plusRect) {
			return i, 1, true
		}
	}
	return 0, 0, false
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	actionHeight   = 26
	controlsTop    = panelPadding + headerBaseline + 14
)
