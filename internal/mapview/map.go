package mapview

import (
	"github.com/paulmach/orb"
)

// Target identifies the rendering surface a map is attached to, such as a
// DOM container id. The empty target means detached.
type Target string

// MapOptions configures a new Map.
type MapOptions struct {
	Capability  string
	Layers      []*Layer
	View        *View
	Attribution bool
}

// Map is one rendering surface with its own layer stack and a borrowed
// reference to a shared View.
type Map struct {
	capability  string
	layers      []*Layer
	view        *View
	target      Target
	attribution bool
	renders     int

	moveEnd listeners
}

// NewMap creates a map on the given view. It panics without a view.
func NewMap(opts MapOptions) *Map {
	if opts.View == nil {
		panic("mapview: NewMap without a view")
	}
	m := &Map{
		capability:  opts.Capability,
		layers:      append([]*Layer(nil), opts.Layers...),
		view:        opts.View,
		attribution: opts.Attribution,
	}
	opts.View.attach(m)
	return m
}

// Capability returns the key of the capability this map renders.
func (m *Map) Capability() string { return m.capability }

// View returns the shared view.
func (m *Map) View() *View { return m.view }

// Attribution reports whether the built-in attribution control is shown.
func (m *Map) Attribution() bool { return m.attribution }

// Target returns the attached rendering surface.
func (m *Map) Target() Target { return m.target }

// SetTarget attaches the map to a rendering surface.
func (m *Map) SetTarget(t Target) { m.target = t }

// Layers returns a copy of the layer stack in insertion order.
func (m *Map) Layers() []*Layer {
	return append([]*Layer(nil), m.layers...)
}

// AddLayer pushes a layer on top of the stack.
func (m *Map) AddLayer(l *Layer) {
	m.layers = append(m.layers, l)
}

// RemoveLayer removes l and reports whether it was present.
func (m *Map) RemoveLayer(l *Layer) bool {
	for i, existing := range m.layers {
		if existing == l {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return true
		}
	}
	return false
}

// BaseLayers returns the layers flagged as base.
func (m *Map) BaseLayers() []*Layer {
	var out []*Layer
	for _, l := range m.layers {
		if l.Base {
			out = append(out, l)
		}
	}
	return out
}

// Render requests a redraw.
func (m *Map) Render() { m.renders++ }

// RenderRequests counts redraw requests since creation.
func (m *Map) RenderRequests() int { return m.renders }

// OnMoveEnd registers fn to run whenever a move of the shared view settles.
func (m *Map) OnMoveEnd(fn func()) (cancel func()) {
	return m.moveEnd.add(fn)
}

// MoveTo applies a finished user gesture (pan, pinch, wheel) to the shared
// view. Every map on the view sees the new state and fires moveend.
func (m *Map) MoveTo(center orb.Point, zoom float64) {
	m.view.jump(center, zoom)
}

type listener struct {
	fn func()
}

type listeners []*listener

func (ls *listeners) add(fn func()) func() {
	l := &listener{fn: fn}
	*ls = append(*ls, l)
	return func() {
		for i, existing := range *ls {
			if existing == l {
				*ls = append((*ls)[:i:i], (*ls)[i+1:]...)
				return
			}
		}
	}
}

func (ls listeners) fire() {
	for _, l := range append(listeners(nil), ls...) {
		l.fn()
	}
}
