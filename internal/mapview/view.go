package mapview

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
)

// ViewOptions configures a new View.
type ViewOptions struct {
	Center         orb.Point // EPSG:3857 metres
	Zoom           float64
	EnableRotation bool
	Clock          clockwork.Clock
}

// Animation is a transition of the view to a new center and zoom.
type Animation struct {
	Center   orb.Point
	Zoom     float64
	Duration time.Duration
}

type animation struct {
	fromCenter orb.Point
	fromZoom   float64
	to         Animation
	start      time.Time
}

// View is the pan/zoom state shared by every map of one orchestrator.
// Maps hold a borrowed pointer; mutations go through the owning ViewHandle
// or a user gesture on one of the maps.
type View struct {
	center              orb.Point
	zoom                float64
	enableRotation      bool
	constrainResolution bool

	clock clockwork.Clock
	anim  *animation
	maps  []*Map
}

// ViewHandle is the owner's handle to a View and the only place its
// programmatic mutators live.
type ViewHandle struct {
	view *View
}

// NewView creates a View and returns the owner's handle to it.
func NewView(opts ViewOptions) *ViewHandle {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ViewHandle{view: &View{
		center:         opts.Center,
		zoom:           opts.Zoom,
		enableRotation: opts.EnableRotation,
		clock:          clock,
	}}
}

// View returns the shared View for handing to maps.
func (h *ViewHandle) View() *View {
	return h.view
}

// Animate starts a transition from the current state. A running
// animation is superseded.
func (h *ViewHandle) Animate(a Animation) {
	v := h.view
	v.anim = &animation{
		fromCenter: v.Center(),
		fromZoom:   v.Zoom(),
		to:         a,
		start:      v.clock.Now(),
	}
}

// SetView jumps to center and zoom, cancelling any animation, and settles
// the move on every attached map.
func (h *ViewHandle) SetView(center orb.Point, zoom float64) {
	h.view.jump(center, zoom)
}

// Step advances a running animation. When it has run its duration the
// final state is committed and the move settles. Reports whether an
// animation is still running.
func (h *ViewHandle) Step() bool {
	v := h.view
	if v.anim == nil {
		return false
	}
	if v.clock.Since(v.anim.start) < v.anim.to.Duration {
		return true
	}
	v.jump(v.anim.to.Center, v.anim.to.Zoom)
	return false
}

// Center returns the current center, interpolated while animating.
func (v *View) Center() orb.Point {
	if v.anim == nil {
		return v.center
	}
	t := v.progress()
	from, to := v.anim.fromCenter, v.anim.to.Center
	return orb.Point{
		from[0] + (to[0]-from[0])*t,
		from[1] + (to[1]-from[1])*t,
	}
}

// Zoom returns the current zoom level, interpolated while animating.
func (v *View) Zoom() float64 {
	if v.anim == nil {
		return v.zoom
	}
	return v.anim.fromZoom + (v.anim.to.Zoom-v.anim.fromZoom)*v.progress()
}

// Animation returns the running animation target, if any.
func (v *View) Animation() (Animation, bool) {
	if v.anim == nil {
		return Animation{}, false
	}
	return v.anim.to, true
}

// RotationEnabled reports whether users may rotate the view.
func (v *View) RotationEnabled() bool { return v.enableRotation }

// ConstrainResolution reports whether zoom snaps to integer levels.
func (v *View) ConstrainResolution() bool { return v.constrainResolution }

// progress returns the eased completion of the animation in [0, 1].
func (v *View) progress() float64 {
	d := v.anim.to.Duration
	if d <= 0 {
		return 1
	}
	t := float64(v.clock.Since(v.anim.start)) / float64(d)
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	// ease in and out
	return t * t * (3 - 2*t)
}

func (v *View) jump(center orb.Point, zoom float64) {
	v.anim = nil
	v.center = center
	v.zoom = zoom
	v.settle()
}

func (v *View) attach(m *Map) {
	v.maps = append(v.maps, m)
}

// settle fires moveend on every map sharing this view, in attach order.
func (v *View) settle() {
	for _, m := range v.maps {
		m.moveEnd.fire()
	}
}
