package layermanager

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-radar/internal/geolocation"
	"github.com/joeblew999/plat-radar/internal/mapview"
	"github.com/joeblew999/plat-radar/internal/state"
)

// LocationAnimation is how long the view takes to fly to a new fix.
const LocationAnimation = 500 * time.Millisecond

type locationOptions struct {
	zoomIn  bool
	refocus bool
}

// LocationOption tunes UpdateLocation.
type LocationOption func(*locationOptions)

// WithZoomIn zooms to a level matching the fix accuracy. Default false.
func WithZoomIn(v bool) LocationOption {
	return func(o *locationOptions) { o.zoomIn = v }
}

// WithRefocus centers the view on the fix. Default true.
func WithRefocus(v bool) LocationOption {
	return func(o *locationOptions) { o.refocus = v }
}

// UpdateLocation shows a geolocation fix on every map. accuracy is the
// radius in metres; a negative value hides the halo. lat, lon and accuracy
// all -1 mean no location is known.
func (m *Manager) UpdateLocation(lat, lon, accuracy float64, opts ...LocationOption) {
	o := locationOptions{refocus: true}
	for _, opt := range opts {
		opt(&o)
	}

	var halo orb.Geometry
	if accuracy >= 0 {
		halo = geolocation.AccuracyPolygon(lon, lat, accuracy)
	}
	m.overlay.SetAccuracy(halo)

	if geolocation.IsSentinel(lat, lon, accuracy) {
		m.store.LatLon.Set(nil)
		m.overlay.SetPosition(nil)
		m.metrics.LocationUpdate("cleared")
		return
	}

	fix := geolocation.Project(lon, lat)
	m.store.LatLon.Set(&state.LatLon{Lat: lat, Lon: lon})
	m.overlay.SetPosition(fix)
	m.metrics.LocationUpdate("fix")

	if o.zoomIn || o.refocus {
		view := m.view.View()
		zoom := view.Zoom()
		if o.zoomIn {
			zoom = geolocation.ZoomForAccuracy(accuracy)
		}
		center := view.Center()
		if o.refocus {
			center = fix
		}
		m.view.Animate(mapview.Animation{Center: center, Zoom: zoom, Duration: LocationAnimation})
	}

	for _, mp := range m.maps {
		mp.Render()
	}
}

// ResetLocation hides the position marker and halo on every map.
func (m *Manager) ResetLocation() {
	m.overlay.Reset()
}
