package session

import (
	"github.com/joeblew999/plat-radar/internal/geolocation"
	"github.com/joeblew999/plat-radar/internal/state"
)

// MapSnapshot describes one map of a session.
type MapSnapshot struct {
	Capability  string `json:"capability" doc:"Capability key" example:"radar"`
	Target      string `json:"target,omitempty" doc:"Surface the map is attached to" example:"map"`
	BaseLayer   string `json:"baseLayer" doc:"Current base layer" example:"light"`
	Layers      int    `json:"layers" doc:"Number of layers in the stack"`
	Renders     int    `json:"renders" doc:"Render requests so far"`
	Attribution bool   `json:"attribution" doc:"Whether the attribution control is shown"`
	Position    bool   `json:"position" doc:"Whether a position marker is drawn"`
	Accuracy    bool   `json:"accuracy" doc:"Whether an accuracy halo is drawn"`
}

// Snapshot is a read-only picture of a session.
type Snapshot struct {
	ID         string        `json:"id" doc:"Session ID"`
	URL        string        `json:"url" doc:"Current page URL"`
	Title      string        `json:"title,omitempty" doc:"Title of the current history entry"`
	Lat        float64       `json:"lat" doc:"View center latitude"`
	Lon        float64       `json:"lon" doc:"View center longitude"`
	Zoom       float64       `json:"zoom" doc:"View zoom level"`
	Animating  bool          `json:"animating" doc:"Whether the view is animating"`
	Capability string        `json:"capability" doc:"Current capability"`
	BaseLayer  string        `json:"baseLayer" doc:"Selected base layer"`
	ZoomLevel  float64       `json:"zoomlevel" doc:"Last settled zoom level"`
	LastFix    *state.LatLon `json:"lastFix,omitempty" doc:"Last known location"`
	History    int           `json:"history" doc:"Number of history entries"`
	Index      int           `json:"index" doc:"Current history entry"`
	Maps       []MapSnapshot `json:"maps" doc:"Per-capability maps"`
}

// Snapshot advances any running animation and describes the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.manager
	m.RenderFrame()

	view := m.View()
	lon, lat := geolocation.Unproject(view.Center())
	_, animating := view.Animation()
	cur := s.history.Current()

	snap := Snapshot{
		ID:         s.id,
		URL:        cur.URL,
		Title:      cur.Title,
		Lat:        lat,
		Lon:        lon,
		Zoom:       view.Zoom(),
		Animating:  animating,
		Capability: m.Current(),
		BaseLayer:  s.store.MapBaseLayer.Get(),
		ZoomLevel:  s.store.ZoomLevel.Get(),
		LastFix:    s.store.LatLon.Get(),
		History:    s.history.Len(),
		Index:      s.history.Index(),
	}

	overlay := m.Overlay()
	for i, mp := range m.Maps() {
		ms := MapSnapshot{
			Capability:  mp.Capability(),
			Target:      string(mp.Target()),
			Layers:      len(mp.Layers()),
			Renders:     mp.RenderRequests(),
			Attribution: mp.Attribution(),
			Position:    overlay.Position()[i].Geometry() != nil,
			Accuracy:    overlay.Accuracy()[i].Geometry() != nil,
		}
		if base := mp.BaseLayers(); len(base) > 0 {
			ms.BaseLayer = base[0].Name
		}
		snap.Maps = append(snap.Maps, ms)
	}
	return snap
}
