package capability

import (
	"math"

	"github.com/joeblew999/plat-radar/internal/mapview"
)

// dataZIndex sits between base layers and the location overlay.
const dataZIndex = 100

// Tiled is a capability backed by one tiled data layer, such as a radar
// composite. Without a source URL it shows only base and location layers.
type Tiled struct {
	Key     string
	Title   string
	Source  mapview.XYZ
	Opacity float64

	m           *mapview.Map
	focusLosses int
}

// NewTiled creates a tiled capability.
func NewTiled(key, title string, src mapview.XYZ, opacity float64) *Tiled {
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	return &Tiled{Key: key, Title: title, Source: src, Opacity: opacity}
}

// SetMap stores the map built for this capability.
func (c *Tiled) SetMap(m *mapview.Map) { c.m = m }

// Map returns the capability's map, nil before SetMap.
func (c *Tiled) Map() *mapview.Map { return c.m }

// SetTarget attaches the map to t.
func (c *Tiled) SetTarget(t mapview.Target) {
	if c.m != nil {
		c.m.SetTarget(t)
	}
}

// WillLoseFocus detaches the map from its surface.
func (c *Tiled) WillLoseFocus() {
	c.focusLosses++
	if c.m != nil {
		c.m.SetTarget("")
	}
}

// FocusLosses counts WillLoseFocus calls.
func (c *Tiled) FocusLosses() int { return c.focusLosses }

// Layers returns the data layer, or nothing without a source URL.
func (c *Tiled) Layers() []*mapview.Layer {
	if c.Source.URL == "" {
		return nil
	}
	return []*mapview.Layer{{
		Name:    c.Key,
		Source:  c.Source,
		Opacity: c.Opacity,
		ZIndex:  dataZIndex,
		Preload: math.Inf(1),
	}}
}
