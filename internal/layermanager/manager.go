// Package layermanager runs one map per capability over a single shared
// view, with a geolocation overlay, URL/history sync and switchable base
// layers.
//
// A Manager is built with New and starts reacting to shared state with
// Activate. It is driven from one goroutine; callers serialize access.
package layermanager

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/joeblew999/plat-radar/internal/baselayer"
	"github.com/joeblew999/plat-radar/internal/capability"
	"github.com/joeblew999/plat-radar/internal/device"
	"github.com/joeblew999/plat-radar/internal/geolocation"
	"github.com/joeblew999/plat-radar/internal/history"
	"github.com/joeblew999/plat-radar/internal/mapview"
	"github.com/joeblew999/plat-radar/internal/observability"
	"github.com/joeblew999/plat-radar/internal/settings"
	"github.com/joeblew999/plat-radar/internal/state"
	"github.com/joeblew999/plat-radar/internal/urlbridge"
)

// ErrUnknownCapability is returned for capability keys that were never
// configured.
var ErrUnknownCapability = errors.New("unknown capability")

// Initial view when latLonZ is missing or malformed.
const (
	DefaultLat  = 51.0
	DefaultLon  = 11.0
	DefaultZoom = 6.0
)

// Settings is the settings source the manager reads from.
type Settings interface {
	Get(key string) string
	Bool(key string) bool
	CB(key string)
	Subscribe(fn func(key string)) (cancel func())
}

// Options holds the manager's collaborators.
type Options struct {
	Capabilities *capability.Registry
	Settings     Settings
	Store        *state.Store
	History      history.History

	// Optional.
	Catalog *baselayer.Catalog
	Device  device.Detector
	Clock   clockwork.Clock
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Manager owns the maps of every capability and keeps them in lock-step.
type Manager struct {
	caps     *capability.Registry
	settings Settings
	store    *state.Store
	catalog  *baselayer.Catalog
	device   device.Detector
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger

	maps    []*mapview.Map
	byKey   map[string]*mapview.Map
	view    *mapview.ViewHandle
	overlay *geolocation.Overlay
	bridge  *urlbridge.Bridge

	current string
	active  bool
	cancels []func()
}

// New builds one map per capability, in registration order. The first
// map's view is shared by all later maps.
func New(opts Options) (*Manager, error) {
	if opts.Capabilities == nil || opts.Capabilities.Len() == 0 {
		return nil, errors.New("layermanager: no capabilities configured")
	}
	if opts.Settings == nil || opts.Store == nil || opts.History == nil {
		return nil, errors.New("layermanager: settings, store and history are required")
	}

	m := &Manager{
		caps:     opts.Capabilities,
		settings: opts.Settings,
		store:    opts.Store,
		catalog:  opts.Catalog,
		device:   opts.Device,
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		byKey:    map[string]*mapview.Map{},
		overlay:  geolocation.New(),
	}
	if m.catalog == nil {
		m.catalog = baselayer.New(baselayer.Options{})
	}
	if m.device == nil {
		m.device = device.Static(false)
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	for _, key := range m.caps.Keys() {
		c, _ := m.caps.Get(key)
		mp := m.makeMap(key, c)
		c.SetMap(mp)
		m.maps = append(m.maps, mp)
		m.byKey[key] = mp
	}

	m.bridge = urlbridge.New(m.maps[0], opts.History, m.settings, m.logger, m.metrics)
	return m, nil
}

func (m *Manager) makeMap(key string, c capability.Capability) *mapview.Map {
	accuracy, position := m.overlay.Layers()
	layers := []*mapview.Layer{
		m.catalog.Construct(m.settings.Get(settings.KeyMapBaseLayer)),
		accuracy,
		position,
	}
	if lp, ok := c.(capability.LayerProvider); ok {
		layers = append(layers, lp.Layers()...)
	}

	if m.view == nil {
		lat, lon, zoom := m.initialView()
		m.view = mapview.NewView(mapview.ViewOptions{
			Center:         geolocation.Project(lon, lat),
			Zoom:           zoom,
			EnableRotation: m.settings.Bool(settings.KeyMapRotation),
			Clock:          m.clock,
		})
	}

	mp := mapview.NewMap(mapview.MapOptions{
		Capability:  key,
		Layers:      layers,
		View:        m.view.View(),
		Attribution: !m.device.IsApp(),
	})
	mp.OnMoveEnd(func() {
		m.store.ZoomLevel.Set(mp.View().Zoom())
	})
	return mp
}

// initialView reads latLonZ, falling back to the default view.
func (m *Manager) initialView() (lat, lon, zoom float64) {
	raw := m.settings.Get(settings.KeyLatLonZ)
	lat, lon, zoom, ok := ParseLatLonZ(raw)
	if !ok {
		if raw != "" {
			m.logger.Debug("ignoring malformed latLonZ", "value", raw)
		}
		return DefaultLat, DefaultLon, DefaultZoom
	}
	return lat, lon, zoom
}

// ParseLatLonZ parses "<lat>,<lon>,<zoom>". ok is false unless there are
// exactly three finite numeric fields.
func ParseLatLonZ(s string) (lat, lon, zoom float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, 0, 0, false
		}
		v[i] = f
	}
	return v[0], v[1], v[2], true
}

// Activate starts following the base layer cell, settings changes and
// browser history. The base layer subscription applies the current value
// right away. Calling Activate twice has no further effect.
func (m *Manager) Activate() {
	if m.active {
		return
	}
	m.active = true
	m.cancels = append(m.cancels,
		m.store.MapBaseLayer.Subscribe(m.SwitchBaseLayer),
		m.settings.Subscribe(m.settingChanged),
		m.bridge.Start(),
	)
}

// Deactivate undoes Activate.
func (m *Manager) Deactivate() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
	m.active = false
}

// Active reports whether Activate is in effect.
func (m *Manager) Active() bool { return m.active }

func (m *Manager) settingChanged(key string) {
	switch key {
	case settings.KeyLatLonZ:
		lat, lon, zoom := m.initialView()
		m.view.SetView(geolocation.Project(lon, lat), zoom)
	case settings.KeyMapBaseLayer:
		m.store.MapBaseLayer.Set(m.settings.Get(key))
	}
}

// SetTarget attaches the map of capability key to target and makes it
// current. The previous capability is told it loses focus unless it is the
// same one.
func (m *Manager) SetTarget(key string, target mapview.Target) error {
	c, ok := m.caps.Get(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCapability, key)
	}

	if m.current != "" && key != m.current {
		prev, _ := m.caps.Get(m.current)
		if fl, ok := prev.(capability.FocusLoser); ok {
			fl.WillLoseFocus()
		}
	}

	c.SetTarget(target)
	m.store.ActiveCap.Set(key)
	m.current = key
	m.metrics.TargetSwitch(key)
	return nil
}

// MustSetTarget is SetTarget for keys known to be configured; it panics
// otherwise.
func (m *Manager) MustSetTarget(key string, target mapview.Target) {
	if err := m.SetTarget(key, target); err != nil {
		panic(err)
	}
}

// SetDefaultTarget targets the capability named by the capability setting.
func (m *Manager) SetDefaultTarget(target mapview.Target) error {
	key := m.settings.Get(settings.KeyCapability)
	m.logger.Info("starting with default capability", "capability", key)
	return m.SetTarget(key, target)
}

// SwitchBaseLayer replaces the base layer of every map with a fresh layer
// for key. Unknown keys select the default base layer.
func (m *Manager) SwitchBaseLayer(key string) {
	for _, mp := range m.maps {
		for _, l := range mp.BaseLayers() {
			mp.RemoveLayer(l)
		}
		mp.AddLayer(m.catalog.Construct(key))
	}
	resolved := m.catalog.Resolve(key)
	m.metrics.BaseLayerSwitch(resolved)
	m.logger.Debug("base layer switched", "requested", key, "layer", resolved)
}

// CurrentMap returns the map of the current capability, nil before the
// first SetTarget.
func (m *Manager) CurrentMap() *mapview.Map {
	return m.byKey[m.current]
}

// Current returns the current capability key, "" before the first SetTarget.
func (m *Manager) Current() string { return m.current }

// Map returns the map of capability key.
func (m *Manager) Map(key string) (*mapview.Map, bool) {
	mp, ok := m.byKey[key]
	return mp, ok
}

// Maps returns every map in capability order.
func (m *Manager) Maps() []*mapview.Map {
	return append([]*mapview.Map(nil), m.maps...)
}

// View returns the shared view.
func (m *Manager) View() *mapview.View { return m.view.View() }

// Overlay returns the geolocation overlay.
func (m *Manager) Overlay() *geolocation.Overlay { return m.overlay }

// RenderFrame advances a running view animation. It reports whether the
// animation needs more frames.
func (m *Manager) RenderFrame() bool {
	return m.view.Step()
}
