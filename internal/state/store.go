// Package state holds the shared UI state cells the map orchestrator reads
// and writes, and fans their changes out to live clients.
package state

// Keys of the shared cells, also used as signal names on the wire.
const (
	KeyMapBaseLayer = "mapBaseLayer"
	KeyLatLon       = "latLon"
	KeyZoomLevel    = "zoomlevel"
	KeyActiveCap    = "sharedActiveCap"
	KeyURL          = "url"
)

// LatLon is a last known location in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Cell is a writable value with subscribers. It is not safe for concurrent
// use; owners serialize access.
type Cell[T comparable] struct {
	key   string
	value T
	subs  []*subscriber[T]
	bus   *EventBus
}

type subscriber[T comparable] struct {
	fn func(T)
}

// NewCell creates a cell. Changes are published on bus when it is non-nil.
func NewCell[T comparable](key string, initial T, bus *EventBus) *Cell[T] {
	return &Cell[T]{key: key, value: initial, bus: bus}
}

// Key returns the cell's name.
func (c *Cell[T]) Key() string { return c.key }

// Get returns the current value.
func (c *Cell[T]) Get() T { return c.value }

// Set stores v and notifies subscribers. Setting an equal value is a no-op.
func (c *Cell[T]) Set(v T) {
	if v == c.value {
		return
	}
	c.value = v
	for _, s := range append([]*subscriber[T](nil), c.subs...) {
		s.fn(v)
	}
	if c.bus != nil {
		c.bus.Publish(Event{Key: c.key, Value: v})
	}
}

// Subscribe calls fn with the current value right away and again after
// every change, until cancel is called.
func (c *Cell[T]) Subscribe(fn func(T)) (cancel func()) {
	s := &subscriber[T]{fn: fn}
	c.subs = append(c.subs, s)
	fn(c.value)
	return func() {
		for i, existing := range c.subs {
			if existing == s {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Store is the set of shared cells for one orchestrator.
type Store struct {
	MapBaseLayer *Cell[string]
	LatLon       *Cell[*LatLon]
	ZoomLevel    *Cell[float64]
	ActiveCap    *Cell[string]

	bus *EventBus
}

// NewStore creates a store with the front-end's initial values.
func NewStore() *Store {
	bus := NewEventBus()
	return &Store{
		MapBaseLayer: NewCell(KeyMapBaseLayer, "light", bus),
		LatLon:       NewCell[*LatLon](KeyLatLon, nil, bus),
		ZoomLevel:    NewCell(KeyZoomLevel, 3.0, bus),
		ActiveCap:    NewCell(KeyActiveCap, "", bus),
		bus:          bus,
	}
}

// Bus returns the bus every cell publishes on.
func (s *Store) Bus() *EventBus { return s.bus }
