// Package capability defines the data layers (radar, lightning, satellite…)
// that each get their own map.
package capability

import (
	"fmt"

	"github.com/joeblew999/plat-radar/internal/mapview"
)

// Capability is a data layer rendered on its own map.
type Capability interface {
	// SetMap hands the capability the map built for it.
	SetMap(m *mapview.Map)
	// SetTarget attaches the capability's map to a rendering surface.
	SetTarget(t mapview.Target)
}

// FocusLoser is implemented by capabilities that tear down transient UI
// when another capability takes over.
type FocusLoser interface {
	WillLoseFocus()
}

// LayerProvider is implemented by capabilities that stack their own layers
// on top of the base and location layers.
type LayerProvider interface {
	Layers() []*mapview.Layer
}

// Registry holds capabilities in registration order. The first one gets
// the primary map.
type Registry struct {
	keys []string
	caps map[string]Capability
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{caps: map[string]Capability{}}
}

// Register adds a capability under key.
func (r *Registry) Register(key string, c Capability) error {
	if key == "" {
		return fmt.Errorf("capability key is empty")
	}
	if _, exists := r.caps[key]; exists {
		return fmt.Errorf("capability %q already registered", key)
	}
	r.keys = append(r.keys, key)
	r.caps[key] = c
	return nil
}

// Get returns the capability for key.
func (r *Registry) Get(key string) (Capability, bool) {
	c, ok := r.caps[key]
	return c, ok
}

// Keys returns keys in registration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of capabilities.
func (r *Registry) Len() int {
	return len(r.keys)
}
