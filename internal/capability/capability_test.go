package capability

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-radar/internal/mapview"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("radar", NewTiled("radar", "Radar", mapview.XYZ{}, 1)))
	require.NoError(t, r.Register("lightning", NewTiled("lightning", "Lightning", mapview.XYZ{}, 1)))

	assert.Error(t, r.Register("radar", NewTiled("radar", "Radar", mapview.XYZ{}, 1)))
	assert.Error(t, r.Register("", nil))

	assert.Equal(t, []string{"radar", "lightning"}, r.Keys())
	assert.Equal(t, 2, r.Len())

	_, ok := r.Get("satellite")
	assert.False(t, ok)
}

func TestTiled(t *testing.T) {
	c := NewTiled("radar", "Radar", mapview.XYZ{URL: "https://tiles.example.com/radar/{z}/{x}/{y}.png"}, 0)
	var _ FocusLoser = c
	var _ LayerProvider = c

	layers := c.Layers()
	require.Len(t, layers, 1)
	assert.Equal(t, 1.0, layers[0].Opacity)
	assert.False(t, layers[0].Base)

	view := mapview.NewView(mapview.ViewOptions{Center: orb.Point{0, 0}, Zoom: 3})
	m := mapview.NewMap(mapview.MapOptions{Capability: "radar", Layers: layers, View: view.View()})
	c.SetMap(m)
	c.SetTarget("map")
	assert.Equal(t, mapview.Target("map"), m.Target())

	c.WillLoseFocus()
	assert.Equal(t, mapview.Target(""), m.Target())
	assert.Equal(t, 1, c.FocusLosses())
}

func TestTiled_NoSource(t *testing.T) {
	assert.Empty(t, NewTiled("lightning", "Lightning", mapview.XYZ{}, 1).Layers())
}
