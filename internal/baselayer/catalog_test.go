package baselayer

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-radar/internal/mapview"
)

func TestConstruct_KnownKeys(t *testing.T) {
	c := New(Options{})
	for _, key := range c.Keys() {
		t.Run(key, func(t *testing.T) {
			l := c.Construct(key)
			assert.Equal(t, key, l.Name)
			assert.True(t, l.Base)
			assert.Equal(t, 1, l.ZIndex)
			assert.True(t, math.IsInf(l.Preload, 1))

			src, ok := l.Source.(mapview.XYZ)
			require.True(t, ok)
			assert.Equal(t, 20, src.MaxZoom)
			assert.NotEmpty(t, src.Attributions)
		})
	}
}

func TestConstruct_UnknownFallsBackToTopographic(t *testing.T) {
	c := New(Options{})
	l := c.Construct("no-such-layer")
	assert.Equal(t, Topographic, l.Name)
	assert.Contains(t, l.Source.(mapview.XYZ).URL, "maps/outdoor")
	assert.Equal(t, Topographic, c.Resolve(""))
}

func TestConstruct_FreshInstances(t *testing.T) {
	c := New(Options{})
	assert.NotSame(t, c.Construct(Light), c.Construct(Light))
}

func TestConstruct_Retina(t *testing.T) {
	plain := New(Options{PixelRatio: 1}).Construct(Dark).Source.(mapview.XYZ)
	retina := New(Options{PixelRatio: 2}).Construct(Dark).Source.(mapview.XYZ)

	assert.False(t, strings.Contains(plain.URL, "@2x"))
	assert.Equal(t, 1, plain.TilePixelRatio)
	assert.True(t, strings.HasSuffix(retina.URL, "{y}@2x.png"))
	assert.Equal(t, 2, retina.TilePixelRatio)

	outdoor := New(Options{PixelRatio: 3}).Construct(Topographic).Source.(mapview.XYZ)
	assert.Equal(t, 512, outdoor.TileSize)
	assert.Equal(t, 2, outdoor.TilePixelRatio)
}

func TestConstruct_MapTilerKey(t *testing.T) {
	c := New(Options{MapTilerKey: "abc 123"})
	assert.True(t, strings.HasSuffix(c.Construct(Satellite).Source.(mapview.XYZ).URL, "?key=abc+123"))
	assert.NotContains(t, c.Construct(OSM).Source.(mapview.XYZ).URL, "key=")
}

func TestDescribe(t *testing.T) {
	infos := New(Options{}).Describe()
	require.Len(t, infos, 5)
	assert.Equal(t, OSM, infos[0].Key)
	assert.Equal(t, "Outdoor", infos[3].Title)
}
