// Package mapview models the drawable side of a map: maps, their shared
// view, layer stacks, sources and features. A client-side renderer draws
// what these types describe; nothing here fetches tiles.
package mapview

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Source is the data behind a layer.
type Source interface {
	Kind() string
}

// XYZ is a tiled imagery source addressed by a {z}/{x}/{y} URL template.
type XYZ struct {
	URL            string   `json:"url"`
	TileSize       int      `json:"tileSize"`
	TilePixelRatio int      `json:"tilePixelRatio"`
	MaxZoom        int      `json:"maxZoom"`
	Attributions   []string `json:"attributions,omitempty"`
}

// Kind returns "xyz".
func (XYZ) Kind() string { return "xyz" }

// subdomainPattern matches ranges like {a-c}.
var subdomainPattern = regexp.MustCompile(`\{([a-z])-([a-z])\}`)

// TileURL expands the template for a single tile.
// A {a-c} range picks one subdomain per tile so requests spread across hosts.
func (s XYZ) TileURL(t maptile.Tile) string {
	u := strings.NewReplacer(
		"{z}", strconv.FormatUint(uint64(t.Z), 10),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
	).Replace(s.URL)

	return subdomainPattern.ReplaceAllStringFunc(u, func(m string) string {
		parts := subdomainPattern.FindStringSubmatch(m)
		from, to := parts[1][0], parts[2][0]
		if to < from {
			return string(from)
		}
		n := uint32(to-from) + 1
		return string(from + byte((t.X+t.Y)%n))
	})
}

// Vector is an in-memory feature source.
type Vector struct {
	Name     string
	Features []*Feature
}

// Kind returns "vector".
func (Vector) Kind() string { return "vector" }

// Style describes how point features are drawn.
type Style struct {
	Radius      float64 `json:"radius"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// Layer is one entry of a map's layer stack.
type Layer struct {
	Name    string
	Source  Source
	Style   *Style
	Opacity float64
	ZIndex  int

	// Base marks the background layer. A map holds exactly one.
	Base bool

	// Preload is the number of lower zoom levels to prefetch; +Inf means all.
	Preload float64
}

// Feature holds one geometry. A nil geometry draws nothing.
type Feature struct {
	geometry orb.Geometry
	revision int
}

// NewFeature returns a feature without geometry.
func NewFeature() *Feature {
	return &Feature{}
}

// SetGeometry replaces the geometry; nil clears it.
func (f *Feature) SetGeometry(g orb.Geometry) {
	f.geometry = g
	f.revision++
}

// Geometry returns the current geometry or nil.
func (f *Feature) Geometry() orb.Geometry {
	return f.geometry
}

// Revision counts geometry changes.
func (f *Feature) Revision() int {
	return f.revision
}
