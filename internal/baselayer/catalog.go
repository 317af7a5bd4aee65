// Package baselayer builds the background tile layers a user can choose from.
package baselayer

import (
	"math"
	"net/url"

	"github.com/joeblew999/plat-radar/internal/mapview"
)

// Symbolic base layer identifiers.
const (
	OSM         = "osm"
	Dark        = "dark"
	Light       = "light"
	Topographic = "topographic"
	Satellite   = "satellite"

	// Default is used for unknown identifiers.
	Default = Topographic
)

const (
	maxZoom = 20
	zIndex  = 1
)

// Attribution strings shown with the providers' imagery.
const (
	OSMAttribution      = `&#169; <a href="https://www.openstreetmap.org/copyright" target="_blank">OpenStreetMap</a> contributors`
	CartoAttribution    = `&#169; <a href="https://carto.com/attributions" target="_blank">CARTO</a>`
	MapTilerAttribution = `&#169; <a href="https://www.maptiler.com/copyright/" target="_blank">MapTiler</a>`
)

// Options configures a Catalog.
type Options struct {
	// PixelRatio is the device pixel ratio; above 1 selects retina tiles.
	PixelRatio float64
	// MapTilerKey is appended to MapTiler tile URLs.
	MapTilerKey string
}

// Info describes one catalog entry.
type Info struct {
	Key          string   `json:"key" doc:"Base layer identifier" example:"topographic"`
	Title        string   `json:"title" doc:"Display name" example:"Outdoor"`
	URL          string   `json:"url" doc:"Tile URL template"`
	Attributions []string `json:"attributions" doc:"Attribution HTML snippets"`
}

// Catalog constructs base layers by symbolic identifier.
type Catalog struct {
	opts Options
}

// New creates a catalog.
func New(opts Options) *Catalog {
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = 1
	}
	return &Catalog{opts: opts}
}

// Keys lists the known identifiers.
func (c *Catalog) Keys() []string {
	return []string{OSM, Dark, Light, Topographic, Satellite}
}

// Resolve maps an identifier to a known one, falling back to Default.
func (c *Catalog) Resolve(key string) string {
	switch key {
	case OSM, Dark, Light, Topographic, Satellite:
		return key
	}
	return Default
}

// Construct returns a fresh base layer for key. Unknown keys yield the
// default layer. Layers are never shared between calls.
func (c *Catalog) Construct(key string) *mapview.Layer {
	key = c.Resolve(key)
	return &mapview.Layer{
		Name:    key,
		Source:  c.source(key),
		Opacity: 1,
		ZIndex:  zIndex,
		Base:    true,
		Preload: math.Inf(1),
	}
}

// Describe lists every entry with its expanded source.
func (c *Catalog) Describe() []Info {
	titles := map[string]string{
		OSM:         "OpenStreetMap",
		Dark:        "Dark",
		Light:       "Light",
		Topographic: "Outdoor",
		Satellite:   "Satellite",
	}
	var out []Info
	for _, k := range c.Keys() {
		src := c.source(k)
		out = append(out, Info{Key: k, Title: titles[k], URL: src.URL, Attributions: src.Attributions})
	}
	return out
}

func (c *Catalog) source(key string) mapview.XYZ {
	retina := ""
	ratio := 1
	if c.opts.PixelRatio > 1 {
		retina = "@2x"
		ratio = 2
	}

	switch key {
	case OSM:
		return mapview.XYZ{
			URL:            "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
			TileSize:       256,
			TilePixelRatio: 1,
			MaxZoom:        maxZoom,
			Attributions:   []string{OSMAttribution},
		}
	case Dark:
		return mapview.XYZ{
			URL:            "https://cartodb-basemaps-{a-c}.global.ssl.fastly.net/rastertiles/dark_nolabels/{z}/{x}/{y}" + retina + ".png",
			TileSize:       256,
			TilePixelRatio: ratio,
			MaxZoom:        maxZoom,
			Attributions:   []string{OSMAttribution, CartoAttribution},
		}
	case Light:
		return mapview.XYZ{
			URL:            "https://cartodb-basemaps-{a-c}.global.ssl.fastly.net/rastertiles/voyager_nolabels/{z}/{x}/{y}" + retina + ".png",
			TileSize:       256,
			TilePixelRatio: ratio,
			MaxZoom:        maxZoom,
			Attributions:   []string{OSMAttribution, CartoAttribution},
		}
	case Satellite:
		return mapview.XYZ{
			URL:            c.mapTiler("https://api.maptiler.com/tiles/satellite/{z}/{x}/{y}" + retina + ".jpg"),
			TileSize:       512,
			TilePixelRatio: ratio,
			MaxZoom:        maxZoom,
			Attributions:   []string{MapTilerAttribution},
		}
	default:
		// The outdoor style only ships @2x tiles; the pixel ratio decides
		// whether they are drawn at full or half size.
		return mapview.XYZ{
			URL:            c.mapTiler("https://api.maptiler.com/maps/outdoor/{z}/{x}/{y}@2x.png"),
			TileSize:       512,
			TilePixelRatio: ratio,
			MaxZoom:        maxZoom,
			Attributions:   []string{OSMAttribution, MapTilerAttribution},
		}
	}
}

func (c *Catalog) mapTiler(u string) string {
	if c.opts.MapTilerKey == "" {
		return u
	}
	return u + "?key=" + url.QueryEscape(c.opts.MapTilerKey)
}
