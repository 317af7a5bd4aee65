// Package geolocation draws the user's position and its accuracy halo on
// every map.
package geolocation

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/project"

	"github.com/joeblew999/plat-radar/internal/mapview"
)

const (
	// LayerZIndex keeps the overlay above base and data layers.
	LayerZIndex = 99999

	layerName      = "geolocationPositionLayer"
	circleVertices = 64
)

// PositionStyle is the marker drawn at the fix.
var PositionStyle = mapview.Style{
	Radius:      10,
	Fill:        "#048EF9",
	Stroke:      "#fff",
	StrokeWidth: 3.5,
}

// Overlay owns the position and accuracy features of every map.
type Overlay struct {
	accuracy []*mapview.Feature
	position []*mapview.Feature
}

// New returns an overlay with no maps.
func New() *Overlay {
	return &Overlay{}
}

// Layers creates the accuracy and position layers for one more map.
func (o *Overlay) Layers() (accuracy, position *mapview.Layer) {
	af := mapview.NewFeature()
	pf := mapview.NewFeature()
	o.accuracy = append(o.accuracy, af)
	o.position = append(o.position, pf)

	style := PositionStyle
	accuracy = &mapview.Layer{
		Name:    layerName,
		Source:  mapview.Vector{Name: layerName, Features: []*mapview.Feature{af}},
		Opacity: 1,
		ZIndex:  LayerZIndex,
	}
	position = &mapview.Layer{
		Name:    layerName,
		Source:  mapview.Vector{Name: layerName, Features: []*mapview.Feature{pf}},
		Style:   &style,
		Opacity: 1,
		ZIndex:  LayerZIndex,
	}
	return accuracy, position
}

// SetAccuracy applies g (or nil) to every accuracy feature.
func (o *Overlay) SetAccuracy(g orb.Geometry) {
	for _, f := range o.accuracy {
		f.SetGeometry(g)
	}
}

// SetPosition applies g (or nil) to every position feature.
func (o *Overlay) SetPosition(g orb.Geometry) {
	for _, f := range o.position {
		f.SetGeometry(g)
	}
}

// Reset clears both geometries everywhere.
func (o *Overlay) Reset() {
	o.SetPosition(nil)
	o.SetAccuracy(nil)
}

// Accuracy returns the accuracy features in map order.
func (o *Overlay) Accuracy() []*mapview.Feature { return o.accuracy }

// Position returns the position features in map order.
func (o *Overlay) Position() []*mapview.Feature { return o.position }

// IsSentinel reports the "no location known" fix.
func IsSentinel(lat, lon, accuracy float64) bool {
	return lat == -1 && lon == -1 && accuracy == -1
}

// Project converts lon/lat degrees to EPSG:3857 metres.
func Project(lon, lat float64) orb.Point {
	return project.Point(orb.Point{lon, lat}, project.WGS84.ToMercator)
}

// Unproject converts EPSG:3857 metres to lon/lat degrees.
func Unproject(p orb.Point) (lon, lat float64) {
	ll := project.Point(p, project.Mercator.ToWGS84)
	return ll.Lon(), ll.Lat()
}

// AccuracyPolygon approximates a circle of radius metres around lon/lat on
// the sphere and returns it in EPSG:3857.
func AccuracyPolygon(lon, lat, radius float64) orb.Polygon {
	center := orb.Point{lon, lat}
	ring := make(orb.Ring, 0, circleVertices+1)
	for i := 0; i < circleVertices; i++ {
		bearing := 360 * float64(i) / circleVertices
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radius))
	}
	ring = append(ring, ring[0])
	return project.Polygon(orb.Polygon{ring}, project.WGS84.ToMercator)
}

// ZoomForAccuracy picks a zoom level that frames an accuracy radius.
func ZoomForAccuracy(accuracy float64) float64 {
	switch {
	case accuracy < 400:
		return 12
	case accuracy < 800:
		return 11
	case accuracy < 2000:
		return 10
	case accuracy < 4000:
		return 9
	default:
		return 8
	}
}
