package geojson

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/pkg/errors"
)

type object struct {
	Type        string                 `json:"type"`
	Features    []object               `json:"features,omitempty"`
	Geometry    *object                `json:"geometry,omitempty"`
	Coordinates []interface{}          `json:"coordinates,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	CRS         *crs                   `json:"crs,omitempty"`
}

type crs struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

type Point struct {
	Long float64
	Lat  float64
}

// A Polygon is one outer ring, optionally followed by hole rings.
type Polygon struct {
	Rings [][]Point
}

// Geometry holds a single decoded GeoJSON geometry. Only the slot
// matching Type is set.
type Geometry struct {
	Type     string
	Point    *Point
	Points   []Point   // MultiPoint
	Polygons []Polygon // Polygon (len 1) or MultiPolygon
}

type Feature struct {
	Properties map[string]interface{}
	Geometry   Geometry
}

type FeatureCollection struct {
	Features []Feature
}

func newPointFromCoords(coords []interface{}) (Point, error) {
	p := Point{}
	if len(coords) != 2 {
		return p, errors.New("point list length not 2")
	}
	var ok bool
	p.Long, ok = coords[0].(float64)
	if !ok {
		return p, errors.New("invalid lon")
	}
	p.Lat, ok = coords[1].(float64)
	if !ok {
		return p, errors.New("invalid lat")
	}
	return p, nil
}

func newRingFromCoords(coords []interface{}) ([]Point, error) {
	ring := []Point{}
	for _, part := range coords {
		coord, ok := part.([]interface{})
		if !ok {
			return nil, errors.New("ring point not a list")
		}
		p, err := newPointFromCoords(coord)
		if err != nil {
			return nil, err
		}
		ring = append(ring, p)
	}
	return ring, nil
}

func newPolygonFromCoords(coords []interface{}) (Polygon, error) {
	poly := Polygon{}
	for _, part := range coords {
		ringCoords, ok := part.([]interface{})
		if !ok {
			return poly, errors.New("polygon ring not a list")
		}
		ring, err := newRingFromCoords(ringCoords)
		if err != nil {
			return poly, err
		}
		poly.Rings = append(poly.Rings, ring)
	}
	if len(poly.Rings) == 0 {
		return poly, errors.New("polygon without rings")
	}
	return poly, nil
}

func newGeometry(obj *object) (Geometry, error) {
	if obj == nil {
		return Geometry{}, errors.New("missing geometry")
	}
	switch obj.Type {
	case "Point":
		p, err := newPointFromCoords(obj.Coordinates)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Type: "Point", Point: &p}, nil
	case "MultiPoint":
		points, err := newRingFromCoords(obj.Coordinates)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Type: "MultiPoint", Points: points}, nil
	case "Polygon":
		poly, err := newPolygonFromCoords(obj.Coordinates)
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Type: "Polygon", Polygons: []Polygon{poly}}, nil
	case "MultiPolygon":
		g := Geometry{Type: "MultiPolygon"}
		for _, part := range obj.Coordinates {
			polyCoords, ok := part.([]interface{})
			if !ok {
				return g, errors.New("multipolygon polygon not a list")
			}
			poly, err := newPolygonFromCoords(polyCoords)
			if err != nil {
				return g, err
			}
			g.Polygons = append(g.Polygons, poly)
		}
		return g, nil
	}
	return Geometry{}, errors.Errorf("unsupported geometry type %q", obj.Type)
}

func newFeature(obj object) (Feature, error) {
	geom, err := newGeometry(obj.Geometry)
	if err != nil {
		return Feature{}, err
	}
	props := obj.Properties
	if props == nil {
		props = map[string]interface{}{}
	}
	return Feature{Properties: props, Geometry: geom}, nil
}

// Decode reads a FeatureCollection (or a single Feature) from r.
func Decode(r io.Reader) (*FeatureCollection, error) {
	obj := object{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&obj); err != nil {
		return nil, errors.Wrap(err, "decoding geojson")
	}

	fc := FeatureCollection{}
	switch obj.Type {
	case "FeatureCollection":
		for i, f := range obj.Features {
			feature, err := newFeature(f)
			if err != nil {
				return nil, errors.Wrapf(err, "feature #%d", i)
			}
			fc.Features = append(fc.Features, feature)
		}
	case "Feature":
		feature, err := newFeature(obj)
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, feature)
	default:
		return nil, errors.Errorf("unsupported toplevel type %q", obj.Type)
	}
	return &fc, nil
}

func coordsFromPoint(p Point) []interface{} {
	return []interface{}{p.Long, p.Lat}
}

func (g Geometry) coords() []interface{} {
	switch g.Type {
	case "Point":
		return coordsFromPoint(*g.Point)
	case "MultiPoint":
		coords := []interface{}{}
		for _, p := range g.Points {
			coords = append(coords, coordsFromPoint(p))
		}
		return coords
	case "Polygon":
		return polyCoords(g.Polygons[0])
	case "MultiPolygon":
		coords := []interface{}{}
		for _, poly := range g.Polygons {
			coords = append(coords, polyCoords(poly))
		}
		return coords
	}
	return nil
}

func polyCoords(poly Polygon) []interface{} {
	coords := []interface{}{}
	for _, ring := range poly.Rings {
		ringCoords := []interface{}{}
		for _, p := range ring {
			ringCoords = append(ringCoords, coordsFromPoint(p))
		}
		coords = append(coords, ringCoords)
	}
	return coords
}

// Encode writes fc as an indented FeatureCollection. Properties with
// nil values are dropped, absent keys stay absent. Keys are written in
// sorted order so repeated runs produce identical files.
func Encode(w io.Writer, fc *FeatureCollection) error {
	features := []object{}
	for _, f := range fc.Features {
		props := map[string]interface{}{}
		for k, v := range f.Properties {
			if v == nil {
				continue
			}
			props[k] = v
		}
		geom := object{Type: f.Geometry.Type, Coordinates: f.Geometry.coords()}
		features = append(features, object{
			Type:       "Feature",
			Geometry:   &geom,
			Properties: props,
		})
	}
	top := object{Type: "FeatureCollection", Features: features}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(&top), "encoding geojson")
}

// PropertyKeys returns the sorted union of all property keys in fc.
func (fc *FeatureCollection) PropertyKeys() []string {
	seen := map[string]bool{}
	for _, f := range fc.Features {
		for k := range f.Properties {
			seen[k] = true
		}
	}
	keys := []string{}
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
