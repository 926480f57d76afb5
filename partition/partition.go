/*
Package partition assigns normalized features to administrative
regions by point-in-polygon containment.

The region set is small (tens of polygons), so containment is a linear
scan per point. Contains is the only geometry entry point; a spatial
index could replace the scan without changing the contract.
*/
package partition

import (
	"fmt"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/pkg/errors"

	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
	"github.com/tallcoleman/toronto-osm-washroom-import/logging"
	"github.com/tallcoleman/toronto-osm-washroom-import/normalize"
)

var log = logging.NewLogger("partition")

// A Region is one administrative boundary polygon with its display
// name and the precomputed "minLat,minLon,maxLat,maxLon" bounding box
// of the polygon.
type Region struct {
	Name     string
	BBox     string
	polygons []polygon
}

type polygon struct {
	outer *s2.Loop
	holes []*s2.Loop
}

func loopFromRing(ring []geojson.Point) *s2.Loop {
	// GeoJSON rings repeat the first point at the end; s2 loops are
	// implicitly closed.
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	points := make([]s2.Point, 0, len(ring))
	for _, p := range ring {
		points = append(points, s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Long)))
	}
	loop := s2.LoopFromPoints(points)
	loop.Normalize()
	return loop
}

// NewRegion builds a region from polygon geometry.
func NewRegion(name string, polys []geojson.Polygon) Region {
	r := Region{Name: name}
	minLat, minLong := 90.0, 180.0
	maxLat, maxLong := -90.0, -180.0
	for _, poly := range polys {
		p := polygon{outer: loopFromRing(poly.Rings[0])}
		for _, hole := range poly.Rings[1:] {
			p.holes = append(p.holes, loopFromRing(hole))
		}
		r.polygons = append(r.polygons, p)
		for _, pt := range poly.Rings[0] {
			if pt.Lat < minLat {
				minLat = pt.Lat
			}
			if pt.Lat > maxLat {
				maxLat = pt.Lat
			}
			if pt.Long < minLong {
				minLong = pt.Long
			}
			if pt.Long > maxLong {
				maxLong = pt.Long
			}
		}
	}
	r.BBox = fmt.Sprintf("%v,%v,%v,%v", minLat, minLong, maxLat, maxLong)
	return r
}

// Contains reports whether the point lies inside the region.
func (r *Region) Contains(pt geojson.Point) bool {
	p := s2.PointFromLatLng(s2.LatLngFromDegrees(pt.Lat, pt.Long))
	for _, poly := range r.polygons {
		if !poly.outer.ContainsPoint(p) {
			continue
		}
		inHole := false
		for _, hole := range poly.holes {
			if hole.ContainsPoint(p) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

func regionFromFeature(f geojson.Feature, name string) (Region, error) {
	switch f.Geometry.Type {
	case "Polygon", "MultiPolygon":
		return NewRegion(name, f.Geometry.Polygons), nil
	}
	return Region{}, errors.Errorf("region %q: expected polygon geometry, got %q", name, f.Geometry.Type)
}

func stringProp(f geojson.Feature, key string) string {
	switch v := f.Properties[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", int64(v))
	}
	return ""
}

// Wards builds the ward regions. Ward names follow the
// "<name> (<code>)" convention of the import documentation.
func Wards(fc *geojson.FeatureCollection) ([]Region, error) {
	regions := []Region{}
	for i, f := range fc.Features {
		name := stringProp(f, "AREA_NAME")
		code := stringProp(f, "AREA_SHORT_CODE")
		if name == "" || code == "" {
			return nil, errors.Errorf("ward #%d: missing AREA_NAME or AREA_SHORT_CODE", i)
		}
		region, err := regionFromFeature(f, fmt.Sprintf("%s (%s)", name, code))
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	return regions, nil
}

// Councils builds the community council regions, dropping the
// " Community Council" suffix from the display names.
func Councils(fc *geojson.FeatureCollection) ([]Region, error) {
	regions := []Region{}
	for i, f := range fc.Features {
		name := stringProp(f, "AREA_NAME")
		if name == "" {
			return nil, errors.Errorf("community council #%d: missing AREA_NAME", i)
		}
		name = strings.TrimSuffix(name, " Community Council")
		region, err := regionFromFeature(f, name)
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	return regions, nil
}

// An Assignment pairs a feature with the name of its containing
// region; Region is "" when no region contains the point.
type Assignment struct {
	Feature normalize.Feature
	Region  string
}

// Assign joins features against regions with left-join semantics. A
// point inside no region keeps an empty key; a point inside more than
// one region keeps the first match and is logged as a boundary
// data-quality problem.
func Assign(features []normalize.Feature, regions []Region) []Assignment {
	assignments := make([]Assignment, 0, len(features))
	for _, f := range features {
		matches := []string{}
		for i := range regions {
			if regions[i].Contains(f.Point) {
				matches = append(matches, regions[i].Name)
			}
		}
		name := ""
		if len(matches) > 0 {
			name = matches[0]
		}
		if len(matches) > 1 {
			log.Warnf("asset %d inside %d regions (%s), keeping %q",
				f.AssetID, len(matches), strings.Join(matches, ", "), name)
		}
		assignments = append(assignments, Assignment{Feature: f, Region: name})
	}
	return assignments
}

// Group splits assignments into per-region feature lists and the
// unpartitioned remainder.
func Group(assignments []Assignment) (map[string][]normalize.Feature, []normalize.Feature) {
	groups := map[string][]normalize.Feature{}
	unpartitioned := []normalize.Feature{}
	for _, a := range assignments {
		if a.Region == "" {
			unpartitioned = append(unpartitioned, a.Feature)
			continue
		}
		groups[a.Region] = append(groups[a.Region], a.Feature)
	}
	return groups, unpartitioned
}
