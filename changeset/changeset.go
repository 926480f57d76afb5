/*
Package changeset assembles the reviewable per-region change
proposals: member features, a bounding box, Overpass verification
queries and the changeset metadata block for the upload editor.
*/
package changeset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tallcoleman/toronto-osm-washroom-import/normalize"
)

// Source describes the upstream dataset a changeset was generated
// from. Date is the upstream last_modified truncated to the day.
type Source struct {
	Name    string
	URL     string
	Date    string
	Wiki    string
	License string
}

type Changeset struct {
	Name          string
	Features      []normalize.Feature
	BBox          string
	WashroomQuery string
	BuildingQuery string
	Tags          string
}

// Build turns partition groups into changesets, sorted by name.
func Build(groups map[string][]normalize.Feature, src Source) []Changeset {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	changesets := make([]Changeset, 0, len(names))
	for _, name := range names {
		features := groups[name]
		bbox := BBox(features)
		changesets = append(changesets, Changeset{
			Name:          name,
			Features:      features,
			BBox:          bbox,
			WashroomQuery: WashroomQuery(bbox),
			BuildingQuery: BuildingQuery(bbox),
			Tags:          MetadataTags(name, src),
		})
	}
	return changesets
}

// BBox spans the member point coordinates as
// "minLat,minLon,maxLat,maxLon".
func BBox(features []normalize.Feature) string {
	minLat, minLong := 90.0, 180.0
	maxLat, maxLong := -90.0, -180.0
	for _, f := range features {
		if f.Point.Lat < minLat {
			minLat = f.Point.Lat
		}
		if f.Point.Lat > maxLat {
			maxLat = f.Point.Lat
		}
		if f.Point.Long < minLong {
			minLong = f.Point.Long
		}
		if f.Point.Long > maxLong {
			maxLong = f.Point.Long
		}
	}
	return fmt.Sprintf("%v,%v,%v,%v", minLat, minLong, maxLat, maxLong)
}

// WashroomQuery returns the Overpass query listing washrooms already
// mapped inside the bounding box.
func WashroomQuery(bbox string) string {
	return fmt.Sprintf(`[out:xml][timeout:30][bbox:%s];
area["official_name"="City of Toronto"]->.toArea;
(
  nwr["amenity"="toilets"](area.toArea);
  nwr["building"="toilets"](area.toArea);
);
(._;>;);
out meta;`, bbox)
}

// BuildingQuery returns the Overpass query listing buildings near
// already mapped washrooms, for conflation checks.
func BuildingQuery(bbox string) string {
	return fmt.Sprintf(`[out:xml][timeout:30][bbox:%s];
area["official_name"="City of Toronto"]->.toArea;
(
    nwr["amenity"="toilets"](area.toArea);
    nwr["building"="toilets"](area.toArea);
)->.toWashrooms;
(
    way(around.toWashrooms:50)["building"];
    -
    way.toWashrooms;
)->.nearbyBuildings;
(.nearbyBuildings;>;);
out meta;`, bbox)
}

// MetadataTags renders the fixed-key changeset metadata block.
func MetadataTags(name string, src Source) string {
	lines := []string{
		fmt.Sprintf("comment=Import washrooms from the %s dataset in %s", src.Name, name),
		"import=yes",
		fmt.Sprintf("source=%s", src.Name),
		fmt.Sprintf("source:url=%s", src.URL),
		fmt.Sprintf("source:date=%s", src.Date),
		fmt.Sprintf("import:page=%s", src.Wiki),
		fmt.Sprintf("license=%s", src.License),
	}
	return strings.Join(lines, "\n") + "\n"
}

// TruncateDate reduces an upstream last_modified timestamp to its
// date-only part.
func TruncateDate(timestamp string) string {
	if i := strings.Index(timestamp, "T"); i >= 0 {
		return timestamp[:i]
	}
	if i := strings.Index(timestamp, " "); i >= 0 {
		return timestamp[:i]
	}
	return timestamp
}
