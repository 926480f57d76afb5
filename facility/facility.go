// Package facility reduces the one-to-many Parks and Recreation
// Facilities list into a one-to-one lookup of combined type labels.
package facility

import (
	"sort"
	"strings"

	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
	"github.com/tallcoleman/toronto-osm-washroom-import/validate"
)

// TypeIndex maps a location id to its combined type label, e.g.
// "Park", "Community Centre" or "Community Centre|Park".
type TypeIndex map[string]string

type TypeRow struct {
	LocationID string
	Type       string
}

// Rows extracts (LOCATIONID, TYPE) pairs from a validated facility
// feature collection.
func Rows(fc *geojson.FeatureCollection) []TypeRow {
	rows := make([]TypeRow, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, _ := f.Properties["LOCATIONID"].(string)
		typ, _ := f.Properties["TYPE"].(string)
		if validate.IsNull(f.Properties["LOCATIONID"]) {
			continue
		}
		rows = append(rows, TypeRow{LocationID: id, Type: typ})
	}
	return rows
}

// Resolve groups rows by location id and joins the distinct type
// labels, sorted alphabetically, with "|". The sort makes the combined
// label independent of input row order; without it the opening hours
// rules downstream would flap between runs.
func Resolve(rows []TypeRow) TypeIndex {
	grouped := map[string]map[string]bool{}
	for _, row := range rows {
		types, ok := grouped[row.LocationID]
		if !ok {
			types = map[string]bool{}
			grouped[row.LocationID] = types
		}
		types[row.Type] = true
	}

	index := TypeIndex{}
	for id, types := range grouped {
		labels := make([]string, 0, len(types))
		for label := range types {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		index[id] = strings.Join(labels, "|")
	}
	return index
}
