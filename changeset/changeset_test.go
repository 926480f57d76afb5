package changeset

import (
	"strings"
	"testing"

	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
	"github.com/tallcoleman/toronto-osm-washroom-import/normalize"
)

func feature(long, lat float64) normalize.Feature {
	return normalize.Feature{Point: geojson.Point{Long: long, Lat: lat}}
}

func TestBBox(t *testing.T) {
	features := []normalize.Feature{
		feature(-79.5, 43.7),
		feature(-79.3, 43.6),
		feature(-79.4, 43.8),
	}
	if got := BBox(features); got != "43.6,-79.5,43.8,-79.3" {
		t.Errorf("bbox = %q", got)
	}
}

func TestBBoxSinglePoint(t *testing.T) {
	if got := BBox([]normalize.Feature{feature(-79.4, 43.7)}); got != "43.7,-79.4,43.7,-79.4" {
		t.Errorf("bbox = %q", got)
	}
}

func TestBuildSortsByName(t *testing.T) {
	groups := map[string][]normalize.Feature{
		"York South-Weston (05)": {feature(-79.5, 43.7)},
		"Davenport (09)":         {feature(-79.4, 43.67)},
		"Beaches-East York (19)": {feature(-79.3, 43.68)},
	}
	src := Source{Name: "Test Dataset", URL: "https://example.org/", Date: "2024-05-17"}

	changesets := Build(groups, src)
	if len(changesets) != 3 {
		t.Fatalf("expected 3 changesets, got %d", len(changesets))
	}
	names := []string{changesets[0].Name, changesets[1].Name, changesets[2].Name}
	want := []string{"Beaches-East York (19)", "Davenport (09)", "York South-Weston (05)"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("changeset %d = %q, want %q", i, names[i], want[i])
		}
	}

	first := changesets[0]
	if !strings.Contains(first.WashroomQuery, "[bbox:"+first.BBox+"]") {
		t.Errorf("washroom query missing bbox: %s", first.WashroomQuery)
	}
	if !strings.Contains(first.BuildingQuery, "[bbox:"+first.BBox+"]") {
		t.Errorf("building query missing bbox: %s", first.BuildingQuery)
	}
	if !strings.Contains(first.BuildingQuery, "around.toWashrooms:50") {
		t.Errorf("building query missing proximity clause: %s", first.BuildingQuery)
	}
}

func TestMetadataTags(t *testing.T) {
	src := Source{
		Name:    "Park Washroom Facilities",
		URL:     "https://open.toronto.ca/dataset/washroom-facilities/",
		Date:    "2024-05-17",
		Wiki:    "https://wiki.openstreetmap.org/wiki/Import/Example",
		License: "Open Government Licence – Toronto",
	}
	got := MetadataTags("Davenport (09)", src)
	want := "comment=Import washrooms from the Park Washroom Facilities dataset in Davenport (09)\n" +
		"import=yes\n" +
		"source=Park Washroom Facilities\n" +
		"source:url=https://open.toronto.ca/dataset/washroom-facilities/\n" +
		"source:date=2024-05-17\n" +
		"import:page=https://wiki.openstreetmap.org/wiki/Import/Example\n" +
		"license=Open Government Licence – Toronto\n"
	if got != want {
		t.Errorf("metadata tags:\n%s\nwant:\n%s", got, want)
	}
}

func TestTruncateDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-05-17T09:30:00.123456", "2024-05-17"},
		{"2024-05-17 09:30:00", "2024-05-17"},
		{"2024-05-17", "2024-05-17"},
		{"", ""},
	}
	for _, test := range tests {
		if got := TruncateDate(test.in); got != test.want {
			t.Errorf("TruncateDate(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
