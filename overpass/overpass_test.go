package overpass

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testResponse = `{
  "elements": [
    {"type": "node", "id": 42, "lat": 43.7, "lon": -79.4,
     "tags": {"amenity": "toilets"},
     "version": 3, "timestamp": "2023-08-01T12:00:00Z"},
    {"type": "way", "id": 7, "center": {"lat": 43.6, "lon": -79.3},
     "tags": {"building": "toilets"}},
    {"type": "way", "id": 8,
     "geometry": [
       {"lat": 43.6, "lon": -79.3}, {"lat": 43.6, "lon": -79.2},
       {"lat": 43.7, "lon": -79.2}, {"lat": 43.6, "lon": -79.3}
     ],
     "tags": {"building": "toilets"}}
  ]
}`

func TestQuery(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		received = string(body)
		fmt.Fprint(w, testResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	fc, err := client.Query(TorontoWashroomsQuery)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(received, `"amenity"="toilets"`) {
		t.Errorf("query not posted: %q", received)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(fc.Features))
	}

	node := fc.Features[0]
	if node.Geometry.Type != "Point" || node.Geometry.Point.Lat != 43.7 {
		t.Errorf("unexpected node geometry %+v", node.Geometry)
	}
	if node.Properties["amenity"] != "toilets" {
		t.Errorf("unexpected properties %v", node.Properties)
	}
	if node.Properties["_url_nwr"] != "https://www.openstreetmap.org/node/42" {
		t.Errorf("unexpected url %v", node.Properties["_url_nwr"])
	}
	if node.Properties["_timestamp"] == nil {
		t.Error("timestamp not converted")
	}

	center := fc.Features[1]
	if center.Geometry.Type != "Point" || center.Geometry.Point.Long != -79.3 {
		t.Errorf("unexpected center geometry %+v", center.Geometry)
	}

	outline := fc.Features[2]
	if outline.Geometry.Type != "Polygon" || len(outline.Geometry.Polygons[0].Rings[0]) != 4 {
		t.Errorf("unexpected outline geometry %+v", outline.Geometry)
	}
}

func TestQueryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too busy", http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).Query(TorontoWashroomsQuery); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestQueryMissingCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"elements": [{"type": "relation", "id": 9, "tags": {}}]}`)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).Query(TorontoWashroomsQuery); err == nil {
		t.Fatal("expected error for element without coordinates")
	}
}
