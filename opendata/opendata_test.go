package opendata

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
)

const testPayload = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [-79.4, 43.7]},
     "properties": {"asset_id": 1, "Reason": "None", "accessible": "None"}}
  ]
}`

func testServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	mux.HandleFunc("/api/3/action/package_show", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "washroom-facilities" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"success": true, "result": {"resources": [
		  {"id": "abc", "name": "Washrooms", "url": "%s/payload",
		   "last_modified": "2024-05-17T09:30:00"}
		]}}`, server.URL)
	})
	mux.HandleFunc("/payload", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testPayload)
	})
	return server
}

func TestResourceMetadata(t *testing.T) {
	server := testServer(t)
	defer server.Close()

	client := NewClient(server.URL, nil)
	meta, err := client.ResourceMetadata("washroom-facilities", "abc")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Name != "Washrooms" || meta.LastModified != "2024-05-17T09:30:00" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if _, err := client.ResourceMetadata("washroom-facilities", "missing"); err == nil {
		t.Error("expected error for unknown resource")
	}
}

func TestDataset(t *testing.T) {
	server := testServer(t)
	defer server.Close()

	client := NewClient(server.URL, nil)
	resp, err := client.Dataset("washroom-facilities", "abc", "accessible")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Features.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(resp.Features.Features))
	}
	props := resp.Features.Features[0].Properties
	if props["Reason"] != nil {
		t.Errorf("expected Reason scrubbed, got %v", props["Reason"])
	}
	if props["accessible"] != "None" {
		t.Errorf("expected accessible kept, got %v", props["accessible"])
	}
	if resp.Metadata.ID != "abc" {
		t.Errorf("unexpected metadata %+v", resp.Metadata)
	}
}

func TestScrubNone(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []geojson.Feature{
		{Properties: map[string]interface{}{
			"Reason":     "None",
			"accessible": "None",
			"hours":      "9 a.m. to 10 p.m.",
		}},
	}}
	ScrubNone(fc, "accessible")
	props := fc.Features[0].Properties
	if props["Reason"] != nil {
		t.Errorf("Reason = %v", props["Reason"])
	}
	if props["accessible"] != "None" {
		t.Errorf("accessible = %v", props["accessible"])
	}
	if props["hours"] != "9 a.m. to 10 p.m." {
		t.Errorf("hours = %v", props["hours"])
	}
}
