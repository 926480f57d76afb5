package washroom

import (
	"strings"
	"testing"

	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
	"github.com/tallcoleman/toronto-osm-washroom-import/validate"
)

func pointGeometry() geojson.Geometry {
	return geojson.Geometry{Type: "Point", Point: &geojson.Point{Long: -79.4, Lat: 43.7}}
}

func validProps(assetID float64) map[string]interface{} {
	return map[string]interface{}{
		"parent_id":        "100",
		"asset_id":         assetID,
		"type":             KindWashroomBuilding,
		"accessible":       "Entrance at Grade, Accessible Stall",
		"hours":            "9 a.m. to 10 p.m.",
		"location_details": "Near the playground",
		"AssetName":        "Park Washroom",
		"Reason":           nil,
		"Comments":         nil,
		"Status":           "1",
		"PostedDate":       nil,
	}
}

func TestSchemaAcceptsValidCollection(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []geojson.Feature{
		{Properties: validProps(1), Geometry: pointGeometry()},
		{Properties: validProps(2), Geometry: geojson.Geometry{
			Type: "MultiPoint", Points: []geojson.Point{{Long: -79.4, Lat: 43.7}}}},
	}}
	if _, err := Schema().Validate(fc); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestSchemaCollectsViolations(t *testing.T) {
	bad := validProps(1)
	bad["hours"] = "whenever"
	bad["accessible"] = "Accessible Stall, Elevator"
	bad["Status"] = "3"

	dup := validProps(1)

	multi := validProps(2)

	fc := &geojson.FeatureCollection{Features: []geojson.Feature{
		{Properties: bad, Geometry: pointGeometry()},
		{Properties: dup, Geometry: pointGeometry()},
		{Properties: multi, Geometry: geojson.Geometry{
			Type: "MultiPoint", Points: []geojson.Point{{Long: -79.4, Lat: 43.7}, {Long: -79.5, Lat: 43.8}}}},
	}}
	_, err := Schema().Validate(fc)
	if err == nil {
		t.Fatal("expected schema violations")
	}
	errs := err.(*validate.Errors)
	// bad hours enum, bad accessible subset, bad status enum,
	// duplicate asset_id, two-point multi-point
	if len(errs.Violations) != 5 {
		t.Fatalf("expected 5 violations, got %d:\n%s", len(errs.Violations), errs.Error())
	}
}

func TestCheckPointGeometry(t *testing.T) {
	if err := CheckPointGeometry(pointGeometry()); err != nil {
		t.Errorf("point: %s", err)
	}
	single := geojson.Geometry{Type: "MultiPoint", Points: []geojson.Point{{Long: -79.4, Lat: 43.7}}}
	if err := CheckPointGeometry(single); err != nil {
		t.Errorf("single multi-point: %s", err)
	}
	double := geojson.Geometry{Type: "MultiPoint", Points: []geojson.Point{{}, {}}}
	if err := CheckPointGeometry(double); err == nil {
		t.Error("expected error for two-point multi-point")
	}
	if err := CheckPointGeometry(geojson.Geometry{Type: "Polygon"}); err == nil {
		t.Error("expected error for polygon")
	}
}

func TestPrepare(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []geojson.Feature{
		{Properties: map[string]interface{}{"id": 100.0}},
		{Properties: map[string]interface{}{"id": "200"}},
		{Properties: map[string]interface{}{"id": nil}},
		{Properties: map[string]interface{}{"asset_id": 1.0}},
	}}
	Prepare(fc)

	if got := fc.Features[0].Properties["parent_id"]; got != "100" {
		t.Errorf("expected parent_id \"100\", got %v", got)
	}
	if got := fc.Features[1].Properties["parent_id"]; got != "200" {
		t.Errorf("expected parent_id \"200\", got %v", got)
	}
	if got := fc.Features[2].Properties["parent_id"]; got != nil {
		t.Errorf("expected nil parent_id, got %v", got)
	}
	for i := 0; i < 3; i++ {
		if _, ok := fc.Features[i].Properties["id"]; ok {
			t.Errorf("feature %d still has the id property", i)
		}
	}
	if _, ok := fc.Features[3].Properties["parent_id"]; ok {
		t.Error("feature without id gained a parent_id")
	}
}

func TestRecords(t *testing.T) {
	props := validProps(42)
	props["AssetName"] = "Greenwood Park Menâs Washroom"
	props["Reason"] = "Closed for the season"
	props["PostedDate"] = "2024-11-01T08:00:00"
	fc := &geojson.FeatureCollection{Features: []geojson.Feature{
		{Properties: props, Geometry: pointGeometry()},
	}}

	recs := Records(fc)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.AssetID != 42 {
		t.Errorf("unexpected asset id %d", rec.AssetID)
	}
	if rec.ParentID != "100" {
		t.Errorf("unexpected parent id %q", rec.ParentID)
	}
	if rec.Status != StatusOpen {
		t.Errorf("unexpected status %q", rec.Status)
	}
	if !strings.Contains(rec.AssetName, "Men's") {
		t.Errorf("encoding fix not applied: %q", rec.AssetName)
	}
	if rec.PostedDate.IsZero() {
		t.Error("posted date not parsed")
	}
	if rec.Geometry.Type != "Point" {
		t.Errorf("geometry not carried over: %q", rec.Geometry.Type)
	}
}
