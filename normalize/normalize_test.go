package normalize

import (
	"strings"
	"testing"

	"github.com/tallcoleman/toronto-osm-washroom-import/facility"
	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
	"github.com/tallcoleman/toronto-osm-washroom-import/mapping"
	"github.com/tallcoleman/toronto-osm-washroom-import/validate"
	"github.com/tallcoleman/toronto-osm-washroom-import/washroom"
)

func record(assetID int, status washroom.Status) washroom.Record {
	return washroom.Record{
		AssetID:   assetID,
		ParentID:  "100",
		Kind:      washroom.KindWashroomBuilding,
		Status:    status,
		Hours:     "9 a.m. to 10 p.m.",
		AssetName: "Park Washroom",
		Geometry:  geojson.Geometry{Type: "Point", Point: &geojson.Point{Long: -79.4, Lat: 43.7}},
	}
}

func parkIndex() facility.TypeIndex {
	return facility.TypeIndex{"100": "Park"}
}

func TestOpen(t *testing.T) {
	portable := record(3, washroom.StatusOpen)
	portable.Kind = washroom.KindPortableToilet
	recs := []washroom.Record{
		record(1, washroom.StatusOpen),
		record(2, washroom.StatusClosed),
		portable,
	}
	features, err := Open(recs, parkIndex(), mapping.Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(features))
	}
	f := features[0]
	if f.AssetID != 1 || f.Status != washroom.StatusOpen {
		t.Errorf("unexpected feature %+v", f)
	}
	if f.Tags["amenity"] != "toilets" {
		t.Errorf("amenity = %q", f.Tags["amenity"])
	}
	if f.Tags["opening_hours"] != "May-Oct 09:00-22:00" {
		t.Errorf("opening_hours = %q", f.Tags["opening_hours"])
	}
	if f.Point.Lat != 43.7 || f.Point.Long != -79.4 {
		t.Errorf("unexpected point %+v", f.Point)
	}
}

func TestOpenRejectsClosureMetadata(t *testing.T) {
	stale := record(1, washroom.StatusOpen)
	stale.Reason = "Closed for maintenance"
	stale.Comments = "Reopens in June"
	recs := []washroom.Record{stale, record(2, washroom.StatusOpen)}

	_, err := Open(recs, parkIndex(), mapping.Default())
	if err == nil {
		t.Fatal("expected error for open record with closure metadata")
	}
	errs, ok := err.(*validate.Errors)
	if !ok {
		t.Fatalf("expected *validate.Errors, got %T", err)
	}
	if len(errs.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d:\n%s", len(errs.Violations), errs.Error())
	}
}

func TestToReview(t *testing.T) {
	closed := record(1, washroom.StatusClosed)
	closed.Reason = "Closed for the season"
	closed.Comments = "Reopens in May"
	recs := []washroom.Record{
		closed,
		record(2, washroom.StatusOpen),
		record(3, washroom.StatusAlert),
	}

	features, err := ToReview(recs, parkIndex(), mapping.Default(), washroom.StatusClosed)
	if err != nil {
		t.Fatal(err)
	}
	if len(features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(features))
	}
	tags := features[0].Tags
	if tags[ReviewPrefix+"reason"] != "Closed for the season" {
		t.Errorf("review reason = %q", tags[ReviewPrefix+"reason"])
	}
	if tags[ReviewPrefix+"comments"] != "Reopens in May" {
		t.Errorf("review comments = %q", tags[ReviewPrefix+"comments"])
	}
	if _, ok := tags["reason"]; ok {
		t.Error("closure reason leaked into an importable tag")
	}
}

func TestSeasonal(t *testing.T) {
	m := mapping.Default()
	seasonal := record(1, washroom.StatusClosed)
	seasonal.Reason = "Washroom Closed for the Season"
	maintenance := record(2, washroom.StatusClosed)
	maintenance.Reason = "Closed for maintenance"

	closed, err := ToReview([]washroom.Record{seasonal, maintenance}, parkIndex(), m, washroom.StatusClosed)
	if err != nil {
		t.Fatal(err)
	}
	winter := Seasonal(closed)
	if len(winter) != 1 {
		t.Fatalf("expected 1 seasonal feature, got %d", len(winter))
	}
	tags := winter[0].Tags
	if tags["opening_hours"] != "May-Oct 09:00-22:00; Nov-Apr off" {
		t.Errorf("opening_hours = %q", tags["opening_hours"])
	}
	if _, ok := tags["note"]; ok {
		t.Errorf("winter survey note not cleared: %q", tags["note"])
	}

	// the closed branch features stay untouched
	for _, f := range closed {
		if f.AssetID != 1 {
			continue
		}
		if f.Tags["opening_hours"] != "May-Oct 09:00-22:00" {
			t.Errorf("source feature mutated: %q", f.Tags["opening_hours"])
		}
		if _, ok := f.Tags["note"]; !ok {
			t.Error("source feature lost its note")
		}
	}
}

func TestSeasonalKeepsUnansweredNote(t *testing.T) {
	m := mapping.Default()
	rec := record(1, washroom.StatusClosed)
	rec.Reason = "Closed for the season"

	closed, err := ToReview([]washroom.Record{rec}, facility.TypeIndex{"100": "Community Centre|Park"}, m, washroom.StatusClosed)
	if err != nil {
		t.Fatal(err)
	}
	winter := Seasonal(closed)
	if len(winter) != 1 {
		t.Fatalf("expected 1 seasonal feature, got %d", len(winter))
	}
	// the ambiguous facility type still needs its hours surveyed
	if winter[0].Tags["note"] != "Please survey to determine: opening_hours" {
		t.Errorf("note = %q", winter[0].Tags["note"])
	}
}

func TestExplodePoint(t *testing.T) {
	pt := geojson.Point{Long: -79.4, Lat: 43.7}
	got, err := ExplodePoint(geojson.Geometry{Type: "Point", Point: &pt})
	if err != nil || got != pt {
		t.Errorf("point: %v, %s", got, err)
	}
	got, err = ExplodePoint(geojson.Geometry{Type: "MultiPoint", Points: []geojson.Point{pt}})
	if err != nil || got != pt {
		t.Errorf("multi-point: %v, %s", got, err)
	}
	if _, err := ExplodePoint(geojson.Geometry{Type: "MultiPoint", Points: []geojson.Point{pt, pt}}); err == nil {
		t.Error("expected error for two-point multi-point")
	}
	if _, err := ExplodePoint(geojson.Geometry{Type: "Polygon"}); err == nil {
		t.Error("expected error for polygon")
	}
}

func TestOpenReportsOversizedTags(t *testing.T) {
	rec := record(1, washroom.StatusOpen)
	rec.LocationDetails = strings.Repeat("x", mapping.MaxTagLength+1)
	_, err := Open([]washroom.Record{rec}, parkIndex(), mapping.Default())
	if err == nil {
		t.Fatal("expected error for oversized description")
	}
	if !strings.Contains(err.Error(), "description") {
		t.Errorf("expected the offending key in the error, got %s", err)
	}
}
