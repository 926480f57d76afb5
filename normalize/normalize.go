/*
Package normalize runs the status branch pipelines that turn validated
washroom records into normalized point features.

The open branch produces the import set. The closed and alert branches
keep their closure metadata under a delete-before-import prefix so a
reviewer can never import it as live tags by accident. A winter subset
of the closed branch reinterprets the seasonal park hours.
*/
package normalize

import (
	"fmt"
	"strings"

	osm "github.com/omniscale/go-osm"

	"github.com/tallcoleman/toronto-osm-washroom-import/facility"
	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
	"github.com/tallcoleman/toronto-osm-washroom-import/mapping"
	"github.com/tallcoleman/toronto-osm-washroom-import/validate"
	"github.com/tallcoleman/toronto-osm-washroom-import/washroom"
)

// ReviewPrefix marks tags a human must delete before import.
const ReviewPrefix = "delete_before_import:"

const seasonalClosure = "closed for the season"

// A Feature is one normalized washroom point. It is never mutated
// after creation; the seasonal pipeline builds new features.
type Feature struct {
	AssetID int
	Status  washroom.Status
	Tags    osm.Tags
	Point   geojson.Point
}

// Open derives the import set: open washroom buildings with the full
// tag set. An open record carrying closure metadata is a fatal schema
// violation; all violations are collected before failing.
func Open(recs []washroom.Record, types facility.TypeIndex, m *mapping.Mapping) ([]Feature, error) {
	errs := &validate.Errors{}
	features := []Feature{}

	for i, rec := range recs {
		if rec.Kind != washroom.KindWashroomBuilding || rec.Status != washroom.StatusOpen {
			continue
		}
		if rec.Reason != "" {
			errs.Violations = append(errs.Violations, validate.Violation{
				Field: "Reason", Row: i, Msg: "open record carries a closure reason"})
		}
		if rec.Comments != "" {
			errs.Violations = append(errs.Violations, validate.Violation{
				Field: "Comments", Row: i, Msg: "open record carries closure comments"})
		}

		feature, err := derived(rec, types, m, nil)
		if err != nil {
			errs.Violations = append(errs.Violations, validate.Violation{
				Field: "tags", Row: i, Msg: err.Error()})
			continue
		}
		features = append(features, feature)
	}

	if len(errs.Violations) > 0 {
		return nil, errs
	}
	return features, nil
}

// ToReview derives the non-open branches. The closure reason and
// comments survive under the ReviewPrefix instead of being dropped.
func ToReview(recs []washroom.Record, types facility.TypeIndex, m *mapping.Mapping, status washroom.Status) ([]Feature, error) {
	errs := &validate.Errors{}
	features := []Feature{}

	for i, rec := range recs {
		if rec.Kind != washroom.KindWashroomBuilding || rec.Status != status {
			continue
		}
		review := osm.Tags{}
		if rec.Reason != "" {
			review[ReviewPrefix+"reason"] = rec.Reason
		}
		if rec.Comments != "" {
			review[ReviewPrefix+"comments"] = rec.Comments
		}

		feature, err := derived(rec, types, m, review)
		if err != nil {
			errs.Violations = append(errs.Violations, validate.Violation{
				Field: "tags", Row: i, Msg: err.Error()})
			continue
		}
		features = append(features, feature)
	}

	if len(errs.Violations) > 0 {
		return nil, errs
	}
	return features, nil
}

func derived(rec washroom.Record, types facility.TypeIndex, m *mapping.Mapping, extra osm.Tags) (Feature, error) {
	tags := m.Derive(rec, types[rec.ParentID])
	for k, v := range extra {
		tags[k] = v
	}
	if err := mapping.CheckTagLengths(tags); err != nil {
		return Feature{}, err
	}
	point, err := ExplodePoint(rec.Geometry)
	if err != nil {
		return Feature{}, err
	}
	return Feature{
		AssetID: rec.AssetID,
		Status:  rec.Status,
		Tags:    tags,
		Point:   point,
	}, nil
}

// Seasonal selects closed features whose closure reason names the
// seasonal closure and answers the winter survey question: the park
// opening hours gain an explicit Nov-Apr off rule and the winter
// survey note is cleared. Notes asking other questions stay, the
// closure does not answer them.
func Seasonal(features []Feature) []Feature {
	seasonal := []Feature{}
	for _, f := range features {
		reason := f.Tags[ReviewPrefix+"reason"]
		if !strings.Contains(strings.ToLower(reason), seasonalClosure) {
			continue
		}
		tags := osm.Tags{}
		for k, v := range f.Tags {
			tags[k] = v
		}
		if hours, ok := tags["opening_hours"]; ok {
			tags["opening_hours"] = strings.Replace(hours,
				"May-Oct 09:00-22:00", "May-Oct 09:00-22:00; Nov-Apr off", -1)
		}
		if strings.Contains(tags["note"], mapping.WinterPrompt) {
			delete(tags, "note")
		}
		seasonal = append(seasonal, Feature{
			AssetID: f.AssetID,
			Status:  f.Status,
			Tags:    tags,
			Point:   f.Point,
		})
	}
	return seasonal
}

// ExplodePoint unwraps the one-element multi-point collections the
// source uses for single points. The validator guarantees the length;
// anything else here is a programming error.
func ExplodePoint(geom geojson.Geometry) (geojson.Point, error) {
	switch geom.Type {
	case "Point":
		return *geom.Point, nil
	case "MultiPoint":
		if len(geom.Points) == 1 {
			return geom.Points[0], nil
		}
		return geojson.Point{}, fmt.Errorf("multi-point with %d coordinates", len(geom.Points))
	}
	return geojson.Point{}, fmt.Errorf("cannot explode geometry type %q", geom.Type)
}
