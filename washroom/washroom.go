/*
Package washroom defines the Park Washroom Facilities dataset contract
and its typed records.
*/
package washroom

import (
	"fmt"
	"time"

	"github.com/tallcoleman/toronto-osm-washroom-import/correct"
	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
	"github.com/tallcoleman/toronto-osm-washroom-import/validate"
)

type Status string

const (
	StatusClosed Status = "0"
	StatusOpen   Status = "1"
	StatusAlert  Status = "2"
)

const (
	KindWashroomBuilding = "Washroom Building"
	KindPortableToilet   = "Portable Toilet"
)

// AccessibleVocabulary lists all labels the accessible field may
// contain, joined by ", ". "None" is the no-accessible-features
// sentinel.
var AccessibleVocabulary = []string{
	"None",
	"Entrance at Grade",
	"Accessible Stall",
	"Child Change Table",
	"Entrance Access Ramp",
	"Automatic Door Opener",
	"Adult Change Table",
	// known upstream error; ignored during wheelchair description derivation:
	"9 a.m. to 10 p.m.",
}

// HoursVocabulary lists all free-text hour phrases the city publishes.
// A new phrase is a schema change, not a rule-engine concern.
var HoursVocabulary = []string{
	"9 a.m. to 10 p.m.",
	"View centre hours",
	"View outdoor rink hours",
	"View outdoor pool hours",
	"View facility hours",
	"9 a.m. to 5 p.m.",
	"9 a.m. to 7:30 p.m.",
	"View centre hours.",
	"6:30 a.m. to 11:30 p.m.",
	"View the facility hours",
	"View arena hours",
}

// A Record is one washroom asset row after validation and text
// correction. Absent nullable strings are "".
type Record struct {
	AssetID         int
	ParentID        string
	Kind            string
	Status          Status
	Accessible      string
	Hours           string
	LocationDetails string
	AssetName       string
	Reason          string
	Comments        string
	PostedDate      time.Time
	Geometry        geojson.Geometry
}

// Schema is the validation contract for the washroom dataset.
func Schema() validate.Schema {
	return validate.Schema{
		Fields: []validate.Field{
			{Name: "parent_id", Type: validate.String, Required: true},
			{Name: "asset_id", Type: validate.Integer, Required: true, Unique: true},
			{Name: "type", Type: validate.String, Required: true,
				Enum: []string{KindWashroomBuilding, KindPortableToilet}},
			{Name: "accessible", Type: validate.String, Required: true, Nullable: true,
				Check: validate.SubsetCheck(", ", AccessibleVocabulary)},
			{Name: "hours", Type: validate.String, Required: true, Nullable: true,
				Enum: HoursVocabulary},
			{Name: "location_details", Type: validate.String, Required: true, Nullable: true},
			{Name: "AssetName", Type: validate.String, Required: true},
			{Name: "Reason", Type: validate.String, Required: true, Nullable: true},
			{Name: "Comments", Type: validate.String, Required: true, Nullable: true},
			{Name: "Status", Type: validate.String, Required: true,
				Enum: []string{string(StatusClosed), string(StatusOpen), string(StatusAlert)}},
			{Name: "PostedDate", Type: validate.Timestamp, Nullable: true},
			{Name: "_id", Type: validate.Integer},
			{Name: "location", Type: validate.String, Nullable: true},
			{Name: "alternative_name", Type: validate.String, Nullable: true},
			{Name: "url", Type: validate.String, Nullable: true},
			{Name: "address", Type: validate.String, Nullable: true},
		},
		GeometryCheck: CheckPointGeometry,
	}
}

// CheckPointGeometry requires a point stored as Point or as a
// one-element MultiPoint. More than one coordinate pair in a single
// record is a data error, not a condition to tolerate.
func CheckPointGeometry(geom geojson.Geometry) error {
	switch geom.Type {
	case "Point":
		return nil
	case "MultiPoint":
		if len(geom.Points) != 1 {
			return fmt.Errorf("expected exactly one coordinate pair, got %d", len(geom.Points))
		}
		return nil
	}
	return fmt.Errorf("expected Point or MultiPoint, got %q", geom.Type)
}

// FacilitySchema is the contract for the secondary Parks and
// Recreation Facilities dataset. LOCATIONID repeats across rows; the
// facility package reduces it to a one-to-one index.
func FacilitySchema() validate.Schema {
	return validate.Schema{
		Fields: []validate.Field{
			{Name: "LOCATIONID", Type: validate.String, Required: true},
			{Name: "TYPE", Type: validate.String, Required: true,
				Enum: []string{"Park", "Community Centre"}},
		},
	}
}

// Prepare renames the upstream "id" column to parent_id and coerces
// it to a string, matching the foreign key of the facility index.
func Prepare(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	for _, f := range fc.Features {
		value, ok := f.Properties["id"]
		if !ok {
			continue
		}
		delete(f.Properties, "id")
		if validate.IsNull(value) {
			f.Properties["parent_id"] = nil
			continue
		}
		switch v := value.(type) {
		case float64:
			f.Properties["parent_id"] = fmt.Sprintf("%d", int64(v))
		default:
			f.Properties["parent_id"] = fmt.Sprintf("%v", v)
		}
	}
	return fc
}

func stringProp(props map[string]interface{}, key string) string {
	value, ok := props[key]
	if !ok || validate.IsNull(value) {
		return ""
	}
	s, _ := value.(string)
	return s
}

// Records decodes a validated feature collection into typed records
// and applies the free-text correction tables. Call Schema().Validate
// first; Records trusts its input.
func Records(fc *geojson.FeatureCollection) []Record {
	recs := make([]Record, 0, len(fc.Features))
	for _, f := range fc.Features {
		assetID, _ := f.Properties["asset_id"].(float64)
		rec := Record{
			AssetID:         int(assetID),
			ParentID:        stringProp(f.Properties, "parent_id"),
			Kind:            stringProp(f.Properties, "type"),
			Status:          Status(stringProp(f.Properties, "Status")),
			Accessible:      stringProp(f.Properties, "accessible"),
			Hours:           stringProp(f.Properties, "hours"),
			LocationDetails: correct.Fix(stringProp(f.Properties, "location_details")),
			AssetName:       correct.Fix(stringProp(f.Properties, "AssetName")),
			Reason:          correct.Fix(stringProp(f.Properties, "Reason")),
			Comments:        correct.Fix(stringProp(f.Properties, "Comments")),
			Geometry:        f.Geometry,
		}
		if posted := stringProp(f.Properties, "PostedDate"); posted != "" {
			if t, err := validate.ParseTimestamp(posted); err == nil {
				rec.PostedDate = t
			}
		}
		recs = append(recs, rec)
	}
	return recs
}
