/*
Package validate checks feature tables against declarative schemas.

A Schema lists per-field contracts (type, required, nullable, unique,
enum, custom check). Validation is lazy: every field of every row is
checked and all violations are reported together, so data issues can be
fixed in one pass instead of one abort at a time.
*/
package validate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
)

type Type string

const (
	String    Type = "string"
	Integer   Type = "integer"
	Timestamp Type = "timestamp"
)

// CheckFunc validates a single non-null value. A returned error
// becomes one violation for that row.
type CheckFunc func(value interface{}) error

type Field struct {
	Name     string
	Type     Type
	Required bool
	Nullable bool
	Unique   bool
	Enum     []string
	Check    CheckFunc
}

type Schema struct {
	Fields []Field
	// GeometryCheck runs against each feature geometry when set.
	GeometryCheck func(geom geojson.Geometry) error
}

type Violation struct {
	Field string
	Row   int // -1 for table-level violations
	Msg   string
}

func (v Violation) String() string {
	if v.Row < 0 {
		return fmt.Sprintf("%s: %s", v.Field, v.Msg)
	}
	return fmt.Sprintf("%s row %d: %s", v.Field, v.Row, v.Msg)
}

// Errors aggregates all violations of a single Validate call.
type Errors struct {
	Violations []Violation
}

func (e *Errors) Error() string {
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, fmt.Sprintf("%d schema violations", len(e.Violations)))
	for _, v := range e.Violations {
		lines = append(lines, "\t"+v.String())
	}
	return strings.Join(lines, "\n")
}

func (e *Errors) add(field string, row int, msg string) {
	e.Violations = append(e.Violations, Violation{Field: field, Row: row, Msg: msg})
}

// IsNull reports whether a property value counts as absent. The
// upstream datasets deliver nulls as missing keys or JSON null; an
// empty string is equivalent to absent.
func IsNull(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}

// Validate checks all features against the schema. It returns fc
// unchanged on success, or an *Errors listing every violation found.
func (s Schema) Validate(fc *geojson.FeatureCollection) (*geojson.FeatureCollection, error) {
	errs := &Errors{}

	for _, field := range s.Fields {
		s.checkField(field, fc, errs)
	}
	if s.GeometryCheck != nil {
		for i, f := range fc.Features {
			if err := s.GeometryCheck(f.Geometry); err != nil {
				errs.add("geometry", i, err.Error())
			}
		}
	}

	if len(errs.Violations) > 0 {
		return nil, errs
	}
	return fc, nil
}

func (s Schema) checkField(field Field, fc *geojson.FeatureCollection, errs *Errors) {
	present := false
	for _, f := range fc.Features {
		if _, ok := f.Properties[field.Name]; ok {
			present = true
			break
		}
	}
	if !present {
		if field.Required && len(fc.Features) > 0 {
			errs.add(field.Name, -1, "required field missing")
		}
		return
	}

	seen := map[string]int{}
	for i, f := range fc.Features {
		value, ok := f.Properties[field.Name]
		if !ok || IsNull(value) {
			if field.Required && !field.Nullable {
				errs.add(field.Name, i, "null in non-nullable field")
			}
			continue
		}

		if msg := checkType(field.Type, value); msg != "" {
			errs.add(field.Name, i, msg)
			continue
		}

		if field.Unique {
			key := fmt.Sprintf("%v", value)
			if prev, dup := seen[key]; dup {
				errs.add(field.Name, i, fmt.Sprintf("duplicate value %q (first in row %d)", key, prev))
			} else {
				seen[key] = i
			}
		}

		if len(field.Enum) > 0 {
			if !contains(field.Enum, fmt.Sprintf("%v", value)) {
				errs.add(field.Name, i, fmt.Sprintf("value %q not in %v", value, field.Enum))
			}
		}

		if field.Check != nil {
			if err := field.Check(value); err != nil {
				errs.add(field.Name, i, err.Error())
			}
		}
	}
}

func checkType(t Type, value interface{}) string {
	switch t {
	case "", String:
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("expected string, got %T", value)
		}
	case Integer:
		// JSON numbers decode as float64
		f, ok := value.(float64)
		if !ok {
			return fmt.Sprintf("expected integer, got %T", value)
		}
		if f != float64(int64(f)) {
			return fmt.Sprintf("expected integer, got %v", f)
		}
	case Timestamp:
		str, ok := value.(string)
		if !ok {
			return fmt.Sprintf("expected timestamp string, got %T", value)
		}
		if _, err := ParseTimestamp(str); err != nil {
			return fmt.Sprintf("invalid timestamp %q", str)
		}
	}
	return ""
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func ParseTimestamp(value string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		t, err = time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// SubsetCheck returns a CheckFunc that splits a composite string on
// sep and requires every part to be in vocabulary. An empty string
// never reaches the check (it counts as null).
func SubsetCheck(sep string, vocabulary []string) CheckFunc {
	return func(value interface{}) error {
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		unknown := []string{}
		for _, part := range strings.Split(str, sep) {
			if !contains(vocabulary, part) {
				unknown = append(unknown, part)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return fmt.Errorf("unknown values %v", unknown)
		}
		return nil
	}
}
