/*
Package mapping derives OpenStreetMap tag sets from washroom records.

Every derived tag has its own rule; rules are pure functions over the
raw fields and the combined facility type. Unknown but structurally
valid free text (an hour phrase without a rule) degrades to an absent
tag plus a survey note, it is never an error. Schema drift is caught
earlier, by the validate package.
*/
package mapping

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	osm "github.com/omniscale/go-osm"

	"github.com/tallcoleman/toronto-osm-washroom-import/washroom"
)

var maleRe = regexp.MustCompile(`(?i)\bmen's\b|\bmale\b`)
var femaleRe = regexp.MustCompile(`(?i)\bwomen's\b|\bfemale\b`)

// MaxTagLength is the value length limit of the OSM API.
const MaxTagLength = 255

// Derive maps a single record to its tag set. Tags that do not apply
// are absent from the result, never empty.
func (m *Mapping) Derive(rec washroom.Record, combinedType string) osm.Tags {
	tags := osm.Tags{
		"amenity":  "toilets",
		"access":   m.access(rec.AssetID),
		"fee":      "no",
		"operator": m.Operator,
		m.RefKey:   strconv.Itoa(rec.AssetID),
	}

	setIf(tags, "male", male(rec.AssetName))
	setIf(tags, "female", female(rec.AssetName))
	setIf(tags, "changing_table", changingTable(rec.Accessible))
	setIf(tags, "changing_table:adult", changingTableAdult(rec.Accessible))
	setIf(tags, "wheelchair", wheelchair(rec.Accessible))
	setIf(tags, "toilets:wheelchair", toiletsWheelchair(rec.Accessible))
	setIf(tags, "wheelchair:description", m.wheelchairDescription(rec.Accessible))
	setIf(tags, "description", strings.TrimSpace(rec.LocationDetails))

	openingHours, prompt := m.openingHours(rec.Hours, combinedType)
	setIf(tags, "opening_hours", openingHours)
	setIf(tags, "note", note(prompt))

	return tags
}

func setIf(tags osm.Tags, key, value string) {
	if value != "" {
		tags[key] = value
	}
}

func (m *Mapping) access(assetID int) string {
	if m.customers[assetID] {
		return "customers"
	}
	return "yes"
}

func male(assetName string) string {
	if maleRe.MatchString(assetName) {
		return "yes"
	}
	return ""
}

func female(assetName string) string {
	if femaleRe.MatchString(assetName) {
		return "yes"
	}
	return ""
}

func changingTable(accessible string) string {
	if strings.Contains(accessible, "Child Change Table") {
		return "yes"
	}
	return ""
}

func changingTableAdult(accessible string) string {
	if strings.Contains(accessible, "Adult Change Table") {
		return "yes"
	}
	return ""
}

// wheelchair is only "no" for the explicit "None" sentinel. Absence of
// accessibility features in the data is not evidence of absence on the
// ground.
func wheelchair(accessible string) string {
	if accessible == "None" {
		return "no"
	}
	atGrade := strings.Contains(accessible, "Entrance at Grade") ||
		strings.Contains(accessible, "Entrance Access Ramp")
	if atGrade && strings.Contains(accessible, "Accessible Stall") {
		return "yes"
	}
	return ""
}

func toiletsWheelchair(accessible string) string {
	if strings.Contains(accessible, "Accessible Stall") {
		return "yes"
	}
	return ""
}

// wheelchairDescription lists the features behind a wheelchair=yes in
// table order, joined without commas or semicolons so the value stays
// a single plain OSM string.
func (m *Mapping) wheelchairDescription(accessible string) string {
	if wheelchair(accessible) != "yes" {
		return ""
	}
	matched := []string{}
	for _, feature := range m.Features {
		if strings.Contains(accessible, feature.Label) {
			matched = append(matched, feature.Text)
		}
	}
	return "Accessible features: " + strings.Join(matched, " and ")
}

// openingHours resolves the free-text phrase against the ordered rule
// table. It returns the opening_hours value (possibly "") and the
// survey prompt of the matched rule.
func (m *Mapping) openingHours(hours, combinedType string) (string, string) {
	for _, rule := range m.HoursRules {
		if rule.Hours != hours {
			continue
		}
		if rule.Type != "" && rule.Type != combinedType {
			continue
		}
		return rule.OpeningHours, rule.SurveyPrompt
	}
	return "", ""
}

func note(prompts ...string) string {
	fragments := []string{}
	for _, p := range prompts {
		if p != "" {
			fragments = append(fragments, p)
		}
	}
	if len(fragments) == 0 {
		return ""
	}
	return "Please survey to determine: " + strings.Join(fragments, "; ")
}

// CheckTagLengths enforces the 255 character value limit on a derived
// tag set.
func CheckTagLengths(tags osm.Tags) error {
	long := []string{}
	for key, value := range tags {
		if n := utf8.RuneCountInString(value); n > MaxTagLength {
			long = append(long, fmt.Sprintf("%s (%d chars)", key, n))
		}
	}
	if len(long) > 0 {
		sort.Strings(long)
		return fmt.Errorf("tag values over %d characters: %s", MaxTagLength, strings.Join(long, ", "))
	}
	return nil
}
