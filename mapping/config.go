package mapping

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// An HoursRule maps one free-text hour phrase to an opening_hours
// value. Rules are evaluated in order; the first rule whose phrase
// matches and whose Type is empty or equal to the combined facility
// type wins. An empty OpeningHours leaves the phrase unmapped for that
// facility type. SurveyPrompt, if set, becomes a note fragment.
type HoursRule struct {
	Hours        string `yaml:"hours"`
	Type         string `yaml:"type"`
	OpeningHours string `yaml:"opening_hours"`
	SurveyPrompt string `yaml:"survey_prompt"`
}

// An AccessibleFeature maps one label of the accessible field to the
// prose used in wheelchair:description. List order is description
// order.
type AccessibleFeature struct {
	Label string `yaml:"label"`
	Text  string `yaml:"text"`
}

// Mapping holds the decision tables of the tag derivation rules.
type Mapping struct {
	Operator          string              `yaml:"operator"`
	RefKey            string              `yaml:"ref_key"`
	CustomersAssetIDs []int               `yaml:"customers_asset_ids"`
	HoursRules        []HoursRule         `yaml:"opening_hours"`
	Features          []AccessibleFeature `yaml:"accessible_features"`

	customers map[int]bool
}

// WinterPrompt is the survey question attached to the seasonal park
// hours. The seasonal closed subset answers it and clears it again.
const WinterPrompt = "is this washroom open in the winter? If yes, opening_hours are likely May-Oct Mo-Su 09:00-22:00; Nov-Apr Mo-Su 09:00-20:00"

// The washroom at the Jack Layton Ferry Terminal is behind the fare
// gates and only reachable with a ferry ticket.
const jackLaytonFerryTerminal = 24641

// Default returns the built-in decision tables.
func Default() *Mapping {
	m := &Mapping{
		Operator:          "City of Toronto",
		RefKey:            "ref:open.toronto.ca:washroom-facilities:asset_id",
		CustomersAssetIDs: []int{jackLaytonFerryTerminal},
		HoursRules: []HoursRule{
			{Hours: "9 a.m. to 10 p.m.", Type: "Park",
				OpeningHours: "May-Oct 09:00-22:00", SurveyPrompt: WinterPrompt},
			{Hours: "9 a.m. to 10 p.m.", Type: "Community Centre",
				OpeningHours: "09:00-22:00"},
			// ambiguous: could be the park or the centre schedule
			{Hours: "9 a.m. to 10 p.m.", Type: "Community Centre|Park",
				SurveyPrompt: "opening_hours"},
			// Riverdale Farm:
			{Hours: "9 a.m. to 5 p.m.", OpeningHours: "09:00-17:00"},
			// Coronation Park, 711 Lake Shore Blvd W:
			{Hours: "9 a.m. to 7:30 p.m.", OpeningHours: "09:00-19:30"},
			// Jack Layton Ferry Terminal:
			{Hours: "6:30 a.m. to 11:30 p.m.", OpeningHours: "06:30-23:30"},
		},
		Features: []AccessibleFeature{
			{Label: "Entrance at Grade", Text: "entrance at grade"},
			{Label: "Entrance Access Ramp", Text: "entrance access ramp"},
			{Label: "Automatic Door Opener", Text: "automatic door opener"},
			{Label: "Accessible Stall", Text: "accessible stall"},
			{Label: "Child Change Table", Text: "child change table"},
			{Label: "Adult Change Table", Text: "adult change table"},
		},
	}
	m.prepare()
	return m
}

// New reads decision tables from a YAML mapping file. Missing sections
// fall back to the built-in tables; an empty filename returns the
// defaults.
func New(filename string) (*Mapping, error) {
	if filename == "" {
		return Default(), nil
	}
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading mapping file")
	}
	m := &Mapping{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, "parsing mapping file %s", filename)
	}

	defaults := Default()
	if m.Operator == "" {
		m.Operator = defaults.Operator
	}
	if m.RefKey == "" {
		m.RefKey = defaults.RefKey
	}
	if m.CustomersAssetIDs == nil {
		m.CustomersAssetIDs = defaults.CustomersAssetIDs
	}
	if m.HoursRules == nil {
		m.HoursRules = defaults.HoursRules
	}
	if m.Features == nil {
		m.Features = defaults.Features
	}
	m.prepare()
	return m, nil
}

func (m *Mapping) prepare() {
	m.customers = make(map[int]bool, len(m.CustomersAssetIDs))
	for _, id := range m.CustomersAssetIDs {
		m.customers[id] = true
	}
}
