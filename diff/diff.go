/*
Package diff compares two normalized GeoJSON exports, keyed by the
dataset asset reference, and reports changed, added and removed
records.
*/
package diff

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
)

// DefaultRefKey matches the ref tag the generator emits.
const DefaultRefKey = "ref:open.toronto.ca:washroom-facilities:asset_id"

type Change struct {
	Ref    string
	Key    string
	Before string
	After  string
}

type Result struct {
	Changed []Change
	Added   []string
	Removed []string
}

func index(fc *geojson.FeatureCollection, refKey string) map[string]map[string]interface{} {
	byRef := map[string]map[string]interface{}{}
	for _, f := range fc.Features {
		ref, _ := f.Properties[refKey].(string)
		if ref == "" {
			continue
		}
		byRef[ref] = f.Properties
	}
	return byRef
}

func propString(props map[string]interface{}, key string) (string, bool) {
	value, ok := props[key]
	if !ok || value == nil {
		return "", false
	}
	return fmt.Sprintf("%v", value), true
}

// Compare diffs the later collection against the earlier one.
func Compare(earlier, later *geojson.FeatureCollection, refKey string) *Result {
	a := index(earlier, refKey)
	b := index(later, refKey)
	result := &Result{}

	refs := []string{}
	for ref := range a {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		propsB, ok := b[ref]
		if !ok {
			result.Removed = append(result.Removed, ref)
			continue
		}
		propsA := a[ref]

		keys := map[string]bool{}
		for k := range propsA {
			keys[k] = true
		}
		for k := range propsB {
			keys[k] = true
		}
		sorted := []string{}
		for k := range keys {
			if k == refKey {
				continue
			}
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)

		for _, key := range sorted {
			before, okA := propString(propsA, key)
			after, okB := propString(propsB, key)
			if okA == okB && before == after {
				continue
			}
			result.Changed = append(result.Changed, Change{
				Ref: ref, Key: key, Before: before, After: after})
		}
	}

	added := []string{}
	for ref := range b {
		if _, ok := a[ref]; !ok {
			added = append(added, ref)
		}
	}
	sort.Strings(added)
	result.Added = added

	return result
}

// Format renders the comparison report.
func (r *Result) Format() string {
	lines := []string{"", "===CHANGED VALUES==="}
	for _, c := range r.Changed {
		lines = append(lines, fmt.Sprintf("asset_id %s: %s: %q -> %q", c.Ref, c.Key, c.Before, c.After))
	}
	lines = append(lines, "", "===REMOVED VALUES===")
	lines = append(lines, strings.Join(r.Removed, ", "))
	lines = append(lines, "", "===ADDED VALUES===")
	lines = append(lines, strings.Join(r.Added, ", "))
	return strings.Join(lines, "\n") + "\n"
}

func readCollection(filename string) (*geojson.FeatureCollection, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	defer f.Close()
	return geojson.Decode(f)
}

// Run compares two export files and prints the report.
func Run(earlierFile, laterFile string) error {
	earlier, err := readCollection(earlierFile)
	if err != nil {
		return err
	}
	later, err := readCollection(laterFile)
	if err != nil {
		return err
	}
	fmt.Print(Compare(earlier, later, DefaultRefKey).Format())
	return nil
}
