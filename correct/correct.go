/*
Package correct fixes known text defects in the upstream datasets.

The city feeds contain mojibake from a double-encoded export and a
handful of misspellings in the location descriptions. Both tables are
fixed, ordered lists of literal replacements; they are applied once to
each free-text field before any tag derivation.
*/
package correct

import "strings"

type replacement struct {
	old string
	new string
}

// Encoding artifacts first, spelling second. Order matters: the
// encoding fixes restore the characters the spelling fixes match on.
var encodingFixes = []replacement{
	{"CentreÂ", "Centre"},
	{"cafÃ©", "café"},
	// the export also leaks the escape sequence as literal text
	{`caf\u00c3\u00a9`, "café"},
	{"womenâs", "women's"},
	{"Womenâs", "Women's"},
	{"Menâs", "Men's"},
	{"menâs", "men's"},
}

var spellingFixes = []replacement{
	{"north fo the", "north of the"},
	{"washroom building,west side", "washroom building, west side"},
	{"diamond besdie Corvette", "diamond beside Corvette"},
	{"Located bewteen the", "Located between the"},
	{"the spash pad", "the splash pad"},
	{"the eastside of", "the east side of"},
	{"Scaroborough Village", "Scarborough Village"},
	{"washrooms washrooms. Portable", "washrooms. Portable"},
	{"Wahroom", "Washroom"},
}

// Fix applies all correction tables to a single free-text value.
func Fix(text string) string {
	for _, r := range encodingFixes {
		text = strings.Replace(text, r.old, r.new, -1)
	}
	for _, r := range spellingFixes {
		text = strings.Replace(text, r.old, r.new, -1)
	}
	return text
}
