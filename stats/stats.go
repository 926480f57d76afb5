// Package stats aggregates run counts into the human-readable summary
// report.
package stats

import (
	"fmt"
	"strings"

	"github.com/tallcoleman/toronto-osm-washroom-import/washroom"
)

type ChangesetSize struct {
	Name string
	Size int
}

// A Summary holds the aggregate counts of one generator run.
type Summary struct {
	InputRows      int
	NormalizedRows int
	StatusCounts   map[washroom.Status]int
	SeasonalRows   int
	Unpartitioned  int
	Changesets     []ChangesetSize
}

// CountStatus tallies records per status code.
func CountStatus(recs []washroom.Record) map[washroom.Status]int {
	counts := map[washroom.Status]int{}
	for _, rec := range recs {
		counts[rec.Status]++
	}
	return counts
}

// Format renders the summary text.
func (s *Summary) Format() string {
	lines := []string{
		"",
		"===== SUMMARY =====",
		"",
		fmt.Sprintf("%d data points in original Park Washroom Facilities dataset", s.InputRows),
		fmt.Sprintf("%d data points in normalized import dataset", s.NormalizedRows),
		fmt.Sprintf("status counts: open=%d closed=%d service alert=%d",
			s.StatusCounts[washroom.StatusOpen],
			s.StatusCounts[washroom.StatusClosed],
			s.StatusCounts[washroom.StatusAlert]),
		fmt.Sprintf("%d washrooms closed for the season", s.SeasonalRows),
		fmt.Sprintf("%d data points outside all regions", s.Unpartitioned),
	}

	if len(s.Changesets) > 0 {
		largest, smallest := s.Changesets[0].Size, s.Changesets[0].Size
		for _, c := range s.Changesets {
			if c.Size > largest {
				largest = c.Size
			}
			if c.Size < smallest {
				smallest = c.Size
			}
		}
		lines = append(lines, fmt.Sprintf(
			"%d changesets generated, largest has %d points, and smallest has %d points",
			len(s.Changesets), largest, smallest))
		width := 0
		for _, c := range s.Changesets {
			if len(c.Name) > width {
				width = len(c.Name)
			}
		}
		for _, c := range s.Changesets {
			lines = append(lines, fmt.Sprintf("%-*s %4d", width, c.Name, c.Size))
		}
	} else {
		lines = append(lines, "no changesets generated")
	}
	return strings.Join(lines, "\n") + "\n"
}
