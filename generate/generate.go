/*
Package generate runs the full import generation pipeline: fetch,
validate, normalize, partition, and write the reviewable artifacts.
*/
package generate

import (
	"github.com/tallcoleman/toronto-osm-washroom-import/cache"
	"github.com/tallcoleman/toronto-osm-washroom-import/changeset"
	"github.com/tallcoleman/toronto-osm-washroom-import/config"
	"github.com/tallcoleman/toronto-osm-washroom-import/facility"
	"github.com/tallcoleman/toronto-osm-washroom-import/logging"
	"github.com/tallcoleman/toronto-osm-washroom-import/mapping"
	"github.com/tallcoleman/toronto-osm-washroom-import/normalize"
	"github.com/tallcoleman/toronto-osm-washroom-import/opendata"
	"github.com/tallcoleman/toronto-osm-washroom-import/overpass"
	"github.com/tallcoleman/toronto-osm-washroom-import/partition"
	"github.com/tallcoleman/toronto-osm-washroom-import/stats"
	"github.com/tallcoleman/toronto-osm-washroom-import/washroom"
	"github.com/tallcoleman/toronto-osm-washroom-import/writer"
)

var log = logging.NewLogger("")

const (
	sourceName = "City of Toronto Park Washroom Facilities"
	sourceURL  = "https://open.toronto.ca/dataset/washroom-facilities/"
	wikiURL    = "https://wiki.openstreetmap.org/wiki/Import/Toronto_Park_Washroom_Facilities"
	license    = "Open Government Licence – Toronto"
)

// Run executes one batch run with the parsed generate options. Any
// schema violation aborts before a single to_import/ file is written.
func Run() {
	opts := config.BaseOptions
	if opts.Quiet {
		logging.SetQuiet(true)
	}

	tagmapping, err := mapping.New(opts.MappingFile)
	if err != nil {
		log.Fatal("mapping file: ", err)
	}

	var payloadCache *cache.Cache
	if !opts.NoCache {
		payloadCache, err = cache.Open(opts.CacheDir)
		if err != nil {
			log.Fatal(err)
		}
		defer payloadCache.Close()
	}
	client := opendata.NewClient(opts.OpendataURL, payloadCache)
	out := writer.New(opts.OutputDir)

	// washroom dataset; "None" stays meaningful in the accessible field
	step := log.StartStep("Fetching and validating washroom facilities")
	washrooms, err := client.Dataset(opts.Washrooms.Dataset, opts.Washrooms.Resource, "accessible")
	if err != nil {
		log.Fatal(err)
	}
	washroom.Prepare(washrooms.Features)
	if _, err := washroom.Schema().Validate(washrooms.Features); err != nil {
		log.Fatal(err)
	}
	recs := washroom.Records(washrooms.Features)
	log.StopStep(step)

	step = log.StartStep("Fetching and validating facility types")
	facilities, err := client.Dataset(opts.Facilities.Dataset, opts.Facilities.Resource)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := washroom.FacilitySchema().Validate(facilities.Features); err != nil {
		log.Fatal(err)
	}
	types := facility.Resolve(facility.Rows(facilities.Features))
	log.StopStep(step)

	step = log.StartStep("Fetching region boundaries")
	wardData, err := client.Dataset(opts.Wards.Dataset, opts.Wards.Resource)
	if err != nil {
		log.Fatal(err)
	}
	wards, err := partition.Wards(wardData.Features)
	if err != nil {
		log.Fatal(err)
	}
	councilData, err := client.Dataset(opts.Councils.Dataset, opts.Councils.Resource)
	if err != nil {
		log.Fatal(err)
	}
	councils, err := partition.Councils(councilData.Features)
	if err != nil {
		log.Fatal(err)
	}
	log.StopStep(step)

	step = log.StartStep("Normalizing")
	open, err := normalize.Open(recs, types, tagmapping)
	if err != nil {
		log.Fatal(err)
	}
	closed, err := normalize.ToReview(recs, types, tagmapping, washroom.StatusClosed)
	if err != nil {
		log.Fatal(err)
	}
	alerts, err := normalize.ToReview(recs, types, tagmapping, washroom.StatusAlert)
	if err != nil {
		log.Fatal(err)
	}
	seasonal := normalize.Seasonal(closed)
	log.StopStep(step)

	step = log.StartStep("Partitioning")
	src := changeset.Source{
		Name:    sourceName,
		URL:     sourceURL,
		Date:    changeset.TruncateDate(washrooms.Metadata.LastModified),
		Wiki:    wikiURL,
		License: license,
	}
	wardGroups, unpartitioned := partition.Group(partition.Assign(open, wards))
	wardChangesets := changeset.Build(wardGroups, src)
	councilGroups, seasonalUnpartitioned := partition.Group(partition.Assign(seasonal, councils))
	councilChangesets := changeset.Build(councilGroups, src)
	if len(seasonalUnpartitioned) > 0 {
		log.Warnf("%d seasonal washrooms outside all community councils", len(seasonalUnpartitioned))
	}
	log.StopStep(step)

	step = log.StartStep("Writing artifacts")
	if err := out.SourceData("pfr_washrooms", washrooms.Features, washrooms.Metadata.Raw); err != nil {
		log.Fatal(err)
	}
	if err := out.SourceData("pfr_facilities", facilities.Features, facilities.Metadata.Raw); err != nil {
		log.Fatal(err)
	}
	if err := out.ImportSet("pfr_to_import.geojson", open); err != nil {
		log.Fatal(err)
	}
	if err := out.Changesets("by_ward", wardChangesets); err != nil {
		log.Fatal(err)
	}
	if err := out.Changesets("seasonal_by_council", councilChangesets); err != nil {
		log.Fatal(err)
	}
	if err := out.ImportSet("to_review/closed_washrooms.geojson", closed); err != nil {
		log.Fatal(err)
	}
	if err := out.ImportSet("to_review/service_alert_washrooms.geojson", alerts); err != nil {
		log.Fatal(err)
	}
	if len(unpartitioned) > 0 {
		if err := out.ImportSet("to_review/unpartitioned_washrooms.geojson", unpartitioned); err != nil {
			log.Fatal(err)
		}
	}
	log.StopStep(step)

	if !opts.SkipOSM {
		snapshotCurrent(out, opts.OverpassURL)
	}

	summary := stats.Summary{
		InputRows:      len(recs),
		NormalizedRows: len(open),
		StatusCounts:   stats.CountStatus(recs),
		SeasonalRows:   len(seasonal),
		Unpartitioned:  len(unpartitioned),
	}
	for _, c := range wardChangesets {
		summary.Changesets = append(summary.Changesets, stats.ChangesetSize{Name: c.Name, Size: len(c.Features)})
	}
	text := summary.Format()
	if err := out.Summary(text); err != nil {
		log.Fatal(err)
	}
	log.Print(text)
}

// snapshotCurrent saves the washrooms already mapped, for reviewer
// context. Failures are warnings: the import set does not depend on
// it.
func snapshotCurrent(out *writer.Writer, overpassURL string) {
	step := log.StartStep("Fetching currently mapped washrooms")
	client := overpass.NewClient(overpassURL)
	current, err := client.Query(overpass.TorontoWashroomsQuery)
	if err != nil {
		log.Warnf("skipping current washrooms snapshot: %s", err)
		return
	}
	if err := out.SourceData("current_washrooms", current, overpass.Metadata()); err != nil {
		log.Warnf("writing current washrooms snapshot: %s", err)
		return
	}
	log.StopStep(step)
}
