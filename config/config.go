package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
)

// A DatasetRef names one resource of an open data dataset.
type DatasetRef struct {
	Dataset  string `json:"dataset"`
	Resource string `json:"resource"`
}

type Config struct {
	CacheDir    string     `json:"cachedir"`
	OutputDir   string     `json:"outputdir"`
	MappingFile string     `json:"mapping"`
	OpendataURL string     `json:"opendata_url"`
	OverpassURL string     `json:"overpass_url"`
	Washrooms   DatasetRef `json:"washrooms"`
	Facilities  DatasetRef `json:"facilities"`
	Wards       DatasetRef `json:"wards"`
	Councils    DatasetRef `json:"community_councils"`
}

const defaultCacheDir = "/tmp/washimport"
const defaultOutputDir = "."

var defaultWashrooms = DatasetRef{
	Dataset:  "washroom-facilities",
	Resource: "6d848f38-45a3-41e8-9783-804385ec5a16",
}
var defaultFacilities = DatasetRef{
	Dataset:  "parks-and-recreation-facilities",
	Resource: "f6cdcd50-da7b-4ede-8e60-c3cdba70b559",
}
var defaultWards = DatasetRef{
	Dataset:  "city-wards",
	Resource: "737b29e0-8329-4260-b6af-21555ab24f28",
}
var defaultCouncils = DatasetRef{
	Dataset:  "community-council-boundaries",
	Resource: "25422de1-b7a3-4029-a6a6-91c2f5767a39",
}

var GenerateFlags = flag.NewFlagSet("generate", flag.ExitOnError)
var DiffFlags = flag.NewFlagSet("diff", flag.ExitOnError)

type _BaseOptions struct {
	CacheDir    string
	OutputDir   string
	MappingFile string
	OpendataURL string
	OverpassURL string
	ConfigFile  string
	Washrooms   DatasetRef
	Facilities  DatasetRef
	Wards       DatasetRef
	Councils    DatasetRef
	NoCache     bool
	SkipOSM     bool
	Quiet       bool
}

var BaseOptions = _BaseOptions{}

func (o *_BaseOptions) updateFromConfig() error {
	conf := &Config{
		CacheDir:   defaultCacheDir,
		OutputDir:  defaultOutputDir,
		Washrooms:  defaultWashrooms,
		Facilities: defaultFacilities,
		Wards:      defaultWards,
		Councils:   defaultCouncils,
	}

	if o.ConfigFile != "" {
		f, err := os.Open(o.ConfigFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&conf); err != nil {
			return err
		}
	}

	if o.CacheDir == defaultCacheDir && conf.CacheDir != "" {
		o.CacheDir = conf.CacheDir
	}
	if o.OutputDir == defaultOutputDir && conf.OutputDir != "" {
		o.OutputDir = conf.OutputDir
	}
	if o.MappingFile == "" {
		o.MappingFile = conf.MappingFile
	}
	if o.OpendataURL == "" {
		o.OpendataURL = conf.OpendataURL
	}
	if o.OverpassURL == "" {
		o.OverpassURL = conf.OverpassURL
	}
	o.Washrooms = conf.Washrooms
	o.Facilities = conf.Facilities
	o.Wards = conf.Wards
	o.Councils = conf.Councils
	return nil
}

func (o *_BaseOptions) check() []error {
	errs := []error{}
	if o.Washrooms.Dataset == "" || o.Washrooms.Resource == "" {
		errs = append(errs, errors.New("missing washrooms dataset/resource"))
	}
	if o.Facilities.Dataset == "" || o.Facilities.Resource == "" {
		errs = append(errs, errors.New("missing facilities dataset/resource"))
	}
	if o.Wards.Dataset == "" || o.Wards.Resource == "" {
		errs = append(errs, errors.New("missing wards dataset/resource"))
	}
	if o.Councils.Dataset == "" || o.Councils.Resource == "" {
		errs = append(errs, errors.New("missing community councils dataset/resource"))
	}
	return errs
}

func addBaseFlags(flags *flag.FlagSet) {
	flags.StringVar(&BaseOptions.CacheDir, "cachedir", defaultCacheDir, "payload cache directory")
	flags.StringVar(&BaseOptions.OutputDir, "outputdir", defaultOutputDir, "output directory")
	flags.StringVar(&BaseOptions.MappingFile, "mapping", "", "mapping file (yaml)")
	flags.StringVar(&BaseOptions.OpendataURL, "opendataurl", "", "open data portal base url")
	flags.StringVar(&BaseOptions.OverpassURL, "overpassurl", "", "overpass api url")
	flags.StringVar(&BaseOptions.ConfigFile, "config", "", "config (json)")
	flags.BoolVar(&BaseOptions.NoCache, "nocache", false, "always refetch upstream data")
	flags.BoolVar(&BaseOptions.SkipOSM, "skiposm", false, "skip the snapshot of currently mapped washrooms")
	flags.BoolVar(&BaseOptions.Quiet, "quiet", false, "quiet log output")
}

func UsageGenerate() {
	fmt.Fprintf(os.Stderr, "Usage: %s %s [args]\n\n", os.Args[0], os.Args[1])
	GenerateFlags.PrintDefaults()
	os.Exit(2)
}

func UsageDiff() {
	fmt.Fprintf(os.Stderr, "Usage: %s %s [args] earlier.geojson later.geojson\n\n", os.Args[0], os.Args[1])
	DiffFlags.PrintDefaults()
	os.Exit(2)
}

func init() {
	GenerateFlags.Usage = UsageGenerate
	DiffFlags.Usage = UsageDiff

	addBaseFlags(GenerateFlags)
}

func ParseGenerate(args []string) {
	if err := GenerateFlags.Parse(args); err != nil {
		log.Fatal(err)
	}
	if err := BaseOptions.updateFromConfig(); err != nil {
		log.Fatal(err)
	}
	errs := BaseOptions.check()
	if len(errs) != 0 {
		reportErrors(errs)
		UsageGenerate()
	}
}

// ParseDiff returns the two files to compare.
func ParseDiff(args []string) (string, string) {
	if err := DiffFlags.Parse(args); err != nil {
		log.Fatal(err)
	}
	rest := DiffFlags.Args()
	if len(rest) != 2 {
		UsageDiff()
	}
	return rest[0], rest[1]
}

func reportErrors(errs []error) {
	fmt.Println("errors in config/options:")
	for _, err := range errs {
		fmt.Printf("\t%s\n", err)
	}
	os.Exit(1)
}
