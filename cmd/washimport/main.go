package main

import (
	"fmt"
	golog "log"
	"os"

	washimport "github.com/tallcoleman/toronto-osm-washroom-import"
	"github.com/tallcoleman/toronto-osm-washroom-import/config"
	"github.com/tallcoleman/toronto-osm-washroom-import/diff"
	"github.com/tallcoleman/toronto-osm-washroom-import/generate"
	"github.com/tallcoleman/toronto-osm-washroom-import/logging"
)

var log = logging.NewLogger("")

func printCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Println("Available commands:")
	fmt.Println("\tgenerate")
	fmt.Println("\tdiff")
	fmt.Println("\tversion")
}

func main() {
	golog.SetFlags(golog.LstdFlags | golog.Lshortfile)

	if len(os.Args) <= 1 {
		printCmds()
		logging.Shutdown()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		config.ParseGenerate(os.Args[2:])
		generate.Run()
	case "diff":
		earlier, later := config.ParseDiff(os.Args[2:])
		if err := diff.Run(earlier, later); err != nil {
			log.Fatal(err)
		}
	case "version":
		fmt.Println(washimport.Version)
		os.Exit(0)
	default:
		printCmds()
		log.Fatalf("invalid command: '%s'", os.Args[1])
	}
	logging.Shutdown()
	os.Exit(0)
}
