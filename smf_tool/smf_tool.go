// This defines a command-line utility for viewing the contents of standard
// MIDI files (SMF, usually with a ".mid" extension).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/yalue/smfreader"
	"go.uber.org/zap"
)

func run() int {
	var filename string
	var dumpEvents, verbose bool
	flag.StringVar(&filename, "input_file", "", "The .mid file to open.")
	flag.BoolVar(&dumpEvents, "dump_events", false, "If set, print a list of "+
		"all events in the file to stdout.")
	flag.BoolVar(&verbose, "verbose", false, "If set, log decoder details "+
		"to stderr.")
	flag.Parse()
	if filename == "" {
		fmt.Printf("Invalid arguments. Run with -help for more information.\n")
		return 1
	}
	newLogger := zap.NewProduction
	if verbose {
		newLogger = zap.NewDevelopment
	}
	logger, e := newLogger()
	if e != nil {
		fmt.Printf("Couldn't create logger: %s\n", e)
		return 1
	}
	defer logger.Sync()
	smf, e := smfreader.ReadSMFFile(filename, smfreader.WithLogger(logger))
	if e != nil {
		fmt.Printf("Couldn't parse %s: %s\n", filename, e)
		return 1
	}
	fmt.Printf("Parsed %s OK. Format %d, contains %d tracks. Time division: "+
		"%s.\n", filename, smf.Format, len(smf.Tracks), smf.Division)
	for _, w := range smf.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	if !dumpEvents {
		return 0
	}
	for i, t := range smf.Tracks {
		name := t.Name()
		if name != "" {
			name = fmt.Sprintf(" %q", name)
		}
		fmt.Printf("Track %d%s (%d events):\n", i, name, len(t.Events))
		times := t.AbsoluteTimes()
		for j, event := range t.Events {
			fmt.Printf("  %d. Time %d (+%d): %s\n", j, times[j],
				event.TimeDelta, event.Message)
		}
	}
	return 0
}

func main() {
	os.Exit(run())
}
