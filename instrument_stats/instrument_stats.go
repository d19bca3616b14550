// This defines a command-line utility for gathering information about
// instruments used by MIDI files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/yalue/smfreader"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Keeps track of our accumulated event count for each instrument.
type instrumentStats struct {
	// One value per MIDI program: the number of notes started while that
	// program was selected.
	eventCounts [128]uint64
	// One value per percussion instrument: the number of notes started on
	// channel 10 for each note number.
	percussionEventCounts [128]uint64
}

// Dumps the total counts for each instrument to stdout.
func (s *instrumentStats) printInfo() {
	for i := 0; i < 128; i++ {
		fmt.Printf("Instrument %d: %d events.\n", i, s.eventCounts[i])
	}
	for i := 0; i < 128; i++ {
		fmt.Printf("Percussion instrument %d: %d events.\n", i,
			s.percussionEventCounts[i])
	}
}

// Adds the note events of the given decoded file to the running totals.
func (s *instrumentStats) addFile(smf *smfreader.SMFFile) {
	var channelInstruments [16]uint8
	for _, track := range smf.Tracks {
		// Program changes are assumed not to carry over between tracks.
		channelInstruments = [16]uint8{}
		for _, event := range track.Events {
			m, ok := event.Message.(*smfreader.ChannelEvent)
			if !ok {
				continue
			}
			switch {
			case m.Type == smfreader.ProgramChange:
				channelInstruments[m.Channel] = m.Data1
			case m.IsNoteStart():
				// Percussion = anything in channel 10 (index 9)
				if m.Channel == 9 {
					s.percussionEventCounts[m.Note()]++
				} else {
					s.eventCounts[channelInstruments[m.Channel]]++
				}
			}
		}
	}
}

func run() int {
	var baseDir string
	flag.StringVar(&baseDir, "dir", "", "The directory to scan for .mid files")
	flag.Parse()
	if baseDir == "" {
		fmt.Println("A base directory must be specified. " +
			"Run with -help for usage.")
		return 1
	}
	logger, e := zap.NewProduction()
	if e != nil {
		fmt.Printf("Couldn't create logger: %s\n", e)
		return 1
	}
	defer logger.Sync()
	filenames, e := filepath.Glob(filepath.Join(baseDir, "*.mid"))
	if e != nil {
		fmt.Printf("Failed looking up MIDI files in dir %s: %s\n", baseDir, e)
		return 1
	}
	if len(filenames) <= 0 {
		fmt.Printf("Didn't find any MIDI (.mid) files in dir %s.\n", baseDir)
		return 1
	}
	stats := &instrumentStats{}
	var failures error
	for i, name := range filenames {
		fmt.Printf("Scanning file %d/%d: %s\n", i+1, len(filenames), name)
		smf, e := smfreader.ReadSMFFile(name, smfreader.WithLogger(
			logger.With(zap.String("file", name))))
		if e != nil {
			failures = multierr.Append(failures, errors.Wrap(e, name))
			continue
		}
		stats.addFile(smf)
	}
	stats.printInfo()
	errs := multierr.Errors(failures)
	if len(errs) == 0 {
		return 0
	}
	fmt.Printf("Failed analyzing %d of %d files:\n", len(errs),
		len(filenames))
	for _, e := range errs {
		fmt.Printf("  %s\n", e)
	}
	return 1
}

func main() {
	os.Exit(run())
}
