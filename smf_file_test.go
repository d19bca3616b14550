package smfreader

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// This SMF file is defined in the midi specification, in the section on SMF
// files.
var specExampleFile = []byte{
	// MThd
	0x4d, 0x54, 0x68, 0x64,
	// Chunk length
	0, 0, 0, 6,
	// Format 1
	0, 1,
	// Four tracks,
	0, 4,
	// 96 ticks per quarter note
	0, 0x60,
	// Track chunk for the time signature/tempo track, starting with the
	// MTrk:
	0x4d, 0x54, 0x72, 0x6b,
	// Chunk length:
	0, 0, 0, 0x14,
	// Time signature, with delta-time
	0, 0xff, 0x58, 4, 4, 2, 0x18, 8,
	// Tempo
	0, 0xff, 0x51, 3, 7, 0xa1, 0x20,
	// End of track
	0x83, 0, 0xff, 0x2f, 0,
	// The first music track, starting with MTrk
	0x4d, 0x54, 0x72, 0x6b,
	// The chunk length
	0, 0, 0, 0x10,
	// Change program for channel 0 to 5.
	0, 0xc0, 5,
	// Note 0x4c on, at time delta, setting running status.
	0x81, 0x40, 0x90, 0x4c, 0x20,
	// Note off, using running status for note on, but velocity=0
	0x81, 0x40, 0x4c, 0,
	// End of track.
	0, 0xff, 0x2f, 0,
	// Track chunk for second music track, starting with MTrk:
	0x4d, 0x54, 0x72, 0x6b,
	// Chunk length
	0, 0, 0, 0xf,
	// Program change for channel 1, to 0x2e
	0, 0xc1, 0x2e,
	// Note 0x43 on
	0x60, 0x91, 0x43, 0x40,
	// Note 0x43 off, using running status.
	0x82, 0x20, 0x43, 0,
	// End of track
	0, 0xff, 0x2f, 0,
	// The third track, starting with MTrk:
	0x4d, 0x54, 0x72, 0x6b,
	// Chunk length
	0, 0, 0, 0x15,
	// Program change for channel 2 to 0x46.
	0, 0xc2, 0x46,
	// Note 0x30 on
	0, 0x92, 0x30, 0x60,
	// Note 0x3c on, using running status
	0, 0x3c, 0x60,
	// Note 0x30 off, using running status
	0x83, 0, 0x30, 0,
	// Note 0x3c off, using running status
	0, 0x3c, 0,
	// End of track
	0, 0xff, 0x2f, 0,
}

func TestParseSMFFile(t *testing.T) {
	r := bytes.NewReader(specExampleFile)
	smfFile, e := ParseSMFFile(r)
	if e != nil {
		t.Logf("Failed parsing SMF file: %s\n", e)
		t.FailNow()
	}
	if (smfFile.Format != 1) || (smfFile.TrackCount != 4) ||
		(smfFile.Division.TicksPerQuarterNote() != 96) {
		t.Logf("Bad file header fields: format %d, %d tracks, %s\n",
			smfFile.Format, smfFile.TrackCount, smfFile.Division)
		t.FailNow()
	}
	if len(smfFile.Tracks) != 4 {
		t.Logf("Expected 4 SMF file tracks, got %d\n", len(smfFile.Tracks))
		t.FailNow()
	}
	if len(smfFile.Warnings) != 0 {
		t.Logf("Got unexpected warnings: %v\n", smfFile.Warnings)
		t.FailNow()
	}
	expectedCounts := []int{3, 4, 4, 6}
	for trackNumber, track := range smfFile.Tracks {
		t.Logf("Track %d, %d events:\n", trackNumber, len(track.Events))
		for i, event := range track.Events {
			t.Logf("  %d. Time-delta %d: %s\n", i+1, event.TimeDelta,
				event.Message)
		}
		if len(track.Events) != expectedCounts[trackNumber] {
			t.Logf("Expected %d events in track %d\n",
				expectedCounts[trackNumber], trackNumber)
			t.FailNow()
		}
		if !track.HasEndOfTrack() {
			t.Logf("Track %d doesn't end with end-of-track\n", trackNumber)
			t.FailNow()
		}
	}
	// Check the running-status note off in the third track.
	event := smfFile.Tracks[3].Events[3]
	noteOff := event.Message.(*ChannelEvent)
	if (event.TimeDelta != 0x180) || !noteOff.IsNoteEnd() ||
		(noteOff.Channel != 2) || (noteOff.Note() != 0x30) {
		t.Logf("Bad running-status note off: delta %d, %s\n",
			event.TimeDelta, noteOff)
		t.FailNow()
	}
	tempo := smfFile.Tracks[0].Events[1].Message.(SetTempoMetaEvent)
	if tempo != 500000 {
		t.Logf("Bad tempo: %s\n", tempo)
		t.FailNow()
	}
}

func TestParseSMFDataEndToEnd(t *testing.T) {
	data := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6,
		// Format 0, 1 track, 480 ticks per quarter note
		0, 0, 0, 1, 0x01, 0xe0,
		'M', 'T', 'r', 'k', 0, 0, 0, 13,
		// Note on, channel 0, note 60, velocity 100
		0, 0x90, 60, 100,
		// 480 ticks later, note off
		0x83, 0x60, 0x80, 60, 0,
		// End of track
		0, 0xff, 0x2f, 0,
	}
	smfFile, e := ParseSMFData(data)
	if e != nil {
		t.Logf("Failed parsing SMF data: %s\n", e)
		t.FailNow()
	}
	if (smfFile.Format != 0) || (len(smfFile.Tracks) != 1) {
		t.Logf("Expected 1 format-0 track, got format %d, %d tracks\n",
			smfFile.Format, len(smfFile.Tracks))
		t.FailNow()
	}
	events := smfFile.Tracks[0].Events
	if len(events) != 3 {
		t.Logf("Expected 3 events, got %d\n", len(events))
		t.FailNow()
	}
	deltas := []uint32{0, 480, 0}
	for i := range deltas {
		if events[i].TimeDelta != deltas[i] {
			t.Logf("Event %d has delta %d, expected %d\n", i,
				events[i].TimeDelta, deltas[i])
			t.FailNow()
		}
	}
	on, ok := events[0].Message.(*ChannelEvent)
	if !ok || (on.Type != NoteOn) || (on.Channel != 0) || (on.Data1 != 60) ||
		(on.Data2 != 100) {
		t.Logf("Bad first event: %s\n", events[0].Message)
		t.FailNow()
	}
	off, ok := events[1].Message.(*ChannelEvent)
	if !ok || (off.Type != NoteOff) || (off.Data1 != 60) || (off.Data2 != 0) {
		t.Logf("Bad second event: %s\n", events[1].Message)
		t.FailNow()
	}
	if events[2].Message.Kind() != EndOfTrackEventKind {
		t.Logf("Bad third event: %s\n", events[2].Message)
		t.FailNow()
	}
	// The document must not alias the input.
	data[24] = 0x7f
	if on.Data1 != 60 {
		t.Logf("Decoded event changed along with the input\n")
		t.FailNow()
	}
}

func TestParseSMFDataErrors(t *testing.T) {
	header := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 2, 0, 0x60}
	track := []byte{'M', 'T', 'r', 'k', 0, 0, 0, 4, 0, 0xff, 0x2f, 0}
	oneTrack := append(append([]byte{}, header...), track...)
	// A track chunk claiming 100 bytes, with only 50 present.
	longTrack := append(append([]byte{}, header...), 'M', 'T', 'r', 'k', 0, 0,
		0, 100)
	longTrack = append(longTrack, make([]byte, 50)...)
	badTrackID := append(append([]byte{}, oneTrack...), 'X', 'T', 'r', 'k', 0,
		0, 0, 0)
	badEvent := append(append([]byte{}, oneTrack...), 'M', 'T', 'r', 'k', 0,
		0, 0, 2, 0, 0xf4)
	tests := []struct {
		name     string
		data     []byte
		expected error
	}{
		{"not an SMF file", []byte("not a midi file at all"), ErrInvalidHeader},
		{"missing second track", oneTrack, ErrTruncatedChunk},
		{"truncated track", longTrack, ErrTruncatedChunk},
		{"bad track ID", badTrackID, ErrInvalidTrackHeader},
		{"bad event", badEvent, ErrUnknownChannelStatus},
	}
	for _, test := range tests {
		smfFile, e := ParseSMFData(test.data)
		if !errors.Is(e, test.expected) {
			t.Logf("%s: expected %v, got %v\n", test.name, test.expected, e)
			t.FailNow()
		}
		if smfFile != nil {
			t.Logf("%s: got a partial result\n", test.name)
			t.FailNow()
		}
		t.Logf("%s: got expected error: %s\n", test.name, e)
	}
}

func TestWarningsAreLogged(t *testing.T) {
	data := append([]byte{}, specExampleFile...)
	// Trailing garbage after the last track.
	data = append(data, 0, 0, 0)
	core, logs := observer.New(zapcore.DebugLevel)
	smfFile, e := ParseSMFData(data, WithLogger(zap.New(core)))
	if e != nil {
		t.Logf("Failed parsing SMF data: %s\n", e)
		t.FailNow()
	}
	if len(smfFile.Warnings) != 1 {
		t.Logf("Expected 1 warning, got %v\n", smfFile.Warnings)
		t.FailNow()
	}
	warnLogs := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warnLogs) != 1 {
		t.Logf("Expected 1 logged warning, got %d\n", len(warnLogs))
		t.FailNow()
	}
	fields := warnLogs[0].ContextMap()
	if fields["track"] != int64(-1) {
		t.Logf("Logged warning has bad track field: %v\n", fields)
		t.FailNow()
	}
	if warnLogs[0].Message != smfFile.Warnings[0].Message {
		t.Logf("Logged %q, recorded %q\n", warnLogs[0].Message,
			smfFile.Warnings[0].Message)
		t.FailNow()
	}
	debugLogs := logs.FilterMessage("Decoded track").All()
	if len(debugLogs) != 4 {
		t.Logf("Expected 4 per-track debug logs, got %d\n", len(debugLogs))
		t.FailNow()
	}
}

func TestReadSMFFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.mid")
	e := os.WriteFile(path, specExampleFile, 0644)
	if e != nil {
		t.Logf("Failed writing test file: %s\n", e)
		t.FailNow()
	}
	smfFile, e := ReadSMFFile(path)
	if e != nil {
		t.Logf("Failed reading %s: %s\n", path, e)
		t.FailNow()
	}
	if len(smfFile.Tracks) != 4 {
		t.Logf("Expected 4 tracks, got %d\n", len(smfFile.Tracks))
		t.FailNow()
	}
	_, e = ReadSMFFile(filepath.Join(dir, "missing.mid"))
	if !errors.Is(e, ErrIoUnavailable) || !errors.Is(e, fs.ErrNotExist) {
		t.Logf("Expected ErrIoUnavailable and fs.ErrNotExist, got %v\n", e)
		t.FailNow()
	}
	t.Logf("Got expected error for a missing file: %s\n", e)
}
