// This package defines a decoder for standard MIDI files (SMF). The smf_tool
// directory contains a command-line interface that prints a decoded file.
package smfreader

// This file contains code used for reading .mid SMF-format files.

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// A single event in a track.
type SMFEvent struct {
	// The number of ticks since the previous event in the same track.
	TimeDelta uint32
	Message   MIDIMessage
}

// This holds the content of a single MIDI track chunk.
type SMFTrack struct {
	// The events in this track, in the order they appear in the file.
	Events []SMFEvent
}

// Returns the absolute time, in ticks since the start of the track, of each
// event in the track.
func (t *SMFTrack) AbsoluteTimes() []uint64 {
	toReturn := make([]uint64, len(t.Events))
	now := uint64(0)
	for i, event := range t.Events {
		now += uint64(event.TimeDelta)
		toReturn[i] = now
	}
	return toReturn
}

// Returns the text of the first track name meta-event in the track, or an
// empty string if there isn't one.
func (t *SMFTrack) Name() string {
	for _, event := range t.Events {
		text, ok := event.Message.(*TextMetaEvent)
		if ok && (text.TextEventType == 0x03) {
			return string(text.Data)
		}
	}
	return ""
}

// Returns true if the track was terminated by an end-of-track meta-event.
func (t *SMFTrack) HasEndOfTrack() bool {
	if len(t.Events) == 0 {
		return false
	}
	return t.Events[len(t.Events)-1].Message.Kind() == EndOfTrackEventKind
}

// A problem that didn't prevent decoding, such as a chunk size that doesn't
// match its contents.
type Warning struct {
	// The index of the track the warning is about, or -1 for the file header.
	Track int
	// The offset of the problem, relative to the start of the track's event
	// data, or to the start of the file for header warnings.
	Offset  int
	Message string
}

func (w Warning) String() string {
	if w.Track < 0 {
		return fmt.Sprintf("Header, offset %d: %s", w.Offset, w.Message)
	}
	return fmt.Sprintf("Track %d, offset %d: %s", w.Track, w.Offset,
		w.Message)
}

// Tracks an entire MIDI file, consisting of one or more tracks and timing
// information.
type SMFFile struct {
	// 0, 1 or 2, as given in the header.
	Format uint16
	// The number of tracks declared in the header. Always equal to
	// len(Tracks).
	TrackCount uint16
	Division   TimeDivision
	Tracks     []*SMFTrack
	// Non-fatal inconsistencies found while decoding, in the order they were
	// found.
	Warnings []Warning
}

// Per-call state shared by the chunk reader and the track decoders.
type decodeContext struct {
	logger   *zap.Logger
	warnings []Warning
}

func (ctx *decodeContext) warn(track, offset int, message string) {
	ctx.warnings = append(ctx.warnings, Warning{
		Track:   track,
		Offset:  offset,
		Message: message,
	})
	ctx.logger.Warn(message, zap.Int("track", track), zap.Int("offset",
		offset))
}

// Decodes an entire SMF file held in memory. Either the whole file decodes or
// an error is returned; no partial result is ever returned. The returned
// SMFFile doesn't reference data.
func ParseSMFData(data []byte, opts ...Option) (*SMFFile, error) {
	options := applyDefaultOptions(opts...)
	ctx := &decodeContext{
		logger: options.logger,
	}
	c := NewByteCursor(data)
	header, e := readHeaderChunk(c, ctx)
	if e != nil {
		return nil, errors.Wrap(e, "Failed parsing SMF header")
	}
	toReturn := &SMFFile{
		Format:     header.Format,
		TrackCount: header.TrackCount,
		Division:   header.Division,
		Tracks:     make([]*SMFTrack, header.TrackCount),
	}
	for i := range toReturn.Tracks {
		trackData, e := readTrackChunk(c)
		if e != nil {
			return nil, errors.Wrapf(e, "Failed reading SMF track %d", i)
		}
		toReturn.Tracks[i], e = decodeTrack(trackData, i, ctx)
		if e != nil {
			return nil, errors.Wrapf(e, "Failed parsing SMF track %d", i)
		}
		ctx.logger.Debug("Decoded track", zap.Int("track", i),
			zap.Int("bytes", len(trackData)),
			zap.Int("events", len(toReturn.Tracks[i].Events)))
	}
	if c.Remaining() != 0 {
		ctx.warn(-1, c.Position(), fmt.Sprintf("Ignoring %d byte(s) after "+
			"the last track", c.Remaining()))
	}
	toReturn.Warnings = ctx.warnings
	return toReturn, nil
}

// Reads all of the given reader, then decodes it as an SMF file. Read errors
// match ErrIoUnavailable.
func ParseSMFFile(file io.Reader, opts ...Option) (*SMFFile, error) {
	data, e := io.ReadAll(file)
	if e != nil {
		return nil, &ioError{
			name:  "SMF data",
			cause: e,
		}
	}
	return ParseSMFData(data, opts...)
}

// Loads and decodes the SMF file at the given path. Errors opening or reading
// the file match ErrIoUnavailable as well as the underlying os error.
func ReadSMFFile(path string, opts ...Option) (*SMFFile, error) {
	data, e := os.ReadFile(path)
	if e != nil {
		return nil, &ioError{
			name:  path,
			cause: e,
		}
	}
	return ParseSMFData(data, opts...)
}
