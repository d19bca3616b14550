package smfreader

import (
	"github.com/pkg/errors"
)

// Every error returned by the decoder wraps exactly one of these, so callers
// can tell failure kinds apart using errors.Is.
var (
	// The file couldn't be read. Returned by ReadSMFFile and ParseSMFFile;
	// the underlying I/O error is still reachable through errors.Is.
	ErrIoUnavailable = errors.New("SMF data unavailable")
	// The file doesn't start with an MThd chunk.
	ErrInvalidHeader = errors.New("Invalid SMF header chunk")
	// A track chunk's ID wasn't MTrk.
	ErrInvalidTrackHeader = errors.New("Invalid SMF track chunk")
	// A chunk header or chunk body extends past the end of the file.
	ErrTruncatedChunk = errors.New("Truncated SMF chunk")
	// A variable-length quantity ran out of bytes or was longer than 4 bytes.
	ErrMalformedVarLen = errors.New("Malformed variable-length quantity")
	// A meta-event's declared length runs past the end of its track.
	ErrTruncatedMetaEvent = errors.New("Truncated meta-event")
	// A status byte that isn't a channel, sysex or meta status, or a data
	// byte without a running status to apply it to.
	ErrUnknownChannelStatus = errors.New("Unknown channel status")
	// A channel or sysex event runs past the end of its track.
	ErrTruncatedEvent = errors.New("Truncated event")
	// A channel event's data byte had its high bit set.
	ErrBadDataByte = errors.New("Invalid MIDI data byte")
	// Returned by ByteCursor when a read would go past the end of its buffer.
	ErrOutOfBounds = errors.New("Read out of bounds")
)

// Wraps an error from the I/O collaborator so that it matches both
// ErrIoUnavailable and the original cause.
type ioError struct {
	name  string
	cause error
}

func (e *ioError) Error() string {
	return "Failed reading " + e.name + ": " + e.cause.Error()
}

func (e *ioError) Is(target error) bool {
	return target == ErrIoUnavailable
}

func (e *ioError) Unwrap() error {
	return e.cause
}
