package smfreader

// This file contains code for reading the MThd and MTrk chunk headers.

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	headerChunkType = "MThd"
	trackChunkType  = "MTrk"
	// The expected size of the MThd chunk's data.
	headerDataSize = 6
)

// This corresponds to the division field of the MThd chunk.
type TimeDivision uint16

// Returns true if the division is SMPTE-based rather than a number of ticks
// per quarter note.
func (d TimeDivision) IsSMPTE() bool {
	return (d & 0x8000) != 0
}

// Returns the number of ticks per quarter note, or 0 if the time division
// doesn't specify a number of ticks per quarter note.
func (d TimeDivision) TicksPerQuarterNote() uint16 {
	if d.IsSMPTE() {
		return 0
	}
	return uint16(d)
}

// Returns the SMPTE frames per second followed by the number of MIDI ticks
// per frame. Returns 0, 0 if the TimeDivision value specifies the number of
// ticks per quarter note instead.
func (d TimeDivision) SMPTETimeCode() (uint8, uint8) {
	if !d.IsSMPTE() {
		return 0, 0
	}
	// The upper byte holds the frame rate as a negative 8-bit integer.
	fps := uint8(-int8(d >> 8))
	ticksPerFrame := uint8(d & 0xff)
	return fps, ticksPerFrame
}

func (d TimeDivision) String() string {
	if (d & 0x7fff) == 0 {
		return fmt.Sprintf("Invalid TimeDivision value: 0x%04x", uint16(d))
	}
	qnTicks := d.TicksPerQuarterNote()
	if qnTicks != 0 {
		return fmt.Sprintf("%d ticks per quarter note", qnTicks)
	}
	fps, ticksPerFrame := d.SMPTETimeCode()
	return fmt.Sprintf("%d frames per second, %d ticks per frame", fps,
		ticksPerFrame)
}

// The fields of the MThd chunk, converted to host byte order.
type SMFHeader struct {
	// This must be 'MThd'
	ChunkType [4]byte
	// This should be 6
	ChunkSize uint32
	// 0, 1 or 2. Type 0 contains a single track, type 1 contains
	// simultaneous tracks and type 2 contains independent sequences.
	Format uint16
	// The number of track chunks following the header.
	TrackCount uint16
	// Specifies what the delta-times mean in this file.
	Division TimeDivision
}

func (h *SMFHeader) String() string {
	return fmt.Sprintf("Format %d, with %d track(s), %s", h.Format,
		h.TrackCount, h.Division.String())
}

// Reads the MThd chunk at the cursor's position. Size mismatches and unusual
// formats are reported to ctx as warnings.
func readHeaderChunk(c *ByteCursor, ctx *decodeContext) (*SMFHeader, error) {
	var toReturn SMFHeader
	chunkType, e := c.ReadBytes(4)
	if e != nil {
		return nil, errors.Wrapf(ErrInvalidHeader, "File is only %d bytes",
			c.Remaining())
	}
	if string(chunkType) != headerChunkType {
		return nil, errors.Wrapf(ErrInvalidHeader, "Bad chunk type for "+
			"header: %q", string(chunkType))
	}
	copy(toReturn.ChunkType[:], chunkType)
	if c.Remaining() < 4+headerDataSize {
		return nil, errors.Wrapf(ErrTruncatedChunk, "Header chunk needs %d "+
			"more bytes, only %d remain", 4+headerDataSize, c.Remaining())
	}
	// The remaining reads can't fail after the above check.
	toReturn.ChunkSize, _ = c.ReadU32()
	toReturn.Format, _ = c.ReadU16()
	toReturn.TrackCount, _ = c.ReadU16()
	division, _ := c.ReadU16()
	toReturn.Division = TimeDivision(division)

	if toReturn.ChunkSize != headerDataSize {
		ctx.warn(-1, 4, fmt.Sprintf("Header chunk size is %d, expected %d",
			toReturn.ChunkSize, headerDataSize))
	}
	if toReturn.ChunkSize > headerDataSize {
		extra := uint64(toReturn.ChunkSize - headerDataSize)
		if extra > uint64(c.Remaining()) {
			return nil, errors.Wrapf(ErrTruncatedChunk, "Header chunk "+
				"declares %d extra bytes, only %d remain", extra,
				c.Remaining())
		}
		c.Advance(int(extra))
	}
	if toReturn.Format > 2 {
		ctx.warn(-1, 8, fmt.Sprintf("Unknown SMF format %d", toReturn.Format))
	}
	if (toReturn.Format == 0) && (toReturn.TrackCount != 1) {
		ctx.warn(-1, 10, fmt.Sprintf("Format 0 file declares %d tracks",
			toReturn.TrackCount))
	}
	return &toReturn, nil
}

// Reads an MTrk chunk header and returns the chunk's event data, which is
// exactly as long as the header says.
func readTrackChunk(c *ByteCursor) ([]byte, error) {
	if c.Remaining() < 8 {
		return nil, errors.Wrapf(ErrTruncatedChunk, "Track chunk header "+
			"needs 8 bytes, only %d remain", c.Remaining())
	}
	chunkType, _ := c.ReadBytes(4)
	if string(chunkType) != trackChunkType {
		return nil, errors.Wrapf(ErrInvalidTrackHeader, "Bad chunk type for "+
			"track: %q", string(chunkType))
	}
	length, _ := c.ReadU32()
	if uint64(length) > uint64(c.Remaining()) {
		return nil, errors.Wrapf(ErrTruncatedChunk, "Track chunk declares %d "+
			"bytes, only %d remain", length, c.Remaining())
	}
	return c.ReadBytes(int(length))
}
