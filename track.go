package smfreader

// This file contains the decoder for the event stream inside an MTrk chunk.

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

type decoderState uint8

const (
	readDeltaTime decoderState = iota
	readStatus
	readChannelData
	readMetaHeader
	readMetaPayload
	readSysEx
	decodeDone
)

// Holds the state needed while decoding a single track. A new one is used for
// each track, so running status never carries over between tracks.
type trackDecoder struct {
	c     *ByteCursor
	ctx   *decodeContext
	track int
	state decoderState
	// The status of the most recent channel event, or 0 if running status
	// isn't in effect.
	runningStatus uint8
	// The status byte (or meta-event type) that applies to the event
	// currently being read.
	status     uint8
	timeDelta  uint32
	metaLength uint32
	// The offset of the current event's delta-time within the track.
	eventStart int
	events     []SMFEvent
}

// Decodes one track's event data. Stops at an End-of-Track meta-event or at
// the end of data, whichever comes first.
func decodeTrack(data []byte, track int, ctx *decodeContext) (*SMFTrack,
	error) {
	d := &trackDecoder{
		c:     NewByteCursor(data),
		ctx:   ctx,
		track: track,
		state: readDeltaTime,
		// Guess that the track will require approximately 3 bytes per event.
		events: make([]SMFEvent, 0, len(data)/3),
	}
	var e error
	for d.state != decodeDone {
		switch d.state {
		case readDeltaTime:
			e = d.readDeltaTime()
		case readStatus:
			e = d.readStatus()
		case readChannelData:
			e = d.readChannelData()
		case readMetaHeader:
			e = d.readMetaHeader()
		case readMetaPayload:
			e = d.readMetaPayload()
		case readSysEx:
			e = d.readSysEx()
		default:
			e = errors.Errorf("Internal error: bad decoder state %d",
				d.state)
		}
		if e != nil {
			return nil, e
		}
	}
	return &SMFTrack{
		Events: d.events,
	}, nil
}

func (d *trackDecoder) emit(m MIDIMessage) {
	d.events = append(d.events, SMFEvent{
		TimeDelta: d.timeDelta,
		Message:   m,
	})
}

func (d *trackDecoder) warn(offset int, message string) {
	d.ctx.warn(d.track, offset, message)
}

func (d *trackDecoder) readDeltaTime() error {
	if d.c.Remaining() == 0 {
		d.warn(d.c.Position(), "Track ended without an end-of-track event")
		d.state = decodeDone
		return nil
	}
	d.eventStart = d.c.Position()
	timeDelta, _, e := ReadVarLen(d.c)
	if e != nil {
		return errors.Wrapf(e, "Failed reading time delta for event %d at "+
			"offset %d", len(d.events), d.eventStart)
	}
	d.timeDelta = timeDelta
	d.state = readStatus
	return nil
}

func (d *trackDecoder) readStatus() error {
	b, e := d.c.Peek()
	if e != nil {
		return errors.Wrapf(ErrTruncatedEvent, "Track ended after the time "+
			"delta of event %d", len(d.events))
	}
	switch {
	case b == 0xff:
		// Meta-events and sysex messages cancel running status.
		d.runningStatus = 0
		d.state = readMetaHeader
	case (b == 0xf0) || (b == 0xf7):
		d.runningStatus = 0
		d.status = b
		d.state = readSysEx
	case (b & 0x80) == 0:
		// A data byte: reuse the previous status, and leave the byte for
		// readChannelData.
		if d.runningStatus == 0 {
			return errors.Wrapf(ErrUnknownChannelStatus, "Data byte 0x%02x "+
				"at offset %d without a running status", b, d.c.Position())
		}
		d.status = d.runningStatus
		d.state = readChannelData
		return nil
	case b >= 0xf0:
		return errors.Wrapf(ErrUnknownChannelStatus, "Status byte 0x%02x "+
			"at offset %d isn't allowed in a track", b, d.c.Position())
	default:
		d.runningStatus = b
		d.status = b
		d.state = readChannelData
	}
	d.c.Advance(1)
	return nil
}

func (d *trackDecoder) readChannelData() error {
	eventType := ChannelEventType(d.status >> 4)
	data, e := d.c.ReadBytes(eventType.DataLength())
	if e != nil {
		return errors.Wrapf(ErrTruncatedEvent, "Track ended inside %s event "+
			"%d", eventType, len(d.events))
	}
	for _, b := range data {
		if (b & 0x80) != 0 {
			return errors.Wrapf(ErrBadDataByte, "Got 0x%02x in %s event %d",
				b, eventType, len(d.events))
		}
	}
	toEmit := &ChannelEvent{
		Type:    eventType,
		Channel: d.status & 0xf,
		Data1:   data[0],
	}
	if len(data) > 1 {
		toEmit.Data2 = data[1]
	}
	d.emit(toEmit)
	d.state = readDeltaTime
	return nil
}

func (d *trackDecoder) readMetaHeader() error {
	eventType, e := d.c.ReadU8()
	if e != nil {
		return errors.Wrapf(ErrTruncatedMetaEvent, "Track ended before the "+
			"type of meta-event %d", len(d.events))
	}
	length, _, e := ReadVarLen(d.c)
	if e != nil {
		return errors.Wrapf(e, "Failed reading length of meta-event %d",
			len(d.events))
	}
	d.status = eventType
	d.metaLength = length
	d.state = readMetaPayload
	return nil
}

func (d *trackDecoder) readMetaPayload() error {
	if uint64(d.metaLength) > uint64(d.c.Remaining()) {
		return errors.Wrapf(ErrTruncatedMetaEvent, "Meta-event %d (type "+
			"0x%02x) declares %d bytes, only %d remain", len(d.events),
			d.status, d.metaLength, d.c.Remaining())
	}
	data, _ := d.c.ReadBytes(int(d.metaLength))
	message, warning := parseMetaEvent(d.status, bytes.Clone(data))
	if warning != "" {
		d.warn(d.eventStart, warning)
	}
	d.emit(message)
	if message.Kind() != EndOfTrackEventKind {
		d.state = readDeltaTime
		return nil
	}
	d.state = decodeDone
	if d.c.Remaining() != 0 {
		d.warn(d.c.Position(), fmt.Sprintf("Ignoring %d byte(s) after the "+
			"end-of-track event", d.c.Remaining()))
	}
	return nil
}

func (d *trackDecoder) readSysEx() error {
	length, _, e := ReadVarLen(d.c)
	if e != nil {
		return errors.Wrapf(e, "Couldn't read length of SysEx event %d",
			len(d.events))
	}
	if uint64(length) > uint64(d.c.Remaining()) {
		return errors.Wrapf(ErrTruncatedEvent, "SysEx event %d declares %d "+
			"bytes, only %d remain", len(d.events), length, d.c.Remaining())
	}
	data, _ := d.c.ReadBytes(int(length))
	d.emit(&SystemExclusiveMessage{
		Status:    d.status,
		DataBytes: bytes.Clone(data),
	})
	d.state = readDeltaTime
	return nil
}
