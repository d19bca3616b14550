package smfreader

import (
	"fmt"
)

// Meta-event type bytes, following the 0xff status.
const (
	metaSequenceNumber    = 0x00
	metaText              = 0x01
	metaCuePoint          = 0x07
	metaChannelPrefix     = 0x20
	metaEndOfTrack        = 0x2f
	metaSetTempo          = 0x51
	metaSMPTEOffset       = 0x54
	metaTimeSignature     = 0x58
	metaKeySignature      = 0x59
	metaSequencerSpecific = 0x7f
)

// Implemented by every meta-event.
type MetaMessage interface {
	MIDIMessage
	// Returns the meta-event type byte.
	MetaType() uint8
}

// Holds a meta-event type that isn't decoded any further, or a known type
// whose payload didn't have the expected size.
type GenericMetaEvent struct {
	EventType uint8
	Data      []byte
}

func (g *GenericMetaEvent) Kind() EventKind { return MetaEventKind }

func (g *GenericMetaEvent) MetaType() uint8 { return g.EventType }

func (g *GenericMetaEvent) String() string {
	return fmt.Sprintf("Unknown meta-event. Type 0x%02x, size: %d bytes",
		g.EventType, len(g.Data))
}

// A meta-event holding a sequence number.
type SequenceNumberMetaEvent uint16

func (n SequenceNumberMetaEvent) Kind() EventKind { return MetaEventKind }

func (n SequenceNumberMetaEvent) MetaType() uint8 { return metaSequenceNumber }

func (n SequenceNumberMetaEvent) String() string {
	return fmt.Sprintf("Sequence number: %d", uint16(n))
}

// Holds any of the text meta-events, types 0x01 through 0x07.
type TextMetaEvent struct {
	// Tells what kind of text this is: 1 for generic text, 2 for a copyright
	// notice, 3 for a track name, etc.
	TextEventType uint8
	// The raw text bytes. SMF doesn't specify an encoding.
	Data []byte
}

func (t *TextMetaEvent) Kind() EventKind { return MetaEventKind }

func (t *TextMetaEvent) MetaType() uint8 { return t.TextEventType }

func (t *TextMetaEvent) String() string {
	var eventType string
	switch t.TextEventType {
	case 0x1:
		eventType = "Generic text event"
	case 0x2:
		eventType = "Copyright notice"
	case 0x3:
		eventType = "Track/sequence name"
	case 0x4:
		eventType = "Instrument name"
	case 0x5:
		eventType = "Lyric"
	case 0x6:
		eventType = "Marker"
	case 0x7:
		eventType = "Cue point"
	default:
		eventType = fmt.Sprintf("Unknown text event type %d", t.TextEventType)
	}
	return fmt.Sprintf("%s: %s", eventType, t.Data)
}

// This represents a "MIDI Channel Prefix" meta-event, associating subsequent
// meta and sysex events with a channel number.
type ChannelPrefixMetaEvent uint8

func (c ChannelPrefixMetaEvent) Kind() EventKind { return MetaEventKind }

func (c ChannelPrefixMetaEvent) MetaType() uint8 { return metaChannelPrefix }

func (c ChannelPrefixMetaEvent) String() string {
	return fmt.Sprintf("Channel prefix: %d", uint8(c))
}

type EndOfTrackMetaEvent struct{}

func (t EndOfTrackMetaEvent) Kind() EventKind { return EndOfTrackEventKind }

func (t EndOfTrackMetaEvent) MetaType() uint8 { return metaEndOfTrack }

func (t EndOfTrackMetaEvent) String() string {
	return "End of track"
}

// Holds the 24-bit value for a "set tempo" meta-event: the number of
// microseconds per quarter note.
type SetTempoMetaEvent uint32

func (t SetTempoMetaEvent) Kind() EventKind { return MetaEventKind }

func (t SetTempoMetaEvent) MetaType() uint8 { return metaSetTempo }

// Returns the tempo in quarter notes per minute, or 0 for a zero tempo.
func (t SetTempoMetaEvent) BPM() float64 {
	if t == 0 {
		return 0
	}
	return 60000000.0 / float64(t)
}

func (t SetTempoMetaEvent) String() string {
	return fmt.Sprintf("Set tempo to %d us/quarter note (%f BPM)", uint32(t),
		t.BPM())
}

// Holds an SMPTE offset meta-event's five bytes (hours, minutes, seconds,
// frames, fractional frames). The timecode isn't interpreted.
type SMPTEOffsetMetaEvent struct {
	Data []byte
}

func (s *SMPTEOffsetMetaEvent) Kind() EventKind { return MetaEventKind }

func (s *SMPTEOffsetMetaEvent) MetaType() uint8 { return metaSMPTEOffset }

func (s *SMPTEOffsetMetaEvent) String() string {
	return fmt.Sprintf("SMPTE offset: % x", s.Data)
}

type TimeSignatureMetaEvent struct {
	// The "denominator" is a negative power of 2; for example, if the
	// signature was 5/8 time then Numerator would be 5 and Denominator would
	// be 3.
	Numerator   uint8
	Denominator uint8
	// The number of MIDI clocks (24ths of a quarter note) per metronome tick.
	ClocksPerMetronomeTick uint8
	// The number of notated 32nd notes per MIDI quarter note.
	Notated32ndNotesPerQuarterNote uint8
}

func (s *TimeSignatureMetaEvent) Kind() EventKind { return MetaEventKind }

func (s *TimeSignatureMetaEvent) MetaType() uint8 { return metaTimeSignature }

func (s *TimeSignatureMetaEvent) String() string {
	base := uint32(1) << uint32(s.Denominator&0x1f)
	return fmt.Sprintf("Time signature: %d/%d time, %d clocks per metronome "+
		"tick, %d 32nd notes per notated quarter note", s.Numerator, base,
		s.ClocksPerMetronomeTick, s.Notated32ndNotesPerQuarterNote)
}

type KeySignatureMetaEvent struct {
	// Negative counts are flats, positive counts are sharps. Values outside
	// of -7 to 7 are kept as they appear in the file.
	SharpOrFlatCount int8
	// This is true if the key signature is for a minor key.
	IsMinor bool
}

func (s *KeySignatureMetaEvent) Kind() EventKind { return MetaEventKind }

func (s *KeySignatureMetaEvent) MetaType() uint8 { return metaKeySignature }

func (s *KeySignatureMetaEvent) String() string {
	sf := int(s.SharpOrFlatCount)
	tmp := "sharps or flats"
	if sf < 0 {
		sf = -sf
		tmp = "flat"
	} else if sf > 0 {
		tmp = "sharp"
	}
	if sf > 1 {
		tmp += "s"
	}
	mm := "major"
	if s.IsMinor {
		mm = "minor"
	}
	return fmt.Sprintf("Key signature: %d %s, %s key", sf, tmp, mm)
}

// Holds opaque sequencer-specific data.
type SequencerSpecificMetaEvent struct {
	Data []byte
}

func (s *SequencerSpecificMetaEvent) Kind() EventKind { return MetaEventKind }

func (s *SequencerSpecificMetaEvent) MetaType() uint8 {
	return metaSequencerSpecific
}

func (s *SequencerSpecificMetaEvent) String() string {
	return fmt.Sprintf("Sequencer-specific data. %d bytes: % x", len(s.Data),
		s.Data)
}

// Maps the meta-event types with a fixed payload size to that size.
var metaEventSizes = map[uint8]int{
	metaSequenceNumber: 2,
	metaChannelPrefix:  1,
	metaEndOfTrack:     0,
	metaSetTempo:       3,
	metaSMPTEOffset:    5,
	metaTimeSignature:  4,
	metaKeySignature:   2,
}

// Decodes a meta-event's payload, which must already be copied out of the
// file buffer. If the payload doesn't have the size required by the event
// type, the event is returned as a GenericMetaEvent, along with a non-empty
// description of the problem. End-of-track events are always returned as
// such.
func parseMetaEvent(eventType uint8, data []byte) (MetaMessage, string) {
	warning := ""
	if expected, ok := metaEventSizes[eventType]; ok && (len(data) != expected) {
		warning = fmt.Sprintf("Meta-event type 0x%02x should have %d data "+
			"byte(s), got %d", eventType, expected, len(data))
		if eventType != metaEndOfTrack {
			return &GenericMetaEvent{
				EventType: eventType,
				Data:      data,
			}, warning
		}
	}
	switch {
	case eventType == metaSequenceNumber:
		return SequenceNumberMetaEvent(uint16(data[0])<<8 | uint16(data[1])),
			warning
	case (eventType >= metaText) && (eventType <= metaCuePoint):
		return &TextMetaEvent{
			TextEventType: eventType,
			Data:          data,
		}, warning
	case eventType == metaChannelPrefix:
		return ChannelPrefixMetaEvent(data[0]), warning
	case eventType == metaEndOfTrack:
		return EndOfTrackMetaEvent{}, warning
	case eventType == metaSetTempo:
		tempo := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
		return SetTempoMetaEvent(tempo), warning
	case eventType == metaSMPTEOffset:
		return &SMPTEOffsetMetaEvent{
			Data: data,
		}, warning
	case eventType == metaTimeSignature:
		return &TimeSignatureMetaEvent{
			Numerator:                      data[0],
			Denominator:                    data[1],
			ClocksPerMetronomeTick:         data[2],
			Notated32ndNotesPerQuarterNote: data[3],
		}, warning
	case eventType == metaKeySignature:
		return &KeySignatureMetaEvent{
			SharpOrFlatCount: int8(data[0]),
			IsMinor:          data[1] != 0,
		}, warning
	case eventType == metaSequencerSpecific:
		return &SequencerSpecificMetaEvent{
			Data: data,
		}, warning
	}
	return &GenericMetaEvent{
		EventType: eventType,
		Data:      data,
	}, warning
}
