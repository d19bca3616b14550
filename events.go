package smfreader

import (
	"fmt"
)

// Identifies the broad category of a decoded event.
type EventKind uint8

const (
	ChannelEventKind EventKind = iota
	SysExEventKind
	MetaEventKind
	// The End-of-Track meta-event gets its own kind, since it terminates a
	// track.
	EndOfTrackEventKind
)

func (k EventKind) String() string {
	switch k {
	case ChannelEventKind:
		return "channel event"
	case SysExEventKind:
		return "system exclusive event"
	case MetaEventKind:
		return "meta-event"
	case EndOfTrackEventKind:
		return "end of track"
	}
	return fmt.Sprintf("unknown event kind %d", uint8(k))
}

// A basic interface that all decoded MIDI messages support.
type MIDIMessage interface {
	// A string representation of the event.
	String() string
	// Returns which category of event this is.
	Kind() EventKind
}

// Holds a MIDI note value. The values corresponding to keys on a standard
// keyboard are 21 (A0) through 108 (C8).
type MIDINote uint8

func (n MIDINote) String() string {
	if (n < 21) || (n > 108) {
		return fmt.Sprintf("MIDI note %d", uint8(n))
	}
	names := [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A",
		"A#", "B"}
	return fmt.Sprintf("%s%d", names[n%12], int(n)/12-1)
}

// The high nibble of a channel voice status byte.
type ChannelEventType uint8

const (
	NoteOff ChannelEventType = 0x8
	NoteOn  ChannelEventType = 0x9
	// Also known as polyphonic aftertouch.
	PolyPressure    ChannelEventType = 0xa
	ControlChange   ChannelEventType = 0xb
	ProgramChange   ChannelEventType = 0xc
	ChannelPressure ChannelEventType = 0xd
	PitchBend       ChannelEventType = 0xe
)

// Returns the number of data bytes following a status byte of this type, or
// 0 if t isn't a channel voice type.
func (t ChannelEventType) DataLength() int {
	switch t {
	case NoteOff, NoteOn, PolyPressure, ControlChange, PitchBend:
		return 2
	case ProgramChange, ChannelPressure:
		return 1
	}
	return 0
}

func (t ChannelEventType) String() string {
	switch t {
	case NoteOff:
		return "note off"
	case NoteOn:
		return "note on"
	case PolyPressure:
		return "aftertouch"
	case ControlChange:
		return "control change"
	case ProgramChange:
		return "program change"
	case ChannelPressure:
		return "channel pressure"
	case PitchBend:
		return "pitch bend"
	}
	return fmt.Sprintf("unknown channel event type 0x%x", uint8(t))
}

// Holds any channel voice message. Data2 is always 0 for the event types
// carrying a single data byte (program change and channel pressure).
type ChannelEvent struct {
	Type    ChannelEventType
	Channel uint8
	Data1   uint8
	Data2   uint8
}

func (v *ChannelEvent) Kind() EventKind {
	return ChannelEventKind
}

// Returns the status byte this event was encoded with.
func (v *ChannelEvent) Status() uint8 {
	return (uint8(v.Type) << 4) | (v.Channel & 0xf)
}

// Returns the note for note-on, note-off and aftertouch events.
func (v *ChannelEvent) Note() MIDINote {
	return MIDINote(v.Data1)
}

// Returns the velocity of a note-on or note-off event, or the pressure of an
// aftertouch event.
func (v *ChannelEvent) Velocity() uint8 {
	return v.Data2
}

// Returns the 14-bit pitch-bend value. The "center" value is 0x2000.
func (v *ChannelEvent) PitchBendValue() uint16 {
	return (uint16(v.Data2) << 7) | uint16(v.Data1)
}

// Returns true if this event starts a note: a note-on with non-zero velocity.
func (v *ChannelEvent) IsNoteStart() bool {
	return (v.Type == NoteOn) && (v.Data2 != 0)
}

// Returns true if this event ends a note, including the common note-on with
// zero velocity form.
func (v *ChannelEvent) IsNoteEnd() bool {
	return (v.Type == NoteOff) || ((v.Type == NoteOn) && (v.Data2 == 0))
}

// Returns a description of the channel mode messages, which share their
// status with control changes for controller numbers 120 through 127.
func channelModeString(controller, value uint8) string {
	switch controller {
	case 120:
		return fmt.Sprintf("All sound off (v = %d)", value)
	case 121:
		return fmt.Sprintf("Reset all controllers (v = %d)", value)
	case 122:
		tmp := "off"
		if value == 127 {
			tmp = "on"
		} else if value != 0 {
			tmp = fmt.Sprintf("unknown setting %d", value)
		}
		return "Local control " + tmp
	case 123:
		return fmt.Sprintf("All notes off (v = %d)", value)
	case 124:
		return fmt.Sprintf("Omni mode off (v = %d)", value)
	case 125:
		return fmt.Sprintf("Omni mode on (v = %d)", value)
	case 126:
		return fmt.Sprintf("Mono mode on (v = %d)", value)
	case 127:
		return fmt.Sprintf("Poly mode on (v = %d)", value)
	}
	return ""
}

func (v *ChannelEvent) String() string {
	c := fmt.Sprintf("Channel %d: ", v.Channel)
	switch v.Type {
	case NoteOff:
		return c + fmt.Sprintf("%s off, velocity = %d", v.Note(), v.Data2)
	case NoteOn:
		return c + fmt.Sprintf("%s on, velocity = %d", v.Note(), v.Data2)
	case PolyPressure:
		return c + fmt.Sprintf("%s aftertouch pressure %d", v.Note(), v.Data2)
	case ControlChange:
		if s := channelModeString(v.Data1, v.Data2); s != "" {
			return c + s
		}
		return c + fmt.Sprintf("Control change, controller number %d, "+
			"value %d", v.Data1, v.Data2)
	case ProgramChange:
		return c + fmt.Sprintf("program change to %d", v.Data1)
	case ChannelPressure:
		return c + fmt.Sprintf("Set channel pressure to %d", v.Data1)
	case PitchBend:
		return c + fmt.Sprintf("Pitch bend value %d", v.PitchBendValue())
	}
	return c + v.Type.String()
}

// Holds a sysex-type message. The payload isn't interpreted.
type SystemExclusiveMessage struct {
	// Either 0xf0 for a normal sysex message or 0xf7 for an "escape" packet
	// (a continuation, or arbitrary bytes to send).
	Status uint8
	// All bytes following the length. For complete 0xf0 messages this
	// includes the trailing 0xf7.
	DataBytes []byte
}

func (m *SystemExclusiveMessage) Kind() EventKind {
	return SysExEventKind
}

func (m *SystemExclusiveMessage) String() string {
	if m.Status == 0xf7 {
		return fmt.Sprintf("System exclusive escape. %d bytes: % x.",
			len(m.DataBytes), m.DataBytes)
	}
	return fmt.Sprintf("System exclusive message. %d bytes: % x.",
		len(m.DataBytes), m.DataBytes)
}
