// Package protocol defines the fixed-size packet records exchanged between
// the injected payload and the controller over the shared channel.
//
// A packet always fits exactly one queue slot. The producer and consumer run
// in different processes with no shared runtime, so the encoding is a plain
// little-endian layout with no pointers and no variable-length framing.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// SlotSize is the size in bytes of one queue slot. Encode never writes more
// than this, Decode never reads more.
const SlotSize = 512

// headerSize covers the id, level and text-length words.
const headerSize = 12

// MaxTextLen is the capacity of a packet's text payload. Longer messages are
// truncated at construction, never at encode time.
const MaxTextLen = SlotSize - headerSize

// ID discriminates packet kinds. The zero value is deliberately invalid so a
// zeroed (never written) slot cannot decode into a packet.
type ID uint32

const (
	IDInvalid ID = iota
	IDReady
	IDLog
	IDComplete
	IDFatal
)

func (id ID) String() string {
	switch id {
	case IDReady:
		return "ready"
	case IDLog:
		return "log"
	case IDComplete:
		return "complete"
	case IDFatal:
		return "fatal"
	default:
		return fmt.Sprintf("invalid(%d)", uint32(id))
	}
}

// Level is the severity of a Log packet. It is meaningless for other kinds.
type Level uint32

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Packet is one message from the payload to the controller. Construct it with
// Ready, Logf, Complete or Fatal and treat it as immutable afterwards.
type Packet struct {
	ID    ID
	Level Level
	Text  string
}

// Ready signals that the injected payload initialized and opened the channel.
func Ready() Packet {
	return Packet{ID: IDReady}
}

// Logf builds a Log packet with the given severity.
func Logf(level Level, format string, args ...any) Packet {
	return Packet{ID: IDLog, Level: level, Text: clip(fmt.Sprintf(format, args...))}
}

// Complete is the successful terminal packet. Its text carries the dump root
// path, the controller's handoff value for optional relocation.
func Complete(dumpPath string) Packet {
	return Packet{ID: IDComplete, Text: clip(dumpPath)}
}

// Fatal is the failure terminal packet carrying a human-readable message.
func Fatal(format string, args ...any) Packet {
	return Packet{ID: IDFatal, Text: clip(fmt.Sprintf(format, args...))}
}

// Terminal reports whether the packet ends a run.
func (p Packet) Terminal() bool {
	return p.ID == IDComplete || p.ID == IDFatal
}

// Encode writes the packet into slot, which must be at least SlotSize bytes.
// Text beyond MaxTextLen has already been clipped by the constructors, but
// Encode clips again so a hand-built packet cannot overflow the slot.
func (p Packet) Encode(slot []byte) {
	_ = slot[SlotSize-1]
	text := clip(p.Text)
	binary.LittleEndian.PutUint32(slot[0:4], uint32(p.ID))
	binary.LittleEndian.PutUint32(slot[4:8], uint32(p.Level))
	binary.LittleEndian.PutUint32(slot[8:12], uint32(len(text)))
	copy(slot[headerSize:], text)
}

// Decode reads a packet from slot. A slot whose id, level or length fields
// are out of range decodes as (Packet{}, false): the consumer treats it as
// "no packet available" rather than surfacing garbage.
func Decode(slot []byte) (Packet, bool) {
	if len(slot) < SlotSize {
		return Packet{}, false
	}
	id := ID(binary.LittleEndian.Uint32(slot[0:4]))
	if id < IDReady || id > IDFatal {
		return Packet{}, false
	}
	level := Level(binary.LittleEndian.Uint32(slot[4:8]))
	if level > LevelError {
		return Packet{}, false
	}
	n := binary.LittleEndian.Uint32(slot[8:12])
	if n > MaxTextLen {
		return Packet{}, false
	}
	return Packet{
		ID:    id,
		Level: level,
		Text:  string(slot[headerSize : headerSize+int(n)]),
	}, true
}

func clip(s string) string {
	if len(s) > MaxTextLen {
		return s[:MaxTextLen]
	}
	return s
}
