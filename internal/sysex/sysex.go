// Package sysex builds and parses Korg-framed MIDI System Exclusive
// messages for the RK-100S 2 and translates logical parameter offsets
// into packed program-dump byte positions.
package sysex

import (
	"errors"
	"fmt"
)

const (
	// KorgID is the Korg manufacturer byte.
	KorgID = 0x42

	// DefaultModelID is the RK-100S 2 model byte. It has not been
	// confirmed against the Parameter Guide, so it stays configurable
	// (see Codec and the model_id config key).
	DefaultModelID = 0x57

	FuncProgramDumpRequest = 0x10
	FuncAllDumpRequest     = 0x0E
	FuncProgramDump        = 0x40
)

const (
	sysexStart = 0xF0
	sysexEnd   = 0xF7

	// NameLength is the number of payload bytes holding the program name.
	NameLength = 12
)

var (
	ErrNotAKorgDump      = errors.New("not a Korg program dump")
	ErrPayloadTooShort   = errors.New("payload too short")
	ErrChannelOutOfRange = errors.New("MIDI channel out of range (1-16)")
)

// Codec frames messages for one device model. The zero value is not
// usable; construct with NewCodec so the model byte is always explicit.
type Codec struct {
	model byte
}

// NewCodec returns a Codec for the given model byte. Pass
// DefaultModelID unless the device reports otherwise.
func NewCodec(model byte) Codec {
	return Codec{model: model}
}

// Model returns the model byte this codec frames messages with.
func (c Codec) Model() byte {
	return c.model
}

func channelByte(channel int) (byte, error) {
	if channel < 1 || channel > 16 {
		return 0, fmt.Errorf("%w: %d", ErrChannelOutOfRange, channel)
	}
	return byte(0x30 + channel - 1), nil
}

// BuildProgramDumpRequest frames a single-program dump request.
// The program index is masked to its low 7 bits.
func (c Codec) BuildProgramDumpRequest(channel, program int) ([]byte, error) {
	ch, err := channelByte(channel)
	if err != nil {
		return nil, err
	}
	return []byte{sysexStart, KorgID, ch, c.model, FuncProgramDumpRequest, byte(program) & 0x7F, sysexEnd}, nil
}

// BuildAllDumpRequest frames a request for every program on the device.
func (c Codec) BuildAllDumpRequest(channel int) ([]byte, error) {
	ch, err := channelByte(channel)
	if err != nil {
		return nil, err
	}
	return []byte{sysexStart, KorgID, ch, c.model, FuncAllDumpRequest, sysexEnd}, nil
}

// BuildProgramWrite frames a full program dump for the given slot.
func (c Codec) BuildProgramWrite(channel, program int, data []byte) ([]byte, error) {
	ch, err := channelByte(channel)
	if err != nil {
		return nil, err
	}
	msg := make([]byte, 0, 7+len(data))
	msg = append(msg, sysexStart, KorgID, ch, c.model, FuncProgramDump, byte(program)&0x7F)
	msg = append(msg, data...)
	return append(msg, sysexEnd), nil
}

// BuildProgramChange returns a channel-voice program change message.
func BuildProgramChange(channel, program int) ([]byte, error) {
	if channel < 1 || channel > 16 {
		return nil, fmt.Errorf("%w: %d", ErrChannelOutOfRange, channel)
	}
	return []byte{0xC0 | byte(channel-1), byte(program) & 0x7F}, nil
}

// ParseProgramDump extracts the payload of an inbound program dump:
// everything between the function byte and the trailing 0xF7. The
// channel byte is deliberately not validated so devices on any global
// channel are accepted.
func (c Codec) ParseProgramDump(msg []byte) ([]byte, error) {
	if len(msg) < 6 {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotAKorgDump, len(msg))
	}
	if msg[0] != sysexStart || msg[1] != KorgID {
		return nil, fmt.Errorf("%w: bad header % X", ErrNotAKorgDump, msg[:2])
	}
	if msg[3] != c.model {
		return nil, fmt.Errorf("%w: model 0x%02X (want 0x%02X)", ErrNotAKorgDump, msg[3], c.model)
	}
	if msg[4] != FuncProgramDump {
		return nil, fmt.Errorf("%w: function 0x%02X", ErrNotAKorgDump, msg[4])
	}
	if msg[len(msg)-1] != sysexEnd {
		return nil, fmt.Errorf("%w: missing terminator", ErrNotAKorgDump)
	}
	payload := make([]byte, len(msg)-6)
	copy(payload, msg[5:len(msg)-1])
	return payload, nil
}

// ExtractPatchName reads the program name from the first NameLength
// payload bytes, keeping printable ASCII and trimming right padding.
// Returns "" when the payload is too short or the name is blank; the
// caller substitutes a "Program NNN" placeholder.
func ExtractPatchName(payload []byte) string {
	if len(payload) < NameLength {
		return ""
	}
	name := make([]byte, 0, NameLength)
	for _, b := range payload[:NameLength] {
		if b >= 0x20 && b <= 0x7E {
			name = append(name, b)
		}
	}
	end := len(name)
	for end > 0 && name[end-1] == ' ' {
		end--
	}
	return string(name[:end])
}
