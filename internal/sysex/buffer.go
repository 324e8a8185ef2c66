package sysex

import "fmt"

// ProgramBuffer is an in-memory image of one program-dump payload.
// All byte access is bounds checked; values are masked to 7 bits on
// write because the device only transmits 7-bit data. The buffer
// tracks dirty state so callers know when a write-back is needed.
type ProgramBuffer struct {
	data  []byte
	dirty bool
}

// NewProgramBuffer copies data into a fresh buffer. A nil or empty
// slice yields an empty buffer that rejects all byte access.
func NewProgramBuffer(data []byte) *ProgramBuffer {
	b := &ProgramBuffer{}
	if len(data) > 0 {
		b.data = append([]byte(nil), data...)
	}
	return b
}

func (b *ProgramBuffer) Size() int   { return len(b.data) }
func (b *ProgramBuffer) Dirty() bool { return b.dirty }

// MarkClean clears the dirty flag, typically after a successful
// program write to the device.
func (b *ProgramBuffer) MarkClean() { b.dirty = false }

// Load replaces the buffer contents and clears the dirty flag.
func (b *ProgramBuffer) Load(data []byte) {
	b.data = append(b.data[:0:0], data...)
	b.dirty = false
}

// Bytes returns a copy of the buffer contents.
func (b *ProgramBuffer) Bytes() []byte {
	return append([]byte(nil), b.data...)
}

// Name returns the program name stored in the buffer, or "" when the
// buffer is empty or the name field is blank.
func (b *ProgramBuffer) Name() string {
	return ExtractPatchName(b.data)
}

func (b *ProgramBuffer) check(offset int) error {
	if offset < 0 || offset >= len(b.data) {
		return fmt.Errorf("%w: offset %d, size %d", ErrPayloadTooShort, offset, len(b.data))
	}
	return nil
}

// ByteAt reads the raw 7-bit value at a packed offset.
func (b *ProgramBuffer) ByteAt(offset int) (byte, error) {
	if err := b.check(offset); err != nil {
		return 0, err
	}
	return b.data[offset], nil
}

// SetByte writes a 7-bit value at a packed offset.
func (b *ProgramBuffer) SetByte(offset int, value byte) error {
	if err := b.check(offset); err != nil {
		return err
	}
	value &= 0x7F
	if b.data[offset] != value {
		b.data[offset] = value
		b.dirty = true
	}
	return nil
}

// SignedAt reads a 7-bit value and interprets it as signed (-64..+63).
func (b *ProgramBuffer) SignedAt(offset int) (int, error) {
	raw, err := b.ByteAt(offset)
	if err != nil {
		return 0, err
	}
	if raw < 64 {
		return int(raw), nil
	}
	return int(raw) - 128, nil
}

// SetSigned writes a signed value (-64..+63) as 7-bit unsigned.
func (b *ProgramBuffer) SetSigned(offset, value int) error {
	if value < 0 {
		value += 128
	}
	return b.SetByte(offset, byte(value))
}

// BitAt extracts a single bit and scales it to the NRPN value range:
// 127 when set, 0 when clear.
func (b *ProgramBuffer) BitAt(offset int, bit uint) (int, error) {
	raw, err := b.ByteAt(offset)
	if err != nil {
		return 0, err
	}
	if raw>>bit&1 == 1 {
		return 127, nil
	}
	return 0, nil
}

// SetBit sets or clears a single bit depending on whether value is at
// or above the NRPN on/off threshold of 64.
func (b *ProgramBuffer) SetBit(offset int, bit uint, value int) error {
	if err := b.check(offset); err != nil {
		return err
	}
	mask := byte(1) << bit
	next := b.data[offset] &^ mask
	if value >= 64 {
		next |= mask
	}
	if b.data[offset] != next {
		b.data[offset] = next
		b.dirty = true
	}
	return nil
}

// EffectType reads and validates the effect type byte for slot 1 or 2.
// A value outside 0..MaxEffectType means the buffer does not hold a
// valid program image.
func (b *ProgramBuffer) EffectType(slot int) (int, error) {
	offset, err := FXTypePacked(slot)
	if err != nil {
		return 0, err
	}
	raw, err := b.ByteAt(offset)
	if err != nil {
		return 0, err
	}
	if raw > MaxEffectType {
		return 0, fmt.Errorf("%w: effect %d type byte 0x%02X out of range", ErrNotAKorgDump, slot, raw)
	}
	return int(raw), nil
}
