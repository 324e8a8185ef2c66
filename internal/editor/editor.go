// Package editor mediates all patch reads and writes: it keeps the
// in-memory program buffer, resolves parameter names against the
// registry and the currently selected effect types, and fans writes
// out to the live device.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"patchmasta/internal/params"
	"patchmasta/internal/sysex"
)

// ErrUnknownParameter reports a name the registry does not know.
var ErrUnknownParameter = errors.New("unknown parameter")

// ErrNoPatchLoaded reports a buffer operation before any dump was
// loaded.
var ErrNoPatchLoaded = errors.New("no patch loaded")

// LiveSender is the slice of the device session the editor needs.
type LiveSender interface {
	Connected() bool
	Channel() int
	Send(msg []byte) error
}

// Editor owns one patch under edit. A coarse mutex serializes the
// buffer and the effect-type state; UI edits and AI tool calls arrive
// from different goroutines.
type Editor struct {
	registry *params.Registry
	codec    sysex.Codec
	sender   LiveSender
	log      *zap.Logger

	mu     sync.Mutex
	buffer *sysex.ProgramBuffer
	slot   int
	// last lives alongside the buffer: NRPN/CC parameters have no
	// buffer byte, so the session value is all we know about them.
	last map[string]int
}

// New returns an editor with an empty buffer.
func New(registry *params.Registry, codec sysex.Codec, sender LiveSender, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{
		registry: registry,
		codec:    codec,
		sender:   sender,
		log:      log,
		buffer:   sysex.NewProgramBuffer(nil),
		last:     make(map[string]int),
	}
}

// LoadPayload replaces the buffer with a freshly pulled program dump.
func (e *Editor) LoadPayload(slot int, payload []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer.Load(payload)
	e.slot = slot
	e.last = make(map[string]int)
	e.log.Info("patch loaded",
		zap.Int("slot", slot), zap.String("name", e.buffer.Name()), zap.Int("size", e.buffer.Size()))
}

// Name returns the loaded patch name, or "Program NNN" when the
// buffer carries no printable name.
func (e *Editor) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name := e.buffer.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("Program %03d", e.slot)
}

// Slot returns the program slot the buffer was pulled from.
func (e *Editor) Slot() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slot
}

// Payload returns a copy of the buffer bytes.
func (e *Editor) Payload() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer.Bytes()
}

// Dirty reports whether the buffer has unsent edits.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer.Dirty()
}

// SetParameter writes a registry parameter. NRPN and CC parameters go
// to the wire only; packed parameters update the buffer and, while
// connected, are auditioned by rewriting the whole program. The value
// is clamped to the parameter range.
func (e *Editor) SetParameter(name string, value int) error {
	p, ok := e.registry.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	value = p.Clamp(value)

	e.mu.Lock()
	defer e.mu.Unlock()

	if p.HasSysEx() {
		if e.buffer.Size() == 0 {
			return ErrNoPatchLoaded
		}
		if err := e.writePacked(p, value); err != nil {
			return err
		}
		if name == "fx1_type" {
			e.resetStaleRibbon(1, value)
		} else if name == "fx2_type" {
			e.resetStaleRibbon(2, value)
		}
		e.last[name] = value
		return e.auditionBuffer()
	}

	msg, err := p.BuildMessage(e.sender.Channel(), value)
	if err != nil {
		return err
	}
	e.last[name] = value
	if !e.sender.Connected() {
		return nil
	}
	return e.sender.Send(msg)
}

// GetParameter returns the last-known value of a parameter: the buffer
// byte for packed parameters, the session value otherwise. The bool is
// false when no value is known yet.
func (e *Editor) GetParameter(name string) (int, bool, error) {
	p, ok := e.registry.Get(name)
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if p.HasSysEx() && e.buffer.Size() > 0 {
		v, err := e.readPacked(p)
		if err != nil {
			return 0, false, err
		}
		return v, true, nil
	}
	v, ok := e.last[name]
	return v, ok, nil
}

func (e *Editor) writePacked(p params.ParamDef, value int) error {
	switch {
	case p.Bit >= 0:
		return e.buffer.SetBit(p.SysExOffset, uint(p.Bit), value)
	case p.Signed:
		return e.buffer.SetSigned(p.SysExOffset, value)
	default:
		return e.buffer.SetByte(p.SysExOffset, byte(value))
	}
}

func (e *Editor) readPacked(p params.ParamDef) (int, error) {
	switch {
	case p.Bit >= 0:
		return e.buffer.BitAt(p.SysExOffset, uint(p.Bit))
	case p.Signed:
		return e.buffer.SignedAt(p.SysExOffset)
	default:
		raw, err := e.buffer.ByteAt(p.SysExOffset)
		return int(raw), err
	}
}

// resetStaleRibbon turns the ribbon assign off when the assigned slot
// index does not exist in the newly selected effect type. The bytes of
// the parameter area itself are preserved; only their meaning changes.
func (e *Editor) resetStaleRibbon(fxSlot, typeID int) {
	offset, err := sysex.FXRibbonAssignPacked(fxSlot)
	if err != nil {
		return
	}
	raw, err := e.buffer.ByteAt(offset)
	if err != nil || raw == sysex.RibbonAssignOff {
		return
	}
	def, ok := params.EffectType(typeID)
	if ok {
		if _, valid := def.ParamBySlot(int(raw)); valid {
			return
		}
	}
	if err := e.buffer.SetByte(offset, sysex.RibbonAssignOff); err == nil {
		e.log.Debug("ribbon assign reset",
			zap.Int("fx", fxSlot), zap.Int("was", int(raw)))
	}
}

// EffectType returns the effect type currently selected in slot 1 or 2.
func (e *Editor) EffectType(fxSlot int) (params.EffectTypeDef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer.Size() == 0 {
		return params.EffectTypeDef{}, ErrNoPatchLoaded
	}
	id, err := e.buffer.EffectType(fxSlot)
	if err != nil {
		return params.EffectTypeDef{}, err
	}
	def, ok := params.EffectType(id)
	if !ok {
		return params.EffectTypeDef{}, fmt.Errorf("effect type %d out of range", id)
	}
	return def, nil
}

// SetEffectParam writes an effect parameter by key, resolved against
// the effect type currently selected in the given slot.
func (e *Editor) SetEffectParam(fxSlot int, key string, value int) error {
	def, err := e.EffectType(fxSlot)
	if err != nil {
		return err
	}
	p, ok := def.ParamByKey(key)
	if !ok {
		return fmt.Errorf("%w: effect %d (%s) has no parameter %q",
			ErrUnknownParameter, fxSlot, def.Name, key)
	}
	if value < p.Min {
		value = p.Min
	} else if value > p.Max {
		value = p.Max
	}
	offset, err := sysex.FXParamPacked(fxSlot, p.SlotIndex)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.buffer.SetByte(offset, byte(value)); err != nil {
		return err
	}
	return e.auditionBuffer()
}

// GetEffectParam reads an effect parameter by key from the buffer.
func (e *Editor) GetEffectParam(fxSlot int, key string) (int, error) {
	def, err := e.EffectType(fxSlot)
	if err != nil {
		return 0, err
	}
	p, ok := def.ParamByKey(key)
	if !ok {
		return 0, fmt.Errorf("%w: effect %d (%s) has no parameter %q",
			ErrUnknownParameter, fxSlot, def.Name, key)
	}
	offset, err := sysex.FXParamPacked(fxSlot, p.SlotIndex)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	raw, err := e.buffer.ByteAt(offset)
	return int(raw), err
}

// auditionBuffer pushes the whole edited program to the device. There
// is no documented per-parameter SysEx write for the packed region, so
// the full dump is the write-back unit. Callers hold e.mu.
func (e *Editor) auditionBuffer() error {
	if !e.sender.Connected() {
		return nil
	}
	msg, err := e.codec.BuildProgramWrite(e.sender.Channel(), e.slot, e.buffer.Bytes())
	if err != nil {
		return err
	}
	return e.sender.Send(msg)
}

// Flush writes the buffer to the device and clears the dirty flag.
func (e *Editor) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer.Size() == 0 {
		return ErrNoPatchLoaded
	}
	if err := e.auditionBuffer(); err != nil {
		return err
	}
	e.buffer.MarkClean()
	return nil
}
