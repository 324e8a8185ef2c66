package device

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Transport is the wire under a Session: raw outbound bytes plus a
// SysEx listener registration. Tests substitute an in-memory fake.
type Transport interface {
	Send(msg []byte) error
	// Listen registers a callback for inbound SysEx messages and
	// returns a stop function. Only one listener is active at a time.
	Listen(onSysEx func(msg []byte)) (stop func(), err error)
	Close() error
}

// deviceNameFragment matches the RK-100S 2 port names the OS exposes.
// The keytar shows up as two port pairs; the SOUND pair carries SysEx.
const (
	deviceNameFragment = "rk-100s"
	soundPortFragment  = "sound"
)

// ListPorts returns the names of all MIDI output ports.
func ListPorts() []string {
	outs := midi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names
}

// FindDevice picks the RK-100S 2 port from a name list, preferring the
// SOUND port when the device exposes more than one.
func FindDevice(ports []string) (int, bool) {
	found := -1
	for i, name := range ports {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, deviceNameFragment) {
			continue
		}
		if strings.Contains(lower, soundPortFragment) {
			return i, true
		}
		if found < 0 {
			found = i
		}
	}
	return found, found >= 0
}

// MIDITransport is the gomidi-backed Transport over a real port pair.
type MIDITransport struct {
	in  drivers.In
	out drivers.Out
}

// OpenPorts opens the output and input ports at the given indices.
func OpenPorts(outIdx, inIdx int) (*MIDITransport, error) {
	outs := midi.GetOutPorts()
	if outIdx < 0 || outIdx >= len(outs) {
		return nil, fmt.Errorf("output port index %d out of range", outIdx)
	}
	ins := midi.GetInPorts()
	if inIdx < 0 || inIdx >= len(ins) {
		return nil, fmt.Errorf("input port index %d out of range", inIdx)
	}

	out := outs[outIdx]
	if err := out.Open(); err != nil {
		return nil, fmt.Errorf("open output %q: %w", out.String(), err)
	}
	in := ins[inIdx]
	if err := in.Open(); err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("open input %q: %w", in.String(), err)
	}

	return &MIDITransport{in: in, out: out}, nil
}

func (t *MIDITransport) Send(msg []byte) error {
	if !t.out.IsOpen() {
		if err := t.out.Open(); err != nil {
			return err
		}
	}
	return t.out.Send(msg)
}

func (t *MIDITransport) Listen(onSysEx func(msg []byte)) (func(), error) {
	return midi.ListenTo(t.in, func(msg midi.Message, _ int32) {
		if len(msg) > 0 && msg[0] == 0xF0 {
			onSysEx(msg)
		}
	}, midi.UseSysEx(), midi.SysExBufferSize(4096))
}

func (t *MIDITransport) Close() error {
	err := t.out.Close()
	if inErr := t.in.Close(); err == nil {
		err = inErr
	}
	return err
}
