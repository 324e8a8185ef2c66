// Package params is the static catalog of user-addressable RK-100S 2
// parameters and the master-effect type registry. Every parameter
// carries exactly one MIDI addressing: an NRPN pair, a CC number, or a
// packed SysEx offset within the program dump.
package params

import (
	"errors"
	"fmt"

	"patchmasta/internal/sysex"
)

// ErrNoMIDIAddress reports a parameter that can neither be sent as
// NRPN nor as CC. Asking for a live message for such a parameter is a
// programming error, not a device condition.
var ErrNoMIDIAddress = errors.New("parameter has no NRPN or CC address")

// none marks an absent address field.
const none = -1

// ParamDef describes one parameter. Address fields use -1 for "not
// set"; exactly one addressing scheme is populated per definition.
type ParamDef struct {
	Name        string
	Description string
	SonicEffect string
	Min, Max    int

	NRPNMSB int
	NRPNLSB int
	CC      int

	// SysExOffset is the packed byte offset within the program dump,
	// or -1 for live-only parameters.
	SysExOffset int
	// Signed marks center-64 values decoded as -64..+63.
	Signed bool
	// Bit is the bit position for bit-packed booleans, or -1.
	Bit int
}

// Clamp limits v to the parameter's valid range.
func (p ParamDef) Clamp(v int) int {
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// HasNRPN reports whether the parameter is addressed by an NRPN pair.
func (p ParamDef) HasNRPN() bool { return p.NRPNMSB != none && p.NRPNLSB != none }

// HasCC reports whether the parameter is addressed by a control change.
func (p ParamDef) HasCC() bool { return p.CC != none }

// HasSysEx reports whether the parameter lives at a packed buffer offset.
func (p ParamDef) HasSysEx() bool { return p.SysExOffset != none }

// BuildMessage returns the channel-voice bytes that set this parameter
// live: an NRPN triplet (CC 99, 98, 6) or a single CC message. The
// value is clamped to the parameter range first.
func (p ParamDef) BuildMessage(channel, value int) ([]byte, error) {
	value = p.Clamp(value)
	ch := byte(channel-1) & 0x0F
	switch {
	case p.HasNRPN():
		return []byte{
			0xB0 | ch, 99, byte(p.NRPNMSB),
			0xB0 | ch, 98, byte(p.NRPNLSB),
			0xB0 | ch, 6, byte(value) & 0x7F,
		}, nil
	case p.HasCC():
		return []byte{0xB0 | ch, byte(p.CC), byte(value) & 0x7F}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoMIDIAddress, p.Name)
}

func nrpn(name, description, sonic string, min, max, msb, lsb int) ParamDef {
	return ParamDef{
		Name: name, Description: description, SonicEffect: sonic,
		Min: min, Max: max,
		NRPNMSB: msb, NRPNLSB: lsb, CC: none, SysExOffset: none, Bit: none,
	}
}

func packed(name, description, sonic string, min, max, offset int) ParamDef {
	return ParamDef{
		Name: name, Description: description, SonicEffect: sonic,
		Min: min, Max: max,
		NRPNMSB: none, NRPNLSB: none, CC: none, SysExOffset: offset, Bit: none,
	}
}

func packedSigned(name, description, sonic string, min, max, offset int) ParamDef {
	p := packed(name, description, sonic, min, max, offset)
	p.Signed = true
	return p
}

// builtin lists every catalog entry in its stable enumeration order.
// NRPN pairs come from the MIDI implementation chart; packed offsets
// were confirmed by diffing program dumps against the hardware.
var builtin = []ParamDef{
	nrpn("arp_on_off", "Arpeggiator on/off", "Enables/disables the arpeggiator",
		0, 127, 0x00, 0x02),
	nrpn("arp_latch", "Arpeggiator latch", "Holds the arpeggio after releasing keys",
		0, 127, 0x00, 0x04),
	nrpn("arp_type", "Arpeggiator type", "Pattern: Up, Down, Alt1, Alt2, Random, Trigger",
		0, 127, 0x00, 0x07),
	nrpn("arp_gate", "Arpeggiator gate time", "Duration of each arpeggio note",
		0, 127, 0x00, 0x0A),
	nrpn("arp_select", "Arpeggiator timbre select", "Which timbre the arp applies to",
		0, 127, 0x00, 0x0B),
	nrpn("voice_mode", "Voice mode", "Single/Layer/Split/Multi timbre mode",
		0, 127, 0x05, 0x00),
	nrpn("patch1_source", "Virtual Patch 1 source", "Modulation source for patch 1",
		0, 127, 0x04, 0x00),
	nrpn("patch2_source", "Virtual Patch 2 source", "Modulation source for patch 2",
		0, 127, 0x04, 0x01),
	nrpn("patch3_source", "Virtual Patch 3 source", "Modulation source for patch 3",
		0, 127, 0x04, 0x02),
	nrpn("patch1_dest", "Virtual Patch 1 destination", "Parameter modulated by patch 1",
		0, 127, 0x04, 0x08),
	nrpn("patch2_dest", "Virtual Patch 2 destination", "Parameter modulated by patch 2",
		0, 127, 0x04, 0x09),
	nrpn("patch3_dest", "Virtual Patch 3 destination", "Parameter modulated by patch 3",
		0, 127, 0x04, 0x0A),
	nrpn("vocoder_sw", "Vocoder on/off", "Enables/disables the vocoder",
		0, 127, 0x05, 0x04),

	packed("fx1_type", "Master Effect 1 type", "Selects the effect algorithm for slot 1",
		0, sysex.MaxEffectType, sysex.FX1TypePacked),
	packed("fx1_ribbon_assign", "Master Effect 1 ribbon assign",
		"Which FX1 parameter the long ribbon modulates (31 = off)",
		0, sysex.RibbonAssignOff, sysex.FX1RibbonAssignPacked),
	packed("fx1_ribbon_polarity", "Master Effect 1 ribbon polarity",
		"Direction of ribbon modulation for FX1",
		0, 1, sysex.FX1RibbonPolarityPacked),
	packed("fx2_type", "Master Effect 2 type", "Selects the effect algorithm for slot 2",
		0, sysex.MaxEffectType, sysex.FX2TypePacked),
	packed("fx2_ribbon_assign", "Master Effect 2 ribbon assign",
		"Which FX2 parameter the long ribbon modulates (31 = off)",
		0, sysex.RibbonAssignOff, sysex.FX2RibbonAssignPacked),
	packed("fx2_ribbon_polarity", "Master Effect 2 ribbon polarity",
		"Direction of ribbon modulation for FX2",
		0, 1, sysex.FX2RibbonPolarityPacked),

	packedSigned("vocoder_fc_offset", "Vocoder filter center offset",
		"Shifts the vocoder band filter frequencies", -63, 63, sysex.PackedOffset(2)),
	packed("vocoder_resonance", "Vocoder filter resonance",
		"Sharpness of the vocoder band filters", 0, 127, sysex.PackedOffset(3)),
	packedSigned("vocoder_fc_mod_int", "Vocoder Fc mod intensity",
		"Depth of vocoder filter modulation", -63, 63, sysex.PackedOffset(4)),
	packed("vocoder_ef_sens", "Vocoder envelope follower sensitivity",
		"Responsiveness of the vocoder to input dynamics", 0, 127, sysex.PackedOffset(5)),
}

// Registry is a name-indexed catalog with stable enumeration order.
type Registry struct {
	byName map[string]ParamDef
	order  []string
}

// NewRegistry returns the builtin RK-100S 2 catalog.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]ParamDef, len(builtin))}
	for _, p := range builtin {
		r.byName[p.Name] = p
		r.order = append(r.order, p.Name)
	}
	return r
}

// Get looks a parameter up by name.
func (r *Registry) Get(name string) (ParamDef, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// List returns every parameter in insertion order. The order is stable
// so tool enumeration and test output are deterministic.
func (r *Registry) List() []ParamDef {
	out := make([]ParamDef, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns every parameter name in insertion order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
