package params

// Master-effect type registry. The 17 effect types (plus Off) and
// their per-type parameter tables come from the Parameter Guide
// pp37-54; the ribbon-assignable subsets were confirmed against the
// Korg Sound Editor.

// EffectParam is a single parameter within an effect type.
type EffectParam struct {
	Key         string
	DisplayName string
	Min, Max    int
	// SlotIndex is the parameter's position within the effect's data
	// area (0-22); it doubles as the ribbon-assign byte value.
	SlotIndex        int
	ValueLabels      map[int]string
	RibbonAssignable bool
}

// EffectTypeDef defines one effect type.
type EffectTypeDef struct {
	ID     int
	Name   string
	Params []EffectParam
}

// RibbonAssigns returns the parameters that can be driven by the long
// ribbon, in slot order.
func (t EffectTypeDef) RibbonAssigns() []EffectParam {
	var out []EffectParam
	for _, p := range t.Params {
		if p.RibbonAssignable {
			out = append(out, p)
		}
	}
	return out
}

// ParamBySlot returns the parameter occupying the given slot index.
func (t EffectTypeDef) ParamBySlot(slot int) (EffectParam, bool) {
	for _, p := range t.Params {
		if p.SlotIndex == slot {
			return p, true
		}
	}
	return EffectParam{}, false
}

// ParamByKey returns the parameter with the given key.
func (t EffectTypeDef) ParamByKey(key string) (EffectParam, bool) {
	for _, p := range t.Params {
		if p.Key == key {
			return p, true
		}
	}
	return EffectParam{}, false
}

var (
	lfoWaveform = map[int]string{0: "Saw", 1: "Square", 2: "Triangle", 3: "Sine", 4: "S&H"}
	lfoSyncNote = map[int]string{
		0: "8/1", 1: "6/1", 2: "4/1", 3: "3/1", 4: "2/1", 5: "3/2",
		6: "1/1", 7: "3/4", 8: "1/2", 9: "3/8", 10: "1/3", 11: "1/4",
		12: "3/16", 13: "1/6", 14: "1/8", 15: "3/32", 16: "1/12",
		17: "1/16", 18: "1/24", 19: "1/32", 20: "1/48", 21: "1/64",
	}
	offOn = map[int]string{0: "Off", 1: "On"}
	phase = map[int]string{0: "+", 1: "-"}
)

// ribbon builds a ribbon-assignable parameter; fixed builds one that
// does not appear in the ribbon assign list.
func ribbon(key, display string, min, max, slot int, labels map[int]string) EffectParam {
	return EffectParam{Key: key, DisplayName: display, Min: min, Max: max,
		SlotIndex: slot, ValueLabels: labels, RibbonAssignable: true}
}

func fixed(key, display string, min, max, slot int, labels map[int]string) EffectParam {
	return EffectParam{Key: key, DisplayName: display, Min: min, Max: max,
		SlotIndex: slot, ValueLabels: labels}
}

var effectTypes = []EffectTypeDef{
	{ID: 0, Name: "Effect Off"},

	{ID: 1, Name: "Compressor", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("envelope_select", "Envelope Select", 0, 1, 1,
			map[int]string{0: "LR Mix", 1: "LR Individual"}),
		ribbon("sensitivity", "Sensitivity", 0, 127, 2, nil),
		ribbon("attack", "Attack", 0, 127, 3, nil),
		fixed("output_level", "Output Level", 0, 127, 4, nil),
	}},

	{ID: 2, Name: "Filter", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("filter_type", "Filter Type", 0, 4, 1,
			map[int]string{0: "LPF24", 1: "LPF18", 2: "LPF12", 3: "HPF12", 4: "BPF12"}),
		ribbon("cutoff", "Cutoff", 0, 127, 2, nil),
		ribbon("resonance", "Resonance", 0, 127, 3, nil),
		fixed("trim", "Trim", 0, 127, 4, nil),
		fixed("mod_source", "Mod Source", 0, 1, 5,
			map[int]string{0: "LFO", 1: "Control"}),
		ribbon("mod_intensity", "Mod Intensity", 0, 127, 6, nil),
		ribbon("mod_response", "Mod Response", 0, 127, 7, nil),
		fixed("lfo_tempo_sync", "LFO Tempo Sync", 0, 1, 8, offOn),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 9, nil),
		ribbon("lfo_sync_note", "LFO Sync Note", 0, 21, 10, lfoSyncNote),
		fixed("lfo_waveform", "LFO Waveform", 0, 4, 11, lfoWaveform),
		fixed("lfo_shape", "LFO Shape", 0, 127, 12, nil),
		fixed("lfo_key_sync", "LFO KeySync", 0, 1, 13, offOn),
		fixed("lfo_init_phase", "LFO Init Phase", 0, 127, 14, nil),
		fixed("control_source", "Control Source", 0, 7, 15,
			map[int]string{0: "Off", 1: "Velocity", 2: "Short Ribbon (Pitch)",
				3: "Short Ribbon (Mod)", 4: "MIDI Control 1",
				5: "MIDI Control 2", 6: "MIDI Control 3"}),
	}},

	{ID: 3, Name: "4Band EQ", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("trim", "Trim", 0, 127, 1, nil),
		fixed("b1_type", "B1 Type", 0, 1, 2,
			map[int]string{0: "Peaking", 1: "Shelving Low"}),
		fixed("b1_frequency", "B1 Frequency", 0, 127, 3, nil),
		fixed("b1_q", "B1 Q", 0, 127, 4, nil),
		ribbon("b1_gain", "B1 Gain", 0, 36, 5, nil),
		fixed("b2_frequency", "B2 Frequency", 0, 127, 6, nil),
		fixed("b2_q", "B2 Q", 0, 127, 7, nil),
		ribbon("b2_gain", "B2 Gain", 0, 36, 8, nil),
		fixed("b3_frequency", "B3 Frequency", 0, 127, 9, nil),
		fixed("b3_q", "B3 Q", 0, 127, 10, nil),
		ribbon("b3_gain", "B3 Gain", 0, 36, 11, nil),
		fixed("b4_type", "B4 Type", 0, 1, 12,
			map[int]string{0: "Peaking", 1: "Shelving High"}),
		fixed("b4_frequency", "B4 Frequency", 0, 127, 13, nil),
		fixed("b4_q", "B4 Q", 0, 127, 14, nil),
		ribbon("b4_gain", "B4 Gain", 0, 36, 15, nil),
	}},

	{ID: 4, Name: "Distortion", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		ribbon("gain", "Gain", 0, 127, 1, nil),
		fixed("pre_eq_frequency", "Pre EQ Frequency", 0, 127, 2, nil),
		fixed("pre_eq_q", "Pre EQ Q", 0, 127, 3, nil),
		ribbon("pre_eq_gain", "Pre EQ Gain", 0, 36, 4, nil),
		fixed("b1_frequency", "B1 Frequency", 0, 127, 5, nil),
		fixed("b1_q", "B1 Q", 0, 127, 6, nil),
		ribbon("b1_gain", "B1 Gain", 0, 36, 7, nil),
		fixed("b2_frequency", "B2 Frequency", 0, 127, 8, nil),
		fixed("b2_q", "B2 Q", 0, 127, 9, nil),
		ribbon("b2_gain", "B2 Gain", 0, 36, 10, nil),
		fixed("b3_frequency", "B3 Frequency", 0, 127, 11, nil),
		fixed("b3_q", "B3 Q", 0, 127, 12, nil),
		ribbon("b3_gain", "B3 Gain", 0, 36, 13, nil),
		fixed("output_level", "Output Level", 0, 127, 14, nil),
	}},

	{ID: 5, Name: "Decimator", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("pre_lpf", "Pre LPF", 0, 1, 1, offOn),
		fixed("high_damp", "High Damp", 0, 100, 2, nil),
		ribbon("fs", "Fs", 0, 127, 3, nil),
		ribbon("bit", "Bit", 0, 20, 4, nil),
		fixed("output_level", "Output Level", 0, 127, 5, nil),
		ribbon("fs_mod_intensity", "Fs Mod Intensity", 0, 127, 6, nil),
		fixed("lfo_tempo_sync", "LFO Tempo Sync", 0, 1, 7, offOn),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 8, nil),
		ribbon("lfo_sync_note", "LFO Sync Note", 0, 21, 9, lfoSyncNote),
		fixed("lfo_waveform", "LFO Waveform", 0, 4, 10, lfoWaveform),
		fixed("lfo_shape", "LFO Shape", 0, 127, 11, nil),
		fixed("lfo_key_sync", "LFO KeySync", 0, 1, 12, offOn),
		fixed("lfo_init_phase", "LFO Init Phase", 0, 127, 13, nil),
	}},

	{ID: 6, Name: "Delay", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("type", "Type", 0, 1, 1,
			map[int]string{0: "Stereo", 1: "Cross"}),
		fixed("delay_tempo_sync", "Delay Tempo Sync", 0, 1, 2, offOn),
		ribbon("time_ratio", "Time Ratio", 0, 127, 3, nil),
		fixed("l_delay_time", "L Delay Time", 0, 127, 4, nil),
		fixed("r_delay_time", "R Delay Time", 0, 127, 5, nil),
		ribbon("feedback", "Feedback", 0, 127, 6, nil),
		fixed("high_damp", "High Damp", 0, 100, 7, nil),
		fixed("trim", "Trim", 0, 127, 8, nil),
		fixed("spread", "Spread", 0, 127, 9, nil),
	}},

	{ID: 7, Name: "L/C/R Delay", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("delay_tempo_sync", "Delay Tempo Sync", 0, 1, 1, offOn),
		ribbon("time_ratio", "Time Ratio", 0, 127, 2, nil),
		fixed("l_delay_time", "L Delay Time", 0, 127, 3, nil),
		fixed("c_delay_time", "C Delay Time", 0, 127, 4, nil),
		fixed("r_delay_time", "R Delay Time", 0, 127, 5, nil),
		fixed("l_delay_level", "L Delay Level", 0, 127, 6, nil),
		fixed("c_delay_level", "C Delay Level", 0, 127, 7, nil),
		fixed("r_delay_level", "R Delay Level", 0, 127, 8, nil),
		ribbon("c_feedback", "C Feedback", 0, 127, 9, nil),
		fixed("trim", "Trim", 0, 127, 10, nil),
		fixed("spread", "Spread", 0, 127, 11, nil),
	}},

	{ID: 8, Name: "Auto Panning Delay", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("delay_tempo_sync", "Delay Tempo Sync", 0, 1, 1, offOn),
		ribbon("time_ratio", "Time Ratio", 0, 127, 2, nil),
		fixed("l_delay_time", "L Delay Time", 0, 127, 3, nil),
		fixed("r_delay_time", "R Delay Time", 0, 127, 4, nil),
		ribbon("feedback", "Feedback", 0, 127, 5, nil),
		ribbon("mod_depth", "Mod Depth", 0, 127, 6, nil),
		fixed("lfo_tempo_sync", "LFO Tempo Sync", 0, 1, 7, offOn),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 8, nil),
		ribbon("lfo_sync_note", "LFO Sync Note", 0, 21, 9, lfoSyncNote),
		fixed("lfo_waveform", "LFO Waveform", 0, 4, 10, lfoWaveform),
		fixed("lfo_shape", "LFO Shape", 0, 127, 11, nil),
		fixed("lfo_key_sync", "LFO KeySync", 0, 1, 12, offOn),
		fixed("lfo_init_phase", "LFO Init Phase", 0, 127, 13, nil),
		fixed("lfo_spread", "LFO Spread", 0, 127, 14, nil),
		fixed("high_damp", "High Damp", 0, 100, 15, nil),
		fixed("trim", "Trim", 0, 127, 16, nil),
		fixed("spread", "Spread", 0, 127, 17, nil),
	}},

	{ID: 9, Name: "Modulation Delay", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("delay_tempo_sync", "Delay Tempo Sync", 0, 1, 1, offOn),
		ribbon("time_ratio", "Time Ratio", 0, 127, 2, nil),
		fixed("l_delay_time", "L Delay Time", 0, 127, 3, nil),
		fixed("r_delay_time", "R Delay Time", 0, 127, 4, nil),
		ribbon("feedback", "Feedback", 0, 127, 5, nil),
		ribbon("mod_depth", "Mod Depth", 0, 127, 6, nil),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 7, nil),
		fixed("lfo_spread", "LFO Spread", 0, 127, 8, nil),
	}},

	{ID: 10, Name: "Tape Echo", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("delay_tempo_sync", "Delay Tempo Sync", 0, 1, 1, offOn),
		ribbon("time_ratio", "Time Ratio", 0, 127, 2, nil),
		fixed("tap1_delay_time", "Tap1 Delay Time", 0, 127, 3, nil),
		fixed("tap2_delay_time", "Tap2 Delay Time", 0, 127, 4, nil),
		ribbon("tap1_level", "Tap1 Level", 0, 127, 5, nil),
		ribbon("tap2_level", "Tap2 Level", 0, 127, 6, nil),
		ribbon("feedback", "Feedback", 0, 127, 7, nil),
		fixed("high_damp", "High Damp", 0, 100, 8, nil),
		fixed("low_damp", "Low Damp", 0, 100, 9, nil),
		fixed("trim", "Trim", 0, 127, 10, nil),
		ribbon("saturation", "Saturation", 0, 127, 11, nil),
		fixed("wow_flutter_frequency", "WOW Flutter Frequency", 0, 127, 12, nil),
		fixed("wow_flutter_depth", "WOW Flutter Depth", 0, 127, 13, nil),
		fixed("pre_tone", "Pre Tone", 0, 127, 14, nil),
		fixed("spread", "Spread", 0, 127, 15, nil),
	}},

	{ID: 11, Name: "Chorus", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		ribbon("mod_depth", "Mod Depth", 0, 127, 1, nil),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 2, nil),
		fixed("lfo_spread", "LFO Spread", 0, 127, 3, nil),
		fixed("predelay_l", "PreDelay L", 0, 127, 4, nil),
		fixed("predelay_r", "PreDelay R", 0, 127, 5, nil),
		fixed("trim", "Trim", 0, 127, 6, nil),
		fixed("high_eq_gain", "High EQ Gain", 0, 127, 7, nil),
	}},

	{ID: 12, Name: "Flanger", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		ribbon("delay", "Delay", 0, 127, 1, nil),
		ribbon("mod_depth", "Mod Depth", 0, 127, 2, nil),
		ribbon("feedback", "Feedback", 0, 127, 3, nil),
		fixed("phase", "Phase", 0, 1, 4, phase),
		fixed("lfo_tempo_sync", "LFO Tempo Sync", 0, 1, 5, offOn),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 6, nil),
		ribbon("lfo_sync_note", "LFO Sync Note", 0, 21, 7, lfoSyncNote),
		fixed("lfo_waveform", "LFO Waveform", 0, 4, 8, lfoWaveform),
		fixed("lfo_shape", "LFO Shape", 0, 127, 9, nil),
		fixed("lfo_key_sync", "LFO KeySync", 0, 1, 10, offOn),
		fixed("lfo_init_phase", "LFO Init Phase", 0, 127, 11, nil),
		fixed("lfo_spread", "LFO Spread", 0, 127, 12, nil),
		fixed("high_damp", "High Damp", 0, 100, 13, nil),
	}},

	{ID: 13, Name: "Vibrato", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		ribbon("mod_depth", "Mod Depth", 0, 127, 1, nil),
		fixed("lfo_tempo_sync", "LFO Tempo Sync", 0, 1, 2, offOn),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 3, nil),
		ribbon("lfo_sync_note", "LFO Sync Note", 0, 21, 4, lfoSyncNote),
		fixed("lfo_waveform", "LFO Waveform", 0, 4, 5, lfoWaveform),
		fixed("lfo_shape", "LFO Shape", 0, 127, 6, nil),
		fixed("lfo_key_sync", "LFO KeySync", 0, 1, 7, offOn),
		fixed("lfo_init_phase", "LFO Init Phase", 0, 127, 8, nil),
		fixed("lfo_spread", "LFO Spread", 0, 127, 9, nil),
	}},

	{ID: 14, Name: "Phaser", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("type", "Type", 0, 1, 1,
			map[int]string{0: "BLUE", 1: "U-VB"}),
		ribbon("manual", "Manual", 0, 127, 2, nil),
		ribbon("mod_depth", "Mod Depth", 0, 127, 3, nil),
		ribbon("resonance", "Resonance", 0, 127, 4, nil),
		fixed("phase", "Phase", 0, 1, 5, phase),
		fixed("lfo_tempo_sync", "LFO Tempo Sync", 0, 1, 6, offOn),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 7, nil),
		ribbon("lfo_sync_note", "LFO Sync Note", 0, 21, 8, lfoSyncNote),
		fixed("lfo_waveform", "LFO Waveform", 0, 4, 9, lfoWaveform),
		fixed("lfo_shape", "LFO Shape", 0, 127, 10, nil),
		fixed("lfo_key_sync", "LFO KeySync", 0, 1, 11, offOn),
		fixed("lfo_init_phase", "LFO Init Phase", 0, 127, 12, nil),
		fixed("lfo_spread", "LFO Spread", 0, 127, 13, nil),
	}},

	{ID: 15, Name: "Tremolo", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		ribbon("mod_depth", "Mod Depth", 0, 127, 1, nil),
		fixed("lfo_tempo_sync", "LFO Tempo Sync", 0, 1, 2, offOn),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 3, nil),
		ribbon("lfo_sync_note", "LFO Sync Note", 0, 21, 4, lfoSyncNote),
		fixed("lfo_waveform", "LFO Waveform", 0, 4, 5, lfoWaveform),
		fixed("lfo_shape", "LFO Shape", 0, 127, 6, nil),
		fixed("lfo_key_sync", "LFO KeySync", 0, 1, 7, offOn),
		fixed("lfo_init_phase", "LFO Init Phase", 0, 127, 8, nil),
		fixed("lfo_spread", "LFO Spread", 0, 127, 9, nil),
	}},

	{ID: 16, Name: "Ring Modulator", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("osc_mode", "OSC Mode", 0, 1, 1,
			map[int]string{0: "Fixed", 1: "Note"}),
		ribbon("fixed_frequency", "Fixed Frequency", 0, 127, 2, nil),
		ribbon("note_offset", "Note Offset", 0, 127, 3, nil),
		fixed("note_fine", "Note Fine", 0, 127, 4, nil),
		fixed("osc_waveform", "OSC Waveform", 0, 2, 5,
			map[int]string{0: "Saw", 1: "Triangle", 2: "Sine"}),
		ribbon("lfo_intensity", "LFO Intensity", 0, 127, 6, nil),
		fixed("lfo_tempo_sync", "LFO Tempo Sync", 0, 1, 7, offOn),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 8, nil),
		ribbon("lfo_sync_note", "LFO Sync Note", 0, 21, 9, lfoSyncNote),
		fixed("lfo_waveform", "LFO Waveform", 0, 4, 10, lfoWaveform),
		fixed("lfo_shape", "LFO Shape", 0, 127, 11, nil),
		fixed("lfo_key_sync", "LFO KeySync", 0, 1, 12, offOn),
		fixed("lfo_init_phase", "LFO Init Phase", 0, 127, 13, nil),
		fixed("pre_lpf", "Pre LPF", 0, 127, 14, nil),
	}},

	{ID: 17, Name: "Grain Shifter", Params: []EffectParam{
		ribbon("dry_wet", "Dry/Wet", 0, 127, 0, nil),
		fixed("duration_tempo_sync", "Duration Tempo Sync", 0, 1, 1, offOn),
		ribbon("time_ratio", "Time Ratio", 0, 127, 2, nil),
		fixed("duration", "Duration", 0, 127, 3, nil),
		fixed("lfo_tempo_sync", "LFO Tempo Sync", 0, 1, 4, offOn),
		ribbon("lfo_frequency", "LFO Frequency", 0, 127, 5, nil),
		ribbon("lfo_sync_note", "LFO Sync Note", 0, 21, 6, lfoSyncNote),
		fixed("lfo_key_sync", "LFO KeySync", 0, 1, 7, offOn),
		fixed("lfo_init_phase", "LFO Init Phase", 0, 127, 8, nil),
		fixed("lfo_waveform", "LFO Waveform", 0, 4, 9, lfoWaveform),
		fixed("lfo_shape", "LFO Shape", 0, 127, 10, nil),
	}},
}

// EffectTypes returns all 18 effect type definitions, ids 0..17 in order.
func EffectTypes() []EffectTypeDef {
	return effectTypes
}

// EffectType returns the definition for a type id.
func EffectType(id int) (EffectTypeDef, bool) {
	if id < 0 || id >= len(effectTypes) {
		return EffectTypeDef{}, false
	}
	return effectTypes[id], true
}
