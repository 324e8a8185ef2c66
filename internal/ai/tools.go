package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"patchmasta/internal/audio"
	"patchmasta/internal/device"
	"patchmasta/internal/editor"
	"patchmasta/internal/params"
)

// toolKind closes the set of tools the model can invoke. Dispatch is a
// single switch over this enum; an unrecognized name maps to
// toolUnknown and becomes an error text, never a crash.
type toolKind int

const (
	toolUnknown toolKind = iota
	toolSetParameter
	toolGetParameter
	toolListParameters
	toolTriggerNote
	toolRecordAudio
	toolAnalyzeAudio
	toolCompareAudio
)

func kindOf(name string) toolKind {
	switch name {
	case "set_parameter":
		return toolSetParameter
	case "get_parameter":
		return toolGetParameter
	case "list_parameters":
		return toolListParameters
	case "trigger_note":
		return toolTriggerNote
	case "record_audio":
		return toolRecordAudio
	case "analyze_audio":
		return toolAnalyzeAudio
	case "compare_audio":
		return toolCompareAudio
	}
	return toolUnknown
}

// ToolSpecs returns the seven tools visible to the model.
func ToolSpecs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "set_parameter",
			Description: "Set a synth parameter on the connected Korg RK-100S 2. The parameter change is sent immediately via MIDI and heard in real-time.",
			Schema: json.RawMessage(`{"type":"object","properties":{
				"name":{"type":"string","description":"Parameter name (e.g., 'voice_mode', 'arp_on_off')"},
				"value":{"type":"integer","description":"Value to set (within the parameter's valid range)"}},
				"required":["name","value"]}`),
		},
		{
			Name:        "get_parameter",
			Description: "Get the current value of a synth parameter.",
			Schema: json.RawMessage(`{"type":"object","properties":{
				"name":{"type":"string","description":"Parameter name"}},
				"required":["name"]}`),
		},
		{
			Name:        "list_parameters",
			Description: "List all available synth parameters with their current values, valid ranges, and descriptions.",
			Schema:      json.RawMessage(`{"type":"object","properties":{}}`),
		},
		{
			Name:        "trigger_note",
			Description: "Play a MIDI note on the synth so we can hear or record the current sound.",
			Schema: json.RawMessage(`{"type":"object","properties":{
				"note":{"type":"integer","description":"MIDI note number (60 = middle C)","default":60},
				"velocity":{"type":"integer","description":"Note velocity (0-127)","default":100},
				"duration_ms":{"type":"integer","description":"Duration in milliseconds","default":1000}}}`),
		},
		{
			Name:        "record_audio",
			Description: "Record audio from the computer's audio input for the specified duration. Returns the file path of the recorded WAV.",
			Schema: json.RawMessage(`{"type":"object","properties":{
				"duration_s":{"type":"number","description":"Recording duration in seconds","default":2.0}}}`),
		},
		{
			Name:        "analyze_audio",
			Description: "Analyze a WAV file and return spectral characteristics: fundamental frequency, harmonic series, spectral centroid, amplitude envelope shape.",
			Schema: json.RawMessage(`{"type":"object","properties":{
				"wav_path":{"type":"string","description":"Path to the WAV file to analyze"}},
				"required":["wav_path"]}`),
		},
		{
			Name:        "compare_audio",
			Description: "Compare two audio files spectrally and return a similarity report showing which frequencies differ most.",
			Schema: json.RawMessage(`{"type":"object","properties":{
				"target_path":{"type":"string","description":"Path to the target WAV file"},
				"recorded_path":{"type":"string","description":"Path to the recorded WAV file"}},
				"required":["target_path","recorded_path"]}`),
		},
	}
}

// Executor runs tool calls against the editor, session, and analyzer.
// Every failure comes back as text the model can reason about; nothing
// raises across the tool boundary.
type Executor struct {
	registry *params.Registry
	editor   *editor.Editor
	session  *device.Session
	recorder *audio.Recorder
	log      *zap.Logger
}

// NewExecutor wires the tool executor.
func NewExecutor(registry *params.Registry, ed *editor.Editor, session *device.Session, recorder *audio.Recorder, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{registry: registry, editor: ed, session: session, recorder: recorder, log: log}
}

// Execute dispatches one tool call and returns its textual result.
func (x *Executor) Execute(call ToolCall) string {
	x.log.Info("tool call", zap.String("tool", call.Name), zap.ByteString("input", call.Input))

	switch kindOf(call.Name) {
	case toolSetParameter:
		var args struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		if err := json.Unmarshal(call.Input, &args); err != nil {
			return fmt.Sprintf("Invalid arguments: %v", err)
		}
		return x.setParameter(args.Name, args.Value)

	case toolGetParameter:
		var args struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(call.Input, &args); err != nil {
			return fmt.Sprintf("Invalid arguments: %v", err)
		}
		return x.getParameter(args.Name)

	case toolListParameters:
		return x.listParameters()

	case toolTriggerNote:
		args := struct {
			Note       int `json:"note"`
			Velocity   int `json:"velocity"`
			DurationMs int `json:"duration_ms"`
		}{Note: 60, Velocity: 100, DurationMs: 1000}
		if len(call.Input) > 0 {
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return fmt.Sprintf("Invalid arguments: %v", err)
			}
		}
		return x.triggerNote(args.Note, args.Velocity, args.DurationMs)

	case toolRecordAudio:
		args := struct {
			DurationS float64 `json:"duration_s"`
		}{DurationS: 2.0}
		if len(call.Input) > 0 {
			if err := json.Unmarshal(call.Input, &args); err != nil {
				return fmt.Sprintf("Invalid arguments: %v", err)
			}
		}
		return x.recordAudio(args.DurationS)

	case toolAnalyzeAudio:
		var args struct {
			WavPath string `json:"wav_path"`
		}
		if err := json.Unmarshal(call.Input, &args); err != nil {
			return fmt.Sprintf("Invalid arguments: %v", err)
		}
		return x.analyzeAudio(args.WavPath)

	case toolCompareAudio:
		var args struct {
			TargetPath   string `json:"target_path"`
			RecordedPath string `json:"recorded_path"`
		}
		if err := json.Unmarshal(call.Input, &args); err != nil {
			return fmt.Sprintf("Invalid arguments: %v", err)
		}
		return x.compareAudio(args.TargetPath, args.RecordedPath)
	}
	return fmt.Sprintf("Unknown tool: %s", call.Name)
}

func (x *Executor) setParameter(name string, value int) string {
	if _, ok := x.registry.Get(name); !ok {
		return fmt.Sprintf("Unknown parameter: %s", name)
	}
	if !x.session.Connected() {
		return "Device not connected"
	}
	if err := x.editor.SetParameter(name, value); err != nil {
		return fmt.Sprintf("Failed to set %s: %v", name, err)
	}
	return fmt.Sprintf("Set %s = %d", name, value)
}

func (x *Executor) getParameter(name string) string {
	v, known, err := x.editor.GetParameter(name)
	if err != nil {
		return fmt.Sprintf("Unknown parameter: %s", name)
	}
	if !known {
		return fmt.Sprintf("%s = unknown (not yet set in this session)", name)
	}
	return fmt.Sprintf("%s = %d", name, v)
}

func (x *Executor) listParameters() string {
	var lines []string
	for _, p := range x.registry.List() {
		current := "?"
		if v, known, err := x.editor.GetParameter(p.Name); err == nil && known {
			current = fmt.Sprintf("%d", v)
		}
		lines = append(lines, fmt.Sprintf("%s: %s [%d-%d] current=%s",
			p.Name, p.Description, p.Min, p.Max, current))
	}
	return strings.Join(lines, "\n")
}

func (x *Executor) triggerNote(note, velocity, durationMs int) string {
	if !x.session.Connected() {
		return "Device not connected"
	}
	ch := x.session.Channel()
	if err := x.session.SendNoteOn(ch, byte(note), byte(velocity)); err != nil {
		return fmt.Sprintf("Note on failed: %v", err)
	}
	time.Sleep(time.Duration(durationMs) * time.Millisecond)
	if err := x.session.SendNoteOff(ch, byte(note)); err != nil {
		return fmt.Sprintf("Note off failed: %v", err)
	}
	return fmt.Sprintf("Played note %d vel=%d for %dms", note, velocity, durationMs)
}

func (x *Executor) recordAudio(durationS float64) string {
	path, err := x.recorder.Record(durationS)
	if err != nil {
		return fmt.Sprintf("Recording failed: %v", err)
	}
	return path
}

func (x *Executor) analyzeAudio(wavPath string) string {
	samples, rate, err := audio.LoadWAV(wavPath)
	if err != nil {
		return fmt.Sprintf("Cannot read %s: %v", wavPath, err)
	}
	return audio.Analyze(samples, rate).String()
}

func (x *Executor) compareAudio(targetPath, recordedPath string) string {
	target, rate, err := audio.LoadWAV(targetPath)
	if err != nil {
		return fmt.Sprintf("Cannot read %s: %v", targetPath, err)
	}
	recorded, _, err := audio.LoadWAV(recordedPath)
	if err != nil {
		return fmt.Sprintf("Cannot read %s: %v", recordedPath, err)
	}
	return audio.Compare(target, recorded, rate).String()
}
