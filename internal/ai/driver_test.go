package ai

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchmasta/internal/audio"
	"patchmasta/internal/device"
	"patchmasta/internal/editor"
	"patchmasta/internal/params"
	"patchmasta/internal/sysex"
)

// scriptedBackend returns canned turns in order and records what it
// was called with.
type scriptedBackend struct {
	mu      sync.Mutex
	turns   []AssistantTurn
	calls   int
	history [][]Message
	onChat  func()
}

func (b *scriptedBackend) Chat(_ context.Context, history []Message, _ string, _ []ToolSpec) (AssistantTurn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, append([]Message(nil), history...))
	if b.onChat != nil {
		b.onChat()
	}
	if b.calls >= len(b.turns) {
		return AssistantTurn{Text: "done"}, nil
	}
	turn := b.turns[b.calls]
	b.calls++
	return turn, nil
}

func newTestDriver(backend Backend) *Driver {
	registry := params.NewRegistry()
	codec := sysex.NewCodec(sysex.DefaultModelID)
	session := device.NewSession(codec, 1, nil)
	ed := editor.New(registry, codec, session, nil)
	recorder := audio.NewRecorder("", "", nil)
	exec := NewExecutor(registry, ed, session, recorder, nil)
	return NewDriver(backend, exec, nil)
}

func TestLoopTerminatesWithoutToolCalls(t *testing.T) {
	backend := &scriptedBackend{turns: []AssistantTurn{{Text: "a warm pad, got it"}}}
	d := newTestDriver(backend)

	require.NoError(t, d.Chat(context.Background(), "make a warm pad"))
	assert.Equal(t, 1, backend.calls)

	history := d.History()
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "a warm pad, got it", history[1].Text)
}

func TestLoopExecutesToolThenTerminates(t *testing.T) {
	backend := &scriptedBackend{turns: []AssistantTurn{
		{
			Text: "checking the voice mode",
			ToolCalls: []ToolCall{{
				ID: "tc1", Name: "get_parameter",
				Input: json.RawMessage(`{"name":"voice_mode"}`),
			}},
		},
		{Text: "all set"},
	}}
	d := newTestDriver(backend)

	require.NoError(t, d.Chat(context.Background(), "what mode are we in?"))
	assert.Equal(t, 2, backend.calls)

	history := d.History()
	require.Len(t, history, 4)
	assert.Equal(t, "assistant", history[1].Role)
	require.Len(t, history[1].ToolCalls, 1)
	assert.Equal(t, "user", history[2].Role)
	assert.Contains(t, history[2].Text, "Tool result for get_parameter")
	assert.Contains(t, history[2].Text, "voice_mode = unknown")

	// The second backend call saw the tool result.
	require.Len(t, backend.history, 2)
	secondCall := backend.history[1]
	assert.Contains(t, secondCall[len(secondCall)-1].Text, "Tool result for get_parameter")
}

func TestLoopEmitsEvents(t *testing.T) {
	backend := &scriptedBackend{turns: []AssistantTurn{
		{
			ToolCalls: []ToolCall{{
				ID: "tc1", Name: "list_parameters", Input: json.RawMessage(`{}`),
			}},
		},
		{Text: "here you go"},
	}}
	d := newTestDriver(backend)
	require.NoError(t, d.Chat(context.Background(), "list everything"))

	var kinds []EventKind
	for len(d.Events()) > 0 {
		kinds = append(kinds, (<-d.Events()).Kind)
	}
	assert.Equal(t, []EventKind{EventTool, EventText}, kinds)
}

func TestStopRequestEndsLoop(t *testing.T) {
	backend := &scriptedBackend{turns: []AssistantTurn{
		{ToolCalls: []ToolCall{{ID: "tc1", Name: "list_parameters", Input: json.RawMessage(`{}`)}}},
		{ToolCalls: []ToolCall{{ID: "tc2", Name: "list_parameters", Input: json.RawMessage(`{}`)}}},
		{Text: "never reached"},
	}}
	d := newTestDriver(backend)
	backend.onChat = d.Stop

	require.NoError(t, d.Chat(context.Background(), "go"))
	// Stop is observed at the loop head after the first turn's tools ran.
	assert.Equal(t, 1, backend.calls)
}

func TestBackendErrorSurfaces(t *testing.T) {
	d := newTestDriver(failingBackend{})
	err := d.Chat(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

type failingBackend struct{}

func (failingBackend) Chat(context.Context, []Message, string, []ToolSpec) (AssistantTurn, error) {
	return AssistantTurn{}, assert.AnError
}

func TestMatchSoundCapsIterations(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.wav")
	require.NoError(t, audio.SaveWAV(target, audio.Tone(440, 0.5, audio.DefaultSampleRate), audio.DefaultSampleRate))

	// A backend that always wants another tool call would loop forever
	// without the iteration cap.
	backend := &scriptedBackend{}
	endless := AssistantTurn{ToolCalls: []ToolCall{{
		ID: "tc", Name: "get_parameter", Input: json.RawMessage(`{"name":"voice_mode"}`),
	}}}
	backend.turns = []AssistantTurn{endless, endless, endless, endless, endless}

	d := newTestDriver(backend)
	require.NoError(t, d.MatchSound(context.Background(), target, 3))
	assert.Equal(t, 3, backend.calls)

	// The seed message carries the local analysis.
	history := d.History()
	require.NotEmpty(t, history)
	assert.Contains(t, history[0].Text, target)
	assert.Contains(t, history[0].Text, "fundamental")
}

func TestMatchSoundMissingTarget(t *testing.T) {
	d := newTestDriver(&scriptedBackend{})
	err := d.MatchSound(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), 3)
	assert.Error(t, err)
}

func TestResetClearsHistory(t *testing.T) {
	backend := &scriptedBackend{turns: []AssistantTurn{{Text: "ok"}}}
	d := newTestDriver(backend)
	require.NoError(t, d.Chat(context.Background(), "hi"))
	require.NotEmpty(t, d.History())
	d.Reset()
	assert.Empty(t, d.History())
}
