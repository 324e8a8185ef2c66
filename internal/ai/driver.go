package ai

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"patchmasta/internal/audio"
)

// systemPrompt frames every conversation.
const systemPrompt = `You are an AI sound designer for the Korg RK-100S 2 keytar synthesizer.
You can control synth parameters in real-time via MIDI. When the user describes a sound they want,
translate their description into parameter changes.

Available parameter categories:
- Arpeggiator: on/off, latch, type, gate, select
- Voice: mode (single/layer/split/multi)
- Virtual Patches: 5 modulation routings (source -> destination with intensity)
- Vocoder: on/off, fc modulation source

When matching a sound from a WAV file:
1. First analyze the WAV to understand its spectral characteristics
2. Set initial parameters based on your analysis
3. Trigger a note, record the output, and compare
4. Iteratively adjust parameters to minimize the spectral difference

Think step-by-step about which parameters affect which sonic qualities.`

// DefaultMatchIterations caps the sound-matching loop.
const DefaultMatchIterations = 10

// EventKind tags driver events.
type EventKind int

const (
	// EventText carries assistant text output.
	EventText EventKind = iota
	// EventTool carries the name and result of an executed tool.
	EventTool
	// EventError carries a backend failure; the turn has terminated.
	EventError
	// EventDone marks the end of a turn.
	EventDone
)

// Event is one observable driver occurrence. Workers never touch the
// consumer's state directly; everything flows through this channel.
type Event struct {
	Kind   EventKind
	Text   string
	Tool   string
	Result string
}

// Driver runs the multi-turn tool-use loop. One turn may span many
// backend invocations; the loop is iterative with an explicit stop
// flag, never recursive.
type Driver struct {
	backend Backend
	exec    *Executor
	log     *zap.Logger

	mu      sync.Mutex
	history []Message

	stop   atomic.Bool
	events chan Event
}

// NewDriver wires a driver over a backend and tool executor.
func NewDriver(backend Backend, exec *Executor, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		backend: backend,
		exec:    exec,
		log:     log,
		events:  make(chan Event, 128),
	}
}

// Events is the consumer side of the driver's event stream.
func (d *Driver) Events() <-chan Event { return d.events }

// History returns a copy of the conversation so far.
func (d *Driver) History() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Message(nil), d.history...)
}

// Reset clears the conversation history.
func (d *Driver) Reset() {
	d.mu.Lock()
	d.history = nil
	d.mu.Unlock()
}

// Stop requests termination of the running turn. It takes effect at
// the next loop head; an in-flight backend call is not interrupted.
func (d *Driver) Stop() { d.stop.Store(true) }

// Send appends a user message and runs the tool-use loop on a
// background goroutine. Results arrive on Events.
func (d *Driver) Send(ctx context.Context, userText string) {
	go func() {
		if err := d.Chat(ctx, userText); err != nil {
			d.emit(Event{Kind: EventError, Text: err.Error()})
		}
		d.emit(Event{Kind: EventDone})
	}()
}

// Chat appends a user message and runs the tool-use loop to
// completion on the calling goroutine (0 = unlimited backend turns).
func (d *Driver) Chat(ctx context.Context, userText string) error {
	return d.run(ctx, userText, 0)
}

func (d *Driver) run(ctx context.Context, userText string, maxTurns int) error {
	d.stop.Store(false)
	d.mu.Lock()
	d.history = append(d.history, Message{Role: "user", Text: userText})
	d.mu.Unlock()

	tools := ToolSpecs()
	turns := 0
	for {
		if d.stop.Load() {
			d.emit(Event{Kind: EventText, Text: "Stopped by user."})
			return nil
		}
		if maxTurns > 0 && turns >= maxTurns {
			d.log.Info("turn limit reached", zap.Int("turns", turns))
			return nil
		}

		turn, err := d.backend.Chat(ctx, d.History(), systemPrompt, tools)
		if err != nil {
			return fmt.Errorf("backend: %w", err)
		}
		turns++

		if turn.Text != "" {
			d.emit(Event{Kind: EventText, Text: turn.Text})
		}

		d.mu.Lock()
		d.history = append(d.history, Message{
			Role: "assistant", Text: turn.Text, ToolCalls: turn.ToolCalls,
		})
		d.mu.Unlock()

		if len(turn.ToolCalls) == 0 {
			return nil
		}

		for _, call := range turn.ToolCalls {
			result := d.exec.Execute(call)
			d.emit(Event{Kind: EventTool, Tool: call.Name, Result: result})
			d.mu.Lock()
			d.history = append(d.history, Message{
				Role: "user",
				Text: fmt.Sprintf("Tool result for %s: %s", call.Name, result),
			})
			d.mu.Unlock()
		}
	}
}

// MatchSound analyzes the target WAV locally and drives the model
// through the trigger-record-compare cycle, capped at maxIterations
// full backend turns (0 selects DefaultMatchIterations). Convergence
// is the model's job; the cap is the safety net.
func (d *Driver) MatchSound(ctx context.Context, wavPath string, maxIterations int) error {
	if maxIterations <= 0 {
		maxIterations = DefaultMatchIterations
	}

	samples, rate, err := audio.LoadWAV(wavPath)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	report := audio.Analyze(samples, rate)

	seed := fmt.Sprintf(
		"Match this sound on the synthesizer. Target file: %s\n"+
			"Target analysis: %s\n"+
			"Make an initial best-guess parameter setting, then iterate: "+
			"trigger a note, record the output, compare it against the target file, "+
			"and adjust parameters to reduce the distance.",
		wavPath, report)
	return d.run(ctx, seed, maxIterations)
}

// emit never blocks; when the consumer lags, the event is dropped and
// logged so the loop cannot deadlock.
func (d *Driver) emit(ev Event) {
	select {
	case d.events <- ev:
	default:
		d.log.Warn("event dropped", zap.Int("kind", int(ev.Kind)))
	}
}
