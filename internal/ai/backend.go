// Package ai runs the conversational sound-design loop: an abstract
// chat backend, a typed tool executor over the device and analyzer,
// and an iterative tool-use driver with a sound-matching orchestrator.
package ai

import (
	"context"
	"encoding/json"
)

// Message is one entry of the conversation history.
type Message struct {
	Role      string // "user", "assistant", "system"
	Text      string
	ToolCalls []ToolCall
}

// ToolCall is one structured call emitted by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// AssistantTurn is a backend response: optional text plus zero or more
// tool calls. Both backends coalesce into this shape.
type AssistantTurn struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolSpec describes one tool offered to the model. Schema is a JSON
// Schema object for the tool input.
type ToolSpec struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

// Backend is a stateless chat endpoint. Implementations must be safe
// for sequential reuse; the driver never calls Chat concurrently.
type Backend interface {
	Chat(ctx context.Context, history []Message, system string, tools []ToolSpec) (AssistantTurn, error)
}
