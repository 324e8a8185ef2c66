package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"

	// DefaultClaudeModel is used when the config does not name one.
	DefaultClaudeModel = "claude-sonnet-4-20250514"
)

// ClaudeBackend talks to the Anthropic Messages API. Tools are passed
// natively; tool_use content blocks come back as ToolCalls.
type ClaudeBackend struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewClaudeBackend returns a backend for the given key and model.
// An empty model selects DefaultClaudeModel.
func NewClaudeBackend(apiKey, model string) *ClaudeBackend {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeBackend{
		apiKey: apiKey,
		model:  model,
		url:    anthropicURL,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (b *ClaudeBackend) Chat(ctx context.Context, history []Message, system string, tools []ToolSpec) (AssistantTurn, error) {
	req := anthropicRequest{
		Model:     b.model,
		MaxTokens: 4096,
		System:    system,
	}
	for _, m := range history {
		if m.Role == "system" {
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: m.Role, Content: m.Text})
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, anthropicTool{
			Name: t.Name, Description: t.Description, InputSchema: t.Schema,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return AssistantTurn{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return AssistantTurn{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", b.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return AssistantTurn{}, fmt.Errorf("claude backend: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return AssistantTurn{}, fmt.Errorf("claude backend: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return AssistantTurn{}, fmt.Errorf("claude backend: decode: %w", err)
	}
	if parsed.Error != nil {
		return AssistantTurn{}, fmt.Errorf("claude backend: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return AssistantTurn{}, fmt.Errorf("claude backend: HTTP %d", resp.StatusCode)
	}

	var turn AssistantTurn
	var texts []string
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			texts = append(texts, block.Text)
		case "tool_use":
			turn.ToolCalls = append(turn.ToolCalls, ToolCall{
				ID: block.ID, Name: block.Name, Input: block.Input,
			})
		}
	}
	turn.Text = strings.Join(texts, "\n")
	return turn, nil
}
