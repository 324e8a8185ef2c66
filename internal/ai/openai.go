package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"

	// DefaultGroqModel is used when the config does not name one.
	DefaultGroqModel = "llama-3.3-70b-versatile"
)

// OpenAIBackend talks to an OpenAI-compatible Chat Completions
// endpoint (Groq by default). Tools are wrapped as function
// definitions; tool arguments arrive as JSON strings.
type OpenAIBackend struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGroqBackend returns an OpenAI-compatible backend pointed at Groq.
func NewGroqBackend(apiKey, model string) *OpenAIBackend {
	if model == "" {
		model = DefaultGroqModel
	}
	return &OpenAIBackend{
		apiKey:  apiKey,
		model:   model,
		baseURL: groqBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type oaiFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

type oaiTool struct {
	Type     string      `json:"type"`
	Function oaiFunction `json:"function"`
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiRequest struct {
	Model     string       `json:"model"`
	Messages  []oaiMessage `json:"messages"`
	MaxTokens int          `json:"max_tokens"`
	Tools     []oaiTool    `json:"tools,omitempty"`
}

type oaiResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (b *OpenAIBackend) Chat(ctx context.Context, history []Message, system string, tools []ToolSpec) (AssistantTurn, error) {
	req := oaiRequest{
		Model:     b.model,
		MaxTokens: 4096,
		Messages:  []oaiMessage{{Role: "system", Content: system}},
	}
	for _, m := range history {
		if m.Role == "system" {
			continue
		}
		req.Messages = append(req.Messages, oaiMessage{Role: m.Role, Content: m.Text})
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, oaiTool{
			Type: "function",
			Function: oaiFunction{
				Name: t.Name, Description: t.Description, Parameters: t.Schema,
			},
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return AssistantTurn{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return AssistantTurn{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return AssistantTurn{}, fmt.Errorf("groq backend: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return AssistantTurn{}, fmt.Errorf("groq backend: %w", err)
	}

	var parsed oaiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return AssistantTurn{}, fmt.Errorf("groq backend: decode: %w", err)
	}
	if parsed.Error != nil {
		return AssistantTurn{}, fmt.Errorf("groq backend: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return AssistantTurn{}, fmt.Errorf("groq backend: HTTP %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return AssistantTurn{}, fmt.Errorf("groq backend: empty response")
	}

	choice := parsed.Choices[0].Message
	turn := AssistantTurn{Text: choice.Content}
	for _, tc := range choice.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: json.RawMessage(tc.Function.Arguments),
		})
	}
	return turn, nil
}
