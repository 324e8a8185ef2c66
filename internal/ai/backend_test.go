package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claudeServer(t *testing.T, status int, response string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
}

func TestClaudeBackendTextAndTools(t *testing.T) {
	var req map[string]any
	srv := claudeServer(t, http.StatusOK, `{
		"content": [
			{"type": "text", "text": "raising the cutoff"},
			{"type": "tool_use", "id": "tu_1", "name": "set_parameter",
			 "input": {"name": "voice_mode", "value": 2}},
			{"type": "text", "text": "then a note"}
		]
	}`, &req)
	defer srv.Close()

	b := NewClaudeBackend("test-key", "")
	b.url = srv.URL

	history := []Message{{Role: "user", Text: "brighter please"}}
	turn, err := b.Chat(context.Background(), history, "be a sound designer", ToolSpecs())
	require.NoError(t, err)

	assert.Equal(t, "raising the cutoff\nthen a note", turn.Text)
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, "tu_1", turn.ToolCalls[0].ID)
	assert.Equal(t, "set_parameter", turn.ToolCalls[0].Name)
	assert.JSONEq(t, `{"name":"voice_mode","value":2}`, string(turn.ToolCalls[0].Input))

	// The request carried the model, system prompt, history, and tools.
	assert.Equal(t, DefaultClaudeModel, req["model"])
	assert.Equal(t, "be a sound designer", req["system"])
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
	assert.Len(t, req["tools"].([]any), len(ToolSpecs()))
}

func TestClaudeBackendAPIError(t *testing.T) {
	srv := claudeServer(t, http.StatusBadRequest,
		`{"error": {"message": "invalid x-api-key"}}`, nil)
	defer srv.Close()

	b := NewClaudeBackend("test-key", "")
	b.url = srv.URL

	_, err := b.Chat(context.Background(), nil, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestClaudeBackendHTTPError(t *testing.T) {
	srv := claudeServer(t, http.StatusInternalServerError, `{}`, nil)
	defer srv.Close()

	b := NewClaudeBackend("test-key", "")
	b.url = srv.URL

	_, err := b.Chat(context.Background(), nil, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func groqServer(t *testing.T, response string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.Write([]byte(response))
	}))
}

func TestGroqBackendTextAndTools(t *testing.T) {
	var req map[string]any
	srv := groqServer(t, `{
		"choices": [{"message": {
			"content": "on it",
			"tool_calls": [{"id": "call_1", "function": {
				"name": "get_parameter",
				"arguments": "{\"name\":\"voice_mode\"}"
			}}]
		}}]
	}`, &req)
	defer srv.Close()

	b := NewGroqBackend("test-key", "")
	b.baseURL = srv.URL

	history := []Message{{Role: "user", Text: "what mode?"}}
	turn, err := b.Chat(context.Background(), history, "system text", ToolSpecs())
	require.NoError(t, err)

	assert.Equal(t, "on it", turn.Text)
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, "call_1", turn.ToolCalls[0].ID)
	assert.Equal(t, "get_parameter", turn.ToolCalls[0].Name)
	// The JSON-string arguments decode like a native object.
	assert.JSONEq(t, `{"name":"voice_mode"}`, string(turn.ToolCalls[0].Input))

	// System prompt travels as the first message.
	assert.Equal(t, DefaultGroqModel, req["model"])
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "system text", msgs[0].(map[string]any)["content"])

	// Tools are function-wrapped.
	tools := req["tools"].([]any)
	require.Len(t, tools, len(ToolSpecs()))
	assert.Equal(t, "function", tools[0].(map[string]any)["type"])
}

func TestGroqBackendErrors(t *testing.T) {
	srv := groqServer(t, `{"error": {"message": "model decommissioned"}}`, nil)
	defer srv.Close()

	b := NewGroqBackend("test-key", "")
	b.baseURL = srv.URL

	_, err := b.Chat(context.Background(), nil, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model decommissioned")
}

func TestGroqBackendEmptyChoices(t *testing.T) {
	srv := groqServer(t, `{"choices": []}`, nil)
	defer srv.Close()

	b := NewGroqBackend("test-key", "")
	b.baseURL = srv.URL

	_, err := b.Chat(context.Background(), nil, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}
