// Package config reads and writes the user configuration file at
// ~/.patchmasta/config.json. Keys this version does not recognize are
// carried through a load/save round-trip untouched.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"patchmasta/internal/sysex"
)

// Backend names accepted for the ai_backend key.
const (
	BackendClaude = "claude"
	BackendGroq   = "groq"
)

// Config is the recognized configuration surface. ModelID is the Korg
// SysEx model byte; it defaults to sysex.DefaultModelID and exists so
// the value can be corrected without a rebuild.
type Config struct {
	AIBackend        string
	ClaudeAPIKey     string
	GroqAPIKey       string
	AudioInputDevice string
	ModelID          byte

	path  string
	extra map[string]json.RawMessage
}

// DefaultPath returns ~/.patchmasta/config.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".patchmasta", "config.json")
}

func defaults(path string) *Config {
	return &Config{
		AIBackend: BackendClaude,
		ModelID:   sysex.DefaultModelID,
		path:      path,
		extra:     map[string]json.RawMessage{},
	}
}

var knownKeys = map[string]bool{
	"ai_backend": true, "claude_api_key": true, "groq_api_key": true,
	"audio_input_device": true, "model_id": true,
}

// Load reads the config at path (or DefaultPath when path is empty).
// A missing or unreadable file yields all defaults.
func Load(path string) *Config {
	if path == "" {
		path = DefaultPath()
	}
	c := defaults(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return c
	}

	if raw, ok := doc["ai_backend"]; ok {
		_ = json.Unmarshal(raw, &c.AIBackend)
	}
	if raw, ok := doc["claude_api_key"]; ok {
		_ = json.Unmarshal(raw, &c.ClaudeAPIKey)
	}
	if raw, ok := doc["groq_api_key"]; ok {
		_ = json.Unmarshal(raw, &c.GroqAPIKey)
	}
	if raw, ok := doc["audio_input_device"]; ok {
		_ = json.Unmarshal(raw, &c.AudioInputDevice)
	}
	if raw, ok := doc["model_id"]; ok {
		var id int
		if json.Unmarshal(raw, &id) == nil && id > 0 && id < 128 {
			c.ModelID = byte(id)
		}
	}
	for k, v := range doc {
		if !knownKeys[k] {
			c.extra[k] = v
		}
	}
	return c
}

// Save writes the config back to its path, creating the directory as
// needed and preserving unknown keys.
func (c *Config) Save() error {
	doc := map[string]any{}
	for k, v := range c.extra {
		doc[k] = v
	}
	doc["ai_backend"] = c.AIBackend
	doc["claude_api_key"] = c.ClaudeAPIKey
	doc["groq_api_key"] = c.GroqAPIKey
	doc["audio_input_device"] = c.AudioInputDevice
	doc["model_id"] = int(c.ModelID)

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// Path returns the file this config loads from and saves to.
func (c *Config) Path() string { return c.path }
