package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"patchmasta/internal/ai"
)

// cmdMCP serves the synth tools over MCP stdio. The handlers go
// through the same tool executor the chat driver uses, so MCP clients
// and the AI loop see identical behavior.
func (a *app) cmdMCP() {
	if err := a.connect(); err != nil {
		a.log.Warn("serving MCP without device", zap.Error(err))
	}
	exec := ai.NewExecutor(a.registry, a.editor, a.session, a.recorder, a.log.Named("tools"))

	s := server.NewMCPServer(
		"patchmasta",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	execHandler := func(name string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			input, err := json.Marshal(request.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result := exec.Execute(ai.ToolCall{Name: name, Input: input})
			return mcp.NewToolResultText(result), nil
		}
	}

	setParam := mcp.NewTool("rk100s_set-parameter",
		mcp.WithDescription("Sets a synth parameter on the RK-100S 2 in real-time via MIDI."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Parameter name (e.g., 'voice_mode', 'arp_on_off').")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("Value within the parameter's valid range.")),
	)
	s.AddTool(setParam, execHandler("set_parameter"))

	getParam := mcp.NewTool("rk100s_get-parameter",
		mcp.WithDescription("Returns the current value of a synth parameter."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Parameter name.")),
	)
	s.AddTool(getParam, execHandler("get_parameter"))

	listParams := mcp.NewTool("rk100s_list-parameters",
		mcp.WithDescription("Lists all synth parameters with descriptions, ranges, and current values."),
	)
	s.AddTool(listParams, execHandler("list_parameters"))

	triggerNote := mcp.NewTool("rk100s_trigger-note",
		mcp.WithDescription("Plays a MIDI note on the keytar."),
		mcp.WithNumber("note", mcp.Description("MIDI note number (60 = middle C).")),
		mcp.WithNumber("velocity", mcp.Description("Note velocity (0-127).")),
		mcp.WithNumber("duration_ms", mcp.Description("Duration in milliseconds.")),
	)
	s.AddTool(triggerNote, execHandler("trigger_note"))

	analyze := mcp.NewTool("rk100s_analyze-audio",
		mcp.WithDescription("Analyzes a WAV file: fundamental, spectral centroid, harmonic ratio, envelope."),
		mcp.WithString("wav_path", mcp.Required(), mcp.Description("Path to the WAV file.")),
	)
	s.AddTool(analyze, execHandler("analyze_audio"))

	compare := mcp.NewTool("rk100s_compare-audio",
		mcp.WithDescription("Compares two WAV files spectrally and reports their distance."),
		mcp.WithString("target_path", mcp.Required(), mcp.Description("Path to the target WAV file.")),
		mcp.WithString("recorded_path", mcp.Required(), mcp.Description("Path to the recorded WAV file.")),
	)
	s.AddTool(compare, execHandler("compare_audio"))

	pullPatch := mcp.NewTool("rk100s_pull-patch",
		mcp.WithDescription("Pulls a program dump from the keytar and loads it for editing."),
		mcp.WithNumber("slot", mcp.Required(), mcp.Description("Program slot (0-199).")),
	)
	s.AddTool(pullPatch, func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slot, err := request.RequireInt("slot")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		payload, err := a.session.PullSlot(slot, 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if payload == nil {
			return mcp.NewToolResultError(fmt.Sprintf("slot %d: device did not answer", slot)), nil
		}
		a.editor.LoadPayload(slot, payload)
		return mcp.NewToolResultText(fmt.Sprintf("Loaded %q from slot %d (%d bytes).",
			a.editor.Name(), slot, len(payload))), nil
	})

	playNotes := mcp.NewTool("rk100s_play-test-notes",
		mcp.WithDescription("Plays a short arpeggio on the keytar to audition the current sound."),
	)
	s.AddTool(playNotes, func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := playTestNotes(a.session); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Test notes played."), nil
	})

	a.log.Info("starting MCP server")
	if err := server.ServeStdio(s); err != nil {
		a.log.Error("MCP server", zap.Error(err))
	}
}
