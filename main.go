package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"

	"patchmasta/internal/ai"
	"patchmasta/internal/audio"
	"patchmasta/internal/config"
	"patchmasta/internal/device"
	"patchmasta/internal/editor"
	"patchmasta/internal/library"
	"patchmasta/internal/params"
	"patchmasta/internal/sysex"
)

const midiChannel = 1

// app bundles everything a subcommand needs.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	codec    sysex.Codec
	registry *params.Registry
	session  *device.Session
	editor   *editor.Editor
	recorder *audio.Recorder
	library  *library.Library
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load("")
	codec := sysex.NewCodec(cfg.ModelID)
	registry := params.NewRegistry()
	session := device.NewSession(codec, midiChannel, logger.Named("device"))
	ed := editor.New(registry, codec, session, logger.Named("editor"))
	recorder := audio.NewRecorder(cfg.AudioInputDevice, "", logger.Named("audio"))

	home, _ := os.UserHomeDir()
	lib, err := library.Open(filepath.Join(home, ".patchmasta", "library"), logger.Named("library"))
	if err != nil {
		logger.Fatal("open library", zap.Error(err))
	}

	a := &app{
		cfg: cfg, log: logger, codec: codec, registry: registry,
		session: session, editor: ed, recorder: recorder, library: lib,
	}
	defer session.Disconnect()

	switch os.Args[1] {
	case "ports":
		a.cmdPorts()
	case "pull":
		a.cmdPull(os.Args[2:])
	case "push":
		a.cmdPush(os.Args[2:])
	case "play":
		a.cmdPlay(os.Args[2:])
	case "chat":
		a.cmdChat()
	case "match":
		a.cmdMatch(os.Args[2:])
	case "mcp":
		a.cmdMCP()
	default:
		usage()
		logger.Fatal("unknown command", zap.String("command", os.Args[1]))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: patchmasta <command>

commands:
  ports              list MIDI ports and mark the detected keytar
  pull <slot> [out]  pull one program; save it into the library (or to out)
  push <slot> <syx>  write a stored program dump to the device
  play [notes]       play test notes, or a note sequence like "C4 E4 G4"
  chat               interactive AI sound-design session
  match <wav>        AI sound-matching loop against a target recording
  mcp                serve the synth tools over MCP stdio`)
}

// connect locates the keytar and attaches the session to it.
func (a *app) connect() error {
	outNames := device.ListPorts()
	outIdx, ok := device.FindDevice(outNames)
	if !ok {
		return fmt.Errorf("no MIDI output looks like an RK-100S 2 (have: %s)",
			strings.Join(outNames, ", "))
	}

	ins := midi.GetInPorts()
	inNames := make([]string, 0, len(ins))
	for _, in := range ins {
		inNames = append(inNames, in.String())
	}
	inIdx, ok := device.FindDevice(inNames)
	if !ok {
		return fmt.Errorf("no MIDI input looks like an RK-100S 2")
	}

	transport, err := device.OpenPorts(outIdx, inIdx)
	if err != nil {
		return err
	}
	return a.session.Connect(transport, outNames[outIdx])
}

func (a *app) cmdPorts() {
	names := device.ListPorts()
	if len(names) == 0 {
		fmt.Println("no MIDI outputs available")
		return
	}
	match, _ := device.FindDevice(names)
	for i, name := range names {
		marker := "  "
		if i == match {
			marker = "* "
		}
		fmt.Printf("%s[%d] %s\n", marker, i, name)
	}
}

func (a *app) cmdPull(args []string) {
	if len(args) < 1 {
		a.log.Fatal("pull needs a slot number")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 0 || slot > 199 {
		a.log.Fatal("slot must be 0-199", zap.String("arg", args[0]))
	}
	if err := a.connect(); err != nil {
		a.log.Fatal("connect", zap.Error(err))
	}

	payload, err := a.session.PullSlot(slot, 0)
	if err != nil {
		a.log.Fatal("pull", zap.Error(err))
	}
	if payload == nil {
		a.log.Fatal("device did not answer", zap.Int("slot", slot))
	}

	a.editor.LoadPayload(slot, payload)
	name := a.editor.Name()

	if len(args) > 1 {
		if err := os.WriteFile(args[1], payload, 0o644); err != nil {
			a.log.Fatal("write", zap.Error(err))
		}
		fmt.Printf("pulled %q (slot %d, %d bytes) to %s\n", name, slot, len(payload), args[1])
		return
	}

	patch := &library.Patch{Name: name, ProgramNumber: slot, SysExData: payload}
	path, err := a.library.SavePatch(patch)
	if err != nil {
		a.log.Fatal("save patch", zap.Error(err))
	}
	fmt.Printf("pulled %q (slot %d, %d bytes) to %s\n", name, slot, len(payload), path)
}

func (a *app) cmdPush(args []string) {
	if len(args) < 2 {
		a.log.Fatal("push needs a slot number and a .syx file")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 0 || slot > 199 {
		a.log.Fatal("slot must be 0-199", zap.String("arg", args[0]))
	}
	payload, err := os.ReadFile(args[1])
	if err != nil {
		a.log.Fatal("read", zap.Error(err))
	}
	if err := a.connect(); err != nil {
		a.log.Fatal("connect", zap.Error(err))
	}

	msg, err := a.codec.BuildProgramWrite(midiChannel, slot, payload)
	if err != nil {
		a.log.Fatal("frame program write", zap.Error(err))
	}
	if err := a.session.Send(msg); err != nil {
		a.log.Fatal("send", zap.Error(err))
	}
	fmt.Printf("pushed %d bytes to slot %d\n", len(payload), slot)
}

func (a *app) cmdPlay(args []string) {
	if err := a.connect(); err != nil {
		a.log.Fatal("connect", zap.Error(err))
	}
	if len(args) > 0 {
		if err := playNotesFromText(a.session, strings.Join(args, " ")); err != nil {
			a.log.Fatal("play", zap.Error(err))
		}
		return
	}
	if err := playTestNotes(a.session); err != nil {
		a.log.Fatal("play", zap.Error(err))
	}
}

func (a *app) newDriver() *ai.Driver {
	var backend ai.Backend
	switch a.cfg.AIBackend {
	case config.BackendGroq:
		backend = ai.NewGroqBackend(a.cfg.GroqAPIKey, "")
	default:
		backend = ai.NewClaudeBackend(a.cfg.ClaudeAPIKey, "")
	}
	exec := ai.NewExecutor(a.registry, a.editor, a.session, a.recorder, a.log.Named("tools"))
	return ai.NewDriver(backend, exec, a.log.Named("ai"))
}

func (a *app) cmdChat() {
	if err := a.connect(); err != nil {
		a.log.Warn("continuing without device", zap.Error(err))
	}
	driver := a.newDriver()
	go printEvents(driver.Events())

	fmt.Println("Describe the sound you want (ctrl-D to quit):")
	scanner := newStdinScanner()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := driver.Chat(context.Background(), line); err != nil {
			a.log.Error("chat", zap.Error(err))
		}
	}
}

func (a *app) cmdMatch(args []string) {
	if len(args) < 1 {
		a.log.Fatal("match needs a target WAV path")
	}
	if err := a.connect(); err != nil {
		a.log.Fatal("connect", zap.Error(err))
	}
	driver := a.newDriver()
	go printEvents(driver.Events())

	if err := driver.MatchSound(context.Background(), args[0], 0); err != nil {
		a.log.Fatal("match", zap.Error(err))
	}
}

func printEvents(events <-chan ai.Event) {
	for ev := range events {
		switch ev.Kind {
		case ai.EventText:
			fmt.Println(ev.Text)
		case ai.EventTool:
			fmt.Printf("  [%s] %s\n", ev.Tool, ev.Result)
		case ai.EventError:
			fmt.Fprintf(os.Stderr, "error: %s\n", ev.Text)
		}
	}
}
