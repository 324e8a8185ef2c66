// Package device owns the MIDI connection to the keytar: port
// lifecycle, outbound sends, and correlation of unsolicited inbound
// SysEx dumps with the requests that asked for them.
package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"patchmasta/internal/sysex"
)

var (
	// ErrNotConnected reports a send attempt with no open port.
	ErrNotConnected = errors.New("device not connected")
	// ErrBusy reports a second PullSlot while one is already waiting.
	// The pending-response cell is single-holder; callers serialize.
	ErrBusy = errors.New("a dump request is already in flight")
)

// DefaultPullDeadline bounds the wait for a single program dump.
const DefaultPullDeadline = 2 * time.Second

// Session is the request/response facade over a Transport. The device
// never replies synchronously; it answers dump requests with
// unsolicited SysEx some time later, so PullSlot installs a one-shot
// collector channel that the listener callback completes.
type Session struct {
	codec   sysex.Codec
	channel int
	log     *zap.Logger

	mu        sync.Mutex
	transport Transport
	stop      func()
	portName  string

	pendingMu sync.Mutex
	pending   chan []byte
}

// NewSession returns a disconnected session framing messages with the
// given codec on the given MIDI channel (1-16).
func NewSession(codec sysex.Codec, channel int, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{codec: codec, channel: channel, log: log}
}

// Connect attaches a transport, replacing any prior connection, and
// starts the SysEx listener.
func (s *Session) Connect(t Transport, name string) error {
	s.Disconnect()

	stop, err := t.Listen(s.handleSysEx)
	if err != nil {
		return fmt.Errorf("device i/o: %w", err)
	}

	s.mu.Lock()
	s.transport = t
	s.stop = stop
	s.portName = name
	s.mu.Unlock()

	s.log.Info("device connected", zap.String("port", name))
	return nil
}

// Disconnect stops the listener and closes the transport. Safe to call
// when already disconnected.
func (s *Session) Disconnect() {
	s.mu.Lock()
	t, stop, name := s.transport, s.stop, s.portName
	s.transport, s.stop, s.portName = nil, nil, ""
	s.mu.Unlock()

	if t == nil {
		return
	}
	if stop != nil {
		stop()
	}
	if err := t.Close(); err != nil {
		s.log.Warn("close transport", zap.Error(err))
	}
	s.log.Info("device disconnected", zap.String("port", name))
}

// Connected reports whether a transport is attached.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport != nil
}

// PortName returns the connected port name, or "".
func (s *Session) PortName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portName
}

// Channel returns the session's MIDI channel (1-16).
func (s *Session) Channel() int { return s.channel }

// Send writes raw bytes to the port.
func (s *Session) Send(msg []byte) error {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	if t == nil {
		return ErrNotConnected
	}
	if err := t.Send(msg); err != nil {
		return fmt.Errorf("device i/o: %w", err)
	}
	return nil
}

// SendNRPN transmits the three-message NRPN select+value sequence.
func (s *Session) SendNRPN(channel int, msb, lsb, value byte) error {
	ch := byte(channel-1) & 0x0F
	for _, m := range [][]byte{
		{0xB0 | ch, 99, msb & 0x7F},
		{0xB0 | ch, 98, lsb & 0x7F},
		{0xB0 | ch, 6, value & 0x7F},
	} {
		if err := s.Send(m); err != nil {
			return err
		}
	}
	return nil
}

// SendCC transmits a single control change.
func (s *Session) SendCC(channel int, cc, value byte) error {
	return s.Send([]byte{0xB0 | byte(channel-1)&0x0F, cc & 0x7F, value & 0x7F})
}

// SendNoteOn transmits a note-on.
func (s *Session) SendNoteOn(channel int, note, velocity byte) error {
	return s.Send([]byte{0x90 | byte(channel-1)&0x0F, note & 0x7F, velocity & 0x7F})
}

// SendNoteOff transmits a note-off.
func (s *Session) SendNoteOff(channel int, note byte) error {
	return s.Send([]byte{0x80 | byte(channel-1)&0x0F, note & 0x7F, 0})
}

// SendAllNotesOff transmits CC 120 (all sound off) on the channel.
func (s *Session) SendAllNotesOff(channel int) error {
	return s.SendCC(channel, 120, 0)
}

// handleSysEx is the listener callback. A parse failure just means the
// message was not a program dump for our model; those are dropped.
func (s *Session) handleSysEx(msg []byte) {
	payload, err := s.codec.ParseProgramDump(msg)
	if err != nil {
		s.log.Debug("ignoring sysex", zap.Int("len", len(msg)), zap.Error(err))
		return
	}

	s.pendingMu.Lock()
	ch := s.pending
	s.pendingMu.Unlock()
	if ch == nil {
		s.log.Debug("unsolicited program dump dropped", zap.Int("len", len(payload)))
		return
	}
	select {
	case ch <- payload:
	default:
	}
}

// acquirePending installs the one-shot collector, failing when another
// pull already holds it.
func (s *Session) acquirePending() (chan []byte, error) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if s.pending != nil {
		return nil, ErrBusy
	}
	ch := make(chan []byte, 1)
	s.pending = ch
	return ch, nil
}

func (s *Session) releasePending() {
	s.pendingMu.Lock()
	s.pending = nil
	s.pendingMu.Unlock()
}

// PullSlot selects the program on the device, requests its dump, and
// waits up to deadline for the payload. A timeout returns (nil, nil):
// the device not answering is an outcome, not an error. A zero
// deadline means DefaultPullDeadline.
func (s *Session) PullSlot(slot int, deadline time.Duration) ([]byte, error) {
	if deadline <= 0 {
		deadline = DefaultPullDeadline
	}

	ch, err := s.acquirePending()
	if err != nil {
		return nil, err
	}
	defer s.releasePending()

	pc, err := sysex.BuildProgramChange(s.channel, slot)
	if err != nil {
		return nil, err
	}
	if err := s.Send(pc); err != nil {
		return nil, err
	}

	req, err := s.codec.BuildProgramDumpRequest(s.channel, slot)
	if err != nil {
		return nil, err
	}
	if err := s.Send(req); err != nil {
		return nil, err
	}

	select {
	case payload := <-ch:
		s.log.Debug("program dump received",
			zap.Int("slot", slot), zap.Int("len", len(payload)))
		return payload, nil
	case <-time.After(deadline):
		s.log.Debug("program dump timed out", zap.Int("slot", slot))
		return nil, nil
	}
}

// SlotDump is one PullRange result. A nil Payload means that slot
// timed out.
type SlotDump struct {
	Slot    int
	Payload []byte
}

// PullRange pulls slots [start, end] sequentially. Individual timeouts
// never abort the sweep; cancellation via ctx stops it early with the
// results collected so far.
func (s *Session) PullRange(ctx context.Context, start, end int, deadlineEach time.Duration) ([]SlotDump, error) {
	var out []SlotDump
	for slot := start; slot <= end; slot++ {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		payload, err := s.PullSlot(slot, deadlineEach)
		if err != nil {
			return out, err
		}
		out = append(out, SlotDump{Slot: slot, Payload: payload})
	}
	return out, nil
}
