package device

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchmasta/internal/sysex"
)

// fakeTransport records outbound messages and optionally answers
// program-dump requests with a canned response.
type fakeTransport struct {
	mu      sync.Mutex
	sent    [][]byte
	onSysEx func(msg []byte)
	// respond builds the reply for an outbound message, or nil.
	respond func(msg []byte) []byte
	closed  bool
}

func (f *fakeTransport) Send(msg []byte) error {
	f.mu.Lock()
	f.sent = append(f.sent, append([]byte(nil), msg...))
	respond, onSysEx := f.respond, f.onSysEx
	f.mu.Unlock()

	if respond != nil && onSysEx != nil {
		if reply := respond(msg); reply != nil {
			go onSysEx(reply)
		}
	}
	return nil
}

func (f *fakeTransport) Listen(onSysEx func(msg []byte)) (func(), error) {
	f.mu.Lock()
	f.onSysEx = onSysEx
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.onSysEx = nil
		f.mu.Unlock()
	}, nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) sentMessages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

func newTestSession(t *testing.T) (*Session, *fakeTransport) {
	t.Helper()
	s := NewSession(sysex.NewCodec(sysex.DefaultModelID), 1, nil)
	f := &fakeTransport{}
	require.NoError(t, s.Connect(f, "fake"))
	t.Cleanup(s.Disconnect)
	return s, f
}

// cannedDump frames a program dump the way the device would answer.
func cannedDump(program byte, payload []byte) []byte {
	msg := []byte{0xF0, 0x42, 0x30, sysex.DefaultModelID, 0x40, program}
	msg = append(msg, payload...)
	return append(msg, 0xF7)
}

func TestSendRequiresConnection(t *testing.T) {
	s := NewSession(sysex.NewCodec(sysex.DefaultModelID), 1, nil)
	assert.ErrorIs(t, s.Send([]byte{0x90, 60, 100}), ErrNotConnected)
	assert.ErrorIs(t, s.SendNoteOn(1, 60, 100), ErrNotConnected)
	assert.False(t, s.Connected())
}

func TestSendNRPNBytes(t *testing.T) {
	s, f := newTestSession(t)

	require.NoError(t, s.SendNRPN(1, 0x05, 0x00, 63))
	sent := f.sentMessages()
	require.Len(t, sent, 3)
	assert.Equal(t, []byte{0xB0, 99, 5}, sent[0])
	assert.Equal(t, []byte{0xB0, 98, 0}, sent[1])
	assert.Equal(t, []byte{0xB0, 6, 63}, sent[2])
}

func TestSendNRPNChannelAndMasking(t *testing.T) {
	s, f := newTestSession(t)

	require.NoError(t, s.SendNRPN(3, 0xFF, 0x00, 0xFF))
	sent := f.sentMessages()
	require.Len(t, sent, 3)
	assert.Equal(t, byte(0xB2), sent[0][0])
	assert.Equal(t, byte(0x7F), sent[0][2])
	assert.Equal(t, byte(0x7F), sent[2][2])
}

func TestSendCCAndNotes(t *testing.T) {
	s, f := newTestSession(t)

	require.NoError(t, s.SendCC(1, 7, 100))
	require.NoError(t, s.SendNoteOn(1, 60, 100))
	require.NoError(t, s.SendNoteOff(1, 60))
	require.NoError(t, s.SendAllNotesOff(1))

	sent := f.sentMessages()
	require.Len(t, sent, 4)
	assert.Equal(t, []byte{0xB0, 7, 100}, sent[0])
	assert.Equal(t, []byte{0x90, 60, 100}, sent[1])
	assert.Equal(t, []byte{0x80, 60, 0}, sent[2])
	assert.Equal(t, []byte{0xB0, 120, 0}, sent[3])
}

func TestPullSlotReturnsPayload(t *testing.T) {
	s, f := newTestSession(t)

	payload := make([]byte, 64)
	copy(payload, "BrassLead   ")
	f.respond = func(msg []byte) []byte {
		if len(msg) >= 5 && msg[0] == 0xF0 && msg[4] == sysex.FuncProgramDumpRequest {
			return cannedDump(msg[5], payload)
		}
		return nil
	}

	got, err := s.PullSlot(7, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	// The parsed payload leads with the echoed program byte.
	assert.Equal(t, byte(7), got[0])
	assert.Equal(t, payload, got[1:])

	// A program change precedes the dump request.
	sent := f.sentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, []byte{0xC0, 7}, sent[0])
	assert.Equal(t, byte(sysex.FuncProgramDumpRequest), sent[1][4])
}

func TestPullSlotTimeout(t *testing.T) {
	s, _ := newTestSession(t)

	start := time.Now()
	got, err := s.PullSlot(3, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	// The collector is released; a second pull works.
	_, err = s.PullSlot(4, 10*time.Millisecond)
	assert.NoError(t, err)
}

func TestPullSlotIgnoresForeignSysEx(t *testing.T) {
	s, f := newTestSession(t)

	f.respond = func(msg []byte) []byte {
		if len(msg) >= 5 && msg[0] == 0xF0 && msg[4] == sysex.FuncProgramDumpRequest {
			// Wrong manufacturer; must not satisfy the pull.
			return []byte{0xF0, 0x3E, 0x30, 0x57, 0x40, 0x00, 0xF7}
		}
		return nil
	}

	got, err := s.PullSlot(0, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPullSlotSingleHolder(t *testing.T) {
	s, _ := newTestSession(t)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := s.PullSlot(0, 300*time.Millisecond)
		done <- err
	}()
	<-started
	time.Sleep(50 * time.Millisecond)

	_, err := s.PullSlot(1, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrBusy)

	assert.NoError(t, <-done)
}

func TestPullRange(t *testing.T) {
	s, f := newTestSession(t)

	payload := make([]byte, 16)
	f.respond = func(msg []byte) []byte {
		if len(msg) >= 5 && msg[0] == 0xF0 && msg[4] == sysex.FuncProgramDumpRequest {
			// Only even slots answer; odd slots time out.
			if msg[5]%2 == 0 {
				return cannedDump(msg[5], payload)
			}
		}
		return nil
	}

	results, err := s.PullRange(context.Background(), 0, 3, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.NotNil(t, results[0].Payload)
	assert.Nil(t, results[1].Payload)
	assert.NotNil(t, results[2].Payload)
	assert.Nil(t, results[3].Payload)
}

func TestPullRangeCancellation(t *testing.T) {
	s, _ := newTestSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := s.PullRange(ctx, 0, 10, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestDisconnectIdempotent(t *testing.T) {
	s, f := newTestSession(t)
	s.Disconnect()
	s.Disconnect()
	assert.False(t, s.Connected())
	assert.True(t, f.closed)
	assert.ErrorIs(t, s.Send([]byte{0x90, 60, 100}), ErrNotConnected)
}

func TestFindDevice(t *testing.T) {
	ports := []string{
		"Midi Through Port-0",
		"RK-100S 2 KEYBOARD",
		"RK-100S 2 SOUND",
	}
	idx, ok := FindDevice(ports)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	// Without a SOUND port the first match wins.
	idx, ok = FindDevice(ports[:2])
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = FindDevice([]string{"Midi Through Port-0"})
	assert.False(t, ok)
	_, ok = FindDevice(nil)
	assert.False(t, ok)
}
