package sysex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProgramDumpRequest(t *testing.T) {
	c := NewCodec(DefaultModelID)

	msg, err := c.BuildProgramDumpRequest(1, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x42, 0x30, 0x57, 0x10, 0x05, 0xF7}, msg)

	msg, err = c.BuildProgramDumpRequest(16, 127)
	require.NoError(t, err)
	assert.Equal(t, byte(0x3F), msg[2])
	assert.Equal(t, byte(0x7F), msg[5])

	// Program index keeps only the low 7 bits.
	msg, err = c.BuildProgramDumpRequest(1, 130)
	require.NoError(t, err)
	assert.Equal(t, byte(130&0x7F), msg[5])

	_, err = c.BuildProgramDumpRequest(0, 0)
	assert.ErrorIs(t, err, ErrChannelOutOfRange)
	_, err = c.BuildProgramDumpRequest(17, 0)
	assert.ErrorIs(t, err, ErrChannelOutOfRange)
}

func TestBuildAllDumpRequest(t *testing.T) {
	c := NewCodec(DefaultModelID)
	msg, err := c.BuildAllDumpRequest(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x42, 0x32, 0x57, 0x0E, 0xF7}, msg)
}

func TestProgramWriteRoundTrip(t *testing.T) {
	c := NewCodec(DefaultModelID)
	payload := bytes.Repeat([]byte{0x01, 0x7F, 0x00}, 40)

	for _, channel := range []int{1, 7, 16} {
		for _, program := range []int{0, 63, 127} {
			msg, err := c.BuildProgramWrite(channel, program, payload)
			require.NoError(t, err)

			parsed, err := c.ParseProgramDump(msg)
			require.NoError(t, err)
			// The parsed payload starts with the program byte the
			// write frame carries ahead of the data.
			assert.Equal(t, byte(program), parsed[0])
			assert.Equal(t, payload, parsed[1:])
		}
	}
}

func TestParseProgramDumpRejections(t *testing.T) {
	c := NewCodec(DefaultModelID)

	cases := map[string][]byte{
		"too short":          {0xF0, 0x42, 0x30, 0x57, 0xF7},
		"not sysex":          {0x90, 0x42, 0x30, 0x57, 0x40, 0x00, 0xF7},
		"wrong manufacturer": {0xF0, 0x3E, 0x30, 0x57, 0x40, 0x00, 0xF7},
		"wrong model":        {0xF0, 0x42, 0x30, 0x58, 0x40, 0x00, 0xF7},
		"wrong function":     {0xF0, 0x42, 0x30, 0x57, 0x10, 0x00, 0xF7},
		"no terminator":      {0xF0, 0x42, 0x30, 0x57, 0x40, 0x00, 0x00},
	}
	for name, msg := range cases {
		_, err := c.ParseProgramDump(msg)
		assert.ErrorIs(t, err, ErrNotAKorgDump, name)
	}
}

func TestParseProgramDumpIgnoresChannelByte(t *testing.T) {
	c := NewCodec(DefaultModelID)
	// Channel byte 0x3F (channel 16) on a codec that framed nothing
	// itself; any global channel is accepted.
	msg := []byte{0xF0, 0x42, 0x3F, 0x57, 0x40, 0x01, 0x02, 0x03, 0xF7}
	payload, err := c.ParseProgramDump(msg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, payload)
}

func TestBuildProgramChange(t *testing.T) {
	msg, err := BuildProgramChange(1, 42)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, 42}, msg)

	msg, err = BuildProgramChange(3, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC2, 0}, msg)

	_, err = BuildProgramChange(0, 0)
	assert.ErrorIs(t, err, ErrChannelOutOfRange)
}

func TestExtractPatchName(t *testing.T) {
	pad := func(name string) []byte {
		payload := make([]byte, 64)
		copy(payload, name)
		for i := len(name); i < NameLength; i++ {
			payload[i] = ' '
		}
		return payload
	}

	assert.Equal(t, "BrassLead", ExtractPatchName(pad("BrassLead")))
	assert.Equal(t, "Pad", ExtractPatchName(pad("Pad")))

	// Unprintable bytes inside the name field are dropped.
	payload := pad("Init")
	payload[2] = 0x01
	assert.Equal(t, "Int", ExtractPatchName(payload))

	assert.Equal(t, "", ExtractPatchName(nil))
	assert.Equal(t, "", ExtractPatchName([]byte("short")))
	assert.Equal(t, "", ExtractPatchName(pad("")))
}
