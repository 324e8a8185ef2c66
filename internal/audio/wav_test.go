package audio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	original := Tone(440, 0.5, DefaultSampleRate)
	require.NoError(t, SaveWAV(path, original, DefaultSampleRate))

	loaded, rate, err := LoadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleRate, rate)
	require.Len(t, loaded, len(original))

	// 16-bit quantization keeps samples within one LSB.
	for i := 0; i < len(original); i += 997 {
		assert.InDelta(t, original[i], loaded[i], 1.0/16384, "sample %d", i)
	}

	// The spectral features survive the trip.
	report := Analyze(loaded, rate)
	assert.InDelta(t, 440, report.FundamentalHz, 10)
}

func TestSaveWAVClipsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")
	samples := []float32{2.0, -2.0, 0.5}
	require.NoError(t, SaveWAV(path, samples, DefaultSampleRate))

	loaded, _, err := LoadWAV(path)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.InDelta(t, 1.0, loaded[0], 0.001)
	assert.InDelta(t, -1.0, loaded[1], 0.001)
	assert.InDelta(t, 0.5, loaded[2], 0.001)
}

func TestLoadWAVMissingFile(t *testing.T) {
	_, _, err := LoadWAV(filepath.Join(t.TempDir(), "nope.wav"))
	assert.Error(t, err)
}
