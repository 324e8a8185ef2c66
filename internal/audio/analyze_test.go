package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSineTone(t *testing.T) {
	samples := Tone(440, 1.0, DefaultSampleRate)
	report := Analyze(samples, DefaultSampleRate)

	assert.InDelta(t, 440, report.FundamentalHz, 10)
	assert.InDelta(t, 1.0, report.DurationS, 0.01)
	// A pure tone has almost no harmonic energy.
	assert.Less(t, report.HarmonicRatio, 0.2)
	// The centroid of a pure tone sits near the tone itself.
	assert.InDelta(t, 440, report.SpectralCentroidHz, 100)
}

func TestAnalyzeEnvelope(t *testing.T) {
	samples := Tone(440, 2.0, DefaultSampleRate)
	report := Analyze(samples, DefaultSampleRate)

	// 50 ms windows, capped at the first second.
	require.Len(t, report.Envelope, 20)
	for i, rms := range report.Envelope {
		// A 0.5 amplitude sine has RMS near 0.354.
		assert.InDelta(t, 0.354, rms, 0.05, "window %d", i)
	}

	short := Analyze(Tone(440, 0.25, DefaultSampleRate), DefaultSampleRate)
	assert.Len(t, short.Envelope, 5)
}

func TestAnalyzeEmpty(t *testing.T) {
	report := Analyze(nil, DefaultSampleRate)
	assert.Zero(t, report.FundamentalHz)
	assert.Zero(t, report.SpectralCentroidHz)
	assert.Zero(t, report.DurationS)
	assert.Empty(t, report.Envelope)

	silent := Analyze(make([]float32, DefaultSampleRate), DefaultSampleRate)
	assert.Zero(t, silent.SpectralCentroidHz)
}

func TestCompareIdenticalSignals(t *testing.T) {
	s := Tone(440, 1.0, DefaultSampleRate)
	c := Compare(s, s, DefaultSampleRate)
	assert.Less(t, c.Distance, 0.01)
	assert.Zero(t, c.FundamentalDiff)
}

func TestCompareDifferentTones(t *testing.T) {
	a := Tone(440, 1.0, DefaultSampleRate)
	b := Tone(880, 1.0, DefaultSampleRate)
	c := Compare(a, b, DefaultSampleRate)
	assert.Greater(t, c.Distance, 0.1)
	assert.InDelta(t, 440, c.FundamentalDiff, 20)
}

func TestCompareIsDirectional(t *testing.T) {
	a := Tone(220, 1.0, DefaultSampleRate)
	b := Tone(440, 1.0, DefaultSampleRate)
	// Differences normalize against the target, so swapping the
	// arguments changes the distance but not its sign of meaning.
	ab := Compare(a, b, DefaultSampleRate)
	ba := Compare(b, a, DefaultSampleRate)
	assert.Greater(t, ab.Distance, 0.0)
	assert.Greater(t, ba.Distance, 0.0)
	assert.Greater(t, ab.Distance, ba.Distance)
}
