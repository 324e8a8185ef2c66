// Package audio extracts spectral features from recorded samples and
// compares recordings against a target. The distance scalar from
// Compare is the convergence signal for sound matching.
package audio

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/madelynnblue/go-dsp/fft"
)

// minAnalysisHz excludes DC and rumble from feature extraction.
const minAnalysisHz = 20.0

// envelopeWindow is the RMS window length; envelopeWindows caps the
// envelope at the first second of audio.
const (
	envelopeWindowMs = 50
	envelopeWindows  = 20
)

// Report holds the scalar features of one recording.
type Report struct {
	FundamentalHz      float64   `json:"fundamental_hz"`
	SpectralCentroidHz float64   `json:"spectral_centroid_hz"`
	HarmonicRatio      float64   `json:"harmonic_ratio"`
	Envelope           []float64 `json:"envelope"`
	DurationS          float64   `json:"duration_s"`
}

func (r Report) String() string {
	return fmt.Sprintf("fundamental %.1f Hz, centroid %.1f Hz, harmonic ratio %.3f, duration %.2f s",
		r.FundamentalHz, r.SpectralCentroidHz, r.HarmonicRatio, r.DurationS)
}

// Analyze computes the spectral features of a mono signal.
func Analyze(samples []float32, sampleRate int) Report {
	report := Report{
		DurationS: float64(len(samples)) / float64(sampleRate),
		Envelope:  envelope(samples, sampleRate),
	}
	if len(samples) == 0 {
		return report
	}

	signal := make([]float64, len(samples))
	for i, s := range samples {
		signal[i] = float64(s)
	}
	spectrum := fft.FFTReal(signal)

	// Real input: only the first half of the spectrum is informative.
	bins := len(spectrum)/2 + 1
	mags := make([]float64, bins)
	for i := 0; i < bins; i++ {
		mags[i] = cmplx.Abs(spectrum[i])
	}
	binHz := float64(sampleRate) / float64(len(signal))

	minBin := int(math.Ceil(minAnalysisHz / binHz))
	if minBin >= bins {
		return report
	}

	// Fundamental: strongest bin at or above 20 Hz.
	peak := minBin
	for i := minBin; i < bins; i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	report.FundamentalHz = float64(peak) * binHz

	var weighted, total, above float64
	for i := 0; i < bins; i++ {
		weighted += float64(i) * binHz * mags[i]
		total += mags[i]
		if i >= minBin {
			above += mags[i]
		}
	}
	if total > 0 {
		report.SpectralCentroidHz = weighted / total
	}

	// Harmonic ratio: energy at harmonics 2..8 of the fundamental
	// over everything above 20 Hz.
	if above > 0 && peak > 0 {
		var harmonic float64
		for k := 2; k <= 8; k++ {
			bin := k * peak
			if bin >= bins {
				break
			}
			harmonic += mags[bin]
		}
		report.HarmonicRatio = harmonic / above
	}
	return report
}

func envelope(samples []float32, sampleRate int) []float64 {
	window := sampleRate * envelopeWindowMs / 1000
	if window <= 0 {
		return nil
	}
	var out []float64
	for start := 0; start < len(samples) && len(out) < envelopeWindows; start += window {
		end := start + window
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += float64(s) * float64(s)
		}
		out = append(out, math.Sqrt(sum/float64(end-start)))
	}
	return out
}

// CompareReport holds both analyses and the combined distance.
type CompareReport struct {
	Target   Report `json:"target"`
	Recorded Report `json:"recorded"`

	FundamentalDiff float64 `json:"fundamental_diff_hz"`
	CentroidDiff    float64 `json:"centroid_diff_hz"`
	HarmonicDiff    float64 `json:"harmonic_diff"`
	Distance        float64 `json:"distance"`
}

func (c CompareReport) String() string {
	return fmt.Sprintf("distance %.4f (fundamental off by %.1f Hz, centroid by %.1f Hz, harmonic ratio by %.3f)",
		c.Distance, c.FundamentalDiff, c.CentroidDiff, c.HarmonicDiff)
}

// Compare analyzes both signals and folds the feature differences into
// one normalized distance. Identical signals score near zero.
func Compare(target, recorded []float32, sampleRate int) CompareReport {
	t := Analyze(target, sampleRate)
	r := Analyze(recorded, sampleRate)

	c := CompareReport{
		Target:          t,
		Recorded:        r,
		FundamentalDiff: math.Abs(t.FundamentalHz - r.FundamentalHz),
		CentroidDiff:    math.Abs(t.SpectralCentroidHz - r.SpectralCentroidHz),
		HarmonicDiff:    math.Abs(t.HarmonicRatio - r.HarmonicRatio),
	}
	c.Distance = (c.FundamentalDiff/math.Max(t.FundamentalHz, 1) +
		c.CentroidDiff/math.Max(t.SpectralCentroidHz, 1) +
		c.HarmonicDiff) / 3
	return c
}
