package waffles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianSmoothPreservesDC(t *testing.T) {
	samples := make([]float64, 64)
	for i := range samples {
		samples[i] = 42.0
	}
	out, err := GaussianSmooth(samples, 3.0)
	require.NoError(t, err)
	require.Len(t, out, len(samples))
	for i, v := range out {
		assert.InDelta(t, 42.0, v, 1e-9, "sample %d", i)
	}
}

func TestGaussianSmoothAttenuatesHighFrequencies(t *testing.T) {
	// Alternating +1/-1 is the Nyquist component; a few ticks of sigma must
	// crush it while a DC offset survives.
	n := 64
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 10.0
		if i%2 == 0 {
			samples[i] += 1.0
		} else {
			samples[i] -= 1.0
		}
	}
	out, err := GaussianSmooth(samples, 3.0)
	require.NoError(t, err)
	for i, v := range out {
		assert.InDelta(t, 10.0, v, 1e-6, "sample %d", i)
	}
}

func TestGaussianSmoothDoesNotMutateInput(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	orig := append([]float64(nil), samples...)
	_, err := GaussianSmooth(samples, 1.0)
	require.NoError(t, err)
	assert.Equal(t, orig, samples)
}

func TestGaussianSmoothRejectsBadInput(t *testing.T) {
	_, err := GaussianSmooth([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrMalformedInput)
	_, err = GaussianSmooth([]float64{1, 2, 3}, -1)
	assert.ErrorIs(t, err, ErrMalformedInput)
	_, err = GaussianSmooth([]float64{1}, 1.0)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestGaussianSmoothReducesNoisePower(t *testing.T) {
	// A noisy sine: smoothing must not increase the RMS distance from the
	// clean signal.
	n := 128
	clean := make([]float64, n)
	noisy := make([]float64, n)
	for i := range clean {
		clean[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
		// Deterministic sample-scale jitter.
		noisy[i] = clean[i] + 0.3*math.Sin(2*math.Pi*float64(i)*0.47)
	}
	out, err := GaussianSmooth(noisy, 2.0)
	require.NoError(t, err)

	rms := func(a []float64) float64 {
		var s float64
		for i := range a {
			d := a[i] - clean[i]
			s += d * d
		}
		return math.Sqrt(s / float64(n))
	}
	assert.Less(t, rms(out), rms(noisy))
}
