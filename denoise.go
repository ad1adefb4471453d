package waffles

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// GaussianSmooth returns a denoised copy of samples, computed by multiplying
// the spectrum with a Gaussian low-pass kernel of width sigmaTicks (the
// standard deviation of the equivalent time-domain Gaussian, in sample
// ticks). The input is not modified and the output has the same length.
func GaussianSmooth(samples []float64, sigmaTicks float64) ([]float64, error) {
	if sigmaTicks <= 0 {
		return nil, fmt.Errorf("%w: smoothing sigma (%v ticks) must be positive", ErrMalformedInput, sigmaTicks)
	}
	n := len(samples)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples to smooth, got %d", ErrMalformedInput, n)
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, samples)
	for k := range coeffs {
		f := fft.Freq(k) // cycles per sample
		coeffs[k] *= complex(math.Exp(-2*math.Pi*math.Pi*sigmaTicks*sigmaTicks*f*f), 0)
	}
	out := fft.Sequence(nil, coeffs)
	inv := 1 / float64(n)
	for i := range out {
		out[i] *= inv
	}
	return out, nil
}
