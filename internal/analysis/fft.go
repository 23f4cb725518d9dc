package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrShortSeries = errors.New("analysis: series too short")

// PowerSpectrum returns the magnitudes of the first len(data)/2 bins of
// the discrete Fourier transform. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantFrequency returns the strongest non-zero frequency, in Hz, of a
// series sampled every dt. The mean is removed first.
func DominantFrequency(series []float64, dt float64) (float64, error) {
	n := len(series)
	if n < 8 {
		return 0, ErrShortSeries
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)
	data := make([]float64, n)
	for i, v := range series {
		data[i] = v - mean
	}

	ps := PowerSpectrum(data)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	return float64(peak) / (float64(n) * dt), nil
}
