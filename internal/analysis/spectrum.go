package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/ridersim/internal/geom"
)

// Heights turns rider centers into heights, with up positive.
func Heights(centers []geom.Vec2) []float64 {
	h := make([]float64, len(centers))
	for i, c := range centers {
		h[i] = -c.Y
	}
	return h
}

// PowerSpectrum returns the magnitude of each frequency bin up to Nyquist.
// Bin k is k cycles over the whole series. The mean is removed first so a
// constant offset does not swamp bin 0.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod finds the strongest non-zero bin of a spectrum of n
// samples and returns its period in frames. It returns 0 when the spectrum
// is flat.
func DominantPeriod(ps []float64, n int) float64 {
	best, bestIdx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > best {
			best, bestIdx = ps[i], i
		}
	}
	if bestIdx == 0 {
		return 0
	}
	return float64(n) / float64(bestIdx)
}
