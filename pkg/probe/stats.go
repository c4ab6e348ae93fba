package probe

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// SampleStats accumulates spectral Monte Carlo samples
type SampleStats struct {
	Accum          spectrum.SWCSpectrum // Spectral accumulator for the mean
	AverageAccum   float64              // Wavelength-averaged value accumulator
	AverageSqAccum float64              // Squared average, for the variance
	SampleCount    int
}

// AddSample adds one estimate to the statistics
func (ss *SampleStats) AddSample(s spectrum.SWCSpectrum) {
	ss.Accum = ss.Accum.Add(s)
	avg := s.Average()
	ss.AverageAccum += avg
	ss.AverageSqAccum += avg * avg
	ss.SampleCount++
}

// Mean returns the current spectral mean
func (ss *SampleStats) Mean() spectrum.SWCSpectrum {
	if ss.SampleCount == 0 {
		return spectrum.SWCSpectrum{}
	}
	return ss.Accum.DivScalar(float64(ss.SampleCount))
}

// StdError returns the standard error of the wavelength-averaged mean
func (ss *SampleStats) StdError() float64 {
	if ss.SampleCount < 2 {
		return 0
	}
	n := float64(ss.SampleCount)
	mean := ss.AverageAccum / n
	variance := (ss.AverageSqAccum/n - mean*mean) * n / (n - 1)
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance / n)
}
