// Package spectrum holds the per-wavelength sample values carried through the
// scattering code and the wavelength context they are sampled for.
package spectrum

import (
	"fmt"
	"math"
	"strings"
)

// WavelengthSamples is the number of wavelengths carried by every spectral value
const WavelengthSamples = 5

// SWCSpectrum is a spectral value sampled at the wavelengths of a Wavelengths context
type SWCSpectrum [WavelengthSamples]float64

// Uniform returns a spectrum with every sample set to v
func Uniform(v float64) SWCSpectrum {
	var s SWCSpectrum
	for i := range s {
		s[i] = v
	}
	return s
}

// Add returns the elementwise sum
func (s SWCSpectrum) Add(o SWCSpectrum) SWCSpectrum {
	for i := range s {
		s[i] += o[i]
	}
	return s
}

// Sub returns the elementwise difference
func (s SWCSpectrum) Sub(o SWCSpectrum) SWCSpectrum {
	for i := range s {
		s[i] -= o[i]
	}
	return s
}

// Mul returns the elementwise product
func (s SWCSpectrum) Mul(o SWCSpectrum) SWCSpectrum {
	for i := range s {
		s[i] *= o[i]
	}
	return s
}

// Div returns the elementwise quotient
func (s SWCSpectrum) Div(o SWCSpectrum) SWCSpectrum {
	for i := range s {
		s[i] /= o[i]
	}
	return s
}

// Scale multiplies every sample by f
func (s SWCSpectrum) Scale(f float64) SWCSpectrum {
	for i := range s {
		s[i] *= f
	}
	return s
}

// DivScalar divides every sample by f
func (s SWCSpectrum) DivScalar(f float64) SWCSpectrum {
	inv := 1 / f
	for i := range s {
		s[i] *= inv
	}
	return s
}

// AddWeighted returns s + w*o
func (s SWCSpectrum) AddWeighted(w float64, o SWCSpectrum) SWCSpectrum {
	for i := range s {
		s[i] += w * o[i]
	}
	return s
}

// OneMinus returns 1 - s
func (s SWCSpectrum) OneMinus() SWCSpectrum {
	for i := range s {
		s[i] = 1 - s[i]
	}
	return s
}

// Clamp limits every sample to [lo, hi]
func (s SWCSpectrum) Clamp(lo, hi float64) SWCSpectrum {
	for i := range s {
		s[i] = max(lo, min(hi, s[i]))
	}
	return s
}

// Exp returns e raised to every sample
func (s SWCSpectrum) Exp() SWCSpectrum {
	for i := range s {
		s[i] = math.Exp(s[i])
	}
	return s
}

// Sqrt returns the elementwise square root
func (s SWCSpectrum) Sqrt() SWCSpectrum {
	for i := range s {
		s[i] = math.Sqrt(s[i])
	}
	return s
}

// Pow raises every sample to e
func (s SWCSpectrum) Pow(e float64) SWCSpectrum {
	for i := range s {
		s[i] = math.Pow(s[i], e)
	}
	return s
}

// IsBlack reports whether every sample is zero
func (s SWCSpectrum) IsBlack() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// IsNaN reports whether any sample is NaN
func (s SWCSpectrum) IsNaN() bool {
	for _, v := range s {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Max returns the largest sample
func (s SWCSpectrum) Max() float64 {
	m := s[0]
	for _, v := range s[1:] {
		m = max(m, v)
	}
	return m
}

// Average returns the mean of all samples
func (s SWCSpectrum) Average() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum / WavelengthSamples
}

// Filter reduces the spectrum to a scalar: the selected sample in single
// wavelength mode, the average otherwise
func (s SWCSpectrum) Filter(sw *Wavelengths) float64 {
	if sw.Single {
		return s[sw.SingleW]
	}
	return s.Average()
}

// Equals reports whether two spectra agree within tolerance
func (s SWCSpectrum) Equals(o SWCSpectrum, tolerance float64) bool {
	for i := range s {
		if math.Abs(s[i]-o[i]) > tolerance {
			return false
		}
	}
	return true
}

func (s SWCSpectrum) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = fmt.Sprintf("%.4g", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
