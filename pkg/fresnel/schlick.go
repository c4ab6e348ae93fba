package fresnel

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Schlick approximates the Fresnel reflectance with Schlick's polynomial
// R0 + (1-R0)(1-cos)^5
type Schlick struct {
	r0 spectrum.SWCSpectrum
	a  spectrum.SWCSpectrum // absorption inside the coating
}

// NewSchlick creates an approximation from the normal incidence reflectance r0
func NewSchlick(r0, absorption spectrum.SWCSpectrum) *Schlick {
	return &Schlick{r0: r0, a: absorption}
}

// NewSchlickFromIndex derives r0 from a real index of refraction
func NewSchlickFromIndex(n float64, absorption spectrum.SWCSpectrum) *Schlick {
	r := (n - 1) / (n + 1)
	return NewSchlick(spectrum.Uniform(r*r), absorption)
}

// NormalIncidence returns R0
func (s *Schlick) NormalIncidence() spectrum.SWCSpectrum {
	return s.r0
}

func (s *Schlick) Evaluate(sw *spectrum.Wavelengths, cosi float64) spectrum.SWCSpectrum {
	return SchlickWeight(s.r0, math.Abs(cosi))
}

// SchlickWeight evaluates R0 + (1-R0)(1-cos)^5
func SchlickWeight(r0 spectrum.SWCSpectrum, cos float64) spectrum.SWCSpectrum {
	c := 1 - cos
	c5 := c * c * c * c * c
	return r0.Add(r0.OneMinus().Scale(c5))
}

func (s *Schlick) Index(sw *spectrum.Wavelengths) float64 {
	sqrtR := s.r0.Clamp(0, 0.999).Sqrt()
	return spectrum.Uniform(1).Add(sqrtR).Div(sqrtR.OneMinus()).Filter(sw)
}

func (s *Schlick) SigmaA(sw *spectrum.Wavelengths) spectrum.SWCSpectrum {
	return s.a
}

func (s *Schlick) ComplexEvaluate(sw *spectrum.Wavelengths) (fr, fi spectrum.SWCSpectrum) {
	return spectrum.Uniform(s.Index(sw)), s.a.Mul(sw.Spectrum()).DivScalar(beerScale)
}
