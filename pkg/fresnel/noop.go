package fresnel

import "github.com/df07/go-spectral-bsdf/pkg/spectrum"

// NoOp reflects everything. Used by ideal mirrors whose tint is carried elsewhere.
type NoOp struct{}

func (NoOp) Evaluate(sw *spectrum.Wavelengths, cosi float64) spectrum.SWCSpectrum {
	return spectrum.Uniform(1)
}

func (NoOp) Index(sw *spectrum.Wavelengths) float64 {
	return 1
}

func (NoOp) SigmaA(sw *spectrum.Wavelengths) spectrum.SWCSpectrum {
	return spectrum.SWCSpectrum{}
}

func (NoOp) ComplexEvaluate(sw *spectrum.Wavelengths) (fr, fi spectrum.SWCSpectrum) {
	return spectrum.Uniform(1), spectrum.SWCSpectrum{}
}
