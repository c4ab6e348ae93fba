package fresnel

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Conductor is the Fresnel reflectance of a metal with complex index eta + ik
type Conductor struct {
	eta spectrum.SWCSpectrum
	k   spectrum.SWCSpectrum
}

// NewConductor creates a conductor interface
func NewConductor(eta, k spectrum.SWCSpectrum) *Conductor {
	return &Conductor{eta: eta, k: k}
}

// NewConductorFromReflectance approximates a conductor whose normal incidence
// reflectance is r
func NewConductorFromReflectance(r spectrum.SWCSpectrum) *Conductor {
	return NewConductor(ApproxEta(r), ApproxK(r))
}

func (c *Conductor) Evaluate(sw *spectrum.Wavelengths, cosi float64) spectrum.SWCSpectrum {
	return FrCond(math.Abs(cosi), c.eta, c.k)
}

func (c *Conductor) Index(sw *spectrum.Wavelengths) float64 {
	return c.eta.Filter(sw)
}

func (c *Conductor) SigmaA(sw *spectrum.Wavelengths) spectrum.SWCSpectrum {
	return c.k.Div(sw.Spectrum()).Scale(4e-9 * math.Pi)
}

func (c *Conductor) ComplexEvaluate(sw *spectrum.Wavelengths) (fr, fi spectrum.SWCSpectrum) {
	return c.eta, c.k
}
