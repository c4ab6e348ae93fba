// Package cloth implements the Irawan-Marschner woven cloth reflectance
// model and the weave patterns that drive it.
package cloth

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Irawan is the specular lobe of one yarn at one surface point
type Irawan struct {
	Ks            spectrum.SWCSpectrum
	Point         YarnPoint
	Pattern       *WeavePattern
	Normalization float64 // Specular normalization times the highlight scale
}

// NewIrawan creates the lobe for the yarn found at point
func NewIrawan(ks spectrum.SWCSpectrum, point YarnPoint, pattern *WeavePattern, normalization float64) *Irawan {
	return &Irawan{Ks: ks, Point: point, Pattern: pattern, Normalization: normalization}
}

func (c *Irawan) Type() bxdf.Type { return bxdf.Reflection | bxdf.Glossy }

// EvalSpecular returns the unnormalized yarn integrand for the pair
func (c *Irawan) EvalSpecular(wo, wi core.Vec3) float64 {
	return evalSpecular(c.Pattern, c.Point, wo, wi)
}

func evalSpecular(p *WeavePattern, point YarnPoint, wo, wi core.Vec3) float64 {
	omI, omR := wi, wo
	if omI.Z < 0 {
		omI = omI.Negate()
	}
	if omR.Z < 0 {
		omR = omR.Negate()
	}
	return point.Yarn.integrand(p, point.UV, point.Umax, omI, omR)
}

func (c *Irawan) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if !core.SameHemisphere(wo, wi) {
		return spectrum.SWCSpectrum{}
	}
	scale := c.EvalSpecular(wo, wi)
	return c.Ks.Scale(scale * c.Normalization * core.AbsCosTheta(wo) / math.Pi)
}

func (c *Irawan) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (bxdf.Sample, bool) {
	return bxdf.CosineSampleF(c, sw, wo, u1, u2, reverse)
}

func (c *Irawan) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	return bxdf.CosinePdf(wo, wi)
}

func (c *Irawan) Rho(sw *spectrum.Wavelengths, wo core.Vec3, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	return bxdf.EstimateRho(c, sw, wo, nSamples, sampler)
}

func (c *Irawan) RhoHemispherical(sw *spectrum.Wavelengths, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	return bxdf.EstimateRhoHemispherical(c, sw, nSamples, sampler)
}

func (c *Irawan) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return bxdf.UnitWeight(sw, wo)
}
