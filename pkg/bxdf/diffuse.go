package bxdf

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Lambertian is a perfectly diffuse reflector
type Lambertian struct {
	R spectrum.SWCSpectrum
}

// NewLambertian creates a Lambertian lobe with reflectance r
func NewLambertian(r spectrum.SWCSpectrum) *Lambertian {
	return &Lambertian{R: r}
}

func (l *Lambertian) Type() Type { return Reflection | Diffuse }

func (l *Lambertian) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if !core.SameHemisphere(wo, wi) {
		return spectrum.SWCSpectrum{}
	}
	return l.R.Scale(core.AbsCosTheta(wo) / math.Pi)
}

func (l *Lambertian) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	wi := core.CosineSampleHemisphere(u1, u2)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	if !core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	f := l.R
	if !reverse {
		f = f.Scale(math.Abs(wo.Z / wi.Z))
	}
	return Sample{
		Wi:      wi,
		F:       f,
		Pdf:     core.AbsCosTheta(wi) / math.Pi,
		PdfBack: core.AbsCosTheta(wo) / math.Pi,
	}, true
}

func (l *Lambertian) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	return CosinePdf(wo, wi)
}

// Rho is the reflectance itself
func (l *Lambertian) Rho(*spectrum.Wavelengths, core.Vec3, int, core.Sampler) spectrum.SWCSpectrum {
	return l.R
}

// RhoHemispherical is the reflectance itself
func (l *Lambertian) RhoHemispherical(*spectrum.Wavelengths, int, core.Sampler) spectrum.SWCSpectrum {
	return l.R
}

func (l *Lambertian) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return UnitWeight(sw, wo)
}

// OrenNayar is the Oren-Nayar rough diffuse model
type OrenNayar struct {
	R    spectrum.SWCSpectrum
	a, b float64
}

// NewOrenNayar creates an Oren-Nayar lobe; sigma is the facet slope
// deviation in degrees
func NewOrenNayar(r spectrum.SWCSpectrum, sigma float64) *OrenNayar {
	s := core.Radians(sigma)
	s2 := s * s
	return &OrenNayar{
		R: r,
		a: 1 - s2/(2*(s2+0.33)),
		b: 0.45 * s2 / (s2 + 0.09),
	}
}

func (o *OrenNayar) Type() Type { return Reflection | Diffuse }

// factor is π times the scalar part of the Oren-Nayar BRDF
func (o *OrenNayar) factor(wo, wi core.Vec3) float64 {
	sinThetaI := core.SinTheta(wi)
	sinThetaO := core.SinTheta(wo)
	maxCos := 0.0
	if sinThetaI > 1e-4 && sinThetaO > 1e-4 {
		dcos := core.CosPhi(wi)*core.CosPhi(wo) + core.SinPhi(wi)*core.SinPhi(wo)
		maxCos = math.Max(0, dcos)
	}
	return o.a + o.b*maxCos*sinThetaO*sinThetaI/math.Max(core.AbsCosTheta(wi), core.AbsCosTheta(wo))
}

func (o *OrenNayar) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if !core.SameHemisphere(wo, wi) {
		return spectrum.SWCSpectrum{}
	}
	return o.R.Scale(core.AbsCosTheta(wo) / math.Pi * o.factor(wo, wi))
}

func (o *OrenNayar) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	wi := core.CosineSampleHemisphere(u1, u2)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	if !core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	f := o.R.Scale(o.factor(wo, wi))
	if !reverse {
		f = f.Scale(math.Abs(wo.Z / wi.Z))
	}
	return Sample{
		Wi:      wi,
		F:       f,
		Pdf:     CosinePdf(wo, wi),
		PdfBack: CosinePdf(wi, wo),
	}, true
}

func (o *OrenNayar) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	return CosinePdf(wo, wi)
}

func (o *OrenNayar) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(o, sw, wo, n, sampler)
}

func (o *OrenNayar) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(o, sw, n, sampler)
}

func (o *OrenNayar) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return UnitWeight(sw, wo)
}
