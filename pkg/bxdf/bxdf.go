// Package bxdf implements the elementary scattering lobes evaluated in the
// local shading frame, where the shading normal is +Z.
//
// All lobes share one convention: F(sw, wo, wi) returns the lobe value
// multiplied by |cos θ| of its first argument, and SampleF returns that
// value divided by the density of the sampled direction.
package bxdf

import (
	"math"
	"strings"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Type is a set of capability flags describing a lobe
type Type int

const (
	Reflection Type = 1 << iota
	Transmission
	Diffuse
	Glossy
	Specular

	AllTypes        = Diffuse | Glossy | Specular
	AllReflection   = Reflection | AllTypes
	AllTransmission = Transmission | AllTypes
	All             = AllReflection | AllTransmission
)

// Matches reports whether every flag of t is present in flags
func (t Type) Matches(flags Type) bool {
	return t&flags == t
}

// Has reports whether t carries any of the given flags
func (t Type) Has(flags Type) bool {
	return t&flags != 0
}

func (t Type) String() string {
	names := []struct {
		flag Type
		name string
	}{
		{Reflection, "Reflection"},
		{Transmission, "Transmission"},
		{Diffuse, "Diffuse"},
		{Glossy, "Glossy"},
		{Specular, "Specular"},
	}
	var parts []string
	for _, n := range names {
		if t&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// Sample is the result of importance sampling a lobe
type Sample struct {
	Wi      core.Vec3            // Sampled direction
	F       spectrum.SWCSpectrum // Lobe value divided by Pdf
	Pdf     float64              // Density of Wi given wo
	PdfBack float64              // Density of wo given Wi
}

// BxDF is one scattering lobe in the local shading frame
type BxDF interface {
	// Type returns the capability flags of the lobe
	Type() Type

	// F evaluates the lobe times |cos| of wo; zero outside its support
	F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum

	// SampleF draws wi given wo. With reverse the walk comes from the light
	// and the value is F(wi, wo)/pdf, otherwise F(wo, wi)/pdf.
	SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool)

	// Pdf returns the density with which SampleF produces wi given wo
	Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64

	// Rho estimates the directional reflectance for wo
	Rho(sw *spectrum.Wavelengths, wo core.Vec3, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum

	// RhoHemispherical estimates the hemispherical reflectance
	RhoHemispherical(sw *spectrum.Wavelengths, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum

	// Weight returns a cheap estimate of the scattered energy for lobe selection
	Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64
}

// Evaluator is the part of a BxDF the shared sampling helpers need
type Evaluator interface {
	F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum
	Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64
}

// Sampler is the part of a BxDF the reflectance estimators need
type Sampler interface {
	SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool)
}

// CosineSampleF samples wi from a cosine distribution on the side of wo and
// evaluates b at the sampled pair
func CosineSampleF(b Evaluator, sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	wi := core.CosineSampleHemisphere(u1, u2)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	// wi may lie in the tangent plane
	if !core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	return finishSample(b, sw, wo, wi, reverse)
}

// finishSample fills a Sample for an already chosen wi using b's Pdf and F
func finishSample(b Evaluator, sw *spectrum.Wavelengths, wo, wi core.Vec3, reverse bool) (Sample, bool) {
	pdf := b.Pdf(sw, wo, wi)
	if !validPdf(pdf) {
		return Sample{}, false
	}
	var f spectrum.SWCSpectrum
	if reverse {
		f = b.F(sw, wi, wo)
	} else {
		f = b.F(sw, wo, wi)
	}
	return Sample{
		Wi:      wi,
		F:       f.DivScalar(pdf),
		Pdf:     pdf,
		PdfBack: b.Pdf(sw, wi, wo),
	}, true
}

// CosinePdf is the density of CosineSampleF
func CosinePdf(wo, wi core.Vec3) float64 {
	if !core.SameHemisphere(wo, wi) {
		return 0
	}
	return core.AbsCosTheta(wi) / math.Pi
}

// EstimateRho estimates the directional reflectance of b for wo with
// stratified samples of the reverse walk
func EstimateRho(b Sampler, sw *spectrum.Wavelengths, wo core.Vec3, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if nSamples <= 0 {
		return spectrum.SWCSpectrum{}
	}
	samples := core.LatinHypercube(sampler, nSamples, 2)
	var r spectrum.SWCSpectrum
	for i := 0; i < nSamples; i++ {
		if s, ok := b.SampleF(sw, wo, samples[2*i], samples[2*i+1], true); ok {
			r = r.Add(s.F)
		}
	}
	return r.DivScalar(float64(nSamples))
}

// EstimateRhoHemispherical estimates the hemispherical reflectance of b with
// wo drawn uniformly over the sphere. Both faces are averaged, so a lobe
// that scatters the same way from either side reports its one-sided value.
func EstimateRhoHemispherical(b Sampler, sw *spectrum.Wavelengths, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if nSamples <= 0 {
		return spectrum.SWCSpectrum{}
	}
	samples := core.LatinHypercube(sampler, nSamples, 4)
	pdfo := core.UniformSpherePdf()
	var r spectrum.SWCSpectrum
	for i := 0; i < nSamples; i++ {
		wo := core.UniformSampleSphere(samples[4*i], samples[4*i+1])
		if s, ok := b.SampleF(sw, wo, samples[4*i+2], samples[4*i+3], true); ok {
			r = r.AddWeighted(core.AbsCosTheta(wo)/pdfo, s.F)
		}
	}
	return r.DivScalar(2 * math.Pi * float64(nSamples))
}

// UnitWeight is the lobe selection weight of lobes without a better estimate
func UnitWeight(*spectrum.Wavelengths, core.Vec3) float64 {
	return 1
}

// isOpposite reports whether wi is exactly the continuation of wo
func isOpposite(wo, wi core.Vec3) bool {
	return wo.Dot(wi) <= -1+core.MachineEpsilon
}

// Absorption returns the coat transmittance exp(-alpha·depth·(1/cosi + 1/coso)), exactly 1 when depth <= 0
func Absorption(alpha spectrum.SWCSpectrum, depth, cosi, coso float64) spectrum.SWCSpectrum {
	if depth <= 0 {
		return spectrum.Uniform(1)
	}
	factor := depth * (cosi + coso) / (cosi * coso)
	var a spectrum.SWCSpectrum
	for i := range a {
		if alpha[i] == 0 {
			a[i] = 1
		} else {
			a[i] = math.Exp(-alpha[i] * factor)
		}
	}
	return a
}
