package bxdf

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/fresnel"
	"github.com/df07/go-spectral-bsdf/pkg/microfacet"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// validPdf reports whether a sampled half vector density can be divided by
func validPdf(pdf float64) bool {
	return pdf > 0 && !math.IsInf(pdf, 1)
}

// reflectedHalf returns the normalized half vector of a reflection pair,
// flipped into the upper hemisphere
func reflectedHalf(wo, wi core.Vec3) (core.Vec3, bool) {
	wh := wi.Add(wo)
	if wh.IsZero() {
		return core.Vec3{}, false
	}
	wh = wh.Normalize()
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	return wh, true
}

// reflect mirrors wo about wh
func reflect(wo, wh core.Vec3) core.Vec3 {
	return wh.Multiply(2 * wo.Dot(wh)).Subtract(wo)
}

// MicrofacetReflection is a glossy reflection lobe built from a microfacet
// distribution and a Fresnel term. One-sided lobes do not reflect from below.
type MicrofacetReflection struct {
	R            spectrum.SWCSpectrum
	Fresnel      fresnel.Fresnel
	Distribution microfacet.Distribution
	OneSided     bool
}

// NewMicrofacetReflection creates a microfacet reflection lobe
func NewMicrofacetReflection(r spectrum.SWCSpectrum, fr fresnel.Fresnel, d microfacet.Distribution, oneSided bool) *MicrofacetReflection {
	return &MicrofacetReflection{R: r, Fresnel: fr, Distribution: d, OneSided: oneSided}
}

func (m *MicrofacetReflection) Type() Type { return Reflection | Glossy }

func (m *MicrofacetReflection) half(wo, wi core.Vec3) (core.Vec3, bool) {
	wh := wi.Add(wo)
	if wh.IsZero() {
		return core.Vec3{}, false
	}
	wh = wh.Normalize()
	if wh.Z < 0 {
		if m.OneSided {
			return core.Vec3{}, false
		}
		wh = wh.Negate()
	}
	return wh, true
}

func (m *MicrofacetReflection) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	cosThetaO := core.AbsCosTheta(wo)
	cosThetaI := core.AbsCosTheta(wi)
	if !core.SameHemisphere(wo, wi) || cosThetaO == 0 || cosThetaI == 0 {
		return spectrum.SWCSpectrum{}
	}
	wh, ok := m.half(wo, wi)
	if !ok {
		return spectrum.SWCSpectrum{}
	}
	fr := m.Fresnel.Evaluate(sw, wi.Dot(wh))
	d := m.Distribution
	return m.R.Mul(fr).Scale(d.D(wh) * d.G(wo, wi, wh) / (4 * cosThetaI))
}

func (m *MicrofacetReflection) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	wh, d, pdf := m.Distribution.SampleH(u1, u2)
	if !validPdf(pdf) {
		return Sample{}, false
	}
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	wi := reflect(wo, wh)
	if (m.OneSided && wo.Z <= 0) || !core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}

	cosThetaH := wo.Dot(wh)
	factor := d * math.Abs(cosThetaH) / pdf * m.Distribution.G(wo, wi, wh)
	rf := m.R.Mul(m.Fresnel.Evaluate(sw, cosThetaH))
	var f spectrum.SWCSpectrum
	if reverse {
		f = rf.Scale(factor / core.AbsCosTheta(wo))
	} else {
		f = rf.Scale(factor / core.AbsCosTheta(wi))
	}
	pdf /= 4 * math.Abs(cosThetaH)
	return Sample{Wi: wi, F: f, Pdf: pdf, PdfBack: pdf}, true
}

func (m *MicrofacetReflection) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	if !core.SameHemisphere(wo, wi) {
		return 0
	}
	wh, ok := m.half(wo, wi)
	if !ok {
		return 0
	}
	return m.Distribution.Pdf(wh) / (4 * wo.AbsDot(wh))
}

func (m *MicrofacetReflection) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(m, sw, wo, n, sampler)
}

func (m *MicrofacetReflection) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(m, sw, n, sampler)
}

func (m *MicrofacetReflection) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return UnitWeight(sw, wo)
}

// MicrofacetTransmission is a glossy refraction lobe. With dispersion every
// wavelength refracts along its own half vector.
type MicrofacetTransmission struct {
	T            spectrum.SWCSpectrum
	Fresnel      fresnel.Fresnel
	Distribution microfacet.Distribution
	Dispersion   bool
}

// NewMicrofacetTransmission creates a microfacet transmission lobe
func NewMicrofacetTransmission(t spectrum.SWCSpectrum, fr fresnel.Fresnel, d microfacet.Distribution, dispersion bool) *MicrofacetTransmission {
	return &MicrofacetTransmission{T: t, Fresnel: fr, Distribution: d, Dispersion: dispersion}
}

func (m *MicrofacetTransmission) Type() Type { return Transmission | Glossy }

func (m *MicrofacetTransmission) relativeEta(sw *spectrum.Wavelengths, entering bool) float64 {
	if entering {
		return 1 / m.Fresnel.Index(sw)
	}
	return m.Fresnel.Index(sw)
}

// refractedHalf returns the half vector of a refraction pair and the squared
// length of eta·wo + wi before normalisation. Pairs that would refract
// through the back of the microfacet are rejected.
func refractedHalf(wo, wi core.Vec3, eta float64) (core.Vec3, float64, bool) {
	wh := wo.Multiply(eta).Add(wi)
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	lengthSquared := wh.LengthSquared()
	if !(lengthSquared > 0) {
		return core.Vec3{}, 0, false
	}
	wh = wh.Multiply(1 / math.Sqrt(lengthSquared))
	if backfacing(wo, wh) || backfacing(wi, wh) {
		return core.Vec3{}, 0, false
	}
	return wh, lengthSquared, true
}

// backfacing reports whether w sees the microfacet wh from the side
// opposite to the one it sees the macro surface from
func backfacing(w, wh core.Vec3) bool {
	return w.Dot(wh)*w.Z <= 0
}

// value evaluates the lobe for one relative index and returns the scalar
// factor together with the Fresnel reflectance
func (m *MicrofacetTransmission) value(sw *spectrum.Wavelengths, wo, wi core.Vec3, eta float64) (float64, spectrum.SWCSpectrum, bool) {
	wh, lengthSquared, ok := refractedHalf(wo, wi, eta)
	if !ok {
		return 0, spectrum.SWCSpectrum{}, false
	}
	cosThetaI := core.AbsCosTheta(wi)
	cosThetaIH := wi.AbsDot(wh)
	cosThetaOH := wo.Dot(wh)
	d := m.Distribution
	factor := math.Abs(cosThetaOH) * cosThetaIH * d.D(wh) * d.G(wo, wi, wh) / (cosThetaI * lengthSquared)
	return factor, m.Fresnel.Evaluate(sw, cosThetaOH), true
}

func (m *MicrofacetTransmission) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	var f spectrum.SWCSpectrum
	if core.SameHemisphere(wo, wi) || core.CosTheta(wi) == 0 {
		return f
	}
	entering := core.CosTheta(wo) > 0
	if m.Dispersion && !sw.Single {
		swl := sw.Clone()
		swl.Single = true
		for i := range f {
			swl.SingleW = i
			factor, fr, ok := m.value(swl, wo, wi, m.relativeEta(swl, entering))
			if !ok {
				continue
			}
			f[i] = factor * m.T[i] * (1 - fr[i])
		}
		return f
	}
	factor, fr, ok := m.value(sw, wo, wi, m.relativeEta(sw, entering))
	if !ok {
		return f
	}
	return m.T.Mul(fr.OneMinus()).Scale(factor)
}

func (m *MicrofacetTransmission) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	wh, d, pdf := m.Distribution.SampleH(u1, u2)
	if !validPdf(pdf) {
		return Sample{}, false
	}
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	entering := core.CosTheta(wo) > 0

	// Dispersion refracts the sample along the selected wavelength
	single := sw.Single
	if m.Dispersion {
		sw.Single = true
	}
	eta := m.relativeEta(sw, entering)
	sw.Single = single

	cosThetaOH := wo.Dot(wh)
	if cosThetaOH*wo.Z <= 0 {
		return Sample{}, false
	}
	sinThetaIH2 := eta * eta * math.Max(0, 1-cosThetaOH*cosThetaOH)
	if sinThetaIH2 >= 1 {
		return Sample{}, false
	}
	cosThetaIH := math.Sqrt(1 - sinThetaIH2)
	if entering {
		cosThetaIH = -cosThetaIH
	}
	length := eta*cosThetaOH + cosThetaIH
	wi := wh.Multiply(length).Subtract(wo.Multiply(eta))
	if core.SameHemisphere(wo, wi) || core.IsDegenerateCos(wi.Z) || cosThetaIH*wi.Z <= 0 {
		return Sample{}, false
	}

	if m.Dispersion && !sw.Single {
		return finishSample(m, sw, wo, wi, reverse)
	}

	lengthSquared := length * length
	factor := m.Distribution.G(wo, wi, wh) * d * math.Abs(cosThetaOH) / pdf
	var f spectrum.SWCSpectrum
	if reverse {
		fr := m.Fresnel.Evaluate(sw, cosThetaIH)
		f = m.T.Mul(fr.OneMinus()).Scale(factor / core.AbsCosTheta(wo))
	} else {
		fr := m.Fresnel.Evaluate(sw, cosThetaOH)
		f = m.T.Mul(fr.OneMinus()).Scale(factor / core.AbsCosTheta(wi))
	}
	return Sample{
		Wi:      wi,
		F:       f,
		Pdf:     pdf * math.Abs(cosThetaIH) / lengthSquared,
		PdfBack: pdf * math.Abs(cosThetaOH) * eta * eta / lengthSquared,
	}, true
}

func (m *MicrofacetTransmission) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	if core.SameHemisphere(wo, wi) {
		return 0
	}
	entering := core.CosTheta(wo) > 0
	density := func(eta float64) float64 {
		wh, lengthSquared, ok := refractedHalf(wo, wi, eta)
		if !ok {
			return 0
		}
		return m.Distribution.Pdf(wh) * wi.AbsDot(wh) / lengthSquared
	}
	if m.Dispersion && !sw.Single {
		swl := sw.Clone()
		swl.Single = true
		result := 0.0
		for i := 0; i < spectrum.WavelengthSamples; i++ {
			swl.SingleW = i
			result += density(m.relativeEta(swl, entering))
		}
		return result / spectrum.WavelengthSamples
	}
	return density(m.relativeEta(sw, entering))
}

func (m *MicrofacetTransmission) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(m, sw, wo, n, sampler)
}

func (m *MicrofacetTransmission) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(m, sw, n, sampler)
}

func (m *MicrofacetTransmission) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return UnitWeight(sw, wo)
}

// CookTorrance is the single lobe Cook-Torrance glossy reflector
type CookTorrance struct {
	Ks           spectrum.SWCSpectrum
	Distribution microfacet.Distribution
	Fresnel      fresnel.Fresnel
}

// NewCookTorrance creates a Cook-Torrance lobe
func NewCookTorrance(ks spectrum.SWCSpectrum, d microfacet.Distribution, fr fresnel.Fresnel) *CookTorrance {
	return &CookTorrance{Ks: ks, Distribution: d, Fresnel: fr}
}

func (c *CookTorrance) Type() Type { return Reflection | Glossy }

func (c *CookTorrance) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	cosThetaI := core.AbsCosTheta(wi)
	if !core.SameHemisphere(wo, wi) || cosThetaI == 0 {
		return spectrum.SWCSpectrum{}
	}
	wh, ok := reflectedHalf(wo, wi)
	if !ok {
		return spectrum.SWCSpectrum{}
	}
	fr := c.Fresnel.Evaluate(sw, wi.Dot(wh))
	d := c.Distribution
	return c.Ks.Mul(fr).Scale(d.D(wh) * d.G(wo, wi, wh) / (math.Pi * cosThetaI))
}

func (c *CookTorrance) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	wh, d, pdf := c.Distribution.SampleH(u1, u2)
	if !validPdf(pdf) {
		return Sample{}, false
	}
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	cosThetaH := wo.Dot(wh)
	wi := reflect(wo, wh)
	if !core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	factor := d * math.Abs(cosThetaH) / pdf * c.Distribution.G(wo, wi, wh) * 4 / math.Pi
	kf := c.Ks.Mul(c.Fresnel.Evaluate(sw, cosThetaH))
	var f spectrum.SWCSpectrum
	if reverse {
		f = kf.Scale(factor / core.AbsCosTheta(wo))
	} else {
		f = kf.Scale(factor / core.AbsCosTheta(wi))
	}
	pdf /= 4 * math.Abs(cosThetaH)
	return Sample{Wi: wi, F: f, Pdf: pdf, PdfBack: pdf}, true
}

func (c *CookTorrance) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	if !core.SameHemisphere(wo, wi) {
		return 0
	}
	wh, ok := reflectedHalf(wo, wi)
	if !ok {
		return 0
	}
	return c.Distribution.Pdf(wh) / (4 * wo.AbsDot(wh))
}

func (c *CookTorrance) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(c, sw, wo, n, sampler)
}

func (c *CookTorrance) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(c, sw, n, sampler)
}

func (c *CookTorrance) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return UnitWeight(sw, wo)
}

// FresnelBlend is the Ashikhmin-Shirley coupled diffuse and glossy model
// with absorption in the coating
type FresnelBlend struct {
	Rd, Rs       spectrum.SWCSpectrum
	Alpha        spectrum.SWCSpectrum
	Depth        float64
	Distribution microfacet.Distribution
}

// NewFresnelBlend creates a Fresnel blend lobe
func NewFresnelBlend(rd, rs, alpha spectrum.SWCSpectrum, depth float64, d microfacet.Distribution) *FresnelBlend {
	return &FresnelBlend{Rd: rd, Rs: rs, Alpha: alpha, Depth: depth, Distribution: d}
}

func (b *FresnelBlend) Type() Type { return Reflection | Glossy }

func (b *FresnelBlend) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if !core.SameHemisphere(wo, wi) {
		return spectrum.SWCSpectrum{}
	}
	cosi := core.AbsCosTheta(wi)
	coso := core.AbsCosTheta(wo)
	a := Absorption(b.Alpha, b.Depth, cosi, coso)

	diffuse := (1 - math.Pow(1-0.5*cosi, 5)) * (1 - math.Pow(1-0.5*coso, 5)) * (coso * 28 / (23 * math.Pi))
	f := a.Mul(b.Rd).Mul(b.Rs.OneMinus()).Scale(diffuse)

	wh, ok := reflectedHalf(wo, wi)
	if !ok {
		return f
	}
	cosih := wi.AbsDot(wh)
	specular := b.Distribution.D(wh) * coso / (4 * cosih * math.Max(cosi, coso))
	return f.AddWeighted(specular, fresnel.SchlickWeight(b.Rs, cosih))
}

func (b *FresnelBlend) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	var wi core.Vec3
	u1 *= 2
	if u1 < 1 {
		wi = core.CosineSampleHemisphere(u1, u2)
		if wo.Z < 0 {
			wi.Z = -wi.Z
		}
	} else {
		wh, _, pdf := b.Distribution.SampleH(u1-1, u2)
		if !validPdf(pdf) {
			return Sample{}, false
		}
		wi = reflect(wo, wh)
	}
	if !core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	return finishSample(b, sw, wo, wi, reverse)
}

func (b *FresnelBlend) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	if !core.SameHemisphere(wo, wi) {
		return 0
	}
	wh, ok := reflectedHalf(wo, wi)
	if !ok {
		return 0
	}
	return 0.5 * (core.AbsCosTheta(wi)/math.Pi + b.Distribution.Pdf(wh)/(4*wo.AbsDot(wh)))
}

func (b *FresnelBlend) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(b, sw, wo, n, sampler)
}

func (b *FresnelBlend) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(b, sw, n, sampler)
}

func (b *FresnelBlend) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return UnitWeight(sw, wo)
}
