package bxdf

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// BRDFToBTDF turns a reflection lobe into a transmission lobe. With equal
// indices the reflected direction is mirrored into the other hemisphere,
// otherwise it is refracted about the reflection half vector. A non-zero
// Cauchy coefficient makes the exterior index dispersive.
type BRDFToBTDF struct {
	BRDF       BxDF
	EtaI, EtaT float64
	CauchyB    float64
}

// NewBRDFToBTDF wraps brdf as a transmission lobe
func NewBRDFToBTDF(brdf BxDF, etai, etat, cb float64) *BRDFToBTDF {
	return &BRDFToBTDF{BRDF: brdf, EtaI: etai, EtaT: etat, CauchyB: cb}
}

// OtherHemisphere mirrors w through the tangent plane
func OtherHemisphere(w core.Vec3) core.Vec3 {
	return core.NewVec3(w.X, w.Y, -w.Z)
}

func (b *BRDFToBTDF) Type() Type {
	return b.BRDF.Type() ^ (Reflection | Transmission)
}

// indices returns the incident and transmitted indices for a walk entering
// or leaving the surface
func (b *BRDFToBTDF) indices(sw *spectrum.Wavelengths, entering bool) (float64, float64) {
	ei, et := b.EtaI, b.EtaT
	if b.CauchyB != 0 {
		w := sw.SampleSingle()
		et += b.CauchyB * 1e6 / (w * w)
	}
	if !entering {
		ei, et = et, ei
	}
	return ei, et
}

// reflectedDirection maps a transmission pair back to the reflection the
// wrapped lobe understands
func (b *BRDFToBTDF) reflectedDirection(sw *spectrum.Wavelengths, wo, wi core.Vec3) (core.Vec3, bool) {
	entering := core.CosTheta(wo) > 0
	ei, et := b.indices(sw, entering)
	eta := ei / et
	h := wo.Multiply(eta).Add(wi)
	if h.IsZero() {
		return core.Vec3{}, false
	}
	h = h.Normalize()
	cos1 := wo.Dot(h)
	if (entering && cos1 < 0) || (!entering && cos1 > 0) {
		h = h.Negate()
	}
	if h.Z < 0 {
		return core.Vec3{}, false
	}
	return reflect(wo, h), true
}

func (b *BRDFToBTDF) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if b.EtaI == b.EtaT {
		return b.BRDF.F(sw, wo, OtherHemisphere(wi))
	}
	wiR, ok := b.reflectedDirection(sw, wo, wi)
	if !ok {
		return spectrum.SWCSpectrum{}
	}
	return b.BRDF.F(sw, wo, wiR)
}

func (b *BRDFToBTDF) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	s, ok := b.BRDF.SampleF(sw, wo, u1, u2, reverse)
	if !ok {
		return Sample{}, false
	}
	if b.EtaI == b.EtaT {
		s.Wi = OtherHemisphere(s.Wi)
		return s, true
	}

	h := wo.Add(s.Wi).Normalize()
	if h.Z < 0 {
		h = h.Negate()
	}
	cosi := wo.Dot(h)
	entering := cosi > 0
	ei, et := b.indices(sw, entering)

	sini2 := math.Max(0, 1-cosi*cosi)
	eta := ei / et
	eta2 := eta * eta
	sint2 := eta2 * sini2
	// Total internal reflection
	if sint2 > 1 {
		return Sample{}, false
	}
	cost := math.Sqrt(math.Max(0, 1-sint2))
	if entering {
		cost = -cost
	}
	s.Wi = h.Multiply(cost + eta*cosi).Subtract(wo.Multiply(eta))
	if reverse {
		s.F = s.F.Scale(eta2)
	}
	return s, true
}

func (b *BRDFToBTDF) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	if b.EtaI == b.EtaT {
		return b.BRDF.Pdf(sw, wo, OtherHemisphere(wi))
	}
	wiR, ok := b.reflectedDirection(sw, wo, wi)
	if !ok {
		return 0
	}
	return b.BRDF.Pdf(sw, wo, wiR)
}

func (b *BRDFToBTDF) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return b.BRDF.Rho(sw, OtherHemisphere(wo), n, sampler)
}

func (b *BRDFToBTDF) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return b.BRDF.RhoHemispherical(sw, n, sampler)
}

func (b *BRDFToBTDF) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return b.BRDF.Weight(sw, wo)
}
