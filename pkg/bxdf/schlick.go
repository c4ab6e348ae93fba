package bxdf

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/fresnel"
	"github.com/df07/go-spectral-bsdf/pkg/microfacet"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// SchlickCoating describes a thin absorbing glossy coat: normal incidence
// specular reflectance, absorption over depth and its microfacet roughness
type SchlickCoating struct {
	Rs           spectrum.SWCSpectrum
	Alpha        spectrum.SWCSpectrum
	Depth        float64
	Distribution *microfacet.Schlick
	Multibounce  bool
}

// NewSchlickCoating creates a coating description
func NewSchlickCoating(rs, alpha spectrum.SWCSpectrum, depth, roughness, anisotropy float64, multibounce bool) *SchlickCoating {
	return &SchlickCoating{
		Rs:           rs,
		Alpha:        alpha,
		Depth:        depth,
		Distribution: microfacet.NewSchlick(roughness, anisotropy),
		Multibounce:  multibounce,
	}
}

// Fresnel is Schlick's approximation of the coating reflectance
func (c *SchlickCoating) Fresnel(cos float64) spectrum.SWCSpectrum {
	return fresnel.SchlickWeight(c.Rs, cos)
}

// Absorption returns the transmittance of the coat for the two cosines
func (c *SchlickCoating) Absorption(cosi, coso float64) spectrum.SWCSpectrum {
	return Absorption(c.Alpha, c.Depth, cosi, coso)
}

// D is the specular term without Fresnel: G·D(h)/(4 cos1 cos2), plus the
// energy of interreflections in the creases when multibounce is enabled
func (c *SchlickCoating) D(cos1, cos2 float64, h core.Vec3) float64 {
	dist := c.Distribution
	g := dist.SchlickG(cos1) * dist.SchlickG(cos2)
	den := 4 * cos1 * cos2
	d := g * dist.D(h) / den
	if c.Multibounce {
		d += core.Clamp((1-g)/(math.Pi*den), 0, 1)
	}
	return d
}

// SchlickBRDF is a diffuse base under a Schlick coating. With a back coating
// the lobe is two-sided and the coat is chosen by the side of the half vector.
type SchlickBRDF struct {
	Rd    spectrum.SWCSpectrum
	Front *SchlickCoating
	Back  *SchlickCoating
}

// NewSchlickBRDF creates a single-sided coated diffuse lobe
func NewSchlickBRDF(rd spectrum.SWCSpectrum, coating *SchlickCoating) *SchlickBRDF {
	return &SchlickBRDF{Rd: rd, Front: coating}
}

// NewSchlickDoubleSidedBRDF creates a lobe coated differently on each side
func NewSchlickDoubleSidedBRDF(rd spectrum.SWCSpectrum, front, back *SchlickCoating) *SchlickBRDF {
	return &SchlickBRDF{Rd: rd, Front: front, Back: back}
}

func (s *SchlickBRDF) Type() Type { return Reflection | Glossy }

// coating returns the coat facing the half vector h
func (s *SchlickBRDF) coating(h core.Vec3) *SchlickCoating {
	if s.Back != nil && h.Z <= 0 {
		return s.Back
	}
	return s.Front
}

func (s *SchlickBRDF) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if !core.SameHemisphere(wo, wi) {
		return spectrum.SWCSpectrum{}
	}
	cosi := core.AbsCosTheta(wi)
	coso := core.AbsCosTheta(wo)

	if s.Back == nil && s.Front.Rs.IsBlack() {
		return s.Front.Absorption(cosi, coso).Mul(s.Rd).Scale(coso / math.Pi)
	}
	h := wo.Add(wi)
	if h.IsZero() {
		return spectrum.SWCSpectrum{}
	}
	h = h.Normalize()
	c := s.coating(h)
	sf := c.Fresnel(wi.AbsDot(h))

	// Diffuse base seen through the coat
	f := c.Absorption(cosi, coso).Mul(s.Rd).Mul(sf.OneMinus()).Scale(coso / math.Pi)

	// Specular coat on the side it faces
	front := s.Back == nil || h.Z > 0
	if front && (wi.Z <= 0 || wo.Z <= 0) {
		return f
	}
	if !front && (wi.Z >= 0 || wo.Z >= 0) {
		return f
	}
	return f.AddWeighted(coso*c.D(cosi, coso, h), sf)
}

func (s *SchlickBRDF) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	c := s.Front
	if s.Back != nil && wo.Z <= 0 {
		c = s.Back
	}
	var wi core.Vec3
	u1 *= 2
	if u1 < 1 {
		wi = core.CosineSampleHemisphere(u1, u2)
		if wo.Z < 0 {
			wi.Z = -wi.Z
		}
	} else {
		h, _, pdf := c.Distribution.SampleH(u1-1, u2)
		if !validPdf(pdf) {
			return Sample{}, false
		}
		if wo.Z < 0 {
			h.Z = -h.Z
		}
		wi = reflect(wo, h)
	}
	if !core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	return finishSample(s, sw, wo, wi, reverse)
}

func (s *SchlickBRDF) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	if !core.SameHemisphere(wo, wi) {
		return 0
	}
	h := wo.Add(wi).Normalize()
	c := s.coating(h)
	return core.AbsCosTheta(wi)/(2*math.Pi) + 0.5*c.Distribution.Pdf(h)/(4*wo.AbsDot(h))
}

func (s *SchlickBRDF) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(s, sw, wo, n, sampler)
}

func (s *SchlickBRDF) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(s, sw, n, sampler)
}

func (s *SchlickBRDF) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return UnitWeight(sw, wo)
}

// SchlickTranslucentBTDF is the diffuse transmission through a sheet coated
// on both faces
type SchlickTranslucentBTDF struct {
	Rd, Rt           spectrum.SWCSpectrum
	Rs, RsBack       spectrum.SWCSpectrum
	Alpha, AlphaBack spectrum.SWCSpectrum
	Depth, DepthBack float64
}

// NewSchlickTranslucentBTDF creates a translucent coated lobe
func NewSchlickTranslucentBTDF(rd, rt, rs, rsBack, alpha, alphaBack spectrum.SWCSpectrum, depth, depthBack float64) *SchlickTranslucentBTDF {
	return &SchlickTranslucentBTDF{
		Rd: rd, Rt: rt,
		Rs: rs, RsBack: rsBack,
		Alpha: alpha, AlphaBack: alphaBack,
		Depth: depth, DepthBack: depthBack,
	}
}

func (s *SchlickTranslucentBTDF) Type() Type { return Transmission | Diffuse }

// opticalDepth returns alpha·depth/cos per sample, zero where nothing absorbs
func opticalDepth(alpha spectrum.SWCSpectrum, depth, cos float64) spectrum.SWCSpectrum {
	var t spectrum.SWCSpectrum
	if depth <= 0 {
		return t
	}
	for i := range t {
		if alpha[i] != 0 {
			t[i] = alpha[i] * depth / cos
		}
	}
	return t
}

func (s *SchlickTranslucentBTDF) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if core.SameHemisphere(wo, wi) || core.CosTheta(wi) == 0 {
		return spectrum.SWCSpectrum{}
	}
	cosi := core.AbsCosTheta(wi)
	coso := core.AbsCosTheta(wo)

	h := core.NewVec3(wi.X+wo.X, wi.Y+wo.Y, wi.Z-wo.Z)
	if h.IsZero() {
		return spectrum.SWCSpectrum{}
	}
	h = h.Normalize()
	u := wi.AbsDot(h)
	s1 := fresnel.SchlickWeight(s.Rs, u).OneMinus()
	s2 := fresnel.SchlickWeight(s.RsBack, u).OneMinus()
	t := s1.Mul(s2).Sqrt()
	if s.Depth > 0 || s.DepthBack > 0 {
		var tau spectrum.SWCSpectrum
		if core.CosTheta(wi) > 0 {
			tau = opticalDepth(s.Alpha, s.Depth, cosi).Add(opticalDepth(s.AlphaBack, s.DepthBack, coso))
		} else {
			tau = opticalDepth(s.Alpha, s.Depth, coso).Add(opticalDepth(s.AlphaBack, s.DepthBack, cosi))
		}
		t = t.Mul(tau.Scale(-1).Exp())
	}
	return t.Mul(s.Rt).Mul(s.Rd.OneMinus()).Scale(coso / math.Pi)
}

func (s *SchlickTranslucentBTDF) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	wi := core.CosineSampleHemisphere(u1, u2)
	if wo.Z > 0 {
		wi.Z = -wi.Z
	}
	if core.SameHemisphere(wo, wi) {
		return Sample{}, false
	}
	return finishSample(s, sw, wo, wi, reverse)
}

func (s *SchlickTranslucentBTDF) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	if core.SameHemisphere(wo, wi) {
		return 0
	}
	return core.AbsCosTheta(wi) / math.Pi
}

func (s *SchlickTranslucentBTDF) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(s, sw, wo, n, sampler)
}

func (s *SchlickTranslucentBTDF) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(s, sw, n, sampler)
}

func (s *SchlickTranslucentBTDF) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return UnitWeight(sw, wo)
}
