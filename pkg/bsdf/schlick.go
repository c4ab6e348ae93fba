package bsdf

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/fresnel"
	"github.com/df07/go-spectral-bsdf/pkg/microfacet"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// coatingType is the flag set of the coating lobe
const coatingType = bxdf.Reflection | bxdf.Glossy

// Schlick is a thin glossy dielectric coat over an arbitrary base BSDF. Light
// reaching the base is filtered by the coat's Fresnel transmission and by
// absorption over the coat depth.
type Schlick struct {
	shading
	Fresnel      fresnel.Fresnel
	Distribution microfacet.Distribution
	Multibounce  bool
	Alpha        spectrum.SWCSpectrum // Absorption coefficient of the coat
	Depth        float64
	Base         BSDF
}

// NewSchlick creates a coated BSDF
func NewSchlick(frame core.Frame, fr fresnel.Fresnel, d microfacet.Distribution, multibounce bool,
	alpha spectrum.SWCSpectrum, depth float64, base BSDF) (*Schlick, error) {
	if fr == nil || d == nil || base == nil {
		return nil, ErrNilComponent
	}
	return &Schlick{
		shading:      shading{frame: frame},
		Fresnel:      fr,
		Distribution: d,
		Multibounce:  multibounce,
		Alpha:        alpha,
		Depth:        depth,
		Base:         base,
	}, nil
}

func (s *Schlick) NumComponents() int {
	return 1 + s.Base.NumComponents()
}

func (s *Schlick) NumComponentsMatching(flags bxdf.Type) int {
	n := s.Base.NumComponentsMatching(flags)
	if coatingType.Matches(flags) {
		n++
	}
	return n
}

// CoatingWeight is the probability of sampling the coat for local wo. It
// is at least one half on the front face and zero on the back face.
func (s *Schlick) CoatingWeight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	if !(wo.Z > 0) {
		return 0
	}
	return 0.5 * (1 + s.Fresnel.Evaluate(sw, core.AbsCosTheta(wo)).Filter(sw))
}

func (s *Schlick) coatingWeight(sw *spectrum.Wavelengths, wo core.Vec3, flags bxdf.Type) float64 {
	if !coatingType.Matches(flags) {
		return 0
	}
	return s.CoatingWeight(sw, wo)
}

// coatingF evaluates the coat lobe for local directions, times |cos| of wo
func (s *Schlick) coatingF(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if !(wo.Z > 0) || !(wi.Z > 0) {
		return spectrum.SWCSpectrum{}
	}
	coso := core.AbsCosTheta(wo)
	cosi := core.AbsCosTheta(wi)
	wh := wo.Add(wi).Normalize()
	S := s.Fresnel.Evaluate(sw, wi.AbsDot(wh))

	g := s.Distribution.G(wo, wi, wh)
	factor := s.Distribution.D(wh) * g / (4 * cosi)
	if s.Multibounce {
		// interreflection in the coating creases
		factor += coso * core.Clamp((1-g)/(4*cosi*coso), 0, 1)
	}
	return S.Scale(factor)
}

// coatingSample draws a mirrored half vector direction for local wo
func (s *Schlick) coatingSample(wo core.Vec3, u1, u2 float64) (core.Vec3, float64, bool) {
	if !(wo.Z > 0) {
		return core.Vec3{}, 0, false
	}
	wh, _, specPdf := s.Distribution.SampleH(u1, u2)
	cosWH := wo.Dot(wh)
	wi := wh.Multiply(2 * cosWH).Subtract(wo)
	if !(wi.Z > 0) {
		return core.Vec3{}, 0, false
	}
	pdf := specPdf / (4 * cosWH)
	if !validPdf(pdf) {
		return core.Vec3{}, 0, false
	}
	return wi, pdf, true
}

func (s *Schlick) coatingPdf(wo, wi core.Vec3) float64 {
	if !(wo.Z > 0) || !(wi.Z > 0) {
		return 0
	}
	wh := wo.Add(wi).Normalize()
	return s.Distribution.Pdf(wh) / (4 * wo.AbsDot(wh))
}

// combine blends the coat and the base for local directions (first, second)
// on the given side; coat is the coating lobe and base the base BSDF value
func (s *Schlick) combine(sw *spectrum.Wavelengths, first, second core.Vec3, side float64, reverse bool, coat, base spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	a := bxdf.Absorption(s.Alpha, s.Depth, core.AbsCosTheta(second), core.AbsCosTheta(first))
	switch {
	case side > 0:
		if !(first.Z > 0) {
			// back face, no coat
			return base
		}
		coat = geometricFactor(coat, side, reverse)
		h := first.Add(second).Normalize()
		S := s.Fresnel.Evaluate(sw, second.AbsDot(h))
		return coat.Add(a.Mul(S.OneMinus()).Mul(base))
	case side < 0:
		h := core.NewVec3(first.X+second.X, first.Y+second.Y, first.Z-second.Z).Normalize()
		S := s.Fresnel.Evaluate(sw, first.AbsDot(h))
		// the square root makes a sheet coated on both faces filter like one reflection
		return a.Mul(S.OneMinus().Sqrt()).Mul(base)
	default:
		return spectrum.SWCSpectrum{}
	}
}

func (s *Schlick) SampleF(sw *spectrum.Wavelengths, woW core.Vec3, u1, u2, u3 float64, flags bxdf.Type, reverse bool) (Sample, bool) {
	wo := s.toLocal(woW)
	wCoating := s.coatingWeight(sw, wo, flags)
	wBase := 1 - wCoating

	var (
		wi, wiW                    core.Vec3
		sType                      bxdf.Type
		baseF, coatF               spectrum.SWCSpectrum
		basePdf, basePdfBack       float64
		coatingPdf, coatingPdfBack float64
	)
	if u3 < wBase {
		bs, ok := s.Base.SampleF(sw, woW, u1, u2, u3/wBase, flags, reverse)
		if !ok {
			return Sample{}, false
		}
		wiW, sType = bs.Wi, bs.Type
		wi = s.toLocal(wiW)
		baseF = bs.F.Scale(bs.Pdf)
		basePdf, basePdfBack = bs.Pdf, bs.PdfBack
		// a specular base draw gets no coat contribution
		if !sType.Has(bxdf.Specular) && coatingType.Matches(flags) {
			if reverse {
				coatF = s.coatingF(sw, wi, wo)
			} else {
				coatF = s.coatingF(sw, wo, wi)
			}
			coatingPdf = s.coatingPdf(wo, wi)
			coatingPdfBack = s.coatingPdf(wi, wo)
		}
	} else {
		var ok bool
		wi, coatingPdf, ok = s.coatingSample(wo, u1, u2)
		if !ok {
			return Sample{}, false
		}
		coatingPdfBack = s.coatingPdf(wi, wo)
		wiW = s.toWorld(wi)
		sType = coatingType
		if reverse {
			coatF = s.coatingF(sw, wi, wo)
			baseF = s.Base.F(sw, wiW, woW, reverse, flags)
		} else {
			coatF = s.coatingF(sw, wo, wi)
			baseF = s.Base.F(sw, woW, wiW, reverse, flags)
		}
		basePdf = s.Base.Pdf(sw, woW, wiW, flags)
		basePdfBack = s.Base.Pdf(sw, wiW, woW, flags)
	}

	side := s.sideTest(woW, wiW)
	if side == 0 {
		return Sample{}, false
	}
	var f spectrum.SWCSpectrum
	if reverse {
		f = s.combine(sw, wi, wo, side, reverse, coatF, baseF)
	} else {
		f = s.combine(sw, wo, wi, side, reverse, coatF, baseF)
	}

	pdf := coatingPdf*wCoating + basePdf*wBase
	if !validPdf(pdf) {
		return Sample{}, false
	}
	wCoatingR := s.coatingWeight(sw, wi, flags)
	pdfBack := coatingPdfBack*wCoatingR + basePdfBack*(1-wCoatingR)
	return Sample{
		Wi:      wiW,
		F:       f.DivScalar(pdf),
		Pdf:     pdf,
		PdfBack: pdfBack,
		Type:    sType,
	}, true
}

func (s *Schlick) Pdf(sw *spectrum.Wavelengths, woW, wiW core.Vec3, flags bxdf.Type) float64 {
	wo, wi := s.toLocal(woW), s.toLocal(wiW)
	wCoating := s.coatingWeight(sw, wo, flags)
	return (1-wCoating)*s.Base.Pdf(sw, woW, wiW, flags) + wCoating*s.coatingPdf(wo, wi)
}

func (s *Schlick) F(sw *spectrum.Wavelengths, woW, wiW core.Vec3, reverse bool, flags bxdf.Type) spectrum.SWCSpectrum {
	side := s.sideTest(woW, wiW)
	flags, ok := filterSide(flags, side)
	if !ok {
		return spectrum.SWCSpectrum{}
	}
	wo, wi := s.toLocal(woW), s.toLocal(wiW)
	var coat spectrum.SWCSpectrum
	if side > 0 && coatingType.Matches(flags) {
		coat = s.coatingF(sw, wo, wi)
	}
	return s.combine(sw, wo, wi, side, reverse, coat, s.Base.F(sw, woW, wiW, reverse, flags))
}

// CoatingRho estimates the directional reflectance of the coat alone
func (s *Schlick) CoatingRho(sw *spectrum.Wavelengths, wo core.Vec3, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if nSamples <= 0 {
		return spectrum.SWCSpectrum{}
	}
	samples := core.LatinHypercube(sampler, nSamples, 2)
	var r spectrum.SWCSpectrum
	for i := 0; i < nSamples; i++ {
		wi, pdf, ok := s.coatingSample(wo, samples[2*i], samples[2*i+1])
		if !ok {
			continue
		}
		r = r.Add(s.coatingF(sw, wi, wo).DivScalar(pdf))
	}
	return r.DivScalar(float64(nSamples))
}

// CoatingRhoHemispherical estimates the hemispherical reflectance of the coat alone
func (s *Schlick) CoatingRhoHemispherical(sw *spectrum.Wavelengths, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if nSamples <= 0 {
		return spectrum.SWCSpectrum{}
	}
	samples := core.LatinHypercube(sampler, nSamples, 4)
	pdfo := core.UniformHemispherePdf()
	var r spectrum.SWCSpectrum
	for i := 0; i < nSamples; i++ {
		wo := core.UniformSampleHemisphere(samples[4*i], samples[4*i+1])
		wi, pdf, ok := s.coatingSample(wo, samples[4*i+2], samples[4*i+3])
		if !ok {
			continue
		}
		r = r.AddWeighted(core.AbsCosTheta(wo)/pdfo, s.coatingF(sw, wi, wo).DivScalar(pdf))
	}
	return r.DivScalar(math.Pi * float64(nSamples))
}

func (s *Schlick) Rho(sw *spectrum.Wavelengths, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	r := s.Base.Rho(sw, flags, nSamples, sampler)
	if coatingType.Matches(flags) {
		r = r.Add(s.CoatingRhoHemispherical(sw, nSamples, sampler))
	}
	return r
}

func (s *Schlick) RhoDirectional(sw *spectrum.Wavelengths, woW core.Vec3, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	r := s.Base.RhoDirectional(sw, woW, flags, nSamples, sampler)
	if coatingType.Matches(flags) {
		r = r.Add(s.CoatingRho(sw, s.toLocal(woW), nSamples, sampler))
	}
	return r
}

func (s *Schlick) ApplyTransform(t core.Transform) float64 {
	s.Base.ApplyTransform(t)
	return s.shading.ApplyTransform(t)
}

func (s *Schlick) SetCompositingParams(cp *CompositingParams) {
	s.shading.SetCompositingParams(cp)
	s.Base.SetCompositingParams(cp)
}
