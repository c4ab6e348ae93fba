package bsdf

import (
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Single wraps exactly one lobe
type Single struct {
	shading
	BxDF bxdf.BxDF
}

// NewSingle creates a BSDF with one lobe
func NewSingle(frame core.Frame, b bxdf.BxDF) (*Single, error) {
	if b == nil {
		return nil, ErrNilComponent
	}
	return &Single{shading: shading{frame: frame}, BxDF: b}, nil
}

func (s *Single) NumComponents() int { return 1 }

func (s *Single) NumComponentsMatching(flags bxdf.Type) int {
	if s.BxDF.Type().Matches(flags) {
		return 1
	}
	return 0
}

func (s *Single) SampleF(sw *spectrum.Wavelengths, woW core.Vec3, u1, u2, u3 float64, flags bxdf.Type, reverse bool) (Sample, bool) {
	t := s.BxDF.Type()
	if !t.Matches(flags) {
		return Sample{}, false
	}
	ls, ok := s.BxDF.SampleF(sw, s.toLocal(woW), u1, u2, reverse)
	if !ok {
		return Sample{}, false
	}
	wiW := s.toWorld(ls.Wi)
	side := s.sideTest(woW, wiW)
	if !sideAllows(t, side) {
		return Sample{}, false
	}
	return Sample{
		Wi:      wiW,
		F:       geometricFactor(ls.F, side, reverse),
		Pdf:     ls.Pdf,
		PdfBack: ls.PdfBack,
		Type:    t,
	}, true
}

func (s *Single) Pdf(sw *spectrum.Wavelengths, woW, wiW core.Vec3, flags bxdf.Type) float64 {
	if !s.BxDF.Type().Matches(flags) {
		return 0
	}
	return s.BxDF.Pdf(sw, s.toLocal(woW), s.toLocal(wiW))
}

func (s *Single) F(sw *spectrum.Wavelengths, woW, wiW core.Vec3, reverse bool, flags bxdf.Type) spectrum.SWCSpectrum {
	side := s.sideTest(woW, wiW)
	flags, ok := filterSide(flags, side)
	if !ok || !s.BxDF.Type().Matches(flags) {
		return spectrum.SWCSpectrum{}
	}
	f := s.BxDF.F(sw, s.toLocal(woW), s.toLocal(wiW))
	return geometricFactor(f, side, reverse)
}

func (s *Single) Rho(sw *spectrum.Wavelengths, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if !s.BxDF.Type().Matches(flags) {
		return spectrum.SWCSpectrum{}
	}
	return s.BxDF.RhoHemispherical(sw, nSamples, sampler)
}

func (s *Single) RhoDirectional(sw *spectrum.Wavelengths, woW core.Vec3, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if !s.BxDF.Type().Matches(flags) {
		return spectrum.SWCSpectrum{}
	}
	return s.BxDF.Rho(sw, s.toLocal(woW), nSamples, sampler)
}
