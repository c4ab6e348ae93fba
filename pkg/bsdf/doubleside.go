package bsdf

import (
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// DoubleSide sends every query to Front or Back depending on which side of
// the geometric surface wo lies. The two children are never blended.
type DoubleSide struct {
	shading
	Front BSDF
	Back  BSDF
}

// NewDoubleSide creates a two-sided BSDF
func NewDoubleSide(frame core.Frame, front, back BSDF) (*DoubleSide, error) {
	if front == nil || back == nil {
		return nil, ErrNilComponent
	}
	return &DoubleSide{shading: shading{frame: frame}, Front: front, Back: back}, nil
}

// side returns the child facing wo
func (d *DoubleSide) side(wo core.Vec3) BSDF {
	if wo.Dot(d.frame.Ng) > 0 {
		return d.Front
	}
	return d.Back
}

func (d *DoubleSide) NumComponents() int {
	return d.Front.NumComponents() + d.Back.NumComponents()
}

func (d *DoubleSide) NumComponentsMatching(flags bxdf.Type) int {
	return d.Front.NumComponentsMatching(flags) + d.Back.NumComponentsMatching(flags)
}

func (d *DoubleSide) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2, u3 float64, flags bxdf.Type, reverse bool) (Sample, bool) {
	return d.side(wo).SampleF(sw, wo, u1, u2, u3, flags, reverse)
}

func (d *DoubleSide) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3, flags bxdf.Type) float64 {
	return d.side(wo).Pdf(sw, wo, wi, flags)
}

func (d *DoubleSide) F(sw *spectrum.Wavelengths, wo, wi core.Vec3, reverse bool, flags bxdf.Type) spectrum.SWCSpectrum {
	return d.side(wo).F(sw, wo, wi, reverse, flags)
}

// Rho reports the front face
func (d *DoubleSide) Rho(sw *spectrum.Wavelengths, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	return d.Front.Rho(sw, flags, nSamples, sampler)
}

func (d *DoubleSide) RhoDirectional(sw *spectrum.Wavelengths, wo core.Vec3, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	return d.side(wo).RhoDirectional(sw, wo, flags, nSamples, sampler)
}

func (d *DoubleSide) ApplyTransform(t core.Transform) float64 {
	d.Front.ApplyTransform(t)
	d.Back.ApplyTransform(t)
	return d.shading.ApplyTransform(t)
}

func (d *DoubleSide) SetCompositingParams(cp *CompositingParams) {
	d.shading.SetCompositingParams(cp)
	d.Front.SetCompositingParams(cp)
	d.Back.SetCompositingParams(cp)
}
