// Package bsdf composes bxdf lobes into world-space scattering functions
// attached to one shading point.
//
// Every composite answers the same questions: F for a pair of world
// directions, SampleF for a direction drawn from its own density and Pdf for
// that density. The first direction passed to F is the one whose cosine is
// folded into the value; with reverse set the caller is tracing from the
// light and the geometric correction |wi·ng / wo·ng| is not applied.
package bsdf

import (
	"errors"
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

var (
	// ErrTooManyComponents is returned by Add on a full Multi or Mix
	ErrTooManyComponents = errors.New("too many components")
	// ErrTooManyLayers is returned by Add on a full Layered
	ErrTooManyLayers = errors.New("too many layers")
	// ErrNilComponent is returned when a nil lobe or child is added
	ErrNilComponent = errors.New("nil component")
)

// Sample is the result of importance sampling a BSDF
type Sample struct {
	Wi      core.Vec3            // Sampled world direction
	F       spectrum.SWCSpectrum // F divided by Pdf
	Pdf     float64              // Density of Wi given wo
	PdfBack float64              // Density of wo given Wi
	Type    bxdf.Type            // Flags of the component that produced Wi
}

// BSDF is the scattering function at one shading point in world space
type BSDF interface {
	// NumComponents is the number of elementary lobes
	NumComponents() int

	// NumComponentsMatching counts the lobes selected by flags
	NumComponentsMatching(flags bxdf.Type) int

	// SampleF draws wi given wo from the components selected by flags
	SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2, u3 float64, flags bxdf.Type, reverse bool) (Sample, bool)

	// Pdf returns the density with which SampleF produces wi given wo
	Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3, flags bxdf.Type) float64

	// F evaluates the scattering between two world directions
	F(sw *spectrum.Wavelengths, wo, wi core.Vec3, reverse bool, flags bxdf.Type) spectrum.SWCSpectrum

	// Rho estimates the hemispherical reflectance
	Rho(sw *spectrum.Wavelengths, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum

	// RhoDirectional estimates the directional reflectance for wo
	RhoDirectional(sw *spectrum.Wavelengths, wo core.Vec3, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum

	// ApplyTransform moves the shading frame and returns the area scale
	ApplyTransform(t core.Transform) float64

	// SetCompositingParams attaches compositing overrides, shared with children
	SetCompositingParams(cp *CompositingParams)

	// Frame returns the shading frame
	Frame() core.Frame

	// CompositingParams returns the attached overrides, nil when none
	CompositingParams() *CompositingParams
}

// CompositingParams are the visibility and alpha overrides a material can
// request when its surface is composited over a background
type CompositingParams struct {
	Alpha                   float64
	VisibleMaterial         bool
	VisibleEmission         bool
	VisibleIndirectMaterial bool
	VisibleIndirectEmission bool
	OverrideAlpha           bool
}

// DefaultCompositingParams returns fully visible parameters without alpha override
func DefaultCompositingParams() CompositingParams {
	return CompositingParams{
		VisibleMaterial:         true,
		VisibleEmission:         true,
		VisibleIndirectMaterial: true,
		VisibleIndirectEmission: true,
	}
}

// shading holds what every composite carries: its frame and the compositing overrides
type shading struct {
	frame  core.Frame
	params *CompositingParams
}

func (s *shading) Frame() core.Frame { return s.frame }

func (s *shading) CompositingParams() *CompositingParams { return s.params }

func (s *shading) SetCompositingParams(cp *CompositingParams) { s.params = cp }

func (s *shading) ApplyTransform(t core.Transform) float64 {
	return s.frame.ApplyTransform(t)
}

func (s *shading) toLocal(w core.Vec3) core.Vec3 { return s.frame.WorldToLocal(w) }

func (s *shading) toWorld(w core.Vec3) core.Vec3 { return s.frame.LocalToWorld(w) }

// sideTest returns (wi·ng)/(wo·ng): positive for reflection, negative for
// transmission and zero when wo grazes the geometric surface
func (s *shading) sideTest(wo, wi core.Vec3) float64 {
	cosWo := wo.Dot(s.frame.Ng)
	if math.Abs(cosWo) < core.MachineEpsilon {
		return 0
	}
	return wi.Dot(s.frame.Ng) / cosWo
}

// filterSide removes the flags a side test rules out. It reports false for
// a degenerate side.
func filterSide(flags bxdf.Type, side float64) (bxdf.Type, bool) {
	switch {
	case side > 0:
		return flags &^ bxdf.Transmission, true
	case side < 0:
		return flags &^ bxdf.Reflection, true
	default:
		return flags, false
	}
}

// sideAllows reports whether a lobe of type t may produce a direction on the given side
func sideAllows(t bxdf.Type, side float64) bool {
	switch {
	case side > 0:
		return !t.Has(bxdf.Transmission)
	case side < 0:
		return !t.Has(bxdf.Reflection)
	default:
		return false
	}
}

// geometricFactor applies |side| when the walk comes from the eye
func geometricFactor(f spectrum.SWCSpectrum, side float64, reverse bool) spectrum.SWCSpectrum {
	if reverse {
		return f
	}
	return f.Scale(math.Abs(side))
}

func validPdf(pdf float64) bool {
	return pdf > 0 && !math.IsNaN(pdf)
}
