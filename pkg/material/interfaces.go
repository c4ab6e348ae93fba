// Package material builds the BSDF of a surface point from material
// parameters. Every material produces a fresh composite per shading point.
package material

import (
	"errors"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Material builds BSDFs for the surface points it covers
type Material interface {
	GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error)
}

// ShadingPoint contains what a material needs to know about the surface point
type ShadingPoint struct {
	Frame   core.Frame   // Shading frame, carrying the surface UV
	Sampler core.Sampler // Random source for stochastic composites
}

// NewShadingPoint creates a shading point for frame
func NewShadingPoint(frame core.Frame, sampler core.Sampler) *ShadingPoint {
	return &ShadingPoint{Frame: frame, Sampler: sampler}
}

// Flipped returns the same point seen from the back face
func (sp *ShadingPoint) Flipped() *ShadingPoint {
	f := sp.Frame
	return &ShadingPoint{
		Frame:   core.NewFrame(f.Nn.Negate(), f.Ng.Negate(), f.Dpdu, f.Dpdv, f.UV),
		Sampler: sp.Sampler,
	}
}

var (
	// ErrNoSampler is returned by materials that need a random source when the shading point has none
	ErrNoSampler = errors.New("material: shading point has no sampler")
	// ErrNilMaterial is returned when a composite material references a missing child
	ErrNilMaterial = errors.New("material: nil child material")
)

// Composited attaches compositing overrides to another material's BSDFs
type Composited struct {
	Material Material
	Params   bsdf.CompositingParams
}

// NewComposited wraps m with compositing overrides
func NewComposited(m Material, params bsdf.CompositingParams) *Composited {
	return &Composited{Material: m, Params: params}
}

func (c *Composited) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	if c.Material == nil {
		return nil, ErrNilMaterial
	}
	b, err := c.Material.GetBSDF(sp, sw)
	if err != nil {
		return nil, err
	}
	b.SetCompositingParams(&c.Params)
	return b, nil
}

// single wraps one lobe, returning a nil interface on failure
func single(frame core.Frame, lobe bxdf.BxDF) (bsdf.BSDF, error) {
	b, err := bsdf.NewSingle(frame, lobe)
	if err != nil {
		return nil, err
	}
	return b, nil
}
