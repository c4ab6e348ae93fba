package material

import (
	"fmt"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/fresnel"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Coating is a glossy varnish over a base material
type Coating struct {
	Base        Material
	Ks          Texture // Specular color, scaled to R0 when Index is positive
	Ka          Texture // Absorption color of the coat
	Depth       float64
	Index       float64
	URoughness  float64
	VRoughness  float64
	Multibounce bool

	RoughnessTexture Texture // Scales both roughnesses when set
}

// NewCoating creates a coating over base
func NewCoating(base Material, ks Texture, roughness float64) *Coating {
	return &Coating{Base: base, Ks: ks, URoughness: roughness, VRoughness: roughness}
}

// NewGlossy creates a coated diffuse material
func NewGlossy(kd, ks Texture, roughness float64) *Coating {
	return NewCoating(NewMatte(kd, 0), ks, roughness)
}

func (c *Coating) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	if c.Base == nil {
		return nil, ErrNilMaterial
	}
	base, err := c.Base.GetBSDF(sp, sw)
	if err != nil {
		return nil, fmt.Errorf("coating base: %w", err)
	}

	s := spectral(c.Ks, sp, sw)
	if c.Index > 0 {
		ti := (c.Index - 1) / (c.Index + 1)
		s = s.Scale(ti * ti)
	}
	s = s.Clamp(0, 1)
	a := reflectance(c.Ka, sp, sw)

	u, v := roughness(c.URoughness, c.VRoughness, c.RoughnessTexture, sp)
	d := distribution(u, v, minRoughness)
	b, err := bsdf.NewSchlick(sp.Frame, fresnel.NewSchlick(s, a), d, c.Multibounce, a, c.Depth, base)
	if err != nil {
		return nil, fmt.Errorf("coating: %w", err)
	}
	return b, nil
}
