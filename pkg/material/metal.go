package material

import (
	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/fresnel"
	"github.com/df07/go-spectral-bsdf/pkg/microfacet"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Roughness limits of the Schlick distribution built from u and v roughness
const (
	minRoughness      = 1e-6
	minGlassRoughness = 6e-3
)

// Mirror is a perfect specular reflector with an optional thin film
type Mirror struct {
	Kr        Texture
	Film      float64 // Film thickness in nm, zero for none
	FilmIndex float64
}

// NewMirror creates a new mirror material
func NewMirror(kr Texture) *Mirror {
	return &Mirror{Kr: kr, FilmIndex: 1.5}
}

func (m *Mirror) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	r := reflectance(m.Kr, sp, sw)
	return single(sp.Frame, bxdf.NewSpecularReflection(r, fresnel.NoOp{}, m.Film, m.FilmIndex))
}

// Metal is a rough conductor. The complex index comes from Eta and K, or
// from the normal incidence color Kr when Eta is nil.
type Metal struct {
	Eta        Texture
	K          Texture
	Kr         Texture
	URoughness float64
	VRoughness float64

	RoughnessTexture Texture // Scales both roughnesses when set
}

// NewMetal creates a metal from its complex index of refraction
func NewMetal(eta, k Texture, uRoughness, vRoughness float64) *Metal {
	return &Metal{Eta: eta, K: k, URoughness: uRoughness, VRoughness: vRoughness}
}

// NewMetalFromColor creates a metal with normal incidence reflectance kr
func NewMetalFromColor(kr Texture, roughness float64) *Metal {
	return &Metal{Kr: kr, URoughness: roughness, VRoughness: roughness}
}

func (m *Metal) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	var fr fresnel.Fresnel
	if m.Eta != nil {
		fr = fresnel.NewGeneral(fresnel.ModelAuto, spectral(m.Eta, sp, sw), spectral(m.K, sp, sw))
	} else {
		fr = fresnel.NewConductorFromReflectance(reflectance(m.Kr, sp, sw))
	}
	u, v := roughness(m.URoughness, m.VRoughness, m.RoughnessTexture, sp)
	d := distribution(u, v, minRoughness)
	return single(sp.Frame, bxdf.NewMicrofacetReflection(spectrum.Uniform(1), fr, d, false))
}

// distribution converts u and v roughness to an anisotropic Schlick distribution
func distribution(u, v, lo float64) *microfacet.Schlick {
	u = core.Clamp(u, lo, 1)
	v = core.Clamp(v, lo, 1)
	u2, v2 := u*u, v*v
	anisotropy := v2/u2 - 1
	if u2 < v2 {
		anisotropy = 1 - u2/v2
	}
	return microfacet.NewSchlick(u*v, anisotropy)
}
