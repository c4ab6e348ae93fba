package material

import (
	"fmt"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/fresnel"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Glass is a smooth dielectric with Cauchy dispersion and an optional thin
// film on the reflection. Architectural glass models a thin pane that
// transmits without bending.
type Glass struct {
	Kr            Texture
	Kt            Texture
	Index         float64
	CauchyB       float64 // Second Cauchy coefficient in nm², zero for no dispersion
	Film          float64
	FilmIndex     float64
	Architectural bool
}

// NewGlass creates a new glass material
func NewGlass(kr, kt Texture, index, cauchyB float64) *Glass {
	return &Glass{Kr: kr, Kt: kt, Index: index, CauchyB: cauchyB, FilmIndex: 1.5}
}

// NewArchitecturalGlass creates a thin glass pane
func NewArchitecturalGlass(kr, kt Texture, index float64) *Glass {
	g := NewGlass(kr, kt, index, 0)
	g.Architectural = true
	return g
}

func (g *Glass) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	r := reflectance(g.Kr, sp, sw)
	t := reflectance(g.Kt, sp, sw)
	fr := fresnel.NewCauchy(g.Index, g.CauchyB, spectrum.SWCSpectrum{})

	multi := bsdf.NewMulti(sp.Frame)
	if !r.IsBlack() {
		var lobe bxdf.BxDF
		if g.Architectural {
			lobe = bxdf.NewArchitecturalReflection(r, fr, g.Film, g.FilmIndex)
		} else {
			lobe = bxdf.NewSpecularReflection(r, fr, g.Film, g.FilmIndex)
		}
		if err := multi.Add(lobe); err != nil {
			return nil, fmt.Errorf("glass: %w", err)
		}
	}
	if !t.IsBlack() {
		lobe := bxdf.NewSpecularTransmission(t, fr, g.CauchyB != 0, g.Architectural)
		if err := multi.Add(lobe); err != nil {
			return nil, fmt.Errorf("glass: %w", err)
		}
	}
	return multi, nil
}

// RoughGlass is a dielectric with microfacet reflection and transmission
type RoughGlass struct {
	Kr         Texture
	Kt         Texture
	Index      float64
	CauchyB    float64
	URoughness float64
	VRoughness float64
	Dispersion bool

	RoughnessTexture Texture // Scales both roughnesses when set
}

// NewRoughGlass creates a new rough glass material
func NewRoughGlass(kr, kt Texture, index, uRoughness, vRoughness float64) *RoughGlass {
	return &RoughGlass{Kr: kr, Kt: kt, Index: index, URoughness: uRoughness, VRoughness: vRoughness}
}

func (g *RoughGlass) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	r := reflectance(g.Kr, sp, sw)
	t := reflectance(g.Kt, sp, sw)
	fr := fresnel.NewCauchy(g.Index, g.CauchyB, spectrum.SWCSpectrum{})
	u, v := roughness(g.URoughness, g.VRoughness, g.RoughnessTexture, sp)
	d := distribution(u, v, minGlassRoughness)

	multi := bsdf.NewMulti(sp.Frame)
	if !r.IsBlack() {
		if err := multi.Add(bxdf.NewMicrofacetReflection(r, fr, d, false)); err != nil {
			return nil, fmt.Errorf("rough glass: %w", err)
		}
	}
	if !t.IsBlack() {
		if err := multi.Add(bxdf.NewMicrofacetTransmission(t, fr, d, g.Dispersion)); err != nil {
			return nil, fmt.Errorf("rough glass: %w", err)
		}
	}
	return multi, nil
}
