package material

import (
	"fmt"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Matte is a diffuse surface, Oren-Nayar when Sigma is positive
type Matte struct {
	Kd    Texture
	Sigma float64 // Facet slope deviation in degrees
}

// NewMatte creates a new matte material
func NewMatte(kd Texture, sigma float64) *Matte {
	return &Matte{Kd: kd, Sigma: sigma}
}

func (m *Matte) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	return single(sp.Frame, diffuse(reflectance(m.Kd, sp, sw), m.Sigma))
}

// diffuse picks the diffuse lobe for a slope deviation in degrees
func diffuse(r spectrum.SWCSpectrum, sigma float64) bxdf.BxDF {
	sigma = core.Clamp(sigma, 0, 90)
	if sigma == 0 {
		return bxdf.NewLambertian(r)
	}
	return bxdf.NewOrenNayar(r, sigma)
}

// MatteTranslucent scatters diffusely on both sides of a thin sheet
type MatteTranslucent struct {
	Kr               Texture
	Kt               Texture
	Sigma            float64
	EnergyConserving bool // Scale transmission by 1 - Kr
}

// NewMatteTranslucent creates a new translucent matte material
func NewMatteTranslucent(kr, kt Texture, sigma float64, energyConserving bool) *MatteTranslucent {
	return &MatteTranslucent{Kr: kr, Kt: kt, Sigma: sigma, EnergyConserving: energyConserving}
}

func (m *MatteTranslucent) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	r := reflectance(m.Kr, sp, sw)
	t := reflectance(m.Kt, sp, sw)
	if m.EnergyConserving {
		t = t.Mul(r.OneMinus())
	}

	multi := bsdf.NewMulti(sp.Frame)
	if !r.IsBlack() {
		if err := multi.Add(diffuse(r, m.Sigma)); err != nil {
			return nil, fmt.Errorf("matte translucent: %w", err)
		}
	}
	if !t.IsBlack() {
		if err := multi.Add(bxdf.NewBRDFToBTDF(diffuse(t, m.Sigma), 1, 1, 0)); err != nil {
			return nil, fmt.Errorf("matte translucent: %w", err)
		}
	}
	return multi, nil
}
