package microfacet

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
)

// Blinn is the normalized Blinn-Phong distribution
type Blinn struct {
	exponent float64
}

// NewBlinn creates a Blinn distribution with the given exponent
func NewBlinn(exponent float64) *Blinn {
	return &Blinn{exponent: clampExponent(exponent)}
}

func (b *Blinn) D(wh core.Vec3) float64 {
	return (b.exponent + 2) * math.Pow(core.AbsCosTheta(wh), b.exponent) / (2 * math.Pi)
}

func (b *Blinn) G(wo, wi, wh core.Vec3) float64 {
	return CookTorranceG(wo, wi, wh)
}

func (b *Blinn) SampleH(u1, u2 float64) (core.Vec3, float64, float64) {
	cosTheta := math.Pow(u1, 1/(b.exponent+1))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := u2 * 2 * math.Pi
	wh := core.SphericalDirection(sinTheta, cosTheta, phi)
	cosE := math.Pow(cosTheta, b.exponent)
	return wh, (b.exponent + 2) * cosE / (2 * math.Pi), (b.exponent + 1) * cosE / (2 * math.Pi)
}

func (b *Blinn) Pdf(wh core.Vec3) float64 {
	return (b.exponent + 1) * math.Pow(core.AbsCosTheta(wh), b.exponent) / (2 * math.Pi)
}
