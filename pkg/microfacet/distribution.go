// Package microfacet provides the slope distributions of rough surfaces used
// by the glossy lobes.
package microfacet

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
)

// Distribution is a microfacet normal distribution in the local shading frame
type Distribution interface {
	// D returns the density of microfacet normals at half vector wh
	D(wh core.Vec3) float64

	// G returns the shadowing-masking term for the pair (wo, wi)
	G(wo, wi, wh core.Vec3) float64

	// SampleH draws a half vector in the upper hemisphere. d is D(wh) and pdf
	// the solid angle density of wh; pdf == 0 means no sample.
	SampleH(u1, u2 float64) (wh core.Vec3, d, pdf float64)

	// Pdf returns the solid angle density with which SampleH draws wh
	Pdf(wh core.Vec3) float64
}

// CookTorranceG is the V-cavity shadowing-masking term
func CookTorranceG(wo, wi, wh core.Vec3) float64 {
	nDotWh := core.AbsCosTheta(wh)
	nDotWo := core.AbsCosTheta(wo)
	nDotWi := core.AbsCosTheta(wi)
	woDotWh := wo.AbsDot(wh)
	wiDotWh := wi.AbsDot(wh)
	return math.Min(1, math.Min(2*nDotWh*nDotWo/woDotWh, 2*nDotWh*nDotWi/wiDotWh))
}

// maxExponent bounds Phong-style exponents so pow stays finite
const maxExponent = 100000.0

func clampExponent(e float64) float64 {
	if e > maxExponent || math.IsNaN(e) {
		return maxExponent
	}
	return e
}
