package microfacet

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
)

// Anisotropic is the Ashikhmin-Shirley distribution with separate exponents
// along the tangent (ex) and bitangent (ey)
type Anisotropic struct {
	ex, ey float64
}

// NewAnisotropic creates an Ashikhmin-Shirley distribution
func NewAnisotropic(ex, ey float64) *Anisotropic {
	return &Anisotropic{ex: clampExponent(ex), ey: clampExponent(ey)}
}

func (a *Anisotropic) exponent(wh core.Vec3) float64 {
	sin2 := 1 - wh.Z*wh.Z
	if sin2 <= 0 {
		return 0
	}
	return (a.ex*wh.X*wh.X + a.ey*wh.Y*wh.Y) / sin2
}

func (a *Anisotropic) D(wh core.Vec3) float64 {
	cosTheta := core.AbsCosTheta(wh)
	return math.Sqrt((a.ex+2)*(a.ey+2)) / (2 * math.Pi) * math.Pow(cosTheta, a.exponent(wh))
}

func (a *Anisotropic) G(wo, wi, wh core.Vec3) float64 {
	return CookTorranceG(wo, wi, wh)
}

func (a *Anisotropic) sampleFirstQuadrant(u1, u2 float64) (phi, cosTheta float64) {
	if a.ex == a.ey {
		phi = math.Pi * u1 * 0.5
	} else {
		phi = math.Atan(math.Sqrt((a.ex+1)/(a.ey+1)) * math.Tan(math.Pi*u1*0.5))
	}
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)
	cosTheta = math.Pow(u2, 1/(a.ex*cosPhi*cosPhi+a.ey*sinPhi*sinPhi+1))
	return phi, cosTheta
}

func (a *Anisotropic) SampleH(u1, u2 float64) (core.Vec3, float64, float64) {
	var phi, cosTheta float64
	switch {
	case u1 < 0.25:
		phi, cosTheta = a.sampleFirstQuadrant(4*u1, u2)
	case u1 < 0.5:
		phi, cosTheta = a.sampleFirstQuadrant(4*(0.5-u1), u2)
		phi = math.Pi - phi
	case u1 < 0.75:
		phi, cosTheta = a.sampleFirstQuadrant(4*(u1-0.5), u2)
		phi += math.Pi
	default:
		phi, cosTheta = a.sampleFirstQuadrant(4*(1-u1), u2)
		phi = 2*math.Pi - phi
	}
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	wh := core.SphericalDirection(sinTheta, cosTheta, phi)
	return wh, a.D(wh), a.Pdf(wh)
}

func (a *Anisotropic) Pdf(wh core.Vec3) float64 {
	cosTheta := core.AbsCosTheta(wh)
	return math.Sqrt((a.ex+1)*(a.ey+1)) / (2 * math.Pi) * math.Pow(cosTheta, a.exponent(wh))
}
