package microfacet

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
)

// minAnisotropicSpread keeps 1-|anisotropy| away from the degenerate zero
const minAnisotropicSpread = 1e-3

// Schlick is Schlick's rational approximation of the Beckmann distribution
// with an optional anisotropic azimuthal factor. Roughness is in [0, 1],
// anisotropy in [-1, 1]. Positive anisotropy narrows the distribution
// along x, stretching highlights along y; negative anisotropy does the
// opposite.
type Schlick struct {
	roughness  float64
	anisotropy float64
}

// NewSchlick creates a Schlick distribution
func NewSchlick(roughness, anisotropy float64) *Schlick {
	return &Schlick{
		roughness:  core.Clamp(roughness, 0, 1),
		anisotropy: core.Clamp(anisotropy, -1, 1),
	}
}

// Roughness returns the roughness parameter
func (s *Schlick) Roughness() float64 {
	return s.roughness
}

// Anisotropy returns the anisotropy parameter
func (s *Schlick) Anisotropy() float64 {
	return s.anisotropy
}

func (s *Schlick) spread() float64 {
	return math.Max(1-math.Abs(s.anisotropy), minAnisotropicSpread)
}

// z is the zenith term r / (1 + (r-1)cos²)²
func (s *Schlick) z(cosNH float64) float64 {
	if s.roughness == 0 {
		return math.Inf(1)
	}
	cos2 := cosNH * cosNH
	d := cos2*s.roughness + (1 - cos2)
	return (s.roughness / d) / d
}

// a is the azimuthal term
func (s *Schlick) a(h core.Vec3) float64 {
	hl := math.Sqrt(h.X*h.X + h.Y*h.Y)
	if hl > 0 {
		w := h.Y
		if s.anisotropy > 0 {
			w = h.X
		}
		w /= hl
		p := s.spread()
		return math.Sqrt(p / (p*p + w*w*(1-p*p)))
	}
	return 1
}

// SchlickG is the single direction shadowing term
func (s *Schlick) SchlickG(cosTheta float64) float64 {
	return cosTheta / (cosTheta*(1-s.roughness) + s.roughness)
}

func (s *Schlick) D(wh core.Vec3) float64 {
	return s.z(core.AbsCosTheta(wh)) * s.a(wh) / math.Pi
}

func (s *Schlick) G(wo, wi, wh core.Vec3) float64 {
	return s.SchlickG(core.AbsCosTheta(wo)) * s.SchlickG(core.AbsCosTheta(wi))
}

// quadrantPhi inverts the azimuthal CDF inside one quadrant
func quadrantPhi(a, b float64) float64 {
	return math.Pi * 0.5 * math.Sqrt(a*b/(1-a*(1-b)))
}

func (s *Schlick) SampleH(u1, u2 float64) (core.Vec3, float64, float64) {
	u2 *= 4
	cos2Theta := u1 / (s.roughness*(1-u1) + u1)
	cosTheta := math.Sqrt(cos2Theta)
	sinTheta := math.Sqrt(math.Max(0, 1-cos2Theta))

	p := s.spread()
	b := p * p
	var phi float64
	switch {
	case u2 < 1:
		phi = quadrantPhi(u2*u2, b)
	case u2 < 2:
		u2 = 2 - u2
		phi = math.Pi - quadrantPhi(u2*u2, b)
	case u2 < 3:
		u2 -= 2
		phi = math.Pi + quadrantPhi(u2*u2, b)
	default:
		u2 = 4 - u2
		phi = 2*math.Pi - quadrantPhi(u2*u2, b)
	}
	if s.anisotropy > 0 {
		phi += math.Pi * 0.5
	}

	wh := core.SphericalDirection(sinTheta, cosTheta, phi)
	return wh, s.D(wh), s.Pdf(wh)
}

// Pdf is the density of SampleH: the zenith term times cos θ, scaled by the
// density of the piecewise azimuth relative to a uniform one
func (s *Schlick) Pdf(wh core.Vec3) float64 {
	cosTheta := core.AbsCosTheta(wh)
	pdf := s.z(cosTheta) * cosTheta / math.Pi
	if s.anisotropy == 0 {
		return pdf
	}
	x, y := math.Abs(wh.X), math.Abs(wh.Y)
	if x == 0 && y == 0 {
		return pdf
	}
	var phi float64
	if s.anisotropy > 0 {
		phi = math.Atan2(x, y)
	} else {
		phi = math.Atan2(y, x)
	}
	sq := 2 * phi / math.Pi
	p := s.spread()
	b := p * p
	den := b + sq*sq*(1-b)
	return pdf * b / (den * math.Sqrt(den))
}
