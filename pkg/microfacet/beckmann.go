package microfacet

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
)

// Beckmann is the Beckmann distribution with RMS slope r and the Smith
// shadowing term
type Beckmann struct {
	r float64
}

// NewBeckmann creates a Beckmann distribution
func NewBeckmann(rms float64) *Beckmann {
	return &Beckmann{r: math.Max(rms, 1e-4)}
}

func (b *Beckmann) D(wh core.Vec3) float64 {
	cosTheta := core.AbsCosTheta(wh)
	if cosTheta == 0 {
		return 0
	}
	cos2 := cosTheta * cosTheta
	tan2 := (1 - cos2) / cos2
	return math.Exp(-tan2/(b.r*b.r)) / (math.Pi * b.r * b.r * cos2 * cos2)
}

// HalfG is the rational approximation of the Smith term for one direction
func (b *Beckmann) HalfG(w, wh core.Vec3) float64 {
	if w.Dot(wh)*w.Z <= 0 {
		return 0
	}
	cosTheta := core.AbsCosTheta(w)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	if sinTheta == 0 {
		return 1
	}
	a := cosTheta / (b.r * sinTheta)
	if a >= 1.6 {
		return 1
	}
	return a * (3.535 + a*2.181) / (1 + a*(2.276+a*2.577))
}

func (b *Beckmann) G(wo, wi, wh core.Vec3) float64 {
	return b.HalfG(wo, wh) * b.HalfG(wi, wh)
}

func (b *Beckmann) SampleH(u1, u2 float64) (core.Vec3, float64, float64) {
	theta := math.Atan(math.Sqrt(math.Max(0, -(b.r*b.r)*math.Log(1-u1))))
	cosTheta := math.Cos(theta)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := u2 * 2 * math.Pi
	wh := core.SphericalDirection(sinTheta, cosTheta, phi)
	d := b.D(wh)
	return wh, d, d * cosTheta
}

func (b *Beckmann) Pdf(wh core.Vec3) float64 {
	return b.D(wh) * core.AbsCosTheta(wh)
}
