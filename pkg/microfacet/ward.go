package microfacet

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
)

// Ward is the isotropic Ward distribution. Its D is already the sampling density.
type Ward struct {
	r float64
}

// NewWard creates a Ward distribution
func NewWard(rms float64) *Ward {
	return &Ward{r: math.Max(rms, 1e-4)}
}

func (w *Ward) D(wh core.Vec3) float64 {
	cosTheta := core.AbsCosTheta(wh)
	if cosTheta == 0 {
		return 0
	}
	cos2 := cosTheta * cosTheta
	tan2 := (1 - cos2) / cos2
	return math.Exp(-tan2/(w.r*w.r)) / (math.Pi * w.r * w.r * cos2 * cosTheta)
}

func (w *Ward) G(wo, wi, wh core.Vec3) float64 {
	return CookTorranceG(wo, wi, wh)
}

func (w *Ward) SampleH(u1, u2 float64) (core.Vec3, float64, float64) {
	theta := math.Atan(w.r * math.Sqrt(math.Max(0, -math.Log(1-u1))))
	cosTheta := math.Cos(theta)
	sinTheta := math.Sin(theta)
	phi := u2 * 2 * math.Pi
	wh := core.SphericalDirection(sinTheta, cosTheta, phi)
	d := w.D(wh)
	return wh, d, d
}

func (w *Ward) Pdf(wh core.Vec3) float64 {
	return w.D(wh)
}
