package cloth

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
)

// YarnKind distinguishes yarns running along v (warp) from yarns running along u (weft)
type YarnKind int

const (
	Warp YarnKind = iota
	Weft
)

func (k YarnKind) String() string {
	if k == Weft {
		return "weft"
	}
	return "warp"
}

// Yarn is one yarn segment of a weave tile. Angles are in radians.
type Yarn struct {
	Kind    YarnKind
	Psi     float64 // Fiber twist angle; zero selects the filament model
	Umax    float64 // Maximum inclination angle
	Kappa   float64 // Spine curvature
	Width   float64 // Width of the segment rectangle
	Length  float64 // Length of the segment rectangle
	CenterU float64 // Segment center in tile coordinates
	CenterV float64
	Index   int // Color slot: 0 for warp colors, 1 for weft colors
}

// segmentUV maps a position relative to the segment center to yarn
// coordinates and returns the inclination bound perturbed by the pattern noise
func (y *Yarn) segmentUV(p *WeavePattern, center, xy core.Vec2) (core.Vec2, float64) {
	umax := y.Umax
	if p.Period > 0 {
		r1 := perlin((center.X*(float64(p.TileHeight)*p.RepeatV+
			teaFloat(seed(center.X), seed(2*center.Y), teaIterations))+center.Y)/p.Period, 0, 0)
		r2 := perlin((center.Y*(float64(p.TileWidth)*p.RepeatU+
			teaFloat(seed(center.X), seed(2*center.Y+1), teaIterations))+center.X)/p.Period, 0, 0)
		if y.Kind == Weft {
			umax += r1*p.DWeftUmaxOverDWarp + r2*p.DWeftUmaxOverDWeft
		} else {
			umax += r1*p.DWarpUmaxOverDWarp + r2*p.DWarpUmaxOverDWeft
		}
	}

	if y.Kind == Weft {
		// rotated a quarter turn about z
		return core.NewVec2(xy.X*2*umax/y.Length, -xy.Y*math.Pi/y.Width), umax
	}
	return core.NewVec2(xy.Y*2*umax/y.Length, xy.X*math.Pi/y.Width), umax
}

// integrand evaluates the specular scattering of the yarn at uv for the
// upper-hemisphere directions omI and omR
func (y *Yarn) integrand(p *WeavePattern, uv core.Vec2, umax float64, omI, omR core.Vec3) float64 {
	area := p.WarpArea
	if y.Kind == Weft {
		omI = core.Vec3{X: -omI.Y, Y: omI.X, Z: omI.Z}
		omR = core.Vec3{X: -omR.Y, Y: omR.X, Z: omR.Z}
		area = p.WeftArea
	}
	var fs float64
	if y.Psi != 0 {
		fs = y.stapleIntegrand(p, omI, omR, uv.X, uv.Y, umax)
	} else {
		fs = y.filamentIntegrand(p, omI, omR, uv.X, uv.Y, umax)
	}
	return fs * (p.WarpArea + p.WeftArea) / area
}

// filamentIntegrand is the scattering of untwisted filament yarns; u is
// compared against the highlight location u(v)
func (y *Yarn) filamentIntegrand(p *WeavePattern, omI, omR core.Vec3, u, v, umax float64) float64 {
	if p.SS < 0 || p.SS >= 1 {
		return 0
	}
	if y.Width*math.Sin(umax) >= y.Length || y.Kappa < -1 {
		return 0
	}

	h := omR.Add(omI).Normalize()
	uOfV := math.Atan2(h.Y, h.Z)
	if math.Abs(uOfV) >= umax {
		return 0
	}
	// constant highlight width in u
	deltaU := umax * p.HighlightWidth
	if math.Abs(uOfV-u) >= deltaU {
		return 0
	}

	n := core.NewVec3(math.Sin(v), math.Sin(uOfV)*math.Cos(v), math.Cos(uOfV)*math.Cos(v)).Normalize()
	t := core.NewVec3(0, math.Cos(uOfV), -math.Sin(uOfV)).Normalize()

	smoothed := (1 - p.SS) * umax
	r := y.radiusOfCurvature(math.Min(math.Abs(uOfV), smoothed), smoothed)

	a := 0.5 * y.Width
	gu := a * (r + a*math.Cos(v)) / (omI.Add(omR).Length() * math.Abs(t.Cross(h).X))
	fc := p.Alpha + vonMises(-omI.Dot(omR), p.Beta)

	as := seeliger(n.Dot(omI), n.Dot(omR), 0, 1)
	if p.SS > 0 {
		as *= core.SmoothStep(0, 1, (umax-math.Abs(uOfV))/(p.SS*umax))
	}
	return gu * fc * as * math.Pi / p.HighlightWidth
}

// stapleIntegrand is the scattering of twisted staple yarns; v is compared
// against the highlight location v(u)
func (y *Yarn) stapleIntegrand(p *WeavePattern, omI, omR core.Vec3, u, v, umax float64) float64 {
	if y.Width*math.Sin(umax) >= y.Length || y.Kappa < -1 {
		return 0
	}

	h := omI.Add(omR).Normalize()
	sinU, cosU := math.Sincos(u)
	hyz := h.Y*sinU + h.Z*cosU
	d := (h.Y*cosU - h.Z*sinU) / (math.Sqrt(h.X*h.X+hyz*hyz) * math.Tan(y.Psi))
	if !(math.Abs(d) < 1) {
		return 0
	}
	vOfU := math.Atan2(-h.Y*sinU-h.Z*cosU, h.X) + math.Acos(d)

	// constant highlight width on screen
	deltaV := 0.5 * math.Pi * p.HighlightWidth
	if math.Abs(vOfU-v) >= deltaV {
		return 0
	}

	n := core.NewVec3(math.Sin(vOfU), sinU*math.Cos(vOfU), cosU*math.Cos(vOfU)).Normalize()
	r := y.radiusOfCurvature(math.Abs(u), umax)

	a := 0.5 * y.Width
	gv := a * (r + a*math.Cos(vOfU)) / (omI.Add(omR).Length() * n.Dot(h) * math.Abs(math.Sin(y.Psi)))
	fc := p.Alpha + vonMises(-omI.Dot(omR), p.Beta)
	att := seeliger(n.Dot(omI), n.Dot(omR), 0, 1)
	return gv * fc * att * 2 * umax / p.HighlightWidth
}

// radiusOfCurvature returns the spine curvature radius at inclination u. The
// spine is a circle, ellipse, parabola or hyperbola depending on kappa.
func (y *Yarn) radiusOfCurvature(u, umax float64) float64 {
	rhat := 1 + y.Kappa*(1+1/math.Tan(umax))
	a := 0.5 * y.Width
	halfLength := 0.5*y.Length - a*math.Sin(umax)

	switch {
	case rhat == 1:
		return 0.5*y.Length/math.Sin(umax) - a
	case rhat > 0:
		tmax := math.Atan(rhat * math.Tan(umax))
		bhat := halfLength / math.Sin(tmax)
		ahat := bhat / rhat
		t := math.Atan(rhat * math.Tan(u))
		st, ct := math.Sincos(t)
		return math.Pow(bhat*bhat*ct*ct+ahat*ahat*st*st, 1.5) / (ahat * bhat)
	case rhat < 0:
		tmax := -math.Atanh(rhat * math.Tan(umax))
		bhat := halfLength / math.Sinh(tmax)
		ahat := bhat / rhat
		t := -math.Atanh(rhat * math.Tan(u))
		ch, sh := math.Cosh(t), math.Sinh(t)
		return -math.Pow(bhat*bhat*ch*ch+ahat*ahat*sh*sh, 1.5) / (ahat * bhat)
	default:
		tmax := math.Tan(umax)
		ahat := halfLength / (2 * tmax)
		t := math.Tan(u)
		return 2 * ahat * math.Pow(1+t*t, 1.5)
	}
}
