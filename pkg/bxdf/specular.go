package bxdf

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/fresnel"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// SpecularReflection is a perfect mirror lobe scaled by a Fresnel term and an
// optional thin film. Architectural mirrors only reflect on their front side.
type SpecularReflection struct {
	R             spectrum.SWCSpectrum
	Fresnel       fresnel.Fresnel
	Film          float64 // Film thickness in nanometers, 0 disables interference
	FilmIndex     float64
	Architectural bool
}

// NewSimpleSpecularReflection creates a mirror weighted only by fr
func NewSimpleSpecularReflection(fr fresnel.Fresnel) *SpecularReflection {
	return &SpecularReflection{R: spectrum.Uniform(1), Fresnel: fr}
}

// NewSimpleArchitecturalReflection creates a front-only mirror weighted by fr
func NewSimpleArchitecturalReflection(fr fresnel.Fresnel) *SpecularReflection {
	s := NewSimpleSpecularReflection(fr)
	s.Architectural = true
	return s
}

// NewSpecularReflection creates a tinted mirror with optional thin film
func NewSpecularReflection(r spectrum.SWCSpectrum, fr fresnel.Fresnel, film, filmIndex float64) *SpecularReflection {
	return &SpecularReflection{R: r, Fresnel: fr, Film: film, FilmIndex: filmIndex}
}

// NewArchitecturalReflection creates a tinted front-only mirror
func NewArchitecturalReflection(r spectrum.SWCSpectrum, fr fresnel.Fresnel, film, filmIndex float64) *SpecularReflection {
	s := NewSpecularReflection(r, fr, film, filmIndex)
	s.Architectural = true
	return s
}

func (s *SpecularReflection) Type() Type { return Reflection | Specular }

// F is zero: a delta lobe is only reached through SampleF
func (s *SpecularReflection) F(*spectrum.Wavelengths, core.Vec3, core.Vec3) spectrum.SWCSpectrum {
	return spectrum.SWCSpectrum{}
}

func (s *SpecularReflection) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	if s.Architectural && wo.Z <= 0 {
		return Sample{}, false
	}
	f := s.Fresnel.Evaluate(sw, core.CosTheta(wo))
	if s.Film > 0 {
		f = f.Mul(PhaseDifference(sw, wo, s.Film, s.FilmIndex))
	}
	return Sample{
		Wi:      core.NewVec3(-wo.X, -wo.Y, wo.Z),
		F:       f.Mul(s.R),
		Pdf:     1,
		PdfBack: 1,
	}, true
}

func (s *SpecularReflection) Pdf(*spectrum.Wavelengths, core.Vec3, core.Vec3) float64 {
	return 0
}

func (s *SpecularReflection) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(s, sw, wo, n, sampler)
}

func (s *SpecularReflection) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(s, sw, n, sampler)
}

func (s *SpecularReflection) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	if s.Architectural && wo.Z <= 0 {
		return 0
	}
	return s.Fresnel.Evaluate(sw, core.CosTheta(wo)).Filter(sw)
}

// PhaseDifference returns the reflectance weight cos²(δ/2) of a thin film of
// the given thickness (nm) and index for every sampled wavelength
func PhaseDifference(sw *spectrum.Wavelengths, wo core.Vec3, film, filmIndex float64) spectrum.SWCSpectrum {
	sinO := core.SinTheta(wo)
	s := math.Sqrt(math.Max(0, filmIndex*filmIndex-sinO*sinO))
	var pd spectrum.SWCSpectrum
	for i := range pd {
		phase := (4*math.Pi*film/sw.W[i])*s + math.Pi
		c := math.Cos(phase)
		pd[i] = c * c
	}
	return pd
}

// SpecularTransmission is perfect refraction through a dielectric interface.
// Dispersive interfaces switch the wavelength context to single mode.
// Architectural glazing passes light straight through a thin pane.
type SpecularTransmission struct {
	T             spectrum.SWCSpectrum
	Fresnel       fresnel.Fresnel
	Dispersive    bool
	Architectural bool
}

// NewSimpleSpecularTransmission creates an untinted refraction lobe
func NewSimpleSpecularTransmission(fr fresnel.Fresnel, dispersive, architectural bool) *SpecularTransmission {
	return NewSpecularTransmission(spectrum.Uniform(1), fr, dispersive, architectural)
}

// NewSpecularTransmission creates a refraction lobe tinted by t
func NewSpecularTransmission(t spectrum.SWCSpectrum, fr fresnel.Fresnel, dispersive, architectural bool) *SpecularTransmission {
	return &SpecularTransmission{T: t, Fresnel: fr, Dispersive: dispersive, Architectural: architectural}
}

func (s *SpecularTransmission) Type() Type { return Transmission | Specular }

// glazing returns the transmittance of an architectural pane including the
// inter-reflections between its two faces
func glazing(fr spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	one := spectrum.Uniform(1)
	t := one.Sub(fr)
	return one.Sub(fr.Mul(one.Add(t.Mul(t))))
}

// F is non-zero only for architectural glazing along the straight continuation
func (s *SpecularTransmission) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if !(s.Architectural && isOpposite(wo, wi)) {
		return spectrum.SWCSpectrum{}
	}
	entering := core.CosTheta(wo) > 0
	if s.Dispersive {
		sw.SampleSingle()
	}
	eta := 1 / s.Fresnel.Index(sw)
	if eta*eta*core.SinTheta2(wo) >= 1 {
		return spectrum.SWCSpectrum{}
	}
	var fr spectrum.SWCSpectrum
	if entering {
		fr = s.Fresnel.Evaluate(sw, core.CosTheta(wo))
	}
	return glazing(fr).Mul(s.T)
}

func (s *SpecularTransmission) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	entering := core.CosTheta(wo) > 0
	if s.Dispersive {
		sw.SampleSingle()
	}

	eta := s.Fresnel.Index(sw)
	if entering || s.Architectural {
		eta = 1 / eta
	}
	eta2 := eta * eta
	sint2 := eta2 * core.SinTheta2(wo)
	// Total internal reflection
	if sint2 >= 1 {
		return Sample{}, false
	}
	cost := math.Sqrt(math.Max(0, 1-sint2))
	if entering {
		cost = -cost
	}

	var wi core.Vec3
	if s.Architectural {
		wi = wo.Negate()
	} else {
		wi = core.NewVec3(-eta*wo.X, -eta*wo.Y, cost)
	}

	var f spectrum.SWCSpectrum
	one := spectrum.Uniform(1)
	if !s.Architectural {
		if reverse {
			f = one.Sub(s.Fresnel.Evaluate(sw, cost)).Scale(eta2)
		} else {
			f = one.Sub(s.Fresnel.Evaluate(sw, core.CosTheta(wo))).Scale(math.Abs(wo.Z / cost))
		}
	} else {
		var fr spectrum.SWCSpectrum
		if reverse && !entering {
			fr = s.Fresnel.Evaluate(sw, -core.CosTheta(wo))
		} else if !reverse && entering {
			fr = s.Fresnel.Evaluate(sw, core.CosTheta(wo))
		}
		f = glazing(fr)
	}
	return Sample{Wi: wi, F: f.Mul(s.T), Pdf: 1, PdfBack: 1}, true
}

func (s *SpecularTransmission) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	if s.Architectural && isOpposite(wo, wi) {
		return 1
	}
	return 0
}

func (s *SpecularTransmission) Rho(sw *spectrum.Wavelengths, wo core.Vec3, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(s, sw, wo, n, sampler)
}

func (s *SpecularTransmission) RhoHemispherical(sw *spectrum.Wavelengths, n int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(s, sw, n, sampler)
}

func (s *SpecularTransmission) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	if s.Architectural && wo.Z < 0 {
		return 1
	}
	w := s.Fresnel.Evaluate(sw, core.CosTheta(wo)).Filter(sw)
	if s.Architectural {
		return 1 - w*(1+(1-w)*(1-w))
	}
	return 1 - w
}

// NullTransmission passes light straight through unchanged
type NullTransmission struct {
	R spectrum.SWCSpectrum
}

// NewNullTransmission creates a fully transparent lobe
func NewNullTransmission() *NullTransmission {
	return &NullTransmission{R: spectrum.Uniform(1)}
}

// NewFilteredTransmission creates a straight-through lobe filtered by r
func NewFilteredTransmission(r spectrum.SWCSpectrum) *NullTransmission {
	return &NullTransmission{R: r}
}

func (n *NullTransmission) Type() Type { return Transmission | Specular }

func (n *NullTransmission) F(sw *spectrum.Wavelengths, wo, wi core.Vec3) spectrum.SWCSpectrum {
	if isOpposite(wo, wi) {
		return n.R
	}
	return spectrum.SWCSpectrum{}
}

func (n *NullTransmission) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2 float64, reverse bool) (Sample, bool) {
	return Sample{Wi: wo.Negate(), F: n.R, Pdf: 1, PdfBack: 1}, true
}

func (n *NullTransmission) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3) float64 {
	if isOpposite(wo, wi) {
		return 1
	}
	return 0
}

func (n *NullTransmission) Rho(sw *spectrum.Wavelengths, wo core.Vec3, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(n, sw, wo, nSamples, sampler)
}

func (n *NullTransmission) RhoHemispherical(sw *spectrum.Wavelengths, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoHemispherical(n, sw, nSamples, sampler)
}

func (n *NullTransmission) Weight(sw *spectrum.Wavelengths, wo core.Vec3) float64 {
	return UnitWeight(sw, wo)
}
