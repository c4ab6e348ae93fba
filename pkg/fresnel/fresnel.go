// Package fresnel computes interface reflectance for dielectrics, conductors
// and their approximations.
package fresnel

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Fresnel evaluates the reflectance of an interface at a given incidence cosine.
// A positive cosine means the incident direction is on the outside of the interface.
type Fresnel interface {
	// Evaluate returns the reflectance for the incidence cosine cosi
	Evaluate(sw *spectrum.Wavelengths, cosi float64) spectrum.SWCSpectrum

	// Index returns the effective index of refraction
	Index(sw *spectrum.Wavelengths) float64

	// SigmaA returns the absorption coefficient of the medium behind the interface
	SigmaA(sw *spectrum.Wavelengths) spectrum.SWCSpectrum

	// ComplexEvaluate returns the real and imaginary parts of the complex index
	ComplexEvaluate(sw *spectrum.Wavelengths) (fr, fi spectrum.SWCSpectrum)
}

// beerScale converts an absorption given per nanometer wavelength to the
// imaginary index (Beer's law 4π and nm to m)
const beerScale = 4e9 * math.Pi

// FrDiel2 is the dielectric Fresnel reflectance for relative index eta
func FrDiel2(cosi float64, cost, eta spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	var f spectrum.SWCSpectrum
	for i := range f {
		rParl := eta[i] * cosi
		rParl = (cost[i] - rParl) / (cost[i] + rParl)
		rPerp := eta[i] * cost[i]
		rPerp = (cosi - rPerp) / (cosi + rPerp)
		f[i] = (rParl*rParl + rPerp*rPerp) * 0.5
	}
	return f
}

// FrDiel is the dielectric Fresnel reflectance between media etai and etat
func FrDiel(cosi, cost float64, etai, etat spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	return FrDiel2(cosi, spectrum.Uniform(cost), etat.Div(etai))
}

// FrCond is the conductor Fresnel reflectance for complex index eta + ik
func FrCond(cosi float64, eta, k spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	var f spectrum.SWCSpectrum
	cos2 := cosi * cosi
	for i := range f {
		ek := eta[i]*eta[i] + k[i]*k[i]
		tmp := ek*cos2 + 1
		rParl2 := (tmp - 2*eta[i]*cosi) / (tmp + 2*eta[i]*cosi)
		tmpF := ek + cos2
		rPerp2 := (tmpF - 2*eta[i]*cosi) / (tmpF + 2*eta[i]*cosi)
		f[i] = (rParl2 + rPerp2) * 0.5
	}
	return f
}

// FrFull is the full complex Fresnel reflectance given the transmitted cosine
func FrFull(cosi float64, cost, eta, k spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	var f spectrum.SWCSpectrum
	for i := range f {
		ek := eta[i]*eta[i] + k[i]*k[i]
		cc := 2 * cosi * cost[i] * eta[i]
		tmp := ek*cosi*cosi + cost[i]*cost[i]
		rParl2 := (tmp - cc) / (tmp + cc)
		tmpF := ek*cost[i]*cost[i] + cosi*cosi
		rPerp2 := (tmpF - cc) / (tmpF + cc)
		f[i] = (rParl2 + rPerp2) * 0.5
	}
	return f
}

// ApproxEta returns the real index whose normal incidence reflectance is fr
func ApproxEta(fr spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	sqrtR := fr.Clamp(0, 0.999).Sqrt()
	return spectrum.Uniform(1).Add(sqrtR).Div(spectrum.Uniform(1).Sub(sqrtR))
}

// ApproxK returns the extinction coefficient matching reflectance fr
func ApproxK(fr spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	r := fr.Clamp(0, 0.999)
	return r.Div(r.OneMinus()).Sqrt().Scale(2)
}

// dielectricCost returns the transmitted cosine for each sample, clamped so
// total internal reflection yields cost = 0
func dielectricCost(cosi float64, eta spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	var cost spectrum.SWCSpectrum
	sin2 := math.Max(0, 1-cosi*cosi)
	for i := range cost {
		s := sin2
		if cosi > 0 {
			s /= eta[i] * eta[i]
		} else {
			s *= eta[i] * eta[i]
		}
		cost[i] = math.Sqrt(1 - math.Min(1, math.Max(0, s)))
	}
	return cost
}

func dielectricEvaluate(cosi float64, eta spectrum.SWCSpectrum) spectrum.SWCSpectrum {
	cost := dielectricCost(cosi, eta)
	if cosi > 0 {
		return FrDiel2(math.Abs(cosi), cost, eta)
	}
	return FrDiel2(math.Abs(cosi), cost, spectrum.Uniform(1).Div(eta))
}
