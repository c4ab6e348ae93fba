package fresnel

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Dielectric is the Fresnel reflectance of a non-absorbing interface with a
// per-wavelength index of refraction
type Dielectric struct {
	eta   spectrum.SWCSpectrum
	index float64
	a     spectrum.SWCSpectrum // absorption per nm wavelength
}

// NewDielectric creates a dielectric interface. index is the index reported
// outside single wavelength mode.
func NewDielectric(eta spectrum.SWCSpectrum, index float64, absorption spectrum.SWCSpectrum) *Dielectric {
	return &Dielectric{eta: eta, index: index, a: absorption}
}

// NewDielectricIndex creates a dispersion-free dielectric of index n
func NewDielectricIndex(n float64) *Dielectric {
	return NewDielectric(spectrum.Uniform(n), n, spectrum.SWCSpectrum{})
}

func (d *Dielectric) Evaluate(sw *spectrum.Wavelengths, cosi float64) spectrum.SWCSpectrum {
	return dielectricEvaluate(cosi, d.eta)
}

func (d *Dielectric) Index(sw *spectrum.Wavelengths) float64 {
	if sw.Single {
		return d.eta[sw.SingleW]
	}
	return d.index
}

func (d *Dielectric) SigmaA(sw *spectrum.Wavelengths) spectrum.SWCSpectrum {
	return spectrum.SWCSpectrum{}
}

func (d *Dielectric) ComplexEvaluate(sw *spectrum.Wavelengths) (fr, fi spectrum.SWCSpectrum) {
	return d.eta, d.a.Mul(sw.Spectrum()).DivScalar(beerScale)
}

// Cauchy is a dielectric whose index follows Cauchy's equation n(λ) = etaT + b/λ²
// with λ in nanometers
type Cauchy struct {
	etaT float64
	cb   float64
	a    spectrum.SWCSpectrum
}

// NewCauchy creates a dispersive dielectric. cb is the second Cauchy
// coefficient in nm².
func NewCauchy(etaT, cb float64, absorption spectrum.SWCSpectrum) *Cauchy {
	return &Cauchy{etaT: etaT, cb: cb, a: absorption}
}

// Dispersive reports whether the index varies with wavelength
func (c *Cauchy) Dispersive() bool {
	return c.cb != 0
}

// IndexAt returns the index at wavelength w (nm)
func (c *Cauchy) IndexAt(w float64) float64 {
	return c.etaT + c.cb/(w*w)
}

func (c *Cauchy) Evaluate(sw *spectrum.Wavelengths, cosi float64) spectrum.SWCSpectrum {
	if c.cb != 0 && !sw.Single {
		var eta spectrum.SWCSpectrum
		for i, w := range sw.W {
			eta[i] = c.IndexAt(w)
		}
		return dielectricEvaluate(cosi, eta)
	}
	eta := c.etaT
	if c.cb != 0 {
		eta = c.IndexAt(sw.W[sw.SingleW])
	}
	entering := cosi > 0
	sint2 := max(0, 1-cosi*cosi)
	if entering {
		sint2 /= eta * eta
	} else {
		sint2 *= eta * eta
	}
	if sint2 >= 1 {
		return spectrum.Uniform(1)
	}
	rel := eta
	if !entering {
		rel = 1 / eta
	}
	return FrDiel2(math.Abs(cosi), spectrum.Uniform(math.Sqrt(max(0, 1-sint2))), spectrum.Uniform(rel))
}

func (c *Cauchy) Index(sw *spectrum.Wavelengths) float64 {
	if sw.Single {
		return c.IndexAt(sw.W[sw.SingleW])
	}
	return c.etaT + c.cb/(spectrum.WavelengthEnd*spectrum.WavelengthStart)
}

func (c *Cauchy) SigmaA(sw *spectrum.Wavelengths) spectrum.SWCSpectrum {
	return spectrum.SWCSpectrum{}
}

func (c *Cauchy) ComplexEvaluate(sw *spectrum.Wavelengths) (fr, fi spectrum.SWCSpectrum) {
	for i, w := range sw.W {
		fr[i] = c.IndexAt(w)
	}
	return fr, c.a.Mul(sw.Spectrum()).DivScalar(beerScale)
}
