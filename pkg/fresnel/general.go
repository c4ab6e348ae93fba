package fresnel

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Model selects the equations used by General
type Model int

const (
	ModelAuto Model = iota
	ModelDielectric
	ModelConductor
	ModelFull
)

func (m Model) String() string {
	switch m {
	case ModelAuto:
		return "auto"
	case ModelDielectric:
		return "dielectric"
	case ModelConductor:
		return "conductor"
	case ModelFull:
		return "full"
	}
	return "unknown"
}

// General evaluates the full complex Fresnel equations, falling back to the
// cheaper dielectric or conductor forms when the index allows it
type General struct {
	eta   spectrum.SWCSpectrum
	k     spectrum.SWCSpectrum
	model Model
}

// NewGeneral creates an interface with complex index eta + ik. ModelAuto picks
// the model from the index.
func NewGeneral(model Model, eta, k spectrum.SWCSpectrum) *General {
	if model == ModelAuto {
		model = checkModel(eta, k)
	}
	return &General{eta: eta, k: k, model: model}
}

// NewGeneralInterface creates the interface between an incident medium
// ei + i·ki and a transmitted medium et + i·kt
func NewGeneralInterface(model Model, ei, ki, et, kt spectrum.SWCSpectrum) *General {
	norm := ei.Mul(ei).Add(ki.Mul(ki))
	eta := ei.Mul(et).Add(ki.Mul(kt)).Div(norm)
	k := ei.Mul(kt).Sub(et.Mul(ki)).Div(norm)
	return NewGeneral(model, eta, k)
}

func checkModel(eta, k spectrum.SWCSpectrum) Model {
	dielectric, conductor := true, true
	for i := range eta {
		if eta[i] <= 10*k[i] {
			dielectric = false
		}
		if eta[i] > k[i] {
			conductor = false
		}
	}
	switch {
	case dielectric:
		return ModelDielectric
	case conductor:
		return ModelConductor
	}
	return ModelFull
}

// Model returns the equations in use
func (g *General) Model() Model {
	return g.model
}

// Add returns the interface with the summed complex index
func (g *General) Add(o *General) *General {
	return NewGeneral(g.model, g.eta.Add(o.eta), g.k.Add(o.k))
}

// Scale returns the interface with the complex index scaled by f
func (g *General) Scale(f float64) *General {
	return NewGeneral(g.model, g.eta.Scale(f), g.k.Scale(f))
}

func (g *General) Evaluate(sw *spectrum.Wavelengths, cosi float64) spectrum.SWCSpectrum {
	if g.model == ModelConductor {
		if cosi > 0 {
			return FrCond(cosi, g.eta, g.k)
		}
		return spectrum.SWCSpectrum{}
	}

	var sint2 spectrum.SWCSpectrum
	base := math.Max(0, 1-cosi*cosi)
	for i := range sint2 {
		if cosi > 0 {
			sint2[i] = base / (g.eta[i] * g.eta[i])
		} else {
			sint2[i] = base * g.eta[i] * g.eta[i]
		}
	}
	sint2 = sint2.Clamp(0, 1)
	cost2 := sint2.OneMinus()

	if g.model == ModelDielectric {
		if cosi > 0 {
			return FrDiel2(cosi, cost2.Sqrt(), g.eta)
		}
		return FrDiel2(-cosi, cost2.Sqrt(), spectrum.Uniform(1).Div(g.eta))
	}

	a := g.k.Mul(g.k).Mul(sint2).Scale(2)
	cost := cost2.Add(cost2.Mul(cost2).Add(a.Mul(a)).Sqrt()).Scale(0.5).Sqrt()
	if cosi > 0 {
		return FrFull(cosi, cost, g.eta, g.k)
	}
	d2 := g.eta.Mul(g.eta).Add(g.k.Mul(g.k))
	return FrFull(-cosi, cost, g.eta.Div(d2), g.k.Scale(-1).Div(d2))
}

func (g *General) Index(sw *spectrum.Wavelengths) float64 {
	return g.eta.Filter(sw)
}

func (g *General) SigmaA(sw *spectrum.Wavelengths) spectrum.SWCSpectrum {
	return g.k.Div(sw.Spectrum()).Scale(4e-9 * math.Pi)
}

func (g *General) ComplexEvaluate(sw *spectrum.Wavelengths) (fr, fi spectrum.SWCSpectrum) {
	return g.eta, g.k
}
