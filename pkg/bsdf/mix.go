package bsdf

import (
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// MaxBSDFs is the capacity of a Mix
const MaxBSDFs = 8

// Mix blends whole child BSDFs by unnormalized weights
type Mix struct {
	shading
	children    [MaxBSDFs]BSDF
	weights     [MaxBSDFs]float64
	n           int
	totalWeight float64
}

// NewMix creates an empty Mix
func NewMix(frame core.Frame) *Mix {
	return &Mix{shading: shading{frame: frame}}
}

// Add appends a child with the given weight. Children with a non-positive
// weight are dropped without error.
func (m *Mix) Add(weight float64, child BSDF) error {
	if child == nil {
		return ErrNilComponent
	}
	if !(weight > 0) {
		return nil
	}
	if m.n >= MaxBSDFs {
		return ErrTooManyComponents
	}
	m.children[m.n] = child
	m.weights[m.n] = weight
	m.totalWeight += weight
	m.n++
	return nil
}

// Len is the number of children
func (m *Mix) Len() int { return m.n }

// Child returns child i and its weight
func (m *Mix) Child(i int) (BSDF, float64) { return m.children[i], m.weights[i] }

// TotalWeight is the sum of all child weights
func (m *Mix) TotalWeight() float64 { return m.totalWeight }

func (m *Mix) NumComponents() int {
	num := 0
	for i := 0; i < m.n; i++ {
		num += m.children[i].NumComponents()
	}
	return num
}

func (m *Mix) NumComponentsMatching(flags bxdf.Type) int {
	num := 0
	for i := 0; i < m.n; i++ {
		num += m.children[i].NumComponentsMatching(flags)
	}
	return num
}

// matchingWeight sums the weights of the children with a component in flags
func (m *Mix) matchingWeight(flags bxdf.Type) float64 {
	total := 0.0
	for i := 0; i < m.n; i++ {
		if m.children[i].NumComponentsMatching(flags) > 0 {
			total += m.weights[i]
		}
	}
	return total
}

func (m *Mix) SampleF(sw *spectrum.Wavelengths, wo core.Vec3, u1, u2, u3 float64, flags bxdf.Type, reverse bool) (Sample, bool) {
	total := m.matchingWeight(flags)
	if !(total > 0) {
		return Sample{}, false
	}

	u3 *= total
	which := -1
	for i := 0; i < m.n; i++ {
		if m.children[i].NumComponentsMatching(flags) == 0 {
			continue
		}
		which = i
		if u3 < m.weights[i] {
			break
		}
		u3 -= m.weights[i]
	}
	w := m.weights[which]
	cs, ok := m.children[which].SampleF(sw, wo, u1, u2, min(u3/w, core.OneMinusEpsilon), flags, reverse)
	if !ok {
		return Sample{}, false
	}

	pdf := w * cs.Pdf
	pdfBack := w * cs.PdfBack
	f := cs.F.Scale(pdf)

	evalFlags := flags
	if cs.Type.Has(bxdf.Specular) {
		evalFlags = cs.Type
	}
	for i := 0; i < m.n; i++ {
		child := m.children[i]
		if i == which || child.NumComponentsMatching(evalFlags) == 0 {
			continue
		}
		if reverse {
			f = f.AddWeighted(m.weights[i], child.F(sw, cs.Wi, wo, true, evalFlags))
		} else {
			f = f.AddWeighted(m.weights[i], child.F(sw, wo, cs.Wi, false, evalFlags))
		}
		pdf += m.weights[i] * child.Pdf(sw, wo, cs.Wi, evalFlags)
		pdfBack += m.weights[i] * child.Pdf(sw, cs.Wi, wo, evalFlags)
	}
	pdf /= total
	pdfBack /= total
	if !validPdf(pdf) {
		return Sample{}, false
	}
	return Sample{
		Wi:      cs.Wi,
		F:       f.DivScalar(m.totalWeight * pdf),
		Pdf:     pdf,
		PdfBack: pdfBack,
		Type:    cs.Type,
	}, true
}

func (m *Mix) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3, flags bxdf.Type) float64 {
	total := m.matchingWeight(flags)
	if !(total > 0) {
		return 0
	}
	pdf := 0.0
	for i := 0; i < m.n; i++ {
		if m.children[i].NumComponentsMatching(flags) > 0 {
			pdf += m.weights[i] * m.children[i].Pdf(sw, wo, wi, flags)
		}
	}
	return pdf / total
}

func (m *Mix) F(sw *spectrum.Wavelengths, wo, wi core.Vec3, reverse bool, flags bxdf.Type) spectrum.SWCSpectrum {
	if m.n == 0 {
		return spectrum.SWCSpectrum{}
	}
	var f spectrum.SWCSpectrum
	for i := 0; i < m.n; i++ {
		f = f.AddWeighted(m.weights[i], m.children[i].F(sw, wo, wi, reverse, flags))
	}
	return f.DivScalar(m.totalWeight)
}

func (m *Mix) Rho(sw *spectrum.Wavelengths, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if m.n == 0 {
		return spectrum.SWCSpectrum{}
	}
	var r spectrum.SWCSpectrum
	for i := 0; i < m.n; i++ {
		r = r.AddWeighted(m.weights[i], m.children[i].Rho(sw, flags, nSamples, sampler))
	}
	return r.DivScalar(m.totalWeight)
}

func (m *Mix) RhoDirectional(sw *spectrum.Wavelengths, wo core.Vec3, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if m.n == 0 {
		return spectrum.SWCSpectrum{}
	}
	var r spectrum.SWCSpectrum
	for i := 0; i < m.n; i++ {
		r = r.AddWeighted(m.weights[i], m.children[i].RhoDirectional(sw, wo, flags, nSamples, sampler))
	}
	return r.DivScalar(m.totalWeight)
}

func (m *Mix) ApplyTransform(t core.Transform) float64 {
	for i := 0; i < m.n; i++ {
		m.children[i].ApplyTransform(t)
	}
	return m.shading.ApplyTransform(t)
}

func (m *Mix) SetCompositingParams(cp *CompositingParams) {
	m.shading.SetCompositingParams(cp)
	for i := 0; i < m.n; i++ {
		m.children[i].SetCompositingParams(cp)
	}
}
