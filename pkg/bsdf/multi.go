package bsdf

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// MaxBxDFs is the capacity of a Multi
const MaxBxDFs = 8

// Multi is a sum of lobes sharing one frame. Sampling picks a lobe in
// proportion to its weight and then accounts for the other lobes at the
// sampled direction.
type Multi struct {
	shading
	bxdfs [MaxBxDFs]bxdf.BxDF
	n     int
}

// NewMulti creates an empty Multi
func NewMulti(frame core.Frame) *Multi {
	return &Multi{shading: shading{frame: frame}}
}

// Add appends a lobe
func (m *Multi) Add(b bxdf.BxDF) error {
	if b == nil {
		return ErrNilComponent
	}
	if m.n >= MaxBxDFs {
		return ErrTooManyComponents
	}
	m.bxdfs[m.n] = b
	m.n++
	return nil
}

// Components returns the lobes in insertion order
func (m *Multi) Components() []bxdf.BxDF { return m.bxdfs[:m.n] }

func (m *Multi) NumComponents() int { return m.n }

func (m *Multi) NumComponentsMatching(flags bxdf.Type) int {
	num := 0
	for _, b := range m.Components() {
		if b.Type().Matches(flags) {
			num++
		}
	}
	return num
}

// weights fills the selection weight of every lobe, zero for lobes not in flags
func (m *Multi) weights(sw *spectrum.Wavelengths, wo core.Vec3, flags bxdf.Type, weights *[MaxBxDFs]float64) (total float64, matching int) {
	for i, b := range m.Components() {
		weights[i] = 0
		if b.Type().Matches(flags) {
			weights[i] = b.Weight(sw, wo)
			total += weights[i]
			matching++
		}
	}
	return total, matching
}

func (m *Multi) SampleF(sw *spectrum.Wavelengths, woW core.Vec3, u1, u2, u3 float64, flags bxdf.Type, reverse bool) (Sample, bool) {
	var weights [MaxBxDFs]float64
	wo := m.toLocal(woW)
	totalWeight, matching := m.weights(sw, wo, flags, &weights)
	if matching == 0 || !(totalWeight > 0) {
		return Sample{}, false
	}

	u3 *= totalWeight
	which := 0
	for i := 0; i < m.n; i++ {
		if weights[i] > 0 {
			which = i
			u3 -= weights[i]
			if u3 < 0 {
				break
			}
		}
	}
	chosen := m.bxdfs[which]
	t := chosen.Type()

	ls, ok := chosen.SampleF(sw, wo, u1, u2, reverse)
	if !ok {
		return Sample{}, false
	}
	wi := ls.Wi
	wiW := m.toWorld(wi)
	side := m.sideTest(woW, wiW)
	flags2, ok := filterSide(flags, side)
	if !ok || !t.Matches(flags2) {
		return Sample{}, false
	}

	f, pdf, pdfBack := ls.F, ls.Pdf, ls.PdfBack
	if !t.Has(bxdf.Specular) && matching > 1 && !math.IsInf(pdf, 1) {
		f = f.Scale(pdf)
		pdf *= weights[which]
		totalWeightR := chosen.Weight(sw, wi)
		pdfBack *= totalWeightR
		for i, b := range m.Components() {
			if i == which || !b.Type().Matches(flags) {
				continue
			}
			if b.Type().Matches(flags2) {
				if reverse {
					f = f.Add(b.F(sw, wi, wo))
				} else {
					f = f.Add(b.F(sw, wo, wi))
				}
			}
			pdf += b.Pdf(sw, wo, wi) * weights[i]
			weightR := b.Weight(sw, wi)
			pdfBack += b.Pdf(sw, wi, wo) * weightR
			totalWeightR += weightR
		}
		pdf /= totalWeight
		if !validPdf(pdf) {
			return Sample{}, false
		}
		f = f.DivScalar(pdf)
		if totalWeightR > 0 {
			pdfBack /= totalWeightR
		}
	} else {
		w := weights[which] / totalWeight
		pdf *= w
		f = f.DivScalar(w)
		if matching > 1 {
			totalWeightR := chosen.Weight(sw, wi)
			pdfBack *= totalWeightR
			for i, b := range m.Components() {
				if i == which || !b.Type().Matches(flags) {
					continue
				}
				weightR := b.Weight(sw, wi)
				if !t.Has(bxdf.Specular) {
					pdfBack += b.Pdf(sw, wi, wo) * weightR
				}
				totalWeightR += weightR
			}
			if totalWeightR > 0 {
				pdfBack /= totalWeightR
			}
		}
	}
	return Sample{
		Wi:      wiW,
		F:       geometricFactor(f, side, reverse),
		Pdf:     pdf,
		PdfBack: pdfBack,
		Type:    t,
	}, true
}

func (m *Multi) Pdf(sw *spectrum.Wavelengths, woW, wiW core.Vec3, flags bxdf.Type) float64 {
	wo, wi := m.toLocal(woW), m.toLocal(wiW)
	var pdf, totalWeight float64
	for _, b := range m.Components() {
		if b.Type().Matches(flags) {
			w := b.Weight(sw, wo)
			pdf += b.Pdf(sw, wo, wi) * w
			totalWeight += w
		}
	}
	if !(totalWeight > 0) {
		return 0
	}
	return pdf / totalWeight
}

func (m *Multi) F(sw *spectrum.Wavelengths, woW, wiW core.Vec3, reverse bool, flags bxdf.Type) spectrum.SWCSpectrum {
	side := m.sideTest(woW, wiW)
	flags, ok := filterSide(flags, side)
	if !ok {
		return spectrum.SWCSpectrum{}
	}
	wo, wi := m.toLocal(woW), m.toLocal(wiW)
	var f spectrum.SWCSpectrum
	for _, b := range m.Components() {
		if b.Type().Matches(flags) {
			f = f.Add(b.F(sw, wo, wi))
		}
	}
	return geometricFactor(f, side, reverse)
}

func (m *Multi) Rho(sw *spectrum.Wavelengths, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	var r spectrum.SWCSpectrum
	for _, b := range m.Components() {
		if b.Type().Matches(flags) {
			r = r.Add(b.RhoHemispherical(sw, nSamples, sampler))
		}
	}
	return r
}

func (m *Multi) RhoDirectional(sw *spectrum.Wavelengths, woW core.Vec3, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	wo := m.toLocal(woW)
	var r spectrum.SWCSpectrum
	for _, b := range m.Components() {
		if b.Type().Matches(flags) {
			r = r.Add(b.Rho(sw, wo, nSamples, sampler))
		}
	}
	return r
}
