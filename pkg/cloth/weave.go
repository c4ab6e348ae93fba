package cloth

import (
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

const (
	// NormalizationSamples is the sample count of the specular normalization estimate
	NormalizationSamples = 100000
	// NormalizationSeed seeds the normalization estimate so it is reproducible
	NormalizationSeed = 1
)

// Weave is a weave pattern together with the normalization that makes its
// specular component average to one under diffuse illumination
type Weave struct {
	Pattern       *WeavePattern
	Normalization float64
}

// NewWeave loads a preset and estimates its specular normalization
func NewWeave(preset string, repeatU, repeatV float64, logger core.Logger) (*Weave, error) {
	p, err := LoadPreset(preset, repeatU, repeatV)
	if err != nil {
		return nil, err
	}
	return NewWeaveFromPattern(p, logger), nil
}

// NewWeaveFromPattern estimates the normalization of an already loaded pattern
func NewWeaveFromPattern(p *WeavePattern, logger core.Logger) *Weave {
	if logger == nil {
		logger = core.NopLogger{}
	}
	norm := EstimateNormalization(p, NormalizationSamples, core.NewSeededSampler(NormalizationSeed))
	logger.Printf("cloth %q: specular normalization %.5g from %d samples", p.Name, norm, NormalizationSamples)
	return &Weave{Pattern: p, Normalization: norm}
}

// EstimateNormalization returns nSamples divided by the summed specular
// integrand over cosine distributed direction pairs and uniform surface
// positions, or zero when the integrand vanishes everywhere
func EstimateNormalization(p *WeavePattern, nSamples int, sampler core.Sampler) float64 {
	var result float64
	for i := 0; i < nSamples; i++ {
		u := sampler.Get2D()
		wi := core.CosineSampleHemisphere(u.X, u.Y)
		u = sampler.Get2D()
		wo := core.CosineSampleHemisphere(u.X, u.Y)
		u = sampler.Get2D()
		point := p.Lookup(u.X, u.Y)
		result += evalSpecular(p, point, wo, wi) * point.Scale
	}
	if !(result > 0) {
		return 0
	}
	return float64(nSamples) / result
}

// At finds the yarn covering surface coordinates (u, v)
func (w *Weave) At(u, v float64) YarnPoint {
	return w.Pattern.Lookup(u, v)
}

// Lobe builds the specular lobe of the yarn at point with reflectance ks
func (w *Weave) Lobe(ks spectrum.SWCSpectrum, point YarnPoint) *Irawan {
	return NewIrawan(ks, point, w.Pattern, w.Normalization*point.Scale)
}
