package bsdf

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// EstimateRhoDirectional estimates the directional reflectance of b for the
// world direction wo with stratified samples of the reverse walk
func EstimateRhoDirectional(b BSDF, sw *spectrum.Wavelengths, wo core.Vec3, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if nSamples <= 0 {
		return spectrum.SWCSpectrum{}
	}
	samples := core.LatinHypercube(sampler, nSamples, 3)
	var r spectrum.SWCSpectrum
	for i := 0; i < nSamples; i++ {
		if s, ok := b.SampleF(sw, wo, samples[3*i], samples[3*i+1], samples[3*i+2], flags, true); ok {
			r = r.Add(s.F)
		}
	}
	return r.DivScalar(float64(nSamples))
}

// EstimateRho estimates the hemispherical reflectance of b with wo drawn
// uniformly over the sphere around the shading normal. Both faces are averaged.
func EstimateRho(b BSDF, sw *spectrum.Wavelengths, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	if nSamples <= 0 {
		return spectrum.SWCSpectrum{}
	}
	frame := b.Frame()
	samples := core.LatinHypercube(sampler, nSamples, 5)
	pdfo := core.UniformSpherePdf()
	var r spectrum.SWCSpectrum
	for i := 0; i < nSamples; i++ {
		s5 := samples[5*i : 5*i+5]
		local := core.UniformSampleSphere(s5[0], s5[1])
		wo := frame.LocalToWorld(local)
		if s, ok := b.SampleF(sw, wo, s5[2], s5[3], s5[4], flags, true); ok {
			r = r.AddWeighted(core.AbsCosTheta(local)/pdfo, s.F)
		}
	}
	return r.DivScalar(2 * math.Pi * float64(nSamples))
}
