// Package probe measures the scattering behaviour of materials: how much
// energy they return, whether their sampling agrees with their density and
// value, whether they are reciprocal and how often each lobe is picked.
package probe

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/material"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Relative error above which a sample counts as a mismatch
const mismatchTolerance = 1e-3

// ErrNoSamples is returned for a configuration that asks for no samples
var ErrNoSamples = errors.New("probe: sample count must be positive")

// Config controls how many samples the probes take and where
type Config struct {
	Samples     int       // Samples per estimate
	Seed        int64     // Seed of the first material; each material offsets it by its index
	Angles      []float64 // Zenith angles of wo in degrees for the directional estimates
	Workers     int       // Materials probed at once, zero for one per CPU
	Wavelengths [spectrum.WavelengthSamples]float64
}

// DefaultConfig returns a configuration suitable for quick checks
func DefaultConfig() Config {
	return Config{
		Samples:     4096,
		Seed:        42,
		Angles:      []float64{0, 30, 60, 80},
		Wavelengths: [spectrum.WavelengthSamples]float64{400, 470, 540, 610, 680},
	}
}

// Report is the result of probing one material
type Report struct {
	Material    string              `yaml:"material"`
	Components  int                 `yaml:"components"`
	Rho         []float64           `yaml:"rho"`
	Directional []DirectionalResult `yaml:"directional"`
	Consistency ConsistencyResult   `yaml:"consistency"`
	Reciprocity ReciprocityResult   `yaml:"reciprocity"`
	Selection   []SelectionResult   `yaml:"selection"`
}

// DirectionalResult is the reflectance estimate for one outgoing angle
type DirectionalResult struct {
	ThetaDeg float64   `yaml:"theta_deg"`
	Rho      []float64 `yaml:"rho"`
	Mean     float64   `yaml:"mean"`
	StdError float64   `yaml:"std_error"`
	Gain     bool      `yaml:"gain"` // More energy out than in beyond the noise
}

// ConsistencyResult compares sampled values and densities with Pdf and F.
// Value mismatches are expected from stochastic materials such as layered
// stacks, whose F is itself an estimate.
type ConsistencyResult struct {
	Checked         int     `yaml:"checked"`
	Specular        int     `yaml:"specular"` // Samples from delta lobes, which cannot be evaluated
	PdfMismatches   int     `yaml:"pdf_mismatches"`
	ValueMismatches int     `yaml:"value_mismatches"`
	MaxPdfError     float64 `yaml:"max_pdf_error"`
	MaxValueError   float64 `yaml:"max_value_error"`
}

// ReciprocityResult compares f(a, b) with f(b, a)
type ReciprocityResult struct {
	Checked       int     `yaml:"checked"`
	MaxAsymmetry  float64 `yaml:"max_asymmetry"`
	NonReciprocal int     `yaml:"non_reciprocal"`
}

// SelectionResult is how often SampleF produced a lobe type
type SelectionResult struct {
	Type      string  `yaml:"type"`
	Frequency float64 `yaml:"frequency"`
}

// Material builds the BSDF of m on an upward facing surface and probes it
func Material(name string, m material.Material, cfg Config, seed int64) (*Report, error) {
	if cfg.Samples <= 0 {
		return nil, ErrNoSamples
	}
	sw := spectrum.FixedWavelengths(cfg.Wavelengths)
	sampler := core.NewSeededSampler(seed)
	sp := material.NewShadingPoint(core.NewFrameFromNormal(core.NewVec3(0, 0, 1)), sampler)
	b, err := m.GetBSDF(sp, sw)
	if err != nil {
		return nil, fmt.Errorf("build %q: %w", name, err)
	}

	rho := b.Rho(sw, bxdf.All, cfg.Samples, sampler)
	r := &Report{
		Material:   name,
		Components: b.NumComponents(),
		Rho:        rho[:],
	}
	for _, theta := range cfg.Angles {
		r.Directional = append(r.Directional, Directional(b, sw, theta, cfg.Samples, sampler))
	}
	r.Consistency = Consistency(b, sw, cfg.Samples, sampler)
	r.Reciprocity = Reciprocity(b, sw, cfg.Samples, sampler)
	r.Selection = Selection(b, sw, cfg.Samples, sampler)
	return r, nil
}

// outgoing returns the world direction at thetaDeg from the shading normal of b
func outgoing(b bsdf.BSDF, thetaDeg float64) core.Vec3 {
	theta := core.Radians(thetaDeg)
	return b.Frame().LocalToWorld(core.SphericalDirection(math.Sin(theta), math.Cos(theta), 0))
}

// Directional estimates the reflectance for light leaving at thetaDeg
func Directional(b bsdf.BSDF, sw *spectrum.Wavelengths, thetaDeg float64, n int, sampler core.Sampler) DirectionalResult {
	wo := outgoing(b, thetaDeg)
	var stats SampleStats
	for i := 0; i < n; i++ {
		u := sampler.Get3D()
		s, ok := b.SampleF(sw, wo, u.X, u.Y, u.Z, bxdf.All, true)
		if !ok {
			stats.AddSample(spectrum.SWCSpectrum{})
			continue
		}
		stats.AddSample(s.F)
	}
	mean := stats.Mean()
	stdErr := stats.StdError()
	return DirectionalResult{
		ThetaDeg: thetaDeg,
		Rho:      mean[:],
		Mean:     mean.Average(),
		StdError: stdErr,
		Gain:     mean.Average() > 1+3*stdErr+0.01,
	}
}

// Consistency draws samples at 45 degrees and checks them against Pdf and F
func Consistency(b bsdf.BSDF, sw *spectrum.Wavelengths, n int, sampler core.Sampler) ConsistencyResult {
	wo := outgoing(b, 45)
	var res ConsistencyResult
	for i := 0; i < n; i++ {
		u := sampler.Get3D()
		s, ok := b.SampleF(sw, wo, u.X, u.Y, u.Z, bxdf.All, false)
		if !ok || !(s.Pdf > 0) {
			continue
		}
		if s.Type.Has(bxdf.Specular) {
			res.Specular++
			continue
		}
		res.Checked++
		pdfErr := relativeError(b.Pdf(sw, wo, s.Wi, bxdf.All), s.Pdf)
		value := b.F(sw, wo, s.Wi, false, bxdf.All).DivScalar(s.Pdf)
		var valueErr float64
		for k := range value {
			valueErr = math.Max(valueErr, relativeError(value[k], s.F[k]))
		}
		res.MaxPdfError = math.Max(res.MaxPdfError, pdfErr)
		res.MaxValueError = math.Max(res.MaxValueError, valueErr)
		if pdfErr > mismatchTolerance {
			res.PdfMismatches++
		}
		if valueErr > mismatchTolerance {
			res.ValueMismatches++
		}
	}
	return res
}

// Reciprocity compares the lobe value both ways for random pairs of directions
// above the surface, with the cosine of the first direction divided out
func Reciprocity(b bsdf.BSDF, sw *spectrum.Wavelengths, n int, sampler core.Sampler) ReciprocityResult {
	frame := b.Frame()
	var res ReciprocityResult
	for i := 0; i < n; i++ {
		u := sampler.Get2D()
		v := sampler.Get2D()
		la := core.UniformSampleHemisphere(u.X, u.Y)
		lb := core.UniformSampleHemisphere(v.X, v.Y)
		ca, cb := core.AbsCosTheta(la), core.AbsCosTheta(lb)
		if ca < 1e-3 || cb < 1e-3 {
			continue
		}
		wa, wb := frame.LocalToWorld(la), frame.LocalToWorld(lb)
		// Without the adjoint correction F is f times the cosine of its first argument
		fab := b.F(sw, wa, wb, true, bxdf.All).DivScalar(ca)
		fba := b.F(sw, wb, wa, true, bxdf.All).DivScalar(cb)
		res.Checked++
		var asym float64
		for k := range fab {
			asym = math.Max(asym, relativeError(fab[k], fba[k]))
		}
		res.MaxAsymmetry = math.Max(res.MaxAsymmetry, asym)
		if asym > mismatchTolerance {
			res.NonReciprocal++
		}
	}
	return res
}

// Selection counts the lobe types SampleF produces at normal incidence
func Selection(b bsdf.BSDF, sw *spectrum.Wavelengths, n int, sampler core.Sampler) []SelectionResult {
	wo := outgoing(b, 0)
	counts := make(map[bxdf.Type]int)
	for i := 0; i < n; i++ {
		u := sampler.Get3D()
		if s, ok := b.SampleF(sw, wo, u.X, u.Y, u.Z, bxdf.All, false); ok {
			counts[s.Type]++
		}
	}
	types := make([]bxdf.Type, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	results := make([]SelectionResult, 0, len(types))
	for _, t := range types {
		results = append(results, SelectionResult{
			Type:      t.String(),
			Frequency: float64(counts[t]) / float64(n),
		})
	}
	return results
}

// relativeError is |a-b| relative to the larger magnitude, or absolute below one
func relativeError(a, b float64) float64 {
	return math.Abs(a-b) / math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
