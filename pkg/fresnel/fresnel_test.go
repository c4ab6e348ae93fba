package fresnel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

func testWavelengths() *spectrum.Wavelengths {
	return spectrum.NewWavelengths(0.5, 0.5)
}

func TestDielectric_NormalIncidence(t *testing.T) {
	sw := testWavelengths()
	d := NewDielectricIndex(1.5)

	expected := spectrum.Uniform(0.04) // ((1.5-1)/(1.5+1))²
	assert.True(t, d.Evaluate(sw, 1).Equals(expected, 1e-12), "got %v", d.Evaluate(sw, 1))
	assert.True(t, d.Evaluate(sw, -1).Equals(expected, 1e-12), "reciprocal at normal incidence")
	assert.Equal(t, 1.5, d.Index(sw))
	assert.True(t, d.SigmaA(sw).IsBlack())
}

func TestDielectric_TotalInternalReflection(t *testing.T) {
	sw := testWavelengths()
	d := NewDielectricIndex(1.5)

	// Critical angle from inside is asin(1/1.5); beyond it everything reflects
	cosi := -math.Cos(math.Asin(1/1.5) + 0.1)
	assert.True(t, d.Evaluate(sw, cosi).Equals(spectrum.Uniform(1), 1e-12))

	// Grazing incidence from outside reflects everything too
	assert.True(t, d.Evaluate(sw, 1e-7).Equals(spectrum.Uniform(1), 1e-4))
}

func TestDielectric_Monotonic(t *testing.T) {
	sw := testWavelengths()
	d := NewDielectricIndex(1.5)

	prev := d.Evaluate(sw, 1)[0]
	for cos := 0.95; cos > 0.05; cos -= 0.05 {
		f := d.Evaluate(sw, cos)[0]
		assert.GreaterOrEqual(t, f, prev-1e-12, "reflectance grows toward grazing angles (cos=%f)", cos)
		prev = f
	}
}

func TestCauchy(t *testing.T) {
	sw := testWavelengths()

	plain := NewCauchy(1.5, 0, spectrum.SWCSpectrum{})
	assert.False(t, plain.Dispersive())
	for _, cos := range []float64{1, 0.5, 0.1, -0.3, -0.9} {
		assert.True(t, plain.Evaluate(sw, cos).Equals(NewDielectricIndex(1.5).Evaluate(sw, cos), 1e-12), "cos=%f", cos)
	}

	dispersive := NewCauchy(1.5, 4200, spectrum.SWCSpectrum{})
	require.True(t, dispersive.Dispersive())

	f := dispersive.Evaluate(sw, 0.7)
	for i, w := range sw.W {
		n := dispersive.IndexAt(w)
		one := FrDiel2(0.7, spectrum.Uniform(math.Sqrt(1-(1-0.49)/(n*n))), spectrum.Uniform(n))
		assert.InDelta(t, one[0], f[i], 1e-12)
	}

	assert.InDelta(t, 1.5+4200/(spectrum.WavelengthEnd*spectrum.WavelengthStart), dispersive.Index(sw), 1e-12)
	w := sw.SampleSingle()
	assert.InDelta(t, 1.5+4200/(w*w), dispersive.Index(sw), 1e-12)
	assert.Equal(t, dispersive.Evaluate(sw, 0.7)[0], dispersive.Evaluate(sw, 0.7)[spectrum.WavelengthSamples-1], "single mode evaluates one index for every sample")

	fr, fi := dispersive.ComplexEvaluate(sw)
	assert.InDelta(t, dispersive.IndexAt(sw.W[0]), fr[0], 1e-12)
	assert.True(t, fi.IsBlack())
}

func TestConductor(t *testing.T) {
	sw := testWavelengths()

	// Without extinction a conductor is a dielectric at normal incidence
	c := NewConductor(spectrum.Uniform(1.5), spectrum.SWCSpectrum{})
	assert.True(t, c.Evaluate(sw, 1).Equals(spectrum.Uniform(0.04), 1e-12))

	// Approximated conductors roughly reproduce their normal incidence reflectance
	r := spectrum.SWCSpectrum{0.9, 0.8, 0.7, 0.6, 0.5}
	approx := NewConductorFromReflectance(r)
	got := approx.Evaluate(sw, 1)
	for i := range r {
		assert.InDelta(t, r[i], got[i], 0.05)
		assert.GreaterOrEqual(t, got[i], r[i])
	}
	assert.True(t, approx.Evaluate(sw, 0.2).Equals(approx.Evaluate(sw, -0.2), 1e-12))

	sigma := approx.SigmaA(sw)
	assert.InDelta(t, ApproxK(r)[0]/sw.W[0]*4e-9*math.Pi, sigma[0], 1e-18)
}

func TestApproxEta(t *testing.T) {
	eta := ApproxEta(spectrum.Uniform(0.04))
	assert.True(t, eta.Equals(spectrum.Uniform(1.5), 1e-9))

	k := ApproxK(spectrum.Uniform(0.5))
	assert.True(t, k.Equals(spectrum.Uniform(2), 1e-9))
}

func TestGeneral_ModelSelection(t *testing.T) {
	tests := []struct {
		name     string
		eta, k   float64
		expected Model
	}{
		{name: "glass", eta: 1.5, k: 0, expected: ModelDielectric},
		{name: "metal", eta: 0.2, k: 3.0, expected: ModelConductor},
		{name: "absorbing dielectric", eta: 1.5, k: 0.5, expected: ModelFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGeneral(ModelAuto, spectrum.Uniform(tt.eta), spectrum.Uniform(tt.k))
			assert.Equal(t, tt.expected, g.Model())
			assert.Equal(t, tt.expected.String(), g.Model().String())
		})
	}
}

func TestGeneral_MatchesSpecialisedModels(t *testing.T) {
	sw := testWavelengths()

	glass := NewGeneral(ModelAuto, spectrum.Uniform(1.5), spectrum.SWCSpectrum{})
	diel := NewDielectricIndex(1.5)
	for _, cos := range []float64{1, 0.6, 0.2, -0.4, -0.95} {
		assert.True(t, glass.Evaluate(sw, cos).Equals(diel.Evaluate(sw, cos), 1e-12), "cos=%f", cos)
	}

	// The full equations reduce to the dielectric ones when k = 0
	full := NewGeneral(ModelFull, spectrum.Uniform(1.5), spectrum.SWCSpectrum{})
	for _, cos := range []float64{1, 0.6, 0.2} {
		assert.True(t, full.Evaluate(sw, cos).Equals(diel.Evaluate(sw, cos), 1e-9), "cos=%f", cos)
	}

	metal := NewGeneral(ModelAuto, spectrum.Uniform(0.2), spectrum.Uniform(3))
	assert.True(t, metal.Evaluate(sw, 0.5).Equals(NewConductor(spectrum.Uniform(0.2), spectrum.Uniform(3)).Evaluate(sw, 0.5), 1e-12))
	assert.True(t, metal.Evaluate(sw, -0.5).IsBlack(), "conductors have no inside")

	sum := glass.Add(glass).Scale(0.5)
	assert.Equal(t, 1.5, sum.Index(sw))
}

func TestGeneralInterface(t *testing.T) {
	// Glass seen from water
	g := NewGeneralInterface(ModelAuto, spectrum.Uniform(1.33), spectrum.SWCSpectrum{}, spectrum.Uniform(1.5), spectrum.SWCSpectrum{})
	assert.InDelta(t, 1.5/1.33, g.Index(testWavelengths()), 1e-12)
	assert.Equal(t, ModelDielectric, g.Model())
}

func TestSchlick(t *testing.T) {
	sw := testWavelengths()
	s := NewSchlickFromIndex(1.5, spectrum.SWCSpectrum{})

	assert.True(t, s.Evaluate(sw, 1).Equals(spectrum.Uniform(0.04), 1e-12))
	assert.True(t, s.Evaluate(sw, 0).Equals(spectrum.Uniform(1), 1e-12))
	assert.True(t, s.Evaluate(sw, -0.3).Equals(s.Evaluate(sw, 0.3), 1e-12))
	assert.InDelta(t, 1.5, s.Index(sw), 1e-9)

	zero := NewSchlick(spectrum.SWCSpectrum{}, spectrum.Uniform(0.1))
	assert.True(t, zero.Evaluate(sw, 1).IsBlack())
	assert.Equal(t, spectrum.Uniform(0.1), zero.SigmaA(sw))
}

func TestNoOp(t *testing.T) {
	sw := testWavelengths()
	var f Fresnel = NoOp{}
	assert.Equal(t, spectrum.Uniform(1), f.Evaluate(sw, 0.3))
	assert.Equal(t, 1.0, f.Index(sw))
	fr, fi := f.ComplexEvaluate(sw)
	assert.Equal(t, spectrum.Uniform(1), fr)
	assert.True(t, fi.IsBlack())
}
