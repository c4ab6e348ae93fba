package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/cloth"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/material"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

func mustMix(t *testing.T, materials []material.Material, weights []float64) material.Material {
	t.Helper()
	m, err := material.NewWeightedMix(materials, weights)
	require.NoError(t, err)
	return m
}

func TestMaterial_EveryBuilder(t *testing.T) {
	weave, err := cloth.NewWeave(cloth.DefaultPreset, cloth.DefaultRepeat, cloth.DefaultRepeat, nil)
	require.NoError(t, err)

	gray := material.Gray
	copperEta := material.NewSolidColor(core.NewVec3(0.2, 1.1, 1.2))
	copperK := material.NewSolidColor(core.NewVec3(3.9, 2.4, 2.2))
	matte := material.NewMatte(gray(0.5), 0)

	tests := []struct {
		name       string
		m          material.Material
		stochastic bool // F is a Monte Carlo estimate
	}{
		{name: "matte", m: matte},
		{name: "oren nayar", m: material.NewMatte(gray(0.8), 20)},
		{name: "translucent", m: material.NewMatteTranslucent(gray(0.4), gray(0.5), 0, false)},
		{name: "translucent conserving", m: material.NewMatteTranslucent(gray(0.7), gray(0.7), 10, true)},
		{name: "mirror", m: material.NewMirror(gray(1))},
		{name: "metal from color", m: material.NewMetalFromColor(gray(0.9), 0.2)},
		{name: "anisotropic copper", m: material.NewMetal(copperEta, copperK, 0.1, 0.3)},
		{name: "glass", m: material.NewGlass(gray(1), gray(1), 1.5, 0)},
		{name: "dispersive glass", m: material.NewGlass(gray(1), gray(1), 1.5, 0.01)},
		{name: "rough glass", m: material.NewRoughGlass(gray(1), gray(1), 1.5, 0.2, 0.2)},
		{name: "glossy", m: material.NewGlossy(gray(0.5), gray(0.04), 0.2)},
		{name: "coating", m: material.NewCoating(material.NewMetalFromColor(gray(0.8), 0.3), gray(0.04), 0.1)},
		{name: "mix", m: material.NewMix(matte, material.NewMirror(gray(0.9)), 0.3)},
		{name: "weighted mix", m: mustMix(t,
			[]material.Material{matte, material.NewMetalFromColor(gray(0.9), 0.3), material.NewRoughGlass(gray(1), gray(1), 1.5, 0.3, 0.3)},
			[]float64{1, 2, 1})},
		{name: "layered", m: material.NewLayered(material.NewGlass(gray(1), gray(1), 1.5, 0), material.NewMatte(gray(0.5), 0)), stochastic: true},
		{name: "double sided", m: material.NewDoubleSided(material.NewMirror(gray(1)), matte)},
		{name: "cloth", m: material.NewCloth(weave, gray(0.3), gray(0.1), gray(0.3), gray(0.1))},
		{name: "composited", m: material.NewComposited(material.NewMix(matte, material.Null{}, 0.5), bsdf.DefaultCompositingParams())},
		{name: "null", m: material.Null{}},
	}

	cfg := DefaultConfig()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Material(tt.name, tt.m, cfg, cfg.Seed+int64(i))
			require.NoError(t, err)

			require.Len(t, r.Directional, len(cfg.Angles))
			for _, d := range r.Directional {
				assert.False(t, d.Gain, "theta %v: rho %v +- %v", d.ThetaDeg, d.Mean, d.StdError)
				assert.GreaterOrEqual(t, d.Mean, 0.0, "theta %v", d.ThetaDeg)
			}

			c := r.Consistency
			assert.Positive(t, c.Checked+c.Specular, "no samples at 45 degrees")
			assert.Zero(t, c.PdfMismatches, "max pdf error %v", c.MaxPdfError)
			if !tt.stochastic {
				assert.Zero(t, c.ValueMismatches, "max value error %v", c.MaxValueError)
			}
		})
	}
}

// Importance leaving a pane from the inside ignores the reflection at the
// outer face, so architectural glass gains the reflected energy in reverse
func TestMaterial_ArchitecturalGlass(t *testing.T) {
	cfg := DefaultConfig()
	pane := material.NewArchitecturalGlass(material.Gray(1), material.Gray(1), 1.5)
	r, err := Material("pane", pane, cfg, cfg.Seed)
	require.NoError(t, err)

	for _, d := range r.Directional {
		assert.GreaterOrEqual(t, d.Mean, 1-3*d.StdError, "theta %v", d.ThetaDeg)
		assert.LessOrEqual(t, d.Mean, 2.0, "theta %v", d.ThetaDeg)
	}
	last := r.Directional[len(r.Directional)-1]
	require.Equal(t, 80.0, last.ThetaDeg)
	assert.True(t, last.Gain, "grazing reflection adds to the full transmission")
	assert.Zero(t, r.Consistency.Checked)
}

func TestReciprocity(t *testing.T) {
	tests := []struct {
		name string
		m    material.Material
	}{
		{"lambertian", material.NewMatte(material.Gray(0.5), 0)},
		{"oren nayar", material.NewMatte(material.Gray(0.5), 20)},
		{"rough metal", material.NewMetalFromColor(material.Gray(0.9), 0.3)},
		{"anisotropic metal", material.NewMetal(material.Gray(0.2), material.Gray(3), 0.1, 0.4)},
	}
	sw := spectrum.FixedWavelengths(DefaultConfig().Wavelengths)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler := core.NewSeededSampler(11)
			sp := material.NewShadingPoint(core.NewFrameFromNormal(core.NewVec3(0, 0, 1)), sampler)
			b, err := tt.m.GetBSDF(sp, sw)
			require.NoError(t, err)

			r := Reciprocity(b, sw, 2000, sampler)
			assert.Greater(t, r.Checked, 1900)
			assert.Zero(t, r.NonReciprocal)
			assert.Less(t, r.MaxAsymmetry, 1e-9)
		})
	}
}
