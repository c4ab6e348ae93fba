package probe

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/material"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Samples = 4096
	cfg.Angles = []float64{0, 30, 60}
	return cfg
}

func TestSampleStats(t *testing.T) {
	var empty SampleStats
	assert.Equal(t, spectrum.SWCSpectrum{}, empty.Mean())
	assert.Zero(t, empty.StdError())

	var constant SampleStats
	for i := 0; i < 10; i++ {
		constant.AddSample(spectrum.Uniform(0.25))
	}
	assert.True(t, constant.Mean().Equals(spectrum.Uniform(0.25), 1e-12))
	assert.InDelta(t, 0, constant.StdError(), 1e-9)

	var two SampleStats
	two.AddSample(spectrum.Uniform(0))
	two.AddSample(spectrum.Uniform(1))
	assert.True(t, two.Mean().Equals(spectrum.Uniform(0.5), 1e-12))
	// Sample variance 0.5 over two samples
	assert.InDelta(t, 0.5, two.StdError(), 1e-12)
}

func TestMaterial_Matte(t *testing.T) {
	r, err := Material("matte", material.NewMatte(material.Gray(0.5), 0), testConfig(), 1)
	require.NoError(t, err)

	assert.Equal(t, "matte", r.Material)
	assert.Equal(t, 1, r.Components)
	require.Len(t, r.Rho, spectrum.WavelengthSamples)
	assert.InDelta(t, 0.5, r.Rho[0], 0.02)

	require.Len(t, r.Directional, 3)
	for _, d := range r.Directional {
		assert.InDelta(t, 0.5, d.Mean, 0.03, "theta %v", d.ThetaDeg)
		assert.False(t, d.Gain)
	}

	assert.Positive(t, r.Consistency.Checked)
	assert.Zero(t, r.Consistency.PdfMismatches)
	assert.Zero(t, r.Consistency.ValueMismatches)
	assert.Zero(t, r.Consistency.Specular)

	assert.Positive(t, r.Reciprocity.Checked)
	assert.Zero(t, r.Reciprocity.NonReciprocal)

	require.Len(t, r.Selection, 1)
	assert.Equal(t, "Reflection|Diffuse", r.Selection[0].Type)
	assert.InDelta(t, 1, r.Selection[0].Frequency, 1e-12)
}

func TestMaterial_Mirror(t *testing.T) {
	cfg := testConfig()
	r, err := Material("mirror", material.NewMirror(material.Gray(1)), cfg, 1)
	require.NoError(t, err)

	assert.Zero(t, r.Consistency.Checked)
	assert.Equal(t, cfg.Samples, r.Consistency.Specular)
	for _, d := range r.Directional {
		assert.InDelta(t, 1, d.Mean, 1e-3)
		assert.False(t, d.Gain)
	}
	require.Len(t, r.Selection, 1)
	assert.Equal(t, "Reflection|Specular", r.Selection[0].Type)
}

func TestMaterial_MixSelection(t *testing.T) {
	m := material.NewMix(material.NewMatte(material.Gray(0.5), 0), material.NewMirror(material.Gray(1)), 0.25)
	r, err := Material("mix", m, testConfig(), 7)
	require.NoError(t, err)

	require.Len(t, r.Selection, 2)
	freq := map[string]float64{}
	for _, s := range r.Selection {
		freq[s.Type] = s.Frequency
	}
	assert.InDelta(t, 0.75, freq["Reflection|Diffuse"], 0.03)
	assert.InDelta(t, 0.25, freq["Reflection|Specular"], 0.03)
}

func TestMaterial_NoSamples(t *testing.T) {
	cfg := testConfig()
	cfg.Samples = 0
	_, err := Material("matte", material.NewMatte(material.Gray(0.5), 0), cfg, 1)
	assert.True(t, errors.Is(err, ErrNoSamples))
}

var errBroken = errors.New("broken material")

type brokenMaterial struct{}

func (brokenMaterial) GetBSDF(*material.ShadingPoint, *spectrum.Wavelengths) (bsdf.BSDF, error) {
	return nil, errBroken
}

type syncLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *syncLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, format)
}

func testMaterials() map[string]material.Material {
	return map[string]material.Material{
		"matte":  material.NewMatte(material.Gray(0.5), 0),
		"mirror": material.NewMirror(material.Gray(0.9)),
		"glossy": material.NewGlossy(material.Gray(0.5), material.Gray(0.04), 0.2),
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig()
	cfg.Samples = 512
	cfg.Workers = 2

	logger := &syncLogger{}
	reports, err := Run(context.Background(), testMaterials(), cfg, logger)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "glossy", reports[0].Material)
	assert.Equal(t, "matte", reports[1].Material)
	assert.Equal(t, "mirror", reports[2].Material)
	assert.Len(t, logger.lines, 4)

	// Per-material seeds make the reports independent of scheduling
	again, err := Run(context.Background(), testMaterials(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, reports, again)
}

func TestRun_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.Samples = 64

	materials := testMaterials()
	materials["broken"] = brokenMaterial{}
	_, err := Run(context.Background(), materials, cfg, nil)
	assert.True(t, errors.Is(err, errBroken))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, testMaterials(), cfg, nil)
	assert.True(t, errors.Is(err, context.Canceled))

	cfg.Samples = 0
	_, err = Run(context.Background(), testMaterials(), cfg, nil)
	assert.True(t, errors.Is(err, ErrNoSamples))
}

func TestWriteReports(t *testing.T) {
	cfg := testConfig()
	cfg.Samples = 256
	reports, err := Run(context.Background(), testMaterials(), cfg, nil)
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, WriteText(&text, reports))
	for _, name := range []string{"glossy", "matte", "mirror", "consistency", "reciprocity", "selected"} {
		assert.Contains(t, text.String(), name)
	}

	var out bytes.Buffer
	require.NoError(t, WriteYAML(&out, reports))
	var decoded []Report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "matte", decoded[1].Material)
	assert.Equal(t, reports[1].Consistency, decoded[1].Consistency)
	assert.Len(t, decoded[1].Directional, 3)
}
