package microfacet

import (
	"math"
	"testing"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func distributions() map[string]Distribution {
	return map[string]Distribution{
		"schlick":             NewSchlick(0.3, 0),
		"schlick_aniso_pos":   NewSchlick(0.3, 0.5),
		"schlick_aniso_neg":   NewSchlick(0.2, -0.6),
		"blinn":               NewBlinn(20),
		"anisotropic":         NewAnisotropic(10, 50),
		"anisotropic_uniform": NewAnisotropic(15, 15),
		"beckmann":            NewBeckmann(0.5),
		"ward":                NewWard(0.4),
	}
}

// hemisphereIntegral estimates ∫ f(w) dω over the upper hemisphere
func hemisphereIntegral(seed int64, n int, f func(w core.Vec3) float64) float64 {
	sampler := core.NewSeededSampler(seed)
	sum := 0.0
	for i := 0; i < n; i++ {
		u := sampler.Get2D()
		w := core.UniformSampleHemisphere(u.X, u.Y)
		sum += f(w) / core.UniformHemispherePdf()
	}
	return sum / float64(n)
}

func TestPdfIntegratesToOne(t *testing.T) {
	for name, d := range distributions() {
		t.Run(name, func(t *testing.T) {
			integral := hemisphereIntegral(7, 400000, d.Pdf)
			assert.InDelta(t, 1.0, integral, 0.03)
		})
	}
}

func TestProjectedDistributionIsNormalized(t *testing.T) {
	cases := map[string]Distribution{
		"schlick":     NewSchlick(0.4, 0),
		"blinn":       NewBlinn(10),
		"anisotropic": NewAnisotropic(5, 30),
		"beckmann":    NewBeckmann(0.6),
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			integral := hemisphereIntegral(11, 400000, func(w core.Vec3) float64 {
				return d.D(w) * w.Z
			})
			assert.InDelta(t, 1.0, integral, 0.03)
		})
	}
}

func TestSampleHMatchesPdf(t *testing.T) {
	for name, d := range distributions() {
		t.Run(name, func(t *testing.T) {
			sampler := core.NewSeededSampler(42)
			for i := 0; i < 2000; i++ {
				u := sampler.Get2D()
				wh, dv, pdf := d.SampleH(u.X, u.Y)
				require.InDelta(t, 1.0, wh.Length(), 1e-9)
				require.GreaterOrEqual(t, wh.Z, 0.0)
				assert.InDelta(t, d.Pdf(wh), pdf, 1e-6*math.Max(1, pdf))
				assert.InDelta(t, d.D(wh), dv, 1e-6*math.Max(1, dv))
			}
		})
	}
}

// The sampled half vectors must follow Pdf: compare sample moments with
// moments integrated against Pdf.
func TestSampleHFollowsPdf(t *testing.T) {
	for name, d := range distributions() {
		t.Run(name, func(t *testing.T) {
			sampler := core.NewSeededSampler(3)
			const n = 200000
			var meanZ, meanX2 float64
			for i := 0; i < n; i++ {
				u := sampler.Get2D()
				wh, _, _ := d.SampleH(u.X, u.Y)
				meanZ += wh.Z
				meanX2 += wh.X * wh.X
			}
			meanZ /= n
			meanX2 /= n

			expectedZ := hemisphereIntegral(5, 400000, func(w core.Vec3) float64 {
				return w.Z * d.Pdf(w)
			})
			expectedX2 := hemisphereIntegral(5, 400000, func(w core.Vec3) float64 {
				return w.X * w.X * d.Pdf(w)
			})
			assert.InDelta(t, expectedZ, meanZ, 0.02)
			assert.InDelta(t, expectedX2, meanX2, 0.02)
		})
	}
}

func TestSchlick_Anisotropy(t *testing.T) {
	// Positive anisotropy narrows the distribution along x
	d := NewSchlick(0.2, 0.8)
	alongX := core.NewVec3(0.3, 0, 1).Normalize()
	alongY := core.NewVec3(0, 0.3, 1).Normalize()
	assert.Greater(t, d.D(alongY), d.D(alongX))

	d = NewSchlick(0.2, -0.8)
	assert.Greater(t, d.D(alongX), d.D(alongY))

	// Sampled half vectors spread further along y
	d = NewSchlick(0.2, 0.8)
	sampler := core.NewSeededSampler(11)
	var x2, y2 float64
	for i := 0; i < 20000; i++ {
		u := sampler.Get2D()
		wh, _, pdf := d.SampleH(u.X, u.Y)
		if pdf == 0 {
			continue
		}
		x2 += wh.X * wh.X
		y2 += wh.Y * wh.Y
	}
	assert.Greater(t, y2, 2*x2)
}

func TestSchlick_ZeroRoughness(t *testing.T) {
	d := NewSchlick(0, 0)
	wh, _, _ := d.SampleH(0.3, 0.7)
	assert.True(t, wh.Equals(core.NewVec3(0, 0, 1), 1e-9))
	assert.True(t, math.IsInf(d.D(core.NewVec3(0, 0, 1)), 1))
}

func TestSchlick_G(t *testing.T) {
	d := NewSchlick(0.5, 0)
	n := core.NewVec3(0, 0, 1)
	assert.InDelta(t, 1.0, d.G(n, n, n), 1e-12)
	grazing := core.NewVec3(1, 0, 0.01).Normalize()
	assert.Less(t, d.G(grazing, n, n), 0.05)
}

func TestCookTorranceG(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	assert.InDelta(t, 1.0, CookTorranceG(n, n, n), 1e-12)

	sampler := core.NewSeededSampler(9)
	for i := 0; i < 500; i++ {
		u := sampler.Get2D()
		v := sampler.Get2D()
		wo := core.UniformSampleHemisphere(u.X, u.Y)
		wi := core.UniformSampleHemisphere(v.X, v.Y)
		wh := wo.Add(wi).Normalize()
		g := CookTorranceG(wo, wi, wh)
		assert.GreaterOrEqual(t, g, 0.0)
		assert.LessOrEqual(t, g, 1.0)
	}
}

func TestBeckmann_HalfG(t *testing.T) {
	d := NewBeckmann(0.3)
	n := core.NewVec3(0, 0, 1)
	assert.Equal(t, 1.0, d.HalfG(n, n))
	// Facets tilted away from w are invisible
	w := core.NewVec3(0.9, 0, 0.1).Normalize()
	away := core.NewVec3(-0.8, 0, 0.6)
	assert.Equal(t, 0.0, d.HalfG(w, away))
	grazing := core.NewVec3(1, 0, 0.05).Normalize()
	assert.Less(t, d.HalfG(grazing, n), 0.5)
}

func TestBlinn_ExponentClamp(t *testing.T) {
	d := NewBlinn(math.NaN())
	assert.Equal(t, maxExponent, d.exponent)
	d = NewBlinn(1e9)
	assert.Equal(t, maxExponent, d.exponent)
}
