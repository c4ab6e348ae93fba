package material

import (
	"testing"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/microfacet"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quad is a 2x2 image: black and white on the top row, red and blue below
func quad() *ImageTexture {
	return NewImageTexture(2, 2, []core.Vec3{
		core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1),
		core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1),
	})
}

func TestImageTexture_TexelCenters(t *testing.T) {
	img := quad()
	tests := []struct {
		uv   core.Vec2
		want core.Vec3
	}{
		{core.NewVec2(0.25, 0.75), core.NewVec3(0, 0, 0)},
		{core.NewVec2(0.75, 0.75), core.NewVec3(1, 1, 1)},
		{core.NewVec2(0.25, 0.25), core.NewVec3(1, 0, 0)},
		{core.NewVec2(0.75, 0.25), core.NewVec3(0, 0, 1)},
		// Halfway between the two top texels
		{core.NewVec2(0.5, 0.75), core.NewVec3(0.5, 0.5, 0.5)},
		// Center of the image averages all four
		{core.NewVec2(0.5, 0.5), core.NewVec3(0.5, 0.25, 0.5)},
	}
	for _, tt := range tests {
		got := img.RGB(tt.uv)
		assert.True(t, got.Equals(tt.want, 1e-12), "uv %v: expected %v, got %v", tt.uv, tt.want, got)
	}
}

func TestImageTexture_Wraps(t *testing.T) {
	img := quad()
	for _, uv := range []core.Vec2{core.NewVec2(0.1, 0.3), core.NewVec2(0.9, 0.05), core.NewVec2(0, 0)} {
		shifted := core.NewVec2(uv.X+3, uv.Y-2)
		assert.True(t, img.RGB(uv).Equals(img.RGB(shifted), 1e-12), "uv %v", uv)
	}
	// The left edge blends with the right column
	assert.True(t, img.RGB(core.NewVec2(0, 0.75)).Equals(core.NewVec3(0.5, 0.5, 0.5), 1e-12))
}

func TestImageTexture_Spectrum(t *testing.T) {
	sw := testWavelengths()
	img := quad()
	white := img.Spectrum(sw, core.NewVec2(0.75, 0.75))
	assert.True(t, white.Equals(spectrum.RGB(sw, 1, 1, 1), 1e-12))
	assert.True(t, img.Spectrum(sw, core.NewVec2(0.25, 0.75)).IsBlack())
	assert.InDelta(t, 1.0/3, img.Value(core.NewVec2(0.25, 0.25)), 1e-12)
}

func TestChannel(t *testing.T) {
	sw := testWavelengths()
	img := quad()
	red := NewChannel(img, 0)
	blue := NewChannel(img, 2)
	at := core.NewVec2(0.25, 0.25)
	assert.Equal(t, 1.0, red.Value(at))
	assert.Equal(t, 0.0, blue.Value(at))
	assert.Equal(t, 0.0, NewChannel(img, 1).Value(at))
	assert.Equal(t, spectrum.Uniform(1), red.Spectrum(sw, at))
}

func TestCheckerboard(t *testing.T) {
	c := NewCheckerboard(4, Gray(1), Gray(0))
	tests := []struct {
		uv   core.Vec2
		want float64
	}{
		{core.NewVec2(0.1, 0.1), 1},
		{core.NewVec2(0.3, 0.1), 0},
		{core.NewVec2(0.3, 0.3), 1},
		{core.NewVec2(-0.1, 0.1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Value(tt.uv), "uv %v", tt.uv)
	}
	sw := testWavelengths()
	assert.True(t, c.Spectrum(sw, core.NewVec2(0.3, 0.1)).IsBlack())
}

func TestBlend(t *testing.T) {
	sw := testWavelengths()
	g := NewGradient(Gray(0), Gray(1))
	assert.Equal(t, 0.0, g.Value(core.NewVec2(0.5, -1)))
	assert.InDelta(t, 0.3, g.Value(core.NewVec2(0.5, 0.3)), 1e-12)
	assert.Equal(t, 1.0, g.Value(core.NewVec2(0.5, 2)))

	b := NewBlend(NewSolidColor(core.NewVec3(1, 0, 0)), NewSolidColor(core.NewVec3(0, 0, 1)), Gray(0.25))
	want := spectrum.RGB(sw, 0.75, 0, 0.25)
	assert.True(t, b.Spectrum(sw, core.Vec2{}).Equals(want, 1e-12))
}

func TestProduct(t *testing.T) {
	sw := testWavelengths()
	p := NewProduct(Gray(0.5), NewSolidColor(core.NewVec3(1, 0.5, 0.2)))
	assert.InDelta(t, 0.5*(1.7/3), p.Value(core.Vec2{}), 1e-12)
	want := spectrum.RGB(sw, 1, 0.5, 0.2).Scale(0.5)
	assert.True(t, p.Spectrum(sw, core.Vec2{}).Equals(want, 1e-12))
}

func TestUVTexture(t *testing.T) {
	sw := testWavelengths()
	uv := UVTexture{}
	assert.True(t, uv.Spectrum(sw, core.NewVec2(1.25, 0.5)).Equals(spectrum.RGB(sw, 0.25, 0.5, 0), 1e-12))
	assert.InDelta(t, 0.25, uv.Value(core.NewVec2(0.25, 0.5)), 1e-12)
}

func TestSolidColor_Spectrum(t *testing.T) {
	sw := testWavelengths()
	gray := Gray(0.4).Spectrum(sw, core.Vec2{})
	for i := range gray {
		assert.InDelta(t, 0.4, gray[i], 1e-9, "gray is flat at every wavelength")
	}

	red := NewSolidColor(core.NewVec3(1, 0, 0)).Spectrum(sw, core.Vec2{})
	assert.Greater(t, red[4], red[0], "680nm reflects more red than 400nm")
}

func TestReflectance_Clamps(t *testing.T) {
	sw := testWavelengths()
	sp := testPoint()
	r := reflectance(Gray(3), sp, sw)
	assert.True(t, r.Equals(spectrum.Uniform(1), 1e-12))
	assert.True(t, reflectance(nil, sp, sw).IsBlack())
}

func TestRoughnessTexture(t *testing.T) {
	sp := NewShadingPoint(core.NewFrame(up, up, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec2(0.25, 0.5)), core.NewSeededSampler(1))

	u, v := roughness(0.4, 0.2, nil, sp)
	assert.Equal(t, 0.4, u)
	assert.Equal(t, 0.2, v)

	u, v = roughness(0.4, 0.2, NewGradient(Gray(0), Gray(1)), sp)
	assert.InDelta(t, 0.2, u, 1e-12)
	assert.InDelta(t, 0.1, v, 1e-12)

	// Halving the roughness of a metal narrows its distribution
	m := NewMetalFromColor(Gray(0.9), 0.4)
	m.RoughnessTexture = Gray(0.5)
	b, err := m.GetBSDF(sp, testWavelengths())
	require.NoError(t, err)
	lobe := b.(*bsdf.Single).BxDF.(*bxdf.MicrofacetReflection)
	require.IsType(t, &microfacet.Schlick{}, lobe.Distribution)
	assert.InDelta(t, 0.04, lobe.Distribution.(*microfacet.Schlick).Roughness(), 1e-12)
}
