package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/material"
)

const pbrtLibrary = `# material library
Texture "checks" "spectrum" "checkerboard" "float checks" 8
    "rgb tex1" [0.9 0.9 0.9] "rgb tex2" [0.1 0.1 0.1]
Texture "grain" "float" "scale" "texture tex" "checks" "float scale" 0.5
MakeNamedMaterial "red"
    "string type" "diffuse"
    "rgb reflectance" [0.8 0.1 0.1]
MakeNamedMaterial "floor" "string type" "diffuse" "texture reflectance" "checks"
MakeNamedMaterial "plastic" "string type" "coateddiffuse" "float roughness" 0.1 "rgb reflectance" [0.2 0.2 0.8]
MakeNamedMaterial "copper" "string type" "conductor"
    "rgb eta" [0.2 1.1 1.2] "rgb k" [3.9 2.4 2.2]
    "float roughness" 0.05
MakeNamedMaterial "frosted" "string type" "dielectric" "float eta" 1.5 "float roughness" 0.2
MakeNamedMaterial "brushed" "string type" "conductor" "texture roughness" "grain"
MakeNamedMaterial "blend" "string type" "mix" "string materials" ["red" "copper"] "float amount" 0.3

WorldBegin
AttributeBegin
  Material "dielectric" "float eta" 1.33
  Translate 0 1 0
  Shape "sphere" "float radius" 1
AttributeEnd
WorldEnd
`

func TestTokenizePBRT(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`Material "diffuse"`, []string{"Material", `"diffuse"`}},
		{`"rgb reflectance" [0.5 0.5 0.5]`, []string{`"rgb reflectance"`, "[0.5 0.5 0.5]"}},
		{`"string materials" ["a" "b"]`, []string{`"string materials"`, `["a" "b"]`}},
		{"Translate\t1 2 3", []string{"Translate", "1", "2", "3"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tokenizePBRT(tt.line), tt.line)
	}
}

func TestParseStatement(t *testing.T) {
	stmt, err := parseStatement(`Texture "checks" "spectrum" "checkerboard" "float checks" 4 "rgb tex1" [1 0 0]`)
	require.NoError(t, err)
	assert.Equal(t, "Texture", stmt.Type)
	assert.Equal(t, "checks", stmt.Subtype)
	assert.Equal(t, []string{"spectrum", "checkerboard"}, stmt.Args)

	checks, ok := stmt.GetFloatParam("checks")
	require.True(t, ok)
	assert.Equal(t, 4.0, checks)
	rgb, ok := stmt.GetRGBParam("tex1")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0, 0}, rgb)

	_, ok = stmt.GetFloatParam("missing")
	assert.False(t, ok)

	stmt, err = parseStatement(`MakeNamedMaterial "m" "string type" "mix" "string materials" ["a" "b"]`)
	require.NoError(t, err)
	kind, ok := stmt.GetStringParam("type")
	require.True(t, ok)
	assert.Equal(t, "mix", kind)
	assert.Equal(t, []string{"a", "b"}, stmt.GetStringsParam("materials"))

	_, err = parseStatement(`Material "diffuse" "rgb reflectance extra" [1 1 1]`)
	assert.Error(t, err, "parameter declarations are a type and a name")
}

func TestParsePBRTMaterials(t *testing.T) {
	cfg, err := ParsePBRTMaterials(strings.NewReader(pbrtLibrary))
	require.NoError(t, err)

	require.Contains(t, cfg.Textures, "checks")
	checks := cfg.Textures["checks"]
	assert.Equal(t, "checker", checks.Type)
	assert.Equal(t, 8.0, checks.Checks)
	require.NotNil(t, checks.Tex1)
	assert.Equal(t, []float64{0.9, 0.9, 0.9}, checks.Tex1.RGB)
	assert.Equal(t, []float64{0.1, 0.1, 0.1}, checks.Tex2.RGB)

	grain := cfg.Textures["grain"]
	assert.Equal(t, "scale", grain.Type)
	assert.Equal(t, "checks", grain.Tex1.Texture)
	require.NotNil(t, grain.Tex2.Value)
	assert.Equal(t, 0.5, *grain.Tex2.Value)
	assert.Equal(t, "grain", cfg.Materials["brushed"].RoughnessTexture)
	assert.Nil(t, cfg.Materials["brushed"].Roughness)

	require.Len(t, cfg.Materials, 8)

	red := cfg.Materials["red"]
	assert.Equal(t, "matte", red.Type)
	require.NotNil(t, red.Kd)
	assert.Equal(t, []float64{0.8, 0.1, 0.1}, red.Kd.RGB)

	assert.Equal(t, "checks", cfg.Materials["floor"].Kd.Texture)

	plastic := cfg.Materials["plastic"]
	assert.Equal(t, "glossy", plastic.Type)
	assert.Equal(t, 1.5, plastic.Index)
	require.NotNil(t, plastic.Roughness)
	assert.Equal(t, 0.1, *plastic.Roughness)

	copper := cfg.Materials["copper"]
	assert.Equal(t, "metal", copper.Type)
	require.NotNil(t, copper.Eta)
	assert.Equal(t, []float64{3.9, 2.4, 2.2}, copper.K.RGB)
	assert.Zero(t, copper.Index)

	assert.Equal(t, "roughglass", cfg.Materials["frosted"].Type)

	blend := cfg.Materials["blend"]
	assert.Equal(t, []string{"red", "copper"}, blend.Materials)
	require.NotNil(t, blend.Amount)
	assert.Equal(t, 0.3, *blend.Amount)

	// Anonymous materials are numbered in file order
	water := cfg.Materials["material1"]
	assert.Equal(t, "glass", water.Type)
	assert.Equal(t, 1.33, water.Index)
}

func TestPBRTLibraryBuilds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.pbrt")
	require.NoError(t, os.WriteFile(path, []byte(pbrtLibrary), 0o644))

	lib, err := LoadLibrary(path, nil)
	require.NoError(t, err)

	blend, err := lib.Get("blend")
	require.NoError(t, err)
	require.IsType(t, &material.Mix{}, blend)
	assert.InDeltaSlice(t, []float64{0.7, 0.3}, blend.(*material.Mix).Weights, 1e-12)

	copper, _ := lib.Get("copper")
	require.IsType(t, &material.Metal{}, copper)
	assert.NotNil(t, copper.(*material.Metal).Eta)
	assert.Nil(t, copper.(*material.Metal).RoughnessTexture)

	brushed, _ := lib.Get("brushed")
	require.IsType(t, &material.Product{}, brushed.(*material.Metal).RoughnessTexture)
	grain := brushed.(*material.Metal).RoughnessTexture
	assert.InDelta(t, 0.45, grain.Value(core.NewVec2(0.01, 0.01)), 1e-12)
	assert.InDelta(t, 0.05, grain.Value(core.NewVec2(0.2, 0.01)), 1e-12)

	sw := testWavelengths()
	for _, name := range lib.Names() {
		m, _ := lib.Get(name)
		sp := material.NewShadingPoint(core.NewFrameFromNormal(up), core.NewSeededSampler(3))
		b, err := m.GetBSDF(sp, sw)
		require.NoError(t, err, name)
		assert.NotNil(t, b, name)
	}
}

func TestParsePBRTMaterials_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"continuation without statement", `"rgb reflectance" [1 1 1]`, "unexpected continuation"},
		{"unsupported type", `Material "velvet"`, "velvet"},
		{"named material without type", `MakeNamedMaterial "m" "float roughness" 0.1`, "missing material type"},
		{"texture without class", `Texture "t"`, "value type and a class"},
		{"unsupported texture", `Texture "t" "spectrum" "marble"`, "marble"},
		{"imagemap without file", `Texture "t" "spectrum" "imagemap"`, "filename"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePBRTMaterials(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
