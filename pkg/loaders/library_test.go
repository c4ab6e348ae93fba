package loaders

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/material"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

const tomlLibrary = `
[textures.checks]
type = "checker"
checks = 8.0
tex1 = { rgb = [1.0, 1.0, 1.0] }
tex2 = { name = "black" }

[textures.grain]
type = "scale"
tex1 = { texture = "checks" }
tex2 = { value = 0.5 }

[materials.red]
type = "matte"
kd = { rgb = [0.8, 0.1, 0.1] }

[materials.checked]
type = "matte"
sigma = 20.0
kd = { texture = "checks" }

[materials.varnish]
type = "coating"
base = "red"
index = 1.5
ks = { value = 1.0 }
roughness = 0.05

[materials.gold]
type = "metal"
kr = { rgb = [1.0, 0.78, 0.34] }
uroughness = 0.1
vroughness = 0.3
roughness_texture = "grain"

[materials.blend]
type = "mix"
materials = ["red", "gold"]
amount = 0.25

[materials.stack]
type = "layered"
layers = [{ material = "varnish", opacity = 0.5 }, { material = "red" }]

[materials.sheet]
type = "doublesided"
front = "red"
back = "gold"
flip_back = true

[materials.pane]
type = "archglass"
index = 1.52

[materials.hidden]
type = "null"

[materials.hidden.compositing]
alpha = 0.3
visible_material = false
`

const yamlLibrary = `
textures:
  checks:
    type: checker
    checks: 8
    tex1: {rgb: [1, 1, 1]}
    tex2: {name: black}
  grain:
    type: scale
    tex1: {texture: checks}
    tex2: {value: 0.5}
materials:
  red:
    type: matte
    kd: {rgb: [0.8, 0.1, 0.1]}
  checked:
    type: matte
    sigma: 20
    kd: {texture: checks}
  varnish:
    type: coating
    base: red
    index: 1.5
    ks: {value: 1}
    roughness: 0.05
  gold:
    type: metal
    kr: {rgb: [1, 0.78, 0.34]}
    uroughness: 0.1
    vroughness: 0.3
    roughness_texture: grain
  blend:
    type: mix
    materials: [red, gold]
    amount: 0.25
  stack:
    type: layered
    layers:
      - {material: varnish, opacity: 0.5}
      - {material: red}
  sheet:
    type: doublesided
    front: red
    back: gold
    flip_back: true
  pane:
    type: archglass
    index: 1.52
  hidden:
    type: "null"
    compositing:
      alpha: 0.3
      visible_material: false
`

var up = core.NewVec3(0, 0, 1)

func testWavelengths() *spectrum.Wavelengths {
	return spectrum.FixedWavelengths([spectrum.WavelengthSamples]float64{400, 470, 540, 610, 680})
}

func buildLibrary(t *testing.T, data string, format Format) *Library {
	t.Helper()
	cfg, err := ParseLibraryConfig([]byte(data), format)
	require.NoError(t, err)
	lib, err := cfg.Build(core.NopLogger{})
	require.NoError(t, err)
	return lib
}

// checkLibrary verifies the materials shared by the TOML and YAML fixtures
func checkLibrary(t *testing.T, lib *Library) {
	t.Helper()
	assert.Equal(t, []string{"blend", "checked", "gold", "hidden", "pane", "red", "sheet", "stack", "varnish"}, lib.Names())

	red, err := lib.Get("red")
	require.NoError(t, err)
	matte, ok := red.(*material.Matte)
	require.True(t, ok)
	assert.True(t, solid(t, matte.Kd).Equals(core.NewVec3(0.8, 0.1, 0.1), 1e-12))

	checked, _ := lib.Get("checked")
	require.IsType(t, &material.Matte{}, checked)
	assert.Equal(t, 20.0, checked.(*material.Matte).Sigma)
	require.IsType(t, &material.Checkerboard{}, checked.(*material.Matte).Kd)
	checks := checked.(*material.Matte).Kd.(*material.Checkerboard)
	assert.Equal(t, 8.0, checks.Checks)
	assert.True(t, solid(t, checks.Odd).Equals(core.NewVec3(0, 0, 0), 1e-12))

	varnish, _ := lib.Get("varnish")
	require.IsType(t, &material.Coating{}, varnish)
	coat := varnish.(*material.Coating)
	assert.Same(t, red, coat.Base)
	assert.Equal(t, 1.5, coat.Index)
	assert.Equal(t, 0.05, coat.URoughness)
	assert.Equal(t, 0.05, coat.VRoughness)

	gold, _ := lib.Get("gold")
	require.IsType(t, &material.Metal{}, gold)
	assert.Equal(t, 0.1, gold.(*material.Metal).URoughness)
	assert.Equal(t, 0.3, gold.(*material.Metal).VRoughness)
	grain := gold.(*material.Metal).RoughnessTexture
	require.IsType(t, &material.Product{}, grain)
	assert.Same(t, checks, grain.(*material.Product).A, "textures are built once")
	assert.InDelta(t, 0.5, grain.Value(core.NewVec2(0.01, 0.01)), 1e-12)
	assert.InDelta(t, 0.0, grain.Value(core.NewVec2(0.2, 0.01)), 1e-12)

	blend, _ := lib.Get("blend")
	require.IsType(t, &material.Mix{}, blend)
	assert.InDeltaSlice(t, []float64{0.75, 0.25}, blend.(*material.Mix).Weights, 1e-12)

	stack, _ := lib.Get("stack")
	require.IsType(t, &material.Layered{}, stack)
	assert.Len(t, stack.(*material.Layered).Layers, 2)
	assert.Equal(t, []float64{0.5}, stack.(*material.Layered).Opacity)

	sheet, _ := lib.Get("sheet")
	require.IsType(t, &material.DoubleSided{}, sheet)
	assert.True(t, sheet.(*material.DoubleSided).FlipBack)
	assert.False(t, sheet.(*material.DoubleSided).FlipFront)

	pane, _ := lib.Get("pane")
	require.IsType(t, &material.Glass{}, pane)
	assert.True(t, pane.(*material.Glass).Architectural)
	assert.Equal(t, 1.52, pane.(*material.Glass).Index)

	hidden, _ := lib.Get("hidden")
	require.IsType(t, &material.Composited{}, hidden)
	params := hidden.(*material.Composited).Params
	assert.True(t, params.OverrideAlpha)
	assert.Equal(t, 0.3, params.Alpha)
	assert.False(t, params.VisibleMaterial)
	assert.True(t, params.VisibleEmission)
}

func TestLibrary_TOML(t *testing.T) {
	checkLibrary(t, buildLibrary(t, tomlLibrary, FormatTOML))
}

func TestLibrary_YAML(t *testing.T) {
	checkLibrary(t, buildLibrary(t, yamlLibrary, FormatYAML))
}

func TestLibrary_EveryMaterialBuildsABSDF(t *testing.T) {
	lib := buildLibrary(t, tomlLibrary, FormatTOML)
	sw := testWavelengths()
	for _, name := range lib.Names() {
		t.Run(name, func(t *testing.T) {
			m, err := lib.Get(name)
			require.NoError(t, err)
			sp := material.NewShadingPoint(core.NewFrameFromNormal(up), core.NewSeededSampler(7))
			b, err := m.GetBSDF(sp, sw)
			require.NoError(t, err)
			assert.NotNil(t, b)
		})
	}
}

func TestLibrary_Cloth(t *testing.T) {
	lib := buildLibrary(t, `
[materials.fabric]
type = "cloth"
preset = "silk_charmeuse"
repeat_u = 50.0
repeat_v = 50.0
warp_kd = { rgb = [0.2, 0.3, 0.8] }
`, FormatTOML)

	fabric, err := lib.Get("fabric")
	require.NoError(t, err)
	require.IsType(t, &material.Cloth{}, fabric)
	c := fabric.(*material.Cloth)
	assert.True(t, solid(t, c.Kd[0]).Equals(core.NewVec3(0.2, 0.3, 0.8), 1e-12))
	assert.True(t, solid(t, c.Kd[1]).Equals(core.NewVec3(0.5, 0.5, 0.5), 1e-12))
}

func TestLibrary_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name: "unknown reference",
			data: `
[materials.coat]
type = "coating"
base = "missing"
`,
			wantErr: ErrUnknownMaterial,
		},
		{
			name: "reference cycle",
			data: `
[materials.a]
type = "mix"
materials = ["b", "b"]
amount = 0.5

[materials.b]
type = "coating"
base = "a"
`,
			wantErr: ErrMaterialCycle,
		},
		{
			name: "unknown texture",
			data: `
[materials.a]
type = "matte"
kd = { texture = "nope" }
`,
			wantErr: ErrUnknownTexture,
		},
		{
			name: "texture cycle",
			data: `
[textures.a]
type = "scale"
tex1 = { texture = "b" }

[textures.b]
type = "mix"
tex1 = { value = 1.0 }
amount = { texture = "a" }

[materials.m]
type = "matte"
kd = { texture = "a" }
`,
			wantErr: ErrTextureCycle,
		},
		{
			name: "unknown roughness texture",
			data: `
[materials.m]
type = "metal"
roughness_texture = "nope"
`,
			wantErr: ErrUnknownTexture,
		},
		{
			name: "mix weight count",
			data: `
[materials.a]
type = "null"

[materials.b]
type = "mix"
materials = ["a", "a"]
weights = [1.0]
`,
			wantErr: material.ErrWeightCount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseLibraryConfig([]byte(tt.data), FormatTOML)
			require.NoError(t, err)
			_, err = cfg.Build(nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLibrary_InvalidInput(t *testing.T) {
	_, err := ParseLibraryConfig([]byte("[materials.a]\ntype = \"matte\"\ncolour = 1.0\n"), FormatTOML)
	assert.Error(t, err, "unknown fields are rejected")

	_, err = ParseLibraryConfig([]byte("materials:\n  a:\n    kind: matte\n"), FormatYAML)
	assert.Error(t, err, "unknown fields are rejected")

	cfg, err := ParseLibraryConfig([]byte("[materials.a]\ntype = \"velvet\"\n"), FormatTOML)
	require.NoError(t, err)
	_, err = cfg.Build(nil)
	assert.ErrorContains(t, err, "velvet")

	cfg, err = ParseLibraryConfig([]byte("[materials.a]\ntype = \"matte\"\nkd = { rgb = [1.0, 0.0] }\n"), FormatTOML)
	require.NoError(t, err)
	_, err = cfg.Build(nil)
	assert.Error(t, err)

	cfg, err = ParseLibraryConfig([]byte("[materials.a]\ntype = \"matte\"\nkd = { name = \"ultraviolet\" }\n"), FormatTOML)
	require.NoError(t, err)
	_, err = cfg.Build(nil)
	assert.ErrorContains(t, err, "ultraviolet")

	_, err = ParseLibraryConfig(nil, Format("json"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"lib.toml", FormatTOML},
		{"dir/lib.YAML", FormatYAML},
		{"lib.yml", FormatYAML},
		{"scene.pbrt", FormatPBRT},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.path)
	}
	_, err := FormatFromPath("lib.json")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestLoadLibrary_ImageTextureRelativePath(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "tex.png")
	path := filepath.Join(dir, "lib.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[textures.photo]
type = "image"
path = "tex.png"

[materials.printed]
type = "matte"
kd = { texture = "photo" }
`), 0o644))

	var logged []string
	lib, err := LoadLibrary(path, recordLogger{&logged})
	require.NoError(t, err)
	m, err := lib.Get("printed")
	require.NoError(t, err)
	kd := m.(*material.Matte).Kd
	require.IsType(t, &material.ImageTexture{}, kd)
	assert.Equal(t, 2, kd.(*material.ImageTexture).Width)
	assert.NotEmpty(t, logged)

	_, err = lib.Get("missing")
	assert.True(t, errors.Is(err, ErrUnknownMaterial))
}

func TestLibrary_Textures(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "tex.png")
	path := filepath.Join(dir, "lib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
textures:
  rough:
    type: channel
    path: tex.png
    channel: 1
  fade:
    type: gradient
    tex1: {name: CornflowerBlue}
    tex2: {value: 1}
  marble:
    type: mix
    tex1: {value: 0}
    tex2: {texture: fade}
    amount: {value: 0.25}
  debug:
    type: uv
materials:
  frosted:
    type: roughglass
    roughness: 0.3
    roughness_texture: rough
  lacquer:
    type: glossy
    kd: {texture: marble}
    roughness_texture: rough
  grid:
    type: matte
    kd: {texture: debug}
`), 0o644))

	lib, err := LoadLibrary(path, nil)
	require.NoError(t, err)

	frosted, _ := lib.Get("frosted")
	require.IsType(t, &material.RoughGlass{}, frosted)
	rough := frosted.(*material.RoughGlass).RoughnessTexture
	require.IsType(t, &material.Channel{}, rough)
	assert.InDelta(t, 1.0, rough.Value(core.NewVec2(0.25, 0.75)), 1e-9, "green of the white texel")
	assert.InDelta(t, 1.0, rough.Value(core.NewVec2(0.25, 0.25)), 1e-9, "green of the green texel")
	assert.InDelta(t, 0.0, rough.Value(core.NewVec2(0.75, 0.25)), 1e-9, "green of the blue texel")

	lacquer, _ := lib.Get("lacquer")
	require.IsType(t, &material.Coating{}, lacquer)
	coat := lacquer.(*material.Coating)
	assert.Same(t, rough, coat.RoughnessTexture)
	marble := coat.Base.(*material.Matte).Kd
	require.IsType(t, &material.Blend{}, marble)
	// A quarter of the way to a gradient that is pure white at v = 1
	assert.InDelta(t, 0.25, marble.Value(core.NewVec2(0.5, 1)), 1e-12)

	// CornflowerBlue is #6495ED
	fade := marble.(*material.Blend).B.(*material.Blend)
	assert.InDelta(t, srgbToLinear(0x64*0x101), solid(t, fade.A).X, 1e-12)

	grid, _ := lib.Get("grid")
	assert.Equal(t, material.UVTexture{}, grid.(*material.Matte).Kd)
}

func TestLoadLibrary_MissingFile(t *testing.T) {
	_, err := LoadLibrary(filepath.Join(t.TempDir(), "none.toml"), nil)
	assert.Error(t, err)
}

// solid returns the color of a constant texture
func solid(t *testing.T, tex material.Texture) core.Vec3 {
	t.Helper()
	require.IsType(t, &material.SolidColor{}, tex)
	return tex.(*material.SolidColor).Color
}

type recordLogger struct{ lines *[]string }

func (r recordLogger) Printf(format string, args ...interface{}) {
	*r.lines = append(*r.lines, format)
}
