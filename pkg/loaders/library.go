package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/cloth"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/material"
)

var (
	// ErrUnknownFormat is returned for library files that are not TOML, YAML or PBRT
	ErrUnknownFormat = errors.New("loaders: unknown library format")
	// ErrUnknownMaterial is returned when a material references a name the library does not define
	ErrUnknownMaterial = errors.New("loaders: unknown material")
	// ErrUnknownTexture is returned when a color references a texture the library does not define
	ErrUnknownTexture = errors.New("loaders: unknown texture")
	// ErrMaterialCycle is returned when materials reference each other in a loop
	ErrMaterialCycle = errors.New("loaders: material reference cycle")
	// ErrTextureCycle is returned when textures reference each other in a loop
	ErrTextureCycle = errors.New("loaders: texture reference cycle")
)

// Format identifies a material library encoding
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatPBRT Format = "pbrt"
)

// FormatFromPath picks a library format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".pbrt":
		return FormatPBRT, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// LibraryConfig describes a set of named materials and the textures they use
type LibraryConfig struct {
	Textures  map[string]TextureConfig  `toml:"textures" yaml:"textures"`
	Materials map[string]MaterialConfig `toml:"materials" yaml:"materials"`
}

// TextureConfig describes an image or procedural texture. Tex1 and Tex2
// are the inputs of checker, gradient, mix and scale textures and may
// themselves reference other textures.
type TextureConfig struct {
	Type    string       `toml:"type" yaml:"type"` // image, channel, checker, gradient, mix, scale, uv
	Path    string       `toml:"path" yaml:"path"`
	MaxSize int          `toml:"max_size" yaml:"max_size"`
	Linear  bool         `toml:"linear" yaml:"linear"`   // Image values are not sRGB encoded
	Channel int          `toml:"channel" yaml:"channel"` // 0 red, 1 green, 2 blue
	Checks  float64      `toml:"checks" yaml:"checks"`
	Tex1    *ColorConfig `toml:"tex1" yaml:"tex1"`
	Tex2    *ColorConfig `toml:"tex2" yaml:"tex2"`
	Amount  *ColorConfig `toml:"amount" yaml:"amount"`
}

// ColorConfig is a constant RGB color, a gray value, a named color or a
// texture reference
type ColorConfig struct {
	RGB     []float64 `toml:"rgb" yaml:"rgb"`
	Value   *float64  `toml:"value" yaml:"value"`
	Name    string    `toml:"name" yaml:"name"` // SVG color keyword, sRGB encoded
	Texture string    `toml:"texture" yaml:"texture"`
}

// LayerConfig is one entry of a layered material
type LayerConfig struct {
	Material string   `toml:"material" yaml:"material"`
	Opacity  *float64 `toml:"opacity" yaml:"opacity"`
}

// CompositingConfig overrides the compositing parameters of a material.
// Missing visibility flags stay visible.
type CompositingConfig struct {
	Alpha                   *float64 `toml:"alpha" yaml:"alpha"`
	VisibleMaterial         *bool    `toml:"visible_material" yaml:"visible_material"`
	VisibleEmission         *bool    `toml:"visible_emission" yaml:"visible_emission"`
	VisibleIndirectMaterial *bool    `toml:"visible_indirect_material" yaml:"visible_indirect_material"`
	VisibleIndirectEmission *bool    `toml:"visible_indirect_emission" yaml:"visible_indirect_emission"`
}

// MaterialConfig describes one named material. Which fields apply depends on Type.
type MaterialConfig struct {
	Type string `toml:"type" yaml:"type"`

	Kd  *ColorConfig `toml:"kd" yaml:"kd"`
	Kr  *ColorConfig `toml:"kr" yaml:"kr"`
	Kt  *ColorConfig `toml:"kt" yaml:"kt"`
	Ks  *ColorConfig `toml:"ks" yaml:"ks"`
	Ka  *ColorConfig `toml:"ka" yaml:"ka"`
	Eta *ColorConfig `toml:"eta" yaml:"eta"`
	K   *ColorConfig `toml:"k" yaml:"k"`

	Sigma            float64  `toml:"sigma" yaml:"sigma"`
	RoughnessTexture string   `toml:"roughness_texture" yaml:"roughness_texture"`
	Roughness        *float64 `toml:"roughness" yaml:"roughness"`
	URoughness       *float64 `toml:"uroughness" yaml:"uroughness"`
	VRoughness       *float64 `toml:"vroughness" yaml:"vroughness"`
	Index            float64  `toml:"index" yaml:"index"`
	CauchyB          float64  `toml:"cauchyb" yaml:"cauchyb"`
	Depth            float64  `toml:"depth" yaml:"depth"`
	Film             float64  `toml:"film" yaml:"film"`
	FilmIndex        float64  `toml:"film_index" yaml:"film_index"`
	Dispersion       bool     `toml:"dispersion" yaml:"dispersion"`
	Multibounce      bool     `toml:"multibounce" yaml:"multibounce"`
	EnergyConserving bool     `toml:"energy_conserving" yaml:"energy_conserving"`

	// References to other materials of the library
	Base      string        `toml:"base" yaml:"base"`
	Materials []string      `toml:"materials" yaml:"materials"`
	Weights   []float64     `toml:"weights" yaml:"weights"`
	Amount    *float64      `toml:"amount" yaml:"amount"`
	Layers    []LayerConfig `toml:"layers" yaml:"layers"`
	Front     string        `toml:"front" yaml:"front"`
	Back      string        `toml:"back" yaml:"back"`
	FlipFront bool          `toml:"flip_front" yaml:"flip_front"`
	FlipBack  bool          `toml:"flip_back" yaml:"flip_back"`

	// Cloth
	Preset  string       `toml:"preset" yaml:"preset"`
	RepeatU float64      `toml:"repeat_u" yaml:"repeat_u"`
	RepeatV float64      `toml:"repeat_v" yaml:"repeat_v"`
	WarpKd  *ColorConfig `toml:"warp_kd" yaml:"warp_kd"`
	WarpKs  *ColorConfig `toml:"warp_ks" yaml:"warp_ks"`
	WeftKd  *ColorConfig `toml:"weft_kd" yaml:"weft_kd"`
	WeftKs  *ColorConfig `toml:"weft_ks" yaml:"weft_ks"`

	Compositing *CompositingConfig `toml:"compositing" yaml:"compositing"`
}

// Library is a set of built materials, addressable by name
type Library struct {
	Materials map[string]material.Material
}

// Names returns the material names in sorted order
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.Materials))
	for name := range l.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named material
func (l *Library) Get(name string) (material.Material, error) {
	m, ok := l.Materials[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return m, nil
}

// ParseLibraryConfig decodes a library description
func ParseLibraryConfig(data []byte, format Format) (*LibraryConfig, error) {
	cfg := &LibraryConfig{}
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode toml library: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode yaml library: %w", err)
		}
	case FormatPBRT:
		parsed, err := ParsePBRTMaterials(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		cfg = parsed
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return cfg, nil
}

// LoadLibraryConfig reads and decodes a library file, picking the format from its extension
func LoadLibraryConfig(path string) (*LibraryConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}
	cfg, err := ParseLibraryConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// LoadLibrary reads a library file and builds its materials
func LoadLibrary(path string, logger core.Logger) (*Library, error) {
	cfg, err := LoadLibraryConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.Build(logger)
}

// resolvePaths makes image texture paths relative to the library file
func (c *LibraryConfig) resolvePaths(dir string) {
	for name, tex := range c.Textures {
		if tex.Path != "" && !filepath.IsAbs(tex.Path) {
			tex.Path = filepath.Join(dir, tex.Path)
			c.Textures[name] = tex
		}
	}
}

// Build creates every material of the library
func (c *LibraryConfig) Build(logger core.Logger) (*Library, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	b := &builder{
		cfg:      c,
		logger:   logger,
		textures: make(map[string]material.Texture),
		built:    make(map[string]material.Material),
		visiting: make(map[string]bool),
		loading:  make(map[string]bool),
	}

	names := make([]string, 0, len(c.Materials))
	for name := range c.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := b.material(name); err != nil {
			return nil, err
		}
	}
	logger.Printf("Built %d materials and %d textures\n", len(b.built), len(b.textures))
	return &Library{Materials: b.built}, nil
}

// builder resolves references between library entries, building each one once
type builder struct {
	cfg      *LibraryConfig
	logger   core.Logger
	textures map[string]material.Texture
	built    map[string]material.Material
	visiting map[string]bool
	loading  map[string]bool
}

func (b *builder) material(name string) (material.Material, error) {
	if m, ok := b.built[name]; ok {
		return m, nil
	}
	mc, ok := b.cfg.Materials[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	if b.visiting[name] {
		return nil, fmt.Errorf("%w: %q", ErrMaterialCycle, name)
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	m, err := b.build(&mc)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", name, err)
	}
	if mc.Compositing != nil {
		m = material.NewComposited(m, mc.Compositing.params())
	}
	b.logger.Printf("Material %q: %s\n", name, mc.Type)
	b.built[name] = m
	return m, nil
}

func (b *builder) build(mc *MaterialConfig) (material.Material, error) {
	switch strings.ToLower(mc.Type) {
	case "matte":
		kd, err := b.color(mc.Kd, 0.5)
		if err != nil {
			return nil, err
		}
		return material.NewMatte(kd, mc.Sigma), nil

	case "mattetranslucent":
		kr, err := b.color(mc.Kr, 0.5)
		if err != nil {
			return nil, err
		}
		kt, err := b.color(mc.Kt, 0.5)
		if err != nil {
			return nil, err
		}
		return material.NewMatteTranslucent(kr, kt, mc.Sigma, mc.EnergyConserving), nil

	case "mirror":
		kr, err := b.color(mc.Kr, 1)
		if err != nil {
			return nil, err
		}
		m := material.NewMirror(kr)
		m.Film = mc.Film
		if mc.FilmIndex > 0 {
			m.FilmIndex = mc.FilmIndex
		}
		return m, nil

	case "metal":
		u, v := mc.roughness(0.1)
		if mc.Eta != nil {
			eta, err := b.color(mc.Eta, 1)
			if err != nil {
				return nil, err
			}
			k, err := b.color(mc.K, 0)
			if err != nil {
				return nil, err
			}
			m := material.NewMetal(eta, k, u, v)
			m.RoughnessTexture, err = b.roughnessTexture(mc)
			return m, err
		}
		kr, err := b.color(mc.Kr, 0.9)
		if err != nil {
			return nil, err
		}
		m := material.NewMetalFromColor(kr, u)
		m.VRoughness = v
		m.RoughnessTexture, err = b.roughnessTexture(mc)
		return m, err

	case "glass", "archglass":
		kr, kt, err := b.glassColors(mc)
		if err != nil {
			return nil, err
		}
		g := material.NewGlass(kr, kt, mc.index(), mc.CauchyB)
		g.Architectural = strings.EqualFold(mc.Type, "archglass")
		g.Film = mc.Film
		if mc.FilmIndex > 0 {
			g.FilmIndex = mc.FilmIndex
		}
		return g, nil

	case "roughglass":
		kr, kt, err := b.glassColors(mc)
		if err != nil {
			return nil, err
		}
		u, v := mc.roughness(0.1)
		g := material.NewRoughGlass(kr, kt, mc.index(), u, v)
		g.CauchyB = mc.CauchyB
		g.Dispersion = mc.Dispersion
		g.RoughnessTexture, err = b.roughnessTexture(mc)
		return g, err

	case "glossy", "coating":
		var base material.Material
		if strings.EqualFold(mc.Type, "glossy") {
			kd, err := b.color(mc.Kd, 0.5)
			if err != nil {
				return nil, err
			}
			base = material.NewMatte(kd, mc.Sigma)
		} else {
			var err error
			if base, err = b.material(mc.Base); err != nil {
				return nil, err
			}
		}
		ks, err := b.color(mc.Ks, 0.04)
		if err != nil {
			return nil, err
		}
		c := material.NewCoating(base, ks, 0)
		c.URoughness, c.VRoughness = mc.roughness(0.1)
		c.Depth = mc.Depth
		c.Index = mc.Index
		c.Multibounce = mc.Multibounce
		if mc.Ka != nil {
			if c.Ka, err = b.color(mc.Ka, 0); err != nil {
				return nil, err
			}
		}
		c.RoughnessTexture, err = b.roughnessTexture(mc)
		return c, err

	case "mix":
		children, err := b.materials(mc.Materials)
		if err != nil {
			return nil, err
		}
		if mc.Amount != nil && len(mc.Weights) == 0 {
			if len(children) != 2 {
				return nil, fmt.Errorf("%w: amount needs 2 materials, got %d", material.ErrWeightCount, len(children))
			}
			return material.NewMix(children[0], children[1], *mc.Amount), nil
		}
		mix, err := material.NewWeightedMix(children, mc.Weights)
		if err != nil {
			return nil, err
		}
		return mix, nil

	case "layered":
		l := material.NewLayered()
		for i, layer := range mc.Layers {
			m, err := b.material(layer.Material)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
			l.Layers = append(l.Layers, m)
			if layer.Opacity != nil {
				l.WithOpacity(i, *layer.Opacity)
			}
		}
		return l, nil

	case "doublesided":
		front, err := b.material(mc.Front)
		if err != nil {
			return nil, fmt.Errorf("front: %w", err)
		}
		back, err := b.material(mc.Back)
		if err != nil {
			return nil, fmt.Errorf("back: %w", err)
		}
		d := material.NewDoubleSided(front, back)
		d.FlipFront, d.FlipBack = mc.FlipFront, mc.FlipBack
		return d, nil

	case "cloth":
		return b.cloth(mc)

	case "null":
		return material.Null{}, nil
	}
	return nil, fmt.Errorf("unsupported material type %q", mc.Type)
}

func (b *builder) cloth(mc *MaterialConfig) (material.Material, error) {
	preset := mc.Preset
	if preset == "" {
		preset = cloth.DefaultPreset
	}
	repeatU, repeatV := mc.RepeatU, mc.RepeatV
	if repeatU == 0 {
		repeatU = cloth.DefaultRepeat
	}
	if repeatV == 0 {
		repeatV = cloth.DefaultRepeat
	}
	weave, err := cloth.NewWeave(preset, repeatU, repeatV, b.logger)
	if err != nil {
		return nil, err
	}
	var colors [4]material.Texture
	for i, c := range []*ColorConfig{mc.WarpKd, mc.WarpKs, mc.WeftKd, mc.WeftKs} {
		if colors[i], err = b.color(c, 0.5); err != nil {
			return nil, err
		}
	}
	return material.NewCloth(weave, colors[0], colors[1], colors[2], colors[3]), nil
}

func (b *builder) materials(names []string) ([]material.Material, error) {
	out := make([]material.Material, len(names))
	for i, name := range names {
		m, err := b.material(name)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (b *builder) glassColors(mc *MaterialConfig) (material.Texture, material.Texture, error) {
	kr, err := b.color(mc.Kr, 1)
	if err != nil {
		return nil, nil, err
	}
	kt, err := b.color(mc.Kt, 1)
	if err != nil {
		return nil, nil, err
	}
	return kr, kt, nil
}

// color builds a texture from c, using a gray of def when c is nil
func (b *builder) color(c *ColorConfig, def float64) (material.Texture, error) {
	switch {
	case c == nil:
		return material.Gray(def), nil
	case c.Texture != "":
		return b.texture(c.Texture)
	case c.Value != nil:
		return material.Gray(*c.Value), nil
	case c.Name != "":
		named, ok := colornames.Map[strings.ToLower(c.Name)]
		if !ok {
			return nil, fmt.Errorf("unknown color name %q", c.Name)
		}
		return material.NewSolidColor(linearRGBA(named)), nil
	case c.RGB != nil:
		rgb, err := vec3(c.RGB)
		if err != nil {
			return nil, err
		}
		return material.NewSolidColor(rgb), nil
	}
	return material.Gray(def), nil
}

func (b *builder) roughnessTexture(mc *MaterialConfig) (material.Texture, error) {
	if mc.RoughnessTexture == "" {
		return nil, nil
	}
	return b.texture(mc.RoughnessTexture)
}

func (b *builder) texture(name string) (material.Texture, error) {
	if t, ok := b.textures[name]; ok {
		return t, nil
	}
	tc, ok := b.cfg.Textures[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTexture, name)
	}
	if b.loading[name] {
		return nil, fmt.Errorf("%w: %q", ErrTextureCycle, name)
	}
	b.loading[name] = true
	defer delete(b.loading, name)

	t, err := b.buildTexture(&tc)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", name, err)
	}
	b.logger.Printf("Texture %q: %s\n", name, tc.Type)
	b.textures[name] = t
	return t, nil
}

func (b *builder) buildTexture(tc *TextureConfig) (material.Texture, error) {
	switch strings.ToLower(tc.Type) {
	case "image":
		return LoadImageTexture(tc.Path, ImageOptions{MaxSize: tc.MaxSize, Linear: tc.Linear})
	case "channel":
		if tc.Channel < 0 || tc.Channel > 2 {
			return nil, fmt.Errorf("channel %d out of range", tc.Channel)
		}
		// Channel maps hold data, never sRGB color
		img, err := LoadImageTexture(tc.Path, ImageOptions{MaxSize: tc.MaxSize, Linear: true})
		if err != nil {
			return nil, err
		}
		return material.NewChannel(img, tc.Channel), nil
	case "checker":
		t1, t2, err := b.inputs(tc, 1, 0)
		if err != nil {
			return nil, err
		}
		checks := tc.Checks
		if checks <= 0 {
			checks = 8
		}
		return material.NewCheckerboard(checks, t1, t2), nil
	case "gradient":
		t1, t2, err := b.inputs(tc, 0, 1)
		if err != nil {
			return nil, err
		}
		return material.NewGradient(t1, t2), nil
	case "mix":
		t1, t2, err := b.inputs(tc, 0, 1)
		if err != nil {
			return nil, err
		}
		amount, err := b.color(tc.Amount, 0.5)
		if err != nil {
			return nil, fmt.Errorf("amount: %w", err)
		}
		return material.NewBlend(t1, t2, amount), nil
	case "scale":
		t1, t2, err := b.inputs(tc, 1, 1)
		if err != nil {
			return nil, err
		}
		return material.NewProduct(t1, t2), nil
	case "uv":
		return material.UVTexture{}, nil
	}
	return nil, fmt.Errorf("unsupported texture type %q", tc.Type)
}

// inputs builds tex1 and tex2, defaulting to grays of def1 and def2
func (b *builder) inputs(tc *TextureConfig, def1, def2 float64) (material.Texture, material.Texture, error) {
	t1, err := b.color(tc.Tex1, def1)
	if err != nil {
		return nil, nil, fmt.Errorf("tex1: %w", err)
	}
	t2, err := b.color(tc.Tex2, def2)
	if err != nil {
		return nil, nil, fmt.Errorf("tex2: %w", err)
	}
	return t1, t2, nil
}

func (mc *MaterialConfig) roughness(def float64) (float64, float64) {
	r := def
	if mc.Roughness != nil {
		r = *mc.Roughness
	}
	u, v := r, r
	if mc.URoughness != nil {
		u = *mc.URoughness
	}
	if mc.VRoughness != nil {
		v = *mc.VRoughness
	}
	return u, v
}

func (mc *MaterialConfig) index() float64 {
	if mc.Index > 0 {
		return mc.Index
	}
	return 1.5
}

func (cc *CompositingConfig) params() bsdf.CompositingParams {
	p := bsdf.DefaultCompositingParams()
	if cc.Alpha != nil {
		p.Alpha = *cc.Alpha
		p.OverrideAlpha = true
	}
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.VisibleMaterial, cc.VisibleMaterial)
	set(&p.VisibleEmission, cc.VisibleEmission)
	set(&p.VisibleIndirectMaterial, cc.VisibleIndirectMaterial)
	set(&p.VisibleIndirectEmission, cc.VisibleIndirectEmission)
	return p
}

// linearRGBA decodes an 8 bit sRGB color
func linearRGBA(c color.RGBA) core.Vec3 {
	return core.NewVec3(srgbToLinear(uint16(c.R)*0x101), srgbToLinear(uint16(c.G)*0x101), srgbToLinear(uint16(c.B)*0x101))
}

func vec3(v []float64) (core.Vec3, error) {
	if len(v) != 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 color components, got %d", len(v))
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}
