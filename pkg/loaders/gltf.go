package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/material"
)

// Index of refraction of the dielectric part of glTF metallic-roughness materials
const gltfDielectricIndex = 1.5

// LoadGLTF reads a glTF or GLB file and converts its materials
func LoadGLTF(path string, logger core.Logger) (*Library, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return ConvertGLTFMaterials(doc, filepath.Dir(path), logger)
}

// ConvertGLTFMaterials maps the metallic-roughness materials of doc onto
// coated diffuse and metal materials. Image URIs are resolved against dir.
func ConvertGLTFMaterials(doc *gltf.Document, dir string, logger core.Logger) (*Library, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	lib := &Library{Materials: make(map[string]material.Material, len(doc.Materials))}
	for i, m := range doc.Materials {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("material%d", i)
		}
		if _, taken := lib.Materials[name]; taken {
			name = fmt.Sprintf("%s.%d", name, i)
		}
		mat, err := convertGLTFMaterial(doc, m, dir, logger)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		lib.Materials[name] = mat
	}
	logger.Printf("Imported %d glTF materials\n", len(lib.Materials))
	return lib, nil
}

func convertGLTFMaterial(doc *gltf.Document, m *gltf.Material, dir string, logger core.Logger) (material.Material, error) {
	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		pbr = &gltf.PBRMetallicRoughness{}
	}
	factor := pbr.BaseColorFactorOrDefault()
	metallic := core.Clamp(pbr.MetallicFactorOrDefault(), 0, 1)
	roughness := core.Clamp(pbr.RoughnessFactorOrDefault(), 0, 1)

	var base material.Texture = material.NewSolidColor(core.NewVec3(factor[0], factor[1], factor[2]))
	if pbr.BaseColorTexture != nil {
		img, err := gltfTexture(doc, pbr.BaseColorTexture.Index, dir, false, logger)
		if err != nil {
			return nil, err
		}
		if img != nil {
			base = material.NewProduct(img, base)
		}
	}

	// Roughness is stored in the green channel, metalness in blue
	var roughnessMap material.Texture
	if pbr.MetallicRoughnessTexture != nil {
		img, err := gltfTexture(doc, pbr.MetallicRoughnessTexture.Index, dir, true, logger)
		if err != nil {
			return nil, err
		}
		if img != nil {
			roughnessMap = material.NewChannel(img, 1)
		}
	}
	metal := func() material.Material {
		m := material.NewMetalFromColor(base, roughness)
		m.RoughnessTexture = roughnessMap
		return m
	}

	var result material.Material
	switch {
	case metallic >= 1:
		result = metal()
	default:
		coat := material.NewCoating(material.NewMatte(base, 0), material.Gray(1), roughness)
		coat.Index = gltfDielectricIndex
		coat.RoughnessTexture = roughnessMap
		result = coat
		if metallic > 0 {
			result = material.NewMix(coat, metal(), metallic)
		}
	}

	if alpha := gltfAlpha(m, factor[3]); alpha < 1 {
		if alpha <= 0 {
			return material.Null{}, nil
		}
		result = material.NewMix(material.Null{}, result, alpha)
	}

	if m.DoubleSided {
		d := material.NewDoubleSided(result, result)
		d.FlipBack = true
		result = d
	}
	return result, nil
}

// gltfAlpha returns the constant coverage of a material
func gltfAlpha(m *gltf.Material, alpha float64) float64 {
	switch m.AlphaMode {
	case gltf.AlphaBlend:
		return core.Clamp(alpha, 0, 1)
	case gltf.AlphaMask:
		cutoff := 0.5
		if m.AlphaCutoff != nil {
			cutoff = *m.AlphaCutoff
		}
		if alpha < cutoff {
			return 0
		}
	}
	return 1
}

// gltfTexture loads the image behind a texture index. Embedded images are
// not decoded; nil is returned for them.
func gltfTexture(doc *gltf.Document, index int, dir string, linear bool, logger core.Logger) (*material.ImageTexture, error) {
	if index < 0 || index >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", index)
	}
	src := doc.Textures[index].Source
	if src == nil || *src < 0 || *src >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d has no image", index)
	}
	img := doc.Images[*src]
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		logger.Printf("Skipping embedded image %d, using material factors\n", *src)
		return nil, nil
	}
	tex, err := LoadImageTexture(filepath.Join(dir, filepath.FromSlash(img.URI)), ImageOptions{Linear: linear})
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", img.URI, err)
	}
	return tex, nil
}
