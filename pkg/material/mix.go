package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// ErrWeightCount is returned when a mix has a different number of weights and materials
var ErrWeightCount = errors.New("material: mix weights do not match materials")

// Mix blends the BSDFs of several materials by weight
type Mix struct {
	Materials []Material
	Weights   []float64
}

// NewMix creates a new mix of two materials. amount 0 is all material1,
// 1 is all material2.
func NewMix(material1, material2 Material, amount float64) *Mix {
	amount = core.Clamp(amount, 0, 1)
	return &Mix{
		Materials: []Material{material1, material2},
		Weights:   []float64{1 - amount, amount},
	}
}

// NewWeightedMix creates a mix of any number of materials
func NewWeightedMix(materials []Material, weights []float64) (*Mix, error) {
	if len(materials) != len(weights) {
		return nil, fmt.Errorf("%w: %d materials, %d weights", ErrWeightCount, len(materials), len(weights))
	}
	return &Mix{Materials: materials, Weights: weights}, nil
}

func (m *Mix) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	if len(m.Materials) != len(m.Weights) {
		return nil, ErrWeightCount
	}
	mix := bsdf.NewMix(sp.Frame)
	for i, child := range m.Materials {
		if !(m.Weights[i] > 0) {
			continue
		}
		if child == nil {
			return nil, ErrNilMaterial
		}
		b, err := child.GetBSDF(sp, sw)
		if err != nil {
			return nil, fmt.Errorf("mix child %d: %w", i, err)
		}
		if err := mix.Add(m.Weights[i], b); err != nil {
			return nil, fmt.Errorf("mix child %d: %w", i, err)
		}
	}
	return mix, nil
}
