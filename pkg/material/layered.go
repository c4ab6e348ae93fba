package material

import (
	"fmt"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Layered stacks materials, the first one facing the geometric normal.
// A layer with opacity below one lets the rest of the light straight through.
type Layered struct {
	Layers  []Material
	Opacity []float64 // Per layer; missing entries are opaque
}

// NewLayered creates a new layered material from the outermost layer inward
func NewLayered(layers ...Material) *Layered {
	return &Layered{Layers: layers}
}

// WithOpacity sets the opacity of layer i
func (l *Layered) WithOpacity(i int, opacity float64) *Layered {
	for len(l.Opacity) <= i {
		l.Opacity = append(l.Opacity, 1)
	}
	l.Opacity[i] = opacity
	return l
}

func (l *Layered) opacity(i int) float64 {
	if i < len(l.Opacity) {
		return l.Opacity[i]
	}
	return 1
}

func (l *Layered) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	if sp.Sampler == nil {
		return nil, ErrNoSampler
	}
	stack, err := bsdf.NewLayered(sp.Frame, sp.Sampler)
	if err != nil {
		return nil, err
	}
	for i, m := range l.Layers {
		op := l.opacity(i)
		if op <= 0 {
			continue
		}
		if m == nil {
			return nil, ErrNilMaterial
		}
		b, err := m.GetBSDF(sp, sw)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if op < 1 {
			if b, err = withNull(sp, b, op); err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
		}
		if err := stack.Add(b, op); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	if stack.Len() == 0 {
		null, err := single(sp.Frame, bxdf.NewNullTransmission())
		if err != nil {
			return nil, err
		}
		if err := stack.Add(null, 1); err != nil {
			return nil, err
		}
	}
	return stack, nil
}

// withNull mixes b with clear transmission so that it covers a share op of the surface
func withNull(sp *ShadingPoint, b bsdf.BSDF, op float64) (bsdf.BSDF, error) {
	null, err := single(sp.Frame, bxdf.NewNullTransmission())
	if err != nil {
		return nil, err
	}
	mix := bsdf.NewMix(sp.Frame)
	if err := mix.Add(op, b); err != nil {
		return nil, err
	}
	if err := mix.Add(1-op, null); err != nil {
		return nil, err
	}
	return mix, nil
}
