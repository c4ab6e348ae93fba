package material

import (
	"fmt"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// DoubleSided shows a different material on each face. A flipped face is
// built with the normals reversed, so it looks the same as it would on the
// front.
type DoubleSided struct {
	Front     Material
	Back      Material
	FlipFront bool
	FlipBack  bool
}

// NewDoubleSided creates a two-faced material
func NewDoubleSided(front, back Material) *DoubleSided {
	return &DoubleSided{Front: front, Back: back}
}

func (d *DoubleSided) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	if d.Front == nil || d.Back == nil {
		return nil, ErrNilMaterial
	}
	front, err := d.face(d.Front, d.FlipFront, sp, sw)
	if err != nil {
		return nil, fmt.Errorf("front: %w", err)
	}
	back, err := d.face(d.Back, d.FlipBack, sp, sw)
	if err != nil {
		return nil, fmt.Errorf("back: %w", err)
	}
	b, err := bsdf.NewDoubleSide(sp.Frame, front, back)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (d *DoubleSided) face(m Material, flip bool, sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	if flip {
		sp = sp.Flipped()
	}
	return m.GetBSDF(sp, sw)
}
