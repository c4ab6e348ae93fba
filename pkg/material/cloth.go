package material

import (
	"fmt"

	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/cloth"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Cloth is a woven fabric: a diffuse lobe plus the specular lobe of the yarn
// under the surface point. Colors are indexed by yarn color slot, 0 for warp
// and 1 for weft.
type Cloth struct {
	Weave *cloth.Weave
	Kd    [2]Texture
	Ks    [2]Texture
}

// NewCloth creates a cloth material from a loaded weave
func NewCloth(weave *cloth.Weave, warpKd, warpKs, weftKd, weftKs Texture) *Cloth {
	return &Cloth{
		Weave: weave,
		Kd:    [2]Texture{warpKd, weftKd},
		Ks:    [2]Texture{warpKs, weftKs},
	}
}

func (c *Cloth) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	if c.Weave == nil {
		return nil, fmt.Errorf("cloth: %w", ErrNilMaterial)
	}
	point := c.Weave.At(sp.Frame.UV.X, sp.Frame.UV.Y)
	slot := point.Yarn.Index
	if slot < 0 || slot >= len(c.Kd) {
		return nil, fmt.Errorf("cloth: yarn color slot %d out of range", slot)
	}

	multi := bsdf.NewMulti(sp.Frame)
	if err := multi.Add(bxdf.NewLambertian(reflectance(c.Kd[slot], sp, sw))); err != nil {
		return nil, fmt.Errorf("cloth: %w", err)
	}
	if err := multi.Add(c.Weave.Lobe(reflectance(c.Ks[slot], sp, sw), point)); err != nil {
		return nil, fmt.Errorf("cloth: %w", err)
	}
	return multi, nil
}
