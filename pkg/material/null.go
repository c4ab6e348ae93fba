package material

import (
	"github.com/df07/go-spectral-bsdf/pkg/bsdf"
	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Null is a fully transparent surface
type Null struct{}

func (Null) GetBSDF(sp *ShadingPoint, sw *spectrum.Wavelengths) (bsdf.BSDF, error) {
	return single(sp.Frame, bxdf.NewNullTransmission())
}
