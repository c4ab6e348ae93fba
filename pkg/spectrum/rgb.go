package spectrum

// Band edges of the RGB reflectance basis, in nanometers
const (
	blueEdgeLo = 480.0
	blueEdgeHi = 520.0
	redEdgeLo  = 580.0
	redEdgeHi  = 620.0
)

// RGB converts an RGB reflectance to the sampled wavelengths. The red, green
// and blue bands sum to one at every wavelength, so a gray input gives a
// flat spectrum.
func RGB(sw *Wavelengths, r, g, b float64) SWCSpectrum {
	var s SWCSpectrum
	for i, w := range sw.W {
		blue := 1 - smoothStep(blueEdgeLo, blueEdgeHi, w)
		red := smoothStep(redEdgeLo, redEdgeHi, w)
		s[i] = r*red + g*(1-blue-red) + b*blue
	}
	return s
}

func smoothStep(lo, hi, x float64) float64 {
	if x <= lo {
		return 0
	}
	if x >= hi {
		return 1
	}
	t := (x - lo) / (hi - lo)
	return t * t * (3 - 2*t)
}
