package spectrum

import "math"

// Visible range sampled by NewWavelengths, in nanometers
const (
	WavelengthStart = 380.0
	WavelengthEnd   = 720.0
)

// Wavelengths is the wavelength context of one camera ray or light sample.
// In single mode only the sample at SingleW carries energy; dispersive
// interfaces switch to it because they send each wavelength in a different direction.
type Wavelengths struct {
	W       [WavelengthSamples]float64
	Single  bool
	SingleW int
}

// NewWavelengths samples stratified wavelengths from u1 and picks the single
// wavelength index from u2
func NewWavelengths(u1, u2 float64) *Wavelengths {
	sw := &Wavelengths{}
	const offset = 1.0 / WavelengthSamples
	for i := range sw.W {
		u := u1 + float64(i)*offset
		u -= math.Floor(u)
		sw.W[i] = WavelengthStart + u*(WavelengthEnd-WavelengthStart)
	}
	sw.SingleW = min(WavelengthSamples-1, int(u2*WavelengthSamples))
	return sw
}

// FixedWavelengths returns a context with the given wavelengths and the first
// one selected for single mode
func FixedWavelengths(w [WavelengthSamples]float64) *Wavelengths {
	return &Wavelengths{W: w}
}

// SampleSingle switches the context to single mode and returns the selected wavelength
func (sw *Wavelengths) SampleSingle() float64 {
	sw.Single = true
	return sw.W[sw.SingleW]
}

// Clone returns an independent copy of the context
func (sw *Wavelengths) Clone() *Wavelengths {
	c := *sw
	return &c
}

// Spectrum returns the sampled wavelengths as a spectral value
func (sw *Wavelengths) Spectrum() SWCSpectrum {
	return SWCSpectrum(sw.W)
}
