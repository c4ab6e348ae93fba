package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSWCSpectrum_Arithmetic(t *testing.T) {
	a := SWCSpectrum{1, 2, 3, 4, 5}
	b := Uniform(2)

	assert.Equal(t, SWCSpectrum{3, 4, 5, 6, 7}, a.Add(b))
	assert.Equal(t, SWCSpectrum{-1, 0, 1, 2, 3}, a.Sub(b))
	assert.Equal(t, SWCSpectrum{2, 4, 6, 8, 10}, a.Mul(b))
	assert.Equal(t, SWCSpectrum{0.5, 1, 1.5, 2, 2.5}, a.Div(b))
	assert.Equal(t, SWCSpectrum{0.5, 1, 1.5, 2, 2.5}, a.DivScalar(2))
	assert.Equal(t, SWCSpectrum{3, 6, 9, 12, 15}, a.Scale(3))
	assert.Equal(t, SWCSpectrum{5, 8, 11, 14, 17}, a.AddWeighted(2, SWCSpectrum{2, 3, 4, 5, 6}))
	assert.Equal(t, SWCSpectrum{0, -1, -2, -3, -4}, a.OneMinus())
	assert.Equal(t, SWCSpectrum{1, 2, 3, 3, 3}, a.Clamp(0, 3))

	// Value semantics: the receiver is never modified
	assert.Equal(t, SWCSpectrum{1, 2, 3, 4, 5}, a)
}

func TestSWCSpectrum_Reductions(t *testing.T) {
	s := SWCSpectrum{0.1, 0.2, 0.3, 0.4, 0.5}
	assert.InDelta(t, 0.3, s.Average(), 1e-12)
	assert.Equal(t, 0.5, s.Max())
	assert.False(t, s.IsBlack())
	assert.True(t, SWCSpectrum{}.IsBlack())
	assert.True(t, SWCSpectrum{0, math.NaN()}.IsNaN())

	assert.True(t, Uniform(0).Exp().Equals(Uniform(1), 1e-12))
	assert.True(t, Uniform(4).Sqrt().Equals(Uniform(2), 1e-12))
	assert.True(t, Uniform(2).Pow(3).Equals(Uniform(8), 1e-12))
	assert.Equal(t, "(0.1, 0.2, 0.3, 0.4, 0.5)", s.String())
}

func TestSWCSpectrum_Filter(t *testing.T) {
	s := SWCSpectrum{1, 2, 3, 4, 5}
	sw := NewWavelengths(0.1, 0.7)

	assert.InDelta(t, 3.0, s.Filter(sw), 1e-12)

	sw.SampleSingle()
	assert.Equal(t, s[sw.SingleW], s.Filter(sw))
}

func TestNewWavelengths(t *testing.T) {
	sw := NewWavelengths(0.3, 0.99)
	require.False(t, sw.Single)
	assert.Equal(t, WavelengthSamples-1, sw.SingleW)

	span := (WavelengthEnd - WavelengthStart) / WavelengthSamples
	for i, w := range sw.W {
		assert.GreaterOrEqual(t, w, WavelengthStart)
		assert.Less(t, w, WavelengthEnd)
		// Stratified: one sample per stratum
		stratum := int((w - WavelengthStart) / span)
		for j, other := range sw.W {
			if j != i {
				assert.NotEqual(t, stratum, int((other-WavelengthStart)/span))
			}
		}
	}

	w := sw.SampleSingle()
	assert.True(t, sw.Single)
	assert.Equal(t, sw.W[sw.SingleW], w)

	clone := sw.Clone()
	clone.Single = false
	assert.True(t, sw.Single, "clones are independent")
}

func TestRGB(t *testing.T) {
	sw := FixedWavelengths([WavelengthSamples]float64{400, 500, 550, 600, 700})

	assert.True(t, RGB(sw, 0.4, 0.4, 0.4).Equals(Uniform(0.4), 1e-12))

	red := RGB(sw, 1, 0, 0)
	assert.Equal(t, 0.0, red[0])
	assert.Equal(t, 0.0, red[2])
	assert.InDelta(t, 0.5, red[3], 1e-12)
	assert.Equal(t, 1.0, red[4])

	blue := RGB(sw, 0, 0, 1)
	assert.Equal(t, 1.0, blue[0])
	assert.InDelta(t, 0.5, blue[1], 1e-12)
	assert.Equal(t, 0.0, blue[4])

	green := RGB(sw, 0, 1, 0)
	assert.Equal(t, 1.0, green[2])
	assert.True(t, red.Add(green).Add(blue).Equals(Uniform(1), 1e-12))
}
