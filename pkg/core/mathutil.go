package core

import "math"

// MachineEpsilon is the threshold below which a cosine is treated as degenerate
const MachineEpsilon = 1e-9

// OneMinusEpsilon is the largest float64 below one
const OneMinusEpsilon = 0x1.fffffffffffffp-1

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// SmoothStep is the cubic Hermite step between lo and hi
func SmoothStep(lo, hi, x float64) float64 {
	if x < lo {
		return 0
	}
	if x >= hi {
		return 1
	}
	t := (x - lo) / (hi - lo)
	return t * t * (3 - 2*t)
}

// IsDegenerateCos reports whether a cosine is too small to divide by
func IsDegenerateCos(cos float64) bool {
	return !(math.Abs(cos) > MachineEpsilon)
}
