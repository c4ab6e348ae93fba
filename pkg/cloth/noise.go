package cloth

import "math"

// teaIterations is the number of TEA rounds used for per-yarn randomness
const teaIterations = 8

// tea hashes two words with the Tiny Encryption Algorithm
func tea(v0, v1 uint32, rounds int) uint64 {
	var sum uint32
	for i := 0; i < rounds; i++ {
		sum += 0x9e3779b9
		v0 += ((v1 << 4) + 0xa341316c) ^ (v1 + sum) ^ ((v1 >> 5) + 0xc8013ea4)
		v1 += ((v0 << 4) + 0xad90777d) ^ (v0 + sum) ^ ((v0 >> 5) + 0x7e95761e)
	}
	return uint64(v1)<<32 | uint64(v0)
}

// teaFloat maps a TEA hash to [0, 1) through the float32 mantissa
func teaFloat(v0, v1 uint32, rounds int) float64 {
	bits := uint32(tea(v0, v1, rounds)&0xffffffff)>>9 | 0x3f800000
	return float64(math.Float32frombits(bits)) - 1
}

// seed converts a float coordinate to a hash input, truncating toward zero
func seed(x float64) uint32 {
	return uint32(int64(x))
}

// permutation is the reference improved-noise permutation table
var permutation = [256]uint8{
	151, 160, 137, 91, 90, 15, 131, 13, 201, 95, 96, 53, 194, 233, 7, 225,
	140, 36, 103, 30, 69, 142, 8, 99, 37, 240, 21, 10, 23, 190, 6, 148,
	247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219, 203, 117, 35, 11, 32,
	57, 177, 33, 88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175,
	74, 165, 71, 134, 139, 48, 27, 166, 77, 146, 158, 231, 83, 111, 229, 122,
	60, 211, 133, 230, 220, 105, 92, 41, 55, 46, 245, 40, 244, 102, 143, 54,
	65, 25, 63, 161, 1, 216, 80, 73, 209, 76, 132, 187, 208, 89, 18, 169,
	200, 196, 135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173, 186, 3, 64,
	52, 217, 226, 250, 124, 123, 5, 202, 38, 147, 118, 126, 255, 82, 85, 212,
	207, 206, 59, 227, 47, 16, 58, 17, 182, 189, 28, 42, 223, 183, 170, 213,
	119, 248, 152, 2, 44, 154, 163, 70, 221, 153, 101, 155, 167, 43, 172, 9,
	129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232, 178, 185, 112, 104,
	218, 246, 97, 228, 251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162, 241,
	81, 51, 145, 235, 249, 14, 239, 107, 49, 192, 214, 31, 181, 199, 106, 157,
	184, 84, 204, 176, 115, 121, 50, 45, 127, 4, 150, 254, 138, 236, 205, 93,
	222, 114, 67, 29, 24, 72, 243, 141, 128, 195, 78, 66, 215, 61, 156, 180,
}

func perm(i int) int {
	return int(permutation[i&0xff])
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func grad(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := y
	if h < 8 {
		u = x
	}
	v := z
	if h < 4 {
		v = y
	} else if h == 12 || h == 14 {
		v = x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

// perlin evaluates improved gradient noise at (x, y, z); it vanishes on the
// integer lattice and stays within [-1, 1]
func perlin(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	xi, yi, zi := int(fx)&0xff, int(fy)&0xff, int(fz)&0xff
	x, y, z = x-fx, y-fy, z-fz
	u, v, w := fade(x), fade(y), fade(z)

	a := perm(xi) + yi
	aa, ab := perm(a)+zi, perm(a+1)+zi
	b := perm(xi+1) + yi
	ba, bb := perm(b)+zi, perm(b+1)+zi

	lerp := func(t, a, b float64) float64 { return a + t*(b-a) }
	return lerp(w,
		lerp(v,
			lerp(u, grad(perm(aa), x, y, z), grad(perm(ba), x-1, y, z)),
			lerp(u, grad(perm(ab), x, y-1, z), grad(perm(bb), x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(perm(aa+1), x, y, z-1), grad(perm(ba+1), x-1, y, z-1)),
			lerp(u, grad(perm(ab+1), x, y-1, z-1), grad(perm(bb+1), x-1, y-1, z-1))))
}

// vonMises is the von Mises density with zero mean and concentration b,
// using a polynomial approximation of the Bessel function I0
func vonMises(cosX, b float64) float64 {
	factor := math.Exp(b*cosX) / (2 * math.Pi)
	absB := math.Abs(b)
	if absB <= 3.75 {
		t0 := absB / 3.75
		t := t0 * t0
		return factor / (1 + t*(3.5156229+t*(3.0899424+t*(1.2067492+
			t*(0.2659732+t*(0.0360768+t*0.0045813))))))
	}
	t := 3.75 / absB
	return factor * math.Sqrt(absB) / (math.Exp(absB) * (0.39894228 +
		t*(0.01328592+t*(0.00225319+t*(-0.00157565+t*(0.00916281+
			t*(-0.02057706+t*(0.02635537+t*(-0.01647633+t*0.00392377)))))))))
}

// seeliger is the Seeliger attenuation for scattering albedo sgS/(sgA+sgS)
func seeliger(cos1, cos2, sgA, sgS float64) float64 {
	albedo := sgS / (sgA + sgS)
	c1 := math.Max(0, cos1)
	c2 := math.Max(0, cos2)
	if c1 == 0 || c2 == 0 {
		return 0
	}
	return albedo / (2 * math.Pi) * 0.5 * c1 * c2 / (c1 + c2)
}
