package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for scattering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded by seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// ConcentricSampleDisk maps a square sample to the unit disk preserving stratification
func ConcentricSampleDisk(u1, u2 float64) (float64, float64) {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	sx := 2*u1 - 1
	sy := 2*u2 - 1
	if sx == 0 && sy == 0 {
		return 0, 0
	}

	var theta, r float64
	if math.Abs(sx) > math.Abs(sy) {
		r = sx
		theta = math.Pi / 4 * (sy / sx)
	} else {
		r = sy
		theta = math.Pi/2 - math.Pi/4*(sx/sy)
	}
	return r * math.Cos(theta), r * math.Sin(theta)
}

// CosineSampleHemisphere returns a cosine-weighted direction about local +Z
func CosineSampleHemisphere(u1, u2 float64) Vec3 {
	x, y := ConcentricSampleDisk(u1, u2)
	z := math.Sqrt(math.Max(0, 1-x*x-y*y))
	return Vec3{x, y, z}
}

// UniformSampleHemisphere returns a uniformly distributed direction about local +Z
func UniformSampleHemisphere(u1, u2 float64) Vec3 {
	z := u1
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u2
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

// UniformHemispherePdf is the density of UniformSampleHemisphere
func UniformHemispherePdf() float64 {
	return 1 / (2 * math.Pi)
}

// UniformSampleSphere generates a uniform random direction on the unit sphere
func UniformSampleSphere(u1, u2 float64) Vec3 {
	z := 1.0 - 2.0*u1 // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * u2
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

// UniformSpherePdf is the density of UniformSampleSphere
func UniformSpherePdf() float64 {
	return 1 / (4 * math.Pi)
}

// LatinHypercube returns n stratified points of dims dimensions, laid out point-major
func LatinHypercube(sampler Sampler, n, dims int) []float64 {
	samples := make([]float64, n*dims)
	delta := 1 / float64(n)
	for i := 0; i < n; i++ {
		for j := 0; j < dims; j++ {
			samples[dims*i+j] = (float64(i) + sampler.Get1D()) * delta
		}
	}
	// Permute each dimension independently
	for j := 0; j < dims; j++ {
		for i := 0; i < n; i++ {
			other := i + int(sampler.Get1D()*float64(n-i))
			if other >= n {
				other = n - 1
			}
			samples[dims*i+j], samples[dims*other+j] = samples[dims*other+j], samples[dims*i+j]
		}
	}
	return samples
}
