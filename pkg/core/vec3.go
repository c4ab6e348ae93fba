package core

import (
	"math"
)

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// AbsDot returns the absolute value of the dot product
func (v Vec3) AbsDot(other Vec3) float64 {
	return math.Abs(v.Dot(other))
}

// Normalize returns a unit vector in the same direction
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{0, 0, 0}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

// Cross returns the cross product of two vectors
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{
		X: v.X * other.X,
		Y: v.Y * other.Y,
		Z: v.Z * other.Z,
	}
}

// Negate returns the negative of the vector
func (v Vec3) Negate() Vec3 {
	return Vec3{
		X: -v.X,
		Y: -v.Y,
		Z: -v.Z,
	}
}

// Equals reports whether two vectors agree within tolerance
func (v Vec3) Equals(other Vec3, tolerance float64) bool {
	return math.Abs(v.X-other.X) <= tolerance &&
		math.Abs(v.Y-other.Y) <= tolerance &&
		math.Abs(v.Z-other.Z) <= tolerance
}

// IsZero reports whether all components are exactly zero
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Vec2 represents a 2D vector, used for sample pairs and surface coordinates
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Local shading frame helpers. In the local frame the shading normal is +Z.

// CosTheta returns the cosine of the angle between w and the local normal
func CosTheta(w Vec3) float64 {
	return w.Z
}

// AbsCosTheta returns |cos θ| in the local frame
func AbsCosTheta(w Vec3) float64 {
	return math.Abs(w.Z)
}

// SinTheta2 returns sin² θ in the local frame
func SinTheta2(w Vec3) float64 {
	return math.Max(0, 1-w.Z*w.Z)
}

// SinTheta returns sin θ in the local frame
func SinTheta(w Vec3) float64 {
	return math.Sqrt(SinTheta2(w))
}

// CosPhi returns the cosine of the azimuth of w
func CosPhi(w Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 1
	}
	return Clamp(w.X/sinTheta, -1, 1)
}

// SinPhi returns the sine of the azimuth of w
func SinPhi(w Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 0
	}
	return Clamp(w.Y/sinTheta, -1, 1)
}

// SameHemisphere reports whether two local directions lie on the same side of the surface
func SameHemisphere(a, b Vec3) bool {
	return a.Z*b.Z > 0
}

// SphericalDirection builds a local direction from spherical coordinates
func SphericalDirection(sinTheta, cosTheta, phi float64) Vec3 {
	return Vec3{sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), cosTheta}
}

// CoordinateSystem returns two vectors that complete v to an orthonormal basis
func CoordinateSystem(v Vec3) (Vec3, Vec3) {
	var v2 Vec3
	if math.Abs(v.X) > math.Abs(v.Y) {
		invLen := 1 / math.Sqrt(v.X*v.X+v.Z*v.Z)
		v2 = Vec3{-v.Z * invLen, 0, v.X * invLen}
	} else {
		invLen := 1 / math.Sqrt(v.Y*v.Y+v.Z*v.Z)
		v2 = Vec3{0, v.Z * invLen, -v.Y * invLen}
	}
	return v2, v.Cross(v2)
}
