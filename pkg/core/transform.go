package core

import "math"

// Matrix4 is a row-major 4x4 matrix
type Matrix4 [4][4]float64

// IdentityMatrix returns the 4x4 identity
func IdentityMatrix() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m * o
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	var r Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j] + m[i][3]*o[3][j]
		}
	}
	return r
}

// Transpose returns the transposed matrix
func (m Matrix4) Transpose() Matrix4 {
	var r Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Transform is a rigid or affine transform together with its inverse
type Transform struct {
	m    Matrix4
	mInv Matrix4
}

// NewTransform builds a transform from a matrix and its inverse
func NewTransform(m, mInv Matrix4) Transform {
	return Transform{m: m, mInv: mInv}
}

// Identity returns the identity transform
func Identity() Transform {
	return Transform{m: IdentityMatrix(), mInv: IdentityMatrix()}
}

// Translate returns a translation by delta
func Translate(delta Vec3) Transform {
	m := IdentityMatrix()
	m[0][3], m[1][3], m[2][3] = delta.X, delta.Y, delta.Z
	inv := IdentityMatrix()
	inv[0][3], inv[1][3], inv[2][3] = -delta.X, -delta.Y, -delta.Z
	return Transform{m: m, mInv: inv}
}

// Scale returns a non-uniform scale; zero factors are not allowed
func Scale(x, y, z float64) Transform {
	m := IdentityMatrix()
	m[0][0], m[1][1], m[2][2] = x, y, z
	inv := IdentityMatrix()
	inv[0][0], inv[1][1], inv[2][2] = 1/x, 1/y, 1/z
	return Transform{m: m, mInv: inv}
}

// RotateAxis returns a rotation of theta radians around axis
func RotateAxis(theta float64, axis Vec3) Transform {
	a := axis.Normalize()
	s, c := math.Sin(theta), math.Cos(theta)
	m := IdentityMatrix()
	m[0][0] = a.X*a.X + (1-a.X*a.X)*c
	m[0][1] = a.X*a.Y*(1-c) - a.Z*s
	m[0][2] = a.X*a.Z*(1-c) + a.Y*s
	m[1][0] = a.X*a.Y*(1-c) + a.Z*s
	m[1][1] = a.Y*a.Y + (1-a.Y*a.Y)*c
	m[1][2] = a.Y*a.Z*(1-c) - a.X*s
	m[2][0] = a.X*a.Z*(1-c) - a.Y*s
	m[2][1] = a.Y*a.Z*(1-c) + a.X*s
	m[2][2] = a.Z*a.Z + (1-a.Z*a.Z)*c
	// Rotations are orthogonal
	return Transform{m: m, mInv: m.Transpose()}
}

// Compose returns the transform applying o first, then t
func (t Transform) Compose(o Transform) Transform {
	return Transform{m: t.m.Mul(o.m), mInv: o.mInv.Mul(t.mInv)}
}

// Inverse returns the inverse transform
func (t Transform) Inverse() Transform {
	return Transform{m: t.mInv, mInv: t.m}
}

// Point transforms a point
func (t Transform) Point(p Vec3) Vec3 {
	m := &t.m
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	z := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if w == 1 || w == 0 {
		return Vec3{x, y, z}
	}
	return Vec3{x / w, y / w, z / w}
}

// Vector transforms a direction (ignores translation)
func (t Transform) Vector(v Vec3) Vec3 {
	m := &t.m
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Normal transforms a surface normal by the inverse transpose
func (t Transform) Normal(n Vec3) Vec3 {
	mi := &t.mInv
	return Vec3{
		mi[0][0]*n.X + mi[1][0]*n.Y + mi[2][0]*n.Z,
		mi[0][1]*n.X + mi[1][1]*n.Y + mi[2][1]*n.Z,
		mi[0][2]*n.X + mi[1][2]*n.Y + mi[2][2]*n.Z,
	}
}
