package core

import "math"

// Frame is the shading geometry at one surface point: the geometric normal used
// for side tests and the orthonormal shading basis used for local directions.
type Frame struct {
	Ng   Vec3 // Geometric normal
	Nn   Vec3 // Shading normal
	Dpdu Vec3 // Surface derivative along u
	Dpdv Vec3 // Surface derivative along v
	UV   Vec2 // Surface coordinates

	sn Vec3 // Shading tangent
	tn Vec3 // Shading bitangent
}

// NewFrame builds a shading frame. The tangent follows dpdu projected onto the
// plane of the shading normal.
func NewFrame(nn, ng, dpdu, dpdv Vec3, uv Vec2) Frame {
	f := Frame{
		Ng:   ng.Normalize(),
		Nn:   nn.Normalize(),
		Dpdu: dpdu,
		Dpdv: dpdv,
		UV:   uv,
	}
	f.updateBasis()
	return f
}

// NewFrameFromNormal builds a frame with identical shading and geometric normals
// and an arbitrary tangent
func NewFrameFromNormal(n Vec3) Frame {
	n = n.Normalize()
	dpdu, dpdv := CoordinateSystem(n)
	return NewFrame(n, n, dpdu, dpdv, Vec2{})
}

func (f *Frame) updateBasis() {
	t := f.Dpdu.Subtract(f.Nn.Multiply(f.Nn.Dot(f.Dpdu)))
	if t.LengthSquared() < MachineEpsilon {
		t, _ = CoordinateSystem(f.Nn)
	}
	f.sn = t.Normalize()
	f.tn = f.Nn.Cross(f.sn)
}

// Tangent returns the shading tangent
func (f Frame) Tangent() Vec3 { return f.sn }

// Bitangent returns the shading bitangent
func (f Frame) Bitangent() Vec3 { return f.tn }

// WorldToLocal expresses a world direction in the shading basis
func (f Frame) WorldToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.sn), v.Dot(f.tn), v.Dot(f.Nn)}
}

// LocalToWorld expresses a local direction in world space
func (f Frame) LocalToWorld(v Vec3) Vec3 {
	return Vec3{
		f.sn.X*v.X + f.tn.X*v.Y + f.Nn.X*v.Z,
		f.sn.Y*v.X + f.tn.Y*v.Y + f.Nn.Y*v.Z,
		f.sn.Z*v.X + f.tn.Z*v.Y + f.Nn.Z*v.Z,
	}
}

// HasShadingGeometry reports whether the shading normal differs from the geometric one
func (f Frame) HasShadingGeometry() bool {
	return !f.Nn.Equals(f.Ng, MachineEpsilon)
}

// ApplyTransform moves the frame under transform and returns the area scale
// |(dpdu × dpdv) · nn| of the transformed surface
func (f *Frame) ApplyTransform(t Transform) float64 {
	f.Ng = t.Normal(f.Ng).Normalize()
	f.Nn = t.Normal(f.Nn).Normalize()
	f.Dpdu = t.Vector(f.Dpdu)
	f.Dpdv = t.Vector(f.Dpdv)
	f.updateBasis()
	return math.Abs(f.Dpdu.Cross(f.Dpdv).Dot(f.Nn))
}
