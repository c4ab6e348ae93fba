package core

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrame_RoundTrip(t *testing.T) {
	n := NewVec3(0.2, -0.4, 0.9).Normalize()
	frame := NewFrameFromNormal(n)

	w := NewVec3(0.3, 0.5, -0.2).Normalize()
	local := frame.WorldToLocal(w)
	assert.InDelta(t, w.Dot(n), local.Z, 1e-12)
	assert.True(t, frame.LocalToWorld(local).Equals(w, 1e-12))

	assert.True(t, frame.LocalToWorld(NewVec3(0, 0, 1)).Equals(n, 1e-12))
	assert.False(t, frame.HasShadingGeometry())
}

func TestFrame_TangentFollowsDpdu(t *testing.T) {
	frame := NewFrame(NewVec3(0, 0, 1), NewVec3(0, 0, 1), NewVec3(2, 0, 0.5), NewVec3(0, 3, 0), NewVec2(0.25, 0.75))

	assert.True(t, frame.Tangent().Equals(NewVec3(1, 0, 0), 1e-12), "tangent is dpdu projected onto the shading plane")
	assert.True(t, frame.Bitangent().Equals(NewVec3(0, 1, 0), 1e-12))
	assert.Equal(t, NewVec2(0.25, 0.75), frame.UV)
}

func TestFrame_ApplyTransform(t *testing.T) {
	frame := NewFrame(NewVec3(0, 0, 1), NewVec3(0, 0, 1), NewVec3(1, 0, 0), NewVec3(0, 1, 0), Vec2{})

	rot := RotateAxis(math.Pi/2, NewVec3(1, 0, 0))
	area := frame.ApplyTransform(rot)
	assert.InDelta(t, 1.0, area, 1e-12)
	assert.True(t, frame.Nn.Equals(NewVec3(0, -1, 0), 1e-12), "got %v", frame.Nn)
	assert.True(t, frame.Ng.Equals(NewVec3(0, -1, 0), 1e-12))

	area = frame.ApplyTransform(Scale(2, 3, 1))
	assert.InDelta(t, 2.0, area, 1e-12, "dpdu scales by 2 and dpdv lies along z")
}

func TestTransform_Inverse(t *testing.T) {
	tr := Translate(NewVec3(1, 2, 3)).Compose(RotateAxis(0.7, NewVec3(1, 1, 0))).Compose(Scale(2, 2, 2))
	p := NewVec3(0.5, -1, 4)

	assert.True(t, tr.Inverse().Point(tr.Point(p)).Equals(p, 1e-9))
	assert.True(t, tr.Vector(NewVec3(0, 0, 0)).Equals(Vec3{}, 0))

	// Normals stay perpendicular to transformed tangents
	tan := NewVec3(1, 0, 0)
	n := NewVec3(0, 0, 1)
	sk := Scale(1, 4, 0.5)
	assert.InDelta(t, 0.0, sk.Vector(tan).Dot(sk.Normal(n)), 1e-12)
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := NewSlogLogger(slog.New(handler), slog.LevelInfo)

	logger.Printf("estimated %d samples", 10)
	assert.Contains(t, buf.String(), "estimated 10 samples")

	buf.Reset()
	debug := NewSlogLogger(slog.New(handler), slog.LevelDebug)
	debug.Printf("hidden")
	assert.Empty(t, buf.String())

	NopLogger{}.Printf("ignored %v", 1)
}
