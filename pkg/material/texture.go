package material

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

// Texture is a parameter that varies over the surface. Spectrum gives its
// value at the sampled wavelengths; Value reduces it to a scalar for
// parameters such as roughness.
type Texture interface {
	Spectrum(sw *spectrum.Wavelengths, uv core.Vec2) spectrum.SWCSpectrum
	Value(uv core.Vec2) float64
}

// SolidColor is a constant RGB color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Gray is a solid color with equal components
func Gray(v float64) *SolidColor {
	return &SolidColor{Color: core.NewVec3(v, v, v)}
}

func (s *SolidColor) Spectrum(sw *spectrum.Wavelengths, uv core.Vec2) spectrum.SWCSpectrum {
	return spectrum.RGB(sw, s.Color.X, s.Color.Y, s.Color.Z)
}

func (s *SolidColor) Value(uv core.Vec2) float64 {
	return average(s.Color)
}

// ImageTexture is a bilinearly filtered image in linear RGB that repeats
// outside [0, 1]. Row 0 of Pixels is the top of the image, at v = 1.
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x]
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{Width: width, Height: height, Pixels: pixels}
}

// texel returns pixel (x, y), wrapping both coordinates
func (t *ImageTexture) texel(x, y int) core.Vec3 {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	y %= t.Height
	if y < 0 {
		y += t.Height
	}
	return t.Pixels[y*t.Width+x]
}

// RGB interpolates the four texels around uv
func (t *ImageTexture) RGB(uv core.Vec2) core.Vec3 {
	fx := wrap(uv.X)*float64(t.Width) - 0.5
	fy := (1-wrap(uv.Y))*float64(t.Height) - 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	dx, dy := fx-x0, fy-y0
	x, y := int(x0), int(y0)

	top := t.texel(x, y).Multiply(1 - dx).Add(t.texel(x+1, y).Multiply(dx))
	bottom := t.texel(x, y+1).Multiply(1 - dx).Add(t.texel(x+1, y+1).Multiply(dx))
	return top.Multiply(1 - dy).Add(bottom.Multiply(dy))
}

func (t *ImageTexture) Spectrum(sw *spectrum.Wavelengths, uv core.Vec2) spectrum.SWCSpectrum {
	c := t.RGB(uv)
	return spectrum.RGB(sw, c.X, c.Y, c.Z)
}

func (t *ImageTexture) Value(uv core.Vec2) float64 {
	return average(t.RGB(uv))
}

// Channel reads a single channel of an image as a gray texture, the way
// packed roughness and metalness maps store their data
type Channel struct {
	Image *ImageTexture
	Index int // 0 red, 1 green, 2 blue
}

// NewChannel creates a texture from channel index of img
func NewChannel(img *ImageTexture, index int) *Channel {
	return &Channel{Image: img, Index: index}
}

func (c *Channel) Spectrum(sw *spectrum.Wavelengths, uv core.Vec2) spectrum.SWCSpectrum {
	return spectrum.Uniform(c.Value(uv))
}

func (c *Channel) Value(uv core.Vec2) float64 {
	rgb := c.Image.RGB(uv)
	switch c.Index {
	case 0:
		return rgb.X
	case 1:
		return rgb.Y
	}
	return rgb.Z
}

// Checkerboard alternates between two textures on a grid of Checks cells per unit of uv
type Checkerboard struct {
	Checks float64
	Even   Texture
	Odd    Texture
}

// NewCheckerboard creates a checkerboard of two textures
func NewCheckerboard(checks float64, even, odd Texture) *Checkerboard {
	return &Checkerboard{Checks: checks, Even: even, Odd: odd}
}

func (c *Checkerboard) cell(uv core.Vec2) Texture {
	i := int(math.Floor(uv.X*c.Checks)) + int(math.Floor(uv.Y*c.Checks))
	if i%2 == 0 {
		return c.Even
	}
	return c.Odd
}

func (c *Checkerboard) Spectrum(sw *spectrum.Wavelengths, uv core.Vec2) spectrum.SWCSpectrum {
	return c.cell(uv).Spectrum(sw, uv)
}

func (c *Checkerboard) Value(uv core.Vec2) float64 {
	return c.cell(uv).Value(uv)
}

// Blend interpolates between two textures. A nil Amount ramps from A at
// v = 0 to B at v = 1.
type Blend struct {
	A, B   Texture
	Amount Texture
}

// NewGradient creates a vertical ramp from start to end
func NewGradient(start, end Texture) *Blend {
	return &Blend{A: start, B: end}
}

// NewBlend creates a blend driven by the scalar value of amount
func NewBlend(a, b, amount Texture) *Blend {
	return &Blend{A: a, B: b, Amount: amount}
}

func (b *Blend) amount(uv core.Vec2) float64 {
	if b.Amount == nil {
		return core.Clamp(uv.Y, 0, 1)
	}
	return core.Clamp(b.Amount.Value(uv), 0, 1)
}

func (b *Blend) Spectrum(sw *spectrum.Wavelengths, uv core.Vec2) spectrum.SWCSpectrum {
	t := b.amount(uv)
	return b.A.Spectrum(sw, uv).Scale(1-t).AddWeighted(t, b.B.Spectrum(sw, uv))
}

func (b *Blend) Value(uv core.Vec2) float64 {
	t := b.amount(uv)
	return (1-t)*b.A.Value(uv) + t*b.B.Value(uv)
}

// Product multiplies two textures, as a tint applied over an image
type Product struct {
	A, B Texture
}

// NewProduct creates the product of a and b
func NewProduct(a, b Texture) *Product {
	return &Product{A: a, B: b}
}

func (p *Product) Spectrum(sw *spectrum.Wavelengths, uv core.Vec2) spectrum.SWCSpectrum {
	return p.A.Spectrum(sw, uv).Mul(p.B.Spectrum(sw, uv))
}

func (p *Product) Value(uv core.Vec2) float64 {
	return p.A.Value(uv) * p.B.Value(uv)
}

// UVTexture shows the surface coordinates: u in red, v in green
type UVTexture struct{}

func (UVTexture) Spectrum(sw *spectrum.Wavelengths, uv core.Vec2) spectrum.SWCSpectrum {
	return spectrum.RGB(sw, wrap(uv.X), wrap(uv.Y), 0)
}

func (UVTexture) Value(uv core.Vec2) float64 {
	return (wrap(uv.X) + wrap(uv.Y)) / 3
}

func wrap(x float64) float64 {
	return x - math.Floor(x)
}

func average(c core.Vec3) float64 {
	return (c.X + c.Y + c.Z) / 3
}

// spectral evaluates t at the shading point; a nil texture is black
func spectral(t Texture, sp *ShadingPoint, sw *spectrum.Wavelengths) spectrum.SWCSpectrum {
	if t == nil {
		return spectrum.SWCSpectrum{}
	}
	return t.Spectrum(sw, sp.Frame.UV)
}

// reflectance is spectral clamped to [0, 1]
func reflectance(t Texture, sp *ShadingPoint, sw *spectrum.Wavelengths) spectrum.SWCSpectrum {
	return spectral(t, sp, sw).Clamp(0, 1)
}

// roughness scales u and v by the value of t at the shading point
func roughness(u, v float64, t Texture, sp *ShadingPoint) (float64, float64) {
	if t == nil {
		return u, v
	}
	s := t.Value(sp.Frame.UV)
	return u * s, v * s
}
