package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp" // BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/material"
)

// ImageOptions control how an image file becomes a texture
type ImageOptions struct {
	MaxSize int  // Resample so the longer side is at most MaxSize; 0 keeps the full size
	Linear  bool // Values are stored linearly, as in roughness maps, rather than sRGB encoded
}

// LoadImageTexture decodes an image file into a linear RGB texture
func LoadImageTexture(filename string, opts ImageOptions) (*material.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}
	return imageTexture(img, opts), nil
}

func imageTexture(img image.Image, opts ImageOptions) *material.ImageTexture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if longest := max(width, height); opts.MaxSize > 0 && longest > opts.MaxSize {
		s := float64(opts.MaxSize) / float64(longest)
		width = max(1, int(math.Round(float64(width)*s)))
		height = max(1, int(math.Round(float64(height)*s)))
	}

	// Non-premultiplied so partly transparent texels keep their color
	dst := image.NewNRGBA64(image.Rect(0, 0, width, height))
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	}

	decode := srgbToLinear
	if opts.Linear {
		decode = unorm
	}
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := dst.NRGBA64At(x, y)
			pixels[y*width+x] = core.NewVec3(decode(c.R), decode(c.G), decode(c.B))
		}
	}
	return material.NewImageTexture(width, height, pixels)
}

func unorm(c uint16) float64 {
	return float64(c) / math.MaxUint16
}

// srgbToLinear decodes a 16 bit sRGB channel
func srgbToLinear(c uint16) float64 {
	v := unorm(c)
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
