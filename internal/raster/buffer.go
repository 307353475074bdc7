package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/clone"
)

// Gray is a grayscale pixel buffer with one byte per pixel, row-major.
//
// Pix always has length Width*Height. For binary masks, samples are
// restricted to 0 and 255 by the code that writes them; Gray itself does not
// enforce binarity.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray creates a zero-filled grayscale buffer.
//
// Dimensions must be positive; non-positive values are raised to 1 so that a
// degenerate request still yields a usable buffer (parameter errors are
// clamped, not rejected).
func NewGray(width, height int) *Gray {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// In reports whether (x, y) lies inside the buffer.
func (g *Gray) In(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// At returns the sample at (x, y), or 0 for out-of-bounds coordinates.
func (g *Gray) At(x, y int) uint8 {
	if !g.In(x, y) {
		return 0
	}
	return g.Pix[y*g.Width+x]
}

// Set writes the sample at (x, y). Out-of-bounds writes are ignored.
func (g *Gray) Set(x, y int, v uint8) {
	if !g.In(x, y) {
		return
	}
	g.Pix[y*g.Width+x] = v
}

// Fill sets every sample to v.
func (g *Gray) Fill(v uint8) {
	for i := range g.Pix {
		g.Pix[i] = v
	}
}

// Clone returns a deep copy of the buffer.
func (g *Gray) Clone() *Gray {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &Gray{Width: g.Width, Height: g.Height, Pix: pix}
}

// Equal reports whether two buffers have identical dimensions and samples.
func (g *Gray) Equal(other *Gray) bool {
	if other == nil || g.Width != other.Width || g.Height != other.Height {
		return false
	}
	return bytes.Equal(g.Pix, other.Pix)
}

// Image converts the buffer to a stdlib *image.Gray sharing no storage.
func (g *Gray) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.Pix)
	return img
}

// RGBA is a color pixel buffer with four bytes per pixel (R, G, B, A),
// row-major. Pix always has length Width*Height*4.
type RGBA struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRGBA creates a fully transparent color buffer. Non-positive dimensions
// are raised to 1, as in NewGray.
func NewRGBA(width, height int) *RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &RGBA{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// SetRGBA writes one pixel. Out-of-bounds writes are ignored.
func (p *RGBA) SetRGBA(x, y int, r, g, b, a uint8) {
	if x < 0 || x >= p.Width || y < 0 || y >= p.Height {
		return
	}
	i := (y*p.Width + x) * 4
	p.Pix[i+0] = r
	p.Pix[i+1] = g
	p.Pix[i+2] = b
	p.Pix[i+3] = a
}

// Image converts the buffer to a stdlib *image.RGBA sharing no storage.
func (p *RGBA) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	copy(img.Pix, p.Pix)
	return img
}

// GrayFromImage converts any decoded image to a grayscale buffer using
// ITU-R BT.601 luminance weights (0.299*R + 0.587*G + 0.114*B).
//
// The source is normalized to *image.RGBA first so the conversion runs over
// a flat pixel slice regardless of the decoder's native color model.
func GrayFromImage(img image.Image) *Gray {
	rgba := clone.AsRGBA(img)
	w := rgba.Bounds().Dx()
	h := rgba.Bounds().Dy()
	out := NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := rgba.PixOffset(x, y)
			r := float64(rgba.Pix[i+0])
			g := float64(rgba.Pix[i+1])
			b := float64(rgba.Pix[i+2])
			out.Pix[y*w+x] = uint8(0.299*r + 0.587*g + 0.114*b + 0.5)
		}
	}
	return out
}

// BinaryFromImage converts any decoded image to a binary mask buffer.
//
// A pixel becomes 255 when it is sufficiently opaque (alpha >= 128) and any
// color channel is >= 128, and 0 otherwise. Transparent pixels and opaque
// black both stay background, so masks encoded with an opaque alpha channel
// round-trip through PNG without drift.
func BinaryFromImage(img image.Image) *Gray {
	rgba := clone.AsRGBA(img)
	w := rgba.Bounds().Dx()
	h := rgba.Bounds().Dy()
	out := NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := rgba.PixOffset(x, y)
			if rgba.Pix[i+3] < 128 {
				continue
			}
			if rgba.Pix[i+0] >= 128 || rgba.Pix[i+1] >= 128 || rgba.Pix[i+2] >= 128 {
				out.Pix[y*w+x] = 255
			}
		}
	}
	return out
}

// RGBAFromImage converts any decoded image to an RGBA buffer.
func RGBAFromImage(img image.Image) *RGBA {
	rgba := clone.AsRGBA(img)
	w := rgba.Bounds().Dx()
	h := rgba.Bounds().Dy()
	out := NewRGBA(w, h)
	for y := 0; y < h; y++ {
		copy(out.Pix[y*w*4:(y+1)*w*4], rgba.Pix[y*rgba.Stride:y*rgba.Stride+w*4])
	}
	return out
}

// EncodeMaskPNG encodes a binary mask as PNG bytes with the mask value
// replicated across the color channels and a fully opaque alpha channel.
func EncodeMaskPNG(mask *Gray) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, mask.Width, mask.Height))
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			v := mask.Pix[y*mask.Width+x]
			i := img.PixOffset(x, y)
			img.Pix[i+0] = v
			img.Pix[i+1] = v
			img.Pix[i+2] = v
			img.Pix[i+3] = 255
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}
	return buf.Bytes(), nil
}
