package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestNewGray(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantWidth  int
		wantHeight int
	}{
		{"normal", 8, 6, 8, 6},
		{"single pixel", 1, 1, 1, 1},
		{"zero width clamped", 0, 5, 1, 5},
		{"negative height clamped", 5, -3, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGray(tt.width, tt.height)
			if g.Width != tt.wantWidth || g.Height != tt.wantHeight {
				t.Errorf("dimensions: got %dx%d, want %dx%d", g.Width, g.Height, tt.wantWidth, tt.wantHeight)
			}
			if len(g.Pix) != g.Width*g.Height {
				t.Errorf("len(Pix) = %d, want %d", len(g.Pix), g.Width*g.Height)
			}
		})
	}
}

func TestGray_AtSet_Bounds(t *testing.T) {
	g := NewGray(4, 4)
	g.Set(2, 3, 200)
	if got := g.At(2, 3); got != 200 {
		t.Errorf("At(2,3) = %d, want 200", got)
	}

	// Out-of-bounds access is absorbed, never panics.
	g.Set(-1, 0, 99)
	g.Set(4, 0, 99)
	g.Set(0, 4, 99)
	if got := g.At(-1, 0); got != 0 {
		t.Errorf("At(-1,0) = %d, want 0", got)
	}
	if got := g.At(0, 100); got != 0 {
		t.Errorf("At(0,100) = %d, want 0", got)
	}
}

func TestGray_CloneEqual(t *testing.T) {
	g := NewGray(3, 3)
	g.Set(1, 1, 128)

	c := g.Clone()
	if !g.Equal(c) {
		t.Fatal("clone should equal original")
	}

	c.Set(0, 0, 255)
	if g.Equal(c) {
		t.Error("mutating the clone must not affect the original")
	}
	if g.At(0, 0) != 0 {
		t.Error("original changed after clone mutation")
	}
	if g.Equal(nil) {
		t.Error("Equal(nil) should be false")
	}
	if g.Equal(NewGray(3, 4)) {
		t.Error("buffers of different sizes should not be equal")
	}
}

func TestGrayFromImage_Luminance(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"pure red", color.RGBA{255, 0, 0, 255}, 76},
		{"pure green", color.RGBA{0, 255, 0, 255}, 150},
		{"pure blue", color.RGBA{0, 0, 255, 255}, 29},
		{"mid gray", color.RGBA{128, 128, 128, 255}, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 2, 2))
			for y := 0; y < 2; y++ {
				for x := 0; x < 2; x++ {
					img.Set(x, y, tt.c)
				}
			}
			g := GrayFromImage(img)
			if got := g.At(0, 0); got != tt.want {
				t.Errorf("luminance: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBinaryFromImage_Threshold(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 1))
	img.Set(0, 0, color.RGBA{127, 0, 0, 255})     // all channels below 128
	img.Set(1, 0, color.RGBA{128, 0, 0, 255})     // one channel at threshold
	img.Set(2, 0, color.RGBA{0, 0, 0, 200})       // opaque black stays background
	img.Set(3, 0, color.RGBA{0, 0, 0, 0})         // fully transparent
	img.Set(4, 0, color.RGBA{255, 255, 255, 255}) // opaque white

	mask := BinaryFromImage(img)
	want := []uint8{0, 255, 0, 0, 255}
	for x, w := range want {
		if got := mask.At(x, 0); got != w {
			t.Errorf("pixel %d: got %d, want %d", x, got, w)
		}
	}
}

func TestEncodeMaskPNG_RoundTrip(t *testing.T) {
	mask := NewGray(5, 4)
	mask.Set(0, 0, 255)
	mask.Set(4, 3, 255)
	mask.Set(2, 2, 255)

	encoded, err := EncodeMaskPNG(mask)
	if err != nil {
		t.Fatalf("EncodeMaskPNG failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("failed to decode mask PNG: %v", err)
	}
	back := BinaryFromImage(decoded)
	if !mask.Equal(back) {
		t.Error("mask did not survive the PNG round trip")
	}
}

func TestEncodeMaskPNG_AllZeroRoundTrip(t *testing.T) {
	// The encoder writes an opaque alpha channel; an all-background mask must
	// still decode back as all-background.
	mask := NewGray(4, 4)

	encoded, err := EncodeMaskPNG(mask)
	if err != nil {
		t.Fatalf("EncodeMaskPNG failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("failed to decode mask PNG: %v", err)
	}
	back := BinaryFromImage(decoded)
	for i, v := range back.Pix {
		if v != 0 {
			t.Fatalf("pixel %d = %d, want 0 (opaque alpha must not promote background)", i, v)
		}
	}
}

func TestRGBA_SetAndImage(t *testing.T) {
	p := NewRGBA(2, 2)
	p.SetRGBA(1, 0, 10, 20, 30, 40)
	p.SetRGBA(5, 5, 1, 1, 1, 1) // out of bounds, ignored

	i := 1 * 4
	if p.Pix[i] != 10 || p.Pix[i+1] != 20 || p.Pix[i+2] != 30 || p.Pix[i+3] != 40 {
		t.Errorf("pixel bytes: got %v, want [10 20 30 40]", p.Pix[i:i+4])
	}
	if p.Pix[0] != 0 {
		t.Error("untouched pixel should stay transparent")
	}
}
