package roi

import (
	"image"
	"image/color"
	"testing"

	"github.com/granulab/raster-workbench/internal/raster"
)

func countForeground(t *testing.T, mask *raster.Gray) int {
	t.Helper()
	n := 0
	for _, v := range mask.Pix {
		switch v {
		case 255:
			n++
		case 0:
		default:
			t.Fatalf("mask must be binary, found sample %d", v)
		}
	}
	return n
}

func TestRasterize_SingleRectangle(t *testing.T) {
	var r ExclusionROI
	r = r.AddRectangle(Rectangle{X: 0, Y: 0, Width: 2, Height: 2})

	mask := Rasterize(r, 4, 4, nil)
	if got := countForeground(t, mask); got != 4 {
		t.Fatalf("foreground pixels = %d, want 4", got)
	}
	for _, p := range []Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if mask.At(p.X, p.Y) != 255 {
			t.Errorf("(%d,%d) should be foreground", p.X, p.Y)
		}
	}
	if mask.At(2, 2) != 0 {
		t.Error("(2,2) should stay background")
	}
}

func TestRasterize_RectangleClipping(t *testing.T) {
	tests := []struct {
		name string
		rect Rectangle
		want int
	}{
		{"straddles origin", Rectangle{X: -2, Y: -2, Width: 4, Height: 4}, 4},
		{"straddles far edge", Rectangle{X: 2, Y: 2, Width: 10, Height: 10}, 4},
		{"fully outside", Rectangle{X: 10, Y: 10, Width: 3, Height: 3}, 0},
		{"covers everything", Rectangle{X: -5, Y: -5, Width: 20, Height: 20}, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r ExclusionROI
			r = r.AddRectangle(tt.rect)
			mask := Rasterize(r, 4, 4, nil)
			if got := countForeground(t, mask); got != tt.want {
				t.Errorf("foreground pixels = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRasterize_PolygonScanline(t *testing.T) {
	// An axis-aligned square polygon fills exactly the pixels whose centers
	// fall inside it: (0,0)-(3,3) covers centers 0.5, 1.5 and 2.5.
	var r ExclusionROI
	r = r.AddPolygon(Polygon{Points: []Point{{0, 0}, {3, 0}, {3, 3}, {0, 3}}})

	mask := Rasterize(r, 6, 6, nil)
	if got := countForeground(t, mask); got != 9 {
		t.Fatalf("foreground pixels = %d, want 9", got)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if mask.At(x, y) != 255 {
				t.Errorf("(%d,%d) should be inside the square", x, y)
			}
		}
	}
	if mask.At(3, 0) != 0 || mask.At(0, 3) != 0 {
		t.Error("pixels at the far edges must stay outside")
	}
}

func TestRasterize_PolygonTriangle(t *testing.T) {
	// Right triangle with the hypotenuse from (4,0) to (0,4). Row y crosses
	// the hypotenuse at x = 3.5-y, so rows fill 3, 2 and 1 pixels.
	var r ExclusionROI
	r = r.AddPolygon(Polygon{Points: []Point{{0, 0}, {4, 0}, {0, 4}}})

	mask := Rasterize(r, 6, 6, nil)
	if got := countForeground(t, mask); got != 6 {
		t.Fatalf("foreground pixels = %d, want 6", got)
	}
	for _, p := range []Point{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {0, 2}} {
		if mask.At(p.X, p.Y) != 255 {
			t.Errorf("(%d,%d) should be inside the triangle", p.X, p.Y)
		}
	}
	if mask.At(3, 0) != 0 {
		t.Error("(3,0) center sits on the hypotenuse and must stay outside")
	}
}

func TestRasterize_SinglePointBrush(t *testing.T) {
	// A one-point stroke of size 2 stamps one disc of radius 2: the 13
	// integer offsets with dx*dx+dy*dy <= 4.
	var r ExclusionROI
	r = r.AddBrushStroke(BrushStroke{Size: 2, Points: []Point{{5, 5}}})

	mask := Rasterize(r, 11, 11, nil)
	if got := countForeground(t, mask); got != 13 {
		t.Fatalf("foreground pixels = %d, want 13", got)
	}
	if mask.At(5, 5) != 255 || mask.At(7, 5) != 255 || mask.At(5, 3) != 255 {
		t.Error("disc interior should be foreground")
	}
	if mask.At(7, 7) != 0 {
		t.Error("corner outside the disc radius should stay background")
	}
}

func TestRasterize_BrushSegmentConnects(t *testing.T) {
	// Unit-step stamping along a segment leaves no gaps between endpoints.
	var r ExclusionROI
	r = r.AddBrushStroke(BrushStroke{Size: 1, Points: []Point{{2, 5}, {12, 5}}})

	mask := Rasterize(r, 16, 11, nil)
	for x := 2; x <= 12; x++ {
		if mask.At(x, 5) != 255 {
			t.Errorf("(%d,5) on the stroke spine should be foreground", x)
		}
	}
}

func TestRasterize_BaseMaskMerge(t *testing.T) {
	// A 2x2 base mask with one white pixel scales to the 4x4 target with
	// nearest-neighbor resampling: the white quadrant stays a crisp 2x2 block.
	base := image.NewRGBA(image.Rect(0, 0, 2, 2))
	base.Set(0, 0, color.RGBA{255, 255, 255, 255})

	var r ExclusionROI
	mask := Rasterize(r, 4, 4, base)
	if got := countForeground(t, mask); got != 4 {
		t.Fatalf("foreground pixels from base = %d, want 4", got)
	}
	if mask.At(0, 0) != 255 || mask.At(1, 1) != 255 {
		t.Error("scaled base quadrant should be foreground")
	}
	if mask.At(2, 2) != 0 {
		t.Error("black base quadrant should stay background")
	}

	// Drawn shapes union on top of the base.
	r = r.AddRectangle(Rectangle{X: 2, Y: 2, Width: 1, Height: 1})
	merged := Rasterize(r, 4, 4, base)
	if got := countForeground(t, merged); got != 5 {
		t.Errorf("foreground pixels after union = %d, want 5", got)
	}
}

func TestRasterize_EmptyROIIsBlack(t *testing.T) {
	var r ExclusionROI
	mask := Rasterize(r, 8, 8, nil)
	if got := countForeground(t, mask); got != 0 {
		t.Errorf("empty ROI should rasterize to an all-black mask, got %d foreground", got)
	}
	if mask.Width != 8 || mask.Height != 8 {
		t.Errorf("dimensions: got %dx%d, want 8x8", mask.Width, mask.Height)
	}
}
