// Package labelgrid implements the label-overlay decoder: it reconstructs a
// per-pixel integer segment ID grid from a rendered label image and supports
// hover hit-testing, deterministic palette assignment, and highlight layers.
//
// A label image encodes each connected region's integer ID in its RGB
// triple as id = r + g*256 + b*65536; id 0 is reserved for "no label". The
// grid is recomputed fully whenever the source label image changes, never
// partially updated.
//
// Hover feedback and coloring are decorative: when the label image cannot
// be fetched, callers use Empty to behave as "no labels" instead of
// propagating the failure.
package labelgrid

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"

	"github.com/granulab/raster-workbench/internal/raster"
)

// Grid is a read-only per-pixel segment ID lookup derived from one rendered
// label image.
type Grid struct {
	Width  int
	Height int
	ids    []int32
}

// Decode reads every pixel of a rendered label image once and returns the
// reconstructed ID grid.
func Decode(img image.Image) *Grid {
	rgba := clone.AsRGBA(img)
	w := rgba.Bounds().Dx()
	h := rgba.Bounds().Dy()
	g := &Grid{
		Width:  w,
		Height: h,
		ids:    make([]int32, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := rgba.PixOffset(x, y)
			r := int32(rgba.Pix[i+0])
			gg := int32(rgba.Pix[i+1])
			b := int32(rgba.Pix[i+2])
			g.ids[y*w+x] = r + gg*256 + b*65536
		}
	}
	return g
}

// Empty returns an all-zero grid of the given size: the "no labels" state
// used when the label image failed to load.
func Empty(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Grid{
		Width:  width,
		Height: height,
		ids:    make([]int32, width*height),
	}
}

// IDAt returns the segment ID at (x, y); 0 for background or out-of-bounds
// coordinates.
func (g *Grid) IDAt(x, y int) int {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return 0
	}
	return int(g.ids[y*g.Width+x])
}

// HitTest resolves the segment under a hover position. The second return is
// false for out-of-bounds coordinates and for background pixels.
func (g *Grid) HitTest(x, y int) (int, bool) {
	id := g.IDAt(x, y)
	return id, id != 0
}

// IDs returns the distinct non-zero segment IDs in ascending order of first
// appearance by raster scan.
func (g *Grid) IDs() []int {
	seen := make(map[int32]bool)
	var out []int
	for _, id := range g.ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, int(id))
	}
	return out
}

// HighlightLayer builds an RGBA overlay in which every pixel belonging to
// targetID gets c and all other pixels are fully transparent. It is
// recomputed on every hover-target change, not incrementally.
func (g *Grid) HighlightLayer(targetID int, c color.Color) *raster.RGBA {
	out := raster.NewRGBA(g.Width, g.Height)
	if targetID == 0 {
		return out
	}
	r16, g16, b16, a16 := c.RGBA()
	r := uint8(r16 >> 8)
	gg := uint8(g16 >> 8)
	b := uint8(b16 >> 8)
	a := uint8(a16 >> 8)

	target := int32(targetID)
	for i, id := range g.ids {
		if id != target {
			continue
		}
		j := i * 4
		out.Pix[j+0] = r
		out.Pix[j+1] = gg
		out.Pix[j+2] = b
		out.Pix[j+3] = a
	}
	return out
}
