package roi

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/granulab/raster-workbench/internal/raster"
)

// Rasterize composites the ROI's shapes into a binary mask of the given size.
//
// The target starts black (0). If baseMask is non-nil it is scaled to the
// target size with nearest-neighbor resampling (keeping it binary) and drawn
// first with the >=128 threshold rule. Then every rectangle, every polygon
// (as a closed path), and every brush stroke is filled solid with 255, in
// that fixed category order. Shape order values play no role here.
//
// Out-of-bounds shape geometry is clipped to the target; the call never
// fails.
func Rasterize(r ExclusionROI, width, height int, baseMask image.Image) *raster.Gray {
	out := raster.NewGray(width, height)

	if baseMask != nil {
		scaled := baseMask
		b := baseMask.Bounds()
		if b.Dx() != out.Width || b.Dy() != out.Height {
			scaled = imaging.Resize(baseMask, out.Width, out.Height, imaging.NearestNeighbor)
		}
		base := raster.BinaryFromImage(scaled)
		for i, v := range base.Pix {
			if v >= 128 {
				out.Pix[i] = 255
			}
		}
	}

	for _, rect := range r.Rectangles {
		fillRectangle(out, rect)
	}
	for _, poly := range r.Polygons {
		fillPolygon(out, poly.Points)
	}
	for _, stroke := range r.BrushStrokes {
		strokeBrush(out, stroke)
	}
	return out
}

// fillRectangle paints a clipped solid rectangle.
func fillRectangle(out *raster.Gray, rect Rectangle) {
	x0 := rect.X
	y0 := rect.Y
	x1 := rect.X + rect.Width
	y1 := rect.Y + rect.Height
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > out.Width {
		x1 = out.Width
	}
	if y1 > out.Height {
		y1 = out.Height
	}
	for y := y0; y < y1; y++ {
		row := y * out.Width
		for x := x0; x < x1; x++ {
			out.Pix[row+x] = 255
		}
	}
}

// fillPolygon paints a closed polygon using even-odd scanline filling.
//
// A pixel is inside when its center (x+0.5, y+0.5) crosses an odd number of
// polygon edges along the scanline. Horizontal edges contribute nothing;
// the half-open [min, max) vertical test keeps shared vertices from being
// counted twice.
func fillPolygon(out *raster.Gray, points []Point) {
	if len(points) < 3 {
		return
	}

	minY := points[0].Y
	maxY := points[0].Y
	for _, p := range points[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > out.Height {
		maxY = out.Height
	}

	var crossings []float64
	for y := minY; y < maxY; y++ {
		cy := float64(y) + 0.5
		crossings = crossings[:0]
		for i := range points {
			p1 := points[i]
			p2 := points[(i+1)%len(points)]
			y1 := float64(p1.Y)
			y2 := float64(p2.Y)
			if y1 == y2 {
				continue
			}
			lo, hi := y1, y2
			if lo > hi {
				lo, hi = hi, lo
			}
			if cy < lo || cy >= hi {
				continue
			}
			t := (cy - y1) / (y2 - y1)
			crossings = append(crossings, float64(p1.X)+t*float64(p2.X-p1.X))
		}
		sort.Float64s(crossings)

		row := y * out.Width
		for i := 0; i+1 < len(crossings); i += 2 {
			xStart := int(math.Ceil(crossings[i] - 0.5))
			xEnd := int(math.Ceil(crossings[i+1] - 0.5))
			if xStart < 0 {
				xStart = 0
			}
			if xEnd > out.Width {
				xEnd = out.Width
			}
			for x := xStart; x < xEnd; x++ {
				out.Pix[row+x] = 255
			}
		}
	}
}

// strokeBrush paints a brush stroke as a round-capped, round-joined polyline
// of width 2*size: discs of radius size stamped at unit steps along every
// segment. A single-point stroke is one filled disc.
func strokeBrush(out *raster.Gray, stroke BrushStroke) {
	radius := stroke.Size
	if radius < 1 {
		radius = 1
	}
	if len(stroke.Points) == 1 {
		stampDisc(out, float64(stroke.Points[0].X), float64(stroke.Points[0].Y), radius)
		return
	}
	for i := 0; i+1 < len(stroke.Points); i++ {
		p1 := stroke.Points[i]
		p2 := stroke.Points[i+1]
		dx := float64(p2.X - p1.X)
		dy := float64(p2.Y - p1.Y)
		dist := math.Hypot(dx, dy)
		steps := int(math.Ceil(dist))
		if steps < 1 {
			steps = 1
		}
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			stampDisc(out, float64(p1.X)+t*dx, float64(p1.Y)+t*dy, radius)
		}
	}
}

// stampDisc fills a circle by the inclusive squared-distance test.
func stampDisc(out *raster.Gray, cx, cy, radius float64) {
	x0 := int(math.Floor(cx - radius))
	x1 := int(math.Ceil(cx + radius))
	y0 := int(math.Floor(cy - radius))
	y1 := int(math.Ceil(cy + radius))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 >= out.Width {
		x1 = out.Width - 1
	}
	if y1 >= out.Height {
		y1 = out.Height - 1
	}
	rr := radius * radius
	for y := y0; y <= y1; y++ {
		dy := float64(y) - cy
		row := y * out.Width
		for x := x0; x <= x1; x++ {
			dx := float64(x) - cx
			if dx*dx+dy*dy <= rr {
				out.Pix[row+x] = 255
			}
		}
	}
}
