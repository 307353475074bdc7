package tonemap

import (
	"math"

	"github.com/granulab/raster-workbench/internal/raster"
)

// resolveTileEdge derives the square tile edge length from the shorter image
// dimension and the tile class.
//
// The divisor and minimum-edge constants are empirical and mirror the
// processing backend exactly; visual parity depends on them.
func resolveTileEdge(width, height int, tile TileSize) int {
	shortEdge := width
	if height < shortEdge {
		shortEdge = height
	}
	if shortEdge < 16 {
		shortEdge = 16
	}
	switch tile {
	case TileSmall:
		return maxInt(16, shortEdge/16)
	case TileMedium:
		return maxInt(24, shortEdge/10)
	case TileLarge:
		return maxInt(32, shortEdge/6)
	default: // TileAuto
		return maxInt(24, shortEdge/12)
	}
}

// applyCLAHE runs the tiled adaptive equalization pass over an already
// tone-mapped buffer, in place.
//
// Each tile is processed independently: a 256-bin histogram is clipped at a
// strength-derived limit, the removed excess is redistributed evenly, and a
// cdfMin-normalized cumulative-distribution LUT maps the tile's samples.
// The result is blended with the input by alpha = strength/10. Tiles share
// no border blending; a hard tile boundary is accepted behavior.
func applyCLAHE(buf *raster.Gray, strength float64, tile TileSize) {
	alpha := clampFloat(strength/10, 0, 1)
	if alpha <= 0 {
		return
	}

	edge := resolveTileEdge(buf.Width, buf.Height, tile)
	for top := 0; top < buf.Height; top += edge {
		bottom := top + edge
		if bottom > buf.Height {
			bottom = buf.Height
		}
		for left := 0; left < buf.Width; left += edge {
			right := left + edge
			if right > buf.Width {
				right = buf.Width
			}
			equalizeTile(buf, left, top, right, bottom, strength, alpha)
		}
	}
}

// equalizeTile equalizes one tile of buf in place.
func equalizeTile(buf *raster.Gray, left, top, right, bottom int, strength, alpha float64) {
	area := (right - left) * (bottom - top)
	if area < 1 {
		return
	}

	var hist [256]int
	for y := top; y < bottom; y++ {
		row := y * buf.Width
		for x := left; x < right; x++ {
			hist[buf.Pix[row+x]]++
		}
	}

	// Clip the histogram and collect the removed excess.
	clipLimit := int(math.Round(float64(area) / 256 * (1 + strength/10*3)))
	if clipLimit < 1 {
		clipLimit = 1
	}
	excess := 0
	for i := range hist {
		if hist[i] > clipLimit {
			excess += hist[i] - clipLimit
			hist[i] = clipLimit
		}
	}

	// Redistribute the excess evenly; the remainder goes one count each to
	// the first excess%256 bins.
	perBin := excess / 256
	remainder := excess % 256
	for i := range hist {
		hist[i] += perBin
		if i < remainder {
			hist[i]++
		}
	}

	// Cumulative-distribution LUT mapped to [0,255]. Normalization starts at
	// the first non-zero cumulative value (cdfMin).
	var lut [256]uint8
	cum := 0
	cdfMin := -1
	for v := 0; v < 256; v++ {
		cum += hist[v]
		if cum == 0 {
			continue
		}
		if cdfMin < 0 {
			cdfMin = cum
		}
		denom := area - cdfMin
		if denom < 1 {
			denom = 1
		}
		scaled := float64(cum-cdfMin) / float64(denom) * 255
		lut[v] = uint8(math.Round(clampFloat(scaled, 0, 255)))
	}

	for y := top; y < bottom; y++ {
		row := y * buf.Width
		for x := left; x < right; x++ {
			orig := float64(buf.Pix[row+x])
			eq := float64(lut[buf.Pix[row+x]])
			buf.Pix[row+x] = uint8(math.Round((1-alpha)*orig + alpha*eq))
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
