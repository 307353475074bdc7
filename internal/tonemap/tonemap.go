package tonemap

import (
	"math"

	"github.com/granulab/raster-workbench/internal/raster"
)

// TileSize selects the tile class for the adaptive equalization pass.
type TileSize string

// Tile classes. The divisor behind each class is empirical; see
// resolveTileEdge.
const (
	TileAuto   TileSize = "auto"
	TileSmall  TileSize = "small"
	TileMedium TileSize = "medium"
	TileLarge  TileSize = "large"
)

// Params is the immutable per-invocation tone-mapping configuration.
//
// All fields are clamped to their documented range before use; callers may
// pass raw UI values without validating them first.
type Params struct {
	// Brightness shifts the curve by Brightness*2.55 sample values. [-100, 100]
	Brightness float64 `json:"brightness"`

	// Contrast scales the curve around mid-gray by 1+Contrast/100. [-100, 100]
	Contrast float64 `json:"contrast"`

	// Gamma applies an output power curve of 1/Gamma. [0.2, 5]
	Gamma float64 `json:"gamma"`

	// BlackClipPct is the percentile of darkest pixels clipped to black. [0, 5]
	BlackClipPct float64 `json:"black_clip_pct"`

	// WhiteClipPct is the percentile at which pixels clip to white. [95, 100]
	WhiteClipPct float64 `json:"white_clip_pct"`

	// CLAHEEnabled turns on the tiled adaptive equalization pass.
	CLAHEEnabled bool `json:"clahe_enabled"`

	// CLAHEStrength blends between the tone-mapped and equalized image.
	// 0 disables the pass entirely; 10 is full equalization. [0, 10]
	CLAHEStrength float64 `json:"clahe_strength"`

	// CLAHETile selects the tile class. Unknown values fall back to TileAuto.
	CLAHETile TileSize `json:"clahe_tile"`
}

// DefaultParams returns the neutral preview configuration: no brightness,
// contrast, or gamma adjustment, a 0.5%/99.5% percentile stretch, and the
// equalization pass disabled.
func DefaultParams() Params {
	return Params{
		Gamma:        1.0,
		BlackClipPct: 0.5,
		WhiteClipPct: 99.5,
		CLAHETile:    TileAuto,
	}
}

// Normalized returns a copy of p with every field clamped to its valid range
// and the tile class canonicalized.
func (p Params) Normalized() Params {
	p.Brightness = clampFloat(p.Brightness, -100, 100)
	p.Contrast = clampFloat(p.Contrast, -100, 100)
	p.Gamma = clampFloat(p.Gamma, 0.2, 5)
	p.BlackClipPct = clampFloat(p.BlackClipPct, 0, 5)
	p.WhiteClipPct = clampFloat(p.WhiteClipPct, 95, 100)
	p.CLAHEStrength = clampFloat(p.CLAHEStrength, 0, 10)
	switch p.CLAHETile {
	case TileSmall, TileMedium, TileLarge:
	default:
		p.CLAHETile = TileAuto
	}
	return p
}

// Apply tone-maps buf in place.
//
// The fixed processing order is: histogram, percentile clip points, composed
// lookup table (stretch, contrast, brightness, clip, gamma), LUT application,
// then the optional tiled adaptive equalization.
func Apply(buf *raster.Gray, p Params) {
	p = p.Normalized()

	hist := Histogram(buf)
	black, white := ClipPoints(hist, len(buf.Pix), p.BlackClipPct, p.WhiteClipPct)
	lut := BuildLUT(black, white, p)
	for i, v := range buf.Pix {
		buf.Pix[i] = lut[v]
	}

	if p.CLAHEEnabled && p.CLAHEStrength > 0 {
		applyCLAHE(buf, p.CLAHEStrength, p.CLAHETile)
	}
}

// Histogram counts the occurrences of each of the 256 possible sample values.
func Histogram(buf *raster.Gray) [256]int {
	var hist [256]int
	for _, v := range buf.Pix {
		hist[v]++
	}
	return hist
}

// ClipPoints resolves the black and white clip points from a histogram.
//
// The clip percentiles are converted to cumulative pixel targets (floored).
// The black point is the smallest value whose cumulative count reaches the
// black target; the white point is the smallest value whose cumulative count
// exceeds the white target, or 255 when none does. A full-range request
// (0% / 100%) therefore yields (0, 255), leaving the stretch an identity.
//
// If the resolved white point does not exceed the black point (an
// all-constant image, or inverted percentiles), the white point is forced to
// min(255, black+1) so the stretch denominator stays positive.
func ClipPoints(hist [256]int, pixelCount int, blackPct, whitePct float64) (black, white int) {
	blackTarget := int(math.Floor(float64(pixelCount) * blackPct / 100))
	whiteTarget := int(math.Floor(float64(pixelCount) * whitePct / 100))

	cum := 0
	black = 0
	for v := 0; v < 256; v++ {
		cum += hist[v]
		if cum >= blackTarget {
			black = v
			break
		}
	}

	cum = 0
	white = 255
	for v := 0; v < 256; v++ {
		cum += hist[v]
		if cum > whiteTarget {
			white = v
			break
		}
	}

	if white <= black {
		white = black + 1
		if white > 255 {
			white = 255
		}
	}
	return black, white
}

// BuildLUT composes the stretch, contrast, brightness, and gamma adjustments
// into a single 256-entry lookup table.
//
// Construction is deterministic: identical clip points and params always
// produce a byte-identical table.
func BuildLUT(black, white int, p Params) [256]uint8 {
	span := white - black
	if span < 1 {
		span = 1
	}
	contrastFactor := 1 + p.Contrast/100
	if contrastFactor < 0 {
		contrastFactor = 0
	}
	brightnessShift := p.Brightness * 2.55
	gammaInv := 1 / math.Max(0.2, p.Gamma)

	var lut [256]uint8
	for v := 0; v < 256; v++ {
		s := float64(v-black) * 255 / float64(span)
		c := (s-128)*contrastFactor + 128 + brightnessShift
		c = clampFloat(c, 0, 255)
		g := 255 * math.Pow(c/255, gammaInv)
		lut[v] = uint8(math.Round(clampFloat(g, 0, 255)))
	}
	return lut
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
