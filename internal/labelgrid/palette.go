package labelgrid

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette construction constants. The golden-angle hue step keeps any number
// of consecutive labels visually distinct; the three lightness bands break
// up runs of similar hues.
const (
	goldenAngle       = 137.508
	paletteSaturation = 0.65
	maxLightness      = 0.72
)

var lightnessBands = [3]float64{0.52, 0.60, 0.68}

// BuildPalette assigns each distinct non-zero segment ID a deterministic,
// order-stable color.
//
// IDs are collected in ascending order of first appearance by raster scan;
// the index-th ID gets hue index*137.508° (mod 360) at fixed saturation,
// with the lightness cycling through three bands clamped to 0.72. Decoding
// the same label image twice therefore produces the same mapping.
func BuildPalette(g *Grid) map[int]color.RGBA {
	palette := make(map[int]color.RGBA)
	for index, id := range g.IDs() {
		palette[id] = paletteColor(index)
	}
	return palette
}

// paletteColor returns the index-th color on the golden-angle hue wheel.
func paletteColor(index int) color.RGBA {
	hue := math.Mod(float64(index)*goldenAngle, 360)
	lightness := lightnessBands[index%len(lightnessBands)]
	if lightness > maxLightness {
		lightness = maxLightness
	}
	r, g, b := colorful.Hsl(hue, paletteSaturation, lightness).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ParseHexColor converts a "#RRGGBB" string to an opaque color, falling back
// to fallback when the string does not parse. Used for host-supplied
// highlight colors.
func ParseHexColor(s string, fallback color.RGBA) color.RGBA {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
