package tonemap

import (
	"testing"

	"github.com/granulab/raster-workbench/internal/raster"
)

func TestResolveTileEdge(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		tile   TileSize
		want   int
	}{
		{"auto large image", 1200, 960, TileAuto, 80},     // 960/12
		{"auto small image", 100, 100, TileAuto, 24},      // floor clamp
		{"small", 1600, 1600, TileSmall, 100},             // 1600/16
		{"small clamp", 64, 64, TileSmall, 16},            // floor clamp
		{"medium", 1000, 2000, TileMedium, 100},           // 1000/10
		{"medium clamp", 120, 120, TileMedium, 24},        // floor clamp
		{"large", 600, 900, TileLarge, 100},               // 600/6
		{"large clamp", 100, 100, TileLarge, 32},          // floor clamp
		{"tiny image short edge floor", 4, 4, TileAuto, 24}, // short edge raised to 16
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveTileEdge(tt.width, tt.height, tt.tile); got != tt.want {
				t.Errorf("resolveTileEdge(%d, %d, %s) = %d, want %d", tt.width, tt.height, tt.tile, got, tt.want)
			}
		})
	}
}

func TestApply_CLAHEZeroStrengthIsNoop(t *testing.T) {
	buf := raster.NewGray(16, 16)
	for i := range buf.Pix {
		buf.Pix[i] = uint8(i % 256)
	}
	want := buf.Clone()
	Apply(want, Params{Gamma: 1, BlackClipPct: 0, WhiteClipPct: 100})

	got := buf.Clone()
	Apply(got, Params{Gamma: 1, BlackClipPct: 0, WhiteClipPct: 100, CLAHEEnabled: true, CLAHEStrength: 0})

	if !got.Equal(want) {
		t.Error("CLAHE with zero strength must not change the output")
	}
}

func TestApplyCLAHE_Deterministic(t *testing.T) {
	a := raster.NewGray(48, 48)
	for i := range a.Pix {
		a.Pix[i] = uint8((i * 7) % 256)
	}
	b := a.Clone()

	applyCLAHE(a, 6, TileAuto)
	applyCLAHE(b, 6, TileAuto)
	if !a.Equal(b) {
		t.Error("CLAHE must be deterministic for identical inputs")
	}
}

func TestApplyCLAHE_IncreasesSeparation(t *testing.T) {
	// Two close mid-tones in equal measure: equalization pushes them apart.
	buf := raster.NewGray(32, 32)
	for i := range buf.Pix {
		if i%2 == 0 {
			buf.Pix[i] = 120
		} else {
			buf.Pix[i] = 136
		}
	}

	applyCLAHE(buf, 10, TileAuto)

	lo := buf.Pix[0]
	hi := buf.Pix[1]
	if lo >= hi {
		t.Fatalf("ordering must be preserved: lo=%d hi=%d", lo, hi)
	}
	if int(hi)-int(lo) <= 16 {
		t.Errorf("full-strength equalization should widen the 16-step gap, got %d", int(hi)-int(lo))
	}
}

func TestApplyCLAHE_TileIndependence(t *testing.T) {
	// A 24x48 image resolves to a 24px tile edge (auto class, floor clamp),
	// splitting the buffer into two 24x24 tiles. Tiles equalize
	// independently, so halves with identical content stay identical.
	buf := raster.NewGray(24, 48)
	for y := 0; y < 48; y++ {
		for x := 0; x < 24; x++ {
			buf.Pix[y*24+x] = uint8((x * 10) % 256)
		}
	}
	// Top and bottom halves hold identical content.
	applyCLAHE(buf, 8, TileAuto)

	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			top := buf.Pix[y*24+x]
			bottom := buf.Pix[(y+24)*24+x]
			if top != bottom {
				t.Fatalf("tiles with identical content diverged at (%d,%d): %d vs %d", x, y, top, bottom)
			}
		}
	}
}

func TestApply_FullPipelineInRange(t *testing.T) {
	buf := raster.NewGray(40, 40)
	for i := range buf.Pix {
		buf.Pix[i] = uint8((i * 13) % 256)
	}
	Apply(buf, Params{
		Brightness:    15,
		Contrast:      30,
		Gamma:         1.6,
		BlackClipPct:  1,
		WhiteClipPct:  99,
		CLAHEEnabled:  true,
		CLAHEStrength: 7,
		CLAHETile:     TileSmall,
	})
	// uint8 storage already bounds the range; the pass must simply not panic
	// and must produce a non-constant result for a non-constant input.
	first := buf.Pix[0]
	constant := true
	for _, v := range buf.Pix {
		if v != first {
			constant = false
			break
		}
	}
	if constant {
		t.Error("non-constant input should not collapse to a constant output")
	}
}
