// Package tonemap implements the real-time tone-mapping preview engine:
// percentile stretch, contrast/brightness/gamma curve, and an optional tiled
// adaptive histogram equalization pass.
//
// The engine is a pure function over a grayscale buffer. Each invocation
// computes a 256-entry histogram, resolves black/white clip points from the
// configured clip percentiles, composes a single lookup table for the
// stretch/contrast/brightness/gamma chain, applies it to every sample, and
// finally runs the tile-local equalization when enabled.
//
// The numeric behavior intentionally matches the processing backend's
// equivalent operations so that the client preview and the committed result
// stay visually consistent. In particular the tile-size divisor table is
// empirical and preserved verbatim; do not re-derive it.
//
// # Error Handling
//
// The engine never fails: out-of-range parameters are clamped at their
// boundary, and degenerate inputs (an all-constant image, a zero-area tile)
// are guarded with explicit minimum clamps so no division by zero occurs.
package tonemap
