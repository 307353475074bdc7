// Package roi implements the exclusion-region compositor: an ordered
// collection of user-drawn shapes (rectangles, polygons, freehand brush
// strokes) rasterized into a binary mask that marks pixels excluded from
// downstream segmentation.
//
// # Order Semantics
//
// Every shape carries a monotonically increasing order integer, unique
// across the union of all three shape lists. Order exists solely for the
// "remove last added shape" primitive: RemoveLast deletes the shape holding
// the global maximum order, whichever list it lives in. Rasterization, by
// contrast, always draws in fixed category order — rectangles, then
// polygons, then brush strokes — regardless of order. The visual stacking
// axis and the undo axis intentionally differ; since every shape paints the
// same mask value, the divergence is invisible in the output.
//
// # Immutability
//
// ExclusionROI values are never mutated in place. Add and RemoveLast return
// new values with fresh slices, so a host can keep historical snapshots for
// its own undo integration without defensive copying.
//
// # Parsing
//
// Parse is defensive: malformed entries — zero or negative rectangle sizes,
// polygons with fewer than three points, non-finite coordinates — are
// dropped individually rather than failing the whole parse.
package roi
