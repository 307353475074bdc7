// Package raster provides the in-memory pixel buffers shared by the editing
// engines, plus image loading with caching and most-recent-wins async fetch.
//
// Two buffer types are provided:
//   - Gray: one unsigned byte per pixel, row-major. Used for the tone-mapped
//     photograph and for binary masks (values 0 and 255 only).
//   - RGBA: four bytes per pixel, row-major. Used for color overlays.
//
// Both hold the invariant len(Pix) == Width*Height*channels for their whole
// lifetime; buffers are replaced wholesale on size change, never resized in
// place.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with origin at the top-left corner:
// X increases rightward, Y increases downward.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Gray and RGBA buffers are not: each
// buffer has a single logical writer at a time (the active editing gesture),
// so no locking is applied to pixel access.
//
// # Asynchronous Loading
//
// Image acquisition is the only asynchronous boundary of the editing core.
// Fetcher issues loads with a monotonically increasing sequence number; a
// completion commits its result only if no newer request has been issued
// since. Stale completions are discarded on arrival, never applied.
package raster
