// Package server implements the MCP (Model Context Protocol) host surface
// for the raster editing engines.
//
// This package provides a JSON-RPC 2.0 server that exposes the workbench's
// client-side pixel engines — tone mapping, exclusion-region compositing,
// mask editing, and label decoding — to any MCP-compatible host UI layer.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image into the cache and get dimensions
//   - image_dimensions: Get width and height
//
// Tone Mapping:
//   - tone_map_apply: Percentile stretch + contrast/brightness/gamma +
//     optional tiled adaptive equalization, returned as a PNG preview
//   - tone_map_histogram: 256-bin histogram and resolved clip points
//
// Exclusion Regions:
//   - exclusion_parse: Defensive parse of persisted ROI JSON
//   - exclusion_rasterize: Composite shapes plus base mask into a binary PNG
//
// Mask Editing (stateful; the server owns one editor instance):
//   - mask_initialize, mask_brush, mask_undo, mask_redo, mask_reset,
//     mask_export
//
// Label Overlay (stateful; the server owns one decoded grid):
//   - label_decode, label_palette, label_hit_test, label_highlight
//
// # Session State
//
// The mask editor and the label grid live for the server process and are
// mutated only from the sequential request loop — one logical writer at a
// time, mirroring the single active pointer gesture of an editing surface.
// Loaded images are cached by path for the lifetime of the process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Decorative inputs degrade instead of erroring: a missing label image
// yields an all-zero grid, and a missing rasterization base mask is treated
// as absent.
package server
