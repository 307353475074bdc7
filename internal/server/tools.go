package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file into the cache and return its dimensions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Tone Mapping
		{
			Name:        "tone_map_apply",
			Description: "Tone-map a grayscale photograph: percentile stretch, contrast/brightness/gamma curve, optional tiled adaptive equalization. Returns the preview as base64 PNG plus the resolved clip points.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the photograph",
					},
					"brightness": map[string]interface{}{
						"type":        "number",
						"description": "Brightness shift, -100 to 100 (default 0)",
					},
					"contrast": map[string]interface{}{
						"type":        "number",
						"description": "Contrast adjustment, -100 to 100 (default 0)",
					},
					"gamma": map[string]interface{}{
						"type":        "number",
						"description": "Gamma, 0.2 to 5 (default 1)",
					},
					"black_clip_pct": map[string]interface{}{
						"type":        "number",
						"description": "Percentile clipped to black, 0 to 5 (default 0.5)",
					},
					"white_clip_pct": map[string]interface{}{
						"type":        "number",
						"description": "Percentile clipped to white, 95 to 100 (default 99.5)",
					},
					"clahe_enabled": map[string]interface{}{
						"type":        "boolean",
						"description": "Enable tiled adaptive equalization",
					},
					"clahe_strength": map[string]interface{}{
						"type":        "number",
						"description": "Equalization blend strength, 0 to 10",
					},
					"clahe_tile": map[string]interface{}{
						"type":        "string",
						"description": "Tile class: auto, small, medium, or large",
					},
					"preview_scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional preview downscale factor (default 1.0)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "tone_map_histogram",
			Description: "Compute the 256-bin luminance histogram of an image and the black/white clip points for the given percentiles.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the photograph",
					},
					"black_clip_pct": map[string]interface{}{
						"type":        "number",
						"description": "Black clip percentile, 0 to 5 (default 0)",
					},
					"white_clip_pct": map[string]interface{}{
						"type":        "number",
						"description": "White clip percentile, 95 to 100 (default 100)",
					},
				},
				"required": []string{"path"},
			},
		},

		// Exclusion Regions
		{
			Name:        "exclusion_parse",
			Description: "Parse persisted exclusion-region JSON (rectangles, polygons, brush strokes), dropping malformed entries, and return the sanitized payload plus the next shape order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"roi": map[string]interface{}{
						"type":        "object",
						"description": "Raw exclusion ROI object with rectangles/polygons/brush_strokes lists",
					},
				},
				"required": []string{"roi"},
			},
		},
		{
			Name:        "exclusion_rasterize",
			Description: "Rasterize an exclusion ROI (plus an optional base mask image) into a binary mask PNG. Draw order is rectangles, then polygons, then brush strokes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"roi": map[string]interface{}{
						"type":        "object",
						"description": "Exclusion ROI object",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Target mask width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Target mask height in pixels",
					},
					"base_mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to a base mask image, scaled to the target size",
					},
				},
				"required": []string{"roi", "width", "height"},
			},
		},

		// Mask Editing
		{
			Name:        "mask_initialize",
			Description: "Initialize the mask editor from a base mask image (or a blank mask of the given size) and an optional source mask. Clears the undo/redo history.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"base_mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the base mask image",
					},
					"source_mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to the working mask (defaults to a copy of the base)",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Blank mask width when no base path is given",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Blank mask height when no base path is given",
					},
				},
			},
		},
		{
			Name:        "mask_brush",
			Description: "Apply one brush gesture (a list of stroke segments) to the mask in erase or restore mode. The whole gesture is a single undo step.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"segments": map[string]interface{}{
						"type":        "array",
						"description": "Stroke segments as {x1,y1,x2,y2} in mask pixels",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"description": "Brush mode: erase or restore",
					},
					"size_px": map[string]interface{}{
						"type":        "number",
						"description": "Brush diameter in pixels, 1 to 60",
					},
				},
				"required": []string{"segments", "mode", "size_px"},
			},
		},
		{
			Name:        "mask_undo",
			Description: "Undo the most recent mask gesture.",
			InputSchema:  emptySchema(),
		},
		{
			Name:        "mask_redo",
			Description: "Redo the most recently undone mask gesture.",
			InputSchema:  emptySchema(),
		},
		{
			Name:        "mask_reset",
			Description: "Reset the working mask to the base mask (undoable).",
			InputSchema:  emptySchema(),
		},
		{
			Name:        "mask_export",
			Description: "Export the working mask as a binary base64 PNG.",
			InputSchema:  emptySchema(),
		},

		// Label Overlay
		{
			Name:        "label_decode",
			Description: "Decode a rendered label image into a per-pixel segment ID grid (id = r + g*256 + b*65536). A missing image degrades to an all-zero grid of the given size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the label image",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Fallback grid width when the image cannot be loaded",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Fallback grid height when the image cannot be loaded",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "label_palette",
			Description: "Assign every decoded label a deterministic golden-angle color; returns id -> hex.",
			InputSchema:  emptySchema(),
		},
		{
			Name:        "label_hit_test",
			Description: "Look up the segment ID under a pixel of the decoded label grid.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "label_highlight",
			Description: "Build an RGBA highlight layer for one label: matching pixels get the color, everything else is transparent.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label_id": map[string]interface{}{
						"type":        "integer",
						"description": "Segment ID to highlight",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Highlight color as #RRGGBB (default amber)",
					},
				},
				"required": []string{"label_id"},
			},
		},
	}
}

// emptySchema is the input schema for tools that take no arguments.
func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
