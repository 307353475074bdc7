// Package maskedit implements the raster mask editor: a mutable binary mask
// buffer with brush-stroke painting and bounded undo/redo history.
//
// # Gesture Model
//
// A pointer drag is one editing transaction. The surface calls BeginStroke
// on pointer-down, ApplyBrush once per pointer-move segment, and EndStroke
// on pointer-up. Exactly one undo snapshot is captured per gesture — taken
// lazily when the first ApplyBrush of an armed gesture runs, before any
// pixel is written — so a full drag undoes in a single step and a gesture
// that never paints costs nothing.
//
// # Ownership
//
// The editor's buffers and stacks are exclusively owned by one editing
// surface instance; there is exactly one logical writer at a time (the
// active pointer gesture), so no locking is applied.
package maskedit

import (
	"image"
	"math"

	"github.com/granulab/raster-workbench/internal/raster"
)

// Mode selects what a brush stroke paints.
type Mode string

const (
	// ModeErase clears mask pixels to 0.
	ModeErase Mode = "erase"
	// ModeRestore sets mask pixels to 255.
	ModeRestore Mode = "restore"
)

// maxUndoDepth bounds the undo stack; the oldest snapshot is evicted when a
// new one would exceed it.
const maxUndoDepth = 30

// Point is a fractional pixel position on the mask.
type Point struct {
	X float64
	Y float64
}

// Editor owns a binary mask buffer plus its undo/redo history.
//
// The zero value is an uninitialized editor; every operation on it is a
// no-op until Initialize is called.
type Editor struct {
	base    *raster.Gray
	current *raster.Gray
	undo    []*raster.Gray
	redo    []*raster.Gray

	// strokeArmed is set between BeginStroke and the first ApplyBrush of a
	// gesture; the snapshot is taken when the first segment arrives.
	strokeArmed bool
}

// New returns an uninitialized editor.
func New() *Editor {
	return &Editor{}
}

// Ready reports whether the editor has been initialized.
func (e *Editor) Ready() bool {
	return e.current != nil
}

// Initialize (re)binds the editor to a base mask and a working mask,
// discarding all prior state including both history stacks.
//
// A nil base yields an all-zero base of the source's size; a nil source
// starts the working mask as a copy of the base. When both are nil the
// editor returns to the uninitialized state. Base and source must share
// dimensions; a mismatched source is ignored in favor of a base copy.
func (e *Editor) Initialize(base, source *raster.Gray) {
	e.undo = nil
	e.redo = nil
	e.strokeArmed = false

	switch {
	case base == nil && source == nil:
		e.base = nil
		e.current = nil
		return
	case base == nil:
		base = raster.NewGray(source.Width, source.Height)
	}

	e.base = base.Clone()
	if source == nil || source.Width != base.Width || source.Height != base.Height {
		e.current = e.base.Clone()
	} else {
		e.current = source.Clone()
	}
}

// Current returns the working mask, or nil when uninitialized. The returned
// buffer is the editor's own; callers must not mutate it.
func (e *Editor) Current() *raster.Gray {
	return e.current
}

// Base returns the base mask, or nil when uninitialized.
func (e *Editor) Base() *raster.Gray {
	return e.base
}

// UndoDepth returns the number of snapshots on the undo stack.
func (e *Editor) UndoDepth() int {
	return len(e.undo)
}

// RedoDepth returns the number of snapshots on the redo stack.
func (e *Editor) RedoDepth() int {
	return len(e.redo)
}

// BeginStroke arms a new brush gesture. The undo snapshot is deferred until
// the gesture's first ApplyBrush call.
func (e *Editor) BeginStroke() {
	if !e.Ready() {
		return
	}
	e.strokeArmed = true
}

// EndStroke closes the current gesture. The next BeginStroke/ApplyBrush pair
// starts a new undo step.
func (e *Editor) EndStroke() {
	e.strokeArmed = false
}

// ApplyBrush paints one stroke segment from from to to and returns the
// bounding box of changed pixels (empty when nothing changed).
//
// If this is the first segment of an armed gesture, a snapshot of the
// working mask is pushed onto the undo stack (capped at 30 entries, oldest
// evicted) and the redo stack is cleared, before any pixel is written.
//
// The segment is sampled at step max(1, radius*0.5) where radius is
// max(0.5, clamp(sizePx,1,60)/2); at each sample every pixel within radius
// (inclusive, by squared distance) is set to 255 for ModeRestore or 0 for
// ModeErase.
func (e *Editor) ApplyBrush(from, to Point, mode Mode, sizePx float64) image.Rectangle {
	if !e.Ready() {
		return image.Rectangle{}
	}
	if e.strokeArmed {
		e.pushUndo(e.current.Clone())
		e.redo = nil
		e.strokeArmed = false
	}

	target := uint8(0)
	if mode == ModeRestore {
		target = 255
	}

	size := sizePx
	if size < 1 {
		size = 1
	}
	if size > 60 {
		size = 60
	}
	radius := size / 2
	if radius < 0.5 {
		radius = 0.5
	}
	step := radius * 0.5
	if step < 1 {
		step = 1
	}

	dx := to.X - from.X
	dy := to.Y - from.Y
	dist := math.Hypot(dx, dy)
	steps := int(math.Ceil(dist / step))
	if steps < 1 {
		steps = 1
	}

	changed := image.Rectangle{}
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		box := e.stampDisc(from.X+t*dx, from.Y+t*dy, radius, target)
		if box.Empty() {
			continue
		}
		if changed.Empty() {
			changed = box
		} else {
			changed = changed.Union(box)
		}
	}
	return changed
}

// stampDisc writes target into every pixel within radius of (cx, cy) that
// does not already hold it, and returns the changed bounding box.
func (e *Editor) stampDisc(cx, cy, radius float64, target uint8) image.Rectangle {
	cur := e.current
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
	if x1 >= cur.Width {
		x1 = cur.Width - 1
	}
	if y1 >= cur.Height {
		y1 = cur.Height - 1
	}

	rr := radius * radius
	minX, minY := cur.Width, cur.Height
	maxX, maxY := -1, -1
	for y := y0; y <= y1; y++ {
		fy := float64(y) - cy
		row := y * cur.Width
		for x := x0; x <= x1; x++ {
			fx := float64(x) - cx
			if fx*fx+fy*fy > rr {
				continue
			}
			if cur.Pix[row+x] == target {
				continue
			}
			cur.Pix[row+x] = target
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Undo replaces the working mask with the most recent undo snapshot, moving
// the replaced state onto the redo stack. Returns false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	if !e.Ready() || len(e.undo) == 0 {
		return false
	}
	snapshot := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, e.current)
	e.current = snapshot
	return true
}

// Redo reverses the most recent Undo. Returns false when there is nothing
// to redo.
func (e *Editor) Redo() bool {
	if !e.Ready() || len(e.redo) == 0 {
		return false
	}
	snapshot := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, e.current)
	e.current = snapshot
	return true
}

// ResetToBase pushes an undo snapshot of the working mask, then replaces it
// with a copy of the base mask.
func (e *Editor) ResetToBase() {
	if !e.Ready() {
		return
	}
	e.pushUndo(e.current)
	e.redo = nil
	e.current = e.base.Clone()
}

// ExportPNG encodes the working mask as a binary PNG (mask value replicated
// across the color channels, alpha opaque). Returns nil bytes and nil error
// when the editor is uninitialized.
func (e *Editor) ExportPNG() ([]byte, error) {
	if !e.Ready() {
		return nil, nil
	}
	return raster.EncodeMaskPNG(e.current)
}

// pushUndo appends a snapshot, evicting the oldest when the stack is full.
func (e *Editor) pushUndo(snapshot *raster.Gray) {
	if len(e.undo) >= maxUndoDepth {
		e.undo = append(e.undo[1:len(e.undo):len(e.undo)], snapshot)
		return
	}
	e.undo = append(e.undo, snapshot)
}
