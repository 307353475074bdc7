package roi

import (
	"encoding/json"
	"math"
)

// Point is an integer pixel coordinate, rounded to the buffer grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rectangle is an axis-aligned exclusion rectangle. Width and Height are
// always positive for shapes that survive Parse.
type Rectangle struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Order  int `json:"order"`
}

// Polygon is a closed exclusion polygon with at least three vertices.
type Polygon struct {
	Points []Point `json:"points"`
	Order  int     `json:"order"`
}

// BrushStroke is a freehand exclusion stroke. Size is the stroke radius in
// pixels; the rasterized stroke has a round cap and join with a total line
// width of 2*Size. A single-point stroke paints a filled disc.
type BrushStroke struct {
	Size   float64 `json:"size"`
	Points []Point `json:"points"`
	Order  int     `json:"order"`
}

// ExclusionROI aggregates the three shape lists of one exclusion region set.
//
// The zero value is an empty, usable ROI.
type ExclusionROI struct {
	Rectangles   []Rectangle   `json:"rectangles"`
	Polygons     []Polygon     `json:"polygons"`
	BrushStrokes []BrushStroke `json:"brush_strokes"`
}

// Empty reports whether the ROI holds no shapes in any list.
func (r ExclusionROI) Empty() bool {
	return len(r.Rectangles) == 0 && len(r.Polygons) == 0 && len(r.BrushStrokes) == 0
}

// NextOrder returns 1 + the maximum order across all three lists, or 1 for
// an empty ROI. Shapes added with NextOrder keep order values unique.
func (r ExclusionROI) NextOrder() int {
	max := 0
	for _, s := range r.Rectangles {
		if s.Order > max {
			max = s.Order
		}
	}
	for _, s := range r.Polygons {
		if s.Order > max {
			max = s.Order
		}
	}
	for _, s := range r.BrushStrokes {
		if s.Order > max {
			max = s.Order
		}
	}
	return max + 1
}

// AddRectangle returns a new ROI with rect appended at the next order.
func (r ExclusionROI) AddRectangle(rect Rectangle) ExclusionROI {
	rect.Order = r.NextOrder()
	out := r.clone()
	out.Rectangles = append(out.Rectangles, rect)
	return out
}

// AddPolygon returns a new ROI with poly appended at the next order.
func (r ExclusionROI) AddPolygon(poly Polygon) ExclusionROI {
	poly.Order = r.NextOrder()
	out := r.clone()
	out.Polygons = append(out.Polygons, poly)
	return out
}

// AddBrushStroke returns a new ROI with stroke appended at the next order.
func (r ExclusionROI) AddBrushStroke(stroke BrushStroke) ExclusionROI {
	stroke.Order = r.NextOrder()
	out := r.clone()
	out.BrushStrokes = append(out.BrushStrokes, stroke)
	return out
}

// RemoveLast returns a new ROI without the most recently added shape: the
// one holding the maximum order across all three lists combined. An empty
// ROI is returned unchanged.
func (r ExclusionROI) RemoveLast() ExclusionROI {
	maxOrder := 0
	kind := -1
	index := -1
	for i, s := range r.Rectangles {
		if s.Order > maxOrder {
			maxOrder, kind, index = s.Order, 0, i
		}
	}
	for i, s := range r.Polygons {
		if s.Order > maxOrder {
			maxOrder, kind, index = s.Order, 1, i
		}
	}
	for i, s := range r.BrushStrokes {
		if s.Order > maxOrder {
			maxOrder, kind, index = s.Order, 2, i
		}
	}

	out := r.clone()
	switch kind {
	case 0:
		out.Rectangles = append(out.Rectangles[:index], out.Rectangles[index+1:]...)
	case 1:
		out.Polygons = append(out.Polygons[:index], out.Polygons[index+1:]...)
	case 2:
		out.BrushStrokes = append(out.BrushStrokes[:index], out.BrushStrokes[index+1:]...)
	}
	return out
}

// clone copies the ROI with fresh top-level slices. Shape values are copied
// by value; point slices are shared, which is safe because shapes are never
// mutated after creation.
func (r ExclusionROI) clone() ExclusionROI {
	out := ExclusionROI{}
	if len(r.Rectangles) > 0 {
		out.Rectangles = append([]Rectangle(nil), r.Rectangles...)
	}
	if len(r.Polygons) > 0 {
		out.Polygons = append([]Polygon(nil), r.Polygons...)
	}
	if len(r.BrushStrokes) > 0 {
		out.BrushStrokes = append([]BrushStroke(nil), r.BrushStrokes...)
	}
	return out
}

// Payload is the serialized form handed to the persistence boundary.
// Shape order is an editing-session concern and is not part of the payload.
type Payload struct {
	Rectangles   []PayloadRectangle   `json:"rectangles"`
	Polygons     []PayloadPolygon     `json:"polygons"`
	BrushStrokes []PayloadBrushStroke `json:"brush_strokes"`
}

// PayloadRectangle is a rectangle with integer-rounded coordinates.
type PayloadRectangle struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PayloadPolygon is a polygon with integer-rounded vertices.
type PayloadPolygon struct {
	Points []Point `json:"points"`
}

// PayloadBrushStroke is a brush stroke with integer-rounded points.
type PayloadBrushStroke struct {
	Size   float64 `json:"size"`
	Points []Point `json:"points"`
}

// ToPayload converts the ROI to its persisted structure, or nil when the ROI
// is empty across all three lists.
func (r ExclusionROI) ToPayload() *Payload {
	if r.Empty() {
		return nil
	}
	p := &Payload{
		Rectangles:   make([]PayloadRectangle, 0, len(r.Rectangles)),
		Polygons:     make([]PayloadPolygon, 0, len(r.Polygons)),
		BrushStrokes: make([]PayloadBrushStroke, 0, len(r.BrushStrokes)),
	}
	for _, s := range r.Rectangles {
		p.Rectangles = append(p.Rectangles, PayloadRectangle{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height})
	}
	for _, s := range r.Polygons {
		p.Polygons = append(p.Polygons, PayloadPolygon{Points: s.Points})
	}
	for _, s := range r.BrushStrokes {
		p.BrushStrokes = append(p.BrushStrokes, PayloadBrushStroke{Size: s.Size, Points: s.Points})
	}
	return p
}

// rawROI mirrors the persisted JSON with float coordinates, so that values
// written by hosts that store fractional positions still parse.
type rawROI struct {
	Rectangles []struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Order  int     `json:"order"`
	} `json:"rectangles"`
	Polygons []struct {
		Points []rawPoint `json:"points"`
		Order  int        `json:"order"`
	} `json:"polygons"`
	BrushStrokes []struct {
		Size   float64    `json:"size"`
		Points []rawPoint `json:"points"`
		Order  int        `json:"order"`
	} `json:"brush_strokes"`
}

type rawPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Parse reconstructs an ExclusionROI from persisted JSON.
//
// Malformed entries are dropped individually: rectangles with non-positive
// sizes, polygons that end up with fewer than three valid points, strokes
// with no valid points, and any shape containing non-finite coordinates.
// Coordinates are rounded to the pixel grid and brush sizes clamped to
// [1, 200]. Shapes without a usable order value are assigned fresh ones so
// the uniqueness invariant holds for the returned ROI.
//
// Parse never fails; unusable input yields an empty ROI.
func Parse(raw []byte) ExclusionROI {
	var in rawROI
	if err := json.Unmarshal(raw, &in); err != nil {
		return ExclusionROI{}
	}

	var out ExclusionROI
	for _, s := range in.Rectangles {
		if !finite(s.X, s.Y, s.Width, s.Height) {
			continue
		}
		w := int(math.Round(s.Width))
		h := int(math.Round(s.Height))
		if w <= 0 || h <= 0 {
			continue
		}
		out.Rectangles = append(out.Rectangles, Rectangle{
			X:      int(math.Round(s.X)),
			Y:      int(math.Round(s.Y)),
			Width:  w,
			Height: h,
			Order:  s.Order,
		})
	}
	for _, s := range in.Polygons {
		points := roundPoints(s.Points)
		if len(points) < 3 {
			continue
		}
		out.Polygons = append(out.Polygons, Polygon{Points: points, Order: s.Order})
	}
	for _, s := range in.BrushStrokes {
		if !finite(s.Size) {
			continue
		}
		points := roundPoints(s.Points)
		if len(points) < 1 {
			continue
		}
		size := s.Size
		if size < 1 {
			size = 1
		}
		if size > 200 {
			size = 200
		}
		out.BrushStrokes = append(out.BrushStrokes, BrushStroke{Size: size, Points: points, Order: s.Order})
	}

	reassignOrders(&out)
	return out
}

// reassignOrders gives fresh order values to shapes whose persisted order is
// missing, non-positive, or a duplicate, preserving uniqueness.
func reassignOrders(r *ExclusionROI) {
	seen := make(map[int]bool)
	next := 0
	valid := func(order int) bool {
		return order > 0 && !seen[order]
	}
	note := func(order int) {
		seen[order] = true
		if order > next {
			next = order
		}
	}
	for i := range r.Rectangles {
		if valid(r.Rectangles[i].Order) {
			note(r.Rectangles[i].Order)
		} else {
			r.Rectangles[i].Order = 0
		}
	}
	for i := range r.Polygons {
		if valid(r.Polygons[i].Order) {
			note(r.Polygons[i].Order)
		} else {
			r.Polygons[i].Order = 0
		}
	}
	for i := range r.BrushStrokes {
		if valid(r.BrushStrokes[i].Order) {
			note(r.BrushStrokes[i].Order)
		} else {
			r.BrushStrokes[i].Order = 0
		}
	}
	for i := range r.Rectangles {
		if r.Rectangles[i].Order == 0 {
			next++
			r.Rectangles[i].Order = next
		}
	}
	for i := range r.Polygons {
		if r.Polygons[i].Order == 0 {
			next++
			r.Polygons[i].Order = next
		}
	}
	for i := range r.BrushStrokes {
		if r.BrushStrokes[i].Order == 0 {
			next++
			r.BrushStrokes[i].Order = next
		}
	}
}

func roundPoints(in []rawPoint) []Point {
	out := make([]Point, 0, len(in))
	for _, p := range in {
		if !finite(p.X, p.Y) {
			continue
		}
		out = append(out, Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))})
	}
	return out
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
