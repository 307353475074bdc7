package roi

import (
	"testing"
)

func TestNextOrder(t *testing.T) {
	var r ExclusionROI
	if got := r.NextOrder(); got != 1 {
		t.Errorf("empty ROI NextOrder = %d, want 1", got)
	}

	// NextOrder is always 1 + max over the union of all three lists.
	r = r.AddRectangle(Rectangle{X: 0, Y: 0, Width: 5, Height: 5})
	r = r.AddPolygon(Polygon{Points: []Point{{0, 0}, {4, 0}, {4, 4}}})
	r = r.AddBrushStroke(BrushStroke{Size: 3, Points: []Point{{2, 2}}})

	if got := r.NextOrder(); got != 4 {
		t.Errorf("NextOrder after three adds = %d, want 4", got)
	}
	orders := map[int]bool{}
	for _, s := range r.Rectangles {
		orders[s.Order] = true
	}
	for _, s := range r.Polygons {
		orders[s.Order] = true
	}
	for _, s := range r.BrushStrokes {
		orders[s.Order] = true
	}
	if len(orders) != 3 {
		t.Errorf("orders must be unique across all lists, got %v", orders)
	}
}

func TestRemoveLast_GlobalOrder(t *testing.T) {
	var r ExclusionROI
	r = r.AddRectangle(Rectangle{Width: 2, Height: 2})                       // order 1
	r = r.AddBrushStroke(BrushStroke{Size: 2, Points: []Point{{1, 1}}})      // order 2
	r = r.AddPolygon(Polygon{Points: []Point{{0, 0}, {3, 0}, {3, 3}}})       // order 3

	// The polygon holds the global max order even though brushes draw last.
	r2 := r.RemoveLast()
	if len(r2.Polygons) != 0 {
		t.Error("RemoveLast should delete the polygon (global max order)")
	}
	if len(r2.Rectangles) != 1 || len(r2.BrushStrokes) != 1 {
		t.Error("RemoveLast must only touch the list holding the max order")
	}

	r3 := r2.RemoveLast()
	if len(r3.BrushStrokes) != 0 {
		t.Error("second RemoveLast should delete the brush stroke")
	}

	r4 := r3.RemoveLast().RemoveLast()
	if !r4.Empty() {
		t.Error("removing every shape should leave an empty ROI")
	}
}

func TestRemoveLast_DoesNotMutateReceiver(t *testing.T) {
	var r ExclusionROI
	r = r.AddRectangle(Rectangle{Width: 2, Height: 2})
	r = r.AddRectangle(Rectangle{X: 3, Width: 2, Height: 2})

	_ = r.RemoveLast()
	if len(r.Rectangles) != 2 {
		t.Error("RemoveLast must return a new value, not mutate the receiver")
	}
}

func TestEmpty(t *testing.T) {
	var r ExclusionROI
	if !r.Empty() {
		t.Error("zero ROI should be empty")
	}
	if !r.RemoveLast().Empty() {
		t.Error("RemoveLast on empty ROI should stay empty")
	}
	r = r.AddBrushStroke(BrushStroke{Size: 1, Points: []Point{{0, 0}}})
	if r.Empty() {
		t.Error("ROI with one stroke is not empty")
	}
}

func TestToPayload(t *testing.T) {
	var r ExclusionROI
	if r.ToPayload() != nil {
		t.Error("empty ROI payload must be nil")
	}

	r = r.AddRectangle(Rectangle{X: 1, Y: 2, Width: 3, Height: 4})
	r = r.AddPolygon(Polygon{Points: []Point{{0, 0}, {5, 0}, {5, 5}}})
	r = r.AddBrushStroke(BrushStroke{Size: 8, Points: []Point{{1, 1}, {2, 2}}})

	p := r.ToPayload()
	if p == nil {
		t.Fatal("payload should not be nil")
	}
	if len(p.Rectangles) != 1 || len(p.Polygons) != 1 || len(p.BrushStrokes) != 1 {
		t.Fatalf("payload counts: %d/%d/%d, want 1/1/1", len(p.Rectangles), len(p.Polygons), len(p.BrushStrokes))
	}
	if p.Rectangles[0] != (PayloadRectangle{X: 1, Y: 2, Width: 3, Height: 4}) {
		t.Errorf("rectangle payload = %+v", p.Rectangles[0])
	}
	if p.BrushStrokes[0].Size != 8 || len(p.BrushStrokes[0].Points) != 2 {
		t.Errorf("brush payload = %+v", p.BrushStrokes[0])
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantRects   int
		wantPolys   int
		wantBrushes int
	}{
		{
			"valid shapes",
			`{"rectangles":[{"x":1.4,"y":2.6,"width":3,"height":4,"order":1}],
			  "polygons":[{"points":[{"x":0,"y":0},{"x":5,"y":0},{"x":5,"y":5}],"order":2}],
			  "brush_strokes":[{"size":4,"points":[{"x":1,"y":1}],"order":3}]}`,
			1, 1, 1,
		},
		{
			"zero and negative rectangles dropped",
			`{"rectangles":[{"x":0,"y":0,"width":0,"height":4},{"x":0,"y":0,"width":-2,"height":3},{"x":0,"y":0,"width":2,"height":2}]}`,
			1, 0, 0,
		},
		{
			"short polygons dropped",
			`{"polygons":[{"points":[{"x":0,"y":0},{"x":5,"y":5}]},{"points":[{"x":0,"y":0},{"x":5,"y":0},{"x":0,"y":5}]}]}`,
			0, 1, 0,
		},
		{
			"pointless brush dropped",
			`{"brush_strokes":[{"size":4,"points":[]},{"size":4,"points":[{"x":2,"y":2}]}]}`,
			0, 0, 1,
		},
		{
			"not json",
			`{{{`,
			0, 0, 0,
		},
		{
			"empty object",
			`{}`,
			0, 0, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse([]byte(tt.raw))
			if len(r.Rectangles) != tt.wantRects || len(r.Polygons) != tt.wantPolys || len(r.BrushStrokes) != tt.wantBrushes {
				t.Errorf("counts = %d/%d/%d, want %d/%d/%d",
					len(r.Rectangles), len(r.Polygons), len(r.BrushStrokes),
					tt.wantRects, tt.wantPolys, tt.wantBrushes)
			}
		})
	}
}

func TestParse_RoundsAndClamps(t *testing.T) {
	r := Parse([]byte(`{
		"rectangles":[{"x":1.4,"y":2.6,"width":3.5,"height":3.4,"order":1}],
		"brush_strokes":[{"size":0.2,"points":[{"x":9.7,"y":0.2}],"order":2},
		                 {"size":900,"points":[{"x":1,"y":1}],"order":3}]
	}`))

	rect := r.Rectangles[0]
	if rect.X != 1 || rect.Y != 3 || rect.Width != 4 || rect.Height != 3 {
		t.Errorf("rounded rectangle = %+v", rect)
	}
	if r.BrushStrokes[0].Size != 1 {
		t.Errorf("undersized brush = %v, want clamp to 1", r.BrushStrokes[0].Size)
	}
	if r.BrushStrokes[1].Size != 200 {
		t.Errorf("oversized brush = %v, want clamp to 200", r.BrushStrokes[1].Size)
	}
	if p := r.BrushStrokes[0].Points[0]; p.X != 10 || p.Y != 0 {
		t.Errorf("rounded point = %+v, want (10,0)", p)
	}
}

func TestParse_ReassignsBadOrders(t *testing.T) {
	r := Parse([]byte(`{
		"rectangles":[{"x":0,"y":0,"width":1,"height":1,"order":5},
		              {"x":1,"y":0,"width":1,"height":1,"order":5},
		              {"x":2,"y":0,"width":1,"height":1}]
	}`))

	seen := map[int]bool{}
	for _, s := range r.Rectangles {
		if s.Order <= 0 {
			t.Errorf("order must be positive, got %d", s.Order)
		}
		if seen[s.Order] {
			t.Errorf("duplicate order %d after parse", s.Order)
		}
		seen[s.Order] = true
	}
	if got := r.NextOrder(); got != 1+maxOrder(r) {
		t.Errorf("NextOrder = %d, want %d", got, 1+maxOrder(r))
	}
}

func maxOrder(r ExclusionROI) int {
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
	return max
}
