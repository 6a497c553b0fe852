package geom

import "math"

// Rect is an axis-aligned box with MinX <= MaxX and MinY <= MaxY for
// non-empty rectangles.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewRect returns the rectangle spanning the two points in any order.
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// IsEmpty reports whether the rectangle encloses no area.
func (r Rect) IsEmpty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Pad grows the rectangle by margin on all four sides.
func (r Rect) Pad(margin float64) Rect {
	return Rect{
		MinX: r.MinX - margin,
		MinY: r.MinY - margin,
		MaxX: r.MaxX + margin,
		MaxY: r.MaxY + margin,
	}
}

// Intersect returns the overlap of r and o. The result may be empty.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		MinX: math.Max(r.MinX, o.MinX),
		MinY: math.Max(r.MinY, o.MinY),
		MaxX: math.Min(r.MaxX, o.MaxX),
		MaxY: math.Min(r.MaxY, o.MaxY),
	}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (float64, float64) {
	return (r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2
}

// Corners returns the four corners in counter-clockwise order starting at
// the lower-left.
func (r Rect) Corners() [4][2]float64 {
	return [4][2]float64{
		{r.MinX, r.MinY},
		{r.MaxX, r.MinY},
		{r.MaxX, r.MaxY},
		{r.MinX, r.MaxY},
	}
}

// TransformRect maps all four corners of r through m and returns their
// axis-aligned bounds. Transforming only two diagonal corners is not
// equivalent: under rotation or skew a diagonal can land inside the true
// extent and silently shrink the box.
func TransformRect(r Rect, m Matrix) Rect {
	first := true
	var out Rect
	for _, c := range r.Corners() {
		x, y := m.Apply(c[0], c[1])
		if first {
			out = Rect{MinX: x, MinY: y, MaxX: x, MaxY: y}
			first = false
			continue
		}
		out.MinX = math.Min(out.MinX, x)
		out.MinY = math.Min(out.MinY, y)
		out.MaxX = math.Max(out.MaxX, x)
		out.MaxY = math.Max(out.MaxY, y)
	}
	return out
}
