// Package geom provides the small set of 2D primitives the seating engine
// measures with: points, sizes and axis-aligned rectangles.
//
// Screen coordinates are used throughout: x grows to the right and y grows
// downward, so a rectangle's Top is numerically smaller than its Bottom.
package geom

import "math"

// Point is a position in user units (typically pixels).
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by s.
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectAt returns the rectangle of the given size whose top-left corner is at p.
func RectAt(p Point, s Size) Rect {
	return Rect{Left: p.X, Top: p.Y, Right: p.X + s.W, Bottom: p.Y + s.H}
}

// RectAround returns the rectangle of the given size centered on c.
func RectAround(c Point, s Size) Rect {
	return Rect{Left: c.X - s.W/2, Top: c.Y - s.H/2, Right: c.X + s.W/2, Bottom: c.Y + s.H/2}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Center returns the centroid of the rectangle.
func (r Rect) Center() Point { return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Intersects reports whether r and o share interior area.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Near reports whether r and o intersect or come within gap of each other
// on both axes. With gap == 0 it is the non-strict version of Intersects.
func (r Rect) Near(o Rect, gap float64) bool {
	return !(r.Right+gap < o.Left || o.Right+gap < r.Left ||
		r.Bottom+gap < o.Top || o.Bottom+gap < r.Top)
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Within reports whether r lies entirely inside bounds (edges inclusive).
func (r Rect) Within(bounds Rect) bool {
	return r.Left >= bounds.Left && r.Right <= bounds.Right &&
		r.Top >= bounds.Top && r.Bottom <= bounds.Bottom
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Expand grows the rectangle by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{Left: r.Left - d, Top: r.Top - d, Right: r.Right + d, Bottom: r.Bottom + d}
}

// Translate moves the rectangle by the vector v.
func (r Rect) Translate(v Point) Rect {
	return Rect{Left: r.Left + v.X, Top: r.Top + v.Y, Right: r.Right + v.X, Bottom: r.Bottom + v.Y}
}

// Rotate rotates the rectangle's corners by degrees around pivot and returns
// the axis-aligned bounding box of the result. Positive angles turn clockwise
// on screen.
func (r Rect) Rotate(pivot Point, degrees float64) Rect {
	if degrees == 0 {
		return r
	}
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)

	corners := [4]Point{
		{r.Left, r.Top}, {r.Right, r.Top},
		{r.Right, r.Bottom}, {r.Left, r.Bottom},
	}
	out := Rect{Left: math.Inf(1), Top: math.Inf(1), Right: math.Inf(-1), Bottom: math.Inf(-1)}
	for _, c := range corners {
		dx, dy := c.X-pivot.X, c.Y-pivot.Y
		x := pivot.X + dx*cos - dy*sin
		y := pivot.Y + dx*sin + dy*cos
		out.Left = min(out.Left, x)
		out.Right = max(out.Right, x)
		out.Top = min(out.Top, y)
		out.Bottom = max(out.Bottom, y)
	}
	return out
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
