package seating

import "github.com/matzehuels/townsquare/pkg/geom"

// Viewport is the drawing surface the circle is fitted into.
// Margin is the space reserved between the seat circle and the nearest
// viewport edge for labels that are pushed outward.
type Viewport struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Margin float64 `json:"margin" toml:"margin"`
}

// Center returns the pixel center of the viewport.
func (v Viewport) Center() Center { return PixelCenter(v.Width/2, v.Height/2) }

// Bounds returns the viewport as a rectangle anchored at the origin.
func (v Viewport) Bounds() geom.Rect { return geom.Rect{Right: v.Width, Bottom: v.Height} }

// Landscape reports whether the viewport is wider than it is tall.
func (v Viewport) Landscape() bool { return v.Width > v.Height }

// Radius returns the seat circle radius for the viewport: half the shorter
// side minus the margin, never negative.
func Radius(v Viewport) float64 {
	return max(0, min(v.Width, v.Height)/2-v.Margin)
}

// MarginBudget returns the margin that keeps every label inside the viewport.
//
// A label anchor sits at most tokenSize·maxDistance beyond the seat circle and
// a measured label box never extends further than labelExtent from its anchor
// (the diagonal of the largest label covers any rotation). padding is added on
// top as breathing room.
func MarginBudget(tokenSize, maxDistance, labelExtent, padding float64) float64 {
	return tokenSize*maxDistance + labelExtent + padding
}
