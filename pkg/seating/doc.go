// Package seating places participant seats around a circle.
//
// It is the leaf of the layout engine: a pure, stateless angle → coordinate
// transform. Slot k of n sits at angle phase + 2π·k/n, in participant order,
// and every anchor point (token center, label anchor) is derived from that
// angle with [Place]:
//
//	center + (radius + offset) · (cos θ, sin θ)
//
// Placements are expressed either in pixels or as percentages of the
// container, so responsive renderers can keep tracking a moving center.
//
//	angles := seating.Angles(8, 0)
//	radius := seating.Radius(seating.Viewport{Width: 1366, Height: 768, Margin: 120})
//	token := seating.Place(angles[3], radius, 0, seating.PixelCenter(683, 384))
//
// Angles use screen coordinates: 0 points right and positive angles turn
// clockwise because y grows downward.
package seating
